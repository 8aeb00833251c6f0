package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Derived.WorldW32 != float32(cfg.Screen.Width) || cfg.Derived.WorldH32 != float32(cfg.Screen.Height) {
		t.Errorf("world %vx%v should default to the screen size", cfg.Derived.WorldW32, cfg.Derived.WorldH32)
	}
	if cfg.Sim.PheromoneStrength < 1 || cfg.Sim.PheromoneStrength > 10 {
		t.Errorf("default pheromone strength %v out of range", cfg.Sim.PheromoneStrength)
	}
	if cfg.Avoidance.SensorRays%2 == 0 {
		t.Errorf("sensor rays must be odd, got %d", cfg.Avoidance.SensorRays)
	}
}

func TestLoadMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	data := []byte("sim:\n  agent_target: 7\nworld:\n  width: 300\n  height: 200\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sim.AgentTarget != 7 {
		t.Errorf("agent_target = %d, want 7", cfg.Sim.AgentTarget)
	}
	if cfg.Sim.FoodSourceTarget == 0 {
		t.Error("unset keys should keep their defaults")
	}
	if cfg.Derived.WorldW32 != 300 || cfg.Derived.WorldH32 != 200 {
		t.Errorf("world = %vx%v, want 300x200", cfg.Derived.WorldW32, cfg.Derived.WorldH32)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero cell size", "world:\n  cell_size: 0\n"},
		{"even rays", "avoidance:\n  sensor_rays: 4\n"},
		{"short history", "avoidance:\n  history_length: 1\n"},
		{"zero spawn interval", "population:\n  spawn_interval: 0\n"},
		{"zero day length", "day_night:\n  day_length: 0\n"},
		{"zero dt", "sim:\n  dt: 0\n"},
		{"zero agent speed", "sim:\n  agent_speed: 0\n"},
		{"zero ant size", "ant:\n  size: 0\n"},
		{"zero detection radius", "ant:\n  detection_radius: 0\n"},
		{"negative sense multiplier", "pheromone:\n  sense_multiplier: -1\n"},
		{"zero sensor range", "avoidance:\n  sensor_range: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGridDims(t *testing.T) {
	tests := []struct {
		w, h, cell float32
		gw, gh     int
	}{
		{500, 500, 5, 100, 100},
		{501, 499, 5, 101, 100},
		{1, 1, 5, 1, 1},
	}
	for _, tt := range tests {
		gw, gh := GridDims(tt.w, tt.h, tt.cell)
		if gw != tt.gw || gh != tt.gh {
			t.Errorf("GridDims(%v, %v, %v) = %d, %d, want %d, %d", tt.w, tt.h, tt.cell, gw, gh, tt.gw, tt.gh)
		}
	}
}

func TestWithWorldSizeCopies(t *testing.T) {
	base, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	sized := base.WithWorldSize(400, 300)

	if sized.Derived.GridW != 80 || sized.Derived.GridH != 60 {
		t.Errorf("grid = %dx%d, want 80x60", sized.Derived.GridW, sized.Derived.GridH)
	}
	if base.World.Width == 400 {
		t.Error("WithWorldSize modified the receiver")
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Sim.EvaporationRate = 0.042

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Sim.EvaporationRate != 0.042 {
		t.Errorf("evaporation_rate = %v after roundtrip", back.Sim.EvaporationRate)
	}
}
