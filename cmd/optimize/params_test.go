package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/telemetry"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

func TestParamVectorRoundtrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.ExtractFromConfig(config.Cfg())
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(raw[i]-back[i]) > 1e-9 {
			t.Errorf("%s: %f -> %f", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	cp := *config.Cfg()
	cfg := &cp

	values := make([]float64, pv.Dim())
	for i := range values {
		values[i] = 1e6
	}
	pv.ApplyToConfig(cfg, values)

	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Max {
			t.Errorf("%s = %f, want max %f", spec.Name, got[i], spec.Max)
		}
	}
	if config.Cfg().Sim.PheromoneStrength == cfg.Sim.PheromoneStrength {
		t.Error("ApplyToConfig wrote through to the base config")
	}
}

func TestComputeQuality(t *testing.T) {
	steady := make([]telemetry.WindowStats, 6)
	for i := range steady {
		steady[i] = telemetry.WindowStats{Deliveries: 20, Spawns: 5, ReturningFraction: 0.33}
	}
	bursty := make([]telemetry.WindowStats, 6)
	for i := range bursty {
		bursty[i] = telemetry.WindowStats{Deliveries: (i % 2) * 40, Spawns: 5, DeathsStarved: 5}
	}

	tests := []struct {
		name    string
		windows []telemetry.WindowStats
		min     float64
		max     float64
	}{
		{"too short", steady[:2], 0, 0},
		{"steady", steady, 0.99, 1},
		{"bursty", bursty, 0, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := computeQuality(tt.windows)
			if q < tt.min || q > tt.max {
				t.Errorf("quality = %f, want [%f, %f]", q, tt.min, tt.max)
			}
		})
	}
}

func TestComputeFitnessPrefersThroughput(t *testing.T) {
	if computeFitness(10, 0) >= computeFitness(5, 1) {
		t.Error("higher delivery rate should give lower fitness")
	}
	if computeFitness(10, 1) >= computeFitness(10, 0) {
		t.Error("quality should break ties")
	}
}
