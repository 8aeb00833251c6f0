package telemetry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	snapshot := &Snapshot{
		Version:       SnapshotVersion,
		RNGSeed:       42,
		Tick:          1000,
		FoodCollected: 12,
		TotalCreated:  60,
		Efficiency:    20,
		WorldWidth:    500,
		WorldHeight:   400,
		CellSize:      5,
		Nest:          NestState{X: 250, Y: 200, Size: 20, FoodStored: 12},
		Ants: []AntState{
			{X: 10, Y: 20, Heading: 1.5, State: "returning", HasFood: true, Energy: 88.5, Age: 300},
		},
		Foods: []FoodState{
			{X: 400, Y: 100, Size: 20, Amount: 7, OriginalAmount: 30},
		},
		GridW:    2,
		GridH:    2,
		HomeGrid: []float32{1, 2, 3, 4},
		FoodGrid: []float32{0, 0, 0.5, 0},
	}

	path, err := SaveSnapshot(snapshot, tmpDir)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if filepath.Base(path) != "snapshot_1000.json" {
		t.Errorf("unexpected snapshot filename %s", filepath.Base(path))
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatalf("snapshot file not created at %s", path)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.Tick != 1000 || loaded.FoodCollected != 12 || loaded.Efficiency != 20 {
		t.Errorf("counters mismatch: tick=%d food=%d eff=%d", loaded.Tick, loaded.FoodCollected, loaded.Efficiency)
	}
	if len(loaded.Ants) != 1 || !loaded.Ants[0].HasFood || loaded.Ants[0].State != "returning" {
		t.Errorf("ant state not preserved: %+v", loaded.Ants)
	}
	if loaded.Nest.FoodStored != 12 {
		t.Errorf("nest food stored = %d, want 12", loaded.Nest.FoodStored)
	}
	if len(loaded.HomeGrid) != 4 || loaded.HomeGrid[3] != 4 {
		t.Errorf("home grid not preserved: %v", loaded.HomeGrid)
	}
}

func TestLoadSnapshotRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error for unknown snapshot version")
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
