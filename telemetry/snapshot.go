package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot is a read-only copy of the simulation state. Renderers, the
// websocket transport and the on-disk dump all consume this one shape.
type Snapshot struct {
	Version int    `json:"version"`
	RunID   string `json:"run_id,omitempty"`
	RNGSeed int64  `json:"rng_seed"`

	Tick          int32   `json:"tick"`
	ElapsedSec    float64 `json:"elapsed_sec"`
	Paused        bool    `json:"paused"`
	Daylight      float32 `json:"daylight"`
	Night         bool    `json:"night"`
	FoodCollected int     `json:"food_collected"`
	TotalCreated  int     `json:"total_created"`
	Efficiency    int     `json:"efficiency"`

	WorldWidth  float32 `json:"world_width"`
	WorldHeight float32 `json:"world_height"`
	CellSize    float32 `json:"cell_size"`

	Nest      NestState       `json:"nest"`
	Ants      []AntState      `json:"ants"`
	Foods     []FoodState     `json:"foods"`
	Obstacles []BodyState     `json:"obstacles"`
	Predators []PredatorState `json:"predators"`

	// Pheromone grids, row-major; omitted when the caller asks for a light snapshot.
	GridW    int       `json:"grid_w"`
	GridH    int       `json:"grid_h"`
	HomeGrid []float32 `json:"home_grid,omitempty"`
	FoodGrid []float32 `json:"food_grid,omitempty"`
}

// NestState is the nest in a snapshot.
type NestState struct {
	X          float32 `json:"x"`
	Y          float32 `json:"y"`
	Size       float32 `json:"size"`
	FoodStored int32   `json:"food_stored"`
}

// AntState is one agent in a snapshot.
type AntState struct {
	X         float32 `json:"x"`
	Y         float32 `json:"y"`
	Heading   float32 `json:"heading"`
	Speed     float32 `json:"speed"`
	State     string  `json:"state"`
	HasFood   bool    `json:"has_food"`
	Energy    float32 `json:"energy"`
	Age       int32   `json:"age"`
	Strategy  uint8   `json:"strategy"`
	StuckTime int32   `json:"stuck"`
}

// FoodState is one food source in a snapshot.
type FoodState struct {
	X              float32 `json:"x"`
	Y              float32 `json:"y"`
	Size           float32 `json:"size"`
	DisplaySize    float32 `json:"display_size"`
	Amount         int32   `json:"amount"`
	OriginalAmount int32   `json:"original_amount"`
	Fill           float32 `json:"fill"`
}

// BodyState is a static circular object in a snapshot.
type BodyState struct {
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
	Size float32 `json:"size"`
}

// PredatorState is one predator in a snapshot.
type PredatorState struct {
	X       float32 `json:"x"`
	Y       float32 `json:"y"`
	Size    float32 `json:"size"`
	Heading float32 `json:"heading"`
	Speed   float32 `json:"speed"`
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.Tick))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}

	return &snapshot, nil
}
