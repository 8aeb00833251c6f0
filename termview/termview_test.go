package termview

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/game"
	"github.com/pthm-cable/colony/server"
	"github.com/pthm-cable/colony/telemetry"
)

func init() {
	// Initialize config for tests
	config.MustInit("")
}

func testSnapshot() *telemetry.Snapshot {
	return &telemetry.Snapshot{
		WorldWidth:  100,
		WorldHeight: 50,
		CellSize:    10,
		Nest:        telemetry.NestState{X: 50, Y: 25, Size: 10},
		GridW:       10,
		GridH:       5,
		HomeGrid:    make([]float32, 50),
		FoodGrid:    make([]float32, 50),
	}
}

func TestRasterCellMapping(t *testing.T) {
	r := NewRaster(20, 10)
	r.Fill(testSnapshot())

	if r.CellW != 5 || r.CellH != 5 {
		t.Fatalf("cell size = %fx%f, want 5x5", r.CellW, r.CellH)
	}

	tests := []struct {
		name     string
		wx, wy   float32
		col, row int
		ok       bool
	}{
		{"origin", 0, 0, 0, 0, true},
		{"inside", 12, 27, 2, 5, true},
		{"far edge", 99.9, 49.9, 19, 9, true},
		{"right of world", 100, 10, 0, 0, false},
		{"negative", -1, 10, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, row, ok := r.CellOf(tt.wx, tt.wy)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && (col != tt.col || row != tt.row) {
				t.Errorf("cell = (%d, %d), want (%d, %d)", col, row, tt.col, tt.row)
			}
		})
	}

	wx, wy := r.WorldOf(2, 5)
	if wx != 12.5 || wy != 27.5 {
		t.Errorf("WorldOf(2, 5) = (%f, %f), want (12.5, 27.5)", wx, wy)
	}
}

func TestRasterLayers(t *testing.T) {
	snap := testSnapshot()
	snap.Foods = []telemetry.FoodState{{X: 12, Y: 12, DisplaySize: 4, Fill: 0.5}}
	snap.Obstacles = []telemetry.BodyState{{X: 82, Y: 12, Size: 4}}
	snap.Ants = []telemetry.AntState{
		{X: 12, Y: 12, HasFood: true}, // On the food source
		{X: 31, Y: 41},
		{X: 51, Y: 26}, // Inside the nest
	}
	snap.Predators = []telemetry.PredatorState{{X: 31, Y: 41, Size: 2}}

	r := NewRaster(20, 10)
	r.Fill(snap)

	tests := []struct {
		name     string
		col, row int
		want     rune
	}{
		{"carrier over food", 2, 2, GlyphCarrier},
		{"obstacle", 16, 2, GlyphObstacle},
		{"nest hides searcher", 10, 5, GlyphNest},
		{"predator over ant", 6, 8, GlyphPredator},
		{"empty", 0, 9, GlyphEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.At(tt.col, tt.row).Glyph; got != tt.want {
				t.Errorf("glyph = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRasterDiscCoversLargeBodies(t *testing.T) {
	snap := testSnapshot()
	snap.Obstacles = []telemetry.BodyState{{X: 25, Y: 25, Size: 20}}

	r := NewRaster(20, 10)
	r.Fill(snap)

	count := 0
	for _, c := range r.Cells {
		if c.Glyph == GlyphObstacle {
			count++
		}
	}
	// Radius 10 over 5x5 characters covers roughly pi*4 cells.
	if count < 9 || count > 16 {
		t.Errorf("obstacle covers %d cells, want 9-16", count)
	}
}

func TestRasterSamplesPheromones(t *testing.T) {
	snap := testSnapshot()
	snap.HomeGrid[2*10+3] = 7
	snap.FoodGrid[0] = 4

	r := NewRaster(20, 10)
	r.Fill(snap)

	// Grid cell (3, 2) spans characters (6..7, 4..5).
	if got := r.At(7, 5).Home; got != 7 {
		t.Errorf("home at (7,5) = %f, want 7", got)
	}
	if got := r.At(1, 1).Food; got != 4 {
		t.Errorf("food at (1,1) = %f, want 4", got)
	}
	if got := r.At(8, 5).Home; got != 0 {
		t.Errorf("home at (8,5) = %f, want 0", got)
	}
}

func TestRasterIgnoresMismatchedGrids(t *testing.T) {
	snap := testSnapshot()
	snap.HomeGrid = nil // Light snapshot
	r := NewRaster(20, 10)
	r.Fill(snap)
	for i, c := range r.Cells {
		if c.Home != 0 || c.Food != 0 {
			t.Fatalf("cell %d has pheromone without grids", i)
		}
	}
}

func newTestView(t *testing.T) (*View, tcell.SimulationScreen, *game.Simulation) {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(40, 21)

	cfg := config.Cfg().WithWorldSize(400, 400)
	opts := game.OptionsFromConfig(cfg)
	opts.AgentTarget = 10
	opts.FoodSourceTarget = 0
	sim := game.New(cfg, opts, 3)
	runner := server.NewRunner(sim, 60, 1, nil)

	v := New(screen, runner, cfg.Terminal, float32(cfg.Pheromone.Max))
	v.Draw()
	return v, screen, sim
}

func TestViewDrawsNestAndStatus(t *testing.T) {
	v, screen, _ := newTestView(t)

	cells, w, h := screen.GetContents()
	if w != 40 || h != 21 {
		t.Fatalf("screen is %dx%d", w, h)
	}

	col, row := v.Cursor()
	if col != 20 || row != 10 {
		t.Errorf("cursor starts at (%d, %d), want the nest at (20, 10)", col, row)
	}

	status := make([]rune, 0, w)
	for x := 0; x < w; x++ {
		if r := cells[(h-1)*w+x].Runes; len(r) > 0 {
			status = append(status, r[0])
		}
	}
	if got := string(status); len(got) < 5 || got[:5] != " food" {
		t.Errorf("status line = %q", got)
	}
}

func TestViewKeys(t *testing.T) {
	v, _, sim := newTestView(t)

	v.SetCursor(2, 2)
	before := len(sim.Foods())
	if !v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'f', tcell.ModNone)) {
		t.Fatal("placing food quit the view")
	}
	if got := len(sim.Foods()); got != before+1 {
		t.Errorf("foods = %d, want %d (%s)", got, before+1, v.Message())
	}

	v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	if !sim.Paused() {
		t.Error("space did not pause")
	}
	v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone))
	if sim.Paused() {
		t.Error("second space did not resume")
	}

	v.HandleEvent(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	v.HandleEvent(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModShift))
	col, row := v.Cursor()
	if col != 3 || row != 2+config.Cfg().Terminal.CursorStep {
		t.Errorf("cursor = (%d, %d) after moves", col, row)
	}

	v.SetCursor(-5, 500)
	col, row = v.Cursor()
	if col != 0 || row != 19 {
		t.Errorf("cursor not clamped: (%d, %d)", col, row)
	}

	for _, ev := range []*tcell.EventKey{
		tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone),
		tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone),
		tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone),
	} {
		if v.HandleEvent(ev) {
			t.Errorf("key %v did not quit", ev.Name())
		}
	}
}

func TestViewRejectedPlacementReports(t *testing.T) {
	v, _, sim := newTestView(t)

	// The cursor starts on the nest, where nothing may be placed.
	before := len(sim.Obstacles())
	v.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'o', tcell.ModNone))
	if len(sim.Obstacles()) != before {
		t.Error("obstacle placed on the nest")
	}
	if v.Message() == "" {
		t.Error("rejection left no message")
	}
}

func TestCellStyleLayerToggles(t *testing.T) {
	c := Cell{Glyph: GlyphEmpty, Home: 10, Food: 10}
	on := CellStyle(c, 10, true, true)
	off := CellStyle(c, 10, false, false)
	if on == off {
		t.Error("hiding both layers did not change the background")
	}
	if CellStyle(c, 10, false, false) != CellStyle(Cell{Glyph: GlyphEmpty}, 10, true, true) {
		t.Error("hidden layers should match an empty cell")
	}
}
