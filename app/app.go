// Package app is the windowed front end: a raylib window with the control
// panel on the left and the world view on the right.
package app

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/colony/camera"
	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/game"
	"github.com/pthm-cable/colony/renderer"
	"github.com/pthm-cable/colony/ui"
)

// App drives one simulation from a raylib window. Create it after
// rl.InitWindow.
type App struct {
	cfg *config.Config
	sim *game.Simulation

	camera *camera.Camera
	colony *renderer.ColonyRenderer
	panel  *ui.ControlPanel
	hud    *ui.HUD

	screenWidth  float32
	screenHeight float32
	panelWidth   float32

	stepsPerUpdate int

	// Placement drag state
	dragging      bool
	lastDropX     float32
	lastDropY     float32
	cursorX       float32
	cursorY       float32
	cursorInWorld bool
}

// New creates the front end for sim. The world is resized to fill the
// area right of the panel and regenerated at that size.
func New(cfg *config.Config, sim *game.Simulation, stepsPerUpdate int) *App {
	sw := float32(rl.GetScreenWidth())
	sh := float32(rl.GetScreenHeight())
	pw := float32(cfg.Screen.PanelWidth)

	if ww, wh := sim.WorldSize(); ww != sw-pw || wh != sh {
		sim.Resize(sw-pw, sh)
		sim.Reset(sim.Options())
	}
	ww, wh := sim.WorldSize()

	cam := camera.New(pw, 0, sw-pw, sh, ww, wh)
	return &App{
		cfg:            cfg,
		sim:            sim,
		camera:         cam,
		colony:         renderer.NewColonyRenderer(cam, float32(cfg.Pheromone.Max)),
		panel:          ui.NewControlPanel(0, 0, int32(pw), int32(sh)),
		hud:            ui.NewHUD(),
		screenWidth:    sw,
		screenHeight:   sh,
		panelWidth:     pw,
		stepsPerUpdate: max(stepsPerUpdate, 1),
	}
}

// Tick returns the simulation tick.
func (a *App) Tick() int32 {
	return a.sim.CurrentTick()
}

// Update handles input and advances the simulation.
func (a *App) Update() {
	a.handleInput()
	for i := 0; i < a.stepsPerUpdate; i++ {
		a.sim.Tick()
	}
}

// Draw renders one frame.
func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	layer := a.colony.Pheromones()
	layer.ShowHome = a.panel.ShowHome
	layer.ShowFood = a.panel.ShowFood

	snap := a.sim.Snapshot()
	a.colony.Draw(snap)

	if a.cursorInWorld && a.panel.Tool != ui.ToolNone {
		a.colony.DrawCursor(a.cursorX, a.cursorY, a.toolSize(), true)
	}

	act := a.panel.Draw(a.sim.Options(), a.sim.Paused())
	a.apply(act)

	a.hud.Draw(ui.HUDData{
		Stats:    a.sim.Stats(),
		Tick:     snap.Tick,
		Daylight: snap.Daylight,
		Night:    snap.Night,
		DayNight: a.sim.Options().DayNightEnabled,
		Paused:   snap.Paused,
		FPS:      rl.GetFPS(),
		Tool:     a.panel.Tool,
		Perf:     a.sim.PerfStats(),
	}, int32(a.screenWidth))
	a.hud.DrawFooter(int32(a.panelWidth), int32(a.screenHeight), a.panel.Tool)

	rl.EndDrawing()
	a.sim.RecordFrame()
}

// apply carries out what the panel asked for this frame.
func (a *App) apply(act ui.Action) {
	if act.Configure {
		a.sim.Configure(act.Options)
	}
	if act.TogglePause {
		a.sim.SetPaused(!a.sim.Paused())
	}
	if act.Reset {
		a.sim.Reset(a.sim.Options())
	}
}

// toolSize is the preview diameter for the current tool.
func (a *App) toolSize() float32 {
	switch a.panel.Tool {
	case ui.ToolFood:
		return float32(a.cfg.Food.MaxSize)
	case ui.ToolObstacle:
		return float32(a.cfg.Obstacle.MaxSize)
	case ui.ToolPredator:
		return float32(a.cfg.Predator.MaxSize)
	}
	return 0
}

// Unload releases GPU resources.
func (a *App) Unload() {
	a.colony.Unload()
}
