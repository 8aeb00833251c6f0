package app

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/colony/game"
	"github.com/pthm-cable/colony/ui"
)

// handleInput processes keyboard and mouse input.
func (a *App) handleInput() {
	// Window resize propagation
	a.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.sim.SetPaused(!a.sim.Paused())
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.sim.Reset(a.sim.Options())
	}

	switch {
	case rl.IsKeyPressed(rl.KeyOne):
		a.panel.Tool = ui.ToolFood
	case rl.IsKeyPressed(rl.KeyTwo):
		a.panel.Tool = ui.ToolObstacle
	case rl.IsKeyPressed(rl.KeyThree):
		a.panel.Tool = ui.ToolPredator
	case rl.IsKeyPressed(rl.KeyZero):
		a.panel.Tool = ui.ToolNone
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && a.stepsPerUpdate > 1 {
		a.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && a.stepsPerUpdate < 10 {
		a.stepsPerUpdate++
	}

	a.handleCameraInput()
	a.handlePlacement()
}

// handleResize resizes the world to the new viewport. Pheromone values in
// the overlapping cells survive.
func (a *App) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == a.screenWidth && h == a.screenHeight {
		return
	}
	a.screenWidth = w
	a.screenHeight = h

	vw := max(w-a.panelWidth, 1)
	a.sim.Resize(vw, h)
	a.camera.SetViewport(a.panelWidth, 0, vw, h)
	a.camera.SetWorld(a.sim.WorldSize())
	a.panel.SetHeight(int32(h))
}

// handleCameraInput processes camera pan/zoom controls.
func (a *App) handleCameraInput() {
	// Pan speed scales inversely with zoom for natural feel
	panSpeed := float32(8.0) / a.camera.Zoom

	if rl.IsKeyDown(rl.KeyRight) {
		a.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		a.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		a.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		a.camera.Pan(0, -panSpeed)
	}

	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		a.camera.Pan(-d.X, -d.Y)
	}

	mouse := rl.GetMousePosition()
	if wheel := rl.GetMouseWheelMove(); wheel != 0 && a.camera.Contains(mouse.X, mouse.Y) {
		a.camera.ZoomBy(1 + wheel*0.1)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		a.camera.Fit()
	}
}

// handlePlacement places the current tool's object on click. Holding the
// button with the obstacle tool draws a wall, one obstacle per
// drag_spacing of mouse travel.
func (a *App) handlePlacement() {
	mouse := rl.GetMousePosition()
	wx, wy, ok := a.camera.ScreenToWorld(mouse.X, mouse.Y)
	a.cursorX, a.cursorY = wx, wy
	a.cursorInWorld = ok && !a.panel.Contains(mouse.X, mouse.Y)

	if rl.IsMouseButtonReleased(rl.MouseButtonLeft) {
		a.dragging = false
	}
	if !a.cursorInWorld || a.panel.Tool == ui.ToolNone {
		return
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		a.place(wx, wy)
		a.dragging = a.panel.Tool == ui.ToolObstacle
		a.lastDropX, a.lastDropY = mouse.X, mouse.Y
		return
	}

	if a.dragging && rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		if game.DragStepReached(a.lastDropX, a.lastDropY, mouse.X, mouse.Y, a.cfg.Placement.DragSpacing) {
			a.place(wx, wy)
			a.lastDropX, a.lastDropY = mouse.X, mouse.Y
		}
	}
}

func (a *App) place(wx, wy float32) {
	switch a.panel.Tool {
	case ui.ToolFood:
		a.sim.PlaceFood(wx, wy)
	case ui.ToolObstacle:
		a.sim.PlaceObstacle(wx, wy)
	case ui.ToolPredator:
		a.sim.PlacePredator(wx, wy)
	}
}
