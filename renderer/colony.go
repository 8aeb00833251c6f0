// Package renderer draws simulation snapshots with raylib.
package renderer

import (
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/colony/camera"
	"github.com/pthm-cable/colony/telemetry"
)

var (
	dayColor      = color.RGBA{R: 235, G: 228, B: 210, A: 255}
	nightColor    = color.RGBA{R: 28, G: 32, B: 48, A: 255}
	nestColor     = rl.NewColor(139, 90, 43, 255)
	obstacleColor = rl.NewColor(110, 110, 110, 255)
	predatorColor = rl.NewColor(200, 40, 40, 220)
	searchColor   = rl.NewColor(30, 30, 30, 255)
	carryColor    = rl.NewColor(40, 160, 60, 255)
	returnColor   = rl.NewColor(90, 90, 160, 255)
	foodFull      = rl.NewColor(60, 180, 75, 255)
	foodEmpty     = rl.NewColor(190, 170, 90, 255)
)

// ColonyRenderer draws one snapshot through a camera.
type ColonyRenderer struct {
	cam        *camera.Camera
	pheromones *PheromoneLayer
	ShowGhosts bool
}

// NewColonyRenderer creates a renderer. pheromoneMax is the saturation
// value of a grid cell.
func NewColonyRenderer(cam *camera.Camera, pheromoneMax float32) *ColonyRenderer {
	return &ColonyRenderer{
		cam:        cam,
		pheromones: NewPheromoneLayer(pheromoneMax),
		ShowGhosts: true,
	}
}

// Pheromones returns the pheromone layer for toggling grids.
func (r *ColonyRenderer) Pheromones() *PheromoneLayer {
	return r.pheromones
}

// Draw renders the whole scene. Grids are uploaded only when the snapshot
// carries them.
func (r *ColonyRenderer) Draw(snap *telemetry.Snapshot) {
	cam := r.cam
	bg := BackgroundColor(snap.Daylight, snap.Night)
	rl.DrawRectangle(int32(cam.OriginX), int32(cam.OriginY), int32(cam.ViewportW), int32(cam.ViewportH),
		rl.NewColor(bg.R, bg.G, bg.B, bg.A))

	if snap.HomeGrid != nil {
		r.pheromones.Update(snap.HomeGrid, snap.FoodGrid, snap.GridW, snap.GridH)
	}
	r.pheromones.Draw(cam)

	rl.BeginScissorMode(int32(cam.OriginX), int32(cam.OriginY), int32(cam.ViewportW), int32(cam.ViewportH))
	defer rl.EndScissorMode()

	r.circle(snap.Nest.X, snap.Nest.Y, snap.Nest.Size/2, nestColor)

	for _, f := range snap.Foods {
		c := lerpColor(foodEmpty, foodFull, f.Fill)
		r.circle(f.X, f.Y, f.DisplaySize/2, c)
	}
	for _, o := range snap.Obstacles {
		r.circle(o.X, o.Y, o.Size/2, obstacleColor)
	}
	for _, p := range snap.Predators {
		r.circle(p.X, p.Y, p.Size/2, predatorColor)
		r.heading(p.X, p.Y, p.Heading, p.Size*0.7, rl.Maroon)
	}
	for _, a := range snap.Ants {
		c := searchColor
		switch {
		case a.HasFood:
			c = carryColor
		case a.State == "returning":
			c = returnColor
		}
		r.circle(a.X, a.Y, 1.5, c)
		r.heading(a.X, a.Y, a.Heading, 3, c)
	}
}

// DrawCursor previews a placement at a world position.
func (r *ColonyRenderer) DrawCursor(wx, wy, size float32, valid bool) {
	c := rl.NewColor(60, 200, 60, 160)
	if !valid {
		c = rl.NewColor(220, 60, 60, 160)
	}
	sx, sy := r.cam.WorldToScreen(wx, wy)
	rl.DrawCircleLines(int32(sx), int32(sy), size/2*r.cam.Zoom, c)
}

func (r *ColonyRenderer) circle(wx, wy, radius float32, c rl.Color) {
	cam := r.cam
	if !cam.IsVisible(wx, wy, radius) && !r.ShowGhosts {
		return
	}
	sr := radius * cam.Zoom
	sx, sy := cam.WorldToScreen(wx, wy)
	rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, sr, c)
	if r.ShowGhosts {
		for _, g := range cam.GhostPositions(wx, wy, radius) {
			rl.DrawCircleV(rl.Vector2{X: g.X, Y: g.Y}, sr, c)
		}
	}
}

func (r *ColonyRenderer) heading(wx, wy, angle, length float32, c rl.Color) {
	sx, sy := r.cam.WorldToScreen(wx, wy)
	l := length * r.cam.Zoom
	ex := sx + float32(math.Cos(float64(angle)))*l
	ey := sy + float32(math.Sin(float64(angle)))*l
	rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: ey}, c)
}

// Unload frees GPU resources.
func (r *ColonyRenderer) Unload() {
	r.pheromones.Unload()
}

// BackgroundColor blends from night to day by daylight in [0, 1]. Outside
// the night phase the day colour is used unchanged.
func BackgroundColor(daylight float32, night bool) color.RGBA {
	if !night {
		return dayColor
	}
	return lerpColor(nightColor, dayColor, daylight)
}

func lerpColor(a, b color.RGBA, t float32) color.RGBA {
	t = unit(t)
	mix := func(x, y uint8) uint8 {
		return uint8(float32(x) + (float32(y)-float32(x))*t)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}
