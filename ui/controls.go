package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/colony/game"
)

// Tool is what a click in the world places.
type Tool int

const (
	ToolNone Tool = iota
	ToolFood
	ToolObstacle
	ToolPredator
)

// String returns the display name for a Tool.
func (t Tool) String() string {
	switch t {
	case ToolFood:
		return "Food"
	case ToolObstacle:
		return "Obstacle"
	case ToolPredator:
		return "Predator"
	}
	return "None"
}

// Action is what the user asked for during one frame of the panel.
type Action struct {
	Configure   bool // Options changed
	Reset       bool
	TogglePause bool
	Options     game.Options
}

// slider describes one option slider.
type slider struct {
	label    string
	min, max float32
	format   string
	get      func(*game.Options) float32
	set      func(*game.Options, float32)
}

var sliders = []slider{
	{"Agents", 0, 300, "%.0f",
		func(o *game.Options) float32 { return float32(o.AgentTarget) },
		func(o *game.Options, v float32) { o.AgentTarget = int(v) }},
	{"Food sources", 0, 20, "%.0f",
		func(o *game.Options) float32 { return float32(o.FoodSourceTarget) },
		func(o *game.Options, v float32) { o.FoodSourceTarget = int(v) }},
	{"Pheromone", 1, 10, "%.1f",
		func(o *game.Options) float32 { return float32(o.PheromoneStrength) },
		func(o *game.Options, v float32) { o.PheromoneStrength = float64(v) }},
	{"Evaporation", 0, 0.1, "%.3f",
		func(o *game.Options) float32 { return float32(o.EvaporationRate) },
		func(o *game.Options, v float32) { o.EvaporationRate = float64(v) }},
	{"Agent speed", 0.5, 5, "%.1f",
		func(o *game.Options) float32 { return float32(o.AgentSpeed) },
		func(o *game.Options, v float32) { o.AgentSpeed = float64(v) }},
}

// ControlPanel is the left-side panel: option sliders, placement tools,
// layer toggles and run controls.
type ControlPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	height   int32

	Tool     Tool
	ShowHome bool
	ShowFood bool
}

// NewControlPanel creates a panel at (x, y).
func NewControlPanel(x, y, width, height int32) *ControlPanel {
	return &ControlPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		height:   height,
		ShowHome: true,
		ShowFood: true,
	}
}

// SetHeight follows window resizes.
func (c *ControlPanel) SetHeight(h int32) {
	c.height = h
}

// Draw renders the panel and returns the user's requests this frame.
func (c *ControlPanel) Draw(opts game.Options, paused bool) Action {
	r := c.renderer
	pad := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.height)

	act := Action{Options: opts}
	x := float32(c.x + pad)
	y := c.y + pad
	w := float32(c.width - 2*pad)

	rl.DrawText("Ant Colony", c.x+pad, y, 20, rl.White)
	y += 30

	y = r.DrawSectionHeader(c.x+pad, y, "Parameters")
	for _, s := range sliders {
		cur := s.get(&act.Options)
		rl.DrawText(s.label, c.x+pad, y, r.Theme.FontSize, r.Theme.LabelColor)
		rl.DrawText(fmt.Sprintf(s.format, cur), c.x+c.width-pad-40, y, r.Theme.FontSize, r.Theme.ValueColor)
		y += 14
		v := gui.SliderBar(rl.Rectangle{X: x, Y: float32(y), Width: w, Height: 14}, "", "", cur, s.min, s.max)
		if v != cur {
			s.set(&act.Options, v)
			act.Configure = true
		}
		y += 22
	}

	dayNight := gui.CheckBox(rl.Rectangle{X: x, Y: float32(y), Width: 14, Height: 14}, "Day/night cycle", act.Options.DayNightEnabled)
	if dayNight != act.Options.DayNightEnabled {
		act.Options.DayNightEnabled = dayNight
		act.Configure = true
	}
	y += 26

	y = r.DrawSectionHeader(c.x+pad, y, "Place")
	for i, t := range []Tool{ToolFood, ToolObstacle, ToolPredator} {
		bw := (w - 10) / 3
		bounds := rl.Rectangle{X: x + float32(i)*(bw+5), Y: float32(y), Width: bw, Height: 24}
		if gui.Toggle(bounds, t.String(), c.Tool == t) != (c.Tool == t) {
			if c.Tool == t {
				c.Tool = ToolNone
			} else {
				c.Tool = t
			}
		}
	}
	y += 34

	y = r.DrawSectionHeader(c.x+pad, y, "Layers")
	c.ShowHome = gui.CheckBox(rl.Rectangle{X: x, Y: float32(y), Width: 14, Height: 14}, "Home trail", c.ShowHome)
	y += 20
	c.ShowFood = gui.CheckBox(rl.Rectangle{X: x, Y: float32(y), Width: 14, Height: 14}, "Food trail", c.ShowFood)
	y += 28

	label := "Pause"
	if paused {
		label = "Resume"
	}
	bw := (w - 5) / 2
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: bw, Height: 28}, label) {
		act.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + bw + 5, Y: float32(y), Width: bw, Height: 28}, "Reset") {
		act.Reset = true
	}
	return act
}

// Contains reports whether a screen point lies over the panel.
func (c *ControlPanel) Contains(x, y float32) bool {
	return x >= float32(c.x) && x < float32(c.x+c.width) && y >= float32(c.y) && y < float32(c.y+c.height)
}
