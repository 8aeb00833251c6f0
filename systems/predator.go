package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
)

// PredatorParams holds predator generation parameters.
type PredatorParams struct {
	MinSize, MaxSize   float32
	MinSpeed, MaxSpeed float32
}

// NewPredatorParams builds PredatorParams from config.
func NewPredatorParams(cfg *config.Config) PredatorParams {
	pc := cfg.Predator
	return PredatorParams{
		MinSize:  float32(pc.MinSize),
		MaxSize:  float32(pc.MaxSize),
		MinSpeed: float32(pc.MinSpeed),
		MaxSpeed: float32(pc.MaxSpeed),
	}
}

// NewPredator returns the components of a predator at (x, y) with a random
// size, speed and heading.
func NewPredator(rng *rand.Rand, p *PredatorParams, x, y float32) (components.Position, components.Motion, components.Predator) {
	return components.Position{X: x, Y: y},
		components.Motion{
			Heading: rng.Float32() * 2 * math.Pi,
			Speed:   lerp(p.MinSpeed, p.MaxSpeed, rng.Float32()),
		},
		components.Predator{Size: lerp(p.MinSize, p.MaxSize, rng.Float32())}
}

// StepPredator moves a predator in a straight line and bounces it off the
// world edges. Crossing a vertical edge mirrors the heading about the
// y axis, crossing a horizontal edge mirrors it about the x axis.
func StepPredator(pos *components.Position, mot *components.Motion, width, height float32) {
	s, c := sincos(mot.Heading)
	pos.X += c * mot.Speed
	pos.Y += s * mot.Speed

	if pos.X < 0 || pos.X > width {
		mot.Heading = math.Pi - mot.Heading
		pos.X = clampFloat(pos.X, 0, width)
	}
	if pos.Y < 0 || pos.Y > height {
		mot.Heading = -mot.Heading
		pos.Y = clampFloat(pos.Y, 0, height)
	}
	mot.Heading = NormalizeAngle(mot.Heading)
}
