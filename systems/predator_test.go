package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
)

func TestStepPredatorBounce(t *testing.T) {
	tests := []struct {
		name        string
		x, y        float32
		heading     float32
		wantHeading float32
		wantX       float32
		wantY       float32
	}{
		{"right edge", 299, 100, 0, math.Pi, 300, 100},
		{"left edge", 1, 100, math.Pi, 0, 0, 100},
		{"top edge", 100, 1, -math.Pi / 2, math.Pi / 2, 100, 0},
		{"bottom edge", 100, 299, math.Pi / 2, -math.Pi / 2, 100, 300},
		{"open space", 150, 150, 0, 0, 152, 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := &components.Position{X: tt.x, Y: tt.y}
			mot := &components.Motion{Heading: tt.heading, Speed: 2}

			StepPredator(pos, mot, 300, 300)

			if math.Abs(float64(NormalizeAngle(mot.Heading-tt.wantHeading))) > 1e-4 {
				t.Errorf("heading = %v, want %v", mot.Heading, tt.wantHeading)
			}
			if math.Abs(float64(pos.X-tt.wantX)) > 1e-4 || math.Abs(float64(pos.Y-tt.wantY)) > 1e-4 {
				t.Errorf("pos = (%v, %v), want (%v, %v)", pos.X, pos.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestStepPredatorStaysInBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	p := NewPredatorParams(config.Cfg())

	for i := 0; i < 20; i++ {
		pos, mot, _ := NewPredator(rng, &p, rng.Float32()*200, rng.Float32()*120)
		for tick := 0; tick < 1000; tick++ {
			StepPredator(&pos, &mot, 200, 120)
			if pos.X < 0 || pos.X > 200 || pos.Y < 0 || pos.Y > 120 {
				t.Fatalf("predator left the world at (%v, %v)", pos.X, pos.Y)
			}
		}
	}
}

func TestNewPredatorRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	p := NewPredatorParams(config.Cfg())
	for i := 0; i < 100; i++ {
		pos, mot, pred := NewPredator(rng, &p, 50, 60)
		if pos.X != 50 || pos.Y != 60 {
			t.Fatalf("position = (%v, %v)", pos.X, pos.Y)
		}
		if pred.Size < p.MinSize || pred.Size > p.MaxSize {
			t.Fatalf("size %v outside [%v, %v]", pred.Size, p.MinSize, p.MaxSize)
		}
		if mot.Speed < p.MinSpeed || mot.Speed > p.MaxSpeed {
			t.Fatalf("speed %v outside [%v, %v]", mot.Speed, p.MinSpeed, p.MaxSpeed)
		}
	}
}
