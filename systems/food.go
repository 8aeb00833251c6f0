package systems

import (
	"math/rand"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
)

// FoodParams holds food generation and regrowth parameters.
type FoodParams struct {
	MinSize, MaxSize             float32
	MinAmount, MaxAmount         int32
	MinGrowthRate, MaxGrowthRate float32
	MinNestDistance              float32
	PlacementRetries             int
	DisplayMinScale              float32

	// Optional; nil draws growth rates uniformly.
	Fertility *Fertility
}

// NewFoodParams builds FoodParams from config.
func NewFoodParams(cfg *config.Config, seed int64) FoodParams {
	fc := cfg.Food
	p := FoodParams{
		MinSize:          float32(fc.MinSize),
		MaxSize:          float32(fc.MaxSize),
		MinAmount:        int32(fc.MinAmount),
		MaxAmount:        int32(fc.MaxAmount),
		MinGrowthRate:    float32(fc.MinGrowthRate),
		MaxGrowthRate:    float32(fc.MaxGrowthRate),
		MinNestDistance:  float32(fc.MinNestDistance),
		PlacementRetries: fc.PlacementRetries,
		DisplayMinScale:  float32(fc.DisplayMinScale),
	}
	if fc.FertilityNoise {
		p.Fertility = NewFertility(seed, fc.FertilityScale)
	}
	return p
}

// maxNestTries bounds the search for a spot far enough from the nest.
const maxNestTries = 100

// NewFood returns a fresh food component for a source at (x, y).
func NewFood(rng *rand.Rand, p *FoodParams, x, y float32) components.Food {
	amount := p.MinAmount
	if span := p.MaxAmount - p.MinAmount; span > 0 {
		amount += rng.Int31n(span)
	}

	var growth float32
	if p.Fertility != nil {
		growth = lerp(p.MinGrowthRate, p.MaxGrowthRate, p.Fertility.At(x, y))
	} else {
		growth = lerp(p.MinGrowthRate, p.MaxGrowthRate, rng.Float32())
	}

	return components.Food{
		Size:           lerp(p.MinSize, p.MaxSize, rng.Float32()),
		Amount:         amount,
		OriginalAmount: amount,
		GrowthRate:     growth,
	}
}

// GenerateFood picks a random location at least MinNestDistance from the
// nest, retrying up to PlacementRetries times to stay clear of obstacles,
// and returns a new source there.
func GenerateFood(rng *rand.Rand, w *World, p *FoodParams) (components.Position, components.Food) {
	x, y := awayFromNest(rng, w, p.MinNestDistance)
	for attempt := 0; attempt < p.PlacementRetries && nearObstacle(w, x, y); attempt++ {
		x, y = awayFromNest(rng, w, p.MinNestDistance)
	}
	return components.Position{X: x, Y: y}, NewFood(rng, p, x, y)
}

func awayFromNest(rng *rand.Rand, w *World, minDist float32) (float32, float32) {
	x, y := randomPoint(rng, w)
	for i := 0; i < maxNestTries && w.DistanceToNest(x, y) < minDist; i++ {
		x, y = randomPoint(rng, w)
	}
	return x, y
}

// nearObstacle uses the full obstacle diameter as clearance.
func nearObstacle(w *World, x, y float32) bool {
	for _, o := range w.Obstacles {
		if distance(x, y, o.X, o.Y) < o.Size {
			return true
		}
	}
	return false
}

// ReplaceFood overwrites the source at index i with a freshly generated one.
func ReplaceFood(rng *rand.Rand, w *World, p *FoodParams, i int) {
	pos, food := GenerateFood(rng, w, p)
	*w.Foods[i].Pos = pos
	*w.Foods[i].Food = food
}

// RegrowFood advances the regrowth accumulator of a partially consumed source.
// It returns true when a unit was added.
func RegrowFood(f *components.Food) bool {
	if f.Amount >= f.OriginalAmount {
		return false
	}
	f.GrowthTimer += f.GrowthRate
	if f.GrowthTimer >= 1 {
		f.Amount++
		f.GrowthTimer = 0
		return true
	}
	return false
}

// FillRatio returns Amount/OriginalAmount, or 0 for a source with no capacity.
func FillRatio(f components.Food) float32 {
	if f.OriginalAmount <= 0 {
		return 0
	}
	return clamp01(float32(f.Amount) / float32(f.OriginalAmount))
}

// DisplaySize returns the drawn diameter, shrinking toward minScale*Size as the source empties.
func DisplaySize(f components.Food, minScale float32) float32 {
	return lerp(f.Size*minScale, f.Size, FillRatio(f))
}

func randomPoint(rng *rand.Rand, w *World) (float32, float32) {
	return rng.Float32() * w.Width, rng.Float32() * w.Height
}
