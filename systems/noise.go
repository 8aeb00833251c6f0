package systems

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Fertility maps world positions to a [0, 1] regrowth factor using
// layered OpenSimplex noise. Food sources placed on fertile ground regrow
// faster.
type Fertility struct {
	noise  opensimplex.Noise
	scale  float64
	octave int
}

// NewFertility creates a fertility map seeded from the simulation seed.
func NewFertility(seed int64, scale float64) *Fertility {
	return &Fertility{
		noise:  opensimplex.NewNormalized(seed),
		scale:  scale,
		octave: 3,
	}
}

// At returns the fertility at world position (x, y).
func (f *Fertility) At(x, y float32) float32 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	freq := f.scale
	for i := 0; i < f.octave; i++ {
		total += f.noise.Eval2(float64(x)*freq, float64(y)*freq) * amplitude
		maxVal += amplitude
		amplitude *= 0.5
		freq *= 2
	}
	return clamp01(float32(total / maxVal))
}
