package systems

import (
	"math"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
)

// PheromoneKind selects one of the two co-located grids.
type PheromoneKind uint8

const (
	Home PheromoneKind = iota // Laid toward the nest, followed by returners
	FoodTrail                 // Laid by laden returners, followed by searchers
)

// String returns the display name for a PheromoneKind.
func (k PheromoneKind) String() string {
	if k == Home {
		return "home"
	}
	return "food"
}

// PheromoneField holds two scalar grids over a fixed-size cell grid.
// Both grids are flat, row-major, indexed y*W+x, and bounded to [0, Max].
// Unlike the resource field this grid does not wrap: out-of-range reads
// return 0 and out-of-range writes are dropped.
type PheromoneField struct {
	W, H     int
	CellSize float32

	HomeGrid []float32
	FoodGrid []float32

	// Parameters
	Max            float32
	DeadZone       float32
	DiffusionRate  float32
	DiffusionFloor float32
	NestIntensity  float32
	NestExtra      int

	// Scratch buffer for diffusion snapshots
	tmp []float32
}

// NewPheromoneField creates a zeroed field of w x h cells.
func NewPheromoneField(w, h int, cellSize float32, cfg *config.Config) *PheromoneField {
	pc := cfg.Pheromone
	return &PheromoneField{
		W: w, H: h,
		CellSize: cellSize,
		HomeGrid: make([]float32, w*h),
		FoodGrid: make([]float32, w*h),
		tmp:      make([]float32, w*h),

		Max:            float32(pc.Max),
		DeadZone:       float32(pc.DeadZone),
		DiffusionRate:  float32(pc.DiffusionRate),
		DiffusionFloor: float32(pc.DiffusionFloor),
		NestIntensity:  float32(pc.NestIntensity),
		NestExtra:      pc.NestRadiusExtra,
	}
}

func (pf *PheromoneField) grid(kind PheromoneKind) []float32 {
	if kind == Home {
		return pf.HomeGrid
	}
	return pf.FoodGrid
}

func (pf *PheromoneField) inBounds(cx, cy int) bool {
	return cx >= 0 && cy >= 0 && cx < pf.W && cy < pf.H
}

// CellAt maps world coordinates to a cell index pair.
func (pf *PheromoneField) CellAt(x, y float32) (int, int) {
	return int(math.Floor(float64(x / pf.CellSize))), int(math.Floor(float64(y / pf.CellSize)))
}

// Deposit adds amount to the cell, clamped to [0, Max]. Out-of-range cells are ignored.
func (pf *PheromoneField) Deposit(kind PheromoneKind, cx, cy int, amount float32) {
	if !pf.inBounds(cx, cy) {
		return
	}
	g := pf.grid(kind)
	i := cy*pf.W + cx
	g[i] = clampFloat(g[i]+amount, 0, pf.Max)
}

// DepositWorld deposits at the cell containing world position (x, y).
func (pf *PheromoneField) DepositWorld(kind PheromoneKind, x, y, amount float32) {
	cx, cy := pf.CellAt(x, y)
	pf.Deposit(kind, cx, cy, amount)
}

// Sample returns the cell value, or 0 outside the grid.
func (pf *PheromoneField) Sample(kind PheromoneKind, cx, cy int) float32 {
	if !pf.inBounds(cx, cy) {
		return 0
	}
	return pf.grid(kind)[cy*pf.W+cx]
}

// SampleWorld returns the value of the cell containing world position (x, y).
func (pf *PheromoneField) SampleWorld(kind PheromoneKind, x, y float32) float32 {
	cx, cy := pf.CellAt(x, y)
	return pf.Sample(kind, cx, cy)
}

// EmitFromNest raises the home grid around the nest to a radial floor.
// Cells already above the floor keep their value.
func (pf *PheromoneField) EmitFromNest(nest components.Nest) {
	ncx, ncy := pf.CellAt(nest.X, nest.Y)
	radius := int(math.Ceil(float64(nest.Radius()/pf.CellSize))) + pf.NestExtra
	if radius <= 0 {
		return
	}
	r := float32(radius)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			cx, cy := ncx+dx, ncy+dy
			if !pf.inBounds(cx, cy) {
				continue
			}
			d := float32(math.Sqrt(float64(dx*dx + dy*dy)))
			if d > r {
				continue
			}
			intensity := pf.NestIntensity * (1 - d/r)
			i := cy*pf.W + cx
			if intensity > pf.HomeGrid[i] {
				pf.HomeGrid[i] = intensity
			}
		}
	}
}

// Update runs diffusion then evaporation on both grids.
func (pf *PheromoneField) Update(evaporationRate float32) {
	pf.Diffuse()
	pf.Evaporate(evaporationRate)
}

// Diffuse spreads DiffusionRate of every cell above DiffusionFloor into its
// Moore neighbours. Each in-bounds neighbour gains value*rate/8 and the
// source loses only what it actually sent, so edge and corner cells keep
// more than interior cells. All reads come from a pre-diffusion snapshot.
func (pf *PheromoneField) Diffuse() {
	pf.diffuseGrid(pf.HomeGrid)
	pf.diffuseGrid(pf.FoodGrid)
}

func (pf *PheromoneField) diffuseGrid(g []float32) {
	w, h := pf.W, pf.H
	src := pf.tmp
	copy(src, g)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := src[y*w+x]
			if v <= pf.DiffusionFloor {
				continue
			}
			share := v * pf.DiffusionRate / 8
			var sent float32
			for oy := -1; oy <= 1; oy++ {
				ny := y + oy
				if ny < 0 || ny >= h {
					continue
				}
				for ox := -1; ox <= 1; ox++ {
					nx := x + ox
					if (ox == 0 && oy == 0) || nx < 0 || nx >= w {
						continue
					}
					g[ny*w+nx] += share
					sent += share
				}
			}
			g[y*w+x] -= sent
		}
	}

	for i := range g {
		g[i] = clampFloat(g[i], 0, pf.Max)
	}
}

// Evaporate removes rate*value from every cell and snaps values below DeadZone to 0.
func (pf *PheromoneField) Evaporate(rate float32) {
	rate = clamp01(rate)
	evaporateGrid(pf.HomeGrid, rate, pf.DeadZone)
	evaporateGrid(pf.FoodGrid, rate, pf.DeadZone)
}

func evaporateGrid(g []float32, rate, deadZone float32) {
	for i, v := range g {
		if v == 0 {
			continue
		}
		v -= v * rate
		if v < deadZone {
			v = 0
		}
		g[i] = v
	}
}

// Resize reallocates both grids to w x h, copying the overlapping region.
// Calling it with the current dimensions is a no-op.
func (pf *PheromoneField) Resize(w, h int) {
	if w == pf.W && h == pf.H {
		return
	}
	ow := min(w, pf.W)
	oh := min(h, pf.H)
	home := make([]float32, w*h)
	food := make([]float32, w*h)
	for y := 0; y < oh; y++ {
		copy(home[y*w:y*w+ow], pf.HomeGrid[y*pf.W:y*pf.W+ow])
		copy(food[y*w:y*w+ow], pf.FoodGrid[y*pf.W:y*pf.W+ow])
	}
	pf.W, pf.H = w, h
	pf.HomeGrid = home
	pf.FoodGrid = food
	pf.tmp = make([]float32, w*h)
}

// Clear zeroes both grids.
func (pf *PheromoneField) Clear() {
	clear(pf.HomeGrid)
	clear(pf.FoodGrid)
}

// Total returns the summed mass of one grid.
func (pf *PheromoneField) Total(kind PheromoneKind) float32 {
	var sum float32
	for _, v := range pf.grid(kind) {
		sum += v
	}
	return sum
}

// Peak returns the largest value in one grid.
func (pf *PheromoneField) Peak(kind PheromoneKind) float32 {
	var peak float32
	for _, v := range pf.grid(kind) {
		if v > peak {
			peak = v
		}
	}
	return peak
}

// GridSize returns the grid dimensions.
func (pf *PheromoneField) GridSize() (int, int) {
	return pf.W, pf.H
}
