package termview

import (
	"math"

	"github.com/pthm-cable/colony/telemetry"
)

// Glyphs drawn for each kind of object.
const (
	GlyphEmpty    = ' '
	GlyphNest     = 'N'
	GlyphFood     = '*'
	GlyphObstacle = '#'
	GlyphPredator = 'P'
	GlyphAnt      = 'a'
	GlyphCarrier  = 'A'
)

// Cell is one terminal character of the world view.
type Cell struct {
	Glyph rune
	Home  float32 // Home trail value sampled at the cell centre
	Food  float32
	Fill  float32 // Food source fill ratio when Glyph is GlyphFood
}

// Raster maps the whole world onto a cols x rows character grid. Each
// character covers a world rectangle of CellW x CellH units.
type Raster struct {
	Cols, Rows   int
	CellW, CellH float32
	Cells        []Cell

	worldW, worldH float32
}

// NewRaster creates an empty raster.
func NewRaster(cols, rows int) *Raster {
	cols, rows = max(cols, 1), max(rows, 1)
	return &Raster{Cols: cols, Rows: rows, Cells: make([]Cell, cols*rows)}
}

// At returns the cell at (col, row).
func (r *Raster) At(col, row int) Cell {
	return r.Cells[row*r.Cols+col]
}

// CellOf returns the character holding world point (wx, wy).
func (r *Raster) CellOf(wx, wy float32) (col, row int, ok bool) {
	if r.CellW <= 0 || r.CellH <= 0 {
		return 0, 0, false
	}
	if wx < 0 || wy < 0 || wx >= r.worldW || wy >= r.worldH {
		return 0, 0, false
	}
	col = min(int(wx/r.CellW), r.Cols-1)
	row = min(int(wy/r.CellH), r.Rows-1)
	return col, row, true
}

// WorldOf returns the world point at the centre of a character.
func (r *Raster) WorldOf(col, row int) (wx, wy float32) {
	return (float32(col) + 0.5) * r.CellW, (float32(row) + 0.5) * r.CellH
}

// Fill rasterises snap. Later layers overwrite earlier ones: pheromones,
// food, obstacles, nest, agents, predators.
func (r *Raster) Fill(snap *telemetry.Snapshot) {
	r.worldW, r.worldH = snap.WorldWidth, snap.WorldHeight
	r.CellW = snap.WorldWidth / float32(r.Cols)
	r.CellH = snap.WorldHeight / float32(r.Rows)

	for i := range r.Cells {
		r.Cells[i] = Cell{Glyph: GlyphEmpty}
	}
	r.samplePheromones(snap)

	for _, f := range snap.Foods {
		for _, i := range r.disc(f.X, f.Y, f.DisplaySize/2) {
			r.Cells[i].Glyph = GlyphFood
			r.Cells[i].Fill = f.Fill
		}
	}
	for _, o := range snap.Obstacles {
		for _, i := range r.disc(o.X, o.Y, o.Size/2) {
			r.Cells[i].Glyph = GlyphObstacle
		}
	}
	for _, i := range r.disc(snap.Nest.X, snap.Nest.Y, snap.Nest.Size/2) {
		r.Cells[i].Glyph = GlyphNest
	}
	for _, a := range snap.Ants {
		col, row, ok := r.CellOf(a.X, a.Y)
		if !ok {
			continue
		}
		c := &r.Cells[row*r.Cols+col]
		switch {
		case a.HasFood:
			c.Glyph = GlyphCarrier
		case c.Glyph == GlyphEmpty:
			c.Glyph = GlyphAnt
		}
	}
	for _, p := range snap.Predators {
		for _, i := range r.disc(p.X, p.Y, p.Size/2) {
			r.Cells[i].Glyph = GlyphPredator
		}
	}
}

func (r *Raster) samplePheromones(snap *telemetry.Snapshot) {
	gw, gh := snap.GridW, snap.GridH
	if len(snap.HomeGrid) != gw*gh || len(snap.FoodGrid) != gw*gh || snap.CellSize <= 0 {
		return
	}
	for row := 0; row < r.Rows; row++ {
		for col := 0; col < r.Cols; col++ {
			wx, wy := r.WorldOf(col, row)
			gx := min(int(wx/snap.CellSize), gw-1)
			gy := min(int(wy/snap.CellSize), gh-1)
			c := &r.Cells[row*r.Cols+col]
			c.Home = snap.HomeGrid[gy*gw+gx]
			c.Food = snap.FoodGrid[gy*gw+gx]
		}
	}
}

// disc returns the indices of characters whose centre lies within radius
// of (x, y). The character holding the centre is always included.
func (r *Raster) disc(x, y, radius float32) []int {
	col, row, ok := r.CellOf(x, y)
	if !ok {
		return nil
	}
	out := []int{row*r.Cols + col}

	spanX := int(math.Ceil(float64(radius / r.CellW)))
	spanY := int(math.Ceil(float64(radius / r.CellH)))
	for dy := -spanY; dy <= spanY; dy++ {
		for dx := -spanX; dx <= spanX; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			c, rw := col+dx, row+dy
			if c < 0 || rw < 0 || c >= r.Cols || rw >= r.Rows {
				continue
			}
			cx, cy := r.WorldOf(c, rw)
			ddx, ddy := cx-x, cy-y
			if ddx*ddx+ddy*ddy <= radius*radius {
				out = append(out, rw*r.Cols+c)
			}
		}
	}
	return out
}
