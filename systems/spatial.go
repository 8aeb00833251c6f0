// Package systems provides the per-tick simulation systems: pheromone field,
// world queries, agent behaviour, avoidance, food and predators.
package systems

// Body is a circular world object identified by its index in a World slice.
type Body struct {
	X, Y float32
	Size float32 // Diameter
}

// Radius returns half the body diameter.
func (b Body) Radius() float32 {
	return b.Size / 2
}

// SpatialGrid provides cell-bucketed lookups over a slice of bodies.
// The world is not wrapped for these queries: obstacles act on the plane,
// and agents crossing the seam are pushed out after wrapping.
type SpatialGrid struct {
	cellSize float32
	cols     int
	rows     int
	cells    [][]int // body indices per cell
	maxR     float32 // largest inserted radius
}

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float32) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 4)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// Clear removes all bodies from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.maxR = 0
}

// Insert adds body i at the cell containing its centre.
func (g *SpatialGrid) Insert(i int, b Body) {
	idx := g.cellIndex(b.X, b.Y)
	g.cells[idx] = append(g.cells[idx], i)
	if r := b.Radius(); r > g.maxR {
		g.maxR = r
	}
}

// MaxQueryResults caps the number of bodies returned by spatial queries.
const MaxQueryResults = 64

// QueryRadiusInto appends to dst the indices of bodies whose edge lies within
// radius of (x, y). Reuse dst across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []int, x, y, radius float32, bodies []Body) []int {
	reach := radius + g.maxR
	cellRadius := int(reach/g.cellSize) + 1

	centerCol := int(x / g.cellSize)
	centerRow := int(y / g.cellSize)

	for dc := -cellRadius; dc <= cellRadius; dc++ {
		col := centerCol + dc
		if col < 0 || col >= g.cols {
			continue
		}
		for dr := -cellRadius; dr <= cellRadius; dr++ {
			row := centerRow + dr
			if row < 0 || row >= g.rows {
				continue
			}
			for _, i := range g.cells[row*g.cols+col] {
				b := bodies[i]
				lim := radius + b.Radius()
				if distanceSq(x, y, b.X, b.Y) <= lim*lim {
					dst = append(dst, i)
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}

	return dst
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y float32) int {
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return row*g.cols + col
}
