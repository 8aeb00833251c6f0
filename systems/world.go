package systems

import (
	"github.com/pthm-cable/colony/components"
)

// FoodRef points at the live components of one food source.
// Pointers stay valid while the ECS world is not structurally modified.
type FoodRef struct {
	Pos  *components.Position
	Food *components.Food
}

// World is the per-tick view agents query: bounds, nest, food, obstacles and predators.
type World struct {
	Width, Height float32
	Nest          *components.Nest

	Foods     []FoodRef
	Obstacles []Body
	Predators []Body

	obstacleGrid *SpatialGrid
	scratch      []int
}

// obstacleCellSize is the bucket size of the obstacle index.
const obstacleCellSize = 32

// NewWorld creates an empty world view.
func NewWorld(width, height float32, nest *components.Nest) *World {
	return &World{
		Width:        width,
		Height:       height,
		Nest:         nest,
		obstacleGrid: NewSpatialGrid(width, height, obstacleCellSize),
		scratch:      make([]int, 0, MaxQueryResults),
	}
}

// Reset clears all collections, keeping allocated capacity.
func (w *World) Reset() {
	w.Foods = w.Foods[:0]
	w.Obstacles = w.Obstacles[:0]
	w.Predators = w.Predators[:0]
	w.obstacleGrid.Clear()
}

// Resize changes the world bounds and rebuilds the obstacle index.
func (w *World) Resize(width, height float32) {
	w.Width, w.Height = width, height
	w.obstacleGrid = NewSpatialGrid(width, height, obstacleCellSize)
	w.IndexObstacles()
}

// AddObstacle appends an obstacle and indexes it.
func (w *World) AddObstacle(b Body) {
	w.Obstacles = append(w.Obstacles, b)
	w.obstacleGrid.Insert(len(w.Obstacles)-1, b)
}

// IndexObstacles rebuilds the obstacle index from the Obstacles slice.
func (w *World) IndexObstacles() {
	w.obstacleGrid.Clear()
	for i, b := range w.Obstacles {
		w.obstacleGrid.Insert(i, b)
	}
}

// InBounds reports whether (x, y) lies inside the world rectangle.
func (w *World) InBounds(x, y float32) bool {
	return x >= 0 && y >= 0 && x <= w.Width && y <= w.Height
}

// Wrap maps pos onto the torus and reports whether it crossed an edge.
func (w *World) Wrap(pos *components.Position) bool {
	x, y := wrap(pos.X, w.Width), wrap(pos.Y, w.Height)
	crossed := x != pos.X || y != pos.Y
	pos.X, pos.Y = x, y
	return crossed
}

// DistanceToNest returns the Euclidean distance from (x, y) to the nest centre.
func (w *World) DistanceToNest(x, y float32) float32 {
	return distance(x, y, w.Nest.X, w.Nest.Y)
}

// AtNest reports whether (x, y) is inside the nest.
func (w *World) AtNest(x, y float32) bool {
	return w.DistanceToNest(x, y) < w.Nest.Radius()
}

// NearestFood returns the index of the closest food source with amount > 0
// within radius, and its distance. The index is -1 when nothing is in range.
func (w *World) NearestFood(x, y, radius float32) (int, float32) {
	best := -1
	bestSq := radius * radius
	for i, f := range w.Foods {
		if f.Food.Amount <= 0 {
			continue
		}
		d := distanceSq(x, y, f.Pos.X, f.Pos.Y)
		if d <= bestSq {
			best = i
			bestSq = d
		}
	}
	if best < 0 {
		return -1, 0
	}
	return best, sqrt32(bestSq)
}

// ObstaclesNear returns indices of obstacles whose edge lies within radius of (x, y).
// The returned slice is reused by the next call.
func (w *World) ObstaclesNear(x, y, radius float32) []int {
	w.scratch = w.obstacleGrid.QueryRadiusInto(w.scratch[:0], x, y, radius, w.Obstacles)
	return w.scratch
}

// ObstacleOverlapping returns the first obstacle whose centre lies within
// its radius plus pad of (x, y), or -1.
func (w *World) ObstacleOverlapping(x, y, pad float32) int {
	for _, i := range w.ObstaclesNear(x, y, pad) {
		o := w.Obstacles[i]
		lim := o.Radius() + pad
		if distanceSq(x, y, o.X, o.Y) < lim*lim {
			return i
		}
	}
	return -1
}

// PredatorContact reports whether a body of the given size at (x, y) touches a predator.
func (w *World) PredatorContact(x, y, size float32) bool {
	for _, p := range w.Predators {
		lim := p.Radius() + size
		if distanceSq(x, y, p.X, p.Y) < lim*lim {
			return true
		}
	}
	return false
}

// FoodOverlapping returns the first food source whose centre lies within its
// radius of (x, y), or -1.
func (w *World) FoodOverlapping(x, y float32) int {
	for i, f := range w.Foods {
		r := f.Food.Size / 2
		if distanceSq(x, y, f.Pos.X, f.Pos.Y) < r*r {
			return i
		}
	}
	return -1
}
