package game

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/systems"
)

// PlaceFood adds a food source at (x, y). It is rejected outside the world,
// too close to the nest, or on top of an obstacle.
func (s *Simulation) PlaceFood(x, y float32) bool {
	pc := s.cfg.Placement
	if !s.view.InBounds(x, y) || s.view.DistanceToNest(x, y) < float32(pc.FoodNestDistance) {
		return s.reject("food", x, y)
	}
	if s.view.ObstacleOverlapping(x, y, 0) >= 0 {
		return s.reject("food", x, y)
	}

	pos := components.Position{X: x, Y: y}
	food := systems.NewFood(s.rng, &s.foodParams, x, y)
	s.foodMap.NewEntity(&pos, &food)
	s.syncFoods()
	return true
}

// PlaceObstacle adds an obstacle of random size at (x, y). It is rejected
// outside the world, too close to the nest, on a food source, or
// overlapping another obstacle.
func (s *Simulation) PlaceObstacle(x, y float32) bool {
	pc := s.cfg.Placement
	if !s.view.InBounds(x, y) || s.view.DistanceToNest(x, y) < float32(pc.ObstacleNestDistance) {
		return s.reject("obstacle", x, y)
	}
	if s.view.FoodOverlapping(x, y) >= 0 {
		return s.reject("obstacle", x, y)
	}

	oc := s.cfg.Obstacle
	size := float32(oc.MinSize) + s.rng.Float32()*float32(oc.MaxSize-oc.MinSize)
	if s.view.ObstacleOverlapping(x, y, size/2) >= 0 {
		return s.reject("obstacle", x, y)
	}

	pos := components.Position{X: x, Y: y}
	obs := components.Obstacle{Size: size}
	s.obstacleMap.NewEntity(&pos, &obs)
	s.syncObstacles()
	s.syncFoods()
	return true
}

// PlacePredator adds a predator at (x, y). It is rejected outside the world,
// too close to the nest, or on an obstacle or food source.
func (s *Simulation) PlacePredator(x, y float32) bool {
	pc := s.cfg.Placement
	if !s.view.InBounds(x, y) || s.view.DistanceToNest(x, y) < float32(pc.PredatorNestDistance) {
		return s.reject("predator", x, y)
	}
	if s.view.ObstacleOverlapping(x, y, 0) >= 0 || s.view.FoodOverlapping(x, y) >= 0 {
		return s.reject("predator", x, y)
	}

	pos, mot, pred := systems.NewPredator(s.rng, &s.predParams, x, y)
	s.predatorMap.NewEntity(&pos, &mot, &pred)
	s.syncFoods()
	s.syncPredators()
	return true
}

// DragStepReached reports whether a drag has travelled strictly more than
// spacing since the last drop, so the next item may be placed.
func DragStepReached(fromX, fromY, toX, toY float32, spacing float64) bool {
	return math.Hypot(float64(toX-fromX), float64(toY-fromY)) > spacing
}

func (s *Simulation) reject(kind string, x, y float32) bool {
	if s.collector != nil {
		s.collector.RecordRejectedPlacement()
	}
	s.logger.Debug("placement rejected", "kind", kind, "x", x, "y", y)
	return false
}

// Resize changes the world bounds and reallocates the pheromone field,
// keeping the values of cells present in both grids. The nest stays where it
// is unless the new bounds cut into it, in which case it is pulled back
// inside. Obstacles and predators left outside are removed, stranded food
// sources are regenerated and agents are wrapped back onto the world.
// Calling it with the current size is a no-op.
func (s *Simulation) Resize(width, height float32) {
	if width <= 0 || height <= 0 {
		return
	}
	if width == s.width && height == s.height {
		return
	}

	s.width, s.height = width, height
	s.view.Resize(width, height)
	gw, gh := config.GridDims(width, height, s.cellSize)
	s.field.Resize(gw, gh)

	s.fitNest()
	removed := s.dropOutside()
	s.syncObstacles()
	s.syncPredators()
	s.syncFoods()

	replaced := 0
	for i, f := range s.view.Foods {
		if !s.view.InBounds(f.Pos.X, f.Pos.Y) {
			systems.ReplaceFood(s.rng, s.view, &s.foodParams, i)
			replaced++
		}
	}

	query := s.antFilter.Query()
	for query.Next() {
		pos, _, _, _ := query.Get()
		s.view.Wrap(pos)
	}

	s.logger.Info("world resized",
		"world_w", width,
		"world_h", height,
		"grid_w", gw,
		"grid_h", gh,
		"nest_x", s.nest.X,
		"nest_y", s.nest.Y,
		"removed", removed,
		"food_replaced", replaced,
	)
}

// fitNest clamps the nest so its disc lies inside the world, centring it on
// an axis too short to hold it.
func (s *Simulation) fitNest() {
	r := s.nest.Radius()
	s.nest.X = fitAxis(s.nest.X, r, s.width)
	s.nest.Y = fitAxis(s.nest.Y, r, s.height)
}

func fitAxis(v, r, size float32) float32 {
	if size < 2*r {
		return size / 2
	}
	return min(max(v, r), size-r)
}

// dropOutside removes obstacles and predators whose centre left the world.
func (s *Simulation) dropOutside() int {
	var gone []ecs.Entity

	obstacles := s.obstacleFilter.Query()
	for obstacles.Next() {
		pos, _ := obstacles.Get()
		if !s.view.InBounds(pos.X, pos.Y) {
			gone = append(gone, obstacles.Entity())
		}
	}
	predators := s.predatorFilter.Query()
	for predators.Next() {
		pos, _, _ := predators.Get()
		if !s.view.InBounds(pos.X, pos.Y) {
			gone = append(gone, predators.Entity())
		}
	}

	for _, e := range gone {
		s.world.RemoveEntity(e)
	}
	return len(gone)
}
