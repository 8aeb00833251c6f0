package game

import (
	"github.com/pthm-cable/colony/systems"
	"github.com/pthm-cable/colony/telemetry"
)

// Snapshot returns a deep copy of the full simulation state, including
// both pheromone grids. It never mutates the simulation.
func (s *Simulation) Snapshot() *telemetry.Snapshot {
	snap := s.LightSnapshot()
	snap.HomeGrid, snap.FoodGrid = s.Pheromones()
	return snap
}

// LightSnapshot is Snapshot without the pheromone grids.
func (s *Simulation) LightSnapshot() *telemetry.Snapshot {
	gw, gh := s.field.GridSize()
	return &telemetry.Snapshot{
		Version:       telemetry.SnapshotVersion,
		RunID:         s.runID,
		RNGSeed:       s.seed,
		Tick:          s.tick,
		ElapsedSec:    s.elapsed,
		Paused:        s.paused,
		Daylight:      s.dayNight.Daylight(),
		Night:         s.opts.DayNightEnabled && s.dayNight.Night(),
		FoodCollected: s.foodCollected,
		TotalCreated:  s.totalCreated,
		Efficiency:    s.Efficiency(),
		WorldWidth:    s.width,
		WorldHeight:   s.height,
		CellSize:      s.cellSize,
		Nest: telemetry.NestState{
			X:          s.nest.X,
			Y:          s.nest.Y,
			Size:       s.nest.Size,
			FoodStored: s.nest.FoodStored,
		},
		Ants:      s.Agents(),
		Foods:     s.Foods(),
		Obstacles: s.Obstacles(),
		Predators: s.Predators(),
		GridW:     gw,
		GridH:     gh,
	}
}

// Agents returns a copy of every live agent.
func (s *Simulation) Agents() []telemetry.AntState {
	out := make([]telemetry.AntState, 0, s.activeAgents)
	query := s.antFilter.Query()
	for query.Next() {
		pos, mot, ant, av := query.Get()
		out = append(out, telemetry.AntState{
			X:         pos.X,
			Y:         pos.Y,
			Heading:   mot.Heading,
			Speed:     mot.Speed,
			State:     ant.State.String(),
			HasFood:   ant.HasFood,
			Energy:    ant.Energy,
			Age:       ant.Age,
			Strategy:  uint8(av.Strategy),
			StuckTime: av.StuckCounter,
		})
	}
	return out
}

// Foods returns a copy of every food source.
func (s *Simulation) Foods() []telemetry.FoodState {
	minScale := s.foodParams.DisplayMinScale
	var out []telemetry.FoodState
	query := s.foodFilter.Query()
	for query.Next() {
		pos, food := query.Get()
		out = append(out, telemetry.FoodState{
			X:              pos.X,
			Y:              pos.Y,
			Size:           food.Size,
			DisplaySize:    systems.DisplaySize(*food, minScale),
			Amount:         food.Amount,
			OriginalAmount: food.OriginalAmount,
			Fill:           systems.FillRatio(*food),
		})
	}
	return out
}

// Obstacles returns a copy of every obstacle.
func (s *Simulation) Obstacles() []telemetry.BodyState {
	var out []telemetry.BodyState
	query := s.obstacleFilter.Query()
	for query.Next() {
		pos, obs := query.Get()
		out = append(out, telemetry.BodyState{X: pos.X, Y: pos.Y, Size: obs.Size})
	}
	return out
}

// Predators returns a copy of every predator.
func (s *Simulation) Predators() []telemetry.PredatorState {
	var out []telemetry.PredatorState
	query := s.predatorFilter.Query()
	for query.Next() {
		pos, mot, pred := query.Get()
		out = append(out, telemetry.PredatorState{
			X:       pos.X,
			Y:       pos.Y,
			Size:    pred.Size,
			Heading: mot.Heading,
			Speed:   mot.Speed,
		})
	}
	return out
}

// Pheromones returns copies of the home and food grids, row-major.
func (s *Simulation) Pheromones() (home, food []float32) {
	home = make([]float32, len(s.field.HomeGrid))
	copy(home, s.field.HomeGrid)
	food = make([]float32, len(s.field.FoodGrid))
	copy(food, s.field.FoodGrid)
	return home, food
}
