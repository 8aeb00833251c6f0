// Package game owns the simulation state and drives the per-tick update.
package game

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/systems"
	"github.com/pthm-cable/colony/telemetry"
)

// Stats are the counters returned by every Tick.
type Stats struct {
	FoodCollected int     `json:"food_collected"`
	ActiveAgents  int     `json:"active_agents"`
	ElapsedTime   float64 `json:"elapsed_time"` // Simulated seconds
	Efficiency    int     `json:"efficiency"`   // Percent of created agents' worth of food delivered
}

// Clock formats the elapsed simulated time as mm:ss.
func (st Stats) Clock() string {
	secs := int(st.ElapsedTime)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// Simulation is a single, self-contained colony. It is not safe for
// concurrent use; transports serialise access through their own lock.
type Simulation struct {
	cfg    *config.Config
	logger *slog.Logger
	seed   int64
	rng    *rand.Rand

	// ECS
	world          *ecs.World
	antMap         *ecs.Map4[components.Position, components.Motion, components.Ant, components.Avoidance]
	antFilter      *ecs.Filter4[components.Position, components.Motion, components.Ant, components.Avoidance]
	foodMap        *ecs.Map2[components.Position, components.Food]
	foodFilter     *ecs.Filter2[components.Position, components.Food]
	obstacleMap    *ecs.Map2[components.Position, components.Obstacle]
	obstacleFilter *ecs.Filter2[components.Position, components.Obstacle]
	predatorMap    *ecs.Map3[components.Position, components.Motion, components.Predator]
	predatorFilter *ecs.Filter3[components.Position, components.Motion, components.Predator]

	nest  components.Nest
	view  *systems.World
	field *systems.PheromoneField

	// Parameters, rebuilt by Configure
	opts        Options
	antParams   systems.AntParams
	avoidParams systems.AvoidParams
	foodParams  systems.FoodParams
	predParams  systems.PredatorParams
	env         systems.Env

	dayNight DayNight

	// Counters
	tick          int32
	elapsed       float64
	foodCollected int
	totalCreated  int
	activeAgents  int
	paused        bool

	width, height float32
	cellSize      float32
	dt            float64
	spawnInterval int32

	dead []ecs.Entity

	// Optional telemetry, nil when disabled
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	store         *telemetry.Store
	runID         string
	logStats      bool
	snapshotDir   string
	statsCallback func(telemetry.WindowStats)
}

// New creates a simulation sized to the configured world and resets it with opts.
func New(cfg *config.Config, opts Options, seed int64) *Simulation {
	s := &Simulation{
		cfg:           cfg,
		logger:        slog.Default(),
		seed:          seed,
		rng:           rand.New(rand.NewSource(seed)),
		width:         cfg.Derived.WorldW32,
		height:        cfg.Derived.WorldH32,
		cellSize:      cfg.Derived.CellSize32,
		dt:            cfg.Sim.DT,
		spawnInterval: int32(cfg.Population.SpawnInterval),
		avoidParams:   systems.NewAvoidParams(cfg),
		foodParams:    systems.NewFoodParams(cfg, seed),
		predParams:    systems.NewPredatorParams(cfg),
	}
	s.env = systems.Env{
		Rng:             s.rng,
		Ant:             &s.antParams,
		Avoid:           &s.avoidParams,
		Food:            &s.foodParams,
		SpeedMultiplier: 1,
	}
	s.Reset(opts)
	return s
}

// SetLogger replaces the logger used for lifecycle events.
func (s *Simulation) SetLogger(l *slog.Logger) {
	s.logger = l
}

// initECS creates a fresh ark world with its mappers and filters.
func (s *Simulation) initECS() {
	world := ecs.NewWorld()
	s.world = world
	s.antMap = ecs.NewMap4[components.Position, components.Motion, components.Ant, components.Avoidance](world)
	s.antFilter = ecs.NewFilter4[components.Position, components.Motion, components.Ant, components.Avoidance](world)
	s.foodMap = ecs.NewMap2[components.Position, components.Food](world)
	s.foodFilter = ecs.NewFilter2[components.Position, components.Food](world)
	s.obstacleMap = ecs.NewMap2[components.Position, components.Obstacle](world)
	s.obstacleFilter = ecs.NewFilter2[components.Position, components.Obstacle](world)
	s.predatorMap = ecs.NewMap3[components.Position, components.Motion, components.Predator](world)
	s.predatorFilter = ecs.NewFilter3[components.Position, components.Motion, components.Predator](world)
}

// Configure applies new options to the running simulation. Pheromone
// strength, evaporation, targets and day/night take effect on the next tick;
// agent speed applies to agents spawned from now on.
func (s *Simulation) Configure(opts Options) {
	s.opts = opts.Normalize()
	s.antParams = systems.NewAntParams(s.cfg, float32(s.opts.PheromoneStrength))
}

// Options returns the active, normalised options.
func (s *Simulation) Options() Options {
	return s.opts
}

// Reset rebuilds every entity collection and the pheromone field from opts
// and returns the fresh state.
func (s *Simulation) Reset(opts Options) *telemetry.Snapshot {
	s.Configure(opts)
	s.initECS()

	s.nest = components.Nest{X: s.width / 2, Y: s.height / 2, Size: float32(s.cfg.Nest.Size)}
	s.view = systems.NewWorld(s.width, s.height, &s.nest)
	gw, gh := config.GridDims(s.width, s.height, s.cellSize)
	s.field = systems.NewPheromoneField(gw, gh, s.cellSize, s.cfg)
	s.env.World = s.view
	s.env.Field = s.field

	s.dayNight = newDayNight(s.cfg)
	s.tick = 0
	s.elapsed = 0
	s.foodCollected = 0
	s.totalCreated = 0
	s.activeAgents = 0

	for i := 0; i < s.opts.FoodSourceTarget; i++ {
		pos, food := systems.GenerateFood(s.rng, s.view, &s.foodParams)
		s.foodMap.NewEntity(&pos, &food)
	}
	for i := 0; i < s.opts.AgentTarget; i++ {
		s.spawnAnt()
	}
	s.syncObstacles()
	s.syncFoods()
	s.syncPredators()

	if s.collector != nil {
		s.collector.Restart(0)
	}

	s.logger.Info("simulation reset",
		"agents", s.opts.AgentTarget,
		"food_sources", s.opts.FoodSourceTarget,
		"world_w", s.width,
		"world_h", s.height,
		"grid_w", gw,
		"grid_h", gh,
	)
	return s.Snapshot()
}

// Tick advances the simulation by one step and returns the counters.
// While paused it returns the current counters without advancing.
func (s *Simulation) Tick() Stats {
	if !s.paused {
		s.step()
	}
	return s.Stats()
}

// step runs a single tick in fixed order.
func (s *Simulation) step() {
	perf := s.perfCollector
	if perf != nil {
		perf.StartTick()
	}

	s.tick++
	if s.opts.DayNightEnabled {
		s.dayNight.Advance()
	}

	s.phase(telemetry.PhaseFood)
	s.syncFoods()
	s.regrowFood()

	s.phase(telemetry.PhasePredators)
	s.updatePredators()

	s.phase(telemetry.PhaseNest)
	s.field.EmitFromNest(s.nest)

	s.phase(telemetry.PhaseAgents)
	s.updateAnts()

	s.phase(telemetry.PhaseCleanup)
	s.removeDead()

	s.phase(telemetry.PhasePheromones)
	s.field.Update(float32(s.opts.EvaporationRate))

	s.phase(telemetry.PhasePopulation)
	s.topUpPopulation()

	s.elapsed += s.dt

	s.phase(telemetry.PhaseTelemetry)
	s.flushTelemetry()

	if perf != nil {
		perf.EndTick(s.activeAgents)
	}
}

func (s *Simulation) phase(p telemetry.Phase) {
	if s.perfCollector != nil {
		s.perfCollector.StartPhase(p)
	}
}

// syncFoods refreshes the world view's food references. Must run after any
// structural change to the ECS world.
func (s *Simulation) syncFoods() {
	s.view.Foods = s.view.Foods[:0]
	query := s.foodFilter.Query()
	for query.Next() {
		pos, food := query.Get()
		s.view.Foods = append(s.view.Foods, systems.FoodRef{Pos: pos, Food: food})
	}
}

// syncPredators refreshes the predator bodies used for contact checks.
func (s *Simulation) syncPredators() {
	s.view.Predators = s.view.Predators[:0]
	query := s.predatorFilter.Query()
	for query.Next() {
		pos, _, pred := query.Get()
		s.view.Predators = append(s.view.Predators, systems.Body{X: pos.X, Y: pos.Y, Size: pred.Size})
	}
}

// syncObstacles rebuilds the obstacle bodies and their index.
func (s *Simulation) syncObstacles() {
	s.view.Obstacles = s.view.Obstacles[:0]
	query := s.obstacleFilter.Query()
	for query.Next() {
		pos, obs := query.Get()
		s.view.Obstacles = append(s.view.Obstacles, systems.Body{X: pos.X, Y: pos.Y, Size: obs.Size})
	}
	s.view.IndexObstacles()
}

func (s *Simulation) regrowFood() {
	for _, f := range s.view.Foods {
		if systems.RegrowFood(f.Food) && s.collector != nil {
			s.collector.RecordRegrowth()
		}
	}
}

func (s *Simulation) updatePredators() {
	query := s.predatorFilter.Query()
	for query.Next() {
		pos, mot, _ := query.Get()
		systems.StepPredator(pos, mot, s.width, s.height)
	}
	s.syncPredators()
}

// updateAnts runs every agent once. Deaths are collected, not removed,
// so the query is never structurally modified mid-iteration.
func (s *Simulation) updateAnts() {
	s.env.SpeedMultiplier = s.dayNight.SpeedMultiplier(s.opts.DayNightEnabled)
	s.dead = s.dead[:0]

	query := s.antFilter.Query()
	for query.Next() {
		pos, mot, ant, av := query.Get()
		if ant.Dead {
			s.dead = append(s.dead, query.Entity())
			continue
		}

		out := systems.UpdateAnt(&s.env, pos, mot, ant, av)
		if out.PickedUp {
			s.recordPickup(out.Depleted)
		}
		if out.Delivered {
			s.foodCollected++
			if s.collector != nil {
				s.collector.RecordDelivery()
			}
		}
		if ant.Dead {
			s.dead = append(s.dead, query.Entity())
			if s.collector != nil {
				s.collector.RecordDeath(ant.Cause)
			}
		}
	}
}

func (s *Simulation) recordPickup(depleted bool) {
	if s.collector != nil {
		s.collector.RecordPickup()
		if depleted {
			s.collector.RecordDepletion()
		}
	}
	if depleted {
		s.logger.Debug("food source depleted and replaced", "tick", s.tick)
	}
}

// removeDead compacts the agents marked during updateAnts.
func (s *Simulation) removeDead() {
	for _, e := range s.dead {
		s.world.RemoveEntity(e)
	}
	s.activeAgents -= len(s.dead)
	s.dead = s.dead[:0]
}

// topUpPopulation spawns one agent every spawnInterval ticks while below target.
func (s *Simulation) topUpPopulation() {
	if s.tick%s.spawnInterval != 0 || s.activeAgents >= s.opts.AgentTarget {
		return
	}
	s.spawnAnt()
}

// spawnAnt creates an agent at the nest with a little positional jitter.
func (s *Simulation) spawnAnt() {
	j := s.antParams.SpawnJitter
	x := s.nest.X + (s.rng.Float32()*2-1)*j
	y := s.nest.Y + (s.rng.Float32()*2-1)*j
	pos, mot, ant := systems.NewAnt(s.rng, &s.antParams, x, y, float32(s.opts.AgentSpeed))
	av := components.Avoidance{}
	s.antMap.NewEntity(&pos, &mot, &ant, &av)

	s.totalCreated++
	s.activeAgents++
	if s.collector != nil {
		s.collector.RecordSpawn()
	}
}

// SetPaused sets the pause flag. Paused ticks still report stats.
func (s *Simulation) SetPaused(p bool) {
	s.paused = p
}

// Paused reports whether the simulation is paused.
func (s *Simulation) Paused() bool {
	return s.paused
}

// Stats returns the current counters without advancing.
func (s *Simulation) Stats() Stats {
	return Stats{
		FoodCollected: s.foodCollected,
		ActiveAgents:  s.activeAgents,
		ElapsedTime:   s.elapsed,
		Efficiency:    s.Efficiency(),
	}
}

// Efficiency is food delivered per agent ever created, as a rounded percentage.
func (s *Simulation) Efficiency() int {
	if s.totalCreated == 0 {
		return 0
	}
	return int(math.Round(float64(s.foodCollected) / float64(s.totalCreated) * 100))
}

// CurrentTick returns the number of steps taken since the last reset.
func (s *Simulation) CurrentTick() int32 {
	return s.tick
}

// TotalCreated returns the number of agents created since the last reset.
func (s *Simulation) TotalCreated() int {
	return s.totalCreated
}

// Nest returns a copy of the nest.
func (s *Simulation) Nest() components.Nest {
	return s.nest
}

// WorldSize returns the world bounds.
func (s *Simulation) WorldSize() (float32, float32) {
	return s.width, s.height
}

// Seed returns the RNG seed the simulation was created with.
func (s *Simulation) Seed() int64 {
	return s.seed
}
