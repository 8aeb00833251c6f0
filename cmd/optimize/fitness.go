package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/game"
	"github.com/pthm-cable/colony/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
	lastRate    float64 // deliveries per simulated minute, same call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0, // 10 seconds per window
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// LastRate returns the mean delivery rate from the most recent evaluation.
func (fe *FitnessEvaluator) LastRate() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastRate
}

// runResult holds the results from a single simulation run.
type runResult struct {
	stats       game.Stats
	windowStats []telemetry.WindowStats // collected via StatsCallback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
	rate    float64
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.configFor(x)

	// Run all seeds in parallel; each simulation owns its rng and world.
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			r := fe.runSimulation(cfg, s)
			quality := computeQuality(r.windowStats)
			rate := deliveryRate(r.stats)
			results[idx] = seedResult{
				fitness: computeFitness(rate, quality),
				quality: quality,
				rate:    rate,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality, totalRate float64
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		totalRate += r.rate
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = totalQuality / n
	fe.lastRate = totalRate / n
	fe.mu.Unlock()

	return totalFitness / n
}

// configFor returns a copy of the base config with x applied.
func (fe *FitnessEvaluator) configFor(x []float64) *config.Config {
	cp := *fe.baseConfig
	cfg := &cp
	fe.params.ApplyToConfig(cfg, x)
	return cfg
}

// runSimulation executes a single headless run for maxTicks.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) *runResult {
	result := &runResult{}

	sim := game.New(cfg, Options(cfg), seed)
	defer sim.Close()

	err := sim.EnableTelemetry(game.TelemetryOptions{
		StatsWindowSec: fe.statsWindow,
		PerfWindow:     cfg.Telemetry.PerfCollectorWindow,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return result
	}

	for sim.CurrentTick() < fe.maxTicks {
		result.stats = sim.Tick()
	}
	return result
}

// deliveryRate is food delivered per simulated minute.
func deliveryRate(s game.Stats) float64 {
	if s.ElapsedTime <= 0 {
		return 0
	}
	return float64(s.FoodCollected) / (s.ElapsedTime / 60)
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: -(rate × (1.0 + 0.2 × quality))
// Throughput dominates; quality breaks ties between similar rates.
func computeFitness(rate, quality float64) float64 {
	return -(rate * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightSteadiness = 0.4
	qualityWeightPopulation = 0.3
	qualityWeightTrails     = 0.3

	qualityWarmupWindows = 2 // skip first N windows while trails form
)

// computeQuality scores how healthy a run looked, in [0, 1]: steady
// deliveries across windows, few starvation deaths, and a share of agents
// returning rather than lost.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	deliveries := make([]float64, len(valid))
	var deaths, spawns float64
	var returning float64
	for i, w := range valid {
		deliveries[i] = float64(w.Deliveries)
		deaths += float64(w.DeathsStarved)
		spawns += float64(w.Spawns)
		returning += w.ReturningFraction
	}

	// 1. Steady throughput: low coefficient of variation of deliveries
	steadiness := 0.0
	if len(deliveries) >= 2 {
		if mean, std := stat.MeanStdDev(deliveries, nil); mean > 0 {
			cv := std / mean
			steadiness = math.Exp(-cv * cv)
		}
	}

	// 2. Population: starvation relative to spawns
	population := 1.0
	if spawns > 0 {
		population = 1 - clamp01(deaths/spawns)
	}

	// 3. Trails in use: returning fraction near one third
	meanReturning := returning / float64(len(valid))
	trails := math.Exp(-math.Pow((meanReturning-0.33)/0.2, 2))

	return clamp01(qualityWeightSteadiness*steadiness +
		qualityWeightPopulation*population +
		qualityWeightTrails*trails)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
