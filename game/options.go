package game

import "github.com/pthm-cable/colony/config"

// Options are the user-facing knobs of a run.
type Options struct {
	AgentTarget       int     `json:"agent_target"`
	FoodSourceTarget  int     `json:"food_source_target"`
	PheromoneStrength float64 `json:"pheromone_strength"` // 1-10
	EvaporationRate   float64 `json:"evaporation_rate"`   // 0-1
	AgentSpeed        float64 `json:"agent_speed"`
	DayNightEnabled   bool    `json:"day_night_enabled"`
}

// OptionsFromConfig returns the options in the sim section of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		AgentTarget:       cfg.Sim.AgentTarget,
		FoodSourceTarget:  cfg.Sim.FoodSourceTarget,
		PheromoneStrength: cfg.Sim.PheromoneStrength,
		EvaporationRate:   cfg.Sim.EvaporationRate,
		AgentSpeed:        cfg.Sim.AgentSpeed,
		DayNightEnabled:   cfg.Sim.DayNightEnabled,
	}
}

// Normalize clamps every field into its valid range.
func (o Options) Normalize() Options {
	o.AgentTarget = max(o.AgentTarget, 0)
	o.FoodSourceTarget = max(o.FoodSourceTarget, 0)
	o.PheromoneStrength = min(max(o.PheromoneStrength, 1), 10)
	o.EvaporationRate = min(max(o.EvaporationRate, 0), 1)
	o.AgentSpeed = max(o.AgentSpeed, 0)
	return o
}
