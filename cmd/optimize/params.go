// Package main searches for colony parameters that maximise foraging
// efficiency in headless runs.
package main

import (
	"github.com/pthm-cable/colony/config"
	"github.com/pthm-cable/colony/game"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Path string  // Config path for logging
	Min  float64 // Lower bound
	Max  float64 // Upper bound

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters: the
// three user-facing trail knobs plus the steering constants they interact with.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "pheromone_strength", Path: "sim.pheromone_strength", Min: 1, Max: 10,
				get: func(c *config.Config) float64 { return c.Sim.PheromoneStrength },
				set: func(c *config.Config, v float64) { c.Sim.PheromoneStrength = v }},
			{Name: "evaporation_rate", Path: "sim.evaporation_rate", Min: 0.001, Max: 0.1,
				get: func(c *config.Config) float64 { return c.Sim.EvaporationRate },
				set: func(c *config.Config, v float64) { c.Sim.EvaporationRate = v }},
			{Name: "agent_speed", Path: "sim.agent_speed", Min: 0.5, Max: 5,
				get: func(c *config.Config) float64 { return c.Sim.AgentSpeed },
				set: func(c *config.Config, v float64) { c.Sim.AgentSpeed = v }},
			{Name: "diffusion_rate", Path: "pheromone.diffusion_rate", Min: 0, Max: 0.2,
				get: func(c *config.Config) float64 { return c.Pheromone.DiffusionRate },
				set: func(c *config.Config, v float64) { c.Pheromone.DiffusionRate = v }},
			{Name: "follow_max", Path: "pheromone.follow_max", Min: 0.05, Max: 0.6,
				get: func(c *config.Config) float64 { return c.Pheromone.FollowMax },
				set: func(c *config.Config, v float64) { c.Pheromone.FollowMax = v }},
			{Name: "wander", Path: "ant.wander", Min: 0.05, Max: 0.8,
				get: func(c *config.Config) float64 { return c.Ant.Wander },
				set: func(c *config.Config, v float64) { c.Ant.Wander = v }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Names returns the parameter names in vector order.
func (pv *ParamVector) Names() []string {
	names := make([]string, len(pv.Specs))
	for i, spec := range pv.Specs {
		names[i] = spec.Name
	}
	return names
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}

// Options returns the run options for cfg's sim section.
func Options(cfg *config.Config) game.Options {
	return game.OptionsFromConfig(cfg).Normalize()
}
