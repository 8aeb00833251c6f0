package telemetry

import (
	"math"

	"github.com/pthm-cable/colony/components"
)

// Collector accumulates foraging events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	spawns        int
	pickups       int
	deliveries    int
	depletions    int
	regrowths     int
	deathsStarved int
	deathsOldAge  int
	deathsEaten   int
	rejected      int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(math.Round(windowDurationSec / float64(dt)))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordSpawn records a new agent.
func (c *Collector) RecordSpawn() {
	c.spawns++
}

// RecordPickup records a unit of food taken from a source.
func (c *Collector) RecordPickup() {
	c.pickups++
}

// RecordDelivery records a unit of food brought to the nest.
func (c *Collector) RecordDelivery() {
	c.deliveries++
}

// RecordDepletion records a source emptied and replaced.
func (c *Collector) RecordDepletion() {
	c.depletions++
}

// RecordRegrowth records a unit regrown by a food source.
func (c *Collector) RecordRegrowth() {
	c.regrowths++
}

// RecordRejectedPlacement records a placement refused by validation.
func (c *Collector) RecordRejectedPlacement() {
	c.rejected++
}

// RecordDeath records an agent removal by cause.
func (c *Collector) RecordDeath(cause components.DeathCause) {
	switch cause {
	case components.Starved:
		c.deathsStarved++
	case components.OldAge:
		c.deathsOldAge++
	case components.Eaten:
		c.deathsEaten++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Sample is the state of the colony at window end, gathered by the caller.
type Sample struct {
	Agents        int
	Returning     int
	FoodSources   int
	FoodRemaining int
	Obstacles     int
	Predators     int
	FoodCollected int
	Efficiency    int
	Energies      []float64
	Ages          []float64
	HomeMass      float64
	FoodMass      float64
	HomePeak      float64
	FoodPeak      float64
	Daylight      float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, s Sample) WindowStats {
	var returningFrac float64
	if s.Agents > 0 {
		returningFrac = float64(s.Returning) / float64(s.Agents)
	}

	energyMean, energyP10, energyP50, energyP90 := ComputeEnergyStats(s.Energies)
	ageMean, ageStd := ComputeMeanStd(s.Ages)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Agents:      s.Agents,
		FoodSources: s.FoodSources,
		Obstacles:   s.Obstacles,
		Predators:   s.Predators,

		Spawns:        c.spawns,
		Pickups:       c.pickups,
		Deliveries:    c.deliveries,
		Depletions:    c.depletions,
		Regrowths:     c.regrowths,
		DeathsStarved: c.deathsStarved,
		DeathsOldAge:  c.deathsOldAge,
		DeathsEaten:   c.deathsEaten,
		Rejected:      c.rejected,

		FoodCollected:     s.FoodCollected,
		Efficiency:        s.Efficiency,
		FoodRemaining:     s.FoodRemaining,
		ReturningFraction: returningFrac,

		EnergyMean: energyMean,
		EnergyP10:  energyP10,
		EnergyP50:  energyP50,
		EnergyP90:  energyP90,
		AgeMean:    ageMean,
		AgeStd:     ageStd,

		HomeMass: s.HomeMass,
		FoodMass: s.FoodMass,
		HomePeak: s.HomePeak,
		FoodPeak: s.FoodPeak,
		Daylight: s.Daylight,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.spawns = 0
	c.pickups = 0
	c.deliveries = 0
	c.depletions = 0
	c.regrowths = 0
	c.deathsStarved = 0
	c.deathsOldAge = 0
	c.deathsEaten = 0
	c.rejected = 0

	return stats
}

// Restart discards the current window and starts a new one at tick.
func (c *Collector) Restart(tick int32) {
	*c = Collector{
		windowDurationSec:   c.windowDurationSec,
		windowDurationTicks: c.windowDurationTicks,
		dt:                  c.dt,
		windowStartTick:     tick,
	}
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
