package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population and world counts at window end
	Agents      int `csv:"agents"`
	FoodSources int `csv:"food_sources"`
	Obstacles   int `csv:"obstacles"`
	Predators   int `csv:"predators"`

	// Events during window
	Spawns        int `csv:"spawns"`
	Pickups       int `csv:"pickups"`
	Deliveries    int `csv:"deliveries"`
	Depletions    int `csv:"depletions"`
	Regrowths     int `csv:"regrowths"`
	DeathsStarved int `csv:"deaths_starved"`
	DeathsOldAge  int `csv:"deaths_old_age"`
	DeathsEaten   int `csv:"deaths_eaten"`
	Rejected      int `csv:"rejected_placements"`

	// Foraging
	FoodCollected     int     `csv:"food_collected"` // Cumulative
	Efficiency        int     `csv:"efficiency"`     // Percent of agents created
	FoodRemaining     int     `csv:"food_remaining"`
	ReturningFraction float64 `csv:"returning_fraction"`

	// Agent distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`
	AgeMean    float64 `csv:"age_mean"`
	AgeStd     float64 `csv:"age_std"`

	// Pheromone field
	HomeMass float64 `csv:"home_mass"`
	FoodMass float64 `csv:"food_mass"`
	HomePeak float64 `csv:"home_peak"`
	FoodPeak float64 `csv:"food_peak"`

	Daylight float64 `csv:"daylight"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeEnergyStats calculates mean and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// ComputeMeanStd returns the mean and population standard deviation.
func ComputeMeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(values, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("agents", s.Agents),
		slog.Int("food_sources", s.FoodSources),
		slog.Int("obstacles", s.Obstacles),
		slog.Int("predators", s.Predators),
		slog.Int("spawns", s.Spawns),
		slog.Int("pickups", s.Pickups),
		slog.Int("deliveries", s.Deliveries),
		slog.Int("depletions", s.Depletions),
		slog.Int("regrowths", s.Regrowths),
		slog.Int("deaths_starved", s.DeathsStarved),
		slog.Int("deaths_old_age", s.DeathsOldAge),
		slog.Int("deaths_eaten", s.DeathsEaten),
		slog.Int("rejected_placements", s.Rejected),
		slog.Int("food_collected", s.FoodCollected),
		slog.Int("efficiency", s.Efficiency),
		slog.Int("food_remaining", s.FoodRemaining),
		slog.Float64("returning_fraction", s.ReturningFraction),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("age_mean", s.AgeMean),
		slog.Float64("age_std", s.AgeStd),
		slog.Float64("home_mass", s.HomeMass),
		slog.Float64("food_mass", s.FoodMass),
		slog.Float64("home_peak", s.HomePeak),
		slog.Float64("food_peak", s.FoodPeak),
		slog.Float64("daylight", s.Daylight),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"agents", s.Agents,
		"food_sources", s.FoodSources,
		"pickups", s.Pickups,
		"deliveries", s.Deliveries,
		"depletions", s.Depletions,
		"deaths_starved", s.DeathsStarved,
		"deaths_old_age", s.DeathsOldAge,
		"deaths_eaten", s.DeathsEaten,
		"food_collected", s.FoodCollected,
		"efficiency", s.Efficiency,
		"returning_fraction", s.ReturningFraction,
		"energy_mean", s.EnergyMean,
		"energy_p50", s.EnergyP50,
		"home_mass", s.HomeMass,
		"food_mass", s.FoodMass,
	)
}
