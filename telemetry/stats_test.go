package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/colony/components"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeEnergyStats(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	mean, p10, p50, p90 := ComputeEnergyStats(values)

	if math.Abs(mean-55) > 0.001 {
		t.Errorf("mean = %v, want 55", mean)
	}
	if math.Abs(p10-19) > 0.01 {
		t.Errorf("p10 = %v, want 19", p10)
	}
	if math.Abs(p50-55) > 0.01 {
		t.Errorf("p50 = %v, want 55", p50)
	}
	if math.Abs(p90-91) > 0.01 {
		t.Errorf("p90 = %v, want 91", p90)
	}
}

func TestComputeEnergyStatsEmpty(t *testing.T) {
	mean, p10, p50, p90 := ComputeEnergyStats([]float64{})

	if mean != 0 || p10 != 0 || p50 != 0 || p90 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestComputeMeanStd(t *testing.T) {
	mean, std := ComputeMeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(mean-5) > 1e-9 {
		t.Errorf("mean = %v, want 5", mean)
	}
	if math.Abs(std-2) > 1e-9 {
		t.Errorf("std = %v, want 2", std)
	}

	if m, s := ComputeMeanStd(nil); m != 0 || s != 0 {
		t.Errorf("empty input = (%v, %v), want zeros", m, s)
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1.0, 1.0/60)

	if c.WindowDurationTicks() != 60 {
		t.Fatalf("window ticks = %d, want 60", c.WindowDurationTicks())
	}
	if c.ShouldFlush(59) {
		t.Error("should not flush before the window ends")
	}
	if !c.ShouldFlush(60) {
		t.Error("should flush at the window end")
	}

	c.RecordSpawn()
	c.RecordPickup()
	c.RecordPickup()
	c.RecordDelivery()
	c.RecordDepletion()
	c.RecordDeath(components.Starved)
	c.RecordDeath(components.Eaten)
	c.RecordDeath(components.Eaten)
	c.RecordRejectedPlacement()

	stats := c.Flush(60, Sample{Agents: 4, Returning: 1, FoodCollected: 3, Energies: []float64{50, 100}})

	if stats.Spawns != 1 || stats.Pickups != 2 || stats.Deliveries != 1 || stats.Depletions != 1 {
		t.Errorf("event counts = %d/%d/%d/%d, want 1/2/1/1", stats.Spawns, stats.Pickups, stats.Deliveries, stats.Depletions)
	}
	if stats.DeathsStarved != 1 || stats.DeathsEaten != 2 || stats.DeathsOldAge != 0 {
		t.Errorf("deaths = %d/%d/%d, want 1/0/2", stats.DeathsStarved, stats.DeathsOldAge, stats.DeathsEaten)
	}
	if stats.Rejected != 1 {
		t.Errorf("rejected = %d, want 1", stats.Rejected)
	}
	if stats.ReturningFraction != 0.25 {
		t.Errorf("returning fraction = %v, want 0.25", stats.ReturningFraction)
	}
	if stats.EnergyMean != 75 {
		t.Errorf("energy mean = %v, want 75", stats.EnergyMean)
	}
	if math.Abs(stats.SimTimeSec-1.0) > 1e-6 {
		t.Errorf("sim time = %v, want 1", stats.SimTimeSec)
	}

	next := c.Flush(120, Sample{})
	if next.Pickups != 0 || next.DeathsEaten != 0 || next.WindowStartTick != 60 {
		t.Errorf("counters not reset after flush: %+v", next)
	}
}

func TestCollectorWindowRounding(t *testing.T) {
	tests := []struct {
		sec  float64
		dt   float32
		want int32
	}{
		{10, 0.0166666667, 600},
		{1, 1.0 / 60, 60},
		{1, 1.0 / 30, 30},
		{0.001, 1.0 / 60, 1},
	}
	for _, tt := range tests {
		if got := NewCollector(tt.sec, tt.dt).WindowDurationTicks(); got != tt.want {
			t.Errorf("NewCollector(%v, %v) window = %d ticks, want %d", tt.sec, tt.dt, got, tt.want)
		}
	}
}

func TestCollectorRestart(t *testing.T) {
	c := NewCollector(1.0, 1.0/60)
	c.RecordPickup()
	c.Restart(500)

	if c.ShouldFlush(559) {
		t.Error("restarted window should begin at tick 500")
	}
	if got := c.Flush(560, Sample{}); got.Pickups != 0 || got.WindowStartTick != 500 {
		t.Errorf("restart did not clear counters: %+v", got)
	}
}
