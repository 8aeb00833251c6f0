package game

import "github.com/pthm-cable/colony/config"

// DayNight is the global light cycle. Cycle runs from 0 (noon) through
// night and wraps back to 0.
type DayNight struct {
	Cycle      float32
	step       float32
	nightStart float32
	nightEnd   float32
	multiplier float32
}

func newDayNight(cfg *config.Config) DayNight {
	dc := cfg.DayNight
	return DayNight{
		step:       1 / float32(dc.DayLength),
		nightStart: float32(dc.NightStart),
		nightEnd:   float32(dc.NightEnd),
		multiplier: float32(dc.NightMultiplier),
	}
}

// Advance moves the cycle forward by one tick.
func (d *DayNight) Advance() {
	d.Cycle += d.step
	if d.Cycle > 1 {
		d.Cycle = 0
	}
}

// Night reports whether the cycle is in its dark half.
func (d DayNight) Night() bool {
	return d.Cycle > d.nightStart && d.Cycle < d.nightEnd
}

// SpeedMultiplier is the movement factor for this tick.
func (d DayNight) SpeedMultiplier(enabled bool) float32 {
	if enabled && d.Night() {
		return d.multiplier
	}
	return 1
}

// Daylight is the background brightness in [0, 1], 1 at the start of the cycle.
func (d DayNight) Daylight() float32 {
	return 1 - d.Cycle
}
