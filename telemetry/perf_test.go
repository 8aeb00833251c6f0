package telemetry

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestPerf(window int) (*PerfCollector, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	pc := NewPerfCollector(window)
	pc.now = clock.now
	return pc, clock
}

// recordTick records a tick of the given length spent entirely in ph.
func recordTick(pc *PerfCollector, clock *fakeClock, ph Phase, d time.Duration, agents int) {
	pc.StartTick()
	pc.StartPhase(ph)
	clock.advance(d)
	pc.EndTick(agents)
}

func TestPerfPhaseBreakdown(t *testing.T) {
	pc, clock := newTestPerf(10)

	for i := 0; i < 4; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseAgents)
		clock.advance(300 * time.Microsecond)
		pc.StartPhase(PhasePheromones)
		clock.advance(100 * time.Microsecond)
		pc.EndTick(10)
	}

	st := pc.Stats()
	if st.Ticks != 4 {
		t.Errorf("ticks = %d, want 4", st.Ticks)
	}
	if st.MeanTick != 400*time.Microsecond {
		t.Errorf("mean tick = %v, want 400µs", st.MeanTick)
	}
	if st.PhaseMean[PhaseAgents] != 300*time.Microsecond || st.PhaseMean[PhasePheromones] != 100*time.Microsecond {
		t.Errorf("phase means = %v / %v, want 300µs / 100µs", st.PhaseMean[PhaseAgents], st.PhaseMean[PhasePheromones])
	}
	if st.PhaseShare[PhaseAgents] != 75 || st.PhaseShare[PhasePheromones] != 25 {
		t.Errorf("phase shares = %v / %v, want 75 / 25", st.PhaseShare[PhaseAgents], st.PhaseShare[PhasePheromones])
	}
	if st.AgentCost != 30*time.Microsecond {
		t.Errorf("agent cost = %v, want 30µs", st.AgentCost)
	}
	if st.TicksPerSecond != 2500 {
		t.Errorf("ticks/s = %v, want 2500", st.TicksPerSecond)
	}
	if st.Hotspot() != PhaseAgents {
		t.Errorf("hotspot = %v, want agents", st.Hotspot())
	}
}

func TestPerfPercentiles(t *testing.T) {
	pc, clock := newTestPerf(20)
	// Recorded out of order; the summary must not depend on it.
	for i := 20; i >= 1; i-- {
		recordTick(pc, clock, PhaseFood, time.Duration(i)*time.Millisecond, 0)
	}

	st := pc.Stats()
	if st.P50Tick != 10500*time.Microsecond {
		t.Errorf("p50 = %v, want 10.5ms", st.P50Tick)
	}
	if d := st.P95Tick - 19050*time.Microsecond; d < -time.Microsecond || d > time.Microsecond {
		t.Errorf("p95 = %v, want 19.05ms", st.P95Tick)
	}
	if st.MaxTick != 20*time.Millisecond {
		t.Errorf("max = %v, want 20ms", st.MaxTick)
	}
	if st.AgentCost != 0 {
		t.Errorf("agent cost = %v with no agents, want 0", st.AgentCost)
	}
}

func TestPerfRollingWindow(t *testing.T) {
	pc, clock := newTestPerf(3)
	for i := 1; i <= 5; i++ {
		recordTick(pc, clock, PhaseFood, time.Duration(i)*time.Millisecond, 1)
	}

	st := pc.Stats()
	if st.Ticks != 3 {
		t.Fatalf("ticks = %d, want 3", st.Ticks)
	}
	if st.MeanTick != 4*time.Millisecond || st.MaxTick != 5*time.Millisecond {
		t.Errorf("mean/max = %v/%v, want 4ms/5ms (oldest ticks dropped)", st.MeanTick, st.MaxTick)
	}
}

func TestPerfTimeBeforeFirstPhaseIsUnattributed(t *testing.T) {
	pc, clock := newTestPerf(5)
	pc.StartTick()
	clock.advance(time.Millisecond)
	pc.StartPhase(PhaseCleanup)
	clock.advance(time.Millisecond)
	pc.EndTick(0)

	st := pc.Stats()
	if st.MeanTick != 2*time.Millisecond || st.PhaseMean[PhaseCleanup] != time.Millisecond {
		t.Errorf("tick/cleanup = %v/%v, want 2ms/1ms", st.MeanTick, st.PhaseMean[PhaseCleanup])
	}
}

func TestPerfEmptyAndFrames(t *testing.T) {
	pc, clock := newTestPerf(10)

	st := pc.Stats()
	if st.Ticks != 0 || st.MeanTick != 0 || st.FPS != 0 {
		t.Errorf("empty stats = %+v, want zero", st)
	}

	pc.RecordFrame()
	clock.advance(20 * time.Millisecond)
	pc.RecordFrame()
	st = pc.Stats()
	if st.FrameTime != 20*time.Millisecond || st.FPS != 50 {
		t.Errorf("frame = %v fps = %v, want 20ms / 50", st.FrameTime, st.FPS)
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseNest.String() != "nest_emission" || PhaseTelemetry.String() != "telemetry" {
		t.Errorf("unexpected names %q %q", PhaseNest, PhaseTelemetry)
	}
	if NumPhases.String() != "unknown" {
		t.Errorf("out-of-range phase = %q", NumPhases)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	var s PerfStats
	s.Ticks = 5
	s.MeanTick = 250 * time.Microsecond
	s.P95Tick = 400 * time.Microsecond
	s.AgentCost = 1500 * time.Nanosecond
	s.PhaseShare[PhaseAgents] = 60
	s.PhaseShare[PhasePheromones] = 30
	s.PhaseShare[PhaseCleanup] = 10

	got := s.ToCSV(600)
	if got.WindowEnd != 600 || got.MeanTickUS != 250 || got.P95TickUS != 400 || got.AgentNS != 1500 {
		t.Errorf("row = %+v", got)
	}
	if got.AgentsPct != 60 || got.PheromonesPct != 30 || got.CleanupPct != 10 {
		t.Errorf("phase pct = %v/%v/%v, want 60/30/10", got.AgentsPct, got.PheromonesPct, got.CleanupPct)
	}
	if got.FoodPct != 0 {
		t.Errorf("FoodPct = %v, want 0 for an untracked phase", got.FoodPct)
	}
	if got.Hotspot != "agents" {
		t.Errorf("hotspot = %q, want agents", got.Hotspot)
	}
	if (PerfStats{}).ToCSV(1).Hotspot != "" {
		t.Error("an empty window should not name a hotspot")
	}
}
