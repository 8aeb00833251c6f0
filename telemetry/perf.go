package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase identifies one stage of a colony tick.
type Phase uint8

// Tick stages, in execution order.
const (
	PhaseFood Phase = iota
	PhasePredators
	PhaseNest
	PhaseAgents
	PhaseCleanup
	PhasePheromones
	PhasePopulation
	PhaseTelemetry
	NumPhases
)

var phaseNames = [NumPhases]string{
	"food", "predators", "nest_emission", "agents",
	"cleanup", "pheromones", "population", "telemetry",
}

func (p Phase) String() string {
	if p < NumPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// tickTiming is one recorded tick.
type tickTiming struct {
	total  time.Duration
	phases [NumPhases]time.Duration
	agents int
}

// PerfCollector keeps the timings of the most recent ticks in a ring.
type PerfCollector struct {
	ring  []tickTiming
	next  int
	count int

	cur     tickTiming
	started time.Time
	mark    time.Time
	phase   Phase
	inPhase bool

	lastFrame time.Time
	frame     time.Duration

	now func() time.Time
}

// NewPerfCollector creates a collector averaging over window ticks.
// A non-positive window falls back to 60.
func NewPerfCollector(window int) *PerfCollector {
	if window < 1 {
		window = 60
	}
	return &PerfCollector{
		ring: make([]tickTiming, window),
		now:  time.Now,
	}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	now := p.now()
	p.cur = tickTiming{}
	p.started = now
	p.mark = now
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	p.closePhase(p.now())
	p.phase = ph
	p.inPhase = ph < NumPhases
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.cur.phases[p.phase] += now.Sub(p.mark)
	}
	p.mark = now
}

// EndTick closes the tick and records it with the live agent count.
func (p *PerfCollector) EndTick(agents int) {
	now := p.now()
	p.closePhase(now)
	p.inPhase = false
	p.cur.total = now.Sub(p.started)
	p.cur.agents = agents

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.count < len(p.ring) {
		p.count++
	}
}

// RecordFrame marks a rendered frame; the gap to the previous one is the frame time.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarises the ticks in the window.
type PerfStats struct {
	Ticks int

	MeanTick time.Duration
	P50Tick  time.Duration
	P95Tick  time.Duration
	MaxTick  time.Duration

	PhaseMean  [NumPhases]time.Duration
	PhaseShare [NumPhases]float64 // Percent of the mean tick

	TicksPerSecond float64
	AgentCost      time.Duration // Agent phase time per live agent

	FrameTime time.Duration
	FPS       float64
}

// Stats summarises the current window. Frame timing is reported even
// before any tick has been recorded.
func (p *PerfCollector) Stats() PerfStats {
	st := PerfStats{FrameTime: p.frame}
	if p.frame > 0 {
		st.FPS = float64(time.Second) / float64(p.frame)
	}

	n := p.count
	if n == 0 {
		return st
	}
	st.Ticks = n

	totals := make([]float64, n)
	var agentTime time.Duration
	var agentTicks int
	for i, t := range p.ring[:n] {
		totals[i] = float64(t.total)
		for ph, d := range t.phases {
			st.PhaseMean[ph] += d
		}
		agentTime += t.phases[PhaseAgents]
		agentTicks += t.agents
	}

	mean := stat.Mean(totals, nil)
	sort.Float64s(totals)
	st.MeanTick = time.Duration(mean)
	st.P50Tick = time.Duration(Percentile(totals, 0.50))
	st.P95Tick = time.Duration(Percentile(totals, 0.95))
	st.MaxTick = time.Duration(totals[n-1])

	for ph := range st.PhaseMean {
		st.PhaseMean[ph] /= time.Duration(n)
		if mean > 0 {
			st.PhaseShare[ph] = float64(st.PhaseMean[ph]) / mean * 100
		}
	}
	if mean > 0 {
		st.TicksPerSecond = float64(time.Second) / mean
	}
	if agentTicks > 0 {
		st.AgentCost = agentTime / time.Duration(agentTicks)
	}
	return st
}

// Hotspot returns the phase with the largest share of the mean tick.
func (s PerfStats) Hotspot() Phase {
	best := PhaseFood
	for ph := range s.PhaseShare {
		if s.PhaseShare[ph] > s.PhaseShare[best] {
			best = Phase(ph)
		}
	}
	return best
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("ticks", s.Ticks),
		slog.Int64("mean_tick_us", s.MeanTick.Microseconds()),
		slog.Int64("p95_tick_us", s.P95Tick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
		slog.Int64("agent_ns", s.AgentCost.Nanoseconds()),
	}
	if s.Ticks > 0 {
		attrs = append(attrs, slog.String("hotspot", s.Hotspot().String()))
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for ph, pct := range s.PhaseShare {
		if pct >= 0.1 {
			attrs = append(attrs, slog.Float64(Phase(ph).String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the summary at info level.
func (s PerfStats) LogStats() {
	slog.Info("perf", "perf", s)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd     int32   `csv:"window_end"`
	MeanTickUS    int64   `csv:"mean_tick_us"`
	P50TickUS     int64   `csv:"p50_tick_us"`
	P95TickUS     int64   `csv:"p95_tick_us"`
	MaxTickUS     int64   `csv:"max_tick_us"`
	TicksPerSec   float64 `csv:"ticks_per_sec"`
	AgentNS       int64   `csv:"agent_ns"`
	FPS           float64 `csv:"fps"`
	Hotspot       string  `csv:"hotspot"`
	FoodPct       float64 `csv:"food_pct"`
	PredatorsPct  float64 `csv:"predators_pct"`
	NestPct       float64 `csv:"nest_emission_pct"`
	AgentsPct     float64 `csv:"agents_pct"`
	CleanupPct    float64 `csv:"cleanup_pct"`
	PheromonesPct float64 `csv:"pheromones_pct"`
	PopulationPct float64 `csv:"population_pct"`
	TelemetryPct  float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the summary for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	row := PerfStatsCSV{
		WindowEnd:     windowEnd,
		MeanTickUS:    s.MeanTick.Microseconds(),
		P50TickUS:     s.P50Tick.Microseconds(),
		P95TickUS:     s.P95Tick.Microseconds(),
		MaxTickUS:     s.MaxTick.Microseconds(),
		TicksPerSec:   s.TicksPerSecond,
		AgentNS:       s.AgentCost.Nanoseconds(),
		FPS:           s.FPS,
		FoodPct:       s.PhaseShare[PhaseFood],
		PredatorsPct:  s.PhaseShare[PhasePredators],
		NestPct:       s.PhaseShare[PhaseNest],
		AgentsPct:     s.PhaseShare[PhaseAgents],
		CleanupPct:    s.PhaseShare[PhaseCleanup],
		PheromonesPct: s.PhaseShare[PhasePheromones],
		PopulationPct: s.PhaseShare[PhasePopulation],
		TelemetryPct:  s.PhaseShare[PhaseTelemetry],
	}
	if s.Ticks > 0 {
		row.Hotspot = s.Hotspot().String()
	}
	return row
}
