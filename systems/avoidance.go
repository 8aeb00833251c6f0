package systems

import (
	"math"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
)

// AvoidParams holds obstacle avoidance parameters.
type AvoidParams struct {
	HistoryLength  int
	StuckDistance  float32
	StuckThreshold int32
	SensorRays     int
	SensorSpread   float32
	SensorRange    float32
	ClosePenalty   float32
	ForwardBonus   float32
	StrategyBonus  float32
	BaseTurnRate   float32
	StuckTurnRate  float32
	MaxTurnRate    float32
	PushMargin     float32
	EscapeJitter   float32
	NudgeMin       float32
	NudgeMax       float32
}

// NewAvoidParams builds AvoidParams from config.
func NewAvoidParams(cfg *config.Config) AvoidParams {
	ac := cfg.Avoidance
	return AvoidParams{
		HistoryLength:  min(ac.HistoryLength, components.MaxHistory),
		StuckDistance:  float32(ac.StuckDistance),
		StuckThreshold: int32(ac.StuckThreshold),
		SensorRays:     ac.SensorRays,
		SensorSpread:   float32(ac.SensorSpread),
		SensorRange:    float32(ac.SensorRange),
		ClosePenalty:   float32(ac.ClosePenalty),
		ForwardBonus:   float32(ac.ForwardBonus),
		StrategyBonus:  float32(ac.StrategyBonus),
		BaseTurnRate:   float32(ac.BaseTurnRate),
		StuckTurnRate:  float32(ac.StuckTurnRate),
		MaxTurnRate:    float32(ac.MaxTurnRate),
		PushMargin:     float32(ac.PushMargin),
		EscapeJitter:   float32(ac.EscapeJitter),
		NudgeMin:       float32(ac.NudgeMin),
		NudgeMax:       float32(ac.NudgeMax),
	}
}

// AvoidObstacles runs stuck detection, ray-fan steering and the hard
// push-out for one agent. It runs every tick, after movement and before wrap.
func AvoidObstacles(env *Env, pos *components.Position, mot *components.Motion, ant *components.Ant, av *components.Avoidance) {
	p := env.Avoid
	if detectStuck(av, *pos, p) {
		av.Strategy = av.Strategy.Next()
		av.StuckCounter = 0
		av.Count = 0
		if av.Strategy == components.RandomNudge {
			nudge(env, pos, mot)
		}
	}

	near := env.World.ObstaclesNear(pos.X, pos.Y, p.SensorRange+ant.Size)
	if len(near) == 0 {
		return
	}
	steerAround(env, pos, mot, ant, av, near)
	pushOut(env, pos, mot, ant)
}

// detectStuck records pos in the ring and updates the stuck counter.
// It reports true when the counter passes the threshold.
func detectStuck(av *components.Avoidance, pos components.Position, p *AvoidParams) bool {
	n := p.HistoryLength
	av.Recent[av.Head] = pos
	av.Head = uint8((int(av.Head) + 1) % n)
	if int(av.Count) < n {
		av.Count++
		return false
	}

	// Ring is full: Head is now the oldest slot.
	oldest := av.Recent[av.Head]
	if distance(oldest.X, oldest.Y, pos.X, pos.Y) < p.StuckDistance {
		av.StuckCounter++
	} else if av.StuckCounter > 0 {
		av.StuckCounter--
	}
	return av.StuckCounter > p.StuckThreshold
}

func nudge(env *Env, pos *components.Position, mot *components.Motion) {
	p := env.Avoid
	rng := env.Rng
	a := rng.Float32() * 2 * math.Pi
	d := lerp(p.NudgeMin, p.NudgeMax, rng.Float32())
	s, c := sincos(a)
	pos.X += c * d
	pos.Y += s * d
	mot.Heading = rng.Float32() * 2 * math.Pi
}

// rayOffset returns the angular offset of ray i in a fan of n rays.
func rayOffset(i, n int, spread float32) float32 {
	if n <= 1 {
		return 0
	}
	return -spread + 2*spread*float32(i)/float32(n-1)
}

// steerAround scores each ray of the sensor fan and turns toward the best.
// Positive offsets turn clockwise on screen, which FavorRight rewards.
func steerAround(env *Env, pos *components.Position, mot *components.Motion, ant *components.Ant, av *components.Avoidance, near []int) {
	p := env.Avoid
	mid := p.SensorRays / 2

	bestScore := float32(math.Inf(-1))
	bestAngle := mot.Heading
	blocked := false

	for i := 0; i < p.SensorRays; i++ {
		offset := rayOffset(i, p.SensorRays, p.SensorSpread)
		angle := mot.Heading + offset
		s, c := sincos(angle)

		var penalty float32
		for _, oi := range near {
			o := env.World.Obstacles[oi]
			reach := o.Radius() + ant.Size
			gap := p.SensorRange
			for step := 1; step <= 3; step++ {
				t := p.SensorRange * float32(step) / 3
				g := distance(pos.X+c*t, pos.Y+s*t, o.X, o.Y) - reach
				if g < gap {
					gap = g
				}
			}
			switch {
			case gap < 0:
				penalty += p.ClosePenalty
			case gap < p.SensorRange:
				penalty += (p.SensorRange - gap) / p.SensorRange
			}
		}
		if penalty > 0 {
			blocked = true
		}

		score := -penalty
		if i == mid {
			score += p.ForwardBonus
		}
		switch av.Strategy {
		case components.FavorRight:
			if offset > 0 {
				score += p.StrategyBonus
			}
		case components.FavorLeft:
			if offset < 0 {
				score += p.StrategyBonus
			}
		}

		if score > bestScore {
			bestScore = score
			bestAngle = angle
		}
	}

	if !blocked {
		return
	}
	stuck := float32(av.StuckCounter) / float32(max(p.StuckThreshold, 1))
	rate := min(p.BaseTurnRate+p.StuckTurnRate*stuck, p.MaxTurnRate)
	mot.Heading = turnToward(mot.Heading, bestAngle, rate)
}

// pushOut moves an agent that overlaps an obstacle radially clear of it and
// points it outward with some noise.
func pushOut(env *Env, pos *components.Position, mot *components.Motion, ant *components.Ant) {
	p := env.Avoid
	for _, oi := range env.World.ObstaclesNear(pos.X, pos.Y, ant.Size) {
		o := env.World.Obstacles[oi]
		reach := o.Radius() + ant.Size
		if distance(pos.X, pos.Y, o.X, o.Y) >= reach {
			continue
		}
		var away float32
		if pos.X == o.X && pos.Y == o.Y {
			away = env.Rng.Float32() * 2 * math.Pi
		} else {
			away = angleTo(o.X, o.Y, pos.X, pos.Y)
		}
		s, c := sincos(away)
		pos.X = o.X + c*(reach+p.PushMargin)
		pos.Y = o.Y + s*(reach+p.PushMargin)
		mot.Heading = away + (env.Rng.Float32()*2-1)*p.EscapeJitter
	}
}
