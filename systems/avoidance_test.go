package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/colony/components"
)

func TestRayOffset(t *testing.T) {
	tests := []struct {
		i, n   int
		spread float32
		want   float32
	}{
		{0, 7, 1.5, -1.5},
		{3, 7, 1.5, 0},
		{6, 7, 1.5, 1.5},
		{0, 1, 1.5, 0},
		{1, 3, 0.5, 0},
	}
	for _, tt := range tests {
		if got := rayOffset(tt.i, tt.n, tt.spread); !approx(got, tt.want) {
			t.Errorf("rayOffset(%d, %d, %v) = %v, want %v", tt.i, tt.n, tt.spread, got, tt.want)
		}
	}
}

func TestDetectStuckRotatesStrategy(t *testing.T) {
	te := newTestEnv(1)
	av := &components.Avoidance{}
	pos := &components.Position{X: 100, Y: 100}
	mot := &components.Motion{}
	ant := &components.Ant{Size: 3}

	// Standing still: the ring fills, then the counter climbs past the threshold.
	ticks := te.avoid.HistoryLength + int(te.avoid.StuckThreshold) + 1
	for i := 0; i < ticks; i++ {
		AvoidObstacles(te.env, pos, mot, ant, av)
	}

	if av.Strategy != components.FavorLeft {
		t.Fatalf("strategy = %v, want FavorLeft after first rotation", av.Strategy)
	}
	if av.StuckCounter != 0 || av.Count != 0 {
		t.Errorf("history not reset: counter=%d count=%d", av.StuckCounter, av.Count)
	}
}

func TestDetectStuckDecaysWhenMoving(t *testing.T) {
	p := newTestEnv(1).avoid
	av := &components.Avoidance{StuckCounter: 5}

	for i := 0; i < p.HistoryLength+3; i++ {
		pos := components.Position{X: float32(i) * 10, Y: 0}
		if detectStuck(av, pos, &p) {
			t.Fatal("moving agent reported stuck")
		}
	}
	if av.StuckCounter != 2 {
		t.Errorf("counter = %d, want 2", av.StuckCounter)
	}
}

func TestStrategyRotation(t *testing.T) {
	s := components.FavorRight
	want := []components.AvoidStrategy{components.FavorLeft, components.RandomNudge, components.FavorRight}
	for _, w := range want {
		s = s.Next()
		if s != w {
			t.Fatalf("Next() = %v, want %v", s, w)
		}
	}
}

func TestPushOut(t *testing.T) {
	te := newTestEnv(2)
	te.env.World.AddObstacle(Body{X: 200, Y: 200, Size: 20})

	pos := &components.Position{X: 205, Y: 200}
	mot := &components.Motion{Heading: 0}
	ant := &components.Ant{Size: 3}

	pushOut(te.env, pos, mot, ant)

	want := float32(200 + 10 + 3 + te.avoid.PushMargin)
	if !approx(pos.X, want) || !approx(pos.Y, 200) {
		t.Errorf("pushed to (%v, %v), want (%v, 200)", pos.X, pos.Y, want)
	}
	if mot.Heading < -te.avoid.EscapeJitter || mot.Heading > te.avoid.EscapeJitter {
		t.Errorf("heading = %v, want outward within jitter", mot.Heading)
	}
}

func TestPushOutCentred(t *testing.T) {
	te := newTestEnv(2)
	te.env.World.AddObstacle(Body{X: 200, Y: 200, Size: 20})

	pos := &components.Position{X: 200, Y: 200}
	pushOut(te.env, pos, &components.Motion{}, &components.Ant{Size: 3})

	if d := distance(pos.X, pos.Y, 200, 200); math.Abs(float64(d-14)) > 1e-3 {
		t.Errorf("distance after push = %v, want 14", d)
	}
}

func TestSteerAroundTurnsAwayFromObstacle(t *testing.T) {
	te := newTestEnv(4)
	// Obstacle dead ahead, slightly to the left (negative y).
	te.env.World.AddObstacle(Body{X: 120, Y: 97, Size: 16})

	pos := &components.Position{X: 100, Y: 100}
	mot := &components.Motion{Heading: 0}
	ant := &components.Ant{Size: 3}
	av := &components.Avoidance{Strategy: components.FavorRight}

	near := te.env.World.ObstaclesNear(pos.X, pos.Y, te.avoid.SensorRange+ant.Size)
	if len(near) != 1 {
		t.Fatalf("near = %v, want one obstacle", near)
	}
	steerAround(te.env, pos, mot, ant, av, near)

	if mot.Heading <= 0 {
		t.Errorf("heading = %v, want a clockwise turn away from the obstacle", mot.Heading)
	}
}

func TestAvoidanceIgnoresOpenSpace(t *testing.T) {
	te := newTestEnv(4)
	te.env.World.AddObstacle(Body{X: 400, Y: 400, Size: 16})

	pos := &components.Position{X: 100, Y: 100}
	mot := &components.Motion{Heading: 0.3}
	AvoidObstacles(te.env, pos, mot, &components.Ant{Size: 3}, &components.Avoidance{})

	if mot.Heading != 0.3 || pos.X != 100 || pos.Y != 100 {
		t.Errorf("agent in open space was steered: heading=%v pos=(%v,%v)", mot.Heading, pos.X, pos.Y)
	}
}
