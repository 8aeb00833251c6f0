package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/colony/components"
)

func TestUpdateEnergyLifecycle(t *testing.T) {
	te := newTestEnv(1)
	tests := []struct {
		name      string
		energy    float32
		age       int32
		wantDead  bool
		wantCause components.DeathCause
	}{
		{"healthy", 50, 10, false, components.Alive},
		{"starved", 0.004, 10, true, components.Starved},
		{"old age", 50, 1999, true, components.OldAge},
		{"one tick to spare", 50, 1998, false, components.Alive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ant := &components.Ant{Energy: tt.energy, Age: tt.age, Lifespan: 2000}
			UpdateEnergy(ant, &te.ant)
			if ant.Dead != tt.wantDead || ant.Cause != tt.wantCause {
				t.Errorf("dead=%v cause=%v, want %v %v", ant.Dead, ant.Cause, tt.wantDead, tt.wantCause)
			}
			if ant.Age != tt.age+1 {
				t.Errorf("age = %d, want %d", ant.Age, tt.age+1)
			}
		})
	}
}

func TestUpdateEnergyDeadIsNoOp(t *testing.T) {
	te := newTestEnv(1)
	ant := &components.Ant{Energy: 40, Age: 7, Lifespan: 2000, Dead: true, Cause: components.Eaten}
	UpdateEnergy(ant, &te.ant)
	if ant.Energy != 40 || ant.Age != 7 || ant.Cause != components.Eaten {
		t.Errorf("dead agent changed: %+v", ant)
	}
}

func TestUpdateEnergyDecay(t *testing.T) {
	te := newTestEnv(1)
	ant := &components.Ant{Energy: 100, Lifespan: 2000}
	for i := 0; i < 100; i++ {
		UpdateEnergy(ant, &te.ant)
	}
	// 100 ticks at 0.005
	if math.Abs(float64(ant.Energy-99.5)) > 1e-3 {
		t.Errorf("energy = %v, want 99.5", ant.Energy)
	}
}
