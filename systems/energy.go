package systems

import (
	"github.com/pthm-cable/colony/components"
)

// UpdateEnergy applies the per-tick energy decay and ageing, then marks the
// agent dead when it has starved or reached its lifespan.
func UpdateEnergy(ant *components.Ant, p *AntParams) {
	if ant.Dead {
		return
	}

	ant.Energy -= p.EnergyDecay
	ant.Age++

	switch {
	case ant.Energy <= 0:
		ant.Energy = 0
		ant.Dead = true
		ant.Cause = components.Starved
	case ant.Age >= ant.Lifespan:
		ant.Dead = true
		ant.Cause = components.OldAge
	}
}
