package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/colony/components"
	"github.com/pthm-cable/colony/config"
)

// AntParams holds agent behaviour parameters in simulation units.
type AntParams struct {
	Size           float32
	SpeedFactor    float32
	Wander         float32
	FocusedWander  float32
	WanderChance   float32
	MaxEnergy      float32
	EnergyDecay    float32
	Lifespan       int32
	PickupEnergy   float32
	DeliveryEnergy float32

	DetectionRadius float32
	ApproachRadius  float32
	TurnNear        float32
	TurnFar         float32
	SpeedBoost      float32
	MaxSpeedFactor  float32
	HomingGain      float32
	SpawnJitter     float32

	// Pheromone sensing and laying
	SenseDistance    float32
	SenseAngle       float32
	NoiseFloor       float32
	FollowMin        float32
	FollowMax        float32
	FoodApproachDrop float32
	HomeDropFactor   float32
	Drop             float32 // Food-trail deposit per tick, derived from strength
}

// NewAntParams builds AntParams from config and the user-facing pheromone strength.
func NewAntParams(cfg *config.Config, strength float32) AntParams {
	ac := cfg.Ant
	pc := cfg.Pheromone
	size := float32(ac.Size)
	return AntParams{
		Size:           size,
		SpeedFactor:    float32(ac.SpeedFactor),
		Wander:         float32(ac.Wander),
		FocusedWander:  float32(ac.FocusedWander),
		WanderChance:   float32(ac.WanderChance),
		MaxEnergy:      float32(ac.MaxEnergy),
		EnergyDecay:    float32(ac.EnergyDecay),
		Lifespan:       int32(ac.Lifespan),
		PickupEnergy:   float32(ac.PickupEnergy),
		DeliveryEnergy: float32(ac.DeliveryEnergy),

		DetectionRadius: float32(ac.DetectionRadius),
		ApproachRadius:  float32(ac.ApproachRadius),
		TurnNear:        float32(ac.TurnNear),
		TurnFar:         float32(ac.TurnFar),
		SpeedBoost:      float32(ac.SpeedBoost),
		MaxSpeedFactor:  float32(ac.MaxSpeedFactor),
		HomingGain:      float32(ac.HomingGain),
		SpawnJitter:     float32(ac.SpawnJitter),

		SenseDistance:    (size + 2) * float32(pc.SenseMultiplier),
		SenseAngle:       float32(pc.SenseAngle),
		NoiseFloor:       float32(pc.NoiseFloor),
		FollowMin:        float32(pc.FollowMin),
		FollowMax:        float32(pc.FollowMax),
		FoodApproachDrop: float32(pc.FoodApproachDrop),
		HomeDropFactor:   float32(pc.HomeDropFactor),
		Drop:             mapRange(strength, 1, 10, float32(pc.DropMin), float32(pc.DropMax)),
	}
}

// NewAnt returns the components of a fresh agent at (x, y).
func NewAnt(rng *rand.Rand, p *AntParams, x, y, agentSpeed float32) (components.Position, components.Motion, components.Ant) {
	base := agentSpeed * p.SpeedFactor
	return components.Position{X: x, Y: y},
		components.Motion{Heading: rng.Float32() * 2 * math.Pi, Speed: base},
		components.Ant{
			State:     components.Searching,
			Energy:    p.MaxEnergy,
			Lifespan:  p.Lifespan,
			Size:      p.Size,
			BaseSpeed: base,
			Wander:    p.Wander,
		}
}

// Env bundles everything an agent reads or writes during its update.
type Env struct {
	World *World
	Field *PheromoneField
	Rng   *rand.Rand
	Ant   *AntParams
	Avoid *AvoidParams
	Food  *FoodParams

	// Applied to movement only; never written back into Motion.Speed.
	SpeedMultiplier float32
}

// Outcome reports the events of one agent update.
type Outcome struct {
	PickedUp  bool
	Delivered bool
	Depleted  bool // The picked source hit zero and was replaced
}

// UpdateAnt advances one agent by a tick: state behaviour, movement,
// obstacle avoidance, toroidal wrap, energy and ageing, then death checks.
// Dead agents are only marked; the caller removes them after iteration.
func UpdateAnt(env *Env, pos *components.Position, mot *components.Motion, ant *components.Ant, av *components.Avoidance) Outcome {
	var out Outcome
	switch ant.State {
	case components.Searching:
		out = searchForFood(env, pos, mot, ant)
	case components.Returning:
		out = returnToNest(env, pos, mot, ant)
	}

	speed := mot.Speed * env.SpeedMultiplier
	s, c := sincos(mot.Heading)
	pos.X += c * speed
	pos.Y += s * speed

	AvoidObstacles(env, pos, mot, ant, av)

	// Obstacle queries do not see across the seam.
	if env.World.Wrap(pos) {
		pushOut(env, pos, mot, ant)
		env.World.Wrap(pos)
	}
	mot.Heading = NormalizeAngle(mot.Heading)

	UpdateEnergy(ant, env.Ant)
	if !ant.Dead && env.World.PredatorContact(pos.X, pos.Y, ant.Size) {
		ant.Dead = true
		ant.Cause = components.Eaten
	}
	return out
}

func searchForFood(env *Env, pos *components.Position, mot *components.Motion, ant *components.Ant) Outcome {
	p := env.Ant
	if i, d := env.World.NearestFood(pos.X, pos.Y, p.DetectionRadius); i >= 0 {
		f := env.World.Foods[i]
		gain := lerp(p.TurnNear, p.TurnFar, d/p.DetectionRadius)
		mot.Heading = turnToward(mot.Heading, angleTo(pos.X, pos.Y, f.Pos.X, f.Pos.Y), gain)
		mot.Speed = min(mot.Speed*p.SpeedBoost, ant.BaseSpeed*p.MaxSpeedFactor)
		ant.Wander = p.FocusedWander
		if d < p.ApproachRadius {
			env.Field.DepositWorld(FoodTrail, pos.X, pos.Y, p.FoodApproachDrop)
		}
	} else {
		mot.Speed = ant.BaseSpeed
		ant.Wander = p.Wander
		if env.Rng.Float32() < p.WanderChance {
			mot.Heading += (env.Rng.Float32()*2 - 1) * ant.Wander
		}
		followPheromones(env, pos, mot, FoodTrail)
	}

	leavePheromone(env, pos, ant)
	return pickup(env, pos, mot, ant)
}

func returnToNest(env *Env, pos *components.Position, mot *components.Motion, ant *components.Ant) Outcome {
	p := env.Ant
	nest := env.World.Nest
	mot.Heading = turnToward(mot.Heading, angleTo(pos.X, pos.Y, nest.X, nest.Y), p.HomingGain)
	followPheromones(env, pos, mot, Home)
	leavePheromone(env, pos, ant)

	if !env.World.AtNest(pos.X, pos.Y) {
		return Outcome{}
	}
	ant.HasFood = false
	ant.State = components.Searching
	mot.Heading = env.Rng.Float32() * 2 * math.Pi
	ant.Energy = min(ant.Energy+p.DeliveryEnergy, p.MaxEnergy)
	nest.FoodStored++
	return Outcome{Delivered: true}
}

// leavePheromone deposits at the agent's cell. Only laden returners lay food
// trail; everyone else lays home trail at HomeDropFactor strength.
func leavePheromone(env *Env, pos *components.Position, ant *components.Ant) {
	p := env.Ant
	if ant.State == components.Returning && ant.HasFood {
		env.Field.DepositWorld(FoodTrail, pos.X, pos.Y, p.Drop)
		return
	}
	env.Field.DepositWorld(Home, pos.X, pos.Y, p.Drop*p.HomeDropFactor)
}

// followPheromones probes three forward angles and blends toward the
// strongest. Ties keep the earliest probe, so the left-most wins.
func followPheromones(env *Env, pos *components.Position, mot *components.Motion, kind PheromoneKind) {
	p := env.Ant
	var best float32
	bestAngle := mot.Heading
	found := false
	for i := -1; i <= 1; i++ {
		a := mot.Heading + float32(i)*p.SenseAngle
		s, c := sincos(a)
		v := env.Field.SampleWorld(kind, pos.X+c*p.SenseDistance, pos.Y+s*p.SenseDistance)
		if v > best {
			best = v
			bestAngle = a
			found = true
		}
	}
	if !found || best <= p.NoiseFloor {
		return
	}
	strength := clampFloat(best/env.Field.Max, p.FollowMin, p.FollowMax)
	mot.Heading = turnToward(mot.Heading, bestAngle, strength)
}

// pickup takes one unit from the first source in reach with food left.
func pickup(env *Env, pos *components.Position, mot *components.Motion, ant *components.Ant) Outcome {
	p := env.Ant
	for i, f := range env.World.Foods {
		if f.Food.Amount <= 0 {
			continue
		}
		if distance(pos.X, pos.Y, f.Pos.X, f.Pos.Y) >= f.Food.Size/2 {
			continue
		}
		f.Food.Amount--
		ant.HasFood = true
		ant.State = components.Returning
		mot.Heading = NormalizeAngle(mot.Heading + math.Pi)
		ant.Energy = min(ant.Energy+p.PickupEnergy, p.MaxEnergy)

		out := Outcome{PickedUp: true}
		if f.Food.Amount == 0 {
			ReplaceFood(env.Rng, env.World, env.Food, i)
			out.Depleted = true
		}
		return out
	}
	return Outcome{}
}
