// Package components defines ECS components for the simulation.
package components

// AntState is the behavioural state of an agent.
type AntState uint8

const (
	Searching AntState = iota
	Returning
)

// String returns the display name for an AntState.
func (s AntState) String() string {
	switch s {
	case Searching:
		return "searching"
	case Returning:
		return "returning"
	}
	return "unknown"
}

// DeathCause records why an agent was marked for removal.
type DeathCause uint8

const (
	Alive DeathCause = iota
	Starved
	OldAge
	Eaten
)

// String returns the display name for a DeathCause.
func (c DeathCause) String() string {
	switch c {
	case Alive:
		return "alive"
	case Starved:
		return "starved"
	case OldAge:
		return "old_age"
	case Eaten:
		return "eaten"
	}
	return "unknown"
}

// Ant holds agent-specific data.
type Ant struct {
	State     AntState
	HasFood   bool
	Energy    float32
	Age       int32
	Lifespan  int32
	Size      float32
	BaseSpeed float32 // Speed restored when nothing is in sight
	Wander    float32 // Current bound on random heading noise

	// Set during the update, compacted after iteration
	Dead  bool
	Cause DeathCause
}

// MaxHistory is the capacity of the avoidance position ring.
const MaxHistory = 32

// AvoidStrategy selects the steering bias used when an agent is stuck.
type AvoidStrategy uint8

const (
	FavorRight AvoidStrategy = iota
	FavorLeft
	RandomNudge
	numStrategies
)

// Next returns the strategy that follows s in rotation.
func (s AvoidStrategy) Next() AvoidStrategy {
	return (s + 1) % numStrategies
}

// Avoidance holds the transient obstacle-avoidance memory of an agent.
type Avoidance struct {
	Recent       [MaxHistory]Position
	Head         uint8 // Next slot to write
	Count        uint8 // Filled slots
	StuckCounter int32
	Strategy     AvoidStrategy
}

// Food is a consumable, slowly regrowing food source.
type Food struct {
	Size           float32
	Amount         int32
	OriginalAmount int32
	GrowthRate     float32
	GrowthTimer    float32
}

// Obstacle is a static circular blocker.
type Obstacle struct {
	Size float32 // Diameter
}

// Predator is a bouncing hazard that removes agents on contact.
type Predator struct {
	Size float32 // Diameter
}

// Nest is the colony's home. It is not an ECS entity; the simulation owns exactly one.
type Nest struct {
	X, Y       float32
	Size       float32 // Diameter
	FoodStored int32
}

// Radius returns half the nest diameter.
func (n Nest) Radius() float32 {
	return n.Size / 2
}
