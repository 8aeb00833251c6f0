package components

// Position represents an entity's world position.
type Position struct {
	X, Y float32
}

// Motion represents an entity's heading and scalar speed.
type Motion struct {
	Heading float32 // radians
	Speed   float32 // world units per tick
}
