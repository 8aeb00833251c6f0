package systems

import "math"

// Clamp functions for common value ranges

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// lerp interpolates linearly from a to b by t.
func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// mapRange maps v from [inMin, inMax] onto [outMin, outMax] without clamping.
func mapRange(v, inMin, inMax, outMin, outMax float32) float32 {
	if inMax == inMin {
		return outMin
	}
	return outMin + (v-inMin)*(outMax-outMin)/(inMax-inMin)
}

// Angle normalization functions

// NormalizeAngle wraps an angle to (-Pi, Pi].
func NormalizeAngle(angle float32) float32 {
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	for angle <= -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

// angleTo returns the bearing from (x1, y1) to (x2, y2).
func angleTo(x1, y1, x2, y2 float32) float32 {
	return float32(math.Atan2(float64(y2-y1), float64(x2-x1)))
}

// turnToward blends heading toward target by gain of the signed shortest difference.
func turnToward(heading, target, gain float32) float32 {
	return heading + NormalizeAngle(target-heading)*gain
}

// Distance functions

// distanceSq returns the squared distance between two points.
func distanceSq(x1, y1, x2, y2 float32) float32 {
	dx := x1 - x2
	dy := y1 - y2
	return dx*dx + dy*dy
}

// distance returns the Euclidean distance between two points.
func distance(x1, y1, x2, y2 float32) float32 {
	return float32(math.Sqrt(float64(distanceSq(x1, y1, x2, y2))))
}

// wrap maps v into [0, size) on a torus.
func wrap(v, size float32) float32 {
	if size <= 0 {
		return v
	}
	r := float32(math.Mod(float64(v), float64(size)))
	if r < 0 {
		r += size
	}
	// Mod of a value a hair below zero can round up to size itself.
	if r >= size {
		r = 0
	}
	return r
}

func sincos(angle float32) (float32, float32) {
	s, c := math.Sincos(float64(angle))
	return float32(s), float32(c)
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}
