// Package camera maps between world coordinates and a screen viewport.
package camera

import "math"

// Camera controls the viewport into the colony world. The world wraps on
// both axes, so positions are mapped along the shortest toroidal path.
type Camera struct {
	// Camera centre in world coordinates
	X, Y float32

	// Pixels per world unit
	Zoom float32

	// Top-left of the viewport on screen, and its size
	OriginX, OriginY     float32
	ViewportW, ViewportH float32

	WorldW, WorldH float32

	MinZoom, MaxZoom float32
}

// New creates a camera centred on the world, zoomed so the whole world
// fits the viewport.
func New(originX, originY, viewportW, viewportH, worldW, worldH float32) *Camera {
	c := &Camera{
		OriginX:   originX,
		OriginY:   originY,
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
		MaxZoom:   4.0,
	}
	c.Fit()
	return c
}

// fitZoom is the zoom at which the whole world is visible.
func (c *Camera) fitZoom() float32 {
	if c.WorldW <= 0 || c.WorldH <= 0 {
		return 1
	}
	return min(c.ViewportW/c.WorldW, c.ViewportH/c.WorldH)
}

// Fit centres the camera and zooms out to show the whole world.
func (c *Camera) Fit() {
	c.MinZoom = c.fitZoom()
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = c.MinZoom
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	dx := toroidalDelta(wx, c.X, c.WorldW)
	dy := toroidalDelta(wy, c.Y, c.WorldH)
	sx = c.OriginX + c.ViewportW/2 + dx*c.Zoom
	sy = c.OriginY + c.ViewportH/2 + dy*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates. ok is
// false when the point lies outside the viewport.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32, ok bool) {
	dx := (sx - c.OriginX - c.ViewportW/2) / c.Zoom
	dy := (sy - c.OriginY - c.ViewportH/2) / c.Zoom
	wx = mod(c.X+dx, c.WorldW)
	wy = mod(c.Y+dy, c.WorldH)
	return wx, wy, c.Contains(sx, sy)
}

// Contains reports whether a screen point lies inside the viewport.
func (c *Camera) Contains(sx, sy float32) bool {
	return sx >= c.OriginX && sy >= c.OriginY &&
		sx < c.OriginX+c.ViewportW && sy < c.OriginY+c.ViewportH
}

// IsVisible returns true if a circle at (wx, wy) with the given world
// radius could be on screen. Conservative, for culling.
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	dx := toroidalDelta(wx, c.X, c.WorldW)
	dy := toroidalDelta(wy, c.Y, c.WorldH)
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(dx) <= halfW && absf(dy) <= halfH
}

// Point is a screen position.
type Point struct{ X, Y float32 }

// GhostPositions returns extra screen positions for a body straddling a
// view edge, so it appears on both sides while wrapping. At most three.
func (c *Camera) GhostPositions(wx, wy, radius float32) []Point {
	var ghosts []Point

	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	dx := toroidalDelta(wx, c.X, c.WorldW)
	dy := toroidalDelta(wy, c.Y, c.WorldH)

	cx := c.OriginX + c.ViewportW/2
	cy := c.OriginY + c.ViewportH/2

	var hx, vy float32
	horizontal, vertical := false, false
	switch {
	case dx > halfW-radius && dx < halfW+radius:
		horizontal = true
		hx = cx + (dx-c.WorldW)*c.Zoom
	case dx < -halfW+radius && dx > -halfW-radius:
		horizontal = true
		hx = cx + (dx+c.WorldW)*c.Zoom
	}
	switch {
	case dy > halfH-radius && dy < halfH+radius:
		vertical = true
		vy = cy + (dy-c.WorldH)*c.Zoom
	case dy < -halfH+radius && dy > -halfH-radius:
		vertical = true
		vy = cy + (dy+c.WorldH)*c.Zoom
	}

	sx := cx + dx*c.Zoom
	sy := cy + dy*c.Zoom
	if horizontal {
		ghosts = append(ghosts, Point{hx, sy})
	}
	if vertical {
		ghosts = append(ghosts, Point{sx, vy})
	}
	if horizontal && vertical {
		ghosts = append(ghosts, Point{hx, vy})
	}
	return ghosts
}

// SetViewport moves or resizes the on-screen viewport.
func (c *Camera) SetViewport(originX, originY, w, h float32) {
	c.OriginX, c.OriginY = originX, originY
	if w == c.ViewportW && h == c.ViewportH {
		return
	}
	c.ViewportW, c.ViewportH = w, h
	c.MinZoom = c.fitZoom()
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
}

// SetWorld updates the world size after a resize and refits.
func (c *Camera) SetWorld(w, h float32) {
	c.WorldW, c.WorldH = w, h
	c.Fit()
}

// Pan moves the camera by a delta in screen pixels.
func (c *Camera) Pan(dx, dy float32) {
	c.X = mod(c.X+dx/c.Zoom, c.WorldW)
	c.Y = mod(c.Y+dy/c.Zoom, c.WorldH)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// toroidalDelta computes the shortest signed distance from 'from' to 'to'
// in a toroidal space of the given size.
func toroidalDelta(to, from, size float32) float32 {
	d := to - from
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}

// mod computes the positive modulo.
func mod(x, m float32) float32 {
	if m <= 0 {
		return x
	}
	r := float32(math.Mod(float64(x), float64(m)))
	if r < 0 {
		r += m
	}
	return r
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
