package aspen

import (
	"math"
	"math/rand"
)

// minZoom is the smallest zoom SetZoom accepts, avoiding degenerate or
// inverted view transforms.
const minZoom = 0.1

// Camera controls the view into the scene: position, zoom, rotation, soft
// target following, and a decaying shake offset. The camera is owned by a
// Game (one per Game, never a process global) and recomputes its view from
// live state every frame.
type Camera struct {
	// X and Y are the world-space position the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	// Write through SetZoom to get the minimum clamp.
	Zoom float64
	// Rotation is the camera rotation in radians.
	Rotation float64
	// ViewportW and ViewportH are the size of the drawing surface in pixels.
	// Zoom and rotation pivot around the viewport center.
	ViewportW, ViewportH float64

	followTarget *Entity
	followOffset Vec2
	followSpeed  float64

	shakeIntensity float64
	shakeDuration  float64
	shakeElapsed   float64
	shakeX, shakeY float64

	rng *rand.Rand
}

// NewCamera creates a camera for a viewport of the given pixel size.
func NewCamera(viewportW, viewportH float64) *Camera {
	return &Camera{
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		rng:       rand.New(rand.NewSource(1)),
	}
}

// SetZoom sets the zoom factor, clamped to a minimum of 0.1.
func (c *Camera) SetZoom(z float64) {
	if z < minZoom {
		z = minZoom
	}
	c.Zoom = z
}

// Follow makes the camera track an entity with the given offset. Each update
// the camera moves a speed*dt*10 fraction of the remaining distance toward
// the target, an exponential-decay style follow rather than an instant snap.
func (c *Camera) Follow(target *Entity, offset Vec2, speed float64) {
	c.followTarget = target
	c.followOffset = offset
	c.followSpeed = speed
}

// Unfollow stops tracking the current target.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// Shake starts (or restarts) a camera shake of the given intensity lasting
// duration seconds. The per-frame offset decays linearly to zero over the
// duration.
func (c *Camera) Shake(intensity, duration float64) {
	c.shakeIntensity = intensity
	c.shakeDuration = duration
	c.shakeElapsed = 0
}

// Update advances follow and shake. Called once per frame before the scene
// updates so the view is consistent within the frame.
func (c *Camera) Update(dt float64) {
	if c.followTarget != nil {
		if c.followTarget.Destroyed() {
			c.followTarget = nil
		} else {
			tp := c.followTarget.WorldPosition()
			tx := tp.X + c.followOffset.X
			ty := tp.Y + c.followOffset.Y
			frac := c.followSpeed * dt * 10
			if frac > 1 {
				frac = 1
			}
			c.X += (tx - c.X) * frac
			c.Y += (ty - c.Y) * frac
		}
	}

	if c.shakeDuration > 0 {
		c.shakeElapsed += dt
		if c.shakeElapsed >= c.shakeDuration {
			c.shakeDuration = 0
			c.shakeX, c.shakeY = 0, 0
		} else {
			progress := c.shakeElapsed / c.shakeDuration
			decay := c.shakeIntensity * (1 - progress)
			c.shakeX = (c.rng.Float64()*2 - 1) * decay
			c.shakeY = (c.rng.Float64()*2 - 1) * decay
		}
	}
}

// ShakeOffset returns the current shake displacement, zero when inactive.
func (c *Camera) ShakeOffset() Vec2 {
	return Vec2{X: c.shakeX, Y: c.shakeY}
}

// viewMatrix composes, in order: translate to viewport center, scale by
// zoom, rotate, translate by the negative camera position plus shake offset.
// The fixed order makes zoom and rotation pivot around the viewport center
// rather than the world origin.
func (c *Camera) viewMatrix() [6]float64 {
	cx := c.ViewportW / 2
	cy := c.ViewportH / 2

	cos := math.Cos(-c.Rotation)
	sin := math.Sin(-c.Rotation)
	z := c.Zoom

	px := c.X - c.shakeX
	py := c.Y - c.shakeY

	a := z * cos
	b := z * sin
	cc := -z * sin
	d := z * cos
	tx := cx + z*(-cos*px+sin*py)
	ty := cy + z*(-sin*px-cos*py)

	return [6]float64{a, b, cc, d, tx, ty}
}

// ApplyTransform pushes the camera's view transform onto the surface. The
// caller is responsible for the surrounding Save/Restore pair.
func (c *Camera) ApplyTransform(s Surface) {
	s.Translate(c.ViewportW/2, c.ViewportH/2)
	s.Scale(c.Zoom, c.Zoom)
	s.Rotate(-c.Rotation)
	s.Translate(-c.X+c.shakeX, -c.Y+c.shakeY)
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return transformPoint(c.viewMatrix(), wx, wy)
}

// ScreenToWorld converts screen coordinates to world coordinates. It is the
// exact inverse of WorldToScreen modulo floating-point error.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return transformPoint(invertAffine(c.viewMatrix()), sx, sy)
}

// VisibleBounds returns the axis-aligned bounding rect of the camera's
// visible area in world space.
func (c *Camera) VisibleBounds() Rect {
	inv := invertAffine(c.viewMatrix())

	x0, y0 := transformPoint(inv, 0, 0)
	x1, y1 := transformPoint(inv, c.ViewportW, 0)
	x2, y2 := transformPoint(inv, c.ViewportW, c.ViewportH)
	x3, y3 := transformPoint(inv, 0, c.ViewportH)

	minX := math.Min(math.Min(x0, x1), math.Min(x2, x3))
	minY := math.Min(math.Min(y0, y1), math.Min(y2, y3))
	maxX := math.Max(math.Max(x0, x1), math.Max(x2, x3))
	maxY := math.Max(math.Max(y0, y1), math.Max(y2, y3))

	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
