package aspen

import "math"

// Gesture classification thresholds. Distances are in world units, which
// equal pixels at zoom 1; times are in seconds.
const (
	tapMaxDistance   = 10.0
	tapMaxDuration   = 0.3
	swipeMinDistance = 30.0
	longPressDelay   = 0.5
)

// PointerPhase is the stage of a raw pointer sample.
type PointerPhase uint8

const (
	PointerDown PointerPhase = iota
	PointerMove
	PointerUp
	PointerCancel
)

// PointerEvent is one raw input sample, pre-translated by the host into
// canvas-local pixel coordinates. ID 0 is reserved for the mouse; touch
// identifiers use their own IDs.
type PointerEvent struct {
	ID    int
	X, Y  float64
	Phase PointerPhase
}

// pointerState is the per-active-pointer record. Created on down, mutated on
// move, destroyed on up or cancel — never persisted beyond the gesture.
type pointerState struct {
	id             int
	startX, startY float64 // world space
	x, y           float64
	prevX, prevY   float64
	downAt         float64 // manager clock at pointer-down
	target         *Entity // topmost interactive entity at the down position
	longPressArmed bool
}

// GestureManager consumes raw pointer input, maintains per-pointer state
// machines, and resolves them into semantic gesture events (tap, longpress,
// swipe, drag) dispatched onto the hit entity and onto the manager itself.
//
// Coordinates are converted canvas-local → world via the camera before any
// hit testing, so camera pan and zoom never desynchronize input from what
// the user sees. Only one drag session is tracked globally; simultaneous
// multi-finger drags on different entities are not supported. Two-finger
// pinch input is deliberately left unhandled: the per-pointer state stays
// consistent but no pinch event exists.
type GestureManager struct {
	Emitter

	scene  *Scene
	camera *Camera

	now      float64
	pointers map[int]*pointerState

	dragTarget  *Entity
	dragPointer int
}

// NewGestureManager creates a manager that hit-tests against scene and
// converts coordinates through camera. Either may be nil: without a scene no
// entity targeting occurs, and without a camera coordinates pass through
// unchanged.
func NewGestureManager(scene *Scene, camera *Camera) *GestureManager {
	return &GestureManager{
		scene:    scene,
		camera:   camera,
		pointers: make(map[int]*pointerState),
	}
}

// SetScene swaps the hit-test target, clearing any in-flight pointer state.
func (g *GestureManager) SetScene(scene *Scene) {
	g.cancelAll()
	g.scene = scene
}

// Update advances the manager clock by dt seconds and fires any due
// long-press timers. Call once per frame.
func (g *GestureManager) Update(dt float64) {
	g.now += dt
	for _, ps := range g.pointers {
		if ps.longPressArmed && g.now-ps.downAt >= longPressDelay {
			ps.longPressArmed = false
			g.dispatch(ps.target, Event{
				Type:      EventLongPress,
				Target:    ps.target,
				X:         ps.startX,
				Y:         ps.startY,
				PointerID: ps.id,
			})
		}
	}
}

// Pointer feeds one raw input sample through the state machine. Events may
// arrive at any time relative to the frame tick.
func (g *GestureManager) Pointer(ev PointerEvent) {
	switch ev.Phase {
	case PointerDown:
		g.pointerDown(ev)
	case PointerMove:
		g.pointerMove(ev)
	case PointerUp:
		g.pointerUp(ev)
	case PointerCancel:
		g.cancelAll()
	}
}

// screenToWorld runs the coordinate pipeline: canvas-local → world.
func (g *GestureManager) screenToWorld(sx, sy float64) (float64, float64) {
	if g.camera == nil {
		return sx, sy
	}
	return g.camera.ScreenToWorld(sx, sy)
}

func (g *GestureManager) hitTest(wx, wy float64) *Entity {
	if g.scene == nil {
		return nil
	}
	return g.scene.HitTest(wx, wy)
}

// dispatch emits ev on the target entity (if any) and on the manager itself,
// in that order.
func (g *GestureManager) dispatch(target *Entity, ev Event) {
	if target != nil && !target.destroyed {
		target.Emit(ev)
	}
	g.Emit(ev)
}

func (g *GestureManager) pointerDown(ev PointerEvent) {
	wx, wy := g.screenToWorld(ev.X, ev.Y)
	ps := &pointerState{
		id:             ev.ID,
		startX:         wx,
		startY:         wy,
		x:              wx,
		y:              wy,
		prevX:          wx,
		prevY:          wy,
		downAt:         g.now,
		longPressArmed: true,
	}
	ps.target = g.hitTest(wx, wy)
	g.pointers[ev.ID] = ps

	if ps.target != nil && g.dragTarget == nil {
		g.dragTarget = ps.target
		g.dragPointer = ev.ID
		g.dispatch(ps.target, Event{
			Type:      EventDragStart,
			Target:    ps.target,
			X:         wx,
			Y:         wy,
			PointerID: ev.ID,
		})
	}
}

func (g *GestureManager) pointerMove(ev PointerEvent) {
	ps, ok := g.pointers[ev.ID]
	if !ok {
		return
	}
	wx, wy := g.screenToWorld(ev.X, ev.Y)
	ps.prevX, ps.prevY = ps.x, ps.y
	ps.x, ps.y = wx, wy

	// Movement past the tap threshold disarms the long-press timer.
	if ps.longPressArmed && distance(wx-ps.startX, wy-ps.startY) > tapMaxDistance {
		ps.longPressArmed = false
	}

	if g.dragTarget != nil && g.dragPointer == ev.ID {
		// Deltas are frame-to-frame, not cumulative from the start.
		g.dispatch(g.dragTarget, Event{
			Type:      EventDrag,
			Target:    g.dragTarget,
			X:         wx,
			Y:         wy,
			DeltaX:    wx - ps.prevX,
			DeltaY:    wy - ps.prevY,
			PointerID: ev.ID,
		})
	}
}

func (g *GestureManager) pointerUp(ev PointerEvent) {
	ps, ok := g.pointers[ev.ID]
	if !ok {
		return
	}
	delete(g.pointers, ev.ID)
	ps.longPressArmed = false

	wx, wy := g.screenToWorld(ev.X, ev.Y)

	// An active drag session always ends with dragend, regardless of how the
	// gesture classifies.
	if g.dragTarget != nil && g.dragPointer == ev.ID {
		g.dispatch(g.dragTarget, Event{
			Type:      EventDragEnd,
			Target:    g.dragTarget,
			X:         wx,
			Y:         wy,
			PointerID: ev.ID,
		})
		g.dragTarget = nil
	}

	dx := wx - ps.startX
	dy := wy - ps.startY
	dist := distance(dx, dy)
	dur := g.now - ps.downAt

	switch {
	case dist < tapMaxDistance && dur < tapMaxDuration:
		g.dispatch(ps.target, Event{
			Type:      EventTap,
			Target:    ps.target,
			X:         wx,
			Y:         wy,
			PointerID: ev.ID,
		})
	case dist > swipeMinDistance:
		var velocity float64
		if dur > 0 {
			velocity = dist / dur
		}
		g.dispatch(ps.target, Event{
			Type:      EventSwipe,
			Target:    ps.target,
			X:         wx,
			Y:         wy,
			Direction: swipeDirection(dx, dy),
			Velocity:  velocity,
			PointerID: ev.ID,
		})
	default:
		// The band between the tap and swipe thresholds is dropped on
		// purpose; neither event fires.
	}
}

// cancelAll clears every pointer, force-ends any active drag with dragend,
// and disarms pending long-press timers. No gesture event is emitted for the
// cancelled interactions themselves.
func (g *GestureManager) cancelAll() {
	if g.dragTarget != nil {
		if ps, ok := g.pointers[g.dragPointer]; ok {
			g.dispatch(g.dragTarget, Event{
				Type:      EventDragEnd,
				Target:    g.dragTarget,
				X:         ps.x,
				Y:         ps.y,
				PointerID: ps.id,
			})
		}
		g.dragTarget = nil
	}
	clear(g.pointers)
}

// swipeDirection resolves the dominant axis; ties favor horizontal.
func swipeDirection(dx, dy float64) SwipeDirection {
	if math.Abs(dx) >= math.Abs(dy) {
		if dx < 0 {
			return SwipeLeft
		}
		return SwipeRight
	}
	if dy < 0 {
		return SwipeUp
	}
	return SwipeDown
}

func distance(dx, dy float64) float64 {
	return math.Sqrt(dx*dx + dy*dy)
}
