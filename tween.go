package aspen

import "github.com/tanema/gween/ease"

// tweenField is one animated property: a pointer to the value plus its
// captured start and configured end.
type tweenField struct {
	ptr  *float64
	from float64
	to   float64
}

// Tween interpolates one or more float64 fields from their current values to
// target values over a fixed duration.
//
// Start values are captured lazily, on the first update after the configured
// delay has elapsed, not at construction. A delayed tween therefore picks up
// whatever the fields hold at the moment interpolation actually begins.
//
// A Tween does nothing until registered with a TweenManager (or driven
// manually via Update).
type Tween struct {
	fields   []tweenField
	duration float64
	delay    float64
	easing   ease.TweenFunc

	elapsed  float64
	captured bool
	done     bool
	stopped  bool

	target     *Entity // optional: interpolation halts if the target is destroyed
	onUpdate   func(progress float64)
	onComplete func()
}

// NewTween creates a tween with the given duration in seconds. Fields are
// attached with Field or the To* helpers. A nil easing defaults to linear.
func NewTween(duration float64, fn ease.TweenFunc) *Tween {
	if fn == nil {
		fn = ease.Linear
	}
	return &Tween{duration: duration, easing: fn}
}

// Field adds an animated property. Returns the tween for chaining.
func (t *Tween) Field(ptr *float64, to float64) *Tween {
	t.fields = append(t.fields, tweenField{ptr: ptr, to: to})
	return t
}

// Delay defers the start of interpolation by d seconds.
func (t *Tween) Delay(d float64) *Tween {
	t.delay = d
	return t
}

// Bind ties the tween's lifetime to an entity: once the entity is destroyed
// the tween completes silently without writing further values.
func (t *Tween) Bind(e *Entity) *Tween {
	t.target = e
	return t
}

// OnUpdate sets a callback invoked after each update with the eased progress.
func (t *Tween) OnUpdate(fn func(progress float64)) *Tween {
	t.onUpdate = fn
	return t
}

// Then appends a completion callback. Multiple Then calls compose: callbacks
// run in the order they were added, each exactly once.
func (t *Tween) Then(fn func()) *Tween {
	if prev := t.onComplete; prev != nil {
		t.onComplete = func() {
			prev()
			fn()
		}
	} else {
		t.onComplete = fn
	}
	return t
}

// Stop halts the tween without firing completion callbacks. Idempotent, and a
// no-op after completion.
func (t *Tween) Stop() {
	t.stopped = true
}

// Done reports whether the tween has completed or been stopped.
func (t *Tween) Done() bool {
	return t.done || t.stopped
}

// Update advances the tween by dt seconds and returns true once it has
// finished. Calling Update after completion is a no-op.
func (t *Tween) Update(dt float64) bool {
	if t.done || t.stopped {
		return true
	}
	if t.target != nil && t.target.Destroyed() {
		t.done = true
		return true
	}

	t.elapsed += dt
	active := t.elapsed - t.delay
	if active < 0 {
		return false
	}

	if !t.captured {
		for i := range t.fields {
			t.fields[i].from = *t.fields[i].ptr
		}
		t.captured = true
	}

	// Zero duration completes on the first active update.
	progress := 1.0
	if t.duration > 0 {
		progress = active / t.duration
		if progress > 1 {
			progress = 1
		}
	}

	if progress >= 1 {
		// Write exact end values, immune to easing round-off.
		for i := range t.fields {
			*t.fields[i].ptr = t.fields[i].to
		}
		t.done = true
		if t.onUpdate != nil {
			t.onUpdate(1)
		}
		if t.onComplete != nil {
			t.onComplete()
		}
		return true
	}

	eased := float64(t.easing(float32(progress), 0, 1, 1))
	for i := range t.fields {
		f := &t.fields[i]
		*f.ptr = f.from + (f.to-f.from)*eased
	}
	if t.onUpdate != nil {
		t.onUpdate(eased)
	}
	return false
}

// --- Entity convenience constructors ---

// TweenPosition animates an entity's X and Y.
func TweenPosition(e *Entity, toX, toY, duration float64, fn ease.TweenFunc) *Tween {
	return NewTween(duration, fn).Bind(e).Field(&e.X, toX).Field(&e.Y, toY)
}

// TweenScale animates an entity's ScaleX and ScaleY.
func TweenScale(e *Entity, toSX, toSY, duration float64, fn ease.TweenFunc) *Tween {
	return NewTween(duration, fn).Bind(e).Field(&e.ScaleX, toSX).Field(&e.ScaleY, toSY)
}

// TweenAlpha animates an entity's Alpha.
func TweenAlpha(e *Entity, to, duration float64, fn ease.TweenFunc) *Tween {
	return NewTween(duration, fn).Bind(e).Field(&e.Alpha, to)
}

// TweenRotation animates an entity's Rotation.
func TweenRotation(e *Entity, to, duration float64, fn ease.TweenFunc) *Tween {
	return NewTween(duration, fn).Bind(e).Field(&e.Rotation, to)
}

// TweenManager drives a set of tweens once per frame. Membership is
// identity-based: adding the same tween twice has no effect. Completed and
// stopped tweens are evicted in the same update pass that finishes them.
//
// A manager is an explicitly constructed service owned by the Game (or the
// host), never a process-wide global, so concurrent Game instances stay
// isolated.
type TweenManager struct {
	tweens map[*Tween]struct{}
	order  []*Tween
}

// NewTweenManager creates an empty tween registry.
func NewTweenManager() *TweenManager {
	return &TweenManager{tweens: make(map[*Tween]struct{})}
}

// Add registers a tween. Duplicate adds are ignored.
func (m *TweenManager) Add(t *Tween) *Tween {
	if t == nil {
		return nil
	}
	if _, ok := m.tweens[t]; ok {
		return t
	}
	m.tweens[t] = struct{}{}
	m.order = append(m.order, t)
	return t
}

// Remove drops a tween from the registry without stopping it.
func (m *TweenManager) Remove(t *Tween) {
	if _, ok := m.tweens[t]; !ok {
		return
	}
	delete(m.tweens, t)
	for i, other := range m.order {
		if other == t {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered tweens.
func (m *TweenManager) Len() int {
	return len(m.tweens)
}

// Update advances every registered tween by dt and prunes finished ones.
// Completion callbacks may register new tweens; those start on the next
// update, not this one.
func (m *TweenManager) Update(dt float64) {
	if len(m.order) == 0 {
		return
	}
	snapshot := append([]*Tween(nil), m.order...)
	for _, t := range snapshot {
		if _, ok := m.tweens[t]; !ok {
			continue // removed by an earlier callback this frame
		}
		if t.Update(dt) {
			m.Remove(t)
		}
	}
}
