package aspen

// Timer is a cancellable frame-driven timer owned by a Scene. Timers advance
// during Scene.Update, never on a background goroutine, so callbacks always
// run on the main thread inside the frame that fires them.
type Timer struct {
	remaining float64
	interval  float64
	repeat    bool
	fn        func()
	cancelled bool
}

// Cancel stops the timer before (or between) firings. Idempotent.
func (t *Timer) Cancel() {
	t.cancelled = true
}

// Cancelled reports whether Cancel has been called.
func (t *Timer) Cancelled() bool {
	return t.cancelled
}

// advance moves the timer forward by dt seconds and fires the callback when
// due. Returns true when the timer is exhausted and should be dropped.
func (t *Timer) advance(dt float64) bool {
	if t.cancelled {
		return true
	}
	t.remaining -= dt
	for t.remaining <= 0 {
		t.fn()
		if !t.repeat || t.cancelled {
			return true
		}
		t.remaining += t.interval
	}
	return false
}
