package aspen

import "testing"

func TestEmitterOnAndEmit(t *testing.T) {
	var em Emitter
	var got []int

	em.On(EventTap, func(Event) { got = append(got, 1) })
	em.On(EventTap, func(Event) { got = append(got, 2) })
	em.Emit(Event{Type: EventTap})

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("listeners fired %v, want [1 2] in registration order", got)
	}
}

func TestEmitterCancelIdempotent(t *testing.T) {
	var em Emitter
	fired := 0
	sub := em.On(EventTap, func(Event) { fired++ })

	sub.Cancel()
	sub.Cancel()
	em.Emit(Event{Type: EventTap})
	if fired != 0 {
		t.Errorf("fired = %d after cancel, want 0", fired)
	}
}

func TestEmitterOnceFiresExactlyOnce(t *testing.T) {
	var em Emitter
	fired := 0
	em.Once(EventTap, func(Event) { fired++ })

	em.Emit(Event{Type: EventTap})
	em.Emit(Event{Type: EventTap})
	if fired != 1 {
		t.Errorf("once listener fired %d times, want 1", fired)
	}
}

func TestEmitterOnceReentrantEmit(t *testing.T) {
	var em Emitter
	fired := 0
	em.Once(EventTap, func(Event) {
		fired++
		// Re-emitting from inside the callback must not re-trigger it.
		em.Emit(Event{Type: EventTap})
	})

	em.Emit(Event{Type: EventTap})
	if fired != 1 {
		t.Errorf("once listener fired %d times, want 1", fired)
	}
}

func TestEmitterSnapshotDispatch(t *testing.T) {
	var em Emitter
	var order []string

	var subB Subscription
	em.On(EventTap, func(Event) {
		order = append(order, "a")
		subB.Cancel()
	})
	subB = em.On(EventTap, func(Event) {
		order = append(order, "b")
	})

	// The listener list is snapshotted before dispatch: cancelling b from
	// inside a does not skip b this emit, but removes it for the next.
	em.Emit(Event{Type: EventTap})
	em.Emit(Event{Type: EventTap})
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "a" {
		t.Errorf("dispatch order = %v, want [a b a]", order)
	}
}

func TestEmitterSubscribeDuringEmit(t *testing.T) {
	var em Emitter
	fired := 0
	em.On(EventTap, func(Event) {
		if fired == 0 {
			em.On(EventTap, func(Event) { fired += 10 })
		}
		fired++
	})

	em.Emit(Event{Type: EventTap})
	if fired != 1 {
		t.Errorf("fired = %d, want 1 (new listener must not run this emit)", fired)
	}
	em.Emit(Event{Type: EventTap})
	if fired != 12 {
		t.Errorf("fired = %d after second emit, want 12", fired)
	}
}

func TestEmitterRemoveAllListeners(t *testing.T) {
	var em Emitter
	fired := 0
	em.On(EventTap, func(Event) { fired++ })
	em.On(EventSwipe, func(Event) { fired++ })
	em.RemoveAllListeners()

	em.Emit(Event{Type: EventTap})
	em.Emit(Event{Type: EventSwipe})
	if fired != 0 {
		t.Errorf("fired = %d after RemoveAllListeners, want 0", fired)
	}
	if em.ListenerCount(EventTap) != 0 {
		t.Errorf("ListenerCount = %d, want 0", em.ListenerCount(EventTap))
	}
}
