package aspen

// EventType identifies a class of engine event.
type EventType string

// Lifecycle and instrumentation events.
const (
	EventEntityAdded   EventType = "entityadded"
	EventEntityRemoved EventType = "entityremoved"
	EventEnter         EventType = "enter"
	EventExit          EventType = "exit"
	EventUpdate        EventType = "update"
	EventRender        EventType = "render"
)

// Gesture events.
const (
	EventTap       EventType = "tap"
	EventLongPress EventType = "longpress"
	EventSwipe     EventType = "swipe"
	EventDragStart EventType = "dragstart"
	EventDrag      EventType = "drag"
	EventDragEnd   EventType = "dragend"
)

// Collision and animation events.
const (
	EventCollisionEnter    EventType = "collisionenter"
	EventCollide           EventType = "collide"
	EventCollisionExit     EventType = "collisionexit"
	EventAnimationComplete EventType = "animationcomplete"
)

// SwipeDirection is the dominant axis of a swipe gesture.
type SwipeDirection uint8

const (
	SwipeLeft SwipeDirection = iota
	SwipeRight
	SwipeUp
	SwipeDown
)

// String returns the direction name.
func (d SwipeDirection) String() string {
	switch d {
	case SwipeLeft:
		return "left"
	case SwipeRight:
		return "right"
	case SwipeUp:
		return "up"
	default:
		return "down"
	}
}

// Event is the payload delivered to every subscriber. A single flat struct is
// used for all event classes; only the fields relevant to Type are populated.
type Event struct {
	Type   EventType
	Target *Entity

	// Gesture fields. X, Y are world-space coordinates.
	X, Y      float64
	DeltaX    float64 // drag: movement since the previous move sample
	DeltaY    float64
	Direction SwipeDirection
	Velocity  float64 // swipe: displacement / duration, units per second
	PointerID int

	// Collision partner.
	Other *Entity

	// Animation name for animationcomplete.
	Animation string

	// Frame delta for update/render instrumentation.
	DT float64
}

type subscriber struct {
	id   uint32
	fn   func(Event)
	once bool
}

// Emitter is an observer table keyed by event type. Dispatch is synchronous
// and reentrancy-safe: Emit iterates a snapshot of the subscriber list, so a
// listener may subscribe, unsubscribe, or destroy the emitting object without
// corrupting the iteration.
//
// The zero value is ready to use. Emitter is embedded by Entity, Scene,
// GestureManager, and Game.
type Emitter struct {
	subs   map[EventType][]subscriber
	nextID uint32
}

// Subscription is an unsubscribe token returned by On and Once.
type Subscription struct {
	em    *Emitter
	event EventType
	id    uint32
}

// On registers fn for the given event type. Subscribers fire in registration
// order.
func (e *Emitter) On(event EventType, fn func(Event)) Subscription {
	return e.subscribe(event, fn, false)
}

// Once registers fn to fire at most one time, after which it is removed.
func (e *Emitter) Once(event EventType, fn func(Event)) Subscription {
	return e.subscribe(event, fn, true)
}

func (e *Emitter) subscribe(event EventType, fn func(Event), once bool) Subscription {
	if e.subs == nil {
		e.subs = make(map[EventType][]subscriber)
	}
	e.nextID++
	e.subs[event] = append(e.subs[event], subscriber{id: e.nextID, fn: fn, once: once})
	return Subscription{em: e, event: event, id: e.nextID}
}

// Cancel removes the subscription. Safe to call more than once, and safe to
// call from inside a listener.
func (s Subscription) Cancel() {
	if s.em == nil {
		return
	}
	s.em.remove(s.event, s.id)
}

func (e *Emitter) remove(event EventType, id uint32) {
	list := e.subs[event]
	for i := range list {
		if list[i].id == id {
			copy(list[i:], list[i+1:])
			list[len(list)-1] = subscriber{}
			e.subs[event] = list[:len(list)-1]
			return
		}
	}
}

// Emit calls every subscriber registered for ev.Type, in order. Once
// subscribers are removed before their callback runs, so they fire exactly
// one time even if the callback re-emits the same event.
func (e *Emitter) Emit(ev Event) {
	list := e.subs[ev.Type]
	if len(list) == 0 {
		return
	}
	snapshot := append([]subscriber(nil), list...)
	for _, sub := range snapshot {
		if sub.once {
			e.remove(ev.Type, sub.id)
		}
		sub.fn(ev)
	}
}

// ListenerCount returns the number of subscribers for an event type.
func (e *Emitter) ListenerCount(event EventType) int {
	return len(e.subs[event])
}

// RemoveAllListeners drops every subscriber for every event type.
func (e *Emitter) RemoveAllListeners() {
	e.subs = nil
}
