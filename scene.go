package aspen

import "sort"

// Scene owns the live set of entities updated and rendered together each
// frame. It drives per-entity updates, runs the collision scan, orders
// rendering by ZIndex, and owns ephemeral timers that die with it.
type Scene struct {
	Emitter

	game *Game

	// entities in insertion order; sorted is the render order, rebuilt when
	// sortDirty is set. Ties in ZIndex keep insertion order (stable sort).
	entities  []*Entity
	sorted    []*Entity
	sortDirty bool

	timers []*Timer

	active bool
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// SetGame binds the scene to its host Game. Called by Game.SetScene.
func (s *Scene) SetGame(g *Game) {
	s.game = g
}

// Game returns the bound host, or nil for a standalone scene.
func (s *Scene) Game() *Game {
	return s.game
}

// Add registers an entity with the scene. Duplicate adds and destroyed
// entities are silently ignored. Emits entityadded.
func (s *Scene) Add(e *Entity) {
	if e == nil || e.destroyed || e.scene == s {
		return
	}
	if e.scene != nil {
		e.scene.Remove(e)
	}
	e.scene = s
	s.entities = append(s.entities, e)
	s.sortDirty = true
	s.Emit(Event{Type: EventEntityAdded, Target: e})
}

// Remove detaches an entity from the scene. The entity keeps its state and
// listeners. Removing a non-member is a silent no-op. Emits entityremoved.
func (s *Scene) Remove(e *Entity) {
	if e == nil || e.scene != s {
		return
	}
	e.scene = nil
	s.detach(e)
}

// detach drops the entity from the registry and render order. Shared by
// Remove and Entity.Destroy.
func (s *Scene) detach(e *Entity) {
	for i, other := range s.entities {
		if other == e {
			copy(s.entities[i:], s.entities[i+1:])
			s.entities[len(s.entities)-1] = nil
			s.entities = s.entities[:len(s.entities)-1]
			s.sortDirty = true
			s.Emit(Event{Type: EventEntityRemoved, Target: e})
			return
		}
	}
}

// Contains reports scene membership.
func (s *Scene) Contains(e *Entity) bool {
	return e != nil && e.scene == s
}

// Entities returns a snapshot of the registered entities in insertion order.
func (s *Scene) Entities() []*Entity {
	return append([]*Entity(nil), s.entities...)
}

// FindByTag returns every registered entity carrying the tag.
func (s *Scene) FindByTag(tag string) []*Entity {
	var out []*Entity
	for _, e := range s.entities {
		if e.HasTag(tag) {
			out = append(out, e)
		}
	}
	return out
}

// renderOrder rebuilds the sorted list if dirty and returns it.
func (s *Scene) renderOrder() []*Entity {
	if s.sortDirty || len(s.sorted) != len(s.entities) {
		s.sorted = append(s.sorted[:0], s.entities...)
		sort.SliceStable(s.sorted, func(i, j int) bool {
			return s.sorted[i].ZIndex < s.sorted[j].ZIndex
		})
		s.sortDirty = false
	}
	return s.sorted
}

// Update advances timers, updates every active entity, then runs a single
// collision pass. Iteration is over defensive snapshots throughout: a timer
// callback or event listener may add, remove, or destroy entities (including
// the one currently dispatching) without corrupting the frame.
func (s *Scene) Update(dt float64) {
	if len(s.timers) > 0 {
		timers := append([]*Timer(nil), s.timers...)
		for _, t := range timers {
			if t.advance(dt) {
				s.dropTimer(t)
			}
		}
	}

	s.renderOrder()

	entities := append([]*Entity(nil), s.entities...)
	for _, e := range entities {
		if !e.destroyed && e.Active {
			e.Update(dt)
		}
	}

	s.collisionPass(entities)
}

// collisionPass scans every pair of registered entities where at least one
// side opted into collision checks. Overlap per pair is computed exactly once
// and both sides' recorded state is updated only after both sides have had
// the chance to emit, keeping transition detection symmetric: when A starts
// overlapping B, A's collisionenter fires in the same frame B's state also
// reflects the overlap, even if B never runs its own checks.
//
// The scan is O(n²) over eligible entities. The engine targets small entity
// counts (tens, not thousands), so no spatial index is used.
func (s *Scene) collisionPass(entities []*Entity) {
	for i := 0; i < len(entities); i++ {
		a := entities[i]
		if a.destroyed {
			continue
		}
		for j := i + 1; j < len(entities); j++ {
			b := entities[j]
			if b.destroyed {
				continue
			}
			aWants := a.CheckCollisions && a.matchesFilter(b)
			bWants := b.CheckCollisions && b.matchesFilter(a)
			if !aWants && !bWants {
				continue
			}
			overlap := a.Intersects(b)
			if aWants {
				a.emitCollisionTransition(b, overlap)
			}
			if bWants && !b.destroyed && !a.destroyed {
				b.emitCollisionTransition(a, overlap)
			}
			a.setCollisionState(b, overlap)
			b.setCollisionState(a, overlap)
		}
	}
}

// Render draws every visible entity in ascending ZIndex.
func (s *Scene) Render(surface Surface) {
	for _, e := range s.renderOrder() {
		e.Render(surface)
	}
}

// HitTest returns the topmost interactive entity whose box contains the
// world-space point, or nil. "Topmost" is reverse render order: entities and
// their children are collected in paint order and scanned back to front.
func (s *Scene) HitTest(wx, wy float64) *Entity {
	var buf []*Entity
	for _, e := range s.renderOrder() {
		buf = collectInteractive(e, buf)
	}
	for i := len(buf) - 1; i >= 0; i-- {
		if buf[i].ContainsPoint(wx, wy) {
			return buf[i]
		}
	}
	return nil
}

// collectInteractive appends interactive entities in paint order (DFS,
// ZIndex-sorted children). Invisible subtrees are skipped entirely.
func collectInteractive(e *Entity, buf []*Entity) []*Entity {
	if e.destroyed || !e.Visible {
		return buf
	}
	if e.Interactive {
		buf = append(buf, e)
	}
	for _, child := range e.orderedChildren() {
		buf = collectInteractive(child, buf)
	}
	return buf
}

// --- Timers ---

// Delay schedules fn to run once after d seconds of scene updates. The
// returned Timer can be cancelled; Scene.Destroy cancels all outstanding
// timers.
func (s *Scene) Delay(d float64, fn func()) *Timer {
	t := &Timer{remaining: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Every schedules fn to run every interval seconds until cancelled.
func (s *Scene) Every(interval float64, fn func()) *Timer {
	t := &Timer{remaining: interval, interval: interval, repeat: true, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (s *Scene) dropTimer(t *Timer) {
	for i, other := range s.timers {
		if other == t {
			copy(s.timers[i:], s.timers[i+1:])
			s.timers[len(s.timers)-1] = nil
			s.timers = s.timers[:len(s.timers)-1]
			return
		}
	}
}

// --- Lifecycle ---

// OnEnter marks the scene active and emits enter. Called by Game.SetScene.
func (s *Scene) OnEnter() {
	s.active = true
	s.Emit(Event{Type: EventEnter})
}

// OnExit marks the scene inactive and emits exit.
func (s *Scene) OnExit() {
	s.active = false
	s.Emit(Event{Type: EventExit})
}

// IsActive reports whether the scene is between OnEnter and OnExit.
func (s *Scene) IsActive() bool {
	return s.active
}

// Destroy cancels all outstanding timers atomically and clears all entities
// from the scene. Entities are removed, not destroyed — their lifetimes
// belong to the host.
func (s *Scene) Destroy() {
	for _, t := range s.timers {
		t.Cancel()
	}
	s.timers = nil

	entities := append([]*Entity(nil), s.entities...)
	for _, e := range entities {
		s.Remove(e)
	}
}
