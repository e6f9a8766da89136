package aspen

import (
	"fmt"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// recordingSurface captures draw calls for render-order assertions.
type recordingSurface struct {
	ops   []string
	depth int
}

func (r *recordingSurface) Save()    { r.depth++; r.ops = append(r.ops, "save") }
func (r *recordingSurface) Restore() { r.depth--; r.ops = append(r.ops, "restore") }

func (r *recordingSurface) Translate(x, y float64) {}
func (r *recordingSurface) Scale(sx, sy float64)   {}
func (r *recordingSurface) Rotate(radians float64) {}
func (r *recordingSurface) MulAlpha(a float64)     {}

func (r *recordingSurface) FillRect(x, y, w, h float64, c Color) {
	r.ops = append(r.ops, fmt.Sprintf("rect %gx%g", w, h))
}
func (r *recordingSurface) FillRoundedRect(x, y, w, h, radius float64, c Color) {
	r.ops = append(r.ops, fmt.Sprintf("roundedrect %gx%g", w, h))
}
func (r *recordingSurface) FillCircle(cx, cy, radius float64, c Color) {
	r.ops = append(r.ops, fmt.Sprintf("circle r%g", radius))
}
func (r *recordingSurface) DrawImage(img *ebiten.Image)       { r.ops = append(r.ops, "image") }
func (r *recordingSurface) DrawText(text string, x, y float64) { r.ops = append(r.ops, "text "+text) }

func (r *recordingSurface) draws() []string {
	var out []string
	for _, op := range r.ops {
		if op != "save" && op != "restore" {
			out = append(out, op)
		}
	}
	return out
}

func TestSceneAddRemove(t *testing.T) {
	s := NewScene()
	e := NewContainer("thing")

	var added, removed int
	s.On(EventEntityAdded, func(Event) { added++ })
	s.On(EventEntityRemoved, func(Event) { removed++ })

	s.Add(e)
	s.Add(e) // duplicate: silent
	if !s.Contains(e) {
		t.Errorf("Contains = false after Add")
	}
	if added != 1 {
		t.Errorf("entityadded fired %d times, want 1", added)
	}
	if e.Scene() != s {
		t.Errorf("entity scene pointer not set")
	}

	s.Remove(e)
	s.Remove(e) // non-member: silent
	if s.Contains(e) {
		t.Errorf("Contains = true after Remove")
	}
	if removed != 1 {
		t.Errorf("entityremoved fired %d times, want 1", removed)
	}
	if e.Destroyed() {
		t.Errorf("Remove destroyed the entity")
	}
}

func TestSceneAddDestroyedIgnored(t *testing.T) {
	s := NewScene()
	e := NewContainer("dead")
	e.Destroy()
	s.Add(e)
	if s.Contains(e) {
		t.Errorf("destroyed entity was added")
	}
}

func TestSceneAddMovesBetweenScenes(t *testing.T) {
	s1 := NewScene()
	s2 := NewScene()
	e := NewContainer("mover")

	s1.Add(e)
	s2.Add(e)
	if s1.Contains(e) {
		t.Errorf("entity still in first scene")
	}
	if !s2.Contains(e) {
		t.Errorf("entity not in second scene")
	}
}

func TestSceneDestroyedEntityDetaches(t *testing.T) {
	s := NewScene()
	e := NewContainer("thing")
	s.Add(e)

	removed := 0
	s.On(EventEntityRemoved, func(Event) { removed++ })
	e.Destroy()
	if s.Contains(e) {
		t.Errorf("scene still contains destroyed entity")
	}
	if removed != 1 {
		t.Errorf("entityremoved fired %d times, want 1", removed)
	}
	if len(s.Entities()) != 0 {
		t.Errorf("Entities() has %d entries, want 0", len(s.Entities()))
	}
}

func TestSceneFindByTag(t *testing.T) {
	s := NewScene()
	a := NewContainer("a")
	a.AddTag("enemy")
	b := NewContainer("b")
	b.AddTag("enemy")
	c := NewContainer("c")
	s.Add(a)
	s.Add(b)
	s.Add(c)

	found := s.FindByTag("enemy")
	if len(found) != 2 || found[0] != a || found[1] != b {
		t.Errorf("FindByTag returned %d entities, want [a b]", len(found))
	}
	if s.FindByTag("missing") != nil {
		t.Errorf("FindByTag(missing) != nil")
	}
}

func TestSceneRenderOrder(t *testing.T) {
	s := NewScene()
	back := NewText("back", "back")
	back.ZIndex = -1
	midA := NewText("midA", "midA")
	midB := NewText("midB", "midB")
	front := NewText("front", "front")
	front.ZIndex = 5

	// Insertion order deliberately scrambled; ties (midA, midB) keep it.
	s.Add(front)
	s.Add(midA)
	s.Add(midB)
	s.Add(back)

	r := &recordingSurface{}
	s.Render(r)
	want := []string{"text back", "text midA", "text midB", "text front"}
	got := r.draws()
	if len(got) != len(want) {
		t.Fatalf("draw ops = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("draw[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if r.depth != 0 {
		t.Errorf("save/restore unbalanced: depth %d", r.depth)
	}
}

func TestSceneRenderSkipsInvisible(t *testing.T) {
	s := NewScene()
	hidden := NewRect("hidden", 10, 10, ColorWhite)
	hidden.Visible = false
	child := NewText("child", "child")
	hidden.AddChild(child)
	s.Add(hidden)

	r := &recordingSurface{}
	s.Render(r)
	if len(r.ops) != 0 {
		t.Errorf("invisible subtree produced draw ops: %v", r.ops)
	}
}

func TestSceneZIndexChangeResorts(t *testing.T) {
	s := NewScene()
	a := NewText("a", "a")
	b := NewText("b", "b")
	s.Add(a)
	s.Add(b)
	s.Render(&recordingSurface{}) // settle the sorted order

	a.SetZIndex(10)
	r := &recordingSurface{}
	s.Render(r)
	got := r.draws()
	if len(got) != 2 || got[0] != "text b" || got[1] != "text a" {
		t.Errorf("draw ops after resort = %v, want [text b, text a]", got)
	}
}

func TestSceneCollisionLifecycle(t *testing.T) {
	s := NewScene()
	a := NewRect("a", 50, 50, ColorWhite)
	a.CheckCollisions = true
	b := NewRect("b", 50, 50, ColorWhite)
	b.X = 200
	s.Add(a)
	s.Add(b)

	var got []EventType
	for _, ev := range []EventType{EventCollisionEnter, EventCollide, EventCollisionExit} {
		ev := ev
		a.On(ev, func(Event) { got = append(got, ev) })
	}

	s.Update(0.016) // apart
	b.X = 20
	s.Update(0.016) // enter
	s.Update(0.016) // sustained
	b.X = 200
	s.Update(0.016) // exit
	s.Update(0.016) // apart

	want := []EventType{EventCollisionEnter, EventCollide, EventCollisionExit}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestSceneCollisionBothSidesSameFrame(t *testing.T) {
	s := NewScene()
	a := NewRect("a", 50, 50, ColorWhite)
	a.CheckCollisions = true
	b := NewRect("b", 50, 50, ColorWhite)
	b.CheckCollisions = true
	b.X = 20
	s.Add(a)
	s.Add(b)

	aEnter, bEnter := 0, 0
	a.On(EventCollisionEnter, func(Event) { aEnter++ })
	b.On(EventCollisionEnter, func(Event) { bEnter++ })

	s.Update(0.016)
	if aEnter != 1 || bEnter != 1 {
		t.Errorf("enter counts = (%d, %d), want both 1 in the same frame", aEnter, bEnter)
	}
}

func TestSceneCollisionTagFilter(t *testing.T) {
	s := NewScene()
	player := NewRect("player", 50, 50, ColorWhite)
	player.CheckCollisions = true
	player.CollidesWith = []string{"enemy"}

	wall := NewRect("wall", 50, 50, ColorWhite)
	wall.X = 20
	s.Add(player)
	s.Add(wall)

	fired := 0
	player.On(EventCollisionEnter, func(ev Event) {
		fired++
		if ev.Other != wall {
			t.Errorf("Other = %v, want wall", ev.Other)
		}
	})

	s.Update(0.016)
	if fired != 0 {
		t.Errorf("filter ignored: collisionenter fired for untagged entity")
	}

	wall.AddTag("enemy")
	s.Update(0.016)
	if fired != 1 {
		t.Errorf("collisionenter fired %d times for tagged entity, want 1", fired)
	}
}

func TestSceneCollisionDestroyInHandler(t *testing.T) {
	s := NewScene()
	bullet := NewRect("bullet", 10, 10, ColorWhite)
	bullet.CheckCollisions = true
	target := NewRect("target", 10, 10, ColorWhite)
	s.Add(bullet)
	s.Add(target)

	bullet.On(EventCollisionEnter, func(ev Event) {
		ev.Other.Destroy()
		bullet.Destroy()
	})

	// Must not panic; subsequent frames run clean.
	s.Update(0.016)
	s.Update(0.016)
	if s.Contains(bullet) || s.Contains(target) {
		t.Errorf("destroyed entities still registered")
	}
}

func TestSceneUpdateMovesEntities(t *testing.T) {
	s := NewScene()
	e := NewContainer("mover")
	e.VX = 10
	s.Add(e)
	s.Update(0.5)
	if !approxEqual(e.X, 5) {
		t.Errorf("x = %v after scene update, want 5", e.X)
	}
}

func TestSceneHitTestTopmost(t *testing.T) {
	s := NewScene()
	bottom := NewRect("bottom", 100, 100, ColorWhite)
	bottom.Interactive = true
	top := NewRect("top", 100, 100, ColorWhite)
	top.Interactive = true
	top.ZIndex = 1
	s.Add(bottom)
	s.Add(top)

	if got := s.HitTest(0, 0); got != top {
		t.Errorf("HitTest = %v, want top", got)
	}

	top.Visible = false
	if got := s.HitTest(0, 0); got != bottom {
		t.Errorf("HitTest with top hidden = %v, want bottom", got)
	}
}

func TestSceneHitTestChildOverParent(t *testing.T) {
	s := NewScene()
	panel := NewRect("panel", 200, 200, ColorWhite)
	panel.Interactive = true
	button := NewRect("button", 50, 50, ColorWhite)
	button.Interactive = true
	// Child coordinates are relative to the parent's box origin; (100, 100)
	// is the center of the 200x200 panel.
	button.X = 100
	button.Y = 100
	panel.AddChild(button)
	s.Add(panel)

	// The child paints after its parent, so it wins where they overlap.
	if got := s.HitTest(0, 0); got != button {
		t.Errorf("HitTest = %v, want button", got)
	}
	if got := s.HitTest(-90, -90); got != panel {
		t.Errorf("HitTest outside the button = %v, want panel", got)
	}
	if got := s.HitTest(500, 500); got != nil {
		t.Errorf("HitTest in empty space = %v, want nil", got)
	}
}

func TestSceneHitTestNonInteractive(t *testing.T) {
	s := NewScene()
	e := NewRect("decoration", 100, 100, ColorWhite)
	s.Add(e)
	if got := s.HitTest(0, 0); got != nil {
		t.Errorf("HitTest = %v for non-interactive entity, want nil", got)
	}
}

func TestSceneDelayTimer(t *testing.T) {
	s := NewScene()
	fired := 0
	s.Delay(0.5, func() { fired++ })

	s.Update(0.3)
	if fired != 0 {
		t.Errorf("timer fired early")
	}
	s.Update(0.3)
	if fired != 1 {
		t.Errorf("fired = %d after delay elapsed, want 1", fired)
	}
	s.Update(1.0)
	if fired != 1 {
		t.Errorf("one-shot timer fired again: %d", fired)
	}
}

func TestSceneEveryTimer(t *testing.T) {
	s := NewScene()
	fired := 0
	timer := s.Every(0.1, func() { fired++ })

	for i := 0; i < 5; i++ {
		s.Update(0.1)
	}
	if fired != 5 {
		t.Errorf("fired = %d after 5 intervals, want 5", fired)
	}

	timer.Cancel()
	s.Update(0.5)
	if fired != 5 {
		t.Errorf("cancelled timer kept firing: %d", fired)
	}
}

func TestSceneEveryTimerCatchesUp(t *testing.T) {
	s := NewScene()
	fired := 0
	s.Every(0.1, func() { fired++ })

	// One big step covers three intervals.
	s.Update(0.35)
	if fired != 3 {
		t.Errorf("fired = %d for a 0.35s step at 0.1s interval, want 3", fired)
	}
}

func TestSceneTimerCancelInsideCallback(t *testing.T) {
	s := NewScene()
	fired := 0
	var timer *Timer
	timer = s.Every(0.1, func() {
		fired++
		timer.Cancel()
	})

	s.Update(0.5)
	s.Update(0.5)
	if fired != 1 {
		t.Errorf("fired = %d after self-cancel, want 1", fired)
	}
}

func TestSceneDestroyCancelsTimers(t *testing.T) {
	s := NewScene()
	fired := 0
	s.Every(0.1, func() { fired++ })
	e := NewContainer("thing")
	s.Add(e)

	s.Destroy()
	s.Update(1.0)
	if fired != 0 {
		t.Errorf("timer fired after scene destroy")
	}
	if s.Contains(e) {
		t.Errorf("scene still contains entity after destroy")
	}
	if e.Destroyed() {
		t.Errorf("scene destroy destroyed the entity")
	}
}

func TestSceneEnterExit(t *testing.T) {
	s := NewScene()
	var seen []EventType
	s.On(EventEnter, func(ev Event) { seen = append(seen, ev.Type) })
	s.On(EventExit, func(ev Event) { seen = append(seen, ev.Type) })

	s.OnEnter()
	if !s.IsActive() {
		t.Errorf("IsActive = false after OnEnter")
	}
	s.OnExit()
	if s.IsActive() {
		t.Errorf("IsActive = true after OnExit")
	}
	if len(seen) != 2 || seen[0] != EventEnter || seen[1] != EventExit {
		t.Errorf("lifecycle events = %v, want [enter exit]", seen)
	}
}
