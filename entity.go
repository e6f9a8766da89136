package aspen

import (
	"fmt"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// EntityKind selects how an entity draws itself. A single flat Entity struct
// carries the fields for every kind; draw dispatch switches on Kind instead
// of relying on subclassing.
type EntityKind uint8

const (
	// KindContainer has no visual representation of its own.
	KindContainer EntityKind = iota
	// KindRect fills the entity's box with Color. A non-zero CornerRadius
	// rounds the corners.
	KindRect
	// KindCircle fills a circle inscribed in the entity's box.
	KindCircle
	// KindSprite draws Image scaled to the entity's box.
	KindSprite
	// KindAnimatedSprite draws the frame selected by the active animation.
	KindAnimatedSprite
	// KindText draws Text at the entity's origin.
	KindText
)

// entityIDCounter is a plain counter (no atomic — the engine is single-threaded).
var entityIDCounter uint32

func nextEntityID() uint32 {
	entityIDCounter++
	return entityIDCounter
}

// Entity is a positioned, transformable node in the scene graph, optionally
// visual and/or interactive. Entities own their children exclusively: a
// child's world transform is relative to its parent and destroying a parent
// destroys its children. Scene membership is a weak back-reference — removing
// an entity from a Scene does not destroy it.
type Entity struct {
	Emitter

	// Identity
	ID   uint32
	Name string
	Kind EntityKind

	// Transform
	X, Y             float64
	Rotation         float64 // radians
	ScaleX, ScaleY   float64
	AnchorX, AnchorY float64 // normalized [0,1] box space, default 0.5 (center)
	Width, Height    float64

	// Appearance
	Alpha        float64 // renderers clamp to [0,1]; not enforced here
	Color        Color
	CornerRadius float64        // KindRect only
	Image        *ebiten.Image  // KindSprite
	Frames       []*ebiten.Image // KindAnimatedSprite, indexed by animation frame values
	Text         string         // KindText

	// Behavior flags
	ZIndex      int
	Active      bool
	Visible     bool
	Interactive bool // eligible for gesture hit-testing

	// Physics
	VX, VY   float64
	Gravity  float64
	Friction float64 // multiplicative per-update damping, 1 = none

	// Collision configuration
	CheckCollisions bool
	CollidesWith    []string // tag filter; empty matches everything

	// tags is allocated lazily; most entities carry none.
	tags map[string]struct{}

	// Hierarchy
	parent   *Entity
	children []*Entity
	scene    *Scene

	childOrderDirty bool
	sortedChildren  []*Entity // reused buffer for ZIndex-ordered traversal

	// Animation
	animations AnimationSet
	playback   animPlayback

	// Collision state as of the previous scan, keyed by partner.
	colliding map[*Entity]bool

	destroyed bool
}

func entityDefaults(e *Entity) {
	e.ID = nextEntityID()
	e.ScaleX = 1
	e.ScaleY = 1
	e.AnchorX = 0.5
	e.AnchorY = 0.5
	e.Alpha = 1
	e.Color = ColorWhite
	e.Friction = 1
	e.Active = true
	e.Visible = true
}

// NewContainer creates an invisible grouping entity.
func NewContainer(name string) *Entity {
	e := &Entity{Name: name, Kind: KindContainer}
	entityDefaults(e)
	return e
}

// NewRect creates a filled rectangle entity.
func NewRect(name string, w, h float64, c Color) *Entity {
	e := &Entity{Name: name, Kind: KindRect, Width: w, Height: h}
	entityDefaults(e)
	e.Color = c
	return e
}

// NewCircle creates a filled circle entity with the given radius.
func NewCircle(name string, radius float64, c Color) *Entity {
	e := &Entity{Name: name, Kind: KindCircle, Width: radius * 2, Height: radius * 2}
	entityDefaults(e)
	e.Color = c
	return e
}

// NewSprite creates an image entity sized to the image's natural dimensions.
func NewSprite(name string, img *ebiten.Image) *Entity {
	e := &Entity{Name: name, Kind: KindSprite, Image: img}
	entityDefaults(e)
	if img != nil {
		b := img.Bounds()
		e.Width = float64(b.Dx())
		e.Height = float64(b.Dy())
	}
	return e
}

// NewAnimatedSprite creates an entity that plays named frame animations over
// the given frame images.
func NewAnimatedSprite(name string, frames []*ebiten.Image, animations AnimationSet) *Entity {
	e := &Entity{Name: name, Kind: KindAnimatedSprite, Frames: frames}
	entityDefaults(e)
	e.animations = animations
	if len(frames) > 0 && frames[0] != nil {
		b := frames[0].Bounds()
		e.Width = float64(b.Dx())
		e.Height = float64(b.Dy())
	}
	return e
}

// NewText creates a text entity.
func NewText(name, text string) *Entity {
	e := &Entity{Name: name, Kind: KindText, Text: text}
	entityDefaults(e)
	return e
}

// --- Hierarchy ---

// Parent returns the entity's parent, or nil.
func (e *Entity) Parent() *Entity {
	return e.parent
}

// Scene returns the scene this entity belongs to, or nil.
func (e *Entity) Scene() *Scene {
	return e.scene
}

// Children returns the child list. The returned slice MUST NOT be mutated by
// the caller.
func (e *Entity) Children() []*Entity {
	return e.children
}

// Destroyed reports whether Destroy has been called on this entity.
func (e *Entity) Destroyed() bool {
	return e.destroyed
}

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Entity) bool {
	for p := node; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// AddChild appends child to this entity's children. If child already has a
// parent it is re-parented. Destroyed entities are silently ignored.
// Panics if child is nil or if the add would create a cycle.
func (e *Entity) AddChild(child *Entity) {
	if child == nil {
		panic("aspen: cannot add nil child")
	}
	if e.destroyed || child.destroyed {
		return
	}
	if isAncestor(child, e) {
		panic("aspen: adding child would create a cycle")
	}
	if child.parent == e {
		return
	}
	if child.parent != nil {
		child.parent.removeChildByPtr(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	e.childOrderDirty = true
}

// RemoveChild detaches child from this entity. The child keeps its state and
// listeners. No-op if child is not one of this entity's children.
func (e *Entity) RemoveChild(child *Entity) {
	if child == nil || child.parent != e {
		return
	}
	e.removeChildByPtr(child)
	child.parent = nil
	e.childOrderDirty = true
}

// RemoveFromParent detaches this entity from its parent, if any.
func (e *Entity) RemoveFromParent() {
	if e.parent != nil {
		e.parent.RemoveChild(e)
	}
}

// removeChildByPtr removes child from e.children without clearing
// child.parent. Uses copy+nil to avoid retaining a dangling pointer in the
// backing array.
func (e *Entity) removeChildByPtr(child *Entity) {
	for i, c := range e.children {
		if c == child {
			copy(e.children[i:], e.children[i+1:])
			e.children[len(e.children)-1] = nil
			e.children = e.children[:len(e.children)-1]
			return
		}
	}
}

// SetZIndex sets the stacking order and marks the containing orderings dirty.
func (e *Entity) SetZIndex(z int) {
	if e.ZIndex == z {
		return
	}
	e.ZIndex = z
	if e.parent != nil {
		e.parent.childOrderDirty = true
	}
	if e.scene != nil {
		e.scene.sortDirty = true
	}
}

// orderedChildren returns the children in ascending ZIndex, ties preserving
// insertion order.
func (e *Entity) orderedChildren() []*Entity {
	if len(e.children) == 0 {
		return nil
	}
	if e.childOrderDirty || len(e.sortedChildren) != len(e.children) {
		e.sortedChildren = append(e.sortedChildren[:0], e.children...)
		sort.SliceStable(e.sortedChildren, func(i, j int) bool {
			return e.sortedChildren[i].ZIndex < e.sortedChildren[j].ZIndex
		})
		e.childOrderDirty = false
	}
	return e.sortedChildren
}

// --- Tags ---

// AddTag adds a string tag to the entity.
func (e *Entity) AddTag(tag string) {
	if e.tags == nil {
		e.tags = make(map[string]struct{})
	}
	e.tags[tag] = struct{}{}
}

// RemoveTag removes a tag. No-op if absent.
func (e *Entity) RemoveTag(tag string) {
	delete(e.tags, tag)
}

// HasTag reports whether the entity carries the tag.
func (e *Entity) HasTag(tag string) bool {
	_, ok := e.tags[tag]
	return ok
}

// matchesFilter reports whether other passes this entity's collision tag
// filter. An empty filter matches everything.
func (e *Entity) matchesFilter(other *Entity) bool {
	if len(e.CollidesWith) == 0 {
		return true
	}
	for _, tag := range e.CollidesWith {
		if other.HasTag(tag) {
			return true
		}
	}
	return false
}

// --- Update ---

// Update integrates velocity, gravity, and friction into the transform,
// advances the active animation, then recurses into active children. Runs
// regardless of visibility; only the Active flag gates it.
func (e *Entity) Update(dt float64) {
	if e.destroyed || !e.Active {
		return
	}

	e.X += e.VX * dt
	e.Y += e.VY * dt
	e.VY += e.Gravity * dt
	e.VX *= e.Friction
	e.VY *= e.Friction

	if e.playback.advance(dt) {
		e.Emit(Event{Type: EventAnimationComplete, Target: e, Animation: e.playback.anim.Name})
	}

	if len(e.children) == 0 {
		return
	}
	// Defensive copy: a listener fired above or a child update may mutate
	// the child list mid-iteration.
	kids := append([]*Entity(nil), e.children...)
	for _, child := range kids {
		if !child.destroyed && child.Active {
			child.Update(dt)
		}
	}
}

// --- Render ---

// Render draws the entity and its visible children, back to front. The
// surface transform is pushed and popped around this entity's subtree so
// sibling transforms never leak into each other.
func (e *Entity) Render(s Surface) {
	if e.destroyed || !e.Visible {
		return
	}

	s.Save()
	s.Translate(e.X, e.Y)
	s.Rotate(e.Rotation)
	s.Scale(e.ScaleX, e.ScaleY)
	s.Translate(-e.AnchorX*e.Width, -e.AnchorY*e.Height)
	s.MulAlpha(e.Alpha)

	e.draw(s)

	for _, child := range e.orderedChildren() {
		child.Render(s)
	}

	s.Restore()
}

// draw dispatches over the entity's visual kind.
func (e *Entity) draw(s Surface) {
	switch e.Kind {
	case KindRect:
		if e.CornerRadius > 0 {
			s.FillRoundedRect(0, 0, e.Width, e.Height, e.CornerRadius, e.Color)
		} else {
			s.FillRect(0, 0, e.Width, e.Height, e.Color)
		}
	case KindCircle:
		s.FillCircle(e.Width/2, e.Height/2, e.Width/2, e.Color)
	case KindSprite:
		e.drawImage(s, e.Image)
	case KindAnimatedSprite:
		idx := e.Frame()
		if idx >= 0 && idx < len(e.Frames) {
			e.drawImage(s, e.Frames[idx])
		}
	case KindText:
		s.DrawText(e.Text, 0, 0)
	}
}

// drawImage draws img scaled to the entity's box.
func (e *Entity) drawImage(s Surface, img *ebiten.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	if iw == 0 || ih == 0 {
		return
	}
	s.Save()
	s.Scale(e.Width/iw, e.Height/ih)
	s.DrawImage(img)
	s.Restore()
}

// --- Spatial queries ---

// localTransform returns the entity's local affine matrix:
// translate to position, rotate, scale, then offset by the anchor.
func (e *Entity) localTransform() [6]float64 {
	m := composeTRS(e.X, e.Y, e.Rotation, e.ScaleX, e.ScaleY)
	return translateAffine(m, -e.AnchorX*e.Width, -e.AnchorY*e.Height)
}

// worldTransform walks the parent chain accumulating transforms.
func (e *Entity) worldTransform() [6]float64 {
	local := e.localTransform()
	if e.parent == nil {
		return local
	}
	return multiplyAffine(e.parent.worldTransform(), local)
}

// WorldPosition returns the entity's position in world space, accounting for
// every ancestor's transform.
func (e *Entity) WorldPosition() Vec2 {
	x, y := transformPoint(e.worldTransform(), e.AnchorX*e.Width, e.AnchorY*e.Height)
	return Vec2{X: x, Y: y}
}

// worldScale returns the accumulated absolute scale along the parent chain.
func (e *Entity) worldScale() (sx, sy float64) {
	sx, sy = 1, 1
	for p := e; p != nil; p = p.parent {
		sx *= abs(p.ScaleX)
		sy *= abs(p.ScaleY)
	}
	return sx, sy
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ContainsPoint hit-tests a world-space point against the entity's oriented
// bounding box: the point is transformed into local space first, so rotation
// and scale are respected.
func (e *Entity) ContainsPoint(wx, wy float64) bool {
	if e.Width == 0 && e.Height == 0 {
		return false
	}
	lx, ly := transformPoint(invertAffine(e.worldTransform()), wx, wy)
	return lx >= 0 && lx <= e.Width && ly >= 0 && ly <= e.Height
}

// AABB returns the entity's world-space axis-aligned bounding box used for
// collision. Rotation is deliberately ignored — the engine's collision test
// is an axis-aligned approximation.
func (e *Entity) AABB() Rect {
	wp := e.WorldPosition()
	sx, sy := e.worldScale()
	w := e.Width * sx
	h := e.Height * sy
	return Rect{
		X:      wp.X - e.AnchorX*w,
		Y:      wp.Y - e.AnchorY*h,
		Width:  w,
		Height: h,
	}
}

// Intersects reports whether this entity's world AABB overlaps other's.
func (e *Entity) Intersects(other *Entity) bool {
	return e.AABB().Intersects(other.AABB())
}

// --- Collision transitions ---

// emitCollisionTransition compares overlap against the previous frame's
// recorded state for the pair and emits exactly one of collisionenter,
// collide, or collisionexit on e. It does not record the new state; the
// caller does that once both sides of the pair have observed the transition.
func (e *Entity) emitCollisionTransition(other *Entity, overlap bool) {
	was := e.colliding[other]
	switch {
	case overlap && !was:
		e.Emit(Event{Type: EventCollisionEnter, Target: e, Other: other})
	case overlap && was:
		e.Emit(Event{Type: EventCollide, Target: e, Other: other})
	case !overlap && was:
		e.Emit(Event{Type: EventCollisionExit, Target: e, Other: other})
	}
}

// setCollisionState records the overlap state for a partner. Cleared entries
// are deleted so the map stays bounded by live overlaps.
func (e *Entity) setCollisionState(other *Entity, overlap bool) {
	if overlap {
		if e.colliding == nil {
			e.colliding = make(map[*Entity]bool)
		}
		e.colliding[other] = true
	} else if e.colliding != nil {
		delete(e.colliding, other)
	}
}

// CheckCollision tests overlap with other, emits the transition event on this
// entity, and records the state on both sides so the pair's bookkeeping stays
// symmetric even when other never runs its own checks.
func (e *Entity) CheckCollision(other *Entity) {
	if other == nil || other == e || e.destroyed || other.destroyed {
		return
	}
	overlap := e.Intersects(other)
	e.emitCollisionTransition(other, overlap)
	e.setCollisionState(other, overlap)
	other.setCollisionState(e, overlap)
}

// --- Animation playback ---

// PlayOption overrides fields of the resolved animation for this playback.
type PlayOption func(*Animation)

// WithFPS overrides the animation's frame rate.
func WithFPS(fps float64) PlayOption {
	return func(a *Animation) { a.FPS = fps }
}

// WithLoop overrides the animation's looping flag.
func WithLoop(loop bool) PlayOption {
	return func(a *Animation) { a.Loop = loop }
}

// SetAnimations attaches a named animation table.
func (e *Entity) SetAnimations(set AnimationSet) {
	e.animations = set
}

// Play starts the named animation from its first frame. Unknown names return
// ErrUnknownAnimation (and log a warning) so a caller bug surfaces instead of
// crashing the frame loop or silently doing nothing.
func (e *Entity) Play(name string, opts ...PlayOption) error {
	anim, ok := e.animations[name]
	if !ok {
		logger.Warn("play: unknown animation", "entity", e.Name, "animation", name)
		return fmt.Errorf("play %q: %w", name, ErrUnknownAnimation)
	}
	if len(opts) > 0 {
		override := *anim
		override.Frames = anim.Frames
		for _, opt := range opts {
			opt(&override)
		}
		anim = &override
	}
	e.playback = animPlayback{anim: anim, playing: true}
	return nil
}

// Pause suspends playback without resetting the frame position.
func (e *Entity) Pause() {
	e.playback.playing = false
}

// Resume continues a paused animation.
func (e *Entity) Resume() {
	if e.playback.anim != nil {
		e.playback.playing = true
	}
}

// Stop ends playback entirely. Unlike Pause, the active animation is cleared.
func (e *Entity) Stop() {
	e.playback = animPlayback{}
}

// Playing reports whether an animation is actively advancing.
func (e *Entity) Playing() bool {
	return e.playback.playing
}

// Frame returns the current animation frame value, or -1 when no animation
// is loaded.
func (e *Entity) Frame() int {
	if e.playback.anim == nil {
		return -1
	}
	return e.playback.anim.Frames[e.playback.frame]
}

// --- Destruction ---

// Destroy removes the entity from its Scene and parent, recursively destroys
// children bottom-up, and clears its own listeners. Idempotent; afterwards
// the entity is a silent no-op at the Scene and parent boundaries.
func (e *Entity) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true

	kids := append([]*Entity(nil), e.children...)
	for _, child := range kids {
		child.Destroy()
	}
	e.children = nil
	e.sortedChildren = nil

	if e.parent != nil {
		e.parent.removeChildByPtr(e)
		e.parent.childOrderDirty = true
		e.parent = nil
	}
	if e.scene != nil {
		e.scene.detach(e)
		e.scene = nil
	}

	e.colliding = nil
	e.animations = nil
	e.playback = animPlayback{}
	e.Image = nil
	e.Frames = nil
	e.RemoveAllListeners()
}
