package aspen

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Game is the host loop: it owns the active Scene, the Camera, the
// TweenManager, and the GestureManager, and drives them in a fixed order
// every frame:
//
//	tweens → camera → scene update → gesture clock, then render.
//
// The order is load-bearing: animated properties settle before the scene
// updates, and both settle before anything draws, so a property changed this
// frame is visually consistent within it.
//
// Game implements [ebiten.Game]; hand it to [Run] or to ebiten.RunGame
// directly.
type Game struct {
	Emitter

	scene    *Scene
	camera   *Camera
	tweens   *TweenManager
	gestures *GestureManager

	width, height int

	debug      bool
	debugAccum float64

	// input polling state
	mouseDown    bool
	prevTouchIDs []ebiten.TouchID
	liveTouches  map[ebiten.TouchID]Vec2
}

// NewGame creates a Game with an empty scene and a camera sized to the given
// logical resolution. All services are per-Game instances; two Games never
// share registries.
func NewGame(width, height int) *Game {
	g := &Game{
		width:       width,
		height:      height,
		camera:      NewCamera(float64(width), float64(height)),
		tweens:      NewTweenManager(),
		liveTouches: make(map[ebiten.TouchID]Vec2),
	}
	scene := NewScene()
	g.gestures = NewGestureManager(scene, g.camera)
	g.setScene(scene)
	return g
}

// Scene returns the active scene.
func (g *Game) Scene() *Scene {
	return g.scene
}

// Camera returns the game's camera.
func (g *Game) Camera() *Camera {
	return g.camera
}

// Tweens returns the game's tween registry.
func (g *Game) Tweens() *TweenManager {
	return g.tweens
}

// Gestures returns the game's gesture manager.
func (g *Game) Gestures() *GestureManager {
	return g.gestures
}

// SetScene swaps the active scene. The outgoing scene gets OnExit, the
// incoming one OnEnter; the gesture manager retargets and drops in-flight
// pointer state.
func (g *Game) SetScene(scene *Scene) {
	if scene == nil || scene == g.scene {
		return
	}
	if g.scene != nil {
		g.scene.OnExit()
	}
	g.setScene(scene)
}

func (g *Game) setScene(scene *Scene) {
	g.scene = scene
	scene.SetGame(g)
	g.gestures.SetScene(scene)
	scene.OnEnter()
}

// SetDebug toggles per-second frame stat logging.
func (g *Game) SetDebug(enabled bool) {
	g.debug = enabled
}

// Update advances one frame. Implements ebiten.Game.
func (g *Game) Update() error {
	dt := 1.0 / float64(ebiten.TPS())

	g.pollInput()

	g.tweens.Update(dt)
	g.camera.Update(dt)
	g.scene.Update(dt)
	g.gestures.Update(dt)

	g.Emit(Event{Type: EventUpdate, DT: dt})

	if g.debug {
		g.debugAccum += dt
		if g.debugAccum >= 1 {
			g.debugAccum = 0
			logger.Debug("frame stats",
				"entities", len(g.scene.entities),
				"tweens", g.tweens.Len(),
				"fps", ebiten.ActualFPS(),
				"tps", ebiten.ActualTPS(),
			)
		}
	}
	return nil
}

// Draw renders the active scene through the camera. Implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	s := newCanvas(screen)
	s.Save()
	g.camera.ApplyTransform(s)
	g.scene.Render(s)
	s.Restore()
	g.Emit(Event{Type: EventRender})
}

// Layout reports the logical resolution. Implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

// pollInput translates ebiten's polled mouse and touch state into the
// gesture manager's pointer event stream. Pointer 0 is the mouse; touch IDs
// map to pointer IDs above it.
func (g *Game) pollInput() {
	// Mouse.
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	switch {
	case pressed && !g.mouseDown:
		g.mouseDown = true
		g.gestures.Pointer(PointerEvent{ID: 0, X: x, Y: y, Phase: PointerDown})
	case pressed && g.mouseDown:
		g.gestures.Pointer(PointerEvent{ID: 0, X: x, Y: y, Phase: PointerMove})
	case !pressed && g.mouseDown:
		g.mouseDown = false
		g.gestures.Pointer(PointerEvent{ID: 0, X: x, Y: y, Phase: PointerUp})
	}

	// Touches. New IDs are downs, continuing IDs are moves, vanished IDs
	// are ups at their last known position.
	g.prevTouchIDs = ebiten.AppendTouchIDs(g.prevTouchIDs[:0])
	seen := make(map[ebiten.TouchID]struct{}, len(g.prevTouchIDs))
	for _, tid := range g.prevTouchIDs {
		tx, ty := ebiten.TouchPosition(tid)
		pos := Vec2{X: float64(tx), Y: float64(ty)}
		seen[tid] = struct{}{}
		if _, live := g.liveTouches[tid]; !live {
			g.gestures.Pointer(PointerEvent{ID: touchPointerID(tid), X: pos.X, Y: pos.Y, Phase: PointerDown})
		} else {
			g.gestures.Pointer(PointerEvent{ID: touchPointerID(tid), X: pos.X, Y: pos.Y, Phase: PointerMove})
		}
		g.liveTouches[tid] = pos
	}
	for tid, pos := range g.liveTouches {
		if _, ok := seen[tid]; !ok {
			g.gestures.Pointer(PointerEvent{ID: touchPointerID(tid), X: pos.X, Y: pos.Y, Phase: PointerUp})
			delete(g.liveTouches, tid)
		}
	}
}

// touchPointerID maps a touch ID into the pointer ID space above the mouse.
func touchPointerID(tid ebiten.TouchID) int {
	return int(tid) + 1
}

// RunConfig configures the window created by Run.
type RunConfig struct {
	Title  string
	Width  int // window size; defaults to the game's logical resolution
	Height int
}

// Run opens a window and drives the game loop until the window closes. For
// full control, call ebiten.RunGame with the Game yourself.
func Run(g *Game, cfg RunConfig) error {
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = g.width, g.height
	}
	ebiten.SetWindowSize(w, h)
	if cfg.Title != "" {
		ebiten.SetWindowTitle(cfg.Title)
	}
	return ebiten.RunGame(g)
}
