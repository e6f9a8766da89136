// Package aspen is a lightweight real-time 2D interactive engine for
// [Ebitengine].
//
// Aspen provides a scene graph of entities driven by a frame loop, with
// built-in gesture recognition, tweened animation, and collision detection.
// A host application declares entities, attaches behavior via events, and
// receives consistent per-frame updates and input notifications without
// writing a render loop or hit-testing code itself.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop for you:
//
//	game := aspen.NewGame(640, 480)
//	// ... add entities to game.Scene() ...
//	aspen.Run(game, aspen.RunConfig{Title: "My Game"})
//
// For full control, call ebiten.RunGame with the [Game] yourself — Game
// implements [ebiten.Game].
//
// # Entities
//
// Every visual element is an [Entity]. Entities form trees; children inherit
// their parent's transform and alpha. A single flat Entity type carries a
// visual kind (rect, circle, sprite, animated sprite, text, container)
// instead of a subclass hierarchy:
//
//	box := aspen.NewRect("box", 80, 40, aspen.Color{R: 0.3, G: 0.7, B: 1, A: 1})
//	box.X, box.Y = 100, 50
//	game.Scene().Add(box)
//
// Entities integrate simple physics (velocity, gravity, friction) every
// update, and emit collisionenter/collide/collisionexit transitions when
// CheckCollisions is set.
//
// # Events
//
// Entity, Scene, GestureManager, and Game all embed [Emitter]. Subscribe
// with On or Once; both return a cancellable [Subscription]:
//
//	box.Interactive = true
//	box.On(aspen.EventTap, func(ev aspen.Event) {
//		// ...
//	})
//
// Dispatch is synchronous and reentrancy-safe: listeners may freely mutate
// the scene, including destroying the entity that emitted the event.
//
// # Gestures
//
// The [GestureManager] classifies raw pointer input into tap, long-press,
// swipe, and drag events, resolved in world space through the [Camera] so
// pan and zoom never desynchronize input from what the user sees.
//
// # Tweens
//
// [Tween] animates numeric fields through easing curves from
// [github.com/tanema/gween/ease], with lazy start capture, delays, and
// chainable completion callbacks. Register tweens with the Game's
// [TweenManager].
//
// [Ebitengine]: https://ebitengine.org
package aspen
