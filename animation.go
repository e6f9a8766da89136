package aspen

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrUnknownAnimation is returned by Entity.Play for a name absent from the
// entity's animation table. This usually indicates a caller bug, so it is
// surfaced as an error (and logged) instead of silently doing nothing.
var ErrUnknownAnimation = errors.New("unknown animation")

// Animation is one named frame sequence. Frames index into whatever frame
// source the entity renders (sprite frames for animated sprites); the engine
// itself only advances the index.
type Animation struct {
	Name   string
	Frames []int
	FPS    float64
	Loop   bool
}

// AnimationSet is a named animation table attached to an entity.
type AnimationSet map[string]*Animation

// yamlAnimation mirrors one animation entry in a YAML document.
type yamlAnimation struct {
	Frames []int   `yaml:"frames"`
	FPS    float64 `yaml:"fps"`
	Loop   bool    `yaml:"loop"`
}

// yamlAnimationDoc is the top-level YAML structure:
//
//	animations:
//	  walk:
//	    frames: [0, 1, 2, 3]
//	    fps: 10
//	    loop: true
type yamlAnimationDoc struct {
	Animations map[string]yamlAnimation `yaml:"animations"`
}

// LoadAnimations parses a YAML animation table.
func LoadAnimations(data []byte) (AnimationSet, error) {
	var doc yamlAnimationDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse animations: %w", err)
	}
	if len(doc.Animations) == 0 {
		return nil, fmt.Errorf("parse animations: no animations defined")
	}
	set := make(AnimationSet, len(doc.Animations))
	for name, ya := range doc.Animations {
		if len(ya.Frames) == 0 {
			return nil, fmt.Errorf("parse animations: %q has no frames", name)
		}
		if ya.FPS <= 0 {
			return nil, fmt.Errorf("parse animations: %q has non-positive fps", name)
		}
		set[name] = &Animation{
			Name:   name,
			Frames: append([]int(nil), ya.Frames...),
			FPS:    ya.FPS,
			Loop:   ya.Loop,
		}
	}
	return set, nil
}

// animPlayback is the per-entity playback state for the active animation.
type animPlayback struct {
	anim    *Animation
	frame   int // index into anim.Frames
	elapsed float64
	playing bool
}

// advance accumulates dt and steps the frame index. Looping animations wrap;
// non-looping ones clamp on the last frame and report completion once.
func (p *animPlayback) advance(dt float64) (completed bool) {
	if !p.playing || p.anim == nil {
		return false
	}
	frameDur := 1.0 / p.anim.FPS
	p.elapsed += dt
	for p.elapsed >= frameDur {
		p.elapsed -= frameDur
		p.frame++
		if p.frame >= len(p.anim.Frames) {
			if p.anim.Loop {
				p.frame = 0
				continue
			}
			p.frame = len(p.anim.Frames) - 1
			p.playing = false
			return true
		}
	}
	return false
}
