package aspen

import "github.com/tanema/gween/ease"

// easings maps config-friendly names to easing curves. Names follow the
// "family-direction" convention used by the YAML configs.
var easings = map[string]ease.TweenFunc{
	"linear":         ease.Linear,
	"quad-in":        ease.InQuad,
	"quad-out":       ease.OutQuad,
	"quad-in-out":    ease.InOutQuad,
	"cubic-in":       ease.InCubic,
	"cubic-out":      ease.OutCubic,
	"cubic-in-out":   ease.InOutCubic,
	"quart-in":       ease.InQuart,
	"quart-out":      ease.OutQuart,
	"quart-in-out":   ease.InOutQuart,
	"quint-in":       ease.InQuint,
	"quint-out":      ease.OutQuint,
	"quint-in-out":   ease.InOutQuint,
	"sine-in":        ease.InSine,
	"sine-out":       ease.OutSine,
	"sine-in-out":    ease.InOutSine,
	"expo-in":        ease.InExpo,
	"expo-out":       ease.OutExpo,
	"expo-in-out":    ease.InOutExpo,
	"circ-in":        ease.InCirc,
	"circ-out":       ease.OutCirc,
	"circ-in-out":    ease.InOutCirc,
	"back-in":        ease.InBack,
	"back-out":       ease.OutBack,
	"back-in-out":    ease.InOutBack,
	"bounce-in":      ease.InBounce,
	"bounce-out":     ease.OutBounce,
	"bounce-in-out":  ease.InOutBounce,
	"elastic-in":     ease.InElastic,
	"elastic-out":    ease.OutElastic,
	"elastic-in-out": ease.InOutElastic,
}

// EaseByName resolves an easing curve by name. Unknown names fall back to
// linear with a logged warning rather than failing, so a typo in a config
// degrades gracefully.
func EaseByName(name string) ease.TweenFunc {
	if fn, ok := easings[name]; ok {
		return fn
	}
	logger.Warn("unknown easing name, using linear", "name", name)
	return ease.Linear
}
