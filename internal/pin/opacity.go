package pin

import "github.com/1broseidon/pintop/internal/platform"

// Opacity bounds in percent. The floor guarantees a pinned window stays
// visible and interactable no matter what a caller asks for.
const (
	MinOpacityPercent = 20
	MaxOpacityPercent = 100
)

// ClampPercent clamps a requested opacity percentage to [20, 100].
func ClampPercent(percent int) uint8 {
	if percent < MinOpacityPercent {
		return MinOpacityPercent
	}
	if percent > MaxOpacityPercent {
		return MaxOpacityPercent
	}
	return uint8(percent)
}

// PercentToAlpha converts a percentage to the internal 0-255 alpha scale,
// rounding to nearest.
func PercentToAlpha(percent uint8) uint8 {
	return uint8((uint32(percent)*255 + 50) / 100)
}

// AlphaToPercent converts a 0-255 alpha back to a percentage, rounding to
// nearest. Round-trips with PercentToAlpha for every percent in [0, 100].
func AlphaToPercent(alpha uint8) uint8 {
	return uint8((uint32(alpha)*100 + 127) / 255)
}

// Transparency applies per-window alpha through the layered-window
// mechanism, independent of topmost state.
type Transparency struct {
	api platform.WindowAPI
}

// NewTransparency returns a transparency controller over the given backend.
func NewTransparency(api platform.WindowAPI) *Transparency {
	return &Transparency{api: api}
}

// Apply clamps percent, converts to alpha and applies it. Returns the alpha
// that was actually applied.
func (t *Transparency) Apply(id platform.WindowID, percent int) (uint8, error) {
	alpha := PercentToAlpha(ClampPercent(percent))
	if err := t.api.SetAlpha(id, alpha); err != nil {
		return 0, err
	}
	return alpha, nil
}

// Current reads the window's present alpha as a percentage.
func (t *Transparency) Current(id platform.WindowID) (uint8, error) {
	alpha, err := t.api.Alpha(id)
	if err != nil {
		return 0, err
	}
	return AlphaToPercent(alpha), nil
}
