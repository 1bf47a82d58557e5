package pin

import "github.com/1broseidon/pintop/internal/platform"

// Record tracks one pinned window.
//
// Title is a snapshot from pin time and is used only for persistence and
// display; a browser tab switch legitimately changes the live title without
// touching the record. ProcessName and ID form the durable matching key for
// the record's lifetime. Opacity always holds the last alpha successfully
// applied to the window, never a merely requested value.
type Record struct {
	ID          platform.WindowID `json:"id"`
	Title       string            `json:"title"`
	ProcessName string            `json:"process_name"`
	Opacity     uint8             `json:"opacity"`
	// OriginalOpacity is the alpha observed before pinning, so opacity
	// resets can be relative to the window's natural state instead of
	// assuming 255.
	OriginalOpacity *uint8 `json:"original_opacity,omitempty"`
}
