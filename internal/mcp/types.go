package mcp

// PinWindowInput is the input for the pin_window tool.
type PinWindowInput struct {
	WindowID uint64 `json:"window_id,omitempty" jsonschema:"Native window id from list_pinned. Omit or pass 0 to target the current foreground window."`
}

// PinWindowOutput is the output for the pin_window and unpin_window tools.
type PinWindowOutput struct {
	WindowID    uint64 `json:"window_id"`
	Title       string `json:"title"`
	ProcessName string `json:"process_name"`
	Opacity     int    `json:"opacity"`
	IsPinned    bool   `json:"is_pinned"`
}

// UnpinWindowInput is the input for the unpin_window tool.
type UnpinWindowInput struct {
	WindowID uint64 `json:"window_id,omitempty" jsonschema:"Native window id. Omit or pass 0 to target the current foreground window."`
}

// UnpinWindowOutput is the output for the unpin_window tool.
type UnpinWindowOutput struct {
	WindowID uint64 `json:"window_id"`
	IsPinned bool   `json:"is_pinned"`
}

// ListPinnedInput is the input for the list_pinned tool.
type ListPinnedInput struct{}

// PinnedWindow describes one pinned window.
type PinnedWindow struct {
	WindowID    uint64 `json:"window_id"`
	Title       string `json:"title"`
	ProcessName string `json:"process_name"`
	Opacity     int    `json:"opacity"`
}

// ListPinnedOutput is the output for the list_pinned tool.
type ListPinnedOutput struct {
	Pins []PinnedWindow `json:"pins"`
}

// SetWindowOpacityInput is the input for the set_window_opacity tool.
type SetWindowOpacityInput struct {
	WindowID uint64 `json:"window_id,omitempty" jsonschema:"Native window id. Omit or pass 0 to target the current foreground window."`
	Percent  int    `json:"percent" jsonschema:"required,Opacity percent. Clamped to the 20-100 range."`
}

// SetWindowOpacityOutput is the output for the set_window_opacity tool.
type SetWindowOpacityOutput struct {
	WindowID uint64 `json:"window_id"`
	Opacity  int    `json:"opacity"`
}

// FocusWindowInput is the input for the focus_window tool.
type FocusWindowInput struct {
	WindowID uint64 `json:"window_id" jsonschema:"required,Native window id to bring to the foreground"`
}

// FocusWindowOutput is the output for the focus_window tool.
type FocusWindowOutput struct {
	WindowID uint64 `json:"window_id"`
	Focused  bool   `json:"focused"`
}
