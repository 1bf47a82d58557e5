// Package hotkeys maps global keyboard shortcuts to pin operations. A
// platform source (native on Windows) delivers Action values; the Handler
// resolves the current foreground window and dispatches against the
// registry. Hotkey failures are logged and published, never fatal.
package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/pintop/internal/pin"
	"github.com/1broseidon/pintop/internal/platform"
)

// Action identifies one hotkey-triggered operation.
type Action int

const (
	// ActionTogglePin pins the foreground window or unpins it if pinned.
	ActionTogglePin Action = iota
	// ActionOpacityUp raises the foreground pin's opacity by the step.
	ActionOpacityUp
	// ActionOpacityDown lowers the foreground pin's opacity by the step.
	ActionOpacityDown
	// ActionToggleWindow hides or shows the application's own window.
	ActionToggleWindow
)

func (a Action) String() string {
	switch a {
	case ActionTogglePin:
		return "toggle-pin"
	case ActionOpacityUp:
		return "opacity-up"
	case ActionOpacityDown:
		return "opacity-down"
	case ActionToggleWindow:
		return "toggle-window"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Handler dispatches hotkey actions against the pin registry.
type Handler struct {
	reg    *pin.Registry
	api    platform.WindowAPI
	notify pin.Notifier
	logger *slog.Logger

	// step is the percent delta for the opacity actions. Guarded by mu:
	// dispatch runs on the hotkey thread while config reloads update it.
	mu   sync.Mutex
	step int

	// onToggleWindow is invoked for ActionToggleWindow; nil when the
	// daemon has no window of its own to hide.
	onToggleWindow func()
}

// NewHandler creates a hotkey handler. step is the opacity percent delta.
func NewHandler(reg *pin.Registry, api platform.WindowAPI, notify pin.Notifier, step int, logger *slog.Logger) *Handler {
	if step <= 0 {
		step = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		reg:    reg,
		api:    api,
		notify: notify,
		step:   step,
		logger: logger,
	}
}

// SetToggleWindowFunc installs the callback for ActionToggleWindow.
func (h *Handler) SetToggleWindowFunc(fn func()) {
	h.onToggleWindow = fn
}

// SetStep changes the opacity percent delta. Non-positive values are
// ignored.
func (h *Handler) SetStep(step int) {
	if step <= 0 {
		return
	}
	h.mu.Lock()
	h.step = step
	h.mu.Unlock()
}

// Step returns the current opacity percent delta.
func (h *Handler) Step() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.step
}

// Dispatch executes one action. Errors are reported to the event sink and
// returned for logging; the caller keeps running either way.
func (h *Handler) Dispatch(action Action) error {
	var err error
	switch action {
	case ActionTogglePin:
		err = h.togglePin()
	case ActionOpacityUp:
		err = h.adjustOpacity(h.Step())
	case ActionOpacityDown:
		err = h.adjustOpacity(-h.Step())
	case ActionToggleWindow:
		if h.onToggleWindow != nil {
			h.onToggleWindow()
		}
	default:
		err = fmt.Errorf("unknown hotkey action %d", int(action))
	}

	if err != nil {
		h.logger.Warn("hotkey action failed", "action", action.String(), "error", err)
		if h.notify != nil {
			h.notify.Emit(pin.Event{
				Name:    pin.EventPinError,
				Payload: pin.PinErrorPayload{Message: err.Error()},
			})
		}
	}
	return err
}

func (h *Handler) togglePin() error {
	id, err := h.api.Foreground()
	if err != nil {
		return fmt.Errorf("failed to resolve foreground window: %w", err)
	}
	if _, err := h.reg.Toggle(id); err != nil {
		return fmt.Errorf("failed to toggle pin: %w", err)
	}
	return nil
}

// adjustOpacity nudges the foreground window's opacity. Only pinned
// windows respond; the hotkey is a no-op otherwise.
func (h *Handler) adjustOpacity(delta int) error {
	id, err := h.api.Foreground()
	if err != nil {
		return fmt.Errorf("failed to resolve foreground window: %w", err)
	}
	if _, err := h.reg.Adjust(id, delta); err != nil {
		if errors.Is(err, pin.ErrNotPinned) {
			h.logger.Debug("opacity hotkey ignored for unpinned window", "window", id)
			return nil
		}
		return fmt.Errorf("failed to adjust opacity: %w", err)
	}
	return nil
}
