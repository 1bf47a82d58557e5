// Package platform abstracts the native window system behind a small
// query/mutate interface. Window identifiers are opaque native handles and
// are not stable across process restarts: the OS may reuse a numeric value
// for an unrelated window, so callers must treat ErrInvalidHandle as "this
// window is gone", never as a transient failure to retry.
package platform

import (
	"errors"
	"fmt"
	"strings"
)

// WindowID is an opaque native top-level window handle.
type WindowID uintptr

// WindowInfo is a point-in-time snapshot of a live top-level window.
type WindowInfo struct {
	ID      WindowID
	Title   string
	Process string // normalized: lowercase, extension stripped
}

// ErrInvalidHandle reports that an id no longer names a live top-level
// window. Non-retryable.
var ErrInvalidHandle = errors.New("window handle is not valid")

// ErrUnsupported reports that no native window backend exists on this OS.
var ErrUnsupported = errors.New("native window backend not supported on this platform")

// OSCallError wraps a native call that failed for a reason other than an
// invalid handle. Surfaced as-is; the core never retries.
type OSCallError struct {
	Call string
	Err  error
}

func (e *OSCallError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Call, e.Err)
}

func (e *OSCallError) Unwrap() error { return e.Err }

// WindowAPI is the window handle abstraction. Every operation returns
// ErrInvalidHandle when the OS reports the id is not a live top-level window.
type WindowAPI interface {
	// Exists reports whether id names a live top-level window.
	Exists(id WindowID) bool
	// Title returns the current window title.
	Title(id WindowID) (string, error)
	// ProcessName returns the owning process executable name, normalized
	// via NormalizeProcessName.
	ProcessName(id WindowID) (string, error)
	// IsTopmost reports whether the always-on-top style is currently set.
	IsTopmost(id WindowID) (bool, error)
	// SetTopmost sets or clears the always-on-top style.
	SetTopmost(id WindowID, on bool) error
	// Alpha returns the current layered-window alpha (255 when the window
	// is not layered).
	Alpha(id WindowID) (uint8, error)
	// SetAlpha applies a layered-window alpha.
	SetAlpha(id WindowID, alpha uint8) error
	// Foreground returns the window that currently has input focus.
	Foreground() (WindowID, error)
	// Raise brings a window to the foreground without changing its styles.
	Raise(id WindowID) error
	// List enumerates all visible top-level windows.
	List() ([]WindowInfo, error)
}

// NormalizeProcessName lowercases an executable name and strips a trailing
// extension so that "Notepad.EXE" and "notepad" compare equal. This is the
// durable half of the persisted matching key.
func NormalizeProcessName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}
