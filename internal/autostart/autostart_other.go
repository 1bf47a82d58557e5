//go:build !windows

package autostart

import "github.com/1broseidon/pintop/internal/platform"

// Enable is unsupported outside Windows.
func Enable() error { return platform.ErrUnsupported }

// Disable is unsupported outside Windows.
func Disable() error { return platform.ErrUnsupported }

// Enabled is unsupported outside Windows.
func Enabled() (bool, error) { return false, platform.ErrUnsupported }
