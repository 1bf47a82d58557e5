//go:build !windows

package enforce

import "github.com/1broseidon/pintop/internal/platform"

// Hook is a no-op on platforms without native window-manager hooks; the
// engine's periodic pass still runs, which is enough for simulator mode.
type Hook struct{}

// StartHook reports that no native hook source exists on this platform.
func StartHook(engine *Engine) (*Hook, error) {
	return nil, platform.ErrUnsupported
}

// Stop is a no-op.
func (h *Hook) Stop() {}
