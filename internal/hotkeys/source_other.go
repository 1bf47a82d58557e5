//go:build !windows

package hotkeys

import (
	"log/slog"

	"github.com/1broseidon/pintop/internal/platform"
)

// Source is a no-op on platforms without a global hotkey facility; pin
// operations remain reachable over IPC.
type Source struct{}

// StartSource reports that no hotkey source exists on this platform.
func StartSource(bindings map[Action]Binding, handler *Handler, logger *slog.Logger) (*Source, error) {
	return nil, platform.ErrUnsupported
}

// Stop is a no-op.
func (s *Source) Stop() {}
