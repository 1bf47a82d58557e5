package hotkeys

import (
	"fmt"
	"strings"
)

// Modifier flags in RegisterHotKey order.
const (
	ModAlt   = 0x0001
	ModCtrl  = 0x0002
	ModShift = 0x0004
	ModWin   = 0x0008
)

// Binding is a parsed hotkey: a modifier mask plus a key name. The key is
// kept symbolic here; the native source maps it to a virtual-key code.
type Binding struct {
	Mods uint16
	Key  string
}

// ParseBinding parses a "mod+mod+key" string, e.g. "win+ctrl+t". The last
// token is the key; everything before it must be a modifier.
func ParseBinding(s string) (Binding, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		return Binding{}, fmt.Errorf("empty hotkey binding %q", s)
	}

	var b Binding
	for _, mod := range parts[:len(parts)-1] {
		switch strings.TrimSpace(mod) {
		case "alt":
			b.Mods |= ModAlt
		case "ctrl", "control":
			b.Mods |= ModCtrl
		case "shift":
			b.Mods |= ModShift
		case "win", "super", "cmd", "meta":
			b.Mods |= ModWin
		default:
			return Binding{}, fmt.Errorf("unknown modifier %q in binding %q", mod, s)
		}
	}
	if b.Mods == 0 {
		return Binding{}, fmt.Errorf("binding %q has no modifier; bare keys are not allowed", s)
	}

	b.Key = strings.TrimSpace(parts[len(parts)-1])
	if b.Key == "" {
		return Binding{}, fmt.Errorf("binding %q has no key", s)
	}
	return b, nil
}
