// Package state owns the on-disk snapshot of pinned-window preferences and
// user settings. Window ids do not survive restarts, so pins are captured by
// process name and title; the restore matcher reattaches them to live
// windows at startup.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SavedPin is one persisted pinned-window preference. Opacity is stored in
// percent (20-100), matching the registry's external opacity surface.
type SavedPin struct {
	ProcessName string `json:"process_name"`
	Title       string `json:"title"`
	Opacity     uint8  `json:"opacity"`
}

// Settings is the user-preference block persisted alongside the pins.
type Settings struct {
	SoundEnabled   bool              `json:"sound_enabled"`
	TrayNoticeSeen bool              `json:"tray_notice_seen"`
	AutoStart      bool              `json:"auto_start"`
	Shortcuts      map[string]string `json:"shortcuts,omitempty"`
}

// Snapshot is the full persisted state: an ordered pin sequence plus
// settings. The order is the registry's insertion order at save time and is
// preserved because restore matching is first-come-first-served.
type Snapshot struct {
	Pins     []SavedPin `json:"pins"`
	Settings Settings   `json:"settings"`
}

// Default returns the snapshot used when nothing has been persisted yet.
func Default() *Snapshot {
	return &Snapshot{
		Settings: Settings{SoundEnabled: true},
	}
}

// DefaultPath returns the snapshot file location under the user config dir.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "pintop", "pinned.json"), nil
}

// Load reads a snapshot from path. A missing file yields the default
// snapshot, not an error.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %q: %w", path, err)
	}
	return &snap, nil
}

// Save writes a snapshot to path, creating the parent directory if needed.
func Save(path string, snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot is nil")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
