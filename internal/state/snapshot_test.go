package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pinned.json")

	snap := &Snapshot{
		Pins: []SavedPin{
			{ProcessName: "notepad", Title: "Notes - Notepad", Opacity: 80},
			{ProcessName: "term", Title: "dev", Opacity: 100},
		},
		Settings: Settings{
			SoundEnabled: true,
			AutoStart:    true,
			Shortcuts:    map[string]string{"toggle_pin": "win+ctrl+t"},
		},
	}

	if err := Save(path, snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Pins) != 2 {
		t.Fatalf("Pins = %d, want 2", len(loaded.Pins))
	}
	if loaded.Pins[0] != snap.Pins[0] || loaded.Pins[1] != snap.Pins[1] {
		t.Errorf("pins drifted: %+v", loaded.Pins)
	}
	if !loaded.Settings.AutoStart || !loaded.Settings.SoundEnabled {
		t.Errorf("settings drifted: %+v", loaded.Settings)
	}
	if loaded.Settings.Shortcuts["toggle_pin"] != "win+ctrl+t" {
		t.Errorf("shortcuts drifted: %v", loaded.Settings.Shortcuts)
	}
}

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	snap, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snap.Pins) != 0 {
		t.Errorf("Pins = %v, want empty", snap.Pins)
	}
	if !snap.Settings.SoundEnabled {
		t.Error("default settings missing sound_enabled")
	}
}

func TestLoadCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pinned.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted corrupt snapshot")
	}
}

func TestSaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "pinned.json")
	if err := Save(path, Default()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot file missing: %v", err)
	}
}

func TestSaveWritesPercentValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pinned.json")
	snap := &Snapshot{Pins: []SavedPin{{ProcessName: "notepad", Title: "n", Opacity: 80}}}
	if err := Save(path, snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"opacity": 80`) {
		t.Errorf("snapshot does not store opacity as percent:\n%s", data)
	}
}
