package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPathMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	def := DefaultConfig()
	if cfg.OpacityStep != def.OpacityStep {
		t.Errorf("OpacityStep = %d, want default %d", cfg.OpacityStep, def.OpacityStep)
	}
	if cfg.Hotkeys.TogglePin != def.Hotkeys.TogglePin {
		t.Errorf("TogglePin = %q, want default %q", cfg.Hotkeys.TogglePin, def.Hotkeys.TogglePin)
	}
}

func TestLoadFromPathMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
hotkeys:
  toggle_pin: win+shift+p
opacity_step: 5
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Hotkeys.TogglePin != "win+shift+p" {
		t.Errorf("TogglePin = %q", cfg.Hotkeys.TogglePin)
	}
	if cfg.OpacityStep != 5 {
		t.Errorf("OpacityStep = %d, want 5", cfg.OpacityStep)
	}
	// Untouched fields keep their defaults.
	if cfg.Hotkeys.OpacityUp != DefaultConfig().Hotkeys.OpacityUp {
		t.Errorf("OpacityUp = %q, want default", cfg.Hotkeys.OpacityUp)
	}
	if cfg.ReinforceIntervalSeconds != DefaultConfig().ReinforceIntervalSeconds {
		t.Errorf("ReinforceIntervalSeconds = %d, want default", cfg.ReinforceIntervalSeconds)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("SlogLevel = %v, want debug", cfg.SlogLevel())
	}
}

func TestLoadFromPathRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad opacity step", "opacity_step: 0\n"},
		{"bad interval", "reinforce_interval_seconds: 0\n"},
		{"bad log level", "log_level: chatty\n"},
		{"bad yaml", "hotkeys: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadFromPath(path); err == nil {
				t.Errorf("LoadFromPath accepted %q", tt.content)
			}
		})
	}
}

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
