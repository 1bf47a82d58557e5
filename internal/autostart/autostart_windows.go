//go:build windows

// Package autostart manages launching the daemon at login via the per-user
// Run registry key. No elevation is needed; the entry lives under HKCU.
package autostart

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows/registry"
)

const (
	runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`
	valueName  = "pintop"
)

// Enable writes the current executable path (with the daemon subcommand)
// to the Run key.
func Enable() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve executable path: %w", err)
	}

	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open Run key: %w", err)
	}
	defer key.Close()

	cmd := fmt.Sprintf(`"%s" daemon`, exe)
	if err := key.SetStringValue(valueName, cmd); err != nil {
		return fmt.Errorf("failed to set Run entry: %w", err)
	}
	return nil
}

// Disable removes the Run key entry. Missing entry is not an error.
func Disable() error {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open Run key: %w", err)
	}
	defer key.Close()

	if err := key.DeleteValue(valueName); err != nil && err != registry.ErrNotExist {
		return fmt.Errorf("failed to delete Run entry: %w", err)
	}
	return nil
}

// Enabled reports whether a Run key entry exists.
func Enabled() (bool, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return false, fmt.Errorf("failed to open Run key: %w", err)
	}
	defer key.Close()

	if _, _, err := key.GetStringValue(valueName); err != nil {
		if err == registry.ErrNotExist {
			return false, nil
		}
		return false, fmt.Errorf("failed to read Run entry: %w", err)
	}
	return true, nil
}
