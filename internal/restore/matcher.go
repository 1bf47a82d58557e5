// Package restore reconciles a persisted pin snapshot against the live
// window list at startup. Handles are not stable across restarts, so each
// saved pin is reattached through an ordered list of match strategies:
// exact process+title first, then process name alone. Title drift between
// runs is common (a document switch renames the window); process identity
// is the durable signal.
package restore

import (
	"log/slog"

	"github.com/1broseidon/pintop/internal/pin"
	"github.com/1broseidon/pintop/internal/platform"
	"github.com/1broseidon/pintop/internal/state"
)

// Failure records a saved pin whose re-pin attempt failed.
type Failure struct {
	Pin state.SavedPin
	Err error
}

// Result reports what a restore pass did.
type Result struct {
	// Pinned holds the records created for matched windows.
	Pinned []pin.Record
	// Unmatched holds saved pins with no live candidate window.
	Unmatched []state.SavedPin
	// Failed holds saved pins that matched but could not be re-pinned,
	// e.g. the window vanished between enumeration and the pin attempt.
	Failed []Failure
}

// strategy tries to find a live window for a saved pin, skipping ids
// already claimed earlier in the pass. Strategies run in priority order;
// ties go to enumeration order.
type strategy struct {
	name  string
	match func(saved state.SavedPin, live []platform.WindowInfo, taken map[platform.WindowID]bool) (platform.WindowID, bool)
}

var strategies = []strategy{
	{name: "exact", match: matchExact},
	{name: "process", match: matchProcess},
}

func matchExact(saved state.SavedPin, live []platform.WindowInfo, taken map[platform.WindowID]bool) (platform.WindowID, bool) {
	want := platform.NormalizeProcessName(saved.ProcessName)
	for _, win := range live {
		if taken[win.ID] {
			continue
		}
		if win.Process == want && win.Title == saved.Title {
			return win.ID, true
		}
	}
	return 0, false
}

func matchProcess(saved state.SavedPin, live []platform.WindowInfo, taken map[platform.WindowID]bool) (platform.WindowID, bool) {
	want := platform.NormalizeProcessName(saved.ProcessName)
	for _, win := range live {
		if taken[win.ID] {
			continue
		}
		if win.Process == want {
			return win.ID, true
		}
	}
	return 0, false
}

// Run processes the snapshot's pins in order against the live enumeration,
// re-pinning the best match for each and applying its saved opacity.
// Per-record failures are accumulated, never fatal to the remaining
// records.
func Run(snap *state.Snapshot, live []platform.WindowInfo, reg *pin.Registry, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}

	var res Result
	taken := make(map[platform.WindowID]bool)

	for _, saved := range snap.Pins {
		id, strategyName, ok := matchOne(saved, live, taken)
		if !ok {
			logger.Warn("no live window for saved pin",
				"process", saved.ProcessName, "title", saved.Title)
			res.Unmatched = append(res.Unmatched, saved)
			continue
		}
		taken[id] = true

		rec, err := reg.Pin(id)
		if err != nil {
			logger.Warn("failed to re-pin window",
				"window", id, "process", saved.ProcessName, "error", err)
			res.Failed = append(res.Failed, Failure{Pin: saved, Err: err})
			continue
		}
		if _, err := reg.SetOpacity(id, int(saved.Opacity)); err != nil {
			logger.Warn("failed to restore opacity",
				"window", id, "process", saved.ProcessName, "error", err)
			res.Failed = append(res.Failed, Failure{Pin: saved, Err: err})
			continue
		}

		logger.Info("restored pin",
			"window", id, "process", saved.ProcessName, "strategy", strategyName)
		if updated, ok := reg.Get(id); ok {
			rec = updated
		}
		res.Pinned = append(res.Pinned, rec)
	}
	return res
}

func matchOne(saved state.SavedPin, live []platform.WindowInfo, taken map[platform.WindowID]bool) (platform.WindowID, string, bool) {
	for _, s := range strategies {
		if id, ok := s.match(saved, live, taken); ok {
			return id, s.name, true
		}
	}
	return 0, "", false
}
