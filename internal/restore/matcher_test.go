package restore

import (
	"io"
	"log/slog"
	"testing"

	"github.com/1broseidon/pintop/internal/pin"
	"github.com/1broseidon/pintop/internal/platform"
	"github.com/1broseidon/pintop/internal/state"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunExactMatchWins(t *testing.T) {
	sim := platform.NewSimulator()
	reg := pin.NewRegistry(sim, nil)

	// Two notepad windows; only one title matches exactly.
	other := sim.AddWindow("Other - Notepad", "notepad.exe")
	exact := sim.AddWindow("Todo - Notepad", "notepad.exe")

	snap := &state.Snapshot{Pins: []state.SavedPin{
		{ProcessName: "notepad", Title: "Todo - Notepad", Opacity: 80},
	}}
	live, _ := sim.List()

	res := Run(snap, live, reg, testLogger())
	if len(res.Pinned) != 1 {
		t.Fatalf("Pinned = %d, want 1", len(res.Pinned))
	}
	if res.Pinned[0].ID != exact {
		t.Errorf("pinned window %d, want exact match %d", res.Pinned[0].ID, exact)
	}
	if _, ok := reg.Get(other); ok {
		t.Error("non-matching window was pinned")
	}

	alpha, _ := sim.Alpha(exact)
	if alpha != pin.PercentToAlpha(80) {
		t.Errorf("restored alpha = %d, want %d", alpha, pin.PercentToAlpha(80))
	}
}

func TestRunFallsBackToProcessMatch(t *testing.T) {
	sim := platform.NewSimulator()
	reg := pin.NewRegistry(sim, nil)

	// Title drifted between runs; process name still identifies the window.
	id := sim.AddWindow("Chapter 2 - Writer", "writer.exe")

	snap := &state.Snapshot{Pins: []state.SavedPin{
		{ProcessName: "writer", Title: "Chapter 1 - Writer", Opacity: 100},
	}}
	live, _ := sim.List()

	res := Run(snap, live, reg, testLogger())
	if len(res.Pinned) != 1 || res.Pinned[0].ID != id {
		t.Fatalf("Pinned = %v, want window %d", res.Pinned, id)
	}
	if len(res.Unmatched) != 0 {
		t.Errorf("Unmatched = %v, want none", res.Unmatched)
	}
}

func TestRunUnmatchedPinIsReported(t *testing.T) {
	sim := platform.NewSimulator()
	reg := pin.NewRegistry(sim, nil)

	sim.AddWindow("Something", "real.exe")

	snap := &state.Snapshot{Pins: []state.SavedPin{
		{ProcessName: "ghost", Title: "Long Gone", Opacity: 50},
	}}
	live, _ := sim.List()

	res := Run(snap, live, reg, testLogger())
	if len(res.Pinned) != 0 {
		t.Errorf("Pinned = %v, want none", res.Pinned)
	}
	if len(res.Unmatched) != 1 || res.Unmatched[0].ProcessName != "ghost" {
		t.Errorf("Unmatched = %v, want the ghost pin", res.Unmatched)
	}
	if reg.Len() != 0 {
		t.Errorf("registry not empty: %d", reg.Len())
	}
}

func TestRunDoesNotReuseWindows(t *testing.T) {
	sim := platform.NewSimulator()
	reg := pin.NewRegistry(sim, nil)

	// One live notepad, two saved notepad pins: first saved pin claims it,
	// second goes unmatched instead of double-pinning.
	id := sim.AddWindow("Notes - Notepad", "notepad.exe")

	snap := &state.Snapshot{Pins: []state.SavedPin{
		{ProcessName: "notepad", Title: "Notes - Notepad", Opacity: 100},
		{ProcessName: "notepad", Title: "Other - Notepad", Opacity: 40},
	}}
	live, _ := sim.List()

	res := Run(snap, live, reg, testLogger())
	if len(res.Pinned) != 1 || res.Pinned[0].ID != id {
		t.Fatalf("Pinned = %v, want only window %d", res.Pinned, id)
	}
	if len(res.Unmatched) != 1 || res.Unmatched[0].Title != "Other - Notepad" {
		t.Errorf("Unmatched = %v, want the second saved pin", res.Unmatched)
	}
}

func TestRunSavedOrderIsFirstComeFirstServed(t *testing.T) {
	sim := platform.NewSimulator()
	reg := pin.NewRegistry(sim, nil)

	first := sim.AddWindow("A - Term", "term.exe")
	second := sim.AddWindow("B - Term", "term.exe")

	// Neither title matches, so both saved pins fall back to process
	// matching; the earlier saved pin gets the earlier enumerated window.
	snap := &state.Snapshot{Pins: []state.SavedPin{
		{ProcessName: "term", Title: "X - Term", Opacity: 60},
		{ProcessName: "term", Title: "Y - Term", Opacity: 90},
	}}
	live, _ := sim.List()

	res := Run(snap, live, reg, testLogger())
	if len(res.Pinned) != 2 {
		t.Fatalf("Pinned = %d, want 2", len(res.Pinned))
	}
	if res.Pinned[0].ID != first || res.Pinned[1].ID != second {
		t.Errorf("match order = %d,%d want %d,%d",
			res.Pinned[0].ID, res.Pinned[1].ID, first, second)
	}

	alpha, _ := sim.Alpha(first)
	if alpha != pin.PercentToAlpha(60) {
		t.Errorf("first window alpha = %d, want %d", alpha, pin.PercentToAlpha(60))
	}
}

func TestRunContinuesAfterFailure(t *testing.T) {
	sim := platform.NewSimulator()
	reg := pin.NewRegistry(sim, nil)

	doomed := sim.AddWindow("Doomed", "doomed.exe")
	healthy := sim.AddWindow("Healthy", "healthy.exe")

	live, _ := sim.List()
	// The doomed window vanishes between enumeration and the pin attempt.
	sim.Destroy(doomed)

	snap := &state.Snapshot{Pins: []state.SavedPin{
		{ProcessName: "doomed", Title: "Doomed", Opacity: 100},
		{ProcessName: "healthy", Title: "Healthy", Opacity: 100},
	}}

	res := Run(snap, live, reg, testLogger())
	if len(res.Failed) != 1 || res.Failed[0].Pin.ProcessName != "doomed" {
		t.Errorf("Failed = %v, want the doomed pin", res.Failed)
	}
	if len(res.Pinned) != 1 || res.Pinned[0].ID != healthy {
		t.Errorf("Pinned = %v, want window %d", res.Pinned, healthy)
	}
}
