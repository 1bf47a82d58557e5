// Package pin holds the pinned-window registry: the single source of truth
// for which windows are pinned, shared by the hotkey path, the IPC command
// path and the native event callback path.
package pin

import (
	"errors"
	"sync"

	"github.com/1broseidon/pintop/internal/platform"
)

// Registry maps window ids to pinned-window records. All operations are
// linearizable: a mutation on one path is visible to the very next read on
// any other path. There is at most one record per id; the state machine per
// id is absent ("unpinned") or present ("pinned") and nothing else.
type Registry struct {
	mu      sync.Mutex
	api     platform.WindowAPI
	trans   *Transparency
	notify  Notifier
	records map[platform.WindowID]*Record
	order   []platform.WindowID
}

// NewRegistry returns an empty registry over the given backend. notify may
// be nil when no event sink is attached.
func NewRegistry(api platform.WindowAPI, notify Notifier) *Registry {
	return &Registry{
		api:     api,
		trans:   NewTransparency(api),
		notify:  notify,
		records: make(map[platform.WindowID]*Record),
	}
}

func (r *Registry) emit(ev Event) {
	if r.notify != nil {
		r.notify.Emit(ev)
	}
}

// Pin applies the topmost style to id and starts tracking it. The window's
// current alpha is captured as both Opacity and OriginalOpacity; pinning
// never changes transparency by itself. On any failure no record is stored.
func (r *Registry) Pin(id platform.WindowID) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pinLocked(id)
}

// pinLocked is Pin's body. Caller holds r.mu.
func (r *Registry) pinLocked(id platform.WindowID) (Record, error) {
	if _, ok := r.records[id]; ok {
		return Record{}, ErrAlreadyPinned
	}

	title, err := r.api.Title(id)
	if err != nil {
		return Record{}, err
	}
	process, err := r.api.ProcessName(id)
	if err != nil {
		return Record{}, err
	}
	alpha, err := r.api.Alpha(id)
	if err != nil {
		return Record{}, err
	}
	if err := r.api.SetTopmost(id, true); err != nil {
		return Record{}, err
	}

	original := alpha
	rec := &Record{
		ID:              id,
		Title:           title,
		ProcessName:     process,
		Opacity:         alpha,
		OriginalOpacity: &original,
	}
	r.records[id] = rec
	r.order = append(r.order, id)

	r.emit(Event{Name: EventPinToggled, Payload: PinToggledPayload{
		IsPinned:    true,
		Title:       rec.Title,
		ProcessName: rec.ProcessName,
	}})
	return *rec, nil
}

// Unpin clears the topmost style and stops tracking id. Clearing the style
// is best-effort: a window that is already gone has nothing left to
// un-style, so an invalid handle counts as success. The record is removed
// unconditionally either way.
func (r *Registry) Unpin(id platform.WindowID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unpinLocked(id)
}

// unpinLocked is Unpin's body. Caller holds r.mu.
func (r *Registry) unpinLocked(id platform.WindowID) error {
	rec, ok := r.records[id]
	if !ok {
		return ErrNotPinned
	}

	err := r.api.SetTopmost(id, false)
	if errors.Is(err, platform.ErrInvalidHandle) {
		err = nil
	}

	r.remove(id)
	r.emit(Event{Name: EventPinToggled, Payload: PinToggledPayload{
		IsPinned:    false,
		Title:       rec.Title,
		ProcessName: rec.ProcessName,
	}})
	return err
}

// Toggle pins id when absent and unpins it when present. Returns whether the
// window is pinned afterwards. The check and the transition run under one
// critical section, so concurrent toggles on the same id serialize into
// alternating pin/unpin instead of racing into AlreadyPinned/NotPinned.
func (r *Registry) Toggle(id platform.WindowID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; ok {
		return false, r.unpinLocked(id)
	}
	_, err := r.pinLocked(id)
	return err == nil, err
}

// SetOpacity clamps percent to [20, 100], applies the converted alpha and
// records it. Returns the percent that was actually applied. When the
// window turns out to be gone, its record is removed and the error is
// surfaced.
func (r *Registry) SetOpacity(id platform.WindowID, percent int) (uint8, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return 0, ErrNotPinned
	}

	clamped := ClampPercent(percent)
	alpha, err := r.trans.Apply(id, int(clamped))
	if err != nil {
		if errors.Is(err, platform.ErrInvalidHandle) {
			r.remove(id)
			r.emit(Event{Name: EventWindowDestroyed})
		}
		return 0, err
	}

	rec.Opacity = alpha
	r.emit(Event{Name: EventOpacityChanged, Payload: OpacityChangedPayload{Percent: clamped}})
	return clamped, nil
}

// Adjust changes opacity by a relative percentage (hotkey increments).
// Only meaningful for pinned windows: an unpinned id returns ErrNotPinned.
func (r *Registry) Adjust(id platform.WindowID, deltaPercent int) (uint8, error) {
	r.mu.Lock()
	rec, ok := r.records[id]
	if !ok {
		r.mu.Unlock()
		return 0, ErrNotPinned
	}
	current := int(AlphaToPercent(rec.Opacity))
	r.mu.Unlock()

	return r.SetOpacity(id, current+deltaPercent)
}

// List returns copies of all records in insertion order.
func (r *Registry) List() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.records[id])
	}
	return out
}

// Get returns a copy of the record for id, if one exists.
func (r *Registry) Get(id platform.WindowID) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Len returns the number of pinned windows.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// IDs returns all pinned ids in insertion order. The reinforcement engine
// iterates this instead of List to avoid copying records it does not need.
func (r *Registry) IDs() []platform.WindowID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]platform.WindowID, len(r.order))
	copy(ids, r.order)
	return ids
}

// RemoveIfDestroyed drops the record for id without touching the window.
// Returns whether a record was actually removed, so the caller can decide
// whether a window-destroyed notification should fire.
func (r *Registry) RemoveIfDestroyed(id platform.WindowID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return false
	}
	r.remove(id)
	return true
}

// remove drops id from the map and the insertion-order slice.
// Caller holds r.mu.
func (r *Registry) remove(id platform.WindowID) {
	delete(r.records, id)
	for i, wid := range r.order {
		if wid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}
