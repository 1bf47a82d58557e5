// Package enforce keeps the topmost style alive on pinned windows. The
// window manager (notably newer compositors) can silently clear the style
// after minimize/restore cycles or snap operations without emitting any
// distinguishable notification, so the only robust policy is unconditional
// reassertion on window events, backed by a periodic pass.
package enforce

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/pintop/internal/pin"
	"github.com/1broseidon/pintop/internal/platform"
)

// Kind classifies a native window-manager notification.
type Kind int

const (
	// KindMoveSizeEnd fires when a window finishes moving or resizing.
	KindMoveSizeEnd Kind = iota
	// KindForeground fires when the foreground window changes.
	KindForeground
	// KindShowHide fires on show/hide and minimize-end transitions.
	KindShowHide
	// KindDestroy fires when a window is destroyed.
	KindDestroy
)

// WinEvent is the typed form of a native callback notification. The native
// hook translates and enqueues; it performs no registry work itself.
type WinEvent struct {
	Kind   Kind
	Window platform.WindowID
}

// Config holds engine tuning.
type Config struct {
	// Interval between periodic reassertion passes. Zero selects 10s.
	Interval time.Duration
	// QueueSize bounds the native event channel. Zero selects 256.
	QueueSize int
	Logger    *slog.Logger
}

// Engine consumes window-manager events and reasserts topmost on every
// pinned window. It never pins new windows; it only maintains invariants
// for windows already pinned.
type Engine struct {
	reg        *pin.Registry
	api        platform.WindowAPI
	notify     pin.Notifier
	events     chan WinEvent
	interval   time.Duration
	intervalCh chan time.Duration
	logger     *slog.Logger
}

// New creates a reinforcement engine. notify may be nil.
func New(cfg Config, reg *pin.Registry, api platform.WindowAPI, notify pin.Notifier) *Engine {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = 256
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		reg:        reg,
		api:        api,
		notify:     notify,
		events:     make(chan WinEvent, queue),
		interval:   interval,
		intervalCh: make(chan time.Duration, 1),
		logger:     logger,
	}
}

// SetInterval changes the periodic pass interval of a running engine. The
// new value takes effect on the next Run loop iteration; non-positive
// values are ignored.
func (e *Engine) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	// Keep only the latest request if the loop has not drained yet.
	select {
	case <-e.intervalCh:
	default:
	}
	e.intervalCh <- d
}

// Submit enqueues a native event without blocking. Events are dropped when
// the queue is full; the next periodic pass covers anything missed. Safe to
// call from the native callback delivery context.
func (e *Engine) Submit(ev WinEvent) {
	select {
	case e.events <- ev:
	default:
		e.logger.Debug("event queue full, dropping", "kind", ev.Kind, "window", ev.Window)
	}
}

// Run drains the event queue and triggers periodic reassertion passes.
// Blocks until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.logger.Info("reinforcement engine started", "interval", e.interval)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("reinforcement engine stopped")
			return
		case ev := <-e.events:
			e.handle(ev)
		case d := <-e.intervalCh:
			e.interval = d
			ticker.Reset(d)
			e.logger.Info("reinforcement interval updated", "interval", d)
		case <-ticker.C:
			e.ReassertAll()
		}
	}
}

// handle processes one native event.
func (e *Engine) handle(ev WinEvent) {
	switch ev.Kind {
	case KindDestroy:
		if e.reg.RemoveIfDestroyed(ev.Window) {
			e.logger.Info("pinned window destroyed", "window", ev.Window)
			e.emitDestroyed()
		}
	case KindMoveSizeEnd, KindForeground, KindShowHide:
		e.ReassertAll()
	}
}

// ReassertAll re-applies topmost to every pinned window. Any failure for a
// single id is treated as a destroy for that id only; the pass always
// continues, so one broken window never blocks reinforcement for the rest.
func (e *Engine) ReassertAll() {
	defer func() {
		if err := recover(); err != nil {
			e.logger.Error("reassertion panic recovered", "error", err)
		}
	}()

	for _, id := range e.reg.IDs() {
		if err := e.api.SetTopmost(id, true); err != nil {
			// A window that cannot be restyled is functionally gone.
			if e.reg.RemoveIfDestroyed(id) {
				e.logger.Info("removed unreachable pinned window",
					"window", id, "error", err)
				e.emitDestroyed()
			}
		}
	}
}

func (e *Engine) emitDestroyed() {
	if e.notify != nil {
		e.notify.Emit(pin.Event{Name: pin.EventWindowDestroyed})
	}
}
