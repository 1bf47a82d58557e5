// Package daemon wires the pin registry, reinforcement engine, hotkeys and
// IPC server into the long-running process. Pins are restored from the last
// snapshot on startup and persisted on every state change and on shutdown.
package daemon

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/pintop/internal/config"
	"github.com/1broseidon/pintop/internal/enforce"
	"github.com/1broseidon/pintop/internal/hotkeys"
	"github.com/1broseidon/pintop/internal/ipc"
	"github.com/1broseidon/pintop/internal/pin"
	"github.com/1broseidon/pintop/internal/platform"
	"github.com/1broseidon/pintop/internal/restore"
	"github.com/1broseidon/pintop/internal/state"
)

// Options controls daemon startup.
type Options struct {
	// Sim replaces the native window backend with the in-memory simulator.
	// Useful on platforms without a native backend and in development.
	Sim bool

	// ConfigPath overrides the default config file location.
	ConfigPath string

	// StatePath overrides the default snapshot file location.
	StatePath string
}

// Daemon is the running process state.
type Daemon struct {
	cfg       *config.Config
	api       platform.WindowAPI
	backend   string
	bus       *pin.Bus
	reg       *pin.Registry
	engine    *enforce.Engine
	hotkeys   *hotkeys.Handler
	hotkeySrc *hotkeys.Source
	logLevel  *slog.LevelVar
	statePath string
	settings  state.Settings
	logger    *slog.Logger
}

// Run starts the daemon and blocks until SIGINT or SIGTERM.
func Run(opts Options) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// A LevelVar lets a config reload retune verbosity without rebuilding
	// the logger every consumer already holds.
	logLevel := new(slog.LevelVar)
	logLevel.Set(cfg.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	api, backendName, err := newBackend(opts.Sim)
	if err != nil {
		return fmt.Errorf("failed to initialize window backend: %w", err)
	}
	logger.Info("daemon starting", "backend", backendName)

	statePath := opts.StatePath
	if statePath == "" {
		statePath, err = state.DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to resolve state path: %w", err)
		}
	}

	snap, err := state.Load(statePath)
	if err != nil {
		// A corrupt snapshot must not keep the daemon down.
		logger.Warn("failed to load snapshot, starting empty", "path", statePath, "error", err)
		snap = state.Default()
	}

	bus := pin.NewBus()
	reg := pin.NewRegistry(api, bus)

	d := &Daemon{
		cfg:       cfg,
		api:       api,
		backend:   backendName,
		bus:       bus,
		reg:       reg,
		logLevel:  logLevel,
		statePath: statePath,
		settings:  snap.Settings,
		logger:    logger,
	}

	// Reattach saved pins to live windows before any enforcement runs.
	if len(snap.Pins) > 0 {
		live, err := api.List()
		if err != nil {
			logger.Warn("failed to enumerate windows for restore", "error", err)
		} else {
			res := restore.Run(snap, live, reg, logger)
			logger.Info("restore complete",
				"restored", len(res.Pinned),
				"unmatched", len(res.Unmatched),
				"failed", len(res.Failed))
		}
	}

	d.engine = enforce.New(enforce.Config{
		Interval: time.Duration(cfg.ReinforceIntervalSeconds) * time.Second,
		Logger:   logger,
	}, reg, api, bus)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.engine.Run(ctx)

	hook, err := enforce.StartHook(d.engine)
	if err != nil {
		logger.Warn("native event hook unavailable, relying on periodic pass", "error", err)
	} else {
		defer hook.Stop()
	}

	if err := d.startHotkeys(); err != nil {
		logger.Warn("global hotkeys unavailable", "error", err)
	}
	defer func() {
		if d.hotkeySrc != nil {
			d.hotkeySrc.Stop()
		}
	}()

	ipcServer, err := ipc.NewServer(reg, api, bus, backendName, d.save)
	if err != nil {
		return fmt.Errorf("failed to create IPC server: %w", err)
	}
	if err := ipcServer.Start(); err != nil {
		return fmt.Errorf("failed to start IPC server: %w", err)
	}
	defer ipcServer.Stop()

	// Persist on every registry state change.
	go d.persistLoop(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	logger.Info("daemon ready", "pins", reg.Len())
	for sig := range sigCh {
		switch sig {
		case syscall.SIGHUP:
			log.Println("Received SIGHUP, reloading config...")
			newCfg, err := loadConfig(opts.ConfigPath)
			if err != nil {
				log.Printf("Config reload failed: %v", err)
				continue
			}
			d.reload(newCfg)
			log.Println("Config reloaded successfully")

		case os.Interrupt, syscall.SIGTERM:
			logger.Info("daemon shutting down")
			cancel()
			if err := d.save(); err != nil {
				logger.Warn("failed to save snapshot on shutdown", "error", err)
			}
			return nil
		}
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// newBackend picks the window backend. The native backend wins unless sim
// mode is forced or the platform has none.
func newBackend(sim bool) (platform.WindowAPI, string, error) {
	if sim {
		return platform.NewSimulator(), "sim", nil
	}
	api, err := platform.New()
	if err != nil {
		if err == platform.ErrUnsupported {
			return platform.NewSimulator(), "sim", nil
		}
		return nil, "", err
	}
	return api, "native", nil
}

func (d *Daemon) startHotkeys() error {
	d.hotkeys = hotkeys.NewHandler(d.reg, d.api, d.bus, d.cfg.OpacityStep, d.logger)
	return d.applyBindings()
}

// applyBindings (re)registers the global hotkeys from the current config.
// Any previously registered set is released first, so a reload swaps
// bindings atomically from the user's point of view.
func (d *Daemon) applyBindings() error {
	if d.hotkeySrc != nil {
		d.hotkeySrc.Stop()
		d.hotkeySrc = nil
	}

	bindings := make(map[hotkeys.Action]hotkeys.Binding)
	for action, combo := range map[hotkeys.Action]string{
		hotkeys.ActionTogglePin:    d.cfg.Hotkeys.TogglePin,
		hotkeys.ActionOpacityUp:    d.cfg.Hotkeys.OpacityUp,
		hotkeys.ActionOpacityDown:  d.cfg.Hotkeys.OpacityDown,
		hotkeys.ActionToggleWindow: d.cfg.Hotkeys.ToggleWindow,
	} {
		if combo == "" {
			continue
		}
		b, err := hotkeys.ParseBinding(combo)
		if err != nil {
			d.logger.Warn("invalid hotkey binding skipped", "action", action.String(), "binding", combo, "error", err)
			continue
		}
		bindings[action] = b
	}
	if len(bindings) == 0 {
		return nil
	}

	src, err := hotkeys.StartSource(bindings, d.hotkeys, d.logger)
	if err != nil {
		return err
	}
	d.hotkeySrc = src
	return nil
}

// reload pushes a freshly loaded config to every running consumer: log
// verbosity, the reinforcement interval, the opacity step and the hotkey
// bindings. The backend, socket and state path stay fixed for the process
// lifetime.
func (d *Daemon) reload(cfg *config.Config) {
	d.cfg = cfg
	d.logLevel.Set(cfg.SlogLevel())
	d.engine.SetInterval(time.Duration(cfg.ReinforceIntervalSeconds) * time.Second)

	if d.hotkeys != nil {
		d.hotkeys.SetStep(cfg.OpacityStep)
		if err := d.applyBindings(); err != nil {
			d.logger.Warn("failed to re-register hotkeys", "error", err)
		}
	}
}

// persistLoop saves the snapshot after registry state changes, coalescing
// bursts into one write.
func (d *Daemon) persistLoop(ctx context.Context) {
	events, cancel := d.bus.Subscribe(64)
	defer cancel()

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Name {
			case pin.EventPinToggled, pin.EventOpacityChanged, pin.EventWindowDestroyed:
				if timer == nil {
					timer = time.NewTimer(500 * time.Millisecond)
				} else {
					timer.Reset(500 * time.Millisecond)
				}
				pending = timer.C
			}
		case <-pending:
			pending = nil
			if err := d.save(); err != nil {
				d.logger.Warn("failed to save snapshot", "error", err)
			}
		}
	}
}

// save captures the registry into a snapshot and writes it out.
func (d *Daemon) save() error {
	records := d.reg.List()
	snap := &state.Snapshot{
		Pins:     make([]state.SavedPin, len(records)),
		Settings: d.settings,
	}
	for i, rec := range records {
		snap.Pins[i] = state.SavedPin{
			ProcessName: rec.ProcessName,
			Title:       rec.Title,
			Opacity:     pin.AlphaToPercent(rec.Opacity),
		}
	}
	return state.Save(d.statePath, snap)
}
