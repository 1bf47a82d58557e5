package daemon

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/pintop/internal/config"
	"github.com/1broseidon/pintop/internal/enforce"
	"github.com/1broseidon/pintop/internal/hotkeys"
	"github.com/1broseidon/pintop/internal/pin"
	"github.com/1broseidon/pintop/internal/platform"
)

func newTestDaemon() *Daemon {
	cfg := config.DefaultConfig()
	logLevel := new(slog.LevelVar)
	logLevel.Set(cfg.SlogLevel())
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: logLevel}))

	sim := platform.NewSimulator()
	bus := pin.NewBus()
	reg := pin.NewRegistry(sim, bus)

	d := &Daemon{
		cfg:      cfg,
		api:      sim,
		backend:  "sim",
		bus:      bus,
		reg:      reg,
		logLevel: logLevel,
		logger:   logger,
	}
	d.engine = enforce.New(enforce.Config{
		Interval: time.Duration(cfg.ReinforceIntervalSeconds) * time.Second,
		Logger:   logger,
	}, reg, sim, bus)
	d.hotkeys = hotkeys.NewHandler(reg, sim, bus, cfg.OpacityStep, logger)
	return d
}

func TestReloadPropagatesConfig(t *testing.T) {
	d := newTestDaemon()

	newCfg := config.DefaultConfig()
	newCfg.OpacityStep = 25
	newCfg.ReinforceIntervalSeconds = 3
	newCfg.LogLevel = "debug"
	// Binding registration needs the native source; the propagation paths
	// under test do not.
	newCfg.Hotkeys = config.Hotkeys{}

	d.reload(newCfg)

	if d.cfg != newCfg {
		t.Error("reload did not install the new config")
	}
	if got := d.logLevel.Level(); got != slog.LevelDebug {
		t.Errorf("log level = %v, want %v", got, slog.LevelDebug)
	}
	if got := d.hotkeys.Step(); got != 25 {
		t.Errorf("opacity step = %d, want 25", got)
	}
}

func TestReloadedStepDrivesOpacityHotkeys(t *testing.T) {
	d := newTestDaemon()
	sim := d.api.(*platform.Simulator)

	id := sim.AddWindow("Notes", "notepad.exe")
	sim.SetForeground(id)
	if _, err := d.reg.Pin(id); err != nil {
		t.Fatalf("Pin failed: %v", err)
	}
	if _, err := d.reg.SetOpacity(id, 50); err != nil {
		t.Fatalf("SetOpacity failed: %v", err)
	}

	newCfg := config.DefaultConfig()
	newCfg.OpacityStep = 25
	newCfg.Hotkeys = config.Hotkeys{}
	d.reload(newCfg)

	if err := d.hotkeys.Dispatch(hotkeys.ActionOpacityUp); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	rec, _ := d.reg.Get(id)
	if got := pin.AlphaToPercent(rec.Opacity); got != 75 {
		t.Errorf("opacity after reload = %d%%, want 75%%", got)
	}
}
