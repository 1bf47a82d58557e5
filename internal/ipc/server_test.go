package ipc

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/1broseidon/pintop/internal/pin"
	"github.com/1broseidon/pintop/internal/platform"
)

func newTestServer(t *testing.T) (*Server, *pin.Registry, *platform.Simulator, *pin.Bus) {
	t.Helper()
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	sim := platform.NewSimulator()
	bus := pin.NewBus()
	reg := pin.NewRegistry(sim, bus)
	srv, err := NewServer(reg, sim, bus, "sim", nil)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return srv, reg, sim, bus
}

func mustPayload(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestHandlePinByID(t *testing.T) {
	srv, reg, sim, _ := newTestServer(t)
	id := sim.AddWindow("Notes - Notepad", "notepad.exe")

	resp := srv.handleCommand(&Request{
		Command: CommandPin,
		Payload: mustPayload(t, WindowPayload{WindowID: uintptr(id)}),
	})
	if resp.Status != "OK" {
		t.Fatalf("status = %s (%s)", resp.Status, resp.Error)
	}

	var data PinData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.WindowID != uintptr(id) || data.ProcessName != "notepad" || data.Opacity != 100 {
		t.Errorf("data = %+v", data)
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}
}

func TestHandlePinDefaultsToForeground(t *testing.T) {
	srv, reg, sim, _ := newTestServer(t)
	id := sim.AddWindow("Front", "front.exe")
	sim.SetForeground(id)

	resp := srv.handleCommand(&Request{Command: CommandPin})
	if resp.Status != "OK" {
		t.Fatalf("status = %s (%s)", resp.Status, resp.Error)
	}
	if _, ok := reg.Get(id); !ok {
		t.Error("foreground window not pinned")
	}
}

func TestHandleUnpinAndErrors(t *testing.T) {
	srv, reg, sim, bus := newTestServer(t)
	id := sim.AddWindow("a", "a.exe")
	if _, err := reg.Pin(id); err != nil {
		t.Fatal(err)
	}

	events, cancel := bus.Subscribe(16)
	defer cancel()

	resp := srv.handleCommand(&Request{
		Command: CommandUnpin,
		Payload: mustPayload(t, WindowPayload{WindowID: uintptr(id)}),
	})
	if resp.Status != "OK" {
		t.Fatalf("status = %s (%s)", resp.Status, resp.Error)
	}

	// Unpinning again is a client error and must surface as pin-error too.
	resp = srv.handleCommand(&Request{
		Command: CommandUnpin,
		Payload: mustPayload(t, WindowPayload{WindowID: uintptr(id)}),
	})
	if resp.Status != "ERROR" {
		t.Fatal("unpin of unpinned window did not error")
	}

	sawError := false
	for {
		select {
		case ev := <-events:
			if ev.Name == pin.EventPinError {
				sawError = true
			}
			continue
		default:
		}
		break
	}
	if !sawError {
		t.Error("no pin-error event for failed command")
	}
}

func TestHandleSetOpacityClamps(t *testing.T) {
	srv, reg, sim, _ := newTestServer(t)
	id := sim.AddWindow("a", "a.exe")
	if _, err := reg.Pin(id); err != nil {
		t.Fatal(err)
	}

	resp := srv.handleCommand(&Request{
		Command: CommandSetOpacity,
		Payload: mustPayload(t, SetOpacityPayload{WindowID: uintptr(id), Percent: 150}),
	})
	if resp.Status != "OK" {
		t.Fatalf("status = %s (%s)", resp.Status, resp.Error)
	}
	var data PinData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Opacity != 100 {
		t.Errorf("opacity = %d, want clamp to 100", data.Opacity)
	}
}

func TestHandleListPinsOrder(t *testing.T) {
	srv, reg, sim, _ := newTestServer(t)
	a := sim.AddWindow("a", "a.exe")
	b := sim.AddWindow("b", "b.exe")
	for _, id := range []platform.WindowID{b, a} {
		if _, err := reg.Pin(id); err != nil {
			t.Fatal(err)
		}
	}

	resp := srv.handleCommand(&Request{Command: CommandListPins})
	if resp.Status != "OK" {
		t.Fatalf("status = %s (%s)", resp.Status, resp.Error)
	}
	var data ListPinsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatal(err)
	}
	if len(data.Pins) != 2 || data.Pins[0].WindowID != uintptr(b) || data.Pins[1].WindowID != uintptr(a) {
		t.Errorf("pins = %+v, want pin order b,a", data.Pins)
	}
}

func TestHandleGetStatus(t *testing.T) {
	srv, reg, sim, _ := newTestServer(t)
	id := sim.AddWindow("a", "a.exe")
	if _, err := reg.Pin(id); err != nil {
		t.Fatal(err)
	}

	resp := srv.handleCommand(&Request{Command: CommandGetStatus})
	if resp.Status != "OK" {
		t.Fatalf("status = %s (%s)", resp.Status, resp.Error)
	}
	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		t.Fatal(err)
	}
	if !status.DaemonRunning || status.PinnedCount != 1 || status.Backend != "sim" {
		t.Errorf("status = %+v", status)
	}
}

func TestHandleFocusRequiresID(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	resp := srv.handleCommand(&Request{
		Command: CommandFocus,
		Payload: mustPayload(t, WindowPayload{}),
	})
	if resp.Status != "ERROR" {
		t.Error("focus without window_id did not error")
	}
}

func TestHandleUnknownCommand(t *testing.T) {
	srv, _, _, _ := newTestServer(t)
	resp := srv.handleCommand(&Request{Command: "NOPE"})
	if resp.Status != "ERROR" {
		t.Error("unknown command did not error")
	}
}

func TestSubscribeReleasedOnDisconnect(t *testing.T) {
	srv, _, _, bus := newTestServer(t)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer srv.Stop()

	conn, err := net.DialTimeout("unix", srv.socketPath, time.Second)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	req, _ := json.Marshal(Request{Command: CommandSubscribe})
	if _, err := conn.Write(append(req, '\n')); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if _, err := bufio.NewReader(conn).ReadBytes('\n'); err != nil {
		t.Fatalf("no subscription ack: %v", err)
	}

	if !waitFor(func() bool { return bus.Subscribers() == 1 }) {
		t.Fatalf("Subscribers = %d, want 1", bus.Subscribers())
	}

	// Dropping the connection must free the bus slot promptly, without
	// waiting for the next event to flush out the dead stream.
	conn.Close()
	if !waitFor(func() bool { return bus.Subscribers() == 0 }) {
		t.Fatalf("Subscribers = %d after disconnect, want 0", bus.Subscribers())
	}
}

// waitFor polls cond until it holds or a generous deadline passes.
func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestServerClientRoundTrip(t *testing.T) {
	srv, _, sim, _ := newTestServer(t)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer srv.Stop()

	id := sim.AddWindow("Notes - Notepad", "notepad.exe")

	client := NewClient()
	data, err := client.Pin(uintptr(id))
	if err != nil {
		t.Fatalf("client Pin failed: %v", err)
	}
	if data.Title != "Notes - Notepad" {
		t.Errorf("title = %q", data.Title)
	}

	pins, err := client.ListPins()
	if err != nil {
		t.Fatalf("client ListPins failed: %v", err)
	}
	if len(pins.Pins) != 1 {
		t.Errorf("pins = %+v, want one", pins.Pins)
	}

	if err := client.Ping(); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
