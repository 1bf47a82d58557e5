package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/pintop/internal/pin"
	"github.com/1broseidon/pintop/internal/platform"
	"github.com/1broseidon/pintop/internal/runtimepath"
)

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	reg          *pin.Registry
	api          platform.WindowAPI
	bus          *pin.Bus
	backendName  string
	saveFn       func() error
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. saveFn persists the current snapshot
// and may be nil when persistence is disabled.
func NewServer(reg *pin.Registry, api platform.WindowAPI, bus *pin.Bus, backendName string, saveFn func() error) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath:  socketPath,
		reg:         reg,
		api:         api,
		bus:         bus,
		backendName: backendName,
		saveFn:      saveFn,
		startTime:   time.Now(),
	}, nil
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	// Accept connections
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	// Parse request
	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	// SUBSCRIBE holds the connection and streams events instead of
	// sending a single response.
	if req.Command == CommandSubscribe {
		s.handleSubscribe(conn)
		return
	}

	// Handle command
	resp := s.handleCommand(req)

	// Send response
	respData, err := resp.Marshal()
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandPin:
		return s.handlePin(req.Payload)
	case CommandUnpin:
		return s.handleUnpin(req.Payload)
	case CommandTogglePin:
		return s.handleTogglePin(req.Payload)
	case CommandSetOpacity:
		return s.handleSetOpacity(req.Payload)
	case CommandListPins:
		return s.handleListPins()
	case CommandFocus:
		return s.handleFocus(req.Payload)
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandSave:
		return s.handleSave()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// resolveTarget maps a payload window id to a handle, defaulting to the
// current foreground window when the id is zero.
func (s *Server) resolveTarget(id uintptr) (platform.WindowID, error) {
	if id != 0 {
		return platform.WindowID(id), nil
	}
	fg, err := s.api.Foreground()
	if err != nil {
		return 0, fmt.Errorf("failed to resolve foreground window: %w", err)
	}
	return fg, nil
}

func parseWindowPayload(payload json.RawMessage) (WindowPayload, error) {
	var p WindowPayload
	if len(payload) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return p, fmt.Errorf("invalid payload: %w", err)
	}
	return p, nil
}

func (s *Server) handlePin(payload json.RawMessage) *Response {
	p, err := parseWindowPayload(payload)
	if err != nil {
		return s.commandError(err.Error())
	}
	id, err := s.resolveTarget(p.WindowID)
	if err != nil {
		return s.commandError(err.Error())
	}

	rec, err := s.reg.Pin(id)
	if err != nil {
		return s.commandError(fmt.Sprintf("Failed to pin window %d: %v", id, err))
	}

	resp, _ := NewOKResponse(PinDataFromRecord(rec))
	return resp
}

func (s *Server) handleUnpin(payload json.RawMessage) *Response {
	p, err := parseWindowPayload(payload)
	if err != nil {
		return s.commandError(err.Error())
	}
	id, err := s.resolveTarget(p.WindowID)
	if err != nil {
		return s.commandError(err.Error())
	}

	if err := s.reg.Unpin(id); err != nil {
		return s.commandError(fmt.Sprintf("Failed to unpin window %d: %v", id, err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleTogglePin(payload json.RawMessage) *Response {
	p, err := parseWindowPayload(payload)
	if err != nil {
		return s.commandError(err.Error())
	}
	id, err := s.resolveTarget(p.WindowID)
	if err != nil {
		return s.commandError(err.Error())
	}

	pinned, err := s.reg.Toggle(id)
	if err != nil {
		return s.commandError(fmt.Sprintf("Failed to toggle pin on window %d: %v", id, err))
	}

	data := PinData{WindowID: uintptr(id), IsPinned: pinned}
	if rec, ok := s.reg.Get(id); ok {
		data = PinDataFromRecord(rec)
	}
	resp, _ := NewOKResponse(data)
	return resp
}

func (s *Server) handleSetOpacity(payload json.RawMessage) *Response {
	var p SetOpacityPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return s.commandError(fmt.Sprintf("Invalid opacity payload: %v", err))
	}
	id, err := s.resolveTarget(p.WindowID)
	if err != nil {
		return s.commandError(err.Error())
	}

	if _, err := s.reg.SetOpacity(id, p.Percent); err != nil {
		if errors.Is(err, platform.ErrInvalidHandle) {
			return s.commandError(fmt.Sprintf("Window %d is gone", id))
		}
		return s.commandError(fmt.Sprintf("Failed to set opacity on window %d: %v", id, err))
	}

	rec, _ := s.reg.Get(id)
	resp, _ := NewOKResponse(PinDataFromRecord(rec))
	return resp
}

func (s *Server) handleListPins() *Response {
	records := s.reg.List()
	pins := make([]PinData, len(records))
	for i, rec := range records {
		pins[i] = PinDataFromRecord(rec)
	}

	resp, _ := NewOKResponse(ListPinsData{Pins: pins})
	return resp
}

func (s *Server) handleFocus(payload json.RawMessage) *Response {
	var p WindowPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return s.commandError(fmt.Sprintf("Invalid focus payload: %v", err))
	}
	if p.WindowID == 0 {
		return s.commandError("window_id is required")
	}

	if err := s.api.Raise(platform.WindowID(p.WindowID)); err != nil {
		return s.commandError(fmt.Sprintf("Failed to focus window %d: %v", p.WindowID, err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		PinnedCount:   s.reg.Len(),
		Backend:       s.backendName,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}

	resp, _ := NewOKResponse(status)
	return resp
}

func (s *Server) handleSave() *Response {
	if s.saveFn == nil {
		return s.commandError("persistence is disabled")
	}
	if err := s.saveFn(); err != nil {
		return s.commandError(fmt.Sprintf("Failed to save state: %v", err))
	}

	resp, _ := NewOKResponse(nil)
	return resp
}

// handleSubscribe streams bus events to the client as JSON lines until the
// connection drops.
func (s *Server) handleSubscribe(conn net.Conn) {
	events, cancel := s.bus.Subscribe(64)
	defer cancel()

	// Acknowledge the subscription before the first event.
	ack, _ := NewOKResponse(nil)
	ackData, _ := ack.Marshal()
	if _, err := conn.Write(append(ackData, '\n')); err != nil {
		return
	}

	// The client sends nothing after SUBSCRIBE, so a returning read means
	// it disconnected. Cancelling closes the event channel, which ends the
	// stream loop below even on a quiet daemon.
	go func() {
		io.Copy(io.Discard, conn)
		cancel()
	}()

	enc := json.NewEncoder(conn)
	for ev := range events {
		payload, err := json.Marshal(ev.Payload)
		if err != nil {
			log.Printf("Failed to marshal event payload: %v", err)
			continue
		}
		msg := EventMessage{Event: ev.Name, Payload: payload}
		if err := enc.Encode(&msg); err != nil {
			// Client went away.
			return
		}
	}
}

// commandError publishes a pin-error event and returns the error response.
// Every boundary failure is visible both to the caller and to subscribers.
func (s *Server) commandError(msg string) *Response {
	log.Printf("IPC error: %s", msg)
	if s.bus != nil {
		s.bus.Emit(pin.Event{
			Name:    pin.EventPinError,
			Payload: pin.PinErrorPayload{Message: msg},
		})
	}
	return NewErrorResponse(msg)
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
