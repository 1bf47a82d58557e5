package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/pintop/internal/pin"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandPin        CommandType = "PIN"
	CommandUnpin      CommandType = "UNPIN"
	CommandTogglePin  CommandType = "TOGGLE_PIN"
	CommandSetOpacity CommandType = "SET_OPACITY"
	CommandListPins   CommandType = "LIST_PINS"
	CommandFocus      CommandType = "FOCUS"
	CommandGetStatus  CommandType = "GET_STATUS"
	CommandSave       CommandType = "SAVE"
	CommandSubscribe  CommandType = "SUBSCRIBE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// WindowPayload targets a command at a window. A zero ID means the
// current foreground window.
type WindowPayload struct {
	WindowID uintptr `json:"window_id,omitempty"`
}

// SetOpacityPayload carries the SET_OPACITY target and percent value.
type SetOpacityPayload struct {
	WindowID uintptr `json:"window_id,omitempty"`
	Percent  int     `json:"percent"`
}

// PinData describes one pinned window in LIST_PINS and pin-command
// responses.
type PinData struct {
	WindowID    uintptr `json:"window_id"`
	Title       string  `json:"title"`
	ProcessName string  `json:"process_name"`
	Opacity     int     `json:"opacity"` // percent
	IsPinned    bool    `json:"is_pinned"`
}

// ListPinsData represents the data returned by LIST_PINS
type ListPinsData struct {
	Pins []PinData `json:"pins"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	PinnedCount   int    `json:"pinned_count"`
	Backend       string `json:"backend"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

// EventMessage is one line of a SUBSCRIBE stream.
type EventMessage struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// PinDataFromRecord converts a registry record to its wire form.
func PinDataFromRecord(rec pin.Record) PinData {
	return PinData{
		WindowID:    uintptr(rec.ID),
		Title:       rec.Title,
		ProcessName: rec.ProcessName,
		Opacity:     int(pin.AlphaToPercent(rec.Opacity)),
		IsPinned:    true,
	}
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
