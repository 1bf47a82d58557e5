package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/pintop/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}

	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	// Connect to socket
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	// Set deadline
	conn.SetDeadline(time.Now().Add(c.timeout))

	// Marshal request
	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Send request
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Read response
	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Parse response
	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	// Check for error response
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) sendWindowCommand(cmd CommandType, windowID uintptr) (*Response, error) {
	var payload json.RawMessage
	if windowID != 0 {
		data, err := json.Marshal(WindowPayload{WindowID: windowID})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		payload = data
	}

	return c.sendRequest(&Request{Command: cmd, Payload: payload})
}

// Pin pins a window always-on-top. A zero windowID targets the current
// foreground window.
func (c *Client) Pin(windowID uintptr) (*PinData, error) {
	resp, err := c.sendWindowCommand(CommandPin, windowID)
	if err != nil {
		return nil, err
	}

	var data PinData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse pin data: %w", err)
	}
	return &data, nil
}

// Unpin removes a window's pin. A zero windowID targets the current
// foreground window.
func (c *Client) Unpin(windowID uintptr) error {
	_, err := c.sendWindowCommand(CommandUnpin, windowID)
	return err
}

// TogglePin pins an unpinned window or unpins a pinned one, reporting the
// resulting state.
func (c *Client) TogglePin(windowID uintptr) (*PinData, error) {
	resp, err := c.sendWindowCommand(CommandTogglePin, windowID)
	if err != nil {
		return nil, err
	}

	var data PinData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse pin data: %w", err)
	}
	return &data, nil
}

// SetOpacity sets a pinned window's opacity in percent.
func (c *Client) SetOpacity(windowID uintptr, percent int) (*PinData, error) {
	payload, err := json.Marshal(SetOpacityPayload{
		WindowID: windowID,
		Percent:  percent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal opacity payload: %w", err)
	}

	resp, err := c.sendRequest(&Request{
		Command: CommandSetOpacity,
		Payload: payload,
	})
	if err != nil {
		return nil, err
	}

	var data PinData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse pin data: %w", err)
	}
	return &data, nil
}

// ListPins retrieves all pinned windows in pin order.
func (c *Client) ListPins() (*ListPinsData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandListPins})
	if err != nil {
		return nil, err
	}

	var data ListPinsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse pins data: %w", err)
	}
	return &data, nil
}

// Focus raises a window to the foreground.
func (c *Client) Focus(windowID uintptr) error {
	_, err := c.sendWindowCommand(CommandFocus, windowID)
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}

	return &status, nil
}

// Save asks the daemon to persist the current pin snapshot now.
func (c *Client) Save() error {
	_, err := c.sendRequest(&Request{Command: CommandSave})
	return err
}

// Subscribe opens a long-lived connection and invokes fn for every event
// streamed by the daemon until the connection drops or fn returns an error.
func (c *Client) Subscribe(fn func(EventMessage) error) error {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	reqData, err := json.Marshal(&Request{Command: CommandSubscribe})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	if _, err := conn.Write(append(reqData, '\n')); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)

	// First line acknowledges the subscription.
	ackData, err := reader.ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("failed to read subscribe ack: %w", err)
	}
	var ack Response
	if err := json.Unmarshal(ackData, &ack); err != nil {
		return fmt.Errorf("failed to parse subscribe ack: %w", err)
	}
	if ack.Status == "ERROR" {
		return fmt.Errorf("daemon error: %s", ack.Error)
	}

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return nil
		}
		var msg EventMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			return fmt.Errorf("failed to parse event: %w", err)
		}
		if err := fn(msg); err != nil {
			return err
		}
	}
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
