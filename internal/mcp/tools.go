package mcp

import (
	"context"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handlePinWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args PinWindowInput) (*mcpsdk.CallToolResult, PinWindowOutput, error) {
	data, err := s.client.Pin(uintptr(args.WindowID))
	if err != nil {
		return nil, PinWindowOutput{}, fmt.Errorf("pin failed: %w", err)
	}

	return nil, PinWindowOutput{
		WindowID:    uint64(data.WindowID),
		Title:       data.Title,
		ProcessName: data.ProcessName,
		Opacity:     data.Opacity,
		IsPinned:    data.IsPinned,
	}, nil
}

func (s *Server) handleUnpinWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args UnpinWindowInput) (*mcpsdk.CallToolResult, UnpinWindowOutput, error) {
	if err := s.client.Unpin(uintptr(args.WindowID)); err != nil {
		return nil, UnpinWindowOutput{}, fmt.Errorf("unpin failed: %w", err)
	}

	return nil, UnpinWindowOutput{
		WindowID: args.WindowID,
		IsPinned: false,
	}, nil
}

func (s *Server) handleListPinned(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListPinnedInput) (*mcpsdk.CallToolResult, ListPinnedOutput, error) {
	data, err := s.client.ListPins()
	if err != nil {
		return nil, ListPinnedOutput{}, fmt.Errorf("list failed: %w", err)
	}

	out := ListPinnedOutput{Pins: make([]PinnedWindow, len(data.Pins))}
	for i, p := range data.Pins {
		out.Pins[i] = PinnedWindow{
			WindowID:    uint64(p.WindowID),
			Title:       p.Title,
			ProcessName: p.ProcessName,
			Opacity:     p.Opacity,
		}
	}
	return nil, out, nil
}

func (s *Server) handleSetWindowOpacity(_ context.Context, _ *mcpsdk.CallToolRequest, args SetWindowOpacityInput) (*mcpsdk.CallToolResult, SetWindowOpacityOutput, error) {
	data, err := s.client.SetOpacity(uintptr(args.WindowID), args.Percent)
	if err != nil {
		return nil, SetWindowOpacityOutput{}, fmt.Errorf("set opacity failed: %w", err)
	}

	return nil, SetWindowOpacityOutput{
		WindowID: uint64(data.WindowID),
		Opacity:  data.Opacity,
	}, nil
}

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusWindowInput) (*mcpsdk.CallToolResult, FocusWindowOutput, error) {
	if args.WindowID == 0 {
		return nil, FocusWindowOutput{}, fmt.Errorf("window_id is required")
	}
	if err := s.client.Focus(uintptr(args.WindowID)); err != nil {
		return nil, FocusWindowOutput{}, fmt.Errorf("focus failed: %w", err)
	}

	return nil, FocusWindowOutput{
		WindowID: args.WindowID,
		Focused:  true,
	}, nil
}
