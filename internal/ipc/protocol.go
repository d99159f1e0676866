package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/deskutil/internal/platform"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus       CommandType = "GET_STATUS"
	CommandGetActiveWindow CommandType = "GET_ACTIVE_WINDOW"
	CommandGetWindowSize   CommandType = "GET_WINDOW_SIZE"
	CommandGetWorkArea     CommandType = "GET_WORK_AREA"
	CommandGetDisplays     CommandType = "GET_DISPLAYS"
	CommandSetBounds       CommandType = "SET_BOUNDS"
)

// Request represents an IPC request from a view to the controller
type Request struct {
	ID      string          `json:"id,omitempty"`
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from the controller
type Response struct {
	ID     string          `json:"id,omitempty"`
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	AppName       string `json:"app_name"`
	Platform      string `json:"platform"`
	LaunchedAt    int64  `json:"launched_at_unix_ms"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type WindowData struct {
	WindowID uint32 `json:"window_id"`
}

type WindowSizePayload struct {
	WindowID uint32 `json:"window_id"`
}

type DisplaysData struct {
	Displays []platform.Display `json:"displays"`
}

type SetBoundsPayload struct {
	WindowID uint32        `json:"window_id"`
	Bounds   platform.Rect `json:"bounds"`
	Animate  bool          `json:"animate,omitempty"`
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
