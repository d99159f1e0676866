package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/deskutil/internal/platform"
)

// Client talks to the controller over its unix socket.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the socket at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(command CommandType, payload interface{}) (*Response, error) {
	req := &Request{
		ID:      uuid.NewString(),
		Command: command,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		req.Payload = data
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to controller: %w (is the controller running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("controller error: %s", resp.Error)
	}
	if resp.ID != "" && resp.ID != req.ID {
		return nil, fmt.Errorf("response id %q does not match request %q", resp.ID, req.ID)
	}

	return &resp, nil
}

func (c *Client) call(command CommandType, payload, out interface{}) error {
	resp, err := c.sendRequest(command, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// GetStatus retrieves controller status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ProxyBackend is the view-side platform.Backend: every query is answered by
// the controller.
type ProxyBackend struct {
	client *Client
}

var _ platform.Backend = (*ProxyBackend)(nil)

func NewProxyBackend(client *Client) *ProxyBackend {
	return &ProxyBackend{client: client}
}

func (p *ProxyBackend) ActiveWindow() (platform.WindowID, error) {
	var data WindowData
	if err := p.client.call(CommandGetActiveWindow, nil, &data); err != nil {
		return 0, err
	}
	return platform.WindowID(data.WindowID), nil
}

func (p *ProxyBackend) WindowSize(windowID platform.WindowID) (platform.WindowSize, error) {
	var size platform.WindowSize
	err := p.client.call(CommandGetWindowSize, WindowSizePayload{WindowID: uint32(windowID)}, &size)
	return size, err
}

func (p *ProxyBackend) WorkAreaNearestPointer() (platform.Rect, error) {
	var area platform.Rect
	err := p.client.call(CommandGetWorkArea, nil, &area)
	return area, err
}

func (p *ProxyBackend) Displays() ([]platform.Display, error) {
	var data DisplaysData
	if err := p.client.call(CommandGetDisplays, nil, &data); err != nil {
		return nil, err
	}
	return data.Displays, nil
}

func (p *ProxyBackend) MoveResize(windowID platform.WindowID, bounds platform.Rect, animate bool) error {
	return p.client.call(CommandSetBounds, SetBoundsPayload{
		WindowID: uint32(windowID),
		Bounds:   bounds,
		Animate:  animate,
	}, nil)
}
