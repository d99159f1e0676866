package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/deskutil/internal/platform"
)

// Server answers window queries from view processes using the controller's
// native backend.
type Server struct {
	socketPath   string
	listener     net.Listener
	backend      platform.Backend
	env          platform.Env
	appName      string
	logger       *slog.Logger
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates an IPC server bound to socketPath once started.
func NewServer(socketPath, appName string, env platform.Env, backend platform.Backend, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		socketPath: socketPath,
		backend:    backend,
		env:        env,
		appName:    appName,
		logger:     logger,
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove a stale socket from a previous run.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			shuttingDown := s.shuttingDown
			s.shutdownMu.Unlock()
			if shuttingDown {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection serves one request per connection.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)
	resp.ID = req.ID

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send IPC response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC request", "id", req.ID, "command", req.Command)

	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandGetActiveWindow:
		return s.handleGetActiveWindow()
	case CommandGetWindowSize:
		return s.handleGetWindowSize(req.Payload)
	case CommandGetWorkArea:
		return s.handleGetWorkArea()
	case CommandGetDisplays:
		return s.handleGetDisplays()
	case CommandSetBounds:
		return s.handleSetBounds(req.Payload)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		AppName:       s.appName,
		Platform:      string(s.env.Platform()),
		LaunchedAt:    s.env.LaunchedAt().UnixMilli(),
		UptimeSeconds: int64(time.Since(s.env.LaunchedAt()).Seconds()),
	}
	return okOrError(status)
}

func (s *Server) handleGetActiveWindow() *Response {
	id, err := s.backend.ActiveWindow()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get active window: %v", err))
	}
	return okOrError(WindowData{WindowID: uint32(id)})
}

func (s *Server) handleGetWindowSize(payload json.RawMessage) *Response {
	var p WindowSizePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid payload: %v", err))
	}
	size, err := s.backend.WindowSize(platform.WindowID(p.WindowID))
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get window size: %v", err))
	}
	return okOrError(size)
}

func (s *Server) handleGetWorkArea() *Response {
	area, err := s.backend.WorkAreaNearestPointer()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get work area: %v", err))
	}
	return okOrError(area)
}

func (s *Server) handleGetDisplays() *Response {
	displays, err := s.backend.Displays()
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to get displays: %v", err))
	}
	return okOrError(DisplaysData{Displays: displays})
}

func (s *Server) handleSetBounds(payload json.RawMessage) *Response {
	var p SetBoundsPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid payload: %v", err))
	}
	if err := s.backend.MoveResize(platform.WindowID(p.WindowID), p.Bounds, p.Animate); err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to set bounds: %v", err))
	}
	return okOrError(nil)
}

func okOrError(data interface{}) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop closes the listener and removes the socket.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		s.wg.Wait()
	}
	os.Remove(s.socketPath)
}
