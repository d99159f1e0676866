//go:build linux

package platform

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/deskutil/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
type LinuxBackend struct {
	conn *x11.Connection
}

var _ Backend = (*LinuxBackend)(nil)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection) *LinuxBackend {
	return &LinuxBackend{conn: conn}
}

// NewNativeBackend opens a fresh X11 connection. A nil logger discards output.
func NewNativeBackend(logger *slog.Logger) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return &LinuxBackend{conn: conn}, nil
}

// Close closes the underlying X11 connection.
func (b *LinuxBackend) Close() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// WindowSize returns the outer size of a window.
func (b *LinuxBackend) WindowSize(windowID WindowID) (WindowSize, error) {
	conn, err := b.connection()
	if err != nil {
		return WindowSize{}, err
	}

	w, h, err := conn.GetWindowSize(xproto.Window(windowID))
	if err != nil {
		return WindowSize{}, err
	}
	return WindowSize{Width: w, Height: h}, nil
}

// WorkAreaNearestPointer returns the usable area of the monitor nearest the pointer.
func (b *LinuxBackend) WorkAreaNearestPointer() (Rect, error) {
	conn, err := b.connection()
	if err != nil {
		return Rect{}, err
	}

	mon, err := conn.MonitorNearestPointer()
	if err != nil {
		return Rect{}, err
	}
	return rectFromMonitor(conn.WorkArea(*mon)), nil
}

// Displays returns all active displays, primary first.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, Display{
			ID:     m.ID,
			Name:   m.Name,
			Bounds: rectFromMonitor(m),
			Usable: rectFromMonitor(conn.WorkArea(m)),
		})
	}
	return displays, nil
}

// MoveResize moves and resizes a window. X11 has no animated move, so
// animate is ignored.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect, animate bool) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	return conn.MoveResizeWindow(
		xproto.Window(windowID),
		bounds.X,
		bounds.Y,
		bounds.Width,
		bounds.Height,
	)
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func rectFromMonitor(m x11.Monitor) Rect {
	return Rect{
		X:      m.X,
		Y:      m.Y,
		Width:  m.Width,
		Height: m.Height,
	}
}
