//go:build !linux

package platform

import "log/slog"

// UnsupportedBackend is the native backend on platforms without a window
// system integration. Every call returns ErrUnsupported.
type UnsupportedBackend struct{}

var _ Backend = UnsupportedBackend{}

// NewNativeBackend returns a backend whose calls all fail with ErrUnsupported.
func NewNativeBackend(*slog.Logger) (UnsupportedBackend, error) {
	return UnsupportedBackend{}, nil
}

func (UnsupportedBackend) Close() {}

func (UnsupportedBackend) ActiveWindow() (WindowID, error) { return 0, ErrUnsupported }

func (UnsupportedBackend) WindowSize(WindowID) (WindowSize, error) {
	return WindowSize{}, ErrUnsupported
}

func (UnsupportedBackend) WorkAreaNearestPointer() (Rect, error) { return Rect{}, ErrUnsupported }

func (UnsupportedBackend) Displays() ([]Display, error) { return nil, ErrUnsupported }

func (UnsupportedBackend) MoveResize(WindowID, Rect, bool) error { return ErrUnsupported }
