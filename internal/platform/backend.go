package platform

import "errors"

// ErrUnsupported is returned by the native backend on platforms without one.
var ErrUnsupported = errors.New("no native window backend for this platform")

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowSize is the outer size of a window.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Bounds Rect   `json:"bounds"`
	Usable Rect   `json:"usable"`
}

// Backend is the slice of host window-system state the geometry code needs.
type Backend interface {
	// ActiveWindow returns the currently focused window.
	ActiveWindow() (WindowID, error)
	WindowSize(windowID WindowID) (WindowSize, error)
	// WorkAreaNearestPointer returns the usable area (excluding panels,
	// docks and menu bars) of the display closest to the pointer.
	WorkAreaNearestPointer() (Rect, error)
	// Displays lists displays, primary first.
	Displays() ([]Display, error)
	MoveResize(windowID WindowID, bounds Rect, animate bool) error
}
