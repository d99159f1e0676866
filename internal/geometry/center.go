// Package geometry computes window placement from host display state.
package geometry

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/1broseidon/deskutil/internal/platform"
)

// CenteredRect returns bounds that center a window of the given size in
// workArea. override, when non-nil, replaces current. The x and y formulas
// fold in the work-area origin differently; callers rely on that placement.
// No clamping is done, so an oversized window gets a negative origin.
func CenteredRect(current platform.WindowSize, override *platform.WindowSize, workArea platform.Rect) platform.Rect {
	size := current
	if override != nil {
		size = *override
	}

	x := math.Floor(float64(workArea.X) + (float64(workArea.Width)/2 - float64(size.Width)/2))
	y := math.Floor(float64(workArea.Height+workArea.Y)/2 - float64(size.Height)/2)

	return platform.Rect{
		X:      int(x),
		Y:      int(y),
		Width:  size.Width,
		Height: size.Height,
	}
}

// Options selects the window to center and how.
type Options struct {
	// Window is the target; zero means the active window.
	Window platform.WindowID
	// Size overrides the window's current size.
	Size     *platform.WindowSize
	Animated bool
}

// Centerer centers windows through a host backend.
type Centerer struct {
	backend platform.Backend
	logger  *slog.Logger
}

// NewCenterer creates a Centerer. A nil logger discards output.
func NewCenterer(backend platform.Backend, logger *slog.Logger) *Centerer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Centerer{backend: backend, logger: logger}
}

// Bounds returns the centered bounds for the target window without moving it.
func (c *Centerer) Bounds(opts Options) (platform.Rect, error) {
	_, rect, err := c.resolve(opts)
	return rect, err
}

// Center moves and resizes the target window to its centered bounds.
func (c *Centerer) Center(opts Options) (platform.Rect, error) {
	windowID, rect, err := c.resolve(opts)
	if err != nil {
		return platform.Rect{}, err
	}

	if err := c.backend.MoveResize(windowID, rect, opts.Animated); err != nil {
		return platform.Rect{}, fmt.Errorf("failed to move window %d: %w", windowID, err)
	}

	c.logger.Debug("window centered",
		"window_id", windowID,
		"x", rect.X,
		"y", rect.Y,
		"width", rect.Width,
		"height", rect.Height,
		"animated", opts.Animated)
	return rect, nil
}

func (c *Centerer) resolve(opts Options) (platform.WindowID, platform.Rect, error) {
	windowID := opts.Window
	if windowID == 0 {
		active, err := c.backend.ActiveWindow()
		if err != nil {
			return 0, platform.Rect{}, fmt.Errorf("failed to get active window: %w", err)
		}
		windowID = active
	}

	var current platform.WindowSize
	if opts.Size == nil {
		size, err := c.backend.WindowSize(windowID)
		if err != nil {
			return 0, platform.Rect{}, fmt.Errorf("failed to get size of window %d: %w", windowID, err)
		}
		current = size
	}

	workArea, err := c.backend.WorkAreaNearestPointer()
	if err != nil {
		return 0, platform.Rect{}, fmt.Errorf("failed to get work area: %w", err)
	}

	return windowID, CenteredRect(current, opts.Size, workArea), nil
}

// MenuBarHeight is the height reserved at the top of the primary display by
// the macOS menu bar. It is 0 on every other platform.
func MenuBarHeight(env platform.Env, backend platform.Backend) (int, error) {
	if !env.IsMacOS() {
		return 0, nil
	}

	displays, err := backend.Displays()
	if err != nil {
		return 0, err
	}
	if len(displays) == 0 {
		return 0, fmt.Errorf("no displays found")
	}
	return displays[0].Usable.Y, nil
}
