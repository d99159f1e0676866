package mcp

import "github.com/1broseidon/deskutil/internal/platform"

// PlatformInfoInput is the input for the platform_info tool.
type PlatformInfoInput struct{}

// PlatformInfoOutput is the output for the platform_info tool.
type PlatformInfoOutput struct {
	RawOS         string `json:"raw_os"`
	Platform      string `json:"platform"`
	Side          string `json:"side"`
	MenuBarHeight int    `json:"menu_bar_height"`
}

// CenterInput is the input for the window_bounds_centered and center_window tools.
type CenterInput struct {
	WindowID uint32 `json:"window_id,omitempty" jsonschema:"X11 window id (default: the active window)"`
	Width    int    `json:"width,omitempty" jsonschema:"Target width; must be set together with height"`
	Height   int    `json:"height,omitempty" jsonschema:"Target height; must be set together with width"`
	Animated *bool  `json:"animated,omitempty" jsonschema:"Animate the move where the host supports it (default: center.animated from config)"`
}

// BoundsOutput is the output for the window_bounds_centered and center_window tools.
type BoundsOutput struct {
	Bounds platform.Rect `json:"bounds"`
	Moved  bool          `json:"moved"`
}

// FirstLaunchInput is the input for the first_app_launch tool.
type FirstLaunchInput struct{}

// FirstLaunchOutput is the output for the first_app_launch tool.
type FirstLaunchOutput struct {
	FirstLaunch bool   `json:"first_launch"`
	MarkerPath  string `json:"marker_path"`
}

// DarkModeInput is the input for the dark_mode tool.
type DarkModeInput struct{}

// DarkModeOutput is the output for the dark_mode tool.
type DarkModeOutput struct {
	Enabled bool `json:"enabled"`
}

// ValidateCSPInput is the input for the validate_csp tool.
type ValidateCSPInput struct {
	Policy string `json:"policy" jsonschema:"required,Content-Security-Policy with one directive per line, each ending in a semicolon"`
}

// ValidateCSPOutput is the output for the validate_csp tool.
type ValidateCSPOutput struct {
	Valid      bool   `json:"valid"`
	Error      string `json:"error,omitempty"`
	Line       int    `json:"line,omitempty"`
	Normalized string `json:"normalized,omitempty"`
}
