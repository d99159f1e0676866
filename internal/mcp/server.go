package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/deskutil/internal/config"
	"github.com/1broseidon/deskutil/internal/csp"
	"github.com/1broseidon/deskutil/internal/firstlaunch"
	"github.com/1broseidon/deskutil/internal/geometry"
	"github.com/1broseidon/deskutil/internal/platform"
	"github.com/1broseidon/deskutil/internal/theme"
)

const (
	ServerName    = "deskutil"
	ServerVersion = "0.1.0"
)

// Options are the components the tool server exposes.
type Options struct {
	Config   *config.Config
	Env      platform.Env
	Backend  platform.Backend
	Tracker  *firstlaunch.Tracker
	DarkMode *theme.DarkMode
	Logger   *slog.Logger
}

// Server is the MCP server exposing the desktop utilities as tools.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config
	env       platform.Env
	backend   platform.Backend
	centerer  *geometry.Centerer
	tracker   *firstlaunch.Tracker
	darkMode  *theme.DarkMode
	logger    *slog.Logger
}

// NewServer creates a new MCP server.
func NewServer(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.Backend == nil {
		return nil, fmt.Errorf("backend is required")
	}
	if opts.Tracker == nil {
		return nil, fmt.Errorf("first-launch tracker is required")
	}
	if opts.DarkMode == nil {
		opts.DarkMode = theme.NewDarkMode(opts.Env.Platform(), nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Server{
		config:   opts.Config,
		env:      opts.Env,
		backend:  opts.Backend,
		centerer: geometry.NewCenterer(opts.Backend, opts.Logger),
		tracker:  opts.Tracker,
		darkMode: opts.DarkMode,
		logger:   opts.Logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "platform_info",
		Description: "Report the host platform tag (macos, windows, linux, other), the raw OS identifier, the execution side and the macOS menu bar height.",
	}, s.handlePlatformInfo)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_bounds_centered",
		Description: "Compute bounds that center a window in the work area of the display nearest the pointer, without moving it. Defaults to the active window and its current size.",
	}, s.handleBoundsCentered)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "center_window",
		Description: "Center a window in the work area of the display nearest the pointer. Defaults to the active window; pass width and height to resize it as well.",
	}, s.handleCenterWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "first_app_launch",
		Description: "Report whether this is the first launch of the app for the current user. The first call records a marker in the user data directory; later calls return false.",
	}, s.handleFirstLaunch)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "dark_mode",
		Description: "Report whether the system appearance is dark. Always false outside macOS.",
	}, s.handleDarkMode)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "validate_csp",
		Description: "Check a Content-Security-Policy where every line must end in a semicolon, and return the single-line header value it would install.",
	}, s.handleValidateCSP)
}

func (s *Server) handlePlatformInfo(_ context.Context, _ *mcpsdk.CallToolRequest, _ PlatformInfoInput) (*mcpsdk.CallToolResult, PlatformInfoOutput, error) {
	out := PlatformInfoOutput{
		RawOS:    s.env.RawOS(),
		Platform: string(s.env.Platform()),
		Side:     s.env.Side().String(),
	}
	height, err := geometry.MenuBarHeight(s.env, s.backend)
	if err != nil {
		s.logger.Warn("menu bar height unavailable", "error", err)
	} else {
		out.MenuBarHeight = height
	}
	return nil, out, nil
}

func (s *Server) handleBoundsCentered(_ context.Context, _ *mcpsdk.CallToolRequest, args CenterInput) (*mcpsdk.CallToolResult, BoundsOutput, error) {
	opts, err := s.centerOptions(args)
	if err != nil {
		return nil, BoundsOutput{}, err
	}
	bounds, err := s.centerer.Bounds(opts)
	if err != nil {
		return nil, BoundsOutput{}, err
	}
	return nil, BoundsOutput{Bounds: bounds}, nil
}

func (s *Server) handleCenterWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args CenterInput) (*mcpsdk.CallToolResult, BoundsOutput, error) {
	opts, err := s.centerOptions(args)
	if err != nil {
		return nil, BoundsOutput{}, err
	}
	bounds, err := s.centerer.Center(opts)
	if err != nil {
		return nil, BoundsOutput{}, err
	}
	return nil, BoundsOutput{Bounds: bounds, Moved: true}, nil
}

func (s *Server) centerOptions(args CenterInput) (geometry.Options, error) {
	opts := geometry.Options{
		Window:   platform.WindowID(args.WindowID),
		Size:     s.config.CenterSize(),
		Animated: s.config.Center.Animated,
	}
	switch {
	case args.Width == 0 && args.Height == 0:
	case args.Width > 0 && args.Height > 0:
		opts.Size = &platform.WindowSize{Width: args.Width, Height: args.Height}
	default:
		return opts, fmt.Errorf("width and height must both be positive, got %dx%d", args.Width, args.Height)
	}
	if args.Animated != nil {
		opts.Animated = *args.Animated
	}
	return opts, nil
}

func (s *Server) handleFirstLaunch(_ context.Context, _ *mcpsdk.CallToolRequest, _ FirstLaunchInput) (*mcpsdk.CallToolResult, FirstLaunchOutput, error) {
	first, err := s.tracker.IsFirstLaunch()
	if err != nil {
		return nil, FirstLaunchOutput{}, err
	}
	return nil, FirstLaunchOutput{FirstLaunch: first, MarkerPath: s.tracker.MarkerPath()}, nil
}

func (s *Server) handleDarkMode(_ context.Context, _ *mcpsdk.CallToolRequest, _ DarkModeInput) (*mcpsdk.CallToolResult, DarkModeOutput, error) {
	return nil, DarkModeOutput{Enabled: s.darkMode.IsEnabled()}, nil
}

func (s *Server) handleValidateCSP(_ context.Context, _ *mcpsdk.CallToolRequest, args ValidateCSPInput) (*mcpsdk.CallToolResult, ValidateCSPOutput, error) {
	if err := csp.Validate(args.Policy); err != nil {
		out := ValidateCSPOutput{Error: err.Error()}
		var verr *csp.ValidationError
		if errors.As(err, &verr) {
			out.Line = verr.Line
		}
		return nil, out, nil
	}
	return nil, ValidateCSPOutput{Valid: true, Normalized: csp.Normalize(args.Policy)}, nil
}
