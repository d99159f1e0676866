package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/deskutil/internal/app"
	"github.com/1broseidon/deskutil/internal/config"
	"github.com/1broseidon/deskutil/internal/firstlaunch"
	"github.com/1broseidon/deskutil/internal/geometry"
	"github.com/1broseidon/deskutil/internal/ipc"
	"github.com/1broseidon/deskutil/internal/platform"
	"github.com/1broseidon/deskutil/internal/runtimepath"
	"github.com/1broseidon/deskutil/internal/theme"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "controller":
		os.Exit(runController(os.Args[2:]))
	case "platform":
		os.Exit(runPlatform(os.Args[2:]))
	case "center":
		os.Exit(runCenter(os.Args[2:]))
	case "first-launch":
		os.Exit(runFirstLaunch(os.Args[2:]))
	case "theme":
		os.Exit(runTheme(os.Args[2:]))
	case "csp":
		os.Exit(runCSP(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: deskutil <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  controller          Serve window queries for view processes (foreground)")
	fmt.Fprintln(w, "  platform            Show platform, execution side and menu bar height")
	fmt.Fprintln(w, "  center              Center a window on the display nearest the pointer")
	fmt.Fprintln(w, "  first-launch        Report whether this is the app's first launch")
	fmt.Fprintln(w, "  theme               Show dark mode state (-watch to follow changes)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  csp check           Validate a Content-Security-Policy file")
	fmt.Fprintln(w, "  csp serve           Serve files with the configured policy installed")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config sources      Show where each config key was set")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'deskutil <command> --help' for command-specific options.")
}

const configFlagUsage = "Config file path (default: ~/.config/deskutil/config.yaml)"

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
}

// backendFor returns the native backend on the controller and a proxy to the
// controller's socket on a view.
func backendFor(env platform.Env, cfg *config.Config, logger *slog.Logger) (platform.Backend, func(), error) {
	if !env.IsController() {
		socketPath, err := runtimepath.SocketPath(cfg.AppName)
		if err != nil {
			return nil, nil, err
		}
		return ipc.NewProxyBackend(ipc.NewClient(socketPath)), func() {}, nil
	}

	native, err := platform.NewNativeBackend(logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to display: %w", err)
	}
	return native, native.Close, nil
}

// appearanceSource starts the macOS appearance watcher. It returns nil
// elsewhere.
func appearanceSource(ctx context.Context, env platform.Env, logger *slog.Logger) theme.Source {
	return platform.SelectFunc(env.Platform(), map[platform.Tag]func() theme.Source{
		platform.MacOS: func() theme.Source {
			notifier := theme.NewNotifier(false)
			watcher, err := theme.NewAppearanceWatcher(notifier, theme.AppearanceOptions{Logger: logger})
			if err != nil {
				logger.Warn("appearance watcher unavailable", "error", err)
				return notifier
			}
			if err := watcher.Refresh(ctx); err != nil {
				logger.Warn("failed to read appearance", "error", err)
			}
			go func() {
				if err := watcher.Run(ctx); err != nil {
					logger.Warn("appearance watcher stopped", "error", err)
				}
			}()
			return notifier
		},
	}, nil)
}

var platformNames = map[platform.Tag]string{
	platform.MacOS:   "macOS",
	platform.Windows: "Windows",
	platform.Linux:   "Linux",
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runController(args []string) int {
	fs := flag.NewFlagSet("controller", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", configFlagUsage)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskutil controller [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Answer window queries from view processes over a unix socket and")
		fmt.Fprintln(os.Stderr, "log system appearance changes.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "controller takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config
	logger := newLogger(cfg)

	env := platform.NewEnv(platform.SideController)
	backend, closeBackend, err := backendFor(env, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create backend: %v", err)
	}
	defer closeBackend()

	socketPath, err := runtimepath.SocketPath(cfg.AppName)
	if err != nil {
		log.Fatalf("Failed to resolve socket path: %v", err)
	}

	server := ipc.NewServer(socketPath, cfg.AppName, env, backend, logger)
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer server.Stop()

	ctx, cancel := signalContext()
	defer cancel()

	darkMode := theme.NewDarkMode(env.Platform(), appearanceSource(ctx, env, logger))
	dispose := darkMode.OnChange(func() {
		logger.Info("appearance changed", "dark", darkMode.IsEnabled())
	})
	defer dispose()

	logger.Info("controller started",
		"app", cfg.AppName,
		"platform", env.Platform(),
		"dark", darkMode.IsEnabled(),
	)

	<-ctx.Done()
	logger.Info("controller shutting down")
	return 0
}

type platformResult struct {
	RawOS         string    `json:"raw_os"`
	Platform      string    `json:"platform"`
	Side          string    `json:"side"`
	LaunchedAt    time.Time `json:"launched_at"`
	MenuBarHeight int       `json:"menu_bar_height"`
}

func runPlatform(args []string) int {
	fs := flag.NewFlagSet("platform", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", configFlagUsage)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskutil platform [--config PATH]")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config
	logger := newLogger(cfg)
	env := platform.NewEnv(cfg.ExecutionSide())

	out := platformResult{
		RawOS:      env.RawOS(),
		Platform:   string(env.Platform()),
		Side:       env.Side().String(),
		LaunchedAt: env.LaunchedAt(),
	}
	// Only macOS reserves a menu bar; skip the display connection elsewhere.
	if env.IsMacOS() {
		backend, closeBackend, err := backendFor(env, cfg, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		defer closeBackend()
		height, err := geometry.MenuBarHeight(env, backend)
		if err != nil {
			logger.Warn("menu bar height unavailable", "error", err)
		}
		out.MenuBarHeight = height
	}

	return writeResult(out, []field{
		{"platform", fmt.Sprintf("%s (%s)", platform.Select(env.Platform(), platformNames, "other"), out.RawOS)},
		{"side", out.Side},
		{"launched_at", out.LaunchedAt.Format(time.RFC3339)},
		{"menu_bar_height", out.MenuBarHeight},
	})
}

func runCenter(args []string) int {
	fs := flag.NewFlagSet("center", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", configFlagUsage)
	width := fs.Int("width", 0, "Target width (requires -height)")
	height := fs.Int("height", 0, "Target height (requires -width)")
	animated := fs.Bool("animated", false, "Animate the move where supported (default: center.animated)")
	window := fs.Uint("window", 0, "Window id (default: active window)")
	dryRun := fs.Bool("dry-run", false, "Print the centered bounds without moving the window")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskutil center [--config PATH] [-width W -height H] [-animated] [-window ID] [-dry-run]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Center a window in the work area of the display nearest the pointer.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if (*width == 0) != (*height == 0) || *width < 0 || *height < 0 {
		fmt.Fprintln(os.Stderr, "-width and -height must be given together and be positive")
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config
	logger := newLogger(cfg)
	env := platform.NewEnv(cfg.ExecutionSide())

	opts := geometry.Options{
		Window:   platform.WindowID(*window),
		Size:     cfg.CenterSize(),
		Animated: cfg.Center.Animated,
	}
	if *width > 0 {
		opts.Size = &platform.WindowSize{Width: *width, Height: *height}
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "animated" {
			opts.Animated = *animated
		}
	})

	backend, closeBackend, err := backendFor(env, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeBackend()

	centerer := geometry.NewCenterer(backend, logger)
	var bounds platform.Rect
	if *dryRun {
		bounds, err = centerer.Bounds(opts)
	} else {
		bounds, err = centerer.Center(opts)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return writeResult(bounds, []field{
		{"x", bounds.X},
		{"y", bounds.Y},
		{"width", bounds.Width},
		{"height", bounds.Height},
		{"moved", !*dryRun},
	})
}

func runFirstLaunch(args []string) int {
	fs := flag.NewFlagSet("first-launch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", configFlagUsage)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskutil first-launch [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Report whether this is the first launch. The first run records a")
		fmt.Fprintf(os.Stderr, "%s marker in the user data directory.\n", firstlaunch.MarkerName)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	a, err := app.New(res.Config.AppName, res.Config.UserDataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	tracker := firstlaunch.New(a.UserDataDir())
	first, err := tracker.IsFirstLaunch()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	out := struct {
		FirstLaunch bool   `json:"first_launch"`
		MarkerPath  string `json:"marker_path"`
	}{first, tracker.MarkerPath()}
	return writeResult(out, []field{
		{"first_launch", out.FirstLaunch},
		{"marker", out.MarkerPath},
	})
}

func runTheme(args []string) int {
	fs := flag.NewFlagSet("theme", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", configFlagUsage)
	watch := fs.Bool("watch", false, "Print every appearance change until interrupted")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskutil theme [--config PATH] [-watch]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show whether dark mode is enabled. Always false outside macOS.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	logger := newLogger(res.Config)
	env := platform.NewEnv(res.Config.ExecutionSide())

	ctx, cancel := signalContext()
	defer cancel()

	darkMode := theme.NewDarkMode(env.Platform(), appearanceSource(ctx, env, logger))
	if !*watch {
		out := struct {
			Enabled bool `json:"enabled"`
		}{darkMode.IsEnabled()}
		return writeResult(out, []field{{"dark_mode", out.Enabled}})
	}

	fmt.Printf("dark_mode: %v\n", darkMode.IsEnabled())
	dispose := darkMode.OnChange(func() {
		fmt.Printf("dark_mode: %v\n", darkMode.IsEnabled())
	})
	defer dispose()

	<-ctx.Done()
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  deskutil config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  deskutil config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  deskutil config sources [--path PATH]")
		return 2
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", configFlagUsage)
	printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}

	switch args[0] {
	case "validate":
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			if res.File != "" {
				fmt.Printf("# file: %s\n", res.File)
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "sources":
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if len(res.Sources) == 0 {
			fmt.Println("all keys use defaults")
			return 0
		}
		keys := make([]string, 0, len(res.Sources))
		for k := range res.Sources {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("%-28s %s\n", k, formatSource(res.Sources[k]))
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func formatSource(src config.Source) string {
	if src.File == "" {
		return "default"
	}
	if src.Line > 0 {
		return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
	}
	return "file:" + src.File
}
