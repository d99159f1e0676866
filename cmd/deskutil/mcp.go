package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/1broseidon/deskutil/internal/app"
	"github.com/1broseidon/deskutil/internal/firstlaunch"
	"github.com/1broseidon/deskutil/internal/mcp"
	"github.com/1broseidon/deskutil/internal/platform"
	"github.com/1broseidon/deskutil/internal/theme"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: deskutil mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Start the MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'deskutil mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stdout, "Usage: deskutil mcp serve")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Start the MCP server on stdio. Designed to be invoked by MCP clients.")
		fmt.Fprintln(os.Stdout, "View-side configs proxy window tools through a running controller.")
		return 0
	}

	res, err := loadConfig("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := res.Config
	logger := newLogger(cfg)
	env := platform.NewEnv(cfg.ExecutionSide())

	a, err := app.New(cfg.AppName, cfg.UserDataDir)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	backend, closeBackend, err := backendFor(env, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create backend: %v", err)
	}
	defer closeBackend()

	ctx, cancel := signalContext()
	defer cancel()

	server, err := mcp.NewServer(mcp.Options{
		Config:   cfg,
		Env:      env,
		Backend:  backend,
		Tracker:  firstlaunch.New(a.UserDataDir()),
		DarkMode: theme.NewDarkMode(env.Platform(), appearanceSource(ctx, env, logger)),
		Logger:   logger,
	})
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	if err := server.Run(ctx); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
	return 0
}
