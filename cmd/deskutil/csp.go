package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/1broseidon/deskutil/internal/app"
	"github.com/1broseidon/deskutil/internal/csp"
)

func printCSPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: deskutil csp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  check <file>    Validate a policy file (one directive per line)")
	fmt.Fprintln(w, "  serve           Serve serve.root with content_security_policy installed")
}

func runCSP(args []string) int {
	if len(args) == 0 {
		printCSPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "check":
		return runCSPCheck(args[1:])
	case "serve":
		return runCSPServe(args[1:])
	case "help", "-h", "--help":
		printCSPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown csp command: %s\n\n", args[0])
		printCSPUsage(os.Stderr)
		return 2
	}
}

func runCSPCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskutil csp check <file>")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	policy := string(data)
	if err := csp.Validate(policy); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", fs.Arg(0), err)
		return 1
	}

	fmt.Println("csp: ok")
	fmt.Printf("%s: %s\n", csp.HeaderName, csp.Normalize(policy))
	return 0
}

func runCSPServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", configFlagUsage)
	addr := fs.String("addr", "", "Listen address (default: serve.addr)")
	root := fs.String("root", "", "Directory to serve (default: serve.root)")
	policyFile := fs.String("policy", "", "Policy file (default: content_security_policy)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: deskutil csp serve [--config PATH] [-addr ADDR] [-root DIR] [-policy FILE]")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config
	logger := newLogger(cfg)

	if *addr == "" {
		*addr = cfg.Serve.Addr
	}
	if *root == "" {
		*root = cfg.Serve.Root
	}
	policy := cfg.ContentSecurityPolicy
	if *policyFile != "" {
		data, err := os.ReadFile(*policyFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		policy = string(data)
	}
	if policy == "" {
		fmt.Fprintln(os.Stderr, "no policy: set content_security_policy or pass -policy")
		return 2
	}

	a, err := app.New(cfg.AppName, cfg.UserDataDir)
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	// The policy is installed once the app reports ready, i.e. once the
	// listener is bound.
	installer := csp.NewInstaller(a, a.DefaultSession(), logger)
	installErr := make(chan error, 1)
	go func() {
		installErr <- installer.Set(ctx, policy, csp.Options{})
	}()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", *addr, err)
	}
	a.MarkReady()

	if err := <-installErr; err != nil {
		ln.Close()
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	srv := &http.Server{
		Handler:           a.DefaultSession().Handler(http.FileServer(http.Dir(*root))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving", "addr", ln.Addr().String(), "root", *root)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("HTTP server error: %v", err)
		return 1
	}
	return 0
}
