package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/deskutil/internal/csp"
	"github.com/1broseidon/deskutil/internal/platform"
)

// CenterConfig sets defaults for the center command and tool.
type CenterConfig struct {
	Animated bool `yaml:"animated"`
	// Width and Height override the window size; 0 keeps the current size.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ServeConfig configures `deskutil csp serve`.
type ServeConfig struct {
	Addr string `yaml:"addr"`
	Root string `yaml:"root"`
}

// Config is the effective deskutil configuration.
type Config struct {
	AppName     string `yaml:"app_name"`
	UserDataDir string `yaml:"user_data_dir,omitempty"`
	// Side is "controller" or "view".
	Side     string `yaml:"side"`
	LogLevel string `yaml:"log_level"`

	ContentSecurityPolicy string `yaml:"content_security_policy,omitempty"`

	Center CenterConfig `yaml:"center"`
	Serve  ServeConfig  `yaml:"serve"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		AppName:  "deskutil",
		Side:     "controller",
		LogLevel: "info",
		Serve: ServeConfig{
			Addr: "127.0.0.1:8080",
			Root: ".",
		},
	}
}

// ValidationError points at the offending config key and, when known, the
// file position it came from.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AppName) == "" {
		return &ValidationError{Path: "app_name", Err: fmt.Errorf("app_name is required")}
	}
	if strings.ContainsAny(c.AppName, `/\`) {
		return &ValidationError{Path: "app_name", Err: fmt.Errorf("app_name must not contain path separators")}
	}
	if _, err := platform.ParseSide(c.Side); err != nil {
		return &ValidationError{Path: "side", Err: err}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if c.ContentSecurityPolicy != "" {
		if err := csp.Validate(c.ContentSecurityPolicy); err != nil {
			return &ValidationError{Path: "content_security_policy", Err: err}
		}
	}
	if c.Center.Width < 0 || c.Center.Height < 0 {
		return &ValidationError{Path: "center", Err: fmt.Errorf("width and height must be >= 0")}
	}
	if (c.Center.Width == 0) != (c.Center.Height == 0) {
		return &ValidationError{Path: "center", Err: fmt.Errorf("width and height must be set together")}
	}
	if strings.TrimSpace(c.Serve.Addr) == "" {
		return &ValidationError{Path: "serve.addr", Err: fmt.Errorf("serve.addr is required")}
	}
	return nil
}

// ExecutionSide returns the parsed side. Call after Validate.
func (c *Config) ExecutionSide() platform.Side {
	side, _ := platform.ParseSide(c.Side)
	return side
}

// CenterSize returns the configured size override, or nil.
func (c *Config) CenterSize() *platform.WindowSize {
	if c.Center.Width == 0 {
		return nil
	}
	return &platform.WindowSize{Width: c.Center.Width, Height: c.Center.Height}
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
