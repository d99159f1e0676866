package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/deskutil/internal/csp"
	"github.com/1broseidon/deskutil/internal/platform"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.File != "" {
		t.Fatalf("File = %q, want empty", res.File)
	}
	if res.Config.AppName != "deskutil" || res.Config.ExecutionSide() != platform.SideController {
		t.Fatalf("unexpected defaults: %+v", res.Config)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Serve.Addr != "127.0.0.1:8080" {
		t.Fatalf("serve.addr = %q", res.Config.Serve.Addr)
	}
}

func TestLoadFromPath_OverridesDefaults(t *testing.T) {
	data := strings.Join([]string{
		"app_name: notes",
		"side: view",
		"log_level: debug",
		"content_security_policy: |",
		"  default-src 'self';",
		"  img-src *;",
		"center:",
		"  animated: true",
		"  width: 400",
		"  height: 300",
		"",
	}, "\n")

	res, err := LoadFromPath(writeConfig(t, data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.AppName != "notes" || cfg.ExecutionSide() != platform.SideView {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.SlogLevel().String() != "DEBUG" {
		t.Fatalf("SlogLevel() = %v", cfg.SlogLevel())
	}
	if got := csp.Normalize(cfg.ContentSecurityPolicy); got != "default-src 'self';img-src *;" {
		t.Fatalf("policy = %q", got)
	}
	size := cfg.CenterSize()
	if size == nil || size.Width != 400 || size.Height != 300 || !cfg.Center.Animated {
		t.Fatalf("center = %+v", cfg.Center)
	}
	// Untouched keys keep their defaults.
	if cfg.Serve.Root != "." {
		t.Fatalf("serve.root = %q", cfg.Serve.Root)
	}
}

func TestLoadFromPath_UnknownKeyRejected(t *testing.T) {
	if _, err := LoadFromPath(writeConfig(t, "hotkey: Mod4-t\n")); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadFromPath_ValidationErrorHasPosition(t *testing.T) {
	path := writeConfig(t, "app_name: notes\nside: renderer\n")

	_, err := LoadFromPath(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Path != "side" || verr.Source.Line != 2 {
		t.Fatalf("unexpected error context: %+v", verr)
	}
	if !strings.Contains(err.Error(), path+":2:") {
		t.Fatalf("error %q missing file position", err.Error())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"empty app name", func(c *Config) { c.AppName = " " }, "app_name"},
		{"app name with slash", func(c *Config) { c.AppName = "a/b" }, "app_name"},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "log_level"},
		{"bad policy", func(c *Config) { c.ContentSecurityPolicy = "default-src 'self'" }, "content_security_policy"},
		{"negative size", func(c *Config) { c.Center.Width, c.Center.Height = -1, 10 }, "center"},
		{"half size", func(c *Config) { c.Center.Width = 10 }, "center"},
		{"no serve addr", func(c *Config) { c.Serve.Addr = "" }, "serve.addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			var verr *ValidationError
			if err := cfg.Validate(); !errors.As(err, &verr) || verr.Path != tt.path {
				t.Fatalf("Validate() = %v, want ValidationError at %q", err, tt.path)
			}
		})
	}
}

func TestValidate_PolicyErrorUnwraps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ContentSecurityPolicy = "default-src 'self'"

	var perr *csp.ValidationError
	if err := cfg.Validate(); !errors.As(err, &perr) {
		t.Fatalf("expected csp.ValidationError in chain, got %v", err)
	}
}
