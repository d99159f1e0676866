package theme

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// GlobalPreferencesFile holds AppleInterfaceStyle on macOS.
const GlobalPreferencesFile = ".GlobalPreferences.plist"

// ReadFunc reports whether the system appearance is dark.
type ReadFunc func(ctx context.Context) (bool, error)

// ReadAppleInterfaceStyle asks `defaults` for the global AppleInterfaceStyle.
// The key is only present when dark mode is on.
func ReadAppleInterfaceStyle(ctx context.Context) (bool, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "defaults", "read", "-g", "AppleInterfaceStyle")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, fmt.Errorf("defaults read failed: %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(stdout.String()), "dark"), nil
}

// AppearanceOptions configures an AppearanceWatcher.
type AppearanceOptions struct {
	// PrefsDir defaults to ~/Library/Preferences.
	PrefsDir string
	// Read defaults to ReadAppleInterfaceStyle.
	Read   ReadFunc
	Logger *slog.Logger
}

// AppearanceWatcher feeds a Notifier from the macOS global preferences. It
// watches the preferences directory rather than the plist itself because
// cfprefsd replaces the file on every write.
type AppearanceWatcher struct {
	notifier *Notifier
	prefsDir string
	read     ReadFunc
	logger   *slog.Logger
}

// NewAppearanceWatcher creates a watcher that updates notifier.
func NewAppearanceWatcher(notifier *Notifier, opts AppearanceOptions) (*AppearanceWatcher, error) {
	if opts.PrefsDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		opts.PrefsDir = filepath.Join(home, "Library", "Preferences")
	}
	if opts.Read == nil {
		opts.Read = ReadAppleInterfaceStyle
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AppearanceWatcher{
		notifier: notifier,
		prefsDir: opts.PrefsDir,
		read:     opts.Read,
		logger:   opts.Logger,
	}, nil
}

// Refresh reads the current appearance into the notifier.
func (w *AppearanceWatcher) Refresh(ctx context.Context) error {
	dark, err := w.read(ctx)
	if err != nil {
		return err
	}
	w.notifier.SetDark(dark)
	return nil
}

// Run refreshes once, then on every change to the global preferences file,
// until ctx is cancelled.
func (w *AppearanceWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.prefsDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.prefsDir, err)
	}

	if err := w.Refresh(ctx); err != nil {
		w.logger.Warn("initial appearance read failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != GlobalPreferencesFile {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if err := w.Refresh(ctx); err != nil {
				w.logger.Warn("appearance read failed", "error", err)
				continue
			}
			w.logger.Debug("appearance refreshed", "dark", w.notifier.IsDark())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("preferences watcher error", "error", err)
		}
	}
}
