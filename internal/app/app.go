// Package app holds host application state shared by the utilities: its
// name, per-user data directory, readiness signal and default session.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/1broseidon/deskutil/internal/session"
)

// App is the host application.
type App struct {
	name        string
	userDataDir string
	session     *session.Session

	readyOnce sync.Once
	ready     chan struct{}
}

// New creates an application. An empty userDataDir resolves to
// <os.UserConfigDir()>/<name>.
func New(name, userDataDir string) (*App, error) {
	if name == "" {
		return nil, fmt.Errorf("app name is required")
	}
	if userDataDir == "" {
		dir, err := DefaultUserDataDir(name)
		if err != nil {
			return nil, err
		}
		userDataDir = dir
	}
	return &App{
		name:        name,
		userDataDir: userDataDir,
		session:     session.New(),
		ready:       make(chan struct{}),
	}, nil
}

// DefaultUserDataDir returns the per-user data directory for name.
func DefaultUserDataDir(name string) (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config directory: %w", err)
	}
	return filepath.Join(base, name), nil
}

func (a *App) Name() string { return a.name }

// UserDataDir is the per-user data directory. It may not exist yet.
func (a *App) UserDataDir() string { return a.userDataDir }

// DefaultSession is the session used when callers do not name one.
func (a *App) DefaultSession() *session.Session { return a.session }

// MarkReady signals readiness. Later calls are no-ops.
func (a *App) MarkReady() {
	a.readyOnce.Do(func() { close(a.ready) })
}

// IsReady reports whether MarkReady has been called.
func (a *App) IsReady() bool {
	select {
	case <-a.ready:
		return true
	default:
		return false
	}
}

// WhenReady blocks until the app is ready or ctx is done.
func (a *App) WhenReady(ctx context.Context) error {
	select {
	case <-a.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
