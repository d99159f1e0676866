package csp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/1broseidon/deskutil/internal/session"
)

// Readiness is the host application's one-shot ready signal.
type Readiness interface {
	WhenReady(ctx context.Context) error
}

// Session is the host's response-header interception point.
type Session interface {
	OnHeadersReceived(listener session.HeadersListener)
}

// Options selects where a policy is installed.
type Options struct {
	// Session defaults to the installer's default session.
	Session Session
}

// Installer installs policies once the host is ready.
type Installer struct {
	app            Readiness
	defaultSession Session
	logger         *slog.Logger
}

// NewInstaller creates an installer. A nil logger discards output.
func NewInstaller(app Readiness, defaultSession Session, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Installer{app: app, defaultSession: defaultSession, logger: logger}
}

// Set waits for the host to be ready, validates policy and installs it as
// the Content-Security-Policy of every later response on the session. A
// second call replaces the first. Invalid policies install nothing.
func (i *Installer) Set(ctx context.Context, policy string, opts Options) error {
	if err := i.app.WhenReady(ctx); err != nil {
		return fmt.Errorf("waiting for app readiness: %w", err)
	}

	if err := Validate(policy); err != nil {
		return err
	}
	normalized := Normalize(policy)

	target := opts.Session
	if target == nil {
		target = i.defaultSession
	}
	if target == nil {
		return fmt.Errorf("no session to install the policy on")
	}

	target.OnHeadersReceived(func(d session.Details) http.Header {
		headers := d.Headers
		if headers == nil {
			headers = http.Header{}
		}
		headers[HeaderName] = []string{normalized}
		return headers
	})

	i.logger.Info("content security policy installed", "policy", normalized)
	return nil
}
