package csp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/1broseidon/deskutil/internal/session"
)

type readyApp struct{ ch chan struct{} }

func newReadyApp(ready bool) *readyApp {
	a := &readyApp{ch: make(chan struct{})}
	if ready {
		close(a.ch)
	}
	return a
}

func (a *readyApp) WhenReady(ctx context.Context) error {
	select {
	case <-a.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type recordingSession struct {
	installs int
	listener session.HeadersListener
}

func (s *recordingSession) OnHeadersReceived(l session.HeadersListener) {
	s.installs++
	s.listener = l
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		policy   string
		wantLine int
	}{
		{"single line", "default-src 'self';", 0},
		{"multi line", "default-src 'self';\nscript-src 'self';", 0},
		{"blank and indented lines", "\n\tdefault-src 'self';  \n   \n\timg-src *;\n", 0},
		{"empty", "", 0},
		{"missing semicolon", "default-src 'self'", 1},
		{"second line bad", "default-src 'self';\nscript-src 'self'", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.policy)
			if tt.wantLine == 0 {
				if err != nil {
					t.Fatalf("Validate() error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *ValidationError", err)
			}
			if verr.Line != tt.wantLine {
				t.Fatalf("Line = %d, want %d", verr.Line, tt.wantLine)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("\n\tdefault-src 'self';\n\tscript-src 'self';\n")
	want := "default-src 'self';script-src 'self';"
	if got != want {
		t.Fatalf("Normalize() = %q, want %q", got, want)
	}
}

func TestInstaller_SetInstallsNormalizedHeader(t *testing.T) {
	sess := session.New()
	inst := NewInstaller(newReadyApp(true), sess, nil)

	if err := inst.Set(context.Background(), "default-src 'self';\nscript-src 'self';", Options{}); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	h := sess.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Add(HeaderName, "img-src *;")
		w.Write([]byte("hi"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	got := rec.Header().Values(HeaderName)
	if len(got) != 1 || got[0] != "default-src 'self';script-src 'self';" {
		t.Fatalf("%s = %v", HeaderName, got)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("other headers not preserved: %v", rec.Header())
	}
}

func TestInstaller_InvalidPolicyInstallsNothing(t *testing.T) {
	sess := &recordingSession{}
	inst := NewInstaller(newReadyApp(true), sess, nil)

	err := inst.Set(context.Background(), "default-src 'self'", Options{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Set() = %v, want *ValidationError", err)
	}
	if sess.installs != 0 {
		t.Fatalf("installs = %d, want 0", sess.installs)
	}
}

func TestInstaller_WaitsForReadiness(t *testing.T) {
	app := newReadyApp(false)
	sess := &recordingSession{}
	inst := NewInstaller(app, sess, nil)

	done := make(chan error, 1)
	go func() { done <- inst.Set(context.Background(), "default-src 'self';", Options{}) }()

	select {
	case err := <-done:
		t.Fatalf("Set() returned before ready: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(app.ch)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Set() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Set() did not return after ready")
	}
	if sess.installs != 1 {
		t.Fatalf("installs = %d, want 1", sess.installs)
	}
}

func TestInstaller_ContextCancelledBeforeReady(t *testing.T) {
	sess := &recordingSession{}
	inst := NewInstaller(newReadyApp(false), sess, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := inst.Set(ctx, "default-src 'self';", Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Set() = %v, want context.Canceled", err)
	}
	if sess.installs != 0 {
		t.Fatalf("installs = %d, want 0", sess.installs)
	}
}

func TestInstaller_ExplicitSessionAndLastWriterWins(t *testing.T) {
	def := &recordingSession{}
	other := &recordingSession{}
	inst := NewInstaller(newReadyApp(true), def, nil)

	ctx := context.Background()
	if err := inst.Set(ctx, "default-src 'self';", Options{Session: other}); err != nil {
		t.Fatal(err)
	}
	if err := inst.Set(ctx, "default-src 'none';", Options{Session: other}); err != nil {
		t.Fatal(err)
	}
	if def.installs != 0 || other.installs != 2 {
		t.Fatalf("installs default=%d other=%d", def.installs, other.installs)
	}

	out := other.listener(session.Details{Headers: http.Header{"X-A": {"1"}}})
	if got := out.Get(HeaderName); got != "default-src 'none';" {
		t.Fatalf("%s = %q", HeaderName, got)
	}
	if out.Get("X-A") != "1" {
		t.Fatalf("existing header dropped: %v", out)
	}
}
