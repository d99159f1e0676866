package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_DefaultUserDataDir(t *testing.T) {
	cfg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfg)
	t.Setenv("HOME", t.TempDir())

	a, err := New("demo", "")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	want, err := DefaultUserDataDir("demo")
	if err != nil {
		t.Fatal(err)
	}
	if a.UserDataDir() != want || filepath.Base(want) != "demo" {
		t.Fatalf("UserDataDir() = %q, want %q", a.UserDataDir(), want)
	}
}

func TestNew_RequiresName(t *testing.T) {
	if _, err := New("", "/tmp/x"); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestWhenReady(t *testing.T) {
	a, err := New("demo", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if a.IsReady() {
		t.Fatal("IsReady() = true before MarkReady")
	}

	done := make(chan error, 1)
	go func() { done <- a.WhenReady(context.Background()) }()

	a.MarkReady()
	a.MarkReady()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WhenReady() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WhenReady() did not return after MarkReady")
	}

	// Already ready: returns immediately.
	if err := a.WhenReady(context.Background()); err != nil {
		t.Fatalf("WhenReady() after ready error: %v", err)
	}
}

func TestWhenReady_ContextCancelled(t *testing.T) {
	a, err := New("demo", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := a.WhenReady(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("WhenReady() = %v, want deadline exceeded", err)
	}
}
