package geometry

import (
	"errors"
	"testing"
	"time"

	"github.com/1broseidon/deskutil/internal/platform"
)

type fakeBackend struct {
	active   platform.WindowID
	sizes    map[platform.WindowID]platform.WindowSize
	workArea platform.Rect
	displays []platform.Display

	activeErr error
	moveErr   error

	moved    []platform.Rect
	movedIDs []platform.WindowID
	animated []bool
}

func (f *fakeBackend) ActiveWindow() (platform.WindowID, error) {
	return f.active, f.activeErr
}

func (f *fakeBackend) WindowSize(id platform.WindowID) (platform.WindowSize, error) {
	size, ok := f.sizes[id]
	if !ok {
		return platform.WindowSize{}, errors.New("unknown window")
	}
	return size, nil
}

func (f *fakeBackend) WorkAreaNearestPointer() (platform.Rect, error) {
	return f.workArea, nil
}

func (f *fakeBackend) Displays() ([]platform.Display, error) {
	return f.displays, nil
}

func (f *fakeBackend) MoveResize(id platform.WindowID, bounds platform.Rect, animate bool) error {
	if f.moveErr != nil {
		return f.moveErr
	}
	f.movedIDs = append(f.movedIDs, id)
	f.moved = append(f.moved, bounds)
	f.animated = append(f.animated, animate)
	return nil
}

func TestCenteredRect(t *testing.T) {
	tests := []struct {
		name     string
		current  platform.WindowSize
		override *platform.WindowSize
		workArea platform.Rect
		want     platform.Rect
	}{
		{
			name:     "full hd origin",
			current:  platform.WindowSize{Width: 800, Height: 600},
			workArea: platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
			want:     platform.Rect{X: 560, Y: 240, Width: 800, Height: 600},
		},
		{
			name:     "override with offset work area",
			current:  platform.WindowSize{Width: 800, Height: 600},
			override: &platform.WindowSize{Width: 400, Height: 300},
			workArea: platform.Rect{X: 100, Y: 50, Width: 1920, Height: 1080},
			want:     platform.Rect{X: 860, Y: 415, Width: 400, Height: 300},
		},
		{
			name:     "odd sizes floor",
			current:  platform.WindowSize{Width: 301, Height: 201},
			workArea: platform.Rect{X: 0, Y: 25, Width: 1000, Height: 800},
			// x = 500 - 150.5 = 349.5; y = 412.5 - 100.5 = 312
			want: platform.Rect{X: 349, Y: 312, Width: 301, Height: 201},
		},
		{
			name:     "oversized window goes negative",
			current:  platform.WindowSize{Width: 3000, Height: 2000},
			workArea: platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
			want:     platform.Rect{X: -540, Y: -460, Width: 3000, Height: 2000},
		},
		{
			name:     "negative fraction floors down",
			current:  platform.WindowSize{Width: 3, Height: 3},
			workArea: platform.Rect{X: 0, Y: 0, Width: 2, Height: 2},
			// x = 1 - 1.5 = -0.5 -> -1
			want: platform.Rect{X: -1, Y: -1, Width: 3, Height: 3},
		},
		{
			name:     "degenerate",
			workArea: platform.Rect{},
			want:     platform.Rect{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CenteredRect(tt.current, tt.override, tt.workArea)
			if got != tt.want {
				t.Fatalf("CenteredRect() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCenterer_CenterUsesActiveWindow(t *testing.T) {
	backend := &fakeBackend{
		active:   7,
		sizes:    map[platform.WindowID]platform.WindowSize{7: {Width: 800, Height: 600}},
		workArea: platform.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
	}

	rect, err := NewCenterer(backend, nil).Center(Options{Animated: true})
	if err != nil {
		t.Fatalf("Center() error: %v", err)
	}

	want := platform.Rect{X: 560, Y: 240, Width: 800, Height: 600}
	if rect != want {
		t.Fatalf("Center() = %+v, want %+v", rect, want)
	}
	if len(backend.moved) != 1 || backend.moved[0] != want {
		t.Fatalf("moved = %+v, want one move to %+v", backend.moved, want)
	}
	if backend.movedIDs[0] != 7 || !backend.animated[0] {
		t.Fatalf("move target = %d animated = %v", backend.movedIDs[0], backend.animated[0])
	}
}

func TestCenterer_BoundsDoesNotMove(t *testing.T) {
	backend := &fakeBackend{
		sizes:    map[platform.WindowID]platform.WindowSize{3: {Width: 100, Height: 100}},
		workArea: platform.Rect{X: 0, Y: 0, Width: 1000, Height: 1000},
	}

	rect, err := NewCenterer(backend, nil).Bounds(Options{Window: 3})
	if err != nil {
		t.Fatalf("Bounds() error: %v", err)
	}
	if rect != (platform.Rect{X: 450, Y: 450, Width: 100, Height: 100}) {
		t.Fatalf("Bounds() = %+v", rect)
	}
	if len(backend.moved) != 0 {
		t.Fatalf("Bounds() moved the window")
	}
}

func TestCenterer_SizeOverrideSkipsSizeLookup(t *testing.T) {
	backend := &fakeBackend{
		active:   9,
		workArea: platform.Rect{X: 100, Y: 50, Width: 1920, Height: 1080},
	}

	rect, err := NewCenterer(backend, nil).Bounds(Options{Size: &platform.WindowSize{Width: 400, Height: 300}})
	if err != nil {
		t.Fatalf("Bounds() error: %v", err)
	}
	if rect != (platform.Rect{X: 860, Y: 415, Width: 400, Height: 300}) {
		t.Fatalf("Bounds() = %+v", rect)
	}
}

func TestCenterer_Errors(t *testing.T) {
	backend := &fakeBackend{activeErr: errors.New("no focus")}
	if _, err := NewCenterer(backend, nil).Center(Options{}); err == nil {
		t.Fatal("expected error when active window lookup fails")
	}

	backend = &fakeBackend{
		active:  1,
		sizes:   map[platform.WindowID]platform.WindowSize{1: {Width: 10, Height: 10}},
		moveErr: errors.New("denied"),
	}
	if _, err := NewCenterer(backend, nil).Center(Options{}); err == nil {
		t.Fatal("expected error when move fails")
	}
}

func TestMenuBarHeight(t *testing.T) {
	backend := &fakeBackend{
		displays: []platform.Display{
			{ID: 0, Usable: platform.Rect{X: 0, Y: 25, Width: 1440, Height: 875}},
			{ID: 1, Usable: platform.Rect{X: 1440, Y: 0, Width: 1920, Height: 1080}},
		},
	}
	now := time.Now()

	got, err := MenuBarHeight(platform.NewEnvFor("darwin", platform.SideController, now), backend)
	if err != nil || got != 25 {
		t.Fatalf("MenuBarHeight(macos) = %d, %v; want 25", got, err)
	}

	got, err = MenuBarHeight(platform.NewEnvFor("linux", platform.SideController, now), backend)
	if err != nil || got != 0 {
		t.Fatalf("MenuBarHeight(linux) = %d, %v; want 0", got, err)
	}
}
