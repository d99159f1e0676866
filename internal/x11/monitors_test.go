package x11

import (
	"testing"

	"github.com/BurntSushi/xgbutil/ewmh"
)

func TestNearestMonitor(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, X: 0, Y: 0, Width: 1920, Height: 1080},
		{ID: 1, X: 2000, Y: 0, Width: 1280, Height: 1024},
	}

	tests := []struct {
		name string
		x, y int
		want int
	}{
		{"inside first", 100, 100, 0},
		{"inside second", 2500, 500, 1},
		{"gap closer to first", 1930, 10, 0},
		{"gap closer to second", 1990, 10, 1},
		{"just below second", 2100, 1100, 1},
		{"right edge is exclusive", 1920, 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nearestMonitor(monitors, tt.x, tt.y)
			if got.ID != tt.want {
				t.Fatalf("nearestMonitor(%d,%d) = %d, want %d", tt.x, tt.y, got.ID, tt.want)
			}
		})
	}
}

func TestBoxIntersect(t *testing.T) {
	mon := box{0, 0, 1920, 1080}

	panel := box{0, 0, 1920, 32}
	if got := mon.intersect(panel); got.w != 1920 || got.h != 32 {
		t.Fatalf("panel intersect = %+v, want 1920x32", got)
	}

	elsewhere := box{1920, 0, 3840, 32}
	if got := mon.intersect(elsewhere); got != (extent{}) {
		t.Fatalf("disjoint intersect = %+v, want zero", got)
	}
}

func TestUpdateStrutsForMonitor_OnlyCountsOverlappingStruts(t *testing.T) {
	// Two side-by-side monitors on a 3840x1080 root; a top panel spans only
	// the left one.
	left := &Monitor{X: 0, Y: 0, Width: 1920, Height: 1080}
	right := &Monitor{X: 1920, Y: 0, Width: 1920, Height: 1080}

	var leftAcc, rightAcc dockStruts
	sp := strutTop(30, 0, 1919)
	updateStrutsForMonitor(left, 3840, 1080, sp, &leftAcc)
	updateStrutsForMonitor(right, 3840, 1080, sp, &rightAcc)

	if leftAcc.top != 30 {
		t.Fatalf("left top strut = %d, want 30", leftAcc.top)
	}
	if rightAcc != (dockStruts{}) {
		t.Fatalf("right struts = %+v, want none", rightAcc)
	}
}

func strutTop(height, startX, endX int) *ewmh.WmStrutPartial {
	return &ewmh.WmStrutPartial{
		Top:       uint(height),
		TopStartX: uint(startX),
		TopEndX:   uint(endX),
	}
}
