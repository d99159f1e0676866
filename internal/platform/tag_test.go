package platform

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want Tag
	}{
		{"darwin", MacOS},
		{"win32", Windows},
		{"windows", Windows},
		{"linux", Linux},
		{"android", Linux},
		{"freebsd", Other},
		{"openbsd", Other},
		{"aix", Other},
		{"", Other},
	}
	for _, tt := range tests {
		got := Classify(tt.raw)
		if got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.raw, got, tt.want)
		}
		if again := Classify(tt.raw); again != got {
			t.Errorf("Classify(%q) not stable: %q then %q", tt.raw, got, again)
		}
	}
}

func TestSelect(t *testing.T) {
	entries := map[Tag]string{MacOS: "a"}

	if got := Select(Linux, entries, "b"); got != "b" {
		t.Errorf("Select(linux) = %q, want b", got)
	}
	if got := Select(MacOS, entries, "b"); got != "a" {
		t.Errorf("Select(macos) = %q, want a", got)
	}
}

func TestSelectFunc(t *testing.T) {
	calls := 0
	entries := map[Tag]func() int{
		Windows: func() int { calls++; return 1 },
	}
	def := func() int { return 2 }

	if got := SelectFunc(Windows, entries, def); got != 1 {
		t.Fatalf("SelectFunc(windows) = %d, want 1", got)
	}
	if calls != 1 {
		t.Fatalf("producer called %d times, want 1", calls)
	}
	if got := SelectFunc(Linux, entries, def); got != 2 {
		t.Fatalf("SelectFunc(linux) = %d, want 2", got)
	}
	if got := SelectFunc(Linux, entries, nil); got != 0 {
		t.Fatalf("SelectFunc without default = %d, want zero value", got)
	}
}

func TestNewEnvFor(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	env := NewEnvFor("darwin", SideView, at)

	if env.Platform() != MacOS || !env.IsMacOS() {
		t.Fatalf("Platform() = %q, want macos", env.Platform())
	}
	if env.Side() != SideView || env.IsController() {
		t.Fatalf("Side() = %v, want view", env.Side())
	}
	if !env.LaunchedAt().Equal(at) {
		t.Fatalf("LaunchedAt() = %v, want %v", env.LaunchedAt(), at)
	}
	if env.RawOS() != "darwin" {
		t.Fatalf("RawOS() = %q", env.RawOS())
	}
}

func TestParseSide(t *testing.T) {
	tests := []struct {
		in      string
		want    Side
		wantErr bool
	}{
		{"controller", SideController, false},
		{"", SideController, false},
		{"view", SideView, false},
		{"renderer", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseSide(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseSide(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Fatalf("ParseSide(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
