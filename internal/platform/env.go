package platform

import (
	"fmt"
	"runtime"
	"time"
)

// Side identifies which half of the host the process is: the controller owns
// native window access, views reach it through the controller.
type Side int

const (
	SideController Side = iota
	SideView
)

func (s Side) String() string {
	switch s {
	case SideController:
		return "controller"
	case SideView:
		return "view"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// ParseSide parses "controller" or "view".
func ParseSide(s string) (Side, error) {
	switch s {
	case "controller", "":
		return SideController, nil
	case "view":
		return SideView, nil
	default:
		return 0, fmt.Errorf("unknown side %q (want controller or view)", s)
	}
}

// Env holds process-wide facts computed once at startup. It is passed to
// component constructors and never mutated.
type Env struct {
	rawOS      string
	tag        Tag
	side       Side
	launchedAt time.Time
}

// NewEnv builds the environment for the running process.
func NewEnv(side Side) Env {
	return NewEnvFor(runtime.GOOS, side, time.Now())
}

// NewEnvFor builds an environment from explicit facts.
func NewEnvFor(rawOS string, side Side, launchedAt time.Time) Env {
	return Env{
		rawOS:      rawOS,
		tag:        Classify(rawOS),
		side:       side,
		launchedAt: launchedAt,
	}
}

func (e Env) RawOS() string { return e.rawOS }

func (e Env) Platform() Tag { return e.tag }

func (e Env) Side() Side { return e.side }

// LaunchedAt is the process launch timestamp.
func (e Env) LaunchedAt() time.Time { return e.launchedAt }

func (e Env) IsMacOS() bool { return e.tag == MacOS }

func (e Env) IsController() bool { return e.side == SideController }
