package x11

import (
	"io"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil  *xgbutil.XUtil
	Root   xproto.Window
	logger *slog.Logger
}

// NewConnection connects to the X server named by $DISPLAY. A nil logger
// discards output.
func NewConnection(logger *slog.Logger) (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	return &Connection{
		XUtil:  xu,
		Root:   xu.RootWin(),
		logger: logger,
	}, nil
}

func (c *Connection) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.logger
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
