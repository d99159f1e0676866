package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID      int
	Name    string
	Primary bool
	X       int
	Y       int
	Width   int
	Height  int
}

// GetMonitors retrieves all active monitors using XRandR. The primary
// output, when the server reports one, is listed first.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primaryOutput randr.Output
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primaryOutput = reply.Output
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		primary := false
		for _, out := range crtcInfo.Outputs {
			if primaryOutput != 0 && out == primaryOutput {
				primary = true
			}
		}

		mon := Monitor{
			ID:      i,
			Name:    outputName,
			Primary: primary,
			X:       int(crtcInfo.X),
			Y:       int(crtcInfo.Y),
			Width:   int(crtcInfo.Width),
			Height:  int(crtcInfo.Height),
		}
		if primary {
			monitors = append([]Monitor{mon}, monitors...)
		} else {
			monitors = append(monitors, mon)
		}
	}

	return monitors, nil
}

// WorkArea returns the monitor's geometry reduced by dock struts or, when no
// dock reserves space, by the EWMH work area of the current desktop.
func (c *Connection) WorkArea(monitor Monitor) Monitor {
	area := monitor
	if applyDockStruts(c, &area) {
		return area
	}

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return area
	}

	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		if int(currentDesktop) >= 0 && int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}
	wa := workArea[desktopIndex]

	// Only adjust if work area intersects with our monitor
	x1 := max(area.X, int(wa.X))
	y1 := max(area.Y, int(wa.Y))
	x2 := min(area.X+area.Width, int(wa.X)+int(wa.Width))
	y2 := min(area.Y+area.Height, int(wa.Y)+int(wa.Height))
	if x2 > x1 && y2 > y1 {
		area.X = x1
		area.Y = y1
		area.Width = x2 - x1
		area.Height = y2 - y1
	}
	return area
}

// MonitorNearestPointer returns the monitor under the pointer, or the one
// whose edge is closest when the pointer sits in a gap between monitors.
func (c *Connection) MonitorNearestPointer() (*Monitor, error) {
	monitors, err := c.GetMonitors()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, fmt.Errorf("no monitors found")
	}

	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query pointer: %w", err)
	}

	return nearestMonitor(monitors, int(pointer.RootX), int(pointer.RootY)), nil
}

func nearestMonitor(monitors []Monitor, x, y int) *Monitor {
	best := &monitors[0]
	bestDist := -1
	for i := range monitors {
		mon := &monitors[i]
		dx := axisDistance(x, mon.X, mon.X+mon.Width)
		dy := axisDistance(y, mon.Y, mon.Y+mon.Height)
		dist := dx*dx + dy*dy
		if bestDist < 0 || dist < bestDist {
			best = mon
			bestDist = dist
		}
	}
	return best
}

// axisDistance is 0 when v is inside [lo, hi).
func axisDistance(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo - v
	case v >= hi:
		return v - hi + 1
	default:
		return 0
	}
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

func applyDockStruts(c *Connection, monitor *Monitor) bool {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return false
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return false
	}

	var struts dockStruts
	for _, windowID := range clients {
		if !isDock(c, windowID) {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			updateStrutsForMonitor(monitor, rootWidth, rootHeight, sp, &struts)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			sp := &ewmh.WmStrutPartial{
				Left:       s.Left,
				Right:      s.Right,
				Top:        s.Top,
				Bottom:     s.Bottom,
				LeftEndY:   uint(rootHeight - 1),
				RightEndY:  uint(rootHeight - 1),
				TopEndX:    uint(rootWidth - 1),
				BottomEndX: uint(rootWidth - 1),
			}
			updateStrutsForMonitor(monitor, rootWidth, rootHeight, sp, &struts)
		}
	}

	if struts == (dockStruts{}) {
		return false
	}

	monitor.X += struts.left
	monitor.Y += struts.top
	monitor.Width -= struts.left + struts.right
	monitor.Height -= struts.top + struts.bottom
	monitor.Width = max(monitor.Width, 1)
	monitor.Height = max(monitor.Height, 1)

	return true
}

func isDock(c *Connection, windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

func updateStrutsForMonitor(monitor *Monitor, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	mon := box{monitor.X, monitor.Y, monitor.X + monitor.Width, monitor.Y + monitor.Height}

	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		strut := box{int(sp.TopStartX), 0, int(sp.TopEndX) + 1, int(sp.Top)}
		acc.top = max(acc.top, mon.intersect(strut).h)
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		strut := box{int(sp.BottomStartX), rootHeight - int(sp.Bottom), int(sp.BottomEndX) + 1, rootHeight}
		acc.bottom = max(acc.bottom, mon.intersect(strut).h)
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		strut := box{0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY) + 1}
		acc.left = max(acc.left, mon.intersect(strut).w)
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		strut := box{rootWidth - int(sp.Right), int(sp.RightStartY), rootWidth, int(sp.RightEndY) + 1}
		acc.right = max(acc.right, mon.intersect(strut).w)
	}
}

// box is a half-open rectangle [x1,x2) x [y1,y2).
type box struct {
	x1, y1, x2, y2 int
}

type extent struct {
	w int
	h int
}

func (a box) intersect(b box) extent {
	x1 := max(a.x1, b.x1)
	y1 := max(a.y1, b.y1)
	x2 := min(a.x2, b.x2)
	y2 := min(a.y2, b.y2)

	if x2 <= x1 || y2 <= y1 {
		return extent{}
	}
	return extent{w: x2 - x1, h: y2 - y1}
}
