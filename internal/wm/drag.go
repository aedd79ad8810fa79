package wm

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/loannaflip/dynamd/internal/layout"
)

const mouseMask = xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion

// dragThrottle drops motion events closer together than one 60Hz frame.
const dragThrottle = 1000 / 60

func (wm *WM) grabPointer(cursor string) bool {
	reply, err := xproto.GrabPointer(wm.conn, false, wm.root, mouseMask,
		xproto.GrabModeAsync, xproto.GrabModeAsync, xproto.WindowNone,
		wm.cursors[cursor], xproto.TimeCurrentTime).Reply()
	return err == nil && reply.Status == xproto.GrabStatusSuccess
}

// moveMouse drags the selected client until the button is released,
// snapping to the monitor edges and unfloating tiled clients once they
// move far enough. Fullscreen clients stay put.
func (wm *WM) moveMouse() {
	c := wm.selmon.sel
	if c == nil || c.isfullscreen {
		return
	}
	wm.restack(wm.selmon)
	ocx, ocy := c.x, c.y
	if !wm.grabPointer("move") {
		return
	}
	px, py, ok := wm.rootPointer()
	if !ok {
		xproto.UngrabPointer(wm.conn, xproto.TimeCurrentTime)
		return
	}
	snap := wm.cfg.Snapdist
	var lasttime xproto.Timestamp
drag:
	for {
		ev, xerr := wm.conn.WaitForEvent()
		if xerr != nil {
			wm.xerror(xerr)
			continue
		}
		if ev == nil {
			break
		}
		switch e := ev.(type) {
		case xproto.ButtonReleaseEvent:
			break drag
		case xproto.ButtonPressEvent:
			// held by the grab, nothing to do
		case xproto.ConfigureRequestEvent:
			wm.configureRequest(e)
		case xproto.ExposeEvent:
			wm.expose(e)
		case xproto.MapRequestEvent:
			wm.mapRequest(e)
		case xproto.MotionNotifyEvent:
			if e.Time-lasttime <= dragThrottle {
				continue
			}
			lasttime = e.Time
			m := wm.selmon
			nx := ocx + int(e.RootX) - px
			ny := ocy + int(e.RootY) - py
			if abs(m.wx-nx) < snap {
				nx = m.wx
			} else if abs(m.wx+m.ww-(nx+c.width())) < snap {
				nx = m.wx + m.ww - c.width()
			}
			if abs(m.wy-ny) < snap {
				ny = m.wy
			} else if abs(m.wy+m.wh-(ny+c.height())) < snap {
				ny = m.wy + m.wh - c.height()
			}
			if !c.isfloating && m.lt[m.sellt] != layout.Floating &&
				(abs(nx-c.x) > snap || abs(ny-c.y) > snap) {
				wm.toggleFloating()
			}
			if m.lt[m.sellt] == layout.Floating || c.isfloating {
				wm.resize(c, nx, ny, c.w, c.h, true)
			}
		default:
			wm.pending = append(wm.pending, ev)
		}
	}
	xproto.UngrabPointer(wm.conn, xproto.TimeCurrentTime)
	if m := wm.recttomon(c.x, c.y, c.w, c.h); m != wm.selmon {
		wm.sendMon(c, m)
		wm.selmon = m
		wm.focus(nil)
	}
}

// resizeMouse drags the selected client's bottom-right corner. The
// pointer is warped onto the corner for the duration of the drag.
func (wm *WM) resizeMouse() {
	c := wm.selmon.sel
	if c == nil || c.isfullscreen {
		return
	}
	wm.restack(wm.selmon)
	ocx, ocy := c.x, c.y
	if !wm.grabPointer("resize") {
		return
	}
	wm.warpToCorner(c)
	snap := wm.cfg.Snapdist
	var lasttime xproto.Timestamp
drag:
	for {
		ev, xerr := wm.conn.WaitForEvent()
		if xerr != nil {
			wm.xerror(xerr)
			continue
		}
		if ev == nil {
			break
		}
		switch e := ev.(type) {
		case xproto.ButtonReleaseEvent:
			break drag
		case xproto.ButtonPressEvent:
		case xproto.ConfigureRequestEvent:
			wm.configureRequest(e)
		case xproto.ExposeEvent:
			wm.expose(e)
		case xproto.MapRequestEvent:
			wm.mapRequest(e)
		case xproto.MotionNotifyEvent:
			if e.Time-lasttime <= dragThrottle {
				continue
			}
			lasttime = e.Time
			m := wm.selmon
			nw := max(int(e.RootX)-ocx-2*c.bw+1, 1)
			nh := max(int(e.RootY)-ocy-2*c.bw+1, 1)
			if c.mon.wx+nw >= m.wx && c.mon.wx+nw <= m.wx+m.ww &&
				c.mon.wy+nh >= m.wy && c.mon.wy+nh <= m.wy+m.wh {
				if !c.isfloating && m.lt[m.sellt] != layout.Floating &&
					(abs(nw-c.w) > snap || abs(nh-c.h) > snap) {
					wm.toggleFloating()
				}
			}
			if m.lt[m.sellt] == layout.Floating || c.isfloating {
				wm.resize(c, c.x, c.y, nw, nh, true)
			}
		default:
			wm.pending = append(wm.pending, ev)
		}
	}
	wm.warpToCorner(c)
	xproto.UngrabPointer(wm.conn, xproto.TimeCurrentTime)
	wm.drainEnters()
	if m := wm.recttomon(c.x, c.y, c.w, c.h); m != wm.selmon {
		wm.sendMon(c, m)
		wm.selmon = m
		wm.focus(nil)
	}
}

func (wm *WM) warpToCorner(c *Client) {
	xproto.WarpPointer(wm.conn, xproto.WindowNone, c.surface(), 0, 0, 0, 0,
		int16(c.w+c.bw-1), int16(c.h+c.bw-1))
}
