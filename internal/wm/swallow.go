package wm

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"

	"github.com/loannaflip/dynamd/internal/proc"
)

// termForWin finds the terminal that spawned c's process: a managed
// terminal client, not already swallowing, whose pid is an ancestor of
// c's. Terminals never swallow each other.
func (wm *WM) termForWin(c *Client) *Client {
	if c.pid == 0 || c.isterminal {
		return nil
	}
	for _, m := range wm.mons {
		for _, t := range m.clients {
			if t.isterminal && t.swallowed == nil && t.pid != 0 &&
				proc.IsDescendant(t.pid, c.pid) {
				return t
			}
		}
	}
	return nil
}

// swallow hides the terminal p behind c: c leaves the client registry,
// p keeps its list position and shows c's window as its surface until
// that window goes away.
func (wm *WM) swallow(p, c *Client) {
	if c.noswallow || c.isterminal {
		return
	}
	c.mon.detach(c)
	c.mon.detachstack(c)
	wm.setClientState(c, icccm.StateWithdrawn)
	xproto.UnmapWindow(wm.conn, p.win)
	p.swallowed = c
	c.mon = p.mon
	wm.updateTitle(p)
	wm.moveResizeWin(p, p.x, p.y, p.w, p.h)
	wm.arrange(p.mon)
	wm.configure(p)
	wm.updateClientList()
	wm.log.Debug("swallow", "terminal", p.win, "win", c.win)
}

// unswallow brings the terminal's own window back after its swallowed
// surface went away.
func (wm *WM) unswallow(c *Client) {
	wm.log.Debug("unswallow", "terminal", c.win, "win", c.swallowed.win)
	c.swallowed = nil
	wm.setFullscreen(c, false)
	wm.updateTitle(c)
	wm.arrange(c.mon)
	xproto.MapWindow(wm.conn, c.win)
	wm.moveResizeWin(c, c.x, c.y, c.w, c.h)
	wm.setClientState(c, icccm.StateNormal)
	wm.focus(nil)
	wm.arrange(c.mon)
}

// winPID reads _NET_WM_PID. Zero means unknown, which disables
// swallowing for the client.
func (wm *WM) winPID(w xproto.Window) int {
	pid, err := ewmh.WmPidGet(wm.X, w)
	if err != nil {
		return 0
	}
	return int(pid)
}
