package wm

import (
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/loannaflip/dynamd/internal/layout"
)

// manage starts managing a window: rules, size hints, placement on its
// monitor and, for children of terminals, swallowing.
func (wm *WM) manage(w xproto.Window) {
	geo, err := xproto.GetGeometry(wm.conn, xproto.Drawable(w)).Reply()
	if err != nil {
		should(err)
		return
	}
	c := &Client{win: w, pid: wm.winPID(w)}
	c.x, c.oldx = int(geo.X), int(geo.X)
	c.y, c.oldy = int(geo.Y), int(geo.Y)
	c.w, c.oldw = int(geo.Width), int(geo.Width)
	c.h, c.oldh = int(geo.Height), int(geo.Height)
	c.oldbw = int(geo.BorderWidth)

	wm.updateTitle(c)
	wm.log.Debug("manage", "win", w, "name", c.name, "pid", c.pid)

	var term *Client
	trans, transErr := icccm.WmTransientForGet(wm.X, w)
	if t := wm.wintoclient(trans); transErr == nil && t != nil {
		c.mon = t.mon
		c.tags = t.tags
	} else {
		c.mon = wm.selmon
		wm.applyRules(c)
		term = wm.termForWin(c)
	}

	if c.x+c.width() > c.mon.mx+c.mon.mw {
		c.x = c.mon.mx + c.mon.mw - c.width()
	}
	if c.y+c.height() > c.mon.my+c.mon.mh {
		c.y = c.mon.my + c.mon.mh - c.height()
	}
	c.x = max(c.x, c.mon.mx)
	if c.mon.by == c.mon.my && c.x+c.w/2 >= c.mon.wx && c.x+c.w/2 < c.mon.wx+c.mon.ww {
		// keep the window from covering a top bar
		c.y = max(c.y, wm.bh)
	} else {
		c.y = max(c.y, c.mon.my)
	}
	c.bw = wm.cfg.BorderWidth

	xproto.ConfigureWindow(wm.conn, w, xproto.ConfigWindowBorderWidth, []uint32{uint32(c.bw)})
	wm.setBorder(c, wm.scheme.norm.border)
	wm.configure(c)
	wm.updateWindowType(c)
	wm.updateSizeHints(c)
	wm.updateWMHints(c)

	c.x = c.mon.mx + (c.mon.mw-c.width())/2
	c.y = c.mon.my + (c.mon.mh-c.height())/2

	xproto.ChangeWindowAttributes(wm.conn, w, xproto.CwEventMask, []uint32{
		xproto.EventMaskEnterWindow | xproto.EventMaskFocusChange |
			xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify})
	wm.grabButtons(c, false)
	if !c.isfloating {
		c.isfloating = transErr == nil && trans != 0 || c.isfixed
		c.oldstate = c.isfloating
	}
	if c.isfloating {
		wm.raise(c)
	}
	c.mon.attach(c)
	c.mon.attachstack(c)
	wm.updateClientList()
	// park it offscreen until arrange has decided where it goes
	xproto.ConfigureWindow(wm.conn, w,
		xproto.ConfigWindowX|xproto.ConfigWindowY|
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(int32(c.x + 2*wm.sw)), uint32(int32(c.y)), uint32(c.w), uint32(c.h)})
	wm.setClientState(c, icccm.StateNormal)
	if c.mon == wm.selmon {
		wm.unfocus(wm.selmon.sel, false)
	}
	c.mon.sel = c
	wm.arrange(c.mon)
	xproto.MapWindow(wm.conn, w)
	if term != nil {
		wm.swallow(term, c)
	}
	wm.focus(nil)
}

// unmanage forgets a client. When its window still exists the
// pre-management state is restored; errors from a half-destroyed window
// are expected and dropped.
func (wm *WM) unmanage(c *Client, destroyed bool) {
	if c.swallowed != nil {
		wm.unswallow(c)
		return
	}
	m := c.mon
	m.detach(c)
	m.detachstack(c)
	if !destroyed {
		xproto.GrabServer(wm.conn)
		_ = xproto.ConfigureWindowChecked(wm.conn, c.win,
			xproto.ConfigWindowBorderWidth, []uint32{uint32(c.oldbw)}).Check()
		_ = xproto.UngrabButtonChecked(wm.conn, xproto.ButtonIndexAny, c.win,
			xproto.ModMaskAny).Check()
		wm.setClientState(c, icccm.StateWithdrawn)
		xproto.UngrabServer(wm.conn)
	}
	wm.log.Debug("unmanage", "win", c.win, "name", c.name, "destroyed", destroyed)
	wm.arrange(m)
	wm.focus(nil)
	wm.updateClientList()
}

// applyRules seeds tags, floating state and swallowing behavior from
// the rc rules. Every matching rule applies, in order.
func (wm *WM) applyRules(c *Client) {
	c.isfloating = false
	c.tags = 0
	class, instance := broken, broken
	if hints, err := icccm.WmClassGet(wm.X, c.win); err == nil {
		class, instance = hints.Class, hints.Instance
	}
	for _, r := range wm.cfg.Rules {
		if r.Title != "" && !strings.Contains(c.name, r.Title) {
			continue
		}
		if r.Class != "" && !strings.Contains(class, r.Class) {
			continue
		}
		if r.Instance != "" && !strings.Contains(instance, r.Instance) {
			continue
		}
		c.isterminal = r.IsTerminal
		c.noswallow = r.NoSwallow
		c.isfloating = r.IsFloating
		c.tags |= r.Tags
		for _, m := range wm.mons {
			if m.num == r.Monitor {
				c.mon = m
				break
			}
		}
	}
	if c.tags&wm.tagmask != 0 {
		c.tags &= wm.tagmask
	} else {
		c.tags = c.mon.tagset[c.mon.seltags]
	}
}

func (wm *WM) resize(c *Client, x, y, w, h int, interact bool) {
	if wm.applySizeHints(c, &x, &y, &w, &h, interact) {
		wm.resizeClient(c, x, y, w, h)
	}
}

// applySizeHints clamps the proposed geometry to screen or monitor
// bounds and, for floating clients, to the window's WM_NORMAL_HINTS.
// It reports whether the result differs from the current geometry.
func (wm *WM) applySizeHints(c *Client, x, y, w, h *int, interact bool) bool {
	*w = max(1, *w)
	*h = max(1, *h)
	if interact {
		if *x > wm.sw {
			*x = wm.sw - c.width()
		}
		if *y > wm.sh {
			*y = wm.sh - c.height()
		}
		if *x+*w+2*c.bw < 0 {
			*x = 0
		}
		if *y+*h+2*c.bw < 0 {
			*y = 0
		}
	} else {
		m := c.mon
		if *x >= m.wx+m.ww {
			*x = m.wx + m.ww - c.width()
		}
		if *y >= m.wy+m.wh {
			*y = m.wy + m.wh - c.height()
		}
		if *x+*w+2*c.bw <= m.wx {
			*x = m.wx
		}
		if *y+*h+2*c.bw <= m.wy {
			*y = m.wy
		}
	}
	if *h < wm.bh {
		*h = wm.bh
	}
	if *w < wm.bh {
		*w = wm.bh
	}
	if c.isfloating || c.mon.lt[c.mon.sellt] == layout.Floating {
		baseismin := c.basew == c.minw && c.baseh == c.minh
		if !baseismin {
			// temporarily remove base dimensions
			*w -= c.basew
			*h -= c.baseh
		}
		if c.mina > 0 || c.maxa > 0 {
			if c.maxa < float64(*w)/float64(*h) {
				*w = int(float64(*h)*c.maxa + 0.5)
			} else if c.mina < float64(*h)/float64(*w) {
				*h = int(float64(*w)*c.mina + 0.5)
			}
		}
		if baseismin {
			// increment calculation requires this
			*w -= c.basew
			*h -= c.baseh
		}
		if c.incw > 0 {
			*w -= *w % c.incw
		}
		if c.inch > 0 {
			*h -= *h % c.inch
		}
		*w = max(*w+c.basew, c.minw)
		*h = max(*h+c.baseh, c.minh)
		if c.maxw > 0 {
			*w = min(*w, c.maxw)
		}
		if c.maxh > 0 {
			*h = min(*h, c.maxh)
		}
	}
	return *x != c.x || *y != c.y || *w != c.w || *h != c.h
}

// resizeClient applies geometry, absorbing the border into the window
// when it is alone in the tiled area or a monocle layout is active.
func (wm *WM) resizeClient(c *Client, x, y, w, h int) {
	c.oldx, c.x = c.x, x
	c.oldy, c.y = c.y, y
	c.oldw, c.w = c.w, w
	c.oldh, c.h = c.h, h
	bw := c.bw
	tiled := c.mon.tiled()
	solitary := (len(tiled) == 1 && tiled[0] == c) ||
		c.mon.lt[c.mon.sellt] == layout.Monocle
	if solitary && !c.isfullscreen && !c.isfloating {
		c.w += 2 * c.bw
		c.h += 2 * c.bw
		w = c.w
		h = c.h
		bw = 0
	}
	xproto.ConfigureWindow(wm.conn, c.surface(),
		xproto.ConfigWindowX|xproto.ConfigWindowY|
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|
			xproto.ConfigWindowBorderWidth,
		[]uint32{uint32(int32(x)), uint32(int32(y)), uint32(w), uint32(h), uint32(bw)})
	wm.configure(c)
}

// configure sends the synthetic ConfigureNotify a client expects when
// we choose not to honor its request verbatim.
func (wm *WM) configure(c *Client) {
	ev := xproto.ConfigureNotifyEvent{
		Event:            c.surface(),
		Window:           c.surface(),
		AboveSibling:     xproto.WindowNone,
		X:                int16(c.x),
		Y:                int16(c.y),
		Width:            uint16(c.w),
		Height:           uint16(c.h),
		BorderWidth:      uint16(c.bw),
		OverrideRedirect: false,
	}
	xproto.SendEvent(wm.conn, false, c.surface(),
		xproto.EventMaskStructureNotify, string(ev.Bytes()))
}

func (wm *WM) setClientState(c *Client, state uint) {
	should(icccm.WmStateSet(wm.X, c.surface(), &icccm.WmState{State: state}))
}

// sendProto delivers a WM_PROTOCOLS message if the client advertises
// the protocol, and reports whether it did.
func (wm *WM) sendProto(c *Client, proto string) bool {
	protocols, _ := icccm.WmProtocolsGet(wm.X, c.surface())
	supported := false
	for _, p := range protocols {
		if p == proto {
			supported = true
			break
		}
	}
	if !supported {
		return false
	}
	atom, err := xprop.Atm(wm.X, proto)
	if err != nil {
		should(err)
		return false
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: c.surface(),
		Type:   wm.atoms.wmProtocols,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(atom), uint32(xproto.TimeCurrentTime), 0, 0, 0}),
	}
	xproto.SendEvent(wm.conn, false, c.surface(),
		xproto.EventMaskNoEvent, string(ev.Bytes()))
	return true
}

func (wm *WM) setFocus(c *Client) {
	if !c.neverfocus {
		xproto.SetInputFocus(wm.conn, xproto.InputFocusPointerRoot,
			c.surface(), xproto.TimeCurrentTime)
		should(ewmh.ActiveWindowSet(wm.X, c.surface()))
	}
	wm.sendProto(c, "WM_TAKE_FOCUS")
}

func (wm *WM) setFullscreen(c *Client, fullscreen bool) {
	if fullscreen && c.enterFullscreen() {
		should(ewmh.WmStateSet(wm.X, c.surface(), []string{"_NET_WM_STATE_FULLSCREEN"}))
		wm.resizeClient(c, c.mon.mx, c.mon.my, c.mon.mw, c.mon.mh)
		wm.raise(c)
	} else if !fullscreen && c.exitFullscreen() {
		should(ewmh.WmStateSet(wm.X, c.surface(), nil))
		wm.resizeClient(c, c.x, c.y, c.w, c.h)
		wm.arrange(c.mon)
	}
}

func (wm *WM) setUrgent(c *Client, urgent bool) {
	c.isurgent = urgent
	hints, err := icccm.WmHintsGet(wm.X, c.surface())
	if err != nil {
		return
	}
	if urgent {
		hints.Flags |= icccm.HintUrgency
	} else {
		hints.Flags &^= icccm.HintUrgency
	}
	should(icccm.WmHintsSet(wm.X, c.surface(), hints))
}

func (wm *WM) updateTitle(c *Client) {
	name, err := ewmh.WmNameGet(wm.X, c.surface())
	if err != nil || name == "" {
		name, _ = icccm.WmNameGet(wm.X, c.surface())
	}
	if name == "" {
		name = broken
	}
	c.name = name
}

func (wm *WM) updateSizeHints(c *Client) {
	c.basew, c.baseh = 0, 0
	c.incw, c.inch = 0, 0
	c.maxw, c.maxh = 0, 0
	c.minw, c.minh = 0, 0
	c.mina, c.maxa = 0, 0
	size, err := icccm.WmNormalHintsGet(wm.X, c.surface())
	if err != nil {
		c.isfixed = false
		return
	}
	if size.Flags&icccm.SizeHintPBaseSize != 0 {
		c.basew, c.baseh = int(size.BaseWidth), int(size.BaseHeight)
	} else if size.Flags&icccm.SizeHintPMinSize != 0 {
		c.basew, c.baseh = int(size.MinWidth), int(size.MinHeight)
	}
	if size.Flags&icccm.SizeHintPResizeInc != 0 {
		c.incw, c.inch = int(size.WidthInc), int(size.HeightInc)
	}
	if size.Flags&icccm.SizeHintPMaxSize != 0 {
		c.maxw, c.maxh = int(size.MaxWidth), int(size.MaxHeight)
	}
	if size.Flags&icccm.SizeHintPMinSize != 0 {
		c.minw, c.minh = int(size.MinWidth), int(size.MinHeight)
	} else if size.Flags&icccm.SizeHintPBaseSize != 0 {
		c.minw, c.minh = int(size.BaseWidth), int(size.BaseHeight)
	}
	if size.Flags&icccm.SizeHintPAspect != 0 {
		c.mina = float64(size.MinAspectDen) / float64(size.MinAspectNum)
		c.maxa = float64(size.MaxAspectNum) / float64(size.MaxAspectDen)
	}
	c.isfixed = c.maxw != 0 && c.maxh != 0 && c.maxw == c.minw && c.maxh == c.minh
}

func (wm *WM) updateWMHints(c *Client) {
	hints, err := icccm.WmHintsGet(wm.X, c.surface())
	if err != nil {
		return
	}
	if c == wm.selmon.sel && hints.Flags&icccm.HintUrgency != 0 {
		// the focused client never stays flagged urgent
		hints.Flags &^= icccm.HintUrgency
		should(icccm.WmHintsSet(wm.X, c.surface(), hints))
	} else {
		c.isurgent = hints.Flags&icccm.HintUrgency != 0
	}
	if hints.Flags&icccm.HintInput != 0 {
		c.neverfocus = hints.Input == 0
	} else {
		c.neverfocus = false
	}
}

func (wm *WM) updateWindowType(c *Client) {
	if states, err := ewmh.WmStateGet(wm.X, c.surface()); err == nil {
		for _, s := range states {
			if s == "_NET_WM_STATE_FULLSCREEN" {
				wm.setFullscreen(c, true)
			}
		}
	}
	if types, err := ewmh.WmWindowTypeGet(wm.X, c.surface()); err == nil {
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DIALOG" {
				c.isfloating = true
			}
		}
	}
}

// updateClientList republishes _NET_CLIENT_LIST with every displayed
// surface.
func (wm *WM) updateClientList() {
	var wins []xproto.Window
	for _, m := range wm.mons {
		for _, c := range m.clients {
			wins = append(wins, c.surface())
		}
	}
	should(ewmh.ClientListSet(wm.X, wins))
}

func (wm *WM) raise(c *Client) {
	xproto.ConfigureWindow(wm.conn, c.surface(),
		xproto.ConfigWindowStackMode, []uint32{xproto.StackModeAbove})
}

func (wm *WM) setBorder(c *Client, pixel uint32) {
	xproto.ChangeWindowAttributes(wm.conn, c.surface(),
		xproto.CwBorderPixel, []uint32{pixel})
}

func (wm *WM) moveWin(c *Client, x, y int) {
	xproto.ConfigureWindow(wm.conn, c.surface(),
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(int32(x)), uint32(int32(y))})
}

func (wm *WM) moveResizeWin(c *Client, x, y, w, h int) {
	xproto.ConfigureWindow(wm.conn, c.surface(),
		xproto.ConfigWindowX|xproto.ConfigWindowY|
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(int32(x)), uint32(int32(y)), uint32(w), uint32(h)})
}
