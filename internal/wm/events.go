package wm

import (
	"errors"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/keybind"

	"github.com/loannaflip/dynamd/internal/layout"
)

// loop services events until quit or until the connection drops.
func (wm *WM) loop() error {
	for wm.running {
		ev, xerr := wm.nextEvent()
		if ev == nil && xerr == nil {
			return errors.New("x connection closed")
		}
		if xerr != nil {
			wm.xerror(xerr)
			continue
		}
		wm.dispatch(ev)
	}
	return nil
}

// nextEvent prefers events a drag loop read but left for us.
func (wm *WM) nextEvent() (xgb.Event, xgb.Error) {
	if len(wm.pending) > 0 {
		ev := wm.pending[0]
		wm.pending = wm.pending[1:]
		return ev, nil
	}
	return wm.conn.WaitForEvent()
}

func (wm *WM) dispatch(ev xgb.Event) {
	switch e := ev.(type) {
	case xproto.ButtonPressEvent:
		wm.buttonPress(e)
	case xproto.ClientMessageEvent:
		wm.clientMessage(e)
	case xproto.ConfigureNotifyEvent:
		wm.configureNotify(e)
	case xproto.ConfigureRequestEvent:
		wm.configureRequest(e)
	case xproto.DestroyNotifyEvent:
		wm.destroyNotify(e)
	case xproto.EnterNotifyEvent:
		wm.enterNotify(e)
	case xproto.ExposeEvent:
		wm.expose(e)
	case xproto.FocusInEvent:
		wm.focusIn(e)
	case xproto.KeyPressEvent:
		wm.keyPress(e)
	case xproto.MappingNotifyEvent:
		wm.mappingNotify(e)
	case xproto.MapRequestEvent:
		wm.mapRequest(e)
	case xproto.MotionNotifyEvent:
		wm.motionNotify(e)
	case xproto.PropertyNotifyEvent:
		wm.propertyNotify(e)
	case xproto.UnmapNotifyEvent:
		wm.unmapNotify(e)
	}
}

func (wm *WM) buttonPress(ev xproto.ButtonPressEvent) {
	if m := wm.wintomon(ev.Event); m != nil && m != wm.selmon {
		wm.unfocus(wm.selmon.sel, true)
		wm.selmon = m
		wm.focus(nil)
	}
	m := wm.selmon
	switch {
	case m.bar != nil && ev.Event == m.bar.Win():
		wm.barClick(m, ev)
	case m.tab != nil && ev.Event == m.tab.Win():
		wm.tabClick(m, ev)
	default:
		c := wm.wintoclient(ev.Event)
		if c == nil {
			return
		}
		wm.focus(c)
		wm.restack(wm.selmon)
		xproto.AllowEvents(wm.conn, xproto.AllowReplayPointer, xproto.TimeCurrentTime)
		for _, b := range wm.buttons {
			if b.button == ev.Detail && wm.cleanMask(b.mods) == wm.cleanMask(ev.State) {
				b.act()
			}
		}
	}
}

func (wm *WM) barClick(m *Monitor, ev xproto.ButtonPressEvent) {
	clean := wm.cleanMask(ev.State)
	if int(ev.EventX) < wm.blw {
		if clean != 0 {
			return
		}
		switch ev.Detail {
		case xproto.ButtonIndex1:
			wm.setLayout(layout.CenteredMaster, true)
		case xproto.ButtonIndex3:
			wm.setLayout(layout.Floating, true)
		}
		return
	}
	var occ uint32
	for _, c := range m.clients {
		if c.tags == 255 {
			continue
		}
		occ |= c.tags
	}
	x := wm.blw
	for i, tag := range wm.cfg.Tags {
		bit := uint32(1) << uint(i)
		if occ&bit == 0 && m.tagset[m.seltags]&bit == 0 {
			continue
		}
		x += wm.textw(tag)
		if int(ev.EventX) < x {
			switch {
			case clean == 0 && ev.Detail == xproto.ButtonIndex1:
				wm.view(bit)
			case clean == 0 && ev.Detail == xproto.ButtonIndex3:
				wm.toggleView(bit)
			case clean == xproto.ModMask4 && ev.Detail == xproto.ButtonIndex1:
				wm.tag(bit)
			case clean == xproto.ModMask4 && ev.Detail == xproto.ButtonIndex3:
				wm.toggleTag(bit)
			}
			return
		}
	}
	// remaining clicks land on the status text, which has no binding
}

func (wm *WM) tabClick(m *Monitor, ev xproto.ButtonPressEvent) {
	if ev.Detail != xproto.ButtonIndex1 || wm.cleanMask(ev.State) != 0 {
		return
	}
	x := 0
	for i := 0; i < m.ntabs; i++ {
		x += m.tabWidths[i]
		if int(ev.EventX) <= x {
			wm.focusWin(i)
			return
		}
	}
}

func (wm *WM) clientMessage(ev xproto.ClientMessageEvent) {
	c := wm.wintoclient(ev.Window)
	if c == nil {
		return
	}
	switch ev.Type {
	case wm.atoms.netWMState:
		data := ev.Data.Data32
		if len(data) < 3 {
			return
		}
		if xproto.Atom(data[1]) == wm.atoms.netWMFullscreen ||
			xproto.Atom(data[2]) == wm.atoms.netWMFullscreen {
			// 1 add, 0 remove, 2 toggle
			wm.setFullscreen(c, data[0] == 1 || (data[0] == 2 && !c.isfullscreen))
		}
	case wm.atoms.netActiveWindow:
		if c != wm.selmon.sel && !c.isurgent {
			wm.setUrgent(c, true)
		}
	}
}

func (wm *WM) configureNotify(ev xproto.ConfigureNotifyEvent) {
	if ev.Window != wm.root {
		return
	}
	dirty := wm.sw != int(ev.Width) || wm.sh != int(ev.Height)
	wm.sw, wm.sh = int(ev.Width), int(ev.Height)
	if wm.updateGeom() || dirty {
		wm.updateBars()
		for _, m := range wm.mons {
			for _, c := range m.clients {
				if c.isfullscreen {
					wm.resizeClient(c, m.mx, m.my, m.mw, m.mh)
				}
			}
			m.bar.MoveResize(m.wx, m.by, m.ww, wm.bh)
		}
		wm.focus(nil)
		wm.arrange(nil)
	}
}

func (wm *WM) configureRequest(ev xproto.ConfigureRequestEvent) {
	c := wm.wintoclient(ev.Window)
	if c == nil {
		wm.forwardConfigure(ev)
		return
	}
	if ev.ValueMask&xproto.ConfigWindowBorderWidth != 0 {
		c.bw = int(ev.BorderWidth)
	} else if c.isfloating || wm.selmon.lt[wm.selmon.sellt] == layout.Floating {
		m := c.mon
		if ev.ValueMask&xproto.ConfigWindowX != 0 {
			c.oldx = c.x
			c.x = m.mx + int(ev.X)
		}
		if ev.ValueMask&xproto.ConfigWindowY != 0 {
			c.oldy = c.y
			c.y = m.my + int(ev.Y)
		}
		if ev.ValueMask&xproto.ConfigWindowWidth != 0 {
			c.oldw = c.w
			c.w = int(ev.Width)
		}
		if ev.ValueMask&xproto.ConfigWindowHeight != 0 {
			c.oldh = c.h
			c.h = int(ev.Height)
		}
		if c.x+c.w > m.mx+m.mw && c.isfloating {
			c.x = m.mx + (m.mw/2 - c.width()/2) // center on x
		}
		if c.y+c.h > m.my+m.mh && c.isfloating {
			c.y = m.my + (m.mh/2 - c.height()/2) // center on y
		}
		if ev.ValueMask&(xproto.ConfigWindowX|xproto.ConfigWindowY) != 0 &&
			ev.ValueMask&(xproto.ConfigWindowWidth|xproto.ConfigWindowHeight) == 0 {
			wm.configure(c)
		}
		if c.visible() {
			wm.moveResizeWin(c, c.x, c.y, c.w, c.h)
		}
	} else {
		wm.configure(c)
	}
}

// forwardConfigure passes a configure request for an unmanaged window
// through untouched.
func (wm *WM) forwardConfigure(ev xproto.ConfigureRequestEvent) {
	var values []uint32
	mask := ev.ValueMask
	if mask&xproto.ConfigWindowX != 0 {
		values = append(values, uint32(int32(ev.X)))
	}
	if mask&xproto.ConfigWindowY != 0 {
		values = append(values, uint32(int32(ev.Y)))
	}
	if mask&xproto.ConfigWindowWidth != 0 {
		values = append(values, uint32(ev.Width))
	}
	if mask&xproto.ConfigWindowHeight != 0 {
		values = append(values, uint32(ev.Height))
	}
	if mask&xproto.ConfigWindowBorderWidth != 0 {
		values = append(values, uint32(ev.BorderWidth))
	}
	if mask&xproto.ConfigWindowSibling != 0 {
		values = append(values, uint32(ev.Sibling))
	}
	if mask&xproto.ConfigWindowStackMode != 0 {
		values = append(values, uint32(ev.StackMode))
	}
	xproto.ConfigureWindow(wm.conn, ev.Window, mask, values)
}

func (wm *WM) destroyNotify(ev xproto.DestroyNotifyEvent) {
	c := wm.wintoclient(ev.Window)
	if c == nil {
		return
	}
	if c.swallowed != nil && c.win == ev.Window {
		// The terminal died behind its swallowed window. The record
		// keeps the window it is displaying.
		wm.log.Debug("terminal gone, adopting swallowed window", "win", c.swallowed.win)
		c.adoptSwallowed()
		wm.arrange(c.mon)
		wm.focus(nil)
		return
	}
	wm.unmanage(c, true)
}

func (wm *WM) enterNotify(ev xproto.EnterNotifyEvent) {
	if wm.staleEnter(ev.Sequence) {
		return
	}
	if (ev.Mode != xproto.NotifyModeNormal || ev.Detail == xproto.NotifyDetailInferior) &&
		ev.Event != wm.root {
		return
	}
	c := wm.wintoclient(ev.Event)
	m := wm.selmon
	if c != nil {
		m = c.mon
	} else {
		m = wm.wintomon(ev.Event)
	}
	if m != wm.selmon {
		wm.unfocus(wm.selmon.sel, true)
		wm.selmon = m
	} else if c == nil || c == wm.selmon.sel {
		return
	}
	wm.focus(c)
}

func (wm *WM) expose(ev xproto.ExposeEvent) {
	if ev.Count != 0 {
		return
	}
	if m := wm.wintomon(ev.Window); m != nil {
		wm.drawBar(m)
		wm.drawTab(m)
	}
}

func (wm *WM) focusIn(ev xproto.FocusInEvent) {
	// some clients steal focus behind our back
	if wm.selmon.sel != nil && ev.Event != wm.selmon.sel.surface() {
		wm.setFocus(wm.selmon.sel)
	}
}

func (wm *WM) keyPress(ev xproto.KeyPressEvent) {
	for i := range wm.keys {
		k := &wm.keys[i]
		if k.code == ev.Detail && wm.cleanMask(k.mods) == wm.cleanMask(ev.State) {
			k.act()
		}
	}
}

func (wm *WM) mappingNotify(ev xproto.MappingNotifyEvent) {
	if ev.Request == xproto.MappingKeyboard {
		keybind.Initialize(wm.X)
		wm.grabKeys()
	}
}

func (wm *WM) mapRequest(ev xproto.MapRequestEvent) {
	attrs, err := xproto.GetWindowAttributes(wm.conn, ev.Window).Reply()
	if err != nil || attrs.OverrideRedirect {
		return
	}
	if wm.wintoclient(ev.Window) == nil {
		wm.manage(ev.Window)
	}
}

func (wm *WM) motionNotify(ev xproto.MotionNotifyEvent) {
	if ev.Event != wm.root {
		return
	}
	m := wm.recttomon(int(ev.RootX), int(ev.RootY), 1, 1)
	if m != wm.motionmon && wm.motionmon != nil {
		wm.unfocus(wm.selmon.sel, true)
		wm.selmon = m
		wm.focus(nil)
	}
	wm.motionmon = m
}

func (wm *WM) propertyNotify(ev xproto.PropertyNotifyEvent) {
	if ev.Window == wm.root && ev.Atom == xproto.AtomWmName {
		wm.updateStatus()
		return
	}
	if ev.State == xproto.PropertyDelete {
		return
	}
	c := wm.wintoclient(ev.Window)
	if c == nil {
		return
	}
	switch ev.Atom {
	case xproto.AtomWmTransientFor:
		if !c.isfloating {
			if trans, err := icccm.WmTransientForGet(wm.X, c.surface()); err == nil &&
				wm.wintoclient(trans) != nil {
				c.isfloating = true
				wm.arrange(c.mon)
			}
		}
	case xproto.AtomWmNormalHints:
		wm.updateSizeHints(c)
	case xproto.AtomWmHints:
		wm.updateWMHints(c)
		wm.drawBars()
		wm.drawTabs()
	}
	if ev.Atom == xproto.AtomWmName || ev.Atom == wm.atoms.netWMName {
		wm.updateTitle(c)
		wm.drawTab(c.mon)
	}
	if ev.Atom == wm.atoms.netWMWindowType {
		wm.updateWindowType(c)
	}
}

func (wm *WM) unmapNotify(ev xproto.UnmapNotifyEvent) {
	c := wm.wintoclient(ev.Window)
	if c == nil {
		return
	}
	if c.swallowed != nil && c.win == ev.Window {
		return // the terminal's own window; we unmapped it ourselves
	}
	if ev.Event == wm.root {
		// A synthetic withdraw per ICCCM 4.1.4 is addressed to the
		// root; a real unmap also reaches us through the window's own
		// structure notify and unmanages there.
		wm.setClientState(c, icccm.StateWithdrawn)
		return
	}
	wm.unmanage(c, false)
}

// drainEnters syncs with the server and marks queued enter notifies as
// stale. Focus must not follow the pointer into windows that only moved
// underneath it.
func (wm *WM) drainEnters() {
	reply, err := xproto.GetInputFocus(wm.conn).Reply()
	if err != nil {
		return
	}
	wm.staleEnters = reply.Sequence
	kept := wm.pending[:0]
	for _, ev := range wm.pending {
		if _, ok := ev.(xproto.EnterNotifyEvent); ok {
			continue
		}
		kept = append(kept, ev)
	}
	wm.pending = kept
}

func (wm *WM) staleEnter(seq uint16) bool {
	return int16(seq-wm.staleEnters) <= 0
}

// Core request opcodes the error allow list matches on.
const (
	opConfigureWindow   = 12
	opGrabButton        = 28
	opGrabKey           = 33
	opSetInputFocus     = 42
	opCopyArea          = 62
	opPolySegment       = 66
	opPolyFillRectangle = 70
	opPolyText8         = 74
	opImageText16       = 77
)

// xerror ignores the errors every window manager provokes: BadWindow
// from racing against dying clients and a handful of request/error
// pairs on windows that vanish mid-request. Anything else is a bug, so
// it is fatal.
func (wm *WM) xerror(err xgb.Error) {
	switch e := err.(type) {
	case xproto.WindowError:
		return
	case xproto.MatchError:
		if e.MajorOpcode == opSetInputFocus || e.MajorOpcode == opConfigureWindow {
			return
		}
	case xproto.DrawableError:
		switch e.MajorOpcode {
		case opPolyText8, opPolyFillRectangle, opPolySegment, opCopyArea, opImageText16:
			return
		}
	case xproto.AccessError:
		if e.MajorOpcode == opGrabButton || e.MajorOpcode == opGrabKey {
			return
		}
	}
	wm.log.Fatal("fatal x error", "err", err)
}
