package wm

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/loannaflip/dynamd/internal/config"
	"github.com/loannaflip/dynamd/internal/geom"
	"github.com/loannaflip/dynamd/internal/layout"
)

// newMonitor builds a monitor with the rc defaults. Geometry, num and
// the bar windows are filled in by the caller.
func newMonitor(cfg *config.Config) *Monitor {
	m := &Monitor{
		ltsymbol: layout.CenteredMaster.Symbol(),
		mfact:    cfg.MFact,
		nmaster:  cfg.NMaster,
		gappoh:   cfg.Gap.OuterH,
		gappov:   cfg.Gap.OuterV,
		gappih:   cfg.Gap.InnerH,
		gappiv:   cfg.Gap.InnerV,
		tagset:   [2]uint32{1, 1},
		showbar:  true,
		topbar:   cfg.TopBar,
		toptab:   cfg.TopTab,
		lt:       [2]layout.Kind{layout.CenteredMaster, layout.Monocle},
	}
	m.pertag = newPertag(m, len(cfg.Tags))
	return m
}

// updateBarPos derives the window area from the monitor geometry. The
// bar reserves space whenever shown; the tab strip only when more than
// one client is visible under a monocle layout.
func (m *Monitor) updateBarPos(bh, th int) {
	m.wy = m.my
	m.wh = m.mh
	if m.showbar {
		m.wh -= bh
		if m.topbar {
			m.by = m.wy
			m.wy += bh
		} else {
			m.by = m.wy + m.wh
		}
	} else {
		m.by = -bh
	}

	nvis := 0
	for _, c := range m.clients {
		if c.visible() {
			nvis++
		}
	}
	if nvis > 1 && m.lt[m.sellt] == layout.Monocle {
		m.wh -= th
		if m.toptab {
			m.ty = m.wy
			m.wy += th
		} else {
			m.ty = m.wy + m.wh
		}
	} else {
		m.ty = -th
	}
}

// updateGeom resyncs the monitor list with the Xinerama heads. It
// reports whether anything changed.
func (wm *WM) updateGeom() bool {
	dirty := wm.reconcile(wm.screens())
	if dirty {
		wm.selmon = wm.mons[0]
		wm.selmon = wm.wintomon(wm.root)
	}
	return dirty
}

// reconcile grows or shrinks wm.mons to match heads and refreshes the
// geometry of survivors. Clients of removed monitors move to the first
// monitor and keep their tags.
func (wm *WM) reconcile(heads []geom.Rect) bool {
	dirty := false
	for len(wm.mons) < len(heads) {
		m := newMonitor(wm.cfg)
		m.num = len(wm.mons)
		wm.mons = append(wm.mons, m)
		dirty = true
	}
	for i, h := range heads {
		m := wm.mons[i]
		if m.mx != h.X || m.my != h.Y || m.mw != h.Width || m.mh != h.Height {
			dirty = true
			m.num = i
			m.mx, m.my, m.mw, m.mh = h.X, h.Y, h.Width, h.Height
			m.wx, m.wy, m.ww, m.wh = h.X, h.Y, h.Width, h.Height
			m.updateBarPos(wm.bh, wm.th)
		}
	}
	for len(wm.mons) > len(heads) {
		m := wm.mons[len(wm.mons)-1]
		first := wm.mons[0]
		for len(m.clients) > 0 {
			dirty = true
			c := m.clients[0]
			m.detach(c)
			m.detachstack(c)
			c.mon = first
			first.attach(c)
			first.attachstack(c)
		}
		if wm.selmon == m {
			wm.selmon = first
		}
		wm.cleanupMon(m)
	}
	return dirty
}

func (wm *WM) cleanupMon(m *Monitor) {
	for i, o := range wm.mons {
		if o == m {
			wm.mons = append(wm.mons[:i], wm.mons[i+1:]...)
			break
		}
	}
	if m.bar != nil {
		m.bar.Destroy()
		m.bar = nil
	}
	if m.tab != nil {
		m.tab.Destroy()
		m.tab = nil
	}
}

// sendMon moves a client to another monitor, adopting that monitor's
// selected tags.
func (wm *WM) sendMon(c *Client, m *Monitor) {
	if c.mon == m {
		return
	}
	wm.unfocus(c, true)
	c.mon.detach(c)
	c.mon.detachstack(c)
	c.mon = m
	c.tags = m.tagset[m.seltags]
	m.attach(c)
	m.attachstack(c)
	wm.focus(nil)
	wm.arrange(nil)
}

// arrange lays out one monitor, or every monitor when m is nil.
func (wm *WM) arrange(m *Monitor) {
	if m != nil {
		wm.showHide(m)
		wm.arrangeMon(m)
		wm.restack(m)
		return
	}
	for _, m := range wm.mons {
		wm.showHide(m)
	}
	for _, m := range wm.mons {
		wm.arrangeMon(m)
	}
}

func (wm *WM) arrangeMon(m *Monitor) {
	m.updateBarPos(wm.bh, wm.th)
	if m.tab != nil {
		m.tab.MoveResize(m.wx, m.ty, m.ww, wm.th)
	}
	kind := m.lt[m.sellt]
	m.ltsymbol = kind.Symbol()
	if kind == layout.Floating {
		return
	}
	tiled := m.tiled()
	switch kind {
	case layout.Monocle:
		nvis := 0
		for _, c := range m.clients {
			if c.visible() {
				nvis++
			}
		}
		if nvis > 0 {
			m.ltsymbol = fmt.Sprintf("[M %d]", nvis)
		}
	case layout.Deck:
		if n := len(tiled) - m.nmaster; n > 0 {
			m.ltsymbol = fmt.Sprintf("[D %d]", n)
		}
	}
	rects := layout.Arrange(kind, layout.Params{
		Area:    geom.Rect{X: m.wx, Y: m.wy, Width: m.ww, Height: m.wh},
		N:       len(tiled),
		NMaster: m.nmaster,
		MFact:   m.mfact,
		Gaps: layout.Gaps{
			OuterH: m.gappoh, OuterV: m.gappov,
			InnerH: m.gappih, InnerV: m.gappiv,
		},
		GapsOn: wm.enablegaps,
		Bw:     wm.cfg.BorderWidth,
		MinH:   wm.bh,
	})
	for i, r := range rects {
		if i >= len(tiled) {
			break
		}
		wm.resize(tiled[i], r.X, r.Y, r.Width, r.Height, false)
	}
}

// restack raises the selected client when floating and pushes every
// tiled client below the bar, in focus order.
func (wm *WM) restack(m *Monitor) {
	wm.drawBar(m)
	wm.drawTab(m)
	if m.sel == nil {
		return
	}
	if m.sel.isfloating || m.lt[m.sellt] == layout.Floating {
		wm.raise(m.sel)
	}
	if m.lt[m.sellt] != layout.Floating && m.bar != nil {
		sibling := m.bar.win.Id
		for _, c := range m.stack {
			if !c.isfloating && c.visible() {
				xproto.ConfigureWindow(wm.conn, c.surface(),
					xproto.ConfigWindowSibling|xproto.ConfigWindowStackMode,
					[]uint32{uint32(sibling), xproto.StackModeBelow})
				sibling = c.surface()
			}
		}
	}
	wm.drainEnters()
}

// showHide moves visible clients into place front-to-back and parks
// hidden ones offscreen back-to-front, so lower windows never flash
// above higher ones.
func (wm *WM) showHide(m *Monitor) {
	for _, c := range m.stack {
		if c.visible() {
			wm.moveWin(c, c.x, c.y)
			if (m.lt[m.sellt] == layout.Floating || c.isfloating) && !c.isfullscreen {
				wm.resize(c, c.x, c.y, c.w, c.h, false)
			}
		}
	}
	for i := len(m.stack) - 1; i >= 0; i-- {
		if c := m.stack[i]; !c.visible() {
			wm.moveWin(c, -2*c.width(), c.y)
		}
	}
}

// focus moves input focus to c, or to the first visible client on the
// selected monitor when c is nil or hidden.
func (wm *WM) focus(c *Client) {
	if c == nil || !c.visible() {
		c = wm.selmon.firstVisibleStack()
	}
	if sel := wm.selmon.sel; sel != nil && sel != c {
		wm.unfocus(sel, false)
	}
	if c != nil {
		if c.mon != wm.selmon {
			wm.selmon = c.mon
		}
		if c.isurgent {
			wm.setUrgent(c, false)
		}
		c.mon.detachstack(c)
		c.mon.attachstack(c)
		wm.grabButtons(c, true)
		wm.setBorder(c, wm.scheme.sel.border)
		wm.setFocus(c)
	} else {
		xproto.SetInputFocus(wm.conn, xproto.InputFocusPointerRoot,
			wm.root, xproto.TimeCurrentTime)
		xproto.DeleteProperty(wm.conn, wm.root, wm.atoms.netActiveWindow)
	}
	wm.selmon.sel = c
	wm.drawBars()
	wm.drawTabs()
}

func (wm *WM) unfocus(c *Client, setfocus bool) {
	if c == nil {
		return
	}
	wm.grabButtons(c, false)
	wm.setBorder(c, wm.scheme.norm.border)
	if setfocus {
		xproto.SetInputFocus(wm.conn, xproto.InputFocusPointerRoot,
			wm.root, xproto.TimeCurrentTime)
		xproto.DeleteProperty(wm.conn, wm.root, wm.atoms.netActiveWindow)
	}
}
