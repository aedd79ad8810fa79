package wm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/loannaflip/dynamd/internal/layout"
)

// parseAction resolves one rc action string into a closure. Unknown
// verbs and malformed arguments fail startup.
func (wm *WM) parseAction(spec string) (func(), error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return nil, errors.New("empty action")
	}
	verb, args := fields[0], fields[1:]

	num := func() (int, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("%s: want one numeric argument", verb)
		}
		return strconv.Atoi(args[0])
	}
	tagbit := func() (uint32, error) {
		n, err := num()
		if err != nil {
			return 0, err
		}
		if n < 1 || n > len(wm.cfg.Tags) {
			return 0, fmt.Errorf("%s: tag %d out of range", verb, n)
		}
		return 1 << uint(n-1), nil
	}

	switch verb {
	case "spawn":
		if len(args) == 0 {
			return nil, errors.New("spawn: missing command")
		}
		argv := append([]string(nil), args...)
		return func() { wm.spawn(argv) }, nil
	case "spawn-terminal":
		return func() { wm.spawn(wm.cfg.Terminal) }, nil
	case "quit":
		return func() { wm.running = false }, nil
	case "kill":
		return wm.killClient, nil
	case "focus-next":
		return func() { wm.focusStack(+1) }, nil
	case "focus-prev":
		return func() { wm.focusStack(-1) }, nil
	case "move-next":
		return func() { wm.moveStack(+1) }, nil
	case "move-prev":
		return func() { wm.moveStack(-1) }, nil
	case "zoom":
		return wm.zoom, nil
	case "view":
		bit, err := tagbit()
		if err != nil {
			return nil, err
		}
		return func() { wm.view(bit) }, nil
	case "view-all":
		return func() { wm.view(^uint32(0)) }, nil
	case "view-prev":
		return func() { wm.view(0) }, nil
	case "toggle-view":
		bit, err := tagbit()
		if err != nil {
			return nil, err
		}
		return func() { wm.toggleView(bit) }, nil
	case "tag":
		bit, err := tagbit()
		if err != nil {
			return nil, err
		}
		return func() { wm.tag(bit) }, nil
	case "toggle-tag":
		bit, err := tagbit()
		if err != nil {
			return nil, err
		}
		return func() { wm.toggleTag(bit) }, nil
	case "shift-view":
		n, err := num()
		if err != nil {
			return nil, err
		}
		return func() { wm.shiftView(n) }, nil
	case "organize-tags":
		return wm.organizeTags, nil
	case "set-layout":
		if len(args) != 1 {
			return nil, errors.New("set-layout: want a layout name")
		}
		k, ok := layout.ByName(args[0])
		if !ok {
			return nil, fmt.Errorf("set-layout: unknown layout %q", args[0])
		}
		return func() { wm.setLayout(k, true) }, nil
	case "cycle-layout":
		n, err := num()
		if err != nil {
			return nil, err
		}
		return func() { wm.cycleLayout(n) }, nil
	case "set-mfact":
		if len(args) != 1 {
			return nil, errors.New("set-mfact: want a factor")
		}
		f, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return nil, fmt.Errorf("set-mfact: %w", err)
		}
		return func() { wm.setMfact(f) }, nil
	case "inc-nmaster":
		n, err := num()
		if err != nil {
			return nil, err
		}
		return func() { wm.incNMaster(n) }, nil
	case "toggle-bar":
		return wm.toggleBar, nil
	case "toggle-floating":
		return wm.toggleFloating, nil
	case "toggle-fullscreen":
		return wm.toggleFullscreen, nil
	case "gaps":
		n, err := num()
		if err != nil {
			return nil, err
		}
		return func() { wm.gaps(n) }, nil
	case "toggle-gaps":
		return wm.toggleGaps, nil
	case "focus-mon":
		n, err := num()
		if err != nil {
			return nil, err
		}
		return func() { wm.focusMon(n) }, nil
	case "tag-mon":
		n, err := num()
		if err != nil {
			return nil, err
		}
		return func() { wm.tagMon(n) }, nil
	case "focus-win":
		n, err := num()
		if err != nil {
			return nil, err
		}
		return func() { wm.focusWin(n) }, nil
	case "move-mouse":
		return wm.moveMouse, nil
	case "resize-mouse":
		return wm.resizeMouse, nil
	}
	return nil, fmt.Errorf("unknown action %q", verb)
}

// view replaces the selected monitor's tag set, restoring that view's
// remembered parameters. Zero tags flips back to the previous view.
func (wm *WM) view(tags uint32) {
	changed, barChanged := wm.selmon.selectView(tags, wm.tagmask)
	if !changed {
		return
	}
	if barChanged {
		wm.toggleBar()
	}
	wm.focus(nil)
	wm.arrange(wm.selmon)
}

func (wm *WM) toggleView(tags uint32) {
	changed, barChanged := wm.selmon.toggleViewTags(tags, wm.tagmask)
	if !changed {
		return
	}
	if barChanged {
		wm.toggleBar()
	}
	wm.focus(nil)
	wm.arrange(wm.selmon)
}

func (wm *WM) tag(tags uint32) {
	if wm.selmon.sel != nil && tags&wm.tagmask != 0 {
		wm.selmon.sel.tags = tags & wm.tagmask
		wm.focus(nil)
		wm.arrange(wm.selmon)
	}
}

func (wm *WM) toggleTag(tags uint32) {
	sel := wm.selmon.sel
	if sel == nil {
		return
	}
	if sel.toggleTag(tags & wm.tagmask) {
		wm.focus(nil)
		wm.arrange(wm.selmon)
	}
}

func (wm *WM) shiftView(dir int) {
	wm.view(shiftTags(wm.selmon.tagset[wm.selmon.seltags], dir, len(wm.cfg.Tags)))
}

func (wm *WM) organizeTags() {
	wm.selmon.organizeTags(len(wm.cfg.Tags))
	wm.arrange(wm.selmon)
}

// setLayout selects k on the current view. Without an explicit layout,
// or when k differs from the current one, the layout pair flips first.
func (wm *WM) setLayout(k layout.Kind, explicit bool) {
	m := wm.selmon
	p := m.pertag
	if !explicit || k != m.lt[m.sellt] {
		m.sellt ^= 1
		p.sellts[p.curtag] = m.sellt
	}
	if explicit {
		m.lt[m.sellt] = k
		p.ltidxs[p.curtag][m.sellt] = k
	}
	m.ltsymbol = m.lt[m.sellt].Symbol()
	if m.sel != nil {
		wm.arrange(m)
	} else {
		wm.drawBar(m)
	}
}

func (wm *WM) cycleLayout(dir int) {
	wm.setLayout(layout.Cycle(wm.selmon.lt[wm.selmon.sellt], dir), true)
}

// setMfact adjusts the master split. Fractions below 1.0 are relative,
// others absolute minus 1.0; results outside [0.1, 0.9] are dropped.
func (wm *WM) setMfact(f float64) {
	m := wm.selmon
	if m.lt[m.sellt] == layout.Floating {
		return
	}
	if f < 1.0 {
		f += m.mfact
	} else {
		f -= 1.0
	}
	if f < 0.1 || f > 0.9 {
		return
	}
	m.mfact = f
	m.pertag.mfacts[m.pertag.curtag] = f
	wm.arrange(m)
}

func (wm *WM) incNMaster(n int) {
	m := wm.selmon
	m.nmaster = max(m.nmaster+n, 0)
	m.pertag.nmasters[m.pertag.curtag] = m.nmaster
	wm.arrange(m)
}

// focusStack moves focus to the next (dir > 0) or previous visible
// client, wrapping around the registry. Fullscreen pins focus.
func (wm *WM) focusStack(dir int) {
	m := wm.selmon
	if m.sel == nil || m.sel.isfullscreen {
		return
	}
	var c *Client
	sel := -1
	for i, v := range m.clients {
		if v == m.sel {
			sel = i
			break
		}
	}
	if sel < 0 {
		return
	}
	if dir > 0 {
		for i := sel + 1; i < len(m.clients) && c == nil; i++ {
			if m.clients[i].visible() {
				c = m.clients[i]
			}
		}
		for i := 0; i < sel && c == nil; i++ {
			if m.clients[i].visible() {
				c = m.clients[i]
			}
		}
	} else {
		for i := sel - 1; i >= 0 && c == nil; i-- {
			if m.clients[i].visible() {
				c = m.clients[i]
			}
		}
		for i := len(m.clients) - 1; i > sel && c == nil; i-- {
			if m.clients[i].visible() {
				c = m.clients[i]
			}
		}
	}
	if c != nil {
		wm.focus(c)
		wm.restack(m)
	}
}

// focusWin focuses the i-th visible client in registry order.
func (wm *WM) focusWin(i int) {
	for _, c := range wm.selmon.clients {
		if !c.visible() {
			continue
		}
		if i == 0 {
			wm.focus(c)
			wm.restack(wm.selmon)
			return
		}
		i--
	}
}

// zoom promotes the selected tiled client to master; if it already is
// the master, the next tiled client takes its place.
func (wm *WM) zoom() {
	m := wm.selmon
	c := m.sel
	if m.lt[m.sellt] == layout.Floating || (c != nil && c.isfloating) {
		return
	}
	tiled := m.tiled()
	if len(tiled) > 0 && c == tiled[0] {
		if len(tiled) < 2 {
			return
		}
		c = tiled[1]
	}
	if c == nil {
		return
	}
	wm.pop(c)
}

func (wm *WM) pop(c *Client) {
	c.mon.detach(c)
	c.mon.attach(c)
	wm.focus(c)
	wm.arrange(c.mon)
}

// moveStack swaps the selected client with the next or previous visible
// tiled client in registry order, wrapping around.
func (wm *WM) moveStack(dir int) {
	m := wm.selmon
	if m.sel == nil {
		return
	}
	sel := -1
	for i, v := range m.clients {
		if v == m.sel {
			sel = i
			break
		}
	}
	if sel < 0 {
		return
	}
	target := -1
	swappable := func(c *Client) bool { return c.visible() && !c.isfloating }
	if dir > 0 {
		for i := sel + 1; i < len(m.clients) && target < 0; i++ {
			if swappable(m.clients[i]) {
				target = i
			}
		}
		for i := 0; i < sel && target < 0; i++ {
			if swappable(m.clients[i]) {
				target = i
			}
		}
	} else {
		for i := sel - 1; i >= 0 && target < 0; i-- {
			if swappable(m.clients[i]) {
				target = i
			}
		}
		for i := len(m.clients) - 1; i > sel && target < 0; i-- {
			if swappable(m.clients[i]) {
				target = i
			}
		}
	}
	if target < 0 || target == sel {
		return
	}
	m.clients[sel], m.clients[target] = m.clients[target], m.clients[sel]
	wm.arrange(m)
}

func (wm *WM) toggleBar() {
	m := wm.selmon
	m.showbar = !m.showbar
	m.pertag.showbars[m.pertag.curtag] = m.showbar
	m.updateBarPos(wm.bh, wm.th)
	if m.bar != nil {
		m.bar.MoveResize(m.wx, m.by, m.ww, wm.bh)
	}
	wm.arrange(m)
}

func (wm *WM) toggleFloating() {
	sel := wm.selmon.sel
	if sel == nil || sel.isfullscreen {
		return
	}
	sel.isfloating = !sel.isfloating || sel.isfixed
	if sel.isfloating {
		wm.resize(sel, sel.x, sel.y, sel.w, sel.h, false)
	}
	wm.arrange(wm.selmon)
}

func (wm *WM) toggleFullscreen() {
	if sel := wm.selmon.sel; sel != nil {
		wm.setFullscreen(sel, !sel.isfullscreen)
	}
}

// gaps grows or shrinks all four gaps at once, each floored at zero.
func (wm *WM) gaps(n int) {
	m := wm.selmon
	m.gappoh = max(m.gappoh+n, 0)
	m.gappov = max(m.gappov+n, 0)
	m.gappih = max(m.gappih+n, 0)
	m.gappiv = max(m.gappiv+n, 0)
	wm.arrange(m)
}

func (wm *WM) toggleGaps() {
	wm.enablegaps = !wm.enablegaps
	wm.arrange(nil)
}

func (wm *WM) focusMon(dir int) {
	if len(wm.mons) < 2 {
		return
	}
	m := wm.dirtomon(dir)
	if m == wm.selmon {
		return
	}
	wm.unfocus(wm.selmon.sel, false)
	wm.selmon = m
	wm.focus(nil)
}

func (wm *WM) tagMon(dir int) {
	if wm.selmon.sel == nil || len(wm.mons) < 2 {
		return
	}
	wm.sendMon(wm.selmon.sel, wm.dirtomon(dir))
}

// killClient asks the selected client to close and falls back to
// killing its connection when WM_DELETE_WINDOW is not advertised.
func (wm *WM) killClient() {
	sel := wm.selmon.sel
	if sel == nil {
		return
	}
	if wm.sendProto(sel, "WM_DELETE_WINDOW") {
		return
	}
	xproto.GrabServer(wm.conn)
	xproto.SetCloseDownMode(wm.conn, xproto.CloseDownDestroyAll)
	_ = xproto.KillClientChecked(wm.conn, uint32(sel.surface())).Check()
	xproto.UngrabServer(wm.conn)
}
