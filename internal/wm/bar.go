package wm

import (
	"sort"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/loannaflip/dynamd/internal/draw"
)

const (
	barHeight = 32
	tabHeight = 32
	maxTabs   = 25
)

// barWindow is one override-redirect strip (bar or tab) with its GC
// cache, implementing draw.Drawable.
type barWindow struct {
	win *xwindow.Window
	gcs draw.GCs
	xu  *xgbutil.XUtil
}

func (b *barWindow) GCs() draw.GCs      { return b.gcs }
func (b *barWindow) Win() xproto.Window { return b.win.Id }
func (b *barWindow) X() *xgbutil.XUtil  { return b.xu }

func (b *barWindow) MoveResize(x, y, w, h int) {
	b.win.MoveResize(x, y, w, h)
}

func (b *barWindow) Destroy() {
	b.win.Unmap()
	b.win.Destroy()
}

// updateBars creates the bar and tab windows of monitors that lack
// them. Geometry updates of existing strips happen in arrangeMon and
// toggleBar.
func (wm *WM) updateBars() {
	for _, m := range wm.mons {
		if m.bar != nil {
			continue
		}
		m.bar = wm.createStrip(m.wx, m.by, m.ww, wm.bh, true)
		m.tab = wm.createStrip(m.wx, m.ty, m.ww, wm.th, false)
	}
}

func (wm *WM) createStrip(x, y, w, h int, classed bool) *barWindow {
	win, err := xwindow.Generate(wm.X)
	must(err)
	must(win.CreateChecked(wm.root, x, y, w, h,
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask|xproto.CwCursor,
		wm.scheme.norm.bg,
		1,
		uint32(xproto.EventMaskButtonPress|xproto.EventMaskExposure),
		uint32(wm.cursors["normal"])))
	if classed {
		should(icccm.WmClassSet(wm.X, win.Id,
			&icccm.WmClass{Instance: "dynamd", Class: "dynamd"}))
	}
	win.Map()
	win.Stack(xproto.StackModeAbove)
	return &barWindow{win: win, gcs: draw.GCs{}, xu: wm.X}
}

// drawBar paints one monitor's bar: right-aligned status first (selected
// monitor only, so tags may overdraw it), then the layout symbol,
// non-vacant tags and a filler.
func (wm *WM) drawBar(m *Monitor) {
	if m.bar == nil {
		return
	}
	sw := 0
	if m == wm.selmon {
		sw = wm.textw(wm.stext) - wm.lrpad + 2
		draw.Fill(m.bar, m.ww-sw, 0, sw, wm.bh, wm.scheme.norm.bg)
		draw.Text(m.bar, wm.stext, wm.font, wm.scheme.norm.fg,
			wm.scheme.norm.bg, m.ww-sw, (wm.bh-wm.lrpad)/2)
	}

	var occ, urg uint32
	for _, c := range m.clients {
		if c.tags != 255 {
			occ |= c.tags
		}
		if c.isurgent {
			urg |= c.tags
		}
	}

	x := 0
	wm.blw = wm.textw(m.ltsymbol)
	x += wm.cell(m.bar, x, wm.blw, m.ltsymbol, wm.scheme.norm, false)
	for i, tag := range wm.cfg.Tags {
		bit := uint32(1) << uint(i)
		if occ&bit == 0 && m.tagset[m.seltags]&bit == 0 {
			// vacant tag
			continue
		}
		sc := wm.scheme.norm
		if m.tagset[m.seltags]&bit != 0 {
			sc = wm.scheme.sel
		}
		x += wm.cell(m.bar, x, wm.textw(tag), tag, sc, urg&bit != 0)
	}
	if w := m.ww - sw - x; w > wm.bh {
		draw.Fill(m.bar, x, 0, w, wm.bh, wm.scheme.norm.bg)
	}
}

// cell paints one bar cell: background, then the label inset by half
// the text padding. Urgency inverts the scheme.
func (wm *WM) cell(d draw.Drawable, x, w int, text string, sc colorScheme, invert bool) int {
	fg, bg := sc.fg, sc.bg
	if invert {
		fg, bg = bg, fg
	}
	draw.Fill(d, x, 0, w, wm.bh, bg)
	draw.Text(d, text, wm.font, fg, bg, x+wm.lrpad/2, (wm.bh-wm.lrpad)/2)
	return w
}

// drawTab paints the tab strip: one title cell per visible client, the
// selected client in the selected scheme, then a trailing filler. The
// final cell widths are kept for click mapping.
func (wm *WM) drawTab(m *Monitor) {
	if m.tab == nil {
		return
	}
	var vis []*Client
	for _, c := range m.clients {
		if c.visible() {
			vis = append(vis, c)
			if len(vis) >= maxTabs {
				break
			}
		}
	}
	widths := make([]int, len(vis))
	for i, c := range vis {
		widths[i] = wm.textw(c.name)
	}
	widths = tabWidths(widths, m.ww)
	m.ntabs = len(vis)
	m.tabWidths = widths

	x := 0
	for i, c := range vis {
		sc := wm.scheme.norm
		if c == m.sel {
			sc = wm.scheme.sel
		}
		draw.Fill(m.tab, x, 0, widths[i], wm.th, sc.bg)
		draw.Text(m.tab, c.name, wm.font, sc.fg, sc.bg, x, (wm.th-wm.lrpad)/2)
		x += widths[i]
	}
	if x < m.ww {
		draw.Fill(m.tab, x, 0, m.ww-x, wm.th, wm.scheme.norm.bg)
	}
}

// tabWidths fits label widths into total pixels. When they overflow,
// the widest labels shrink to an equal share of what remains after
// every naturally fitting label: an ascending sweep keeps each label
// whose width works even if all remaining labels were just as wide.
func tabWidths(widths []int, total int) []int {
	out := append([]int(nil), widths...)
	sum := 0
	for _, w := range widths {
		sum += w
	}
	if sum <= total {
		return out
	}
	sorted := append([]int(nil), widths...)
	sort.Ints(sorted)
	kept, i := 0, 0
	for ; i < len(sorted); i++ {
		if kept+(len(sorted)-i)*sorted[i] > total {
			break
		}
		kept += sorted[i]
	}
	maxsize := 0
	if n := len(sorted) - i; n > 0 {
		maxsize = (total - kept) / n
	}
	for j, w := range out {
		if w > maxsize {
			out[j] = maxsize
		}
	}
	return out
}

func (wm *WM) drawBars() {
	for _, m := range wm.mons {
		wm.drawBar(m)
	}
}

func (wm *WM) drawTabs() {
	for _, m := range wm.mons {
		wm.drawTab(m)
	}
}

// updateStatus reads the root window name into the status text.
func (wm *WM) updateStatus() {
	name, err := icccm.WmNameGet(wm.X, wm.root)
	if err != nil || name == "" {
		name = "dynamd"
	}
	wm.stext = name
	wm.drawBar(wm.selmon)
}

// textw is the padded width of text in the bar font.
func (wm *WM) textw(s string) int {
	return draw.Width(wm.X, wm.font, s) + wm.lrpad
}
