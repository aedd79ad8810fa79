// Package wm implements the window manager core: client and monitor
// bookkeeping, the X event loop, tiling via internal/layout, terminal
// swallowing, and the bar and tab strips.
package wm

import (
	"math/bits"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/charmbracelet/log"

	"github.com/loannaflip/dynamd/internal/config"
	"github.com/loannaflip/dynamd/internal/geom"
	"github.com/loannaflip/dynamd/internal/layout"
)

// broken stands in for window titles and class hints that cannot be read.
const broken = "broken"

type colorScheme struct {
	fg, bg, border uint32
}

type schemes struct {
	norm, sel colorScheme
}

type keyBinding struct {
	spec string // xgbutil key string, e.g. "Mod4-Shift-q"
	mods uint16
	code xproto.Keycode
	act  func()
}

type buttonBinding struct {
	mods   uint16
	button xproto.Button
	act    func()
}

// WM owns the X connection and all window manager state. It is not safe
// for concurrent use: everything runs on the event loop goroutine except
// the SIGCHLD reaper, which only touches the autostart pid list.
type WM struct {
	X    *xgbutil.XUtil
	conn *xgb.Conn
	root xproto.Window
	log  *log.Logger
	cfg  *config.Config

	sw, sh int // root window geometry
	bh, th int // bar and tab strip heights
	lrpad  int // horizontal padding around bar text, the font height
	blw    int // width of the layout symbol cell in the bar

	font  xproto.Font
	stext string

	scheme  schemes
	cursors map[string]xproto.Cursor
	atoms   atoms

	mons      []*Monitor
	selmon    *Monitor
	motionmon *Monitor // last monitor seen by root motion events

	tagmask     uint32
	numlockmask uint16
	enablegaps  bool

	keyActs []keyBinding // actions parsed from the rc, keycodes unresolved
	keys    []keyBinding // grabbed bindings, rebuilt on mapping changes
	buttons []buttonBinding

	checkwin xproto.Window
	running  bool

	// Events a nested drag loop read but did not handle; the main loop
	// drains these before blocking on the connection again.
	pending []xgb.Event

	// Sequence number of the last sync that invalidated queued enter
	// notifies. Anything at or before it is stale.
	staleEnters uint16

	pidmu         sync.Mutex
	autostartPids []int
}

// Client is one managed window. While a terminal has swallowed another
// client, win keeps naming the terminal's own (unmapped) window and the
// swallowed client's window is the one shown on screen.
type Client struct {
	name       string
	mina, maxa float64

	x, y, w, h             int
	oldx, oldy, oldw, oldh int

	basew, baseh int
	incw, inch   int
	maxw, maxh   int
	minw, minh   int

	bw, oldbw int

	tags uint32

	isfixed      bool
	isfloating   bool
	isurgent     bool
	neverfocus   bool
	oldstate     bool
	isfullscreen bool
	isterminal   bool
	noswallow    bool

	pid       int
	win       xproto.Window
	swallowed *Client
	mon       *Monitor
}

// surface is the window currently representing the client on screen.
func (c *Client) surface() xproto.Window {
	if c.swallowed != nil {
		return c.swallowed.win
	}
	return c.win
}

// adoptSwallowed hands the swallowed window over to the record after the
// terminal's own window has been destroyed. This is the one place a
// client's win changes.
func (c *Client) adoptSwallowed() {
	c.win = c.swallowed.win
	c.swallowed = nil
}

func (c *Client) width() int  { return c.w + 2*c.bw }
func (c *Client) height() int { return c.h + 2*c.bw }

func (c *Client) visible() bool {
	return c.tags&c.mon.tagset[c.mon.seltags] != 0
}

// enterFullscreen records the pre-fullscreen state. It reports false if
// the client already was fullscreen.
func (c *Client) enterFullscreen() bool {
	if c.isfullscreen {
		return false
	}
	c.isfullscreen = true
	c.oldstate = c.isfloating
	c.oldbw = c.bw
	c.bw = 0
	c.isfloating = true
	return true
}

// exitFullscreen restores the state and geometry saved on entry.
func (c *Client) exitFullscreen() bool {
	if !c.isfullscreen {
		return false
	}
	c.isfullscreen = false
	c.isfloating = c.oldstate
	c.bw = c.oldbw
	c.x, c.y, c.w, c.h = c.oldx, c.oldy, c.oldw, c.oldh
	return true
}

// toggleTag xors tags into the client's tag set, refusing a result with
// no tags at all.
func (c *Client) toggleTag(tags uint32) bool {
	if c.tags^tags == 0 {
		return false
	}
	c.tags ^= tags
	return true
}

// Monitor is one Xinerama head with its own client registry, focus
// stack, tag state and bar windows. clients holds every client of the
// monitor in attach order, stack the same set in focus order.
type Monitor struct {
	num      int
	ltsymbol string
	mfact    float64
	nmaster  int

	mx, my, mw, mh int // monitor geometry
	wx, wy, ww, wh int // window area, minus bar and tab strip
	by, ty         int // bar and tab strip y offsets

	gappoh, gappov int // outer gaps
	gappih, gappiv int // inner gaps

	seltags int
	sellt   int
	tagset  [2]uint32

	showbar bool
	topbar  bool
	toptab  bool

	clients []*Client
	stack   []*Client
	sel     *Client

	bar *barWindow
	tab *barWindow

	ntabs     int
	tabWidths []int // cell widths of the tab strip, for click resolution

	lt     [2]layout.Kind
	pertag *pertag
}

// pertag remembers layout parameters per tag so that switching views
// restores them. Index 0 is the "all tags" view, index i the tag i.
type pertag struct {
	curtag, prevtag int
	nmasters        []int
	mfacts          []float64
	sellts          []int
	ltidxs          [][2]layout.Kind
	showbars        []bool
}

func newPertag(m *Monitor, numtags int) *pertag {
	p := &pertag{
		curtag:   1,
		prevtag:  1,
		nmasters: make([]int, numtags+1),
		mfacts:   make([]float64, numtags+1),
		sellts:   make([]int, numtags+1),
		ltidxs:   make([][2]layout.Kind, numtags+1),
		showbars: make([]bool, numtags+1),
	}
	for i := 0; i <= numtags; i++ {
		p.nmasters[i] = m.nmaster
		p.mfacts[i] = m.mfact
		p.sellts[i] = m.sellt
		p.ltidxs[i] = m.lt
		p.showbars[i] = m.showbar
	}
	return p
}

// applyPertag loads the remembered parameters of the current tag into
// the monitor.
func (m *Monitor) applyPertag() {
	p := m.pertag
	m.nmaster = p.nmasters[p.curtag]
	m.mfact = p.mfacts[p.curtag]
	m.sellt = p.sellts[p.curtag]
	m.lt[m.sellt] = p.ltidxs[p.curtag][m.sellt]
	m.lt[m.sellt^1] = p.ltidxs[p.curtag][m.sellt^1]
}

func (m *Monitor) attach(c *Client) {
	m.clients = append(m.clients, nil)
	copy(m.clients[1:], m.clients)
	m.clients[0] = c
}

func (m *Monitor) detach(c *Client) {
	for i, v := range m.clients {
		if v == c {
			m.clients = append(m.clients[:i], m.clients[i+1:]...)
			return
		}
	}
}

func (m *Monitor) attachstack(c *Client) {
	m.stack = append(m.stack, nil)
	copy(m.stack[1:], m.stack)
	m.stack[0] = c
}

func (m *Monitor) detachstack(c *Client) {
	for i, v := range m.stack {
		if v == c {
			m.stack = append(m.stack[:i], m.stack[i+1:]...)
			break
		}
	}
	if c == m.sel {
		m.sel = m.firstVisibleStack()
	}
}

func (m *Monitor) firstVisibleStack() *Client {
	for _, c := range m.stack {
		if c.visible() {
			return c
		}
	}
	return nil
}

// tiled returns the visible, non-floating clients in attach order.
func (m *Monitor) tiled() []*Client {
	var ts []*Client
	for _, c := range m.clients {
		if !c.isfloating && c.visible() {
			ts = append(ts, c)
		}
	}
	return ts
}

// selectView switches the selected tag set, restoring the remembered
// per-tag parameters. mask bounds the usable tag bits. It reports
// whether anything changed and whether bar visibility must be toggled.
func (m *Monitor) selectView(tags, mask uint32) (changed, barChanged bool) {
	if tags&mask == m.tagset[m.seltags] {
		return false, false
	}
	m.seltags ^= 1
	p := m.pertag
	if tags&mask != 0 {
		m.tagset[m.seltags] = tags & mask
		p.prevtag = p.curtag
		if tags == ^uint32(0) {
			p.curtag = 0
		} else {
			p.curtag = bits.TrailingZeros32(tags) + 1
		}
	} else {
		p.curtag, p.prevtag = p.prevtag, p.curtag
	}
	m.applyPertag()
	return true, m.showbar != p.showbars[p.curtag]
}

// toggleViewTags xors tags into the selected tag set, refusing an empty
// result, and keeps the per-tag bookkeeping pointed at a selected tag.
func (m *Monitor) toggleViewTags(tags, mask uint32) (changed, barChanged bool) {
	newset := m.tagset[m.seltags] ^ (tags & mask)
	if newset == 0 {
		return false, false
	}
	m.tagset[m.seltags] = newset
	p := m.pertag
	if p.curtag == 0 || newset&(1<<uint(p.curtag-1)) == 0 {
		p.prevtag = p.curtag
		p.curtag = bits.TrailingZeros32(newset) + 1
	}
	m.applyPertag()
	return true, m.showbar != p.showbars[p.curtag]
}

// organizeTags renumbers every client's tag down to the lowest free
// one, so tags 1..n end up occupied without holes. Each client keeps
// only its lowest tag.
func (m *Monitor) organizeTags(numtags int) {
	var occ uint32
	for _, c := range m.clients {
		occ |= 1 << uint(bits.TrailingZeros32(c.tags))
	}
	tagdest := make([]int, numtags)
	unocc := 0
	for i := 0; i < numtags; i++ {
		for unocc < i && occ&(1<<uint(unocc)) != 0 {
			unocc++
		}
		if occ&(1<<uint(i)) != 0 {
			tagdest[i] = unocc
			occ &^= 1 << uint(i)
			occ |= 1 << uint(unocc)
		}
	}
	for _, c := range m.clients {
		c.tags = 1 << uint(tagdest[bits.TrailingZeros32(c.tags)])
	}
	if m.sel != nil {
		m.tagset[m.seltags] = m.sel.tags
	}
}

// shiftTags rotates a tag set left (dir > 0) or right (dir < 0) by dir
// positions within numtags bits.
func shiftTags(tagset uint32, dir, numtags int) uint32 {
	n := uint(numtags)
	if dir > 0 {
		return tagset<<uint(dir) | tagset>>(n-uint(dir))
	}
	return tagset>>uint(-dir) | tagset<<(n-uint(-dir))
}

// wintoclient resolves a window to its managed client. Displayed
// surfaces win over the hidden windows of swallowing terminals.
func (wm *WM) wintoclient(w xproto.Window) *Client {
	for _, m := range wm.mons {
		for _, c := range m.clients {
			if c.surface() == w {
				return c
			}
		}
	}
	for _, m := range wm.mons {
		for _, c := range m.clients {
			if c.swallowed != nil && c.win == w {
				return c
			}
		}
	}
	return nil
}

// recttomon returns the monitor whose window area overlaps the given
// rectangle the most, defaulting to the selected monitor.
func (wm *WM) recttomon(x, y, w, h int) *Monitor {
	r := wm.selmon
	area := 0
	rect := geom.Rect{X: x, Y: y, Width: w, Height: h}
	for _, m := range wm.mons {
		wa := geom.Rect{X: m.wx, Y: m.wy, Width: m.ww, Height: m.wh}
		if a := geom.Overlap(rect, wa); a > area {
			area, r = a, m
		}
	}
	return r
}

func (wm *WM) wintomon(w xproto.Window) *Monitor {
	if w == wm.root {
		if x, y, ok := wm.rootPointer(); ok {
			return wm.recttomon(x, y, 1, 1)
		}
	}
	for _, m := range wm.mons {
		if m.bar != nil && (w == m.bar.Win() || w == m.tab.Win()) {
			return m
		}
	}
	if c := wm.wintoclient(w); c != nil {
		return c.mon
	}
	return wm.selmon
}

func (wm *WM) dirtomon(dir int) *Monitor {
	i := 0
	for j, m := range wm.mons {
		if m == wm.selmon {
			i = j
			break
		}
	}
	n := len(wm.mons)
	if dir > 0 {
		return wm.mons[(i+1)%n]
	}
	return wm.mons[(i-1+n)%n]
}

func (wm *WM) rootPointer() (x, y int, ok bool) {
	reply, err := xproto.QueryPointer(wm.conn, wm.root).Reply()
	if err != nil {
		should(err)
		return 0, 0, false
	}
	return int(reply.RootX), int(reply.RootY), true
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func should(err error) {
	if err != nil {
		log.Error("x request failed", "err", err)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
