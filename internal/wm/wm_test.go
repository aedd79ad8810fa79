package wm

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/loannaflip/dynamd/internal/config"
	"github.com/loannaflip/dynamd/internal/geom"
	"github.com/loannaflip/dynamd/internal/layout"
)

func testWM(t *testing.T, heads ...geom.Rect) *WM {
	t.Helper()
	cfg := config.Default()
	wm := &WM{
		cfg:     cfg,
		bh:      barHeight,
		th:      tabHeight,
		tagmask: 1<<uint(len(cfg.Tags)) - 1,
	}
	if len(heads) == 0 {
		heads = []geom.Rect{{Width: 1920, Height: 1080}}
	}
	wm.reconcile(heads)
	wm.selmon = wm.mons[0]
	return wm
}

func addClient(m *Monitor, tags uint32) *Client {
	c := &Client{tags: tags, mon: m, w: 100, h: 100}
	m.attach(c)
	m.attachstack(c)
	return c
}

// checkMembers asserts the registry and the focus stack of every
// monitor hold exactly the same client set.
func checkMembers(t *testing.T, wm *WM) {
	t.Helper()
	for _, m := range wm.mons {
		if len(m.clients) != len(m.stack) {
			t.Fatalf("monitor %d: %d clients but %d stacked", m.num, len(m.clients), len(m.stack))
		}
		for _, c := range m.clients {
			found := false
			for _, s := range m.stack {
				if s == c {
					found = true
					break
				}
			}
			if !found {
				t.Fatalf("monitor %d: client %p missing from stack", m.num, c)
			}
		}
	}
}

func TestAttachDetach(t *testing.T) {
	wm := testWM(t)
	m := wm.mons[0]
	a := addClient(m, 1)
	b := addClient(m, 1)
	checkMembers(t, wm)

	// newest client heads both lists
	if m.clients[0] != b || m.stack[0] != b {
		t.Fatal("attach did not prepend")
	}

	m.detach(b)
	m.detachstack(b)
	checkMembers(t, wm)
	if len(m.clients) != 1 || m.clients[0] != a {
		t.Fatal("detach removed the wrong client")
	}
}

func TestDetachstackRefallsBack(t *testing.T) {
	wm := testWM(t)
	m := wm.mons[0]
	a := addClient(m, 1)
	b := addClient(m, 1)
	hidden := addClient(m, 2) // not on the selected tag
	m.sel = hidden

	m.detachstack(hidden)
	if m.sel != b && m.sel != a {
		t.Fatalf("sel = %p, want a visible client", m.sel)
	}
	if !m.sel.visible() {
		t.Fatal("fallback selection is not visible")
	}
}

func TestToggleTagNeverEmpty(t *testing.T) {
	wm := testWM(t)
	c := addClient(wm.mons[0], 1)

	if c.toggleTag(1) {
		t.Fatal("toggling the only tag off must be refused")
	}
	if c.tags != 1 {
		t.Fatalf("tags = %b, want 1", c.tags)
	}
	if !c.toggleTag(2) {
		t.Fatal("adding a second tag must succeed")
	}
	if c.tags != 3 {
		t.Fatalf("tags = %b, want 11", c.tags)
	}
}

func TestSelectViewPertag(t *testing.T) {
	wm := testWM(t)
	m := wm.mons[0]

	// tune tag 1, then switch to tag 2 and tune differently
	m.nmaster = 3
	m.mfact = 0.7
	m.lt[m.sellt] = layout.BStack
	m.pertag.nmasters[1] = 3
	m.pertag.mfacts[1] = 0.7
	m.pertag.ltidxs[1][m.sellt] = layout.BStack

	if changed, _ := m.selectView(1<<1, wm.tagmask); !changed {
		t.Fatal("switching to tag 2 reported no change")
	}
	m.nmaster = 1
	m.pertag.nmasters[2] = 1

	if changed, _ := m.selectView(1<<0, wm.tagmask); !changed {
		t.Fatal("switching back to tag 1 reported no change")
	}
	if m.nmaster != 3 || m.mfact != 0.7 || m.lt[m.sellt] != layout.BStack {
		t.Fatalf("pertag not restored: nmaster=%d mfact=%v lt=%v", m.nmaster, m.mfact, m.lt[m.sellt])
	}
}

func TestSelectViewSameTagsNoop(t *testing.T) {
	wm := testWM(t)
	m := wm.mons[0]
	if changed, _ := m.selectView(1, wm.tagmask); changed {
		t.Fatal("re-viewing the current tag set must be a no-op")
	}
	if m.tagset[m.seltags] != 1 {
		t.Fatalf("tagset = %b, want 1", m.tagset[m.seltags])
	}
}

func TestSelectViewZeroFlipsBack(t *testing.T) {
	wm := testWM(t)
	m := wm.mons[0]
	m.selectView(1<<4, wm.tagmask)
	m.selectView(0, wm.tagmask) // view-prev
	if m.tagset[m.seltags] != 1 {
		t.Fatalf("tagset = %b, want the previous view 1", m.tagset[m.seltags])
	}
	if m.pertag.curtag != 1 {
		t.Fatalf("curtag = %d, want 1", m.pertag.curtag)
	}
}

func TestToggleViewRefusesEmpty(t *testing.T) {
	wm := testWM(t)
	m := wm.mons[0]
	if changed, _ := m.toggleViewTags(1, wm.tagmask); changed {
		t.Fatal("clearing the last view bit must be refused")
	}
	if changed, _ := m.toggleViewTags(1<<2, wm.tagmask); !changed {
		t.Fatal("adding a view bit must succeed")
	}
	if m.tagset[m.seltags] != 1|1<<2 {
		t.Fatalf("tagset = %b, want 101", m.tagset[m.seltags])
	}
}

func TestOrganizeTags(t *testing.T) {
	wm := testWM(t)
	m := wm.mons[0]
	a := addClient(m, 1<<6)
	b := addClient(m, 1<<3)
	c := addClient(m, 1<<3)

	m.organizeTags(len(wm.cfg.Tags))

	if b.tags != 1 || c.tags != 1 {
		t.Fatalf("tag 4 clients moved to %b and %b, want 1", b.tags, c.tags)
	}
	if a.tags != 1<<1 {
		t.Fatalf("tag 7 client moved to %b, want 10", a.tags)
	}
}

func TestShiftTags(t *testing.T) {
	var tests = []struct {
		tagset uint32
		dir    int
		want   uint32
	}{
		{1, 1, 2},
		{2, -1, 1},
		{1 << 24, 1, 1},       // wraps forward past tag 25
		{1, -1, 1 << 24},      // wraps backward
		{1 | 1<<24, 1, 2 | 1}, // every bit moves
	}
	for _, tt := range tests {
		if got := shiftTags(tt.tagset, tt.dir, 25); got != tt.want {
			t.Errorf("shiftTags(%b, %d) = %b, want %b", tt.tagset, tt.dir, got, tt.want)
		}
	}
}

func TestFullscreenRoundTrip(t *testing.T) {
	wm := testWM(t)
	m := wm.mons[0]
	c := addClient(m, 1)
	c.x, c.y, c.w, c.h = 40, 60, 800, 600
	c.bw = 2
	c.isfloating = true

	if !c.enterFullscreen() {
		t.Fatal("enterFullscreen on a windowed client must succeed")
	}
	// mimic the resize to the full monitor rectangle
	c.oldx, c.x = c.x, m.mx
	c.oldy, c.y = c.y, m.my
	c.oldw, c.w = c.w, m.mw
	c.oldh, c.h = c.h, m.mh

	if c.bw != 0 || !c.isfullscreen {
		t.Fatal("fullscreen entry did not drop the border")
	}
	if c.enterFullscreen() {
		t.Fatal("re-entering fullscreen must be a no-op")
	}

	if !c.exitFullscreen() {
		t.Fatal("exitFullscreen must succeed")
	}
	got := [5]int{c.x, c.y, c.w, c.h, c.bw}
	want := [5]int{40, 60, 800, 600, 2}
	if got != want {
		t.Fatalf("geometry after round trip = %v, want %v", got, want)
	}
	if !c.isfloating {
		t.Fatal("floating flag not restored")
	}
	if c.exitFullscreen() {
		t.Fatal("exiting twice must be a no-op")
	}
}

func TestSwallowSurface(t *testing.T) {
	wm := testWM(t)
	m := wm.mons[0]
	term := addClient(m, 1)
	term.win = 100
	child := &Client{win: 200, mon: m, tags: 1}

	term.swallowed = child
	if term.surface() != 200 {
		t.Fatalf("surface = %d, want the swallowed window 200", term.surface())
	}
	if got := wm.wintoclient(200); got != term {
		t.Fatal("the displayed surface must resolve to the terminal record")
	}
	if got := wm.wintoclient(100); got != term {
		t.Fatal("the hidden terminal window must still resolve")
	}

	term.swallowed = nil
	if term.surface() != 100 {
		t.Fatalf("surface = %d, want the own window 100 again", term.surface())
	}
	if got := wm.wintoclient(200); got != nil {
		t.Fatal("released window must no longer resolve to the terminal")
	}
}

func TestAdoptSwallowed(t *testing.T) {
	wm := testWM(t)
	term := addClient(wm.mons[0], 1)
	term.win = 100
	term.swallowed = &Client{win: 200}

	term.adoptSwallowed()
	if term.win != 200 || term.swallowed != nil {
		t.Fatalf("adoption left win=%d swallowed=%v", term.win, term.swallowed)
	}
}

func TestReconcileGrowShrink(t *testing.T) {
	wm := testWM(t, geom.Rect{Width: 1920, Height: 1080})
	m0 := wm.mons[0]
	a := addClient(m0, 1)
	b := addClient(m0, 1<<3)

	two := []geom.Rect{
		{Width: 1920, Height: 1080},
		{X: 1920, Width: 1280, Height: 1024},
	}
	if !wm.reconcile(two) {
		t.Fatal("adding a head must report dirty")
	}
	if len(wm.mons) != 2 {
		t.Fatalf("len(mons) = %d, want 2", len(wm.mons))
	}
	if wm.reconcile(two) {
		t.Fatal("identical heads must not report dirty")
	}

	m1 := wm.mons[1]
	c := addClient(m1, 1)
	c.mon = m1

	if !wm.reconcile(two[:1]) {
		t.Fatal("removing a head must report dirty")
	}
	if len(wm.mons) != 1 {
		t.Fatalf("len(mons) = %d, want 1", len(wm.mons))
	}
	checkMembers(t, wm)
	for _, want := range []*Client{a, b, c} {
		if want.mon != wm.mons[0] {
			t.Fatalf("client %p not migrated", want)
		}
	}
	if b.tags != 1<<3 {
		t.Fatalf("migration changed tags to %b", b.tags)
	}
}

func TestUpdateBarPos(t *testing.T) {
	wm := testWM(t)
	m := wm.mons[0]

	m.updateBarPos(wm.bh, wm.th)
	if m.wy != m.my+wm.bh || m.wh != m.mh-wm.bh {
		t.Fatalf("top bar: wy=%d wh=%d", m.wy, m.wh)
	}
	if m.by != m.my {
		t.Fatalf("by = %d, want %d", m.by, m.my)
	}
	if m.ty != -wm.th {
		t.Fatalf("tab strip reserved without monocle: ty=%d", m.ty)
	}

	// two visible clients under monocle reserve the tab strip
	addClient(m, 1)
	addClient(m, 1)
	m.lt[m.sellt] = layout.Monocle
	m.updateBarPos(wm.bh, wm.th)
	if m.wh != m.mh-wm.bh-wm.th {
		t.Fatalf("monocle wh = %d, want %d", m.wh, m.mh-wm.bh-wm.th)
	}

	m.showbar = false
	m.updateBarPos(wm.bh, wm.th)
	if m.by != -wm.bh || m.wh != m.mh-wm.th {
		t.Fatalf("hidden bar: by=%d wh=%d", m.by, m.wh)
	}
}

func TestTabWidths(t *testing.T) {
	var tests = []struct {
		name   string
		widths []int
		total  int
		want   []int
	}{
		{
			name:   "everything fits",
			widths: []int{100, 200, 50},
			total:  400,
			want:   []int{100, 200, 50},
		},
		{
			name:   "widest labels share the remainder",
			widths: []int{50, 300, 300},
			total:  400,
			want:   []int{50, 175, 175},
		},
		{
			name:   "all equal and overflowing",
			widths: []int{200, 200, 200},
			total:  300,
			want:   []int{100, 100, 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tabWidths(tt.widths, tt.total)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tabWidths mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApplyPertagLayoutPair(t *testing.T) {
	wm := testWM(t)
	m := wm.mons[0]
	m.pertag.ltidxs[1] = [2]layout.Kind{layout.Spiral, layout.Grid}
	m.pertag.sellts[1] = 1
	m.applyPertag()
	if m.sellt != 1 || m.lt[0] != layout.Spiral || m.lt[1] != layout.Grid {
		t.Fatalf("applyPertag: sellt=%d lt=%v", m.sellt, m.lt)
	}
}
