package layout

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/loannaflip/dynamd/internal/geom"
)

var area = geom.Rect{X: 0, Y: 0, Width: 1200, Height: 800}

func params(n int) Params {
	return Params{Area: area, N: n, NMaster: 1, MFact: 0.5, Bw: 0, MinH: 32}
}

var arrangeTests = []struct {
	name string
	kind Kind
	p    Params
	want []geom.Rect
}{
	{
		name: "tile master and stack",
		kind: Tile,
		p:    Params{Area: area, N: 3, NMaster: 1, MFact: 0.6, MinH: 32},
		want: []geom.Rect{
			{X: 0, Y: 0, Width: 720, Height: 800},
			{X: 720, Y: 0, Width: 480, Height: 400},
			{X: 720, Y: 400, Width: 480, Height: 400},
		},
	},
	{
		name: "tile single client ignores outer gaps",
		kind: Tile,
		p: Params{
			Area: area, N: 1, NMaster: 1, MFact: 0.6, MinH: 32, Bw: 2,
			Gaps: Gaps{OuterH: 10, OuterV: 10, InnerH: 10, InnerV: 10}, GapsOn: true,
		},
		want: []geom.Rect{
			{X: 0, Y: 0, Width: 1196, Height: 796},
		},
	},
	{
		name: "tile with gaps and borders",
		kind: Tile,
		p: Params{
			Area: geom.Rect{Width: 1000, Height: 600}, N: 2, NMaster: 1, MFact: 0.5, MinH: 32, Bw: 2,
			Gaps: Gaps{OuterH: 10, OuterV: 10, InnerH: 10, InnerV: 10}, GapsOn: true,
		},
		want: []geom.Rect{
			{X: 10, Y: 10, Width: 481, Height: 576},
			{X: 505, Y: 10, Width: 481, Height: 576},
		},
	},
	{
		name: "monocle maximizes every client",
		kind: Monocle,
		p: Params{
			Area: area, N: 3, NMaster: 1, MFact: 0.5, MinH: 32, Bw: 2,
			Gaps: Gaps{OuterH: 10, OuterV: 10, InnerH: 10, InnerV: 10}, GapsOn: true,
		},
		want: []geom.Rect{
			{X: 0, Y: 0, Width: 1196, Height: 796},
			{X: 0, Y: 0, Width: 1196, Height: 796},
			{X: 0, Y: 0, Width: 1196, Height: 796},
		},
	},
	{
		name: "deck collapses the stack",
		kind: Deck,
		p:    params(3),
		want: []geom.Rect{
			{X: 0, Y: 0, Width: 600, Height: 800},
			{X: 600, Y: 0, Width: 600, Height: 800},
			{X: 600, Y: 0, Width: 600, Height: 800},
		},
	},
	{
		name: "bstack puts the stack below",
		kind: BStack,
		p:    params(3),
		want: []geom.Rect{
			{X: 0, Y: 0, Width: 1200, Height: 400},
			{X: 0, Y: 400, Width: 600, Height: 400},
			{X: 600, Y: 400, Width: 600, Height: 400},
		},
	},
	{
		name: "bstackhoriz stacks the bottom row",
		kind: BStackHoriz,
		p:    params(3),
		want: []geom.Rect{
			{X: 0, Y: 0, Width: 1200, Height: 400},
			{X: 0, Y: 400, Width: 1200, Height: 200},
			{X: 0, Y: 600, Width: 1200, Height: 200},
		},
	},
	{
		name: "centeredmaster centers with two side stacks",
		kind: CenteredMaster,
		p:    params(3),
		want: []geom.Rect{
			{X: 300, Y: 0, Width: 600, Height: 800},
			{X: 900, Y: 0, Width: 300, Height: 800},
			{X: 0, Y: 0, Width: 300, Height: 800},
		},
	},
	{
		name: "centeredmaster single stack client goes right",
		kind: CenteredMaster,
		p:    params(2),
		want: []geom.Rect{
			{X: 0, Y: 0, Width: 600, Height: 800},
			{X: 600, Y: 0, Width: 600, Height: 800},
		},
	},
	{
		name: "grid fills column major",
		kind: Grid,
		p:    params(3),
		want: []geom.Rect{
			{X: 0, Y: 0, Width: 600, Height: 400},
			{X: 0, Y: 400, Width: 600, Height: 400},
			{X: 600, Y: 0, Width: 600, Height: 400},
		},
	},
	{
		name: "gaplessgrid five clients split two to three",
		kind: GaplessGrid,
		p:    params(5),
		want: []geom.Rect{
			{X: 0, Y: 0, Width: 600, Height: 400},
			{X: 0, Y: 400, Width: 600, Height: 400},
			{X: 600, Y: 0, Width: 600, Height: 267},
			{X: 600, Y: 267, Width: 600, Height: 267},
			{X: 600, Y: 534, Width: 600, Height: 266},
		},
	},
	{
		name: "horizgrid splits top and bottom",
		kind: HorizGrid,
		p:    params(3),
		want: []geom.Rect{
			{X: 0, Y: 0, Width: 1200, Height: 400},
			{X: 0, Y: 400, Width: 600, Height: 400},
			{X: 600, Y: 400, Width: 600, Height: 400},
		},
	},
	{
		name: "horizgrid single row keeps inner gaps inside the area",
		kind: HorizGrid,
		p: Params{
			Area: geom.Rect{Width: 1000, Height: 600}, N: 2, NMaster: 1, MFact: 0.5, MinH: 32,
			Gaps: Gaps{OuterH: 10, OuterV: 10, InnerH: 10, InnerV: 10}, GapsOn: true,
		},
		want: []geom.Rect{
			{X: 10, Y: 10, Width: 485, Height: 580},
			{X: 505, Y: 10, Width: 485, Height: 580},
		},
	},
	{
		name: "dwindle shrinks toward bottom right",
		kind: Dwindle,
		p:    params(4),
		want: []geom.Rect{
			{X: 0, Y: 0, Width: 600, Height: 800},
			{X: 600, Y: 0, Width: 600, Height: 400},
			{X: 600, Y: 400, Width: 300, Height: 400},
			{X: 900, Y: 400, Width: 300, Height: 400},
		},
	},
	{
		name: "spiral turns back inward",
		kind: Spiral,
		p:    params(4),
		want: []geom.Rect{
			{X: 0, Y: 0, Width: 600, Height: 800},
			{X: 600, Y: 0, Width: 600, Height: 400},
			{X: 900, Y: 400, Width: 300, Height: 400},
			{X: 600, Y: 400, Width: 300, Height: 400},
		},
	},
	{
		name: "fibonacci stops splitting below the floor",
		kind: Dwindle,
		p:    Params{Area: geom.Rect{Width: 1200, Height: 100}, N: 5, NMaster: 1, MFact: 0.5, MinH: 32},
		want: []geom.Rect{
			{X: 0, Y: 0, Width: 600, Height: 100},
			{X: 600, Y: 0, Width: 600, Height: 50},
			{X: 600, Y: 50, Width: 300, Height: 50},
			{X: 900, Y: 50, Width: 300, Height: 50},
			{X: 900, Y: 50, Width: 300, Height: 50},
		},
	},
}

func TestArrange(t *testing.T) {
	for _, tt := range arrangeTests {
		got := Arrange(tt.kind, tt.p)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("%s: Arrange(%v) mismatch (-want +got):\n%s", tt.name, tt.kind, diff)
		}
	}
}

func TestArrangeEmpty(t *testing.T) {
	if got := Arrange(Tile, Params{Area: area, N: 0, NMaster: 1, MFact: 0.5}); got != nil {
		t.Errorf("Arrange with no clients = %v, want nil", got)
	}
	if got := Arrange(Floating, params(3)); got != nil {
		t.Errorf("Arrange(Floating) = %v, want nil", got)
	}
}

// Layouts that tile must consume the window area exactly: no pixel lost
// to integer division, no overlap, nothing outside the area.
func TestArrangePartitionsArea(t *testing.T) {
	kinds := []Kind{Tile, Deck, BStack, BStackHoriz, GaplessGrid, HorizGrid, CenteredMaster, Dwindle, Spiral}
	areas := []geom.Rect{
		{Width: 1200, Height: 800},
		{Width: 1201, Height: 799},
		{X: 1200, Y: 32, Width: 1366, Height: 736},
	}
	for _, k := range kinds {
		for _, a := range areas {
			for _, nmaster := range []int{1, 2} {
				for n := 1; n <= 7; n++ {
					if k == Deck && n > nmaster+1 {
						// deck stacks surplus clients on one cell
						continue
					}
					p := Params{Area: a, N: n, NMaster: nmaster, MFact: 0.55, MinH: 32}
					rects := Arrange(k, p)
					if len(rects) != n {
						t.Fatalf("%v: got %d rects for %d clients", k, len(rects), n)
					}
					total := 0
					for i, r := range rects {
						if r.Width <= 0 || r.Height <= 0 {
							t.Errorf("%v n=%d nmaster=%d area=%v: rect %d is degenerate: %v", k, n, nmaster, a, i, r)
						}
						if r.X < a.X || r.Y < a.Y || r.Right() > a.Right() || r.Bottom() > a.Bottom() {
							t.Errorf("%v n=%d nmaster=%d area=%v: rect %d outside area: %v", k, n, nmaster, a, i, r)
						}
						total += r.Width * r.Height
						for j := i + 1; j < len(rects); j++ {
							if ov := geom.Overlap(r, rects[j]); ov != 0 {
								t.Errorf("%v n=%d nmaster=%d area=%v: rects %d and %d overlap by %d", k, n, nmaster, a, i, j, ov)
							}
						}
					}
					if want := a.Width * a.Height; total != want {
						t.Errorf("%v n=%d nmaster=%d area=%v: covered %d of %d pixels", k, n, nmaster, a, total, want)
					}
				}
			}
		}
	}
}

// Monocle, deck and the floating centered master overlap on purpose but
// must still stay inside the window area, gaps and borders included.
func TestArrangeStaysInside(t *testing.T) {
	kinds := []Kind{Monocle, Deck, Grid, CenteredFloatingMaster}
	a := geom.Rect{X: 1200, Y: 32, Width: 1200, Height: 768}
	for _, k := range kinds {
		for n := 1; n <= 5; n++ {
			p := Params{
				Area: a, N: n, NMaster: 1, MFact: 0.55, Bw: 2, MinH: 32,
				Gaps: Gaps{OuterH: 5, OuterV: 5, InnerH: 5, InnerV: 5}, GapsOn: true,
			}
			for i, r := range Arrange(k, p) {
				if r.Width <= 0 || r.Height <= 0 {
					t.Errorf("%v n=%d: rect %d is degenerate: %v", k, n, i, r)
				}
				if r.X < a.X || r.Y < a.Y || r.Right()+2*p.Bw > a.Right() || r.Bottom()+2*p.Bw > a.Bottom() {
					t.Errorf("%v n=%d: rect %d outside area %v: %v", k, n, i, a, r)
				}
			}
		}
	}
}

var cycleTests = []struct {
	from Kind
	dir  int
	want Kind
}{
	{Tile, 1, Deck},
	{Monocle, -1, CenteredMaster},
	{Floating, 1, CenteredMaster},
	{CenteredMaster, -1, Floating},
	{Tile, Count, Tile},
}

func TestCycle(t *testing.T) {
	for _, tt := range cycleTests {
		if got := Cycle(tt.from, tt.dir); got != tt.want {
			t.Errorf("Cycle(%v, %d) = %v, want %v", tt.from, tt.dir, got, tt.want)
		}
	}
}

func TestByName(t *testing.T) {
	for k := Kind(0); int(k) < Count; k++ {
		got, ok := ByName(k.String())
		if !ok || got != k {
			t.Errorf("ByName(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ByName("cascade"); ok {
		t.Error("ByName accepted an unknown layout name")
	}
}

func TestSymbol(t *testing.T) {
	if got := Tile.Symbol(); got != "[T]" {
		t.Errorf("Tile.Symbol() = %q", got)
	}
	if got := Kind(99).Symbol(); got != "[?]" {
		t.Errorf("out of range Symbol() = %q", got)
	}
}
