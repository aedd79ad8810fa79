// Package layout computes client rectangles for every arrangement the
// window manager offers. It is pure geometry: callers describe the usable
// area and the tiling parameters, the package returns one rectangle per
// tiled client in traversal order. Nothing in here talks to the X server.
package layout

import "github.com/loannaflip/dynamd/internal/geom"

// Kind identifies one arrangement from the fixed layout table. Layouts
// are selected and compared by Kind, never by function identity.
type Kind int

const (
	CenteredMaster Kind = iota
	Monocle
	Tile
	Deck
	Dwindle
	Spiral
	Grid
	HorizGrid
	GaplessGrid
	BStack
	BStackHoriz
	CenteredFloatingMaster
	// Floating disables arrangement entirely; clients keep their own
	// geometry.
	Floating
)

// Count is the number of table entries, for cycling.
const Count = int(Floating) + 1

var symbols = [...]string{
	CenteredMaster:         "[|W|]",
	Monocle:                "[M]",
	Tile:                   "[T]",
	Deck:                   "[D]",
	Dwindle:                "[@~]",
	Spiral:                 "[~@]",
	Grid:                   "[G]",
	HorizGrid:              "[GH]",
	GaplessGrid:            "[:G:]",
	BStack:                 "[TTT]",
	BStackHoriz:            "[===]",
	CenteredFloatingMaster: "[|=|]",
	Floating:               "[=]",
}

var names = [...]string{
	CenteredMaster:         "centeredmaster",
	Monocle:                "monocle",
	Tile:                   "tile",
	Deck:                   "deck",
	Dwindle:                "dwindle",
	Spiral:                 "spiral",
	Grid:                   "grid",
	HorizGrid:              "horizgrid",
	GaplessGrid:            "gaplessgrid",
	BStack:                 "bstack",
	BStackHoriz:            "bstackhoriz",
	CenteredFloatingMaster: "centeredfloatingmaster",
	Floating:               "floating",
}

// Symbol returns the bar glyph for k.
func (k Kind) Symbol() string {
	if k < 0 || int(k) >= len(symbols) {
		return "[?]"
	}
	return symbols[k]
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(names) {
		return "unknown"
	}
	return names[k]
}

// ByName resolves a config-file layout name to its Kind.
func ByName(name string) (Kind, bool) {
	for k, n := range names {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// Cycle returns the table entry dir steps away from k, wrapping around.
func Cycle(k Kind, dir int) Kind {
	n := (int(k) + dir) % Count
	if n < 0 {
		n += Count
	}
	return Kind(n)
}

// Gaps holds the configured gap widths in pixels. Outer gaps pad the
// screen edge, inner gaps separate adjacent clients.
type Gaps struct {
	OuterH int
	OuterV int
	InnerH int
	InnerV int
}

// Params describes one monitor's arrange call.
type Params struct {
	// Area is the monitor's window area (screen minus bar and tab strip).
	Area geom.Rect
	// N is the number of tiled, visible clients to place.
	N int
	// NMaster and MFact select the master area split.
	NMaster int
	MFact   float64
	// Gaps are the raw configured gaps; GapsOn is the global enable.
	Gaps   Gaps
	GapsOn bool
	// Bw is the uniform client border width. Every returned rectangle
	// is the client body: the cell minus twice the border.
	Bw int
	// MinH is the smallest useful client height (the bar height). The
	// fibonacci family stops subdividing below it.
	MinH int
}

// resolve returns the effective gap widths for n tiled clients. Outer
// gaps drop out when a single client fills the area.
func (p Params) resolve() (oh, ov, ih, iv int) {
	oe, ie := 1, 1
	if !p.GapsOn {
		oe, ie = 0, 0
	}
	if p.N == 1 {
		oe = 0
	}
	return p.Gaps.OuterH * oe, p.Gaps.OuterV * oe, p.Gaps.InnerH * ie, p.Gaps.InnerV * ie
}

// Arrange returns the rectangle for each of p.N tiled clients under k,
// in client-list order. Floating returns nil: those clients place
// themselves.
func Arrange(k Kind, p Params) []geom.Rect {
	if p.N <= 0 {
		return nil
	}
	switch k {
	case CenteredMaster:
		return centeredmaster(p)
	case Monocle:
		return monocle(p)
	case Tile:
		return tile(p)
	case Deck:
		return deck(p)
	case Dwindle:
		return fibonacci(p, true)
	case Spiral:
		return fibonacci(p, false)
	case Grid:
		return grid(p)
	case HorizGrid:
		return horizgrid(p)
	case GaplessGrid:
		return gaplessgrid(p)
	case BStack:
		return bstack(p)
	case BStackHoriz:
		return bstackhoriz(p)
	case CenteredFloatingMaster:
		return centeredfloatingmaster(p)
	}
	return nil
}

// facts computes the per-area remainder split: the first rest clients of
// an area sized size, divided count ways, get one extra pixel so the
// column consumes size exactly.
func facts(p Params, msize, ssize int) (mfacts, sfacts, mrest, srest int) {
	mfacts = min(p.N, p.NMaster)
	sfacts = p.N - p.NMaster
	mtotal, stotal := 0, 0
	if mfacts > 0 {
		mtotal = msize / mfacts * mfacts
	}
	if sfacts > 0 {
		stotal = ssize / sfacts * sfacts
	}
	return mfacts, sfacts, msize - mtotal, ssize - stotal
}

func min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func max(x, y int) int {
	if x > y {
		return x
	}
	return y
}
