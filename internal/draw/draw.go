// Package draw renders filled rectangles and core-font text onto X
// windows. Graphics contexts are cached per window and parameter set so
// repaints reuse them.
package draw

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

type gcSpec struct {
	mask uint32
	fg   uint32
	bg   uint32
	font xproto.Font
	win  xproto.Window
}

type GCs map[gcSpec]xproto.Gcontext

// Drawable is a window that carries its own GC cache.
type Drawable interface {
	GCs() GCs
	Win() xproto.Window
	X() *xgbutil.XUtil
}

// Fill paints the rectangle in the foreground color. Degenerate
// rectangles are ignored.
func Fill(d Drawable, x, y, w, h int, fg uint32) {
	if w <= 0 || h <= 0 {
		return
	}
	spec := gcSpec{
		mask: uint32(xproto.GcForeground),
		fg:   fg,
		win:  d.Win(),
	}

	gcs := d.GCs()
	gc, ok := gcs[spec]
	if !ok {
		gc, _ = xproto.NewGcontextId(d.X().Conn())
		xproto.CreateGC(d.X().Conn(), gc, xproto.Drawable(d.Win()), spec.mask,
			[]uint32{fg})
		gcs[spec] = gc
	}

	xproto.PolyFillRectangle(d.X().Conn(), xproto.Drawable(d.Win()), gc,
		[]xproto.Rectangle{{X: int16(x), Y: int16(y), Width: uint16(w), Height: uint16(h)}})
}

// Text draws text with its top-left corner at x, y and returns the
// extent it covered. Drawing is fire and forget; a vanished window
// surfaces as an ignorable asynchronous error.
func Text(d Drawable, text string, font xproto.Font, fg, bg uint32,
	x int, y int) (w int, h int) {

	spec := gcSpec{
		mask: uint32(xproto.GcForeground | xproto.GcBackground | xproto.GcFont),
		fg:   fg,
		bg:   bg,
		font: font,
		win:  d.Win(),
	}

	gcs := d.GCs()
	gc, ok := gcs[spec]
	if !ok {
		gc, _ = xproto.NewGcontextId(d.X().Conn())
		xproto.CreateGC(d.X().Conn(), gc, xproto.Drawable(d.Win()), spec.mask,
			[]uint32{fg, bg, uint32(font)})
		gcs[spec] = gc
	}

	chars, n := toChar2b([]rune(text))
	ex, err := xproto.QueryTextExtents(d.X().Conn(), xproto.Fontable(font), chars, uint16(len(chars))).Reply()
	if err != nil {
		return 0, 0
	}

	y += int(ex.FontAscent)
	xproto.ImageText16(d.X().Conn(), byte(n), xproto.Drawable(d.Win()), gc,
		int16(x), int16(y), chars)

	return int(ex.OverallRight), int(ex.FontAscent) + int(ex.FontDescent)
}

// Width measures text without drawing it.
func Width(xu *xgbutil.XUtil, font xproto.Font, text string) int {
	chars, _ := toChar2b([]rune(text))
	ex, err := xproto.QueryTextExtents(xu.Conn(), xproto.Fontable(font), chars, uint16(len(chars))).Reply()
	if err != nil {
		return 0
	}
	return int(ex.OverallRight)
}

// OpenFont opens a core font by XLFD pattern or alias.
func OpenFont(xu *xgbutil.XUtil, name string) (xproto.Font, error) {
	font, err := xproto.NewFontId(xu.Conn())
	if err != nil {
		return 0, err
	}
	if err := xproto.OpenFontChecked(xu.Conn(), font, uint16(len(name)), name).Check(); err != nil {
		return 0, err
	}
	return font, nil
}

// FontHeight returns the ascent and descent of an open font.
func FontHeight(xu *xgbutil.XUtil, font xproto.Font) (ascent, descent int, err error) {
	fi, err := xproto.QueryFont(xu.Conn(), xproto.Fontable(font)).Reply()
	if err != nil {
		return 0, 0, err
	}
	return int(fi.FontAscent), int(fi.FontDescent), nil
}

// ParseColor turns "#rrggbb" into a TrueColor pixel value.
func ParseColor(s string) (uint32, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return 0, fmt.Errorf("color %q is not #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q is not #rrggbb", s)
	}
	return uint32(v), nil
}

func toChar2b(runes []rune) ([]xproto.Char2b, int) {
	ucs2 := utf16.Encode(runes)
	if len(ucs2) > 255 {
		ucs2 = ucs2[:255]
	}
	var chars []xproto.Char2b
	for _, r := range ucs2 {
		chars = append(chars, xproto.Char2b{Byte1: byte(r >> 8), Byte2: byte(r)})
	}
	return chars, len(chars)
}
