package layout

import "github.com/loannaflip/dynamd/internal/geom"

// extra returns the remainder pixel for position i: the first rest
// clients in an area each absorb one leftover pixel of the integer
// split, so the area is consumed exactly.
func extra(i, rest int) int {
	if i < rest {
		return 1
	}
	return 0
}

// tile stacks up to NMaster clients vertically in a left master column
// sized by MFact and the rest vertically in a right stack column.
func tile(p Params) []geom.Rect {
	oh, ov, ih, iv := p.resolve()
	a := p.Area

	mx, my := a.X+ov, a.Y+oh
	mh := a.Height - 2*oh - ih*(min(p.N, p.NMaster)-1)
	sh := a.Height - 2*oh - ih*(p.N-p.NMaster-1)
	mw := a.Width - 2*ov
	sx, sy, sw := mx, my, mw

	if p.NMaster > 0 && p.N > p.NMaster {
		sw = int(float64(mw-iv) * (1 - p.MFact))
		mw = mw - iv - sw
		sx = mx + mw + iv
	}

	mfacts, sfacts, mrest, srest := facts(p, mh, sh)

	out := make([]geom.Rect, 0, p.N)
	for i := 0; i < p.N; i++ {
		if i < p.NMaster {
			h := mh/mfacts + extra(i, mrest)
			out = append(out, geom.Rect{X: mx, Y: my, Width: mw - 2*p.Bw, Height: h - 2*p.Bw})
			my += h + ih
		} else {
			h := sh/sfacts + extra(i-p.NMaster, srest)
			out = append(out, geom.Rect{X: sx, Y: sy, Width: sw - 2*p.Bw, Height: h - 2*p.Bw})
			sy += h + ih
		}
	}
	return out
}

// monocle maximizes every client over the whole window area. Gaps do
// not apply; the caller shows only the focused client.
func monocle(p Params) []geom.Rect {
	out := make([]geom.Rect, p.N)
	for i := range out {
		out[i] = geom.Rect{X: p.Area.X, Y: p.Area.Y, Width: p.Area.Width - 2*p.Bw, Height: p.Area.Height - 2*p.Bw}
	}
	return out
}

// deck is tile with the stack collapsed: stack clients all occupy the
// full stack column, like a deck of cards.
func deck(p Params) []geom.Rect {
	oh, ov, ih, iv := p.resolve()
	a := p.Area

	mx, my := a.X+ov, a.Y+oh
	mh := a.Height - 2*oh - ih*(min(p.N, p.NMaster)-1)
	mw := a.Width - 2*ov
	sx, sy, sh, sw := mx, my, mh, mw

	if p.NMaster > 0 && p.N > p.NMaster {
		sw = int(float64(mw-iv) * (1 - p.MFact))
		mw = mw - iv - sw
		sx = mx + mw + iv
		sh = a.Height - 2*oh
	}

	mfacts, _, mrest, _ := facts(p, mh, sh)

	out := make([]geom.Rect, 0, p.N)
	for i := 0; i < p.N; i++ {
		if i < p.NMaster {
			h := mh/mfacts + extra(i, mrest)
			out = append(out, geom.Rect{X: mx, Y: my, Width: mw - 2*p.Bw, Height: h - 2*p.Bw})
			my += h + ih
		} else {
			out = append(out, geom.Rect{X: sx, Y: sy, Width: sw - 2*p.Bw, Height: sh - 2*p.Bw})
		}
	}
	return out
}

// centeredmaster centers the master column and alternates the remaining
// clients between a left and a right stack.
func centeredmaster(p Params) []geom.Rect {
	oh, ov, ih, iv := p.resolve()
	a := p.Area
	nm := p.NMaster

	mx, my := a.X+ov, a.Y+oh
	mgaps := min(p.N, nm)
	if nm == 0 {
		mgaps = p.N
	}
	mh := a.Height - 2*oh - ih*(mgaps-1)
	mw := a.Width - 2*ov
	lh := a.Height - 2*oh - ih*((p.N-nm)/2-1)
	rgap := (p.N - nm) / 2
	if (p.N-nm)%2 == 0 {
		rgap--
	}
	rh := a.Height - 2*oh - ih*rgap

	var lx, ly, rx, ry, lw, rw int
	if nm > 0 && p.N > nm {
		if p.N-nm > 1 {
			mw = int(float64(a.Width-2*ov-2*iv) * p.MFact)
			lw = (a.Width - mw - 2*ov - 2*iv) / 2
			rw = (a.Width - mw - 2*ov - 2*iv) - lw
			mx += lw + iv
		} else {
			mw = int(float64(mw-iv) * p.MFact)
			lw = 0
			rw = a.Width - mw - iv - 2*ov
		}
		lx = a.X + ov
		ly = a.Y + oh
		rx = mx + mw + iv
		ry = a.Y + oh
	}

	var mfacts, lfacts, rfacts int
	for i := 0; i < p.N; i++ {
		if nm == 0 || i < nm {
			mfacts++
		} else if (i-nm)%2 != 0 {
			lfacts++
		} else {
			rfacts++
		}
	}
	mtotal, ltotal, rtotal := 0, 0, 0
	if mfacts > 0 {
		mtotal = mh / mfacts * mfacts
	}
	if lfacts > 0 {
		ltotal = lh / lfacts * lfacts
	}
	if rfacts > 0 {
		rtotal = rh / rfacts * rfacts
	}
	mrest := mh - mtotal
	lrest := lh - ltotal
	rrest := rh - rtotal

	out := make([]geom.Rect, 0, p.N)
	li, ri := 0, 0
	for i := 0; i < p.N; i++ {
		if nm == 0 || i < nm {
			h := mh/mfacts + extra(i, mrest)
			out = append(out, geom.Rect{X: mx, Y: my, Width: mw - 2*p.Bw, Height: h - 2*p.Bw})
			my += h + ih
		} else if (i-nm)%2 != 0 {
			h := lh/lfacts + extra(li, lrest)
			out = append(out, geom.Rect{X: lx, Y: ly, Width: lw - 2*p.Bw, Height: h - 2*p.Bw})
			ly += h + ih
			li++
		} else {
			h := rh/rfacts + extra(ri, rrest)
			out = append(out, geom.Rect{X: rx, Y: ry, Width: rw - 2*p.Bw, Height: h - 2*p.Bw})
			ry += h + ih
			ri++
		}
	}
	return out
}

// centeredfloatingmaster floats a centered master block over a single
// full-width row of stack clients.
func centeredfloatingmaster(p Params) []geom.Rect {
	oh, ov, _, iv := p.resolve()
	a := p.Area

	mivf := 1.0 // master inner gap factor
	mx, my := a.X+ov, a.Y+oh
	mh := a.Height - 2*oh
	mw := a.Width - 2*ov - iv*(p.N-1)
	sx, sy, sh := mx, my, mh
	sw := a.Width - 2*ov - iv*(p.N-p.NMaster-1)

	if p.NMaster > 0 && p.N > p.NMaster {
		mivf = 0.8
		if a.Width > a.Height {
			mw = int(float64(a.Width)*p.MFact - float64(iv)*mivf*float64(min(p.N, p.NMaster)-1))
			mh = int(float64(a.Height) * 0.9)
		} else {
			mw = int(float64(a.Width)*0.9 - float64(iv)*mivf*float64(min(p.N, p.NMaster)-1))
			mh = int(float64(a.Height) * p.MFact)
		}
		mx = a.X + (a.Width-mw)/2
		my = a.Y + (a.Height-mh-2*oh)/2
		sx = a.X + ov
		sy = a.Y + oh
		sh = a.Height - 2*oh
	}

	mfacts, sfacts, mrest, srest := facts(p, mw, sw)

	out := make([]geom.Rect, 0, p.N)
	for i := 0; i < p.N; i++ {
		if i < p.NMaster {
			w := mw/mfacts + extra(i, mrest)
			out = append(out, geom.Rect{X: mx, Y: my, Width: w - 2*p.Bw, Height: mh - 2*p.Bw})
			mx += w + int(float64(iv)*mivf)
		} else {
			w := sw/sfacts + extra(i-p.NMaster, srest)
			out = append(out, geom.Rect{X: sx, Y: sy, Width: w - 2*p.Bw, Height: sh - 2*p.Bw})
			sx += w + iv
		}
	}
	return out
}

// fibonacci halves the remaining area for each successive client. With
// dwindle set the cells shrink toward the bottom-right corner, otherwise
// they spiral inward. Subdivision stops once a half would drop below
// MinH; remaining clients then share the last cell.
func fibonacci(p Params, dwindle bool) []geom.Rect {
	oh, ov, ih, iv := p.resolve()
	a := p.Area

	nx, ny := a.X+ov, a.Y+oh
	nw, nh := a.Width-2*ov, a.Height-2*oh
	hrest, wrest := 0, 0
	splitting := true

	out := make([]geom.Rect, 0, p.N)
	i := 0
	for j := 0; j < p.N; j++ {
		if splitting {
			if (i%2 != 0 && (nh-ih)/2 <= p.MinH+2*p.Bw) ||
				(i%2 == 0 && (nw-iv)/2 <= p.MinH+2*p.Bw) {
				splitting = false
			}
			if splitting && i < p.N-1 {
				if i%2 != 0 {
					nv := (nh - ih) / 2
					hrest = nh - 2*nv - ih
					nh = nv
				} else {
					nv := (nw - iv) / 2
					wrest = nw - 2*nv - iv
					nw = nv
				}

				if i%4 == 2 && !dwindle {
					nx += nw + iv
				} else if i%4 == 3 && !dwindle {
					ny += nh + ih
				}
			}

			switch i % 4 {
			case 0:
				if dwindle {
					ny += nh + ih
					nh += hrest
				} else {
					nh -= hrest
					ny -= nh + ih
				}
			case 1:
				nx += nw + iv
				nw += wrest
			case 2:
				ny += nh + ih
				nh += hrest
				if i < p.N-1 {
					nw += wrest
				}
			case 3:
				if dwindle {
					nx += nw + iv
					nw -= wrest
				} else {
					nw -= wrest
					nx -= nw + iv
					nh += hrest
				}
			}

			if i == 0 {
				if p.N != 1 {
					base := a.Width - iv - 2*ov
					nw = int(float64(base) - float64(base)*(1-p.MFact))
					wrest = 0
				}
				ny = a.Y + oh
			} else if i == 1 {
				nw = a.Width - nw - iv - 2*ov
			}
			i++
		}

		out = append(out, geom.Rect{X: nx, Y: ny, Width: nw - 2*p.Bw, Height: nh - 2*p.Bw})
	}
	return out
}

// grid partitions the area into the smallest near-square row by column
// matrix that fits every client, filling column-major.
func grid(p Params) []geom.Rect {
	oh, ov, ih, iv := p.resolve()
	a := p.Area

	rows := 0
	for ; rows <= p.N/2; rows++ {
		if rows*rows >= p.N {
			break
		}
	}
	cols := rows
	if rows > 0 && (rows-1)*rows >= p.N {
		cols = rows - 1
	}

	ch := (a.Height - 2*oh - ih*(rows-1)) / max(rows, 1)
	cw := (a.Width - 2*ov - iv*(cols-1)) / max(cols, 1)
	chrest := (a.Height - 2*oh - ih*(rows-1)) - ch*rows
	cwrest := (a.Width - 2*ov - iv*(cols-1)) - cw*cols

	out := make([]geom.Rect, 0, p.N)
	for i := 0; i < p.N; i++ {
		cc := i / rows
		cr := i % rows
		cx := a.X + ov + cc*(cw+iv) + min(cc, cwrest)
		cy := a.Y + oh + cr*(ch+ih) + min(cr, chrest)
		out = append(out, geom.Rect{
			X:      cx,
			Y:      cy,
			Width:  cw + extra(cc, cwrest) - 2*p.Bw,
			Height: ch + extra(cr, chrest) - 2*p.Bw,
		})
	}
	return out
}

// horizgrid splits the area into a top and a bottom row, each row
// dividing its width evenly. One or two clients share a single row.
func horizgrid(p Params) []geom.Rect {
	oh, ov, ih, iv := p.resolve()
	a := p.Area

	ntop, nbottom := p.N, 1
	if p.N > 2 {
		ntop = p.N / 2
		nbottom = p.N - ntop
	}

	mx, my := a.X+ov, a.Y+oh
	mh := a.Height - 2*oh
	mw := a.Width - 2*ov - iv*(ntop-1)
	sx, sy, sh := mx, my, mh
	sw := a.Width - 2*ov - iv*(nbottom-1)

	if p.N > ntop {
		sh = (mh - ih) / 2
		mh = mh - ih - sh
		sy = my + mh + ih
	}

	mrest := mw - mw/ntop*ntop
	srest := sw - sw/nbottom*nbottom

	out := make([]geom.Rect, 0, p.N)
	for i := 0; i < p.N; i++ {
		if i < ntop {
			w := mw/ntop + extra(i, mrest)
			out = append(out, geom.Rect{X: mx, Y: my, Width: w - 2*p.Bw, Height: mh - 2*p.Bw})
			mx += w + iv
		} else {
			w := sw/nbottom + extra(i-ntop, srest)
			out = append(out, geom.Rect{X: sx, Y: sy, Width: w - 2*p.Bw, Height: sh - 2*p.Bw})
			sx += w + iv
		}
	}
	return out
}

// gaplessgrid fills near-square columns left to right; later columns
// absorb the surplus clients one extra row at a time.
func gaplessgrid(p Params) []geom.Rect {
	oh, ov, ih, iv := p.resolve()
	a := p.Area

	cols := 0
	for ; cols <= p.N/2; cols++ {
		if cols*cols >= p.N {
			break
		}
	}
	if p.N == 5 {
		// 2:3 reads better than 1:2:2 with five clients
		cols = 2
	}
	rows := p.N / cols

	ch := (a.Height - 2*oh - ih*(rows-1)) / rows
	cw := (a.Width - 2*ov - iv*(cols-1)) / cols
	rrest := (a.Height - 2*oh - ih*(rows-1)) - ch*rows
	crest := (a.Width - 2*ov - iv*(cols-1)) - cw*cols

	x := a.X + ov
	y := a.Y + oh

	out := make([]geom.Rect, 0, p.N)
	cn, rn := 0, 0
	for i := 0; i < p.N; i++ {
		if i/rows+1 > cols-p.N%cols {
			rows = p.N/cols + 1
			ch = (a.Height - 2*oh - ih*(rows-1)) / rows
			rrest = (a.Height - 2*oh - ih*(rows-1)) - ch*rows
		}
		out = append(out, geom.Rect{
			X:      x,
			Y:      y + rn*(ch+ih) + min(rn, rrest),
			Width:  cw + extra(cn, crest) - 2*p.Bw,
			Height: ch + extra(rn, rrest) - 2*p.Bw,
		})
		rn++
		if rn >= rows {
			rn = 0
			x += cw + ih + extra(cn, crest)
			cn++
		}
	}
	return out
}

// bstack puts the master row on top and a second row of stack clients
// below it, both dividing their width evenly.
func bstack(p Params) []geom.Rect {
	oh, ov, ih, iv := p.resolve()
	a := p.Area

	mx, my := a.X+ov, a.Y+oh
	mh := a.Height - 2*oh
	mw := a.Width - 2*ov - iv*(min(p.N, p.NMaster)-1)
	sw := a.Width - 2*ov - iv*(p.N-p.NMaster-1)
	sx, sy, sh := mx, my, mh

	if p.NMaster > 0 && p.N > p.NMaster {
		sh = int(float64(mh-ih) * (1 - p.MFact))
		mh = mh - ih - sh
		sy = my + mh + ih
	}

	mfacts, sfacts, mrest, srest := facts(p, mw, sw)

	out := make([]geom.Rect, 0, p.N)
	for i := 0; i < p.N; i++ {
		if i < p.NMaster {
			w := mw/mfacts + extra(i, mrest)
			out = append(out, geom.Rect{X: mx, Y: my, Width: w - 2*p.Bw, Height: mh - 2*p.Bw})
			mx += w + iv
		} else {
			w := sw/sfacts + extra(i-p.NMaster, srest)
			out = append(out, geom.Rect{X: sx, Y: sy, Width: w - 2*p.Bw, Height: sh - 2*p.Bw})
			sx += w + iv
		}
	}
	return out
}

// bstackhoriz is bstack with the bottom row turned into a vertical
// stack of full-width clients.
func bstackhoriz(p Params) []geom.Rect {
	oh, ov, ih, iv := p.resolve()
	a := p.Area

	mx, my := a.X+ov, a.Y+oh
	mh := a.Height - 2*oh
	sh := a.Height - 2*oh - ih*(p.N-p.NMaster-1)
	mw := a.Width - 2*ov - iv*(min(p.N, p.NMaster)-1)
	sw := a.Width - 2*ov
	sx, sy := mx, my

	if p.NMaster > 0 && p.N > p.NMaster {
		sh = int(float64(mh-ih) * (1 - p.MFact))
		mh = mh - ih - sh
		sy = my + mh + ih
		sh = a.Height - mh - 2*oh - ih*(p.N-p.NMaster)
	}

	mfacts, sfacts, mrest, srest := facts(p, mw, sh)

	out := make([]geom.Rect, 0, p.N)
	for i := 0; i < p.N; i++ {
		if i < p.NMaster {
			w := mw/mfacts + extra(i, mrest)
			out = append(out, geom.Rect{X: mx, Y: my, Width: w - 2*p.Bw, Height: mh - 2*p.Bw})
			mx += w + iv
		} else {
			h := sh/sfacts + extra(i-p.NMaster, srest)
			out = append(out, geom.Rect{X: sx, Y: sy, Width: sw - 2*p.Bw, Height: h - 2*p.Bw})
			sy += h + ih
		}
	}
	return out
}
