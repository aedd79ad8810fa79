package geom

// Rect is a screen-space rectangle with the origin in the top-left corner.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }

func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the point (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Overlap returns the area of the intersection of a and b, or 0 if they
// are disjoint.
func Overlap(a, b Rect) int {
	w := min(a.Right(), b.Right()) - max(a.X, b.X)
	h := min(a.Bottom(), b.Bottom()) - max(a.Y, b.Y)
	return max(0, w) * max(0, h)
}

// Unique filters heads down to distinct geometries, keeping first
// occurrences in order. Mirrored or cloned outputs report the same
// rectangle and must collapse into one logical monitor.
func Unique(heads []Rect) []Rect {
	var unique []Rect
loop:
	for _, h := range heads {
		for _, u := range unique {
			if u == h {
				continue loop
			}
		}
		unique = append(unique, h)
	}
	return unique
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
