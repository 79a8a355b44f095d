package intersection

import "math"

// Rect is an axis-aligned rectangle in layout coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the area of r. Degenerate rectangles have zero area.
func (r Rect) Area() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}

	return r.Width * r.Height
}

// Margin grows (or, when negative, shrinks) the root rectangle before
// intersecting.
type Margin struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Expand returns r grown by m.
func (m Margin) Expand(r Rect) Rect {
	return Rect{
		X:      r.X - m.Left,
		Y:      r.Y - m.Top,
		Width:  r.Width + m.Left + m.Right,
		Height: r.Height + m.Top + m.Bottom,
	}
}

// intersect returns the intersection of a and b, and whether they touch at
// all. Edge-adjacent rectangles touch with a zero-area intersection.
func intersect(a, b Rect) (Rect, bool) {
	x0 := math.Max(a.X, b.X)
	y0 := math.Max(a.Y, b.Y)
	x1 := math.Min(a.X+a.Width, b.X+b.Width)
	y1 := math.Min(a.Y+a.Height, b.Y+b.Height)

	if x1 < x0 || y1 < y0 {
		return Rect{}, false
	}

	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, true
}

// Compute returns the intersection of target with root grown by margin. The
// ratio is the visible fraction of the target's area; a zero-area target that
// touches the root counts as fully visible.
func Compute(target, root Rect, margin Margin) Entry {
	bounds := margin.Expand(root)
	inter, ok := intersect(target, bounds)

	var ratio float64
	switch {
	case !ok:
		ratio = 0
	case target.Area() == 0:
		ratio = 1
	default:
		ratio = math.Min(1, inter.Area()/target.Area())
	}

	return Entry{
		Target:         target,
		Root:           bounds,
		Intersection:   inter,
		Ratio:          ratio,
		IsIntersecting: ok,
	}
}

// thresholdIndex returns the index of the first threshold greater than ratio,
// or len(thresholds) if ratio reaches the last one.
func thresholdIndex(thresholds []float64, ratio float64) int {
	for i, t := range thresholds {
		if t > ratio {
			return i
		}
	}

	return len(thresholds)
}
