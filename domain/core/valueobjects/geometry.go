package valueobjects

import "math"

// Point is a position on the board's canvas plane
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsFinite reports whether both coordinates are real numbers.
// Pointer input occasionally produces NaN coordinates on gesture
// boundaries; those must never reach the scene store.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// DistanceTo returns the Euclidean distance to another point
func (p Point) DistanceTo(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the point translated by the given deltas
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// DistanceToSegment returns the distance from the point to the closest
// point on segment ab. A degenerate segment collapses to a point.
func (p Point) DistanceToSegment(a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.DistanceTo(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.DistanceTo(Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// SegmentDistance returns the minimum distance between segments ab and
// cd. Crossing segments have distance zero.
func SegmentDistance(a, b, c, d Point) float64 {
	if segmentsCross(a, b, c, d) {
		return 0
	}
	min := a.DistanceToSegment(c, d)
	if v := b.DistanceToSegment(c, d); v < min {
		min = v
	}
	if v := c.DistanceToSegment(a, b); v < min {
		min = v
	}
	if v := d.DistanceToSegment(a, b); v < min {
		min = v
	}
	return min
}

func segmentsCross(a, b, c, d Point) bool {
	o1 := orient(a, b, c)
	o2 := orient(a, b, d)
	o3 := orient(c, d, a)
	o4 := orient(c, d, b)
	// Collinear overlaps fall through to the endpoint distances, which
	// are zero in that case.
	return o1*o2 < 0 && o3*o4 < 0
}

func orient(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// Rect is an axis-aligned rectangle
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the rectangle's center point
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether the point lies inside the rectangle.
// Points on the edge count as inside.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Intersects reports whether two rectangles overlap.
// Edge-touching rectangles count as intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width && r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height && r.Y+r.Height >= other.Y
}

// Normalized returns an equivalent rectangle with non-negative
// width and height. Marquee drags can sweep in any direction.
func (r Rect) Normalized() Rect {
	if r.Width < 0 {
		r.X += r.Width
		r.Width = -r.Width
	}
	if r.Height < 0 {
		r.Y += r.Height
		r.Height = -r.Height
	}
	return r
}

// RotatedCorners returns the rectangle's four corners rotated by the
// given angle (degrees, clockwise) about the rectangle's center.
func (r Rect) RotatedCorners(rotation float64) [4]Point {
	c := r.Center()
	rad := rotation * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)

	corners := [4]Point{
		{X: r.X, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y},
		{X: r.X + r.Width, Y: r.Y + r.Height},
		{X: r.X, Y: r.Y + r.Height},
	}
	for i, p := range corners {
		dx := p.X - c.X
		dy := p.Y - c.Y
		corners[i] = Point{
			X: c.X + dx*cos - dy*sin,
			Y: c.Y + dx*sin + dy*cos,
		}
	}
	return corners
}

// BoundsOf returns the smallest axis-aligned rectangle covering all
// the given points. Returns the zero Rect for an empty slice.
func BoundsOf(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Expand returns the rectangle grown by pad on every side
func (r Rect) Expand(pad float64) Rect {
	return Rect{X: r.X - pad, Y: r.Y - pad, Width: r.Width + 2*pad, Height: r.Height + 2*pad}
}

// PathPoint is a single sample of a freehand stroke
type PathPoint struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Pressure float64 `json:"pressure"`
}

// CubicBezierPoint evaluates a cubic Bezier curve at parameter t in [0,1]
func CubicBezierPoint(p0, c1, c2, p3 Point, t float64) Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return Point{
		X: a*p0.X + b*c1.X + c*c2.X + d*p3.X,
		Y: a*p0.Y + b*c1.Y + c*c2.Y + d*p3.Y,
	}
}
