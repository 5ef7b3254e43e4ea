// Package geom implements the road-network geometry primitives: the
// Minkowski-inflated travel rectangle around a road segment, point-in-road
// containment, and the clamped-endpoint projection used by the movement
// solver.
package geom

import "math"

// BoundaryOffset is the half-width added to a road's centerline to form its
// travel rectangle.
const BoundaryOffset = 0.4

// Orientation distinguishes horizontal and vertical roads. Roads are always
// axis-aligned.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// Point is a double-precision map coordinate, also used as a 2D vector for
// velocity and displacement math.
type Point struct {
	X, Y float64
}

// Add returns the vector sum p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector difference p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p scaled by k.
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// LenSq returns the squared length of p treated as a vector.
func (p Point) LenSq() float64 {
	return p.X*p.X + p.Y*p.Y
}

// Road is an axis-aligned line segment. Start and End share one coordinate
// (the fixed axis) and differ on the other (the free axis).
type Road struct {
	Orientation Orientation
	Start       Point
	End         Point
}

// NewHorizontal builds a horizontal road from start to (endX, start.Y).
func NewHorizontal(start Point, endX float64) Road {
	return Road{Orientation: Horizontal, Start: start, End: Point{X: endX, Y: start.Y}}
}

// NewVertical builds a vertical road from start to (start.X, endY).
func NewVertical(start Point, endY float64) Road {
	return Road{Orientation: Vertical, Start: start, End: Point{X: start.X, Y: endY}}
}

// Len returns the road's length along its free axis.
func (r Road) Len() float64 {
	if r.Orientation == Horizontal {
		return math.Abs(r.Start.X - r.End.X)
	}
	return math.Abs(r.Start.Y - r.End.Y)
}

// bounds returns the travel rectangle as (left, right, top, bottom).
func (r Road) bounds() (left, right, top, bottom float64) {
	if r.Orientation == Horizontal {
		left = math.Min(r.Start.X, r.End.X) - BoundaryOffset
		right = math.Max(r.Start.X, r.End.X) + BoundaryOffset
		top = r.Start.Y - BoundaryOffset
		bottom = r.Start.Y + BoundaryOffset
		return
	}
	left = r.Start.X - BoundaryOffset
	right = r.Start.X + BoundaryOffset
	top = math.Min(r.Start.Y, r.End.Y) - BoundaryOffset
	bottom = math.Max(r.Start.Y, r.End.Y) + BoundaryOffset
	return
}

// PointIsInside reports whether p lies within the road's inflated travel
// rectangle (closed containment).
func (r Road) PointIsInside(p Point) bool {
	left, right, top, bottom := r.bounds()
	return p.X >= left && p.X <= right && p.Y >= top && p.Y <= bottom
}

// ClampEndpoint returns the farthest point along start->end that still lies
// inside the road's travel rectangle. start must already be inside the road.
// Motion perpendicular to the road's axis is clamped to the half-width
// boundary (BoundaryOffset from the centerline), not to start: a dog on the
// centerline can still move up to that boundary before stopping.
func (r Road) ClampEndpoint(start, end Point) Point {
	if start == end {
		return end
	}

	left, right, top, bottom := r.bounds()

	// Vertical motion: same X, different Y.
	if start.X == end.X {
		if r.Orientation == Vertical || (r.Orientation == Horizontal && start.X >= left && start.X <= right) {
			if start.Y < end.Y {
				return Point{X: start.X, Y: math.Min(end.Y, bottom)}
			}
			return Point{X: start.X, Y: math.Max(end.Y, top)}
		}
		return start
	}

	// Horizontal motion: same Y, different X.
	if start.Y == end.Y {
		if r.Orientation == Horizontal || (r.Orientation == Vertical && start.Y >= top && start.Y <= bottom) {
			if start.X < end.X {
				return Point{X: math.Min(right, end.X), Y: start.Y}
			}
			return Point{X: math.Max(left, end.X), Y: start.Y}
		}
		return start
	}

	return start
}

// RandomPointAt returns the point reached by walking len along the road from
// its lower-coordinate end, clamped to the road's own length.
func (r Road) RandomPointAt(len float64) Point {
	len = math.Min(len, r.Len())

	if r.Orientation == Horizontal {
		if r.Start.X < r.End.X {
			return Point{X: r.Start.X + len, Y: r.Start.Y}
		}
		return Point{X: r.End.X + len, Y: r.Start.Y}
	}

	if r.Start.Y < r.End.Y {
		return Point{X: r.Start.X, Y: r.Start.Y + len}
	}
	return Point{X: r.Start.X, Y: r.End.Y + len}
}
