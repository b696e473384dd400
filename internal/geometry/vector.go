// Package geometry implements the floor-plan geometry engine: wall face
// offsetting, junction trimming, planar-graph construction and half-edge
// based room detection. All coordinates are millimeters in plan space.
//
// Every function in this package is pure: inputs are never mutated unless
// the function documents otherwise, and geometric degeneracy (zero-length
// segments, parallel lines) degrades to well-defined fallback values
// instead of errors.
package geometry

import "math"

// Point2D is a position or displacement in plan space, in millimeters.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Line is a straight segment between two points.
type Line struct {
	Start Point2D `json:"start"`
	End   Point2D `json:"end"`
}

// Epsilon is the default tolerance for "is this zero" comparisons, in mm.
const Epsilon = 1e-6

// Add returns p + q.
func Add(p, q Point2D) Point2D {
	return Point2D{p.X + q.X, p.Y + q.Y}
}

// Sub returns p - q.
func Sub(p, q Point2D) Point2D {
	return Point2D{p.X - q.X, p.Y - q.Y}
}

// Scale returns p scaled by s.
func Scale(p Point2D, s float64) Point2D {
	return Point2D{p.X * s, p.Y * s}
}

// Dot returns the dot product of p and q.
func Dot(p, q Point2D) float64 {
	return p.X*q.X + p.Y*q.Y
}

// Cross returns the 2D cross product (z component) of p and q.
func Cross(p, q Point2D) float64 {
	return p.X*q.Y - p.Y*q.X
}

// Length returns the euclidean length of p treated as a vector.
func Length(p Point2D) float64 {
	return math.Hypot(p.X, p.Y)
}

// Distance returns the distance between p and q.
func Distance(p, q Point2D) float64 {
	return Length(Sub(p, q))
}

// Midpoint returns the point halfway between p and q.
func Midpoint(p, q Point2D) Point2D {
	return Point2D{(p.X + q.X) / 2, (p.Y + q.Y) / 2}
}

// Normalize returns the unit vector of p, or the zero vector if p is
// shorter than Epsilon.
func Normalize(p Point2D) Point2D {
	l := Length(p)
	if l <= Epsilon {
		return Point2D{}
	}
	return Point2D{p.X / l, p.Y / l}
}

// Perp returns p rotated 90 degrees counter-clockwise.
func Perp(p Point2D) Point2D {
	return Point2D{-p.Y, p.X}
}

// Direction returns the unit vector pointing from a to b, or the zero
// vector if the points coincide.
func Direction(a, b Point2D) Point2D {
	return Normalize(Sub(b, a))
}

// Angle returns the direction angle of p in radians, in [-pi, pi].
func Angle(p Point2D) float64 {
	return math.Atan2(p.Y, p.X)
}

// LineIntersection returns the intersection of the two infinite lines
// through l1 and l2. ok is false when the lines are parallel or either
// segment is degenerate.
func LineIntersection(l1, l2 Line) (Point2D, bool) {
	d1 := Sub(l1.End, l1.Start)
	d2 := Sub(l2.End, l2.Start)
	det := Cross(d1, d2)
	if math.Abs(det) <= Epsilon {
		return Point2D{}, false
	}
	t := Cross(Sub(l2.Start, l1.Start), d2) / det
	return Add(l1.Start, Scale(d1, t)), true
}

// RayIntersection intersects the infinite lines through (o1, d1) and
// (o2, d2) and returns the parametric distances t and u along each ray.
// ok is false when the directions are parallel within Epsilon.
func RayIntersection(o1, d1, o2, d2 Point2D) (t, u float64, ok bool) {
	det := Cross(d1, d2)
	if math.Abs(det) <= Epsilon {
		return 0, 0, false
	}
	w := Sub(o2, o1)
	t = Cross(w, d2) / det
	u = Cross(w, d1) / det
	return t, u, true
}

// PointAlong returns o + d*t.
func PointAlong(o, d Point2D, t float64) Point2D {
	return Add(o, Scale(d, t))
}
