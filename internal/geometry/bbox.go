package geometry

import "math"

// DefaultEpsilon is the tolerance used when comparing bounding boxes and no
// other value has been configured. It is well below a pixel and well above
// the error a JSON round trip introduces.
const DefaultEpsilon = 1e-3

// BoundingBox returns the axis-aligned bounding box of shape.
//
// A nil shape yields the zero Rect.
func BoundingBox(shape Shape) Rect {
	if shape == nil {
		return Rect{}
	}
	return shape.BoundingBox()
}

// Center returns the center of shape.
//
// For rectangles this is the midpoint of the box, for rotated rectangles and
// circles the stored center, and for polygons and poses the center of their
// bounding box. A nil shape yields the origin.
func Center(shape Shape) Point {
	if shape == nil {
		return Point{}
	}
	return shape.Center()
}

// HasEqualBoundingBox reports whether the bounding boxes of a and b match on
// x, y, width and height within epsilon. A difference of exactly epsilon
// still counts as equal.
func HasEqualBoundingBox(a, b Shape, epsilon float64) bool {
	if a == nil || b == nil {
		return false
	}

	ba, bb := a.BoundingBox(), b.BoundingBox()
	return withinEpsilon(ba.X, bb.X, epsilon) &&
		withinEpsilon(ba.Y, bb.Y, epsilon) &&
		withinEpsilon(ba.Width, bb.Width, epsilon) &&
		withinEpsilon(ba.Height, bb.Height, epsilon)
}

// IsInsideBoundingBox reports whether point lies inside box, edges included.
func IsInsideBoundingBox(point Point, box Rect) bool {
	return point.X >= box.X && point.X <= box.X+box.Width &&
		point.Y >= box.Y && point.Y <= box.Y+box.Height
}

// ContainsCenter reports whether the center of inner lies inside the bounding
// box of outer.
func ContainsCenter(outer, inner Shape) bool {
	if outer == nil || inner == nil {
		return false
	}
	return IsInsideBoundingBox(inner.Center(), outer.BoundingBox())
}

// IsRect reports whether shape is an axis-aligned Rect.
func IsRect(shape Shape) bool {
	_, ok := shape.(Rect)
	return ok
}

// IsGlobalShape reports whether shape is a Rect covering roi within epsilon.
// Such a shape is the canonical carrier of whole-image annotations.
func IsGlobalShape(shape Shape, roi Rect, epsilon float64) bool {
	return IsRect(shape) && HasEqualBoundingBox(shape, roi, epsilon)
}

func withinEpsilon(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}
