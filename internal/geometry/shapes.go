package geometry

import "math"

// ShapeType identifies the concrete variant behind a Shape.
type ShapeType string

const (
	TypeRect        ShapeType = "RECTANGLE"
	TypeRotatedRect ShapeType = "ROTATED_RECTANGLE"
	TypePolygon     ShapeType = "POLYGON"
	TypeCircle      ShapeType = "CIRCLE"
	TypePose        ShapeType = "POSE"
)

// Point represents a 2D point in image space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Shape is the geometry carried by an annotation.
//
// Every variant can report its axis-aligned bounding box and its center,
// which is all the task-chain logic needs to reason about containment.
type Shape interface {
	Type() ShapeType
	BoundingBox() Rect
	Center() Point
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Type() ShapeType { return TypeRect }

func (r Rect) BoundingBox() Rect { return r }

func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// RotatedRect is a rectangle rotated around its center.
// Angle is expressed in degrees, clockwise.
type RotatedRect struct {
	X      float64 `json:"x"` // center X
	Y      float64 `json:"y"` // center Y
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Angle  float64 `json:"angle"`
}

func (r RotatedRect) Type() ShapeType { return TypeRotatedRect }

// BoundingBox returns the axis-aligned box enclosing the four rotated corners.
func (r RotatedRect) BoundingBox() Rect {
	rad := r.Angle * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	hw, hh := r.Width/2, r.Height/2

	corners := make([]Point, 0, 4)
	for _, c := range [][2]float64{{-hw, -hh}, {hw, -hh}, {hw, hh}, {-hw, hh}} {
		corners = append(corners, Point{
			X: r.X + c[0]*cos - c[1]*sin,
			Y: r.Y + c[0]*sin + c[1]*cos,
		})
	}
	return boundsOf(corners)
}

func (r RotatedRect) Center() Point { return Point{X: r.X, Y: r.Y} }

// Polygon is a closed polygon given by its vertices.
type Polygon struct {
	Points []Point `json:"points"`
}

func (p Polygon) Type() ShapeType { return TypePolygon }

func (p Polygon) BoundingBox() Rect { return boundsOf(p.Points) }

// Center returns the center of the polygon's bounding box.
func (p Polygon) Center() Point { return p.BoundingBox().Center() }

// Circle is a circle given by its center and radius.
type Circle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"r"`
}

func (c Circle) Type() ShapeType { return TypeCircle }

func (c Circle) BoundingBox() Rect {
	return Rect{X: c.X - c.Radius, Y: c.Y - c.Radius, Width: 2 * c.Radius, Height: 2 * c.Radius}
}

func (c Circle) Center() Point { return Point{X: c.X, Y: c.Y} }

// Keypoint is a single named point of a Pose.
type Keypoint struct {
	Point
	Label    string `json:"label"`
	Occluded bool   `json:"occluded"`
}

// Pose is a keypoint collection, as produced by keypoint detection tasks.
type Pose struct {
	Points []Keypoint `json:"points"`
}

func (p Pose) Type() ShapeType { return TypePose }

func (p Pose) BoundingBox() Rect {
	points := make([]Point, len(p.Points))
	for i, kp := range p.Points {
		points[i] = kp.Point
	}
	return boundsOf(points)
}

func (p Pose) Center() Point { return p.BoundingBox().Center() }

// boundsOf returns the smallest Rect enclosing points. An empty slice yields
// the zero Rect.
func boundsOf(points []Point) Rect {
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
