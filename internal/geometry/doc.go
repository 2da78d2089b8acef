// Package geometry provides the shape variants an annotation can carry and the
// bounding-box utilities the task-chain logic is built on.
//
// # Coordinate System
//
// All coordinates are floating point pixels in image space:
//   - Origin (0, 0) at the top-left corner
//   - X increases rightward
//   - Y increases downward
//
// A Rect is described by its top-left corner plus width and height. A
// RotatedRect and a Circle are described by their center.
//
// # Tolerance
//
// Shapes are stored and transmitted as floating point, so comparisons between
// boxes take an explicit epsilon. Callers thread the configured epsilon
// through every comparison; DefaultEpsilon is used when nothing else is
// configured.
//
// # Containment
//
// IsInsideBoundingBox is inclusive on every edge: a point lying exactly on
// the border of a box is inside it.
package geometry
