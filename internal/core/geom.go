// Package core provides fundamental types and utilities for the defense
// simulation. It has no external dependencies (especially no Bubble Tea) so
// simulation code stays pure and testable.
package core

import "math"

// Vec2 is a point or direction in map units.
type Vec2 struct {
	X, Y float64
}

// V creates a vector.
func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Polar creates a vector from a length and an angle in degrees.
func Polar(length, angleDeg float64) Vec2 {
	rad := angleDeg * math.Pi / 180
	return Vec2{X: length * math.Cos(rad), Y: length * math.Sin(rad)}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Mul scales the vector.
func (v Vec2) Mul(f float64) Vec2 {
	return Vec2{X: v.X * f, Y: v.Y * f}
}

// Len returns the euclidean length.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Norm returns the unit vector. The zero vector stays zero.
func (v Vec2) Norm() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// DistanceTo returns the distance between two points.
func (v Vec2) DistanceTo(o Vec2) float64 {
	return o.Sub(v).Len()
}

// DirectionTo returns the unit vector pointing from v to o.
func (v Vec2) DirectionTo(o Vec2) Vec2 {
	return o.Sub(v).Norm()
}

// Angle returns the direction of the vector in degrees.
func (v Vec2) Angle() float64 {
	return math.Atan2(v.Y, v.X) * 180 / math.Pi
}

// MoveTowards steps from v towards target by at most step units.
// Returns the new position and whether the target was reached.
func (v Vec2) MoveTowards(target Vec2, step float64) (Vec2, bool) {
	d := v.DistanceTo(target)
	if d <= step {
		return target, true
	}
	return v.Add(v.DirectionTo(target).Mul(step)), false
}

// Rect represents an axis-aligned bounding box in screen cells.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
