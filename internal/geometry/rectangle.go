package geometry

import (
	"fmt"
	"image"
)

// Rectangle is an axis-aligned box given by its top-left and bottom-right vertices.
//
// Rectangles are values; methods never modify the receiver.
type Rectangle struct {
	X1 int `json:"x1" yaml:"x1"` // Left edge
	Y1 int `json:"y1" yaml:"y1"` // Top edge
	X2 int `json:"x2" yaml:"x2"` // Right edge
	Y2 int `json:"y2" yaml:"y2"` // Bottom edge
}

// Width is X2 - X1.
func (r Rectangle) Width() int {
	return r.X2 - r.X1
}

// Height is Y2 - Y1.
func (r Rectangle) Height() int {
	return r.Y2 - r.Y1
}

// Center returns the midpoint of the rectangle using integer division, so for
// an even span the result sits on the top-left side of the true center.
// Coordinates are non-negative, which makes this equal to floor division.
func (r Rectangle) Center() image.Point {
	return image.Point{X: (r.X1 + r.X2) / 2, Y: (r.Y1 + r.Y2) / 2}
}

// Image converts to an image.Rectangle, treating (X2, Y2) as exclusive.
func (r Rectangle) Image() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

func (r Rectangle) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
}

// ScoredWindow pairs a search window with the classifier's confidence that it
// contains a vehicle. Larger is more confident.
type ScoredWindow struct {
	Rect  Rectangle `json:"rect"`
	Score float64   `json:"score"`
}
