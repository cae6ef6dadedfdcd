// Package geometry holds the rectangle types shared by the car-finding pipeline
// and the helper that draws them onto frames.
//
// # Coordinate System
//
// All coordinates are 0-based pixel positions relative to the top-left corner
// of the frame:
//   - X increases rightward
//   - Y increases downward
//
// A Rectangle is the ordered pair of its top-left (X1, Y1) and bottom-right
// (X2, Y2) vertices, with X1 <= X2 and Y1 <= Y2. Search windows use the
// bottom-right vertex as an exclusive bound when they are rasterized into a
// heat map; detection boxes built from labeled regions use it as the inclusive
// position of the last member pixel. A single-pixel region therefore yields a
// zero-area box, which is valid.
//
// # Drawing
//
// DrawRectangles strokes outlines with github.com/fogleman/gg onto a copy of
// the source frame. The source image is never modified.
package geometry
