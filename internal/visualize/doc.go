// Package visualize renders detection results onto frames.
//
// In cars mode accepted detections are drawn as thick green outlines. In
// windows mode the frame is additionally blended with the fused heat map and
// every candidate window of the frame is outlined in thin dark blue:
//
//  1. The heat map is clamped at the high threshold, min-max normalized to
//     0-255, and mapped to a black-to-red ramp.
//  2. The ramp is composited over the boxed frame at 60% opacity.
//  3. Candidate windows are stroked on top.
//
// Rendering never feeds back into detection. Frames are expected to have
// their origin at (0, 0).
package visualize
