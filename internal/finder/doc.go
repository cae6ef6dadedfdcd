// Package finder locates vehicles in frames by fusing multi-scale window
// search results over time.
//
// # Pipeline
//
// For every frame, CarFinder:
//
//  1. Runs one window search per configured band, in parallel, and
//     concatenates the positive windows in band order.
//  2. Rasterizes the windows into a frame heat map, adding each window's
//     score over its area, and caps every cell at the frame heat cap.
//  3. In streaming mode pushes that map into a bounded history and sums the
//     retained maps. In single mode the frame map is used alone and the
//     history is left untouched.
//  4. Scales the low and high thresholds by the number of fused maps. A
//     fresh stream therefore starts with thresholds scaled by one, not by the
//     history capacity.
//  5. Zeroes fused cells below the low threshold, labels the connected
//     non-zero cells, and keeps each region whose fused heat at its box
//     center is at least the high threshold.
//
// The low threshold drops sparse single-window hits. The high threshold is
// only checked at the region center so that large regions with a weak rim
// survive while still needing a hot core.
//
// # Frame Size
//
// Frames must be at least as wide as the x range and as tall as every band.
// Within one stream, every frame must have the size of the first. Violations
// return ErrFrameSize.
//
// # Concurrency
//
// A CarFinder is not safe for concurrent use: frames of one stream must be
// processed in order. Use one CarFinder per stream; the feature builder and
// classifier may be shared between them.
package finder
