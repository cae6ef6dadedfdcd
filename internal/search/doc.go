// Package search implements single-scale sliding window search.
//
// A search covers one region of a frame at one scale. The region is cropped,
// shrunk by 1/scale, and handed to the feature builder once to get a dense
// block tensor. A window of BlocksPerWindow x BlocksPerWindow blocks then
// slides over the block grid, stepping BlockStep blocks at a time in x
// (outer loop) and y (inner loop). Every window position yields:
//
//   - its slice of the dense tensor,
//   - its pixel patch, resized to the classifier input size when needed,
//   - its rectangle in frame coordinates.
//
// Window pixel positions in the shrunk crop are multiplied by scale,
// truncated, and offset by the region's top-left corner to get frame
// coordinates. The rectangle's edge is int(WindowSize * scale).
//
// All windows of one search are scored in a single classifier call. Windows
// scoring strictly above zero are kept.
//
// A block grid smaller than one window produces no windows and is not an
// error. In that case the classifier is not called.
package search
