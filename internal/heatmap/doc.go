// Package heatmap accumulates classifier confidence into per-pixel vote maps
// and keeps the bounded history of per-frame maps used for temporal fusion.
//
// A Heatmap has the same width and height as the frame it was built from.
// Each cell holds the sum of the scores of every window whose rectangle covers
// it. Rasterization treats a window's bottom-right vertex as exclusive, so the
// window (x1,y1)-(x2,y2) contributes to columns x1..x2-1 and rows y1..y2-1.
// Parts of a window that fall outside the map are ignored.
//
// Storage is a row-major gonum mat.Dense (rows = height, columns = width).
//
// History is a fixed-capacity FIFO ring buffer. Pushing onto a full history
// evicts the oldest map; Fused returns the element-wise sum of the retained
// maps. A History is not safe for concurrent use and must be owned by a single
// pipeline instance.
package heatmap
