// Package label finds connected components in a binary mask.
//
// Label implements the classic two-pass algorithm with a union-find forest of
// provisional labels:
//
//  1. Raster scan (row by row, left to right). Each foreground pixel takes the
//     smallest provisional label among its already-visited neighbors and the
//     neighbors' labels are merged; a pixel with no labeled neighbor opens a
//     new provisional label.
//  2. A second scan resolves every pixel to its root and renumbers roots
//     1..Count in order of first appearance in raster order.
//
// Label ids are therefore deterministic: component 1 is the one whose first
// pixel comes first in raster order. Background pixels have id 0.
//
// # Connectivity
//
// Four connects a pixel to its horizontal and vertical neighbors only and is
// the default. Eight also connects diagonal neighbors.
package label
