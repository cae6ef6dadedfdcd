// Package features defines the feature-vector collaborator consumed by window
// search, plus a reference histogram-of-oriented-gradients implementation.
//
// # Contract
//
// A Builder does two things:
//
//  1. Dense: compute a dense block tensor once for a whole search region. The
//     tensor has shape channels x blocks-y x blocks-x, each block holding
//     BlockLen values. Window search slices it instead of recomputing features
//     per window.
//  2. Vectors: turn a batch of (pixel patch, sliced dense features) pairs into
//     one fixed-length vector each, normalized the same way the classifier was
//     trained.
//
// Geometry exposes the fixed cell, block and window sizes a Builder works
// with. A window of WindowSize pixels spans BlocksPerWindow blocks per axis.
//
// # Reference HOG
//
// HOG uses unsigned gradient orientations (0-180 degrees) binned per cell,
// blocks of CellsPerBlock x CellsPerBlock cells normalized with L2-Hys. Its
// Vectors concatenates spatially binned pixels, per-channel color histograms
// and the sliced HOG blocks, then applies an optional standard Scaler.
//
// Builders must be safe for concurrent use: window search may run several
// scales of one frame in parallel.
package features
