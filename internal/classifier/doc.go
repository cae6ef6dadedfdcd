// Package classifier defines the batch scoring collaborator used by window
// search and a linear reference model.
//
// A Classifier scores many feature vectors in one call. Positive scores mean
// "vehicle", and larger scores mean more confidence. Window search keeps only
// windows scoring strictly above zero.
//
// Model files are YAML documents holding the feature builder parameters, the
// standard scaler and the linear weights, so one file fully describes how to
// turn a window into a score:
//
//	features:
//	  pixels_per_cell: 8
//	  cells_per_block: 2
//	  window_size: 64
//	  orientations: 9
//	  spatial_size: 16
//	  histogram_bins: 32
//	scaler:
//	  mean: [...]
//	  scale: [...]
//	weights: [...]
//	bias: -0.3
package classifier
