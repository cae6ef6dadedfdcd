// Package imaging holds the frame level image helpers used by vehicle search:
// region cropping and rescaling, classifier patch extraction, frame sequences
// and frame output.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Regions are image.Rectangle
// values: Min is inclusive, Max is exclusive.
//
// # Scaling
//
// Window search runs a fixed-size classifier over a region at several
// scales. Rather than growing the window, the region is shrunk: Rescale
// resizes a region by 1/scale, so a scale of 2 halves both dimensions and
// makes the classifier window cover twice as many frame pixels. Sizes are
// truncated toward zero. A region that would shrink below one pixel becomes
// an empty image.
//
// # Frame Sources
//
// A Sequence walks an ordered list of still images, one frame per file, in
// lexical path order. Files are decoded with bild's imgio, so PNG, JPEG and
// BMP inputs are accepted. ImageCache keeps decoded frames keyed by path for
// callers that see the same file repeatedly.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The crop and resize helpers are
// stateless. Sequence is not safe for concurrent use.
package imaging
