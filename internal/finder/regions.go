package finder

import (
	"github.com/ironsheep/car-finder/internal/geometry"
	"github.com/ironsheep/car-finder/internal/heatmap"
	"github.com/ironsheep/car-finder/internal/label"
)

// Label labels the non-zero cells of h.
func Label(h *heatmap.Heatmap, conn label.Connectivity) *label.Labels {
	return label.Label(h.Width(), h.Height(), func(x, y int) bool {
		return h.At(x, y) != 0
	}, conn)
}

// HotRegions returns the bounding box of every labeled region whose fused
// heat at the box center is at least threshold, in label order.
//
// The center is ((X1+X2)/2, (Y1+Y2)/2) with integer division, so even spans
// round toward the top-left.
func HotRegions(labels *label.Labels, fused *heatmap.Heatmap, threshold float64) []geometry.Rectangle {
	boxes := []geometry.Rectangle{}
	for _, box := range labels.Bounds() {
		c := box.Center()
		if fused.At(c.X, c.Y) >= threshold {
			boxes = append(boxes, box)
		}
	}
	return boxes
}

// ExtractRegions labels thresholded and keeps the regions that are hot
// enough at their center in fused. It also returns how many regions were
// labeled before the center check.
func ExtractRegions(thresholded, fused *heatmap.Heatmap, threshold float64, conn label.Connectivity) ([]geometry.Rectangle, int) {
	labels := Label(thresholded, conn)
	return HotRegions(labels, fused, threshold), labels.Count
}
