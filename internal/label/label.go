package label

import (
	"fmt"

	"github.com/ironsheep/car-finder/internal/geometry"
)

// Connectivity selects which neighbors join a pixel to a component.
type Connectivity int

const (
	// Four connects edge-adjacent pixels.
	Four Connectivity = 4
	// Eight connects edge- and corner-adjacent pixels.
	Eight Connectivity = 8
)

// ParseConnectivity converts 4 or 8 into a Connectivity.
func ParseConnectivity(n int) (Connectivity, error) {
	switch Connectivity(n) {
	case Four, Eight:
		return Connectivity(n), nil
	}
	return 0, fmt.Errorf("unsupported connectivity %d: must be 4 or 8", n)
}

// Labels is the result of labeling a width x height mask.
type Labels struct {
	Width  int
	Height int
	// Count is the number of components; ids run from 1 to Count.
	Count int
	ids   []int
}

// At returns the component id at (x, y), or 0 for background.
func (l *Labels) At(x, y int) int {
	return l.ids[y*l.Width+x]
}

// Bounds returns the bounding box of every component, indexed by id-1.
// Boxes are inclusive: (X2, Y2) is the position of the last member pixel.
func (l *Labels) Bounds() []geometry.Rectangle {
	boxes := make([]geometry.Rectangle, l.Count)
	seen := make([]bool, l.Count)
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			id := l.At(x, y)
			if id == 0 {
				continue
			}
			b := &boxes[id-1]
			if !seen[id-1] {
				*b = geometry.Rectangle{X1: x, Y1: y, X2: x, Y2: y}
				seen[id-1] = true
				continue
			}
			b.X1 = min(b.X1, x)
			b.X2 = max(b.X2, x)
			b.Y2 = max(b.Y2, y) // rows arrive in order, so Y1 is already minimal
		}
	}
	return boxes
}

// Label labels the connected foreground pixels of a width x height mask.
// foreground reports whether the pixel at (x, y) belongs to any component.
func Label(width, height int, foreground func(x, y int) bool, conn Connectivity) *Labels {
	l := &Labels{Width: width, Height: height, ids: make([]int, width*height)}
	if width <= 0 || height <= 0 {
		l.ids = nil
		return l
	}

	// parent[0] is unused so provisional labels start at 1.
	parent := []int{0}
	var neighbors [4]int

	// Already visited neighbors: left and up, plus the upper diagonals.
	offsets := [][2]int{{-1, 0}, {0, -1}, {-1, -1}, {1, -1}}
	if conn != Eight {
		offsets = offsets[:2]
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !foreground(x, y) {
				continue
			}

			n := 0
			for _, o := range offsets {
				nx, ny := x+o[0], y+o[1]
				if nx < 0 || ny < 0 || nx >= width {
					continue
				}
				if id := l.ids[ny*width+nx]; id != 0 {
					neighbors[n] = id
					n++
				}
			}

			if n == 0 {
				parent = append(parent, len(parent))
				l.ids[y*width+x] = len(parent) - 1
				continue
			}

			smallest := find(parent, neighbors[0])
			for _, id := range neighbors[1:n] {
				smallest = min(smallest, find(parent, id))
			}
			for _, id := range neighbors[:n] {
				union(parent, smallest, id)
			}
			l.ids[y*width+x] = smallest
		}
	}

	final := make([]int, len(parent))
	for i, id := range l.ids {
		if id == 0 {
			continue
		}
		root := find(parent, id)
		if final[root] == 0 {
			l.Count++
			final[root] = l.Count
		}
		l.ids[i] = final[root]
	}
	return l
}

// find returns the root of id, halving the path as it goes.
func find(parent []int, id int) int {
	for parent[id] != id {
		parent[id] = parent[parent[id]]
		id = parent[id]
	}
	return id
}

// union attaches the tree containing id below root. root must be the
// smallest root among the trees being merged, so the smaller label always wins.
func union(parent []int, root, id int) {
	if r := find(parent, id); r != root {
		parent[r] = root
	}
}
