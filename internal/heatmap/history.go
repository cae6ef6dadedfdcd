package heatmap

// History is a bounded FIFO of per-frame heat maps backed by a ring buffer.
//
// Len never exceeds the capacity. Once full, each Push evicts the oldest map.
type History struct {
	buf   []*Heatmap
	start int // index of the oldest map
	n     int
}

// NewHistory returns an empty history holding at most capacity maps.
// A capacity below one is treated as one.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]*Heatmap, capacity)}
}

// Push appends h as the newest map, evicting the oldest when the history is full.
func (hs *History) Push(h *Heatmap) {
	c := len(hs.buf)
	if hs.n < c {
		hs.buf[(hs.start+hs.n)%c] = h
		hs.n++
		return
	}
	hs.buf[hs.start] = h
	hs.start = (hs.start + 1) % c
}

// Len returns the number of retained maps.
func (hs *History) Len() int {
	return hs.n
}

// At returns the i-th retained map, oldest first.
func (hs *History) At(i int) *Heatmap {
	if i < 0 || i >= hs.n {
		return nil
	}
	return hs.buf[(hs.start+i)%len(hs.buf)]
}

// Heatmaps returns the retained maps in arrival order.
func (hs *History) Heatmaps() []*Heatmap {
	out := make([]*Heatmap, hs.n)
	for i := range out {
		out[i] = hs.At(i)
	}
	return out
}

// Fused returns the element-wise sum of all retained maps. An empty history
// returns ErrEmpty.
func (hs *History) Fused() (*Heatmap, error) {
	return Sum(hs.Heatmaps()...)
}

// Reset drops every retained map.
func (hs *History) Reset() {
	for i := range hs.buf {
		hs.buf[i] = nil
	}
	hs.start, hs.n = 0, 0
}
