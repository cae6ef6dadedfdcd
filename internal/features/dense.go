package features

// Dense is a channels x blocks-y x blocks-x tensor of block feature vectors,
// stored contiguously in that order with BlockLen values per block.
type Dense struct {
	Channels int
	BlocksY  int
	BlocksX  int
	BlockLen int
	Data     []float64
}

// NewDense returns a zeroed tensor of the given shape. Negative extents are
// treated as zero.
func NewDense(channels, blocksY, blocksX, blockLen int) *Dense {
	channels, blocksY, blocksX, blockLen = max(channels, 0), max(blocksY, 0), max(blocksX, 0), max(blockLen, 0)
	return &Dense{
		Channels: channels,
		BlocksY:  blocksY,
		BlocksX:  blocksX,
		BlockLen: blockLen,
		Data:     make([]float64, channels*blocksY*blocksX*blockLen),
	}
}

func (d *Dense) offset(c, by, bx int) int {
	return ((c*d.BlocksY+by)*d.BlocksX + bx) * d.BlockLen
}

// Block returns the feature vector of block (bx, by) in channel c. The slice
// aliases the tensor.
func (d *Dense) Block(c, by, bx int) []float64 {
	o := d.offset(c, by, bx)
	return d.Data[o : o+d.BlockLen : o+d.BlockLen]
}

// Window copies the n x n block square whose top-left block is (bx, by), over
// every channel, into one vector: channel-major, then rows, then columns.
func (d *Dense) Window(by, bx, n int) []float64 {
	out := make([]float64, 0, d.Channels*n*n*d.BlockLen)
	for c := 0; c < d.Channels; c++ {
		for y := by; y < by+n; y++ {
			o := d.offset(c, y, bx)
			out = append(out, d.Data[o:o+n*d.BlockLen]...)
		}
	}
	return out
}
