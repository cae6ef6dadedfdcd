package imaging

import (
	"fmt"
	"image"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/anthonynsimon/bild/imgio"
)

// ImageCache provides thread-safe caching of decoded frames to avoid
// redundant disk reads.
//
// Frames stay cached until removed with Evict. Different paths to
// the same file (relative vs absolute) are separate entries.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the cached frame for path, decoding it from disk on first use.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Evict removes one frame. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// Len returns the number of cached frames.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Load decodes one image file.
func Load(path string) (image.Image, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	return img, nil
}

// Save encodes img to path, choosing the format from the file extension:
//   - ".jpg", ".jpeg" -> JPEG at quality 95
//   - ".bmp" -> BMP
//   - anything else -> PNG
func Save(path string, img image.Image) error {
	var enc imgio.Encoder
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		enc = imgio.JPEGEncoder(95)
	case ".bmp":
		enc = imgio.BMPEncoder()
	default:
		enc = imgio.PNGEncoder()
	}
	if err := imgio.Save(path, img, enc); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}

// Frame is one decoded image of a Sequence.
type Frame struct {
	// Index is the frame's position in the full sequence, before any range is applied.
	Index int
	Path  string
	Image image.Image
}

// Sequence yields frames from an ordered list of image files.
type Sequence struct {
	paths []string
	next  int
}

// NewSequence returns a sequence over paths in the given order.
func NewSequence(paths []string) *Sequence {
	return &Sequence{paths: append([]string(nil), paths...)}
}

// Glob returns a sequence over the files matching pattern, sorted by path.
// A pattern that matches nothing is an error.
func Glob(pattern string) (*Sequence, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid frame pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no frames match %q", pattern)
	}
	sort.Strings(paths)
	return NewSequence(paths), nil
}

// Range limits the sequence to frames [start, end). A non-positive end means
// the last frame. Out-of-range values are clamped.
func (s *Sequence) Range(start, end int) *Sequence {
	if end <= 0 || end > len(s.paths) {
		end = len(s.paths)
	}
	start = max(0, min(start, end))
	s.paths = s.paths[:end]
	s.next = start
	return s
}

// Len returns the number of frames left.
func (s *Sequence) Len() int {
	return len(s.paths) - s.next
}

// Paths returns the files the sequence will still yield.
func (s *Sequence) Paths() []string {
	return s.paths[s.next:]
}

// Next decodes and returns the next frame. It returns io.EOF when the
// sequence is exhausted. A frame that fails to decode is skipped past, so
// the caller may log the error and continue.
func (s *Sequence) Next() (*Frame, error) {
	if s.next >= len(s.paths) {
		return nil, io.EOF
	}
	i := s.next
	s.next++
	img, err := Load(s.paths[i])
	if err != nil {
		return nil, err
	}
	return &Frame{Index: i, Path: s.paths[i], Image: img}, nil
}
