package media

import (
	"errors"
	"fmt"
	"image"
	"os"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/open-edge-platform/geti-sub021/internal/geometry"
)

// ErrEmptyImage is returned for images without pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// Cache keeps decoded images keyed by path.
//
// Cache is safe for concurrent use. Images stay cached until evicted.
type Cache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

func NewCache() *Cache {
	return &Cache{images: make(map[string]image.Image)}
}

// Load returns the image at path, decoding it on first use. Paths are used
// as given: a relative and an absolute path to the same file are cached
// separately.
func (c *Cache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyImage)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Info describes a loaded image.
type Info struct {
	Path          string `json:"path"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Format        string `json:"format"`
	FileSizeBytes int64  `json:"file_size_bytes"`

	roi geometry.Rect
}

// ROI returns the region of interest covering the whole image.
func (i Info) ROI() geometry.Rect {
	return i.roi
}

// LoadInfo loads the image at path into cache and describes it. Width and
// Height are reported after orientation has been applied.
func LoadInfo(cache *Cache, path string) (*Info, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	bounds := img.Bounds()
	return &Info{
		Path:          path,
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        formatOf(path),
		FileSizeBytes: stat.Size(),
		roi:           ROIOf(img),
	}, nil
}

func formatOf(path string) string {
	f, err := imaging.FormatFromFilename(path)
	if err != nil {
		return "unknown"
	}
	return strings.ToLower(f.String())
}

// ROIOf returns the region of interest covering img.
func ROIOf(img image.Image) geometry.Rect {
	b := img.Bounds()
	return geometry.Rect{X: float64(b.Min.X), Y: float64(b.Min.Y), Width: float64(b.Dx()), Height: float64(b.Dy())}
}
