package media

import (
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-edge-platform/geti-sub021/internal/geometry"
)

// createTestImage writes a width x height PNG filled with c into a temporary
// directory and returns its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.png")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, createInMemoryImage(width, height, c)))
	return path
}

func createInMemoryImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCache_Load(t *testing.T) {
	path := createTestImage(t, 40, 20, color.RGBA{255, 0, 0, 255})
	cache := NewCache()

	img, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 1, cache.Len())

	again, err := cache.Load(path)
	require.NoError(t, err)
	assert.Same(t, img, again, "second Load did not return the cached image")

	cache.Evict(path)
	assert.Equal(t, 0, cache.Len())
}

func TestCache_LoadErrors(t *testing.T) {
	cache := NewCache()

	_, err := cache.Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err, "missing file")

	garbage := filepath.Join(t.TempDir(), "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o600))
	_, err = cache.Load(garbage)
	assert.Error(t, err, "undecodable file")

	assert.Equal(t, 0, cache.Len(), "failed loads must not be cached")
}

func TestCache_ConcurrentLoad(t *testing.T) {
	path := createTestImage(t, 10, 10, color.White)
	cache := NewCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Load(path)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, cache.Len())
	cache.Evict(path)
	assert.Equal(t, 0, cache.Len())
}

func TestLoadInfo(t *testing.T) {
	path := createTestImage(t, 64, 48, color.Black)

	info, err := LoadInfo(NewCache(), path)
	require.NoError(t, err)

	assert.Equal(t, 64, info.Width)
	assert.Equal(t, 48, info.Height)
	assert.Equal(t, "png", info.Format)
	assert.Positive(t, info.FileSizeBytes)
	assert.Equal(t, geometry.Rect{Width: 64, Height: 48}, info.ROI())
}

func TestROIOf(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 10, 25, 40))

	assert.Equal(t, geometry.Rect{X: 5, Y: 10, Width: 20, Height: 30}, ROIOf(img))
}

func TestCropShape(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{0, 0, 255, 255})

	tests := []struct {
		name       string
		shape      geometry.Shape
		scale      float64
		wantX      int
		wantY      int
		wantWidth  int
		wantHeight int
	}{
		{"rect", geometry.Rect{X: 10, Y: 20, Width: 30, Height: 40}, 1, 10, 20, 30, 40},
		{"fractional rect covers pixels", geometry.Rect{X: 10.5, Y: 20.5, Width: 5, Height: 5}, 1, 10, 20, 6, 6},
		{"circle", geometry.Circle{X: 50, Y: 50, Radius: 10}, 1, 40, 40, 20, 20},
		{"clipped to image", geometry.Rect{X: 90, Y: 90, Width: 50, Height: 50}, 1, 90, 90, 10, 10},
		{"scaled up", geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10}, 2, 0, 0, 20, 20},
		{"scaled down", geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10}, 0.5, 0, 0, 5, 5},
		{"non-positive scale ignored", geometry.Rect{X: 0, Y: 0, Width: 10, Height: 10}, 0, 0, 0, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CropShape(img, tt.shape, tt.scale)
			require.NoError(t, err)

			assert.Equal(t, tt.wantX, result.X)
			assert.Equal(t, tt.wantY, result.Y)
			assert.Equal(t, tt.wantWidth, result.Width)
			assert.Equal(t, tt.wantHeight, result.Height)
			assert.Equal(t, "image/png", result.MimeType)

			data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(data), 8)
			assert.Equal(t, "PNG", string(data[1:4]))
		})
	}
}

func TestCropShape_OutsideImage(t *testing.T) {
	img := createInMemoryImage(10, 10, color.White)

	for _, shape := range []geometry.Shape{nil, geometry.Rect{X: 20, Y: 20, Width: 5, Height: 5}} {
		_, err := CropShape(img, shape, 1)
		assert.ErrorIs(t, err, ErrOutsideImage, "shape %v", shape)
	}
}
