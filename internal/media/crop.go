package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"

	"github.com/open-edge-platform/geti-sub021/internal/geometry"
)

// ErrOutsideImage is returned when a shape does not overlap the image.
var ErrOutsideImage = errors.New("shape lies outside the image")

// CropResult is an encoded thumbnail.
type CropResult struct {
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// CropShape crops the bounding box of shape out of img, clipped to the image
// bounds, and scales it by scale. Non-positive scales leave the crop as is.
// X and Y report the crop origin in image coordinates before scaling.
func CropShape(img image.Image, shape geometry.Shape, scale float64) (*CropResult, error) {
	if shape == nil {
		return nil, fmt.Errorf("crop: %w", ErrOutsideImage)
	}
	region := pixelRect(shape.BoundingBox()).Intersect(img.Bounds())
	if region.Empty() {
		return nil, fmt.Errorf("crop %v: %w", shape.BoundingBox(), ErrOutsideImage)
	}

	cropped := imaging.Crop(img, region)

	if scale != 1.0 && scale > 0 {
		width := max(1, int(float64(cropped.Bounds().Dx())*scale))
		height := max(1, int(float64(cropped.Bounds().Dy())*scale))
		cropped = imaging.Resize(cropped, width, height, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	return &CropResult{
		X:           region.Min.X,
		Y:           region.Min.Y,
		Width:       cropped.Bounds().Dx(),
		Height:      cropped.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// pixelRect returns the smallest pixel rectangle covering r.
func pixelRect(r geometry.Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)),
		int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.Width)),
		int(math.Ceil(r.Y+r.Height)),
	)
}
