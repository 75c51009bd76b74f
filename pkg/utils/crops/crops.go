// Package crops turns crop selections into pixel rectangles.
package crops

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidCrop is returned for selections that do not describe a region
// of the image.
var ErrInvalidCrop = errors.New("invalid crop")

// Crop is a crop region. Coordinates are normalized (0.0-1.0) relative to
// the image dimensions; X and Y locate the centre of the region.
type Crop struct {
	AspectRatio string  `json:"aspect_ratio"` // "16:9", "9:16", "1:1", "4:5", "custom"
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
}

// Presets lists the aspect ratios offered next to free-form cropping.
var Presets = []string{"1:1", "4:3", "3:2", "16:9", "9:16", "4:5", "21:9"}

// FullFrame covers the whole image.
func FullFrame() Crop {
	return Crop{AspectRatio: "custom", X: 0.5, Y: 0.5, Width: 1, Height: 1}
}

// ParseAspectRatio parses "w:h" (e.g. "16:9" or "2.39:1").
func ParseAspectRatio(ratio string) (float64, float64, error) {
	parts := strings.Split(ratio, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: aspect ratio %q", ErrInvalidCrop, ratio)
	}
	w, errW := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	h, errH := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%w: aspect ratio %q", ErrInvalidCrop, ratio)
	}
	return w, h, nil
}

// CalculateCropForAspectRatio returns the largest centred crop of a
// width×height image with the given aspect ratio. Unparseable ratios yield
// the full frame.
func CalculateCropForAspectRatio(width, height int, aspectRatio string) Crop {
	targetWidth, targetHeight, err := ParseAspectRatio(aspectRatio)
	if err != nil || width <= 0 || height <= 0 {
		c := FullFrame()
		c.AspectRatio = aspectRatio
		return c
	}

	targetAspect := targetWidth / targetHeight
	imageAspect := float64(width) / float64(height)

	var cropW, cropH float64
	if imageAspect > targetAspect {
		// Image is wider - crop sides
		cropH = 1.0
		cropW = targetAspect / imageAspect
	} else {
		// Image is taller - crop top/bottom
		cropW = 1.0
		cropH = imageAspect / targetAspect
	}

	return Crop{
		AspectRatio: aspectRatio,
		X:           0.5,
		Y:           0.5,
		Width:       cropW,
		Height:      cropH,
	}
}

// LooksLikeFullFrame returns true if the crop covers the entire frame.
// Used to skip no-op crops.
func (c Crop) LooksLikeFullFrame() bool {
	return c.X >= 0.49 && c.X <= 0.51 && c.Y >= 0.49 && c.Y <= 0.51 && c.Width >= 0.99 && c.Height >= 0.99
}

// Validate checks that the region lies inside the unit square.
func (c Crop) Validate() error {
	if c.Width <= 0 || c.Height <= 0 || c.Width > 1 || c.Height > 1 {
		return fmt.Errorf("%w: size %gx%g", ErrInvalidCrop, c.Width, c.Height)
	}
	const eps = 1e-9
	if c.X-c.Width/2 < -eps || c.X+c.Width/2 > 1+eps || c.Y-c.Height/2 < -eps || c.Y+c.Height/2 > 1+eps {
		return fmt.Errorf("%w: region extends outside the image", ErrInvalidCrop)
	}
	return nil
}

// Rect converts the normalized region to pixel coordinates of a width×height
// image. The result is clipped to the image and never empty for a valid crop.
func (c Crop) Rect(width, height int) (image.Rectangle, error) {
	if err := c.Validate(); err != nil {
		return image.Rectangle{}, err
	}
	bounds := image.Rect(0, 0, width, height)

	x0 := int(math.Round((c.X - c.Width/2) * float64(width)))
	y0 := int(math.Round((c.Y - c.Height/2) * float64(height)))
	w := max(1, int(math.Round(c.Width*float64(width))))
	h := max(1, int(math.Round(c.Height*float64(height))))

	r := image.Rect(x0, y0, x0+w, y0+h).Intersect(bounds)
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("%w: empty region", ErrInvalidCrop)
	}
	return r, nil
}

// FromPixels builds a normalized crop from a pixel rectangle selected on a
// width×height image.
func FromPixels(r image.Rectangle, width, height int) (Crop, error) {
	if width <= 0 || height <= 0 {
		return Crop{}, fmt.Errorf("%w: image has no size", ErrInvalidCrop)
	}
	r = r.Intersect(image.Rect(0, 0, width, height))
	if r.Empty() {
		return Crop{}, fmt.Errorf("%w: empty region", ErrInvalidCrop)
	}
	fw, fh := float64(width), float64(height)
	return Crop{
		AspectRatio: "custom",
		X:           (float64(r.Min.X) + float64(r.Dx())/2) / fw,
		Y:           (float64(r.Min.Y) + float64(r.Dy())/2) / fh,
		Width:       float64(r.Dx()) / fw,
		Height:      float64(r.Dy()) / fh,
	}, nil
}
