package render

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"thirdcoast.systems/darkroom/pkg/filters"
	"thirdcoast.systems/darkroom/pkg/snapshot"
	"thirdcoast.systems/darkroom/pkg/utils/crops"
)

// EnhanceFilters is the fixed composite of the local "enhancer" effect.
var EnhanceFilters = filters.State{Brightness: 115, Contrast: 130, Saturate: 110}

// Enhance applies the enhancer composite to img.
func Enhance(img image.Image) *image.NRGBA {
	return ApplyFilters(img, EnhanceFilters)
}

// Crop cuts the region c out of img.
func Crop(img image.Image, c crops.Crop) (*image.NRGBA, error) {
	b := img.Bounds()
	r, err := c.Rect(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, r.Add(b.Min)), nil
}

// EnhanceSnapshot decodes snap, enhances it and re-encodes it as JPEG.
func EnhanceSnapshot(snap snapshot.Snapshot, quality int) (snapshot.Snapshot, error) {
	return reencode(snap, quality, func(img image.Image) (image.Image, error) {
		return Enhance(img), nil
	})
}

// CropSnapshot decodes snap, crops it and re-encodes it as JPEG.
func CropSnapshot(snap snapshot.Snapshot, c crops.Crop, quality int) (snapshot.Snapshot, error) {
	return reencode(snap, quality, func(img image.Image) (image.Image, error) {
		return Crop(img, c)
	})
}

func reencode(snap snapshot.Snapshot, quality int, fn func(image.Image) (image.Image, error)) (snapshot.Snapshot, error) {
	if snap.IsZero() || snap.Width() == 0 || snap.Height() == 0 {
		return snapshot.Snapshot{}, ErrEmptyImage
	}
	img, err := Decode(snap.Reader())
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	out, err := fn(img)
	if err != nil {
		return snapshot.Snapshot{}, err
	}
	var buf bytes.Buffer
	if err := EncodeJPEG(&buf, out, quality); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("encode: %w", err)
	}
	return snapshot.New(buf.Bytes(), ExportMediaType)
}
