// Package render projects filter and transform state onto images: the
// composite descriptions used by the live preview and the rasterised export.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"math/rand/v2"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"thirdcoast.systems/darkroom/pkg/filters"
	"thirdcoast.systems/darkroom/pkg/snapshot"
	"thirdcoast.systems/darkroom/pkg/transform"
)

const (
	// DefaultQuality is the JPEG quality of exported images.
	DefaultQuality = 90
	// ExportFilename is the download name of exported images.
	ExportFilename = "edited-image.jpg"
	// ExportMediaType is the media type of exported images.
	ExportMediaType = "image/jpeg"
)

var (
	// ErrEmptyImage is returned when the source has no natural size, i.e. it
	// has not been loaded or decoded.
	ErrEmptyImage = errors.New("image has no dimensions")
	// ErrDecode wraps failures to decode a source image.
	ErrDecode = errors.New("decode image")
)

// Composite is the pair of descriptions applied to the live preview.
type Composite struct {
	Filter    string `json:"filter"`
	Transform string `json:"transform"`
}

// Preview composes the live preview descriptions. It is pure: the same state
// always yields the same composite.
func Preview(f filters.State, t transform.State) Composite {
	return Composite{Filter: f.Compose(), Transform: t.Compose()}
}

// Options tunes an export.
type Options struct {
	// Quality is the JPEG quality (1-100); zero means DefaultQuality.
	Quality int
	// Rand drives the noise pass; nil seeds a source from the clock.
	Rand *rand.Rand
	// Workers bounds the row bands processed concurrently; zero means 8.
	Workers int
}

func (o Options) quality() int {
	if o.Quality <= 0 || o.Quality > 100 {
		return DefaultQuality
	}
	return o.Quality
}

func (o Options) rng() *rand.Rand {
	if o.Rand != nil {
		return o.Rand
	}
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return 8
	}
	return o.Workers
}

// Export renders img at its natural size: colour filters in composite order,
// the centred transform, then the noise, pixelate and vignette passes.
func Export(ctx context.Context, img image.Image, f filters.State, t transform.State, opts Options) (*image.NRGBA, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrEmptyImage
	}

	filtered := ApplyFilters(img, f)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	canvas := Draw(filtered, t)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := PostProcess(ctx, canvas, f, opts); err != nil {
		return nil, err
	}
	return canvas, nil
}

// Decode reads an encoded image, honouring EXIF orientation.
func Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return img, nil
}

// EncodeJPEG writes img as JPEG at quality.
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(quality))
}

// ExportSnapshot renders snap and returns the encoded JPEG.
func ExportSnapshot(ctx context.Context, snap snapshot.Snapshot, f filters.State, t transform.State, opts Options) ([]byte, error) {
	if snap.IsZero() || snap.Width() == 0 || snap.Height() == 0 {
		return nil, ErrEmptyImage
	}
	img, err := Decode(snap.Reader())
	if err != nil {
		return nil, err
	}
	out, err := Export(ctx, img, f, t, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := EncodeJPEG(&buf, out, opts.quality()); err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return buf.Bytes(), nil
}
