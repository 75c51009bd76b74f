package render

import (
	"context"
	"image"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"thirdcoast.systems/darkroom/pkg/filters"
)

// Pass is one export-only post-processing step applied to the canvas in place.
type Pass struct {
	Name      filters.Name
	Intensity float64
}

// Passes returns the post-processing steps enabled in f. The order is fixed
// (noise, pixelate, vignette) no matter in which order they were enabled.
func Passes(f filters.State) []Pass {
	var out []Pass
	if f.Noise > 0 {
		out = append(out, Pass{filters.Noise, f.Noise})
	}
	if f.Pixelate > 0 {
		out = append(out, Pass{filters.Pixelate, f.Pixelate})
	}
	if f.Vignette > 0 {
		out = append(out, Pass{filters.Vignette, f.Vignette})
	}
	return out
}

// PostProcess runs Passes(f) over canvas.
func PostProcess(ctx context.Context, canvas *image.NRGBA, f filters.State, opts Options) error {
	for _, p := range Passes(f) {
		var err error
		switch p.Name {
		case filters.Noise:
			err = Noise(ctx, canvas, p.Intensity, opts.rng(), opts.workers())
		case filters.Pixelate:
			err = Pixelate(ctx, canvas, p.Intensity, opts.workers())
		case filters.Vignette:
			err = Vignette(ctx, canvas, p.Intensity, opts.workers())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// band is a half-open row range.
type band struct{ y0, y1 int }

// bands splits h rows into runs of at least step rows, aligned to step.
func bands(h, step, workers int) []band {
	rows := (h + workers - 1) / workers
	rows = max(step, (rows+step-1)/step*step)
	var out []band
	for y := 0; y < h; y += rows {
		out = append(out, band{y, min(h, y+rows)})
	}
	return out
}

func forBands(ctx context.Context, h, step, workers int, fn func(i int, b band)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, b := range bands(h, step, workers) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(i, b)
			return nil
		})
	}
	return g.Wait()
}

// Noise adds one uniform sample in [-intensity/2, intensity/2) per pixel to
// the red, green and blue channels alike. Alpha is untouched.
func Noise(ctx context.Context, img *image.NRGBA, intensity float64, rng *rand.Rand, workers int) error {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	parts := bands(h, 1, workers)

	// Each band gets its own source seeded from rng so the result only
	// depends on rng, not on scheduling.
	seeds := make([][2]uint64, len(parts))
	for i := range seeds {
		seeds[i] = [2]uint64{rng.Uint64(), rng.Uint64()}
	}

	return forBands(ctx, h, 1, workers, func(i int, b band) {
		local := rand.New(rand.NewPCG(seeds[i][0], seeds[i][1]))
		for y := b.y0; y < b.y1; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+w*4]
			for x := 0; x < w*4; x += 4 {
				n := (local.Float64() - 0.5) * intensity
				row[x] = clamp8(float64(row[x]) + n)
				row[x+1] = clamp8(float64(row[x+1]) + n)
				row[x+2] = clamp8(float64(row[x+2]) + n)
			}
		}
	})
}

// BlockSize is the pixelate block edge for intensity, never below 1.
func BlockSize(intensity float64) int {
	return max(1, int(math.Floor(intensity/10)))
}

// Pixelate fills each block with the colour of its top-left pixel, opaque.
func Pixelate(ctx context.Context, img *image.NRGBA, intensity float64, workers int) error {
	size := BlockSize(intensity)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	return forBands(ctx, h, size, workers, func(_ int, b band) {
		for by := b.y0; by < b.y1; by += size {
			for bx := 0; bx < w; bx += size {
				off := by*img.Stride + bx*4
				r, g, bl := img.Pix[off], img.Pix[off+1], img.Pix[off+2]
				for y := by; y < min(by+size, h); y++ {
					for x := bx; x < min(bx+size, w); x++ {
						o := y*img.Stride + x*4
						img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = r, g, bl, 255
					}
				}
			}
		}
	})
}

// Vignette composites a radial gradient over the frame: transparent at the
// centre, black at alpha intensity/100 from radius max(w,h)/2 outwards.
func Vignette(ctx context.Context, img *image.NRGBA, intensity float64, workers int) error {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	cx, cy := float64(w)/2, float64(h)/2
	radius := math.Max(float64(w), float64(h)) / 2
	peak := math.Min(intensity/100, 1)

	return forBands(ctx, h, 1, workers, func(_ int, b band) {
		for y := b.y0; y < b.y1; y++ {
			dy := float64(y) + 0.5 - cy
			for x := 0; x < w; x++ {
				dx := float64(x) + 0.5 - cx
				t := math.Min(math.Hypot(dx, dy)/radius, 1)
				over := t * peak
				if over == 0 {
					continue
				}
				o := y*img.Stride + x*4
				a := float64(img.Pix[o+3]) / 255
				outA := over + a*(1-over)
				if outA == 0 {
					continue
				}
				k := a * (1 - over) / outA
				img.Pix[o] = clamp8(float64(img.Pix[o]) * k)
				img.Pix[o+1] = clamp8(float64(img.Pix[o+1]) * k)
				img.Pix[o+2] = clamp8(float64(img.Pix[o+2]) * k)
				img.Pix[o+3] = clamp8(outA * 255)
			}
		}
	})
}
