package render

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"thirdcoast.systems/darkroom/pkg/filters"
)

// matrix is a 3x3 colour matrix over linear 0-255 channel values.
type matrix [9]float64

func (m matrix) apply(r, g, b float64) (float64, float64, float64) {
	return m[0]*r + m[1]*g + m[2]*b,
		m[3]*r + m[4]*g + m[5]*b,
		m[6]*r + m[7]*g + m[8]*b
}

func saturateMatrix(s float64) matrix {
	return matrix{
		0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s,
		0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s,
		0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s,
	}
}

func grayscaleMatrix(g float64) matrix {
	a := 1 - math.Min(g, 1)
	return matrix{
		0.2126 + 0.7874*a, 0.7152 - 0.7152*a, 0.0722 - 0.0722*a,
		0.2126 - 0.2126*a, 0.7152 + 0.2848*a, 0.0722 - 0.0722*a,
		0.2126 - 0.2126*a, 0.7152 - 0.7152*a, 0.0722 + 0.9278*a,
	}
}

func sepiaMatrix(s float64) matrix {
	a := 1 - math.Min(s, 1)
	return matrix{
		0.393 + 0.607*a, 0.769 - 0.769*a, 0.189 - 0.189*a,
		0.349 - 0.349*a, 0.686 + 0.314*a, 0.168 - 0.168*a,
		0.272 - 0.272*a, 0.534 - 0.534*a, 0.131 + 0.869*a,
	}
}

func hueRotateMatrix(deg float64) matrix {
	rad := deg * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	return matrix{
		0.213 + c*0.787 - s*0.213, 0.715 - c*0.715 - s*0.715, 0.072 - c*0.072 + s*0.928,
		0.213 - c*0.213 + s*0.143, 0.715 + c*0.285 + s*0.140, 0.072 - c*0.072 - s*0.283,
		0.213 - c*0.213 - s*0.787, 0.715 - c*0.715 + s*0.715, 0.072 + c*0.928 + s*0.072,
	}
}

// pixelFunc maps one colour; alpha is left to the caller.
type pixelFunc func(r, g, b float64) (float64, float64, float64)

func adjust(img image.Image, fn pixelFunc) *image.NRGBA {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		r, g, b := fn(float64(c.R), float64(c.G), float64(c.B))
		return color.NRGBA{R: clamp8(r), G: clamp8(g), B: clamp8(b), A: c.A}
	})
}

func clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// colourPass is one step of the filter composite.
type colourPass struct {
	name  filters.Name
	apply func(image.Image) *image.NRGBA
}

// colourPasses returns the non-neutral steps of f in composite order:
// brightness, contrast, saturate, invert, blur, grayscale, sepia, hue-rotate.
func colourPasses(f filters.State) []colourPass {
	var passes []colourPass

	if f.Brightness != 100 {
		k := f.Brightness / 100
		passes = append(passes, colourPass{filters.Brightness, func(img image.Image) *image.NRGBA {
			return adjust(img, func(r, g, b float64) (float64, float64, float64) {
				return r * k, g * k, b * k
			})
		}})
	}
	if f.Contrast != 100 {
		k := f.Contrast / 100
		passes = append(passes, colourPass{filters.Contrast, func(img image.Image) *image.NRGBA {
			return adjust(img, func(r, g, b float64) (float64, float64, float64) {
				return (r-127.5)*k + 127.5, (g-127.5)*k + 127.5, (b-127.5)*k + 127.5
			})
		}})
	}
	if f.Saturate != 100 {
		m := saturateMatrix(f.Saturate / 100)
		passes = append(passes, colourPass{filters.Saturate, func(img image.Image) *image.NRGBA {
			return adjust(img, m.apply)
		}})
	}
	if f.Invert > 0 {
		a := math.Min(f.Invert/100, 1)
		passes = append(passes, colourPass{filters.Invert, func(img image.Image) *image.NRGBA {
			return adjust(img, func(r, g, b float64) (float64, float64, float64) {
				return r*(1-2*a) + 255*a, g*(1-2*a) + 255*a, b*(1-2*a) + 255*a
			})
		}})
	}
	if f.Blur > 0 {
		sigma := f.Blur
		passes = append(passes, colourPass{filters.Blur, func(img image.Image) *image.NRGBA {
			return imaging.Blur(img, sigma)
		}})
	}
	if f.Grayscale > 0 {
		m := grayscaleMatrix(f.Grayscale / 100)
		passes = append(passes, colourPass{filters.Grayscale, func(img image.Image) *image.NRGBA {
			return adjust(img, m.apply)
		}})
	}
	if f.Sepia > 0 {
		m := sepiaMatrix(f.Sepia / 100)
		passes = append(passes, colourPass{filters.Sepia, func(img image.Image) *image.NRGBA {
			return adjust(img, m.apply)
		}})
	}
	if math.Mod(f.Hue, 360) != 0 {
		m := hueRotateMatrix(f.Hue)
		passes = append(passes, colourPass{filters.Hue, func(img image.Image) *image.NRGBA {
			return adjust(img, m.apply)
		}})
	}
	return passes
}

// ApplyFilters runs the filter composite of f over img. The source is never
// modified.
func ApplyFilters(img image.Image, f filters.State) *image.NRGBA {
	out := imaging.Clone(img)
	for _, p := range colourPasses(f) {
		out = p.apply(out)
	}
	return out
}
