package render

import (
	"image"

	"golang.org/x/image/draw"

	"thirdcoast.systems/darkroom/pkg/transform"
)

// Draw paints src onto a transparent canvas of the same size through t,
// pivoting on the canvas centre. Areas the rotated image does not cover stay
// transparent and encode as black.
func Draw(src *image.NRGBA, t transform.State) *image.NRGBA {
	b := src.Bounds()
	canvas := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if t.IsIdentity() {
		draw.Draw(canvas, canvas.Bounds(), src, b.Min, draw.Src)
		return canvas
	}

	// The matrix is expressed in zero-origin source coordinates.
	if b.Min != (image.Point{}) {
		src = rebase(src)
	}
	m := t.Matrix(b.Dx(), b.Dy())
	if gridAligned(t) {
		draw.NearestNeighbor.Transform(canvas, m, src, src.Bounds(), draw.Over, nil)
	} else {
		draw.BiLinear.Transform(canvas, m, src, src.Bounds(), draw.Over, nil)
	}
	return canvas
}

// gridAligned reports whether t maps pixel centres onto pixel centres for any
// canvas size, in which case no resampling is needed.
func gridAligned(t transform.State) bool {
	return t.Rotate%180 == 0
}

func rebase(src *image.NRGBA) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(out, out.Bounds(), src, src.Bounds().Min, draw.Src)
	return out
}
