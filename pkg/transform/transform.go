// Package transform holds the geometric state of an edit session: an
// accumulating rotation and two independent axis flips.
package transform

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/image/math/f64"
)

// Op identifies a transform button.
type Op string

const (
	OpRotateLeft  Op = "rotate_left"
	OpRotateRight Op = "rotate_right"
	OpFlipX       Op = "flip_x"
	OpFlipY       Op = "flip_y"
)

// ErrUnknownOp is returned by Apply for unrecognised operations.
var ErrUnknownOp = errors.New("unknown transform")

// State is rotation in degrees (signed, accumulating) plus flips in {1, -1}.
type State struct {
	Rotate int `json:"rotate"`
	FlipX  int `json:"flip_x"`
	FlipY  int `json:"flip_y"`
}

// Defaults returns the identity transform.
func Defaults() State {
	return State{Rotate: 0, FlipX: 1, FlipY: 1}
}

// Reset restores the identity transform.
func (s *State) Reset() { *s = Defaults() }

// RotateLeft turns the image 90 degrees counter-clockwise.
func (s *State) RotateLeft() { s.Rotate -= 90 }

// RotateRight turns the image 90 degrees clockwise.
func (s *State) RotateRight() { s.Rotate += 90 }

// ToggleFlipX mirrors the horizontal axis.
func (s *State) ToggleFlipX() { s.FlipX = toggle(s.FlipX) }

// ToggleFlipY mirrors the vertical axis.
func (s *State) ToggleFlipY() { s.FlipY = toggle(s.FlipY) }

func toggle(v int) int {
	if v == 1 {
		return -1
	}
	return 1
}

// Apply performs the operation named by a transform button id.
func (s *State) Apply(op Op) error {
	switch op {
	case OpRotateLeft:
		s.RotateLeft()
	case OpRotateRight:
		s.RotateRight()
	case OpFlipX:
		s.ToggleFlipX()
	case OpFlipY:
		s.ToggleFlipY()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, string(op))
	}
	return nil
}

// IsIdentity reports whether the transform leaves the image unchanged.
func (s State) IsIdentity() bool {
	return s.Rotate%360 == 0 && s.FlipX == 1 && s.FlipY == 1
}

// Compose renders the transform description: rotate first, then scale.
func (s State) Compose() string {
	return "rotate(" + strconv.Itoa(s.Rotate) + "deg) scale(" + strconv.Itoa(s.FlipX) + ", " + strconv.Itoa(s.FlipY) + ")"
}

// Matrix returns the destination-from-source affine map used when exporting a
// w×h image onto a w×h canvas: translate to the centre, scale by the flips,
// rotate, then offset the source origin by minus half its size.
func (s State) Matrix(w, h int) f64.Aff3 {
	cos, sin := sincos(s.Rotate)
	fx, fy := float64(s.FlipX), float64(s.FlipY)

	a, b := fx*cos, -fx*sin
	d, e := fy*sin, fy*cos

	cx, cy := float64(w)/2, float64(h)/2
	return f64.Aff3{
		a, b, cx - a*cx - b*cy,
		d, e, cy - d*cx - e*cy,
	}
}

// sincos is exact for quarter turns so exported pixels land on the grid.
func sincos(deg int) (float64, float64) {
	n := ((deg % 360) + 360) % 360
	switch n {
	case 0:
		return 1, 0
	case 90:
		return 0, 1
	case 180:
		return -1, 0
	case 270:
		return 0, -1
	}
	rad := float64(n) * math.Pi / 180
	return math.Cos(rad), math.Sin(rad)
}
