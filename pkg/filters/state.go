// Package filters holds the adjustment filter state of an edit session and
// composes it into the single filter description applied to the preview.
package filters

import (
	"fmt"
	"strings"
)

// State is the current magnitude of every adjustment filter.
// The zero value is not neutral; use Defaults.
type State struct {
	Brightness float64 `json:"brightness"`
	Contrast   float64 `json:"contrast"`
	Saturate   float64 `json:"saturate"`
	Invert     float64 `json:"invert"`
	Blur       float64 `json:"blur"`
	Grayscale  float64 `json:"grayscale"`
	Sepia      float64 `json:"sepia"`
	Hue        float64 `json:"hue"`
	Noise      float64 `json:"noise"`
	Pixelate   float64 `json:"pixelate"`
	Vignette   float64 `json:"vignette"`
}

// Defaults returns the neutral filter state.
func Defaults() State {
	return State{Brightness: 100, Contrast: 100, Saturate: 100}
}

// Reset restores every filter to its neutral default.
func (s *State) Reset() {
	*s = Defaults()
}

// ResetPreview restores the filters the live preview shows to their
// defaults. Export-only passes keep their values.
func (s *State) ResetPreview() {
	next := Defaults()
	for _, def := range defs {
		if def.ExportOnly {
			v, _ := s.Get(def.Name)
			_ = next.Set(def.Name, v)
		}
	}
	*s = next
}

// field maps a filter name to its slot.
func (s *State) field(name Name) (*float64, error) {
	switch name {
	case Brightness:
		return &s.Brightness, nil
	case Contrast:
		return &s.Contrast, nil
	case Saturate:
		return &s.Saturate, nil
	case Invert:
		return &s.Invert, nil
	case Blur:
		return &s.Blur, nil
	case Grayscale:
		return &s.Grayscale, nil
	case Sepia:
		return &s.Sepia, nil
	case Hue:
		return &s.Hue, nil
	case Noise:
		return &s.Noise, nil
	case Pixelate:
		return &s.Pixelate, nil
	case Vignette:
		return &s.Vignette, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFilter, string(name))
	}
}

// Set stores value for the named filter. Range clamping belongs to the
// control that produced the value (see FilterParam.Clamp).
func (s *State) Set(name Name, value float64) error {
	f, err := s.field(name)
	if err != nil {
		return err
	}
	*f = value
	return nil
}

// Get returns the current value of the named filter.
func (s State) Get(name Name) (float64, error) {
	f, err := s.field(name)
	if err != nil {
		return 0, err
	}
	return *f, nil
}

// IsNeutral reports whether every filter is at its default.
func (s State) IsNeutral() bool {
	return s == Defaults()
}

// Compose renders the composited filter description. The order is fixed:
// these operations do not commute.
func (s State) Compose() string {
	parts := []string{
		"brightness(" + FmtNum(s.Brightness) + "%)",
		"contrast(" + FmtNum(s.Contrast) + "%)",
		"saturate(" + FmtNum(s.Saturate) + "%)",
		"invert(" + FmtNum(s.Invert) + "%)",
		"blur(" + FmtNum(s.Blur) + "px)",
		"grayscale(" + FmtNum(s.Grayscale) + "%)",
		"sepia(" + FmtNum(s.Sepia) + "%)",
		"hue-rotate(" + FmtNum(s.Hue) + "deg)",
	}
	return strings.Join(parts, " ")
}
