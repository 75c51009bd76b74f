package filters

import (
	"errors"
	"fmt"
	"strconv"
)

// Name identifies one adjustment filter.
type Name string

const (
	Brightness Name = "brightness"
	Contrast   Name = "contrast"
	Saturate   Name = "saturate"
	Invert     Name = "invert"
	Blur       Name = "blur"
	Grayscale  Name = "grayscale"
	Sepia      Name = "sepia"
	Hue        Name = "hue"
	Noise      Name = "noise"
	Pixelate   Name = "pixelate"
	Vignette   Name = "vignette"
)

// ErrUnknownFilter is returned for filter names outside the declared set.
var ErrUnknownFilter = errors.New("unknown filter")

// FilterParamType describes the kind of input control for a filter.
type FilterParamType string

const (
	FilterParamRange FilterParamType = "range"
)

// FilterParam describes the slider bound to one adjustment filter.
type FilterParam struct {
	Name       Name            `json:"name"`
	Label      string          `json:"label"`
	Type       FilterParamType `json:"type"`
	Min        float64         `json:"min"`
	Max        float64         `json:"max"`
	Step       float64         `json:"step"`
	DefaultVal float64         `json:"default"`
	Unit       string          `json:"unit"`
	// ExportOnly marks filters that the live preview cannot show; they are
	// applied as post-processing passes at export time.
	ExportOnly bool `json:"export_only,omitempty"`
}

// defs is ordered the way the filter grid presents the controls.
var defs = []FilterParam{
	{Name: Brightness, Label: "Brightness", Type: FilterParamRange, Min: 0, Max: 200, Step: 1, DefaultVal: 100, Unit: "%"},
	{Name: Contrast, Label: "Contrast", Type: FilterParamRange, Min: 0, Max: 200, Step: 1, DefaultVal: 100, Unit: "%"},
	{Name: Saturate, Label: "Saturation", Type: FilterParamRange, Min: 0, Max: 200, Step: 1, DefaultVal: 100, Unit: "%"},
	{Name: Invert, Label: "Invert", Type: FilterParamRange, Min: 0, Max: 100, Step: 1, DefaultVal: 0, Unit: "%"},
	{Name: Blur, Label: "Blur", Type: FilterParamRange, Min: 0, Max: 100, Step: 1, DefaultVal: 0, Unit: "px"},
	{Name: Grayscale, Label: "Grayscale", Type: FilterParamRange, Min: 0, Max: 100, Step: 1, DefaultVal: 0, Unit: "%"},
	{Name: Sepia, Label: "Sepia", Type: FilterParamRange, Min: 0, Max: 100, Step: 1, DefaultVal: 0, Unit: "%"},
	{Name: Hue, Label: "Hue", Type: FilterParamRange, Min: 0, Max: 360, Step: 1, DefaultVal: 0, Unit: "deg"},
	{Name: Noise, Label: "Noise", Type: FilterParamRange, Min: 0, Max: 100, Step: 1, DefaultVal: 0, Unit: "%", ExportOnly: true},
	{Name: Pixelate, Label: "Pixelate", Type: FilterParamRange, Min: 0, Max: 100, Step: 1, DefaultVal: 0, Unit: "%", ExportOnly: true},
	{Name: Vignette, Label: "Vignette", Type: FilterParamRange, Min: 0, Max: 100, Step: 1, DefaultVal: 0, Unit: "%", ExportOnly: true},
}

// Defs returns the control definitions for every adjustment filter.
func Defs() []FilterParam {
	out := make([]FilterParam, len(defs))
	copy(out, defs)
	return out
}

// Def returns the control definition for a filter name.
func Def(name Name) (FilterParam, error) {
	for _, d := range defs {
		if d.Name == name {
			return d, nil
		}
	}
	return FilterParam{}, fmt.Errorf("%w: %q", ErrUnknownFilter, string(name))
}

// Clamp constrains v to the declared range of the control.
func (p FilterParam) Clamp(v float64) float64 {
	if v < p.Min {
		return p.Min
	}
	if v > p.Max {
		return p.Max
	}
	return v
}

// Readout formats a value the way the slider label shows it.
func (p FilterParam) Readout(v float64) string {
	return FmtNum(v) + "%"
}

// ---------------------------------------------------------------------------
// Template helpers
// ---------------------------------------------------------------------------

// FmtNum formats a float for use in composite descriptions (no trailing zeros).
func FmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseName validates a raw filter name from a route or form value.
func ParseName(raw string) (Name, error) {
	if _, err := Def(Name(raw)); err != nil {
		return "", err
	}
	return Name(raw), nil
}
