// Package effects dispatches AI-style effects to the remote effect server.
package effects

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Name identifies an effect.
type Name string

const (
	BackgroundRemoval Name = "background_removal"
	Compression       Name = "compression"
	Colorization      Name = "colorization"
	OilPainting       Name = "oil_painting"
	PencilSketch      Name = "pencil_sketch"
	Enhancer          Name = "enhancer"
)

// Category selects the history stack an effect records into.
type Category string

const (
	CategoryAI     Category = "ai"
	CategorySketch Category = "sketch"
)

// ErrUnknownEffect is returned for effect names outside the catalogue.
var ErrUnknownEffect = errors.New("unknown effect")

// Spec describes how an effect is executed.
type Spec struct {
	Name     Name   `json:"name"`
	Label    string `json:"label"`
	Endpoint string `json:"-"`
	// Filename is the name given to the uploaded image part.
	Filename string `json:"-"`
	// Local effects run in-process instead of calling the effect server.
	Local   bool   `json:"local"`
	Success string `json:"-"`
}

var specs = []Spec{
	{Name: BackgroundRemoval, Endpoint: "/remove-bg", Filename: "image.png", Success: "Background removed successfully!"},
	{Name: Compression, Endpoint: "/compress", Filename: "image.jpg", Success: "Image compressed successfully!"},
	{Name: Colorization, Endpoint: "/colorize", Filename: "image.png", Success: "Image colorized successfully!"},
	{Name: OilPainting, Endpoint: "/oil_paint", Filename: "image.jpg", Success: "Oil painting effect applied!"},
	{Name: PencilSketch, Endpoint: "/pencil_sketch", Filename: "image.png", Success: "Pencil sketch created!"},
	{Name: Enhancer, Local: true, Success: "Image enhanced successfully!"},
}

// SketchVariationSuccess is the notice shown after a sketch variation.
const SketchVariationSuccess = "Sketch variation applied!"

var titler = cases.Title(language.English)

func init() {
	for i := range specs {
		specs[i].Label = titler.String(strings.ReplaceAll(string(specs[i].Name), "_", " "))
	}
}

// Specs returns the effect catalogue.
func Specs() []Spec {
	out := make([]Spec, len(specs))
	copy(out, specs)
	return out
}

// Lookup returns the spec for name.
func Lookup(name Name) (Spec, error) {
	for _, s := range specs {
		if s.Name == name {
			return s, nil
		}
	}
	return Spec{}, fmt.Errorf("%w: %q", ErrUnknownEffect, string(name))
}

// ParseName validates a raw effect name from a route or form value. The
// effects grid calls the pencil sketch button "sketch".
func ParseName(raw string) (Name, error) {
	raw = strings.TrimSpace(raw)
	if raw == "sketch" {
		raw = string(PencilSketch)
	}
	s, err := Lookup(Name(raw))
	if err != nil {
		return "", err
	}
	return s.Name, nil
}

// SketchVariation is one preset of the sketch variation grid.
type SketchVariation struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	BlurSigma float64 `json:"blur_sigma"`
	Sharpen   float64 `json:"sharpen"`
}

// SketchVariations are the presets offered by the sketch grid.
var SketchVariations = []SketchVariation{
	{ID: "soft", Label: "Soft", BlurSigma: 5, Sharpen: 0.5},
	{ID: "classic", Label: "Classic", BlurSigma: 2, Sharpen: 1},
	{ID: "sharp", Label: "Sharp", BlurSigma: 1, Sharpen: 2},
	{ID: "bold", Label: "Bold", BlurSigma: 0.5, Sharpen: 3},
}

// LookupVariation returns the preset with id.
func LookupVariation(id string) (SketchVariation, bool) {
	for _, v := range SketchVariations {
		if v.ID == id {
			return v, true
		}
	}
	return SketchVariation{}, false
}
