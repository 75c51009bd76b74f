package editor

import (
	"thirdcoast.systems/darkroom/internal/effects"
	"thirdcoast.systems/darkroom/pkg/filters"
	"thirdcoast.systems/darkroom/pkg/imageio"
	"thirdcoast.systems/darkroom/pkg/snapshot"
	"thirdcoast.systems/darkroom/pkg/transform"
)

// Action is a user or system event applied to a session by Reduce.
type Action interface {
	action() string
}

// Upload replaces the session image with a validated upload.
type Upload struct {
	Image snapshot.Snapshot
	Exif  imageio.ExifSummary
}

// SelectFilter binds the slider to a filter.
type SelectFilter struct {
	Name filters.Name
}

// SetFilter moves a filter slider. Values are clamped to the filter range.
type SetFilter struct {
	Name  filters.Name
	Value float64
}

// Transform presses a rotate or flip button.
type Transform struct {
	Op transform.Op
}

// Reset restores every filter and the transform and drops all history.
type Reset struct{}

// ClearEffects resets filters and drops all history, keeping the image.
type ClearEffects struct{}

// ApplySketch requests a sketch variation of the original image.
type ApplySketch struct {
	Variation string
	BlurSigma float64
	Sharpen   float64
}

// ApplyEffect requests an AI effect on the displayed image.
type ApplyEffect struct {
	Effect effects.Name
}

// EffectSucceeded delivers a dispatch result.
type EffectSucceeded struct {
	Category   effects.Category
	Generation uint64
	Effect     string
	Result     snapshot.Snapshot
	Message    string
}

// EffectFailed delivers a dispatch failure.
type EffectFailed struct {
	Category   effects.Category
	Generation uint64
	Effect     string
	Err        error
}

// UndoSketch restores the image from before the last sketch variation.
type UndoSketch struct{}

// UndoEffect restores the image from before the last AI effect.
type UndoEffect struct{}

// ApplyCrop replaces the displayed image with an already cropped one.
type ApplyCrop struct {
	Result snapshot.Snapshot
}

func (Upload) action() string          { return "upload" }
func (SelectFilter) action() string    { return "select_filter" }
func (SetFilter) action() string       { return "set_filter" }
func (Transform) action() string       { return "transform" }
func (Reset) action() string           { return "reset" }
func (ClearEffects) action() string    { return "clear_effects" }
func (ApplySketch) action() string     { return "apply_sketch" }
func (ApplyEffect) action() string     { return "apply_effect" }
func (EffectSucceeded) action() string { return "effect_succeeded" }
func (EffectFailed) action() string    { return "effect_failed" }
func (UndoSketch) action() string      { return "undo_sketch" }
func (UndoEffect) action() string      { return "undo_effect" }
func (ApplyCrop) action() string       { return "apply_crop" }

// ActionName returns the log name of a.
func ActionName(a Action) string {
	if a == nil {
		return ""
	}
	return a.action()
}
