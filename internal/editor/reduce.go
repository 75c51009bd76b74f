package editor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"thirdcoast.systems/darkroom/internal/effects"
	"thirdcoast.systems/darkroom/pkg/filters"
	"thirdcoast.systems/darkroom/pkg/transform"
)

var (
	// ErrNoImage is returned for actions that need an uploaded image.
	ErrNoImage = errors.New("no image loaded")
	// ErrInFlight is returned when an effect of the same category is still
	// being dispatched.
	ErrInFlight = errors.New("effect already in progress")
	// ErrUnknownAction is returned for actions Reduce does not handle.
	ErrUnknownAction = errors.New("unknown action")
)

// Level grades a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a transient, non-blocking user notification.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Command is asynchronous work requested by a transition.
type Command struct {
	Category   effects.Category
	Generation uint64
	Effect     string
	Request    effects.Request
	// Success is the notice text shown when the dispatch succeeds.
	Success string
}

// Outcome is everything a transition produces besides the next state.
type Outcome struct {
	Notice  *Notice
	Command *Command
	// Err is set when the action was rejected; the state is then unchanged.
	Err error
	// Stale is set when a dispatch result arrived for an invalidated flight
	// and was discarded.
	Stale bool
}

func info(msg string) *Notice    { return &Notice{Level: LevelInfo, Message: msg} }
func success(msg string) *Notice { return &Notice{Level: LevelSuccess, Message: msg} }
func warning(msg string) *Notice { return &Notice{Level: LevelWarning, Message: msg} }
func failure(msg string) *Notice { return &Notice{Level: LevelError, Message: msg} }

func reject(s State, err error, n *Notice) (State, Outcome) {
	return s, Outcome{Notice: n, Err: err}
}

var plainText = bluemonday.StrictPolicy()

// failureMessage renders a dispatch error for display. Remote error text is
// reduced to plain text before it reaches the client.
func failureMessage(err error) string {
	msg := strings.TrimSpace(plainText.Sanitize(err.Error()))
	if msg == "" {
		msg = "unknown error"
	}
	return "Operation failed: " + msg
}

// Reduce applies a to s. It is pure: the returned state shares nothing
// mutable with s and no I/O happens here.
func Reduce(s State, a Action) (State, Outcome) {
	switch a := a.(type) {
	case Upload:
		return reduceUpload(s, a)
	case SelectFilter:
		if _, err := filters.Def(a.Name); err != nil {
			return reject(s, err, nil)
		}
		s.ActiveFilter = a.Name
		return s, Outcome{}
	case SetFilter:
		def, err := filters.Def(a.Name)
		if err != nil {
			return reject(s, err, nil)
		}
		if err := s.Filters.Set(a.Name, def.Clamp(a.Value)); err != nil {
			return reject(s, err, nil)
		}
		return s, Outcome{}
	case Transform:
		if err := s.Transform.Apply(a.Op); err != nil {
			return reject(s, err, nil)
		}
		return s, Outcome{Notice: info("Applied " + strings.Replace(string(a.Op), "_", " ", 1) + " transformation")}
	case Reset:
		s = resetEdits(s)
		s.ActiveFilter = filters.Brightness
		return s, Outcome{Notice: info("All changes reset")}
	case ClearEffects:
		s = resetEdits(s)
		return s, Outcome{Notice: info("All effects cleared")}
	case ApplySketch:
		return reduceApplySketch(s, a)
	case ApplyEffect:
		return reduceApplyEffect(s, a)
	case EffectSucceeded:
		f := s.flight(a.Category)
		if !f.Pending || f.Generation != a.Generation {
			return s, Outcome{Stale: true}
		}
		s.setFlight(a.Category, Flight{Generation: f.Generation})
		s.Displayed = a.Result
		// The result is rendered from unfiltered pixels; preview styling
		// left on it would mask the effect.
		s.Filters.ResetPreview()
		return s, Outcome{Notice: success(a.Message)}
	case EffectFailed:
		f := s.flight(a.Category)
		if !f.Pending || f.Generation != a.Generation {
			return s, Outcome{Stale: true}
		}
		s.setFlight(a.Category, Flight{Generation: f.Generation})
		return s, Outcome{Notice: failure(failureMessage(a.Err)), Err: a.Err}
	case UndoSketch:
		next, prev, ok := s.SketchHistory.Pop()
		if !ok {
			return s, Outcome{Notice: warning("No sketch to undo.")}
		}
		s.SketchHistory = next
		s.Displayed = prev
		s.SketchFlight = s.SketchFlight.invalidate()
		if strings.HasPrefix(s.ActiveEffect, sketchPrefix) {
			s.ActiveEffect = ""
		}
		return s, Outcome{Notice: info("Sketch effect undone")}
	case UndoEffect:
		next, prev, ok := s.EffectHistory.Pop()
		if !ok {
			return s, Outcome{Notice: warning("No AI effect to undo.")}
		}
		s.EffectHistory = next
		s.Displayed = prev
		s.EffectFlight = s.EffectFlight.invalidate()
		if s.ActiveEffect != "" && !strings.HasPrefix(s.ActiveEffect, sketchPrefix) {
			s.ActiveEffect = ""
		}
		return s, Outcome{Notice: info("AI effect undone")}
	case ApplyCrop:
		if !s.HasImage() {
			return reject(s, ErrNoImage, failure("Please upload an image first!"))
		}
		if a.Result.IsZero() {
			return reject(s, ErrNoImage, failure("Crop failed. Please try again."))
		}
		s.Displayed = a.Result
		s.SketchFlight = s.SketchFlight.invalidate()
		s.EffectFlight = s.EffectFlight.invalidate()
		return s, Outcome{Notice: success("Crop applied successfully!")}
	default:
		return reject(s, fmt.Errorf("%w: %T", ErrUnknownAction, a), nil)
	}
}

const sketchPrefix = "sketch:"

func reduceUpload(s State, a Upload) (State, Outcome) {
	if a.Image.IsZero() {
		return reject(s, ErrNoImage, failure("Please select a valid image file."))
	}
	s = resetEdits(s)
	s.ActiveFilter = filters.Brightness
	s.Original = a.Image
	s.Displayed = a.Image
	s.Exif = a.Exif
	return s, Outcome{Notice: success("Image uploaded successfully!")}
}

// resetEdits restores filters and transform, drops both history stacks, the
// active effect and any pending dispatch.
func resetEdits(s State) State {
	s.Filters = filters.Defaults()
	s.Transform = transform.Defaults()
	s.SketchHistory = s.SketchHistory.Clear()
	s.EffectHistory = s.EffectHistory.Clear()
	s.ActiveEffect = ""
	s.SketchFlight = s.SketchFlight.invalidate()
	s.EffectFlight = s.EffectFlight.invalidate()
	return s
}

func reduceApplySketch(s State, a ApplySketch) (State, Outcome) {
	if !s.HasImage() {
		return reject(s, ErrNoImage, warning("Please upload an image first."))
	}
	if s.SketchFlight.Pending {
		return reject(s, ErrInFlight, warning("A sketch is already being applied."))
	}

	s.SketchHistory, _ = s.SketchHistory.Push(s.Displayed)

	variation := a.Variation
	if variation == "" {
		variation = strconv.FormatFloat(a.BlurSigma, 'f', -1, 64) + "/" + strconv.FormatFloat(a.Sharpen, 'f', -1, 64)
	}
	s.ActiveEffect = sketchPrefix + variation

	f := Flight{Generation: s.SketchFlight.Generation + 1, Pending: true, Effect: s.ActiveEffect}
	s.SketchFlight = f

	blur, sharpen := a.BlurSigma, a.Sharpen
	source := s.Original
	if source.IsZero() {
		source = s.Displayed
	}
	return s, Outcome{Command: &Command{
		Category:   effects.CategorySketch,
		Generation: f.Generation,
		Effect:     f.Effect,
		Request: effects.Request{
			Effect: effects.PencilSketch,
			Image:  source,
			Params: effects.Params{BlurSigma: &blur, Sharpen: &sharpen},
		},
		Success: effects.SketchVariationSuccess,
	}}
}

func reduceApplyEffect(s State, a ApplyEffect) (State, Outcome) {
	spec, err := effects.Lookup(a.Effect)
	if err != nil {
		return reject(s, err, failure("Effect not available"))
	}
	if !s.HasImage() {
		return reject(s, ErrNoImage, warning("Please upload an image first."))
	}
	if s.EffectFlight.Pending {
		return reject(s, ErrInFlight, warning("An effect is already being applied."))
	}

	s.EffectHistory, _ = s.EffectHistory.Push(s.Displayed)
	s.ActiveEffect = string(spec.Name)

	f := Flight{Generation: s.EffectFlight.Generation + 1, Pending: true, Effect: string(spec.Name)}
	s.EffectFlight = f

	return s, Outcome{Command: &Command{
		Category:   effects.CategoryAI,
		Generation: f.Generation,
		Effect:     f.Effect,
		Request:    effects.Request{Effect: spec.Name, Image: s.Displayed},
		Success:    spec.Success,
	}}
}
