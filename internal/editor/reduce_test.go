package editor

import (
	"errors"
	"image/color"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"thirdcoast.systems/darkroom/internal/effects"
	"thirdcoast.systems/darkroom/pkg/filters"
	"thirdcoast.systems/darkroom/pkg/transform"
)

func TestReduce_UploadClearsEverything(t *testing.T) {
	s, first := loaded(t)
	s, _ = Reduce(s, SetFilter{Name: filters.Sepia, Value: 50})
	s, _ = Reduce(s, Transform{Op: transform.OpFlipX})
	s, out := Reduce(s, ApplyEffect{Effect: effects.Colorization})
	require.NotNil(t, out.Command)
	require.Equal(t, 1, s.EffectHistory.Len())

	second := imageSnapshot(t, 2, 2, color.Black)
	s, out = Reduce(s, Upload{Image: second})
	require.NoError(t, out.Err)
	require.Equal(t, LevelSuccess, out.Notice.Level)
	require.True(t, s.Displayed.Same(second))
	require.True(t, s.Original.Same(second))
	require.False(t, s.Original.Same(first))
	require.Equal(t, filters.Defaults(), s.Filters)
	require.Equal(t, transform.Defaults(), s.Transform)
	require.Zero(t, s.SketchHistory.Len())
	require.Zero(t, s.EffectHistory.Len())
	require.False(t, s.EffectFlight.Pending)
}

func TestReduce_SetFilterClamps(t *testing.T) {
	s := NewState(uuid.New())
	s, out := Reduce(s, SetFilter{Name: filters.Brightness, Value: 250})
	require.NoError(t, out.Err)
	require.Equal(t, 200.0, s.Filters.Brightness)

	s, _ = Reduce(s, SetFilter{Name: filters.Hue, Value: -10})
	require.Equal(t, 0.0, s.Filters.Hue)

	next, out := Reduce(s, SetFilter{Name: "sharpness", Value: 10})
	require.ErrorIs(t, out.Err, filters.ErrUnknownFilter)
	require.Equal(t, s, next)
}

func TestReduce_SelectFilter(t *testing.T) {
	s := NewState(uuid.New())
	require.Equal(t, filters.Brightness, s.ActiveFilter)
	s, _ = Reduce(s, SelectFilter{Name: filters.Vignette})
	require.Equal(t, filters.Vignette, s.ActiveFilter)
	require.Equal(t, filters.Vignette, s.View().ActiveFilter)
	require.Equal(t, "0%", s.View().SliderLabel)
}

func TestReduce_TransformNotice(t *testing.T) {
	s, out := Reduce(NewState(uuid.New()), Transform{Op: transform.OpRotateLeft})
	require.Equal(t, -90, s.Transform.Rotate)
	require.Equal(t, "Applied rotate left transformation", out.Notice.Message)

	_, out = Reduce(s, Transform{Op: "spin"})
	require.ErrorIs(t, out.Err, transform.ErrUnknownOp)
}

func TestReduce_FullReset(t *testing.T) {
	s, _ := loaded(t)
	s, _ = Reduce(s, SetFilter{Name: filters.Contrast, Value: 180})
	s, _ = Reduce(s, SetFilter{Name: filters.Noise, Value: 30})
	s, _ = Reduce(s, Transform{Op: transform.OpRotateRight})
	s, _ = Reduce(s, Transform{Op: transform.OpFlipY})
	s, _ = Reduce(s, ApplySketch{Variation: "classic", BlurSigma: 2, Sharpen: 1})
	s, _ = Reduce(s, ApplyEffect{Effect: effects.OilPainting})
	s, _ = Reduce(s, SelectFilter{Name: filters.Hue})

	s, out := Reduce(s, Reset{})
	require.Equal(t, "All changes reset", out.Notice.Message)
	require.Equal(t, filters.Defaults(), s.Filters)
	require.Equal(t, transform.Defaults(), s.Transform)
	require.Zero(t, s.SketchHistory.Len())
	require.Zero(t, s.EffectHistory.Len())
	require.Empty(t, s.ActiveEffect)
	require.Equal(t, filters.Brightness, s.ActiveFilter)
	require.False(t, s.SketchFlight.Pending)
	require.False(t, s.EffectFlight.Pending)

	again, _ := Reduce(s, Reset{})
	require.Equal(t, s.Filters, again.Filters)
	require.Equal(t, s.Transform, again.Transform)
}

func TestReduce_ClearEffectsKeepsImage(t *testing.T) {
	s, img := loaded(t)
	s, _ = Reduce(s, Transform{Op: transform.OpRotateRight})
	s, _ = Reduce(s, SetFilter{Name: filters.Blur, Value: 4})
	s, _ = Reduce(s, ApplySketch{BlurSigma: 1, Sharpen: 1})

	s, out := Reduce(s, ClearEffects{})
	require.Equal(t, "All effects cleared", out.Notice.Message)
	require.Equal(t, filters.Defaults(), s.Filters)
	require.Zero(t, s.SketchHistory.Len())
	require.True(t, s.Displayed.Same(img))
}

func TestReduce_NoImage(t *testing.T) {
	s := NewState(uuid.New())

	next, out := Reduce(s, ApplySketch{BlurSigma: 2, Sharpen: 1})
	require.ErrorIs(t, out.Err, ErrNoImage)
	require.Equal(t, LevelWarning, out.Notice.Level)
	require.Equal(t, "Please upload an image first.", out.Notice.Message)
	require.Nil(t, out.Command)
	require.Equal(t, s, next)

	_, out = Reduce(s, ApplyEffect{Effect: effects.Colorization})
	require.ErrorIs(t, out.Err, ErrNoImage)
}

func TestReduce_UnknownEffect(t *testing.T) {
	s, _ := loaded(t)
	next, out := Reduce(s, ApplyEffect{Effect: "deep_dream"})
	require.ErrorIs(t, out.Err, effects.ErrUnknownEffect)
	require.Equal(t, "Effect not available", out.Notice.Message)
	require.Zero(t, next.EffectHistory.Len())
}

func TestReduce_SketchPushesAlways(t *testing.T) {
	s, img := loaded(t)

	s, out := Reduce(s, ApplySketch{Variation: "classic", BlurSigma: 2, Sharpen: 1})
	require.NotNil(t, out.Command)
	require.Equal(t, effects.PencilSketch, out.Command.Request.Effect)
	require.Equal(t, 2.0, *out.Command.Request.Params.BlurSigma)
	require.Equal(t, 1.0, *out.Command.Request.Params.Sharpen)
	require.True(t, out.Command.Request.Image.Same(img))
	require.Equal(t, "sketch:classic", s.ActiveEffect)

	s, _ = Reduce(s, EffectFailed{Category: effects.CategorySketch, Generation: out.Command.Generation, Err: errors.New("down")})
	s, _ = Reduce(s, ApplySketch{Variation: "classic", BlurSigma: 2, Sharpen: 1})
	require.Equal(t, 2, s.SketchHistory.Len())
}

func TestReduce_SketchUsesOriginal(t *testing.T) {
	s, img := loaded(t)
	s, out := Reduce(s, ApplyEffect{Effect: effects.Colorization})
	colored := imageSnapshot(t, 4, 4, color.NRGBA{R: 200, A: 255})
	s, _ = Reduce(s, EffectSucceeded{Category: effects.CategoryAI, Generation: out.Command.Generation, Result: colored})

	s, out = Reduce(s, ApplySketch{BlurSigma: 1, Sharpen: 2})
	require.True(t, out.Command.Request.Image.Same(img))
	top, _ := s.SketchHistory.Peek()
	require.True(t, top.Same(colored))
}

func TestReduce_EffectDedup(t *testing.T) {
	s, img := loaded(t)

	s, out := Reduce(s, ApplyEffect{Effect: effects.Compression})
	require.Equal(t, 1, s.EffectHistory.Len())
	s, _ = Reduce(s, EffectFailed{Category: effects.CategoryAI, Generation: out.Command.Generation, Err: errors.New("x")})

	// Same displayed image: no new entry.
	s, out = Reduce(s, ApplyEffect{Effect: effects.Compression})
	require.Equal(t, 1, s.EffectHistory.Len())

	result := imageSnapshot(t, 4, 4, color.Black)
	s, _ = Reduce(s, EffectSucceeded{Category: effects.CategoryAI, Generation: out.Command.Generation, Result: result})
	s, _ = Reduce(s, ApplyEffect{Effect: effects.OilPainting})
	require.Equal(t, 2, s.EffectHistory.Len())

	items := s.EffectHistory.Items()
	require.True(t, items[0].Same(img))
	require.True(t, items[1].Same(result))
}

func TestReduce_SingleFlight(t *testing.T) {
	s, _ := loaded(t)
	s, first := Reduce(s, ApplyEffect{Effect: effects.Colorization})
	require.NotNil(t, first.Command)

	next, out := Reduce(s, ApplyEffect{Effect: effects.OilPainting})
	require.ErrorIs(t, out.Err, ErrInFlight)
	require.Equal(t, LevelWarning, out.Notice.Level)
	require.Nil(t, out.Command)
	require.Equal(t, s, next)

	// The other category is independent.
	_, out = Reduce(s, ApplySketch{BlurSigma: 1, Sharpen: 1})
	require.NoError(t, out.Err)
	require.NotNil(t, out.Command)
}

func TestReduce_StaleResultDiscarded(t *testing.T) {
	s, img := loaded(t)
	s, out := Reduce(s, ApplyEffect{Effect: effects.BackgroundRemoval})
	gen := out.Command.Generation

	s, out = Reduce(s, UndoEffect{})
	require.Equal(t, "AI effect undone", out.Notice.Message)

	late := imageSnapshot(t, 4, 4, color.Black)
	next, out := Reduce(s, EffectSucceeded{Category: effects.CategoryAI, Generation: gen, Result: late})
	require.True(t, out.Stale)
	require.Nil(t, out.Notice)
	require.True(t, next.Displayed.Same(img))

	_, out = Reduce(s, EffectFailed{Category: effects.CategoryAI, Generation: gen, Err: errors.New("late")})
	require.True(t, out.Stale)
}

func TestReduce_UndoEmpty(t *testing.T) {
	s, _ := loaded(t)

	next, out := Reduce(s, UndoSketch{})
	require.NoError(t, out.Err)
	require.Equal(t, Notice{Level: LevelWarning, Message: "No sketch to undo."}, *out.Notice)
	require.Equal(t, s, next)

	_, out = Reduce(s, UndoEffect{})
	require.NoError(t, out.Err)
	require.Equal(t, Notice{Level: LevelWarning, Message: "No AI effect to undo."}, *out.Notice)
}

func TestReduce_FailureNoticeIsPlainText(t *testing.T) {
	s, _ := loaded(t)
	s, out := Reduce(s, ApplyEffect{Effect: effects.Colorization})
	_, out = Reduce(s, EffectFailed{
		Category:   effects.CategoryAI,
		Generation: out.Command.Generation,
		Err:        errors.New(`<script>alert(1)</script>boom`),
	})
	require.Equal(t, LevelError, out.Notice.Level)
	require.Equal(t, "Operation failed: boom", out.Notice.Message)
}

func TestReduce_Crop(t *testing.T) {
	_, out := Reduce(NewState(uuid.New()), ApplyCrop{Result: imageSnapshot(t, 1, 1, color.White)})
	require.ErrorIs(t, out.Err, ErrNoImage)

	s, _ := loaded(t)
	gen := s.EffectFlight.Generation
	cropped := imageSnapshot(t, 2, 2, color.Black)
	s, out = Reduce(s, ApplyCrop{Result: cropped})
	require.NoError(t, out.Err)
	require.True(t, s.Displayed.Same(cropped))
	require.Equal(t, "Crop applied successfully!", out.Notice.Message)
	require.Greater(t, s.EffectFlight.Generation, gen)
	require.False(t, s.EffectFlight.Pending)
}

func TestReduce_IndependentSessions(t *testing.T) {
	a, _ := loaded(t)
	b := a
	b.ID = uuid.New()

	b, _ = Reduce(b, SetFilter{Name: filters.Grayscale, Value: 100})
	b, _ = Reduce(b, ApplySketch{BlurSigma: 1, Sharpen: 1})

	require.Equal(t, 0.0, a.Filters.Grayscale)
	require.Zero(t, a.SketchHistory.Len())
	require.Equal(t, 1, b.SketchHistory.Len())
}

func TestReduce_EffectSucceededClearsPreviewStyling(t *testing.T) {
	s, _ := loaded(t)
	s, _ = Reduce(s, SetFilter{Name: filters.Grayscale, Value: 100})
	s, _ = Reduce(s, SetFilter{Name: filters.Vignette, Value: 40})
	s, _ = Reduce(s, Transform{Op: transform.OpRotateRight})

	s, out := Reduce(s, ApplyEffect{Effect: effects.Colorization})
	colored := imageSnapshot(t, 4, 4, color.NRGBA{R: 200, A: 255})
	s, out = Reduce(s, EffectSucceeded{Category: effects.CategoryAI, Generation: out.Command.Generation, Result: colored, Message: "done"})

	require.Equal(t, LevelSuccess, out.Notice.Level)
	require.Zero(t, s.Filters.Grayscale)
	require.Equal(t, 40.0, s.Filters.Vignette)
	require.Equal(t, 90, s.Transform.Rotate)
	require.Equal(t, string(effects.Colorization), s.ActiveEffect)
	require.Equal(t, filters.Defaults().Compose(), s.View().Preview.Filter)

	// A failure leaves the styling alone.
	s, _ = Reduce(s, SetFilter{Name: filters.Sepia, Value: 30})
	s, out = Reduce(s, ApplyEffect{Effect: effects.OilPainting})
	s, _ = Reduce(s, EffectFailed{Category: effects.CategoryAI, Generation: out.Command.Generation, Err: errors.New("x")})
	require.Equal(t, 30.0, s.Filters.Sepia)
}
