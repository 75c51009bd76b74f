// Package editor owns edit sessions: the explicit session state, the pure
// reducer that applies user actions to it and the runner that executes the
// remote work those actions request.
package editor

import (
	"time"

	"github.com/google/uuid"

	"thirdcoast.systems/darkroom/internal/effects"
	"thirdcoast.systems/darkroom/pkg/filters"
	"thirdcoast.systems/darkroom/pkg/history"
	"thirdcoast.systems/darkroom/pkg/imageio"
	"thirdcoast.systems/darkroom/pkg/render"
	"thirdcoast.systems/darkroom/pkg/snapshot"
	"thirdcoast.systems/darkroom/pkg/transform"
)

// Flight tracks the dispatch of one effect category. Generation increases on
// every dispatch and on every event that invalidates a pending one (undo,
// reset, upload, clear effects, crop); a result is applied only if its generation
// is still current and the flight is pending.
type Flight struct {
	Generation uint64 `json:"generation"`
	Pending    bool   `json:"pending"`
	Effect     string `json:"effect,omitempty"`
}

func (f Flight) invalidate() Flight {
	return Flight{Generation: f.Generation + 1}
}

// State is the complete state of one edit session. It is a value: copying it
// yields an independent session state.
type State struct {
	ID uuid.UUID

	Filters      filters.State
	ActiveFilter filters.Name
	Transform    transform.State

	// Original is the uploaded image; sketch variations are computed from it.
	Original snapshot.Snapshot
	// Displayed is the image currently shown.
	Displayed snapshot.Snapshot
	Exif      imageio.ExifSummary

	SketchHistory history.Stack
	EffectHistory history.Stack

	// ActiveEffect is the selected custom effect: an effect name or
	// "sketch:<variation>". Empty when none is active.
	ActiveEffect string

	SketchFlight Flight
	EffectFlight Flight

	UpdatedAt time.Time
}

// NewState returns the state of a fresh session without an image.
func NewState(id uuid.UUID) State {
	return State{
		ID:            id,
		Filters:       filters.Defaults(),
		ActiveFilter:  filters.Brightness,
		Transform:     transform.Defaults(),
		SketchHistory: history.New(history.PushAlways),
		EffectHistory: history.New(history.PushIfChanged),
	}
}

// HasImage reports whether an image has been uploaded.
func (s State) HasImage() bool {
	return !s.Displayed.IsZero()
}

func (s State) flight(c effects.Category) Flight {
	if c == effects.CategorySketch {
		return s.SketchFlight
	}
	return s.EffectFlight
}

func (s *State) setFlight(c effects.Category, f Flight) {
	if c == effects.CategorySketch {
		s.SketchFlight = f
	} else {
		s.EffectFlight = f
	}
}

// View is the client-facing projection of a session.
type View struct {
	ID           uuid.UUID           `json:"id"`
	HasImage     bool                `json:"has_image"`
	Image        *ImageInfo          `json:"image,omitempty"`
	Exif         imageio.ExifSummary `json:"exif"`
	Filters      filters.State       `json:"filters"`
	ActiveFilter filters.Name        `json:"active_filter"`
	SliderValue  float64             `json:"slider_value"`
	SliderLabel  string              `json:"slider_label"`
	Transform    transform.State     `json:"transform"`
	Preview      render.Composite    `json:"preview"`
	ActiveEffect string              `json:"active_effect"`
	SketchUndo   int                 `json:"sketch_undo"`
	EffectUndo   int                 `json:"effect_undo"`
	Pending      []effects.Category  `json:"pending"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// ImageInfo describes the displayed image.
type ImageInfo struct {
	ID        uuid.UUID `json:"id"`
	MediaType string    `json:"media_type"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Bytes     int       `json:"bytes"`
	Digest    string    `json:"digest"`
}

// View projects the state for clients.
func (s State) View() View {
	v := View{
		ID:           s.ID,
		HasImage:     s.HasImage(),
		Exif:         s.Exif,
		Filters:      s.Filters,
		ActiveFilter: s.ActiveFilter,
		Transform:    s.Transform,
		Preview:      render.Preview(s.Filters, s.Transform),
		ActiveEffect: s.ActiveEffect,
		SketchUndo:   s.SketchHistory.Len(),
		EffectUndo:   s.EffectHistory.Len(),
		Pending:      []effects.Category{},
		UpdatedAt:    s.UpdatedAt,
	}
	if val, err := s.Filters.Get(s.ActiveFilter); err == nil {
		v.SliderValue = val
		if def, err := filters.Def(s.ActiveFilter); err == nil {
			v.SliderLabel = def.Readout(val)
		}
	}
	if s.HasImage() {
		d := s.Displayed
		v.Image = &ImageInfo{
			ID:        d.ID(),
			MediaType: d.MediaType(),
			Width:     d.Width(),
			Height:    d.Height(),
			Bytes:     d.Size(),
			Digest:    d.Digest(),
		}
	}
	if s.SketchFlight.Pending {
		v.Pending = append(v.Pending, effects.CategorySketch)
	}
	if s.EffectFlight.Pending {
		v.Pending = append(v.Pending, effects.CategoryAI)
	}
	return v
}
