package editor

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"thirdcoast.systems/darkroom/pkg/filters"
	"thirdcoast.systems/darkroom/pkg/history"
	"thirdcoast.systems/darkroom/pkg/imageio"
	"thirdcoast.systems/darkroom/pkg/snapshot"
	"thirdcoast.systems/darkroom/pkg/transform"
)

// SnapshotRef points at a stored image by content digest.
type SnapshotRef struct {
	ID        uuid.UUID `json:"id"`
	Digest    string    `json:"digest"`
	MediaType string    `json:"media_type"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
}

func refOf(s snapshot.Snapshot) SnapshotRef {
	return SnapshotRef{ID: s.ID(), Digest: s.Digest(), MediaType: s.MediaType(), Width: s.Width(), Height: s.Height()}
}

// Record is the serialisable form of a State. Image bytes are referenced by
// digest and stored separately. In-flight dispatches are not recorded.
type Record struct {
	ID            uuid.UUID           `json:"id"`
	Filters       filters.State       `json:"filters"`
	ActiveFilter  filters.Name        `json:"active_filter"`
	Transform     transform.State     `json:"transform"`
	ActiveEffect  string              `json:"active_effect,omitempty"`
	Exif          imageio.ExifSummary `json:"exif"`
	Original      *SnapshotRef        `json:"original,omitempty"`
	Displayed     *SnapshotRef        `json:"displayed,omitempty"`
	SketchHistory []SnapshotRef       `json:"sketch_history"`
	EffectHistory []SnapshotRef       `json:"effect_history"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// Record returns the serialisable form of s and every distinct snapshot it
// references.
func (s State) Record() (Record, []snapshot.Snapshot) {
	r := Record{
		ID:           s.ID,
		Filters:      s.Filters,
		ActiveFilter: s.ActiveFilter,
		Transform:    s.Transform,
		ActiveEffect: s.ActiveEffect,
		Exif:         s.Exif,
		UpdatedAt:    s.UpdatedAt,
	}

	seen := map[string]bool{}
	var blobs []snapshot.Snapshot
	add := func(snap snapshot.Snapshot) SnapshotRef {
		if !seen[snap.Digest()] {
			seen[snap.Digest()] = true
			blobs = append(blobs, snap)
		}
		return refOf(snap)
	}

	if !s.Original.IsZero() {
		ref := add(s.Original)
		r.Original = &ref
	}
	if !s.Displayed.IsZero() {
		ref := add(s.Displayed)
		r.Displayed = &ref
	}
	r.SketchHistory = make([]SnapshotRef, 0, s.SketchHistory.Len())
	for _, snap := range s.SketchHistory.Items() {
		r.SketchHistory = append(r.SketchHistory, add(snap))
	}
	r.EffectHistory = make([]SnapshotRef, 0, s.EffectHistory.Len())
	for _, snap := range s.EffectHistory.Items() {
		r.EffectHistory = append(r.EffectHistory, add(snap))
	}
	return r, blobs
}

// Digests lists the distinct image digests the record references.
func (r Record) Digests() []string {
	seen := map[string]bool{}
	var out []string
	visit := func(ref SnapshotRef) {
		if !seen[ref.Digest] {
			seen[ref.Digest] = true
			out = append(out, ref.Digest)
		}
	}
	if r.Original != nil {
		visit(*r.Original)
	}
	if r.Displayed != nil {
		visit(*r.Displayed)
	}
	for _, ref := range r.SketchHistory {
		visit(ref)
	}
	for _, ref := range r.EffectHistory {
		visit(ref)
	}
	return out
}

// State rebuilds the session state from r and the image bytes keyed by digest.
func (r Record) State(blobs map[string][]byte) (State, error) {
	restore := func(ref SnapshotRef) (snapshot.Snapshot, error) {
		data, ok := blobs[ref.Digest]
		if !ok {
			return snapshot.Snapshot{}, fmt.Errorf("session %s: missing image %s", r.ID, ref.Digest)
		}
		return snapshot.Restore(ref.ID, data, ref.MediaType, ref.Width, ref.Height)
	}
	restoreAll := func(refs []SnapshotRef) ([]snapshot.Snapshot, error) {
		out := make([]snapshot.Snapshot, 0, len(refs))
		for _, ref := range refs {
			snap, err := restore(ref)
			if err != nil {
				return nil, err
			}
			out = append(out, snap)
		}
		return out, nil
	}

	s := NewState(r.ID)
	s.Filters = r.Filters
	s.ActiveFilter = r.ActiveFilter
	if s.ActiveFilter == "" {
		s.ActiveFilter = filters.Brightness
	}
	s.Transform = r.Transform
	s.ActiveEffect = r.ActiveEffect
	s.Exif = r.Exif
	s.UpdatedAt = r.UpdatedAt

	var err error
	if r.Original != nil {
		if s.Original, err = restore(*r.Original); err != nil {
			return State{}, err
		}
	}
	if r.Displayed != nil {
		if s.Displayed, err = restore(*r.Displayed); err != nil {
			return State{}, err
		}
	}
	sketch, err := restoreAll(r.SketchHistory)
	if err != nil {
		return State{}, err
	}
	effect, err := restoreAll(r.EffectHistory)
	if err != nil {
		return State{}, err
	}
	s.SketchHistory = history.FromItems(history.PushAlways, sketch)
	s.EffectHistory = history.FromItems(history.PushIfChanged, effect)
	return s, nil
}
