package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"thirdcoast.systems/darkroom/internal/effects"
	"thirdcoast.systems/darkroom/pkg/render"
	"thirdcoast.systems/darkroom/pkg/snapshot"
	"thirdcoast.systems/darkroom/pkg/utils/crops"
)

// Dispatcher executes effects. *effects.Client implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req effects.Request) (snapshot.Snapshot, error)
}

// Session serialises the actions of one edit session. Reduce runs under the
// session lock; dispatches run outside it so undo and filter changes stay
// responsive while an effect is pending.
type Session struct {
	m *Manager

	mu       sync.Mutex
	state    State
	seq      uint64
	lastSeen time.Time

	// pub orders persist and notify. States reach the store and listeners
	// in seq order; an older state that loses the race is never published.
	pub      sync.Mutex
	pubSeq   uint64
	pubState State
}

// ID returns the session id.
func (s *Session) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ID
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Do applies a and, when the transition requests a dispatch, runs it and
// applies its result before returning. The returned outcome is the final one.
func (s *Session) Do(ctx context.Context, a Action) (State, Outcome) {
	state, out := s.apply(ctx, a)
	if out.Command == nil {
		return state, out
	}
	return s.run(ctx, *out.Command)
}

func (s *Session) apply(ctx context.Context, a Action) (State, Outcome) {
	s.mu.Lock()
	next, out := Reduce(s.state, a)
	changed := out.Err == nil && !out.Stale
	if changed {
		next.UpdatedAt = s.m.now()
		s.state = next
		s.seq++
	}
	seq := s.seq
	s.lastSeen = s.m.now()
	s.mu.Unlock()

	log := s.m.logger.With("session", next.ID, "action", ActionName(a))
	switch {
	case out.Stale:
		log.Debug("discarded stale effect result")
	case out.Err != nil:
		log.Info("action rejected", "error", out.Err)
	default:
		log.Debug("action applied")
	}

	s.publish(ctx, seq, next, changed, out.Notice)
	return next, out
}

func (s *Session) publish(ctx context.Context, seq uint64, state State, changed bool, n *Notice) {
	s.pub.Lock()
	defer s.pub.Unlock()

	switch {
	case changed && seq > s.pubSeq:
		s.m.persist(ctx, state)
		s.pubSeq, s.pubState = seq, state
		s.m.notify(state, n)
	case n == nil:
	case seq < s.pubSeq:
		s.m.notify(s.pubState, n)
	default:
		s.m.notify(state, n)
	}
}

func (s *Session) run(ctx context.Context, cmd Command) (State, Outcome) {
	start := time.Now()
	result, err := s.m.dispatcher.Dispatch(ctx, cmd.Request)

	log := s.m.logger.With("session", s.ID(), "effect", cmd.Effect, "category", cmd.Category, "duration", time.Since(start))
	if err != nil {
		log.Warn("effect dispatch failed", "error", err)
		return s.apply(ctx, EffectFailed{
			Category:   cmd.Category,
			Generation: cmd.Generation,
			Effect:     cmd.Effect,
			Err:        err,
		})
	}
	log.Info("effect applied", "bytes", result.Size())
	return s.apply(ctx, EffectSucceeded{
		Category:   cmd.Category,
		Generation: cmd.Generation,
		Effect:     cmd.Effect,
		Result:     result,
		Message:    cmd.Success,
	})
}

// Export renders the displayed image with the current filters and transform.
func (s *Session) Export(ctx context.Context, opts render.Options) ([]byte, error) {
	state := s.State()
	if opts.Quality == 0 {
		opts.Quality = s.m.quality
	}
	return render.ExportSnapshot(ctx, state.Displayed, state.Filters, state.Transform, opts)
}

// Crop cuts c out of the displayed image and makes the result the displayed
// image.
func (s *Session) Crop(ctx context.Context, c crops.Crop) (State, Outcome) {
	state := s.State()
	if !state.HasImage() {
		return s.apply(ctx, ApplyCrop{})
	}
	cropped, err := render.CropSnapshot(state.Displayed, c, s.m.quality)
	if err != nil {
		s.m.logger.Info("crop failed", "session", state.ID, "error", err)
		return s.reject(ctx, Outcome{Notice: failure("Crop failed. Please try again."), Err: err})
	}
	return s.apply(ctx, ApplyCrop{Result: cropped})
}

// ExportFailed reports a failed export to the page and listeners. The state
// is left as it was.
func (s *Session) ExportFailed(ctx context.Context, err error) (State, Outcome) {
	if errors.Is(err, render.ErrEmptyImage) {
		return s.reject(ctx, Outcome{Notice: warning("Please upload an image first."), Err: ErrNoImage})
	}
	s.m.logger.Error("export failed", "session", s.ID(), "error", err)
	return s.reject(ctx, Outcome{Notice: failure("Export failed. Please try again."), Err: err})
}

// reject publishes out.Notice with the current state without changing it.
func (s *Session) reject(ctx context.Context, out Outcome) (State, Outcome) {
	s.mu.Lock()
	cur, seq := s.state, s.seq
	s.mu.Unlock()
	s.publish(ctx, seq, cur, false, out.Notice)
	return cur, out
}

// Touch marks the session as used.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = s.m.now()
	s.mu.Unlock()
}
