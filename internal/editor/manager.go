package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"thirdcoast.systems/darkroom/pkg/render"
)

const DefaultIdleTimeout = 2 * time.Hour

// Listener observes state changes and notices of every session.
type Listener func(state State, notice *Notice)

// Options configures a Manager.
type Options struct {
	Store       Store
	Dispatcher  Dispatcher
	IdleTimeout time.Duration
	// Quality is the JPEG quality of exports and locally produced images.
	Quality int
	Logger  *slog.Logger
	Now     func() time.Time
}

// Manager owns independent edit sessions.
type Manager struct {
	store      Store
	dispatcher Dispatcher
	idle       time.Duration
	quality    int
	logger     *slog.Logger
	now        func() time.Time

	mu        sync.Mutex
	sessions  map[uuid.UUID]*Session
	listeners []Listener
}

func NewManager(opts Options) *Manager {
	m := &Manager{
		store:      opts.Store,
		dispatcher: opts.Dispatcher,
		idle:       opts.IdleTimeout,
		quality:    opts.Quality,
		logger:     opts.Logger,
		now:        opts.Now,
		sessions:   make(map[uuid.UUID]*Session),
	}
	if m.store == nil {
		m.store = NewMemoryStore()
	}
	if m.idle <= 0 {
		m.idle = DefaultIdleTimeout
	}
	if m.quality <= 0 || m.quality > 100 {
		m.quality = render.DefaultQuality
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// Listen registers fn for every state change and notice.
func (m *Manager) Listen(fn Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Create starts a new session without an image.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	state := NewState(uuid.New())
	state.UpdatedAt = m.now()
	if err := m.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	s := &Session{m: m, state: state, lastSeen: m.now()}
	m.mu.Lock()
	m.sessions[state.ID] = s
	m.mu.Unlock()

	m.logger.Info("session created", "session", state.ID)
	return s, nil
}

// Get returns a live session, loading it from the store when it is not in
// memory.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		s.Touch()
		return s, nil
	}
	m.mu.Unlock()

	state, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have loaded it meanwhile.
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	s := &Session{m: m, state: state, lastSeen: m.now()}
	m.sessions[id] = s
	m.logger.Debug("session restored", "session", id)
	return s, nil
}

// GetOrCreate returns the session for id, or a new one when id is unknown.
func (m *Manager) GetOrCreate(ctx context.Context, id uuid.UUID) (*Session, bool, error) {
	if id != uuid.Nil {
		s, err := m.Get(ctx, id)
		if err == nil {
			return s, false, nil
		}
		if !errors.Is(err, ErrSessionNotFound) {
			return nil, false, err
		}
	}
	s, err := m.Create(ctx)
	return s, true, err
}

// Len returns the number of sessions held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep expires sessions idle for longer than the idle timeout and returns
// how many were removed.
func (m *Manager) Sweep(ctx context.Context) int {
	cutoff := m.now().Add(-m.idle)

	m.mu.Lock()
	var expired []uuid.UUID
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		if err := m.store.Delete(ctx, id); err != nil {
			m.logger.Warn("failed to delete expired session", "session", id, "error", err)
		}
	}
	if len(expired) > 0 {
		m.logger.Info("expired idle sessions", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	interval := max(m.idle/4, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(ctx)
		}
	}
}

func (m *Manager) persist(ctx context.Context, s State) {
	if err := m.store.Save(context.WithoutCancel(ctx), s); err != nil {
		m.logger.Warn("failed to persist session", "session", s.ID, "error", err)
	}
}

func (m *Manager) notify(s State, n *Notice) {
	m.mu.Lock()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(s, n)
	}
}
