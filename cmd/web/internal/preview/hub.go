// Package preview fans session state changes out to live preview streams.
package preview

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"thirdcoast.systems/darkroom/internal/editor"
)

const (
	// MaxSubsPerSession limits the number of open preview streams per edit session.
	MaxSubsPerSession = 50
)

// Signals is the payload patched into the page on every change.
type Signals struct {
	Session editor.View    `json:"session"`
	Notice  *editor.Notice `json:"notice"`
}

// Hub broadcasts preview signals to the streams of each edit session.
type Hub struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]map[chan []byte]struct{}
}

// NewHub creates a new preview hub.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[uuid.UUID]map[chan []byte]struct{}),
	}
}

// Subscribe subscribes a stream to updates of session id. The returned
// channel is closed immediately when the session already has too many
// streams.
func (h *Hub) Subscribe(id uuid.UUID) (<-chan []byte, func()) {
	ch := make(chan []byte, 8)

	h.mu.Lock()
	subs, ok := h.sessions[id]
	if !ok {
		subs = make(map[chan []byte]struct{})
		h.sessions[id] = subs
	}
	if len(subs) >= MaxSubsPerSession {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs, ok := h.sessions[id]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.sessions, id)
		}
	}

	return ch, unsubscribe
}

// Subscribers returns the number of open streams for id.
func (h *Hub) Subscribers(id uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions[id])
}

// Broadcast sends data to every stream of session id. Slow streams miss
// updates instead of blocking the sender.
func (h *Hub) Broadcast(id uuid.UUID, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Sends never block, so holding the lock keeps unsubscribe from closing
	// a channel mid-send.
	for ch := range h.sessions[id] {
		select {
		case ch <- data:
		default:
		}
	}
}

// Listener adapts the hub to editor state changes.
func (h *Hub) Listener() editor.Listener {
	return func(state editor.State, notice *editor.Notice) {
		if h.Subscribers(state.ID) == 0 {
			return
		}
		data, err := Encode(state, notice)
		if err != nil {
			slog.Warn("failed to encode preview signals", "session", state.ID, "error", err)
			return
		}
		h.Broadcast(state.ID, data)
	}
}

// Encode renders the signals for state.
func Encode(state editor.State, notice *editor.Notice) ([]byte, error) {
	return json.Marshal(Signals{Session: state.View(), Notice: notice})
}
