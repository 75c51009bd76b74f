package preview

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"thirdcoast.systems/darkroom/internal/editor"
)

func TestHub_BroadcastReachesOnlyThatSession(t *testing.T) {
	h := NewHub()
	a, b := uuid.New(), uuid.New()

	chA, unsubA := h.Subscribe(a)
	defer unsubA()
	chB, unsubB := h.Subscribe(b)
	defer unsubB()

	h.Broadcast(a, []byte("hello"))

	require.Equal(t, []byte("hello"), <-chA)
	select {
	case msg := <-chB:
		t.Fatalf("unexpected message %q", msg)
	default:
	}
}

func TestHub_UnsubscribeClosesAndForgets(t *testing.T) {
	h := NewHub()
	id := uuid.New()

	ch, unsub := h.Subscribe(id)
	require.Equal(t, 1, h.Subscribers(id))

	unsub()
	_, ok := <-ch
	require.False(t, ok)
	require.Equal(t, 0, h.Subscribers(id))

	// Second call is a no-op.
	unsub()
	h.Broadcast(id, []byte("x"))
}

func TestHub_SubscriberLimit(t *testing.T) {
	h := NewHub()
	id := uuid.New()

	for range MaxSubsPerSession {
		_, unsub := h.Subscribe(id)
		defer unsub()
	}

	ch, _ := h.Subscribe(id)
	_, ok := <-ch
	require.False(t, ok, "stream over the limit must be closed")
	require.Equal(t, MaxSubsPerSession, h.Subscribers(id))
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()
	id := uuid.New()

	_, unsub := h.Subscribe(id)
	defer unsub()

	for range 100 {
		h.Broadcast(id, []byte("frame"))
	}
}

func TestHub_Listener(t *testing.T) {
	h := NewHub()
	state := editor.NewState(uuid.New())

	ch, unsub := h.Subscribe(state.ID)
	defer unsub()

	h.Listener()(state, &editor.Notice{Level: editor.LevelInfo, Message: "All changes reset"})

	var got Signals
	require.NoError(t, json.Unmarshal(<-ch, &got))
	require.Equal(t, state.ID, got.Session.ID)
	require.False(t, got.Session.HasImage)
	require.NotNil(t, got.Notice)
	require.Equal(t, "All changes reset", got.Notice.Message)
}
