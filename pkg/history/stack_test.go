package history

import (
	"testing"

	"github.com/stretchr/testify/require"

	"thirdcoast.systems/darkroom/pkg/snapshot"
)

func snap(t *testing.T, payload string) snapshot.Snapshot {
	t.Helper()
	s, err := snapshot.New([]byte(payload), "image/jpeg")
	require.NoError(t, err)
	return s
}

func TestRoundTrip(t *testing.T) {
	a, b := snap(t, "A"), snap(t, "B")

	s := New(PushAlways)
	s, _ = s.Push(a)
	s, _ = s.Push(b)

	s, got, ok := s.Pop()
	require.True(t, ok)
	require.True(t, got.Same(b))

	s, got, ok = s.Pop()
	require.True(t, ok)
	require.True(t, got.Same(a))

	s, got, ok = s.Pop()
	require.False(t, ok)
	require.True(t, got.IsZero())
	require.Zero(t, s.Len())
}

func TestPushIfChanged_Dedup(t *testing.T) {
	x, y := snap(t, "X"), snap(t, "Y")

	s := New(PushIfChanged)
	s, pushed := s.Push(x)
	require.True(t, pushed)
	s, pushed = s.Push(snap(t, "X"))
	require.False(t, pushed)
	require.Equal(t, 1, s.Len())

	s, pushed = s.Push(y)
	require.True(t, pushed)
	require.Equal(t, 2, s.Len())

	// Only consecutive duplicates are skipped.
	s, pushed = s.Push(x)
	require.True(t, pushed)
	require.Equal(t, 3, s.Len())
}

func TestPushAlways_KeepsDuplicates(t *testing.T) {
	x := snap(t, "X")
	s := New(PushAlways)
	s, _ = s.Push(x)
	s, pushed := s.Push(x)
	require.True(t, pushed)
	require.Equal(t, 2, s.Len())
}

func TestValueSemantics(t *testing.T) {
	a, b, c := snap(t, "A"), snap(t, "B"), snap(t, "C")

	base := New(PushAlways)
	base, _ = base.Push(a)
	base, _ = base.Push(b)

	popped, _, _ := base.Pop()
	branch, _ := popped.Push(c)

	require.Equal(t, 2, base.Len())
	top, ok := base.Peek()
	require.True(t, ok)
	require.True(t, top.Same(b))

	top, _ = branch.Peek()
	require.True(t, top.Same(c))
}

func TestClear(t *testing.T) {
	s := New(PushIfChanged)
	s, _ = s.Push(snap(t, "A"))
	s = s.Clear()
	require.True(t, s.Empty())
	require.Equal(t, PushIfChanged, s.Policy())
}

func TestFromItems(t *testing.T) {
	a, b := snap(t, "A"), snap(t, "B")
	s := FromItems(PushAlways, []snapshot.Snapshot{a, b})
	require.Equal(t, 2, s.Len())
	top, _ := s.Peek()
	require.True(t, top.Same(b))
	require.Len(t, s.Items(), 2)
}
