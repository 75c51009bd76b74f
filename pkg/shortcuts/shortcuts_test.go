package shortcuts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name string
		ev   KeyEvent
		want Action
		ok   bool
	}{
		{"ctrl z", KeyEvent{Key: "z", Ctrl: true}, ActionReset, true},
		{"meta Z", KeyEvent{Key: "Z", Meta: true}, ActionReset, true},
		{"ctrl s", KeyEvent{Key: "s", Ctrl: true}, ActionExport, true},
		{"meta o", KeyEvent{Key: "o", Meta: true}, ActionOpen, true},
		{"no modifier", KeyEvent{Key: "s"}, ActionNone, false},
		{"shift held", KeyEvent{Key: "z", Ctrl: true, Shift: true}, ActionNone, false},
		{"unbound", KeyEvent{Key: "q", Ctrl: true}, ActionNone, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Match(tc.ev)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestChord(t *testing.T) {
	require.Equal(t, "Ctrl/⌘+S", Bindings[1].Chord())
}
