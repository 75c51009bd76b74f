// Package history implements the per-category undo stacks of an edit session.
package history

import "thirdcoast.systems/darkroom/pkg/snapshot"

// Policy decides whether a push is recorded.
type Policy int

const (
	// PushAlways records every push.
	PushAlways Policy = iota
	// PushIfChanged skips a push whose snapshot matches the current top.
	PushIfChanged
)

func (p Policy) String() string {
	switch p {
	case PushAlways:
		return "always"
	case PushIfChanged:
		return "if-changed"
	default:
		return "unknown"
	}
}

// Stack is a LIFO of snapshots. It has value semantics: Push, Pop and Clear
// return a new Stack and never write into a backing array another Stack can
// observe.
type Stack struct {
	policy Policy
	items  []snapshot.Snapshot
}

// New returns an empty stack using policy.
func New(policy Policy) Stack {
	return Stack{policy: policy}
}

// Policy returns the push policy of the stack.
func (s Stack) Policy() Policy { return s.policy }

// Len returns the number of entries.
func (s Stack) Len() int { return len(s.items) }

// Empty reports whether there is nothing to undo.
func (s Stack) Empty() bool { return len(s.items) == 0 }

// Peek returns the top entry without removing it.
func (s Stack) Peek() (snapshot.Snapshot, bool) {
	if len(s.items) == 0 {
		return snapshot.Snapshot{}, false
	}
	return s.items[len(s.items)-1], true
}

// Push records snap according to the stack policy. The second return value
// reports whether the entry was recorded.
func (s Stack) Push(snap snapshot.Snapshot) (Stack, bool) {
	if s.policy == PushIfChanged {
		if top, ok := s.Peek(); ok && top.Same(snap) {
			return s, false
		}
	}
	items := make([]snapshot.Snapshot, len(s.items), len(s.items)+1)
	copy(items, s.items)
	return Stack{policy: s.policy, items: append(items, snap)}, true
}

// Pop removes the top entry. ok is false when the stack is empty; that is
// "nothing to undo", not a failure.
func (s Stack) Pop() (next Stack, top snapshot.Snapshot, ok bool) {
	if len(s.items) == 0 {
		return s, snapshot.Snapshot{}, false
	}
	n := len(s.items) - 1
	return Stack{policy: s.policy, items: s.items[:n:n]}, s.items[n], true
}

// Clear drops every entry.
func (s Stack) Clear() Stack {
	return Stack{policy: s.policy}
}

// Items returns the entries bottom to top.
func (s Stack) Items() []snapshot.Snapshot {
	out := make([]snapshot.Snapshot, len(s.items))
	copy(out, s.items)
	return out
}

// FromItems rebuilds a stack loaded from storage, bottom to top.
func FromItems(policy Policy, items []snapshot.Snapshot) Stack {
	s := New(policy)
	if len(items) > 0 {
		s.items = make([]snapshot.Snapshot, len(items))
		copy(s.items, items)
	}
	return s
}
