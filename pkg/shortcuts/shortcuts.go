// Package shortcuts resolves global keyboard shortcuts to editor actions.
package shortcuts

import "strings"

// Action is an editor command reachable from the keyboard.
type Action string

const (
	ActionNone   Action = ""
	ActionReset  Action = "reset"
	ActionExport Action = "export"
	ActionOpen   Action = "open"
)

// Binding maps a key, pressed with the platform modifier, to an action.
type Binding struct {
	Action Action `json:"action"`
	Label  string `json:"label"`
	Key    string `json:"key"`
}

// Bindings lists the global shortcuts. They are always active; an action
// that is not applicable (no image loaded) is handled by the action itself.
var Bindings = []Binding{
	{Action: ActionReset, Label: "Reset all changes", Key: "z"},
	{Action: ActionExport, Label: "Save image", Key: "s"},
	{Action: ActionOpen, Label: "Open image", Key: "o"},
}

// KeyEvent is a key press as reported by the client.
type KeyEvent struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Meta  bool   `json:"meta"`
	Shift bool   `json:"shift"`
	Alt   bool   `json:"alt"`
}

// Match returns the action bound to ev. Either Ctrl or Meta counts as the
// platform modifier; other modifiers must not be held.
func Match(ev KeyEvent) (Action, bool) {
	if !(ev.Ctrl || ev.Meta) || ev.Shift || ev.Alt {
		return ActionNone, false
	}
	key := strings.ToLower(strings.TrimSpace(ev.Key))
	for _, b := range Bindings {
		if b.Key == key {
			return b.Action, true
		}
	}
	return ActionNone, false
}

// Chord renders a binding for display, e.g. "Ctrl/⌘+Z".
func (b Binding) Chord() string {
	return "Ctrl/⌘+" + strings.ToUpper(b.Key)
}
