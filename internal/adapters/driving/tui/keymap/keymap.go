// Package keymap defines keybindings for the chat TUI.
// The input always has focus, so no binding uses a printable key or one the
// text input already edits with.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the chat TUI.
type KeyMap struct {
	// Send submits the current question.
	Send key.Binding

	// Quit exits the chat.
	Quit key.Binding

	// ScrollUp scrolls the transcript up a page.
	ScrollUp key.Binding

	// ScrollDown scrolls the transcript down a page.
	ScrollDown key.Binding

	// PrevQuestion recalls the previous question into the input.
	PrevQuestion key.Binding

	// NextQuestion recalls the next question into the input.
	NextQuestion key.Binding

	// ToggleSources shows or hides the sources of the last answer.
	ToggleSources key.Binding

	// NewSession clears the transcript and history.
	NewSession key.Binding

	// Help toggles the full help.
	Help key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll down"),
		),
		PrevQuestion: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑", "previous question"),
		),
		NextQuestion: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↓", "next question"),
		),
		ToggleSources: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "sources"),
		),
		NewSession: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new session"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Send, k.ToggleSources, k.Help, k.Quit}
}

// FullHelp returns the full list of keybindings for the help panel.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.PrevQuestion, k.NextQuestion},
		{k.ScrollUp, k.ScrollDown, k.ToggleSources},
		{k.NewSession, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
