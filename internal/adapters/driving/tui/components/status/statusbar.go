// Package status provides the status bar for the chat TUI.
package status

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/canvai/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/canvai/internal/adapters/driving/tui/styles"
)

// State represents the chat state for display.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
)

// sessionPrefix is how much of the session id is shown.
const sessionPrefix = 8

// Bar displays chat status and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	table   string
	session string
	turns   int
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update handles status bar messages.
func (s *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	// Bar is passive, updated via Set methods
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := s.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders state, last table and session.
func (s *Bar) renderLeft() string {
	var state string
	switch s.state {
	case StateThinking:
		state = s.styles.Warning.Render("Thinking...")
	case StateError:
		if s.message != "" {
			state = s.styles.Error.Render(fmt.Sprintf("Error: %s", s.message))
		} else {
			state = s.styles.Error.Render("Error")
		}
	case StateReady:
		state = s.styles.Muted.Render("Ready")
	default:
		state = s.styles.Muted.Render("Ready")
	}

	parts := []string{state}
	if s.table != "" {
		parts = append(parts, s.styles.Muted.Render("table "+s.table))
	}
	if s.turns > 0 {
		parts = append(parts, s.styles.Muted.Render(fmt.Sprintf("%d turns", s.turns)))
	}
	if s.session != "" {
		id := s.session
		if len(id) > sessionPrefix {
			id = id[:sessionPrefix]
		}
		parts = append(parts, s.styles.Muted.Render("session "+id))
	}
	return strings.Join(parts, s.styles.Muted.Render(" · "))
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	bindings := s.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets the error message.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetTable records the table the last answer searched.
func (s *Bar) SetTable(table string) {
	s.table = table
}

// Table returns the table the last answer searched.
func (s *Bar) Table() string {
	return s.table
}

// SetSession sets the session id.
func (s *Bar) SetSession(id string) {
	s.session = id
}

// Session returns the session id.
func (s *Bar) Session() string {
	return s.session
}

// SetTurns sets the number of history turns.
func (s *Bar) SetTurns(n int) {
	s.turns = n
}

// Turns returns the number of history turns.
func (s *Bar) Turns() int {
	return s.turns
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}

// Clear resets everything except the session id.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.table = ""
	s.turns = 0
}
