// Package input provides the question input for the chat TUI.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/canvai/internal/adapters/driving/tui/styles"
)

// ChatInput wraps a bubbles textinput and remembers submitted questions.
type ChatInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int

	// asked holds submitted questions, oldest first.
	asked []string

	// cursor indexes asked while recalling; len(asked) means the live draft.
	cursor int
	draft  string
}

// NewChatInput creates a focused question input.
func NewChatInput(s *styles.Styles) *ChatInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about courses, grades or students..."
	ti.Focus()
	ti.CharLimit = 1000
	ti.Width = 50

	return &ChatInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the input.
func (c *ChatInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (c *ChatInput) Update(msg tea.Msg) (*ChatInput, tea.Cmd) {
	var cmd tea.Cmd
	c.textinput, cmd = c.textinput.Update(msg)
	return c, cmd
}

// View renders the input with its label.
func (c *ChatInput) View() string {
	label := c.styles.UserLabel.Render("You: ")
	field := c.styles.InputField.Render(c.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (c *ChatInput) Value() string {
	return c.textinput.Value()
}

// SetValue sets the input value.
func (c *ChatInput) SetValue(value string) {
	c.textinput.SetValue(value)
	c.textinput.CursorEnd()
}

// Submit returns the trimmed question, records it for recall and clears the
// input. An empty question is neither recorded nor cleared.
func (c *ChatInput) Submit() string {
	q := strings.TrimSpace(c.textinput.Value())
	if q == "" {
		return ""
	}
	if n := len(c.asked); n == 0 || c.asked[n-1] != q {
		c.asked = append(c.asked, q)
	}
	c.cursor = len(c.asked)
	c.draft = ""
	c.textinput.Reset()
	return q
}

// Previous recalls the previous question, keeping the unsent draft.
func (c *ChatInput) Previous() {
	if c.cursor == 0 {
		return
	}
	if c.cursor == len(c.asked) {
		c.draft = c.textinput.Value()
	}
	c.cursor--
	c.SetValue(c.asked[c.cursor])
}

// Next moves forward through recalled questions, ending at the draft.
func (c *ChatInput) Next() {
	if c.cursor >= len(c.asked) {
		return
	}
	c.cursor++
	if c.cursor == len(c.asked) {
		c.SetValue(c.draft)
		return
	}
	c.SetValue(c.asked[c.cursor])
}

// Asked returns the submitted questions, oldest first.
func (c *ChatInput) Asked() []string {
	return c.asked
}

// Focus sets focus on the input.
func (c *ChatInput) Focus() tea.Cmd {
	return c.textinput.Focus()
}

// Blur removes focus from the input.
func (c *ChatInput) Blur() {
	c.textinput.Blur()
}

// Focused returns whether the input is focused.
func (c *ChatInput) Focused() bool {
	return c.textinput.Focused()
}

// SetWidth sets the width of the input.
func (c *ChatInput) SetWidth(width int) {
	c.width = width
	// Account for label and padding
	inputWidth := width - 12
	if inputWidth < 20 {
		inputWidth = 20
	}
	c.textinput.Width = inputWidth
}

// Width returns the current width.
func (c *ChatInput) Width() int {
	return c.width
}

// Reset clears the input and the recall history.
func (c *ChatInput) Reset() {
	c.textinput.Reset()
	c.asked = nil
	c.cursor = 0
	c.draft = ""
}
