// Package messages defines Bubbletea message types for the chat TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"time"

	"github.com/custodia-labs/canvai/internal/core/domain"
)

// QuestionSubmitted is sent when the user sends a question.
type QuestionSubmitted struct {
	Query string
}

// AnswerReceived carries the outcome of an ask back to the model.
// Session is the session that asked, so answers to a cleared session can be dropped.
type AnswerReceived struct {
	Session string
	Query   string
	Answer  *domain.Answer
	Err     error
	Elapsed time.Duration
}

// SessionReset is sent when a new chat session starts.
type SessionReset struct {
	ID string
}

// PaneChanged is sent when the lower pane switches.
type PaneChanged struct {
	Pane Pane
}

// Pane identifies what the lower half of the chat shows beneath the transcript.
type Pane int

const (
	// PaneNone shows only the transcript.
	PaneNone Pane = iota
	// PaneSources lists the documents behind the last answer.
	PaneSources
	// PaneHelp shows every keybinding.
	PaneHelp
)

// String returns the string representation of the pane.
func (p Pane) String() string {
	switch p {
	case PaneNone:
		return "none"
	case PaneSources:
		return "sources"
	case PaneHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred is sent when an error happens outside an ask.
type ErrorOccurred struct {
	Err error
}

// Quit is a command to exit the application.
type Quit struct{}
