// Package chat provides the conversational view of the TUI.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/custodia-labs/canvai/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/canvai/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/canvai/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/canvai/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/canvai/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/canvai/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driving"
	"github.com/custodia-labs/canvai/internal/logger"
)

// ErrNoAssistant is reported when the view has no assistant to ask.
var ErrNoAssistant = errors.New("chat: assistant service is not configured")

// Roles used in history and transcript.
const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// entry is one rendered block of the transcript.
// It differs from history in also holding errors and notes.
type entry struct {
	role string
	text string
	note string
	err  bool
}

// View is the chat screen: transcript, optional lower pane, input and status bar.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.ChatInput
	transcript viewport.Model
	sources    *list.SourceList
	statusbar  *status.Bar
	spinner    spinner.Model

	assistant driving.AssistantService
	ctx       context.Context

	session  string
	history  []domain.ChatTurn
	entries  []entry
	last     *domain.Answer
	pane     messages.Pane
	thinking bool
	err      error

	width  int
	height int
	ready  bool
}

// NewView creates a chat view with a fresh session.
func NewView(s *styles.Styles, km *keymap.KeyMap, assistant driving.AssistantService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Warning

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewChatInput(s),
		transcript: viewport.New(80, 16),
		sources:    list.NewSourceList(s),
		statusbar:  status.NewBar(s, km),
		spinner:    sp,
		assistant:  assistant,
		ctx:        context.Background(),
		session:    uuid.NewString(),
		width:      80,
		height:     24,
	}
	v.statusbar.SetSession(v.session)
	return v
}

// WithContext sets the context passed to the assistant.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.QuestionSubmitted:
		return v, v.submit(msg.Query)

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.SessionReset:
		v.reset(msg.ID)
		return v, nil

	case messages.PaneChanged:
		v.setPane(msg.Pane)
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil

	case spinner.TickMsg:
		if !v.thinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input. Unbound keys go to the input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()

	switch {
	case keymap.Matches(k, v.keymap.Send):
		q := v.input.Submit()
		if q == "" {
			return v, nil
		}
		return v, v.submit(q)

	case keymap.Matches(k, v.keymap.ScrollUp), keymap.Matches(k, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd

	case keymap.Matches(k, v.keymap.PrevQuestion):
		v.input.Previous()
		return v, nil

	case keymap.Matches(k, v.keymap.NextQuestion):
		v.input.Next()
		return v, nil

	case keymap.Matches(k, v.keymap.ToggleSources):
		v.togglePane(messages.PaneSources)
		return v, nil

	case keymap.Matches(k, v.keymap.Help):
		v.togglePane(messages.PaneHelp)
		return v, nil

	case keymap.Matches(k, v.keymap.NewSession):
		v.reset(uuid.NewString())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit records the question and starts an ask. Questions sent while an
// answer is pending are dropped.
func (v *View) submit(query string) tea.Cmd {
	query = strings.TrimSpace(query)
	if query == "" || v.thinking {
		return nil
	}
	if v.assistant == nil {
		v.appendEntry(entry{role: roleAssistant, text: ErrNoAssistant.Error(), err: true})
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(ErrNoAssistant.Error())
		return nil
	}

	v.err = nil
	v.thinking = true
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetMessage("")
	v.appendEntry(entry{role: roleUser, text: query})

	return tea.Batch(v.ask(query), v.spinner.Tick)
}

// ask runs the assistant off the update loop.
func (v *View) ask(query string) tea.Cmd {
	assistant := v.assistant
	ctx := v.ctx
	session := v.session
	history := make([]domain.ChatTurn, len(v.history))
	copy(history, v.history)

	return func() tea.Msg {
		start := time.Now()
		answer, err := assistant.Ask(ctx, query, history)
		return messages.AnswerReceived{
			Session: session,
			Query:   query,
			Answer:  answer,
			Err:     err,
			Elapsed: time.Since(start),
		}
	}
}

// handleAnswer appends the answer, or the error, to the transcript.
func (v *View) handleAnswer(msg messages.AnswerReceived) {
	if msg.Session != v.session {
		logger.Debug("dropping answer for cleared session %s", msg.Session)
		return
	}
	v.thinking = false

	if msg.Err != nil || msg.Answer == nil {
		err := msg.Err
		if err == nil {
			err = errors.New("no answer")
		}
		v.err = err
		v.appendEntry(entry{role: roleAssistant, text: err.Error(), err: true})
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(err.Error())
		return
	}

	ans := msg.Answer
	v.last = ans
	v.history = append(v.history,
		domain.ChatTurn{Role: roleUser, Content: msg.Query},
		domain.ChatTurn{Role: roleAssistant, Content: ans.Text},
	)

	note := fmt.Sprintf("%s · %d sources · %s", ans.Table, len(ans.Results), msg.Elapsed.Round(time.Millisecond))
	if ans.Plan.HasError() {
		note += " · planner fallback"
	}
	v.appendEntry(entry{role: roleAssistant, text: ans.Text, note: note})

	v.sources.SetResults(ans.Results)
	v.statusbar.SetState(status.StateReady)
	v.statusbar.SetTable(ans.Table.String())
	v.statusbar.SetTurns(len(v.history))
	logger.Debug("chat %s: answered from %s in %s", v.session, ans.Table, msg.Elapsed)
}

// reset starts a new session with an empty transcript.
func (v *View) reset(id string) {
	if id == "" {
		id = uuid.NewString()
	}
	v.session = id
	v.history = nil
	v.entries = nil
	v.last = nil
	v.thinking = false
	v.err = nil
	v.sources.SetResults(nil)
	v.input.Reset()
	v.statusbar.Clear()
	v.statusbar.SetSession(id)
	v.transcript.SetContent("")
}

func (v *View) togglePane(p messages.Pane) {
	if v.pane == p {
		v.setPane(messages.PaneNone)
		return
	}
	v.setPane(p)
}

func (v *View) setPane(p messages.Pane) {
	v.pane = p
	v.layout()
}

func (v *View) appendEntry(e entry) {
	v.entries = append(v.entries, e)
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

// renderTranscript renders every entry wrapped to the transcript width.
func (v *View) renderTranscript() string {
	if len(v.entries) == 0 {
		return v.styles.Muted.Render("Ask a question about your courses, grades or students.")
	}

	width := v.transcript.Width - 2
	if width < 20 {
		width = 20
	}

	blocks := make([]string, 0, len(v.entries))
	for _, e := range v.entries {
		label := "canvai"
		if e.role == roleUser {
			label = "You"
		}

		body := v.styles.Answer.Width(width).Render(e.text)
		if e.err {
			body = v.styles.Error.PaddingLeft(2).Width(width).Render(e.text)
		}

		block := v.styles.Label(e.role).Render(label) + "\n" + body
		if e.note != "" {
			block += "\n" + v.styles.Source.Render(e.note)
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n")
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("canvai"), v.transcript.View())

	switch v.pane {
	case messages.PaneSources:
		sections = append(sections, v.styles.Border.Width(v.width-2).Render(v.sources.View()))
	case messages.PaneHelp:
		sections = append(sections, v.styles.Border.Width(v.width-2).Render(v.renderHelp()))
	case messages.PaneNone:
	}

	prompt := v.input.View()
	if v.thinking {
		prompt = v.spinner.View() + " " + v.styles.Muted.Render("thinking...")
	}
	sections = append(sections, prompt, v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderHelp() string {
	cols := v.keymap.FullHelp()
	rendered := make([]string, 0, len(cols))
	for _, col := range cols {
		lines := make([]string, 0, len(col))
		for _, b := range col {
			h := b.Help()
			lines = append(lines, fmt.Sprintf("%-8s %s", h.Key, h.Desc))
		}
		rendered = append(rendered, v.styles.Help.Width(28).Render(strings.Join(lines, "\n")))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// Chrome heights around the transcript.
const (
	titleHeight  = 1
	inputHeight  = 3
	statusHeight = 1
)

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.layout()
}

// layout divides the height between transcript and lower pane.
func (v *View) layout() {
	paneHeight := 0
	if v.pane != messages.PaneNone {
		paneHeight = v.height / 3
		if paneHeight < 5 {
			paneHeight = 5
		}
	}
	v.sources.SetDimensions(v.width-4, paneHeight-2)

	transcriptHeight := v.height - titleHeight - inputHeight - statusHeight - paneHeight
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}
	v.transcript.Width = v.width
	v.transcript.Height = transcriptHeight
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

// Session returns the current session id.
func (v *View) Session() string {
	return v.session
}

// History returns the turns sent with the next question.
func (v *View) History() []domain.ChatTurn {
	return v.history
}

// LastAnswer returns the most recent answer, or nil.
func (v *View) LastAnswer() *domain.Answer {
	return v.last
}

// Thinking reports whether an answer is pending.
func (v *View) Thinking() bool {
	return v.thinking
}

// Pane returns the lower pane shown.
func (v *View) Pane() messages.Pane {
	return v.pane
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// Ready reports whether the view has been sized.
func (v *View) Ready() bool {
	return v.ready
}

// Width returns the view width.
func (v *View) Width() int {
	return v.width
}

// Height returns the view height.
func (v *View) Height() int {
	return v.height
}

// Input returns the question input.
func (v *View) Input() *input.ChatInput {
	return v.input
}
