package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/canvai/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/canvai/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/canvai/internal/core/domain"
)

// mockAssistant implements driving.AssistantService for testing.
type mockAssistant struct {
	mu      sync.Mutex
	askFunc func(ctx context.Context, query string, history []domain.ChatTurn) (*domain.Answer, error)
	calls   [][]domain.ChatTurn
}

func (m *mockAssistant) Ask(ctx context.Context, query string, history []domain.ChatTurn) (*domain.Answer, error) {
	m.mu.Lock()
	m.calls = append(m.calls, history)
	m.mu.Unlock()
	if m.askFunc != nil {
		return m.askFunc(ctx, query, history)
	}
	return &domain.Answer{
		Text:  "CMPSC461 is taught by Dr. Smith.",
		Table: domain.TableCourses,
		Plan:  domain.QueryPlan{TableToQuery: domain.TableCourses},
		Results: []domain.SearchResult{
			{
				Document: domain.Document{
					ID:       "c1",
					Content:  "course_id: CMPSC461\ninstructor: Dr. Smith",
					Metadata: map[string]string{domain.MetaTable: "courses", domain.MetaRow: "0"},
				},
				Score: 0.93,
			},
		},
	}, nil
}

func newSizedView(assistant *mockAssistant) *View {
	var v *View
	if assistant == nil {
		v = NewView(nil, nil, nil)
	} else {
		v = NewView(nil, nil, assistant)
	}
	v.SetDimensions(100, 40)
	return v
}

// answerFrom runs the batched command returned by a submit and returns the
// AnswerReceived it produces.
func answerFrom(t *testing.T, cmd tea.Cmd) messages.AnswerReceived {
	t.Helper()
	require.NotNil(t, cmd)

	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	require.True(t, ok, "expected a batch, got %T", msg)

	for _, c := range batch {
		if c == nil {
			continue
		}
		if ans, ok := c().(messages.AnswerReceived); ok {
			return ans
		}
	}
	t.Fatal("batch did not produce an answer")
	return messages.AnswerReceived{}
}

func ask(t *testing.T, v *View, question string) {
	t.Helper()
	v.Input().SetValue(question)
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := answerFrom(t, cmd)
	v.Update(msg)
}

func TestNewView(t *testing.T) {
	v := NewView(nil, nil, &mockAssistant{})

	require.NotNil(t, v)
	assert.NotEmpty(t, v.Session())
	assert.Equal(t, v.Session(), v.statusbar.Session())
	assert.False(t, v.Ready())
	assert.Equal(t, "Initialising...", v.View())
	assert.NotNil(t, v.Init())
}

func TestView_SessionsAreUnique(t *testing.T) {
	a := NewView(nil, nil, nil)
	b := NewView(nil, nil, nil)

	assert.NotEqual(t, a.Session(), b.Session())
}

func TestView_WindowSize(t *testing.T) {
	v := NewView(nil, nil, nil)

	v, cmd := v.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	assert.Nil(t, cmd)
	assert.True(t, v.Ready())
	assert.Equal(t, 120, v.Width())
	assert.Equal(t, 30, v.Height())
	assert.Equal(t, 120, v.statusbar.Width())
	assert.Equal(t, 30-titleHeight-inputHeight-statusHeight, v.transcript.Height)
}

func TestView_AskFlow(t *testing.T) {
	assistant := &mockAssistant{}
	v := newSizedView(assistant)

	v.Input().SetValue("who teaches CMPSC461?")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, v.Thinking())
	assert.Equal(t, status.StateThinking, v.statusbar.State())
	assert.Equal(t, "", v.Input().Value())

	msg := answerFrom(t, cmd)
	assert.Equal(t, v.Session(), msg.Session)
	assert.Equal(t, "who teaches CMPSC461?", msg.Query)
	require.NoError(t, msg.Err)

	v.Update(msg)

	assert.False(t, v.Thinking())
	assert.Equal(t, status.StateReady, v.statusbar.State())
	assert.Equal(t, "courses", v.statusbar.Table())
	require.NotNil(t, v.LastAnswer())
	assert.Equal(t, []domain.ChatTurn{
		{Role: "user", Content: "who teaches CMPSC461?"},
		{Role: "assistant", Content: "CMPSC461 is taught by Dr. Smith."},
	}, v.History())
	assert.Equal(t, 1, v.sources.Count())

	view := v.View()
	assert.Contains(t, view, "who teaches CMPSC461?")
	assert.Contains(t, view, "Dr. Smith")
}

func TestView_HistoryIsSentWithNextQuestion(t *testing.T) {
	assistant := &mockAssistant{}
	v := newSizedView(assistant)

	ask(t, v, "first")
	ask(t, v, "second")

	require.Len(t, assistant.calls, 2)
	assert.Empty(t, assistant.calls[0], "first question has no history")
	require.Len(t, assistant.calls[1], 2)
	assert.Equal(t, "first", assistant.calls[1][0].Content)
	assert.Len(t, v.History(), 4)
	assert.Equal(t, 4, v.statusbar.Turns())
}

func TestView_HistoryPassedIsACopy(t *testing.T) {
	assistant := &mockAssistant{}
	v := newSizedView(assistant)
	ask(t, v, "first")

	v.Input().SetValue("second")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := answerFrom(t, cmd)
	v.Update(msg)

	sent := assistant.calls[1]
	sent[0].Content = "mutated"
	assert.Equal(t, "first", v.History()[0].Content)
}

func TestView_AskError(t *testing.T) {
	assistant := &mockAssistant{
		askFunc: func(context.Context, string, []domain.ChatTurn) (*domain.Answer, error) {
			return nil, domain.ErrEmbeddingUnavailable
		},
	}
	v := newSizedView(assistant)

	ask(t, v, "grades for Ada")

	assert.ErrorIs(t, v.Err(), domain.ErrEmbeddingUnavailable)
	assert.Empty(t, v.History(), "failed turns are not sent as history")
	assert.Nil(t, v.LastAnswer())
	assert.Equal(t, status.StateError, v.statusbar.State())
	assert.False(t, v.Thinking())
	assert.Contains(t, v.View(), domain.ErrEmbeddingUnavailable.Error())
}

func TestView_NilAnswerIsAnError(t *testing.T) {
	v := newSizedView(&mockAssistant{})

	v.Update(messages.AnswerReceived{Session: v.Session(), Query: "q"})

	assert.Error(t, v.Err())
	assert.Empty(t, v.History())
}

func TestView_PlannerFallbackNote(t *testing.T) {
	assistant := &mockAssistant{
		askFunc: func(context.Context, string, []domain.ChatTurn) (*domain.Answer, error) {
			return &domain.Answer{
				Text:  "Here is what I found.",
				Table: domain.DefaultTable,
				Plan:  domain.QueryPlan{Error: "could not parse"},
			}, nil
		},
	}
	v := newSizedView(assistant)

	ask(t, v, "anything")

	assert.Contains(t, v.View(), "planner fallback")
}

func TestView_EmptyQuestionIgnored(t *testing.T) {
	assistant := &mockAssistant{}
	v := newSizedView(assistant)
	v.Input().SetValue("   ")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.Thinking())
	assert.Empty(t, assistant.calls)
}

func TestView_QuestionWhileThinkingDropped(t *testing.T) {
	v := newSizedView(&mockAssistant{})
	v.Input().SetValue("first")
	_, first := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, first)

	_, second := v.Update(messages.QuestionSubmitted{Query: "second"})

	assert.Nil(t, second)
	assert.True(t, v.Thinking())
}

func TestView_QuestionSubmittedMessage(t *testing.T) {
	v := newSizedView(&mockAssistant{})

	_, cmd := v.Update(messages.QuestionSubmitted{Query: "who is Ada?"})

	msg := answerFrom(t, cmd)
	assert.Equal(t, "who is Ada?", msg.Query)
}

func TestView_NoAssistant(t *testing.T) {
	v := newSizedView(nil)
	v.Input().SetValue("hello")

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, v.Thinking())
	assert.Equal(t, status.StateError, v.statusbar.State())
	assert.Contains(t, v.View(), ErrNoAssistant.Error())
}

func TestView_StaleAnswerDropped(t *testing.T) {
	v := newSizedView(&mockAssistant{})
	v.Input().SetValue("old question")
	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := answerFrom(t, cmd)

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	v.Update(msg)

	assert.Empty(t, v.History())
	assert.Nil(t, v.LastAnswer())
	assert.NotEqual(t, msg.Session, v.Session())
}

func TestView_NewSession(t *testing.T) {
	v := newSizedView(&mockAssistant{})
	ask(t, v, "first")
	old := v.Session()

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlN})

	assert.NotEqual(t, old, v.Session())
	assert.Empty(t, v.History())
	assert.Nil(t, v.LastAnswer())
	assert.Equal(t, 0, v.sources.Count())
	assert.Empty(t, v.Input().Asked())
	assert.Equal(t, v.Session(), v.statusbar.Session())
}

func TestView_SessionResetMessage(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{name: "explicit id", id: "fixed-session"},
		{name: "generated id", id: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newSizedView(&mockAssistant{})
			old := v.Session()

			v.Update(messages.SessionReset{ID: tt.id})

			if tt.id != "" {
				assert.Equal(t, tt.id, v.Session())
			} else {
				assert.NotEmpty(t, v.Session())
				assert.NotEqual(t, old, v.Session())
			}
		})
	}
}

func TestView_TogglePanes(t *testing.T) {
	v := newSizedView(&mockAssistant{})
	full := v.transcript.Height

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, messages.PaneSources, v.Pane())
	assert.Less(t, v.transcript.Height, full)
	assert.Contains(t, v.View(), "No sources")

	v.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.Equal(t, messages.PaneHelp, v.Pane())
	assert.Contains(t, v.View(), "new session")

	v.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.Equal(t, messages.PaneNone, v.Pane())
	assert.Equal(t, full, v.transcript.Height)

	v.Update(messages.PaneChanged{Pane: messages.PaneSources})
	assert.Equal(t, messages.PaneSources, v.Pane())
}

func TestView_SourcesPaneShowsLastAnswer(t *testing.T) {
	v := newSizedView(&mockAssistant{})
	ask(t, v, "who teaches CMPSC461?")

	v.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	view := v.View()
	assert.Contains(t, view, "Sources (1)")
	assert.Contains(t, view, "courses #0")
}

func TestView_RecallKeys(t *testing.T) {
	v := newSizedView(&mockAssistant{})
	ask(t, v, "first")

	v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, "first", v.Input().Value())

	v.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, "", v.Input().Value())
}

func TestView_TypingGoesToInput(t *testing.T) {
	v := newSizedView(&mockAssistant{})

	v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	assert.Equal(t, "q", v.Input().Value())
}

func TestView_ScrollKeysDoNotType(t *testing.T) {
	v := newSizedView(&mockAssistant{})

	v.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	v.Update(tea.KeyMsg{Type: tea.KeyPgDown})

	assert.Equal(t, "", v.Input().Value())
}

func TestView_ErrorOccurred(t *testing.T) {
	v := newSizedView(&mockAssistant{})

	v.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, v.Err(), "boom")
	assert.Equal(t, "boom", v.statusbar.Message())
}

func TestView_ThinkingShowsSpinner(t *testing.T) {
	assistant := &mockAssistant{
		askFunc: func(ctx context.Context, _ string, _ []domain.ChatTurn) (*domain.Answer, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	v := newSizedView(assistant)
	v.Input().SetValue("slow")
	v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Contains(t, v.View(), "thinking...")
}

func TestView_UsesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "marker")
	got := make(chan any, 1)
	assistant := &mockAssistant{
		askFunc: func(ctx context.Context, _ string, _ []domain.ChatTurn) (*domain.Answer, error) {
			got <- ctx.Value(key{})
			return &domain.Answer{Text: "ok", Table: domain.DefaultTable}, nil
		},
	}
	v := newSizedView(assistant).WithContext(ctx)

	ask(t, v, "q")

	select {
	case val := <-got:
		assert.Equal(t, "marker", val)
	case <-time.After(time.Second):
		t.Fatal("assistant was not called")
	}
}
