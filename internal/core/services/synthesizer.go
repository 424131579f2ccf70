package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
	"github.com/custodia-labs/canvai/internal/core/ports/driving"
	"github.com/custodia-labs/canvai/internal/logger"
)

// Ensure AnswerSynthesizer implements the interfaces.
var (
	_ driving.SynthesizerService = (*AnswerSynthesizer)(nil)
	_ driven.PromptStoreAware    = (*AnswerSynthesizer)(nil)
)

// DefaultAnswerPrompt is the system instruction for answers.
const DefaultAnswerPrompt = `You are an intelligent and friendly academic assistant that helps users explore their course and grade data.
Use the provided information to generate helpful, concise, and natural responses.

- You may infer or summarize key insights as long as they are grounded in the provided data.
- If the data does not explicitly contain an answer, offer an educated summary or note patterns instead of saying you don't know.
- Keep your tone natural and clear.
`

// contextSeparator joins retrieved document contents.
const contextSeparator = "\n\n---\n\n"

// AnswerSynthesizer turns retrieved documents into a conversational answer.
type AnswerSynthesizer struct {
	llm          driven.LLMService
	prompts      driven.PromptStore
	temperature  float64
	historyTurns int
}

// NewAnswerSynthesizer creates a synthesizer. llm may be nil; answers then
// explain that the model is not configured.
func NewAnswerSynthesizer(llm driven.LLMService) *AnswerSynthesizer {
	return &AnswerSynthesizer{
		llm:          llm,
		temperature:  domain.DefaultAnswerTemperature,
		historyTurns: domain.DefaultHistoryTurns,
	}
}

// SetPromptStore sets the prompt store for the answer system prompt.
func (s *AnswerSynthesizer) SetPromptStore(store driven.PromptStore) {
	s.prompts = store
}

// SetTemperature overrides the sampling temperature.
func (s *AnswerSynthesizer) SetTemperature(t float64) {
	s.temperature = t
}

// SetHistoryTurns sets how many prior turns are sent. Zero sends none.
func (s *AnswerSynthesizer) SetHistoryTurns(n int) {
	if n >= 0 {
		s.historyTurns = n
	}
}

// Synthesize answers query from results and recent history.
// Failures are returned as readable text.
func (s *AnswerSynthesizer) Synthesize(
	ctx context.Context, query string, results []domain.SearchResult, history []domain.ChatTurn,
) string {
	logger.Section("Answer Synthesis")

	if s.llm == nil {
		return apology(domain.ErrLLMUnavailable)
	}

	messages := []driven.ChatMessage{{
		Role:    driven.RoleSystem,
		Content: loadPrompt(s.prompts, driven.PromptAnswerSystem, DefaultAnswerPrompt),
	}}
	for _, turn := range recentTurns(history, s.historyTurns) {
		role := driven.RoleUser
		if turn.Role == driven.RoleAssistant {
			role = driven.RoleAssistant
		}
		messages = append(messages, driven.ChatMessage{Role: role, Content: turn.Content})
	}
	messages = append(messages, driven.ChatMessage{
		Role:    driven.RoleUser,
		Content: UserContent(query, results),
	})
	logger.Debug("Synthesis: %d context documents, %d messages", len(results), len(messages))

	reply, err := s.llm.Chat(ctx, messages, driven.ChatOptions{Temperature: s.temperature})
	if err != nil {
		logger.Warn("Synthesis failed: %v", err)
		return apology(err)
	}
	return strings.TrimSpace(reply)
}

// UserContent renders the user message: the question followed by the
// retrieved contents, most relevant first.
func UserContent(query string, results []domain.SearchResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Document.Content)
	}
	return fmt.Sprintf("User Query: %s\n\nRelevant Information (from file):\n%s", query, strings.Join(parts, contextSeparator))
}

func recentTurns(history []domain.ChatTurn, n int) []domain.ChatTurn {
	if n <= 0 {
		return nil
	}
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}

func apology(err error) string {
	if errors.Is(err, domain.ErrMissingCredential) {
		return fmt.Sprintf("Configuration error: %v", err)
	}
	return fmt.Sprintf("Sorry, I couldn't generate an answer right now. (%v)", err)
}
