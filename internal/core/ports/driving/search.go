package driving

import (
	"context"

	"github.com/custodia-labs/canvai/internal/core/domain"
)

// SearchService provides hybrid retrieval to external actors.
type SearchService interface {
	// Search returns up to opts.K documents ranked by similarity, corrected
	// by exact identifier matches. An empty slice is a valid result.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}

// PlannerService turns a question into a structured plan.
type PlannerService interface {
	// Plan never fails; failures are reported through QueryPlan.Error.
	Plan(ctx context.Context, query string) domain.QueryPlan
}

// SynthesizerService writes a natural-language answer from retrieved context.
type SynthesizerService interface {
	// Synthesize never fails; failures become an apology message.
	Synthesize(ctx context.Context, query string, results []domain.SearchResult, history []domain.ChatTurn) string
}

// AssistantService runs plan, search and synthesis end to end.
type AssistantService interface {
	// Ask answers a question. The error is non-nil only for failures that
	// leave nothing to show (a missing store without rebuild, a failed embed).
	Ask(ctx context.Context, query string, history []domain.ChatTurn) (*domain.Answer, error)
}
