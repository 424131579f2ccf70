package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driving"
	"github.com/custodia-labs/canvai/internal/logger"
)

// Ensure Assistant implements the interface.
var _ driving.AssistantService = (*Assistant)(nil)

// Assistant answers questions by planning, searching and synthesising.
type Assistant struct {
	planner     driving.PlannerService
	search      driving.SearchService
	synthesizer driving.SynthesizerService
	k           int
	recreate    bool
}

// NewAssistant creates an assistant from its three stages.
func NewAssistant(
	planner driving.PlannerService,
	search driving.SearchService,
	synthesizer driving.SynthesizerService,
) *Assistant {
	return &Assistant{
		planner:     planner,
		search:      search,
		synthesizer: synthesizer,
		k:           domain.DefaultK,
	}
}

// SetK sets the number of documents retrieved per question.
func (a *Assistant) SetK(k int) {
	if k > 0 {
		a.k = k
	}
}

// SetRecreateIfMissing makes searches rebuild missing stores once.
func (a *Assistant) SetRecreateIfMissing(v bool) {
	a.recreate = v
}

// Ask plans query, searches the planned table and writes an answer.
// An error-bearing or unusable plan searches the default table.
func (a *Assistant) Ask(ctx context.Context, query string, history []domain.ChatTurn) (*domain.Answer, error) {
	plan := a.planner.Plan(ctx, query)
	table := plan.Target()
	if plan.HasError() {
		logger.Warn("Planning failed, searching %s: %s", table, plan.Error)
	} else if table != plan.TableToQuery {
		logger.Debug("Plan named unknown table %q, searching %s", plan.TableToQuery, table)
	}

	results, err := a.search.Search(ctx, query, domain.SearchOptions{
		Database:          table.String(),
		K:                 a.k,
		RecreateIfMissing: a.recreate,
	})
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}

	return &domain.Answer{
		Text:    a.synthesizer.Synthesize(ctx, query, results, history),
		Plan:    plan,
		Table:   table,
		Results: results,
	}, nil
}
