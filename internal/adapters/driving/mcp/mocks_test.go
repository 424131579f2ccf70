package mcp

import (
	"context"

	"github.com/custodia-labs/canvai/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.SearchResult
	err     error
	query   string
	opts    domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	query string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.query = query
	m.opts = opts
	return m.results, m.err
}

// mockPlannerService is a mock implementation of driving.PlannerService.
type mockPlannerService struct {
	plan domain.QueryPlan
}

func (m *mockPlannerService) Plan(_ context.Context, _ string) domain.QueryPlan {
	return m.plan
}

// mockAssistantService is a mock implementation of driving.AssistantService.
type mockAssistantService struct {
	answer  *domain.Answer
	err     error
	history []domain.ChatTurn
}

func (m *mockAssistantService) Ask(_ context.Context, _ string, history []domain.ChatTurn) (*domain.Answer, error) {
	m.history = history
	return m.answer, m.err
}

// mockStoreReader is a mock implementation of StoreReader.
type mockStoreReader struct {
	names  []string
	stores map[string]*domain.IndexStore
	err    error
}

func (m *mockStoreReader) List(_ context.Context) ([]string, error) {
	return m.names, m.err
}

func (m *mockStoreReader) Load(_ context.Context, name string) (*domain.IndexStore, error) {
	if m.err != nil {
		return nil, m.err
	}
	store, ok := m.stores[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return store, nil
}
