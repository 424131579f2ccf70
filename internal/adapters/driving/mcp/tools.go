package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/canvai/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query             string   `json:"query" jsonschema:"the question or keywords to search for"`
	Database          string   `json:"database,omitempty" jsonschema:"store to search: users, courses, grades, course_content_summary or course_content (default course_content_summary)"`
	K                 int      `json:"k,omitempty" jsonschema:"maximum number of results to return (default 5)"`
	MinScore          *float64 `json:"min_score,omitempty" jsonschema:"drop results scoring below this similarity in [0,1]"`
	RecreateIfMissing bool     `json:"recreate_if_missing,omitempty" jsonschema:"build the store from its CSV export if it does not exist"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID string            `json:"document_id"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Score      float64           `json:"score"`
}

// PlanInput is the input schema for the plan tool.
type PlanInput struct {
	Query string `json:"query" jsonschema:"the question to interpret"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query   string            `json:"query" jsonschema:"the question to answer"`
	History []domain.ChatTurn `json:"history,omitempty" jsonschema:"prior conversation turns, oldest first"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string               `json:"answer"`
	Table   string               `json:"table"`
	Plan    domain.QueryPlan     `json:"plan"`
	Results []SearchResultOutput `json:"results"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Semantic search over one academic data store, corrected by exact course and item identifiers",
	}, s.handleSearch)

	if s.ports.Planner != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "plan",
			Description: "Interpret a question into a structured plan naming the table to query",
		}, s.handlePlan)
	}

	if s.ports.Assistant != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask",
			Description: "Answer a question about users, courses, grades and course content",
		}, s.handleAsk)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{
		Database:          input.Database,
		K:                 input.K,
		MinScore:          input.MinScore,
		RecreateIfMissing: input.RecreateIfMissing,
	}
	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: toResultOutputs(results),
		Count:   len(results),
	}
	return nil, output, nil
}

// handlePlan handles the plan tool invocation. Planning failures are
// reported inside the plan, never as tool errors.
func (s *Server) handlePlan(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PlanInput,
) (*mcp.CallToolResult, domain.QueryPlan, error) {
	return nil, s.ports.Planner.Plan(ctx, input.Query), nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if input.Query == "" {
		return nil, AskOutput{}, errors.New("query is required")
	}
	answer, err := s.ports.Assistant.Ask(ctx, input.Query, input.History)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:  answer.Text,
		Table:   answer.Table.String(),
		Plan:    answer.Plan,
		Results: toResultOutputs(answer.Results),
	}, nil
}

func toResultOutputs(results []domain.SearchResult) []SearchResultOutput {
	out := make([]SearchResultOutput, len(results))
	for i := range results {
		out[i] = SearchResultOutput{
			DocumentID: results[i].Document.ID,
			Content:    results[i].Document.Content,
			Metadata:   results[i].Document.Metadata,
			Score:      results[i].Score,
		}
	}
	return out
}
