package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/canvai/internal/core/domain"
)

// stubPrompts serves prompts from a map.
type stubPrompts map[string]string

func (s stubPrompts) Load(name string) (string, error) {
	p, ok := s[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return p, nil
}

func (s stubPrompts) Reload() {}

func TestQueryPlanner_Plan(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    domain.QueryPlan
		wantErr string
	}{
		{
			name: "fenced json",
			reply: "```json\n{\"student_name\": null, \"course_name\": \"CMPSC461\", \"content_type\": \"assignment\", " +
				"\"item_name\": \"Homework 4\", \"filters\": {}, \"table_to_query\": \"grades\", " +
				"\"required_columns\": [\"assignment_name\", \"submission_score\"]}\n```",
			want: domain.QueryPlan{
				CourseName:      "CMPSC461",
				ContentType:     "assignment",
				ItemName:        "Homework 4",
				TableToQuery:    domain.TableGrades,
				RequiredColumns: []string{"assignment_name", "submission_score"},
			},
		},
		{
			name:  "literal syntax",
			reply: `{'student_name': None, 'course_name': 'MATH230', 'filters': {'term': 'Fall'}, 'table_to_query': 'Courses', 'required_columns': 'name, course_code'}`,
			want: domain.QueryPlan{
				CourseName:      "MATH230",
				Filters:         map[string]any{"term": "Fall"},
				TableToQuery:    domain.TableCourses,
				RequiredColumns: []string{"name", "course_code"},
			},
		},
		{
			name:    "unparseable",
			reply:   "Sorry, I can only answer questions about courses.",
			wantErr: planParseFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockLLM{reply: tt.reply}
			p := NewQueryPlanner(llm)

			plan := p.Plan(context.Background(), "what did I get on homework 4")

			assert.Equal(t, "what did I get on homework 4", llm.user)
			assert.Equal(t, DefaultPlannerPrompt, llm.system)
			assert.Zero(t, llm.temp)
			assert.Equal(t, 1, llm.calls)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, plan.Error)
				assert.NotEmpty(t, plan.Exception)
				assert.Equal(t, tt.reply, plan.RawReply)
				assert.Equal(t, tt.reply, plan.CleanedAttempt)
				assert.Equal(t, domain.DefaultTable, plan.Target())
				return
			}
			assert.Equal(t, tt.want, plan)
		})
	}
}

func TestQueryPlanner_UpstreamError(t *testing.T) {
	llm := &mockLLM{err: errors.New("openrouter error (status 401): invalid key")}
	p := NewQueryPlanner(llm)

	plan := p.Plan(context.Background(), "q")

	assert.True(t, plan.HasError())
	assert.Contains(t, plan.Error, "status 401")
	assert.Equal(t, 1, llm.calls, "planner must not retry")
	assert.Equal(t, domain.DefaultTable, plan.Target())
}

func TestQueryPlanner_NoLLM(t *testing.T) {
	plan := NewQueryPlanner(nil).Plan(context.Background(), "q")

	assert.Equal(t, domain.ErrLLMUnavailable.Error(), plan.Error)
}

func TestQueryPlanner_PromptStoreAndTemperature(t *testing.T) {
	llm := &mockLLM{reply: `{"table_to_query": "users"}`}
	p := NewQueryPlanner(llm)
	p.SetPromptStore(stubPrompts{"planner_system": "custom planner"})
	p.SetTemperature(0.2)

	plan := p.Plan(context.Background(), "who am I")

	assert.Equal(t, "custom planner", llm.system)
	assert.InDelta(t, 0.2, llm.temp, 1e-9)
	assert.Equal(t, domain.TableUsers, plan.Target())
}

func TestQueryPlanner_EmptyPromptFallsBack(t *testing.T) {
	llm := &mockLLM{reply: `{}`}
	p := NewQueryPlanner(llm)
	p.SetPromptStore(stubPrompts{"planner_system": "   "})

	plan := p.Plan(context.Background(), "q")

	assert.Equal(t, DefaultPlannerPrompt, llm.system)
	assert.False(t, plan.HasError())
	assert.Equal(t, domain.DefaultTable, plan.Target())
}
