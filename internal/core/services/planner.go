package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
	"github.com/custodia-labs/canvai/internal/core/ports/driving"
	"github.com/custodia-labs/canvai/internal/logger"
)

// Ensure QueryPlanner implements the interfaces.
var (
	_ driving.PlannerService  = (*QueryPlanner)(nil)
	_ driven.PromptStoreAware = (*QueryPlanner)(nil)
)

// planParseFailure is the error text of a plan whose reply could not be parsed.
const planParseFailure = "Failed to parse model output as JSON"

// DefaultPlannerPrompt describes the exported tables and the plan format.
const DefaultPlannerPrompt = `You are a query planner for a student + course management database.
Your job is to extract structured information AND determine which
table(s) and which columns must be queried to answer the request.

DATABASE SCHEMA DEFINITIONS:

users
columns in this table: id,name,short_name,primary_email,login_id,time_zone

courses
columns in this table: id,name,course_code,calendar_ics

course_content_summary
columns in this table: canvas_id,course_name,type,title,date,link,is_completed,grade,summary,text_id

course_content
columns in this table: id,file_name,full_text

grades
columns in this table: course_id,course_name,assignment_name,points_possible,submission_score,submission_grade

TABLE SELECTION GUIDELINES:

users
Student-related details
Examples: who the student is, their email, timezone, etc.

courses
Core course details
Examples: course name, course code, calendar info

course_content_summary
Everything that looks like course materials or tasks in a list format
Examples: assignments, announcements, completion status, linked resources, due dates

course_content
Full text of course files
Examples: what a lecture or syllabus says in detail

grades
Grade and scoring data
Examples: assignment scores, points possible, final grade in a course

OUTPUT RULE:
Provide ONLY a valid JSON object in this format:

{
    "student_name": string or null,
    "course_name": string or null,
    "content_type": string or null,
    "item_name": string or null,
    "filters": {},
    "table_to_query": "<users | courses | course_content_summary | course_content | grades>",
    "required_columns": ["<column>", "..."]
}

NEVER explain your reasoning.
NEVER include SQL.
Output JSON only.
`

// QueryPlanner asks the LLM to turn a question into a QueryPlan.
type QueryPlanner struct {
	llm         driven.LLMService
	prompts     driven.PromptStore
	temperature float64
}

// NewQueryPlanner creates a planner. llm may be nil; plans then carry an error.
func NewQueryPlanner(llm driven.LLMService) *QueryPlanner {
	return &QueryPlanner{
		llm:         llm,
		temperature: domain.DefaultPlannerTemperature,
	}
}

// SetPromptStore sets the prompt store for the planner system prompt.
func (p *QueryPlanner) SetPromptStore(store driven.PromptStore) {
	p.prompts = store
}

// SetTemperature overrides the sampling temperature.
func (p *QueryPlanner) SetTemperature(t float64) {
	p.temperature = t
}

// Plan returns the plan for query. Upstream and parse failures are
// reported in the plan's Error field; the call is never retried.
func (p *QueryPlanner) Plan(ctx context.Context, query string) domain.QueryPlan {
	logger.Section("Query Planning")

	if p.llm == nil {
		return domain.QueryPlan{Error: domain.ErrLLMUnavailable.Error()}
	}

	system := loadPrompt(p.prompts, driven.PromptPlannerSystem, DefaultPlannerPrompt)
	reply, err := p.llm.Complete(ctx, system, query, p.temperature)
	if err != nil {
		logger.Warn("Planner call failed: %v", err)
		return domain.QueryPlan{Error: err.Error()}
	}
	logger.Debug("Planner reply: %q", reply)

	res := ParseModelObject(reply)
	if !res.OK() {
		logger.Debug("Planner reply unparseable: %v", res.Err)
		return domain.QueryPlan{
			Error:          planParseFailure,
			Exception:      res.Err.Error(),
			RawReply:       reply,
			CleanedAttempt: res.Cleaned,
		}
	}
	logger.Debug("Planner reply parsed by %s stage", res.Stage)

	plan := planFromObject(res.Value)
	logger.Info("Plan: table=%s columns=%v", plan.TableToQuery, plan.RequiredColumns)
	return plan
}

// planFromObject maps a parsed object onto a plan, tolerating loose types.
func planFromObject(obj map[string]any) domain.QueryPlan {
	plan := domain.QueryPlan{
		StudentName:  stringField(obj, "student_name"),
		CourseName:   stringField(obj, "course_name"),
		ContentType:  stringField(obj, "content_type"),
		ItemName:     stringField(obj, "item_name"),
		TableToQuery: domain.Table(strings.ToLower(stringField(obj, "table_to_query"))),
	}
	if filters, ok := obj["filters"].(map[string]any); ok && len(filters) > 0 {
		plan.Filters = filters
	}
	switch cols := obj["required_columns"].(type) {
	case []any:
		for _, c := range cols {
			if s, ok := c.(string); ok && s != "" {
				plan.RequiredColumns = append(plan.RequiredColumns, s)
			}
		}
	case string:
		for _, c := range strings.Split(cols, ",") {
			if c = strings.TrimSpace(c); c != "" {
				plan.RequiredColumns = append(plan.RequiredColumns, c)
			}
		}
	}
	return plan
}

func stringField(obj map[string]any, key string) string {
	switch v := obj[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// loadPrompt reads a prompt from store, falling back when unavailable.
func loadPrompt(store driven.PromptStore, name, fallback string) string {
	if store == nil {
		return fallback
	}
	prompt, err := store.Load(name)
	if err != nil || strings.TrimSpace(prompt) == "" {
		return fallback
	}
	return prompt
}
