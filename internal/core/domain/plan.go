package domain

// Table names a queryable store. Store names equal table names.
type Table string

// Known tables.
const (
	TableUsers                Table = "users"
	TableCourses              Table = "courses"
	TableCourseContentSummary Table = "course_content_summary"
	TableGrades               Table = "grades"
	TableCourseContent        Table = "course_content"
)

// DefaultTable is searched when a plan names no usable table.
const DefaultTable = TableCourseContentSummary

// IsValid returns true if the table is one of the known tables.
func (t Table) IsValid() bool {
	switch t {
	case TableUsers, TableCourses, TableCourseContentSummary, TableGrades, TableCourseContent:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t Table) String() string {
	return string(t)
}

// AllTables returns the known tables in build order.
func AllTables() []Table {
	return []Table{
		TableUsers,
		TableCourses,
		TableGrades,
		TableCourseContentSummary,
		TableCourseContent,
	}
}

// QueryPlan is the structured interpretation of a question.
// Exactly one of the two shapes is populated: a plan (TableToQuery set)
// or an error-bearing value (Error set). Callers branch on HasError.
type QueryPlan struct {
	StudentName     string         `json:"student_name,omitempty"`
	CourseName      string         `json:"course_name,omitempty"`
	ContentType     string         `json:"content_type,omitempty"`
	ItemName        string         `json:"item_name,omitempty"`
	Filters         map[string]any `json:"filters,omitempty"`
	TableToQuery    Table          `json:"table_to_query,omitempty"`
	RequiredColumns []string       `json:"required_columns,omitempty"`

	Error          string `json:"error,omitempty"`
	Exception      string `json:"exception,omitempty"`
	RawReply       string `json:"raw_reply,omitempty"`
	CleanedAttempt string `json:"cleaned_attempt,omitempty"`
}

// HasError reports whether the plan carries an error instead of a table.
func (p QueryPlan) HasError() bool {
	return p.Error != ""
}

// Target returns the table to search, falling back to DefaultTable when
// the plan is error-bearing or names an unknown table.
func (p QueryPlan) Target() Table {
	if p.HasError() || !p.TableToQuery.IsValid() {
		return DefaultTable
	}
	return p.TableToQuery
}
