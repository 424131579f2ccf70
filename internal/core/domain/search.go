package domain

// DefaultK is the number of results returned when none is requested.
const DefaultK = 5

// SearchOptions configures a retrieval request.
type SearchOptions struct {
	// Database is the index store to search. Empty selects DefaultTable.
	Database string

	// K is the maximum number of results.
	K int

	// MinScore drops results below the threshold when set.
	MinScore *float64

	// RecreateIfMissing builds a missing store once from its source and retries.
	RecreateIfMissing bool
}

// Normalised returns a copy with defaults applied. K has no upper bound.
func (o SearchOptions) Normalised() SearchOptions {
	if o.Database == "" {
		o.Database = DefaultTable.String()
	}
	if o.K <= 0 {
		o.K = DefaultK
	}
	return o
}

// SearchResult represents a single search hit.
type SearchResult struct {
	// Document is the matched document.
	Document Document `json:"document"`

	// Score is the similarity in [0,1].
	Score float64 `json:"score"`
}

// ChatTurn is one message of a prior conversation.
type ChatTurn struct {
	// Role is "user" or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`
}

// Answer is the outcome of a full ask: plan, retrieval and synthesis.
type Answer struct {
	Text    string         `json:"answer"`
	Plan    QueryPlan      `json:"plan"`
	Table   Table          `json:"table"`
	Results []SearchResult `json:"results"`
}
