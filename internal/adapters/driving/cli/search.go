package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/canvai/internal/core/domain"
)

// snippetWidth bounds the content preview printed per result.
const snippetWidth = 120

var (
	searchDatabase string
	searchK        int
	searchMinScore float64
	searchRecreate bool
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search an index store",
	Long: `Performs hybrid search against one index store.

Documents are ranked by vector similarity. When the query names an exact
identifier (a course code such as CMPSC461 or a student name), results that
contain it are kept first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchDatabase, "database", "d", domain.DefaultTable.String(), "index store to search")
	searchCmd.Flags().IntVarP(&searchK, "k", "k", domain.DefaultK, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", 0, "drop results scoring below this value")
	searchCmd.Flags().BoolVar(&searchRecreate, "recreate", false, "build the store from its export when missing")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := requireService(searchService != nil, "search"); err != nil {
		return err
	}

	opts := domain.SearchOptions{
		Database:          searchDatabase,
		K:                 searchK,
		RecreateIfMissing: searchRecreate,
	}
	if cmd.Flags().Changed("min-score") {
		minScore := searchMinScore
		opts.MinScore = &minScore
	}

	results, err := searchService.Search(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, results)
	}
	outputSearchTable(cmd, results)
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, resultLabel(results[i].Document), results[i].Score)
		if snippet := snippet(results[i].Document.Content); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}
}

// resultLabel names a document by table and row when known.
func resultLabel(doc domain.Document) string {
	table := doc.Metadata[domain.MetaTable]
	row := doc.Metadata[domain.MetaRow]
	switch {
	case table != "" && row != "":
		return fmt.Sprintf("%s #%s", table, row)
	case table != "":
		return fmt.Sprintf("%s %s", table, doc.ID)
	default:
		return doc.ID
	}
}

// snippet flattens content to one line of at most snippetWidth runes.
func snippet(content string) string {
	flat := strings.Join(strings.Fields(content), " ")
	runes := []rune(flat)
	if len(runes) <= snippetWidth {
		return flat
	}
	return string(runes[:snippetWidth-1]) + "…"
}
