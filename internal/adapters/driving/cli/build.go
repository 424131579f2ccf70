package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/canvai/internal/core/domain"
	"github.com/custodia-labs/canvai/internal/core/ports/driving"
)

var buildAll bool

var buildCmd = &cobra.Command{
	Use:   "build [table]",
	Short: "Build index stores from exported tables",
	Long: `Embeds the rows of an exported table into an index store.

Without arguments (or with --all) every exported table is built and tables
that have not been exported are skipped. Building course_content_summary
joins each summary with its full text from course_content.

Known tables: users, courses, grades, course_content_summary, course_content`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildAll, "all", false, "build every exported table")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	if err := requireService(buildService != nil, "build"); err != nil {
		return err
	}

	if buildAll || len(args) == 0 {
		reports, err := buildService.BuildAll(cmd.Context())
		printReports(cmd, reports)
		if err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
		return nil
	}

	name := args[0]
	if !domain.Table(name).IsValid() {
		return fmt.Errorf("unknown table %q: %w", name, domain.ErrInvalidInput)
	}

	start := time.Now()
	store, err := buildService.BuildFromSource(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("build %s failed: %w", name, err)
	}
	cmd.Printf("Built %s: %d documents in %s\n", name, store.Len(), time.Since(start).Round(time.Millisecond))
	return nil
}

func printReports(cmd *cobra.Command, reports []driving.BuildReport) {
	for _, r := range reports {
		cmd.Println(formatReport(r))
	}
}

func formatReport(r driving.BuildReport) string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("  %-24s failed: %v", r.Name, r.Err)
	case r.Skipped:
		return fmt.Sprintf("  %-24s skipped (not exported)", r.Name)
	default:
		return fmt.Sprintf("  %-24s %d documents", r.Name, r.Documents)
	}
}
