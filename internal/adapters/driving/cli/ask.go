package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/canvai/internal/core/domain"
)

var (
	planJSON bool
	askJSON  bool
)

var planCmd = &cobra.Command{
	Use:   "plan [question]",
	Short: "Show how a question would be planned",
	Long: `Asks the LLM planner which table answers a question and which
entities it names, without searching.

When the planner fails, the plan carries the error and the raw reply, and
questions fall back to course_content_summary.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed exports",
	Long: `Plans the question, searches the chosen store and writes an answer
from the retrieved rows.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	planCmd.Flags().BoolVar(&planJSON, "json", false, "output the plan as JSON")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer, plan and sources as JSON")
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(askCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	if err := requireService(plannerService != nil, "planner"); err != nil {
		return err
	}

	plan := plannerService.Plan(cmd.Context(), args[0])
	if planJSON {
		return outputJSON(cmd, plan)
	}
	printPlan(cmd, plan)
	return nil
}

func printPlan(cmd *cobra.Command, plan domain.QueryPlan) {
	if plan.HasError() {
		cmd.Printf("Planner error: %s\n", plan.Error)
		if plan.Exception != "" {
			cmd.Printf("  Exception: %s\n", plan.Exception)
		}
		if plan.RawReply != "" {
			cmd.Printf("  Raw reply: %s\n", snippet(plan.RawReply))
		}
		cmd.Printf("Falling back to: %s\n", plan.Target())
		return
	}

	cmd.Printf("Table: %s\n", plan.Target())
	printField(cmd, "Student", plan.StudentName)
	printField(cmd, "Course", plan.CourseName)
	printField(cmd, "Content type", plan.ContentType)
	printField(cmd, "Item", plan.ItemName)
	if len(plan.RequiredColumns) > 0 {
		cmd.Printf("  Columns: %s\n", strings.Join(plan.RequiredColumns, ", "))
	}
	if len(plan.Filters) > 0 {
		keys := make([]string, 0, len(plan.Filters))
		for k := range plan.Filters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		cmd.Println("  Filters:")
		for _, k := range keys {
			cmd.Printf("    %s = %v\n", k, plan.Filters[k])
		}
	}
}

func printField(cmd *cobra.Command, label, value string) {
	if value != "" {
		cmd.Printf("  %s: %s\n", label, value)
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requireService(assistantService != nil, "assistant"); err != nil {
		return err
	}

	answer, err := assistantService.Ask(cmd.Context(), args[0], nil)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputJSON(cmd, answer)
	}

	cmd.Println(answer.Text)
	cmd.Println()
	cmd.Printf("Sources (%s):\n", answer.Table)
	if len(answer.Results) == 0 {
		cmd.Println("  none")
	}
	for i := range answer.Results {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, resultLabel(answer.Results[i].Document), answer.Results[i].Score)
	}
	return nil
}
