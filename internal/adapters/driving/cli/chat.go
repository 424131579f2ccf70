package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/canvai/internal/adapters/driving/tui"
)

// errNotTerminal is returned when chat is started without a terminal.
var errNotTerminal = errors.New("chat needs an interactive terminal; use 'canvai ask' instead")

// isTerminal reports whether stdout is a terminal. Replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Launch the interactive chat for asking follow-up questions.

Each answer shows the table it came from and its sources. Prior turns of
the session are passed to the answer model as history.

Controls:
  Enter      - Send question
  ↑/↓        - Recall previous questions
  PgUp/PgDn  - Scroll transcript
  Ctrl+S     - Toggle sources
  Ctrl+N     - New session
  F1         - Toggle help
  Esc/Ctrl+C - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if !isTerminal() {
		return errNotTerminal
	}

	app, err := tui.NewApp(tui.NewPorts(assistantService))
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := app.Run(); err != nil {
		return fmt.Errorf("chat error: %w", err)
	}
	return nil
}
