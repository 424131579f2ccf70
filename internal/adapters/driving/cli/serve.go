package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/canvai/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/canvai/internal/core/ports/driving"
	"github.com/custodia-labs/canvai/internal/logger"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP query API.

Routes:
  GET  /healthz     - Liveness
  POST /api/search  - Search one store
  POST /api/plan    - Plan a question
  POST /api/ask     - Plan, search and answer
  GET  /metrics     - Prometheus metrics

With --watch, stores are rebuilt when their exported table changes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild stores when exports change",
	Long: `Watch the data directory and rebuild a store each time its exported
table is written. A change to course_content also rebuilds
course_content_summary. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from server.addr)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "rebuild stores when exports change")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
}

// signalContext is cancelled on interrupt or terminate.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := requireService(searchService != nil, "search"); err != nil {
		return err
	}
	if serveWatch {
		if err := requireService(refreshService != nil, "refresh"); err != nil {
			return err
		}
	}

	addr := serveAddr
	if addr == "" {
		addr = serverSettings.Addr
	}

	server, err := httpapi.NewServer(&httpapi.Ports{
		Search:    searchService,
		Planner:   plannerService,
		Assistant: assistantService,
		Metrics:   metricsHandler,
	}, httpapi.Config{
		Addr:           addr,
		AllowedOrigins: serverSettings.AllowedOrigins,
	})
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(ctx)
	})
	if serveWatch {
		g.Go(func() error {
			return refreshService.Run(ctx, logReport)
		})
	}
	return g.Wait()
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := requireService(refreshService != nil, "refresh"); err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	cmd.Println("Watching exported tables for changes (Ctrl+C to stop)")
	if err := refreshService.Run(ctx, func(r driving.BuildReport) {
		cmd.Println(formatReport(r))
	}); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}

func logReport(r driving.BuildReport) {
	logger.Debug("refresh: %s", formatReport(r))
}
