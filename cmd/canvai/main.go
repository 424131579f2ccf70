// Command canvai answers questions about LMS exports.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/custodia-labs/canvai/internal/adapters/driven/ai"
	"github.com/custodia-labs/canvai/internal/adapters/driven/auth"
	"github.com/custodia-labs/canvai/internal/adapters/driven/cache"
	"github.com/custodia-labs/canvai/internal/adapters/driven/config/file"
	"github.com/custodia-labs/canvai/internal/adapters/driven/metrics"
	"github.com/custodia-labs/canvai/internal/adapters/driven/source/csv"
	"github.com/custodia-labs/canvai/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/canvai/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/canvai/internal/adapters/driven/watcher"
	"github.com/custodia-labs/canvai/internal/adapters/driving/cli"
	"github.com/custodia-labs/canvai/internal/core/ports/driven"
	"github.com/custodia-labs/canvai/internal/core/services"
	"github.com/custodia-labs/canvai/internal/logger"
	"github.com/custodia-labs/canvai/internal/postprocessors/chunker"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// bootstrap wires adapters into core services for one command run.
func bootstrap(configDir string) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("config store: %w", err)
	}
	root := filepath.Dir(configStore.Path())

	// Paths are needed before the key chain can look in the data dir.
	settings, err := services.NewSettingsService(configStore, nil).Get()
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	keys := auth.NewLLMKeyChain(configStore, services.LLMKeySetting, settings.Paths.DataDir)
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator(keys))

	logger.Section("Bootstrap")
	logger.Debug("config: %s", configStore.Path())
	logger.Debug("data: %s", settings.Paths.DataDir)

	aiServices := ai.Init(settings, keys)

	prompts, err := file.NewPromptStore(filepath.Join(root, "prompts"), map[string]string{
		driven.PromptPlannerSystem: services.DefaultPlannerPrompt,
		driven.PromptAnswerSystem:  services.DefaultAnswerPrompt,
	})
	if err != nil {
		aiServices.Close()
		return nil, fmt.Errorf("prompt store: %w", err)
	}

	repo, err := sqlite.NewIndexRepository(filepath.Join(settings.Paths.IndexDir, settings.Paths.OutDir))
	if err != nil {
		aiServices.Close()
		return nil, fmt.Errorf("index repository: %w", err)
	}

	caches, err := cache.NewSet(context.Background(), settings.Cache)
	if err != nil {
		aiServices.Close()
		return nil, fmt.Errorf("caches: %w", err)
	}

	recorder := metrics.NewPrometheus()
	source := csv.New(settings.Paths.DataDir)

	builder := services.NewIndexBuilder(aiServices.EmbeddingService, repo, source, chunker.New())
	builder.SetMetrics(recorder)

	catalog := services.NewCatalog(repo, flat.Factory)
	catalog.SetMetrics(recorder)

	retriever := services.NewRetriever(catalog, aiServices.EmbeddingService, caches.Embeddings, caches.Results)
	retriever.SetBuilder(builder)
	retriever.SetMetrics(recorder)
	retriever.SetMaxFetch(settings.Search.MaxFetch)

	planner := services.NewQueryPlanner(aiServices.LLMService)
	planner.SetPromptStore(prompts)
	planner.SetTemperature(settings.LLM.PlannerTemperature)

	synthesizer := services.NewAnswerSynthesizer(aiServices.LLMService)
	synthesizer.SetPromptStore(prompts)
	synthesizer.SetTemperature(settings.LLM.AnswerTemperature)
	synthesizer.SetHistoryTurns(settings.Search.HistoryTurns)

	assistant := services.NewAssistant(planner, retriever, synthesizer)
	assistant.SetK(settings.Search.K)
	assistant.SetRecreateIfMissing(true)

	closers := []func() error{caches.Close}

	svc := &cli.Services{
		Build:     builder,
		Search:    retriever,
		Planner:   planner,
		Assistant: assistant,
		Settings:  settingsService,
		Stores:    repo,
		Metrics:   recorder.Handler(),
		Server:    settings.Server,
	}

	// The data directory may not exist yet; commands other than watch and
	// serve --watch still run.
	if w, werr := watcher.New(settings.Paths.DataDir, csv.Extension, 0); werr != nil {
		logger.Warn("file watcher unavailable: %v", werr)
	} else {
		svc.Refresh = services.NewRefresher(w, builder, catalog)
		closers = append(closers, w.Close)
	}

	svc.Close = func() {
		aiServices.Close()
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		if err := errors.Join(errs...); err != nil {
			logger.Warn("shutdown: %v", err)
		}
	}
	return svc, nil
}
