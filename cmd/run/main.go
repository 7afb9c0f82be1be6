package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/weiawesome/exa-people-search/internal/config"
	"github.com/weiawesome/exa-people-search/internal/domain"
	"github.com/weiawesome/exa-people-search/internal/repository"
	"github.com/weiawesome/exa-people-search/internal/service"
	"github.com/weiawesome/exa-people-search/internal/sink"
	pkglog "github.com/weiawesome/exa-people-search/pkg/log"
	"github.com/weiawesome/exa-people-search/pkg/pubsub"
)

func main() {
	os.Exit(run())
}

// run executes one people search and returns the process exit code.
func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Error().Err(err).Msg("failed to load config")
		return 1
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty || cfg.Log.Level == "debug",
		ServiceName: "exa-people-search",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	ctx = pkglog.WithRun(ctx, runID, cfg.Run.StoreID)
	logger := pkglog.Ctx(ctx)

	// Initialize sinks
	backends, err := sink.Open(ctx, cfg.Sinks())
	if err != nil {
		logger.Error().Err(err).Msg("failed to open sinks")
		return 1
	}
	defer func() {
		if err := backends.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close sinks")
		}
	}()

	// Initialize run outcome publisher
	publisher, err := pubsub.NewPublisher(cfg.Events)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create event publisher")
		return 1
	}
	defer publisher.Close()

	// Initialize provider
	provider, err := repository.NewExaProvider(repository.ExaConfig{
		BaseURL: cfg.Exa.BaseURL,
		Timeout: cfg.Exa.Timeout,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to create exa provider")
		return 1
	}

	searchService := service.NewPeopleSearchService(provider, cfg.Exa.APIKey)
	dataset := backends.Dataset.Dataset(cfg.Run.StoreID)
	kv := backends.KeyValue.Store(cfg.Run.StoreID)

	in, err := service.LoadInput(ctx, kv, cfg.Run.InputPath)
	var metadata *domain.Metadata
	if err == nil {
		metadata, err = searchService.Run(ctx, in, dataset, kv)
	}

	_ = service.PublishOutcome(ctx, publisher, cfg.Events.Channel, runID, metadata, err)

	if err != nil {
		logger.Error().Err(err).Str("kind", domain.KindOf(err).String()).Msg("people search failed")
		return 1
	}
	return 0
}
