package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/exa-people-search/internal/config"
	"github.com/weiawesome/exa-people-search/internal/handler"
	"github.com/weiawesome/exa-people-search/internal/repository"
	"github.com/weiawesome/exa-people-search/internal/service"
	"github.com/weiawesome/exa-people-search/internal/sink"
	"github.com/weiawesome/exa-people-search/pkg/jwt"
	pkglog "github.com/weiawesome/exa-people-search/pkg/log"
	"github.com/weiawesome/exa-people-search/pkg/middleware"
	"github.com/weiawesome/exa-people-search/pkg/pubsub"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := serve(); err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("exa-people-search stopped")
	}
}

func serve() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty || cfg.Log.Level == "debug",
		ServiceName: "exa-people-search",
	})
	logger := pkglog.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize sinks
	backends, err := sink.Open(ctx, cfg.Sinks())
	if err != nil {
		return fmt.Errorf("failed to open sinks: %w", err)
	}
	defer backends.Close()
	logger.Info().
		Str("dataset", cfg.Dataset.Driver).
		Str("key_value", cfg.KeyValue.Driver).
		Msg("sinks opened")

	// Initialize run outcome publisher
	publisher, err := pubsub.NewPublisher(cfg.Events)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer publisher.Close()

	// Initialize provider
	provider, err := repository.NewExaProvider(repository.ExaConfig{
		BaseURL: cfg.Exa.BaseURL,
		Timeout: cfg.Exa.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create exa provider: %w", err)
	}

	// Initialize auth; an empty secret leaves the trigger open
	var validator middleware.TokenValidator
	if cfg.Server.JWTSecret != "" {
		manager, err := jwt.NewManager(cfg.Server.JWTSecret, cfg.Server.JWTIssuer, time.Hour)
		if err != nil {
			return fmt.Errorf("failed to create jwt manager: %w", err)
		}
		validator = manager
	} else {
		logger.Warn().Msg("server.jwt_secret is empty, trigger endpoints are unauthenticated")
	}

	// Initialize service and handler
	searchService := service.NewPeopleSearchService(provider, cfg.Exa.APIKey)
	httpHandler := handler.NewHandler(
		searchService,
		backends,
		publisher,
		cfg.Events.Channel,
		middleware.NewAuthMiddleware(validator),
	)

	// Setup Gin router
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Register routes
	httpHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", addr).Msg("exa-people-search starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("server exited")
	return nil
}
