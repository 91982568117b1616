package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/scholar-feed/backend/internal/config"
	delivery "github.com/scholar-feed/backend/internal/delivery/http"
	"github.com/scholar-feed/backend/internal/domain"
	"github.com/scholar-feed/backend/internal/middleware"
	"github.com/scholar-feed/backend/internal/migrations"
	"github.com/scholar-feed/backend/internal/observability"
	"github.com/scholar-feed/backend/internal/provider"
	"github.com/scholar-feed/backend/internal/realtime"
	boltrepo "github.com/scholar-feed/backend/internal/repository/bolt"
	"github.com/scholar-feed/backend/internal/repository/postgres"
	"github.com/scholar-feed/backend/internal/usecase"
	"github.com/scholar-feed/backend/pkg/arxiv"
	"github.com/scholar-feed/backend/pkg/gemini"
	"github.com/scholar-feed/backend/pkg/httpclient"
	"github.com/scholar-feed/backend/pkg/semanticscholar"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logger.Info().Str("port", cfg.Server.Port).Msg("Scholar Feed backend starting...")

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	// Initialize the user store
	userRepo, closeStore, err := openStore(cfg.Store, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open user store")
	}
	defer closeStore.Close()

	// Initialize external API clients
	httpClient := httpclient.NewRestyClient(cfg.HTTP.Timeout)
	searcher, err := newSearcher(cfg.Search, httpClient, metrics)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure search provider")
	}
	geminiClient := gemini.NewClient(httpClient, cfg.Gemini.BaseURL, cfg.Gemini.Model, cfg.Gemini.APIKey)
	if cfg.Gemini.APIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY is not set; query optimization will fail")
	}

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(userRepo, &cfg.JWT)
	interestUsecase := usecase.NewInterestUsecase(userRepo)
	optimizer := usecase.NewQueryOptimizer(geminiClient, metrics, logger)
	recommendationUsecase := usecase.NewRecommendationUsecase(interestUsecase, optimizer, searcher, logger)

	// Initialize HTTP handler and middleware
	handler := delivery.NewHandler(authUsecase, interestUsecase, recommendationUsecase, logger)
	router := delivery.NewRouter(delivery.RouterDeps{
		Handler:        handler,
		Auth:           middleware.NewAuthMiddleware(authUsecase),
		Realtime:       realtime.NewHub(logger, cfg.CORS.AllowedOrigins),
		Gatherer:       reg,
		Metrics:        metrics,
		Logger:         logger,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("provider", string(searcher.Name())).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
		return
	}
	logger.Info().Msg("server stopped gracefully")
}

func openStore(cfg config.StoreConfig, logger zerolog.Logger) (domain.UserRepository, io.Closer, error) {
	if cfg.Backend == "bolt" {
		repo, err := boltrepo.Open(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("path", cfg.BoltPath).Msg("using bbolt user store")
		return repo, repo, nil
	}

	pool, err := connectPostgres(cfg.DatabaseURL, logger)
	if err != nil {
		return nil, nil, err
	}

	migrator, err := migrations.NewMigrator(pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	upErr := migrator.Up()
	if err := errors.Join(upErr, migrator.Close()); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return postgres.NewUserRepository(pool), closerFunc(pool.Close), nil
}

// connectPostgres retries with a linear backoff while the database starts.
func connectPostgres(url string, logger zerolog.Logger) (*pgxpool.Pool, error) {
	const attempts = 5
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err := pgxpool.New(ctx, url)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				cancel()
				logger.Info().Msg("connected to PostgreSQL")
				return pool, nil
			}
			pool.Close()
		}
		cancel()
		logger.Warn().Err(err).Int("attempt", attempt).Msg("database connection failed")
		if attempt == attempts {
			return nil, fmt.Errorf("could not connect to database after %d attempts: %w", attempts, err)
		}
		time.Sleep(time.Duration(attempt) * 2 * time.Second)
	}
}

func newSearcher(cfg config.SearchConfig, client httpclient.Client, metrics *observability.Metrics) (provider.Searcher, error) {
	name, err := provider.ParseName(cfg.Provider)
	if err != nil {
		return nil, err
	}
	switch name {
	case provider.Arxiv:
		return provider.NewArxiv(arxiv.NewClient(client, cfg.ArxivURL), metrics), nil
	default:
		return provider.NewSemanticScholar(semanticscholar.NewClient(client, cfg.SemanticScholarURL, cfg.SemanticScholarAPIKey), metrics), nil
	}
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
