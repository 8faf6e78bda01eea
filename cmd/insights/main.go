package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/retailradar/event-insights/internal/adapter/googleplaces"
	"github.com/retailradar/event-insights/internal/adapter/groqllm"
	httpadapter "github.com/retailradar/event-insights/internal/adapter/http"
	"github.com/retailradar/event-insights/internal/adapter/nominatim"
	"github.com/retailradar/event-insights/internal/adapter/predicthq"
	"github.com/retailradar/event-insights/internal/config"
	"github.com/retailradar/event-insights/internal/directory"
	"github.com/retailradar/event-insights/internal/domain"
	"github.com/retailradar/event-insights/internal/insight"
	"github.com/retailradar/event-insights/internal/observability"
	"github.com/retailradar/event-insights/internal/resolver"
)

func main() {
	// Local development convenience; absent .env files are fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	var provider domain.LocationProvider
	switch cfg.LocationProvider {
	case config.ProviderGoogle:
		provider = googleplaces.NewClient(cfg.GoogleAPIKey, "", cfg.LocationTimeout, logger)
		logger.Info("location provider: google places")
	default:
		provider = nominatim.NewClient(cfg.NominatimBaseURL, cfg.LocationTimeout, logger)
		logger.Info("location provider: nominatim")
	}

	phq := predicthq.NewClient(cfg.PredictHQToken, cfg.PredictHQBaseURL, cfg.PredictHQTimeout, metrics, logger)
	radius := predicthq.NewCachedRadiusEstimator(phq, cfg.RadiusCacheSize, cfg.RadiusCacheTTL, nil, metrics)

	stores := directory.New(cfg.StoreDatasetPath)
	locations := resolver.New(stores, provider, cfg.RetailerKeyword, logger, metrics)
	insights := insight.New(locations, radius, phq, cfg.RadiusIndustry, logger, metrics)

	// Demand analysis is feature-flagged via GROQ_API_KEY.
	var analyzer httpadapter.Analyzer
	if cfg.InsightsEnabled() {
		completer, err := groqllm.NewClient(groqllm.Config{
			APIKey:  cfg.GroqAPIKey,
			Model:   cfg.GroqModel,
			BaseURL: cfg.GroqBaseURL,
		})
		if err != nil {
			logger.Error("failed to init completion client", "error", err)
			os.Exit(1)
		}
		analyzer = insight.NewGenerator(completer, logger, metrics)
		logger.Info("demand analysis enabled", "model", cfg.GroqModel)
	} else {
		logger.Info("demand analysis disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, locations, insights, analyzer, insights, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
