package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Location provider variants. Exactly one is active per process.
const (
	ProviderOSM    = "osm"
	ProviderGoogle = "google"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Store directory.
	StoreDatasetPath string
	RetailerKeyword  string

	// Location provider selection.
	LocationProvider string
	LocationTimeout  time.Duration
	NominatimBaseURL string
	GoogleAPIKey     string

	// Events-forecasting provider.
	PredictHQToken   string
	PredictHQBaseURL string
	PredictHQTimeout time.Duration
	RadiusCacheSize  int
	RadiusCacheTTL   time.Duration
	RadiusIndustry   string

	// Completion provider (optional; insights disabled when the key is unset).
	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string
}

// InsightsEnabled reports whether demand-insight generation is configured.
func (c *Config) InsightsEnabled() bool {
	return c.GroqAPIKey != ""
}

// Load reads configuration from environment variables, applying defaults
// where unset. A missing forecasting token is a startup error: the pipeline
// must not be entered without credentials.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	phqTimeout, err := parseDuration("PREDICTHQ_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	locationTimeout, err := parseDuration("LOCATION_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cacheTTL, err := parseDuration("RADIUS_CACHE_TTL", "0s")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("RADIUS_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		StoreDatasetPath: envOrDefault("STORE_DATASET_PATH", "walmart_stores.csv"),
		RetailerKeyword:  envOrDefault("RETAILER_KEYWORD", "walmart"),

		LocationProvider: envOrDefault("LOCATION_PROVIDER", ProviderOSM),
		LocationTimeout:  locationTimeout,
		NominatimBaseURL: os.Getenv("NOMINATIM_BASE_URL"),
		GoogleAPIKey:     os.Getenv("GOOGLE_MAPS_API_KEY"),

		PredictHQToken:   os.Getenv("PREDICTHQ_TOKEN"),
		PredictHQBaseURL: os.Getenv("PREDICTHQ_BASE_URL"),
		PredictHQTimeout: phqTimeout,
		RadiusCacheSize:  cacheSize,
		RadiusCacheTTL:   cacheTTL,
		RadiusIndustry:   envOrDefault("RADIUS_INDUSTRY", "accommodation"),

		GroqAPIKey:  os.Getenv("GROQ_API_KEY"),
		GroqModel:   envOrDefault("GROQ_MODEL", "meta-llama/llama-4-scout-17b-16e-instruct"),
		GroqBaseURL: envOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
	}

	if cfg.PredictHQToken == "" {
		return nil, errors.New("PREDICTHQ_TOKEN is required")
	}
	if cfg.StoreDatasetPath == "" {
		return nil, errors.New("STORE_DATASET_PATH is required")
	}
	switch cfg.LocationProvider {
	case ProviderOSM:
	case ProviderGoogle:
		if cfg.GoogleAPIKey == "" {
			return nil, errors.New("LOCATION_PROVIDER is google but GOOGLE_MAPS_API_KEY is not set")
		}
	default:
		return nil, fmt.Errorf("invalid LOCATION_PROVIDER %q (want %q or %q)", cfg.LocationProvider, ProviderOSM, ProviderGoogle)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
