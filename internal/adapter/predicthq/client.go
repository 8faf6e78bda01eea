// Package predicthq integrates the events-forecasting provider: the
// suggested-radius endpoint and the event-search endpoint.
package predicthq

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/retailradar/event-insights/internal/domain"
	"github.com/retailradar/event-insights/internal/observability"
)

const (
	providerLabel = "predicthq"

	// DefaultIndustry is used by SuggestRadius when the caller passes an
	// empty industry hint.
	DefaultIndustry = "parking"
)

// Client calls the forecasting provider over HTTP with bearer-token auth.
// It implements domain.RadiusEstimator and domain.EventFetcher.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a forecasting provider client.
func NewClient(token, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.predicthq.com/v1"
	}
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// SuggestRadius asks the provider for a recommended search radius around the
// given origin. Latitude and longitude must be finite.
func (c *Client) SuggestRadius(ctx context.Context, lat, lon float64, unit, industry string) (domain.RadiusSuggestion, error) {
	if !finite(lat) || !finite(lon) {
		return domain.RadiusSuggestion{}, fmt.Errorf("suggest radius: non-finite origin (%v, %v)", lat, lon)
	}
	if industry == "" {
		industry = DefaultIndustry
	}

	params := url.Values{
		"location.origin": {fmt.Sprintf("%f,%f", lat, lon)},
		"radius_unit":     {unit},
		"industry":        {industry},
	}

	var resp radiusResponse
	if err := c.doRequest(ctx, "suggested-radius", c.baseURL+"/suggested-radius/?"+params.Encode(), &resp); err != nil {
		return domain.RadiusSuggestion{}, err
	}
	return domain.RadiusSuggestion{Radius: resp.Radius, Unit: resp.RadiusUnit}, nil
}

// FetchEvents runs one event-search call with the query's bounds. A provider
// result of zero matches returns an empty slice and a nil error.
func (c *Client) FetchEvents(ctx context.Context, q domain.EventQuery) ([]domain.EventRecord, error) {
	params := url.Values{
		"within":     {fmt.Sprintf("%g%s@%.6f,%.6f", q.Radius, q.Unit, q.Lat, q.Lon)},
		"active.gte": {q.From.Format("2006-01-02")},
		"active.lte": {q.To.Format("2006-01-02")},
		"active.tz":  {q.Timezone},
		"limit":      {"200"},
		"sort":       {"rank"},
	}
	if len(q.Categories) > 0 {
		params.Set("category", strings.Join(q.Categories, ","))
	}

	var resp eventsResponse
	if err := c.doRequest(ctx, "events", c.baseURL+"/events/?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	c.metrics.EventsFetched.Add(float64(len(resp.Results)))
	return resp.Results, nil
}

func (c *Client) doRequest(ctx context.Context, endpoint, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ProviderDuration.WithLabelValues(providerLabel, endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ProviderRequests.WithLabelValues(providerLabel, endpoint, "error").Inc()
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.ProviderRequests.WithLabelValues(providerLabel, endpoint, "error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("forecasting API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.ProviderRequests.WithLabelValues(providerLabel, endpoint, "error").Inc()
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	c.metrics.ProviderRequests.WithLabelValues(providerLabel, endpoint, "success").Inc()
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Provider API response types.

type radiusResponse struct {
	Radius     float64 `json:"radius"`
	RadiusUnit string  `json:"radius_unit"`
}

type eventsResponse struct {
	Count   int                  `json:"count"`
	Results []domain.EventRecord `json:"results"`
}
