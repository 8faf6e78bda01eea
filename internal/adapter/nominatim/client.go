// Package nominatim integrates the OpenStreetMap Nominatim geocoder as the
// location provider. A candidate's display address doubles as its token;
// resolving details re-geocodes the address and takes the first hit.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/retailradar/event-insights/internal/domain"
)

// userAgent identifies the application per the Nominatim usage policy, which
// also caps clients at one request per second.
const userAgent = "event-insights/1.0"

// Client implements domain.LocationProvider against a Nominatim instance.
// Nominatim has no session concept; session tokens are accepted and ignored.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient creates a Nominatim client. An empty baseURL targets the public
// openstreetmap.org instance.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		logger:  logger,
	}
}

// Autocomplete geocodes the free text and returns up to five candidates.
func (c *Client) Autocomplete(ctx context.Context, text, _ string) ([]domain.Candidate, error) {
	places, err := c.geocode(ctx, text, 5)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.Candidate, 0, len(places))
	for _, p := range places {
		candidates = append(candidates, domain.Candidate{
			Description: p.DisplayName,
			Ref:         domain.PlaceRef(p.DisplayName),
		})
	}
	return candidates, nil
}

// Details re-geocodes the token (a display address from a prior search) and
// maps the first hit into a ResolvedLocation.
func (c *Client) Details(ctx context.Context, token, _ string) (domain.ResolvedLocation, error) {
	places, err := c.geocode(ctx, token, 1)
	if err != nil {
		return domain.ResolvedLocation{}, err
	}
	if len(places) == 0 {
		return domain.ResolvedLocation{}, fmt.Errorf("geocode %q: %w", token, domain.ErrNotFound)
	}

	p := places[0]
	lat, latErr := strconv.ParseFloat(p.Lat, 64)
	lon, lonErr := strconv.ParseFloat(p.Lon, 64)
	if latErr != nil || lonErr != nil {
		return domain.ResolvedLocation{}, fmt.Errorf("geocode %q: %w", token, domain.ErrMissingGeometry)
	}

	// The first comma-separated part of the address serves as the name.
	name, _, _ := strings.Cut(p.DisplayName, ",")
	return domain.ResolvedLocation{
		Name:             strings.TrimSpace(name),
		Lat:              lat,
		Lon:              lon,
		FormattedAddress: p.DisplayName,
	}, nil
}

func (c *Client) geocode(ctx context.Context, query string, limit int) ([]place, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{
		"q":      {query},
		"format": {"jsonv2"},
		"limit":  {strconv.Itoa(limit)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("nominatim error: status %d: %s", resp.StatusCode, body)
	}

	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return places, nil
}

// Nominatim API response type.

type place struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}
