// Package googleplaces integrates the Places autocomplete/details API as the
// location provider. Both endpoints carry a session correlation token that
// groups one search-then-select interaction for provider-side billing; the
// token must be minted once per interaction and reused, not regenerated per
// keystroke.
package googleplaces

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/retailradar/event-insights/internal/domain"
)

// Client implements domain.LocationProvider against the Places API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a Places client. An empty baseURL targets the public
// Google endpoint.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com/maps/api/place"
	}
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Autocomplete returns the provider's ranked predictions for the input text.
func (c *Client) Autocomplete(ctx context.Context, text, session string) ([]domain.Candidate, error) {
	params := url.Values{
		"input":        {text},
		"key":          {c.apiKey},
		"sessiontoken": {session},
	}

	var resp autocompleteResponse
	if err := c.doRequest(ctx, c.baseURL+"/autocomplete/json?"+params.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" && resp.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places autocomplete: status %s", resp.Status)
	}

	candidates := make([]domain.Candidate, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		candidates = append(candidates, domain.Candidate{
			Description: p.Description,
			Ref:         domain.PlaceRef(p.PlaceID),
		})
	}
	return candidates, nil
}

// Details expands a place ID from a prior autocomplete into geometry and a
// formatted address. The same session token must accompany the call.
func (c *Client) Details(ctx context.Context, token, session string) (domain.ResolvedLocation, error) {
	params := url.Values{
		"place_id":     {token},
		"key":          {c.apiKey},
		"sessiontoken": {session},
		"fields":       {"name,geometry,formatted_address"},
	}

	var resp detailsResponse
	if err := c.doRequest(ctx, c.baseURL+"/details/json?"+params.Encode(), &resp); err != nil {
		return domain.ResolvedLocation{}, err
	}
	switch resp.Status {
	case "OK":
	case "NOT_FOUND", "ZERO_RESULTS", "INVALID_REQUEST":
		return domain.ResolvedLocation{}, fmt.Errorf("place %q: %w", token, domain.ErrNotFound)
	default:
		return domain.ResolvedLocation{}, fmt.Errorf("places details: status %s", resp.Status)
	}

	if resp.Result.Geometry == nil {
		return domain.ResolvedLocation{}, fmt.Errorf("place %q: %w", token, domain.ErrMissingGeometry)
	}

	return domain.ResolvedLocation{
		Name:             resp.Result.Name,
		Lat:              resp.Result.Geometry.Location.Lat,
		Lon:              resp.Result.Geometry.Location.Lng,
		FormattedAddress: resp.Result.FormattedAddress,
	}, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("places API error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Places API response types.

type autocompleteResponse struct {
	Status      string       `json:"status"`
	Predictions []prediction `json:"predictions"`
}

type prediction struct {
	Description string `json:"description"`
	PlaceID     string `json:"place_id"`
}

type detailsResponse struct {
	Status string `json:"status"`
	Result result `json:"result"`
}

type result struct {
	Name             string    `json:"name"`
	FormattedAddress string    `json:"formatted_address"`
	Geometry         *geometry `json:"geometry"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
