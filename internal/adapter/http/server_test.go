package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailradar/event-insights/internal/domain"
	"github.com/retailradar/event-insights/internal/insight"
)

type fakeLocations struct {
	candidates  []domain.Candidate
	location    domain.ResolvedLocation
	searchErr   error
	resolveErr  error
	lastSearch  string
	lastSession string
	lastRef     domain.Ref
}

func (f *fakeLocations) Search(_ context.Context, text, session string) ([]domain.Candidate, error) {
	f.lastSearch = text
	f.lastSession = session
	return f.candidates, f.searchErr
}

func (f *fakeLocations) Resolve(_ context.Context, ref domain.Ref, session string) (domain.ResolvedLocation, error) {
	f.lastRef = ref
	f.lastSession = session
	return f.location, f.resolveErr
}

type fakeInsights struct {
	report     insight.Report
	err        error
	lastParams insight.Params
}

func (f *fakeInsights) LocationInsights(_ context.Context, p insight.Params) (insight.Report, error) {
	f.lastParams = p
	return f.report, f.err
}

type fakeAnalyzer struct {
	analysis insight.Analysis
	err      error
	lastRow  domain.EventRow
}

func (f *fakeAnalyzer) Analyze(_ context.Context, row domain.EventRow) (insight.Analysis, error) {
	f.lastRow = row
	return f.analysis, f.err
}

type fakeReady struct{ err error }

func (f *fakeReady) CheckReadiness(context.Context) error { return f.err }

func newTestServer(locations *fakeLocations, insights *fakeInsights, analyzer Analyzer, ready *fakeReady) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(":0", locations, insights, analyzer, ready, logger)
}

func doRequest(t *testing.T, s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(&fakeLocations{}, &fakeInsights{}, nil, &fakeReady{})

	rec := doRequest(t, s, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestReadyEndpoint(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		s := newTestServer(&fakeLocations{}, &fakeInsights{}, nil, &fakeReady{})
		rec := doRequest(t, s, http.MethodGet, "/readyz", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		s := newTestServer(&fakeLocations{}, &fakeInsights{}, nil, &fakeReady{err: errors.New("dataset missing")})
		rec := doRequest(t, s, http.MethodGet, "/readyz", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "dataset missing")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&fakeLocations{}, &fakeInsights{}, nil, &fakeReady{})

	rec := doRequest(t, s, http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearchRequiresQuery(t *testing.T) {
	s := newTestServer(&fakeLocations{}, &fakeInsights{}, nil, &fakeReady{})

	rec := doRequest(t, s, http.MethodGet, "/api/locations/search", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchMintsSession(t *testing.T) {
	locations := &fakeLocations{
		candidates: []domain.Candidate{{Description: "Springfield, IL", Ref: domain.PlaceRef("Springfield, IL")}},
	}
	s := newTestServer(locations, &fakeInsights{}, nil, &fakeReady{})

	rec := doRequest(t, s, http.MethodGet, "/api/locations/search?q=springfield", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.Session)
	assert.Equal(t, resp.Session, locations.lastSession)
	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, "Springfield, IL", resp.Candidates[0].Description)
}

func TestSearchReusesSession(t *testing.T) {
	locations := &fakeLocations{}
	s := newTestServer(locations, &fakeInsights{}, nil, &fakeReady{})

	rec := doRequest(t, s, http.MethodGet, "/api/locations/search?q=springfield&session=tok-123", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp searchResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "tok-123", resp.Session)
	assert.Equal(t, "tok-123", locations.lastSession)
	assert.NotNil(t, resp.Candidates)
	assert.Empty(t, resp.Candidates)
}

func TestSearchProviderFailure(t *testing.T) {
	locations := &fakeLocations{searchErr: errors.New("autocomplete: status 500")}
	s := newTestServer(locations, &fakeInsights{}, nil, &fakeReady{})

	rec := doRequest(t, s, http.MethodGet, "/api/locations/search?q=springfield", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestResolveRequiresRef(t *testing.T) {
	s := newTestServer(&fakeLocations{}, &fakeInsights{}, nil, &fakeReady{})

	rec := doRequest(t, s, http.MethodGet, "/api/locations/resolve", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveStoreRef(t *testing.T) {
	locations := &fakeLocations{
		location: domain.ResolvedLocation{Name: "Walmart Supercenter #1234", Lat: 36.1, Lon: -94.1},
	}
	s := newTestServer(locations, &fakeInsights{}, nil, &fakeReady{})

	rec := doRequest(t, s, http.MethodGet, "/api/locations/resolve?ref=store_Walmart_Supercenter_%231234&session=tok-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, domain.RefStore, locations.lastRef.Kind())
	assert.Equal(t, "Walmart Supercenter #1234", locations.lastRef.StoreName())

	var resp resolveResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "tok-1", resp.Session)
	assert.Equal(t, "Walmart Supercenter #1234", resp.Location.Name)
}

func TestResolveNotFound(t *testing.T) {
	locations := &fakeLocations{resolveErr: fmt.Errorf("lookup store: %w", domain.ErrNotFound)}
	s := newTestServer(locations, &fakeInsights{}, nil, &fakeReady{})

	rec := doRequest(t, s, http.MethodGet, "/api/locations/resolve?ref=store_Nowhere", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInsightsSuccess(t *testing.T) {
	insights := &fakeInsights{
		report: insight.Report{
			Location: domain.ResolvedLocation{Name: "Springfield"},
			Radius:   domain.RadiusSuggestion{Radius: 2.5, Unit: "mi"},
			Events:   []domain.EventRow{{Title: "State Fair"}},
		},
	}
	s := newTestServer(&fakeLocations{}, insights, nil, &fakeReady{})

	rec := doRequest(t, s, http.MethodGet, "/api/insights?ref=Springfield%2C+IL&session=tok-9&industry=parking", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, domain.RefPlace, insights.lastParams.Ref.Kind())
	assert.Equal(t, "Springfield, IL", insights.lastParams.Ref.Token())
	assert.Equal(t, "tok-9", insights.lastParams.Session)
	assert.Equal(t, "parking", insights.lastParams.Industry)

	var resp insightsResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "tok-9", resp.Session)
	assert.Equal(t, "Springfield", resp.Location.Name)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "State Fair", resp.Events[0].Title)
}

func TestInsightsWindowValidation(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"from without to", "/api/insights?ref=x&from=2026-09-01"},
		{"bad from", "/api/insights?ref=x&from=Sept-1&to=2026-12-01"},
		{"bad to", "/api/insights?ref=x&from=2026-09-01&to=soon"},
		{"inverted window", "/api/insights?ref=x&from=2026-12-01&to=2026-09-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeLocations{}, &fakeInsights{}, nil, &fakeReady{})
			rec := doRequest(t, s, http.MethodGet, tt.target, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestInsightsExplicitWindow(t *testing.T) {
	insights := &fakeInsights{}
	s := newTestServer(&fakeLocations{}, insights, nil, &fakeReady{})

	rec := doRequest(t, s, http.MethodGet, "/api/insights?ref=x&from=2026-09-01&to=2026-12-01", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "2026-09-01", insights.lastParams.Window.From.Format("2006-01-02"))
	assert.Equal(t, "2026-12-01", insights.lastParams.Window.To.Format("2006-01-02"))
}

func TestInsightsStepErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantStep   string
	}{
		{
			name:       "unknown store",
			err:        &insight.StepError{Step: "resolve", Err: domain.ErrNotFound},
			wantStatus: http.StatusNotFound,
			wantStep:   "resolve",
		},
		{
			name:       "radius provider down",
			err:        &insight.StepError{Step: "radius", Err: errors.New("status 503")},
			wantStatus: http.StatusBadGateway,
			wantStep:   "radius",
		},
		{
			name:       "events provider down",
			err:        &insight.StepError{Step: "events", Err: errors.New("status 500")},
			wantStatus: http.StatusBadGateway,
			wantStep:   "events",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeLocations{}, &fakeInsights{err: tt.err}, nil, &fakeReady{})

			rec := doRequest(t, s, http.MethodGet, "/api/insights?ref=x", nil)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			decodeBody(t, rec, &body)
			assert.Equal(t, tt.wantStep, body["step"])
		})
	}
}

func TestAnalyzeDisabledWhenUnconfigured(t *testing.T) {
	s := newTestServer(&fakeLocations{}, &fakeInsights{}, nil, &fakeReady{})

	rec := doRequest(t, s, http.MethodPost, "/api/insights/analyze", strings.NewReader(`{"title":"State Fair"}`))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyzeSuccess(t *testing.T) {
	analyzer := &fakeAnalyzer{
		analysis: insight.Analysis{Commentary: "Expect high beverage demand.", CSV: "Product Name,Category\nGatorade,Beverages"},
	}
	s := newTestServer(&fakeLocations{}, &fakeInsights{}, analyzer, &fakeReady{})

	rec := doRequest(t, s, http.MethodPost, "/api/insights/analyze", strings.NewReader(`{"title":"State Fair","attendance":325000}`))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "State Fair", analyzer.lastRow.Title)

	var resp insight.Analysis
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Commentary, "beverage")
	assert.Contains(t, resp.CSV, "Gatorade")
}

func TestAnalyzeBadBody(t *testing.T) {
	s := newTestServer(&fakeLocations{}, &fakeInsights{}, &fakeAnalyzer{}, &fakeReady{})

	rec := doRequest(t, s, http.MethodPost, "/api/insights/analyze", strings.NewReader("{"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("completion: status 429")}
	s := newTestServer(&fakeLocations{}, &fakeInsights{}, analyzer, &fakeReady{})

	rec := doRequest(t, s, http.MethodPost, "/api/insights/analyze", strings.NewReader(`{"title":"State Fair"}`))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
