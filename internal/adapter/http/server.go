// Package http exposes the service over HTTP: operational endpoints
// (health, readiness, metrics) plus the location search and event-insights
// API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/retailradar/event-insights/internal/domain"
	"github.com/retailradar/event-insights/internal/insight"
)

// LocationService answers location searches and resolves refs.
type LocationService interface {
	Search(ctx context.Context, text, session string) ([]domain.Candidate, error)
	Resolve(ctx context.Context, ref domain.Ref, session string) (domain.ResolvedLocation, error)
}

// InsightService runs the full location-to-events pipeline.
type InsightService interface {
	LocationInsights(ctx context.Context, p insight.Params) (insight.Report, error)
}

// Analyzer generates demand commentary for a single event row.
type Analyzer interface {
	Analyze(ctx context.Context, row domain.EventRow) (insight.Analysis, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	locations  LocationService
	insights   InsightService
	analyzer   Analyzer
	logger     *slog.Logger
}

// NewServer wires the API routes. analyzer may be nil, in which case the
// analyze endpoint is not registered.
func NewServer(addr string, locations LocationService, insights InsightService, analyzer Analyzer, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		locations: locations,
		insights:  insights,
		analyzer:  analyzer,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/locations/search", s.handleSearch)
	mux.HandleFunc("GET /api/locations/resolve", s.handleResolve)
	mux.HandleFunc("GET /api/insights", s.handleInsights)
	if analyzer != nil {
		mux.HandleFunc("POST /api/insights/analyze", s.handleAnalyze)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

type searchResponse struct {
	Session    string             `json:"session"`
	Candidates []domain.Candidate `json:"candidates"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "", errors.New("missing query parameter q"))
		return
	}
	session := sessionOrNew(r)

	candidates, err := s.locations.Search(r.Context(), q, session)
	if err != nil {
		writeError(w, http.StatusBadGateway, "", err)
		return
	}
	if candidates == nil {
		candidates = []domain.Candidate{}
	}

	writeJSON(w, http.StatusOK, searchResponse{Session: session, Candidates: candidates})
}

type resolveResponse struct {
	Session  string                  `json:"session"`
	Location domain.ResolvedLocation `json:"location"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	ref, ok := parseRefParam(w, r)
	if !ok {
		return
	}
	session := sessionOrNew(r)

	location, err := s.locations.Resolve(r.Context(), ref, session)
	if err != nil {
		writeError(w, statusFor(err), "", err)
		return
	}

	writeJSON(w, http.StatusOK, resolveResponse{Session: session, Location: location})
}

type insightsResponse struct {
	Session string `json:"session"`
	insight.Report
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	ref, ok := parseRefParam(w, r)
	if !ok {
		return
	}
	session := sessionOrNew(r)

	window, err := parseWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err)
		return
	}

	report, err := s.insights.LocationInsights(r.Context(), insight.Params{
		Ref:      ref,
		Session:  session,
		Window:   window,
		Industry: r.URL.Query().Get("industry"),
		Timezone: r.URL.Query().Get("tz"),
	})
	if err != nil {
		var stepErr *insight.StepError
		if errors.As(err, &stepErr) {
			writeError(w, statusFor(err), stepErr.Step, err)
			return
		}
		writeError(w, http.StatusBadGateway, "", err)
		return
	}

	writeJSON(w, http.StatusOK, insightsResponse{Session: session, Report: report})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var row domain.EventRow
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		writeError(w, http.StatusBadRequest, "", errors.New("invalid request body"))
		return
	}
	if row.Title == "" {
		writeError(w, http.StatusBadRequest, "", errors.New("missing event title"))
		return
	}

	analysis, err := s.analyzer.Analyze(r.Context(), row)
	if err != nil {
		writeError(w, http.StatusBadGateway, "", err)
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

func parseRefParam(w http.ResponseWriter, r *http.Request) (domain.Ref, bool) {
	raw := r.URL.Query().Get("ref")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "", errors.New("missing query parameter ref"))
		return domain.Ref{}, false
	}
	return domain.ParseRef(raw), true
}

func parseWindow(r *http.Request) (domain.DateWindow, error) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" && to == "" {
		return domain.DateWindow{}, nil
	}
	if from == "" || to == "" {
		return domain.DateWindow{}, errors.New("from and to must be supplied together")
	}

	fromDay, err := time.Parse("2006-01-02", from)
	if err != nil {
		return domain.DateWindow{}, errors.New("invalid from date, want YYYY-MM-DD")
	}
	toDay, err := time.Parse("2006-01-02", to)
	if err != nil {
		return domain.DateWindow{}, errors.New("invalid to date, want YYYY-MM-DD")
	}
	if toDay.Before(fromDay) {
		return domain.DateWindow{}, errors.New("to date precedes from date")
	}

	return domain.DateWindow{From: fromDay, To: toDay}, nil
}

func sessionOrNew(r *http.Request) string {
	if session := r.URL.Query().Get("session"); session != "" {
		return session
	}
	return uuid.NewString()
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDatasetUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, status int, step string, err error) {
	body := map[string]string{"error": err.Error()}
	if step != "" {
		body["step"] = step
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
