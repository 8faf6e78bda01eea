// Package insight orchestrates the location-to-events pipeline: resolve a
// location ref, ask the forecasting provider for a search radius, fetch the
// events inside it, and build display rows. Each stage failure is scoped to
// the step that failed so callers can report it without discarding results
// from earlier steps.
package insight

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/retailradar/event-insights/internal/domain"
	"github.com/retailradar/event-insights/internal/observability"
)

// LocationResolver resolves candidate refs into full location details.
type LocationResolver interface {
	Resolve(ctx context.Context, ref domain.Ref, session string) (domain.ResolvedLocation, error)
	CheckReadiness(ctx context.Context) error
}

// StepError scopes a pipeline failure to the stage that produced it.
type StepError struct {
	Step string // "resolve", "radius", or "events"
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Params bounds one insights request. Zero-value Window means the default
// [today, today+90d]; empty Industry and Timezone fall back to the service
// defaults.
type Params struct {
	Ref      domain.Ref
	Session  string
	Window   domain.DateWindow
	Industry string
	Timezone string
}

// Report is the assembled output of one pipeline run.
type Report struct {
	Location     domain.ResolvedLocation `json:"location"`
	Radius       domain.RadiusSuggestion `json:"radius"`
	RadiusMeters float64                 `json:"radius_meters"`
	Window       domain.DateWindow       `json:"window"`
	Events       []domain.EventRow       `json:"events"`
}

// Service runs the pipeline.
type Service struct {
	resolver LocationResolver
	radius   domain.RadiusEstimator
	events   domain.EventFetcher
	industry string
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates the pipeline service. industry is the default radius industry
// hint used when a request does not supply one.
func New(resolver LocationResolver, radius domain.RadiusEstimator, events domain.EventFetcher, industry string, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		resolver: resolver,
		radius:   radius,
		events:   events,
		industry: industry,
		logger:   logger,
		metrics:  metrics,
	}
}

// LocationInsights runs one synchronous chain: resolve, suggest radius,
// fetch events, build rows. No stage is retried; the first failure returns a
// StepError naming the stage.
func (s *Service) LocationInsights(ctx context.Context, p Params) (Report, error) {
	location, err := s.resolver.Resolve(ctx, p.Ref, p.Session)
	if err != nil {
		return Report{}, &StepError{Step: "resolve", Err: err}
	}

	industry := p.Industry
	if industry == "" {
		industry = s.industry
	}

	suggestion, err := s.radius.SuggestRadius(ctx, location.Lat, location.Lon, "mi", industry)
	if err != nil {
		return Report{}, &StepError{Step: "radius", Err: err}
	}

	window := p.Window
	if window.From.IsZero() || window.To.IsZero() {
		window = domain.DefaultWindow()
	}
	tz := p.Timezone
	if tz == "" {
		tz = "UTC"
	}

	events, err := s.events.FetchEvents(ctx, domain.EventQuery{
		Lat:        location.Lat,
		Lon:        location.Lon,
		Radius:     suggestion.Radius,
		Unit:       suggestion.Unit,
		From:       window.From,
		To:         window.To,
		Categories: domain.AttendedCategories,
		Timezone:   tz,
	})
	if err != nil {
		return Report{}, &StepError{Step: "events", Err: err}
	}

	s.logger.Info("location insights assembled",
		"location", location.Name,
		"radius", suggestion.Radius,
		"radius_unit", suggestion.Unit,
		"events", len(events),
	)

	return Report{
		Location:     location,
		Radius:       suggestion,
		RadiusMeters: suggestion.Meters(),
		Window:       window,
		Events:       domain.BuildRows(events),
	}, nil
}

// CheckReadiness reports whether the pipeline can serve traffic.
func (s *Service) CheckReadiness(ctx context.Context) error {
	return s.resolver.CheckReadiness(ctx)
}
