// Package resolver routes free-text location queries between the store
// directory and the external location provider, and resolves candidates
// into full location details. One search box transparently serves both
// backends: a retailer trigger keyword in the input routes to the
// directory, anything else to the provider, and the candidate's Ref carries
// the routing decision to resolve time.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/retailradar/event-insights/internal/directory"
	"github.com/retailradar/event-insights/internal/domain"
	"github.com/retailradar/event-insights/internal/observability"
)

// minQueryLength gates provider calls: shorter inputs return no candidates
// and make no network call, so per-keystroke searches do not spam the
// provider.
const minQueryLength = 4

// Service is the location resolver.
type Service struct {
	directory *directory.Directory
	provider  domain.LocationProvider
	keyword   string
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a resolver. keyword is the retailer trigger word matched
// case-insensitively in search input, e.g. "walmart".
func New(dir *directory.Directory, provider domain.LocationProvider, keyword string, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		directory: dir,
		provider:  provider,
		keyword:   strings.ToLower(keyword),
		logger:    logger,
		metrics:   metrics,
	}
}

// Search returns ranked candidates for the input text. Inputs shorter than
// the minimum length return an empty list without any backend call. A
// dataset load failure degrades to an empty list with a warning; provider
// failures propagate.
func (s *Service) Search(ctx context.Context, text, session string) ([]domain.Candidate, error) {
	text = strings.TrimSpace(text)
	if len(text) < minQueryLength {
		return nil, nil
	}

	if s.keyword != "" && strings.Contains(strings.ToLower(text), s.keyword) {
		term := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(text), s.keyword, ""))
		if term == "" {
			// Keyword alone would list the whole directory; require a term.
			return nil, nil
		}
		return s.searchDirectory(term)
	}

	s.metrics.LookupRequests.WithLabelValues("provider").Inc()
	return s.provider.Autocomplete(ctx, text, session)
}

func (s *Service) searchDirectory(term string) ([]domain.Candidate, error) {
	s.metrics.LookupRequests.WithLabelValues("store").Inc()

	stores, err := s.directory.Search(term)
	if err != nil {
		s.logger.Warn("store dataset search failed", "term", term, "error", err)
		return nil, nil
	}

	candidates := make([]domain.Candidate, 0, len(stores))
	for _, store := range stores {
		candidates = append(candidates, domain.Candidate{
			Description: fmt.Sprintf("%s - %s", store.Name, store.FormattedAddress()),
			Ref:         domain.StoreRef(store.Name),
		})
	}
	return candidates, nil
}

// Resolve expands a candidate ref into full location details. Store refs
// never reach the provider and place refs never reach the directory; both
// paths converge on the same ResolvedLocation shape.
func (s *Service) Resolve(ctx context.Context, ref domain.Ref, session string) (domain.ResolvedLocation, error) {
	switch ref.Kind() {
	case domain.RefStore:
		loc, err := s.resolveStore(ref.StoreName())
		s.countResolve("store", err)
		return loc, err
	default:
		loc, err := s.provider.Details(ctx, ref.Token(), session)
		s.countResolve("provider", err)
		if err != nil {
			return domain.ResolvedLocation{}, fmt.Errorf("resolve place: %w", err)
		}
		return loc, nil
	}
}

func (s *Service) resolveStore(name string) (domain.ResolvedLocation, error) {
	store, err := s.directory.LookupByName(name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ResolvedLocation{}, err
		}
		return domain.ResolvedLocation{}, fmt.Errorf("resolve store: %w", err)
	}

	return domain.ResolvedLocation{
		Name:             store.Name,
		Lat:              store.Lat,
		Lon:              store.Lon,
		FormattedAddress: store.FormattedAddress(),
		Store:            &store,
	}, nil
}

func (s *Service) countResolve(backend string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.ResolveRequests.WithLabelValues(backend, outcome).Inc()
}

// CheckReadiness reports whether the resolver's store dataset is readable.
func (s *Service) CheckReadiness(_ context.Context) error {
	return s.directory.Check()
}
