package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that a decoded store reference no longer matches
	// any record in the directory, or a provider token resolved to nothing.
	ErrNotFound = errors.New("location not found")

	// ErrMissingGeometry signals a provider response without usable
	// latitude/longitude. Resolution without geometry is a failure.
	ErrMissingGeometry = errors.New("provider response missing geometry")

	// ErrDatasetUnavailable signals that the store dataset could not be
	// read or parsed. Recoverable: callers may treat it as zero matches.
	ErrDatasetUnavailable = errors.New("store dataset unavailable")
)

// StoreRecord is one row of the retailer store dataset. Immutable; the
// dataset is read-only and reloaded per query.
type StoreRecord struct {
	Name          string  `json:"name"`
	StreetAddress string  `json:"street_address"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	Zip           string  `json:"zip_code"`
	Lat           float64 `json:"latitude"`
	Lon           float64 `json:"longitude"`

	// Free-form retailer metadata, empty when the dataset omits the columns.
	Phone string `json:"phone_number_1,omitempty"`
	Hours string `json:"open_hours,omitempty"`
	URL   string `json:"url,omitempty"`
}

// FormattedAddress renders the record's address in the same shape the
// location provider uses for its formatted_address field.
func (s StoreRecord) FormattedAddress() string {
	return fmt.Sprintf("%s, %s, %s %s", s.StreetAddress, s.City, s.State, s.Zip)
}

// Candidate is one ranked result of a location search. Ephemeral; the Ref
// carries everything needed to resolve full details later.
type Candidate struct {
	Description string `json:"description"`
	Ref         Ref    `json:"ref"`
}

// ResolvedLocation is the converged output of both resolution paths.
// Lat/Lon are always present; resolution fails rather than producing a
// location without geometry.
type ResolvedLocation struct {
	Name             string       `json:"name"`
	Lat              float64      `json:"lat"`
	Lon              float64      `json:"lon"`
	FormattedAddress string       `json:"formatted_address"`
	Store            *StoreRecord `json:"store,omitempty"`
}

// RadiusSuggestion is the forecasting provider's recommended search radius.
type RadiusSuggestion struct {
	Radius float64 `json:"radius"`
	Unit   string  `json:"radius_unit"` // "mi", "ft", or "km"
}

// Meters converts the suggestion to meters for map rendering. Unknown units
// pass the value through unchanged.
func (r RadiusSuggestion) Meters() float64 {
	switch r.Unit {
	case "mi":
		return r.Radius * 1609
	case "ft":
		return r.Radius * 0.3048
	case "km":
		return r.Radius * 1000
	default:
		return r.Radius
	}
}

// LocationProvider is the external geocoding/places backend. The session
// token groups one search-then-select interaction for provider-side billing;
// providers without a session concept ignore it.
type LocationProvider interface {
	// Autocomplete returns ranked candidates for free-text input.
	Autocomplete(ctx context.Context, text, session string) ([]Candidate, error)

	// Details expands a provider-native token into a full location.
	Details(ctx context.Context, token, session string) (ResolvedLocation, error)
}

// RadiusEstimator recommends a search radius for a coordinate pair.
type RadiusEstimator interface {
	SuggestRadius(ctx context.Context, lat, lon float64, unit, industry string) (RadiusSuggestion, error)
}

// EventFetcher retrieves event records within the query's bounds.
type EventFetcher interface {
	FetchEvents(ctx context.Context, q EventQuery) ([]EventRecord, error)
}
