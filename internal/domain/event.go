package domain

import "time"

// Provider category taxonomy. The three groupings are defined by the
// forecasting provider and carried verbatim; do not re-sort or merge them.
var (
	// AttendedCategories are events people travel to and gather at.
	AttendedCategories = []string{
		"community",
		"concerts",
		"conferences",
		"expos",
		"festivals",
		"performing-arts",
		"sports",
	}

	// NonAttendedCategories are calendar observances without a crowd.
	NonAttendedCategories = []string{
		"academic",
		"daylight-savings",
		"observances",
		"politics",
		"public-holidays",
		"school-holidays",
	}

	// UnscheduledCategories are disruptive events with no fixed schedule.
	UnscheduledCategories = []string{
		"airport-delays",
		"disasters",
		"health-warnings",
		"severe-weather",
		"terror",
	}
)

// Entity is a sub-entity attached to an event record. Venue extraction
// looks for Type == "venue".
type Entity struct {
	Type             string `json:"type"`
	Name             string `json:"name"`
	FormattedAddress string `json:"formatted_address"`
}

// Geo holds the provider's geo sub-structure for an event.
type Geo struct {
	Placekey string `json:"placekey,omitempty"`
}

// SpendIndustries breaks predicted spend down by industry.
type SpendIndustries struct {
	Hospitality *float64 `json:"hospitality"`
}

// EventRecord is one event as returned by the forecasting provider.
// Immutable once fetched. Optional fields are pointers so absence survives
// decoding; timestamps stay in the provider's wire format until row building.
type EventRecord struct {
	Title          string           `json:"title"`
	Category       string           `json:"category"`
	PHQAttendance  *int             `json:"phq_attendance"`
	Start          string           `json:"start"`
	End            string           `json:"end"`
	PredictedEnd   *string          `json:"predicted_end"`
	Timezone       string           `json:"timezone"`
	Entities       []Entity         `json:"entities"`
	Geo            *Geo             `json:"geo"`
	PredictedSpend *float64         `json:"predicted_event_spend"`
	SpendByIndustry *SpendIndustries `json:"predicted_event_spend_industries"`
}

// EventQuery bounds one event-search call. From and To are calendar dates;
// time-of-day is ignored by the provider.
type EventQuery struct {
	Lat        float64
	Lon        float64
	Radius     float64
	Unit       string
	From       time.Time
	To         time.Time
	Categories []string
	Timezone   string
}

// DateWindow is a calendar date range, inclusive on both ends.
type DateWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// DefaultWindow returns [today, today+90 days] using the package clock.
func DefaultWindow() DateWindow {
	today := clock.Now().UTC().Truncate(24 * time.Hour)
	return DateWindow{From: today, To: today.AddDate(0, 0, 90)}
}
