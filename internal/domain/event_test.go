package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestDefaultWindow_NinetyDaysFromToday(t *testing.T) {
	SetClock(clockwork.NewFakeClockAt(time.Date(2026, 9, 1, 13, 45, 12, 0, time.UTC)))
	t.Cleanup(func() { SetClock(nil) })

	w := DefaultWindow()

	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), w.From)
	assert.Equal(t, time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC), w.To)
}

func TestRadiusSuggestion_Meters(t *testing.T) {
	tests := []struct {
		suggestion RadiusSuggestion
		want       float64
	}{
		{RadiusSuggestion{Radius: 2, Unit: "mi"}, 3218},
		{RadiusSuggestion{Radius: 500, Unit: "ft"}, 152.4},
		{RadiusSuggestion{Radius: 3, Unit: "km"}, 3000},
		{RadiusSuggestion{Radius: 7, Unit: "furlongs"}, 7},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, tt.suggestion.Meters(), 0.001, "unit %q", tt.suggestion.Unit)
	}
}

func TestStoreRecord_FormattedAddress(t *testing.T) {
	rec := StoreRecord{
		StreetAddress: "406 S Walton Blvd",
		City:          "Bentonville",
		State:         "AR",
		Zip:           "72712",
	}
	assert.Equal(t, "406 S Walton Blvd, Bentonville, AR 72712", rec.FormattedAddress())
}

func TestCategoryTaxonomyGroupsAreDisjoint(t *testing.T) {
	seen := map[string]string{}
	groups := map[string][]string{
		"attended":     AttendedCategories,
		"non-attended": NonAttendedCategories,
		"unscheduled":  UnscheduledCategories,
	}
	for group, cats := range groups {
		for _, c := range cats {
			if prev, ok := seen[c]; ok {
				t.Fatalf("category %q appears in both %s and %s", c, prev, group)
			}
			seen[c] = group
		}
	}
}
