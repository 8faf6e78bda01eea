package domain

import (
	"strconv"
	"strings"
	"time"
)

// rowTimeLayout renders local-time instants as 24-hour fixed-width strings,
// e.g. "04-Jul-2026 19:30".
const rowTimeLayout = "02-Jan-2006 15:04"

// EventRow is the flattened, display-ready projection of an EventRecord.
// Every row has the same shape: missing optional fields render as empty
// strings and absent attendance as 0.
type EventRow struct {
	Title             string `json:"title"`
	Attendance        int    `json:"attendance"`
	Category          string `json:"category"`
	StartLocal        string `json:"start_local"`
	EndLocal          string `json:"end_local"`
	PredictedEndLocal string `json:"predicted_end_local"`
	VenueName         string `json:"venue_name"`
	VenueAddress      string `json:"venue_address"`
	Placekey          string `json:"placekey"`
	PredictedSpend    string `json:"predicted_spend"`
	HospitalitySpend  string `json:"predicted_spend_hospitality"`
}

// BuildRows projects event records into display rows. Pure and total: no
// I/O, no error paths, input order preserved (the provider's own ranking is
// not re-sorted).
func BuildRows(events []EventRecord) []EventRow {
	rows := make([]EventRow, 0, len(events))
	for _, ev := range events {
		rows = append(rows, buildRow(ev))
	}
	return rows
}

func buildRow(ev EventRecord) EventRow {
	row := EventRow{
		Title:      ev.Title,
		Category:   ev.Category,
		StartLocal: formatLocal(ev.Start, ev.Timezone),
		EndLocal:   formatLocal(ev.End, ev.Timezone),
	}

	if ev.PHQAttendance != nil {
		row.Attendance = *ev.PHQAttendance
	}
	if ev.PredictedEnd != nil {
		row.PredictedEndLocal = formatLocal(*ev.PredictedEnd, ev.Timezone)
	}

	// First entity tagged "venue" supplies the venue columns.
	for _, ent := range ev.Entities {
		if ent.Type == "venue" {
			row.VenueName = ent.Name
			row.VenueAddress = ent.FormattedAddress
			break
		}
	}

	if ev.Geo != nil {
		row.Placekey = ev.Geo.Placekey
	}

	// Total spend renders with zero decimal places, the hospitality
	// breakdown with two. The asymmetry is intentional; see package doc.
	if ev.PredictedSpend != nil {
		row.PredictedSpend = formatUSD(*ev.PredictedSpend, 0)
	}
	if ev.SpendByIndustry != nil && ev.SpendByIndustry.Hospitality != nil {
		row.HospitalitySpend = formatUSD(*ev.SpendByIndustry.Hospitality, 2)
	}

	return row
}

// formatLocal parses a provider timestamp, converts it to the event's own
// timezone, and renders it with rowTimeLayout. Unparsable input or an
// unknown zone degrades to "" / UTC rather than failing the row.
func formatLocal(stamp, tz string) string {
	t, err := parseStamp(stamp)
	if err != nil {
		return ""
	}
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc = time.UTC
	}
	return t.In(loc).Format(rowTimeLayout)
}

// parseStamp accepts the provider's timestamp variants: RFC 3339 with or
// without seconds, and the space-separated form.
func parseStamp(stamp string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04Z07:00",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05",
	}
	var err error
	for _, layout := range layouts {
		var t time.Time
		if t, err = time.Parse(layout, stamp); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// formatUSD renders a dollar amount with thousands separators and the given
// number of decimal places, e.g. formatUSD(12345.6, 0) == "$12,346".
func formatUSD(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}
