// Package domain models retail locations and the demand-relevant events
// surrounding them.
//
// # Data Sources
//
// Three external collaborators feed the pipeline:
//
//   - A static retailer store dataset (CSV), columns
//     name, street_address, city, state, zip_code, latitude, longitude,
//     plus optional phone_number_1, open_hours, url metadata. Store names
//     are assumed unique within the dataset.
//   - A location provider (geocoding / place autocomplete) that turns free
//     text into ranked candidates and expands an opaque token into geometry
//     and a formatted address.
//   - An events-forecasting provider that recommends a search radius for a
//     coordinate pair and returns event records within a radius, date window,
//     and category set.
//
// # Ref Encoding
//
// A search candidate carries a [Ref], a two-variant sum: a store-backed
// reference holding the exact store name, or a provider-backed reference
// holding the provider's native token. On the wire, store refs are encoded as
// "store_" followed by the name with spaces replaced by underscores; decoding
// reverses the substitution. Names that themselves contain an underscore do
// not round-trip — a known limitation of the encoding, kept for
// compatibility with tokens already issued.
//
// # Event Category Taxonomy
//
// The forecasting provider groups categories into attended, non-attended,
// and unscheduled sets. The grouping is provider-defined and carried
// verbatim here ([AttendedCategories], [NonAttendedCategories],
// [UnscheduledCategories]); the pipeline requests attended categories only
// and never reinterprets the taxonomy.
//
// # Row Formatting
//
// [BuildRows] flattens provider event records into fixed-shape display rows:
// timestamps are converted to the event's own timezone and rendered as
// "02-Jan-2006 15:04"; predicted total spend is rendered with a dollar sign,
// thousands separators, and zero decimal places while the hospitality
// breakdown keeps two. Missing optional fields render as empty strings
// (attendance as 0), never as an error: row building is pure and total.
package domain
