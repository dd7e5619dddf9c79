// Package domain models per-region COVID-19 metric series and the risk
// assessments derived from them.
//
// # Data Source
//
// Observations arrive as flat JSON on the Kafka source topic, one metric value
// per region per day:
//
//	{"state":"CA","county":"alameda_county","metric":"test_positivity","date":"2020-05-01","value":0.05}
//
// They can also be posted directly to the HTTP API as series points.
//
// # Location Conventions
//
// States are two-letter USPS codes ("CA", "DC"), case-insensitive on input
// and upper-cased on parse. Counties use the URL form of the county name:
// lower case, words joined by underscores ("alameda_county"). An empty county
// means the state-wide series. Display names combine both:
//
//	"alameda_county" + "CA"  →  "Alameda County, California"
//
// # Missing Values
//
// A null value marks a day the region reported nothing usable. Points with a
// null, NaN or infinite value, or a zero date, are dropped by [ValidPoints]
// before classification or charting. A series with no valid points classifies
// as Unknown.
//
// # Dates
//
// "date" is a calendar day (YYYY-MM-DD) or a full RFC 3339 timestamp; both are
// normalized to midnight UTC, so re-sending the same day replaces the earlier
// value.
//
// # ID Generation
//
// Assessment IDs are deterministic SHA-256 hashes of
// state|county|metric|day|value. Replaying the source topic yields the same
// IDs, which keeps sink consumers idempotent. See [generateID].
package domain
