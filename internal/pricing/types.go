// Package pricing implements the price-aggregation pipeline: the query
// parameter space, the upstream fan-out, long-stay duration resolution and
// the merged price list.
package pricing

// Itinerary is one priced flight+hotel package. A full response is an
// unordered sequence of these with no deduplication guarantee.
type Itinerary struct {
	Date     string  `json:"date"`
	Price    float64 `json:"price"`
	Airport  string  `json:"airport"`
	Duration string  `json:"duration"`
	Hotel    string  `json:"hotel"`
	Link     string  `json:"link"`
}
