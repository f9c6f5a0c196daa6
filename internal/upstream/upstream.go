// Package upstream queries the travel-booking pricing API. Every call is
// fail-open: transport errors, non-success statuses and undecodable bodies
// all come back as a "not ok" result so that one flaky upstream call can
// only shrink an aggregation, never abort it.
package upstream

import "context"

// Source is the query surface the pricing pipeline depends on.
type Source interface {
	// PriceCalendar lists departure dates with prices for one month window.
	PriceCalendar(ctx context.Context, q CalendarQuery) ([]DepartureQuote, bool)

	// ProductSearch resolves the priced package instance for one departure.
	ProductSearch(ctx context.Context, q ProductQuery) (Product, bool)

	// AlternativeDurations lists other stay lengths for a resolved product.
	AlternativeDurations(ctx context.Context, q AlternativesQuery) ([]DurationOption, bool)
}

// CalendarQuery identifies one price-calendar fetch.
type CalendarQuery struct {
	HotelCode         string
	AccommodationCode string
	Airport           string
	Month             string // "YYYY-MM"
	Days              int
	PaxAges           string
}

// ProductQuery identifies one product lookup for a concrete departure date.
type ProductQuery struct {
	AccommodationCode string
	Airport           string
	Date              string // "YYYY-MM-DD"
	Days              int
	PaxAges           string
}

// AlternativesQuery identifies an alternative-durations lookup for a
// resolved product.
type AlternativesQuery struct {
	ProductID string
	Airport   string
	Date      string
	PaxAges   string
}

// DepartureQuote is one departure date on a price calendar.
type DepartureQuote struct {
	Date    string
	Price   float64
	SoldOut bool
}

// Product is one priced flight+hotel package instance. Days is the actual
// stay length the product covers, which may differ from the requested one.
type Product struct {
	ID    string
	Days  int
	Price float64
}

// DurationOption is one alternative stay length for a product.
type DurationOption struct {
	Days int
}
