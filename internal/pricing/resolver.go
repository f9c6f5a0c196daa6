package pricing

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/Banders2/CheapPlayitasApi/internal/catalog"
	"github.com/Banders2/CheapPlayitasApi/internal/upstream"
)

// PricingMode selects how long-stay variants are priced. The upstream API is
// not consistent about whether a 21/28-day departure carries the calendar
// price or the product's own price, so both behaviors stay selectable.
type PricingMode string

const (
	// ModeProbe queries each candidate duration's product and uses the
	// product's own price.
	ModeProbe PricingMode = "probe"

	// ModeAlternatives lists alternative durations for the probed product
	// and carries the calendar price forward.
	ModeAlternatives PricingMode = "alternatives"
)

// longStayDays are the exact stay lengths a long bucket expands into.
var longStayDays = []int{21, 28}

// probeDays is the duration used for the initial product lookup.
const probeDays = 21

// Resolver expands one long-bucket departure date into exact 21- and 28-day
// itineraries.
type Resolver struct {
	source  upstream.Source
	mode    PricingMode
	booking string
	logger  zerolog.Logger
}

// NewResolver creates a Resolver. Unknown modes fall back to ModeProbe.
func NewResolver(source upstream.Source, mode PricingMode, bookingURL string, logger zerolog.Logger) *Resolver {
	if mode != ModeAlternatives {
		mode = ModeProbe
	}
	return &Resolver{
		source:  source,
		mode:    mode,
		booking: bookingURL,
		logger:  logger,
	}
}

// Resolve returns the itineraries for one priced, non-sold-out departure
// date in the long bucket. A date that cannot be resolved yields nothing.
func (r *Resolver) Resolve(ctx context.Context, h catalog.Hotel, airport, paxAges string, quote upstream.DepartureQuote) []Itinerary {
	probed, ok := r.source.ProductSearch(ctx, upstream.ProductQuery{
		AccommodationCode: h.AccommodationCode,
		Airport:           airport,
		Date:              quote.Date,
		Days:              probeDays,
		PaxAges:           paxAges,
	})
	if !ok || probed.ID == "" {
		return nil
	}

	if r.mode == ModeAlternatives {
		return r.alternatives(ctx, h, airport, paxAges, quote, probed)
	}
	return r.probeDurations(ctx, h, airport, paxAges, quote, probed)
}

// probeDurations looks up each candidate duration's own product and keeps
// only products whose actual stay matches the requested duration exactly.
func (r *Resolver) probeDurations(ctx context.Context, h catalog.Hotel, airport, paxAges string, quote upstream.DepartureQuote, probed upstream.Product) []Itinerary {
	var out []Itinerary
	for _, days := range longStayDays {
		product := probed
		if days != probeDays {
			p, ok := r.source.ProductSearch(ctx, upstream.ProductQuery{
				AccommodationCode: h.AccommodationCode,
				Airport:           airport,
				Date:              quote.Date,
				Days:              days,
				PaxAges:           paxAges,
			})
			if !ok || p.ID == "" {
				continue
			}
			product = p
		}
		if product.Days != days {
			r.logger.Debug().
				Str("hotel", h.Name).
				Str("date", quote.Date).
				Int("requested_days", days).
				Int("product_days", product.Days).
				Msg("discarding product with mismatched stay length")
			continue
		}
		if product.Price <= 0 {
			continue
		}
		out = append(out, r.itinerary(h, airport, paxAges, quote.Date, days, product.Price))
	}
	return out
}

// alternatives issues one alternative-durations call for the probed product
// and carries the calendar price forward to every candidate of 21 days or
// more. Duplicate candidates are kept once.
func (r *Resolver) alternatives(ctx context.Context, h catalog.Hotel, airport, paxAges string, quote upstream.DepartureQuote, probed upstream.Product) []Itinerary {
	opts, ok := r.source.AlternativeDurations(ctx, upstream.AlternativesQuery{
		ProductID: probed.ID,
		Airport:   airport,
		Date:      quote.Date,
		PaxAges:   paxAges,
	})
	if !ok {
		return nil
	}

	seen := make(map[int]bool, len(opts))
	var out []Itinerary
	for _, opt := range opts {
		if opt.Days < probeDays || seen[opt.Days] {
			continue
		}
		seen[opt.Days] = true
		out = append(out, r.itinerary(h, airport, paxAges, quote.Date, opt.Days, quote.Price))
	}
	return out
}

func (r *Resolver) itinerary(h catalog.Hotel, airport, paxAges, date string, days int, price float64) Itinerary {
	return Itinerary{
		Date:     date,
		Price:    price,
		Airport:  airport,
		Duration: strconv.Itoa(days),
		Hotel:    h.Name,
		Link:     BookingLink(r.booking, h, airport, date, days, paxAges),
	}
}
