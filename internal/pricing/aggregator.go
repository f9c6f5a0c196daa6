package pricing

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Banders2/CheapPlayitasApi/internal/catalog"
	"github.com/Banders2/CheapPlayitasApi/internal/obs"
	"github.com/Banders2/CheapPlayitasApi/internal/upstream"
)

// Aggregator fans one calendar fetch out per (duration, airport, month,
// hotel) tuple and merges every partial result into one flat list.
type Aggregator struct {
	source    upstream.Source
	resolver  *Resolver
	hotels    []catalog.Hotel
	airports  []string
	durations []catalog.DurationBucket
	booking   string
	metrics   *obs.Metrics
	logger    zerolog.Logger
}

// NewAggregator creates an Aggregator over the fixed catalogue.
func NewAggregator(source upstream.Source, resolver *Resolver, bookingURL string, metrics *obs.Metrics, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		source:    source,
		resolver:  resolver,
		hotels:    catalog.Hotels(),
		airports:  catalog.Airports(),
		durations: catalog.Durations(),
		booking:   bookingURL,
		metrics:   metrics,
		logger:    logger,
	}
}

// queryTuple is one unit of fan-out work.
type queryTuple struct {
	hotel   catalog.Hotel
	airport string
	month   string
	bucket  catalog.DurationBucket
}

// Aggregate prices every tuple for the given traveler count. Failing
// branches contribute nothing. The returned list is unordered and not
// deduplicated: overlapping month windows may repeat a departure.
func (a *Aggregator) Aggregate(ctx context.Context, persons int) []Itinerary {
	start := time.Now()
	months := MonthsFrom(start)
	paxAges := PaxAges(persons)

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		all []Itinerary
	)
	for _, h := range a.hotels {
		for _, airport := range a.airports {
			for _, month := range months {
				for _, bucket := range a.durations {
					t := queryTuple{hotel: h, airport: airport, month: month, bucket: bucket}
					wg.Add(1)
					go func() {
						defer wg.Done()
						found := a.collect(ctx, t, paxAges)
						if len(found) == 0 {
							return
						}
						mu.Lock()
						all = append(all, found...)
						mu.Unlock()
					}()
				}
			}
		}
	}
	wg.Wait()

	a.metrics.ObserveAggregation(time.Since(start), len(all))
	a.logger.Info().
		Int("persons", persons).
		Int("itineraries", len(all)).
		Dur("duration", time.Since(start)).
		Msg("aggregation complete")
	return all
}

// collect prices one tuple: a single calendar fetch, then one itinerary per
// usable departure date. Long buckets resolve each date concurrently.
func (a *Aggregator) collect(ctx context.Context, t queryTuple, paxAges string) []Itinerary {
	quotes, ok := a.source.PriceCalendar(ctx, upstream.CalendarQuery{
		HotelCode:         t.hotel.HotelCode,
		AccommodationCode: t.hotel.AccommodationCode,
		Airport:           t.airport,
		Month:             t.month,
		Days:              t.bucket.Days,
		PaxAges:           paxAges,
	})
	if !ok {
		return nil
	}

	var (
		direct   []Itinerary
		mu       sync.Mutex
		wg       sync.WaitGroup
		resolved []Itinerary
	)
	for _, quote := range quotes {
		if quote.SoldOut || quote.Price <= 0 || quote.Date == "" {
			continue
		}
		if !t.bucket.Long {
			direct = append(direct, Itinerary{
				Date:     quote.Date,
				Price:    quote.Price,
				Airport:  t.airport,
				Duration: strconv.Itoa(t.bucket.Days),
				Hotel:    t.hotel.Name,
				Link:     BookingLink(a.booking, t.hotel, t.airport, quote.Date, t.bucket.Days, paxAges),
			})
			continue
		}
		quote := quote
		wg.Add(1)
		go func() {
			defer wg.Done()
			found := a.resolver.Resolve(ctx, t.hotel, t.airport, paxAges, quote)
			if len(found) == 0 {
				return
			}
			mu.Lock()
			resolved = append(resolved, found...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	return append(direct, resolved...)
}
