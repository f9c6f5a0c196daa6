package main

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Stub generates deterministic-per-query synthetic pricing data: the same
// query always yields the same calendar, so cached and fresh aggregations
// agree during local testing.
type Stub struct {
	logger *slog.Logger
}

// NewStub creates a Stub.
func NewStub() *Stub {
	return &Stub{
		logger: slog.New(slog.NewTextHandler(os.Stdout, nil)),
	}
}

type stubQuote struct {
	CheckInDate string  `json:"checkInDate"`
	Price       float64 `json:"price"`
	SoldOut     bool    `json:"soldOut"`
}

type stubProduct struct {
	ProductID    string  `json:"productId"`
	DurationDays int     `json:"durationDays"`
	Price        float64 `json:"price"`
}

type stubAlternative struct {
	DurationDays int `json:"durationDays"`
}

// PriceCalendar serves /api/pricecalendar.
func (s *Stub) PriceCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month := q.Get("month")
	days, err := strconv.Atoi(q.Get("duration"))
	if month == "" || err != nil || days <= 0 {
		http.Error(w, "missing or invalid parameters", http.StatusBadRequest)
		return
	}

	start, err := time.Parse("2006-01", month)
	if err != nil {
		http.Error(w, "invalid month", http.StatusBadRequest)
		return
	}

	rng := seededRand(q.Get("hotelCode"), q.Get("departureAirport"), month, q.Get("duration"), q.Get("paxAges"))
	persons := strings.Count(q.Get("paxAges"), ",") + 1

	// A handful of departures spread over the month, roughly one in five
	// sold out.
	quotes := make([]stubQuote, 0, 5)
	for day := 2 + rng.Intn(3); day <= 28; day += 6 + rng.Intn(3) {
		date := start.AddDate(0, 0, day-1)
		perPerson := 300 + rng.Float64()*400 + float64(days)*55
		quotes = append(quotes, stubQuote{
			CheckInDate: date.Format("2006-01-02T15:04:05"),
			Price:       float64(int(perPerson*float64(persons)*100)) / 100,
			SoldOut:     rng.Float64() < 0.2,
		})
	}

	s.writeJSON(w, map[string]any{"priceList": quotes})
}

// ProductSearch serves /api/productsearch.
func (s *Stub) ProductSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("departureDate")
	days, err := strconv.Atoi(q.Get("duration"))
	if date == "" || err != nil || days <= 0 {
		http.Error(w, "missing or invalid parameters", http.StatusBadRequest)
		return
	}

	rng := seededRand(q.Get("accommodationCode"), q.Get("departureAirport"), date, q.Get("duration"), q.Get("paxAges"))

	// Some departures have no product for the requested duration at all,
	// and some resolve to a product with a shifted stay length.
	if rng.Float64() < 0.15 {
		s.writeJSON(w, map[string]any{"products": []stubProduct{}})
		return
	}
	actualDays := days
	if rng.Float64() < 0.1 {
		actualDays = days + 1
	}

	persons := strings.Count(q.Get("paxAges"), ",") + 1
	price := (400 + rng.Float64()*500 + float64(actualDays)*60) * float64(persons)
	s.writeJSON(w, map[string]any{"products": []stubProduct{
		{
			ProductID:    fmt.Sprintf("P-%s-%s-%d", q.Get("departureAirport"), date, actualDays),
			DurationDays: actualDays,
			Price:        float64(int(price*100)) / 100,
		},
	}})
}

// ProductDurations serves /api/productdurations.
func (s *Stub) ProductDurations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("productId") == "" {
		http.Error(w, "missing productId", http.StatusBadRequest)
		return
	}

	rng := seededRand(q.Get("productId"), q.Get("departureAirport"), q.Get("departureDate"))
	alternatives := []stubAlternative{{DurationDays: 21}}
	if rng.Float64() < 0.6 {
		alternatives = append(alternatives, stubAlternative{DurationDays: 28})
	}

	s.writeJSON(w, map[string]any{"alternatives": alternatives})
}

func (s *Stub) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// seededRand derives a query-stable random source from its parts.
func seededRand(parts ...string) *rand.Rand {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return rand.New(rand.NewSource(int64(h.Sum64())))
}
