package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Banders2/CheapPlayitasApi/internal/handler"
	"github.com/Banders2/CheapPlayitasApi/internal/obs"
	"github.com/Banders2/CheapPlayitasApi/internal/pricing"
	"github.com/Banders2/CheapPlayitasApi/internal/pricing/cache"
	"github.com/Banders2/CheapPlayitasApi/internal/ratelimit"
	"github.com/Banders2/CheapPlayitasApi/internal/upstream"
)

// stubAggregator returns canned itineraries and records the traveler count.
type stubAggregator struct {
	itineraries []pricing.Itinerary
	lastPersons atomic.Int64
}

func (s *stubAggregator) Aggregate(_ context.Context, persons int) []pricing.Itinerary {
	s.lastPersons.Store(int64(persons))
	return s.itineraries
}

func newHandler(t *testing.T, agg handler.Aggregator, limit int) *handler.Handler {
	t.Helper()
	priceCache := cache.New(time.Minute)
	t.Cleanup(priceCache.Close)
	limiter := ratelimit.New(limit, time.Minute)
	t.Cleanup(limiter.Close)
	return handler.New(agg, priceCache, limiter, obs.NewMetrics(), zerolog.Nop())
}

func TestPrices_DefaultPersons(t *testing.T) {
	agg := &stubAggregator{itineraries: []pricing.Itinerary{{Date: "2026-03-04", Price: 4999, Airport: "CPH", Duration: "7", Hotel: "Playitas Resort"}}}
	h := newHandler(t, agg, 100)

	rec := httptest.NewRecorder()
	h.Prices(rec, httptest.NewRequest(http.MethodGet, "/api/prices", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := agg.lastPersons.Load(); got != 2 {
		t.Errorf("expected default party size 2, got %d", got)
	}

	var body []pricing.Itinerary
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not a JSON array: %v", err)
	}
	if len(body) != 1 || body[0].Hotel != "Playitas Resort" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestPrices_InvalidPersons(t *testing.T) {
	tests := []string{"abc", "0", "-3", "1.5"}

	for _, persons := range tests {
		t.Run(persons, func(t *testing.T) {
			h := newHandler(t, &stubAggregator{}, 100)

			rec := httptest.NewRecorder()
			h.Prices(rec, httptest.NewRequest(http.MethodGet, "/api/prices?persons="+persons, nil))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 for persons=%q, got %d", persons, rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("error response is not JSON: %v", err)
			}
			if body["error"] == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestPrices_EmptyResultIsArray(t *testing.T) {
	h := newHandler(t, &stubAggregator{}, 100)

	rec := httptest.NewRecorder()
	h.Prices(rec, httptest.NewRequest(http.MethodGet, "/api/prices?persons=3", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("expected [], got %q", got)
	}
}

func TestPrices_RateLimit(t *testing.T) {
	h := newHandler(t, &stubAggregator{}, 1)

	rec := httptest.NewRecorder()
	h.Prices(rec, httptest.NewRequest(http.MethodGet, "/api/prices", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Prices(rec, httptest.NewRequest(http.MethodGet, "/api/prices", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for the second request, got %d", rec.Code)
	}
}

// TestPrices_EndToEnd wires the real client, resolver, aggregator and cache
// against a stub upstream that offers exactly one 7-day departure.
func TestPrices_EndToEnd(t *testing.T) {
	month := pricing.MonthsFrom(time.Now())[0]
	date := month + "-15"

	var calendarCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/api/pricecalendar", func(w http.ResponseWriter, r *http.Request) {
		calendarCalls.Add(1)
		q := r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		if q.Get("duration") != "7" || q.Get("departureAirport") != "CPH" ||
			q.Get("month") != month || q.Get("hotelCode") != "155" {
			_, _ = w.Write([]byte(`{"priceList":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"priceList":[{"checkInDate":"` + date + `T00:00:00","price":6495,"soldOut":false}]}`))
	})
	mux.HandleFunc("/api/productsearch", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products":[]}`))
	})
	mux.HandleFunc("/api/productdurations", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"alternatives":[]}`))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	metrics := obs.NewMetrics()
	client := upstream.NewClient(upstream.Config{BaseURL: ts.URL, Timeout: 5 * time.Second}, metrics, zerolog.Nop())
	resolver := pricing.NewResolver(client, pricing.ModeProbe, ts.URL, zerolog.Nop())
	aggregator := pricing.NewAggregator(client, resolver, ts.URL, metrics, zerolog.Nop())

	priceCache := cache.New(time.Minute)
	t.Cleanup(priceCache.Close)
	limiter := ratelimit.New(1000, time.Minute)
	t.Cleanup(limiter.Close)
	h := handler.New(aggregator, priceCache, limiter, metrics, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.Prices(rec, httptest.NewRequest(http.MethodGet, "/api/prices?persons=1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body []pricing.Itinerary
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not a JSON array: %v", err)
	}
	if len(body) != 1 {
		t.Fatalf("expected exactly 1 itinerary, got %d: %+v", len(body), body)
	}
	it := body[0]
	if it.Hotel != "Playitas Resort" || it.Duration != "7" || it.Airport != "CPH" {
		t.Errorf("unexpected itinerary: %+v", it)
	}
	if it.Price != 6495 {
		t.Errorf("expected price 6495, got %v", it.Price)
	}
	if it.Date != date {
		t.Errorf("expected date %q, got %q", date, it.Date)
	}
	if it.Link == "" {
		t.Error("expected a booking link")
	}

	// A repeat request for the same party size is served from the cache
	// without touching the upstream again.
	calls := calendarCalls.Load()
	rec = httptest.NewRecorder()
	h.Prices(rec, httptest.NewRequest(http.MethodGet, "/api/prices?persons=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat, got %d", rec.Code)
	}
	if calendarCalls.Load() != calls {
		t.Errorf("expected no additional upstream calls, got %d more", calendarCalls.Load()-calls)
	}
}
