package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Banders2/CheapPlayitasApi/internal/obs"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewClient(Config{BaseURL: ts.URL, Timeout: time.Second}, obs.NewMetrics(), zerolog.Nop())
}

func TestClient_PriceCalendar(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("hotelCode") != "155" || q.Get("departureAirport") != "CPH" ||
			q.Get("month") != "2026-03" || q.Get("duration") != "7" || q.Get("paxAges") != "18,18" {
			t.Errorf("unexpected query: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"priceList":[
			{"checkInDate":"2026-03-04T00:00:00","price":5295,"soldOut":false},
			{"checkInDate":"2026-03-11","price":5810,"soldOut":true}
		]}`))
	})

	quotes, ok := client.PriceCalendar(context.Background(), CalendarQuery{
		HotelCode:         "155",
		AccommodationCode: "PLAYITAS",
		Airport:           "CPH",
		Month:             "2026-03",
		Days:              7,
		PaxAges:           "18,18",
	})

	if !ok {
		t.Fatal("expected ok result")
	}
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}
	if quotes[0].Date != "2026-03-04" {
		t.Errorf("expected time component stripped, got %q", quotes[0].Date)
	}
	if quotes[0].Price != 5295 || quotes[0].SoldOut {
		t.Errorf("unexpected first quote: %+v", quotes[0])
	}
	if quotes[1].Date != "2026-03-11" || !quotes[1].SoldOut {
		t.Errorf("unexpected second quote: %+v", quotes[1])
	}
}

func TestClient_PriceCalendar_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if _, ok := client.PriceCalendar(context.Background(), CalendarQuery{}); ok {
		t.Error("expected not-ok result for a 500 response")
	}
}

func TestClient_PriceCalendar_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"priceList": [`))
	})

	if _, ok := client.PriceCalendar(context.Background(), CalendarQuery{}); ok {
		t.Error("expected not-ok result for a malformed body")
	}
}

func TestClient_TransportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	client := NewClient(Config{BaseURL: ts.URL, Timeout: time.Second}, obs.NewMetrics(), zerolog.Nop())
	ts.Close()

	if _, ok := client.PriceCalendar(context.Background(), CalendarQuery{}); ok {
		t.Error("expected not-ok result for a refused connection")
	}
}

func TestClient_ProductSearch(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantOK   bool
		wantID   string
		wantDays int
	}{
		{
			name:     "skips products without an identifier",
			body:     `{"products":[{"productId":"","durationDays":21,"price":1},{"productId":"P-1","durationDays":21,"price":6450}]}`,
			wantOK:   true,
			wantID:   "P-1",
			wantDays: 21,
		},
		{
			name:   "empty product list is not found",
			body:   `{"products":[]}`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			product, ok := client.ProductSearch(context.Background(), ProductQuery{
				AccommodationCode: "PLAYITAS",
				Airport:           "CPH",
				Date:              "2026-03-04",
				Days:              21,
				PaxAges:           "18",
			})

			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !tt.wantOK {
				return
			}
			if product.ID != tt.wantID || product.Days != tt.wantDays {
				t.Errorf("unexpected product: %+v", product)
			}
		})
	}
}

func TestClient_AlternativeDurations(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("productId"); got != "P-1" {
			t.Errorf("expected productId P-1, got %q", got)
		}
		_, _ = w.Write([]byte(`{"alternatives":[{"durationDays":21},{"durationDays":28}]}`))
	})

	opts, ok := client.AlternativeDurations(context.Background(), AlternativesQuery{
		ProductID: "P-1",
		Airport:   "CPH",
		Date:      "2026-03-04",
		PaxAges:   "18",
	})

	if !ok {
		t.Fatal("expected ok result")
	}
	if len(opts) != 2 || opts[0].Days != 21 || opts[1].Days != 28 {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestIsoDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "2026-03-04T00:00:00", want: "2026-03-04"},
		{in: "2026-03-04", want: "2026-03-04"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		if got := isoDate(tt.in); got != tt.want {
			t.Errorf("isoDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
