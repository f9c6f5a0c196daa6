package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Banders2/CheapPlayitasApi/internal/obs"
)

// Config holds the upstream client configuration.
type Config struct {
	BaseURL string

	// MaxConns caps concurrent outbound connections; calls beyond the cap
	// wait for a free slot instead of failing.
	MaxConns int

	// ConnLifetime bounds how long an idle connection is kept for reuse.
	ConnLifetime time.Duration

	// Timeout bounds one call end to end; expiry counts as an unavailable
	// upstream, not an error.
	Timeout time.Duration
}

// Client performs pricing-API calls over one bounded connection pool shared
// by every in-flight aggregation.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *obs.Metrics
	logger     zerolog.Logger
}

// NewClient creates a Client. Zero config fields fall back to the
// production defaults (30 connections, 10 minute reuse, 15 second calls).
func NewClient(cfg Config, metrics *obs.Metrics, logger zerolog.Logger) *Client {
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 30
	}
	if cfg.ConnLifetime <= 0 {
		cfg.ConnLifetime = 10 * time.Minute
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	transport := &http.Transport{
		MaxConnsPerHost:     cfg.MaxConns,
		MaxIdleConns:        cfg.MaxConns,
		MaxIdleConnsPerHost: cfg.MaxConns,
		IdleConnTimeout:     cfg.ConnLifetime,
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

type priceCalendarResponse struct {
	PriceList []struct {
		CheckInDate string  `json:"checkInDate"`
		Price       float64 `json:"price"`
		SoldOut     bool    `json:"soldOut"`
	} `json:"priceList"`
}

type productSearchResponse struct {
	Products []struct {
		ProductID    string  `json:"productId"`
		DurationDays int     `json:"durationDays"`
		Price        float64 `json:"price"`
	} `json:"products"`
}

type alternativesResponse struct {
	Alternatives []struct {
		DurationDays int `json:"durationDays"`
	} `json:"alternatives"`
}

// PriceCalendar implements Source.
func (c *Client) PriceCalendar(ctx context.Context, q CalendarQuery) ([]DepartureQuote, bool) {
	u := c.endpoint("/api/pricecalendar", url.Values{
		"hotelCode":         {q.HotelCode},
		"accommodationCode": {q.AccommodationCode},
		"departureAirport":  {q.Airport},
		"month":             {q.Month},
		"duration":          {strconv.Itoa(q.Days)},
		"paxAges":           {q.PaxAges},
	})

	var body priceCalendarResponse
	if !c.getJSON(ctx, "pricecalendar", u, &body) {
		return nil, false
	}

	quotes := make([]DepartureQuote, 0, len(body.PriceList))
	for _, p := range body.PriceList {
		quotes = append(quotes, DepartureQuote{
			Date:    isoDate(p.CheckInDate),
			Price:   p.Price,
			SoldOut: p.SoldOut,
		})
	}
	return quotes, true
}

// ProductSearch implements Source. It returns the first product carrying a
// usable identifier; a success response without one counts as not found.
func (c *Client) ProductSearch(ctx context.Context, q ProductQuery) (Product, bool) {
	u := c.endpoint("/api/productsearch", url.Values{
		"accommodationCode": {q.AccommodationCode},
		"departureAirport":  {q.Airport},
		"departureDate":     {q.Date},
		"duration":          {strconv.Itoa(q.Days)},
		"paxAges":           {q.PaxAges},
	})

	var body productSearchResponse
	if !c.getJSON(ctx, "productsearch", u, &body) {
		return Product{}, false
	}

	for _, p := range body.Products {
		if p.ProductID == "" {
			continue
		}
		return Product{ID: p.ProductID, Days: p.DurationDays, Price: p.Price}, true
	}
	return Product{}, false
}

// AlternativeDurations implements Source.
func (c *Client) AlternativeDurations(ctx context.Context, q AlternativesQuery) ([]DurationOption, bool) {
	u := c.endpoint("/api/productdurations", url.Values{
		"productId":        {q.ProductID},
		"departureAirport": {q.Airport},
		"departureDate":    {q.Date},
		"paxAges":          {q.PaxAges},
	})

	var body alternativesResponse
	if !c.getJSON(ctx, "productdurations", u, &body) {
		return nil, false
	}

	opts := make([]DurationOption, 0, len(body.Alternatives))
	for _, a := range body.Alternatives {
		opts = append(opts, DurationOption{Days: a.DurationDays})
	}
	return opts, true
}

// getJSON performs one GET and decodes the body into v. It reports false on
// any transport error, non-2xx status or decode failure.
func (c *Client) getJSON(ctx context.Context, endpoint, url string, v any) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("failed to build request")
		return false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.IncUpstream(endpoint, "transport")
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("upstream request failed")
		return false
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.IncUpstream(endpoint, "status")
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Msg("upstream returned non-success status")
		return false
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		c.metrics.IncUpstream(endpoint, "decode")
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("failed to decode upstream response")
		return false
	}

	c.metrics.IncUpstream(endpoint, "ok")
	return true
}

func (c *Client) endpoint(path string, q url.Values) string {
	return c.baseURL + path + "?" + q.Encode()
}

// isoDate strips any time component from an upstream timestamp.
func isoDate(s string) string {
	if i := strings.IndexByte(s, 'T'); i > 0 {
		return s[:i]
	}
	return s
}
