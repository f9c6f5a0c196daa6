// Package handler exposes the pricing HTTP surface.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Banders2/CheapPlayitasApi/internal/middleware"
	"github.com/Banders2/CheapPlayitasApi/internal/obs"
	"github.com/Banders2/CheapPlayitasApi/internal/pricing"
	"github.com/Banders2/CheapPlayitasApi/internal/pricing/cache"
	"github.com/Banders2/CheapPlayitasApi/internal/ratelimit"
)

const (
	pricesPath     = "/api/prices"
	defaultPersons = 2
)

// Aggregator computes the full price list for a traveler count.
type Aggregator interface {
	Aggregate(ctx context.Context, persons int) []pricing.Itinerary
}

// Handler handles HTTP requests.
type Handler struct {
	aggregator Aggregator
	cache      *cache.Cache
	limiter    *ratelimit.Limiter
	metrics    *obs.Metrics
	logger     zerolog.Logger
}

// New creates a new Handler.
func New(aggregator Aggregator, priceCache *cache.Cache, limiter *ratelimit.Limiter, metrics *obs.Metrics, logger zerolog.Logger) *Handler {
	return &Handler{
		aggregator: aggregator,
		cache:      priceCache,
		limiter:    limiter,
		metrics:    metrics,
		logger:     logger,
	}
}

// Prices handles GET /api/prices requests.
func (h *Handler) Prices(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestID(r.Context())

	ip := ExtractIP(r)
	if !h.limiter.Allow(ip) {
		h.logger.Warn().Str("request_id", requestID).Str("ip", ip).Msg("rate limit exceeded")
		h.metrics.IncRequest(pricesPath, http.StatusTooManyRequests)
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	persons, err := parsePersons(r)
	if err != nil {
		h.logger.Debug().Str("request_id", requestID).Err(err).Msg("invalid request parameter")
		h.metrics.IncRequest(pricesPath, http.StatusBadRequest)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The computation must survive the caller going away: every waiter on
	// the same cache key shares it.
	computeCtx := context.WithoutCancel(r.Context())
	itineraries, hit := h.cache.GetOrCompute(r.Context(), h.cache.Key(persons), func() []pricing.Itinerary {
		return h.aggregator.Aggregate(computeCtx, persons)
	})
	if hit {
		h.metrics.IncCacheHit()
	} else {
		h.metrics.IncCacheMiss()
	}

	if itineraries == nil {
		itineraries = []pricing.Itinerary{}
	}

	h.metrics.IncRequest(pricesPath, http.StatusOK)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(itineraries); err != nil {
		h.logger.Error().Str("request_id", requestID).Err(err).Msg("failed to encode response")
	}
}

// parsePersons parses the optional persons parameter. Absent means the
// default party size; anything present must be a positive integer.
func parsePersons(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("persons"))
	if raw == "" {
		return defaultPersons, nil
	}
	persons, err := strconv.Atoi(raw)
	if err != nil || persons <= 0 {
		return 0, fmt.Errorf("persons must be a positive integer")
	}
	return persons, nil
}

// ExtractIP extracts the client IP from the request.
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
