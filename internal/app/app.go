// Package app wires the service together and runs the HTTP server.
package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/Banders2/CheapPlayitasApi/internal/handler"
	"github.com/Banders2/CheapPlayitasApi/internal/logging"
	"github.com/Banders2/CheapPlayitasApi/internal/middleware"
	"github.com/Banders2/CheapPlayitasApi/internal/obs"
	"github.com/Banders2/CheapPlayitasApi/internal/pricing"
	"github.com/Banders2/CheapPlayitasApi/internal/pricing/cache"
	"github.com/Banders2/CheapPlayitasApi/internal/ratelimit"
	"github.com/Banders2/CheapPlayitasApi/internal/upstream"
)

// Run initializes and runs the application.
func Run() error {
	logger := logging.Setup(getEnv("LOG_LEVEL", "info"))

	metrics := obs.NewMetrics()

	client := upstream.NewClient(upstream.Config{
		BaseURL:      getEnv("UPSTREAM_URL", "https://www.apollorejser.dk"),
		MaxConns:     getEnvInt("UPSTREAM_MAX_CONNS", 30),
		ConnLifetime: getEnvDuration("UPSTREAM_CONN_LIFETIME", 10*time.Minute),
		Timeout:      getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second),
	}, metrics, logging.Component(logger, "upstream"))

	bookingURL := getEnv("BOOKING_URL", "https://www.apollorejser.dk")
	resolver := pricing.NewResolver(
		client,
		pricing.PricingMode(getEnv("LONG_STAY_PRICING", "probe")),
		bookingURL,
		logging.Component(logger, "resolver"),
	)
	aggregator := pricing.NewAggregator(
		client,
		resolver,
		bookingURL,
		metrics,
		logging.Component(logger, "aggregator"),
	)

	priceCache := cache.New(getEnvDuration("CACHE_TTL", 20*time.Hour))
	defer priceCache.Close()

	// One aggregation fans out hundreds of upstream calls, so inbound
	// traffic is limited per IP.
	limiter := ratelimit.New(getEnvInt("RATE_LIMIT", 30), time.Minute)
	defer limiter.Close()

	h := handler.New(aggregator, priceCache, limiter, metrics, logging.Component(logger, "handler"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/prices", h.Prices)
	mux.HandleFunc("GET /healthz", obs.HealthHandler(logger))
	mux.Handle("GET /metrics", obs.Handler())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	wrappedHandler := middleware.Logging(logger)(corsHandler.Handler(mux))

	srv := &http.Server{
		Addr:              getEnv("LISTEN_ADDR", ":8080"),
		Handler:           wrappedHandler,
		ReadHeaderTimeout: 10 * time.Second,
		// No write timeout: an uncached request waits for the full
		// upstream fan-out, which can take minutes.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

// getEnv gets an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
