package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ip-location-gateway/internal/background"
	"ip-location-gateway/internal/cache"
	"ip-location-gateway/internal/config"
	"ip-location-gateway/internal/handler"
	"ip-location-gateway/internal/limiter"
	"ip-location-gateway/internal/logger"
	"ip-location-gateway/internal/metrics"
	"ip-location-gateway/internal/router"
	"ip-location-gateway/internal/service"
	"ip-location-gateway/internal/store"
	"ip-location-gateway/internal/upstream"
)

func main() {
	appConfig := config.Load()

	appLogger := setupLogger(appConfig)
	dataStore := setupStore(appConfig, appLogger)
	defer dataStore.Close()

	// Deferred cache fills and counter increments land on this scope;
	// it is drained before the process exits so no scheduled write is
	// lost to shutdown.
	tasks := background.New(10 * time.Second)

	rateLimiter := setupRateLimiter(appConfig, dataStore, tasks, appLogger)
	defer rateLimiter.Close()

	metricsCollector := metrics.New()

	upstreamClient := upstream.NewHTTPClient(upstream.Config{
		BaseURL:     appConfig.UpstreamURL,
		SourceLabel: appConfig.SourceLabel,
		Timeout:     appConfig.UpstreamTimeout,
	}, metricsCollector, appLogger)

	resultCache := cache.New(dataStore, tasks, time.Duration(appConfig.CacheTTL)*time.Second, metricsCollector, appLogger)
	geoService := service.NewGeoService(resultCache, upstreamClient, appConfig.BatchMax, appConfig.SourceLabel, metricsCollector, appLogger)
	geoHandler := handler.NewGeoHandler(geoService, appLogger)
	appRouter := router.Setup(geoHandler, rateLimiter, metricsCollector, appLogger)

	runServer(appConfig, appRouter, tasks, appLogger)
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:  "info",
		Pretty: true,
	})

	appLogger.Info().Msg("Starting IP Location Gateway...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Str("store_type", appConfig.StoreType).
		Str("rate_limiter_type", appConfig.RateLimiterType).
		Int("rate_limit", appConfig.RateLimit).
		Int("rate_limit_window", appConfig.RateLimitWindow).
		Int("cache_ttl", appConfig.CacheTTL).
		Int("batch_max", appConfig.BatchMax).
		Str("upstream_url", appConfig.UpstreamURL).
		Msg("Configuration loaded")

	return appLogger
}

// setupStore initializes the key-value store based on configuration.
// Redis is the production backend; memory serves single-instance and
// local development runs.
func setupStore(appConfig *config.Config, log *logger.Logger) store.Store {
	switch appConfig.StoreType {
	case "redis":
		redisStore, err := store.NewRedisStore(appConfig.RedisAddr, appConfig.RedisPassword, appConfig.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Redis store")
		}
		log.Info().Str("addr", appConfig.RedisAddr).Msg("Redis store initialized")
		return redisStore

	case "memory":
		log.Info().Msg("In-memory store initialized")
		return store.NewMemoryStore()

	default:
		log.Fatal().Str("type", appConfig.StoreType).Msg("Unknown store type")
		return nil
	}
}

// setupRateLimiter initializes the rate limiter
func setupRateLimiter(appConfig *config.Config, s store.Store, tasks *background.Tasks, log *logger.Logger) limiter.Limiter {
	rateLimiter, err := limiter.NewLimiter(limiter.LimiterConfig{
		Type:   appConfig.RateLimiterType,
		Limit:  appConfig.RateLimit,
		Window: time.Duration(appConfig.RateLimitWindow) * time.Second,
		Store:  s,
		Tasks:  tasks,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rate limiter")
	}

	return rateLimiter
}

// runServer starts the HTTP server and blocks until shutdown.
// On SIGINT/SIGTERM the listener is stopped, then the background write
// scope is drained so deferred cache fills and counter increments are
// durably committed before exit.
func runServer(appConfig *config.Config, appRouter http.Handler, tasks *background.Tasks, log *logger.Logger) {
	srv := &http.Server{
		Addr:    ":" + appConfig.Port,
		Handler: appRouter,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", appConfig.Port).
			Str("api_endpoint", "http://localhost:"+appConfig.Port+"/api/ip-location?ip=<ip>").
			Str("health_check", "http://localhost:"+appConfig.Port+"/health").
			Str("metrics", "http://localhost:"+appConfig.Port+"/metrics").
			Msg("Server is running")
		serverErr <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}

	tasks.Wait()
	log.Info().Msg("Background writes drained, exiting")
}
