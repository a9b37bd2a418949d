package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"ecomagent/internal/http/handlers"
	httpapi "ecomagent/internal/http/httpapi"
	"ecomagent/internal/infra"
	"ecomagent/internal/infra/credentials"
	"ecomagent/internal/infra/geoip"
	"ecomagent/internal/providers/groq"
	"ecomagent/internal/ratelimit"
	"ecomagent/internal/usage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Postgres backs usage events and the stored API key; both are optional.
	var recorder usage.Recorder = usage.NopRecorder{}
	pool, err := infra.NewDBPool(ctx, cfg)
	switch {
	case errors.Is(err, infra.ErrDatabaseDisabled):
		logger.Info().Msg("DATABASE_URL not set, usage events disabled")
	case err != nil:
		logger.Fatal().Err(err).Msg("failed to connect database")
	default:
		defer pool.Close()
		recorder = usage.NewSQLRecorder(infra.NewSQLRunner(pool, logger), logger)
	}

	var keys apiKeySource
	if pool != nil {
		keys = credentials.NewStore(infra.NewSQLRunner(pool, logger))
	}
	apiKey := resolveAPIKey(ctx, cfg.GroqAPIKey, keys, logger)
	gateway := groq.NewClient(groq.Options{
		APIKey:    apiKey,
		BaseURL:   cfg.GroqBaseURL,
		Model:     cfg.GroqModel,
		MaxTokens: cfg.GroqMaxTokens,
		Timeout:   cfg.GroqTimeout,
		Logger:    &logger,
	})
	if !gateway.HasCredentials() {
		logger.Warn().Str("model", gateway.Model()).Msg("GROQ_API_KEY missing, generation endpoints will answer with an error message")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	limiter := newLimiter(cfg, logger)

	app := handlers.NewApp(gateway, recorder, logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		DefaultLocale:  cfg.DefaultLocale,
		CountryLookup:  resolver.Lookup(),
		Limiter:        limiter,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	// In-flight generations may take up to the provider timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GroqTimeout+5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

type apiKeySource interface {
	GroqAPIKey(ctx context.Context) (string, error)
}

// resolveAPIKey reads the provider credential once: environment first, then
// the integration_tokens table when a database is available.
func resolveAPIKey(ctx context.Context, envKey string, keys apiKeySource, logger infra.Logger) string {
	if envKey != "" || keys == nil {
		return envKey
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	key, err := keys.GroqAPIKey(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load groq api key from store")
		return ""
	}
	return key
}

func newLimiter(cfg *infra.Config, logger infra.Logger) ratelimit.Limiter {
	if cfg.RateLimitPerMin <= 0 {
		return nil
	}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		l, err := ratelimit.NewRedisLimiter(client, "", cfg.RateLimitPerMin, time.Minute)
		if err == nil {
			return l
		}
		logger.Warn().Err(err).Msg("redis rate limiter unavailable, using in-memory limiter")
	}
	l, err := ratelimit.NewMemoryLimiter(cfg.RateLimitPerMin, time.Minute)
	if err != nil {
		logger.Warn().Err(err).Msg("rate limiting disabled")
		return nil
	}
	return l
}
