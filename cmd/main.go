package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/abndnt/paris-night-sub002/internal/app/config"
	"github.com/abndnt/paris-night-sub002/internal/app/dto"
	"github.com/abndnt/paris-night-sub002/internal/app/endpoints"
	"github.com/abndnt/paris-night-sub002/internal/app/service"
	"github.com/abndnt/paris-night-sub002/internal/app/transport"
	"github.com/abndnt/paris-night-sub002/internal/pkg/events"
	"github.com/abndnt/paris-night-sub002/internal/pkg/logger"
	"github.com/abndnt/paris-night-sub002/internal/pkg/offer"
	"github.com/abndnt/paris-night-sub002/internal/pkg/ratelimit"
	"github.com/abndnt/paris-night-sub002/internal/pkg/rewards"
	"github.com/abndnt/paris-night-sub002/internal/pkg/searchstore"
	"github.com/abndnt/paris-night-sub002/internal/pkg/source"
	"github.com/abndnt/paris-night-sub002/internal/pkg/source/amadeus"
	"github.com/abndnt/paris-night-sub002/internal/pkg/source/sabre"
	"github.com/abndnt/paris-night-sub002/internal/pkg/source/skyscanner"
	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// @title           Flight Offer Aggregation & Points Valuation API
// @version         0.0.1
// @description     flight offer aggregation and rewards points valuation service
// @host      localhost:8080
// @BasePath  /
func main() {
	cfg := config.MustInitConfig(".env")
	logger.InitStructuredLogger(cfg.LogLevel)

	slog.Debug("config loaded successfully", slog.Any("config", cfg))
	runApp(cfg)
}

func runApp(cfg config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slog.InfoContext(ctx, "starting...", slog.String("log_level", string(cfg.LogLevel)))

	var waitGroup sync.WaitGroup
	// Starts the server in a go routine
	waitGroup.Add(1)
	go func() {
		defer waitGroup.Done()
		startHTTPServer(ctx, cfg)
	}()

	sigChannel := make(chan os.Signal, 1)
	signal.Notify(sigChannel, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)

	select {
	case sig := <-sigChannel:
		cancel()
		slog.InfoContext(ctx, "received OS signal. Exiting...", slog.String("signal", sig.String()))
	case <-ctx.Done():
		slog.ErrorContext(ctx, "failed to start HTTP server")
	}

	waitGroup.Wait()
	slog.InfoContext(ctx, "All service closed...")
}

func startHTTPServer(ctx context.Context, cfg config.Config) {
	endpts := makeEndpoints(ctx, &cfg)
	router := transport.MakeHTTPRouter(&cfg, endpts)
	server := &http.Server{
		Handler:      router,
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		WriteTimeout: cfg.HTTP.Timeout,
		ReadTimeout:  cfg.HTTP.Timeout,
	}

	slog.Info("running HTTP server...", slog.Int("port", cfg.HTTP.Port))

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "failed to start HTTP server", slog.String("error", err.Error()))
		}
	}()

	<-ctx.Done()

	if err := server.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to shutdown HTTP server", slog.String("error", err.Error()))
	}

	slog.InfoContext(ctx, "HTTP server shutdown gracefully")
}

func makeEndpoints(ctx context.Context, cfg *config.Config) endpoints.Endpoints {
	// init redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// init validator
	if err := dto.InitValidator(); err != nil {
		slog.ErrorContext(ctx, "failed to init validator", slog.String("error", err.Error()))
		panic(err)
	}

	registry := initSourceRegistry(cfg, redisClient)
	programs := initProgramRegistry(ctx, cfg)

	valuationService := service.NewValuationService(programs)
	routeOptimizer := service.NewRouteOptimizer(service.DefaultRouteConfig())

	return endpoints.Endpoints{
		SearchEndpoint:  makeSearchEndpoint(registry, redisClient, cfg),
		RewardsEndpoint: endpoints.MakeRewardsEndpoint(valuationService),
		RouteEndpoint:   endpoints.MakeRouteEndpoint(routeOptimizer),
	}
}

// register flight offer sources
func initSourceRegistry(cfg *config.Config, redisClient *redis.Client) *source.Registry {
	offerCache := offer.NewCache(redisClient)
	quota := ratelimit.NewLimiter(redisClient, nil, ratelimit.Quota{
		PerMinute: cfg.RateLimit.PerMinute,
		PerHour:   cfg.RateLimit.PerHour,
	})
	burst := redis_rate.NewLimiter(redisClient)

	amadeusCfg := source.Config{
		BaseURL:      cfg.Sources.AmadeusSource.BaseURL,
		APIKey:       cfg.Sources.AmadeusSource.APIKey,
		APISecret:    cfg.Sources.AmadeusSource.APISecret,
		Timeout:      cfg.Sources.AmadeusSource.Timeout,
		MaxRetries:   cfg.Sources.AmadeusSource.MaxRetries,
		RateLimitRPS: cfg.Sources.AmadeusSource.RateLimitRPS,
		CacheTTL:     cfg.Search.CacheTTL,
	}
	sabreCfg := source.Config{
		BaseURL:      cfg.Sources.SabreSource.BaseURL,
		APIKey:       cfg.Sources.SabreSource.APIKey,
		Timeout:      cfg.Sources.SabreSource.Timeout,
		MaxRetries:   cfg.Sources.SabreSource.MaxRetries,
		RateLimitRPS: cfg.Sources.SabreSource.RateLimitRPS,
		CacheTTL:     cfg.Search.CacheTTL,
	}
	skyscannerCfg := source.Config{
		BaseURL:      cfg.Sources.SkyscannerSource.BaseURL,
		APIKey:       cfg.Sources.SkyscannerSource.APIKey,
		Timeout:      cfg.Sources.SkyscannerSource.Timeout,
		MaxRetries:   cfg.Sources.SkyscannerSource.MaxRetries,
		RateLimitRPS: cfg.Sources.SkyscannerSource.RateLimitRPS,
		CacheTTL:     cfg.Search.CacheTTL,
	}

	registry := source.NewRegistry()
	registry.AddSource(amadeus.SourceName, source.NewRuntime(
		amadeus.NewAdapter(amadeusCfg), offerCache, quota, burst, amadeusCfg))
	registry.AddSource(sabre.SourceName, source.NewRuntime(
		sabre.NewAdapter(sabreCfg), offerCache, quota, burst, sabreCfg))
	registry.AddSource(skyscanner.SourceName, source.NewRuntime(
		skyscanner.NewAdapter(skyscannerCfg), offerCache, quota, burst, skyscannerCfg))

	return registry
}

func initProgramRegistry(ctx context.Context, cfg *config.Config) *rewards.Registry {
	programs, err := rewards.LoadPrograms(cfg.Rewards.ProgramsFile)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load reward programs", slog.String("error", err.Error()))
		panic(err)
	}

	return rewards.NewRegistry(programs)
}

func makeSearchEndpoint(registry *source.Registry,
	redisClient *redis.Client, cfg *config.Config) endpoints.SearchEndpoint {
	// cache
	offerCache := offer.NewCache(redisClient)

	// persistence + events
	store := searchstore.NewRedisStore(redisClient, cfg.Search.RecordTTL)
	sink := events.NewRedisSink(redisClient, cfg.Events.Channel)

	// service
	orchestrator := service.NewOrchestrator(registry, store, offerCache, sink,
		func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
		service.OrchestratorConfig{
			MaxConcurrentSearches: cfg.Search.MaxConcurrent,
			SourceTimeout:         cfg.Search.SourceTimeout,
		})

	// endpoint
	return endpoints.MakeSearchEndpoint(orchestrator)
}
