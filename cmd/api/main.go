package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"smishguard/internal/analysis"
	"smishguard/internal/analysis/extract"
	"smishguard/internal/analysis/profile"
	"smishguard/internal/analysis/reputation"
	"smishguard/internal/analysis/resolve"
	"smishguard/internal/analysis/risk"
	"smishguard/internal/analysis/sender"
	"smishguard/internal/api"
	"smishguard/internal/api/handlers"
	"smishguard/internal/config"
	"smishguard/internal/infrastructure/cache"
	"smishguard/internal/rules"
	"smishguard/pkg/logger"
)

// memoryCacheCapacity bounds the fallback cache when Redis is not configured
const memoryCacheCapacity = 4096

func main() {
	// Load configuration
	cfg, err := config.LoadDefault()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var log *logger.Logger
	if cfg.App.Environment == "production" {
		log = logger.NewProduction()
	} else {
		log = logger.NewDevelopment()
	}
	logger.SetGlobal(log)

	log.Info().
		Str("app", cfg.App.Name).
		Str("env", cfg.App.Environment).
		Str("version", cfg.App.Version).
		Str("region", cfg.App.Region).
		Msg("starting SmishGuard")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize cache: Redis when configured, in-process LRU otherwise.
	var redisStore *cache.RedisStore
	var store cache.Store
	if cfg.Redis.Enabled {
		redisStore, err = cache.NewRedis(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, falling back to in-memory cache")
		}
	}
	if redisStore != nil {
		store = redisStore
		defer redisStore.Close()
	} else {
		store = cache.NewMemoryStore(memoryCacheCapacity)
	}

	// Initialize analysis components
	extractor := extract.New(log)
	resolver := resolve.New(cfg.Analysis, store, log)
	profiler := profile.NewDefault(log)

	allowDevSig := cfg.App.Environment != "production"
	packs := sender.NewPackStore(sender.ReleasePublicKey(), allowDevSig, log)
	detector := sender.NewDetector(packs, log)

	aggregator := reputation.NewAggregator(store, cfg.Analysis.ReputationCacheTTL, log)
	registerSources(aggregator, cfg.Sources, log)

	engine := risk.NewEngine(cfg.Analysis, log)
	overrides := rules.NewStore(log)

	pipeline := analysis.NewPipeline(cfg.Analysis, analysis.Deps{
		Extractor:     extractor,
		Resolver:      resolver,
		Profiler:      profiler,
		Sender:        detector,
		Reputation:    aggregator,
		Engine:        engine,
		Overrides:     overrides,
		DefaultRegion: cfg.App.Region,
	}, log)

	// Initialize handlers and router
	h := handlers.NewHandlers(handlers.Dependencies{
		Pipeline:   pipeline,
		Packs:      packs,
		Rules:      overrides,
		Reputation: aggregator,
		Redis:      redisStore,
		Version:    cfg.App.Version,
		Logger:     log,
	})

	router := api.NewRouter(*cfg, h, redisStore, log)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().
			Str("addr", httpServer.Addr).
			Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("shutdown complete")
}

// registerSources registers and configures all reputation sources
func registerSources(agg *reputation.Aggregator, cfg config.SourcesConfig, log *logger.Logger) {
	sb := reputation.NewSafeBrowsingSource(log)
	if err := sb.Configure(sourceConfig(cfg.GoogleSafeBrowsing)); err != nil {
		log.Warn().Err(err).Msg("failed to configure Safe Browsing source")
	}
	agg.Register(sb)

	uh := reputation.NewURLhausSource(log)
	if err := uh.Configure(sourceConfig(cfg.URLhaus)); err != nil {
		log.Warn().Err(err).Msg("failed to configure URLhaus source")
	}
	agg.Register(uh)

	op := reputation.NewOpenPhishSource(log)
	if err := op.Configure(sourceConfig(cfg.OpenPhish)); err != nil {
		log.Warn().Err(err).Msg("failed to configure OpenPhish source")
	}
	agg.Register(op)

	enabled := 0
	for _, src := range agg.Sources() {
		if src.IsEnabled() {
			enabled++
		}
	}
	log.Info().
		Int("total", len(agg.Sources())).
		Int("enabled", enabled).
		Msg("registered reputation sources")
}

func sourceConfig(c config.SourceConfig) reputation.SourceConfig {
	sc := reputation.DefaultSourceConfig()
	sc.Enabled = c.Enabled
	if c.APIURL != "" {
		sc.APIURL = c.APIURL
	}
	if c.FeedURL != "" {
		sc.FeedURL = c.FeedURL
	}
	sc.APIKey = c.APIKey
	if c.Timeout > 0 {
		sc.Timeout = c.Timeout
	}
	return sc
}
