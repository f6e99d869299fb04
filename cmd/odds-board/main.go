package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/XavierBriggs/fortuna/services/odds-board/internal/cache"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/config"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/handlers"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/hub"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/poller"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/providers/espn"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/providers/oddsapi"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/publisher"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/registry"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/schedule"
)

func main() {
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "odds-board").
		Logger()

	log.Logger = logger

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		logger.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
	}

	loc, _ := cfg.Location() // validated by Load
	logger.Info().
		Strs("leagues", cfg.Schedule.Leagues).
		Strs("bookmakers", cfg.Schedule.Bookmakers).
		Str("time_zone", loc.String()).
		Msg("odds-board starting")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	leagues := registry.New(cfg.Schedule.Leagues...)
	if len(leagues.EnabledLeagues()) == 0 {
		logger.Fatal().Strs("leagues", cfg.Schedule.Leagues).Msg("no known league is enabled")
	}

	// Every book in the region is requested, not just the configured ones,
	// so the generic quote can come from a book the board does not list.
	oddsClient := oddsapi.New(oddsapi.Options{
		BaseURL:       cfg.Feeds.OddsBaseURL,
		APIKey:        cfg.Feeds.OddsAPIKey,
		Regions:       cfg.Feeds.Regions,
		Timeout:       cfg.Feeds.Timeout,
		RetryAttempts: cfg.Feeds.RetryAttempts,
	}, logger)
	espnClient := espn.New(cfg.Feeds.ESPNBaseURL, cfg.Feeds.Timeout, cfg.Feeds.RetryAttempts, logger)

	// Live push
	h := hub.NewHub(logger)
	go h.Run(ctx)

	sinks := []schedule.Sink{h}

	// Optional Redis mirror
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = newRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Str("url", cfg.Redis.URL).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		logger.Info().Str("url", cfg.Redis.URL).Msg("connected to redis")

		sinks = append(sinks, cache.NewRedisWriter(redisClient))
	}

	pub := newPublisher(cfg.Publisher, redisClient, logger)
	defer pub.Close()
	sinks = append(sinks, pub)

	svc := schedule.NewService(oddsClient, espnClient, leagues, schedule.Config{
		Books:       cfg.Schedule.Bookmakers,
		PrimaryBook: cfg.Schedule.PrimaryBook,
		TTL:         cfg.Schedule.CacheTTL,
		Location:    loc,
	}, logger, sinks...)

	// Pollers keep today's board warm
	orch := poller.NewOrchestrator(leagues, svc, cfg.Schedule.PollInterval, logger)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		orch.Start(ctx)
	}()

	// HTTP
	handler := handlers.NewHandler(svc, leagues, logger)
	ws := handlers.NewWebSocketHandler(ctx, h, cfg.Server.CORSOrigins, logger)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handlers.NewRouter(handler, ws, cfg.Server.CORSOrigins, logger),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down gracefully...")

	// Cancel context to stop pollers, hub and websocket clients
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	wg.Wait()

	if q := oddsClient.Quota(); !q.UpdatedAt.IsZero() {
		logger.Info().Int("remaining", q.Remaining).Int("used", q.Used).Msg("odds API quota")
	}
	logger.Info().Msg("shutdown complete")
}

// newRedisClient accepts either a redis:// URL or a bare host:port
func newRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts := &redis.Options{Addr: cfg.URL, Password: cfg.Password}
	if strings.Contains(cfg.URL, "://") {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, err
		}
		if cfg.Password != "" {
			parsed.Password = cfg.Password
		}
		opts = parsed
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func newPublisher(cfg config.PublisherConfig, redisClient *redis.Client, logger zerolog.Logger) publisher.Publisher {
	switch cfg.Kind {
	case "redis":
		logger.Info().Msg("publishing schedule updates to redis streams")
		return publisher.NewStreamPublisher(redisClient)
	case "kafka":
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing schedule updates to kafka")
		return publisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	default:
		return publisher.Noop{}
	}
}
