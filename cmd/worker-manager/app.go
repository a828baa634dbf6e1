package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tender-matching/internal/common/config"
	"tender-matching/internal/common/database"
	"tender-matching/internal/common/logger"
	"tender-matching/internal/matching"
	"tender-matching/internal/store"
)

// application holds what every subcommand needs: config, logger and the
// connections it opened, closed in reverse order.
type application struct {
	cfg     *config.Config
	zapLog  *zap.Logger
	log     logger.Logger
	closers []func() error
}

func newApplication() (*application, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	zapLog, err := logger.New(level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}

	return &application{
		cfg:    cfg,
		zapLog: zapLog,
		log:    logger.NewZapAdapter(zapLog),
	}, nil
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.LoadFromFile(cfgFile)
	}
	return config.Load()
}

func (a *application) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("Close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	_ = a.zapLog.Sync()
}

func (a *application) connectPostgres(ctx context.Context, attempts int) (*database.PostgresClient, error) {
	var pg *database.PostgresClient
	err := database.RetryWithBackoff(ctx, func(ctx context.Context) error {
		var err error
		if pg, err = database.NewPostgres(a.cfg.Database.Postgres); err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			_ = pg.Close()
			return err
		}
		return nil
	}, attempts, 2*time.Second, a.log, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	a.onClose(pg.Close)
	a.log.Info("PostgreSQL connected", nil)
	return pg, nil
}

func (a *application) connectRedis(ctx context.Context, attempts int) (*database.RedisClient, error) {
	rdb := database.NewRedis(a.cfg.Database.Redis)
	if err := database.RetryWithBackoff(ctx, rdb.Ping, attempts, 2*time.Second, a.log, "Redis connection"); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	a.onClose(rdb.Close)
	a.log.Info("Redis connected", nil)
	return rdb, nil
}

func (a *application) connectElasticsearch(ctx context.Context, attempts int) (*database.ElasticsearchClient, error) {
	es, err := database.NewElasticsearch(a.cfg.Database.Elasticsearch)
	if err != nil {
		return nil, err
	}
	if err := database.RetryWithBackoff(ctx, es.Ping, attempts, 2*time.Second, a.log, "Elasticsearch connection"); err != nil {
		return nil, err
	}
	a.log.Info("Elasticsearch connected", nil)
	return es, nil
}

func matchingOptions(cfg config.MatchingConfig) matching.Options {
	toWeights := func(w config.WeightsConfig) matching.Weights {
		return matching.Weights{
			Skills:       w.Skills,
			Proximity:    w.Proximity,
			Reliability:  w.Reliability,
			Availability: w.Availability,
		}
	}
	return matching.Options{
		DefaultLimit:       cfg.DefaultLimit,
		PoolCapMode:        matching.PoolCapMode(cfg.PoolCapMode),
		FallbackDistanceKm: cfg.FallbackDistanceKm,
		ClampScores:        cfg.ClampScores,
		TenderToContractor: toWeights(cfg.Weights.TenderToContractor),
		ContractorToTender: toWeights(cfg.Weights.ContractorToTender),
	}
}

// scoreStore is a matching store that can also persist bid scores.
type scoreStore interface {
	matching.Store
	store.BidScoreWriter
}

// newStore wraps Postgres in the Redis read-through cache when rdb is set and
// matching.cache_ttl is positive.
func (a *application) newStore(pg *database.PostgresClient, rdb *database.RedisClient) scoreStore {
	base := store.NewPostgres(pg.DB)
	ttl := a.cfg.Matching.CacheTTLDuration()
	if rdb == nil || ttl <= 0 {
		return base
	}
	a.log.Info("Store cache enabled", map[string]interface{}{"ttl": ttl.String()})
	return store.NewCached(base, rdb.Client, ttl, a.log)
}

// offlineEngine connects to Postgres only and builds the engine for one-shot commands.
func (a *application) offlineEngine(cmd *cobra.Command) (*matching.Ranker, *matching.StatsAggregator, error) {
	pg, err := a.connectPostgres(cmd.Context(), 1)
	if err != nil {
		return nil, nil, err
	}
	st := a.newStore(pg, nil)
	return matching.NewRanker(st, matchingOptions(a.cfg.Matching), a.log), matching.NewStatsAggregator(st, a.log), nil
}
