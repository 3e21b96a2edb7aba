package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/smartslip/internal/analysis"
	"github.com/yourusername/smartslip/internal/config"
	"github.com/yourusername/smartslip/internal/database"
	"github.com/yourusername/smartslip/internal/feed"
	"github.com/yourusername/smartslip/internal/history"
	"github.com/yourusername/smartslip/internal/logger"
	"github.com/yourusername/smartslip/internal/metrics"
	"github.com/yourusername/smartslip/internal/models"
	"github.com/yourusername/smartslip/internal/repository"
)

// runtime holds every wired component of one process
type runtime struct {
	cfg      *config.Config
	logger   *logrus.Logger
	db       *database.DB
	redis    *redis.Client
	feed     *feed.Client
	cache    history.PriorCache
	analyzer *analysis.Analyzer
}

func loadConfigWithSecrets(ctx context.Context, path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildRuntime wires the engine. Offline mode skips the database and feed
// and scores every leg from its entry price alone.
func buildRuntime(ctx context.Context, cfg *config.Config, offline bool) (*runtime, error) {
	log := logger.NewLoggerForEnvironment(cfg.App.LogLevel, cfg.App.Environment)
	metrics.InitRegistry()

	rt := &runtime{cfg: cfg, logger: log}

	var (
		provider  repository.Provider = offlineProvider{}
		proposals repository.ProposalWriter
	)
	if !offline {
		db, err := database.Initialize(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		rt.db = db

		repos, err := repository.NewRepositories(db)
		if err != nil {
			rt.Close()
			return nil, err
		}
		provider = repos.Provider
		proposals = repos.Proposals

		if cfg.Feed.Enabled {
			client, err := feed.NewClient(cfg.Feed, log)
			if err != nil {
				rt.Close()
				return nil, err
			}
			rt.feed = client
			provider = repository.WithQuotes(provider, client)
		}
	}
	guarded := repository.NewGuarded(provider, cfg.Provider)

	rt.cache = rt.buildCache()
	hist := history.NewService(guarded, rt.cache, history.SystemClock{}, log)

	analyzer, err := analysis.NewAnalyzer(cfg.Engine, guarded, hist, proposals, history.SystemClock{}, log)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.analyzer = analyzer
	return rt, nil
}

func (rt *runtime) buildCache() history.PriorCache {
	h := rt.cfg.Engine.History
	if h.CacheBackend == "redis" {
		rt.redis = redis.NewClient(&redis.Options{
			Addr:     rt.cfg.Redis.Addr,
			Password: rt.cfg.Redis.Password,
			DB:       rt.cfg.Redis.DB,
		})
		return history.NewRedisCache(rt.redis, rt.cfg.Redis.KeyPrefix, h.CacheTTL(), rt.logger)
	}
	return history.NewMemoryCache(h.CacheTTL(), h.CacheMaxEntries, history.SystemClock{})
}

// Close releases every connection the runtime opened
func (rt *runtime) Close() {
	if rt.feed != nil {
		rt.feed.Close()
	}
	if rt.redis != nil {
		if err := rt.redis.Close(); err != nil {
			rt.logger.WithError(err).Warn("Failed to close redis client")
		}
	}
	if rt.db != nil {
		rt.db.Close()
	}
}

// offlineProvider has no data for any market
type offlineProvider struct{}

func (offlineProvider) QueryQuotes(ctx context.Context, gameKey string, market models.MarketType, book string, since *time.Time) ([]models.OddsQuote, error) {
	return nil, nil
}

func (offlineProvider) QueryResults(ctx context.Context, filter repository.ResultFilter) ([]models.ResultRow, error) {
	return nil, nil
}

func (offlineProvider) QueryClosingRecord(ctx context.Context, gameKey string, market models.MarketType, selection, book string) (*models.ClosingOddsRecord, error) {
	return nil, models.ErrNotFound
}
