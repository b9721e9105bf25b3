package commands

import (
	"fmt"

	"github.com/quantterm/backend/internal/external/eastmoney"
	"github.com/quantterm/backend/internal/external/yahoo"
	"github.com/quantterm/backend/internal/history"
	"github.com/quantterm/backend/internal/market"
	"github.com/quantterm/backend/pkg/config"
	"github.com/quantterm/backend/pkg/database"
	"github.com/quantterm/backend/pkg/httputil"
	"github.com/quantterm/backend/pkg/logger"
	"github.com/quantterm/backend/pkg/redis"
)

// buildHistory wires the provider chain the one-shot commands share:
// cache, upstream clients and the optional archive. The returned cleanup
// closes whatever was opened.
func buildHistory(cfg *config.Config, log *logger.Logger) (*history.Service, func(), error) {
	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	cleanup := func() { redisClient.Close() }

	cache := redis.NewCache(redisClient, "quantterm")

	var repo *history.Repo
	if cfg.HasDatabase() {
		db, err := database.New(cfg)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		repo = history.NewRepo(db.Pool)
		closeRedis := cleanup
		cleanup = func() {
			db.Close()
			closeRedis()
		}
	}

	emHTTP := httputil.New(log).WithRateLimit(cfg.Eastmoney.RatePerSec)
	yhHTTP := httputil.New(log).WithRateLimit(cfg.Yahoo.RatePerSec)

	providers := map[market.Market]history.Provider{
		market.CN:     eastmoney.NewClient(emHTTP, log, cfg.Eastmoney.BaseURL),
		market.Global: yahoo.NewClient(yhHTTP, log, cfg.Yahoo.BaseURL),
	}

	return history.NewService(providers, cache, cfg.SeriesCacheTTL, repo, log), cleanup, nil
}
