package history

import (
	"context"
	"errors"
	"time"

	"github.com/quantterm/backend/internal/market"
	"github.com/quantterm/backend/internal/series"
	"github.com/quantterm/backend/pkg/logger"
	"github.com/quantterm/backend/pkg/redis"
)

// Service resolves daily series through (in order) the Redis cache, the
// market's upstream provider, and the archive fallback. Each query gets
// its own immutable snapshot; the cache is pure memoization with no write
// path other than fetch-on-miss.
type Service struct {
	providers map[market.Market]Provider
	cache     *redis.Cache
	cacheTTL  time.Duration
	repo      *Repo // nil when no archive is configured
	logger    *logger.Logger
}

// NewService creates a history service. cache may be backed by a disabled
// Redis client and repo may be nil; both degrade to direct fetching.
func NewService(providers map[market.Market]Provider, cache *redis.Cache, cacheTTL time.Duration, repo *Repo, log *logger.Logger) *Service {
	return &Service{
		providers: providers,
		cache:     cache,
		cacheTTL:  cacheTTL,
		repo:      repo,
		logger:    log,
	}
}

// Daily returns the daily close series for (market, symbol) over
// [from, to]. Returns ErrUnavailable when neither upstream nor archive
// can serve the range.
func (s *Service) Daily(ctx context.Context, mkt market.Market, symbol string, from, to time.Time) (series.Series, error) {
	provider, ok := s.providers[mkt]
	if !ok {
		return series.Series{}, ErrUnavailable
	}

	key := redis.SeriesKey(string(mkt), symbol, from, to)

	var cached []series.Observation
	if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
		s.logger.WithField("key", key).Debug("Series cache hit")
		return series.New(cached), nil
	}

	fetched, err := provider.FetchDaily(ctx, symbol, from, to)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return s.fromArchive(ctx, mkt, symbol, from, to)
		}
		return series.Series{}, err
	}

	// Cache/archive writes are best effort; a query never fails because
	// memoization did.
	if err := s.cache.Set(ctx, key, fetched.Observations(), s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("Series cache write failed")
	}
	if s.repo != nil {
		if err := s.repo.SaveSeries(ctx, string(mkt), symbol, fetched); err != nil {
			s.logger.WithError(err).Warn("Price archive write failed")
		}
	}

	return fetched, nil
}

// fromArchive serves a range from the archive when the upstream is down.
func (s *Service) fromArchive(ctx context.Context, mkt market.Market, symbol string, from, to time.Time) (series.Series, error) {
	if s.repo == nil {
		return series.Series{}, ErrUnavailable
	}

	archived, err := s.repo.GetRange(ctx, string(mkt), symbol, from, to)
	if err != nil || archived.Empty() {
		return series.Series{}, ErrUnavailable
	}

	s.logger.WithFields(map[string]interface{}{
		"market": mkt,
		"symbol": symbol,
		"count":  archived.Len(),
	}).Info("Serving series from price archive")
	return archived, nil
}

// YearRange returns the fetch window for a basic query year: January 1st
// through December 31st.
func YearRange(year int) (time.Time, time.Time) {
	return series.Date(year, time.January, 1), series.Date(year, time.December, 31)
}

// BacktestRange returns the fetch window for a backtest year. December
// trades settle in the following year, so the window extends to March 1st
// of year+1, matching the sell anchor's reach.
func BacktestRange(year int) (time.Time, time.Time) {
	return series.Date(year, time.January, 1), series.Date(year+1, time.March, 1)
}
