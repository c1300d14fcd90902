package forecast

import (
	"context"
	"time"

	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/pkg/logger"
	"github.com/wonny/stockreco/pkg/redis"
)

// Cache is the subset of redis.Cache used by CachedPredictor
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

var _ Cache = (*redis.Cache)(nil)

// cachedPrediction also records "no opinion" so misses are not re-requested
type cachedPrediction struct {
	Value float64 `json:"value"`
	OK    bool    `json:"ok"`
}

// CachedPredictor memoizes another Predictor per (symbol, date)
// 캐시 장애는 무시하고 원본 예측기로 진행
type CachedPredictor struct {
	next   contracts.Predictor
	cache  Cache
	ttl    time.Duration
	logger *logger.Logger
}

var _ contracts.Predictor = (*CachedPredictor)(nil)

// NewCachedPredictor wraps next with cache; ttl <= 0 means redis.TTLDaily
func NewCachedPredictor(next contracts.Predictor, cache Cache, ttl time.Duration, log *logger.Logger) *CachedPredictor {
	if ttl <= 0 {
		ttl = redis.TTLDaily
	}
	return &CachedPredictor{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: log,
	}
}

// Predict returns the cached value or asks the wrapped predictor
func (c *CachedPredictor) Predict(ctx context.Context, symbol string, asOf time.Time) (float64, bool, error) {
	key := redis.PredictionKey(symbol, asOf)

	var cached cachedPrediction
	found, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.logger.WithFields(map[string]interface{}{
			"key": key,
		}).WithError(err).Warn("Prediction cache read failed")
	}
	if found {
		return cached.Value, cached.OK, nil
	}

	value, ok, err := c.next.Predict(ctx, symbol, asOf)
	if err != nil {
		// 오류는 캐시하지 않는다 (다음 실행에서 재시도)
		return 0, false, err
	}

	if err := c.cache.Set(ctx, key, cachedPrediction{Value: value, OK: ok}, c.ttl); err != nil {
		c.logger.WithFields(map[string]interface{}{
			"key": key,
		}).WithError(err).Warn("Prediction cache write failed")
	}
	return value, ok, nil
}
