package forecast

import (
	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/pkg/config"
	"github.com/wonny/stockreco/pkg/httputil"
	"github.com/wonny/stockreco/pkg/logger"
	"github.com/wonny/stockreco/pkg/redis"
)

// NewFromConfig assembles the predictor chain from process settings
// PREDICTOR_URL 미설정 시 nil (외부 팩터는 항상 unavailable)
//
//	CachedPredictor (Redis 활성 시) → HTTPPredictor → httputil.Client (retry, rate limit)
func NewFromConfig(cfg *config.Config, rc *redis.Client, log *logger.Logger) contracts.Predictor {
	if !cfg.Predictor.Enabled() {
		return nil
	}

	client := httputil.NewWithTimeout(log, cfg.Predictor.Timeout).
		WithRetry(cfg.Predictor.MaxRetries, httputil.DefaultRetryDelay).
		WithLocalRateLimit(cfg.Predictor.RequestsPerSec, 1)

	var predictor contracts.Predictor = NewHTTPPredictor(cfg.Predictor.URL, client, log.WithComponent("predictor"))

	if rc != nil && rc.Enabled() {
		client.WithRateLimiter(redis.NewRateLimiter(rc, "stockreco"), redis.PredictorRateLimit)
		predictor = NewCachedPredictor(predictor, redis.NewCache(rc, "stockreco"), cfg.Predictor.CacheTTL, log)
	}

	log.WithFields(map[string]interface{}{
		"url":    cfg.Predictor.URL,
		"rps":    cfg.Predictor.RequestsPerSec,
		"cached": rc != nil && rc.Enabled(),
	}).Info("Predictor configured")

	return predictor
}
