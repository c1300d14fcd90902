package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/stockreco/internal/brain"
	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/internal/scheduler"
	"github.com/wonny/stockreco/internal/strategyconfig"
	"github.com/wonny/stockreco/pkg/logger"
	"github.com/wonny/stockreco/pkg/redis"
)

// DefaultRecommendationSchedule runs on weekdays after the close
const DefaultRecommendationSchedule = "0 30 18 * * 1-5"

// Runner executes one pipeline run
type Runner interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// CacheInvalidator drops cached API responses (*redis.Cache)
type CacheInvalidator interface {
	Delete(ctx context.Context, key string) error
}

// RecommendationJob generates the daily recommendations
// ⭐ SSOT: 일일 추천 생성 스케줄은 이 Job에서만
type RecommendationJob struct {
	runner   Runner
	strategy *strategyconfig.Config
	schedule string
	location *time.Location
	cache    CacheInvalidator // optional
	now      func() time.Time
	logger   *logger.Logger
}

// NewRecommendationJob creates a new recommendation job
// 빈 schedule 은 기본값, nil location 은 UTC
func NewRecommendationJob(runner Runner, strategy *strategyconfig.Config, schedule string, loc *time.Location, log *logger.Logger) *RecommendationJob {
	if schedule == "" {
		schedule = DefaultRecommendationSchedule
	}
	if loc == nil {
		loc = time.UTC
	}
	return &RecommendationJob{
		runner:   runner,
		strategy: strategy,
		schedule: schedule,
		location: loc,
		now:      time.Now,
		logger:   log,
	}
}

// WithCache invalidates the cached list of a date after the job persists it
func (j *RecommendationJob) WithCache(cache CacheInvalidator) *RecommendationJob {
	j.cache = cache
	return j
}

// Name returns the job name
func (j *RecommendationJob) Name() string {
	return "daily_recommendation"
}

// Schedule returns the cron schedule
func (j *RecommendationJob) Schedule() string {
	return j.schedule
}

// Run generates recommendations for today's date in the market timezone
func (j *RecommendationJob) Run(ctx context.Context) error {
	today := j.now().In(j.location)
	date := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	j.logger.WithFields(map[string]interface{}{
		"date": date.Format("2006-01-02"),
	}).Info("Starting scheduled recommendation run")

	result, err := j.runner.Run(ctx, brain.RunConfig{
		Date:     date,
		Strategy: j.strategy,
	})
	if err != nil {
		// 설정 오류는 재시도해도 같은 결과
		if contracts.IsConfigurationError(err) {
			return scheduler.Permanent(err)
		}
		return fmt.Errorf("recommendation run: %w", err)
	}

	if result.Persisted && j.cache != nil {
		if err := j.cache.Delete(ctx, redis.RecommendationsKey(result.Date)); err != nil {
			// 캐시는 TTL 후 만료되므로 작업 실패로 보지 않음
			j.logger.WithError(err).Warn("Recommendation cache invalidation failed")
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":          result.RunID,
		"recommendations": len(result.Summary.Recommendations),
		"errors":          result.Summary.ErrorCount(),
	}).Info("Scheduled recommendation run completed")

	return nil
}
