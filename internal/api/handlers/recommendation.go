package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/wonny/stockreco/internal/brain"
	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/internal/strategyconfig"
	"github.com/wonny/stockreco/pkg/logger"
	"github.com/wonny/stockreco/pkg/redis"
)

// Runner executes one pipeline run
type Runner interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// Cache is the read-through cache for recommendation lists
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Limiter throttles manual run triggers
type Limiter interface {
	Allow(ctx context.Context, cfg redis.RateLimitConfig) (bool, int, error)
}

// RecommendationHandler serves persisted recommendations and manual runs
// ⭐ SSOT: 추천 API 핸들러는 이 구조체에서만
type RecommendationHandler struct {
	store    contracts.RecommendationStore
	runner   Runner
	strategy *strategyconfig.Config
	cache    Cache   // optional
	limiter  Limiter // optional
	location *time.Location
	logger   *logger.Logger
}

// NewRecommendationHandler creates a new recommendation handler
func NewRecommendationHandler(
	store contracts.RecommendationStore,
	runner Runner,
	strategy *strategyconfig.Config,
	log *logger.Logger,
) *RecommendationHandler {
	return &RecommendationHandler{
		store:    store,
		runner:   runner,
		strategy: strategy,
		location: time.UTC,
		logger:   log,
	}
}

// WithCache enables the list cache
func (h *RecommendationHandler) WithCache(c Cache) *RecommendationHandler {
	h.cache = c
	return h
}

// WithLimiter enables run trigger throttling
func (h *RecommendationHandler) WithLimiter(l Limiter) *RecommendationHandler {
	h.limiter = l
	return h
}

// WithLocation sets the market timezone used when a run has no date
func (h *RecommendationHandler) WithLocation(loc *time.Location) *RecommendationHandler {
	if loc != nil {
		h.location = loc
	}
	return h
}

// RecommendationList is the response of GET /api/recommendations
type RecommendationList struct {
	AsOf            *time.Time                 `json:"as_of"`
	Count           int                        `json:"count"`
	Recommendations []contracts.Recommendation `json:"recommendations"`
}

// List returns the recommendations of a date (latest when omitted)
// GET /api/recommendations?date=YYYY-MM-DD
func (h *RecommendationHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	asOf, ok, err := parseDate(r, "date")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)")
		return
	}
	if !ok {
		asOf, err = h.store.LatestAsOf(ctx)
		if err != nil {
			h.logger.WithError(err).Error("Failed to get latest recommendation date")
			respondError(w, statusFor(err), "Failed to retrieve recommendations")
			return
		}
		if asOf.IsZero() {
			respondJSON(w, http.StatusOK, RecommendationList{Recommendations: []contracts.Recommendation{}})
			return
		}
	}

	recs, err := h.list(ctx, asOf)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list recommendations")
		respondError(w, statusFor(err), "Failed to retrieve recommendations")
		return
	}

	respondJSON(w, http.StatusOK, RecommendationList{
		AsOf:            &asOf,
		Count:           len(recs),
		Recommendations: recs,
	})
}

// list reads through the cache; cache failures fall back to the store
func (h *RecommendationHandler) list(ctx context.Context, asOf time.Time) ([]contracts.Recommendation, error) {
	key := redis.RecommendationsKey(asOf)

	if h.cache != nil {
		var cached []contracts.Recommendation
		hit, err := h.cache.Get(ctx, key, &cached)
		if err != nil {
			h.logger.WithError(err).Warn("Recommendation cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	recs, err := h.store.List(ctx, asOf)
	if err != nil {
		return nil, err
	}
	if recs == nil {
		recs = []contracts.Recommendation{}
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, recs, redis.TTLMedium); err != nil {
			h.logger.WithError(err).Warn("Recommendation cache write failed")
		}
	}
	return recs, nil
}

// RunRequest is the body of POST /api/recommendations/run
type RunRequest struct {
	Date   string `json:"date"`    // Optional: YYYY-MM-DD (default: today in market TZ)
	DryRun bool   `json:"dry_run"` // If true, skip persistence
}

// RunResponse is the response of a manual run
type RunResponse struct {
	RunID      string                `json:"run_id"`
	AsOf       time.Time             `json:"as_of"`
	Persisted  bool                  `json:"persisted"`
	Stages     []string              `json:"stages"`
	DurationMs int64                 `json:"duration_ms"`
	Summary    *contracts.RunSummary `json:"summary"`
}

// Run triggers a pipeline run
// POST /api/recommendations/run
func (h *RecommendationHandler) Run(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	date := time.Now().In(h.location)
	if req.Date != "" {
		parsed, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)")
			return
		}
		date = parsed
	}

	if h.limiter != nil {
		allowed, _, err := h.limiter.Allow(ctx, redis.RunTriggerRateLimit)
		if err != nil {
			h.logger.WithError(err).Warn("Run rate limiter unavailable, allowing request")
		} else if !allowed {
			respondError(w, http.StatusTooManyRequests, "Too many run requests")
			return
		}
	}

	result, err := h.runner.Run(ctx, brain.RunConfig{
		Date:     date,
		Strategy: h.strategy,
		DryRun:   req.DryRun,
	})
	if err != nil {
		h.logger.WithError(err).Error("Manual run failed")
		respondError(w, statusFor(err), err.Error())
		return
	}

	if result.Persisted && h.cache != nil {
		if err := h.cache.Delete(ctx, redis.RecommendationsKey(result.Date)); err != nil {
			h.logger.WithError(err).Warn("Recommendation cache invalidation failed")
		}
	}

	respondJSON(w, http.StatusOK, RunResponse{
		RunID:      result.RunID,
		AsOf:       result.Date,
		Persisted:  result.Persisted,
		Stages:     result.CompletedStages,
		DurationMs: result.Duration.Milliseconds(),
		Summary:    result.Summary,
	})
}
