package brain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/internal/metrics"
	"github.com/wonny/stockreco/internal/s0_data"
	"github.com/wonny/stockreco/internal/strategyconfig"
	"github.com/wonny/stockreco/pkg/logger"
)

// predictorConcurrency limits parallel predictor calls
const predictorConcurrency = 8

// RunPublisher receives an event after every run
type RunPublisher interface {
	Publish(event contracts.RunEvent)
}

// Orchestrator coordinates the pipeline and its I/O boundaries
// ⭐ SSOT: 파이프라인 조율은 여기서만
// I/O 는 엔진 실행 전(이력, 예측)과 후(저장)에만 발생
type Orchestrator struct {
	loader    *s0_data.Loader
	store     contracts.RecommendationStore
	predictor contracts.Predictor // optional
	engine    *Engine
	publisher RunPublisher      // optional
	metrics   *metrics.Recorder // optional

	logger *logger.Logger
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	Date     time.Time
	RunID    string
	Strategy *strategyconfig.Config
	DryRun   bool // If true, skip the persist stage
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID           string
	Date            time.Time
	Success         bool
	Persisted       bool
	Error           error
	CompletedStages []string
	Summary         *contracts.RunSummary
	Duration        time.Duration
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	loader *s0_data.Loader,
	store contracts.RecommendationStore,
	engine *Engine,
	logger *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		loader: loader,
		store:  store,
		engine: engine,
		logger: logger,
	}
}

// WithPredictor enables the external signal source
func (o *Orchestrator) WithPredictor(p contracts.Predictor) *Orchestrator {
	o.predictor = p
	return o
}

// WithPublisher sets the run event publisher
func (o *Orchestrator) WithPublisher(p RunPublisher) *Orchestrator {
	o.publisher = p
	return o
}

// WithMetrics sets the metrics recorder
func (o *Orchestrator) WithMetrics(m *metrics.Recorder) *Orchestrator {
	o.metrics = m
	return o
}

// Run executes the complete pipeline
// S0 → S1 → S2 → S3 → S4 → S5 → S6
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()

	if config.RunID == "" {
		config.RunID = GenerateRunID()
	}
	asOf := contracts.AsOfDate(config.Date)

	result := &RunResult{
		RunID:           config.RunID,
		Date:            asOf,
		CompletedStages: make([]string, 0, len(contracts.AllStages())),
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":  config.RunID,
		"date":    asOf.Format("2006-01-02"),
		"dry_run": config.DryRun,
	}).Info("Starting pipeline run")

	err := o.run(ctx, config, asOf, result)
	result.Duration = time.Since(startTime)
	o.finish(result, err)
	if err != nil {
		result.Error = err
		return result, err
	}
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, config RunConfig, asOf time.Time, result *RunResult) error {
	cfg := config.Strategy
	if cfg == nil {
		return &contracts.ConfigurationError{Field: "config", Message: "missing"}
	}

	// 설정 오류는 I/O 전에 실패
	if err := strategyconfig.Validate(cfg); err != nil {
		return err
	}
	for _, w := range strategyconfig.Warn(cfg) {
		o.logger.WithFields(map[string]interface{}{
			"code": w.Code,
		}).Warn(w.Message)
	}

	// S0: 이력 로드
	series, err := o.loader.Load(ctx, asOf, cfg.Universe.TimeWindowDays)
	if err != nil {
		return fmt.Errorf("S0 failed: %w", err)
	}

	external, err := o.fetchExternal(ctx, asOf, cfg, series)
	if err != nil {
		return fmt.Errorf("predictor: %w", err)
	}

	// S0 ~ S5: 엔진 (순수 계산)
	summary, err := o.engine.Run(Input{AsOf: asOf, Series: series, External: external}, cfg)
	if err != nil {
		return err
	}
	result.Summary = summary
	for _, stage := range contracts.AllStages()[:6] {
		result.CompletedStages = append(result.CompletedStages, stage.ShortName()+":"+stage.Description())
	}
	o.observeStages(summary)

	// S6: 저장 (all-or-nothing)
	if config.DryRun {
		o.logger.Info("Dry run: skipping persist stage")
		return nil
	}
	if err := o.store.Replace(ctx, asOf, summary.Recommendations); err != nil {
		if !contracts.IsStoreUnavailable(err) {
			err = &contracts.StoreUnavailableError{Store: "recommendation", Op: "replace", Err: err}
		}
		return fmt.Errorf("S6 failed: %w", err)
	}
	result.Persisted = true
	result.CompletedStages = append(result.CompletedStages,
		contracts.StagePersist.ShortName()+":"+contracts.StagePersist.Description())

	return nil
}

// fetchExternal asks the predictor for every symbol with history
// 종목 단위 예측 실패는 외부 팩터 unavailable 로 처리 (실행은 계속)
func (o *Orchestrator) fetchExternal(ctx context.Context, asOf time.Time, cfg *strategyconfig.Config, series []contracts.HistorySeries) (map[string]float64, error) {
	if o.predictor == nil || !cfg.Scoring.UsePredictor {
		return nil, nil
	}

	var mu sync.Mutex
	external := make(map[string]float64, len(series))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(predictorConcurrency)
	for _, s := range series {
		if s.IsEmpty() {
			continue
		}
		symbol := s.Symbol
		g.Go(func() error {
			v, ok, err := o.predictor.Predict(gctx, symbol, asOf)
			switch {
			case err != nil:
				o.metrics.ObservePredictor("error")
				o.logger.WithFields(map[string]interface{}{
					"symbol": symbol,
				}).WithError(err).Warn("Predictor failed, external factor unavailable")
				return nil
			case !ok:
				o.metrics.ObservePredictor("miss")
				return nil
			}
			o.metrics.ObservePredictor("hit")
			mu.Lock()
			external[symbol] = v
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.logger.WithFields(map[string]interface{}{
		"requested": len(series),
		"received":  len(external),
	}).Info("External signals fetched")

	return external, nil
}

func (o *Orchestrator) observeStages(summary *contracts.RunSummary) {
	o.metrics.ObserveStage(contracts.StageDataQuality.ShortName(), summary.Evaluated)
	o.metrics.ObserveStage(contracts.StageUniverse.ShortName(), summary.UniverseCount)
	o.metrics.ObserveStage(contracts.StageScorer.ShortName(), summary.ScoredCount)
	o.metrics.ObserveStage(contracts.StageRanker.ShortName(), len(summary.Recommendations))
	for kind, n := range summary.ErrorKinds {
		o.metrics.ObserveSymbolErrors(kind, n)
	}
}

// finish logs, records metrics and publishes the run event
func (o *Orchestrator) finish(result *RunResult, err error) {
	result.Success = err == nil

	status := "success"
	if err != nil {
		status = "failed"
	}
	o.metrics.ObserveRun(status, result.Duration)

	event := contracts.RunEvent{
		RunID:      result.RunID,
		AsOf:       result.Date,
		Success:    result.Success,
		Persisted:  result.Persisted,
		DurationMs: result.Duration.Milliseconds(),
	}

	if err != nil {
		event.Error = err.Error()
		o.logger.WithFields(map[string]interface{}{
			"run_id":   result.RunID,
			"duration": result.Duration.String(),
			"stages":   len(result.CompletedStages),
		}).WithError(err).Error("Pipeline run failed")
	} else {
		event.Recommendations = len(result.Summary.Recommendations)
		event.Symbols = result.Summary.Symbols()
		if result.Persisted {
			o.metrics.SetRecommendations(event.Recommendations)
		}
		o.logger.WithFields(map[string]interface{}{
			"run_id":          result.RunID,
			"duration":        result.Duration.String(),
			"stages":          len(result.CompletedStages),
			"recommendations": event.Recommendations,
			"persisted":       result.Persisted,
		}).Info("Pipeline run completed")
	}

	if o.publisher != nil {
		o.publisher.Publish(event)
	}
}

// GenerateRunID generates a unique run ID
// 같은 초에 시작한 스케줄/API 실행도 구분되어야 함
func GenerateRunID() string {
	return "run_" + uuid.NewString()
}
