package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/wonny/stockreco/internal/brain"
	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/internal/forecast"
	"github.com/wonny/stockreco/internal/metrics"
	"github.com/wonny/stockreco/internal/s0_data"
	"github.com/wonny/stockreco/internal/selection"
	"github.com/wonny/stockreco/internal/strategyconfig"
	"github.com/wonny/stockreco/pkg/config"
	"github.com/wonny/stockreco/pkg/database"
	"github.com/wonny/stockreco/pkg/logger"
	"github.com/wonny/stockreco/pkg/redis"
)

const (
	dateLayout        = "2006-01-02"
	loaderConcurrency = 8
)

// app holds the process-wide dependencies of one command
// ⭐ SSOT: 명령어 의존성 조립은 여기서만
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB // CSV 모드에서는 nil
	redis   *redis.Client
	history contracts.HistoryStore
	recs    contracts.RecommendationStore // CSV 모드에서는 nil
	metrics *metrics.Recorder
}

// appOptions selects the history source
type appOptions struct {
	csvPath string // 비어 있으면 PostgreSQL
}

// newApp loads config and connects the stores
// 로그는 stderr 로 보내 표 출력과 섞이지 않게 한다
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	offline := opts.csvPath != ""

	var cfg *config.Config
	var err error
	if offline {
		cfg, err = config.LoadOffline()
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	a := &app{
		cfg:     cfg,
		log:     logger.NewWithWriter(os.Stderr, cfg),
		metrics: metrics.NewRecorder(),
	}

	rc, err := redis.New(ctx, cfg)
	if err != nil {
		a.log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rc = redis.Wrap(nil)
	}
	a.redis = rc

	if offline {
		f, err := os.Open(opts.csvPath)
		if err != nil {
			return nil, fmt.Errorf("open csv: %w", err)
		}
		defer f.Close()

		store, err := s0_data.LoadCSV(f)
		if err != nil {
			return nil, err
		}
		a.history = store
		return a, nil
	}

	db, err := database.New(ctx, cfg)
	if err != nil {
		return nil, &contracts.StoreUnavailableError{Store: "database", Op: "connect", Err: err}
	}
	a.db = db
	a.history = s0_data.NewHistoryRepository(db.Pool)
	a.recs = selection.NewRepository(db.Pool)

	return a, nil
}

// Close releases the connections
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// offline reports whether results cannot be persisted
func (a *app) offline() bool {
	return a.recs == nil
}

// location returns the market timezone (validated by config.Load)
func (a *app) location() *time.Location {
	loc, err := time.LoadLocation(a.cfg.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// orchestrator wires the pipeline with the optional predictor
func (a *app) orchestrator(publisher brain.RunPublisher) *brain.Orchestrator {
	orch := brain.NewOrchestrator(
		s0_data.NewLoader(a.history, loaderConcurrency, a.log),
		a.recs,
		brain.NewEngine(a.log),
		a.log,
	).WithMetrics(a.metrics)

	if p := forecast.NewFromConfig(a.cfg, a.redis, a.log); p != nil {
		orch.WithPredictor(p)
	}
	if publisher != nil {
		orch.WithPublisher(publisher)
	}
	return orch
}

// strategy loads --strategy or STRATEGY_PATH
// 기본 경로에 파일이 없으면 기본 설정 사용 (명시한 경로는 반드시 존재해야 함)
func (a *app) strategy() (*strategyconfig.Config, error) {
	path := strategyPath
	explicit := path != ""
	if !explicit {
		path = a.cfg.StrategyPath
	}

	cfg, _, err := strategyconfig.Load(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			a.log.WithFields(map[string]interface{}{"path": path}).Warn("Strategy file not found, using defaults")
			return strategyconfig.Default(), nil
		}
		return nil, err
	}

	a.log.WithFields(map[string]interface{}{
		"path":        path,
		"strategy_id": cfg.Meta.StrategyID,
	}).Debug("Strategy loaded")
	return cfg, nil
}

// parseDate parses YYYY-MM-DD; empty means today in loc
func parseDate(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format %q (use YYYY-MM-DD): %w", value, err)
	}
	return t, nil
}
