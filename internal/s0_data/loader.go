package s0_data

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/pkg/logger"
)

// Loader reads the time window of every symbol from a HistoryStore
// ⭐ SSOT: S0 이력 로드 (I/O 경계)
type Loader struct {
	store       contracts.HistoryStore
	concurrency int
	logger      *logger.Logger
}

// NewLoader creates a new loader; concurrency <= 0 means 8 parallel queries
func NewLoader(store contracts.HistoryStore, concurrency int, log *logger.Logger) *Loader {
	if concurrency <= 0 {
		concurrency = 8
	}
	return &Loader{
		store:       store,
		concurrency: concurrency,
		logger:      log,
	}
}

// Load returns one series per symbol, ordered by symbol
// 저장소 오류는 실행 전체 실패 (StoreUnavailableError)
func (l *Loader) Load(ctx context.Context, asOf time.Time, windowDays int) ([]contracts.HistorySeries, error) {
	start := time.Now()

	symbols, err := l.store.Symbols(ctx, asOf)
	if err != nil {
		return nil, asStoreError("symbols", err)
	}

	from := contracts.WindowStart(asOf, windowDays)
	series := make([]contracts.HistorySeries, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			points, err := l.store.History(gctx, symbol, from, asOf)
			if err != nil {
				return asStoreError("history "+symbol, err)
			}
			series[i] = contracts.HistorySeries{Symbol: symbol, Points: points}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.WithFields(map[string]interface{}{
		"date":        asOf.Format("2006-01-02"),
		"window_days": windowDays,
		"symbols":     len(series),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("History loaded")

	return series, nil
}

// asStoreError keeps StoreUnavailableError as is and wraps anything else
func asStoreError(op string, err error) error {
	if contracts.IsStoreUnavailable(err) {
		return fmt.Errorf("load %s: %w", op, err)
	}
	return &contracts.StoreUnavailableError{Store: "history", Op: op, Err: err}
}
