package s1_universe

import (
	"fmt"
	"sort"
	"time"

	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/pkg/logger"
)

// Config holds universe filter criteria
type Config struct {
	MinTradingVolume float64 `yaml:"min_trading_volume"` // 최소 평균 거래량 (주)
}

// Selector filters symbols by liquidity
// ⭐ SSOT: S1 유니버스 필터는 여기서만
type Selector struct {
	config Config
	logger *logger.Logger
}

// NewSelector creates a new universe Selector
func NewSelector(config Config, log *logger.Logger) *Selector {
	return &Selector{
		config: config,
		logger: log,
	}
}

// Filter keeps the series whose average volume reaches the minimum
// 제외는 오류가 아니다. 사유만 기록한다.
func (s *Selector) Filter(asOf time.Time, series []contracts.HistorySeries) *contracts.Universe {
	universe := &contracts.Universe{
		Date:       asOf,
		Symbols:    make([]string, 0, len(series)),
		AvgVolume:  make(map[string]float64, len(series)),
		Excluded:   make(map[string]string),
		TotalCount: len(series),
	}

	for i := range series {
		h := &series[i]
		reason := s.checkExclusion(h)
		if reason != "" {
			universe.Excluded[h.Symbol] = reason
			s.logger.WithFields(map[string]interface{}{
				"symbol": h.Symbol,
				"reason": reason,
			}).Debug("Symbol excluded from universe")
			continue
		}
		universe.Symbols = append(universe.Symbols, h.Symbol)
		universe.AvgVolume[h.Symbol] = h.AverageVolume()
	}

	sort.Strings(universe.Symbols)

	s.logger.WithFields(map[string]interface{}{
		"date":     asOf.Format("2006-01-02"),
		"total":    universe.TotalCount,
		"passed":   universe.Count(),
		"excluded": len(universe.Excluded),
	}).Info("Universe selected")

	return universe
}

// checkExclusion returns the exclusion reason or "" when the series passes
func (s *Selector) checkExclusion(h *contracts.HistorySeries) string {
	// 1. 이력 없음
	if h.IsEmpty() {
		return "no price history in window"
	}

	// 2. 거래량 미달
	avg := h.AverageVolume()
	if avg < s.config.MinTradingVolume {
		return fmt.Sprintf("average volume %.0f below minimum %.0f", avg, s.config.MinTradingVolume)
	}

	return "" // 통과
}
