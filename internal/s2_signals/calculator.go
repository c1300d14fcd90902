package s2_signals

import (
	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/pkg/logger"
)

// Params selects indicators and their periods
type Params struct {
	Indicators []string // contracts.Indicator* 이름
	SMAPeriod  int
	EMAPeriod  int
	RSIPeriod  int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
}

// DefaultParams returns the standard periods with every indicator enabled
func DefaultParams() Params {
	return Params{
		Indicators: contracts.AllIndicators(),
		SMAPeriod:  14,
		EMAPeriod:  14,
		RSIPeriod:  14,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
	}
}

func (p Params) enabled(name string) bool {
	for _, n := range p.Indicators {
		if n == name {
			return true
		}
	}
	return false
}

// Calculator computes IndicatorSets from validated history
// ⭐ SSOT: S2 지표 계산
type Calculator struct {
	logger *logger.Logger
}

// NewCalculator creates a new indicator calculator
func NewCalculator(log *logger.Logger) *Calculator {
	return &Calculator{
		logger: log,
	}
}

// Compute calculates every enabled indicator for the series
// 데이터가 부족한 지표는 unavailable 로 남긴다. 이력이 비어 있을 때만 오류.
func (c *Calculator) Compute(series contracts.HistorySeries, params Params) (contracts.IndicatorSet, error) {
	last, ok := series.Last()
	if !ok {
		return contracts.IndicatorSet{}, &contracts.InsufficientDataError{Symbol: series.Symbol}
	}

	closes := series.Closes()
	set := contracts.IndicatorSet{
		Symbol: series.Symbol,
		AsOf:   last.Timestamp,
		Close:  last.Close,
	}

	if params.enabled(contracts.IndicatorSMA) {
		if v, ok := SMA(closes, params.SMAPeriod); ok {
			set.SMA = contracts.Some(v)
		}
	}
	if params.enabled(contracts.IndicatorEMA) {
		if v, ok := EMA(closes, params.EMAPeriod); ok {
			set.EMA = contracts.Some(v)
		}
	}
	if params.enabled(contracts.IndicatorRSI) {
		if v, ok := RSI(closes, params.RSIPeriod); ok {
			set.RSI = contracts.Some(v)
		}
	}
	if params.enabled(contracts.IndicatorMACD) {
		if m, ok := MACD(closes, params.MACDFast, params.MACDSlow, params.MACDSignal); ok {
			set.MACD = contracts.MACDValue{
				Line:          m.Line,
				Signal:        m.Signal,
				Histogram:     m.Histogram,
				PrevHistogram: m.PrevHistogram,
				Available:     true,
			}
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":    series.Symbol,
		"points":    len(closes),
		"available": set.AvailableCount(),
	}).Debug("Calculated indicators")

	return set, nil
}
