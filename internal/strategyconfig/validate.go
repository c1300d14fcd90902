package strategyconfig

import (
	"fmt"
	"math"

	"github.com/wonny/stockreco/internal/contracts"
)

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

func invalid(field, message string) error {
	return &contracts.ConfigurationError{Field: field, Message: message}
}

// finite: NaN은 모든 범위 비교를 통과하므로 먼저 걸러냄
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate checks all required constraints
// 실패 시 *contracts.ConfigurationError 반환 (종목 처리 전 중단)
func Validate(cfg *Config) error {
	// === Universe ===
	if cfg.Universe.TimeWindowDays < 1 {
		return invalid("universe.time_window", "must be >= 1")
	}
	if !finite(cfg.Universe.MinTradingVolume) {
		return invalid("universe.min_trading_volume", "must be a finite number")
	}
	if cfg.Universe.MinTradingVolume < 0 {
		return invalid("universe.min_trading_volume", "must be >= 0")
	}

	// === Indicators ===
	seen := make(map[string]bool, len(cfg.Indicators.Enabled))
	for i, name := range cfg.Indicators.Enabled {
		if !contracts.IsValidIndicator(name) {
			return invalid(fmt.Sprintf("indicators.technical_indicators[%d]", i),
				fmt.Sprintf("unknown indicator %q (supported: %v)", name, contracts.AllIndicators()))
		}
		if seen[name] {
			return invalid(fmt.Sprintf("indicators.technical_indicators[%d]", i), fmt.Sprintf("duplicate indicator %q", name))
		}
		seen[name] = true
	}

	p := cfg.Indicators.Periods
	periods := []struct {
		field string
		value int
	}{
		{"indicators.periods.sma", p.SMA},
		{"indicators.periods.ema", p.EMA},
		{"indicators.periods.rsi", p.RSI},
		{"indicators.periods.macd_fast", p.MACDFast},
		{"indicators.periods.macd_slow", p.MACDSlow},
		{"indicators.periods.macd_signal", p.MACDSignal},
	}
	for _, period := range periods {
		if period.value < 1 {
			return invalid(period.field, "must be >= 1")
		}
	}
	if p.MACDFast >= p.MACDSlow {
		return invalid("indicators.periods", "macd_fast must be < macd_slow")
	}

	// === Scoring ===
	w := cfg.Scoring.Weights
	byFactor := w.ByFactor()
	for _, f := range contracts.AllFactors() {
		if !finite(byFactor[f]) {
			return invalid("scoring.weights."+f, "must be a finite number")
		}
		if byFactor[f] < 0 {
			return invalid("scoring.weights."+f, "must be >= 0")
		}
	}
	if w.Sum() <= 0 {
		return invalid("scoring.weights", "must sum to a positive value")
	}

	// === Ranking ===
	if cfg.Ranking.TopN < 1 {
		return invalid("ranking.top_n", "must be >= 1")
	}
	if !finite(cfg.Ranking.MinScore) || cfg.Ranking.MinScore < 0 || cfg.Ranking.MinScore > 1 {
		return invalid("ranking.min_score", "must be in range [0, 1]")
	}

	// === Runtime ===
	if cfg.Runtime.Workers < 0 {
		return invalid("runtime.workers", "must be >= 0")
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 외부 가중치가 있지만 예측기 비활성
	if cfg.Scoring.Weights.External > 0 && !cfg.Scoring.UsePredictor {
		warnings = append(warnings, Warning{
			Code:    "EXTERNAL_WEIGHT_UNUSED",
			Message: "scoring.weights.external > 0 but use_predictor is false: weight is redistributed",
		})
	}

	// 윈도우가 MACD 계산에 부족 (거래일 < 달력일)
	if cfg.IsEnabled(contracts.IndicatorMACD) && cfg.Universe.TimeWindowDays < cfg.Indicators.Periods.MACDRequired() {
		warnings = append(warnings, Warning{
			Code: "WINDOW_TOO_SHORT_FOR_MACD",
			Message: fmt.Sprintf("time_window=%d days cannot hold %d closes: MACD is never available",
				cfg.Universe.TimeWindowDays, cfg.Indicators.Periods.MACDRequired()),
		})
	}

	// 기술 지표 없음
	if len(cfg.Indicators.Enabled) == 0 {
		warnings = append(warnings, Warning{
			Code:    "NO_INDICATORS",
			Message: "technical_indicators is empty: scores rely on the external signal only",
		})
	}

	return warnings
}
