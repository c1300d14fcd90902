package selection

import (
	"fmt"
	"math"

	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/pkg/logger"
)

// RSI 임계값
const (
	rsiOversold   = 30.0
	rsiOverbought = 70.0
	neutralSignal = 0.5
)

// WeightConfig defines base factor weights for the composite score
type WeightConfig struct {
	RSI      float64 // 과매도 정도 (기본: 0.25)
	MACD     float64 // 모멘텀 방향 (기본: 0.25)
	Trend    float64 // 이동평균 대비 위치 (기본: 0.25)
	External float64 // 외부 예측 (기본: 0.25)
}

func (w *WeightConfig) of(factor string) float64 {
	switch factor {
	case contracts.FactorRSI:
		return w.RSI
	case contracts.FactorMACD:
		return w.MACD
	case contracts.FactorTrend:
		return w.Trend
	case contracts.FactorExternal:
		return w.External
	default:
		return 0
	}
}

// Scorer implements S3: composite score from indicators
// ⭐ SSOT: S3 점수 계산 로직은 여기서만
type Scorer struct {
	weights WeightConfig
	logger  *logger.Logger
}

// NewScorer creates a new scorer
func NewScorer(weights WeightConfig, logger *logger.Logger) *Scorer {
	return &Scorer{
		weights: weights,
		logger:  logger,
	}
}

// Score combines the available factors into a score in [0, 1]
// 사용 불가 팩터는 가중치 0, 나머지 가중치를 합 1 로 재정규화
func (s *Scorer) Score(ind contracts.IndicatorSet, avgVolume float64, external *float64) contracts.ScoredCandidate {
	factors := []contracts.Factor{
		rsiFactor(ind),
		macdFactor(ind),
		trendFactor(ind),
		externalFactor(external),
	}

	var totalWeight float64
	for i := range factors {
		if factors[i].Available {
			totalWeight += s.weights.of(factors[i].Name)
		}
	}

	components := make(map[string]float64, len(factors))
	score := neutralSignal
	if totalWeight > 0 {
		score = 0
		for i := range factors {
			f := &factors[i]
			if f.Available {
				f.Weight = s.weights.of(f.Name) / totalWeight
				f.Contribution = f.Signal * f.Weight
			}
			score += f.Contribution
		}
	}
	for _, f := range factors {
		components[f.Name] = f.Contribution
	}

	candidate := contracts.ScoredCandidate{
		Symbol:     ind.Symbol,
		Score:      clamp01(score),
		AvgVolume:  avgVolume,
		Components: components,
		Factors:    factors,
	}

	s.logger.WithFields(map[string]interface{}{
		"symbol": ind.Symbol,
		"score":  candidate.Score,
	}).Debug("Scored candidate")

	return candidate
}

// rsiFactor: RSI 30 이하 → 1.0, 70 이상 → 0.0, 사이는 선형
func rsiFactor(ind contracts.IndicatorSet) contracts.Factor {
	f := contracts.Factor{Name: contracts.FactorRSI, Signal: neutralSignal}
	if !ind.RSI.Available {
		f.Note = "RSI unavailable"
		return f
	}

	rsi := ind.RSI.Value
	f.Available = true
	f.Value = rsi
	f.Signal = clamp01(1 - (rsi-rsiOversold)/(rsiOverbought-rsiOversold))

	switch {
	case rsi < rsiOversold:
		f.Note = fmt.Sprintf("RSI %.2f < %.0f: oversold", rsi, rsiOversold)
	case rsi > rsiOverbought:
		f.Note = fmt.Sprintf("RSI %.2f > %.0f: overbought", rsi, rsiOverbought)
	default:
		f.Note = fmt.Sprintf("RSI %.2f within %.0f-%.0f: neutral zone", rsi, rsiOversold, rsiOverbought)
	}
	return f
}

// macdFactor: histogram 양수 & 상승 → 1.0, 변화 없음 → 0.5, 그 외 → 0.0
func macdFactor(ind contracts.IndicatorSet) contracts.Factor {
	f := contracts.Factor{Name: contracts.FactorMACD, Signal: neutralSignal}
	m := ind.MACD
	if !m.Available {
		f.Note = "MACD unavailable"
		return f
	}

	f.Available = true
	f.Value = m.Histogram

	switch {
	case m.Flat():
		f.Signal = neutralSignal
		f.Note = fmt.Sprintf("MACD histogram %.4f unchanged: flat", m.Histogram)
	case m.Histogram > 0 && m.Rising():
		f.Signal = 1.0
		f.Note = fmt.Sprintf("MACD histogram %.4f > 0 and rising from %.4f: bullish", m.Histogram, m.PrevHistogram)
	case m.Histogram > 0:
		f.Signal = 0.0
		f.Note = fmt.Sprintf("MACD histogram %.4f > 0 but falling from %.4f: weakening", m.Histogram, m.PrevHistogram)
	default:
		f.Signal = 0.0
		f.Note = fmt.Sprintf("MACD histogram %.4f <= 0: bearish", m.Histogram)
	}
	return f
}

// trendFactor: 종가가 SMA/EMA 모두 위 → 1.0, 하나만 위 → 0.5, 모두 아래 → 0.0
func trendFactor(ind contracts.IndicatorSet) contracts.Factor {
	f := contracts.Factor{Name: contracts.FactorTrend, Signal: neutralSignal, Value: ind.Close}

	type average struct {
		name string
		v    contracts.Indicator
	}
	var above, total int
	notes := ""
	for _, a := range []average{{"SMA", ind.SMA}, {"EMA", ind.EMA}} {
		if !a.v.Available {
			continue
		}
		total++
		relation := "<="
		if ind.Close > a.v.Value {
			above++
			relation = ">"
		}
		if notes != "" {
			notes += ", "
		}
		notes += fmt.Sprintf("close %.2f %s %s %.2f", ind.Close, relation, a.name, a.v.Value)
	}

	if total == 0 {
		f.Value = 0
		f.Note = "SMA/EMA unavailable"
		return f
	}

	f.Available = true
	f.Signal = float64(above) / float64(total)
	switch {
	case above == total:
		f.Note = notes + ": uptrend"
	case above == 0:
		f.Note = notes + ": downtrend"
	default:
		f.Note = notes + ": mixed"
	}
	return f
}

// externalFactor: 외부 예측값을 [0, 1] 로 제한
func externalFactor(external *float64) contracts.Factor {
	f := contracts.Factor{Name: contracts.FactorExternal, Signal: neutralSignal}
	if external == nil || math.IsNaN(*external) || math.IsInf(*external, 0) {
		f.Note = "external signal unavailable"
		return f
	}

	f.Available = true
	f.Value = *external
	f.Signal = clamp01(*external)
	f.Note = fmt.Sprintf("external model signal %.2f", *external)
	return f
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
