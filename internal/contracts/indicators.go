package contracts

import "time"

// Indicator names accepted by the technical_indicators setting
const (
	IndicatorRSI  = "RSI"
	IndicatorMACD = "MACD"
	IndicatorSMA  = "SMA"
	IndicatorEMA  = "EMA"
)

// AllIndicators returns the supported indicator names in canonical order
func AllIndicators() []string {
	return []string{IndicatorRSI, IndicatorMACD, IndicatorSMA, IndicatorEMA}
}

// IsValidIndicator checks if an indicator name is supported
func IsValidIndicator(name string) bool {
	for _, n := range AllIndicators() {
		if n == name {
			return true
		}
	}
	return false
}

// Indicator is an optional numeric indicator value
// Available=false 는 0 과 다르다 (데이터 부족)
type Indicator struct {
	Value     float64 `json:"value"`
	Available bool    `json:"available"`
}

// Some returns an available indicator
func Some(v float64) Indicator {
	return Indicator{Value: v, Available: true}
}

// None returns an unavailable indicator
func None() Indicator {
	return Indicator{}
}

// MACDValue holds the MACD line, signal line and histogram of the latest period
type MACDValue struct {
	Line          float64 `json:"line"`
	Signal        float64 `json:"signal"`
	Histogram     float64 `json:"histogram"`
	PrevHistogram float64 `json:"prev_histogram"`
	Available     bool    `json:"available"`
}

// Rising reports whether the histogram increased against the previous period
func (m MACDValue) Rising() bool {
	return m.Available && m.Histogram > m.PrevHistogram
}

// Flat reports whether the histogram is unchanged against the previous period
func (m MACDValue) Flat() bool {
	return m.Available && m.Histogram == m.PrevHistogram
}

// IndicatorSet represents the indicators of one symbol at the as-of date
// ⭐ SSOT: S1 지표 계산 결과 → S3 점수 계산
type IndicatorSet struct {
	Symbol string    `json:"symbol"`
	AsOf   time.Time `json:"as_of"`
	Close  float64   `json:"close"` // 최근 종가

	SMA  Indicator `json:"sma"`
	EMA  Indicator `json:"ema"`
	RSI  Indicator `json:"rsi"`
	MACD MACDValue `json:"macd"`
}

// AvailableCount returns how many indicators carry a value
func (s *IndicatorSet) AvailableCount() int {
	n := 0
	for _, ok := range []bool{s.SMA.Available, s.EMA.Available, s.RSI.Available, s.MACD.Available} {
		if ok {
			n++
		}
	}
	return n
}
