package quality

import (
	"math"

	"github.com/wonny/stockreco/internal/contracts"
)

// Validate checks ordering and value rules of a series
// ⭐ SSOT: S0 종목 단위 품질 검증
// 위반 시 *contracts.DataQualityError (해당 종목만 제외)
func Validate(series contracts.HistorySeries) error {
	for i, p := range series.Points {
		if reason := checkPoint(series.Symbol, p); reason != "" {
			return &contracts.DataQualityError{Symbol: series.Symbol, Index: i, Reason: reason}
		}
		if i == 0 {
			continue
		}

		prev := series.Points[i-1].Timestamp
		switch {
		case p.Timestamp.Equal(prev):
			return &contracts.DataQualityError{Symbol: series.Symbol, Index: i, Reason: "duplicate timestamp " + p.Timestamp.Format("2006-01-02")}
		case p.Timestamp.Before(prev):
			return &contracts.DataQualityError{Symbol: series.Symbol, Index: i, Reason: "non-monotonic timestamp " + p.Timestamp.Format("2006-01-02")}
		}
	}
	return nil
}

// checkPoint returns the violated rule or "" when the point is valid
func checkPoint(symbol string, p contracts.PricePoint) string {
	// 1. 종목 불일치
	if p.Symbol != "" && p.Symbol != symbol {
		return "point belongs to " + p.Symbol
	}

	// 2. 시간 누락
	if p.Timestamp.IsZero() {
		return "missing timestamp"
	}

	// 3. 종가
	if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) {
		return "non-finite close"
	}
	if p.Close <= 0 {
		return "non-positive close"
	}

	// 4. 거래량
	if p.Volume < 0 {
		return "negative volume"
	}

	// 5. 시가총액 (선택)
	if p.MarketCap != nil && (math.IsNaN(*p.MarketCap) || *p.MarketCap < 0) {
		return "invalid market cap"
	}

	return ""
}

// Report summarizes validation over a batch of series
type Report struct {
	Total  int               `json:"total"`
	Valid  int               `json:"valid"`
	Issues map[string]string `json:"issues"` // 종목: 사유
}

// Coverage returns the share of valid series (0 when empty)
func (r *Report) Coverage() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Valid) / float64(r.Total)
}

// Check validates every series and summarizes the result
func Check(series []contracts.HistorySeries) *Report {
	report := &Report{Total: len(series), Issues: make(map[string]string)}
	for _, s := range series {
		if err := Validate(s); err != nil {
			report.Issues[s.Symbol] = err.Error()
			continue
		}
		report.Valid++
	}
	return report
}
