package contracts

import "time"

// PricePoint is one daily observation of a symbol
// ⭐ SSOT: S0 → S1 가격/거래량 관측치
type PricePoint struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	MarketCap *float64  `json:"market_cap,omitempty"` // 선택 항목
}

// HistorySeries is the ordered price history of one symbol inside the time window
// ⭐ SSOT: 종목별 시계열 (timestamp 오름차순, 중복 없음)
type HistorySeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of observations
func (h *HistorySeries) Len() int {
	return len(h.Points)
}

// IsEmpty reports whether the series has no observations
func (h *HistorySeries) IsEmpty() bool {
	return len(h.Points) == 0
}

// Closes returns close prices in timestamp order
func (h *HistorySeries) Closes() []float64 {
	closes := make([]float64, len(h.Points))
	for i, p := range h.Points {
		closes[i] = p.Close
	}
	return closes
}

// Volumes returns volumes in timestamp order
func (h *HistorySeries) Volumes() []int64 {
	volumes := make([]int64, len(h.Points))
	for i, p := range h.Points {
		volumes[i] = p.Volume
	}
	return volumes
}

// Last returns the most recent observation
func (h *HistorySeries) Last() (PricePoint, bool) {
	if len(h.Points) == 0 {
		return PricePoint{}, false
	}
	return h.Points[len(h.Points)-1], true
}

// AverageVolume returns the mean volume over the series (0 when empty)
func (h *HistorySeries) AverageVolume() float64 {
	if len(h.Points) == 0 {
		return 0
	}
	var total float64
	for _, p := range h.Points {
		total += float64(p.Volume)
	}
	return total / float64(len(h.Points))
}

// WindowStart returns the exclusive lower bound of a calendar-day window ending at asOf
// 윈도우: asOf - window < ts <= asOf
func WindowStart(asOf time.Time, windowDays int) time.Time {
	return asOf.AddDate(0, 0, -windowDays)
}

// InWindow reports whether ts lies inside the window ending at asOf
func InWindow(ts, asOf time.Time, windowDays int) bool {
	return ts.After(WindowStart(asOf, windowDays)) && !ts.After(asOf)
}

// AsOfDate truncates t to its calendar date at 00:00 UTC
// 저장소의 trade_date(DATE)와 같은 기준으로 맞춘다
func AsOfDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
