package contracts

import "time"

// Universe represents the symbols that passed the liquidity filter
// ⭐ SSOT: S2 → S3 투자 가능 종목 전달
type Universe struct {
	Date       time.Time          `json:"date"`
	Symbols    []string           `json:"symbols"`               // 투자 가능 종목
	AvgVolume  map[string]float64 `json:"avg_volume"`            // 종목별 평균 거래량
	Excluded   map[string]string  `json:"excluded"`              // 제외 종목: 사유
	TotalCount int                `json:"total_count,omitempty"` // 전체 종목 수
}

// Contains checks if a symbol is in the universe
func (u *Universe) Contains(symbol string) bool {
	for _, s := range u.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

// IsExcluded checks if a symbol is excluded with reason
func (u *Universe) IsExcluded(symbol string) (bool, string) {
	reason, exists := u.Excluded[symbol]
	return exists, reason
}

// Count returns the number of symbols that passed the filter
func (u *Universe) Count() int {
	return len(u.Symbols)
}
