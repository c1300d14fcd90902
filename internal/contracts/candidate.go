package contracts

// Factor names used by the Scorer (fixed evaluation order)
const (
	FactorRSI      = "rsi"
	FactorMACD     = "macd"
	FactorTrend    = "trend"
	FactorExternal = "external"
)

// AllFactors returns factor names in evaluation order
func AllFactors() []string {
	return []string{FactorRSI, FactorMACD, FactorTrend, FactorExternal}
}

// Factor is one scored input of a candidate
type Factor struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`        // 원본 지표 값 (RSI, histogram, close 등)
	Signal       float64 `json:"signal"`       // 0.0 ~ 1.0
	Weight       float64 `json:"weight"`       // 재정규화된 가중치
	Contribution float64 `json:"contribution"` // Signal * Weight
	Available    bool    `json:"available"`
	Note         string  `json:"note"` // 임계값 설명
}

// ScoredCandidate is a symbol with its composite score
// ⭐ SSOT: S3 → S4 점수 결과 전달 (생성 후 불변)
type ScoredCandidate struct {
	Symbol     string             `json:"symbol"`
	Score      float64            `json:"score"` // 0.0 ~ 1.0
	AvgVolume  float64            `json:"avg_volume"`
	Components map[string]float64 `json:"components"` // factor → contribution
	Factors    []Factor           `json:"factors"`
}

// Factor returns the named factor
func (c *ScoredCandidate) Factor(name string) (Factor, bool) {
	for _, f := range c.Factors {
		if f.Name == name {
			return f, true
		}
	}
	return Factor{}, false
}

// Less reports whether c ranks strictly before other
// 정렬: score desc → avg volume desc → symbol asc
func (c *ScoredCandidate) Less(other *ScoredCandidate) bool {
	if c.Score != other.Score {
		return c.Score > other.Score
	}
	if c.AvgVolume != other.AvgVolume {
		return c.AvgVolume > other.AvgVolume
	}
	return c.Symbol < other.Symbol
}
