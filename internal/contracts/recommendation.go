package contracts

import "time"

// Recommendation is one ranked, explained entry of a run
// ⭐ SSOT: S4/S5 → S6 저장 대상
type Recommendation struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Rank      int       `json:"rank"` // 1-based ranking
	Score     float64   `json:"score"`
	AsOf      time.Time `json:"as_of"`
	Rationale string    `json:"rationale"`
	Factors   []Factor  `json:"factors,omitempty"`
}

// RunSummary describes one engine run
type RunSummary struct {
	AsOf            time.Time         `json:"as_of"`
	ConfigHash      string            `json:"config_hash,omitempty"`
	TotalSymbols    int               `json:"total_symbols"`
	Evaluated       int               `json:"evaluated"`
	UniverseCount   int               `json:"universe_count"`
	Excluded        map[string]string `json:"excluded"`      // 종목: 제외 사유
	SymbolErrors    map[string]string `json:"symbol_errors"` // 종목: 오류
	ErrorKinds      map[string]int    `json:"error_kinds"`   // ErrorKind 별 건수
	ScoredCount     int               `json:"scored_count"`
	Recommendations []Recommendation  `json:"recommendations"`
}

// ErrorCount returns the number of symbols skipped because of errors
func (s *RunSummary) ErrorCount() int {
	return len(s.SymbolErrors)
}

// Symbols returns recommended symbols in rank order
func (s *RunSummary) Symbols() []string {
	out := make([]string, len(s.Recommendations))
	for i, r := range s.Recommendations {
		out[i] = r.Symbol
	}
	return out
}

// RunEvent is published after every orchestrated run
type RunEvent struct {
	RunID           string    `json:"run_id"`
	AsOf            time.Time `json:"as_of"`
	Success         bool      `json:"success"`
	Persisted       bool      `json:"persisted"`
	Error           string    `json:"error,omitempty"`
	Recommendations int       `json:"recommendations"`
	Symbols         []string  `json:"symbols,omitempty"`
	DurationMs      int64     `json:"duration_ms"`
}
