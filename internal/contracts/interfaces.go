package contracts

import (
	"context"
	"time"
)

// HistoryStore provides price history (S0)
// ⭐ SSOT: S0 이력 조회 인터페이스
type HistoryStore interface {
	// Symbols returns every symbol with at least one observation on or before asOf
	Symbols(ctx context.Context, asOf time.Time) ([]string, error)
	// History returns observations with from < ts <= to ordered by timestamp
	History(ctx context.Context, symbol string, from, to time.Time) ([]PricePoint, error)
}

// RecommendationStore persists ranked recommendations (S6)
// ⭐ SSOT: S6 저장 인터페이스
type RecommendationStore interface {
	// Replace atomically replaces every recommendation of asOf
	Replace(ctx context.Context, asOf time.Time, recs []Recommendation) error
	List(ctx context.Context, asOf time.Time) ([]Recommendation, error)
	LatestAsOf(ctx context.Context) (time.Time, error)
}

// Predictor supplies an optional external signal in [0,1] per symbol
// ⭐ SSOT: 외부 예측 모델 인터페이스
type Predictor interface {
	// Predict returns ok=false when the model has no opinion for the symbol
	Predict(ctx context.Context, symbol string, asOf time.Time) (value float64, ok bool, err error)
}
