package contracts

import "time"

// PerformanceReport represents historical performance of one symbol over a lookback
// ⭐ SSOT: 종목 과거 성과 분석 결과
type PerformanceReport struct {
	Symbol    string    `json:"symbol"`
	Lookback  int       `json:"lookback_days"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Points    int       `json:"points"`

	// 수익률
	TotalReturn float64 `json:"total_return"` // 일간 수익률 합

	// 리스크
	Volatility  float64 `json:"volatility"`   // 일간 수익률 표준편차
	Sharpe      float64 `json:"sharpe"`       // 평균/표준편차 (std=0 이면 0)
	MaxDrawdown float64 `json:"max_drawdown"` // 최대 낙폭 (<= 0)

	AnnualVolatility float64    `json:"annual_volatility"` // Volatility * √252
	Sortino          float64    `json:"sortino"`           // 평균/하방 편차 (하락일 없으면 0)
	VaR95            float64    `json:"var_95"`            // 일간 수익률 5% 분위수
	CVaR95           float64    `json:"cvar_95"`           // VaR95 이하 수익률 평균
	DrawdownDays     int        `json:"drawdown_days"`     // 최대 낙폭 고점 → 저점 (달력일)
	RiskRating       RiskRating `json:"risk_rating"`

	// 거래량
	VolumeTrend float64 `json:"volume_trend"` // 일간 거래량 변화율 평균

	// 최근 지표 방향 (이력 부족 시 nil)
	Signals *IndicatorVotes `json:"signals,omitempty"`
}

// RiskRating grades volatility, Sharpe and drawdown together
type RiskRating string

const (
	RiskUnknown  RiskRating = "unknown" // 수익률 2개 미만
	RiskLow      RiskRating = "low"
	RiskMedium   RiskRating = "medium"
	RiskHigh     RiskRating = "high"
	RiskVeryHigh RiskRating = "very_high"
)

// IndicatorVotes holds the latest direction of each indicator
// +1 매수, -1 매도, 0 지표 없음
type IndicatorVotes struct {
	RSI     int `json:"rsi"`    // 30 <= RSI <= 70
	MACD    int `json:"macd"`   // line > signal
	MA      int `json:"ma"`     // EMA > SMA
	Volume  int `json:"volume"` // 최근 거래량 > 평균
	Overall int `json:"overall"`
}

// IsHealthy checks if the symbol has healthy risk metrics
func (pr *PerformanceReport) IsHealthy() bool {
	return pr.Sharpe > 0 && pr.MaxDrawdown > -0.30
}
