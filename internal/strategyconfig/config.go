package strategyconfig

import "github.com/wonny/stockreco/internal/contracts"

// Config는 추천 엔진 실행의 전체 설정
// 실행마다 불변 값으로 전달된다
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Universe   Universe   `yaml:"universe" json:"universe"`
	Indicators Indicators `yaml:"indicators" json:"indicators"`
	Scoring    Scoring    `yaml:"scoring" json:"scoring"`
	Ranking    Ranking    `yaml:"ranking" json:"ranking"`
	Runtime    Runtime    `yaml:"runtime" json:"runtime"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Universe S0/S1: 이력 윈도우와 유동성 필터
type Universe struct {
	TimeWindowDays   int     `yaml:"time_window" json:"time_window"`               // 달력일 기준
	MinTradingVolume float64 `yaml:"min_trading_volume" json:"min_trading_volume"` // 평균 거래량 (주)
}

// Indicators S2: 계산할 지표와 기간
type Indicators struct {
	Enabled []string `yaml:"technical_indicators" json:"technical_indicators"`
	Periods Periods  `yaml:"periods" json:"periods"`
}

type Periods struct {
	SMA        int `yaml:"sma" json:"sma"`
	EMA        int `yaml:"ema" json:"ema"`
	RSI        int `yaml:"rsi" json:"rsi"`
	MACDFast   int `yaml:"macd_fast" json:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow" json:"macd_slow"`
	MACDSignal int `yaml:"macd_signal" json:"macd_signal"`
}

// MACDRequired returns the number of closes MACD needs
func (p Periods) MACDRequired() int {
	return p.MACDSlow + p.MACDSignal
}

// Scoring S3: 팩터 가중치
type Scoring struct {
	Weights      Weights `yaml:"weights" json:"weights"`
	UsePredictor bool    `yaml:"use_predictor" json:"use_predictor"`
}

// Weights 팩터별 기본 가중치 (사용 불가 팩터는 실행 시 재분배)
type Weights struct {
	RSI      float64 `yaml:"rsi" json:"rsi"`
	MACD     float64 `yaml:"macd" json:"macd"`
	Trend    float64 `yaml:"trend" json:"trend"`
	External float64 `yaml:"external" json:"external"`
}

// Sum returns the total of all weights
func (w Weights) Sum() float64 {
	return w.RSI + w.MACD + w.Trend + w.External
}

// ByFactor returns weights keyed by factor name
func (w Weights) ByFactor() map[string]float64 {
	return map[string]float64{
		contracts.FactorRSI:      w.RSI,
		contracts.FactorMACD:     w.MACD,
		contracts.FactorTrend:    w.Trend,
		contracts.FactorExternal: w.External,
	}
}

// Ranking S4: 필터와 Top N
type Ranking struct {
	TopN     int     `yaml:"top_n" json:"top_n"`
	MinScore float64 `yaml:"min_score" json:"min_score"`
}

// Runtime 실행 설정
type Runtime struct {
	Workers int `yaml:"workers" json:"workers"` // 0 = GOMAXPROCS
}

// Default returns the standard engine settings
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "default",
			Version:    "1",
		},
		Universe: Universe{
			TimeWindowDays:   90,
			MinTradingVolume: 10000,
		},
		Indicators: Indicators{
			Enabled: contracts.AllIndicators(),
			Periods: Periods{
				SMA:        14,
				EMA:        14,
				RSI:        14,
				MACDFast:   12,
				MACDSlow:   26,
				MACDSignal: 9,
			},
		},
		Scoring: Scoring{
			Weights: Weights{
				RSI:      0.25,
				MACD:     0.25,
				Trend:    0.25,
				External: 0.25,
			},
		},
		Ranking: Ranking{
			TopN:     10,
			MinScore: 0.7,
		},
	}
}

// IsEnabled checks whether an indicator is configured
func (c *Config) IsEnabled(indicator string) bool {
	for _, name := range c.Indicators.Enabled {
		if name == indicator {
			return true
		}
	}
	return false
}
