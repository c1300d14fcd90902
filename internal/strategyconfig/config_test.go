package strategyconfig

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockreco/internal/contracts"
)

func TestLoad(t *testing.T) {
	path := "../../config/strategy/recommendation.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, yamlData, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, yamlData)

	assert.Equal(t, "technical_composite", cfg.Meta.StrategyID)
	assert.Equal(t, 90, cfg.Universe.TimeWindowDays)
	assert.Equal(t, 10, cfg.Ranking.TopN)
	assert.Equal(t, contracts.AllIndicators(), cfg.Indicators.Enabled)

	// 동일 설정 → 동일 해시
	hash, err := Hash(cfg)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	hash2, err := Hash(Default())
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2, "strategy id differs from defaults")
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("ranking:\n  top_n: 3\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Ranking.TopN)
	assert.Equal(t, 0.7, cfg.Ranking.MinScore, "absent fields keep defaults")
	assert.Equal(t, 14, cfg.Indicators.Periods.RSI)

	empty, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), empty)
}

func TestParse_NonFinite(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{name: "min score", yaml: "ranking:\n  min_score: .nan\n", field: "ranking.min_score"},
		{name: "rsi weight", yaml: "scoring:\n  weights:\n    rsi: .nan\n", field: "scoring.weights.rsi"},
		{name: "volume", yaml: "universe:\n  min_trading_volume: .inf\n", field: "universe.min_trading_volume"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			var cfgErr *contracts.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.True(t, contracts.IsConfigurationError(err))
		})
	}
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte("ranking:\n  topn: 3\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "zero window", mutate: func(c *Config) { c.Universe.TimeWindowDays = 0 }, field: "universe.time_window"},
		{name: "negative volume", mutate: func(c *Config) { c.Universe.MinTradingVolume = -1 }, field: "universe.min_trading_volume"},
		{name: "unknown indicator", mutate: func(c *Config) { c.Indicators.Enabled = []string{"RSI", "BOLL"} }, field: "indicators.technical_indicators[1]"},
		{name: "duplicate indicator", mutate: func(c *Config) { c.Indicators.Enabled = []string{"RSI", "RSI"} }, field: "indicators.technical_indicators[1]"},
		{name: "zero rsi period", mutate: func(c *Config) { c.Indicators.Periods.RSI = 0 }, field: "indicators.periods.rsi"},
		{name: "fast not below slow", mutate: func(c *Config) { c.Indicators.Periods.MACDFast = 26 }, field: "indicators.periods"},
		{name: "negative weight", mutate: func(c *Config) { c.Scoring.Weights.MACD = -0.1 }, field: "scoring.weights.macd"},
		{name: "zero weight sum", mutate: func(c *Config) { c.Scoring.Weights = Weights{} }, field: "scoring.weights"},
		{name: "zero top n", mutate: func(c *Config) { c.Ranking.TopN = 0 }, field: "ranking.top_n"},
		{name: "min score above one", mutate: func(c *Config) { c.Ranking.MinScore = 1.5 }, field: "ranking.min_score"},
		{name: "nan volume", mutate: func(c *Config) { c.Universe.MinTradingVolume = math.NaN() }, field: "universe.min_trading_volume"},
		{name: "infinite volume", mutate: func(c *Config) { c.Universe.MinTradingVolume = math.Inf(1) }, field: "universe.min_trading_volume"},
		{name: "nan weight", mutate: func(c *Config) { c.Scoring.Weights.RSI = math.NaN() }, field: "scoring.weights.rsi"},
		{name: "infinite weight", mutate: func(c *Config) { c.Scoring.Weights.External = math.Inf(1) }, field: "scoring.weights.external"},
		{name: "nan min score", mutate: func(c *Config) { c.Ranking.MinScore = math.NaN() }, field: "ranking.min_score"},
		{name: "negative workers", mutate: func(c *Config) { c.Runtime.Workers = -2 }, field: "runtime.workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			var cfgErr *contracts.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}

	assert.NoError(t, Validate(Default()))
}

func TestWarn(t *testing.T) {
	cfg := Default()
	cfg.Universe.TimeWindowDays = 20
	cfg.Indicators.Enabled = nil

	codes := make([]string, 0)
	for _, w := range Warn(cfg) {
		codes = append(codes, w.Code)
	}

	assert.Contains(t, codes, "EXTERNAL_WEIGHT_UNUSED")
	assert.Contains(t, codes, "NO_INDICATORS")
	assert.NotContains(t, codes, "WINDOW_TOO_SHORT_FOR_MACD", "MACD is disabled")

	cfg.Scoring.UsePredictor = true
	cfg.Indicators.Enabled = []string{contracts.IndicatorMACD}
	codes = codes[:0]
	for _, w := range Warn(cfg) {
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []string{"WINDOW_TOO_SHORT_FOR_MACD"}, codes)
}

func TestLoad_MissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
