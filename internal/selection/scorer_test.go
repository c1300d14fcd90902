package selection

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/pkg/logger"
)

func ptr(v float64) *float64 { return &v }

var equalWeights = WeightConfig{RSI: 0.25, MACD: 0.25, Trend: 0.25, External: 0.25}

func fullSet(rsi, hist, prevHist, close, sma, ema float64) contracts.IndicatorSet {
	return contracts.IndicatorSet{
		Symbol: "AAA",
		Close:  close,
		SMA:    contracts.Some(sma),
		EMA:    contracts.Some(ema),
		RSI:    contracts.Some(rsi),
		MACD: contracts.MACDValue{
			Histogram:     hist,
			PrevHistogram: prevHist,
			Available:     true,
		},
	}
}

func TestRSIFactor(t *testing.T) {
	tests := []struct {
		rsi    float64
		signal float64
		note   string
	}{
		{rsi: 10, signal: 1.0, note: "oversold"},
		{rsi: 30, signal: 1.0, note: "neutral zone"},
		{rsi: 50, signal: 0.5, note: "neutral zone"},
		{rsi: 70, signal: 0.0, note: "neutral zone"},
		{rsi: 85, signal: 0.0, note: "overbought"},
	}

	for _, tt := range tests {
		f := rsiFactor(contracts.IndicatorSet{RSI: contracts.Some(tt.rsi)})
		assert.True(t, f.Available)
		assert.InDelta(t, tt.signal, f.Signal, 1e-12, "rsi=%v", tt.rsi)
		assert.Contains(t, f.Note, tt.note)
	}

	f := rsiFactor(contracts.IndicatorSet{})
	assert.False(t, f.Available)
	assert.Equal(t, 0.5, f.Signal)
}

func TestMACDFactor(t *testing.T) {
	tests := []struct {
		name   string
		macd   contracts.MACDValue
		signal float64
		avail  bool
	}{
		{name: "positive rising", macd: contracts.MACDValue{Histogram: 0.3, PrevHistogram: 0.1, Available: true}, signal: 1.0, avail: true},
		{name: "positive falling", macd: contracts.MACDValue{Histogram: 0.1, PrevHistogram: 0.3, Available: true}, signal: 0.0, avail: true},
		{name: "negative rising", macd: contracts.MACDValue{Histogram: -0.1, PrevHistogram: -0.3, Available: true}, signal: 0.0, avail: true},
		{name: "flat", macd: contracts.MACDValue{Histogram: 0.2, PrevHistogram: 0.2, Available: true}, signal: 0.5, avail: true},
		{name: "unavailable", macd: contracts.MACDValue{}, signal: 0.5, avail: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := macdFactor(contracts.IndicatorSet{MACD: tt.macd})
			assert.Equal(t, tt.avail, f.Available)
			assert.Equal(t, tt.signal, f.Signal)
		})
	}
}

func TestTrendFactor(t *testing.T) {
	tests := []struct {
		name   string
		set    contracts.IndicatorSet
		signal float64
		avail  bool
	}{
		{name: "above both", set: contracts.IndicatorSet{Close: 12, SMA: contracts.Some(10), EMA: contracts.Some(11)}, signal: 1.0, avail: true},
		{name: "mixed", set: contracts.IndicatorSet{Close: 10.5, SMA: contracts.Some(10), EMA: contracts.Some(11)}, signal: 0.5, avail: true},
		{name: "below both", set: contracts.IndicatorSet{Close: 9, SMA: contracts.Some(10), EMA: contracts.Some(11)}, signal: 0.0, avail: true},
		{name: "equal is not above", set: contracts.IndicatorSet{Close: 10, SMA: contracts.Some(10), EMA: contracts.Some(10)}, signal: 0.0, avail: true},
		{name: "sma only above", set: contracts.IndicatorSet{Close: 12, SMA: contracts.Some(10)}, signal: 1.0, avail: true},
		{name: "ema only below", set: contracts.IndicatorSet{Close: 9, EMA: contracts.Some(10)}, signal: 0.0, avail: true},
		{name: "neither", set: contracts.IndicatorSet{Close: 9}, signal: 0.5, avail: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := trendFactor(tt.set)
			assert.Equal(t, tt.avail, f.Available)
			assert.Equal(t, tt.signal, f.Signal)
		})
	}
}

func TestScorer_AllAvailable(t *testing.T) {
	scorer := NewScorer(equalWeights, logger.NewNop())

	// rsi 1.0, macd 1.0, trend 1.0, external 0.6
	c := scorer.Score(fullSet(25, 0.5, 0.2, 12, 10, 11), 50000, ptr(0.6))

	assert.Equal(t, "AAA", c.Symbol)
	assert.Equal(t, 50000.0, c.AvgVolume)
	assert.InDelta(t, 0.9, c.Score, 1e-12)
	assert.InDelta(t, 0.15, c.Components[contracts.FactorExternal], 1e-12)

	var weights float64
	for _, f := range c.Factors {
		weights += f.Weight
	}
	assert.InDelta(t, 1.0, weights, 1e-12)
}

func TestScorer_RedistributesUnavailableWeight(t *testing.T) {
	scorer := NewScorer(equalWeights, logger.NewNop())

	set := fullSet(25, 0, 0, 12, 10, 11)
	set.MACD = contracts.MACDValue{}

	// external 없음, MACD 없음 → RSI(1.0), trend(1.0) 각 0.5
	c := scorer.Score(set, 1, nil)
	assert.InDelta(t, 1.0, c.Score, 1e-12)

	rsi, ok := c.Factor(contracts.FactorRSI)
	require.True(t, ok)
	assert.InDelta(t, 0.5, rsi.Weight, 1e-12)

	macd, ok := c.Factor(contracts.FactorMACD)
	require.True(t, ok)
	assert.False(t, macd.Available)
	assert.Zero(t, macd.Weight)
	assert.Zero(t, c.Components[contracts.FactorMACD])
}

func TestScorer_NothingAvailableIsNeutral(t *testing.T) {
	scorer := NewScorer(equalWeights, logger.NewNop())

	c := scorer.Score(contracts.IndicatorSet{Symbol: "NEW", Close: 10}, 1, nil)
	assert.Equal(t, 0.5, c.Score)
}

func TestScorer_CustomWeights(t *testing.T) {
	scorer := NewScorer(WeightConfig{RSI: 3, Trend: 1}, logger.NewNop())

	// rsi 50 → 0.5, trend below both → 0.0
	c := scorer.Score(fullSet(50, 0.5, 0.1, 9, 10, 11), 1, ptr(1))
	assert.InDelta(t, 0.375, c.Score, 1e-12, "zero-weight factors do not move the score")
}

func TestScorer_ExternalClamped(t *testing.T) {
	scorer := NewScorer(WeightConfig{External: 1}, logger.NewNop())

	assert.Equal(t, 1.0, scorer.Score(contracts.IndicatorSet{}, 1, ptr(3.5)).Score)
	assert.Equal(t, 0.0, scorer.Score(contracts.IndicatorSet{}, 1, ptr(-2)).Score)
	assert.Equal(t, 0.5, scorer.Score(contracts.IndicatorSet{}, 1, ptr(math.NaN())).Score, "NaN is treated as unavailable")
}

func TestScorer_Bounds(t *testing.T) {
	scorer := NewScorer(equalWeights, logger.NewNop())

	for rsi := 0.0; rsi <= 100; rsi += 7 {
		for _, hist := range []float64{-1, 0, 1} {
			c := scorer.Score(fullSet(rsi, hist, 0, 10, 9, 11), 1, ptr(rsi/100))
			assert.GreaterOrEqual(t, c.Score, 0.0)
			assert.LessOrEqual(t, c.Score, 1.0)
		}
	}
}

