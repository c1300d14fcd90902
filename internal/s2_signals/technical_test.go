package s2_signals

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestSMA(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		period int
		want   float64
		ok     bool
	}{
		{name: "last period only", closes: []float64{1, 2, 3, 4, 5}, period: 3, want: 4, ok: true},
		{name: "exact length", closes: []float64{2, 4}, period: 2, want: 3, ok: true},
		{name: "too short", closes: []float64{1, 2}, period: 3, ok: false},
		{name: "invalid period", closes: []float64{1, 2}, period: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SMA(tt.closes, tt.period)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-12)
			}
		})
	}
}

func TestEMA(t *testing.T) {
	// seed = SMA(1,2,3) = 2, alpha = 0.5 → 3 → 4
	got, ok := EMA([]float64{1, 2, 3, 4, 5}, 3)
	require.True(t, ok)
	assert.InDelta(t, 4.0, got, 1e-12)

	series := EMASeries([]float64{1, 2, 3, 4, 5}, 3)
	assert.Equal(t, []float64{2, 3, 4}, series)

	_, ok = EMA([]float64{1, 2}, 3)
	assert.False(t, ok)
}

func TestMovingAverages_ConstantSeries(t *testing.T) {
	for _, v := range []float64{0.5, 10, 123.45} {
		closes := constant(30, v)
		for _, p := range []int{1, 5, 14, 30} {
			sma, ok := SMA(closes, p)
			require.True(t, ok)
			assert.InDelta(t, v, sma, 1e-9)

			ema, ok := EMA(closes, p)
			require.True(t, ok)
			assert.InDelta(t, v, ema, 1e-9)
		}
	}
}

func TestRSI(t *testing.T) {
	tests := []struct {
		name   string
		closes []float64
		want   float64
	}{
		{name: "flat is neutral", closes: constant(15, 10), want: 50},
		{name: "only gains", closes: ramp(20, 10, 1), want: 100},
		{name: "only losses", closes: ramp(20, 100, -1), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RSI(tt.closes, 14)
			require.True(t, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	_, ok := RSI(constant(14, 10), 14)
	assert.False(t, ok, "needs period+1 closes")
}

func TestRSI_Bounds(t *testing.T) {
	closes := make([]float64, 200)
	for i := range closes {
		closes[i] = 100 + 10*math.Sin(float64(i)/3) + float64(i%7)
	}

	for n := 15; n <= len(closes); n++ {
		got, ok := RSI(closes[:n], 14)
		require.True(t, ok)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.LessOrEqual(t, got, 100.0)
	}
}

func TestRSI_WilderSmoothing(t *testing.T) {
	// p=2: deltas +2, -1 → seed gain 1, loss 0.5; next delta +1 → gain 1, loss 0.25
	got, ok := RSI([]float64{10, 12, 11, 12}, 2)
	require.True(t, ok)
	assert.InDelta(t, 100-100/(1+4.0), got, 1e-9)
}

func TestMACD(t *testing.T) {
	t.Run("needs slow+signal closes", func(t *testing.T) {
		_, ok := MACD(constant(34, 10), 12, 26, 9)
		assert.False(t, ok)

		_, ok = MACD(constant(35, 10), 12, 26, 9)
		assert.True(t, ok)
	})

	t.Run("flat series", func(t *testing.T) {
		m, ok := MACD(constant(60, 10), 12, 26, 9)
		require.True(t, ok)
		assert.InDelta(t, 0, m.Line, 1e-12)
		assert.InDelta(t, 0, m.Histogram, 1e-12)
		assert.Equal(t, m.Histogram, m.PrevHistogram)
	})

	t.Run("uptrend has positive line", func(t *testing.T) {
		m, ok := MACD(ramp(60, 10, 0.5), 12, 26, 9)
		require.True(t, ok)
		assert.Greater(t, m.Line, 0.0)
		assert.InDelta(t, m.Line-m.Signal, m.Histogram, 1e-12)
	})

	t.Run("invalid periods", func(t *testing.T) {
		_, ok := MACD(constant(100, 10), 26, 12, 9)
		assert.False(t, ok)
	})
}
