package s2_signals

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wonny/stockreco/internal/contracts"
)

func TestVotes(t *testing.T) {
	tests := []struct {
		name       string
		set        contracts.IndicatorSet
		lastVolume int64
		avgVolume  float64
		want       contracts.IndicatorVotes
	}{
		{
			name: "all bullish",
			set: contracts.IndicatorSet{
				RSI:  contracts.Some(50),
				MACD: contracts.MACDValue{Line: 1, Signal: 0.5, Available: true},
				SMA:  contracts.Some(10),
				EMA:  contracts.Some(11),
			},
			lastVolume: 200, avgVolume: 100,
			want: contracts.IndicatorVotes{RSI: 1, MACD: 1, MA: 1, Volume: 1, Overall: 1},
		},
		{
			name: "overbought and falling",
			set: contracts.IndicatorSet{
				RSI:  contracts.Some(80),
				MACD: contracts.MACDValue{Line: 0.1, Signal: 0.5, Available: true},
				SMA:  contracts.Some(11),
				EMA:  contracts.Some(10),
			},
			lastVolume: 200, avgVolume: 100,
			want: contracts.IndicatorVotes{RSI: -1, MACD: -1, MA: -1, Volume: 1, Overall: -1},
		},
		{
			name:       "tie is neutral",
			set:        contracts.IndicatorSet{RSI: contracts.Some(75)},
			lastVolume: 200, avgVolume: 100,
			want:       contracts.IndicatorVotes{RSI: -1, Volume: 1},
		},
		{
			name: "nothing available",
			want: contracts.IndicatorVotes{},
		},
		{
			name: "ma needs both averages",
			set:  contracts.IndicatorSet{SMA: contracts.Some(10)},
			want: contracts.IndicatorVotes{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Votes(tt.set, tt.lastVolume, tt.avgVolume))
		})
	}
}
