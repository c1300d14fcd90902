package s2_signals

import "github.com/wonny/stockreco/internal/contracts"

// RSI 정상 범위
const (
	voteRSILow  = 30.0
	voteRSIHigh = 70.0
)

// Votes reduces the latest indicators to +1/-1 directions
// 계산되지 않은 지표는 0, Overall 은 합계의 부호
func Votes(set contracts.IndicatorSet, lastVolume int64, avgVolume float64) contracts.IndicatorVotes {
	var v contracts.IndicatorVotes

	if set.RSI.Available {
		v.RSI = direction(set.RSI.Value >= voteRSILow && set.RSI.Value <= voteRSIHigh)
	}
	if set.MACD.Available {
		v.MACD = direction(set.MACD.Line > set.MACD.Signal)
	}
	if set.SMA.Available && set.EMA.Available {
		v.MA = direction(set.EMA.Value > set.SMA.Value)
	}
	if avgVolume > 0 {
		v.Volume = direction(float64(lastVolume) > avgVolume)
	}

	switch sum := v.RSI + v.MACD + v.MA + v.Volume; {
	case sum > 0:
		v.Overall = 1
	case sum < 0:
		v.Overall = -1
	}
	return v
}

func direction(up bool) int {
	if up {
		return 1
	}
	return -1
}
