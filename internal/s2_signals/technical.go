package s2_signals

// ⭐ SSOT: 기술적 지표 계산은 여기서만
// 모든 함수는 순수 함수 (closes 는 timestamp 오름차순)

// SMA returns the mean of the last period closes
func SMA(closes []float64, period int) (float64, bool) {
	if period < 1 || len(closes) < period {
		return 0, false
	}

	var sum float64
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	return sum / float64(period), true
}

// EMASeries returns the EMA for every index from period-1 to the end
// 초기값 = 처음 period 개의 SMA, α = 2/(period+1)
func EMASeries(values []float64, period int) []float64 {
	if period < 1 || len(values) < period {
		return nil
	}

	var sum float64
	for _, v := range values[:period] {
		sum += v
	}
	ema := sum / float64(period)

	alpha := 2.0 / (float64(period) + 1.0)
	out := make([]float64, 0, len(values)-period+1)
	out = append(out, ema)
	for _, v := range values[period:] {
		ema += alpha * (v - ema)
		out = append(out, ema)
	}
	return out
}

// EMA returns the latest exponential moving average
func EMA(closes []float64, period int) (float64, bool) {
	series := EMASeries(closes, period)
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1], true
}

// RSI returns Wilder's Relative Strength Index (0 ~ 100)
func RSI(closes []float64, period int) (float64, bool) {
	if period < 1 || len(closes) < period+1 {
		return 0, false
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	// Wilder smoothing
	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
	}

	switch {
	case avgGain == 0 && avgLoss == 0:
		return 50.0, true // 변동 없음: 중립
	case avgLoss == 0:
		return 100.0, true
	case avgGain == 0:
		return 0.0, true
	}

	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs)), true
}

// MACDResult is the latest MACD state plus the previous histogram
type MACDResult struct {
	Line          float64
	Signal        float64
	Histogram     float64
	PrevHistogram float64
}

// MACD returns the MACD line, signal line and histogram
// 필요 데이터: slow + signal 개 (이전 histogram 포함)
func MACD(closes []float64, fast, slow, signal int) (MACDResult, bool) {
	if fast < 1 || slow <= fast || signal < 1 || len(closes) < slow+signal {
		return MACDResult{}, false
	}

	fastEMA := EMASeries(closes, fast)
	slowEMA := EMASeries(closes, slow)

	// MACD line: index slow-1 부터
	line := make([]float64, len(slowEMA))
	offset := slow - fast
	for i := range slowEMA {
		line[i] = fastEMA[i+offset] - slowEMA[i]
	}

	signalEMA := EMASeries(line, signal)
	if len(signalEMA) < 2 {
		return MACDResult{}, false
	}

	last := len(line) - 1
	lastSig := len(signalEMA) - 1
	return MACDResult{
		Line:          line[last],
		Signal:        signalEMA[lastSig],
		Histogram:     line[last] - signalEMA[lastSig],
		PrevHistogram: line[last-1] - signalEMA[lastSig-1],
	}, true
}
