package audit

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/internal/s2_signals"
	"github.com/wonny/stockreco/pkg/logger"
)

const (
	// lookbackSlack widens the history query so the first in-period return has a base close
	lookbackSlack = 14

	// signalLookback covers MACD(12,26,9) in calendar days
	signalLookback = 90

	tradingDays = 252
)

// Analyzer computes historical performance of a symbol
// ⭐ SSOT: 종목 과거 성과 분석은 여기서만
type Analyzer struct {
	store  contracts.HistoryStore
	calc   *s2_signals.Calculator
	logger *logger.Logger
}

// NewAnalyzer creates a new performance analyzer
func NewAnalyzer(store contracts.HistoryStore, logger *logger.Logger) *Analyzer {
	return &Analyzer{
		store:  store,
		calc:   s2_signals.NewCalculator(logger),
		logger: logger,
	}
}

// Analyze reports performance over the lookback ending at the last observation on or before asOf
func (a *Analyzer) Analyze(ctx context.Context, symbol string, asOf time.Time, lookbackDays int) (*contracts.PerformanceReport, error) {
	if lookbackDays < 1 {
		return nil, &contracts.ConfigurationError{Field: "lookback_days", Message: "must be >= 1"}
	}

	from := asOf.AddDate(0, 0, -max(lookbackDays+lookbackSlack, signalLookback))
	points, err := a.store.History(ctx, symbol, from, asOf)
	if err != nil {
		if contracts.IsStoreUnavailable(err) {
			return nil, err
		}
		return nil, &contracts.StoreUnavailableError{Store: "history", Op: "history " + symbol, Err: err}
	}

	series := contracts.HistorySeries{Symbol: symbol, Points: points}
	report, err := ComputePerformance(series, lookbackDays)
	if err != nil {
		return nil, err
	}
	report.Signals = a.signals(series, report.StartDate)

	a.logger.WithFields(map[string]interface{}{
		"symbol":       symbol,
		"lookback":     lookbackDays,
		"total_return": report.TotalReturn,
		"sharpe":       report.Sharpe,
		"max_drawdown": report.MaxDrawdown,
		"risk_rating":  report.RiskRating,
	}).Info("Performance analysis completed")

	return report, nil
}

// signals votes on the latest indicators; volume is compared with the period average
func (a *Analyzer) signals(series contracts.HistorySeries, periodStart time.Time) *contracts.IndicatorVotes {
	set, err := a.calc.Compute(series, s2_signals.DefaultParams())
	if err != nil || set.AvailableCount() == 0 {
		return nil
	}

	var period contracts.HistorySeries
	for i, p := range series.Points {
		if !p.Timestamp.Before(periodStart) {
			period.Points = series.Points[i:]
			break
		}
	}
	last, _ := series.Last()

	votes := s2_signals.Votes(set, last.Volume, period.AverageVolume())
	return &votes
}

// ComputePerformance derives the report from a timestamp-ordered series
//
//	period      = [last - lookback, last]
//	return_t    = close_t / close_{t-1} - 1 (base may precede the period)
//	TotalReturn = Σ return_t
//	Volatility  = sample std of return_t
//	Sharpe      = mean / std (std = 0 → 0)
//	MaxDrawdown = min(close / running max - 1) within the period
//	Sortino     = mean / √mean(r² | r < 0) (no losses → 0)
//	VaR95       = 5th percentile of return_t (linear interpolation)
//	CVaR95      = mean of return_t <= VaR95
//	VolumeTrend = mean of volume pct change within the period (zero base skipped)
func ComputePerformance(series contracts.HistorySeries, lookbackDays int) (*contracts.PerformanceReport, error) {
	last, ok := series.Last()
	if !ok {
		return nil, &contracts.InsufficientDataError{Symbol: series.Symbol, Need: 1}
	}

	start := last.Timestamp.AddDate(0, 0, -lookbackDays)
	first := len(series.Points) - 1
	for first > 0 && !series.Points[first-1].Timestamp.Before(start) {
		first--
	}
	period := series.Points[first:]

	report := &contracts.PerformanceReport{
		Symbol:    series.Symbol,
		Lookback:  lookbackDays,
		StartDate: period[0].Timestamp,
		EndDate:   last.Timestamp,
		Points:    len(period),
	}

	returns := make([]float64, 0, len(period))
	for i := max(first, 1); i < len(series.Points); i++ {
		prev := series.Points[i-1].Close
		if prev == 0 {
			continue
		}
		returns = append(returns, series.Points[i].Close/prev-1)
	}

	mean, std := meanStd(returns)
	for _, r := range returns {
		report.TotalReturn += r
	}
	report.Volatility = std
	if std > 0 {
		report.Sharpe = mean / std
	}
	report.MaxDrawdown, report.DrawdownDays = maxDrawdown(period)
	report.VolumeTrend = volumeTrend(period)

	report.AnnualVolatility = std * math.Sqrt(tradingDays)
	report.Sortino = sortino(returns, mean)
	report.VaR95 = percentile(returns, 0.05)
	report.CVaR95 = tailMean(returns, report.VaR95)
	report.RiskRating = riskRating(len(returns), report.AnnualVolatility, report.Sharpe*math.Sqrt(tradingDays), report.MaxDrawdown)

	return report, nil
}

// meanStd returns the mean and sample standard deviation (n-1)
func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if len(values) < 2 {
		return mean, 0
	}

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values) - 1)
	return mean, math.Sqrt(variance)
}

// maxDrawdown returns the deepest drawdown and the calendar days from its peak to its trough
func maxDrawdown(points []contracts.PricePoint) (float64, int) {
	var peak, mdd float64
	var peakAt time.Time
	days := 0
	for _, p := range points {
		if p.Close > peak {
			peak = p.Close
			peakAt = p.Timestamp
		}
		if peak > 0 {
			if dd := p.Close/peak - 1; dd < mdd {
				mdd = dd
				days = int(p.Timestamp.Sub(peakAt).Hours() / 24)
			}
		}
	}
	return mdd, days
}

func sortino(returns []float64, mean float64) float64 {
	var sumSq float64
	var n int
	for _, r := range returns {
		if r < 0 {
			sumSq += r * r
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return mean / math.Sqrt(sumSq/float64(n))
}

// percentile uses linear interpolation between closest ranks (q in [0,1])
func percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := min(lo+1, len(sorted)-1)
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func tailMean(values []float64, threshold float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v <= threshold {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// riskRating scores annual volatility (1-4), annual Sharpe (0-3, inverted) and drawdown (1-4)
//
//	total <= 5 low, <= 8 medium, <= 11 high, else very high
func riskRating(returns int, annualVol, annualSharpe, mdd float64) contracts.RiskRating {
	if returns < 2 {
		return contracts.RiskUnknown
	}

	volScore := bucket(annualVol, 0.15, 0.25, 0.35)
	ddScore := bucket(math.Abs(mdd), 0.10, 0.20, 0.30)

	sharpeScore := 0
	switch {
	case annualSharpe > 1.5:
		sharpeScore = 3
	case annualSharpe > 1.0:
		sharpeScore = 2
	case annualSharpe > 0.5:
		sharpeScore = 1
	}

	switch total := volScore + (4 - sharpeScore) + ddScore; {
	case total <= 5:
		return contracts.RiskLow
	case total <= 8:
		return contracts.RiskMedium
	case total <= 11:
		return contracts.RiskHigh
	default:
		return contracts.RiskVeryHigh
	}
}

// bucket returns 1 below the first bound, 2 below the second, 3 below the third, else 4
func bucket(v float64, bounds ...float64) int {
	for i, b := range bounds {
		if v < b {
			return i + 1
		}
	}
	return len(bounds) + 1
}

func volumeTrend(points []contracts.PricePoint) float64 {
	var sum float64
	var n int
	for i := 1; i < len(points); i++ {
		base := points[i-1].Volume
		if base == 0 {
			continue
		}
		sum += float64(points[i].Volume-base) / float64(base)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
