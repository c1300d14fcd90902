package brain

import (
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/internal/s0_data/quality"
	"github.com/wonny/stockreco/internal/s1_universe"
	"github.com/wonny/stockreco/internal/s2_signals"
	"github.com/wonny/stockreco/internal/selection"
	"github.com/wonny/stockreco/internal/strategyconfig"
	"github.com/wonny/stockreco/pkg/logger"
)

// Input is everything one engine run reads
type Input struct {
	AsOf     time.Time
	Series   []contracts.HistorySeries
	External map[string]float64 // 종목: 외부 예측 시그널 (없으면 unavailable)
}

// Engine runs S0 validation through S5 rationale in memory
// ⭐ SSOT: 추천 계산은 여기서만 (I/O 없음)
type Engine struct {
	calculator *s2_signals.Calculator
	ranker     *selection.Ranker
	logger     *logger.Logger
}

// NewEngine creates a new engine
func NewEngine(log *logger.Logger) *Engine {
	return &Engine{
		calculator: s2_signals.NewCalculator(log),
		ranker:     selection.NewRanker(log),
		logger:     log,
	}
}

// symbolResult is the output slot of one worker
type symbolResult struct {
	candidate contracts.ScoredCandidate
	err       error
}

// Run computes the ranked recommendations for in.AsOf
// 같은 입력과 설정이면 입력 순서나 worker 수와 무관하게 같은 결과
func (e *Engine) Run(in Input, cfg *strategyconfig.Config) (*contracts.RunSummary, error) {
	if cfg == nil {
		return nil, &contracts.ConfigurationError{Field: "config", Message: "missing"}
	}
	if err := strategyconfig.Validate(cfg); err != nil {
		return nil, err
	}
	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return nil, err
	}

	summary := &contracts.RunSummary{
		AsOf:         in.AsOf,
		ConfigHash:   hash,
		SymbolErrors: make(map[string]string),
		ErrorKinds:   make(map[string]int),
	}

	// S0: 윈도우 적용 + 품질 검증
	valid := e.prepare(in, cfg, summary)
	summary.Evaluated = len(valid)

	// S1: 유동성 필터
	selector := s1_universe.NewSelector(s1_universe.Config{MinTradingVolume: cfg.Universe.MinTradingVolume}, e.logger)
	universe := selector.Filter(in.AsOf, valid)
	summary.UniverseCount = universe.Count()
	summary.Excluded = universe.Excluded

	// S2 + S3: 종목별 지표/점수 (bounded worker pool)
	inUniverse := make([]contracts.HistorySeries, 0, universe.Count())
	for _, s := range valid {
		if universe.Contains(s.Symbol) {
			inUniverse = append(inUniverse, s)
		}
	}
	results := e.scoreAll(in, cfg, inUniverse, universe.AvgVolume)

	candidates := make([]contracts.ScoredCandidate, 0, len(results))
	for i, r := range results {
		if r.err != nil {
			e.recordSymbolError(summary, inUniverse[i].Symbol, r.err)
			continue
		}
		candidates = append(candidates, r.candidate)
	}
	summary.ScoredCount = len(candidates)

	// S4 + S5: 순위와 추천 사유
	ranked := e.ranker.Rank(candidates, cfg.Ranking.TopN, cfg.Ranking.MinScore)
	summary.Recommendations = selection.Recommend(in.AsOf, ranked)

	e.logger.WithFields(map[string]interface{}{
		"date":            in.AsOf.Format("2006-01-02"),
		"total":           summary.TotalSymbols,
		"evaluated":       summary.Evaluated,
		"universe":        summary.UniverseCount,
		"scored":          summary.ScoredCount,
		"errors":          summary.ErrorCount(),
		"recommendations": len(summary.Recommendations),
	}).Info("Engine run completed")

	return summary, nil
}

// prepare sorts, trims and validates the input series
// 검증 실패 종목은 summary.SymbolErrors 로 이동
func (e *Engine) prepare(in Input, cfg *strategyconfig.Config, summary *contracts.RunSummary) []contracts.HistorySeries {
	sorted := make([]contracts.HistorySeries, len(in.Series))
	copy(sorted, in.Series)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Symbol < sorted[j].Symbol
	})

	valid := make([]contracts.HistorySeries, 0, len(sorted))
	for i := 0; i < len(sorted); i++ {
		symbol := sorted[i].Symbol

		// 같은 종목이 두 번 이상 들어오면 어느 쪽도 신뢰할 수 없다
		j := i + 1
		for j < len(sorted) && sorted[j].Symbol == symbol {
			j++
		}
		summary.TotalSymbols++
		if j-i > 1 {
			e.recordSymbolError(summary, symbol, &contracts.DataQualityError{
				Symbol: symbol,
				Index:  0,
				Reason: "symbol supplied more than once",
			})
			i = j - 1
			continue
		}

		series := trimToWindow(sorted[i], in.AsOf, cfg.Universe.TimeWindowDays)
		if series.IsEmpty() {
			// 윈도우 내 이력 없음: 종목 오류로 집계 (유동성 제외와 구분)
			e.recordSymbolError(summary, symbol, &contracts.InsufficientDataError{Symbol: symbol})
			continue
		}
		if err := quality.Validate(series); err != nil {
			e.recordSymbolError(summary, symbol, err)
			continue
		}
		valid = append(valid, series)
	}

	e.logger.WithFields(map[string]interface{}{
		"stage":  contracts.StageDataQuality.ShortName(),
		"total":  summary.TotalSymbols,
		"valid":  len(valid),
		"errors": summary.ErrorCount(),
	}).Info("History validated")

	return valid
}

// scoreAll runs S2/S3 for every series; results[i] belongs to series[i]
func (e *Engine) scoreAll(in Input, cfg *strategyconfig.Config, series []contracts.HistorySeries, avgVolume map[string]float64) []symbolResult {
	params := indicatorParams(cfg)
	scorer := selection.NewScorer(weightConfig(cfg), e.logger)
	results := make([]symbolResult, len(series))

	workers := cfg.Runtime.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range series {
		i := i
		g.Go(func() error {
			s := series[i]
			ind, err := e.calculator.Compute(s, params)
			if err != nil {
				results[i] = symbolResult{err: err}
				return nil
			}
			results[i] = symbolResult{candidate: scorer.Score(ind, avgVolume[s.Symbol], externalFor(in, cfg, s.Symbol))}
			return nil
		})
	}
	// worker 는 오류를 반환하지 않는다 (종목 오류는 slot 에 기록)
	_ = g.Wait()

	e.logger.WithFields(map[string]interface{}{
		"stage":   contracts.StageScorer.ShortName(),
		"symbols": len(series),
		"workers": workers,
	}).Debug("Indicators and scores computed")

	return results
}

func (e *Engine) recordSymbolError(summary *contracts.RunSummary, symbol string, err error) {
	summary.SymbolErrors[symbol] = err.Error()
	summary.ErrorKinds[contracts.ErrorKind(err)]++
	e.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"kind":   contracts.ErrorKind(err),
	}).WithError(err).Warn("Symbol skipped")
}

// trimToWindow keeps points with asOf - window < ts <= asOf
func trimToWindow(s contracts.HistorySeries, asOf time.Time, windowDays int) contracts.HistorySeries {
	points := make([]contracts.PricePoint, 0, len(s.Points))
	for _, p := range s.Points {
		if contracts.InWindow(p.Timestamp, asOf, windowDays) {
			points = append(points, p)
		}
	}
	return contracts.HistorySeries{Symbol: s.Symbol, Points: points}
}

func externalFor(in Input, cfg *strategyconfig.Config, symbol string) *float64 {
	if !cfg.Scoring.UsePredictor || in.External == nil {
		return nil
	}
	v, ok := in.External[symbol]
	if !ok {
		return nil
	}
	return &v
}

func indicatorParams(cfg *strategyconfig.Config) s2_signals.Params {
	p := cfg.Indicators.Periods
	return s2_signals.Params{
		Indicators: cfg.Indicators.Enabled,
		SMAPeriod:  p.SMA,
		EMAPeriod:  p.EMA,
		RSIPeriod:  p.RSI,
		MACDFast:   p.MACDFast,
		MACDSlow:   p.MACDSlow,
		MACDSignal: p.MACDSignal,
	}
}

func weightConfig(cfg *strategyconfig.Config) selection.WeightConfig {
	w := cfg.Scoring.Weights
	return selection.WeightConfig{
		RSI:      w.RSI,
		MACD:     w.MACD,
		Trend:    w.Trend,
		External: w.External,
	}
}
