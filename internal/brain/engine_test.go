package brain

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/internal/strategyconfig"
	"github.com/wonny/stockreco/pkg/logger"
)

var testAsOf = time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

// makePoints builds one point per day ending at asOf
func makePoints(symbol string, asOf time.Time, closes []float64, volume int64) []contracts.PricePoint {
	points := make([]contracts.PricePoint, len(closes))
	start := asOf.AddDate(0, 0, -(len(closes) - 1))
	for i, c := range closes {
		points[i] = contracts.PricePoint{
			Symbol:    symbol,
			Timestamp: start.AddDate(0, 0, i),
			Close:     c,
			Volume:    volume,
		}
	}
	return points
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// fixtureSeries: 30 closes each, so MACD (26+9) is unavailable everywhere
//
//	UP    rsi 100 → 0, trend 1 → 0.5 (volume 30000)
//	DOWN  rsi 0 → 1, trend 0 → 0.5 (volume 20000)
//	FLAT  rsi 50 → 0.5, trend 0 → 0.25
//	LOWVOL excluded by volume, STALE has no points in window, BAD has a duplicate timestamp
func fixtureSeries() []contracts.HistorySeries {
	bad := makePoints("BAD", testAsOf, linear(30, 50, 1), 50000)
	bad[10].Timestamp = bad[9].Timestamp

	return []contracts.HistorySeries{
		{Symbol: "UP", Points: makePoints("UP", testAsOf, linear(30, 100, 1), 30000)},
		{Symbol: "DOWN", Points: makePoints("DOWN", testAsOf, linear(30, 100, -1), 20000)},
		{Symbol: "FLAT", Points: makePoints("FLAT", testAsOf, linear(30, 10, 0), 20000)},
		{Symbol: "LOWVOL", Points: makePoints("LOWVOL", testAsOf, linear(30, 10, 1), 5000)},
		{Symbol: "STALE", Points: makePoints("STALE", testAsOf.AddDate(0, 0, -200), linear(30, 10, 1), 50000)},
		{Symbol: "BAD", Points: bad},
	}
}

func testConfig() *strategyconfig.Config {
	cfg := strategyconfig.Default()
	cfg.Ranking.MinScore = 0
	return cfg
}

func TestEngine_Run_Fixture(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	summary, err := engine.Run(Input{AsOf: testAsOf, Series: fixtureSeries()}, testConfig())
	require.NoError(t, err)

	assert.Equal(t, 6, summary.TotalSymbols)
	assert.Equal(t, 4, summary.Evaluated)
	assert.Equal(t, 3, summary.UniverseCount)
	assert.Equal(t, 3, summary.ScoredCount)
	assert.NotEmpty(t, summary.ConfigHash)

	assert.Contains(t, summary.Excluded, "LOWVOL")
	assert.Contains(t, summary.Excluded["LOWVOL"], "below minimum")
	assert.NotContains(t, summary.Excluded, "STALE")

	require.Contains(t, summary.SymbolErrors, "BAD")
	assert.Contains(t, summary.SymbolErrors["BAD"], "duplicate timestamp")
	assert.Equal(t, "insufficient data for STALE: empty history", summary.SymbolErrors["STALE"])
	assert.Equal(t, 1, summary.ErrorKinds["data_quality"])
	assert.Equal(t, 1, summary.ErrorKinds["insufficient_data"])
	assert.Equal(t, 2, summary.ErrorCount())

	// UP 과 DOWN 은 0.5 동점 → 평균 거래량으로 결정
	require.Len(t, summary.Recommendations, 3)
	assert.Equal(t, []string{"UP", "DOWN", "FLAT"}, summary.Symbols())
	assert.InDelta(t, 0.5, summary.Recommendations[0].Score, 1e-12)
	assert.InDelta(t, 0.5, summary.Recommendations[1].Score, 1e-12)
	assert.InDelta(t, 0.25, summary.Recommendations[2].Score, 1e-12)

	for i, rec := range summary.Recommendations {
		assert.Equal(t, i+1, rec.Rank)
		assert.Equal(t, testAsOf, rec.AsOf)
		assert.NotEmpty(t, rec.ID)
		assert.Contains(t, rec.Rationale, rec.Symbol)
	}

	macd, ok := findFactor(summary.Recommendations[0].Factors, contracts.FactorMACD)
	require.True(t, ok)
	assert.False(t, macd.Available)
}

func TestEngine_Run_MinScoreAndTopN(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	cfg := testConfig()
	cfg.Ranking.MinScore = 0.5
	summary, err := engine.Run(Input{AsOf: testAsOf, Series: fixtureSeries()}, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"UP", "DOWN"}, summary.Symbols())

	cfg = testConfig()
	cfg.Ranking.TopN = 1
	summary, err = engine.Run(Input{AsOf: testAsOf, Series: fixtureSeries()}, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"UP"}, summary.Symbols())

	summary, err = engine.Run(Input{AsOf: testAsOf, Series: fixtureSeries()}, strategyconfig.Default())
	require.NoError(t, err)
	assert.Empty(t, summary.Recommendations)
}

func TestEngine_Run_External(t *testing.T) {
	engine := NewEngine(logger.NewNop())
	external := map[string]float64{"FLAT": 1.0, "DOWN": 0.0}

	// use_predictor=false 이면 외부 값은 무시
	summary, err := engine.Run(Input{AsOf: testAsOf, Series: fixtureSeries(), External: external}, testConfig())
	require.NoError(t, err)
	ext, ok := findFactor(summary.Recommendations[2].Factors, contracts.FactorExternal)
	require.True(t, ok)
	assert.False(t, ext.Available)

	cfg := testConfig()
	cfg.Scoring.UsePredictor = true
	summary, err = engine.Run(Input{AsOf: testAsOf, Series: fixtureSeries(), External: external}, cfg)
	require.NoError(t, err)

	scores := make(map[string]float64)
	for _, rec := range summary.Recommendations {
		scores[rec.Symbol] = rec.Score
	}
	assert.InDelta(t, 0.5, scores["FLAT"], 1e-9)   // (0.5 + 0 + 1) / 3
	assert.InDelta(t, 1.0/3, scores["DOWN"], 1e-9) // (1 + 0 + 0) / 3
	assert.InDelta(t, 0.5, scores["UP"], 1e-9)     // 외부 값 없음
}

func TestEngine_Run_ConfigurationError(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	cfg := testConfig()
	cfg.Ranking.TopN = 0
	summary, err := engine.Run(Input{AsOf: testAsOf, Series: fixtureSeries()}, cfg)
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.True(t, contracts.IsConfigurationError(err))

	_, err = engine.Run(Input{AsOf: testAsOf}, nil)
	assert.True(t, contracts.IsConfigurationError(err))
}

func TestEngine_Run_NonFiniteConfig(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	cfg := testConfig()
	cfg.Ranking.MinScore = math.NaN()
	_, err := engine.Run(Input{AsOf: testAsOf, Series: fixtureSeries()}, cfg)
	require.Error(t, err)
	assert.True(t, contracts.IsConfigurationError(err))
	assert.Equal(t, "configuration", contracts.ErrorKind(err))
}

func TestEngine_Run_DuplicateSymbol(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	series := fixtureSeries()
	series = append(series, contracts.HistorySeries{
		Symbol: "UP",
		Points: makePoints("UP", testAsOf, linear(30, 1, 0), 30000),
	})

	summary, err := engine.Run(Input{AsOf: testAsOf, Series: series}, testConfig())
	require.NoError(t, err)
	assert.Equal(t, 6, summary.TotalSymbols)
	assert.Contains(t, summary.SymbolErrors["UP"], "more than once")
	assert.Equal(t, []string{"DOWN", "FLAT"}, summary.Symbols())
}

func TestEngine_Run_Empty(t *testing.T) {
	engine := NewEngine(logger.NewNop())

	summary, err := engine.Run(Input{AsOf: testAsOf}, testConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalSymbols)
	assert.Empty(t, summary.Recommendations)
}

func TestEngine_Run_Deterministic(t *testing.T) {
	engine := NewEngine(logger.NewNop())
	rng := rand.New(rand.NewSource(42))

	series := make([]contracts.HistorySeries, 0, 60)
	for i := 0; i < 60; i++ {
		symbol := string(rune('A'+i%26)) + string(rune('A'+i/26))
		closes := make([]float64, 80)
		price := 50 + rng.Float64()*50
		for j := range closes {
			price *= 1 + (rng.Float64()-0.5)*0.06
			closes[j] = price
		}
		volume := int64(5000 + rng.Intn(30000))
		series = append(series, contracts.HistorySeries{
			Symbol: symbol,
			Points: makePoints(symbol, testAsOf, closes, volume),
		})
	}

	cfg := testConfig()
	cfg.Ranking.MinScore = 0.3
	cfg.Runtime.Workers = 1
	baseline, err := engine.Run(Input{AsOf: testAsOf, Series: series}, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, baseline.Recommendations)

	for _, workers := range []int{2, 8, 32} {
		shuffled := make([]contracts.HistorySeries, len(series))
		copy(shuffled, series)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		cfg := testConfig()
		cfg.Ranking.MinScore = 0.3
		cfg.Runtime.Workers = workers

		got, err := engine.Run(Input{AsOf: testAsOf, Series: shuffled}, cfg)
		require.NoError(t, err)
		assert.Equal(t, baseline.Recommendations, got.Recommendations, "workers=%d", workers)
		assert.Equal(t, baseline.Excluded, got.Excluded)
		assert.Equal(t, baseline.SymbolErrors, got.SymbolErrors)
	}

	// 순위 불변식
	prev := baseline.Recommendations[0]
	assert.LessOrEqual(t, len(baseline.Recommendations), cfg.Ranking.TopN)
	for i, rec := range baseline.Recommendations {
		assert.Equal(t, i+1, rec.Rank)
		assert.GreaterOrEqual(t, rec.Score, cfg.Ranking.MinScore)
		assert.LessOrEqual(t, rec.Score, prev.Score)
		prev = rec
	}
}

func TestTrimToWindow(t *testing.T) {
	points := makePoints("AAA", testAsOf.AddDate(0, 0, 2), linear(100, 10, 0), 100)
	trimmed := trimToWindow(contracts.HistorySeries{Symbol: "AAA", Points: points}, testAsOf, 90)

	require.Len(t, trimmed.Points, 90)
	assert.Equal(t, testAsOf.AddDate(0, 0, -89), trimmed.Points[0].Timestamp)
	assert.Equal(t, testAsOf, trimmed.Points[89].Timestamp)
	assert.Len(t, points, 100)
}

func findFactor(factors []contracts.Factor, name string) (contracts.Factor, bool) {
	for _, f := range factors {
		if f.Name == name {
			return f, true
		}
	}
	return contracts.Factor{}, false
}
