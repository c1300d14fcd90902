package selection

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/pkg/logger"
)

func TestExplain(t *testing.T) {
	scorer := NewScorer(WeightConfig{RSI: 0.5, MACD: 0.2, Trend: 0.3}, logger.NewNop())
	set := fullSet(28, 0.4, 0.1, 12, 10, 11)

	c := scorer.Score(set, 1000, nil)
	text := Explain(c)
	lines := strings.Split(text, "\n")

	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "AAA composite score"))
	assert.True(t, strings.HasPrefix(lines[1], "- rsi: RSI 28.00 < 30: oversold"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "- trend:"), "contribution 0.3 before 0.2")
	assert.True(t, strings.HasPrefix(lines[3], "- macd:"))
	assert.Equal(t, "- external: unavailable (external signal unavailable)", lines[4])

	assert.Equal(t, text, Explain(c), "deterministic")
}

func TestExplain_ContributionBeforeWeight(t *testing.T) {
	// RSI 85: signal 0 → 기여도 0, trend: signal 1 → 기여도 0.3
	scorer := NewScorer(WeightConfig{RSI: 0.7, Trend: 0.3}, logger.NewNop())
	c := scorer.Score(fullSet(85, 0.4, 0.1, 12, 10, 11), 1, nil)

	lines := strings.Split(Explain(c), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[1], "- trend:"), lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "- rsi:"), "equal contribution 0, weight 0.7 before 0")
	assert.True(t, strings.HasPrefix(lines[3], "- macd:"), lines[3])
	assert.True(t, strings.HasPrefix(lines[4], "- external: unavailable"))
}

func TestExplain_TiesKeepFactorOrder(t *testing.T) {
	// 모든 signal 0.5 (RSI 50, flat MACD, 종가가 SMA 위 EMA 아래, 외부 0.5)
	scorer := NewScorer(equalWeights, logger.NewNop())
	c := scorer.Score(fullSet(50, 0.1, 0.1, 10.5, 10, 11), 1, ptr(0.5))

	lines := strings.Split(Explain(c), "\n")
	require.Len(t, lines, 5)
	for i, name := range contracts.AllFactors() {
		assert.True(t, strings.HasPrefix(lines[i+1], "- "+name+":"), lines[i+1])
	}
}

func TestRecommend(t *testing.T) {
	asOf := time.Date(2024, 3, 29, 0, 0, 0, 0, time.UTC)
	ranked := []Ranked{
		{Rank: 1, Candidate: cand("AAA", 0.9, 1)},
		{Rank: 2, Candidate: cand("BBB", 0.8, 1)},
	}

	recs := Recommend(asOf, ranked)
	require.Len(t, recs, 2)
	assert.Equal(t, "AAA", recs[0].Symbol)
	assert.Equal(t, 2, recs[1].Rank)
	assert.Equal(t, asOf, recs[1].AsOf)
	assert.NotEmpty(t, recs[0].Rationale)

	again := Recommend(asOf, ranked)
	assert.Equal(t, recs, again, "idempotent")

	_, err := uuid.Parse(recs[0].ID)
	assert.NoError(t, err)
	assert.NotEqual(t, recs[0].ID, recs[1].ID)
	assert.NotEqual(t, recs[0].ID, RecommendationID(asOf.AddDate(0, 0, 1), "AAA"))
}
