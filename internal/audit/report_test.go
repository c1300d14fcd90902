package audit

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockreco/internal/contracts"
)

func TestWriteRecommendationReport(t *testing.T) {
	asOf := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	generated := time.Date(2024, 6, 28, 18, 30, 0, 0, time.UTC)
	recs := []contracts.Recommendation{
		{Symbol: "AAPL", Rank: 1, Score: 0.9, AsOf: asOf, Rationale: "AAPL composite score 0.9000\n- rsi: oversold"},
		{Symbol: "MSFT", Rank: 2, Score: 0.75, AsOf: asOf, Rationale: "MSFT composite score 0.7500\n"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteRecommendationReport(&buf, asOf, recs, generated))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Stock Recommendations Report\n"))
	assert.Contains(t, out, "As of: 2024-06-28")
	assert.Contains(t, out, "Generated at: 2024-06-28 18:30:00")
	assert.Contains(t, out, "0.9000")
	assert.Contains(t, out, "Rank 1: AAPL")
	assert.Contains(t, out, "Rank 2: MSFT")
	assert.Less(t, strings.Index(out, "Rank 1: AAPL"), strings.Index(out, "Rank 2: MSFT"))
	assert.Contains(t, out, "- rsi: oversold\n")
}

func TestWriteRecommendationReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecommendationReport(&buf, time.Now(), nil, time.Now()))
	assert.Contains(t, buf.String(), "No recommendations.")
}
