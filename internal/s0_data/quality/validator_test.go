package quality

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockreco/internal/contracts"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func point(day int, close float64, volume int64) contracts.PricePoint {
	return contracts.PricePoint{Symbol: "AAA", Timestamp: day0.AddDate(0, 0, day), Close: close, Volume: volume}
}

func TestValidate(t *testing.T) {
	negativeCap := -1.0

	tests := []struct {
		name      string
		points    []contracts.PricePoint
		wantIndex int
		wantIn    string
	}{
		{name: "valid with gaps", points: []contracts.PricePoint{point(0, 10, 100), point(3, 11, 0), point(4, 12, 50)}, wantIndex: -1},
		{name: "empty is valid", points: nil, wantIndex: -1},
		{name: "duplicate timestamp", points: []contracts.PricePoint{point(0, 10, 1), point(1, 10, 1), point(1, 11, 1)}, wantIndex: 2, wantIn: "duplicate"},
		{name: "non-monotonic", points: []contracts.PricePoint{point(2, 10, 1), point(1, 10, 1)}, wantIndex: 1, wantIn: "non-monotonic"},
		{name: "negative volume", points: []contracts.PricePoint{point(0, 10, 1), point(1, 10, -5)}, wantIndex: 1, wantIn: "negative volume"},
		{name: "zero close", points: []contracts.PricePoint{point(0, 0, 1)}, wantIndex: 0, wantIn: "non-positive close"},
		{name: "nan close", points: []contracts.PricePoint{point(0, math.NaN(), 1)}, wantIndex: 0, wantIn: "non-finite"},
		{name: "foreign symbol", points: []contracts.PricePoint{{Symbol: "BBB", Timestamp: day0, Close: 1}}, wantIndex: 0, wantIn: "belongs to BBB"},
		{name: "missing timestamp", points: []contracts.PricePoint{{Symbol: "AAA", Close: 1}}, wantIndex: 0, wantIn: "missing timestamp"},
		{name: "negative market cap", points: []contracts.PricePoint{{Symbol: "AAA", Timestamp: day0, Close: 1, MarketCap: &negativeCap}}, wantIndex: 0, wantIn: "market cap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(contracts.HistorySeries{Symbol: "AAA", Points: tt.points})
			if tt.wantIndex < 0 {
				assert.NoError(t, err)
				return
			}

			var qErr *contracts.DataQualityError
			require.ErrorAs(t, err, &qErr)
			assert.Equal(t, "AAA", qErr.Symbol)
			assert.Equal(t, tt.wantIndex, qErr.Index)
			assert.Contains(t, qErr.Reason, tt.wantIn)
		})
	}
}

func TestCheck(t *testing.T) {
	report := Check([]contracts.HistorySeries{
		{Symbol: "AAA", Points: []contracts.PricePoint{point(0, 10, 1), point(1, 11, 1)}},
		{Symbol: "AAA", Points: []contracts.PricePoint{point(1, 10, 1), point(0, 11, 1)}},
	})

	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Valid)
	assert.InDelta(t, 0.5, report.Coverage(), 1e-12)
	assert.Len(t, report.Issues, 1)

	assert.Zero(t, (&Report{}).Coverage())
}
