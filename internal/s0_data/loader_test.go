package s0_data

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/pkg/logger"
)

type failingStore struct {
	contracts.HistoryStore
	failSymbols bool
}

func (f failingStore) Symbols(ctx context.Context, asOf time.Time) ([]string, error) {
	if f.failSymbols {
		return nil, errors.New("connection refused")
	}
	return []string{"AAA", "BBB"}, nil
}

func (f failingStore) History(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PricePoint, error) {
	return nil, &contracts.StoreUnavailableError{Store: "history", Op: "history", Err: errors.New("timeout")}
}

func TestLoader_Window(t *testing.T) {
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	for _, d := range []int{-120, -90, -89, -1, 0, 1} {
		store.Add(contracts.PricePoint{Symbol: "AAA", Timestamp: asOf.AddDate(0, 0, d), Close: 10, Volume: 100})
	}
	store.Add(contracts.PricePoint{Symbol: "OLD", Timestamp: asOf.AddDate(0, 0, -200), Close: 1, Volume: 1})
	store.Add(contracts.PricePoint{Symbol: "NEW", Timestamp: asOf.AddDate(0, 0, 5), Close: 1, Volume: 1})

	loader := NewLoader(store, 2, logger.NewNop())
	series, err := loader.Load(context.Background(), asOf, 90)
	require.NoError(t, err)

	require.Len(t, series, 2, "NEW has nothing on or before as-of")
	assert.Equal(t, "AAA", series[0].Symbol)
	assert.Len(t, series[0].Points, 3, "(-89, -1, 0) are inside the window")
	assert.Equal(t, "OLD", series[1].Symbol)
	assert.True(t, series[1].IsEmpty())
}

func TestLoader_StoreUnavailable(t *testing.T) {
	asOf := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	_, err := NewLoader(failingStore{failSymbols: true}, 1, logger.NewNop()).Load(context.Background(), asOf, 90)
	assert.True(t, contracts.IsStoreUnavailable(err))

	_, err = NewLoader(failingStore{}, 1, logger.NewNop()).Load(context.Background(), asOf, 90)
	assert.True(t, contracts.IsStoreUnavailable(err))
	assert.ErrorContains(t, err, "timeout")
}

func TestLoadCSV(t *testing.T) {
	data := `symbol,date,close,volume,market_cap
AAA,2024-01-02,10.5,1200,1000000
AAA,2024-01-03,10.7,1300,
BBB,2024-01-02,99,50
`
	store, err := LoadCSV(strings.NewReader(data))
	require.NoError(t, err)

	asOf := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	symbols, err := store.Symbols(context.Background(), asOf)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA", "BBB"}, symbols)

	points, err := store.History(context.Background(), "AAA", asOf.AddDate(0, 0, -10), asOf)
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.NotNil(t, points[0].MarketCap)
	assert.Equal(t, 1000000.0, *points[0].MarketCap)
	assert.Nil(t, points[1].MarketCap)
	assert.Equal(t, int64(1300), points[1].Volume)
}

func TestLoadCSV_Invalid(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("AAA,2024-13-40,1,1\n"))
	assert.ErrorContains(t, err, "line 1")

	_, err = LoadCSV(strings.NewReader("AAA,2024-01-02,1\n"))
	assert.ErrorContains(t, err, "at least 4 fields")
}

func TestMemoryStore_Points(t *testing.T) {
	d := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.Add(
		contracts.PricePoint{Symbol: "BBB", Timestamp: d, Close: 1},
		contracts.PricePoint{Symbol: "AAA", Timestamp: d.AddDate(0, 0, 1), Close: 2},
		contracts.PricePoint{Symbol: "AAA", Timestamp: d, Close: 3},
	)

	points := store.Points()
	require.Len(t, points, 3)
	assert.Equal(t, []float64{3, 2, 1}, []float64{points[0].Close, points[1].Close, points[2].Close})
}

func TestMemoryStore_Series(t *testing.T) {
	store := NewMemoryStore()
	d := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	store.Add(
		contracts.PricePoint{Symbol: "BBB", Timestamp: d.AddDate(0, 0, 1), Close: 2},
		contracts.PricePoint{Symbol: "AAA", Timestamp: d, Close: 1},
		contracts.PricePoint{Symbol: "BBB", Timestamp: d, Close: 1},
	)

	series := store.Series()
	require.Len(t, series, 2)
	assert.Equal(t, "AAA", series[0].Symbol)
	assert.Equal(t, "BBB", series[1].Symbol)
	assert.Equal(t, []float64{1, 2}, series[1].Closes())
}
