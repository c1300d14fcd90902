package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stockreco/internal/audit"
	"github.com/wonny/stockreco/internal/contracts"
	"github.com/wonny/stockreco/internal/s0_data"
	"github.com/wonny/stockreco/pkg/logger"
)

func performanceRouter() http.Handler {
	store := s0_data.NewMemoryStore()
	for i := 0; i < 40; i++ {
		store.Add(contracts.PricePoint{
			Symbol:    "AAPL",
			Timestamp: day.AddDate(0, 0, i-39),
			Close:     100 + float64(i),
			Volume:    1000,
		})
	}

	h := NewPerformanceHandler(audit.NewAnalyzer(store, logger.NewNop()), logger.NewNop())
	r := mux.NewRouter()
	r.HandleFunc("/api/performance/{symbol}", h.Get)
	return r
}

func TestPerformanceHandler_Get(t *testing.T) {
	router := performanceRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/performance/aapl?days=10&date=2024-06-28", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var report contracts.PerformanceReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "AAPL", report.Symbol)
	assert.Equal(t, 10, report.Lookback)
	assert.Equal(t, 11, report.Points)
	assert.Greater(t, report.TotalReturn, 0.0)
	assert.Zero(t, report.MaxDrawdown)
	assert.Equal(t, contracts.RiskLow, report.RiskRating)
	assert.Greater(t, report.VaR95, 0.0, "no losing days")

	require.NotNil(t, report.Signals)
	assert.Equal(t, -1, report.Signals.RSI)
	assert.Equal(t, -1, report.Signals.Volume, "flat volume is not above average")
}

func TestPerformanceHandler_Get_Errors(t *testing.T) {
	router := performanceRouter()

	tests := []struct {
		name   string
		url    string
		status int
	}{
		{"unknown symbol", "/api/performance/ZZZZ?date=2024-06-28", http.StatusNotFound},
		{"bad days", "/api/performance/AAPL?days=0", http.StatusBadRequest},
		{"days too large", "/api/performance/AAPL?days=1000", http.StatusBadRequest},
		{"bad date", "/api/performance/AAPL?date=june", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
