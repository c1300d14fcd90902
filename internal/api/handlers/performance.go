package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/stockreco/internal/audit"
	"github.com/wonny/stockreco/pkg/logger"
)

const (
	defaultLookbackDays = 30
	maxLookbackDays     = 365
)

// PerformanceHandler serves historical performance of a symbol
type PerformanceHandler struct {
	analyzer *audit.Analyzer
	logger   *logger.Logger
}

// NewPerformanceHandler creates a new performance handler
func NewPerformanceHandler(analyzer *audit.Analyzer, log *logger.Logger) *PerformanceHandler {
	return &PerformanceHandler{
		analyzer: analyzer,
		logger:   log,
	}
}

// Get returns the performance report of one symbol
// GET /api/performance/{symbol}?days=30&date=YYYY-MM-DD
func (h *PerformanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	if symbol == "" {
		respondError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	days := defaultLookbackDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLookbackDays {
			respondError(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = n
	}

	asOf, ok, err := parseDate(r, "date")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)")
		return
	}
	if !ok {
		asOf = time.Now().UTC()
	}

	report, err := h.analyzer.Analyze(r.Context(), symbol, asOf, days)
	if err != nil {
		h.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
		}).WithError(err).Warn("Performance analysis failed")
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondJSON(w, http.StatusOK, report)
}
