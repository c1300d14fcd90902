package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/wonny/stockreco/internal/contracts"
)

const dateLayout = "2006-01-02"

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps engine errors to HTTP status codes
func statusFor(err error) int {
	var storeErr *contracts.StoreUnavailableError
	var insufficient *contracts.InsufficientDataError
	switch {
	case errors.As(err, &insufficient):
		return http.StatusNotFound
	case contracts.IsConfigurationError(err):
		return http.StatusBadRequest
	case errors.As(err, &storeErr):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// parseDate reads an optional YYYY-MM-DD query value
func parseDate(r *http.Request, key string) (time.Time, bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
