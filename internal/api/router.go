package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/stockreco/internal/api/handlers"
	"github.com/wonny/stockreco/internal/api/ws"
	"github.com/wonny/stockreco/pkg/logger"
)

// Routes bundles the handlers mounted by NewRouter
type Routes struct {
	Recommendations *handlers.RecommendationHandler
	Performance     *handlers.PerformanceHandler
	Hub             *ws.Hub      // optional
	Metrics         http.Handler // optional
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(routes Routes, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	if routes.Metrics != nil {
		r.Handle("/metrics", routes.Metrics).Methods("GET")
	}

	// API (root router에 전체 경로로 등록: subrouter는 method 불일치를 404로 바꿈)
	// Recommendation endpoints
	r.HandleFunc("/api/recommendations", routes.Recommendations.List).Methods("GET")
	r.HandleFunc("/api/recommendations/run", routes.Recommendations.Run).Methods("POST")

	// Performance endpoints
	r.HandleFunc("/api/performance/{symbol}", routes.Performance.Get).Methods("GET")

	// 실행 이벤트 스트림
	if routes.Hub != nil {
		r.Handle("/ws/runs", routes.Hub)
	}

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "stockreco-api",
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Call next handler
			next.ServeHTTP(w, r)

			// Log request
			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
