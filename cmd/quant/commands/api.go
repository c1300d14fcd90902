package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/stockreco/internal/api"
	"github.com/wonny/stockreco/internal/api/handlers"
	"github.com/wonny/stockreco/internal/api/ws"
	"github.com/wonny/stockreco/internal/audit"
	"github.com/wonny/stockreco/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 추천 조회 및 수동 실행 엔드포인트 제공
- 실행 완료 이벤트 WebSocket 스트림 제공

Endpoints:
  GET  /health                         - Health check
  GET  /metrics                        - Prometheus metrics
  GET  /api/recommendations?date=      - 추천 조회 (기본: 최신)
  POST /api/recommendations/run        - 파이프라인 수동 실행
  GET  /api/performance/{symbol}?days= - 종목 과거 성과
  GET  /ws/runs                        - 실행 완료 이벤트

Example:
  go run ./cmd/quant api
  go run ./cmd/quant api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "일일 추천 스케줄러를 함께 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Stock Recommendation API Server ===")

	// 1. Dependencies
	a, err := newApp(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	strategy, err := a.strategy()
	if err != nil {
		return err
	}

	// 2. Pipeline + event hub
	hub := ws.NewHub(a.log.WithComponent("ws"))
	orch := a.orchestrator(hub)

	// 3. Handlers
	recHandler := handlers.NewRecommendationHandler(a.recs, orch, strategy, a.log).
		WithLocation(a.location())
	if a.redis.Enabled() {
		recHandler.
			WithCache(redis.NewCache(a.redis, "stockreco")).
			WithLimiter(redis.NewRateLimiter(a.redis, "stockreco"))
	}
	perfHandler := handlers.NewPerformanceHandler(audit.NewAnalyzer(a.history, a.log), a.log)

	routes := api.Routes{
		Recommendations: recHandler,
		Performance:     perfHandler,
		Hub:             hub,
	}
	if a.cfg.MetricsEnabled {
		routes.Metrics = a.metrics.Handler()
	}

	// 4. Server
	server := api.New(a.cfg, a.log, api.NewRouter(routes, a.log))

	if apiWithScheduler {
		sched, err := newScheduler(a, orch, strategy)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	a.log.Info("API server started successfully")
	fmt.Fprintf(out, "\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	// Wait for interrupt signal or server failure
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}
