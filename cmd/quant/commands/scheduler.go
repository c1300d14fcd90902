package commands

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/wonny/stockreco/internal/brain"
	"github.com/wonny/stockreco/internal/scheduler"
	"github.com/wonny/stockreco/internal/scheduler/jobs"
	"github.com/wonny/stockreco/internal/strategyconfig"
	"github.com/wonny/stockreco/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행 (완료까지 대기)

Example:
  go run ./cmd/quant scheduler start
  go run ./cmd/quant scheduler list
  go run ./cmd/quant scheduler run daily_recommendation`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- daily_recommendation: SCHEDULE_CRON (기본: 평일 18:30, TZ_MARKET 기준)
- store_health_check: 5분마다 (DB/Redis 연결 확인)

METRICS_ENABLED=true 이면 METRICS_PORT 에서 /metrics 제공.
스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// newScheduler registers the recommendation and health check jobs
func newScheduler(a *app, orch *brain.Orchestrator, strategy *strategyconfig.Config) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log.WithComponent("scheduler"), scheduler.WithLocation(a.location()))

	recJob := jobs.NewRecommendationJob(orch, strategy, a.cfg.ScheduleCron, a.location(), a.log)
	if a.redis.Enabled() {
		recJob.WithCache(redis.NewCache(a.redis, "stockreco"))
	}
	if err := sched.AddJob(recJob); err != nil {
		return nil, err
	}

	targets := map[string]jobs.Pinger{}
	if a.db != nil {
		targets["database"] = a.db
	}
	if a.redis.Enabled() {
		targets["redis"] = a.redis
	}
	if err := sched.AddJob(jobs.NewHealthCheckJob(targets, a.log)); err != nil {
		return nil, err
	}

	return sched, nil
}

func initScheduler(cmd *cobra.Command) (*app, *scheduler.Scheduler, error) {
	a, err := newApp(cmd.Context(), appOptions{})
	if err != nil {
		return nil, nil, err
	}

	strategy, err := a.strategy()
	if err != nil {
		a.Close()
		return nil, nil, err
	}

	sched, err := newScheduler(a, a.orchestrator(nil), strategy)
	if err != nil {
		a.Close()
		return nil, nil, fmt.Errorf("init scheduler: %w", err)
	}
	return a, sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Recommendation Scheduler ===")

	a, sched, err := initScheduler(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.MetricsEnabled {
		metricsServer := &http.Server{Addr: ":" + a.cfg.MetricsPort, Handler: a.metrics.Handler()}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.WithError(err).Error("Metrics server failed")
			}
		}()
		defer metricsServer.Close()
	}

	// Start scheduler
	sched.Start()

	fmt.Fprintln(out, "\n✅ Scheduler started successfully")
	fmt.Fprintln(out, "\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		next, _ := sched.NextRun(jobName)
		fmt.Fprintf(out, "  - %s (next: %s)\n", jobName, next.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	<-cmd.Context().Done()

	fmt.Fprintln(out, "\nShutting down scheduler...")
	sched.Stop()
	fmt.Fprintln(out, "Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	stats := sched.GetJobStats()
	fmt.Fprintln(out, "Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Fprintf(out, "  - %s (%s)\n", jobName, stats[jobName].Schedule)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Running job: %s\n", jobName)

	a, sched, err := initScheduler(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := sched.RunNow(cmd.Context(), jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		PrintError(out, fmt.Sprintf("Job %s failed after %s: %s", jobName, result.Duration, result.Error))
		return errors.New(result.Error)
	}
	PrintSuccess(out, fmt.Sprintf("Job %s completed in %s", jobName, result.Duration))
	return nil
}
