package jobs

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/stockreco/pkg/logger"
)

// Pinger is a dependency that can report its reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheckJob pings the stores the next run depends on
type HealthCheckJob struct {
	targets map[string]Pinger
	logger  *logger.Logger
}

// NewHealthCheckJob creates a new health check job
func NewHealthCheckJob(targets map[string]Pinger, log *logger.Logger) *HealthCheckJob {
	return &HealthCheckJob{
		targets: targets,
		logger:  log,
	}
}

// Name returns the job name
func (j *HealthCheckJob) Name() string {
	return "store_health_check"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *HealthCheckJob) Schedule() string {
	return "0 */5 * * * *" // Every 5 minutes
}

// Run pings every target; the error lists the unreachable ones
func (j *HealthCheckJob) Run(ctx context.Context) error {
	names := make([]string, 0, len(j.targets))
	for name := range j.targets {
		names = append(names, name)
	}
	sort.Strings(names)

	var failed []string
	for _, name := range names {
		if err := j.targets[name].Ping(ctx); err != nil {
			j.logger.WithFields(map[string]interface{}{
				"target": name,
			}).WithError(err).Warn("Health check failed")
			failed = append(failed, name)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("unreachable: %s", strings.Join(failed, ", "))
	}

	j.logger.WithFields(map[string]interface{}{"targets": len(names)}).Debug("Health check passed")
	return nil
}
