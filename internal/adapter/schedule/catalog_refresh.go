package schedule

import (
	"context"

	"github.com/berfenger/descview/internal/core/domain"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/reugn/go-quartz/job"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/zap"
)

const CATALOG_REFRESH_JOB = "catalog-refresh"

// ScheduleCatalogRefresh registers a job on sched that asks target for a
// full catalog reload every trigger tick.
func ScheduleCatalogRefresh(sched quartz.Scheduler, trigger quartz.Trigger, root *actor.RootContext, target *actor.PID, logger *zap.Logger) error {
	refresh := job.NewFunctionJob(func(_ context.Context) (bool, error) {
		logger.Debug("scheduler catalog refresh")
		root.Send(target, domain.RefreshCatalogRequest{})
		return true, nil
	})
	return sched.ScheduleJob(quartz.NewJobDetail(refresh, quartz.NewJobKey(CATALOG_REFRESH_JOB)), trigger)
}
