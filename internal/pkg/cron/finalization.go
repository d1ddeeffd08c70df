package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
)

type FinalizationJobs struct {
	finalizationService finalization.FinalizationService
	batchLimit          int
}

func NewFinalizationJobs(finalizationService finalization.FinalizationService, batchLimit int) *FinalizationJobs {
	return &FinalizationJobs{
		finalizationService: finalizationService,
		batchLimit:          batchLimit,
	}
}

// RegisterJobs adds the repair job. A non-positive interval leaves it off.
func (j *FinalizationJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	if interval <= 0 {
		slog.Info("Cron: finalization repair job disabled")
		return
	}
	// a run must finish before the next tick would start one
	scheduler.AddJob("repair_incomplete_finalizations", interval, j.RepairIncompleteFinalizations, WithTimeout(interval))
}

// RepairIncompleteFinalizations re-commits finalizations left with
// sync_status = incomplete.
func (j *FinalizationJobs) RepairIncompleteFinalizations(ctx context.Context) error {
	repaired, err := j.finalizationService.RepairIncomplete(ctx, j.batchLimit)
	if err != nil {
		return err
	}
	if repaired > 0 {
		slog.Info("Cron: repaired incomplete finalizations", "count", repaired)
	}
	return nil
}
