package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-finalization-go/internal/domain/finalization"
	"github.com/stretchr/testify/assert"
)

type repairStub struct {
	finalization.FinalizationService
	calls     atomic.Int32
	lastLimit int
	err       error
}

func (s *repairStub) RepairIncomplete(ctx context.Context, limit int) (int, error) {
	s.calls.Add(1)
	s.lastLimit = limit
	return 1, s.err
}

func TestFinalizationJobs_RunOnce(t *testing.T) {
	stub := &repairStub{}
	scheduler := NewScheduler()
	NewFinalizationJobs(stub, 25).RegisterJobs(scheduler, time.Minute)

	scheduler.RunOnce(context.Background())

	assert.Equal(t, int32(1), stub.calls.Load())
	assert.Equal(t, 25, stub.lastLimit)
	assert.Equal(t, time.Minute, scheduler.jobs[0].Timeout)
}

func TestFinalizationJobs_DisabledInterval(t *testing.T) {
	stub := &repairStub{}
	scheduler := NewScheduler()
	NewFinalizationJobs(stub, 25).RegisterJobs(scheduler, 0)

	scheduler.RunOnce(context.Background())

	assert.Equal(t, int32(0), stub.calls.Load())
}

func TestFinalizationJobs_PropagatesError(t *testing.T) {
	stub := &repairStub{err: errors.New("db down")}

	err := NewFinalizationJobs(stub, 10).RepairIncompleteFinalizations(context.Background())

	assert.EqualError(t, err, "db down")
}

func TestScheduler_StartStop(t *testing.T) {
	stub := &repairStub{}
	scheduler := NewScheduler()
	NewFinalizationJobs(stub, 5).RegisterJobs(scheduler, time.Hour)

	scheduler.Start()
	assert.Eventually(t, func() bool { return stub.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
	scheduler.Stop()
}
