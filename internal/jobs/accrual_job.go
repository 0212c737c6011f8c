package jobs

import (
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/pixistaking/backend/internal/services/accrual"
)

// AccrualJob runs the accrual tick on a fixed interval. The tick itself
// computes exact elapsed time per stake, so the interval only controls how
// often earnings land, not how much is earned.
type AccrualJob struct {
	scheduler *gocron.Scheduler
	accrual   *accrual.Service
	interval  time.Duration
}

// NewAccrualJob creates a new accrual job
func NewAccrualJob(accrualSvc *accrual.Service, interval time.Duration) *AccrualJob {
	return &AccrualJob{
		scheduler: gocron.NewScheduler(time.UTC),
		accrual:   accrualSvc,
		interval:  interval,
	}
}

// Start schedules the recurring tick and returns immediately.
func (j *AccrualJob) Start() error {
	if _, err := j.scheduler.Every(j.interval).Do(j.run); err != nil {
		return err
	}
	j.scheduler.StartAsync()
	zap.L().Info("accrual scheduler started", zap.Duration("interval", j.interval))
	return nil
}

// Stop stops the scheduler and waits for a running tick to finish.
func (j *AccrualJob) Stop() {
	j.scheduler.Stop()
}

func (j *AccrualJob) run() {
	results, err := j.accrual.RunTick(time.Now().UTC())
	if err != nil {
		zap.L().Error("accrual tick failed", zap.Error(err))
		return
	}
	if len(results) > 0 {
		zap.L().Info("accrual tick completed", zap.Int("users_credited", len(results)))
	}
}
