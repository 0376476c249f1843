// Package cronrunner schedules the radar's daily maintenance jobs, such
// as the price-history and signal retention prune, on second-precision
// cron expressions.
package cronrunner

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner owns the cron scheduler and the base context its jobs run
// under. Cancelling the base context cancels in-flight maintenance work.
type Runner struct {
	cron    *cron.Cron
	log     *zap.Logger
	baseCtx context.Context
}

func New(log *zap.Logger, baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Runner{
		cron:    cron.New(cron.WithSeconds()),
		log:     log,
		baseCtx: baseCtx,
	}
}

// Add schedules job on a second-precision cron spec.
func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		job(r.jobContext())
	})
}

func (r *Runner) jobContext() context.Context {
	if r == nil || r.baseCtx == nil {
		return context.Background()
	}
	return r.baseCtx
}

func (r *Runner) Start() {
	if r.log != nil {
		r.log.Info("maintenance cron started")
	}
	r.cron.Start()
}

// Stop halts scheduling and waits for any running job to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	if r.log != nil {
		r.log.Info("maintenance cron stopped")
	}
}
