package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"tender-docs/internal/core/domain"
	"tender-docs/internal/core/port"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Scheduler runs periodic jobs in process
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler creates a scheduler whose specs carry a seconds field
func NewScheduler(logger *slog.Logger) *Scheduler {
	logger = logger.With("component", "scheduler")
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			recoverPanics(logger),
			logRuns(logger),
			cron.SkipIfStillRunning(cron.DiscardLogger),
		),
	)
	return &Scheduler{cron: c, logger: logger}
}

// Register schedules job on spec
func (s *Scheduler) Register(spec string, job NamedJob) error {
	if _, err := s.cron.AddJob(spec, job); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", job.Name(), err)
	}
	s.logger.Info("job scheduled", "job_name", job.Name(), "spec", spec)
	return nil
}

// Start runs the scheduler in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stopped before running jobs completed")
	}
}

// NamedJob is a cron job with a name used in logs
type NamedJob interface {
	cron.Job
	Name() string
}

// ReconcileJob sweeps incomplete uploads on every tick
type ReconcileJob struct {
	svc       port.ReconcileService
	threshold time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

// NewReconcileJob creates the sweep job. A zero timeout means no deadline.
func NewReconcileJob(svc port.ReconcileService, threshold, timeout time.Duration, logger *slog.Logger) *ReconcileJob {
	return &ReconcileJob{svc: svc, threshold: threshold, timeout: timeout, logger: logger}
}

func (j *ReconcileJob) Name() string {
	return "reconcile_incomplete_uploads"
}

func (j *ReconcileJob) Run() {
	ctx := context.Background()
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	report, err := j.svc.Reconcile(ctx, j.threshold)
	if err != nil {
		if errors.Is(err, domain.ErrReconcileInProgress) {
			j.logger.Info("reconciliation already running, tick skipped")
			return
		}
		j.logger.Error("scheduled reconciliation failed", "error", err)
		return
	}
	j.logger.Info("scheduled reconciliation done",
		"found", report.Found,
		"processed", report.Processed,
		"skipped", report.Skipped,
		"failed", len(report.Failed),
	)
}

func logRuns(logger *slog.Logger) cron.JobWrapper {
	return func(j cron.Job) cron.Job {
		return cron.FuncJob(func() {
			jobLogger := logger.With(
				slog.String("job_name", jobName(j)),
				slog.String("execution_id", uuid.NewString()),
			)
			start := time.Now()
			jobLogger.Debug("job started")
			j.Run()
			jobLogger.Debug("job finished", slog.Duration("duration", time.Since(start)))
		})
	}
}

func recoverPanics(logger *slog.Logger) cron.JobWrapper {
	return func(j cron.Job) cron.Job {
		return cron.FuncJob(func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("job panicked",
						slog.String("job_name", jobName(j)),
						slog.Any("panic", r),
						slog.String("stack_trace", string(debug.Stack())),
					)
				}
			}()
			j.Run()
		})
	}
}

func jobName(j cron.Job) string {
	if named, ok := j.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", j)
}
