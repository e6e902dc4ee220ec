package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/toryoki/jobhub/internal/domain/job"
	"github.com/toryoki/jobhub/internal/jobs"
	"github.com/toryoki/jobhub/internal/mail"
	"github.com/toryoki/jobhub/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

// WorkWaiter blocks until new work is signalled or the timeout elapses.
// Optional; without it the worker just polls.
type WorkWaiter interface {
	WaitForWork(ctx context.Context, timeout time.Duration) (bool, error)
}

type Config struct {
	WorkerID      string
	PollInterval  time.Duration
	Concurrency   int
	LockTTL       time.Duration
	ShutdownGrace time.Duration
}

// Worker drains the mail_jobs table and hands each payload to the mailer.
type Worker struct {
	cfg    Config
	repo   JobsRepository
	mailer mail.Mailer
	waiter WorkWaiter
	prom   *observability.Prom
	log    *slog.Logger

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, mailer mail.Mailer, waiter WorkWaiter, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = time.Minute
	}

	return &Worker{
		cfg:    cfg,
		repo:   repo,
		mailer: mailer,
		waiter: waiter,
		prom:   prom,
		log:    log,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	var wg sync.WaitGroup

	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()
			w.loop(ctx, fmt.Sprintf("%s-%d", w.cfg.WorkerID, n))
		}(i)
	}

	// one goroutine periodically frees jobs from crashed workers
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.requeueLoop(ctx)
	}()

	wg.Wait()
	w.log.Info("worker shutdown complete")
	return nil
}

func (w *Worker) loop(ctx context.Context, workerID string) {
	for {
		if ctx.Err() != nil {
			return
		}

		worked, err := w.ProcessOne(ctx, workerID)

		if err != nil {
			w.log.Error("process job", "err", err, "worker_id", workerID)
		}

		if worked {
			// drain while there is work
			continue
		}

		w.idle(ctx)
	}
}

// idle waits for a redis nudge, falling back to the poll interval.
func (w *Worker) idle(ctx context.Context) {
	if w.waiter != nil {
		_, err := w.waiter.WaitForWork(ctx, w.cfg.PollInterval)

		if err != nil && ctx.Err() == nil {
			w.log.Warn("work wait failed, falling back to poll", "err", err)
		} else {
			return
		}
	}

	select {
	case <-ctx.Done():
	case <-time.After(w.cfg.PollInterval):
	}
}

// ProcessOne claims and executes at most one job. The bool reports whether a
// job was claimed at all.
func (w *Worker) ProcessOne(ctx context.Context, workerID string) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	j, err := w.repo.ClaimNext(claimCtx, workerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}
		return false, err
	}

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()
	err = w.execute(ctx, j)

	if err != nil {
		w.handleFailure(ctx, j, err, time.Since(start))
		return true, nil
	}

	if w.prom != nil {
		w.prom.ObserveJob(j.Type, "done", time.Since(start))
	}

	if err := w.repo.MarkDone(ctx, j.ID); err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		return true, err
	}

	w.log.Info("mail job delivered", "job_id", j.ID, "type", j.Type, "attempt", j.Attempts)
	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	payload, err := jobs.DecodePayload(j)

	if err != nil {
		return err
	}

	var msg mail.Message

	switch p := payload.(type) {
	case jobs.WelcomeEmailPayload:
		msg = mail.WelcomeMessage(p.Email, p.Name)
	case jobs.PasswordChangedEmailPayload:
		msg = mail.PasswordChangedMessage(p.Email, p.Name)
	default:
		return jobs.ErrInvalidJobType
	}

	return w.mailer.Send(ctx, msg)
}

func (w *Worker) handleFailure(ctx context.Context, j job.Job, execErr error, elapsed time.Duration) {
	// undecodable payloads never succeed; dead-letter immediately
	if errors.Is(execErr, jobs.ErrInvalidJobType) || errors.Is(execErr, jobs.ErrInvalidJobPayload) {
		if w.prom != nil {
			w.prom.ObserveJob(j.Type, "failed", elapsed)
		}
		_ = w.repo.MarkFailed(ctx, j.ID, execErr.Error())
		w.log.Error("mail job dead-lettered", "job_id", j.ID, "type", j.Type, "err", execErr)
		return
	}

	if j.Attempts >= j.MaxAttempts {
		if w.prom != nil {
			w.prom.ObserveJob(j.Type, "failed", elapsed)
		}
		_ = w.repo.MarkFailed(ctx, j.ID, execErr.Error())
		w.log.Error("mail job exhausted retries", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts, "err", execErr)
		return
	}

	if w.prom != nil {
		w.prom.ObserveJob(j.Type, "retry", elapsed)
	}

	runAt := time.Now().UTC().Add(ExponentialBackoff(j.Attempts))

	if err := w.repo.Reschedule(ctx, j.ID, runAt, execErr.Error()); err != nil {
		w.log.Error("reschedule failed", "job_id", j.ID, "err", err)
	}

	w.log.Warn("mail job rescheduled", "job_id", j.ID, "type", j.Type, "attempt", j.Attempts, "run_at", runAt, "err", execErr)
}

func (w *Worker) requeueLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.LockTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL)

			if err != nil {
				w.log.Error("requeue stale jobs", "err", err)
				continue
			}
			if n > 0 {
				w.log.Warn("requeued stale mail jobs", "count", n)
			}
		}
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
