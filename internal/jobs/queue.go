package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/toryoki/jobhub/internal/domain/job"
)

type JobsCreator interface {
	Create(ctx context.Context, req job.CreateRequest) (job.Job, error)
}

// WorkNotifier nudges sleeping workers; delivery failures are tolerable
// because workers also poll.
type WorkNotifier interface {
	NotifyWork(ctx context.Context, jobID string) error
}

// Queue persists mail jobs and pokes the worker. It sits between the HTTP
// handlers and the mail worker; the handlers never talk SMTP directly.
type Queue struct {
	repo   JobsCreator
	notify WorkNotifier
	log    *slog.Logger
}

func NewQueue(repo JobsCreator, notify WorkNotifier, log *slog.Logger) *Queue {
	return &Queue{
		repo:   repo,
		notify: notify,
		log:    log,
	}
}

func (q *Queue) Enqueue(ctx context.Context, t JobType, payload any) error {
	if err := ValidatePayload(t, payload); err != nil {
		return err
	}

	raw, err := EncodePayload(t, payload)

	if err != nil {
		return err
	}

	j, err := q.repo.Create(ctx, job.CreateRequest{
		Type:    string(t),
		Payload: raw,
		RunAt:   time.Now().UTC(),
	})

	if err != nil {
		return err
	}

	if q.notify != nil {
		if err := q.notify.NotifyWork(ctx, j.ID); err != nil {
			q.log.Warn("queue nudge failed, worker will pick job up on poll", "job_id", j.ID, "err", err)
		}
	}

	return nil
}
