package jobs

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/toryoki/jobhub/internal/domain/job"
)

type fakeJobsCreator struct {
	created []job.CreateRequest
	err     error
}

func (f *fakeJobsCreator) Create(ctx context.Context, req job.CreateRequest) (job.Job, error) {
	if f.err != nil {
		return job.Job{}, f.err
	}
	f.created = append(f.created, req)
	return job.Job{ID: "job-1", Type: req.Type, Payload: req.Payload}, nil
}

type fakeNotifier struct {
	notified []string
	err      error
}

func (f *fakeNotifier) NotifyWork(ctx context.Context, jobID string) error {
	if f.err != nil {
		return f.err
	}
	f.notified = append(f.notified, jobID)
	return nil
}

func TestEnqueuePersistsAndNotifies(t *testing.T) {
	repo := &fakeJobsCreator{}
	notify := &fakeNotifier{}
	q := NewQueue(repo, notify, slog.Default())

	err := q.Enqueue(context.Background(), JobWelcomeEmail, WelcomeEmailPayload{
		UserID: "u1", Email: "u1@example.com", Name: "Uma",
	})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("created %d jobs, want 1", len(repo.created))
	}
	if repo.created[0].Type != string(JobWelcomeEmail) {
		t.Errorf("job type = %q", repo.created[0].Type)
	}
	if len(notify.notified) != 1 || notify.notified[0] != "job-1" {
		t.Errorf("notified = %v, want [job-1]", notify.notified)
	}
}

func TestEnqueueRejectsInvalidPayload(t *testing.T) {
	repo := &fakeJobsCreator{}
	q := NewQueue(repo, nil, slog.Default())

	err := q.Enqueue(context.Background(), JobWelcomeEmail, WelcomeEmailPayload{UserID: "u1"})
	if !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("err = %v, want ErrInvalidJobPayload", err)
	}
	if len(repo.created) != 0 {
		t.Error("invalid payload reached the store")
	}
}

func TestEnqueueToleratesNudgeFailure(t *testing.T) {
	repo := &fakeJobsCreator{}
	notify := &fakeNotifier{err: errors.New("redis down")}
	q := NewQueue(repo, notify, slog.Default())

	err := q.Enqueue(context.Background(), JobWelcomeEmail, WelcomeEmailPayload{
		UserID: "u1", Email: "u1@example.com",
	})
	if err != nil {
		t.Fatalf("Enqueue: %v, nudge failures must not fail the enqueue", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("created %d jobs, want 1", len(repo.created))
	}
}

func TestEnqueueSurfacesStoreFailure(t *testing.T) {
	repo := &fakeJobsCreator{err: errors.New("db down")}
	q := NewQueue(repo, &fakeNotifier{}, slog.Default())

	err := q.Enqueue(context.Background(), JobWelcomeEmail, WelcomeEmailPayload{
		UserID: "u1", Email: "u1@example.com",
	})
	if err == nil {
		t.Fatal("expected error from store")
	}
}
