package cron

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcpl-automation/coilprint-backend/pkg/logger"
)

type fakeLock struct {
	allow    bool
	acquires int
	releases int
}

func (l *fakeLock) Acquire(ctx context.Context) (bool, error) {
	l.acquires++
	return l.allow, nil
}

func (l *fakeLock) Release(ctx context.Context) error {
	l.releases++
	return nil
}

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func newCronLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func TestRunCycleExecutesJobsInOrder(t *testing.T) {
	first := &countingJob{name: "first"}
	second := &countingJob{name: "second", err: fmt.Errorf("boom")}
	third := &countingJob{name: "third"}
	lock := &fakeLock{allow: true}

	svc, err := NewService(ServiceParams{
		Logger:   newCronLogger(),
		Registry: NewRegistry(first, second, third),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}

	// A failing job must not stop the jobs after it.
	if first.runs != 1 || second.runs != 1 || third.runs != 1 {
		t.Fatalf("unexpected run counts: %d %d %d", first.runs, second.runs, third.runs)
	}
	if lock.acquires != 1 || lock.releases != 1 {
		t.Fatalf("lock not balanced: acquires=%d releases=%d", lock.acquires, lock.releases)
	}
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &countingJob{name: "sync"}
	lock := &fakeLock{allow: false}

	svc, err := NewService(ServiceParams{
		Logger:   newCronLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if err := svc.runCycle(context.Background()); err != nil {
		t.Fatalf("runCycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatal("job must not run without the lock")
	}
	if lock.releases != 0 {
		t.Fatal("lock must not be released when never acquired")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	svc, err := NewService(ServiceParams{
		Logger:   newCronLogger(),
		Lock:     &fakeLock{allow: true},
		Interval: time.Minute,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("unexpected run error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
