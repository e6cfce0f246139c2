package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"offertanalys/internal/quotes"
)

type fakeSweeper struct {
	calls  int
	window time.Duration
	limit  int
	res    quotes.BatchResult
	err    error
	hasDL  bool
}

func (f *fakeSweeper) SweepPending(ctx context.Context, window time.Duration, limit int) (quotes.BatchResult, error) {
	f.calls++
	f.window = window
	f.limit = limit
	_, f.hasDL = ctx.Deadline()
	return f.res, f.err
}

func TestSweepJobRunsWithWindowAndLimit(t *testing.T) {
	svc := &fakeSweeper{res: quotes.BatchResult{Success: 2, Failed: 1}}
	job := &sweepJob{Svc: svc, Window: 24 * time.Hour, Limit: 25, Timeout: time.Minute}

	job.Run()

	if svc.calls != 1 || svc.window != 24*time.Hour || svc.limit != 25 {
		t.Fatalf("unexpected call %+v", svc)
	}
	if !svc.hasDL {
		t.Fatalf("expected a deadline on the sweep context")
	}
}

func TestSweepJobSurvivesErrors(t *testing.T) {
	svc := &fakeSweeper{err: errors.New("db down")}
	job := &sweepJob{Svc: svc, Window: time.Hour, Limit: 5}

	job.Run()

	if svc.calls != 1 || svc.hasDL {
		t.Fatalf("unexpected call %+v", svc)
	}
}

func TestNewScheduler(t *testing.T) {
	job := &sweepJob{Svc: &fakeSweeper{}}
	if _, err := newScheduler("@every 15m", job); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}
	if _, err := newScheduler("*/5 * * * *", job); err != nil {
		t.Fatalf("standard cron rejected: %v", err)
	}
	if _, err := newScheduler("every so often", job); err == nil {
		t.Fatalf("expected invalid schedule error")
	}
}

func TestPairs(t *testing.T) {
	got := pairs([]any{"entry", 1, "next", "soon", "dangling"})
	if len(got) != 2 || got["entry"] != 1 || got["next"] != "soon" {
		t.Fatalf("unexpected fields %v", got)
	}
}
