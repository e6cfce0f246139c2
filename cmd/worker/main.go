package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"offertanalys/internal/bootstrap"
	"offertanalys/internal/quotes"
	"offertanalys/internal/shared/config"
	"offertanalys/internal/shared/storage/db"
	"offertanalys/internal/shared/telemetry"
)

// sweepTimeout caps one run.
const sweepTimeout = 150 * time.Minute

func main() {
	cfg := config.Load()
	telemetry.Init(cfg.Env, cfg.LogLevel)
	defer telemetry.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbOpts := db.DefaultWorkerOptions()
	app, err := bootstrap.Build(ctx, cfg, bootstrap.Options{DBOptions: &dbOpts, SkipRouter: true})
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()

	job := &sweepJob{
		Svc:     app.Quotes,
		Window:  quotes.DefaultSweepWindow,
		Limit:   cfg.SweepBatchSize,
		Timeout: sweepTimeout,
	}
	c, err := newScheduler(cfg.SweepSchedule, job)
	if err != nil {
		log.Fatalf("schedule %q: %v", cfg.SweepSchedule, err)
	}

	telemetry.Info("worker.start", map[string]any{"schedule": cfg.SweepSchedule, "batch_size": cfg.SweepBatchSize})
	c.Start()
	<-ctx.Done()

	telemetry.Info("worker.shutdown", nil)
	<-c.Stop().Done()
}

type pendingSweeper interface {
	SweepPending(ctx context.Context, window time.Duration, limit int) (quotes.BatchResult, error)
}

// sweepJob analyzes pending quotes that were uploaded without inline analysis.
type sweepJob struct {
	Svc     pendingSweeper
	Window  time.Duration
	Limit   int
	Timeout time.Duration
}

func (j *sweepJob) Run() {
	ctx := context.Background()
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	start := time.Now()
	res, err := j.Svc.SweepPending(ctx, j.Window, j.Limit)
	if err != nil {
		telemetry.Error("worker.sweep.failed", map[string]any{"error": err})
		return
	}
	if res.Success+res.Failed == 0 {
		return
	}
	telemetry.Info("worker.sweep.complete", map[string]any{
		"success":     res.Success,
		"failed":      res.Failed,
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// newScheduler registers job on schedule; overlapping runs are skipped.
func newScheduler(schedule string, job cron.Job) (*cron.Cron, error) {
	logger := cronLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddJob(schedule, job); err != nil {
		return nil, err
	}
	return c, nil
}

// cronLogger routes cron's own logging to telemetry.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	telemetry.Info("cron."+msg, pairs(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	fields := pairs(keysAndValues)
	fields["error"] = err
	telemetry.Error("cron."+msg, fields)
}

func pairs(kv []any) map[string]any {
	fields := make(map[string]any, len(kv)/2+1)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			fields[key] = kv[i+1]
		}
	}
	return fields
}
