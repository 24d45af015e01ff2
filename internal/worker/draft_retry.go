package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// runTimeout bounds one sweep so a stalled store cannot pile up runs.
const runTimeout = 2 * time.Minute

// DraftRetrier re-attempts buffered appreciation writes that failed.
type DraftRetrier interface {
	RetryFailed(ctx context.Context) int
}

// Scheduler runs the periodic background jobs of the server.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// NewScheduler creates a stopped scheduler. Overlapping runs of the same
// job are skipped.
func NewScheduler(logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger: logger,
	}
}

// AddDraftRetry schedules r.RetryFailed on spec ("@every 30s", "*/1 * * * *").
func (s *Scheduler) AddDraftRetry(spec string, r DraftRetrier) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if n := r.RetryFailed(ctx); n > 0 {
			s.logger.Info("draft retry sweep", zap.Int("retried", n))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule draft retry %q: %w", spec, err)
	}
	s.logger.Info("draft retry scheduled", zap.String("spec", spec))
	return nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out")
	}
}

// runAll executes every registered job once, synchronously.
func (s *Scheduler) runAll() {
	for _, e := range s.cron.Entries() {
		e.Job.Run()
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
