// Package scheduler triggers the periodic batch refresh on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/parceltrax/tracking-system/internal/api/metrics"
	"github.com/parceltrax/tracking-system/internal/core/ports"
)

// Scheduler wraps a cron runner around the refresh service. Consecutive
// invocations never overlap: when a cycle is still running the next trigger
// is skipped, so two cycles can never race on the same persisted package.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New builds the scheduler with one job firing every interval.
func New(interval time.Duration, refresh ports.RefreshService, log zerolog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler: interval must be positive, got %s", interval)
	}

	cronLog := cronLogger{log: log}
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cronLog),
		cron.Recover(cronLog),
	))

	_, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		refresh.RunScheduledRefresh(context.Background())
	})
	if err != nil {
		return nil, fmt.Errorf("scheduler: register job: %w", err)
	}

	return &Scheduler{cron: c, log: log}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop halts triggering and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// cronLogger adapts zerolog to the cron.Logger interface. Its Info level is
// mapped to debug. Cron narrates every skip, and a skip is also counted as
// a metric.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	if msg == "skip" {
		metrics.RefreshCyclesTotal.WithLabelValues("skipped").Inc()
	}
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
