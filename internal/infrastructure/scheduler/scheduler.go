// Package scheduler runs the periodic housekeeping jobs of the API process.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler wraps a cron runner. Jobs that panic are recovered and logged.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

func New(loc *time.Location, log zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		log: log,
	}
}

// Every registers job to run at a fixed interval. Intervals below one second
// are rejected.
func (s *Scheduler) Every(name string, interval time.Duration, job func()) (cron.EntryID, error) {
	if interval < time.Second {
		return 0, fmt.Errorf("job %s: interval must be at least 1s, got %s", name, interval)
	}
	id := s.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		start := time.Now()
		job()
		s.log.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("scheduled job finished")
	}))
	s.log.Info().Str("job", name).Dur("interval", interval).Msg("scheduled job registered")
	return id, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the runner and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// cronLogger adapts zerolog to cron's logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
