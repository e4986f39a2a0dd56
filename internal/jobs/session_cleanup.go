// Package jobs runs the periodic housekeeping tasks.
package jobs

import (
	"fmt"
	"log/slog"

	"fitcomp/internal/metrics"

	"github.com/robfig/cron/v3"
)

// SessionPurger deletes expired sessions and reports how many were removed.
type SessionPurger interface {
	DeleteExpiredSessions() (int64, error)
}

// SessionCleanup purges expired login sessions on a cron schedule.
type SessionCleanup struct {
	cron   *cron.Cron
	purger SessionPurger
}

// NewSessionCleanup registers the purge on spec, a standard cron expression
// or a descriptor such as "@every 1h".
func NewSessionCleanup(spec string, purger SessionPurger) (*SessionCleanup, error) {
	j := &SessionCleanup{
		cron:   cron.New(),
		purger: purger,
	}
	if _, err := j.cron.AddFunc(spec, j.Run); err != nil {
		return nil, fmt.Errorf("invalid session cleanup schedule %q: %w", spec, err)
	}
	return j, nil
}

// Run purges once.
func (j *SessionCleanup) Run() {
	n, err := j.purger.DeleteExpiredSessions()
	if err != nil {
		slog.Error("session cleanup failed", "error", err)
		return
	}
	if n > 0 {
		metrics.SessionsPurged.Add(float64(n))
	}
	slog.Debug("session cleanup complete", "purged", n)
}

func (j *SessionCleanup) Start() {
	j.cron.Start()
	slog.Debug("session cleanup scheduled")
}

// Stop halts the schedule and waits for a running purge to finish.
func (j *SessionCleanup) Stop() {
	<-j.cron.Stop().Done()
}
