package submission

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// LoopStopper tears down a user's presence loop. Satisfied by presence.Loops.
type LoopStopper interface {
	Stop(userID string)
}

// Janitor periodically evicts submissions older than the retention period.
// Undecided records otherwise live until process restart. Evicting a record
// also stops its presence loop; the decision that would have stopped it can
// no longer find the record.
type Janitor struct {
	store     *Store
	loops     LoopStopper
	cron      *cron.Cron
	schedule  string
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewJanitor creates a janitor sweeping store on the given cron schedule
// (e.g. "@every 1h"), evicting records older than retention.
func NewJanitor(log *slog.Logger, store *Store, loops LoopStopper, schedule string, retention time.Duration) *Janitor {
	return &Janitor{
		store:     store,
		loops:     loops,
		cron:      cron.New(),
		schedule:  schedule,
		retention: retention,
		logger:    log.With(slog.String("service", "janitor")),
		now:       time.Now,
	}
}

// Start registers the sweep job and starts the cron scheduler.
func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Sweep); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("started", slog.String("schedule", j.schedule), slog.Duration("retention", j.retention))
	return nil
}

// Stop halts the cron scheduler; a sweep already running finishes.
func (j *Janitor) Stop() {
	j.cron.Stop()
}

// Sweep evicts expired records once and stops their presence loops.
// Exposed for the scheduler and for tests.
func (j *Janitor) Sweep() {
	evicted := j.store.EvictBefore(j.now().Add(-j.retention))
	for _, rec := range evicted {
		if rec.UserID != "" {
			j.loops.Stop(rec.UserID)
		}
	}
	if len(evicted) > 0 {
		j.logger.Info("evicted stale submissions", slog.Int("count", len(evicted)))
	}
}
