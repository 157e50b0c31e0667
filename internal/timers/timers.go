// Package timers provides keyed, cancellable scheduling: one-shot deadlines and
// repeating tickers. Both enforce at most one live entry per key; installing a new
// entry under a key that already holds one cancels the old entry first.
package timers

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Canceler cancels the scheduled action under key, reporting whether one was live.
type Canceler interface {
	Cancel(key string) bool
}

// Deadlines schedules one-shot actions keyed by string. A fired action removes
// its own entry; Cancel of an absent or already-fired key is a safe no-op.
type Deadlines struct {
	logger  *slog.Logger
	mu      sync.Mutex
	entries map[string]*time.Timer
}

// NewDeadlines creates an empty one-shot scheduler.
func NewDeadlines(log *slog.Logger) *Deadlines {
	return &Deadlines{
		logger:  log.With(slog.String("timers", "deadlines")),
		entries: map[string]*time.Timer{},
	}
}

// Schedule installs fn to run once after delay. Any live entry under key is
// stopped before the new one is installed, so the old action can no longer fire.
func (d *Deadlines) Schedule(key string, delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if prev, ok := d.entries[key]; ok {
		prev.Stop()
		d.logger.Debug("replaced deadline", slog.String("key", key))
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		// A replacement or cancel may have raced the firing; only the live
		// entry gets to run.
		if d.entries[key] != timer {
			d.mu.Unlock()
			return
		}
		delete(d.entries, key)
		d.mu.Unlock()
		fn()
	})
	d.entries[key] = timer
}

// Cancel stops and removes the entry under key if present.
func (d *Deadlines) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	timer, ok := d.entries[key]
	if !ok {
		return false
	}
	timer.Stop()
	delete(d.entries, key)
	return true
}

// StopAll cancels every live entry. Used at shutdown.
func (d *Deadlines) StopAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, timer := range d.entries {
		timer.Stop()
		delete(d.entries, key)
	}
}

// Tickers runs repeating actions keyed by string, each on its own goroutine.
// The first fire happens one full period after Start.
type Tickers struct {
	logger  *slog.Logger
	mu      sync.Mutex
	entries map[string]context.CancelFunc
}

// NewTickers creates an empty repeating scheduler.
func NewTickers(log *slog.Logger) *Tickers {
	return &Tickers{
		logger:  log.With(slog.String("timers", "tickers")),
		entries: map[string]context.CancelFunc{},
	}
}

// Start installs fn to run every period. Any live loop under key is stopped
// before the new one is installed; duplicate loops never accumulate.
func (t *Tickers) Start(key string, every time.Duration, fn func()) {
	ctx, cancel := context.WithCancel(context.Background())
	t.mu.Lock()
	if prev, ok := t.entries[key]; ok {
		prev()
		t.logger.Debug("replaced ticker", slog.String("key", key))
	}
	t.entries[key] = cancel
	t.mu.Unlock()

	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// Cancel stops and removes the loop under key if present.
func (t *Tickers) Cancel(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cancel, ok := t.entries[key]
	if !ok {
		return false
	}
	cancel()
	delete(t.entries, key)
	return true
}

// StopAll cancels every live loop. Used at shutdown.
func (t *Tickers) StopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, cancel := range t.entries {
		cancel()
		delete(t.entries, key)
	}
}
