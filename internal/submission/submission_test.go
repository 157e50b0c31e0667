package submission

import (
	"log/slog"
	"sync"
	"testing"
	"time"
)

type recordingStopper struct {
	mu      sync.Mutex
	stopped []string
}

func (r *recordingStopper) Stop(userID string) {
	r.mu.Lock()
	r.stopped = append(r.stopped, userID)
	r.mu.Unlock()
}

func (r *recordingStopper) stoppedUsers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stopped...)
}

func TestNewID(t *testing.T) {
	t.Parallel()
	now := time.UnixMilli(1700000000000)

	if got := NewID("42", now); got != "42_1700000000000" {
		t.Errorf("unexpected id: %s", got)
	}
	if got := NewID("", now); got != "unknown_1700000000000" {
		t.Errorf("unexpected id for missing user: %s", got)
	}
}

func TestStorePutGetRemove(t *testing.T) {
	t.Parallel()
	s := NewStore()
	rec := Record{ID: "42_1", UserID: "42", Code: "445566", Contact: "+639171234567"}

	s.Put(rec)
	got, ok := s.Get("42_1")
	if !ok {
		t.Fatal("expected record present")
	}
	if got.Code != "445566" {
		t.Errorf("unexpected code: %s", got.Code)
	}

	removed, ok := s.Remove("42_1")
	if !ok {
		t.Fatal("expected Remove to find the record")
	}
	if removed.ID != "42_1" {
		t.Errorf("unexpected removed id: %s", removed.ID)
	}
	if _, ok := s.Remove("42_1"); ok {
		t.Fatal("expected second Remove to miss")
	}
}

func TestStoreOverwrite(t *testing.T) {
	t.Parallel()
	s := NewStore()
	s.Put(Record{ID: "unknown_1", Code: "111111"})
	s.Put(Record{ID: "unknown_1", Code: "222222"})

	if s.Len() != 1 {
		t.Fatalf("expected single record, got %d", s.Len())
	}
	got, _ := s.Get("unknown_1")
	if got.Code != "222222" {
		t.Errorf("expected later submission to win, got %s", got.Code)
	}
}

func TestEvictBefore(t *testing.T) {
	t.Parallel()
	s := NewStore()
	now := time.Now()
	s.Put(Record{ID: "old", UserID: "42", CreatedAt: now.Add(-48 * time.Hour)})
	s.Put(Record{ID: "fresh", CreatedAt: now})

	evicted := s.EvictBefore(now.Add(-24 * time.Hour))
	if len(evicted) != 1 || evicted[0].ID != "old" {
		t.Fatalf("expected the old record back, got %v", evicted)
	}
	if _, ok := s.Get("old"); ok {
		t.Error("expected old record evicted")
	}
	if _, ok := s.Get("fresh"); !ok {
		t.Error("expected fresh record kept")
	}
}

func TestJanitorSweep(t *testing.T) {
	t.Parallel()
	s := NewStore()
	now := time.Now()
	s.Put(Record{ID: "old", CreatedAt: now.Add(-2 * time.Hour)})
	s.Put(Record{ID: "fresh", CreatedAt: now})

	j := NewJanitor(slog.Default(), s, &recordingStopper{}, "@every 1h", time.Hour)
	j.Sweep()

	if s.Len() != 1 {
		t.Fatalf("expected 1 record after sweep, got %d", s.Len())
	}
	if _, ok := s.Get("fresh"); !ok {
		t.Error("expected fresh record to survive the sweep")
	}
}

func TestJanitorSweepStopsEvictedLoops(t *testing.T) {
	t.Parallel()
	s := NewStore()
	now := time.Now()
	s.Put(Record{ID: "42_1", UserID: "42", CreatedAt: now.Add(-2 * time.Hour)})
	s.Put(Record{ID: "unknown_1", CreatedAt: now.Add(-2 * time.Hour)})
	s.Put(Record{ID: "7_1", UserID: "7", CreatedAt: now})

	stopper := &recordingStopper{}
	j := NewJanitor(slog.Default(), s, stopper, "@every 1h", time.Hour)
	j.Sweep()

	stopped := stopper.stoppedUsers()
	if len(stopped) != 1 || stopped[0] != "42" {
		t.Fatalf("expected only user 42's loop stopped, got %v", stopped)
	}
	if _, ok := s.Get("7_1"); !ok {
		t.Error("expected pending record within retention to survive")
	}
}
