// Package submission stores pending verification-code submissions until a
// reviewer decides them. Storage is memory-resident; nothing survives a restart.
package submission

import (
	"strconv"
	"sync"
	"time"
)

// UnknownContact is the contact placeholder used when the user never sent a phone number.
const UnknownContact = "Unknown phone"

// Record is one pending submission awaiting a reviewer decision.
type Record struct {
	ID        string
	UserID    string // empty when the submitter has no chat identity
	ChatID    int64  // chat to signal presence on; zero when unknown
	Code      string
	Contact   string
	Username  string
	FirstName string
	CreatedAt time.Time
}

// NewID derives the submission identifier from the user identifier and the
// creation time: "<userID>_<unix-ms>", with "unknown" standing in for a missing
// user. Uniqueness rides on timestamp granularity; two submissions from the
// same (or absent) user in the same millisecond collide and the later one wins.
func NewID(userID string, now time.Time) string {
	if userID == "" {
		userID = "unknown"
	}
	return userID + "_" + strconv.FormatInt(now.UnixMilli(), 10)
}

// Store is the in-memory submission table.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{records: map[string]Record{}}
}

// Put inserts the record, silently overwriting any record with the same ID.
func (s *Store) Put(rec Record) {
	s.mu.Lock()
	s.records[rec.ID] = rec
	s.mu.Unlock()
}

// Get returns the record under id without consuming it.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	return rec, ok
}

// Remove takes the record under id out of the store. The first caller wins;
// later callers see an absent record, which is the double-decision guard.
func (s *Store) Remove(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if ok {
		delete(s.records, id)
	}
	return rec, ok
}

// Len returns the number of pending records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// EvictBefore removes every record created before cutoff and returns the
// evicted records so the caller can release whatever rides on them.
func (s *Store) EvictBefore(cutoff time.Time) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var evicted []Record
	for id, rec := range s.records {
		if rec.CreatedAt.Before(cutoff) {
			delete(s.records, id)
			evicted = append(evicted, rec)
		}
	}
	return evicted
}
