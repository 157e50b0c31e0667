// Package directory keeps the last-seen phone number per user and classifies
// inbound free text as phone-number-looking or not.
package directory

import (
	"strings"
	"sync"
)

// Directory maps a user identifier to the last contact string that user sent.
// Entries are overwritten on every write and never expire.
type Directory struct {
	mu      sync.RWMutex
	entries map[string]string
}

// New creates an empty directory.
func New() *Directory {
	return &Directory{entries: map[string]string{}}
}

// Set records contact as the user's current phone number, replacing any prior value.
func (d *Directory) Set(userID, contact string) {
	d.mu.Lock()
	d.entries[userID] = contact
	d.mu.Unlock()
}

// Get returns the user's last-seen contact string.
func (d *Directory) Get(userID string) (string, bool) {
	d.mu.RLock()
	contact, ok := d.entries[userID]
	d.mu.RUnlock()
	return contact, ok
}

// LooksLikePhone reports whether text reads as a phone number: a leading "+"
// after trimming, or at least ten digit characters anywhere in the text.
// It is a loose heuristic and accepts false positives on purpose.
func LooksLikePhone(text string) bool {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "+") {
		return true
	}
	digits := 0
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 10
}
