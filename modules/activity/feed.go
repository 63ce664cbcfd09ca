package activity

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of entries the feed keeps.
const DefaultCapacity = 200

// Entry types.
const (
	TypeSessionStarted = "session_started"
	TypeSessionEnded   = "session_ended"
	TypeChannelCreated = "channel_created"
	TypeChannelDeleted = "channel_deleted"
	TypeMessageSent    = "message_sent"
)

// Entry is one recorded event.
type Entry struct {
	Type      string    `json:"type"`
	Namespace string    `json:"-"`
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}

// Feed is a bounded, append-only log of recent entries. Oldest entries are dropped first.
type Feed struct {
	mu       sync.RWMutex
	entries  []Entry
	capacity int
}

// NewFeed creates a feed holding up to capacity entries.
func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

// Record appends an entry.
func (f *Feed) Record(e Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries = append(f.entries, e)
	if len(f.entries) > f.capacity {
		f.entries = f.entries[len(f.entries)-f.capacity:]
	}
}

// Recent returns the entries of namespace, newest first, at most limit of them.
// A non-positive limit returns all of them.
func (f *Feed) Recent(namespace string, limit int) []Entry {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Entry, 0)
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].Namespace != namespace {
			continue
		}
		out = append(out, f.entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Len returns the number of entries held.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}
