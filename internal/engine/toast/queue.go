// Package toast implements the queue of ephemeral user-facing notifications.
package toast

import (
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/daybook/internal/core/domain"
	"go.trai.ch/daybook/internal/engine/event"
)

// Queue holds active notifications in enqueue order. Each entry leaves the
// queue when dismissed or when its TTL elapses.
type Queue struct {
	mu      sync.Mutex
	entries []domain.ToastEntry
	timers  map[string]*time.Timer
	ttl     time.Duration
	closed  bool
	subs    event.Subscribers[domain.ToastEvent]
	events  event.Queue
}

// New creates a queue whose entries expire after ttl unless they carry
// their own TTL. A non-positive ttl selects domain.DefaultToastTTL.
func New(ttl time.Duration) *Queue {
	if ttl <= 0 {
		ttl = domain.DefaultToastTTL
	}
	return &Queue{
		timers: make(map[string]*time.Timer),
		ttl:    ttl,
	}
}

// Enqueue appends entry and returns its id. Missing id, creation time and
// TTL are filled in. Enqueueing an id that is already active is a no-op.
// After Close, entries are dropped and the empty id is returned.
func (q *Queue) Enqueue(entry domain.ToastEntry) string {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ""
	}

	if entry.ID == "" {
		entry.ID = newID()
	}
	if _, ok := q.timers[entry.ID]; ok {
		q.mu.Unlock()
		return entry.ID
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if entry.TTL <= 0 {
		entry.TTL = q.ttl
	}

	id := entry.ID
	q.entries = append(q.entries, entry)
	q.timers[id] = time.AfterFunc(entry.TTL, func() { q.remove(id) })
	q.events.Push(q.subs.Notify(domain.ToastEvent{Kind: domain.ToastAdded, Entry: entry}))
	q.mu.Unlock()

	q.events.Drain()
	return id
}

// Info enqueues an informational notification.
func (q *Queue) Info(message string) string {
	return q.Enqueue(domain.ToastEntry{Kind: domain.ToastInfo, Message: message})
}

// Warn enqueues a warning notification.
func (q *Queue) Warn(message string) string {
	return q.Enqueue(domain.ToastEntry{Kind: domain.ToastWarn, Message: message})
}

// Error enqueues an error notification.
func (q *Queue) Error(message string) string {
	return q.Enqueue(domain.ToastEntry{Kind: domain.ToastError, Message: message})
}

// Dismiss removes the entry with id. It reports whether an entry was removed.
func (q *Queue) Dismiss(id string) bool {
	return q.remove(id)
}

func (q *Queue) remove(id string) bool {
	q.mu.Lock()
	idx := slices.IndexFunc(q.entries, func(e domain.ToastEntry) bool { return e.ID == id })
	if idx < 0 {
		q.mu.Unlock()
		return false
	}

	entry := q.entries[idx]
	q.entries = slices.Delete(q.entries, idx, idx+1)
	if t, ok := q.timers[id]; ok {
		t.Stop()
		delete(q.timers, id)
	}
	q.events.Push(q.subs.Notify(domain.ToastEvent{Kind: domain.ToastRemoved, Entry: entry}))
	q.mu.Unlock()

	q.events.Drain()
	return true
}

// Entries returns a copy of the active entries in enqueue order.
func (q *Queue) Entries() []domain.ToastEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.entries)
}

// Len returns the number of active entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Notifications returns a view of the active entries in enqueue order.
// Each iteration observes the queue as it is when the iteration starts.
func (q *Queue) Notifications() iter.Seq[domain.ToastEntry] {
	return func(yield func(domain.ToastEntry) bool) {
		for _, e := range q.Entries() {
			if !yield(e) {
				return
			}
		}
	}
}

// Subscribe calls fn for every addition and removal, in change order.
// The returned function cancels the subscription.
func (q *Queue) Subscribe(fn func(domain.ToastEvent)) func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.subs.Add(fn, &q.mu)
}

// Close stops every expiry timer. Active entries stay in the queue and
// later enqueues are dropped.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
