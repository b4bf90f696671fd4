package domain

import "time"

// ToastKind is the severity of a notification.
type ToastKind int

const (
	// ToastInfo reports a completed action.
	ToastInfo ToastKind = iota + 1
	// ToastWarn reports a rejected but harmless action.
	ToastWarn
	// ToastError reports a failed action.
	ToastError
)

// String returns the lower-case name of the toast kind.
func (k ToastKind) String() string {
	switch k {
	case ToastInfo:
		return "info"
	case ToastWarn:
		return "warn"
	case ToastError:
		return "error"
	default:
		return "unknown"
	}
}

// ToastEntry is one ephemeral user-facing notification.
// A zero TTL means the queue's default applies.
type ToastEntry struct {
	ID        string
	Kind      ToastKind
	Message   string
	CreatedAt time.Time
	TTL       time.Duration
}

// ExpiresAt returns the instant the entry leaves the queue.
func (t ToastEntry) ExpiresAt() time.Time {
	return t.CreatedAt.Add(t.TTL)
}

// ToastEventKind tells subscribers whether an entry was added or removed.
type ToastEventKind int

const (
	// ToastAdded is emitted after an entry is enqueued.
	ToastAdded ToastEventKind = iota + 1
	// ToastRemoved is emitted after an entry is dismissed or expires.
	ToastRemoved
)

// ToastEvent is delivered to queue subscribers in change order.
type ToastEvent struct {
	Kind  ToastEventKind
	Entry ToastEntry
}
