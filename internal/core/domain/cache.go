package domain

// CacheEntry is the client-side view of one remote entity.
//
// Generation increases on every write to the key and is never reused, even
// after the entry has been removed. Present is false for a key whose entry
// was removed by a rolled back create or a confirmed delete.
type CacheEntry struct {
	Key        Key
	Value      Entity
	Tombstone  bool
	Present    bool
	Generation uint64
	Pending    bool
	Stale      bool
}

// Visible reports whether the entry holds a value callers should render.
func (e CacheEntry) Visible() bool {
	return e.Present && !e.Tombstone
}
