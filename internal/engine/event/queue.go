// Package event serializes change notifications so that subscribers observe
// changes in the order they were made, without holding the owner's lock
// while callbacks run.
package event

import (
	"cmp"
	"slices"
	"sync"
	"sync/atomic"
)

// Queue runs pushed callbacks one at a time, in push order.
//
// Owners push while holding the lock that orders their changes, release
// it, then call Drain. Whichever goroutine drains first delivers every
// pending callback, including ones pushed by other goroutines meanwhile.
// Callbacks may call back into the owner; changes they make are delivered
// after the current callback returns.
type Queue struct {
	mu      sync.Mutex
	pending []func()
	running bool
}

// Push appends fn to the queue.
func (q *Queue) Push(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// Drain delivers pending callbacks unless another goroutine already is.
func (q *Queue) Drain() {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true

	for len(q.pending) > 0 {
		fn := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]

		q.mu.Unlock()
		q.run(fn)
		q.mu.Lock()
	}

	q.running = false
	q.mu.Unlock()
}

// run invokes fn, resetting the running flag if fn panics so later changes
// are still delivered.
func (q *Queue) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			q.mu.Lock()
			q.running = false
			q.mu.Unlock()
			panic(r)
		}
	}()
	fn()
}

// Subscribers is a set of callbacks receiving values of type T.
// It is not safe for concurrent use; owners guard it with their own lock.
type Subscribers[T any] struct {
	next uint64
	subs map[uint64]*subscription[T]
}

type subscription[T any] struct {
	id     uint64
	fn     func(T)
	active atomic.Bool
}

// Add registers fn and returns a function removing it. The returned
// function must be called without holding the owner's lock.
func (s *Subscribers[T]) Add(fn func(T), lock sync.Locker) func() {
	if s.subs == nil {
		s.subs = make(map[uint64]*subscription[T])
	}
	s.next++
	sub := &subscription[T]{id: s.next, fn: fn}
	sub.active.Store(true)
	s.subs[sub.id] = sub

	var once sync.Once
	return func() {
		once.Do(func() {
			lock.Lock()
			delete(s.subs, sub.id)
			lock.Unlock()
			sub.active.Store(false)
		})
	}
}

// Len returns the number of registered callbacks.
func (s *Subscribers[T]) Len() int {
	return len(s.subs)
}

// Notify returns a callback delivering v to every currently registered
// subscriber, in registration order. Subscribers removed before delivery
// are skipped.
func (s *Subscribers[T]) Notify(v T) func() {
	if len(s.subs) == 0 {
		return func() {}
	}
	targets := make([]*subscription[T], 0, len(s.subs))
	for _, sub := range s.subs {
		targets = append(targets, sub)
	}
	slices.SortFunc(targets, func(a, b *subscription[T]) int {
		return cmp.Compare(a.id, b.id)
	})

	return func() {
		for _, sub := range targets {
			if sub.active.Load() {
				sub.fn(v)
			}
		}
	}
}

