// Package modal implements the stack of open dialogs.
package modal

import (
	"maps"
	"slices"
	"sync"

	"go.trai.ch/daybook/internal/core/domain"
	"go.trai.ch/daybook/internal/engine/event"
)

// Stack holds open dialogs, most recently opened last. Ids are unique:
// opening a dialog that is already open leaves the stack unchanged.
type Stack struct {
	mu      sync.Mutex
	entries []domain.ModalDescriptor
	subs    event.Subscribers[[]domain.ModalDescriptor]
	events  event.Queue
}

// New creates an empty stack.
func New() *Stack {
	return &Stack{}
}

// Open pushes desc and returns its id. If a dialog with the same id is
// already open the stack is unchanged.
func (s *Stack) Open(desc domain.ModalDescriptor) string {
	desc.ID = desc.ResolvedID()

	s.mu.Lock()
	if s.indexOf(desc.ID) >= 0 {
		s.mu.Unlock()
		return desc.ID
	}
	desc.Props = maps.Clone(desc.Props)
	s.entries = append(s.entries, desc)
	s.publish()
	s.mu.Unlock()

	s.events.Drain()
	return desc.ID
}

// Close removes the dialog with id from any depth and runs its OnClose.
// It reports whether a dialog was removed.
func (s *Stack) Close(id string) bool {
	s.mu.Lock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.removeAt(idx)
	s.mu.Unlock()

	s.events.Drain()
	return true
}

// CloseTop closes the most recently opened dialog and returns its id.
func (s *Stack) CloseTop() (string, bool) {
	s.mu.Lock()
	if len(s.entries) == 0 {
		s.mu.Unlock()
		return "", false
	}
	idx := len(s.entries) - 1
	id := s.entries[idx].ID
	s.removeAt(idx)
	s.mu.Unlock()

	s.events.Drain()
	return id, true
}

// CloseAll closes every dialog, top first.
func (s *Stack) CloseAll() {
	s.mu.Lock()
	for len(s.entries) > 0 {
		s.removeAt(len(s.entries) - 1)
	}
	s.mu.Unlock()

	s.events.Drain()
}

// Current returns the top dialog.
func (s *Stack) Current() (domain.ModalDescriptor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == 0 {
		return domain.ModalDescriptor{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// IsOpen reports whether a dialog with id is on the stack.
func (s *Stack) IsOpen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

// Entries returns the open dialogs, bottom first.
func (s *Stack) Entries() []domain.ModalDescriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Subscribe calls fn with the open dialogs after every change, in change
// order. The returned function cancels the subscription.
func (s *Stack) Subscribe(fn func([]domain.ModalDescriptor)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs.Add(fn, &s.mu)
}

func (s *Stack) indexOf(id string) int {
	return slices.IndexFunc(s.entries, func(d domain.ModalDescriptor) bool { return d.ID == id })
}

// removeAt must be called with the lock held. OnClose is queued so it runs
// after the lock is released, before subscribers see the new stack.
func (s *Stack) removeAt(idx int) {
	desc := s.entries[idx]
	s.entries = slices.Delete(s.entries, idx, idx+1)
	if desc.OnClose != nil {
		s.events.Push(desc.OnClose)
	}
	s.publish()
}

func (s *Stack) publish() {
	s.events.Push(s.subs.Notify(slices.Clone(s.entries)))
}
