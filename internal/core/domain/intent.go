package domain

import "context"

// MutationKind is the kind of change a mutation applies to an entity.
type MutationKind int

const (
	// MutationCreate inserts a new entity.
	MutationCreate MutationKind = iota + 1
	// MutationUpdate changes fields of an existing entity.
	MutationUpdate
	// MutationDelete removes an existing entity.
	MutationDelete
)

// String returns the lower-case name of the mutation kind.
func (k MutationKind) String() string {
	switch k {
	case MutationCreate:
		return "create"
	case MutationUpdate:
		return "update"
	case MutationDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// MutationIntent describes a requested change to a remote entity.
//
// Previous is the value the caller based the change on and is required for
// updates and deletes. For creates Key.ID may be empty, in which case a
// client id is assigned. ModalID names the dialog to close on success.
type MutationIntent struct {
	Key      Key
	Kind     MutationKind
	Payload  Fields
	Previous *Entity
	ModalID  string
}

// ActionIntent describes a remote action that does not change cached
// entities but shares the per-key exclusion, notification, and modal
// lifecycle of mutations.
type ActionIntent struct {
	Key     Key
	Name    string
	ModalID string
	Success string
	Do      func(ctx context.Context) error
}
