// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"go.trai.ch/daybook/internal/core/domain"
)

// RemoteStore is the structured store holding every entity.
//
// Failures are reported as errors that domain.Classify understands:
// a missing row wraps domain.ErrEntityNotFound, a stale base revision wraps
// domain.ErrRevisionMismatch, and transport failures surface as context or
// network errors.
//
//go:generate mockgen -source=remote_store.go -destination=mocks/mock_remote_store.go -package=mocks
type RemoteStore interface {
	// Fetch returns the current row of an entity.
	Fetch(ctx context.Context, resource domain.ResourceType, id string) (domain.Entity, error)

	// List returns every row of a resource, most recently updated first.
	List(ctx context.Context, resource domain.ResourceType) ([]domain.Entity, error)

	// Create inserts a row. The store may assign a different id than the one proposed.
	Create(ctx context.Context, resource domain.ResourceType, id string, payload domain.Fields) (domain.Entity, error)

	// Update replaces the fields of a row whose revision equals baseRevision.
	Update(
		ctx context.Context,
		resource domain.ResourceType,
		id string,
		baseRevision int64,
		payload domain.Fields,
	) (domain.Entity, error)

	// Remove deletes a row whose revision equals baseRevision.
	Remove(ctx context.Context, resource domain.ResourceType, id string, baseRevision int64) error
}
