// Package executor runs optimistic mutations against the remote store.
package executor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/daybook/internal/core/domain"
	"go.trai.ch/daybook/internal/core/ports"
	"go.trai.ch/daybook/internal/engine/cache"
	"go.trai.ch/daybook/internal/engine/modal"
	"go.trai.ch/daybook/internal/engine/toast"
	"go.trai.ch/zerr"
)

// Executor applies mutation intents: it writes the projected value to the
// cache, calls the remote store once, then confirms or rolls back and
// reports the outcome through a toast. At most one intent per key is in
// flight; a second intent for the same key is answered with Busy.
type Executor struct {
	store   ports.RemoteStore
	cache   *cache.Cache
	toasts  *toast.Queue
	modals  *modal.Stack
	tracer  ports.Tracer
	timeout time.Duration
	now     func() time.Time

	mu       sync.Mutex
	inflight map[domain.Key]struct{}
}

// New creates an executor. A non-positive timeout selects
// domain.DefaultRemoteTimeout.
func New(
	store ports.RemoteStore,
	c *cache.Cache,
	toasts *toast.Queue,
	modals *modal.Stack,
	tracer ports.Tracer,
	timeout time.Duration,
) *Executor {
	if timeout <= 0 {
		timeout = domain.DefaultRemoteTimeout
	}
	return &Executor{
		store:    store,
		cache:    c,
		toasts:   toasts,
		modals:   modals,
		tracer:   tracer,
		timeout:  timeout,
		now:      time.Now,
		inflight: make(map[domain.Key]struct{}),
	}
}

// Execute applies intent and returns its outcome. Remote failures never
// surface as errors; they are classified into the outcome's Failure.
//
//nolint:cyclop // linear mutation lifecycle
func (e *Executor) Execute(ctx context.Context, intent domain.MutationIntent) domain.Outcome {
	if intent.Kind == domain.MutationCreate && intent.Key.ID == "" {
		intent.Key.ID = NewID()
	}
	if f := checkIntent(intent); f != nil {
		e.toasts.Warn(f.Message)
		return domain.Outcome{Kind: domain.OutcomeRejected, Failure: f}
	}

	key := intent.Key
	if !e.acquire(key) {
		return domain.Outcome{Kind: domain.OutcomeBusy}
	}
	defer e.release(key)

	ctx, span := e.tracer.Start(ctx, "mutation."+intent.Kind.String(),
		ports.WithAttribute("key", key.String()),
		ports.WithAttribute("kind", intent.Kind.String()),
	)
	defer span.End()

	projected, tombstone := e.project(intent)
	gen := e.cache.WriteOptimistic(key, projected, tombstone)
	span.SetAttribute("generation", int64(gen)) //nolint:gosec // generations stay far below MaxInt64

	result, err := e.await(ctx, func(ctx context.Context) (domain.Entity, error) {
		return e.call(ctx, intent, projected)
	})
	if err != nil {
		f := domain.Classify(err)
		e.cache.Rollback(key, gen)
		if f.Kind == domain.FailureConflict || f.Kind == domain.FailureNotFound {
			// The remote entity moved on since the base was read.
			e.cache.Invalidate(key)
		}
		e.toasts.Error(domain.FailureMessage(intent.Kind, key.Resource, f))

		span.RecordError(f)
		span.SetAttribute("outcome", domain.OutcomeFailed.String())
		span.SetAttribute("failure", f.Kind.String())
		return domain.Outcome{Kind: domain.OutcomeFailed, Failure: f}
	}

	if intent.Kind == domain.MutationCreate && result.Key.ID != "" && result.Key != key {
		// The store assigned its own id: drop the synthetic entry and
		// fill the real one.
		e.cache.Rollback(key, gen)
		e.cache.Fill(result.Key, e.cache.Snapshot(result.Key), result)
		span.SetAttribute("assigned_key", result.Key.String())
	} else {
		if result.Key.IsZero() {
			result.Key = key
		}
		e.cache.Confirm(key, gen, result)
	}

	e.toasts.Info(domain.SuccessMessage(intent.Kind, key.Resource))
	if intent.ModalID != "" {
		e.modals.Close(intent.ModalID)
	}

	span.SetAttribute("outcome", domain.OutcomeSucceeded.String())
	return domain.Outcome{Kind: domain.OutcomeSucceeded, Entity: result}
}

// Run performs a remote action that does not change cached entities. It
// shares the per-key exclusion, notification, and modal lifecycle of
// Execute: success shows action.Success and closes action.ModalID, failure
// shows the failure message and keeps the dialog open.
func (e *Executor) Run(ctx context.Context, action domain.ActionIntent) domain.Outcome {
	if !e.acquire(action.Key) {
		return domain.Outcome{Kind: domain.OutcomeBusy}
	}
	defer e.release(action.Key)

	ctx, span := e.tracer.Start(ctx, "action."+action.Name,
		ports.WithAttribute("key", action.Key.String()),
	)
	defer span.End()

	_, err := e.await(ctx, func(ctx context.Context) (domain.Entity, error) {
		return domain.Entity{}, action.Do(ctx)
	})
	if err != nil {
		f := domain.Classify(err)
		e.toasts.Error(f.Error())

		span.RecordError(f)
		span.SetAttribute("outcome", domain.OutcomeFailed.String())
		return domain.Outcome{Kind: domain.OutcomeFailed, Failure: f}
	}

	if action.Success != "" {
		e.toasts.Info(action.Success)
	}
	if action.ModalID != "" {
		e.modals.Close(action.ModalID)
	}

	span.SetAttribute("outcome", domain.OutcomeSucceeded.String())
	return domain.Outcome{Kind: domain.OutcomeSucceeded}
}

// InFlight reports whether an intent for key is currently executing.
func (e *Executor) InFlight(key domain.Key) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.inflight[key]
	return ok
}

func (e *Executor) acquire(key domain.Key) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, busy := e.inflight[key]; busy {
		return false
	}
	e.inflight[key] = struct{}{}
	return true
}

func (e *Executor) release(key domain.Key) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, key)
}

// project returns the value the cache shows while the mutation is pending.
func (e *Executor) project(intent domain.MutationIntent) (domain.Entity, bool) {
	switch intent.Kind {
	case domain.MutationUpdate:
		projected := intent.Previous.Clone()
		projected.Key = intent.Key
		projected.Fields = projected.Fields.Merge(intent.Payload)
		return projected, false
	case domain.MutationDelete:
		projected := intent.Previous.Clone()
		projected.Key = intent.Key
		return projected, true
	default:
		now := e.now()
		return domain.Entity{
			Key:       intent.Key,
			Fields:    intent.Payload.Clone(),
			CreatedAt: now,
			UpdatedAt: now,
		}, false
	}
}

func (e *Executor) call(ctx context.Context, intent domain.MutationIntent, projected domain.Entity) (domain.Entity, error) {
	key := intent.Key
	switch intent.Kind {
	case domain.MutationCreate:
		return e.store.Create(ctx, key.Resource, key.ID, projected.Fields)
	case domain.MutationUpdate:
		return e.store.Update(ctx, key.Resource, key.ID, intent.Previous.Revision, projected.Fields)
	case domain.MutationDelete:
		if err := e.store.Remove(ctx, key.Resource, key.ID, intent.Previous.Revision); err != nil {
			return domain.Entity{}, err
		}
		return domain.Entity{Key: key}, nil
	default:
		return domain.Entity{}, zerr.With(zerr.Wrap(domain.ErrMutationFailed, "unsupported mutation"), "kind", intent.Kind.String())
	}
}

// await runs call bounded by the transport timeout. A call that outlives
// the timeout is abandoned; its late result is discarded.
func (e *Executor) await(
	ctx context.Context,
	call func(context.Context) (domain.Entity, error),
) (domain.Entity, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan callResult, 1)
	go func() {
		entity, err := call(ctx)
		done <- callResult{entity: entity, err: err}
	}()
	return settle(ctx, done)
}

type callResult struct {
	entity domain.Entity
	err    error
}

// settle waits for the call result or the end of ctx. A result that is
// already available when ctx ends still counts.
func settle(ctx context.Context, done <-chan callResult) (domain.Entity, error) {
	select {
	case r := <-done:
		return r.entity, r.err
	case <-ctx.Done():
		select {
		case r := <-done:
			return r.entity, r.err
		default:
		}
		return domain.Entity{}, zerr.Wrap(ctx.Err(), "remote call abandoned")
	}
}

func checkIntent(intent domain.MutationIntent) *domain.Failure {
	if !intent.Key.Resource.Valid() {
		return &domain.Failure{
			Kind:    domain.FailureValidation,
			Message: domain.ErrUnknownResource.Error(),
			Err:     domain.ErrUnknownResource,
		}
	}
	if intent.Key.ID == "" {
		return &domain.Failure{
			Kind:    domain.FailureValidation,
			Message: domain.ErrMissingEntityID.Error(),
			Err:     domain.ErrMissingEntityID,
		}
	}
	if intent.Kind != domain.MutationCreate && intent.Previous == nil {
		return &domain.Failure{
			Kind:    domain.FailureValidation,
			Message: domain.ErrMissingPrevious.Error(),
			Err:     domain.ErrMissingPrevious,
		}
	}
	return nil
}

// NewID returns a time-ordered client id for a new entity.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
