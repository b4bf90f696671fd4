// Package app implements the application layer for daybook.
package app

import (
	"context"
	"errors"
	"iter"
	"net/mail"
	"net/url"
	"slices"
	"strings"
	"time"

	"go.trai.ch/daybook/internal/core/domain"
	"go.trai.ch/daybook/internal/core/ports"
	"go.trai.ch/daybook/internal/engine/cache"
	"go.trai.ch/daybook/internal/engine/executor"
	"go.trai.ch/daybook/internal/engine/gate"
	"go.trai.ch/daybook/internal/engine/modal"
	"go.trai.ch/daybook/internal/engine/toast"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// refreshConcurrency bounds the number of concurrent refetches in Refresh.
const refreshConcurrency = 4

// App is the facade the user interface talks to. It owns the entity cache,
// the notification queue and the dialog stack, and routes every mutation
// through the validation gate and the executor.
type App struct {
	cfg      domain.Config
	store    ports.RemoteStore
	accounts ports.AccountService
	cache    *cache.Cache
	toasts   *toast.Queue
	modals   *modal.Stack
	gate     *gate.Gate
	exec     *executor.Executor
	tracer   ports.Tracer
	logger   ports.Logger

	loads   singleflight.Group
	closers []func(context.Context) error
}

// New creates a new App instance.
func New(
	cfg domain.Config,
	store ports.RemoteStore,
	accounts ports.AccountService,
	c *cache.Cache,
	toasts *toast.Queue,
	modals *modal.Stack,
	g *gate.Gate,
	exec *executor.Executor,
	tracer ports.Tracer,
	log ports.Logger,
) *App {
	return &App{
		cfg:      cfg,
		store:    store,
		accounts: accounts,
		cache:    c,
		toasts:   toasts,
		modals:   modals,
		gate:     g,
		exec:     exec,
		tracer:   tracer,
		logger:   log,
	}
}

// WithCloser registers fn to run on Close, after the engine has stopped.
func (a *App) WithCloser(fn func(context.Context) error) *App {
	a.closers = append(a.closers, fn)
	return a
}

// Config returns the resolved configuration.
func (a *App) Config() domain.Config {
	return a.cfg
}

// Subscribe returns the cached entry of key and calls fn after every change
// to it. The returned function cancels the subscription.
func (a *App) Subscribe(key domain.Key, fn func(domain.CacheEntry)) (domain.CacheEntry, func()) {
	return a.cache.Subscribe(key, fn)
}

// Load returns the value of key, reading through to the remote store when
// the cache has no value or the value is stale. Concurrent loads of the
// same key share one fetch.
func (a *App) Load(ctx context.Context, key domain.Key) (domain.Entity, error) {
	if entry, ok := a.cache.Read(key); ok && !entry.Stale {
		if entry.Tombstone {
			return domain.Entity{}, pendingDelete(key)
		}
		return entry.Value, nil
	}

	// The shared fetch outlives any single caller; each caller stops
	// waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := a.loads.DoChan(key.String(), func() (any, error) {
		return a.fetch(shared, key)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.Entity{}, res.Err
		}
		return res.Val.(domain.Entity), nil //nolint:forcetypeassert // fetch only returns entities
	case <-ctx.Done():
		return domain.Entity{}, zerr.With(zerr.Wrap(ctx.Err(), "load abandoned"), "key", key.String())
	}
}

func (a *App) fetch(ctx context.Context, key domain.Key) (domain.Entity, error) {
	ctx, span := a.tracer.Start(ctx, "load", ports.WithAttribute("key", key.String()))
	defer span.End()

	observed := a.cache.Snapshot(key)

	ctx, cancel := context.WithTimeout(ctx, a.timeout())
	defer cancel()

	e, err := a.store.Fetch(ctx, key.Resource, key.ID)
	if err != nil {
		span.RecordError(err)
		return domain.Entity{}, zerr.With(zerr.Wrap(err, "failed to load entity"), "key", key.String())
	}

	if !a.cache.Fill(key, observed, e) {
		// A write landed while fetching; the cache holds the newer value.
		span.SetAttribute("discarded", true)
		if entry, ok := a.cache.Read(key); ok {
			if entry.Tombstone {
				return domain.Entity{}, pendingDelete(key)
			}
			return entry.Value, nil
		}
	}
	return e, nil
}

func pendingDelete(key domain.Key) error {
	return zerr.With(zerr.Wrap(domain.ErrEntityNotFound, "pending delete"), "key", key.String())
}

// List returns every entity of resource, most recently updated first, and
// fills the cache with them. Entities with a pending mutation are returned
// with their optimistic value; pending deletes are left out.
func (a *App) List(ctx context.Context, resource domain.ResourceType) ([]domain.Entity, error) {
	ctx, span := a.tracer.Start(ctx, "list", ports.WithAttribute("resource", string(resource)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, a.timeout())
	defer cancel()

	entities, err := a.store.List(ctx, resource)
	if err != nil {
		span.RecordError(err)
		return nil, zerr.With(zerr.Wrap(err, "failed to list entities"), "resource", string(resource))
	}

	out := make([]domain.Entity, 0, len(entities))
	for _, e := range entities {
		a.cache.Fill(e.Key, a.cache.Snapshot(e.Key), e)

		entry, ok := a.cache.Read(e.Key)
		switch {
		case ok && entry.Tombstone:
			continue
		case ok:
			out = append(out, entry.Value)
		default:
			out = append(out, e)
		}
	}
	span.SetAttribute("count", len(out))
	return out, nil
}

// Refresh refetches every stale entry. Failures of individual keys are
// joined into the returned error.
func (a *App) Refresh(ctx context.Context) error {
	keys := a.cache.StaleKeys()
	slices.SortFunc(keys, func(x, y domain.Key) int { return strings.Compare(x.String(), y.String()) })

	errs := make([]error, len(keys))
	var g errgroup.Group
	g.SetLimit(refreshConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			_, errs[i] = a.Load(ctx, key)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// Submit validates intent and hands it to the executor. Payloads that break
// a resource rule, and edits that change nothing relevant, are rejected
// locally with a warning and never reach the remote store.
func (a *App) Submit(ctx context.Context, intent domain.MutationIntent) domain.Outcome {
	schema := a.cfg.Schema(intent.Key.Resource)

	ctx, span := a.tracer.Start(ctx, "submit",
		ports.WithAttribute("key", intent.Key.String()),
		ports.WithAttribute("kind", intent.Kind.String()),
	)
	defer span.End()

	if intent.Kind != domain.MutationDelete {
		var current domain.Fields
		proposed := intent.Payload
		if intent.Kind == domain.MutationUpdate && intent.Previous != nil {
			current = intent.Previous.Fields
			proposed = current.Merge(intent.Payload)
			span.SetAttribute("changed", gate.Changed(schema, current, proposed))
		}
		span.SetAttribute("fingerprint", int64(gate.Fingerprint(schema, proposed))) //nolint:gosec // attribute only

		if err := a.gate.Check(schema, current, proposed); err != nil {
			return a.reject(span, err)
		}
	}

	out := a.exec.Execute(ctx, intent)
	span.SetAttribute("outcome", out.Kind.String())
	return out
}

func (a *App) reject(span ports.Span, err error) domain.Outcome {
	f := domain.Classify(err)
	span.SetAttribute("outcome", domain.OutcomeRejected.String())

	if f.Kind == domain.FailureValidation {
		a.toasts.Warn(f.Message)
		return domain.Outcome{Kind: domain.OutcomeRejected, Failure: f}
	}

	// Rules that fail to compile are configuration errors.
	span.RecordError(err)
	a.logger.Error(err)
	a.toasts.Error(f.Message)
	return domain.Outcome{Kind: domain.OutcomeRejected, Failure: f}
}

// RequestPasswordReset asks the remote store to send a reset link to email.
// On success the dialog modalID is closed; on failure it stays open and the
// reason is shown.
func (a *App) RequestPasswordReset(ctx context.Context, email, modalID string) domain.Outcome {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		f := &domain.Failure{
			Kind:    domain.FailureValidation,
			Message: domain.ErrInvalidEmail.Error(),
			Err:     domain.ErrInvalidEmail,
		}
		a.toasts.Warn(f.Message)
		return domain.Outcome{Kind: domain.OutcomeRejected, Failure: f}
	}
	email = addr.Address

	return a.exec.Run(ctx, domain.ActionIntent{
		Key:     domain.NewKey(domain.ResourceUser, strings.ToLower(email)),
		Name:    "reset-password",
		ModalID: modalID,
		Success: domain.MessagePasswordResetSent,
		Do: func(ctx context.Context) error {
			exists, err := a.accounts.UserExists(ctx, email)
			if err != nil {
				return err
			}
			if !exists {
				return &domain.Failure{
					Kind:    domain.FailureNotFound,
					Message: domain.ErrUserNotFound.Error(),
					Err:     domain.ErrUserNotFound,
				}
			}
			return a.accounts.RequestPasswordReset(ctx, email, a.ResetRedirectURL(email))
		},
	})
}

// ResetRedirectURL returns the page a password reset link for email leads to.
func (a *App) ResetRedirectURL(email string) string {
	return a.cfg.App.URL + domain.UpdatePasswordPath + "?email=" + url.QueryEscape(email)
}

// OpenModal pushes a dialog and returns its id.
func (a *App) OpenModal(desc domain.ModalDescriptor) string {
	return a.modals.Open(desc)
}

// CloseModal closes the dialog with id.
func (a *App) CloseModal(id string) bool {
	return a.modals.Close(id)
}

// CurrentModal returns the top dialog.
func (a *App) CurrentModal() (domain.ModalDescriptor, bool) {
	return a.modals.Current()
}

// Modals returns the open dialogs, bottom first.
func (a *App) Modals() []domain.ModalDescriptor {
	return a.modals.Entries()
}

// Notifications iterates over the active notifications in enqueue order.
func (a *App) Notifications() iter.Seq[domain.ToastEntry] {
	return a.toasts.Notifications()
}

// DismissToast removes the notification with id.
func (a *App) DismissToast(id string) bool {
	return a.toasts.Dismiss(id)
}

// SubscribeToasts calls fn for every added and removed notification.
func (a *App) SubscribeToasts(fn func(domain.ToastEvent)) func() {
	return a.toasts.Subscribe(fn)
}

// Close closes every dialog, stops notification expiry and runs the
// registered closers.
func (a *App) Close(ctx context.Context) error {
	a.modals.CloseAll()
	a.toasts.Close()

	var errs []error
	for _, fn := range slices.Backward(a.closers) {
		errs = append(errs, fn(ctx))
	}
	return errors.Join(errs...)
}

func (a *App) timeout() time.Duration {
	if a.cfg.Remote.Timeout > 0 {
		return a.cfg.Remote.Timeout
	}
	return domain.DefaultRemoteTimeout
}
