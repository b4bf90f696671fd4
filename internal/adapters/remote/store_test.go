package remote_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/daybook/internal/adapters/remote"
	"go.trai.ch/daybook/internal/core/domain"
)

func openStore(t *testing.T) *remote.Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "nested", domain.DatabaseFileName)
	s, err := remote.Open(t.Context(), domain.RemoteConfig{Driver: domain.DriverSQLite, DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})
	return s
}

func TestStore_CreateAndFetch(t *testing.T) {
	s := openStore(t)
	ctx := t.Context()

	created, err := s.Create(ctx, domain.ResourceTodo, "42", domain.Fields{
		"id":      "ignored",
		"content": "buy film",
		"tags":    []string{"errand"},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.NewKey(domain.ResourceTodo, "42"), created.Key)
	assert.Equal(t, int64(1), created.Revision)
	assert.Equal(t, domain.Fields{"content": "buy film", "tags": []any{"errand"}}, created.Fields)
	assert.Equal(t, time.Date(2024, 5, 1, 9, 0, 1, 0, time.UTC), created.CreatedAt)

	fetched, err := s.Fetch(ctx, domain.ResourceTodo, "42")
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
}

func TestStore_CreateAssignsID(t *testing.T) {
	s := openStore(t)

	created, err := s.Create(t.Context(), domain.ResourceDiary, "", domain.Fields{"title": "day one"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.Key.ID)
}

func TestStore_FetchMissing(t *testing.T) {
	s := openStore(t)

	_, err := s.Fetch(t.Context(), domain.ResourceTodo, "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
	assert.Equal(t, domain.FailureNotFound, domain.Classify(err).Kind)
}

func TestStore_ListNewestFirstPerResource(t *testing.T) {
	s := openStore(t)
	ctx := t.Context()

	for _, id := range []string{"a", "b", "c"} {
		_, err := s.Create(ctx, domain.ResourceTodo, id, domain.Fields{"content": id})
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, domain.ResourceDiary, "d", domain.Fields{"title": "other"})
	require.NoError(t, err)
	_, err = s.Update(ctx, domain.ResourceTodo, "a", 1, domain.Fields{"content": "a2"})
	require.NoError(t, err)

	list, err := s.List(ctx, domain.ResourceTodo)
	require.NoError(t, err)

	ids := make([]string, len(list))
	for i, e := range list {
		ids[i] = e.Key.ID
	}
	assert.Equal(t, []string{"a", "c", "b"}, ids)

	empty, err := s.List(ctx, domain.ResourceExpense)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStore_UpdateChecksRevision(t *testing.T) {
	s := openStore(t)
	ctx := t.Context()

	_, err := s.Create(ctx, domain.ResourceTodo, "42", domain.Fields{"content": "v1"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, domain.ResourceTodo, "42", 1, domain.Fields{"content": "v2"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Revision)
	assert.Equal(t, "v2", updated.Fields["content"])
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	_, err = s.Update(ctx, domain.ResourceTodo, "42", 1, domain.Fields{"content": "stale"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRevisionMismatch)
	assert.Equal(t, domain.FailureConflict, domain.Classify(err).Kind)

	_, err = s.Update(ctx, domain.ResourceTodo, "missing", 1, domain.Fields{"content": "x"})
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)

	current, err := s.Fetch(ctx, domain.ResourceTodo, "42")
	require.NoError(t, err)
	assert.Equal(t, "v2", current.Fields["content"])
}

func TestStore_RemoveChecksRevision(t *testing.T) {
	s := openStore(t)
	ctx := t.Context()

	_, err := s.Create(ctx, domain.ResourceRecipe, "r1", domain.Fields{"title": "Kodachrome"})
	require.NoError(t, err)

	err = s.Remove(ctx, domain.ResourceRecipe, "r1", 7)
	assert.ErrorIs(t, err, domain.ErrRevisionMismatch)

	require.NoError(t, s.Remove(ctx, domain.ResourceRecipe, "r1", 1))

	_, err = s.Fetch(ctx, domain.ResourceRecipe, "r1")
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)

	err = s.Remove(ctx, domain.ResourceRecipe, "r1", 1)
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
}

func TestStore_InMemory(t *testing.T) {
	s, err := remote.Open(t.Context(), domain.RemoteConfig{Driver: domain.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	_, err = s.Create(t.Context(), domain.ResourceExpense, "e1", domain.Fields{"amount": 1200})
	require.NoError(t, err)

	got, err := s.Fetch(t.Context(), domain.ResourceExpense, "e1")
	require.NoError(t, err)
	assert.InDelta(t, 1200, got.Fields["amount"], 0)
}

func TestOpen_Errors(t *testing.T) {
	_, err := remote.Open(t.Context(), domain.RemoteConfig{Driver: "mysql"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedDriver)

	_, err = remote.Open(t.Context(), domain.RemoteConfig{Driver: domain.DriverPostgres})
	assert.ErrorIs(t, err, domain.ErrMissingDSN)
}

func TestRebind(t *testing.T) {
	query := "SELECT a FROM t WHERE b = ? AND c = ?"

	assert.Equal(t, query, remote.Rebind(domain.DriverSQLite, query))
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", remote.Rebind(domain.DriverPostgres, query))
}
