package commands_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/daybook/cmd/daybook/commands"
	"go.trai.ch/daybook/internal/build"
	"go.trai.ch/daybook/internal/core/domain"
)

type mockApp struct {
	entities map[domain.Key]domain.Entity
	listed   []domain.Entity
	outcome  domain.Outcome

	intents []domain.MutationIntent
	modals  []string
	resets  []string
}

func (m *mockApp) Load(_ context.Context, key domain.Key) (domain.Entity, error) {
	e, ok := m.entities[key]
	if !ok {
		return domain.Entity{}, domain.ErrEntityNotFound
	}
	return e, nil
}

func (m *mockApp) List(_ context.Context, _ domain.ResourceType) ([]domain.Entity, error) {
	return m.listed, nil
}

func (m *mockApp) Submit(_ context.Context, intent domain.MutationIntent) domain.Outcome {
	m.intents = append(m.intents, intent)
	return m.outcome
}

func (m *mockApp) RequestPasswordReset(_ context.Context, email, modalID string) domain.Outcome {
	m.resets = append(m.resets, email+" "+modalID)
	return m.outcome
}

func (m *mockApp) OpenModal(desc domain.ModalDescriptor) string {
	id := desc.ResolvedID()
	m.modals = append(m.modals, id)
	return id
}

func execute(t *testing.T, m *mockApp, args ...string) (string, error) {
	t.Helper()

	cli := commands.New(m)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

var todo = domain.Entity{
	Key:       domain.NewKey(domain.ResourceTodo, "42"),
	Fields:    domain.Fields{"content": "buy film", "tags": []any{"errand"}},
	Revision:  3,
	UpdatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
}

func TestCommands_Show(t *testing.T) {
	m := &mockApp{entities: map[domain.Key]domain.Entity{todo.Key: todo}}

	out, err := execute(t, m, "show", "todo/42")
	require.NoError(t, err)
	assert.Contains(t, out, "key: todos/42\n")
	assert.Contains(t, out, "revision: 3\n")
	assert.Contains(t, out, "2024-05-01T09:00:00Z")
	assert.Contains(t, out, "content: buy film\n")

	_, err = execute(t, m, "show", "todos")
	assert.ErrorIs(t, err, domain.ErrInvalidKey)

	_, err = execute(t, m, "show", "todos/7")
	assert.ErrorIs(t, err, domain.ErrEntityNotFound)
}

func TestCommands_List(t *testing.T) {
	m := &mockApp{listed: []domain.Entity{todo}}

	out, err := execute(t, m, "list", "todos")
	require.NoError(t, err)
	assert.Contains(t, out, "42\t")
	assert.Contains(t, out, "buy film")

	_, err = execute(t, m, "list", "notes")
	assert.ErrorIs(t, err, domain.ErrUnknownResource)
}

func TestCommands_Create(t *testing.T) {
	t.Run("builds payload from file and flags", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "recipe.yaml")
		require.NoError(t, os.WriteFile(file, []byte("title: Kodachrome\niso: up to ISO 6400\n"), 0o600))

		created := domain.NewKey(domain.ResourceRecipe, "r1")
		m := &mockApp{outcome: domain.Outcome{Kind: domain.OutcomeSucceeded, Entity: domain.Entity{Key: created}}}

		out, err := execute(t, m, "create", "recipe", "-f", file, "--set", "iso=up to ISO 3200", "--set", "grain=2")
		require.NoError(t, err)
		assert.Equal(t, "recipes/r1\n", out)

		require.Len(t, m.intents, 1)
		intent := m.intents[0]
		assert.Equal(t, domain.MutationCreate, intent.Kind)
		assert.Equal(t, domain.NewKey(domain.ResourceRecipe, ""), intent.Key)
		assert.Equal(t, domain.Fields{"title": "Kodachrome", "iso": "up to ISO 3200", "grain": 2}, intent.Payload)
		assert.Equal(t, "edit-recipe-new", intent.ModalID)
	})

	t.Run("rejects malformed assignment", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "create", "todos", "--set", "content")
		assert.ErrorIs(t, err, domain.ErrInvalidAssignment)
		assert.Empty(t, m.intents)
	})

	t.Run("failed outcome is an error", func(t *testing.T) {
		m := &mockApp{outcome: domain.Outcome{
			Kind:    domain.OutcomeRejected,
			Failure: domain.NewFailure(domain.FailureValidation, domain.MessageNoChanges),
		}}
		_, err := execute(t, m, "create", "todos", "--set", "content=x")
		require.ErrorIs(t, err, domain.ErrMutationFailed)
		assert.ErrorContains(t, err, "rejected")
	})
}

func TestCommands_Edit(t *testing.T) {
	m := &mockApp{
		entities: map[domain.Key]domain.Entity{todo.Key: todo},
		outcome:  domain.Outcome{Kind: domain.OutcomeSucceeded},
	}

	_, err := execute(t, m, "edit", "todos/42", "--set", "tags=[errand, lab]")
	require.NoError(t, err)

	require.Len(t, m.intents, 1)
	intent := m.intents[0]
	assert.Equal(t, domain.MutationUpdate, intent.Kind)
	assert.Equal(t, domain.Fields{"tags": []any{"errand", "lab"}}, intent.Payload)
	require.NotNil(t, intent.Previous)
	assert.Equal(t, int64(3), intent.Previous.Revision)
	assert.Equal(t, []string{"edit-todo-42"}, m.modals)
}

func TestCommands_Delete(t *testing.T) {
	m := &mockApp{
		entities: map[domain.Key]domain.Entity{todo.Key: todo},
		outcome:  domain.Outcome{Kind: domain.OutcomeSucceeded},
	}

	_, err := execute(t, m, "delete", "todos/42")
	require.NoError(t, err)

	require.Len(t, m.intents, 1)
	assert.Equal(t, domain.MutationDelete, m.intents[0].Kind)
	assert.Equal(t, "confirm-delete-42", m.intents[0].ModalID)
}

func TestCommands_ResetPassword(t *testing.T) {
	m := &mockApp{outcome: domain.Outcome{Kind: domain.OutcomeFailed, Failure: &domain.Failure{
		Kind: domain.FailureNotFound,
		Err:  domain.ErrUserNotFound,
	}}}

	_, err := execute(t, m, "reset-password", "ann@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMutationFailed))
	assert.Equal(t, []string{"ann@example.com reset-password"}, m.resets)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
}
