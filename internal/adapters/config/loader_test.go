package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/daybook/internal/adapters/config"
	"go.trai.ch/daybook/internal/core/domain"
	"go.trai.ch/daybook/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func createFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func newLoader(t *testing.T) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	return config.NewLoader(log), log
}

func TestLoader_MissingFileYieldsDefaults(t *testing.T) {
	loader, _ := newLoader(t)
	dir := t.TempDir()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, domain.DriverSQLite, cfg.Remote.Driver)
	assert.Equal(t, filepath.Join(dir, domain.DataDirName, domain.DatabaseFileName), cfg.Remote.DSN)
	assert.Equal(t, domain.DefaultRemoteTimeout, cfg.Remote.Timeout)
	assert.Equal(t, domain.DefaultToastTTL, cfg.Toast.TTL)
	assert.Equal(t, domain.DefaultAppURL, cfg.App.URL)
	assert.False(t, cfg.Telemetry.Trace)
	assert.Equal(t, domain.DefaultSchemas(), cfg.Resources)
}

func TestLoader_FullFile(t *testing.T) {
	loader, _ := newLoader(t)
	dir := t.TempDir()
	createFile(t, dir, domain.ConfigFileName, `
remote:
  driver: postgres
  dsn: postgres://daybook@localhost/daybook?sslmode=disable
  timeout: 2s
toast:
  ttl: 5s
app:
  url: https://daybook.example.com/
telemetry:
  trace: true
resources:
  diary:
    rules:
      - expr: 'title != nil && len(title) > 0'
        message: title is required
`)

	cfg, err := loader.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, domain.DriverPostgres, cfg.Remote.Driver)
	assert.Equal(t, "postgres://daybook@localhost/daybook?sslmode=disable", cfg.Remote.DSN)
	assert.Equal(t, 2*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, 5*time.Second, cfg.Toast.TTL)
	assert.Equal(t, "https://daybook.example.com", cfg.App.URL)
	assert.True(t, cfg.Telemetry.Trace)

	diary := cfg.Schema(domain.ResourceDiary)
	assert.Equal(t, []domain.Rule{{Expr: "title != nil && len(title) > 0", Message: "title is required"}}, diary.Rules)
	assert.Equal(t, domain.SystemFields, diary.Ignore)

	// Resources not mentioned keep their defaults.
	assert.Equal(t, domain.DefaultSchemas()[domain.ResourceRecipe], cfg.Schema(domain.ResourceRecipe))
}

func TestLoader_FindsFileInParent(t *testing.T) {
	loader, _ := newLoader(t)
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, "remote:\n  dsn: data/app.db\n")

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	cfg, err := loader.Load(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "data", "app.db"), cfg.Remote.DSN)
}

func TestLoader_SQLiteDSNForms(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want func(dir string) string
	}{
		{name: "memory", dsn: ":memory:", want: func(string) string { return ":memory:" }},
		{name: "uri", dsn: "file:test.db?mode=memory", want: func(string) string { return "file:test.db?mode=memory" }},
		{name: "absolute", dsn: "/var/lib/daybook.db", want: func(string) string { return "/var/lib/daybook.db" }},
		{name: "relative", dsn: "daybook.db", want: func(dir string) string { return filepath.Join(dir, "daybook.db") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, _ := newLoader(t)
			dir := t.TempDir()
			createFile(t, dir, domain.ConfigFileName, "remote:\n  driver: sqlite\n  dsn: \""+tt.dsn+"\"\n")

			cfg, err := loader.Load(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want(dir), cfg.Remote.DSN)
		})
	}
}

func TestLoader_ResourceOverrides(t *testing.T) {
	loader, log := newLoader(t)
	gomock.InOrder(
		log.EXPECT().Warn(`'ignore' of resource "expense_tracker" has no effect while 'compare' is set`),
		log.EXPECT().Warn(`'ignore' of resource "todos" has no effect while 'compare' is set`),
	)

	dir := t.TempDir()
	createFile(t, dir, domain.ConfigFileName, `
resources:
  todo:
    ignore: [done]
  expenses:
    ignore: [category, id]
    compare: [amount]
  recipes:
    rules: []
`)

	cfg, err := loader.Load(dir)
	require.NoError(t, err)

	todo := cfg.Schema(domain.ResourceTodo)
	assert.Equal(t, []string{"created_at", "done", "id", "updated_at", "user_id"}, todo.Ignore)
	assert.Equal(t, []string{"content", "tags", "reminder_time"}, todo.Compare)

	expense := cfg.Schema(domain.ResourceExpense)
	assert.Equal(t, []string{"amount"}, expense.Compare)
	assert.Equal(t, []string{"category", "created_at", "id", "updated_at", "user_id"}, expense.Ignore)

	assert.Empty(t, cfg.Schema(domain.ResourceRecipe).Rules)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "invalid yaml", content: "remote: [", wantErr: domain.ErrConfigParseFailed.Error()},
		{name: "unknown driver", content: "remote:\n  driver: mysql\n", wantErr: domain.ErrUnsupportedDriver.Error()},
		{name: "postgres without dsn", content: "remote:\n  driver: postgres\n", wantErr: domain.ErrMissingDSN.Error()},
		{name: "bad timeout", content: "remote:\n  timeout: soon\n", wantErr: "remote.timeout"},
		{name: "negative ttl", content: "toast:\n  ttl: -1s\n", wantErr: domain.ErrInvalidDuration.Error()},
		{name: "relative app url", content: "app:\n  url: /daybook\n", wantErr: domain.ErrInvalidAppURL.Error()},
		{name: "unknown resource", content: "resources:\n  notes: {}\n", wantErr: domain.ErrUnknownResource.Error()},
		{name: "empty rule", content: "resources:\n  diary:\n    rules:\n      - message: x\n", wantErr: domain.ErrInvalidRule.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, _ := newLoader(t)
			dir := t.TempDir()
			createFile(t, dir, domain.ConfigFileName, tt.content)

			_, err := loader.Load(dir)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
