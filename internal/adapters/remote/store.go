// Package remote implements the remote store over database/sql. The sqlite
// driver serves a local database file; the postgres driver serves a hosted
// database.
package remote

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.trai.ch/daybook/internal/core/domain"
	"go.trai.ch/daybook/internal/core/ports"
	"go.trai.ch/zerr"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// timeLayout has a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is a ports.RemoteStore and ports.AccountService backed by a SQL
// database. Every row carries a revision that each update increments;
// updates and deletes only apply when the caller's base revision matches.
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

var (
	_ ports.RemoteStore    = (*Store)(nil)
	_ ports.AccountService = (*Store)(nil)
)

// Open connects to the database selected by cfg and creates the schema.
func Open(ctx context.Context, cfg domain.RemoteConfig) (*Store, error) {
	dsn := cfg.DSN

	switch cfg.Driver {
	case domain.DriverSQLite:
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
	case domain.DriverPostgres:
		if dsn == "" {
			return nil, domain.ErrMissingDSN
		}
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedDriver, "open"), "driver", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "driver", cfg.Driver)
	}
	if cfg.Driver == domain.DriverSQLite {
		// A single connection serializes writers and keeps ":memory:"
		// databases alive across statements.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, driver: cfg.Driver, now: time.Now}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "driver", cfg.Driver)
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func ensureDir(dsn string) error {
	if dsn == "" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "dir", dir)
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	for stmt := range strings.SplitSeq(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrStoreMigrateFailed.Error()), "driver", s.driver)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return zerr.Wrap(s.db.Close(), "failed to close remote store")
}

// Fetch returns the current row of an entity.
func (s *Store) Fetch(ctx context.Context, resource domain.ResourceType, id string) (domain.Entity, error) {
	key := domain.NewKey(resource, id)
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, payload, revision, created_at, updated_at
		   FROM entities WHERE resource_type = ? AND id = ?`),
		string(resource), id)

	e, err := scanEntity(resource, row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Entity{}, notFound(key)
	}
	if err != nil {
		return domain.Entity{}, zerr.With(err, "key", key.String())
	}
	return e, nil
}

// List returns every row of a resource, most recently updated first.
func (s *Store) List(ctx context.Context, resource domain.ResourceType) ([]domain.Entity, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, payload, revision, created_at, updated_at
		   FROM entities WHERE resource_type = ?
		  ORDER BY updated_at DESC, id`),
		string(resource))
	if err != nil {
		return nil, queryFailed(err, "resource", string(resource))
	}
	defer func() { _ = rows.Close() }()

	var entities []domain.Entity
	for rows.Next() {
		e, err := scanEntity(resource, rows)
		if err != nil {
			return nil, zerr.With(err, "resource", string(resource))
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, queryFailed(err, "resource", string(resource))
	}
	return entities, nil
}

// Create inserts a row with revision 1. An empty id is assigned by the store.
func (s *Store) Create(
	ctx context.Context,
	resource domain.ResourceType,
	id string,
	payload domain.Fields,
) (domain.Entity, error) {
	if id == "" {
		id = newID()
	}
	key := domain.NewKey(resource, id)

	data, err := encodePayload(payload)
	if err != nil {
		return domain.Entity{}, zerr.With(err, "key", key.String())
	}

	now := s.now().UTC()
	stamp := now.Format(timeLayout)
	_, err = s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO entities (resource_type, id, payload, revision, created_at, updated_at)
		 VALUES (?, ?, ?, 1, ?, ?)`),
		string(resource), id, data, stamp, stamp)
	if err != nil {
		return domain.Entity{}, queryFailed(err, "key", key.String())
	}

	return s.Fetch(ctx, resource, id)
}

// Update replaces the payload of a row whose revision equals baseRevision
// and increments the revision.
func (s *Store) Update(
	ctx context.Context,
	resource domain.ResourceType,
	id string,
	baseRevision int64,
	payload domain.Fields,
) (domain.Entity, error) {
	key := domain.NewKey(resource, id)

	data, err := encodePayload(payload)
	if err != nil {
		return domain.Entity{}, zerr.With(err, "key", key.String())
	}

	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE entities
		    SET payload = ?, revision = revision + 1, updated_at = ?
		  WHERE resource_type = ? AND id = ? AND revision = ?`),
		data, s.now().UTC().Format(timeLayout), string(resource), id, baseRevision)
	if err != nil {
		return domain.Entity{}, queryFailed(err, "key", key.String())
	}
	if err := s.expectOneRow(ctx, res, key, baseRevision); err != nil {
		return domain.Entity{}, err
	}

	return s.Fetch(ctx, resource, id)
}

// Remove deletes a row whose revision equals baseRevision.
func (s *Store) Remove(ctx context.Context, resource domain.ResourceType, id string, baseRevision int64) error {
	key := domain.NewKey(resource, id)

	res, err := s.db.ExecContext(ctx, s.rebind(
		`DELETE FROM entities WHERE resource_type = ? AND id = ? AND revision = ?`),
		string(resource), id, baseRevision)
	if err != nil {
		return queryFailed(err, "key", key.String())
	}
	return s.expectOneRow(ctx, res, key, baseRevision)
}

// expectOneRow tells a missing row apart from a stale base revision when a
// conditional statement affected nothing.
func (s *Store) expectOneRow(ctx context.Context, res sql.Result, key domain.Key, base int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return queryFailed(err, "key", key.String())
	}
	if n > 0 {
		return nil
	}

	var current int64
	err = s.db.QueryRowContext(ctx, s.rebind(
		`SELECT revision FROM entities WHERE resource_type = ? AND id = ?`),
		string(key.Resource), key.ID).Scan(&current)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return notFound(key)
	case err != nil:
		return queryFailed(err, "key", key.String())
	}

	err = zerr.With(zerr.Wrap(domain.ErrRevisionMismatch, "stale revision"), "key", key.String())
	err = zerr.With(err, "base_revision", base)
	return zerr.With(err, "current_revision", current)
}

// rebind rewrites "?" placeholders into the "$n" form postgres expects.
func (s *Store) rebind(query string) string {
	if s.driver != domain.DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(resource domain.ResourceType, row scanner) (domain.Entity, error) {
	var (
		id, payload, created, updated string
		revision                      int64
	)
	if err := row.Scan(&id, &payload, &revision, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Entity{}, err
		}
		return domain.Entity{}, zerr.Wrap(err, domain.ErrStoreQueryFailed.Error())
	}

	var fields domain.Fields
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return domain.Entity{}, zerr.With(zerr.Wrap(err, domain.ErrPayloadDecodeFailed.Error()), "id", id)
	}

	e := domain.Entity{
		Key:      domain.NewKey(resource, id),
		Fields:   fields,
		Revision: revision,
	}
	e.CreatedAt, _ = time.Parse(timeLayout, created)
	e.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return e, nil
}

// encodePayload stores everything but the columns the store maintains.
func encodePayload(payload domain.Fields) (string, error) {
	stored := make(domain.Fields, len(payload))
	for name, v := range payload {
		switch name {
		case "id", "created_at", "updated_at":
			continue
		}
		stored[name] = v
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrPayloadEncodeFailed.Error())
	}
	return string(data), nil
}

func notFound(key domain.Key) error {
	return zerr.With(zerr.Wrap(domain.ErrEntityNotFound, "missing row"), "key", key.String())
}

func queryFailed(err error, key string, value any) error {
	return zerr.With(zerr.Wrap(err, domain.ErrStoreQueryFailed.Error()), key, value)
}
