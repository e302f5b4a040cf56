// Package bunstore persists client session state in a sqlite database
// through Bun, so the token, user record, and active role survive process
// restarts without the host wiring its own persistence.
package bunstore

import (
	"context"
	"database/sql"
	"time"

	session "github.com/farmvine/go-session"
	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Entry is a single persisted key/value pair.
type Entry struct {
	bun.BaseModel `bun:"table:client_state,alias:cst"`
	Key           string    `bun:"key,pk" json:"key"`
	Value         string    `bun:"value,notnull" json:"value"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

// Store is a sqlite-backed Storage. All operations run against a single
// client_state table keyed by storage key.
type Store struct {
	db *bun.DB
}

var _ session.Storage = (*Store)(nil)

// Open creates (or reuses) the database at dsn and ensures the table
// exists. Use ":memory:" for an ephemeral store.
func Open(dsn string) (*Store, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryOperation, "unable to open state database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	store := &Store{db: db}
	if err := store.ensureTable(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// New wraps an existing Bun database handle.
func New(db *bun.DB) (*Store, error) {
	store := &Store{db: db}
	if err := store.ensureTable(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get implements session.Storage.
func (s *Store) Get(key string) (string, bool) {
	entry := &Entry{}
	err := s.db.NewSelect().
		Model(entry).
		Where("key = ?", key).
		Scan(context.Background())
	if err != nil {
		return "", false
	}
	return entry.Value, true
}

// Set implements session.Storage.
func (s *Store) Set(key, value string) error {
	entry := &Entry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}

	_, err := s.db.NewInsert().
		Model(entry).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(context.Background())
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "unable to persist state entry")
	}
	return nil
}

// Delete implements session.Storage.
func (s *Store) Delete(key string) error {
	_, err := s.db.NewDelete().
		Model((*Entry)(nil)).
		Where("key = ?", key).
		Exec(context.Background())
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "unable to delete state entry")
	}
	return nil
}

func (s *Store) ensureTable(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*Entry)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "unable to create state table")
	}
	return nil
}
