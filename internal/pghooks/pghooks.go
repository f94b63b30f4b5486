// Package pghooks stores webhook bindings in PostgreSQL so that hooks can be
// registered at runtime instead of only through manifests.
package pghooks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vk/gridflow/internal/config"
	"github.com/vk/gridflow/internal/ctxlog"
	"github.com/vk/gridflow/internal/registry"
)

// ErrHookNotFound is returned when deleting a hook that does not exist.
var ErrHookNotFound = errors.New("pghooks: hook not found")

const schemaSQL = `
CREATE TABLE IF NOT EXISTS gridflow_webhooks (
    id          TEXT PRIMARY KEY,
    task        TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    secret      BOOLEAN NOT NULL DEFAULT FALSE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store reads and writes webhook bindings.
type Store struct {
	db DB
}

// New creates a store backed by db, usually a *pgxpool.Pool.
func New(db DB) *Store {
	return &Store{db: db}
}

// CreateSchema creates the webhooks table if it doesn't exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the webhooks table.
func (s *Store) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS gridflow_webhooks;`)
	return err
}

// Put inserts or replaces a binding.
func (s *Store) Put(ctx context.Context, def *config.HookDefinition) error {
	if def == nil || def.ID == "" {
		return errors.New("pghooks: hook must have an id")
	}
	_, err := s.db.Exec(ctx,
		`INSERT INTO gridflow_webhooks (id, task, description, secret) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET task = EXCLUDED.task, description = EXCLUDED.description, secret = EXCLUDED.secret`,
		def.ID, def.Task, def.Description, def.Secret,
	)
	if err != nil {
		return fmt.Errorf("pghooks: upsert hook: %w", err)
	}
	return nil
}

// Delete removes a binding.
func (s *Store) Delete(ctx context.Context, id string) error {
	ct, err := s.db.Exec(ctx, `DELETE FROM gridflow_webhooks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pghooks: delete hook: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrHookNotFound
	}
	return nil
}

// List returns every binding ordered by id.
func (s *Store) List(ctx context.Context) ([]*config.HookDefinition, error) {
	rows, err := s.db.Query(ctx, `SELECT id, task, description, secret FROM gridflow_webhooks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("pghooks: list hooks: %w", err)
	}
	defer rows.Close()

	var out []*config.HookDefinition
	for rows.Next() {
		var h config.HookDefinition
		if err := rows.Scan(&h.ID, &h.Task, &h.Description, &h.Secret); err != nil {
			return nil, fmt.Errorf("pghooks: scan hook: %w", err)
		}
		out = append(out, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pghooks: list hooks: %w", err)
	}
	return out, nil
}

// Load reads every binding into a new registry, ready to be merged over the
// manifest hooks.
func (s *Store) Load(ctx context.Context) (*registry.HookRegistry, error) {
	defs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	hooks := registry.NewHookRegistry()
	for _, def := range defs {
		hooks.Register(def)
	}
	ctxlog.FromContext(ctx).Debug("Loaded webhook bindings from database.", "count", hooks.Len())
	return hooks, nil
}
