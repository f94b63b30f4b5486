package pghooks

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/gridflow/internal/config"
)

// fakeRows serves fixed hook rows.
type fakeRows struct {
	rows [][4]any
	pos  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.rows[r.pos-1][:], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.pos-1]
	*dest[0].(*string) = row[0].(string)
	*dest[1].(*string) = row[1].(string)
	*dest[2].(*string) = row[2].(string)
	*dest[3].(*bool) = row[3].(bool)
	return nil
}

type fakeDB struct {
	rows     *fakeRows
	queryErr error
	affected string
	execs    []string
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.NewCommandTag(f.affected), nil
}

func (f *fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

func TestStore_Load(t *testing.T) {
	t.Parallel()
	db := &fakeDB{rows: &fakeRows{rows: [][4]any{
		{"deploy", "noop", "Deployments.", false},
		{"github_push", "print", "", true},
	}}}

	hooks, err := New(db).Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"deploy", "github_push"}, hooks.IDs())
	def, ok := hooks.Find("github_push")
	require.True(t, ok)
	assert.Equal(t, "print", def.Task)
	assert.True(t, def.Secret)
}

func TestStore_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		db     *fakeDB
		run    func(s *Store) error
		expect string
		is     error
	}{
		{
			name:   "query fails",
			db:     &fakeDB{queryErr: errors.New("connection refused")},
			run:    func(s *Store) error { _, err := s.List(context.Background()); return err },
			expect: "connection refused",
		},
		{
			name:   "rows fail",
			db:     &fakeDB{rows: &fakeRows{err: errors.New("broken pipe")}},
			run:    func(s *Store) error { _, err := s.Load(context.Background()); return err },
			expect: "broken pipe",
		},
		{
			name: "delete missing",
			db:   &fakeDB{affected: "DELETE 0"},
			run:  func(s *Store) error { return s.Delete(context.Background(), "nope") },
			is:   ErrHookNotFound,
		},
		{
			name:   "put without id",
			db:     &fakeDB{},
			run:    func(s *Store) error { return s.Put(context.Background(), &config.HookDefinition{}) },
			expect: "must have an id",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.run(New(tc.db))
			require.Error(t, err)
			if tc.is != nil {
				assert.ErrorIs(t, err, tc.is)
			} else {
				assert.Contains(t, err.Error(), tc.expect)
			}
		})
	}
}

func TestStore_DeleteExisting(t *testing.T) {
	t.Parallel()
	db := &fakeDB{affected: "DELETE 1"}

	require.NoError(t, New(db).Delete(context.Background(), "deploy"))
	assert.Len(t, db.execs, 1)
}

func TestStore_Postgres(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL is not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	defer pool.Close()

	s := New(pool)
	require.NoError(t, s.CreateSchema(ctx))
	t.Cleanup(func() { _ = s.DropSchema(context.Background()) })

	require.NoError(t, s.Put(ctx, &config.HookDefinition{ID: "deploy", Task: "noop"}))
	require.NoError(t, s.Put(ctx, &config.HookDefinition{ID: "deploy", Task: "print", Secret: true}))

	hooks, err := s.Load(ctx)
	require.NoError(t, err)
	def, ok := hooks.Find("deploy")
	require.True(t, ok)
	assert.Equal(t, "print", def.Task)
	assert.True(t, def.Secret)

	require.NoError(t, s.Delete(ctx, "deploy"))
	require.ErrorIs(t, s.Delete(ctx, "deploy"), ErrHookNotFound)
}
