package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:metadatarepo?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM metadata`)
	require.NoError(t, err)
	return db
}

func TestGet_MissingKeyIsEmpty(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	v, err := repo.Get(context.Background(), "token")
	require.NoError(t, err)
	require.Empty(t, v)
}

func TestSetGet_Overwrite(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "token", "first"))
	require.NoError(t, repo.Set(ctx, "token", "second"))

	v, err := repo.Get(ctx, "token")
	require.NoError(t, err)
	require.Equal(t, "second", v)
}

func TestRemoveMany(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "token", "t"))
	require.NoError(t, repo.Set(ctx, "tokenType", "Bearer"))
	require.NoError(t, repo.Set(ctx, "user", `{"name":"Jane"}`))

	require.NoError(t, repo.RemoveMany(ctx, "token", "tokenType", "user"))

	for _, key := range []string{"token", "tokenType", "user"} {
		v, err := repo.Get(ctx, key)
		require.NoError(t, err)
		require.Empty(t, v)
	}

	// removing absent keys is not an error
	require.NoError(t, repo.RemoveMany(ctx, "token", "nothere"))
	require.NoError(t, repo.RemoveMany(ctx))
}

func TestClear(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "token", "t"))
	require.NoError(t, repo.Clear(ctx))

	v, err := repo.Get(ctx, "token")
	require.NoError(t, err)
	require.Empty(t, v)
}
