package backend

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finassist/internal/config"
	"finassist/internal/core"
	applog "finassist/internal/log"
)

func testFactory() *Factory {
	return NewFactory(applog.New(applog.Config{Output: io.Discard}))
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	require.ErrorContains(t, err, "invalid backend type")

	cfg, err := FromAppConfig(&config.Config{DataBackend: "memory", MemorySeedPath: "seed.json", SQLiteDBPath: "x.db"})
	require.NoError(t, err)
	assert.Equal(t, Config{Type: MemoryBackend, SQLiteDBPath: "x.db", MemorySeedPath: "seed.json"}, cfg)
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, Config{Type: "postgres"}.Validate())
	assert.Error(t, Config{Type: SQLiteBackend}.Validate())
	assert.NoError(t, Config{Type: SQLiteBackend, SQLiteDBPath: "db"}.Validate())
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
}

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	b, err := testFactory().Open(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "db", "finassist.db")})
	require.NoError(t, err)
	defer b.Cleanup()

	assert.Equal(t, SQLiteBackend, b.Type)
	id, err := b.Seeder.CreateUser(ctx, core.User{FirstName: "Abebe", LastName: "Kebede", CreatedAt: time.Now()})
	require.NoError(t, err)

	sess, err := b.Store.Connect(ctx)
	require.NoError(t, err)
	defer sess.Close()
	ok, err := sess.UserExists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenMemory(t *testing.T) {
	ctx := context.Background()

	t.Run("missing seed file", func(t *testing.T) {
		b, err := testFactory().Open(ctx, Config{Type: MemoryBackend, MemorySeedPath: filepath.Join(t.TempDir(), "none.json")})
		require.NoError(t, err)
		assert.NoError(t, b.Cleanup())

		sess, err := b.Store.Connect(ctx)
		require.NoError(t, err)
		defer sess.Close()
		ok, err := sess.UserExists(ctx, 1)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("seeded", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"users":[{"user_id":7,"fname":"Abebe","lname":"Kebede"}]}`), 0600))

		b, err := testFactory().Open(ctx, Config{Type: MemoryBackend, MemorySeedPath: path})
		require.NoError(t, err)

		sess, err := b.Store.Connect(ctx)
		require.NoError(t, err)
		defer sess.Close()
		u, err := sess.GetUser(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "Abebe Kebede", u.FullName())
	})

	t.Run("malformed seed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.json")
		require.NoError(t, os.WriteFile(path, []byte(`{`), 0600))

		_, err := testFactory().Open(ctx, Config{Type: MemoryBackend, MemorySeedPath: path})
		require.ErrorContains(t, err, "seed memory backend")
	})
}
