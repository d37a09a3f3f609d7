package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "sub", "exam.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func fakeHash(calls *int) func(string) (string, error) {
	return func(p string) (string, error) {
		*calls++
		return "hashed:" + p, nil
	}
}

func TestNewDBRejectsUnknownDriver(t *testing.T) {
	_, err := NewDB(context.Background(), "oracle", "x")
	require.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.migrate(context.Background()))
	require.NoError(t, db.migrate(context.Background()))
}

func TestSeedWritesAdminOnce(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	calls := 0
	seed := SeedAdmin{Username: "admin", Password: "admin123", ExamDate: "2025-12-01", Venue: "Online", LogoPath: "logo.png"}

	created, err := db.Seed(ctx, seed, fakeHash(&calls))
	require.NoError(t, err)
	assert.True(t, created)

	seed.Password = "other"
	created, err = db.Seed(ctx, seed, fakeHash(&calls))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, calls)

	var user, hash, venue string
	require.NoError(t, db.Client.QueryRow(`SELECT username, password_hash, venue FROM admin_config WHERE id = 1`).Scan(&user, &hash, &venue))
	assert.Equal(t, "admin", user)
	assert.Equal(t, "hashed:admin123", hash)
	assert.Equal(t, "Online", venue)
}

func TestAdminRowIsSingleton(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Client.Exec(`INSERT INTO admin_config (id, username, password_hash) VALUES (2, 'x', 'y')`)
	require.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Client.Exec(`INSERT INTO students (name, email) VALUES ('a', 'a@x.io')`)
	require.NoError(t, err)
	_, err = db.Client.Exec(`INSERT INTO students (name, email) VALUES ('b', 'a@x.io')`)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsUniqueViolation(assert.AnError))
}

func TestRebind(t *testing.T) {
	pg := &DB{Driver: DriverPostgres}
	assert.Equal(t, "UPDATE t SET a = $1, b = $2 WHERE id = $3", pg.Rebind("UPDATE t SET a = ?, b = ? WHERE id = ?"))

	lite := &DB{Driver: DriverSQLite}
	assert.Equal(t, "SELECT ? ", lite.Rebind("SELECT ? "))
}

func TestNilRedisIsDisabled(t *testing.T) {
	r := NewRedis("")
	assert.False(t, r.Enabled())
	assert.False(t, r.Healthy(context.Background()))
	assert.NoError(t, r.Close())
}
