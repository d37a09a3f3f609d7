package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// DB wraps sql.DB for the embedded SQLite file or Postgres via pgx.
type DB struct {
	Client *sql.DB
	Driver string
}

// NewDB opens the store, verifies the connection and creates the schema.
func NewDB(ctx context.Context, driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "." && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		dsn = sqliteDSN(dsn)
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if driver == DriverSQLite {
		// one connection keeps the file single-writer
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	d := &DB{Client: db, Driver: driver}
	if err := d.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_journal_mode=WAL&_busy_timeout=5000"
}

func (d *DB) migrate(ctx context.Context) error {
	schema := sqliteSchema
	if d.Driver == DriverPostgres {
		schema = postgresSchema
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := d.Client.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS admin_config (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	exam_date     TEXT NOT NULL DEFAULT '',
	venue         TEXT NOT NULL DEFAULT '',
	logo_path     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS students (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	email       TEXT NOT NULL UNIQUE,
	phone       TEXT NOT NULL DEFAULT '',
	class_name  TEXT NOT NULL DEFAULT '',
	result      REAL NOT NULL DEFAULT 0,
	mock        REAL NOT NULL DEFAULT 0
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS admin_config (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	exam_date     TEXT NOT NULL DEFAULT '',
	venue         TEXT NOT NULL DEFAULT '',
	logo_path     TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS students (
	id          BIGSERIAL PRIMARY KEY,
	name        TEXT NOT NULL,
	email       TEXT NOT NULL UNIQUE,
	phone       TEXT NOT NULL DEFAULT '',
	class_name  TEXT NOT NULL DEFAULT '',
	result      DOUBLE PRECISION NOT NULL DEFAULT 0,
	mock        DOUBLE PRECISION NOT NULL DEFAULT 0
);
`

// SeedAdmin describes the admin row written on first startup.
type SeedAdmin struct {
	Username string
	Password string
	ExamDate string
	Venue    string
	LogoPath string
}

// Seed writes the singleton admin_config row if it does not exist yet.
// hash is only called when the row is missing. It reports whether a row was created.
func (d *DB) Seed(ctx context.Context, s SeedAdmin, hash func(string) (string, error)) (bool, error) {
	var n int
	if err := d.Client.QueryRowContext(ctx, d.Rebind(`SELECT COUNT(*) FROM admin_config WHERE id = ?`), 1).Scan(&n); err != nil {
		return false, fmt.Errorf("check admin row: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	pw, err := hash(s.Password)
	if err != nil {
		return false, fmt.Errorf("hash default password: %w", err)
	}
	res, err := d.Client.ExecContext(ctx, d.Rebind(`
		INSERT INTO admin_config (id, username, password_hash, exam_date, venue, logo_path)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`), 1, s.Username, pw, s.ExamDate, s.Venue, s.LogoPath)
	if err != nil {
		return false, fmt.Errorf("insert admin row: %w", err)
	}
	created, _ := res.RowsAffected()
	return created > 0, nil
}

// Rebind rewrites ? placeholders into $n for Postgres.
func (d *DB) Rebind(query string) string {
	if d.Driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Ping reports whether the database answers.
func (d *DB) Ping(ctx context.Context) error {
	if d == nil || d.Client == nil {
		return errors.New("db not initialised")
	}
	return d.Client.PingContext(ctx)
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

// IsUniqueViolation reports whether err is a UNIQUE constraint failure on either driver.
func IsUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
