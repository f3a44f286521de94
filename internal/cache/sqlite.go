package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cache_records (
	namespace TEXT NOT NULL,
	key       TEXT NOT NULL,
	tier      TEXT NOT NULL,
	value     TEXT NOT NULL,
	cached_at INTEGER NOT NULL,
	PRIMARY KEY (namespace, key)
);
CREATE TABLE IF NOT EXISTS cache_meta (
	name  TEXT PRIMARY KEY,
	value INTEGER NOT NULL
);`

const versionName = "db_version"

// SQLiteBackend persists the cache in a single SQLite file.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteBackend, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite cache path is required")
	}

	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite cache %q: %w", path, err)
	}

	// sqlite wants a single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite cache %q: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("applying sqlite cache schema: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Store(namespace string) Store {
	return &sqliteStore{db: b.db, namespace: namespace}
}

func (b *SQLiteBackend) Version(ctx context.Context) (int64, bool, error) {
	var version int64
	err := b.db.QueryRowContext(ctx, `SELECT value FROM cache_meta WHERE name = ?`, versionName).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading cache version: %w", err)
	}
	return version, true, nil
}

func (b *SQLiteBackend) SetVersion(ctx context.Context, version int64) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO cache_meta (name, value) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		versionName, version)
	if err != nil {
		return fmt.Errorf("writing cache version: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

type sqliteStore struct {
	db        *sql.DB
	namespace string
}

func (s *sqliteStore) Get(ctx context.Context, key string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT key, tier, value, cached_at FROM cache_records WHERE namespace = ? AND key = ?`,
		s.namespace, key)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache record %q: %w", key, err)
	}
	return rec, nil
}

func (s *sqliteStore) Set(ctx context.Context, rec *Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_records (namespace, key, tier, value, cached_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET
			tier = excluded.tier, value = excluded.value, cached_at = excluded.cached_at`,
		s.namespace, rec.Key, string(rec.Tier), string(rec.Value), rec.CachedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("writing cache record %q: %w", rec.Key, err)
	}
	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting cache delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM cache_records WHERE namespace = ? AND key = ?`, s.namespace, key); err != nil {
			return fmt.Errorf("deleting cache record %q: %w", key, err)
		}
	}

	return tx.Commit()
}

func (s *sqliteStore) List(ctx context.Context) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, tier, value, cached_at FROM cache_records WHERE namespace = ?`, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("listing cache records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning cache record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_records WHERE namespace = ?`, s.namespace); err != nil {
		return fmt.Errorf("clearing cache namespace %q: %w", s.namespace, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec      Record
		tier     string
		value    string
		cachedAt int64
	)
	if err := row.Scan(&rec.Key, &tier, &value, &cachedAt); err != nil {
		return nil, err
	}
	rec.Tier = Tier(tier)
	rec.Value = []byte(value)
	rec.CachedAt = time.Unix(0, cachedAt)
	return &rec, nil
}
