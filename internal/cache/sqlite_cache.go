package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gribsnap/internal/platform/obs"

	_ "modernc.org/sqlite"
)

// SqliteCache keeps payloads in a render_cache table of a SQLite file.
type SqliteCache struct {
	DB *sql.DB
}

func NewSqliteCache(db *sql.DB) *SqliteCache {
	return &SqliteCache{DB: db}
}

// OpenSQLite opens path and creates the table if needed.
func OpenSQLite(ctx context.Context, path string) (*SqliteCache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("open sqlite cache: empty path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache %q: %w", path, err)
	}
	// one connection: ":memory:" databases are per connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite cache: verify connection to %q: %w", path, err)
	}

	s := NewSqliteCache(db)
	if err := s.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SqliteCache) InitSchema(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("render cache: db is nil")
	}
	_, err := s.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS render_cache (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL,
		created_at INTEGER NOT NULL
	);
	`)
	if err != nil {
		return fmt.Errorf("init render cache schema: %w", err)
	}
	return nil
}

// Get returns the payload for key or ErrMiss.
func (s *SqliteCache) Get(ctx context.Context, key string) (_ []byte, err error) {
	defer obs.Time(ctx, "cache.sqlite.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("render cache: db is nil")
	}

	var payload []byte
	err = s.DB.QueryRowContext(ctx, `
	SELECT payload
	FROM render_cache
	WHERE key = ?;
	`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get render cache key=%q: %w", key, err)
	}
	return payload, nil
}

// Put stores or replaces the payload for key.
func (s *SqliteCache) Put(ctx context.Context, key string, payload []byte) (err error) {
	defer obs.Time(ctx, "cache.sqlite.Put")(&err)

	if s.DB == nil {
		return errors.New("render cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert render cache: empty key")
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO render_cache (
		key,
		payload,
		created_at
	)
	VALUES (?, ?, ?);
	`, key, payload, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert render cache key=%q: %w", key, err)
	}
	return nil
}

func (s *SqliteCache) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
