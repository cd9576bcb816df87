package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gribsnap/internal/platform/obs"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// SQLCache is the Postgres-backed render cache.
type SQLCache struct {
	DB *sql.DB
}

func NewSQLCache(db *sql.DB) *SQLCache {
	return &SQLCache{DB: db}
}

// OpenPostgres connects through the pgx stdlib driver and creates the table.
func OpenPostgres(ctx context.Context, databaseURL string) (*SQLCache, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres cache: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open postgres cache: verify connection: %w", err)
	}

	s := NewSQLCache(db)
	if err := s.InitSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLCache) InitSchema(ctx context.Context) error {
	if s.DB == nil {
		return errors.New("render cache: db is nil")
	}
	_, err := s.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS render_cache (
		key TEXT PRIMARY KEY,
		payload BYTEA NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`)
	if err != nil {
		return fmt.Errorf("init render cache schema: %w", err)
	}
	return nil
}

// Get returns the payload for key or ErrMiss.
func (s *SQLCache) Get(ctx context.Context, key string) (_ []byte, err error) {
	defer obs.Time(ctx, "cache.sql.Get")(&err)

	if s.DB == nil {
		return nil, errors.New("render cache: db is nil")
	}

	var payload []byte
	err = s.DB.QueryRowContext(ctx, `
	SELECT payload
	FROM render_cache
	WHERE key = $1;
	`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get render cache key=%q: %w", key, err)
	}
	return payload, nil
}

// Put upserts the payload for key.
func (s *SQLCache) Put(ctx context.Context, key string, payload []byte) (err error) {
	defer obs.Time(ctx, "cache.sql.Put")(&err)

	if s.DB == nil {
		return errors.New("render cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert render cache: empty key")
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO render_cache (key, payload)
	VALUES ($1, $2)
	ON CONFLICT (key) DO UPDATE
	SET payload = EXCLUDED.payload,
		created_at = now();
	`, key, payload)
	if err != nil {
		return fmt.Errorf("insert render cache key=%q: %w", key, err)
	}
	return nil
}

func (s *SQLCache) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
