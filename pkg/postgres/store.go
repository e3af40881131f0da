package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"websearch/cache"
)

const (
	minConns = 5
	maxConns = 15
)

// Store is the Postgres-backed persistent cache tier. It holds two
// tables keyed by digest: search_cache for result sets and url_cache for
// extracted page text.
type Store struct {
	pool *pgxpool.Pool
}

var _ cache.Store = (*Store)(nil)

func New(ctx context.Context, dbURL, migrationsURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}
	cfg.MinConns = minConns
	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	m, err := migrate.New(migrationsURL, dbURL)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		pool.Close()
		return nil, err
	}

	return &Store{pool: pool}, nil
}

func (s *Store) GetSearch(ctx context.Context, key string, maxAge time.Duration) (*cache.SearchRecord, error) {
	query := `
		SELECT results, has_content FROM search_cache
		WHERE query_hash = $1 AND created_at > $2
	`

	var rec cache.SearchRecord
	err := s.pool.QueryRow(ctx, query, key, time.Now().Add(-maxAge)).Scan(&rec.Results, &rec.HasContent)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read search cache: %w", err)
	}
	return &rec, nil
}

func (s *Store) PutSearch(ctx context.Context, key, query string, results []byte, hasContent bool) error {
	stmt := `
		INSERT INTO search_cache (query_hash, query, results, has_content, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		ON CONFLICT (query_hash) DO UPDATE SET
			results = EXCLUDED.results,
			has_content = EXCLUDED.has_content,
			created_at = CURRENT_TIMESTAMP
	`

	if _, err := s.pool.Exec(ctx, stmt, key, query, results, hasContent); err != nil {
		return fmt.Errorf("unable to write search cache: %w", err)
	}
	return nil
}

func (s *Store) GetContent(ctx context.Context, key string, maxAge time.Duration) (string, bool, error) {
	query := `
		SELECT content FROM url_cache
		WHERE url_hash = $1 AND created_at > $2
	`

	var content string
	err := s.pool.QueryRow(ctx, query, key, time.Now().Add(-maxAge)).Scan(&content)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("unable to read url cache: %w", err)
	}
	return content, content != "", nil
}

func (s *Store) PutContent(ctx context.Context, key, url, content string) error {
	stmt := `
		INSERT INTO url_cache (url_hash, url, content, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (url_hash) DO UPDATE SET
			content = EXCLUDED.content,
			created_at = CURRENT_TIMESTAMP
	`

	if _, err := s.pool.Exec(ctx, stmt, key, url, content); err != nil {
		return fmt.Errorf("unable to write url cache: %w", err)
	}
	return nil
}

func (s *Store) Sweep(ctx context.Context, searchRetention, contentRetention time.Duration) error {
	if _, err := s.pool.Exec(ctx,
		"DELETE FROM search_cache WHERE created_at < $1", time.Now().Add(-searchRetention)); err != nil {
		return fmt.Errorf("unable to sweep search cache: %w", err)
	}
	if _, err := s.pool.Exec(ctx,
		"DELETE FROM url_cache WHERE created_at < $1", time.Now().Add(-contentRetention)); err != nil {
		return fmt.Errorf("unable to sweep url cache: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
