package boltstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"websearch/cache"
)

var (
	searchBucket = []byte("search_cache")
	urlBucket    = []byte("url_cache")
)

// Store is a bbolt-backed persistent cache tier for single-node
// deployments that have no Postgres. Same contract as the Postgres
// store: rows older than maxAge read as absent, writes are upserts.
type Store struct {
	db *bolt.DB
}

var _ cache.Store = (*Store)(nil)

type searchRow struct {
	Query      string          `json:"query"`
	Results    json.RawMessage `json:"results"`
	HasContent bool            `json:"has_content"`
	CreatedAt  time.Time       `json:"created_at"`
}

type urlRow struct {
	URL       string    `json:"url"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("unable to open bolt store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(searchBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(urlBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to create buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) GetSearch(_ context.Context, key string, maxAge time.Duration) (*cache.SearchRecord, error) {
	var rec *cache.SearchRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(searchBucket).Get([]byte(key))
		if data == nil {
			return nil
		}
		var row searchRow
		if err := json.Unmarshal(data, &row); err != nil {
			return err
		}
		if time.Since(row.CreatedAt) > maxAge {
			return nil
		}
		rec = &cache.SearchRecord{Results: row.Results, HasContent: row.HasContent}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to read search cache: %w", err)
	}
	return rec, nil
}

func (s *Store) PutSearch(_ context.Context, key, query string, results []byte, hasContent bool) error {
	row := searchRow{
		Query:      query,
		Results:    results,
		HasContent: hasContent,
		CreatedAt:  time.Now(),
	}
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(searchBucket).Put([]byte(key), data)
	})
}

func (s *Store) GetContent(_ context.Context, key string, maxAge time.Duration) (string, bool, error) {
	var content string
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(urlBucket).Get([]byte(key))
		if data == nil {
			return nil
		}
		var row urlRow
		if err := json.Unmarshal(data, &row); err != nil {
			return err
		}
		if time.Since(row.CreatedAt) > maxAge || row.Content == "" {
			return nil
		}
		content = row.Content
		found = true
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("unable to read url cache: %w", err)
	}
	return content, found, nil
}

func (s *Store) PutContent(_ context.Context, key, url, content string) error {
	row := urlRow{URL: url, Content: content, CreatedAt: time.Now()}
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(urlBucket).Put([]byte(key), data)
	})
}

func (s *Store) Sweep(_ context.Context, searchRetention, contentRetention time.Duration) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := sweepBucket(tx.Bucket(searchBucket), searchRetention, func(data []byte) (time.Time, error) {
			var row searchRow
			err := json.Unmarshal(data, &row)
			return row.CreatedAt, err
		}); err != nil {
			return err
		}
		return sweepBucket(tx.Bucket(urlBucket), contentRetention, func(data []byte) (time.Time, error) {
			var row urlRow
			err := json.Unmarshal(data, &row)
			return row.CreatedAt, err
		})
	})
}

func sweepBucket(b *bolt.Bucket, retention time.Duration, createdAt func([]byte) (time.Time, error)) error {
	cutoff := time.Now().Add(-retention)
	c := b.Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		created, err := createdAt(v)
		if err != nil || created.Before(cutoff) {
			if err := c.Delete(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
