package boltstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSearchRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	results := []byte(`[{"title":"A","link":"https://a.example.com"}]`)
	if err := s.PutSearch(ctx, "key1", "rust ownership", results, true); err != nil {
		t.Fatalf("put: %v", err)
	}

	rec, err := s.GetSearch(ctx, "key1", time.Hour)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec == nil {
		t.Fatal("expected record")
	}
	if string(rec.Results) != string(results) || !rec.HasContent {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestSearchMissingKey(t *testing.T) {
	s := newTestStore(t)

	rec, err := s.GetSearch(context.Background(), "absent", time.Hour)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record, got %+v", rec)
	}
}

func TestSearchExpiredReadsAsAbsent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.PutSearch(ctx, "key1", "q", []byte(`[]`), false); err != nil {
		t.Fatalf("put: %v", err)
	}

	rec, err := s.GetSearch(ctx, "key1", 0)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Errorf("expected expired row to read as absent, got %+v", rec)
	}
}

func TestSearchUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.PutSearch(ctx, "key1", "q", []byte(`["old"]`), false)
	s.PutSearch(ctx, "key1", "q", []byte(`["new"]`), true)

	rec, err := s.GetSearch(ctx, "key1", time.Hour)
	if err != nil || rec == nil {
		t.Fatalf("get: rec=%v err=%v", rec, err)
	}
	if string(rec.Results) != `["new"]` || !rec.HasContent {
		t.Errorf("expected upserted row, got %+v", rec)
	}
}

func TestContentRoundtrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.PutContent(ctx, "uk1", "https://a.example.com", "page excerpt"); err != nil {
		t.Fatalf("put: %v", err)
	}

	content, ok, err := s.GetContent(ctx, "uk1", time.Hour)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || content != "page excerpt" {
		t.Errorf("expected stored content, got %q ok=%v", content, ok)
	}

	if _, ok, _ := s.GetContent(ctx, "uk1", 0); ok {
		t.Error("expected expired content to read as absent")
	}
	if _, ok, _ := s.GetContent(ctx, "absent", time.Hour); ok {
		t.Error("expected missing key to read as absent")
	}
}

func TestEmptyContentReadsAsAbsent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.PutContent(ctx, "uk1", "https://a.example.com", "")
	if _, ok, _ := s.GetContent(ctx, "uk1", time.Hour); ok {
		t.Error("expected empty content to read as absent")
	}
}

func TestSweepDeletesOldRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.PutSearch(ctx, "s1", "q1", []byte(`[]`), false)
	s.PutContent(ctx, "u1", "https://a.example.com", "text")

	// Zero retention: every existing row is past the cutoff.
	if err := s.Sweep(ctx, 0, 0); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if rec, _ := s.GetSearch(ctx, "s1", time.Hour); rec != nil {
		t.Error("expected swept search row to be gone")
	}
	if _, ok, _ := s.GetContent(ctx, "u1", time.Hour); ok {
		t.Error("expected swept url row to be gone")
	}
}

func TestSweepKeepsFreshRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.PutSearch(ctx, "s1", "q1", []byte(`[]`), false)
	s.PutContent(ctx, "u1", "https://a.example.com", "text")

	if err := s.Sweep(ctx, time.Hour, time.Hour); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	if rec, _ := s.GetSearch(ctx, "s1", time.Hour); rec == nil {
		t.Error("expected fresh search row to survive sweep")
	}
	if _, ok, _ := s.GetContent(ctx, "u1", time.Hour); !ok {
		t.Error("expected fresh url row to survive sweep")
	}
}
