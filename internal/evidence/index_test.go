package evidence

import (
	"context"
	"errors"
	"math"
	"testing"
)

type stubStore struct {
	inserted []Record
	insertFn func(ctx context.Context, records []Record) error
	searchFn func(ctx context.Context, vector []float32, topK int, class Class) ([]ScoredRecord, error)
}

func (s *stubStore) Insert(ctx context.Context, records []Record) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, records)
	}
	s.inserted = append(s.inserted, records...)
	return nil
}
func (s *stubStore) Search(ctx context.Context, vector []float32, topK int, class Class) ([]ScoredRecord, error) {
	return s.searchFn(ctx, vector, topK, class)
}
func (s *stubStore) Count(ctx context.Context, class Class) (int, error) { return len(s.inserted), nil }
func (s *stubStore) Reset(ctx context.Context) error                     { return nil }

type stubEmbedder struct {
	embedFn func(ctx context.Context, text string) ([]float32, error)
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.embedFn != nil {
		return s.embedFn(ctx, text)
	}
	return []float32{1, 0}, nil
}
func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func TestUpsert_EmbedsAndStores(t *testing.T) {
	store := &stubStore{}
	ix := NewIndex(store, &stubEmbedder{})

	err := ix.Upsert(context.Background(), []Record{
		{ID: "a", Content: "first"},
		{ID: "b", Content: "second"},
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if len(store.inserted) != 2 {
		t.Fatalf("inserted = %d records, want 2", len(store.inserted))
	}
	for _, r := range store.inserted {
		if len(r.Embedding) == 0 {
			t.Errorf("record %s stored without embedding", r.ID)
		}
	}
}

func TestUpsert_EmbeddingFailureRejectsBatch(t *testing.T) {
	store := &stubStore{}
	ix := NewIndex(store, &stubEmbedder{
		embedFn: func(_ context.Context, _ string) ([]float32, error) {
			return nil, errors.New("provider down")
		},
	})

	err := ix.Upsert(context.Background(), []Record{{ID: "a", Content: "x"}})

	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("err = %v, want *WriteError", err)
	}
	if len(store.inserted) != 0 {
		t.Errorf("failed batch must not be stored, got %d records", len(store.inserted))
	}
}

func TestUpsert_InsertFailureIsWriteError(t *testing.T) {
	store := &stubStore{
		insertFn: func(_ context.Context, _ []Record) error {
			return errors.New("disk full")
		},
	}
	ix := NewIndex(store, &stubEmbedder{})

	err := ix.Upsert(context.Background(), []Record{{ID: "a", Content: "x"}})
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("err = %v, want *WriteError", err)
	}
}

func TestQuery_ConvertsSimilarityToDistance(t *testing.T) {
	store := &stubStore{
		searchFn: func(_ context.Context, _ []float32, _ int, _ Class) ([]ScoredRecord, error) {
			return []ScoredRecord{{Record: Record{ID: "a"}, Similarity: 0.8}}, nil
		},
	}
	ix := NewIndex(store, &stubEmbedder{})

	hits, err := ix.Query(context.Background(), "q", 5, ClassText)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want 1", len(hits))
	}
	if math.Abs(hits[0].Distance-0.2) > 1e-6 {
		t.Errorf("distance = %v, want 0.2", hits[0].Distance)
	}
}

func TestQuery_StoreFailureIsUnavailable(t *testing.T) {
	store := &stubStore{
		searchFn: func(_ context.Context, _ []float32, _ int, _ Class) ([]ScoredRecord, error) {
			return nil, errors.New("database locked")
		},
	}
	ix := NewIndex(store, &stubEmbedder{})

	_, err := ix.Query(context.Background(), "q", 5, ClassText)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestChunkID(t *testing.T) {
	if got := ChunkID(4, 1); got != "page_4_chunk_1" {
		t.Errorf("ChunkID = %q, want page_4_chunk_1", got)
	}
}
