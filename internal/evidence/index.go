package evidence

import (
	"context"
	"fmt"
	"log/slog"
)

// Embedder generates embedding vectors for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Index is the evidence store facade consumed by the retriever and the
// ingestion pipeline: it owns embedding computation on both the write and
// the query path, the store beneath it only ever sees vectors.
type Index struct {
	store    VectorStore
	embedder Embedder
}

// NewIndex creates an Index over the given store and embedder.
func NewIndex(store VectorStore, embedder Embedder) *Index {
	return &Index{store: store, embedder: embedder}
}

// Upsert embeds and stores the given records. The batch is all-or-nothing:
// if embedding or insertion fails for any record, no record from the batch
// becomes visible and a *WriteError is returned.
func (ix *Index) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.Content
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return &WriteError{Err: fmt.Errorf("embedding batch: %w", err)}
	}
	for i := range records {
		records[i].Embedding = vectors[i]
	}

	if err := ix.store.Insert(ctx, records); err != nil {
		return &WriteError{Err: err}
	}

	slog.Debug("evidence upserted", "count", len(records))
	return nil
}

// Query embeds the text and returns at most k hits of the given class,
// ordered by increasing distance (closer = more relevant). No results is not
// an error: an empty slice is returned. Hits are not threshold-filtered;
// the retriever applies the similarity cutoff.
func (ix *Index) Query(ctx context.Context, text string, k int, class Class) ([]Hit, error) {
	vec, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	scored, err := ix.store.Search(ctx, vec, k, class)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	hits := make([]Hit, len(scored))
	for i, s := range scored {
		hits[i] = Hit{Record: s.Record, Distance: 1 - float64(s.Similarity)}
	}
	return hits, nil
}

// Count reports how many records of the given class are indexed.
func (ix *Index) Count(ctx context.Context, class Class) (int, error) {
	return ix.store.Count(ctx, class)
}
