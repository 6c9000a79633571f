package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/kart-io/onboarding-assistant/internal/pkg/textutil"
)

// MemoryStore is a brute-force cosine VectorStore kept in process memory.
type MemoryStore struct {
	mu        sync.RWMutex
	dimension int
	chunks    map[string]*Chunk
}

var _ VectorStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory vector store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chunks: make(map[string]*Chunk)}
}

// EnsureCollection fixes the vector dimension.
func (s *MemoryStore) EnsureCollection(_ context.Context, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension {
		return fmt.Errorf("memory store dimension is %d, requested %d", s.dimension, dimension)
	}
	s.dimension = dimension
	return nil
}

// Upsert stores copies of chunks keyed by ID.
func (s *MemoryStore) Upsert(ctx context.Context, chunks []*Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		if s.dimension != 0 && len(c.Embedding) != s.dimension {
			return fmt.Errorf("chunk %s has dimension %d, want %d", c.ID, len(c.Embedding), s.dimension)
		}
	}
	for _, c := range chunks {
		cp := *c
		cp.Embedding = slices.Clone(c.Embedding)
		s.chunks[c.ID] = &cp
	}
	return nil
}

// Search scores every chunk and returns the topK by descending similarity.
func (s *MemoryStore) Search(ctx context.Context, embedding []float32, topK int, filter SearchFilter) ([]*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []*SearchResult{}, nil
	}

	s.mu.RLock()
	results := make([]*SearchResult, 0, len(s.chunks))
	for _, c := range s.chunks {
		if filter.DocumentID != "" && c.DocumentID != filter.DocumentID {
			continue
		}
		results = append(results, &SearchResult{
			ID:            c.ID,
			DocumentID:    c.DocumentID,
			SequenceIndex: c.SequenceIndex,
			Content:       c.Content,
			Score:         float32(textutil.CosineSimilarity(embedding, c.Embedding)),
		})
	}
	s.mu.RUnlock()

	slices.SortFunc(results, func(a, b *SearchResult) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteByDocument removes every chunk of documentID.
func (s *MemoryStore) DeleteByDocument(_ context.Context, documentID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, c := range s.chunks {
		if c.DocumentID == documentID {
			delete(s.chunks, id)
			n++
		}
	}
	return n, nil
}

// Count returns the number of stored chunks.
func (s *MemoryStore) Count(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.chunks)), nil
}

// Close is a no-op.
func (s *MemoryStore) Close(context.Context) error {
	return nil
}
