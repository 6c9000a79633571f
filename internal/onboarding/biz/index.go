package biz

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/onboarding-assistant/internal/onboarding/metrics"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/store"
	"github.com/kart-io/onboarding-assistant/pkg/llm"
	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
)

// ChunkMetadata is stored with every chunk.
type ChunkMetadata struct {
	SourceDocumentID string `json:"source_document_id"`
	SequenceIndex    int    `json:"sequence_index"`
}

// ChunkRecord is one chunk to write.
type ChunkRecord struct {
	ChunkID  string
	Text     string
	Metadata ChunkMetadata
}

// ScoredChunk is a query hit.
type ScoredChunk struct {
	ChunkID  string        `json:"chunk_id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
	// Score 余弦相似度，越大越相近。
	Score float32 `json:"score"`
}

// Filter restricts a query by metadata equality. Zero fields match all chunks.
type Filter struct {
	SourceDocumentID string `json:"source_document_id,omitempty"`
}

// ChunkID returns the deterministic id of a document chunk.
func ChunkID(documentID string, seq int) string {
	return documentID + "#" + strconv.Itoa(seq)
}

// ParseChunkID splits a chunk id into document id and sequence index.
func ParseChunkID(chunkID string) (string, int, error) {
	i := strings.LastIndexByte(chunkID, '#')
	if i <= 0 {
		return "", 0, fmt.Errorf("malformed chunk id %q", chunkID)
	}
	seq, err := strconv.Atoi(chunkID[i+1:])
	if err != nil || seq < 0 {
		return "", 0, fmt.Errorf("malformed chunk id %q", chunkID)
	}
	return chunkID[:i], seq, nil
}

// Index embeds chunks and stores them in a vector store. Every failure of
// the store or the embedding provider is reported as ErrIndexUnavailable;
// a query never returns an empty result in place of an error.
type Index struct {
	store    store.VectorStore
	embedder llm.EmbeddingProvider
	metrics  *metrics.Metrics
}

// NewIndex 创建索引客户端。m 可为 nil。
func NewIndex(vs store.VectorStore, embedder llm.EmbeddingProvider, m *metrics.Metrics) *Index {
	return &Index{store: vs, embedder: embedder, metrics: m}
}

// Init 确保集合存在。dimension <= 0 时通过嵌入一段探测文本获得维度。
func (ix *Index) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		vec, err := ix.embedder.EmbedSingle(ctx, "dimension probe")
		if err != nil {
			return unavailable("probe embedding dimension", err)
		}
		dimension = len(vec)
	}
	if err := ix.store.EnsureCollection(ctx, dimension); err != nil {
		return unavailable("ensure collection", err)
	}
	logger.Infow("vector index ready", "embedder", ix.embedder.Name(), "dimension", dimension)
	return nil
}

// Upsert writes one chunk. Writing the same chunk id again replaces it.
func (ix *Index) Upsert(ctx context.Context, chunkID, text string, meta ChunkMetadata) error {
	return ix.UpsertBatch(ctx, []ChunkRecord{{ChunkID: chunkID, Text: text, Metadata: meta}})
}

// UpsertBatch writes chunks with a single embedding call. The batch is
// stored as a whole or reported as failed.
func (ix *Index) UpsertBatch(ctx context.Context, records []ChunkRecord) (err error) {
	if len(records) == 0 {
		return nil
	}
	defer func() { ix.metrics.RecordIndexOp("upsert", err) }()

	texts := make([]string, len(records))
	for i, r := range records {
		if r.ChunkID == "" {
			return errors.ErrInvalidParam.WithMessagef("chunk %d has no id", i)
		}
		texts[i] = r.Text
	}

	vecs, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return unavailable("embed chunks", err)
	}
	if len(vecs) != len(records) {
		return unavailable("embed chunks", fmt.Errorf("expected %d embeddings, got %d", len(records), len(vecs)))
	}

	chunks := make([]*store.Chunk, len(records))
	for i, r := range records {
		chunks[i] = &store.Chunk{
			ID:            r.ChunkID,
			DocumentID:    r.Metadata.SourceDocumentID,
			SequenceIndex: r.Metadata.SequenceIndex,
			Content:       r.Text,
			Embedding:     vecs[i],
		}
	}
	if err := ix.store.Upsert(ctx, chunks); err != nil {
		return unavailable("upsert chunks", err)
	}
	return nil
}

// Query returns at most k chunks ordered by descending similarity to text.
func (ix *Index) Query(ctx context.Context, text string, k int, filter Filter) (_ []ScoredChunk, err error) {
	if k <= 0 {
		return nil, errors.ErrInvalidParam.WithMessagef("k must be positive, got %d", k)
	}
	defer func() { ix.metrics.RecordIndexOp("query", err) }()

	vec, err := ix.embedder.EmbedSingle(ctx, text)
	if err != nil {
		return nil, unavailable("embed query", err)
	}

	results, err := ix.store.Search(ctx, vec, k, store.SearchFilter{DocumentID: filter.SourceDocumentID})
	if err != nil {
		return nil, unavailable("search", err)
	}

	out := make([]ScoredChunk, 0, len(results))
	for _, r := range results {
		out = append(out, ScoredChunk{
			ChunkID: r.ID,
			Text:    r.Content,
			Metadata: ChunkMetadata{
				SourceDocumentID: r.DocumentID,
				SequenceIndex:    r.SequenceIndex,
			},
			Score: r.Score,
		})
	}
	// 后端排序不作保证，这里统一按相似度降序
	slices.SortStableFunc(out, func(a, b ScoredChunk) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// DeleteDocument drops every chunk of a document.
func (ix *Index) DeleteDocument(ctx context.Context, documentID string) (n int64, err error) {
	defer func() { ix.metrics.RecordIndexOp("delete", err) }()

	n, err = ix.store.DeleteByDocument(ctx, documentID)
	if err != nil {
		return 0, unavailable("delete document chunks", err)
	}
	return n, nil
}

// Stats returns the number of stored chunks.
func (ix *Index) Stats(ctx context.Context) (int64, error) {
	n, err := ix.store.Count(ctx)
	if err != nil {
		return 0, unavailable("count chunks", err)
	}
	return n, nil
}

func unavailable(op string, err error) error {
	logger.Warnw("vector index operation failed", "operation", op, "error", err.Error())
	return errors.ErrIndexUnavailable.WithCause(fmt.Errorf("%s: %w", op, err))
}
