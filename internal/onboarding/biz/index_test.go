package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/onboarding-assistant/internal/onboarding/store"
	"github.com/kart-io/onboarding-assistant/pkg/llm/local"
	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
)

func newTestIndex(t *testing.T) (*Index, *flakyStore) {
	t.Helper()
	vs := newFlakyStore()
	ix := NewIndex(vs, local.New(testDimension), nil)
	require.NoError(t, ix.Init(context.Background(), 0))
	return ix, vs
}

func TestChunkIDRoundTrip(t *testing.T) {
	id := ChunkID("doc#with#hashes", 12)
	assert.Equal(t, "doc#with#hashes#12", id)

	doc, seq, err := ParseChunkID(id)
	require.NoError(t, err)
	assert.Equal(t, "doc#with#hashes", doc)
	assert.Equal(t, 12, seq)

	for _, bad := range []string{"", "#1", "doc", "doc#x", "doc#-1"} {
		_, _, err := ParseChunkID(bad)
		assert.Error(t, err, bad)
	}
}

func TestIndexUpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ix, _ := newTestIndex(t)

	meta := ChunkMetadata{SourceDocumentID: "D1", SequenceIndex: 0}
	require.NoError(t, ix.Upsert(ctx, "D1#0", "vacation policy draft", meta))
	require.NoError(t, ix.Upsert(ctx, "D1#0", "vacation policy final", meta))

	n, err := ix.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	hits, err := ix.Query(ctx, "vacation policy", 5, Filter{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "vacation policy final", hits[0].Text)
	assert.Equal(t, meta, hits[0].Metadata)
}

func TestIndexQueryOrderingAndLimit(t *testing.T) {
	ctx := context.Background()
	ix, _ := newTestIndex(t)

	require.NoError(t, ix.UpsertBatch(ctx, []ChunkRecord{
		{ChunkID: "D#0", Text: "parking garage access", Metadata: ChunkMetadata{"D", 0}},
		{ChunkID: "D#1", Text: "laptop setup and laptop security", Metadata: ChunkMetadata{"D", 1}},
		{ChunkID: "D#2", Text: "laptop return", Metadata: ChunkMetadata{"D", 2}},
		{ChunkID: "E#0", Text: "laptop setup guide", Metadata: ChunkMetadata{"E", 0}},
	}))

	hits, err := ix.Query(ctx, "laptop setup", 3, Filter{})
	require.NoError(t, err)
	require.Len(t, hits, 3)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
	assert.Equal(t, "E#0", hits[0].ChunkID)

	hits, err = ix.Query(ctx, "laptop setup", 10, Filter{SourceDocumentID: "D"})
	require.NoError(t, err)
	require.Len(t, hits, 3)
	for _, h := range hits {
		assert.Equal(t, "D", h.Metadata.SourceDocumentID)
	}
}

func TestIndexQueryInvalidK(t *testing.T) {
	ix, _ := newTestIndex(t)
	_, err := ix.Query(context.Background(), "anything", 0, Filter{})
	assert.True(t, errors.Is(err, errors.ErrInvalidParam))
}

func TestIndexUnavailable(t *testing.T) {
	ctx := context.Background()

	t.Run("store search fails", func(t *testing.T) {
		ix, vs := newTestIndex(t)
		vs.searchErr = errStoreDown

		hits, err := ix.Query(ctx, "anything", 5, Filter{})
		require.Error(t, err)
		assert.Nil(t, hits, "a failed query must not look like an empty result")
		assert.True(t, errors.Is(err, errors.ErrIndexUnavailable))
		assert.True(t, errors.IsRetryable(err))
		assert.ErrorIs(t, err, errStoreDown)
	})

	t.Run("store upsert fails", func(t *testing.T) {
		ix, vs := newTestIndex(t)
		vs.failUpsertOn = 1

		err := ix.Upsert(ctx, "D#0", "text", ChunkMetadata{"D", 0})
		assert.True(t, errors.Is(err, errors.ErrIndexUnavailable))
	})

	t.Run("embedder fails", func(t *testing.T) {
		ix := NewIndex(store.NewMemoryStore(), failingEmbedder{}, nil)

		_, err := ix.Query(ctx, "anything", 5, Filter{})
		assert.True(t, errors.Is(err, errors.ErrIndexUnavailable))

		err = ix.Upsert(ctx, "D#0", "text", ChunkMetadata{"D", 0})
		assert.True(t, errors.Is(err, errors.ErrIndexUnavailable))

		assert.True(t, errors.Is(ix.Init(ctx, 0), errors.ErrIndexUnavailable))
	})
}

func TestIndexDeleteDocument(t *testing.T) {
	ctx := context.Background()
	ix, _ := newTestIndex(t)

	require.NoError(t, ix.UpsertBatch(ctx, []ChunkRecord{
		{ChunkID: "A#0", Text: "one", Metadata: ChunkMetadata{"A", 0}},
		{ChunkID: "A#1", Text: "two", Metadata: ChunkMetadata{"A", 1}},
		{ChunkID: "B#0", Text: "three", Metadata: ChunkMetadata{"B", 0}},
	}))

	n, err := ix.DeleteDocument(ctx, "A")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	total, err := ix.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}
