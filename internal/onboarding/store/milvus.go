package store

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/kart-io/onboarding-assistant/pkg/component/milvus"
)

// Milvus 元数据字段
const (
	fieldDocumentID    = "document_id"
	fieldSequenceIndex = "sequence_index"
	fieldContent       = "content"
)

var outputFields = []string{fieldDocumentID, fieldSequenceIndex, fieldContent}

// MilvusStore 实现基于 Milvus 的向量存储。
type MilvusStore struct {
	client     *milvus.Client
	collection string
}

var _ VectorStore = (*MilvusStore)(nil)

// NewMilvusStore 创建 Milvus 存储实例。
func NewMilvusStore(client *milvus.Client, collection string) *MilvusStore {
	return &MilvusStore{client: client, collection: collection}
}

// EnsureCollection 创建（如不存在）并加载集合。
func (s *MilvusStore) EnsureCollection(ctx context.Context, dimension int) error {
	return s.client.EnsureCollection(ctx, &milvus.CollectionSchema{
		Name:        s.collection,
		Description: "onboarding knowledge base chunks",
		Dimension:   dimension,
		MetaFields: []milvus.MetaField{
			{Name: fieldDocumentID, DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: fieldSequenceIndex, DataType: entity.FieldTypeInt64},
			{Name: fieldContent, DataType: entity.FieldTypeVarChar, MaxLen: 65535},
		},
	})
}

// Upsert 批量写入文档块，主键为 chunk ID。
func (s *MilvusStore) Upsert(ctx context.Context, chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	data := &milvus.UpsertData{
		IDs:        make([]string, len(chunks)),
		Embeddings: make([][]float32, len(chunks)),
		Metadata: map[string][]any{
			fieldDocumentID:    make([]any, len(chunks)),
			fieldSequenceIndex: make([]any, len(chunks)),
			fieldContent:       make([]any, len(chunks)),
		},
	}
	for i, c := range chunks {
		data.IDs[i] = c.ID
		data.Embeddings[i] = c.Embedding
		data.Metadata[fieldDocumentID][i] = c.DocumentID
		data.Metadata[fieldSequenceIndex][i] = int64(c.SequenceIndex)
		data.Metadata[fieldContent][i] = c.Content
	}

	if err := s.client.Upsert(ctx, s.collection, data); err != nil {
		return fmt.Errorf("failed to upsert into milvus: %w", err)
	}
	return nil
}

// Search 执行向量相似度搜索。
func (s *MilvusStore) Search(ctx context.Context, embedding []float32, topK int, filter SearchFilter) ([]*SearchResult, error) {
	results, err := s.client.Search(ctx, s.collection, embedding, topK, filterExpr(filter), outputFields)
	if err != nil {
		return nil, fmt.Errorf("failed to search milvus: %w", err)
	}

	out := make([]*SearchResult, 0, len(results))
	for _, r := range results {
		sr := &SearchResult{ID: r.ID, Score: r.Score}
		sr.DocumentID, _ = r.Metadata[fieldDocumentID].(string)
		sr.Content, _ = r.Metadata[fieldContent].(string)
		if seq, ok := r.Metadata[fieldSequenceIndex].(int64); ok {
			sr.SequenceIndex = int(seq)
		}
		out = append(out, sr)
	}
	return out, nil
}

// DeleteByDocument 删除文档的全部块。
func (s *MilvusStore) DeleteByDocument(ctx context.Context, documentID string) (int64, error) {
	return s.client.DeleteByExpr(ctx, s.collection, fieldDocumentID+" == "+milvus.QuoteString(documentID))
}

// Count 返回集合行数。
func (s *MilvusStore) Count(ctx context.Context) (int64, error) {
	return s.client.GetCollectionStats(ctx, s.collection)
}

// Close 关闭 Milvus 连接。
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

func filterExpr(f SearchFilter) string {
	if f.DocumentID == "" {
		return ""
	}
	return fieldDocumentID + " == " + milvus.QuoteString(f.DocumentID)
}
