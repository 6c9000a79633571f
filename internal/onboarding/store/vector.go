package store

import (
	"context"
)

// Chunk 表示写入向量索引的文档块。
type Chunk struct {
	// ID 文档块 ID，格式为 "<document_id>#<sequence_index>"。
	ID string
	// DocumentID 所属文档 ID。
	DocumentID string
	// SequenceIndex 块在文档中的序号。
	SequenceIndex int
	// Content 文档块文本。
	Content string
	// Embedding 嵌入向量。
	Embedding []float32
}

// SearchResult 表示检索结果。
type SearchResult struct {
	ID            string
	DocumentID    string
	SequenceIndex int
	Content       string
	// Score 余弦相似度，越大越相近。
	Score float32
}

// SearchFilter restricts a search by metadata equality. Empty fields match
// everything.
type SearchFilter struct {
	DocumentID string
}

// VectorStore 定义向量存储接口。
type VectorStore interface {
	// EnsureCollection 创建（如不存在）并加载集合。
	EnsureCollection(ctx context.Context, dimension int) error

	// Upsert 按 chunk ID 写入文档块，已存在的同 ID 块被替换。
	Upsert(ctx context.Context, chunks []*Chunk) error

	// Search 向量相似度搜索。
	Search(ctx context.Context, embedding []float32, topK int, filter SearchFilter) ([]*SearchResult, error)

	// DeleteByDocument 删除文档的全部块。
	DeleteByDocument(ctx context.Context, documentID string) (int64, error)

	// Count 返回块总数。
	Count(ctx context.Context) (int64, error)

	// Close 关闭连接。
	Close(ctx context.Context) error
}
