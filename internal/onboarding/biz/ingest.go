package biz

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kart-io/logger"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/event"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/metrics"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/store"
	"github.com/kart-io/onboarding-assistant/internal/pkg/docutil"
	"github.com/kart-io/onboarding-assistant/pkg/infra/pool"
	"github.com/kart-io/onboarding-assistant/pkg/infra/tracing"
	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
	"github.com/kart-io/onboarding-assistant/pkg/utils/id"
)

// IngestOptions 文档导入配置。
type IngestOptions struct {
	Chunk ChunkOptions
	// BatchSize 每次嵌入与写入的块数。
	BatchSize int
	// Timeout 单个异步导入任务的超时时间。
	Timeout time.Duration
}

// DefaultIngestOptions 返回默认导入配置。
func DefaultIngestOptions() *IngestOptions {
	return &IngestOptions{
		Chunk:     DefaultChunkOptions(),
		BatchSize: 16,
		Timeout:   10 * time.Minute,
	}
}

// IngestResult 导入结果。
type IngestResult struct {
	DocumentID string `json:"document_id"`
	ChunkCount int    `json:"chunk_count"`
}

// PartialIngestError reports chunks that were stored before an upsert failed.
// The stored chunks are not rolled back.
type PartialIngestError struct {
	DocumentID string
	Upserted   int
	Total      int
	Cause      error
}

func (e *PartialIngestError) Error() string {
	return fmt.Sprintf("document %s: %d of %d chunks upserted: %v", e.DocumentID, e.Upserted, e.Total, e.Cause)
}

func (e *PartialIngestError) Unwrap() error {
	return e.Cause
}

// Ingester 负责文档导入。
type Ingester struct {
	docs      store.DocumentStore
	index     *Index
	pool      *pool.Pool
	publisher event.Publisher
	cache     AnswerCache
	metrics   *metrics.Metrics
	opts      *IngestOptions

	// extract 从 PDF 字节中提取文本
	extract func(data []byte) (string, error)
}

// NewIngester 创建导入器。workers 为 nil 时不支持异步导入。
func NewIngester(
	docs store.DocumentStore,
	index *Index,
	workers *pool.Pool,
	publisher event.Publisher,
	cache AnswerCache,
	m *metrics.Metrics,
	opts *IngestOptions,
) *Ingester {
	if opts == nil {
		opts = DefaultIngestOptions()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	if cache == nil {
		cache = NoopCache{}
	}
	return &Ingester{
		docs:      docs,
		index:     index,
		pool:      workers,
		publisher: publisher,
		cache:     cache,
		metrics:   m,
		opts:      opts,
		extract:   extractPDFText,
	}
}

// Ingest chunks text and upserts every chunk as "<documentID>#<seq>" with
// metadata {source_document_id, sequence_index}. The document ends in status
// complete, or failed when any upsert fails. Chunks stored before a failure
// stay in the index; that case returns ErrIngestionPartialFailure carrying a
// *PartialIngestError. A document row is created when none exists; a row
// that has left pending returns ErrDocumentExists and the index is untouched.
func (ing *Ingester) Ingest(ctx context.Context, documentID, text string) (*IngestResult, error) {
	if strings.TrimSpace(documentID) == "" {
		return nil, errors.ErrInvalidParam.WithMessage("document id is required")
	}
	if _, err := ing.ensureDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return ing.ingest(ctx, documentID, text)
}

// IngestText registers a text document and ingests it synchronously. An
// empty documentID gets a generated one.
func (ing *Ingester) IngestText(ctx context.Context, req *model.IngestTextRequest) (*IngestResult, error) {
	documentID := strings.TrimSpace(req.DocumentID)
	if documentID == "" {
		documentID = id.NewULID()
	}
	doc := &model.Document{
		ID:       documentID,
		Filename: req.Filename,
		FileType: fileType(req.Filename, "text"),
		Status:   model.DocumentStatusPending,
	}
	if err := ing.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	return ing.ingest(ctx, documentID, req.Text)
}

// IngestPDF registers a PDF document, extracts its text and ingests it
// synchronously. The returned document reflects the final status.
func (ing *Ingester) IngestPDF(ctx context.Context, filename string, data []byte) (*model.Document, error) {
	doc, err := ing.register(ctx, filename)
	if err != nil {
		return nil, err
	}
	if err := ing.processPDF(ctx, doc.ID, data); err != nil {
		return nil, err
	}
	return ing.docs.Get(ctx, doc.ID)
}

// SubmitPDF registers a PDF document and ingests it on the worker pool.
// It returns the pending document immediately; callers poll its status.
func (ing *Ingester) SubmitPDF(ctx context.Context, filename string, data []byte) (*model.Document, error) {
	if ing.pool == nil {
		return nil, errors.ErrInternal.WithMessage("async ingestion is not configured")
	}

	doc, err := ing.register(ctx, filename)
	if err != nil {
		return nil, err
	}

	documentID := doc.ID
	err = ing.pool.Submit(func() {
		taskCtx, cancel := context.WithTimeout(context.Background(), ing.opts.Timeout)
		defer cancel()
		if err := ing.processPDF(taskCtx, documentID, data); err != nil {
			logger.Warnw("async document ingestion failed", "document_id", documentID, "error", err.Error())
		}
	})
	if err != nil {
		e := errors.ErrIngestionBusy.WithCause(err)
		ing.markFailed(ctx, documentID, 0, 0, e)
		return nil, e
	}

	logger.Infow("document queued for ingestion", "document_id", documentID, "filename", filename, "bytes", len(data))
	return doc, nil
}

// Async reports whether SubmitPDF can queue work on a worker pool.
func (ing *Ingester) Async() bool {
	return ing.pool != nil
}

// GetDocument returns a document with its processing status.
func (ing *Ingester) GetDocument(ctx context.Context, documentID string) (*model.Document, error) {
	return ing.docs.Get(ctx, documentID)
}

// ListDocuments returns documents newest first.
func (ing *Ingester) ListDocuments(ctx context.Context, offset, limit int) (int64, []*model.Document, error) {
	return ing.docs.List(ctx, offset, limit)
}

// DeleteDocument removes the document's chunks from the index, then the
// document row.
func (ing *Ingester) DeleteDocument(ctx context.Context, documentID string) error {
	if _, err := ing.docs.Get(ctx, documentID); err != nil {
		return err
	}

	n, err := ing.index.DeleteDocument(ctx, documentID)
	if err != nil {
		return err
	}
	if err := ing.docs.Delete(ctx, documentID); err != nil {
		return err
	}

	ing.invalidateAnswers(ctx)
	ing.publish(ctx, event.New(event.TypeDocumentDeleted, documentID, map[string]any{
		"document_id":    documentID,
		"chunks_deleted": n,
	}))
	logger.Infow("document deleted", "document_id", documentID, "chunks_deleted", n)
	return nil
}

func (ing *Ingester) register(ctx context.Context, filename string) (*model.Document, error) {
	doc := &model.Document{
		ID:       id.NewULID(),
		Filename: filepath.Base(filename),
		FileType: fileType(filename, "pdf"),
		Status:   model.DocumentStatusPending,
	}
	if err := ing.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (ing *Ingester) ensureDocument(ctx context.Context, documentID string) (*model.Document, error) {
	doc, err := ing.docs.Get(ctx, documentID)
	if err == nil {
		// chunk id 由文档 id 和序号决定，已导入过的文档不能原地覆盖。
		if doc.Status != model.DocumentStatusPending {
			return nil, errors.ErrDocumentExists.WithMessagef("document %s is already %s", documentID, doc.Status)
		}
		return doc, nil
	}
	if !errors.Is(err, errors.ErrDocumentNotFound) {
		return nil, err
	}

	doc = &model.Document{
		ID:       documentID,
		Filename: documentID,
		FileType: "text",
		Status:   model.DocumentStatusPending,
	}
	if err := ing.docs.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (ing *Ingester) processPDF(ctx context.Context, documentID string, data []byte) error {
	if err := ing.docs.UpdateStatus(ctx, documentID, store.DocumentUpdate{Status: model.DocumentStatusProcessing}); err != nil {
		return err
	}

	text, err := ing.extract(data)
	if err != nil {
		e := errors.ErrDocumentExtract.WithCause(err)
		ing.markFailed(ctx, documentID, 0, 0, e)
		ing.metrics.RecordIngest(metrics.ResultError, 0)
		return e
	}

	_, err = ing.ingest(ctx, documentID, text)
	return err
}

func (ing *Ingester) ingest(ctx context.Context, documentID, text string) (_ *IngestResult, err error) {
	ctx, span := tracing.Start(ctx, tracerName, "onboarding.ingest", attribute.String("document.id", documentID))
	defer func() { tracing.End(span, err) }()

	chunks, err := Chunk(text, ing.opts.Chunk.Window, ing.opts.Chunk.Overlap)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("ingest.chunks", len(chunks)))

	if err := ing.docs.UpdateStatus(ctx, documentID, store.DocumentUpdate{
		Status:     model.DocumentStatusProcessing,
		ChunkCount: len(chunks),
	}); err != nil {
		return nil, err
	}

	start := time.Now()
	upserted := 0
	for upserted < len(chunks) {
		end := min(upserted+ing.opts.BatchSize, len(chunks))
		records := make([]ChunkRecord, 0, end-upserted)
		for seq := upserted; seq < end; seq++ {
			records = append(records, ChunkRecord{
				ChunkID:  ChunkID(documentID, seq),
				Text:     chunks[seq],
				Metadata: ChunkMetadata{SourceDocumentID: documentID, SequenceIndex: seq},
			})
		}

		if err := ing.index.UpsertBatch(ctx, records); err != nil {
			return nil, ing.fail(ctx, documentID, upserted, len(chunks), err)
		}
		upserted = end
	}

	now := time.Now().UTC()
	if err := ing.docs.UpdateStatus(ctx, documentID, store.DocumentUpdate{
		Status:         model.DocumentStatusComplete,
		ChunkCount:     len(chunks),
		ChunksUpserted: upserted,
		ProcessedAt:    &now,
	}); err != nil {
		return nil, err
	}

	ing.metrics.RecordIngest(metrics.ResultOK, upserted)
	ing.invalidateAnswers(ctx)
	ing.publish(ctx, event.New(event.TypeDocumentIngested, documentID, map[string]any{
		"document_id": documentID,
		"chunk_count": len(chunks),
	}))
	logger.Infow("document ingested",
		"document_id", documentID,
		"chunks", len(chunks),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &IngestResult{DocumentID: documentID, ChunkCount: len(chunks)}, nil
}

// fail 记录失败状态并构造返回错误。已写入的块不回滚。
func (ing *Ingester) fail(ctx context.Context, documentID string, upserted, total int, cause error) error {
	ing.markFailed(ctx, documentID, upserted, total, cause)

	if upserted == 0 {
		ing.metrics.RecordIngest(metrics.ResultError, 0)
		return cause
	}
	ing.metrics.RecordIngest(metrics.ResultPartial, upserted)
	return errors.ErrIngestionPartialFailure.WithCause(&PartialIngestError{
		DocumentID: documentID,
		Upserted:   upserted,
		Total:      total,
		Cause:      cause,
	})
}

func (ing *Ingester) markFailed(ctx context.Context, documentID string, upserted, total int, cause error) {
	now := time.Now().UTC()
	// 原请求可能已超时，状态写入使用独立的 context
	updCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := ing.docs.UpdateStatus(updCtx, documentID, store.DocumentUpdate{
		Status:         model.DocumentStatusFailed,
		ChunkCount:     total,
		ChunksUpserted: upserted,
		Error:          cause.Error(),
		ProcessedAt:    &now,
	}); err != nil {
		logger.Errorw("failed to record document failure", "document_id", documentID, "error", err.Error())
	}

	ing.publish(updCtx, event.New(event.TypeDocumentFailed, documentID, map[string]any{
		"document_id":     documentID,
		"chunks_upserted": upserted,
		"chunk_count":     total,
		"error":           cause.Error(),
	}))
	logger.Warnw("document ingestion failed",
		"document_id", documentID,
		"chunks_upserted", upserted,
		"chunk_count", total,
		"error", cause.Error(),
	)
}

func (ing *Ingester) invalidateAnswers(ctx context.Context) {
	if err := ing.cache.Clear(ctx); err != nil {
		logger.Warnw("failed to clear answer cache", "error", err.Error())
	}
}

func (ing *Ingester) publish(ctx context.Context, e event.Event) {
	if err := ing.publisher.Publish(ctx, e); err != nil {
		logger.Warnw("failed to publish event", "type", e.Type, "key", e.Key, "error", err.Error())
	}
}

func extractPDFText(data []byte) (string, error) {
	pages, err := docutil.ExtractPDFPages(data)
	if err != nil {
		return "", err
	}
	return docutil.JoinPages(pages), nil
}

func fileType(filename, fallback string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return fallback
	}
	return ext
}
