package handler

import (
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/internal/pkg/docutil"
	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
	"github.com/kart-io/onboarding-assistant/pkg/utils/response"
)

// UploadDocument accepts a multipart PDF in field "file". With a worker
// pool the document is queued and 202 is returned; otherwise it is
// ingested before responding.
func (h *Handler) UploadDocument(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, errors.ErrBadRequest.WithCause(err).WithMessage("multipart field \"file\" is required"))
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		response.Fail(c, errors.ErrInvalidParam.WithMessage("only PDF documents are supported"))
		return
	}
	if fh.Size > h.maxUploadBytes {
		response.Fail(c, errors.ErrInvalidParam.WithMessagef("file exceeds %d bytes", h.maxUploadBytes))
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.Fail(c, errors.ErrBadRequest.WithCause(err))
		return
	}
	defer f.Close()

	data, err := docutil.ReadAllLimit(f, h.maxUploadBytes)
	if errors.Is(err, docutil.ErrTooLarge) {
		response.Fail(c, errors.ErrInvalidParam.WithMessagef("file exceeds %d bytes", h.maxUploadBytes))
		return
	}
	if err != nil {
		response.Fail(c, errors.ErrBadRequest.WithCause(err))
		return
	}

	ctx := c.Request.Context()
	if h.svc.Ingester.Async() {
		doc, err := h.svc.Ingester.SubmitPDF(ctx, fh.Filename, data)
		if err != nil {
			response.Fail(c, err)
			return
		}
		response.Accepted(c, doc)
		return
	}

	doc, err := h.svc.Ingester.IngestPDF(ctx, fh.Filename, data)
	if err != nil {
		logger.Warnw("document ingestion failed", "filename", fh.Filename, "error", err.Error())
		response.Fail(c, err)
		return
	}
	response.Created(c, doc)
}

// IngestText ingests a plain text document synchronously.
func (h *Handler) IngestText(c *gin.Context) {
	var req model.IngestTextRequest
	if err := bindJSON(c, &req); err != nil {
		response.Fail(c, err)
		return
	}

	res, err := h.svc.Ingester.IngestText(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Created(c, res)
}

// ListDocuments lists documents newest first.
func (h *Handler) ListDocuments(c *gin.Context) {
	page, pageSize, offset, err := pagination(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	total, docs, err := h.svc.Ingester.ListDocuments(c.Request.Context(), offset, pageSize)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Write(c, response.Page(docs, total, page, pageSize))
}

// GetDocument returns a document and its processing status.
func (h *Handler) GetDocument(c *gin.Context) {
	doc, err := h.svc.Ingester.GetDocument(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, doc)
}

// DeleteDocument removes a document and its chunks.
func (h *Handler) DeleteDocument(c *gin.Context) {
	if err := h.svc.Ingester.DeleteDocument(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, gin.H{"document_id": c.Param("id")})
}

// Stats reports knowledge-base figures.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, stats)
}
