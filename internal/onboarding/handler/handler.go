// Package handler provides the HTTP handlers of the onboarding service.
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/onboarding-assistant/internal/onboarding/biz"
	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
	"github.com/kart-io/onboarding-assistant/pkg/utils/validator"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// DefaultMaxUploadBytes 上传文件大小上限。
	DefaultMaxUploadBytes = 32 << 20
)

// Handler serves the /v1 API over a biz.Service.
type Handler struct {
	svc            *biz.Service
	maxUploadBytes int64
}

// Option configures a Handler.
type Option func(*Handler)

// WithMaxUploadBytes limits the size of uploaded documents.
func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUploadBytes = n
		}
	}
}

// New creates a Handler.
func New(svc *biz.Service, opts ...Option) *Handler {
	h := &Handler{svc: svc, maxUploadBytes: DefaultMaxUploadBytes}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// bindJSON decodes the request body into req and validates it.
func bindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return errors.ErrBadRequest.WithCause(err).WithMessage("malformed request body")
	}
	return validator.Struct(req)
}

// pagination reads page and page_size, returning 1-based page and offset.
func pagination(c *gin.Context) (page, pageSize, offset int, err error) {
	page, err = intQuery(c, "page", 1)
	if err != nil {
		return 0, 0, 0, err
	}
	pageSize, err = intQuery(c, "page_size", defaultPageSize)
	if err != nil {
		return 0, 0, 0, err
	}
	if page < 1 {
		return 0, 0, 0, errors.ErrInvalidParam.WithMessage("page must be at least 1")
	}
	if pageSize < 1 || pageSize > maxPageSize {
		return 0, 0, 0, errors.ErrInvalidParam.WithMessagef("page_size must be in [1, %d]", maxPageSize)
	}
	return page, pageSize, (page - 1) * pageSize, nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.ErrInvalidParam.WithCause(err).WithMessagef("%s must be an integer", key)
	}
	return n, nil
}
