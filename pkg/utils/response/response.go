// Package response provides unified API response structures.
// This package defines standard response formats for HTTP APIs,
// ensuring consistent response structures across all endpoints.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
)

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "request_id"

// Response is the unified API response structure.
// All API responses should use this format for consistency.
type Response struct {
	// Code is the business error code (0 = success)
	Code int `json:"code"`

	// Message is a human-readable message
	Message string `json:"message"`

	// Data contains the response payload (nil for errors)
	Data interface{} `json:"data,omitempty"`

	// Retryable tells the client whether repeating the request may succeed.
	// Only set on errors.
	Retryable *bool `json:"retryable,omitempty"`

	// RequestID is the unique request identifier for tracing
	RequestID string `json:"request_id,omitempty"`

	httpStatus int
}

// PageData represents paginated data.
type PageData struct {
	List       interface{} `json:"list"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

// Success creates a successful response with data.
func Success(data interface{}) *Response {
	return &Response{
		Code:       0,
		Message:    "success",
		Data:       data,
		httpStatus: http.StatusOK,
	}
}

// Err creates an error response from any error. Non-Errno errors are reported
// as ErrInternal without leaking their text.
func Err(err error) *Response {
	if err == nil {
		return Success(nil)
	}
	e := errors.FromError(err)
	retryable := errors.IsRetryable(err)
	msg := e.MessageEN
	if e.Code == errors.ErrInternal.Code {
		msg = errors.ErrInternal.MessageEN
	}
	return &Response{
		Code:       e.Code,
		Message:    msg,
		Retryable:  &retryable,
		httpStatus: e.HTTPStatus(),
	}
}

// Page creates a paginated response.
func Page(list interface{}, total int64, page, pageSize int) *Response {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize > 0 {
			totalPages++
		}
	}

	return Success(&PageData{
		List:       list,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// WithStatus overrides the HTTP status of a response.
func (r *Response) WithStatus(status int) *Response {
	r.httpStatus = status
	return r
}

// IsSuccess returns true if the response indicates success.
func (r *Response) IsSuccess() bool {
	return r.Code == 0
}

// HTTPStatus returns the HTTP status code for this response.
func (r *Response) HTTPStatus() int {
	if r.httpStatus != 0 {
		return r.httpStatus
	}
	if r.Code == 0 {
		return http.StatusOK
	}
	if e, ok := errors.Lookup(r.Code); ok {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// Write sends r on c, stamping the request ID when present.
func Write(c *gin.Context, r *Response) {
	if v, ok := c.Get(RequestIDKey); ok {
		r.RequestID, _ = v.(string)
	}
	c.JSON(r.HTTPStatus(), r)
}

// OK writes a 200 success response.
func OK(c *gin.Context, data interface{}) {
	Write(c, Success(data))
}

// Accepted writes a 202 response for work that continues in the background.
func Accepted(c *gin.Context, data interface{}) {
	Write(c, Success(data).WithStatus(http.StatusAccepted))
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	Write(c, Success(data).WithStatus(http.StatusCreated))
}

// Fail writes an error response and aborts the handler chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	Write(c, Err(err))
	c.Abort()
}
