package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestMakeAndParseCode(t *testing.T) {
	code := MakeCode(ServiceOnboarding, CategoryNetwork, 1)
	assert.Equal(t, 3010001, code)

	svc, cat, seq := ParseCode(code)
	assert.Equal(t, ServiceOnboarding, svc)
	assert.Equal(t, CategoryNetwork, cat)
	assert.Equal(t, 1, seq)
	assert.True(t, IsServerError(code))
	assert.False(t, IsClientError(code))
}

func TestErrnoWithCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := ErrIndexUnavailable.WithCause(cause)

	assert.True(t, stderrors.Is(err, ErrIndexUnavailable))
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, cause, err.Cause())
	assert.Nil(t, ErrIndexUnavailable.Cause(), "sentinel must not be mutated")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, http.StatusServiceUnavailable, err.HTTPStatus())
	assert.Equal(t, codes.Unavailable, err.GRPCStatus())
}

func TestErrnoMessage(t *testing.T) {
	assert.Equal(t, "向量索引不可用", ErrIndexUnavailable.Message("zh-CN"))
	assert.Equal(t, "Vector index unavailable", ErrIndexUnavailable.Message("en"))

	custom := ErrInvalidParam.WithMessagef("field %s is required", "name")
	assert.Equal(t, "field name is required", custom.MessageEN)
	assert.True(t, stderrors.Is(custom, ErrInvalidParam))
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register(New(ErrIndexUnavailable.Code, 500, codes.Internal, "dup", ""))
	})
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("ingest: %w", ErrDocumentNotFound)
	assert.Equal(t, ErrDocumentNotFound.Code, FromError(wrapped).Code)

	plain := FromError(stderrors.New("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"限流可重试", ErrCompletionRateLimited, true},
		{"超时可重试", ErrCompletionTimeout.WithCause(context.DeadlineExceeded), true},
		{"认证失败不可重试", ErrCompletionAuth, false},
		{"格式错误不可重试", ErrCompletionBadResponse, false},
		{"计划解析失败不可重试", ErrPlanParseFailed, false},
		{"索引不可用可重试", ErrIndexUnavailable, true},
		{"答案生成失败继承限流", ErrAnswerGenerationFailed.WithCause(ErrCompletionRateLimited), true},
		{"答案生成失败继承认证失败", ErrAnswerGenerationFailed.WithCause(ErrCompletionAuth.WithCause(stderrors.New("401"))), false},
		{"部分导入继承索引不可用", ErrIngestionPartialFailure.WithCause(fmt.Errorf("chunk 2: %w", ErrIndexUnavailable)), true},
		{"计划版本冲突可重试", ErrPlanConflict, true},
		{"员工已存在不可重试", ErrEmployeeExists, false},
		{"普通错误不可重试", stderrors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestIsCompletionError(t *testing.T) {
	err := ErrAnswerGenerationFailed.WithCause(ErrCompletionTimeout)
	require.True(t, IsCompletionError(err))
	assert.True(t, IsCode(err, ErrCompletionTimeout.Code))
	assert.Equal(t, ErrAnswerGenerationFailed.Code, GetCode(err))
	assert.False(t, IsCompletionError(ErrIndexUnavailable))
}
