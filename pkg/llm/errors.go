package llm

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"

	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
	"github.com/kart-io/onboarding-assistant/pkg/utils/httpclient"
)

// Classify 将供应商调用错误归类为补全错误码。
//
//   - 429 -> ErrCompletionRateLimited（可重试）
//   - 401/403 -> ErrCompletionAuth
//   - 5xx 与连接失败 -> ErrCompletionUnavailable（可重试）
//   - 超时 -> ErrCompletionTimeout（可重试）
//   - 其他 4xx -> ErrCompletionRejected
//   - 响应无法解析 -> ErrCompletionBadResponse
//
// 已经归类过的错误原样返回。
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.IsCompletionError(err) {
		return err
	}

	var se *httpclient.StatusError
	if stderrors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusTooManyRequests:
			e := errors.ErrCompletionRateLimited.WithCause(err)
			if se.RetryAfter > 0 {
				e = e.WithMessagef("%s, retry after %s", e.MessageEN, se.RetryAfter)
			}
			return e
		case se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden:
			return errors.ErrCompletionAuth.WithCause(err)
		case se.StatusCode >= 500:
			return errors.ErrCompletionUnavailable.WithCause(err)
		default:
			return errors.ErrCompletionRejected.WithCause(err)
		}
	}

	var de *httpclient.DecodeError
	if stderrors.As(err, &de) {
		return errors.ErrCompletionBadResponse.WithCause(err)
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.ErrCompletionTimeout.WithCause(err)
	}
	var ne net.Error
	if stderrors.As(err, &ne) && ne.Timeout() {
		return errors.ErrCompletionTimeout.WithCause(err)
	}

	return errors.ErrCompletionUnavailable.WithCause(err)
}

// EmptyCompletion 返回空补全内容对应的错误。
func EmptyCompletion(provider string) error {
	return errors.ErrCompletionBadResponse.WithMessagef("%s returned an empty completion", provider)
}
