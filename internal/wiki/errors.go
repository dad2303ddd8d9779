package wiki

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// HTTPStatusError 表示搜索接口返回了非 2xx 的 HTTP 状态码。
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// Temporary 表示该状态码值得重试（5xx 与 429）。
func (e *HTTPStatusError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// ResponseError 表示响应无法解析（视为瞬时错误，可重试）。
type ResponseError struct {
	URL string
	Err error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("响应无法解析：%s：%v", e.URL, e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// APIError 表示接口以 200 返回了结构化错误（例如参数非法），重试无意义。
type APIError struct {
	URL  string
	Code string
	Info string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API 错误 %s：%s（%s）", e.Code, e.Info, e.URL)
}

// IsPermanent 判断搜索错误是否不应重试：非 429 的 4xx、APIError，以及 ctx 取消。
// 网络错误、超时、5xx/429、响应无法解析都视为瞬时错误。
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return true
	}
	var se *HTTPStatusError
	if errors.As(err, &se) {
		return !se.Temporary()
	}
	return false
}

// SearchError 表示某个语言在重试耗尽后仍然失败。
type SearchError struct {
	Lang     string
	Attempts int
	Err      error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("搜索失败（lang=%s，尝试 %d 次）：%v", e.Lang, e.Attempts, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }
