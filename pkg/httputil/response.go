// Package httputil はHTTPレスポンス生成のユーティリティを提供する。
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"sealed-mail/internal/domain"
)

// ErrorResponse はエラーレスポンスの形式。
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON はJSONレスポンスを返す。
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// ヘッダーは既に送信済みのため、ログのみ出力する
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// Error はエラーレスポンスを返す。
func Error(w http.ResponseWriter, status int, code string, message string) {
	JSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// errorStatus はエラー種別とHTTPステータス・コードの対応。先頭から順に判定する。
var errorStatus = []struct {
	kind   error
	status int
	code   string
}{
	{domain.ErrInvalidInput, http.StatusBadRequest, "INVALID_INPUT"},
	{domain.ErrUnsealing, http.StatusUnprocessableEntity, "UNSEALING_FAILED"},
	{domain.ErrKeyNotFound, http.StatusNotFound, "KEY_NOT_FOUND"},
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{domain.ErrLimitExceeded, http.StatusTooManyRequests, "LIMIT_EXCEEDED"},
	{domain.ErrUnauthorized, http.StatusForbidden, "UNAUTHORIZED"},
	{domain.ErrAuthentication, http.StatusUnauthorized, "AUTHENTICATION_FAILED"},
}

// StatusOf はエラーに対応するHTTPステータスとエラーコードを返す。
func StatusOf(err error) (int, string) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, "REQUEST_CANCELED"
	}
	for _, s := range errorStatus {
		if errors.Is(err, s.kind) {
			return s.status, s.code
		}
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// ErrorFrom はエラーの種別からステータスを決めてエラーレスポンスを返す。
// 500 の場合は内部のエラー内容を返さない。
func ErrorFrom(w http.ResponseWriter, err error) {
	status, code := StatusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	Error(w, status, code, message)
}
