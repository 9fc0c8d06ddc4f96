package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"sealed-mail/internal/domain"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid input", domain.NewError(domain.DomainNotification, domain.ErrInvalidInput, "", nil), http.StatusBadRequest, "INVALID_INPUT"},
		{"unsealing", domain.NewError(domain.DomainNotification, domain.ErrUnsealing, "", domain.ErrSealedDataTooShort), http.StatusUnprocessableEntity, "UNSEALING_FAILED"},
		{"key not found", domain.NewError(domain.DomainKeys, domain.ErrKeyNotFound, "", nil), http.StatusNotFound, "KEY_NOT_FOUND"},
		{"limit", domain.NewError(domain.DomainMessage, domain.ErrLimitExceeded, "", nil), http.StatusTooManyRequests, "LIMIT_EXCEEDED"},
		{"wrapped canceled", fmt.Errorf("calling backend: %w", context.Canceled), http.StatusServiceUnavailable, "REQUEST_CANCELED"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := StatusOf(tt.err)
			if status != tt.wantStatus || code != tt.wantCode {
				t.Errorf("StatusOf() = %d %s, want %d %s", status, code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}

func TestErrorFrom_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorFrom(rec, errors.New("dsn user:secret@tcp(db)"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "internal server error" {
		t.Errorf("unexpected message: %q", resp.Message)
	}
}
