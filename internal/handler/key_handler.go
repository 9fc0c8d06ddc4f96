// Package handler はHTTPハンドラを提供する。
package handler

import (
	"context"
	"encoding/base64"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/middleware"
	"sealed-mail/pkg/httputil"
)

var keyIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,128}$`)

// KeyPairSource は公開鍵を提供する鍵マネージャ。
type KeyPairSource interface {
	GetCurrentKeyPair(ctx context.Context) (*domain.KeyPair, error)
	GetKeyPairWithID(ctx context.Context, keyID string) (*domain.KeyPair, error)
}

// KeyHandler は通知の封印に使う公開鍵を返す。
type KeyHandler struct {
	keys KeyPairSource
}

// NewKeyHandler は新しいKeyHandlerを生成する。
func NewKeyHandler(keys KeyPairSource) *KeyHandler {
	return &KeyHandler{keys: keys}
}

// PublicKeyResponse は公開鍵のレスポンス形式。秘密鍵は含めない。
type PublicKeyResponse struct {
	KeyID     string `json:"key_id"`
	KeyRingID string `json:"key_ring_id"`
	PublicKey string `json:"public_key"`
	Format    string `json:"format"`
}

func toPublicKeyResponse(kp *domain.KeyPair) PublicKeyResponse {
	return PublicKeyResponse{
		KeyID:     kp.KeyID,
		KeyRingID: kp.KeyRingID,
		PublicKey: base64.StdEncoding.EncodeToString(kp.PublicKey),
		Format:    "RSA_PUBLIC_KEY",
	}
}

// GetCurrentPublicKey は現在の鍵ペアの公開鍵を返す。
func (h *KeyHandler) GetCurrentPublicKey(w http.ResponseWriter, r *http.Request) {
	kp, err := h.keys.GetCurrentKeyPair(r.Context())
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "GET_CURRENT_PUBLIC_KEY", "", middleware.ResultFailure)
		httputil.ErrorFrom(w, err)
		return
	}
	if kp == nil {
		middleware.WriteAuditLog(r.Context(), "GET_CURRENT_PUBLIC_KEY", "", middleware.ResultFailure)
		httputil.Error(w, http.StatusNotFound, "KEY_NOT_FOUND", "no key pair has been generated")
		return
	}

	middleware.WriteAuditLog(r.Context(), "GET_CURRENT_PUBLIC_KEY", kp.KeyID, middleware.ResultSuccess)
	httputil.JSON(w, http.StatusOK, toPublicKeyResponse(kp))
}

// GetPublicKey は指定された鍵IDの公開鍵を返す。
func (h *KeyHandler) GetPublicKey(w http.ResponseWriter, r *http.Request) {
	keyID := chi.URLParam(r, "key_id")
	if !keyIDRegex.MatchString(keyID) {
		httputil.Error(w, http.StatusBadRequest, "INVALID_KEY_ID", "invalid key ID format")
		return
	}

	kp, err := h.keys.GetKeyPairWithID(r.Context(), keyID)
	if err != nil {
		middleware.WriteAuditLog(r.Context(), "GET_PUBLIC_KEY", keyID, middleware.ResultFailure)
		httputil.ErrorFrom(w, err)
		return
	}
	if kp == nil {
		middleware.WriteAuditLog(r.Context(), "GET_PUBLIC_KEY", keyID, middleware.ResultFailure)
		httputil.Error(w, http.StatusNotFound, "KEY_NOT_FOUND", "key pair not found")
		return
	}

	middleware.WriteAuditLog(r.Context(), "GET_PUBLIC_KEY", keyID, middleware.ResultSuccess)
	httputil.JSON(w, http.StatusOK, toPublicKeyResponse(kp))
}
