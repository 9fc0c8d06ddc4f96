package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/middleware"
	"sealed-mail/internal/usecase"
	"sealed-mail/pkg/httputil"
)

const maxNotificationBody = 256 << 10

// NotificationDecoder はプッシュ通知を開封する。
type NotificationDecoder interface {
	Decode(ctx context.Context, payload usecase.NotificationPayload) (*domain.EmailMessageReceivedNotification, error)
}

// NotificationHandler はプッシュ通知の受信エンドポイントを提供する。
type NotificationHandler struct {
	decoder NotificationDecoder
}

// NewNotificationHandler は新しいNotificationHandlerを生成する。
func NewNotificationHandler(decoder NotificationDecoder) *NotificationHandler {
	return &NotificationHandler{decoder: decoder}
}

// AddressResponse は表示名付きアドレスのレスポンス形式。
type AddressResponse struct {
	EmailAddress string  `json:"email_address"`
	DisplayName  *string `json:"display_name,omitempty"`
}

// NotificationResponse は開封した受信通知のレスポンス形式。
type NotificationResponse struct {
	Type             string           `json:"type"`
	Owner            string           `json:"owner"`
	EmailAddressID   string           `json:"email_address_id"`
	SudoID           string           `json:"sudo_id"`
	MessageID        string           `json:"message_id"`
	FolderID         string           `json:"folder_id"`
	EncryptionStatus string           `json:"encryption_status"`
	Subject          *string          `json:"subject,omitempty"`
	From             AddressResponse  `json:"from"`
	ReplyTo          *AddressResponse `json:"reply_to,omitempty"`
	HasAttachments   bool             `json:"has_attachments"`
	SentAt           string           `json:"sent_at"`
	ReceivedAt       string           `json:"received_at"`
}

func toAddressResponse(a domain.EmailMessageAddress) AddressResponse {
	return AddressResponse{EmailAddress: a.EmailAddress, DisplayName: a.DisplayName}
}

func toNotificationResponse(n *domain.EmailMessageReceivedNotification) NotificationResponse {
	resp := NotificationResponse{
		Type:             string(n.Type),
		Owner:            n.Owner,
		EmailAddressID:   n.EmailAddressID,
		SudoID:           n.SudoID,
		MessageID:        n.MessageID,
		FolderID:         n.FolderID,
		EncryptionStatus: string(n.EncryptionStatus),
		Subject:          n.Subject,
		From:             toAddressResponse(n.From),
		HasAttachments:   n.HasAttachments,
		SentAt:           n.SentAt.Format(time.RFC3339),
		ReceivedAt:       n.ReceivedAt.Format(time.RFC3339),
	}
	if n.ReplyTo != nil {
		replyTo := toAddressResponse(*n.ReplyTo)
		resp.ReplyTo = &replyTo
	}
	return resp
}

// ReceiveNotification はプッシュ通知を開封して返す。
// メールサービス宛て以外の通知は 204 で読み捨てる。
func (h *NotificationHandler) ReceiveNotification(w http.ResponseWriter, r *http.Request) {
	var payload usecase.NotificationPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxNotificationBody)).Decode(&payload); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid notification payload")
		return
	}

	n, err := h.decoder.Decode(r.Context(), payload)
	if err != nil {
		if errors.Is(err, domain.ErrNotificationNotApplicable) {
			middleware.WriteAuditLog(r.Context(), "RECEIVE_NOTIFICATION", payload.ServiceName, middleware.ResultSuccess)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		middleware.WriteAuditLog(r.Context(), "RECEIVE_NOTIFICATION", payload.ServiceName, middleware.ResultFailure)
		httputil.ErrorFrom(w, err)
		return
	}

	middleware.WriteAuditLog(r.Context(), "RECEIVE_NOTIFICATION", n.MessageID, middleware.ResultSuccess)
	httputil.JSON(w, http.StatusOK, toNotificationResponse(n))
}

// Health はヘルスチェック用のエンドポイント。
func Health(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
