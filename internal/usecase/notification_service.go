package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/gql"
)

// NotificationPayload はプッシュ通知のペイロード。
// Data はJSON文字列、またはJSONオブジェクトのどちらでも受け付ける。
type NotificationPayload struct {
	ServiceName string          `json:"servicename"`
	Data        json.RawMessage `json:"data"`
}

// sealedNotification は Data の中身。Sealed は base64(RSAヘッダ(256バイト) ‖ 共通鍵暗号文)。
type sealedNotification struct {
	KeyID     string `json:"keyId"`
	Algorithm string `json:"algorithm"`
	Sealed    string `json:"sealed"`
}

type notificationAddress struct {
	EmailAddress string  `json:"emailAddress"`
	DisplayName  *string `json:"displayName"`
}

func (a notificationAddress) toDomain() domain.EmailMessageAddress {
	return domain.EmailMessageAddress{EmailAddress: a.EmailAddress, DisplayName: a.DisplayName}
}

type messageReceivedNotification struct {
	Type              string               `json:"type"`
	Owner             string               `json:"owner"`
	EmailAddressID    string               `json:"emailAddressId"`
	SudoID            string               `json:"sudoId"`
	MessageID         string               `json:"messageId"`
	FolderID          string               `json:"folderId"`
	EncryptionStatus  string               `json:"encryptionStatus"`
	Subject           *string              `json:"subject"`
	From              notificationAddress  `json:"from"`
	ReplyTo           *notificationAddress `json:"replyTo"`
	HasAttachments    bool                 `json:"hasAttachments"`
	SentAtEpochMs     float64              `json:"sentAtEpochMs"`
	ReceivedAtEpochMs float64              `json:"receivedAtEpochMs"`
}

// NotificationService はメールサービス宛てのプッシュ通知を開封する。
type NotificationService struct {
	sealing *SealingService
}

// NewNotificationService は新しいNotificationServiceを生成する。
func NewNotificationService(keyManager KeyManager) *NotificationService {
	return &NotificationService{sealing: NewSealingService(keyManager)}
}

// Decode は通知を開封する。servicename がメールサービス以外の場合は ErrNotificationNotApplicable を返す。
func (s *NotificationService) Decode(ctx context.Context, payload NotificationPayload) (*domain.EmailMessageReceivedNotification, error) {
	const d = domain.DomainNotification
	if payload.ServiceName != domain.NotificationServiceName {
		return nil, domain.NewError(d, domain.ErrNotificationNotApplicable, "service "+payload.ServiceName, nil)
	}

	raw := bytes.TrimSpace(payload.Data)
	if len(raw) > 0 && raw[0] == '"' {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return nil, domain.NewError(d, domain.ErrInvalidInput, "decoding data", err)
		}
		raw = []byte(str)
	}
	var sn sealedNotification
	if err := json.Unmarshal(raw, &sn); err != nil {
		return nil, domain.NewError(d, domain.ErrInvalidInput, "decoding data", err)
	}
	if sn.KeyID == "" || sn.Sealed == "" {
		return nil, domain.NewError(d, domain.ErrInvalidInput, "keyId and sealed are required", nil)
	}

	sealed, err := base64.StdEncoding.DecodeString(sn.Sealed)
	if err != nil {
		return nil, translate(d, fmt.Errorf("%w: %w", domain.ErrMalformedSealedData, err))
	}
	plain, err := s.sealing.UnsealWithPrivateKey(ctx, sn.KeyID, sn.Algorithm, sealed)
	if err != nil {
		return nil, translate(d, err)
	}

	var n messageReceivedNotification
	if err := json.Unmarshal(plain, &n); err != nil {
		return nil, domain.NewError(d, domain.ErrUnsealing, "decoding notification", err)
	}
	if domain.NotificationType(n.Type) != domain.NotificationTypeMessageReceived {
		return nil, domain.NewError(d, domain.ErrNotificationNotApplicable, "type "+n.Type, nil)
	}

	out := &domain.EmailMessageReceivedNotification{
		Type:             domain.NotificationTypeMessageReceived,
		Owner:            n.Owner,
		EmailAddressID:   n.EmailAddressID,
		SudoID:           n.SudoID,
		MessageID:        n.MessageID,
		FolderID:         n.FolderID,
		EncryptionStatus: domain.EncryptionStatus(n.EncryptionStatus),
		Subject:          n.Subject,
		From:             n.From.toDomain(),
		HasAttachments:   n.HasAttachments,
		SentAt:           gql.EpochMs(n.SentAtEpochMs),
		ReceivedAt:       gql.EpochMs(n.ReceivedAtEpochMs),
	}
	if n.ReplyTo != nil {
		replyTo := n.ReplyTo.toDomain()
		out.ReplyTo = &replyTo
	}
	return out, nil
}
