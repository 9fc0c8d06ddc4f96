// Package gql はバックエンドのGraphQL操作ドキュメントと、その入出力のJSON型を定義する。
package gql

import (
	"encoding/json"
	"time"

	"sealed-mail/internal/domain"
)

// Request はGraphQLリクエストのボディ。
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// Response はGraphQLレスポンスのボディ。
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors Errors          `json:"errors,omitempty"`
}

// EpochMs はエポックミリ秒を時刻に変換する。
func EpochMs(ms float64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}

// EpochMsPtr はnilを許容する EpochMs。
func EpochMsPtr(ms *float64) *time.Time {
	if ms == nil {
		return nil
	}
	t := EpochMs(*ms)
	return &t
}

// ToEpochMs は時刻をエポックミリ秒に変換する。
func ToEpochMs(t time.Time) float64 {
	return float64(t.UnixMilli())
}

type SealedAttribute struct {
	Algorithm               string `json:"algorithm"`
	KeyID                   string `json:"keyId"`
	PlainTextType           string `json:"plainTextType"`
	Base64EncodedSealedData string `json:"base64EncodedSealedData"`
}

// Domain はドメインの SealedAttribute に変換する。
func (a SealedAttribute) Domain() domain.SealedAttribute {
	return domain.SealedAttribute{
		Algorithm:               a.Algorithm,
		KeyID:                   a.KeyID,
		PlainTextType:           a.PlainTextType,
		Base64EncodedSealedData: a.Base64EncodedSealedData,
	}
}

// NewSealedAttribute はドメインの SealedAttribute から入力値を生成する。
func NewSealedAttribute(a domain.SealedAttribute) SealedAttribute {
	return SealedAttribute{
		Algorithm:               a.Algorithm,
		KeyID:                   a.KeyID,
		PlainTextType:           a.PlainTextType,
		Base64EncodedSealedData: a.Base64EncodedSealedData,
	}
}

type Owner struct {
	ID     string `json:"id"`
	Issuer string `json:"issuer"`
}

// DomainOwners はドメインの Owner 一覧に変換する。
func DomainOwners(owners []Owner) []domain.Owner {
	out := make([]domain.Owner, 0, len(owners))
	for _, o := range owners {
		out = append(out, domain.Owner{ID: o.ID, Issuer: o.Issuer})
	}
	return out
}

type EmailFolder struct {
	ID               string           `json:"id"`
	Owner            string           `json:"owner"`
	Owners           []Owner          `json:"owners"`
	EmailAddressID   string           `json:"emailAddressId"`
	FolderName       string           `json:"folderName"`
	CustomFolderName *SealedAttribute `json:"customFolderName"`
	Size             float64          `json:"size"`
	UnseenCount      int              `json:"unseenCount"`
	TTL              *int64           `json:"ttl"`
	Version          int              `json:"version"`
	CreatedAtEpochMs float64          `json:"createdAtEpochMs"`
	UpdatedAtEpochMs float64          `json:"updatedAtEpochMs"`
}

type EmailAddress struct {
	ID                    string           `json:"id"`
	Owner                 string           `json:"owner"`
	Owners                []Owner          `json:"owners"`
	Identity              string           `json:"identity"`
	KeyRingID             string           `json:"keyRingId"`
	EmailAddress          string           `json:"emailAddress"`
	Size                  float64          `json:"size"`
	NumberOfEmailMessages int              `json:"numberOfEmailMessages"`
	Version               int              `json:"version"`
	CreatedAtEpochMs      float64          `json:"createdAtEpochMs"`
	UpdatedAtEpochMs      float64          `json:"updatedAtEpochMs"`
	LastReceivedAtEpochMs *float64         `json:"lastReceivedAtEpochMs"`
	Alias                 *SealedAttribute `json:"alias"`
	Folders               []EmailFolder    `json:"folders"`
}

type SealedEmailMessage struct {
	ID               string          `json:"id"`
	ClientRefID      *string         `json:"clientRefId"`
	Owner            string          `json:"owner"`
	Owners           []Owner         `json:"owners"`
	EmailAddressID   string          `json:"emailAddressId"`
	FolderID         string          `json:"folderId"`
	PreviousFolderID *string         `json:"previousFolderId"`
	Seen             bool            `json:"seen"`
	RepliedTo        bool            `json:"repliedTo"`
	Forwarded        bool            `json:"forwarded"`
	Direction        string          `json:"direction"`
	State            string          `json:"state"`
	Version          int             `json:"version"`
	SortDateEpochMs  float64         `json:"sortDateEpochMs"`
	CreatedAtEpochMs float64         `json:"createdAtEpochMs"`
	UpdatedAtEpochMs float64         `json:"updatedAtEpochMs"`
	Size             float64         `json:"size"`
	EncryptionStatus string          `json:"encryptionStatus"`
	DateEpochMs      *float64        `json:"dateEpochMs"`
	RFC822Header     SealedAttribute `json:"rfc822Header"`
}

type EmailConfigurationData struct {
	DeleteEmailMessagesLimit             int `json:"deleteEmailMessagesLimit"`
	UpdateEmailMessagesLimit             int `json:"updateEmailMessagesLimit"`
	EmailMessageMaxInboundMessageSize    int `json:"emailMessageMaxInboundMessageSize"`
	EmailMessageMaxOutboundMessageSize   int `json:"emailMessageMaxOutboundMessageSize"`
	EmailMessageRecipientsLimit          int `json:"emailMessageRecipientsLimit"`
	EncryptedEmailMessageRecipientsLimit int `json:"encryptedEmailMessageRecipientsLimit"`
}

type EmailAddressPublicInfo struct {
	EmailAddress string `json:"emailAddress"`
	KeyID        string `json:"keyId"`
	PublicKey    string `json:"publicKey"`
}

type BlockedAddress struct {
	Owner              string          `json:"owner"`
	Owners             []Owner         `json:"owners"`
	HashAlgorithm      string          `json:"hashAlgorithm"`
	HashedBlockedValue string          `json:"hashedBlockedValue"`
	SealedValue        SealedAttribute `json:"sealedValue"`
	Action             string          `json:"action"`
	EmailAddressID     *string         `json:"emailAddressId"`
	CreatedAtEpochMs   float64         `json:"createdAtEpochMs"`
	UpdatedAtEpochMs   float64         `json:"updatedAtEpochMs"`
}

type ScheduledDraftMessage struct {
	DraftMessageKey  string  `json:"draftMessageKey"`
	EmailAddressID   string  `json:"emailAddressId"`
	Owner            string  `json:"owner"`
	Owners           []Owner `json:"owners"`
	SendAtEpochMs    float64 `json:"sendAtEpochMs"`
	State            string  `json:"state"`
	CreatedAtEpochMs float64 `json:"createdAtEpochMs"`
	UpdatedAtEpochMs float64 `json:"updatedAtEpochMs"`
}

type UpdatedEmailMessageSuccess struct {
	ID               string  `json:"id"`
	CreatedAtEpochMs float64 `json:"createdAtEpochMs"`
	UpdatedAtEpochMs float64 `json:"updatedAtEpochMs"`
}

type EmailMessageOperationFailure struct {
	ID        string `json:"id"`
	ErrorType string `json:"errorType"`
}

type EmailMessageDeleteSuccess struct {
	ID string `json:"id"`
}

// BulkUpdateEmailMessagesResult は updateEmailMessages の結果。
type BulkUpdateEmailMessagesResult struct {
	Status          string                         `json:"status"`
	SuccessMessages []UpdatedEmailMessageSuccess   `json:"successMessages"`
	FailedMessages  []EmailMessageOperationFailure `json:"failedMessages"`
}

// BulkDeleteEmailMessagesResult は deleteEmailMessages の結果。
type BulkDeleteEmailMessagesResult struct {
	Status          string                         `json:"status"`
	SuccessMessages []EmailMessageDeleteSuccess    `json:"successMessages"`
	FailedMessages  []EmailMessageOperationFailure `json:"failedMessages"`
}

// BlockAddressesResult はブロック/ブロック解除の結果。値はハッシュ化されたブロック値。
type BlockAddressesResult struct {
	Status           string   `json:"status"`
	SuccessAddresses []string `json:"successAddresses"`
	FailedAddresses  []string `json:"failedAddresses"`
}
