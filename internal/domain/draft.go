package domain

import "time"

// DraftEmailMessageMetadata は下書きのメタデータを表す。
type DraftEmailMessageMetadata struct {
	ID             string
	EmailAddressID string
	UpdatedAt      time.Time
}

// DraftEmailMessage は開封済みの下書きを表す。
type DraftEmailMessage struct {
	DraftEmailMessageMetadata
	RFC822Data []byte
}

// CreateDraftEmailMessageInput は下書き作成の入力。
type CreateDraftEmailMessageInput struct {
	RFC822Data           []byte
	SenderEmailAddressID string
}

// UpdateDraftEmailMessageInput は下書き更新の入力。
type UpdateDraftEmailMessageInput struct {
	ID                   string
	RFC822Data           []byte
	SenderEmailAddressID string
}

// DeleteDraftEmailMessagesInput は下書き一括削除の入力。
type DeleteDraftEmailMessagesInput struct {
	IDs            []string
	EmailAddressID string
}

// ScheduledDraftMessageState は予約送信の状態を表す。
type ScheduledDraftMessageState string

const (
	ScheduledDraftMessageStateScheduled ScheduledDraftMessageState = "SCHEDULED"
	ScheduledDraftMessageStateFailed    ScheduledDraftMessageState = "FAILED"
	ScheduledDraftMessageStateSent      ScheduledDraftMessageState = "SENT"
	ScheduledDraftMessageStateCancelled ScheduledDraftMessageState = "CANCELLED"
)

// ScheduledDraftMessage は予約送信された下書きを表す。
type ScheduledDraftMessage struct {
	ID             string
	EmailAddressID string
	Owner          string
	Owners         []Owner
	SendAt         time.Time
	State          ScheduledDraftMessageState
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ScheduleSendDraftMessageInput は予約送信の入力。
type ScheduleSendDraftMessageInput struct {
	ID             string
	EmailAddressID string
	SendAt         time.Time
}

// CancelScheduledDraftMessageInput は予約送信取消の入力。
type CancelScheduledDraftMessageInput struct {
	ID             string
	EmailAddressID string
}

// ListScheduledDraftMessagesInput は予約送信一覧の入力。
type ListScheduledDraftMessagesInput struct {
	EmailAddressID string
	States         []ScheduledDraftMessageState
	ListInput
}
