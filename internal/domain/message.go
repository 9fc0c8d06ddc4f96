package domain

import "time"

// Direction はメッセージの送受信方向を表す。
type Direction string

const (
	DirectionInbound  Direction = "INBOUND"
	DirectionOutbound Direction = "OUTBOUND"
)

// State はメッセージの配送状態を表す。
type State string

const (
	StateQueued      State = "QUEUED"
	StateSent        State = "SENT"
	StateUndelivered State = "UNDELIVERED"
	StateFailed      State = "FAILED"
	StateReceived    State = "RECEIVED"
	StateDeleted     State = "DELETED"
)

// EncryptionStatus はメッセージ本文の暗号化状態を表す。
type EncryptionStatus string

const (
	EncryptionStatusEncrypted   EncryptionStatus = "ENCRYPTED"
	EncryptionStatusUnencrypted EncryptionStatus = "UNENCRYPTED"
)

// EmailMessageAddress は表示名付きのアドレスを表す。
type EmailMessageAddress struct {
	EmailAddress string
	DisplayName  *string
}

// String はRFC 5322形式の表記を返す。
func (a EmailMessageAddress) String() string {
	if a.DisplayName == nil || *a.DisplayName == "" {
		return a.EmailAddress
	}
	return *a.DisplayName + " <" + a.EmailAddress + ">"
}

// EmailMessage は開封済みのメッセージを表す。
type EmailMessage struct {
	ID               string
	ClientRefID      *string
	Owner            string
	Owners           []Owner
	EmailAddressID   string
	FolderID         string
	PreviousFolderID *string
	Seen             bool
	RepliedTo        bool
	Forwarded        bool
	Direction        Direction
	State            State
	Version          int
	SortDate         time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Size             float64
	EncryptionStatus EncryptionStatus
	Date             *time.Time
	From             []EmailMessageAddress
	To               []EmailMessageAddress
	Cc               []EmailMessageAddress
	Bcc              []EmailMessageAddress
	ReplyTo          []EmailMessageAddress
	Subject          *string
	HasAttachments   bool
	InReplyTo        *string
	References       []string
}

// PartialEmailMessage は封印ヘッダの開封に失敗したメッセージの平文部分を表す。
type PartialEmailMessage struct {
	ID               string
	ClientRefID      *string
	Owner            string
	Owners           []Owner
	EmailAddressID   string
	FolderID         string
	PreviousFolderID *string
	Seen             bool
	RepliedTo        bool
	Forwarded        bool
	Direction        Direction
	State            State
	Version          int
	SortDate         time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Size             float64
	EncryptionStatus EncryptionStatus
	Date             *time.Time
}

// EmailMessageHeader は送信メッセージのヘッダを表す。
type EmailMessageHeader struct {
	From    EmailMessageAddress
	To      []EmailMessageAddress
	Cc      []EmailMessageAddress
	Bcc     []EmailMessageAddress
	ReplyTo []EmailMessageAddress
	Subject string
}

// EmailAttachment は添付ファイルを表す。
type EmailAttachment struct {
	FileName  string
	ContentID string
	MimeType  string
	Inline    bool
	Data      []byte
}

// SendEmailMessageInput はメッセージ送信の入力。
type SendEmailMessageInput struct {
	SenderEmailAddressID string
	Header               EmailMessageHeader
	Body                 string
	Attachments          []EmailAttachment
	InlineAttachments    []EmailAttachment
	ReplyingMessageID    *string
	ForwardingMessageID  *string
}

// SendEmailMessageResult は送信結果を表す。
type SendEmailMessageResult struct {
	ID        string
	CreatedAt time.Time
}

// UpdateEmailMessagesValues は一括更新で設定する値。
type UpdateEmailMessagesValues struct {
	FolderID *string
	Seen     *bool
}

// UpdateEmailMessagesInput はメッセージ一括更新の入力。
type UpdateEmailMessagesInput struct {
	IDs    []string
	Values UpdateEmailMessagesValues
}

// UpdatedEmailMessageSuccess は更新に成功したメッセージを表す。
type UpdatedEmailMessageSuccess struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeleteEmailMessageSuccessResult は削除に成功したメッセージを表す。
type DeleteEmailMessageSuccessResult struct {
	ID string
}

// EmailMessageOperationFailureResult は一括操作で失敗した項目を表す。
type EmailMessageOperationFailureResult struct {
	ID        string
	ErrorType string
}

// SortOrder は一覧の並び順を表す。
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// DateRange は日時範囲を表す。
type DateRange struct {
	Start time.Time
	End   time.Time
}

// EmailMessageDateRange は一覧の日時範囲フィルタ。SortDate と UpdatedAt は同時に指定できない。
type EmailMessageDateRange struct {
	SortDate  *DateRange
	UpdatedAt *DateRange
}

// ListEmailMessagesInput はメッセージ一覧の入力。
// EmailAddressID と FolderID は一覧の種類に応じて使用される。
type ListEmailMessagesInput struct {
	EmailAddressID         string
	FolderID               string
	DateRange              *EmailMessageDateRange
	SortOrder              SortOrder
	IncludeDeletedMessages bool
	ListInput
}

// GetEmailMessageRFC822DataInput はRFC 822本文取得の入力。
type GetEmailMessageRFC822DataInput struct {
	ID             string
	EmailAddressID string
}

// EmailMessageRFC822Data はメッセージ本文を表す。
type EmailMessageRFC822Data struct {
	ID         string
	RFC822Data []byte
}
