package domain

import "time"

// EmailAddress は開封済みのメールアドレスを表す。
type EmailAddress struct {
	ID                    string
	Owner                 string
	Owners                []Owner
	EmailAddress          string
	Size                  float64
	NumberOfEmailMessages int
	Version               int
	CreatedAt             time.Time
	UpdatedAt             time.Time
	LastReceivedAt        *time.Time
	Alias                 *string
	Folders               []EmailFolder
}

// PartialEmailAddress は開封に失敗したメールアドレスの平文部分を表す。
type PartialEmailAddress struct {
	ID                    string
	Owner                 string
	Owners                []Owner
	EmailAddress          string
	Size                  float64
	NumberOfEmailMessages int
	Version               int
	CreatedAt             time.Time
	UpdatedAt             time.Time
	LastReceivedAt        *time.Time
}

// EmailAddressPublicInfo はアドレスに紐づく公開鍵情報を表す。
type EmailAddressPublicInfo struct {
	EmailAddress string
	KeyID        string
	PublicKey    string
}

// ProvisionEmailAddressInput はアドレス払い出しの入力。
type ProvisionEmailAddressInput struct {
	EmailAddress        string
	OwnershipProofToken string
	Alias               *string
	// KeyID を指定した場合は既存の鍵ペアを使用する。
	KeyID string
}

// UpdateEmailAddressMetadataInput はアドレスのメタデータ更新の入力。
// Alias がnilまたは空文字の場合は別名を削除する。
type UpdateEmailAddressMetadataInput struct {
	ID    string
	Alias *string
}

// CheckEmailAddressAvailabilityInput は利用可能アドレス検索の入力。
type CheckEmailAddressAvailabilityInput struct {
	LocalParts []string
	Domains    []string
}

// ListInput はページング入力。
type ListInput struct {
	Limit     *int
	NextToken *string
}
