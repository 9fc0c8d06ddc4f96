package domain

import "time"

// EmailFolder は開封済みのメールフォルダを表す。
type EmailFolder struct {
	ID               string
	Owner            string
	Owners           []Owner
	EmailAddressID   string
	FolderName       string
	CustomFolderName *string
	Size             float64
	UnseenCount      int
	TTL              *int64
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PartialEmailFolder はカスタム名の開封に失敗したフォルダを表す。
type PartialEmailFolder struct {
	ID             string
	Owner          string
	Owners         []Owner
	EmailAddressID string
	FolderName     string
	Size           float64
	UnseenCount    int
	TTL            *int64
	Version        int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Partial はフォルダの平文部分を返す。
func (f EmailFolder) Partial() PartialEmailFolder {
	return PartialEmailFolder{
		ID:             f.ID,
		Owner:          f.Owner,
		Owners:         f.Owners,
		EmailAddressID: f.EmailAddressID,
		FolderName:     f.FolderName,
		Size:           f.Size,
		UnseenCount:    f.UnseenCount,
		TTL:            f.TTL,
		Version:        f.Version,
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// ListEmailFoldersInput はフォルダ一覧の入力。
type ListEmailFoldersInput struct {
	EmailAddressID string
	ListInput
}

// CreateCustomEmailFolderInput はカスタムフォルダ作成の入力。
type CreateCustomEmailFolderInput struct {
	EmailAddressID   string
	CustomFolderName string
}

// UpdateCustomEmailFolderInput はカスタムフォルダ更新の入力。
type UpdateCustomEmailFolderInput struct {
	EmailFolderID    string
	EmailAddressID   string
	CustomFolderName *string
}
