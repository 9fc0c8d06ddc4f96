package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/gql"
	"sealed-mail/internal/rfc822"
)

// sealedHeader は rfc822Header に封印されているJSON。
type sealedHeader struct {
	From           []string `json:"from"`
	To             []string `json:"to"`
	Cc             []string `json:"cc"`
	Bcc            []string `json:"bcc"`
	ReplyTo        []string `json:"replyTo"`
	Subject        *string  `json:"subject"`
	HasAttachments bool     `json:"hasAttachments"`
	InReplyTo      *string  `json:"inReplyTo"`
	References     []string `json:"references"`
}

// Unsealer はGraphQLの封印済みフラグメントからドメインオブジェクトを復元する。
type Unsealer struct {
	sealing    *SealingService
	keyManager KeyManager
}

// NewUnsealer は新しいUnsealerを生成する。
func NewUnsealer(sealing *SealingService, keyManager KeyManager) *Unsealer {
	return &Unsealer{sealing: sealing, keyManager: keyManager}
}

func (u *Unsealer) unsealOptional(ctx context.Context, attr *gql.SealedAttribute) (*string, error) {
	if attr == nil {
		return nil, nil
	}
	v, err := u.sealing.UnsealAttribute(ctx, attr.Domain())
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// UnsealEmailFolder はカスタムフォルダ名を開封する。
func (u *Unsealer) UnsealEmailFolder(ctx context.Context, f gql.EmailFolder) (domain.EmailFolder, error) {
	name, err := u.unsealOptional(ctx, f.CustomFolderName)
	if err != nil {
		return domain.EmailFolder{}, fmt.Errorf("unsealing folder %s: %w", f.ID, err)
	}
	return domain.EmailFolder{
		ID:               f.ID,
		Owner:            f.Owner,
		Owners:           gql.DomainOwners(f.Owners),
		EmailAddressID:   f.EmailAddressID,
		FolderName:       f.FolderName,
		CustomFolderName: name,
		Size:             f.Size,
		UnseenCount:      f.UnseenCount,
		TTL:              f.TTL,
		Version:          f.Version,
		CreatedAt:        gql.EpochMs(f.CreatedAtEpochMs),
		UpdatedAt:        gql.EpochMs(f.UpdatedAtEpochMs),
	}, nil
}

func partialEmailFolder(f gql.EmailFolder) domain.PartialEmailFolder {
	return domain.PartialEmailFolder{
		ID:             f.ID,
		Owner:          f.Owner,
		Owners:         gql.DomainOwners(f.Owners),
		EmailAddressID: f.EmailAddressID,
		FolderName:     f.FolderName,
		Size:           f.Size,
		UnseenCount:    f.UnseenCount,
		TTL:            f.TTL,
		Version:        f.Version,
		CreatedAt:      gql.EpochMs(f.CreatedAtEpochMs),
		UpdatedAt:      gql.EpochMs(f.UpdatedAtEpochMs),
	}
}

// UnsealEmailAddress は別名と配下フォルダを開封する。
func (u *Unsealer) UnsealEmailAddress(ctx context.Context, a gql.EmailAddress) (domain.EmailAddress, error) {
	alias, err := u.unsealOptional(ctx, a.Alias)
	if err != nil {
		return domain.EmailAddress{}, fmt.Errorf("unsealing alias of %s: %w", a.ID, err)
	}
	folders := make([]domain.EmailFolder, 0, len(a.Folders))
	for _, f := range a.Folders {
		folder, err := u.UnsealEmailFolder(ctx, f)
		if err != nil {
			return domain.EmailAddress{}, err
		}
		folders = append(folders, folder)
	}
	return domain.EmailAddress{
		ID:                    a.ID,
		Owner:                 a.Owner,
		Owners:                gql.DomainOwners(a.Owners),
		EmailAddress:          a.EmailAddress,
		Size:                  a.Size,
		NumberOfEmailMessages: a.NumberOfEmailMessages,
		Version:               a.Version,
		CreatedAt:             gql.EpochMs(a.CreatedAtEpochMs),
		UpdatedAt:             gql.EpochMs(a.UpdatedAtEpochMs),
		LastReceivedAt:        gql.EpochMsPtr(a.LastReceivedAtEpochMs),
		Alias:                 alias,
		Folders:               folders,
	}, nil
}

func partialEmailAddress(a gql.EmailAddress) domain.PartialEmailAddress {
	return domain.PartialEmailAddress{
		ID:                    a.ID,
		Owner:                 a.Owner,
		Owners:                gql.DomainOwners(a.Owners),
		EmailAddress:          a.EmailAddress,
		Size:                  a.Size,
		NumberOfEmailMessages: a.NumberOfEmailMessages,
		Version:               a.Version,
		CreatedAt:             gql.EpochMs(a.CreatedAtEpochMs),
		UpdatedAt:             gql.EpochMs(a.UpdatedAtEpochMs),
		LastReceivedAt:        gql.EpochMsPtr(a.LastReceivedAtEpochMs),
	}
}

// UnsealEmailMessage は封印されたRFC 822ヘッダを開封してメッセージを復元する。
func (u *Unsealer) UnsealEmailMessage(ctx context.Context, m gql.SealedEmailMessage) (domain.EmailMessage, error) {
	raw, err := u.sealing.UnsealAttribute(ctx, m.RFC822Header.Domain())
	if err != nil {
		return domain.EmailMessage{}, fmt.Errorf("unsealing header of %s: %w", m.ID, err)
	}
	var h sealedHeader
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		return domain.EmailMessage{}, fmt.Errorf("decoding header of %s: %w", m.ID, err)
	}

	p := partialEmailMessage(m)
	return domain.EmailMessage{
		ID:               p.ID,
		ClientRefID:      p.ClientRefID,
		Owner:            p.Owner,
		Owners:           p.Owners,
		EmailAddressID:   p.EmailAddressID,
		FolderID:         p.FolderID,
		PreviousFolderID: p.PreviousFolderID,
		Seen:             p.Seen,
		RepliedTo:        p.RepliedTo,
		Forwarded:        p.Forwarded,
		Direction:        p.Direction,
		State:            p.State,
		Version:          p.Version,
		SortDate:         p.SortDate,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Size:             p.Size,
		EncryptionStatus: p.EncryptionStatus,
		Date:             p.Date,
		From:             lenientAddresses(h.From),
		To:               lenientAddresses(h.To),
		Cc:               lenientAddresses(h.Cc),
		Bcc:              lenientAddresses(h.Bcc),
		ReplyTo:          lenientAddresses(h.ReplyTo),
		Subject:          h.Subject,
		HasAttachments:   h.HasAttachments,
		InReplyTo:        h.InReplyTo,
		References:       h.References,
	}, nil
}

func partialEmailMessage(m gql.SealedEmailMessage) domain.PartialEmailMessage {
	encryptionStatus := domain.EncryptionStatus(m.EncryptionStatus)
	if encryptionStatus == "" {
		encryptionStatus = domain.EncryptionStatusUnencrypted
	}
	return domain.PartialEmailMessage{
		ID:               m.ID,
		ClientRefID:      m.ClientRefID,
		Owner:            m.Owner,
		Owners:           gql.DomainOwners(m.Owners),
		EmailAddressID:   m.EmailAddressID,
		FolderID:         m.FolderID,
		PreviousFolderID: m.PreviousFolderID,
		Seen:             m.Seen,
		RepliedTo:        m.RepliedTo,
		Forwarded:        m.Forwarded,
		Direction:        domain.Direction(m.Direction),
		State:            domain.State(m.State),
		Version:          m.Version,
		SortDate:         gql.EpochMs(m.SortDateEpochMs),
		CreatedAt:        gql.EpochMs(m.CreatedAtEpochMs),
		UpdatedAt:        gql.EpochMs(m.UpdatedAtEpochMs),
		Size:             m.Size,
		EncryptionStatus: encryptionStatus,
		Date:             gql.EpochMsPtr(m.DateEpochMs),
	}
}

// lenientAddresses は解析できないアドレスを表示名なしの文字列として残す。
func lenientAddresses(list []string) []domain.EmailMessageAddress {
	if len(list) == 0 {
		return nil
	}
	out := make([]domain.EmailMessageAddress, 0, len(list))
	for _, s := range list {
		a, err := rfc822.ParseAddress(s)
		if err != nil {
			a = domain.EmailMessageAddress{EmailAddress: s}
		}
		out = append(out, a)
	}
	return out
}

// UnsealBlockedAddress はブロックリストの1項目を開封する。
// 開封の失敗は項目の Status に記録し、エラーを返すのはキャンセル時のみ。
func (u *Unsealer) UnsealBlockedAddress(ctx context.Context, b gql.BlockedAddress) (domain.UnsealedBlockedAddress, error) {
	out := domain.UnsealedBlockedAddress{
		HashedBlockedValue: b.HashedBlockedValue,
		Action:             domain.BlockedEmailAddressAction(b.Action),
		EmailAddressID:     b.EmailAddressID,
	}
	if out.Action == "" {
		out.Action = domain.BlockedEmailAddressActionDrop
	}

	fail := func(err error) (domain.UnsealedBlockedAddress, error) {
		if isCancellation(err) {
			return domain.UnsealedBlockedAddress{}, err
		}
		out.Status = domain.BlockedAddressStatus{
			Kind: domain.BlockedAddressFailed,
			Err:  translate(domain.DomainBlocklist, err),
		}
		return out, nil
	}

	if b.SealedValue.Algorithm == domain.AlgorithmAESCBCPKCS7 {
		exists, err := u.keyManager.SymmetricKeyExists(ctx, b.SealedValue.KeyID)
		if err != nil {
			return fail(err)
		}
		if !exists {
			return fail(fmt.Errorf("%w: symmetric key %q", domain.ErrKeyNotFound, b.SealedValue.KeyID))
		}
	}

	address, err := u.sealing.UnsealAttribute(ctx, b.SealedValue.Domain())
	if err != nil {
		return fail(err)
	}
	out.Address = address
	out.Status = domain.BlockedAddressStatus{Kind: domain.BlockedAddressCompleted}
	return out, nil
}
