package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"path"

	"github.com/google/uuid"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/gql"
	"sealed-mail/internal/middleware"
)

type (
	deleteDraftsResult  = domain.BatchOperationResult[string, domain.EmailMessageOperationFailureResult]
	scheduledDraftsList = domain.ListAPIResult[domain.ScheduledDraftMessage, domain.ScheduledDraftMessage]
)

func (c *EmailClient) requireEmailAddress(ctx context.Context, id string) error {
	address, err := c.GetEmailAddress(ctx, id)
	if err != nil {
		return err
	}
	if address == nil {
		return domain.NewError(domain.DomainAddress, domain.ErrNotFound, "email address "+id, nil)
	}
	return nil
}

// storeDraft は下書きを現在の共通鍵で封印して一時バケットに保存する。
func (c *EmailClient) storeDraft(ctx context.Context, emailAddressID, draftID string, rfc822Data []byte) error {
	keyID, err := c.ensureSymmetricKey(ctx)
	if err != nil {
		return err
	}
	sealed, err := c.sealing.SealString(ctx, keyID, rfc822Data)
	if err != nil {
		return err
	}
	key, err := c.draftKey(ctx, emailAddressID, draftID)
	if err != nil {
		return err
	}
	return c.transientStore.Upload(ctx, key, sealed, map[string]string{
		domain.MetadataKeyID:     keyID,
		domain.MetadataAlgorithm: domain.AlgorithmAESCBCPKCS7,
	})
}

// CreateDraftEmailMessage は下書きを作成し、下書きIDを返す。
func (c *EmailClient) CreateDraftEmailMessage(ctx context.Context, in domain.CreateDraftEmailMessageInput) (string, error) {
	const d = domain.DomainMessage
	if in.SenderEmailAddressID == "" {
		return "", invalidInput(d, "sender email address id is required")
	}
	if err := c.requireEmailAddress(ctx, in.SenderEmailAddressID); err != nil {
		return "", err
	}

	draftID := uuid.New().String()
	err := c.storeDraft(ctx, in.SenderEmailAddressID, draftID, in.RFC822Data)
	middleware.WriteAuditLog(ctx, "create_draft_email_message", draftID, middleware.ResultOf(err))
	if err != nil {
		return "", translate(d, err)
	}
	return draftID, nil
}

// UpdateDraftEmailMessage は既存の下書きを置き換える。
func (c *EmailClient) UpdateDraftEmailMessage(ctx context.Context, in domain.UpdateDraftEmailMessageInput) (string, error) {
	const d = domain.DomainMessage
	if in.ID == "" || in.SenderEmailAddressID == "" {
		return "", invalidInput(d, "draft id and sender email address id are required")
	}
	if err := c.requireEmailAddress(ctx, in.SenderEmailAddressID); err != nil {
		return "", err
	}

	key, err := c.draftKey(ctx, in.SenderEmailAddressID, in.ID)
	if err != nil {
		return "", translate(d, err)
	}
	if _, err := c.transientStore.GetObjectMetadata(ctx, key); err != nil {
		return "", translate(d, err)
	}

	err = c.storeDraft(ctx, in.SenderEmailAddressID, in.ID, in.RFC822Data)
	middleware.WriteAuditLog(ctx, "update_draft_email_message", in.ID, middleware.ResultOf(err))
	if err != nil {
		return "", translate(d, err)
	}
	return in.ID, nil
}

// GetDraftEmailMessage は下書きを取得して開封する。存在しない場合はnilを返す。
func (c *EmailClient) GetDraftEmailMessage(ctx context.Context, id, emailAddressID string) (*domain.DraftEmailMessage, error) {
	const d = domain.DomainMessage
	if id == "" || emailAddressID == "" {
		return nil, invalidInput(d, "draft id and email address id are required")
	}

	key, err := c.draftKey(ctx, emailAddressID, id)
	if err != nil {
		return nil, translate(d, err)
	}
	sealed, info, err := c.transientStore.Download(ctx, key)
	if errors.Is(err, domain.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translate(d, err)
	}

	data, err := c.unsealObject(ctx, sealed, info.Metadata)
	if err != nil {
		return nil, translate(d, err)
	}
	return &domain.DraftEmailMessage{
		DraftEmailMessageMetadata: domain.DraftEmailMessageMetadata{
			ID:             id,
			EmailAddressID: emailAddressID,
			UpdatedAt:      info.LastModified,
		},
		RFC822Data: data,
	}, nil
}

// ListDraftEmailMessageMetadataForEmailAddressID はアドレスの下書きメタデータを一覧する。
func (c *EmailClient) ListDraftEmailMessageMetadataForEmailAddressID(ctx context.Context, emailAddressID string) ([]domain.DraftEmailMessageMetadata, error) {
	const d = domain.DomainMessage
	if emailAddressID == "" {
		return nil, invalidInput(d, "email address id is required")
	}
	prefix, err := c.draftPrefix(ctx, emailAddressID)
	if err != nil {
		return nil, translate(d, err)
	}
	objects, err := c.transientStore.List(ctx, prefix)
	if err != nil {
		return nil, translate(d, err)
	}

	out := make([]domain.DraftEmailMessageMetadata, 0, len(objects))
	for _, o := range objects {
		out = append(out, domain.DraftEmailMessageMetadata{
			ID:             path.Base(o.Key),
			EmailAddressID: emailAddressID,
			UpdatedAt:      o.LastModified,
		})
	}
	return out, nil
}

// ListDraftEmailMessageMetadata はユーザーの全アドレスの下書きメタデータを一覧する。
func (c *EmailClient) ListDraftEmailMessageMetadata(ctx context.Context) ([]domain.DraftEmailMessageMetadata, error) {
	var (
		ids       []string
		nextToken *string
	)
	for {
		page, err := c.ListEmailAddresses(ctx, domain.ListInput{NextToken: nextToken})
		if err != nil {
			return nil, err
		}
		for _, a := range page.Items {
			ids = append(ids, a.ID)
		}
		for _, f := range page.Failed {
			ids = append(ids, f.Partial.ID)
		}
		if page.NextToken == nil {
			break
		}
		nextToken = page.NextToken
	}

	var out []domain.DraftEmailMessageMetadata
	for _, id := range ids {
		metadata, err := c.ListDraftEmailMessageMetadataForEmailAddressID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, metadata...)
	}
	return out, nil
}

// ListDraftEmailMessagesForEmailAddressID はアドレスの下書きを全て取得して開封する。
func (c *EmailClient) ListDraftEmailMessagesForEmailAddressID(ctx context.Context, emailAddressID string) ([]domain.DraftEmailMessage, error) {
	metadata, err := c.ListDraftEmailMessageMetadataForEmailAddressID(ctx, emailAddressID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DraftEmailMessage, 0, len(metadata))
	for _, m := range metadata {
		draft, err := c.GetDraftEmailMessage(ctx, m.ID, emailAddressID)
		if err != nil {
			return nil, err
		}
		if draft != nil {
			out = append(out, *draft)
		}
	}
	return out, nil
}

// DeleteDraftEmailMessages は下書きを一括削除する。
func (c *EmailClient) DeleteDraftEmailMessages(ctx context.Context, in domain.DeleteDraftEmailMessagesInput) (deleteDraftsResult, error) {
	const d = domain.DomainMessage
	ids := dedupe(in.IDs)
	if len(ids) == 0 || in.EmailAddressID == "" {
		return deleteDraftsResult{}, invalidInput(d, "draft ids and email address id are required")
	}
	if err := c.requireEmailAddress(ctx, in.EmailAddressID); err != nil {
		return deleteDraftsResult{}, err
	}

	var (
		successes []string
		failures  []domain.EmailMessageOperationFailureResult
	)
	for _, id := range ids {
		key, err := c.draftKey(ctx, in.EmailAddressID, id)
		if err == nil {
			err = c.transientStore.Delete(ctx, key)
		}
		if isCancellation(err) {
			return deleteDraftsResult{}, err
		}
		if err != nil {
			failures = append(failures, domain.EmailMessageOperationFailureResult{ID: id, ErrorType: err.Error()})
			continue
		}
		successes = append(successes, id)
	}

	result := batchFromOutcomes(successes, failures)
	middleware.WriteAuditLog(ctx, "delete_draft_email_messages", in.EmailAddressID, batchAuditResult(result.Status, nil))
	return result, nil
}

func toScheduledDraftMessage(m gql.ScheduledDraftMessage) domain.ScheduledDraftMessage {
	return domain.ScheduledDraftMessage{
		ID:             path.Base(m.DraftMessageKey),
		EmailAddressID: m.EmailAddressID,
		Owner:          m.Owner,
		Owners:         gql.DomainOwners(m.Owners),
		SendAt:         gql.EpochMs(m.SendAtEpochMs),
		State:          domain.ScheduledDraftMessageState(m.State),
		CreatedAt:      gql.EpochMs(m.CreatedAtEpochMs),
		UpdatedAt:      gql.EpochMs(m.UpdatedAtEpochMs),
	}
}

// ScheduleSendDraftMessage は下書きの予約送信を登録する。
// バックエンドが送信時に下書きを開封できるよう、下書きを封印した共通鍵を渡す。
func (c *EmailClient) ScheduleSendDraftMessage(ctx context.Context, in domain.ScheduleSendDraftMessageInput) (domain.ScheduledDraftMessage, error) {
	const d = domain.DomainMessage
	if in.ID == "" || in.EmailAddressID == "" {
		return domain.ScheduledDraftMessage{}, invalidInput(d, "draft id and email address id are required")
	}
	if !in.SendAt.After(c.now()) {
		return domain.ScheduledDraftMessage{}, invalidInput(d, "send at must be in the future")
	}

	key, err := c.draftKey(ctx, in.EmailAddressID, in.ID)
	if err != nil {
		return domain.ScheduledDraftMessage{}, translate(d, err)
	}
	info, err := c.transientStore.GetObjectMetadata(ctx, key)
	if err != nil {
		return domain.ScheduledDraftMessage{}, translate(d, err)
	}
	keyID := info.Metadata[domain.MetadataKeyID]
	if keyID == "" {
		return domain.ScheduledDraftMessage{}, domain.NewError(d, domain.ErrKeyNotFound, "draft has no key id", nil)
	}
	symmetricKey, err := c.keyManager.GetSymmetricKeyData(ctx, keyID)
	if err != nil {
		return domain.ScheduledDraftMessage{}, translate(d, err)
	}

	req := gql.ScheduleSendDraftMessageInput{
		DraftMessageKey: key,
		EmailAddressID:  in.EmailAddressID,
		SendAtEpochMs:   gql.ToEpochMs(in.SendAt),
		SymmetricKey:    base64.StdEncoding.EncodeToString(symmetricKey),
	}
	var resp gql.ScheduleSendDraftMessageResponse
	err = c.api.Mutate(ctx, gql.ScheduleSendDraftMessageMutation, input(req), &resp)
	middleware.WriteAuditLog(ctx, "schedule_send_draft_message", in.ID, middleware.ResultOf(err))
	if err != nil {
		return domain.ScheduledDraftMessage{}, translate(d, err)
	}
	return toScheduledDraftMessage(resp.ScheduleSendDraftMessage), nil
}

// CancelScheduledDraftMessage は予約送信を取り消し、下書きIDを返す。
func (c *EmailClient) CancelScheduledDraftMessage(ctx context.Context, in domain.CancelScheduledDraftMessageInput) (string, error) {
	const d = domain.DomainMessage
	if in.ID == "" || in.EmailAddressID == "" {
		return "", invalidInput(d, "draft id and email address id are required")
	}
	key, err := c.draftKey(ctx, in.EmailAddressID, in.ID)
	if err != nil {
		return "", translate(d, err)
	}

	req := gql.CancelScheduledDraftMessageInput{DraftMessageKey: key, EmailAddressID: in.EmailAddressID}
	var resp gql.CancelScheduledDraftMessageResponse
	err = c.api.Mutate(ctx, gql.CancelScheduledDraftMessageMutation, input(req), &resp)
	middleware.WriteAuditLog(ctx, "cancel_scheduled_draft_message", in.ID, middleware.ResultOf(err))
	if err != nil {
		return "", translate(d, err)
	}
	return path.Base(resp.CancelScheduledDraftMessage), nil
}

// ListScheduledDraftMessagesForEmailAddressID はアドレスの予約送信を一覧する。
func (c *EmailClient) ListScheduledDraftMessagesForEmailAddressID(ctx context.Context, in domain.ListScheduledDraftMessagesInput) (scheduledDraftsList, error) {
	const d = domain.DomainMessage
	if in.EmailAddressID == "" {
		return scheduledDraftsList{}, invalidInput(d, "email address id is required")
	}

	req := gql.ListScheduledDraftMessagesForEmailAddressIDInput{
		EmailAddressID: in.EmailAddressID,
		Limit:          in.Limit,
		NextToken:      in.NextToken,
	}
	if len(in.States) > 0 {
		states := make([]string, 0, len(in.States))
		for _, s := range in.States {
			states = append(states, string(s))
		}
		req.Filter = &gql.ScheduledDraftMessageFilterInput{State: &gql.ScheduledDraftMessageStateFilter{In: states}}
	}

	var resp gql.ListScheduledDraftMessagesForEmailAddressIDResponse
	if err := c.api.Query(ctx, gql.ListScheduledDraftMessagesForEmailAddressIDQuery, input(req), &resp); err != nil {
		return scheduledDraftsList{}, translate(d, err)
	}

	conn := resp.ListScheduledDraftMessagesForEmailAddressID
	items := make([]domain.ScheduledDraftMessage, 0, len(conn.Items))
	for _, m := range conn.Items {
		items = append(items, toScheduledDraftMessage(m))
	}
	return domain.NewListSuccess[domain.ScheduledDraftMessage, domain.ScheduledDraftMessage](items, conn.NextToken), nil
}
