package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/gql"
	"sealed-mail/internal/middleware"
	"sealed-mail/internal/rfc822"
)

type (
	emailMessageList     = domain.ListAPIResult[domain.EmailMessage, domain.PartialEmailMessage]
	updateMessagesResult = domain.BatchOperationResult[domain.UpdatedEmailMessageSuccess, domain.EmailMessageOperationFailureResult]
	deleteMessagesResult = domain.BatchOperationResult[domain.DeleteEmailMessageSuccessResult, domain.EmailMessageOperationFailureResult]
)

// SendEmailMessage はメッセージをRFC 822形式に組み立てて送信する。
// 組み立てたデータは一時バケットにアップロードし、送信後に削除する。
func (c *EmailClient) SendEmailMessage(ctx context.Context, in domain.SendEmailMessageInput) (domain.SendEmailMessageResult, error) {
	const d = domain.DomainMessage
	if in.SenderEmailAddressID == "" {
		return domain.SendEmailMessageResult{}, invalidInput(d, "sender email address id is required")
	}

	msg := rfc822.FromSendInput(in, c.now())
	if msg.RecipientCount() == 0 {
		return domain.SendEmailMessageResult{}, invalidInput(d, "at least one recipient is required")
	}

	cfg, err := c.GetConfigurationData(ctx)
	if err != nil {
		return domain.SendEmailMessageResult{}, err
	}
	if exceedsLimit(msg.RecipientCount(), cfg.EmailMessageRecipientsLimit) {
		return domain.SendEmailMessageResult{}, domain.NewError(d, domain.ErrLimitExceeded,
			fmt.Sprintf("%d recipients exceeds the limit of %d", msg.RecipientCount(), cfg.EmailMessageRecipientsLimit), nil)
	}

	data, err := rfc822.Build(msg)
	if err != nil {
		return domain.SendEmailMessageResult{}, domain.NewError(d, domain.ErrInvalidEmailContents, "", err)
	}
	if exceedsLimit(len(data), cfg.EmailMessageMaxOutboundMessageSize) {
		return domain.SendEmailMessageResult{}, domain.NewError(d, domain.ErrMessageSizeLimitExceeded,
			fmt.Sprintf("%d bytes exceeds the limit of %d", len(data), cfg.EmailMessageMaxOutboundMessageSize), nil)
	}

	prefix, err := c.emailObjectPrefix(ctx, in.SenderEmailAddressID)
	if err != nil {
		return domain.SendEmailMessageResult{}, translate(d, err)
	}
	key := path.Join(prefix, uuid.New().String())
	if err := c.transientStore.Upload(ctx, key, data, nil); err != nil {
		return domain.SendEmailMessageResult{}, translate(d, err)
	}
	defer func() {
		if err := c.transientStore.Delete(context.WithoutCancel(ctx), key); err != nil {
			slog.WarnContext(ctx, "failed to remove outbound message object",
				"operation", "send_email_message",
				"key", key,
				"error", err,
			)
		}
	}()

	req := gql.SendEmailMessageInput{
		EmailAddressID: in.SenderEmailAddressID,
		Message: gql.S3EmailObjectInput{
			Bucket: c.transientStore.Bucket(),
			Key:    key,
			Region: c.transientStore.Region(),
		},
		ClientRefID:         uuid.New().String(),
		ReplyingMessageID:   in.ReplyingMessageID,
		ForwardingMessageID: in.ForwardingMessageID,
	}
	var resp gql.SendEmailMessageResponse
	err = c.api.Mutate(ctx, gql.SendEmailMessageMutation, input(req), &resp)
	middleware.WriteAuditLog(ctx, "send_email_message", in.SenderEmailAddressID, middleware.ResultOf(err))
	if err != nil {
		return domain.SendEmailMessageResult{}, translate(d, err)
	}
	return domain.SendEmailMessageResult{
		ID:        resp.SendEmailMessage.ID,
		CreatedAt: gql.EpochMs(resp.SendEmailMessage.CreatedAtEpochMs),
	}, nil
}

// GetEmailMessage はメッセージを取得する。存在しない場合はnilを返す。
func (c *EmailClient) GetEmailMessage(ctx context.Context, id string) (*domain.EmailMessage, error) {
	const d = domain.DomainMessage
	var resp gql.GetEmailMessageResponse
	if err := c.api.Query(ctx, gql.GetEmailMessageQuery, map[string]any{"id": id}, &resp); err != nil {
		return nil, translate(d, err)
	}
	if resp.GetEmailMessage == nil {
		return nil, nil
	}
	msg, err := c.unsealer.UnsealEmailMessage(ctx, *resp.GetEmailMessage)
	if err != nil {
		return nil, translate(d, err)
	}
	return &msg, nil
}

// GetEmailMessageRFC822Data はメッセージ本文をダウンロードして開封する。存在しない場合はnilを返す。
func (c *EmailClient) GetEmailMessageRFC822Data(ctx context.Context, in domain.GetEmailMessageRFC822DataInput) (*domain.EmailMessageRFC822Data, error) {
	const d = domain.DomainMessage
	if in.ID == "" || in.EmailAddressID == "" {
		return nil, invalidInput(d, "message id and email address id are required")
	}

	prefix, err := c.emailObjectPrefix(ctx, in.EmailAddressID)
	if err != nil {
		return nil, translate(d, err)
	}
	sealed, info, err := c.emailStore.Download(ctx, path.Join(prefix, in.ID))
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
	return &domain.EmailMessageRFC822Data{ID: in.ID, RFC822Data: data}, nil
}

// unsealObject はメタデータの鍵IDとアルゴリズムでオブジェクトを開封し、必要に応じて展開する。
func (c *EmailClient) unsealObject(ctx context.Context, sealed []byte, metadata map[string]string) ([]byte, error) {
	keyID := metadata[domain.MetadataKeyID]
	if keyID == "" {
		return nil, fmt.Errorf("%w: object has no key id", domain.ErrMalformedSealedData)
	}

	var (
		data []byte
		err  error
	)
	switch algorithm := metadata[domain.MetadataAlgorithm]; algorithm {
	case "", domain.AlgorithmAESCBCPKCS7:
		data, err = c.sealing.UnsealString(ctx, keyID, sealed)
	case domain.AlgorithmRSAPKCS1, domain.AlgorithmRSAOAEP:
		data, err = c.sealing.UnsealWithPrivateKey(ctx, keyID, algorithm, sealed)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedAlgorithm, algorithm)
	}
	if err != nil {
		return nil, err
	}

	if strings.Contains(metadata[domain.MetadataContentEncoding], "gzip") {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedSealedData, err)
		}
		defer zr.Close()
		if data, err = io.ReadAll(zr); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrMalformedSealedData, err)
		}
	}
	return data, nil
}

func toDateRangeInput(r *domain.EmailMessageDateRange) (*gql.EmailMessageDateRangeInput, error) {
	if r == nil {
		return nil, nil
	}
	if r.SortDate != nil && r.UpdatedAt != nil {
		return nil, invalidInput(domain.DomainMessage, "only one of sort date and updated at can be specified")
	}
	if r.SortDate == nil && r.UpdatedAt == nil {
		return nil, nil
	}
	convert := func(dr *domain.DateRange) (*gql.DateRangeInput, error) {
		if dr == nil {
			return nil, nil
		}
		if dr.Start.After(dr.End) {
			return nil, invalidInput(domain.DomainMessage, "date range start is after end")
		}
		return &gql.DateRangeInput{
			StartDateEpochMs: gql.ToEpochMs(dr.Start),
			EndDateEpochMs:   gql.ToEpochMs(dr.End),
		}, nil
	}
	sortDate, err := convert(r.SortDate)
	if err != nil {
		return nil, err
	}
	updatedAt, err := convert(r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &gql.EmailMessageDateRangeInput{SortDateEpochMs: sortDate, UpdatedAtEpochMs: updatedAt}, nil
}

func toListEmailMessagesInput(in domain.ListEmailMessagesInput) (gql.ListEmailMessagesInput, error) {
	dateRange, err := toDateRangeInput(in.DateRange)
	if err != nil {
		return gql.ListEmailMessagesInput{}, err
	}
	return gql.ListEmailMessagesInput{
		EmailAddressID:         in.EmailAddressID,
		FolderID:               in.FolderID,
		SpecifiedDateRange:     dateRange,
		SortOrder:              string(in.SortOrder),
		IncludeDeletedMessages: in.IncludeDeletedMessages,
		Limit:                  in.Limit,
		NextToken:              in.NextToken,
	}, nil
}

func (c *EmailClient) assembleEmailMessages(ctx context.Context, conn gql.SealedEmailMessageConnection) (emailMessageList, error) {
	result, err := assembleListResult(ctx, conn.Items, conn.NextToken, c.unsealer.UnsealEmailMessage, partialEmailMessage)
	if err != nil {
		return result, translate(domain.DomainMessage, err)
	}
	return result, nil
}

// ListEmailMessages はユーザーの全メッセージを一覧する。
func (c *EmailClient) ListEmailMessages(ctx context.Context, in domain.ListEmailMessagesInput) (emailMessageList, error) {
	in.EmailAddressID, in.FolderID = "", ""
	req, err := toListEmailMessagesInput(in)
	if err != nil {
		return emailMessageList{}, err
	}
	var resp gql.ListEmailMessagesResponse
	if err := c.api.Query(ctx, gql.ListEmailMessagesQuery, input(req), &resp); err != nil {
		return emailMessageList{}, translate(domain.DomainMessage, err)
	}
	return c.assembleEmailMessages(ctx, resp.ListEmailMessages)
}

// ListEmailMessagesForEmailAddressID はアドレス宛てのメッセージを一覧する。
func (c *EmailClient) ListEmailMessagesForEmailAddressID(ctx context.Context, in domain.ListEmailMessagesInput) (emailMessageList, error) {
	if in.EmailAddressID == "" {
		return emailMessageList{}, invalidInput(domain.DomainMessage, "email address id is required")
	}
	in.FolderID = ""
	req, err := toListEmailMessagesInput(in)
	if err != nil {
		return emailMessageList{}, err
	}
	var resp gql.ListEmailMessagesForEmailAddressIDResponse
	if err := c.api.Query(ctx, gql.ListEmailMessagesForEmailAddressIDQuery, input(req), &resp); err != nil {
		return emailMessageList{}, translate(domain.DomainMessage, err)
	}
	return c.assembleEmailMessages(ctx, resp.ListEmailMessagesForEmailAddressID)
}

// ListEmailMessagesForEmailFolderID はフォルダ内のメッセージを一覧する。
func (c *EmailClient) ListEmailMessagesForEmailFolderID(ctx context.Context, in domain.ListEmailMessagesInput) (emailMessageList, error) {
	if in.FolderID == "" {
		return emailMessageList{}, invalidInput(domain.DomainMessage, "folder id is required")
	}
	in.EmailAddressID = ""
	req, err := toListEmailMessagesInput(in)
	if err != nil {
		return emailMessageList{}, err
	}
	var resp gql.ListEmailMessagesForEmailFolderIDResponse
	if err := c.api.Query(ctx, gql.ListEmailMessagesForEmailFolderIDQuery, input(req), &resp); err != nil {
		return emailMessageList{}, translate(domain.DomainMessage, err)
	}
	return c.assembleEmailMessages(ctx, resp.ListEmailMessagesForEmailFolderID)
}

// dedupe は順序を保ったまま重複を取り除く。
// exceedsLimit はサーバ設定の上限を超えているかを返す。0 以下の上限は無制限を表す。
func exceedsLimit(n, limit int) bool {
	return limit > 0 && n > limit
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func toFailureResult(f gql.EmailMessageOperationFailure) domain.EmailMessageOperationFailureResult {
	return domain.EmailMessageOperationFailureResult{ID: f.ID, ErrorType: f.ErrorType}
}

// UpdateEmailMessages はメッセージを一括更新する。
// 件数がサーバ設定の上限を超える場合は更新を要求せずに LimitExceeded を返す。
func (c *EmailClient) UpdateEmailMessages(ctx context.Context, in domain.UpdateEmailMessagesInput) (updateMessagesResult, error) {
	const d = domain.DomainMessage
	ids := dedupe(in.IDs)
	if len(ids) == 0 {
		return updateMessagesResult{}, invalidInput(d, "at least one message id is required")
	}

	cfg, err := c.GetConfigurationData(ctx)
	if err != nil {
		return updateMessagesResult{}, err
	}
	if exceedsLimit(len(ids), cfg.UpdateEmailMessagesLimit) {
		return updateMessagesResult{}, domain.NewError(d, domain.ErrLimitExceeded,
			fmt.Sprintf("input cannot exceed %d", cfg.UpdateEmailMessagesLimit), nil)
	}

	req := gql.UpdateEmailMessagesInput{
		MessageIDs: ids,
		Values:     gql.UpdateEmailMessagesValues{FolderID: in.Values.FolderID, Seen: in.Values.Seen},
	}
	var resp gql.UpdateEmailMessagesResponse
	if err := c.api.Mutate(ctx, gql.UpdateEmailMessagesMutation, input(req), &resp); err != nil {
		middleware.WriteAuditLog(ctx, "update_email_messages", strings.Join(ids, ","), middleware.ResultFailure)
		return updateMessagesResult{}, translate(d, err)
	}

	r := resp.UpdateEmailMessages
	result, err := assembleBatchResult(d, r.Status, r.SuccessMessages, r.FailedMessages,
		func(s gql.UpdatedEmailMessageSuccess) domain.UpdatedEmailMessageSuccess {
			return domain.UpdatedEmailMessageSuccess{
				ID:        s.ID,
				CreatedAt: gql.EpochMs(s.CreatedAtEpochMs),
				UpdatedAt: gql.EpochMs(s.UpdatedAtEpochMs),
			}
		},
		toFailureResult,
	)
	middleware.WriteAuditLog(ctx, "update_email_messages", strings.Join(ids, ","), batchAuditResult(result.Status, err))
	return result, err
}

// DeleteEmailMessages はメッセージを一括削除する。
// 件数がサーバ設定の上限を超える場合は削除を要求せずに LimitExceeded を返す。
func (c *EmailClient) DeleteEmailMessages(ctx context.Context, ids []string) (deleteMessagesResult, error) {
	const d = domain.DomainMessage
	ids = dedupe(ids)
	if len(ids) == 0 {
		return deleteMessagesResult{}, invalidInput(d, "at least one message id is required")
	}

	cfg, err := c.GetConfigurationData(ctx)
	if err != nil {
		return deleteMessagesResult{}, err
	}
	if exceedsLimit(len(ids), cfg.DeleteEmailMessagesLimit) {
		return deleteMessagesResult{}, domain.NewError(d, domain.ErrLimitExceeded,
			fmt.Sprintf("input cannot exceed %d", cfg.DeleteEmailMessagesLimit), nil)
	}

	var resp gql.DeleteEmailMessagesResponse
	if err := c.api.Mutate(ctx, gql.DeleteEmailMessagesMutation, input(gql.DeleteEmailMessagesInput{MessageIDs: ids}), &resp); err != nil {
		middleware.WriteAuditLog(ctx, "delete_email_messages", strings.Join(ids, ","), middleware.ResultFailure)
		return deleteMessagesResult{}, translate(d, err)
	}

	r := resp.DeleteEmailMessages
	result, err := assembleBatchResult(d, r.Status, r.SuccessMessages, r.FailedMessages,
		func(s gql.EmailMessageDeleteSuccess) domain.DeleteEmailMessageSuccessResult {
			return domain.DeleteEmailMessageSuccessResult{ID: s.ID}
		},
		toFailureResult,
	)
	middleware.WriteAuditLog(ctx, "delete_email_messages", strings.Join(ids, ","), batchAuditResult(result.Status, err))
	return result, err
}

// DeleteEmailMessage は1件のメッセージを削除する。削除できなかった場合はnilを返す。
func (c *EmailClient) DeleteEmailMessage(ctx context.Context, id string) (*domain.DeleteEmailMessageSuccessResult, error) {
	result, err := c.DeleteEmailMessages(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if result.Status != domain.BatchOperationStatusSuccess {
		return nil, nil
	}
	return &domain.DeleteEmailMessageSuccessResult{ID: id}, nil
}
