package usecase

import (
	"context"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/gql"
	"sealed-mail/internal/middleware"
)

// ListEmailFoldersForEmailAddressID はアドレス配下のフォルダを一覧する。
func (c *EmailClient) ListEmailFoldersForEmailAddressID(ctx context.Context, in domain.ListEmailFoldersInput) (domain.ListAPIResult[domain.EmailFolder, domain.PartialEmailFolder], error) {
	const d = domain.DomainFolder
	if in.EmailAddressID == "" {
		return domain.ListAPIResult[domain.EmailFolder, domain.PartialEmailFolder]{}, invalidInput(d, "email address id is required")
	}

	req := gql.ListEmailFoldersForEmailAddressIDInput{
		EmailAddressID: in.EmailAddressID,
		Limit:          in.Limit,
		NextToken:      in.NextToken,
	}
	var resp gql.ListEmailFoldersForEmailAddressIDResponse
	if err := c.api.Query(ctx, gql.ListEmailFoldersForEmailAddressIDQuery, input(req), &resp); err != nil {
		return domain.ListAPIResult[domain.EmailFolder, domain.PartialEmailFolder]{}, translate(d, err)
	}

	conn := resp.ListEmailFoldersForEmailAddressID
	result, err := assembleListResult(ctx, conn.Items, conn.NextToken, c.unsealer.UnsealEmailFolder, partialEmailFolder)
	if err != nil {
		return result, translate(d, err)
	}
	return result, nil
}

// CreateCustomEmailFolder はカスタムフォルダを作成する。フォルダ名は現在の共通鍵で封印する。
func (c *EmailClient) CreateCustomEmailFolder(ctx context.Context, in domain.CreateCustomEmailFolderInput) (domain.EmailFolder, error) {
	const d = domain.DomainFolder
	if in.EmailAddressID == "" || in.CustomFolderName == "" {
		return domain.EmailFolder{}, invalidInput(d, "email address id and folder name are required")
	}

	name, err := c.sealWithCurrentKey(ctx, in.CustomFolderName)
	if err != nil {
		return domain.EmailFolder{}, translate(d, err)
	}

	req := gql.CreateCustomEmailFolderInput{EmailAddressID: in.EmailAddressID, CustomFolderName: name}
	var resp gql.CreateCustomEmailFolderResponse
	err = c.api.Mutate(ctx, gql.CreateCustomEmailFolderMutation, input(req), &resp)
	middleware.WriteAuditLog(ctx, "create_custom_email_folder", in.EmailAddressID, middleware.ResultOf(err))
	if err != nil {
		return domain.EmailFolder{}, translate(d, err)
	}

	folder, err := c.unsealer.UnsealEmailFolder(ctx, resp.CreateCustomEmailFolder)
	if err != nil {
		return domain.EmailFolder{}, translate(d, err)
	}
	return folder, nil
}

// DeleteCustomEmailFolder はカスタムフォルダを削除する。存在しない場合はnilを返す。
func (c *EmailClient) DeleteCustomEmailFolder(ctx context.Context, emailFolderID, emailAddressID string) (*domain.EmailFolder, error) {
	const d = domain.DomainFolder
	if emailFolderID == "" || emailAddressID == "" {
		return nil, invalidInput(d, "email folder id and email address id are required")
	}

	req := gql.DeleteCustomEmailFolderInput{EmailFolderID: emailFolderID, EmailAddressID: emailAddressID}
	var resp gql.DeleteCustomEmailFolderResponse
	err := c.api.Mutate(ctx, gql.DeleteCustomEmailFolderMutation, input(req), &resp)
	middleware.WriteAuditLog(ctx, "delete_custom_email_folder", emailFolderID, middleware.ResultOf(err))
	if err != nil {
		return nil, translate(d, err)
	}
	if resp.DeleteCustomEmailFolder == nil {
		return nil, nil
	}

	folder, err := c.unsealer.UnsealEmailFolder(ctx, *resp.DeleteCustomEmailFolder)
	if err != nil {
		return nil, translate(d, err)
	}
	return &folder, nil
}

// UpdateCustomEmailFolder はカスタムフォルダ名を更新する。
func (c *EmailClient) UpdateCustomEmailFolder(ctx context.Context, in domain.UpdateCustomEmailFolderInput) (domain.EmailFolder, error) {
	const d = domain.DomainFolder
	if in.EmailFolderID == "" || in.EmailAddressID == "" {
		return domain.EmailFolder{}, invalidInput(d, "email folder id and email address id are required")
	}

	req := gql.UpdateCustomEmailFolderInput{EmailFolderID: in.EmailFolderID, EmailAddressID: in.EmailAddressID}
	if in.CustomFolderName != nil {
		name, err := c.sealWithCurrentKey(ctx, *in.CustomFolderName)
		if err != nil {
			return domain.EmailFolder{}, translate(d, err)
		}
		req.Values.CustomFolderName = &name
	}

	var resp gql.UpdateCustomEmailFolderResponse
	err := c.api.Mutate(ctx, gql.UpdateCustomEmailFolderMutation, input(req), &resp)
	middleware.WriteAuditLog(ctx, "update_custom_email_folder", in.EmailFolderID, middleware.ResultOf(err))
	if err != nil {
		return domain.EmailFolder{}, translate(d, err)
	}

	folder, err := c.unsealer.UnsealEmailFolder(ctx, resp.UpdateCustomEmailFolder)
	if err != nil {
		return domain.EmailFolder{}, translate(d, err)
	}
	return folder, nil
}
