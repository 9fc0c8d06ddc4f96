package usecase

import (
	"context"
	"encoding/base64"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/gql"
	"sealed-mail/internal/middleware"
)

const (
	publicKeyAlgorithm = "RSAEncryptionOAEPAESCBC"
	publicKeyFormat    = "RSA_PUBLIC_KEY"
)

// ProvisionEmailAddress はメールアドレスを払い出す。
// 鍵ペアと現在の共通鍵が無い場合は払い出しの前に生成する。
func (c *EmailClient) ProvisionEmailAddress(ctx context.Context, in domain.ProvisionEmailAddressInput) (domain.EmailAddress, error) {
	const d = domain.DomainAddress
	if in.EmailAddress == "" {
		return domain.EmailAddress{}, invalidInput(d, "email address is required")
	}
	if in.OwnershipProofToken == "" {
		return domain.EmailAddress{}, invalidInput(d, "ownership proof token is required")
	}

	var (
		keyPair *domain.KeyPair
		err     error
	)
	if in.KeyID != "" {
		keyPair, err = c.keyManager.GetKeyPairWithID(ctx, in.KeyID)
		if err != nil {
			return domain.EmailAddress{}, translate(d, err)
		}
		if keyPair == nil {
			return domain.EmailAddress{}, domain.NewError(d, domain.ErrKeyNotFound, "key pair "+in.KeyID, nil)
		}
	} else {
		keyPair, err = c.keyManager.GetCurrentKeyPair(ctx)
		if err != nil {
			return domain.EmailAddress{}, translate(d, err)
		}
		if keyPair == nil {
			if keyPair, err = c.keyManager.GenerateKeyPair(ctx); err != nil {
				return domain.EmailAddress{}, translate(d, err)
			}
		}
	}

	symmetricKeyID, err := c.ensureSymmetricKey(ctx)
	if err != nil {
		return domain.EmailAddress{}, translate(d, err)
	}

	req := gql.ProvisionEmailAddressInput{
		EmailAddress:         in.EmailAddress,
		OwnershipProofTokens: []string{in.OwnershipProofToken},
		Key: gql.PublicKeyInput{
			KeyID:     keyPair.KeyID,
			KeyRingID: keyPair.KeyRingID,
			Algorithm: publicKeyAlgorithm,
			KeyFormat: publicKeyFormat,
			PublicKey: base64.StdEncoding.EncodeToString(keyPair.PublicKey),
		},
	}
	if in.Alias != nil && *in.Alias != "" {
		attr, err := c.sealing.SealAttribute(ctx, symmetricKeyID, *in.Alias)
		if err != nil {
			return domain.EmailAddress{}, translate(d, err)
		}
		sealed := gql.NewSealedAttribute(attr)
		req.Alias = &sealed
	}

	var resp gql.ProvisionEmailAddressResponse
	if err := c.api.Mutate(ctx, gql.ProvisionEmailAddressMutation, input(req), &resp); err != nil {
		middleware.WriteAuditLog(ctx, "provision_email_address", in.EmailAddress, middleware.ResultFailure)
		return domain.EmailAddress{}, translate(d, err)
	}
	middleware.WriteAuditLog(ctx, "provision_email_address", resp.ProvisionEmailAddress.ID, middleware.ResultSuccess)

	address, err := c.unsealer.UnsealEmailAddress(ctx, resp.ProvisionEmailAddress)
	if err != nil {
		return domain.EmailAddress{}, translate(d, err)
	}
	return address, nil
}

// DeprovisionEmailAddress はメールアドレスを削除する。
func (c *EmailClient) DeprovisionEmailAddress(ctx context.Context, id string) (domain.EmailAddress, error) {
	const d = domain.DomainAddress
	if id == "" {
		return domain.EmailAddress{}, invalidInput(d, "email address id is required")
	}

	var resp gql.DeprovisionEmailAddressResponse
	err := c.api.Mutate(ctx, gql.DeprovisionEmailAddressMutation,
		input(gql.DeprovisionEmailAddressInput{EmailAddressID: id}), &resp)
	middleware.WriteAuditLog(ctx, "deprovision_email_address", id, middleware.ResultOf(err))
	if err != nil {
		return domain.EmailAddress{}, translate(d, err)
	}

	address, err := c.unsealer.UnsealEmailAddress(ctx, resp.DeprovisionEmailAddress)
	if err != nil {
		return domain.EmailAddress{}, translate(d, err)
	}
	return address, nil
}

// UpdateEmailAddressMetadata はアドレスの別名を更新し、アドレスIDを返す。
func (c *EmailClient) UpdateEmailAddressMetadata(ctx context.Context, in domain.UpdateEmailAddressMetadataInput) (string, error) {
	const d = domain.DomainAddress
	if in.ID == "" {
		return "", invalidInput(d, "email address id is required")
	}

	req := gql.UpdateEmailAddressMetadataInput{ID: in.ID}
	if in.Alias != nil && *in.Alias != "" {
		sealed, err := c.sealWithCurrentKey(ctx, *in.Alias)
		if err != nil {
			return "", translate(d, err)
		}
		req.Values.Alias = &sealed
	}

	var resp gql.UpdateEmailAddressMetadataResponse
	err := c.api.Mutate(ctx, gql.UpdateEmailAddressMetadataMutation, input(req), &resp)
	middleware.WriteAuditLog(ctx, "update_email_address_metadata", in.ID, middleware.ResultOf(err))
	if err != nil {
		return "", translate(d, err)
	}
	return resp.UpdateEmailAddressMetadata, nil
}

// GetEmailAddress はアドレスを取得する。存在しない場合はnilを返す。
func (c *EmailClient) GetEmailAddress(ctx context.Context, id string) (*domain.EmailAddress, error) {
	const d = domain.DomainAddress
	var resp gql.GetEmailAddressResponse
	if err := c.api.Query(ctx, gql.GetEmailAddressQuery, map[string]any{"id": id}, &resp); err != nil {
		return nil, translate(d, err)
	}
	if resp.GetEmailAddress == nil {
		return nil, nil
	}
	address, err := c.unsealer.UnsealEmailAddress(ctx, *resp.GetEmailAddress)
	if err != nil {
		return nil, translate(d, err)
	}
	return &address, nil
}

// ListEmailAddresses はユーザーの全アドレスを一覧する。
func (c *EmailClient) ListEmailAddresses(ctx context.Context, in domain.ListInput) (domain.ListAPIResult[domain.EmailAddress, domain.PartialEmailAddress], error) {
	var resp gql.ListEmailAddressesResponse
	if err := c.api.Query(ctx, gql.ListEmailAddressesQuery, listVariables(in), &resp); err != nil {
		return domain.ListAPIResult[domain.EmailAddress, domain.PartialEmailAddress]{}, translate(domain.DomainAddress, err)
	}
	return c.assembleEmailAddresses(ctx, resp.ListEmailAddresses)
}

// ListEmailAddressesForSudoID はSudoに紐づくアドレスを一覧する。
func (c *EmailClient) ListEmailAddressesForSudoID(ctx context.Context, sudoID string, in domain.ListInput) (domain.ListAPIResult[domain.EmailAddress, domain.PartialEmailAddress], error) {
	const d = domain.DomainAddress
	if sudoID == "" {
		return domain.ListAPIResult[domain.EmailAddress, domain.PartialEmailAddress]{}, invalidInput(d, "sudo id is required")
	}
	req := gql.ListEmailAddressesForSudoIDInput{SudoID: sudoID, Limit: in.Limit, NextToken: in.NextToken}
	var resp gql.ListEmailAddressesForSudoIDResponse
	if err := c.api.Query(ctx, gql.ListEmailAddressesForSudoIDQuery, input(req), &resp); err != nil {
		return domain.ListAPIResult[domain.EmailAddress, domain.PartialEmailAddress]{}, translate(d, err)
	}
	return c.assembleEmailAddresses(ctx, resp.ListEmailAddressesForSudoID)
}

func (c *EmailClient) assembleEmailAddresses(ctx context.Context, conn gql.EmailAddressConnection) (domain.ListAPIResult[domain.EmailAddress, domain.PartialEmailAddress], error) {
	result, err := assembleListResult(ctx, conn.Items, conn.NextToken, c.unsealer.UnsealEmailAddress, partialEmailAddress)
	if err != nil {
		return result, translate(domain.DomainAddress, err)
	}
	return result, nil
}

// CheckEmailAddressAvailability は払い出し可能なアドレスを返す。
func (c *EmailClient) CheckEmailAddressAvailability(ctx context.Context, in domain.CheckEmailAddressAvailabilityInput) ([]string, error) {
	const d = domain.DomainAddress
	if len(in.LocalParts) == 0 {
		return nil, invalidInput(d, "at least one local part is required")
	}
	req := gql.CheckEmailAddressAvailabilityInput{LocalParts: in.LocalParts, Domains: in.Domains}
	var resp gql.CheckEmailAddressAvailabilityResponse
	if err := c.api.Query(ctx, gql.CheckEmailAddressAvailabilityQuery, input(req), &resp); err != nil {
		return nil, translate(d, err)
	}
	return resp.CheckEmailAddressAvailability.Addresses, nil
}

// GetSupportedEmailDomains は払い出しに使用できるドメインを返す。
func (c *EmailClient) GetSupportedEmailDomains(ctx context.Context) ([]string, error) {
	var resp gql.GetEmailDomainsResponse
	if err := c.api.Query(ctx, gql.GetEmailDomainsQuery, nil, &resp); err != nil {
		return nil, translate(domain.DomainAddress, err)
	}
	return resp.GetEmailDomains.Domains, nil
}

// GetConfiguredEmailDomains はサービスに設定された全ドメインを返す。
func (c *EmailClient) GetConfiguredEmailDomains(ctx context.Context) ([]string, error) {
	var resp gql.GetConfiguredEmailDomainsResponse
	if err := c.api.Query(ctx, gql.GetConfiguredEmailDomainsQuery, nil, &resp); err != nil {
		return nil, translate(domain.DomainAddress, err)
	}
	return resp.GetConfiguredEmailDomains.Domains, nil
}

// LookupEmailAddressesPublicInfo はアドレスの公開鍵情報を検索する。
func (c *EmailClient) LookupEmailAddressesPublicInfo(ctx context.Context, addresses []string) ([]domain.EmailAddressPublicInfo, error) {
	const d = domain.DomainAddress
	if len(addresses) == 0 {
		return nil, invalidInput(d, "at least one email address is required")
	}
	var resp gql.LookupEmailAddressesPublicInfoResponse
	req := gql.LookupEmailAddressesPublicInfoInput{EmailAddresses: addresses}
	if err := c.api.Query(ctx, gql.LookupEmailAddressesPublicInfoQuery, input(req), &resp); err != nil {
		return nil, translate(d, err)
	}
	out := make([]domain.EmailAddressPublicInfo, 0, len(resp.LookupEmailAddressesPublicInfo.Items))
	for _, item := range resp.LookupEmailAddressesPublicInfo.Items {
		out = append(out, domain.EmailAddressPublicInfo{
			EmailAddress: item.EmailAddress,
			KeyID:        item.KeyID,
			PublicKey:    item.PublicKey,
		})
	}
	return out, nil
}

// GetConfigurationData はサーバ側で設定された制限値を返す。
func (c *EmailClient) GetConfigurationData(ctx context.Context) (domain.EmailConfigurationData, error) {
	var resp gql.GetEmailConfigResponse
	if err := c.api.Query(ctx, gql.GetEmailConfigQuery, nil, &resp); err != nil {
		return domain.EmailConfigurationData{}, translate(domain.DomainConfiguration, err)
	}
	cfg := resp.GetEmailConfig
	return domain.EmailConfigurationData{
		DeleteEmailMessagesLimit:             cfg.DeleteEmailMessagesLimit,
		UpdateEmailMessagesLimit:             cfg.UpdateEmailMessagesLimit,
		EmailMessageMaxInboundMessageSize:    cfg.EmailMessageMaxInboundMessageSize,
		EmailMessageMaxOutboundMessageSize:   cfg.EmailMessageMaxOutboundMessageSize,
		EmailMessageRecipientsLimit:          cfg.EmailMessageRecipientsLimit,
		EncryptedEmailMessageRecipientsLimit: cfg.EncryptedEmailMessageRecipientsLimit,
	}, nil
}
