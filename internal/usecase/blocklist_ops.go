package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/gql"
	"sealed-mail/internal/middleware"
)

type blockAddressesResult = domain.BatchOperationResult[string, string]

func normalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// hashBlockedValue はブロック値のハッシュを返す。prefix はアドレスIDまたは所有者ID。
func hashBlockedValue(prefix, address string) string {
	sum := sha256.Sum256([]byte(prefix + "|" + normalizeAddress(address)))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// BlockEmailAddresses は送信元アドレスをブロックする。結果の値は入力されたアドレス。
func (c *EmailClient) BlockEmailAddresses(ctx context.Context, in domain.BlockEmailAddressesInput) (blockAddressesResult, error) {
	const d = domain.DomainBlocklist
	if len(in.Addresses) == 0 {
		return blockAddressesResult{}, invalidInput(d, "at least one address is required")
	}
	seen := make(map[string]bool, len(in.Addresses))
	for _, a := range in.Addresses {
		n := normalizeAddress(a)
		if n == "" {
			return blockAddressesResult{}, invalidInput(d, "address must not be empty")
		}
		if seen[n] {
			return blockAddressesResult{}, invalidInput(d, "duplicate address "+a)
		}
		seen[n] = true
	}
	action := in.Action
	if action == "" {
		action = domain.BlockedEmailAddressActionDrop
	}

	owner, err := c.identity.Owner(ctx)
	if err != nil {
		return blockAddressesResult{}, translate(d, err)
	}
	prefix := owner
	if in.EmailAddressID != nil && *in.EmailAddressID != "" {
		prefix = *in.EmailAddressID
	}

	keyID, err := c.ensureSymmetricKey(ctx)
	if err != nil {
		return blockAddressesResult{}, translate(d, err)
	}

	byHash := make(map[string]string, len(in.Addresses))
	blocked := make([]gql.BlockedEmailAddressInput, 0, len(in.Addresses))
	for _, a := range in.Addresses {
		attr, err := c.sealing.SealAttribute(ctx, keyID, normalizeAddress(a))
		if err != nil {
			return blockAddressesResult{}, translate(d, err)
		}
		hash := hashBlockedValue(prefix, a)
		byHash[hash] = a
		blocked = append(blocked, gql.BlockedEmailAddressInput{
			HashAlgorithm:      domain.BlockedAddressHashAlgorithm,
			HashedBlockedValue: hash,
			SealedValue:        gql.NewSealedAttribute(attr),
			Action:             string(action),
		})
	}

	req := gql.BlockEmailAddressesInput{Owner: owner, BlockedAddresses: blocked, EmailAddressID: in.EmailAddressID}
	var resp gql.BlockEmailAddressesResponse
	if err := c.api.Mutate(ctx, gql.BlockEmailAddressesMutation, input(req), &resp); err != nil {
		middleware.WriteAuditLog(ctx, "block_email_addresses", owner, middleware.ResultFailure)
		return blockAddressesResult{}, translate(d, err)
	}

	toAddress := func(hash string) string { return byHash[hash] }
	r := resp.BlockEmailAddresses
	result, err := assembleBatchResult(d, r.Status, r.SuccessAddresses, r.FailedAddresses, toAddress, toAddress)
	middleware.WriteAuditLog(ctx, "block_email_addresses", owner, batchAuditResult(result.Status, err))
	return result, err
}

// UnblockEmailAddresses はアドレスのブロックを解除する。結果の値は入力されたアドレス。
func (c *EmailClient) UnblockEmailAddresses(ctx context.Context, addresses []string) (blockAddressesResult, error) {
	const d = domain.DomainBlocklist
	if len(addresses) == 0 {
		return blockAddressesResult{}, invalidInput(d, "at least one address is required")
	}
	owner, err := c.identity.Owner(ctx)
	if err != nil {
		return blockAddressesResult{}, translate(d, err)
	}

	byHash := make(map[string]string, len(addresses))
	hashes := make([]string, 0, len(addresses))
	for _, a := range addresses {
		hash := hashBlockedValue(owner, a)
		if _, ok := byHash[hash]; ok {
			return blockAddressesResult{}, invalidInput(d, "duplicate address "+a)
		}
		byHash[hash] = a
		hashes = append(hashes, hash)
	}

	toAddress := func(hash string) string { return byHash[hash] }
	return c.unblock(ctx, owner, hashes, toAddress)
}

// UnblockEmailAddressesByHashedValue はハッシュ値を指定してブロックを解除する。
func (c *EmailClient) UnblockEmailAddressesByHashedValue(ctx context.Context, hashedValues []string) (blockAddressesResult, error) {
	const d = domain.DomainBlocklist
	hashedValues = dedupe(hashedValues)
	if len(hashedValues) == 0 {
		return blockAddressesResult{}, invalidInput(d, "at least one hashed value is required")
	}
	owner, err := c.identity.Owner(ctx)
	if err != nil {
		return blockAddressesResult{}, translate(d, err)
	}
	return c.unblock(ctx, owner, hashedValues, passthrough[string])
}

func (c *EmailClient) unblock(ctx context.Context, owner string, hashes []string, toValue func(string) string) (blockAddressesResult, error) {
	const d = domain.DomainBlocklist
	req := gql.UnblockEmailAddressesInput{Owner: owner, UnblockedAddresses: hashes}
	var resp gql.UnblockEmailAddressesResponse
	if err := c.api.Mutate(ctx, gql.UnblockEmailAddressesMutation, input(req), &resp); err != nil {
		middleware.WriteAuditLog(ctx, "unblock_email_addresses", owner, middleware.ResultFailure)
		return blockAddressesResult{}, translate(d, err)
	}
	r := resp.UnblockEmailAddresses
	result, err := assembleBatchResult(d, r.Status, r.SuccessAddresses, r.FailedAddresses, toValue, toValue)
	middleware.WriteAuditLog(ctx, "unblock_email_addresses", owner, batchAuditResult(result.Status, err))
	return result, err
}

// GetEmailAddressBlocklist はブロックリストを取得する。
// 項目ごとの開封失敗は Status に記録され、一覧全体は失敗しない。
func (c *EmailClient) GetEmailAddressBlocklist(ctx context.Context) ([]domain.UnsealedBlockedAddress, error) {
	const d = domain.DomainBlocklist
	owner, err := c.identity.Owner(ctx)
	if err != nil {
		return nil, translate(d, err)
	}

	var resp gql.GetEmailAddressBlocklistResponse
	if err := c.api.Query(ctx, gql.GetEmailAddressBlocklistQuery, input(gql.GetEmailAddressBlocklistInput{Owner: owner}), &resp); err != nil {
		return nil, translate(d, err)
	}

	blocked := resp.GetEmailAddressBlocklist.BlockedAddresses
	out := make([]domain.UnsealedBlockedAddress, 0, len(blocked))
	for _, b := range blocked {
		u, err := c.unsealer.UnsealBlockedAddress(ctx, b)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}
