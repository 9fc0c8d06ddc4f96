package usecase

import (
	"context"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/middleware"
)

// ExportKeys は全鍵素材をアーカイブ形式でエクスポートする。
func (c *EmailClient) ExportKeys(ctx context.Context) ([]byte, error) {
	const d = domain.DomainKeys
	archive, err := c.keyManager.ExportKeys(ctx)
	if err != nil {
		return nil, translate(d, err)
	}
	data, err := c.archiver.Marshal(archive)
	middleware.WriteAuditLog(ctx, "export_keys", "", middleware.ResultOf(err))
	if err != nil {
		return nil, translate(d, err)
	}
	return data, nil
}

// ImportKeys はエクスポートされたアーカイブから鍵素材を取り込む。
func (c *EmailClient) ImportKeys(ctx context.Context, data []byte) error {
	const d = domain.DomainKeys
	if len(data) == 0 {
		return invalidInput(d, "key archive is empty")
	}
	archive, err := c.archiver.Unmarshal(data)
	if err != nil {
		return domain.NewError(d, domain.ErrInvalidInput, "", err)
	}
	err = c.keyManager.ImportKeys(ctx, archive)
	middleware.WriteAuditLog(ctx, "import_keys", "", middleware.ResultOf(err))
	if err != nil {
		return translate(d, err)
	}
	return nil
}

// RotateSymmetricKey は新しい共通鍵を生成して現在の共通鍵にする。
func (c *EmailClient) RotateSymmetricKey(ctx context.Context) (string, error) {
	keyID, err := c.keyManager.GenerateNewCurrentSymmetricKey(ctx)
	middleware.WriteAuditLog(ctx, "rotate_symmetric_key", keyID, middleware.ResultOf(err))
	if err != nil {
		return "", translate(domain.DomainKeys, err)
	}
	return keyID, nil
}

// Reset は全鍵素材を削除する。
func (c *EmailClient) Reset(ctx context.Context) error {
	err := c.keyManager.RemoveAllKeys(ctx)
	middleware.WriteAuditLog(ctx, "reset", "", middleware.ResultOf(err))
	if err != nil {
		return translate(domain.DomainKeys, err)
	}
	return nil
}
