package infra

import (
	"context"
	"fmt"

	"sealed-mail/config"
)

// KeyWrapper は鍵ストアに保存する鍵素材を暗号化する。
type KeyWrapper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// NewKeyWrapper は KEY_WRAPPER の設定に応じてラッパーを生成する。
// 返されるclose関数は呼び出し側で必ず呼ぶこと。
func NewKeyWrapper(ctx context.Context, cfg *config.Config) (KeyWrapper, func() error, error) {
	switch cfg.KeyWrapper {
	case config.KeyWrapperKMS:
		client, err := NewKMSClient(ctx, cfg.KMSKeyName)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	case config.KeyWrapperAge:
		store, err := OpenPassphraseStore(cfg.KeyringService)
		if err != nil {
			return nil, nil, err
		}
		passphrase, err := store.GetOrCreate()
		if err != nil {
			return nil, nil, err
		}
		w, err := NewAgeWrapper(passphrase)
		if err != nil {
			return nil, nil, err
		}
		return w, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown KEY_WRAPPER %q", cfg.KeyWrapper)
	}
}
