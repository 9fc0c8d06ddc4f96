package infra

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const passphraseKey = "key-wrapper-passphrase"

// PassphraseStore はageラッパーのパスフレーズをOSのキーリングに保存する。
type PassphraseStore struct {
	ring keyring.Keyring
}

// OpenPassphraseStore はサービス名を指定してキーリングを開く。
func OpenPassphraseStore(serviceName string) (*PassphraseStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/" + serviceName + "/keyring",
		FilePasswordFunc:         keyring.FixedStringPrompt(serviceName + "-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return &PassphraseStore{ring: ring}, nil
}

// NewPassphraseStore は既存のキーリングを使用する。
func NewPassphraseStore(ring keyring.Keyring) *PassphraseStore {
	return &PassphraseStore{ring: ring}
}

// GetOrCreate は保存済みのパスフレーズを返す。未保存の場合は生成して保存する。
func (s *PassphraseStore) GetOrCreate() (string, error) {
	item, err := s.ring.Get(passphraseKey)
	if err == nil {
		return string(item.Data), nil
	}
	if !errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("getting passphrase: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating passphrase: %w", err)
	}
	passphrase := base64.RawStdEncoding.EncodeToString(buf)
	if err := s.ring.Set(keyring.Item{Key: passphraseKey, Data: []byte(passphrase)}); err != nil {
		return "", fmt.Errorf("setting passphrase: %w", err)
	}
	return passphrase, nil
}

// Remove はパスフレーズを削除する。鍵のリセット時に使用する。
func (s *PassphraseStore) Remove() error {
	if err := s.ring.Remove(passphraseKey); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting passphrase: %w", err)
	}
	return nil
}
