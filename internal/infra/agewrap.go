package infra

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"filippo.io/age"
)

// AgeWrapper はパスフレーズ(scrypt)によるageで鍵素材をラップする。
// Cloud KMS を使用しない環境向け。
type AgeWrapper struct {
	passphrase string
	workFactor int
}

// NewAgeWrapper は新しいAgeWrapperを生成する。
func NewAgeWrapper(passphrase string) (*AgeWrapper, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("age passphrase is empty")
	}
	return &AgeWrapper{passphrase: passphrase}, nil
}

// SetWorkFactor はscryptのワークファクタ(log2)を設定する。0 の場合はageの既定値を使用する。
func (w *AgeWrapper) SetWorkFactor(logN int) {
	w.workFactor = logN
}

// Encrypt は鍵素材をラップする。
func (w *AgeWrapper) Encrypt(ctx context.Context, plaintext []byte) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(w.passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	if w.workFactor > 0 {
		recipient.SetWorkFactor(w.workFactor)
	}
	return ageEncrypt(plaintext, recipient)
}

// Decrypt はラップされた鍵素材を復元する。
func (w *AgeWrapper) Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error) {
	identity, err := age.NewScryptIdentity(w.passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt identity: %w", err)
	}
	return ageDecrypt(ciphertext, identity)
}

func ageEncrypt(plaintext []byte, recipients ...age.Recipient) ([]byte, error) {
	var buf bytes.Buffer
	writer, err := age.Encrypt(&buf, recipients...)
	if err != nil {
		return nil, fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalizing age encryption: %w", err)
	}
	return buf.Bytes(), nil
}

func ageDecrypt(ciphertext []byte, identities ...age.Identity) ([]byte, error) {
	reader, err := age.Decrypt(bytes.NewReader(ciphertext), identities...)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted plaintext: %w", err)
	}
	return plaintext, nil
}
