package usecase

import (
	"context"
	"encoding/base64"
	"fmt"

	"sealed-mail/internal/domain"
)

// SealingService は鍵IDで指定された鍵を使ってデータを封印・開封する。
type SealingService struct {
	keyManager KeyManager
}

// NewSealingService は新しいSealingServiceを生成する。
func NewSealingService(keyManager KeyManager) *SealingService {
	return &SealingService{keyManager: keyManager}
}

// SealString は共通鍵 keyID で plaintext を封印する。
func (s *SealingService) SealString(ctx context.Context, keyID string, plaintext []byte) ([]byte, error) {
	return s.keyManager.EncryptWithSymmetricKeyID(ctx, keyID, plaintext)
}

// UnsealString は共通鍵 keyID で封印されたデータを開封する。
func (s *SealingService) UnsealString(ctx context.Context, keyID string, sealed []byte) ([]byte, error) {
	return s.keyManager.DecryptWithSymmetricKeyID(ctx, keyID, sealed)
}

// UnsealWithPrivateKey は先頭256バイトにRSAで暗号化された共通鍵を持つデータを開封する。
// 残りのバイト列はその共通鍵による IV ‖ AES-CBC 暗号文である。
func (s *SealingService) UnsealWithPrivateKey(ctx context.Context, keyID, algorithm string, sealed []byte) ([]byte, error) {
	if len(sealed) < rsaHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrSealedDataTooShort, len(sealed))
	}
	key, err := s.keyManager.DecryptWithPrivateKey(ctx, keyID, sealed[:rsaHeaderSize], algorithm)
	if err != nil {
		return nil, err
	}
	return decryptAESCBC(key, sealed[rsaHeaderSize:])
}

// SealAttribute は value を現在の共通鍵で封印し、SealedAttribute として返す。
func (s *SealingService) SealAttribute(ctx context.Context, keyID, value string) (domain.SealedAttribute, error) {
	sealed, err := s.SealString(ctx, keyID, []byte(value))
	if err != nil {
		return domain.SealedAttribute{}, err
	}
	return domain.SealedAttribute{
		Algorithm:               domain.AlgorithmAESCBCPKCS7,
		KeyID:                   keyID,
		PlainTextType:           domain.PlainTextTypeString,
		Base64EncodedSealedData: base64.StdEncoding.EncodeToString(sealed),
	}, nil
}

// UnsealAttribute は SealedAttribute をアルゴリズムに応じて開封する。
func (s *SealingService) UnsealAttribute(ctx context.Context, attr domain.SealedAttribute) (string, error) {
	data, err := base64.StdEncoding.DecodeString(attr.Base64EncodedSealedData)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrMalformedSealedData, err)
	}

	var plain []byte
	switch attr.Algorithm {
	case domain.AlgorithmAESCBCPKCS7:
		plain, err = s.UnsealString(ctx, attr.KeyID, data)
	case domain.AlgorithmRSAPKCS1, domain.AlgorithmRSAOAEP:
		plain, err = s.UnsealWithPrivateKey(ctx, attr.KeyID, attr.Algorithm, data)
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedAlgorithm, attr.Algorithm)
	}
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
