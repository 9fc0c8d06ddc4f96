// Package usecase はSDKのユースケース（鍵管理、封印、メール操作）を実装する。
package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"sealed-mail/internal/domain"
)

const (
	currentSymmetricKeyIDName = "eml-current-symmetric-key-id"
	currentKeyPairIDName      = "eml-current-key-pair-id"
)

// KeyRepository は鍵ストアのデータアクセスのインターフェース。
type KeyRepository interface {
	Create(ctx context.Context, rec *domain.KeyRecord) error
	Upsert(ctx context.Context, rec *domain.KeyRecord) error
	FindByNameAndType(ctx context.Context, name string, keyType domain.KeyType) (*domain.KeyRecord, error)
	ExistsByNameAndType(ctx context.Context, name string, keyType domain.KeyType) (bool, error)
	FindAll(ctx context.Context) ([]*domain.KeyRecord, error)
	DeleteAll(ctx context.Context) error
	RecordRotation(ctx context.Context, rotation *domain.KeyRotation) error
	FindAllRotations(ctx context.Context) ([]*domain.KeyRotation, error)
}

// KMSClient は鍵素材をラップ/アンラップするインターフェース。
type KMSClient interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

// KeyManager はメールサービスが使用する鍵操作のインターフェース。
type KeyManager interface {
	GetCurrentSymmetricKeyID(ctx context.Context) (string, error)
	GenerateNewCurrentSymmetricKey(ctx context.Context) (string, error)
	SymmetricKeyExists(ctx context.Context, keyID string) (bool, error)
	GetSymmetricKeyData(ctx context.Context, keyID string) ([]byte, error)
	EncryptWithSymmetricKeyID(ctx context.Context, keyID string, data []byte) ([]byte, error)
	DecryptWithSymmetricKeyID(ctx context.Context, keyID string, data []byte) ([]byte, error)
	DecryptWithPrivateKey(ctx context.Context, keyID string, data []byte, algorithm string) ([]byte, error)
	GenerateKeyPair(ctx context.Context) (*domain.KeyPair, error)
	GetCurrentKeyPair(ctx context.Context) (*domain.KeyPair, error)
	GetKeyPairWithID(ctx context.Context, keyID string) (*domain.KeyPair, error)
	ExportKeys(ctx context.Context) (*domain.KeyArchive, error)
	ImportKeys(ctx context.Context, archive *domain.KeyArchive) error
	RemoveAllKeys(ctx context.Context) error
}

// ServiceKeyManager はユーザーの鍵ペアと現在の共通鍵を管理する。
// 鍵素材はKMSでラップして KeyRepository に保存し、アンラップ済みの共通鍵はメモリにキャッシュする。
type ServiceKeyManager struct {
	repo      KeyRepository
	kmsClient KMSClient
	keyRingID string
	now       func() time.Time

	mu                    sync.RWMutex
	currentLoaded         bool
	currentSymmetricKeyID string
	symmetricKeys         map[string][]byte
}

var _ KeyManager = (*ServiceKeyManager)(nil)

// NewServiceKeyManager は新しいServiceKeyManagerを生成する。
func NewServiceKeyManager(repo KeyRepository, kmsClient KMSClient, keyRingID string) *ServiceKeyManager {
	return &ServiceKeyManager{
		repo:          repo,
		kmsClient:     kmsClient,
		keyRingID:     keyRingID,
		now:           time.Now,
		symmetricKeys: make(map[string][]byte),
	}
}

// KeyRingID は公開鍵登録に使用するキーリングIDを返す。
func (m *ServiceKeyManager) KeyRingID() string {
	return m.keyRingID
}

func (m *ServiceKeyManager) load(ctx context.Context, name string, keyType domain.KeyType) ([]byte, error) {
	rec, err := m.repo.FindByNameAndType(ctx, name, keyType)
	if err != nil {
		return nil, fmt.Errorf("finding %s key %q: %w", keyType, name, err)
	}
	if rec == nil {
		return nil, nil
	}
	data, err := m.kmsClient.Decrypt(ctx, rec.WrappedData)
	if err != nil {
		return nil, fmt.Errorf("unwrapping %s key %q: %w", keyType, name, err)
	}
	return data, nil
}

func (m *ServiceKeyManager) store(ctx context.Context, name string, keyType domain.KeyType, data []byte, upsert bool) error {
	wrapped, err := m.kmsClient.Encrypt(ctx, data)
	if err != nil {
		return fmt.Errorf("wrapping %s key %q: %w", keyType, name, err)
	}
	rec := &domain.KeyRecord{Name: name, Type: keyType, WrappedData: wrapped}
	if upsert {
		err = m.repo.Upsert(ctx, rec)
	} else {
		err = m.repo.Create(ctx, rec)
	}
	if err != nil {
		return fmt.Errorf("storing %s key %q: %w", keyType, name, err)
	}
	return nil
}

// GetCurrentSymmetricKeyID は現在の共通鍵IDを返す。未生成の場合は空文字を返す。
func (m *ServiceKeyManager) GetCurrentSymmetricKeyID(ctx context.Context) (string, error) {
	m.mu.RLock()
	if m.currentLoaded {
		id := m.currentSymmetricKeyID
		m.mu.RUnlock()
		return id, nil
	}
	m.mu.RUnlock()

	data, err := m.load(ctx, currentSymmetricKeyIDName, domain.KeyTypePassword)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.currentLoaded {
		m.currentSymmetricKeyID = string(data)
		m.currentLoaded = true
	}
	return m.currentSymmetricKeyID, nil
}

// GenerateNewCurrentSymmetricKey は新しい共通鍵を生成し、現在の共通鍵として設定する。
// 以前の共通鍵は過去データの開封のために保持する。
func (m *ServiceKeyManager) GenerateNewCurrentSymmetricKey(ctx context.Context) (string, error) {
	previous, err := m.GetCurrentSymmetricKeyID(ctx)
	if err != nil {
		return "", err
	}

	key, err := generateAESKey()
	if err != nil {
		return "", err
	}
	keyID := uuid.New().String()

	if err := m.store(ctx, keyID, domain.KeyTypeSymmetric, key, false); err != nil {
		return "", err
	}
	if err := m.store(ctx, currentSymmetricKeyIDName, domain.KeyTypePassword, []byte(keyID), true); err != nil {
		return "", err
	}

	rotation := &domain.KeyRotation{KeyID: keyID, RotatedAt: m.now()}
	if previous != "" {
		rotation.PreviousKeyID = &previous
	}
	if err := m.repo.RecordRotation(ctx, rotation); err != nil {
		return "", fmt.Errorf("recording rotation: %w", err)
	}

	m.mu.Lock()
	m.currentSymmetricKeyID = keyID
	m.currentLoaded = true
	m.symmetricKeys[keyID] = key
	m.mu.Unlock()

	return keyID, nil
}

// SymmetricKeyExists は指定された共通鍵が鍵ストアに存在するかを返す。
func (m *ServiceKeyManager) SymmetricKeyExists(ctx context.Context, keyID string) (bool, error) {
	m.mu.RLock()
	_, ok := m.symmetricKeys[keyID]
	m.mu.RUnlock()
	if ok {
		return true, nil
	}
	exists, err := m.repo.ExistsByNameAndType(ctx, keyID, domain.KeyTypeSymmetric)
	if err != nil {
		return false, fmt.Errorf("checking symmetric key %q: %w", keyID, err)
	}
	return exists, nil
}

// GetSymmetricKeyData は共通鍵の鍵素材を返す。存在しない場合は ErrKeyNotFound を返す。
func (m *ServiceKeyManager) GetSymmetricKeyData(ctx context.Context, keyID string) ([]byte, error) {
	m.mu.RLock()
	key, ok := m.symmetricKeys[keyID]
	m.mu.RUnlock()
	if ok {
		return key, nil
	}

	key, err := m.load(ctx, keyID, domain.KeyTypeSymmetric)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, fmt.Errorf("%w: symmetric key %q", domain.ErrKeyNotFound, keyID)
	}

	m.mu.Lock()
	m.symmetricKeys[keyID] = key
	m.mu.Unlock()
	return key, nil
}

// EncryptWithSymmetricKeyID は指定された共通鍵で data を暗号化する。
func (m *ServiceKeyManager) EncryptWithSymmetricKeyID(ctx context.Context, keyID string, data []byte) ([]byte, error) {
	key, err := m.GetSymmetricKeyData(ctx, keyID)
	if err != nil {
		return nil, err
	}
	return encryptAESCBC(key, data)
}

// DecryptWithSymmetricKeyID は指定された共通鍵で data を復号する。
func (m *ServiceKeyManager) DecryptWithSymmetricKeyID(ctx context.Context, keyID string, data []byte) ([]byte, error) {
	key, err := m.GetSymmetricKeyData(ctx, keyID)
	if err != nil {
		return nil, err
	}
	return decryptAESCBC(key, data)
}

// DecryptWithPrivateKey は指定された鍵ペアの秘密鍵で data を復号する。
func (m *ServiceKeyManager) DecryptWithPrivateKey(ctx context.Context, keyID string, data []byte, algorithm string) ([]byte, error) {
	priv, err := m.load(ctx, keyID, domain.KeyTypePrivate)
	if err != nil {
		return nil, err
	}
	if priv == nil {
		return nil, fmt.Errorf("%w: private key %q", domain.ErrKeyNotFound, keyID)
	}
	return decryptRSA(priv, algorithm, data)
}

// GenerateKeyPair は新しい鍵ペアを生成し、現在の鍵ペアとして設定する。
func (m *ServiceKeyManager) GenerateKeyPair(ctx context.Context) (*domain.KeyPair, error) {
	pub, priv, err := generateRSAKeyPair()
	if err != nil {
		return nil, err
	}
	keyID := uuid.New().String()

	if err := m.store(ctx, keyID, domain.KeyTypePrivate, priv, false); err != nil {
		return nil, err
	}
	if err := m.store(ctx, keyID, domain.KeyTypePublic, pub, false); err != nil {
		return nil, err
	}
	if err := m.store(ctx, currentKeyPairIDName, domain.KeyTypePassword, []byte(keyID), true); err != nil {
		return nil, err
	}

	return &domain.KeyPair{
		KeyID:      keyID,
		KeyRingID:  m.keyRingID,
		PublicKey:  pub,
		PrivateKey: priv,
	}, nil
}

// GetCurrentKeyPair は現在の鍵ペアを返す。未生成の場合はnilを返す。
func (m *ServiceKeyManager) GetCurrentKeyPair(ctx context.Context) (*domain.KeyPair, error) {
	id, err := m.load(ctx, currentKeyPairIDName, domain.KeyTypePassword)
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, nil
	}
	return m.GetKeyPairWithID(ctx, string(id))
}

// GetKeyPairWithID は指定された鍵ペアを返す。公開鍵・秘密鍵のどちらかが無い場合はnilを返す。
func (m *ServiceKeyManager) GetKeyPairWithID(ctx context.Context, keyID string) (*domain.KeyPair, error) {
	pub, err := m.load(ctx, keyID, domain.KeyTypePublic)
	if err != nil {
		return nil, err
	}
	priv, err := m.load(ctx, keyID, domain.KeyTypePrivate)
	if err != nil {
		return nil, err
	}
	if pub == nil || priv == nil {
		return nil, nil
	}
	return &domain.KeyPair{
		KeyID:      keyID,
		KeyRingID:  m.keyRingID,
		PublicKey:  pub,
		PrivateKey: priv,
	}, nil
}

// ListRotations は共通鍵の切り替え履歴を返す。
func (m *ServiceKeyManager) ListRotations(ctx context.Context) ([]*domain.KeyRotation, error) {
	return m.repo.FindAllRotations(ctx)
}

// ExportKeys は全鍵素材をアンラップしてアーカイブにまとめる。
func (m *ServiceKeyManager) ExportKeys(ctx context.Context) (*domain.KeyArchive, error) {
	records, err := m.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("finding keys: %w", err)
	}

	archive := &domain.KeyArchive{Version: 1, Keys: make([]domain.ArchivedKey, 0, len(records))}
	for _, rec := range records {
		data, err := m.kmsClient.Decrypt(ctx, rec.WrappedData)
		if err != nil {
			return nil, fmt.Errorf("unwrapping %s key %q: %w", rec.Type, rec.Name, err)
		}
		archive.Keys = append(archive.Keys, domain.ArchivedKey{Name: rec.Name, Type: rec.Type, Data: data})
	}
	return archive, nil
}

// ImportKeys はアーカイブの鍵素材を鍵ストアに取り込む。既存の同名鍵は置き換える。
func (m *ServiceKeyManager) ImportKeys(ctx context.Context, archive *domain.KeyArchive) error {
	if archive == nil || archive.Version != 1 {
		return domain.ErrInvalidKeyArchive
	}
	for _, k := range archive.Keys {
		switch k.Type {
		case domain.KeyTypeSymmetric, domain.KeyTypePrivate, domain.KeyTypePublic, domain.KeyTypePassword:
		default:
			return fmt.Errorf("%w: unknown key type %q", domain.ErrInvalidKeyArchive, k.Type)
		}
		if err := m.store(ctx, k.Name, k.Type, k.Data, true); err != nil {
			return err
		}
	}
	m.resetCache()
	return nil
}

// RemoveAllKeys は全鍵素材を削除する。
func (m *ServiceKeyManager) RemoveAllKeys(ctx context.Context) error {
	if err := m.repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("deleting keys: %w", err)
	}
	m.resetCache()
	return nil
}

func (m *ServiceKeyManager) resetCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentLoaded = false
	m.currentSymmetricKeyID = ""
	m.symmetricKeys = make(map[string][]byte)
}
