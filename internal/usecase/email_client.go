package usecase

import (
	"context"
	"fmt"
	"path"
	"time"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/gql"
)

// APIClient はバックエンドのGraphQL APIを呼び出すインターフェース。
// out には data をデコードする。
type APIClient interface {
	Query(ctx context.Context, document string, variables map[string]any, out any) error
	Mutate(ctx context.Context, document string, variables map[string]any, out any) error
}

// ObjectStore はオブジェクトストレージの1バケットを操作するインターフェース。
type ObjectStore interface {
	Bucket() string
	Region() string
	Upload(ctx context.Context, key string, data []byte, metadata map[string]string) error
	Download(ctx context.Context, key string) ([]byte, *domain.ObjectInfo, error)
	List(ctx context.Context, prefix string) ([]domain.ObjectInfo, error)
	GetObjectMetadata(ctx context.Context, key string) (*domain.ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// IdentityProvider はサインイン中のユーザーの識別子を返す。
type IdentityProvider interface {
	// Owner はバックエンドでの所有者IDを返す。
	Owner(ctx context.Context) (string, error)
	// IdentityID はオブジェクトストレージのキー接頭辞に使用するIDを返す。
	IdentityID(ctx context.Context) (string, error)
}

// KeyArchiver は鍵アーカイブをバイト列に変換する。
type KeyArchiver interface {
	Marshal(archive *domain.KeyArchive) ([]byte, error)
	Unmarshal(data []byte) (*domain.KeyArchive, error)
}

// EmailClient はメールサービスの公開APIを提供する。
// 各操作は入力検証、GraphQL/S3呼び出し、エラー変換、開封の順に処理する。
type EmailClient struct {
	api            APIClient
	emailStore     ObjectStore
	transientStore ObjectStore
	keyManager     KeyManager
	sealing        *SealingService
	unsealer       *Unsealer
	identity       IdentityProvider
	archiver       KeyArchiver
	now            func() time.Time
}

// NewEmailClient は新しいEmailClientを生成する。
// emailStore は受信済みメッセージ本文のバケット、transientStore は下書きと送信用の一時バケット。
func NewEmailClient(
	api APIClient,
	emailStore ObjectStore,
	transientStore ObjectStore,
	keyManager KeyManager,
	identity IdentityProvider,
	archiver KeyArchiver,
) *EmailClient {
	sealing := NewSealingService(keyManager)
	return &EmailClient{
		api:            api,
		emailStore:     emailStore,
		transientStore: transientStore,
		keyManager:     keyManager,
		sealing:        sealing,
		unsealer:       NewUnsealer(sealing, keyManager),
		identity:       identity,
		archiver:       archiver,
		now:            time.Now,
	}
}

// ensureSymmetricKey は現在の共通鍵IDを返す。共通鍵が無い場合は生成する。
func (c *EmailClient) ensureSymmetricKey(ctx context.Context) (string, error) {
	keyID, err := c.keyManager.GetCurrentSymmetricKeyID(ctx)
	if err != nil {
		return "", err
	}
	if keyID != "" {
		return keyID, nil
	}
	return c.keyManager.GenerateNewCurrentSymmetricKey(ctx)
}

func (c *EmailClient) sealWithCurrentKey(ctx context.Context, value string) (gql.SealedAttribute, error) {
	keyID, err := c.ensureSymmetricKey(ctx)
	if err != nil {
		return gql.SealedAttribute{}, err
	}
	attr, err := c.sealing.SealAttribute(ctx, keyID, value)
	if err != nil {
		return gql.SealedAttribute{}, err
	}
	return gql.NewSealedAttribute(attr), nil
}

// emailObjectPrefix は <identityId>/email/<emailAddressId> を返す。
func (c *EmailClient) emailObjectPrefix(ctx context.Context, emailAddressID string) (string, error) {
	identityID, err := c.identity.IdentityID(ctx)
	if err != nil {
		return "", fmt.Errorf("resolving identity: %w", err)
	}
	return path.Join(identityID, "email", emailAddressID), nil
}

func (c *EmailClient) draftKey(ctx context.Context, emailAddressID, draftID string) (string, error) {
	prefix, err := c.emailObjectPrefix(ctx, emailAddressID)
	if err != nil {
		return "", err
	}
	return path.Join(prefix, "draft", draftID), nil
}

func (c *EmailClient) draftPrefix(ctx context.Context, emailAddressID string) (string, error) {
	prefix, err := c.emailObjectPrefix(ctx, emailAddressID)
	if err != nil {
		return "", err
	}
	return prefix + "/draft/", nil
}

func listVariables(in domain.ListInput) map[string]any {
	return map[string]any{"input": gql.ListInput{Limit: in.Limit, NextToken: in.NextToken}}
}

func input(v any) map[string]any {
	return map[string]any{"input": v}
}
