// Package domain はドメインモデルとビジネスルールを定義する。
package domain

import "time"

// KeyType は鍵ストアに保存される鍵素材の種別を表す。
type KeyType string

const (
	// KeyTypeSymmetric はAES-256共通鍵を表す。
	KeyTypeSymmetric KeyType = "symmetric"
	// KeyTypePrivate はRSA秘密鍵（PKCS#1 DER）を表す。
	KeyTypePrivate KeyType = "private"
	// KeyTypePublic はRSA公開鍵（PKCS#1 DER）を表す。
	KeyTypePublic KeyType = "public"
	// KeyTypePassword は任意の秘密値（現在の鍵IDなど）を表す。
	KeyTypePassword KeyType = "password"
)

// KeyRecord は鍵ストアの1レコードを表す。Data はKMSでラップ済み。
type KeyRecord struct {
	ID          string
	Name        string
	Type        KeyType
	WrappedData []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// KeyPair は非対称鍵ペアを表す。
type KeyPair struct {
	KeyID      string
	KeyRingID  string
	PublicKey  []byte
	PrivateKey []byte
}

// ArchivedKey はエクスポートされた平文の鍵素材を表す。
type ArchivedKey struct {
	Name string  `cbor:"1,keyasint"`
	Type KeyType `cbor:"2,keyasint"`
	Data []byte  `cbor:"3,keyasint"`
}

// KeyArchive は鍵エクスポートの単位。
type KeyArchive struct {
	Version int           `cbor:"1,keyasint"`
	Keys    []ArchivedKey `cbor:"2,keyasint"`
}

// KeyRotation は現在の共通鍵の切り替え履歴を表す。
type KeyRotation struct {
	ID            string
	KeyID         string
	PreviousKeyID *string
	RotatedAt     time.Time
}
