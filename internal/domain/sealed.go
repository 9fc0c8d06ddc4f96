package domain

// 封印アルゴリズム。SealedAttribute.Algorithm およびS3メタデータに格納される。
const (
	AlgorithmAESCBCPKCS7 = "AES/CBC/PKCS7Padding"
	AlgorithmRSAPKCS1    = "RSA/ECB/PKCS1Padding"
	AlgorithmRSAOAEP     = "RSA/ECB/OAEPWithSHA-1AndMGF1Padding"
)

// PlainTextTypeString は封印前の値が文字列であることを表す。
const PlainTextTypeString = "string"

// SealedAttribute は封印された1フィールドを表す。バックエンドから受信した後は変更しない。
type SealedAttribute struct {
	Algorithm               string
	KeyID                   string
	PlainTextType           string
	Base64EncodedSealedData string
}

// IsSymmetric は共通鍵で封印されているかを返す。
func (a SealedAttribute) IsSymmetric() bool {
	return a.Algorithm == AlgorithmAESCBCPKCS7
}
