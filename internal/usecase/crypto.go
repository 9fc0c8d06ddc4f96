package usecase

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"fmt"

	"sealed-mail/internal/domain"
)

const (
	keySize = 32 // AES-256 = 256 bits = 32 bytes

	// rsaKeyBits のRSA鍵で暗号化した共通鍵は常に rsaHeaderSize バイトになる。
	rsaKeyBits    = 2048
	rsaHeaderSize = rsaKeyBits / 8
)

// generateAESKey はAES-256鍵を生成する。
func generateAESKey() ([]byte, error) {
	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating random key: %w", err)
	}
	return key, nil
}

// encryptAESCBC は IV(16) ‖ AES-CBC-PKCS7(plaintext) を返す。
func encryptAESCBC(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(padded))
	iv := out[:aes.BlockSize]
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generating iv: %w", err)
	}
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], padded)
	return out, nil
}

// decryptAESCBC は encryptAESCBC の出力を復号する。
func decryptAESCBC(key, data []byte) ([]byte, error) {
	if len(data) < 2*aes.BlockSize {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrSealedDataTooShort, len(data))
	}
	if len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of the block size", domain.ErrMalformedSealedData, len(data))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	out := make([]byte, len(data)-aes.BlockSize)
	cipher.NewCBCDecrypter(block, data[:aes.BlockSize]).CryptBlocks(out, data[aes.BlockSize:])
	return pkcs7Unpad(out, aes.BlockSize)
}

func pkcs7Pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(bytes.Clone(b), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, fmt.Errorf("%w: invalid padded length", domain.ErrMalformedSealedData)
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, fmt.Errorf("%w: invalid padding", domain.ErrMalformedSealedData)
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, fmt.Errorf("%w: invalid padding", domain.ErrMalformedSealedData)
		}
	}
	return b[:len(b)-n], nil
}

// generateRSAKeyPair はRSA鍵ペアを生成し、PKCS#1 DERで返す。
func generateRSAKeyPair() (publicKey, privateKey []byte, err error) {
	key, err := rsa.GenerateKey(rand.Reader, rsaKeyBits)
	if err != nil {
		return nil, nil, fmt.Errorf("generating rsa key: %w", err)
	}
	return x509.MarshalPKCS1PublicKey(&key.PublicKey), x509.MarshalPKCS1PrivateKey(key), nil
}

// decryptRSA は秘密鍵（PKCS#1 DER）で data を復号する。
func decryptRSA(privateKey []byte, algorithm string, data []byte) ([]byte, error) {
	priv, err := x509.ParsePKCS1PrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	var out []byte
	switch algorithm {
	case domain.AlgorithmRSAPKCS1:
		out, err = rsa.DecryptPKCS1v15(nil, priv, data)
	case domain.AlgorithmRSAOAEP:
		out, err = rsa.DecryptOAEP(sha1.New(), nil, priv, data, nil)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedAlgorithm, algorithm)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedSealedData, err)
	}
	return out, nil
}
