package infra

import (
	"bytes"
	"fmt"

	"filippo.io/age"
	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"sealed-mail/internal/domain"
)

// archiveMagic はエクスポートファイルの先頭に付与する識別子。
var archiveMagic = []byte("SMKA")

const (
	archiveFlagPlain     byte = 0
	archiveFlagEncrypted byte = 1
)

var (
	archiveEncMode cbor.EncMode
	archiveDecMode cbor.DecMode
	zstdEncoder    *zstd.Encoder
	zstdDecoder    *zstd.Decoder
)

func init() {
	var err error
	archiveEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("infra: CBOR encoder initialization failed: " + err.Error())
	}
	archiveDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("infra: CBOR decoder initialization failed: " + err.Error())
	}
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("infra: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("infra: zstd decoder initialization failed: " + err.Error())
	}
}

// KeyArchiver は鍵アーカイブを CBOR + zstd でエンコードする。
// パスフレーズを指定した場合はさらにageで暗号化する。
//
// 形式: "SMKA" ‖ flag(1バイト) ‖ payload
type KeyArchiver struct {
	passphrase string
	workFactor int
}

// NewKeyArchiver は新しいKeyArchiverを生成する。passphrase が空の場合は暗号化しない。
func NewKeyArchiver(passphrase string) *KeyArchiver {
	return &KeyArchiver{passphrase: passphrase}
}

// SetWorkFactor はscryptのワークファクタ(log2)を設定する。
func (a *KeyArchiver) SetWorkFactor(logN int) {
	a.workFactor = logN
}

// Marshal はアーカイブをバイト列に変換する。
func (a *KeyArchiver) Marshal(archive *domain.KeyArchive) ([]byte, error) {
	encoded, err := archiveEncMode.Marshal(archive)
	if err != nil {
		return nil, fmt.Errorf("encoding key archive: %w", err)
	}
	payload := zstdEncoder.EncodeAll(encoded, nil)

	flag := archiveFlagPlain
	if a.passphrase != "" {
		recipient, err := age.NewScryptRecipient(a.passphrase)
		if err != nil {
			return nil, fmt.Errorf("creating scrypt recipient: %w", err)
		}
		if a.workFactor > 0 {
			recipient.SetWorkFactor(a.workFactor)
		}
		if payload, err = ageEncrypt(payload, recipient); err != nil {
			return nil, err
		}
		flag = archiveFlagEncrypted
	}

	out := make([]byte, 0, len(archiveMagic)+1+len(payload))
	out = append(out, archiveMagic...)
	out = append(out, flag)
	return append(out, payload...), nil
}

// Unmarshal はバイト列からアーカイブを復元する。
func (a *KeyArchiver) Unmarshal(data []byte) (*domain.KeyArchive, error) {
	if len(data) <= len(archiveMagic) || !bytes.HasPrefix(data, archiveMagic) {
		return nil, fmt.Errorf("%w: missing header", domain.ErrInvalidKeyArchive)
	}
	flag, payload := data[len(archiveMagic)], data[len(archiveMagic)+1:]

	switch flag {
	case archiveFlagPlain:
	case archiveFlagEncrypted:
		if a.passphrase == "" {
			return nil, fmt.Errorf("%w: archive is encrypted and no passphrase was given", domain.ErrInvalidKeyArchive)
		}
		identity, err := age.NewScryptIdentity(a.passphrase)
		if err != nil {
			return nil, fmt.Errorf("creating scrypt identity: %w", err)
		}
		if payload, err = ageDecrypt(payload, identity); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidKeyArchive, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown flag %d", domain.ErrInvalidKeyArchive, flag)
	}

	encoded, err := zstdDecoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd decompress: %w", domain.ErrInvalidKeyArchive, err)
	}
	var archive domain.KeyArchive
	if err := archiveDecMode.Unmarshal(encoded, &archive); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidKeyArchive, err)
	}
	return &archive, nil
}
