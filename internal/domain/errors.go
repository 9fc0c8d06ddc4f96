package domain

import "errors"

var (
	// ErrKeyNotFound は指定された鍵IDの鍵が鍵ストアに存在しない場合のエラー。
	ErrKeyNotFound = errors.New("key not found")

	// ErrKeyAlreadyExists は同じ鍵ID・種別の鍵が既に存在する場合のエラー。
	ErrKeyAlreadyExists = errors.New("key already exists")

	// ErrSealedDataTooShort は封印データが暗号ヘッダより短い場合のエラー。
	ErrSealedDataTooShort = errors.New("sealed data too short")

	// ErrMalformedSealedData は封印データの長さやパディングが不正な場合のエラー。
	ErrMalformedSealedData = errors.New("malformed sealed data")

	// ErrUnsupportedAlgorithm は封印アルゴリズムを解釈できない場合のエラー。
	ErrUnsupportedAlgorithm = errors.New("unsupported sealing algorithm")

	// ErrObjectNotFound はオブジェクトストレージにキーが存在しない場合のエラー。
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidKeyArchive は鍵アーカイブの形式が不正な場合のエラー。
	ErrInvalidKeyArchive = errors.New("invalid key archive")

	// ErrMigrationFailed はマイグレーション実行時のエラー。
	ErrMigrationFailed = errors.New("migration failed")

	// ErrInvalidMigrationFile はマイグレーションファイルのフォーマットが不正な場合のエラー。
	ErrInvalidMigrationFile = errors.New("invalid migration file")
)

// 公開APIのエラー種別。Error.Kind に設定され、errors.Is で判定する。
var (
	ErrNotFound                  = errors.New("not found")
	ErrInvalidInput              = errors.New("invalid input")
	ErrFailed                    = errors.New("request failed")
	ErrUnknown                   = errors.New("unknown error")
	ErrUnsealing                 = errors.New("unsealing failed")
	ErrLimitExceeded             = errors.New("limit exceeded")
	ErrPublicKey                 = errors.New("public key error")
	ErrInsufficientEntitlements  = errors.New("insufficient entitlements")
	ErrEntitlementExceeded       = errors.New("entitlement exceeded")
	ErrAddressUnavailable        = errors.New("address unavailable")
	ErrUnauthorized              = errors.New("unauthorized")
	ErrAuthentication            = errors.New("authentication failed")
	ErrMessageSizeLimitExceeded  = errors.New("message size limit exceeded")
	ErrInvalidEmailContents      = errors.New("invalid email contents")
	ErrNotificationNotApplicable = errors.New("notification not applicable")
)

// ErrorDomain はエラーが発生した操作対象を表す。
type ErrorDomain string

const (
	DomainAddress       ErrorDomain = "email address"
	DomainMessage       ErrorDomain = "email message"
	DomainFolder        ErrorDomain = "email folder"
	DomainBlocklist     ErrorDomain = "email blocklist"
	DomainConfiguration ErrorDomain = "email configuration"
	DomainKeys          ErrorDomain = "keys"
	DomainNotification  ErrorDomain = "notification"
)

// Error は公開APIが返す型付きエラー。
// Kind は上記の種別センチネル、Err は原因となったエラー。
type Error struct {
	Domain  ErrorDomain
	Kind    error
	Message string
	Err     error
}

// NewError は新しいErrorを生成する。
func NewError(d ErrorDomain, kind error, message string, cause error) *Error {
	return &Error{Domain: d, Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	msg := string(e.Domain) + ": " + e.Kind.Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap は種別と原因の両方を返し、errors.Is がどちらにも一致するようにする。
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
