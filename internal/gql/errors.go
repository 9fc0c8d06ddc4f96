package gql

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType はバックエンドが errorType に設定するエラー種別。
type ErrorType string

const (
	ErrorTypeServiceError                  ErrorType = "sudoplatform.ServiceError"
	ErrorTypeInvalidArgument               ErrorType = "sudoplatform.InvalidArgumentError"
	ErrorTypeInsufficientEntitlements      ErrorType = "sudoplatform.InsufficientEntitlementsError"
	ErrorTypeEntitlementExceeded           ErrorType = "sudoplatform.EntitlementExceededError"
	ErrorTypeLimitExceeded                 ErrorType = "sudoplatform.LimitExceededError"
	ErrorTypeAddressNotFound               ErrorType = "sudoplatform.email.AddressNotFound"
	ErrorTypeAddressUnavailable            ErrorType = "sudoplatform.email.AddressUnavailable"
	ErrorTypeInvalidAddressFormat          ErrorType = "sudoplatform.email.InvalidAddressFormat"
	ErrorTypeInvalidEmailDomain            ErrorType = "sudoplatform.email.InvalidEmailDomain"
	ErrorTypeInvalidKeyRingID              ErrorType = "sudoplatform.email.InvalidKeyRingId"
	ErrorTypeUnauthorizedAddress           ErrorType = "sudoplatform.email.UnauthorizedAddress"
	ErrorTypeEmailMessageNotFound          ErrorType = "sudoplatform.email.EmailMessageNotFound"
	ErrorTypeMessageSizeLimitExceeded      ErrorType = "sudoplatform.email.MessageSizeLimitExceeded"
	ErrorTypeInvalidEmailContents          ErrorType = "sudoplatform.email.InvalidEmailContents"
	ErrorTypeEmailFolderNotFound           ErrorType = "sudoplatform.email.EmailFolderNotFound"
	ErrorTypeRecordNotFound                ErrorType = "sudoplatform.email.RecordNotFound"
	ErrorTypeScheduledDraftMessageNotFound ErrorType = "sudoplatform.email.ScheduledDraftMessageNotFound"
)

// ErrTransport はHTTP通信自体に失敗した場合のエラー。
var ErrTransport = errors.New("graphql transport error")

// Error はレスポンスの errors 配列の1要素。
type Error struct {
	Message   string    `json:"message"`
	ErrorType ErrorType `json:"errorType,omitempty"`
	Path      []any     `json:"path,omitempty"`
	ErrorInfo any       `json:"errorInfo,omitempty"`
}

// Errors はGraphQLエラーの一覧。先頭要素の種別で判定する。
type Errors []Error

func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ge := range e {
		if ge.ErrorType != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s", ge.ErrorType, ge.Message))
		} else {
			msgs = append(msgs, ge.Message)
		}
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

// Type は先頭エラーの種別を返す。
func (e Errors) Type() ErrorType {
	if len(e) == 0 {
		return ""
	}
	return e[0].ErrorType
}

// HTTPError は2xx以外のHTTPステータスを表す。
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("graphql: unexpected status %d: %s", e.StatusCode, e.Body)
}
