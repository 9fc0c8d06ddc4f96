package usecase

import (
	"context"
	"errors"
	"net/http"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/gql"
)

var gqlErrorKinds = map[gql.ErrorType]error{
	gql.ErrorTypeServiceError:                  domain.ErrFailed,
	gql.ErrorTypeInvalidArgument:               domain.ErrInvalidInput,
	gql.ErrorTypeInsufficientEntitlements:      domain.ErrInsufficientEntitlements,
	gql.ErrorTypeEntitlementExceeded:           domain.ErrEntitlementExceeded,
	gql.ErrorTypeLimitExceeded:                 domain.ErrLimitExceeded,
	gql.ErrorTypeAddressNotFound:               domain.ErrNotFound,
	gql.ErrorTypeAddressUnavailable:            domain.ErrAddressUnavailable,
	gql.ErrorTypeInvalidAddressFormat:          domain.ErrInvalidInput,
	gql.ErrorTypeInvalidEmailDomain:            domain.ErrInvalidInput,
	gql.ErrorTypeInvalidKeyRingID:              domain.ErrPublicKey,
	gql.ErrorTypeUnauthorizedAddress:           domain.ErrUnauthorized,
	gql.ErrorTypeEmailMessageNotFound:          domain.ErrNotFound,
	gql.ErrorTypeMessageSizeLimitExceeded:      domain.ErrMessageSizeLimitExceeded,
	gql.ErrorTypeInvalidEmailContents:          domain.ErrInvalidEmailContents,
	gql.ErrorTypeEmailFolderNotFound:           domain.ErrNotFound,
	gql.ErrorTypeRecordNotFound:                domain.ErrNotFound,
	gql.ErrorTypeScheduledDraftMessageNotFound: domain.ErrNotFound,
}

// isCancellation はコンテキストのキャンセルまたは期限切れによるエラーかを返す。
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// isStructural はページ全体を失敗させる開封エラーかを返す。
// 復号やパディングの失敗はその項目だけの失敗として扱う。
func isStructural(err error) bool {
	return errors.Is(err, domain.ErrSealedDataTooShort)
}

// translate は下位層のエラーを公開APIのエラー種別に変換する。
// キャンセルと変換済みのエラーはそのまま返す。
func translate(d domain.ErrorDomain, err error) error {
	if err == nil || isCancellation(err) {
		return err
	}

	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}

	var gqlErrs gql.Errors
	if errors.As(err, &gqlErrs) {
		kind, ok := gqlErrorKinds[gqlErrs.Type()]
		if !ok {
			kind = domain.ErrUnknown
		}
		return domain.NewError(d, kind, "", err)
	}

	var httpErr *gql.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusUnauthorized:
			return domain.NewError(d, domain.ErrAuthentication, "", err)
		case http.StatusForbidden:
			return domain.NewError(d, domain.ErrUnauthorized, "", err)
		}
		return domain.NewError(d, domain.ErrFailed, "", err)
	}

	switch {
	case errors.Is(err, gql.ErrTransport):
		return domain.NewError(d, domain.ErrFailed, "", err)
	case errors.Is(err, domain.ErrKeyNotFound):
		return domain.NewError(d, domain.ErrKeyNotFound, "", err)
	case isStructural(err), errors.Is(err, domain.ErrMalformedSealedData), errors.Is(err, domain.ErrUnsupportedAlgorithm):
		return domain.NewError(d, domain.ErrUnsealing, "", err)
	case errors.Is(err, domain.ErrObjectNotFound):
		return domain.NewError(d, domain.ErrNotFound, "", err)
	}
	return domain.NewError(d, domain.ErrUnknown, "", err)
}

func invalidInput(d domain.ErrorDomain, message string) error {
	return domain.NewError(d, domain.ErrInvalidInput, message, nil)
}
