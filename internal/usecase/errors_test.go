package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/gql"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind error
	}{
		{
			name:     "limit exceeded",
			err:      gql.Errors{{Message: "too many", ErrorType: gql.ErrorTypeLimitExceeded}},
			wantKind: domain.ErrLimitExceeded,
		},
		{
			name:     "address unavailable",
			err:      gql.Errors{{ErrorType: gql.ErrorTypeAddressUnavailable}},
			wantKind: domain.ErrAddressUnavailable,
		},
		{
			name:     "invalid key ring",
			err:      fmt.Errorf("mutate: %w", gql.Errors{{ErrorType: gql.ErrorTypeInvalidKeyRingID}}),
			wantKind: domain.ErrPublicKey,
		},
		{
			name:     "unmapped graphql error",
			err:      gql.Errors{{ErrorType: "sudoplatform.SomethingNew"}},
			wantKind: domain.ErrUnknown,
		},
		{
			name:     "http 401",
			err:      &gql.HTTPError{StatusCode: 401},
			wantKind: domain.ErrAuthentication,
		},
		{
			name:     "http 403",
			err:      &gql.HTTPError{StatusCode: 403},
			wantKind: domain.ErrUnauthorized,
		},
		{
			name:     "http 500",
			err:      &gql.HTTPError{StatusCode: 500},
			wantKind: domain.ErrFailed,
		},
		{
			name:     "transport",
			err:      fmt.Errorf("%w: connection refused", gql.ErrTransport),
			wantKind: domain.ErrFailed,
		},
		{
			name:     "missing key",
			err:      fmt.Errorf("%w: k1", domain.ErrKeyNotFound),
			wantKind: domain.ErrKeyNotFound,
		},
		{
			name:     "malformed",
			err:      domain.ErrMalformedSealedData,
			wantKind: domain.ErrUnsealing,
		},
		{
			name:     "unsupported algorithm",
			err:      domain.ErrUnsupportedAlgorithm,
			wantKind: domain.ErrUnsealing,
		},
		{
			name:     "missing object",
			err:      domain.ErrObjectNotFound,
			wantKind: domain.ErrNotFound,
		},
		{
			name:     "anything else",
			err:      errors.New("boom"),
			wantKind: domain.ErrUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(domain.DomainMessage, tt.err)

			var de *domain.Error
			if !errors.As(got, &de) {
				t.Fatalf("want *domain.Error, got %T", got)
			}
			if de.Domain != domain.DomainMessage {
				t.Errorf("want domain %q, got %q", domain.DomainMessage, de.Domain)
			}
			if !errors.Is(got, tt.wantKind) {
				t.Errorf("want kind %v, got %v", tt.wantKind, got)
			}
			if de.Err == nil || de.Err.Error() != tt.err.Error() {
				t.Errorf("want cause preserved, got %v", de.Err)
			}
		})
	}
}

func TestTranslate_Passthrough(t *testing.T) {
	if translate(domain.DomainAddress, nil) != nil {
		t.Error("want nil for nil")
	}

	for _, err := range []error{context.Canceled, context.DeadlineExceeded, fmt.Errorf("wrapped: %w", context.Canceled)} {
		got := translate(domain.DomainAddress, err)
		if got != err {
			t.Errorf("want cancellation unchanged, got %v", got)
		}
		var de *domain.Error
		if errors.As(got, &de) {
			t.Errorf("want cancellation not wrapped, got %v", got)
		}
	}

	already := domain.NewError(domain.DomainFolder, domain.ErrNotFound, "", nil)
	if got := translate(domain.DomainAddress, already); got != error(already) {
		t.Errorf("want translated error unchanged, got %v", got)
	}
}
