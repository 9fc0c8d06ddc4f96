package usecase

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sealed-mail/internal/domain"
	"sealed-mail/internal/gql"
)

type testEnv struct {
	client    *EmailClient
	api       *mockAPIClient
	km        *countingKeyManager
	emails    *memObjectStore
	transient *memObjectStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	km, _ := newTestKeyManager()
	env := &testEnv{
		api:       newMockAPIClient(),
		km:        &countingKeyManager{KeyManager: km},
		emails:    newMemObjectStore("email-bucket"),
		transient: newMemObjectStore("transient-bucket"),
	}
	env.client = NewEmailClient(env.api, env.emails, env.transient, env.km,
		staticIdentity{owner: "owner-1", identityID: "identity-1"}, jsonArchiver{})
	return env
}

func (e *testEnv) withConfig(cfg gql.EmailConfigurationData) {
	e.api.responses[gql.GetEmailConfigQuery] = gql.GetEmailConfigResponse{GetEmailConfig: cfg}
}

func (e *testEnv) withAddress(id string) {
	e.api.responses[gql.GetEmailAddressQuery] = gql.GetEmailAddressResponse{
		GetEmailAddress: &gql.EmailAddress{ID: id, Owner: "owner-1", EmailAddress: "me@example.com"},
	}
}

func sealedAttr(t *testing.T, s *SealingService, keyID, value string) gql.SealedAttribute {
	t.Helper()
	attr, err := s.SealAttribute(context.Background(), keyID, value)
	require.NoError(t, err)
	return gql.NewSealedAttribute(attr)
}

func sealedMessage(t *testing.T, s *SealingService, id, keyID string, h sealedHeader) gql.SealedEmailMessage {
	t.Helper()
	raw, err := json.Marshal(h)
	require.NoError(t, err)
	return gql.SealedEmailMessage{
		ID:               id,
		EmailAddressID:   "addr-1",
		FolderID:         "inbox",
		Direction:        string(domain.DirectionInbound),
		State:            string(domain.StateReceived),
		EncryptionStatus: string(domain.EncryptionStatusUnencrypted),
		SortDateEpochMs:  1700000000000,
		RFC822Header:     sealedAttr(t, s, keyID, string(raw)),
	}
}

func TestProvisionEmailAddress_GeneratesKeysOnce(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.api.responses[gql.ProvisionEmailAddressMutation] = gql.ProvisionEmailAddressResponse{
		ProvisionEmailAddress: gql.EmailAddress{ID: "addr-1", EmailAddress: "me@example.com"},
	}
	alias := "Work"

	address, err := env.client.ProvisionEmailAddress(ctx, domain.ProvisionEmailAddressInput{
		EmailAddress:        "me@example.com",
		OwnershipProofToken: "proof",
		Alias:               &alias,
	})
	require.NoError(t, err)
	assert.Equal(t, "addr-1", address.ID)
	assert.Equal(t, 1, env.km.generateCalls)

	currentKeyID, err := env.km.GetCurrentSymmetricKeyID(ctx)
	require.NoError(t, err)
	pair, err := env.km.GetCurrentKeyPair(ctx)
	require.NoError(t, err)
	require.NotNil(t, pair)

	req, ok := env.api.lastInput(gql.ProvisionEmailAddressMutation).(gql.ProvisionEmailAddressInput)
	require.True(t, ok)
	assert.Equal(t, []string{"proof"}, req.OwnershipProofTokens)
	assert.Equal(t, pair.KeyID, req.Key.KeyID)
	assert.Equal(t, "key-ring-1", req.Key.KeyRingID)
	require.NotNil(t, req.Alias)
	assert.Equal(t, currentKeyID, req.Alias.KeyID)

	got, err := env.client.sealing.UnsealAttribute(ctx, req.Alias.Domain())
	require.NoError(t, err)
	assert.Equal(t, alias, got)

	// 2回目は既存の鍵を再利用する
	_, err = env.client.ProvisionEmailAddress(ctx, domain.ProvisionEmailAddressInput{
		EmailAddress:        "other@example.com",
		OwnershipProofToken: "proof",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, env.km.generateCalls)
}

func TestProvisionEmailAddress_UnknownKeyPair(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.ProvisionEmailAddress(context.Background(), domain.ProvisionEmailAddressInput{
		EmailAddress:        "me@example.com",
		OwnershipProofToken: "proof",
		KeyID:               "no-such-pair",
	})
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	assert.Zero(t, env.api.callCount(gql.ProvisionEmailAddressMutation))
}

func TestProvisionEmailAddress_BackendError(t *testing.T) {
	env := newTestEnv(t)
	env.api.errs[gql.ProvisionEmailAddressMutation] = gql.Errors{{ErrorType: gql.ErrorTypeAddressUnavailable}}

	_, err := env.client.ProvisionEmailAddress(context.Background(), domain.ProvisionEmailAddressInput{
		EmailAddress:        "taken@example.com",
		OwnershipProofToken: "proof",
	})
	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.DomainAddress, de.Domain)
	assert.ErrorIs(t, err, domain.ErrAddressUnavailable)
}

func TestUpdateEmailMessages_LimitExceeded(t *testing.T) {
	env := newTestEnv(t)
	env.withConfig(gql.EmailConfigurationData{UpdateEmailMessagesLimit: 2})
	seen := true

	_, err := env.client.UpdateEmailMessages(context.Background(), domain.UpdateEmailMessagesInput{
		IDs:    []string{"m1", "m2", "m3"},
		Values: domain.UpdateEmailMessagesValues{Seen: &seen},
	})
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)
	assert.Zero(t, env.api.callCount(gql.UpdateEmailMessagesMutation))
}

func TestUpdateEmailMessages_Results(t *testing.T) {
	seen := true
	in := domain.UpdateEmailMessagesInput{IDs: []string{"m1", "m2", "m1"}, Values: domain.UpdateEmailMessagesValues{Seen: &seen}}

	t.Run("partial", func(t *testing.T) {
		env := newTestEnv(t)
		env.withConfig(gql.EmailConfigurationData{UpdateEmailMessagesLimit: 10})
		env.api.responses[gql.UpdateEmailMessagesMutation] = gql.UpdateEmailMessagesResponse{
			UpdateEmailMessages: gql.BulkUpdateEmailMessagesResult{
				Status:          "PARTIAL",
				SuccessMessages: []gql.UpdatedEmailMessageSuccess{{ID: "m1", CreatedAtEpochMs: 1000, UpdatedAtEpochMs: 2000}},
				FailedMessages:  []gql.EmailMessageOperationFailure{{ID: "m2", ErrorType: "NotFound"}},
			},
		}

		result, err := env.client.UpdateEmailMessages(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, domain.BatchOperationStatusPartial, result.Status)
		require.Len(t, result.SuccessValues, 1)
		assert.Equal(t, "m1", result.SuccessValues[0].ID)
		assert.Equal(t, time.UnixMilli(2000).UTC(), result.SuccessValues[0].UpdatedAt)
		assert.Equal(t, []domain.EmailMessageOperationFailureResult{{ID: "m2", ErrorType: "NotFound"}}, result.FailureValues)

		req, ok := env.api.lastInput(gql.UpdateEmailMessagesMutation).(gql.UpdateEmailMessagesInput)
		require.True(t, ok)
		assert.Equal(t, []string{"m1", "m2"}, req.MessageIDs)
	})

	t.Run("partial without lists", func(t *testing.T) {
		env := newTestEnv(t)
		env.withConfig(gql.EmailConfigurationData{UpdateEmailMessagesLimit: 10})
		env.api.responses[gql.UpdateEmailMessagesMutation] = gql.UpdateEmailMessagesResponse{
			UpdateEmailMessages: gql.BulkUpdateEmailMessagesResult{Status: "PARTIAL"},
		}

		_, err := env.client.UpdateEmailMessages(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrUnknown)
	})

	t.Run("success", func(t *testing.T) {
		env := newTestEnv(t)
		env.withConfig(gql.EmailConfigurationData{UpdateEmailMessagesLimit: 10})
		env.api.responses[gql.UpdateEmailMessagesMutation] = gql.UpdateEmailMessagesResponse{
			UpdateEmailMessages: gql.BulkUpdateEmailMessagesResult{Status: "SUCCESS"},
		}

		result, err := env.client.UpdateEmailMessages(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, domain.BatchOperationStatusSuccess, result.Status)
		assert.Nil(t, result.SuccessValues)
	})
}

func TestDeleteEmailMessage(t *testing.T) {
	env := newTestEnv(t)
	env.withConfig(gql.EmailConfigurationData{DeleteEmailMessagesLimit: 1})
	env.api.responses[gql.DeleteEmailMessagesMutation] = gql.DeleteEmailMessagesResponse{
		DeleteEmailMessages: gql.BulkDeleteEmailMessagesResult{Status: "SUCCESS"},
	}

	result, err := env.client.DeleteEmailMessage(context.Background(), "m1")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "m1", result.ID)

	_, err = env.client.DeleteEmailMessages(context.Background(), []string{"m1", "m2"})
	assert.ErrorIs(t, err, domain.ErrLimitExceeded)
	assert.Equal(t, 1, env.api.callCount(gql.DeleteEmailMessagesMutation))
}

func TestEmailMessageLimits_ZeroIsUnlimited(t *testing.T) {
	env := newTestEnv(t)
	env.withConfig(gql.EmailConfigurationData{})
	env.api.responses[gql.UpdateEmailMessagesMutation] = gql.UpdateEmailMessagesResponse{
		UpdateEmailMessages: gql.BulkUpdateEmailMessagesResult{Status: "SUCCESS"},
	}
	env.api.responses[gql.DeleteEmailMessagesMutation] = gql.DeleteEmailMessagesResponse{
		DeleteEmailMessages: gql.BulkDeleteEmailMessagesResult{Status: "SUCCESS"},
	}
	seen := true
	ids := []string{"m1", "m2", "m3"}

	updated, err := env.client.UpdateEmailMessages(context.Background(), domain.UpdateEmailMessagesInput{
		IDs:    ids,
		Values: domain.UpdateEmailMessagesValues{Seen: &seen},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BatchOperationStatusSuccess, updated.Status)
	assert.Equal(t, 1, env.api.callCount(gql.UpdateEmailMessagesMutation))

	deleted, err := env.client.DeleteEmailMessages(context.Background(), ids)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchOperationStatusSuccess, deleted.Status)
	assert.Equal(t, 1, env.api.callCount(gql.DeleteEmailMessagesMutation))
}

func TestEmailClient_CancellationIsNotWrapped(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.client.ListEmailAddresses(ctx, domain.ListInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	var de *domain.Error
	assert.False(t, errors.As(err, &de), "cancellation must not be translated: %v", err)

	_, err = env.client.GetEmailMessage(ctx, "m1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.As(err, &de))
}

func TestListEmailMessagesForEmailFolderID_Partial(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	keyID, err := env.km.GenerateNewCurrentSymmetricKey(ctx)
	require.NoError(t, err)
	subject := "hello"

	good := sealedMessage(t, env.client.sealing, "m1", keyID, sealedHeader{
		From:    []string{`"Alice" <alice@example.com>`},
		To:      []string{"me@example.com"},
		Subject: &subject,
	})
	missing := good
	missing.ID = "m2"
	missing.RFC822Header.KeyID = "rotated-away"
	alsoGood := sealedMessage(t, env.client.sealing, "m3", keyID, sealedHeader{From: []string{"not an address"}})

	next := "token-2"
	env.api.responses[gql.ListEmailMessagesForEmailFolderIDQuery] = gql.ListEmailMessagesForEmailFolderIDResponse{
		ListEmailMessagesForEmailFolderID: gql.SealedEmailMessageConnection{
			Items:     []gql.SealedEmailMessage{good, missing, alsoGood},
			NextToken: &next,
		},
	}

	result, err := env.client.ListEmailMessagesForEmailFolderID(ctx, domain.ListEmailMessagesInput{FolderID: "inbox"})
	require.NoError(t, err)
	assert.Equal(t, domain.ListStatusPartial, result.Status)
	assert.Equal(t, 3, result.Len())
	require.NotNil(t, result.NextToken)
	assert.Equal(t, next, *result.NextToken)

	require.Len(t, result.Items, 2)
	assert.Equal(t, "m1", result.Items[0].ID)
	require.Len(t, result.Items[0].From, 1)
	assert.Equal(t, "alice@example.com", result.Items[0].From[0].EmailAddress)
	assert.Equal(t, &subject, result.Items[0].Subject)
	assert.Equal(t, "m3", result.Items[1].ID)
	assert.Equal(t, "not an address", result.Items[1].From[0].EmailAddress)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, "m2", result.Failed[0].Partial.ID)
	assert.ErrorIs(t, result.Failed[0].Cause, domain.ErrKeyNotFound)

	req, ok := env.api.lastInput(gql.ListEmailMessagesForEmailFolderIDQuery).(gql.ListEmailMessagesInput)
	require.True(t, ok)
	assert.Equal(t, "inbox", req.FolderID)
	assert.Empty(t, req.EmailAddressID)
}

func TestListEmailMessages_StructuralFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	keyID, err := env.km.GenerateNewCurrentSymmetricKey(ctx)
	require.NoError(t, err)

	good := sealedMessage(t, env.client.sealing, "m1", keyID, sealedHeader{})
	truncated := good
	truncated.ID = "m2"
	truncated.RFC822Header.Base64EncodedSealedData = base64.StdEncoding.EncodeToString([]byte("short"))

	env.api.responses[gql.ListEmailMessagesQuery] = gql.ListEmailMessagesResponse{
		ListEmailMessages: gql.SealedEmailMessageConnection{Items: []gql.SealedEmailMessage{good, truncated}},
	}

	_, err = env.client.ListEmailMessages(ctx, domain.ListEmailMessagesInput{})
	assert.ErrorIs(t, err, domain.ErrUnsealing)
	assert.ErrorIs(t, err, domain.ErrSealedDataTooShort)
}

func TestListEmailMessages_CorruptItemIsPartial(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	keyID, err := env.km.GenerateNewCurrentSymmetricKey(ctx)
	require.NoError(t, err)

	good := sealedMessage(t, env.client.sealing, "m1", keyID, sealedHeader{})

	// 最終ブロックのパディングが 0 になるよう直前のブロックを書き換える
	raw, err := json.Marshal(sealedHeader{})
	require.NoError(t, err)
	sealed, err := base64.StdEncoding.DecodeString(good.RFC822Header.Base64EncodedSealedData)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(sealed), 32)
	pad := byte(16 - len(raw)%16)
	sealed[len(sealed)-17] ^= pad

	corrupt := good
	corrupt.ID = "m2"
	corrupt.RFC822Header.Base64EncodedSealedData = base64.StdEncoding.EncodeToString(sealed)

	env.api.responses[gql.ListEmailMessagesQuery] = gql.ListEmailMessagesResponse{
		ListEmailMessages: gql.SealedEmailMessageConnection{Items: []gql.SealedEmailMessage{good, corrupt}},
	}

	result, err := env.client.ListEmailMessages(ctx, domain.ListEmailMessagesInput{})
	require.NoError(t, err)
	assert.Equal(t, domain.ListStatusPartial, result.Status)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "m1", result.Items[0].ID)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "m2", result.Failed[0].Partial.ID)
	assert.ErrorIs(t, result.Failed[0].Cause, domain.ErrMalformedSealedData)
}

func TestListEmailMessages_InvalidDateRange(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()

	tests := map[string]*domain.EmailMessageDateRange{
		"both ranges": {
			SortDate:  &domain.DateRange{Start: now.Add(-time.Hour), End: now},
			UpdatedAt: &domain.DateRange{Start: now.Add(-time.Hour), End: now},
		},
		"start after end": {
			SortDate: &domain.DateRange{Start: now, End: now.Add(-time.Hour)},
		},
	}
	for name, dr := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := env.client.ListEmailMessages(context.Background(), domain.ListEmailMessagesInput{DateRange: dr})
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Zero(t, env.api.callCount(gql.ListEmailMessagesQuery))
}

func TestSendEmailMessage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.withConfig(gql.EmailConfigurationData{EmailMessageRecipientsLimit: 2, EmailMessageMaxOutboundMessageSize: 1 << 20})
	env.api.responses[gql.SendEmailMessageMutation] = gql.SendEmailMessageResponse{}

	in := domain.SendEmailMessageInput{
		SenderEmailAddressID: "addr-1",
		Header: domain.EmailMessageHeader{
			From:    domain.EmailMessageAddress{EmailAddress: "me@example.com"},
			To:      []domain.EmailMessageAddress{{EmailAddress: "you@example.com"}},
			Subject: "hi",
		},
		Body: "hello there",
	}
	_, err := env.client.SendEmailMessage(ctx, in)
	require.NoError(t, err)

	req, ok := env.api.lastInput(gql.SendEmailMessageMutation).(gql.SendEmailMessageInput)
	require.True(t, ok)
	assert.Equal(t, "transient-bucket", req.Message.Bucket)
	assert.True(t, strings.HasPrefix(req.Message.Key, "identity-1/email/addr-1/"), req.Message.Key)
	assert.NotEmpty(t, req.ClientRefID)

	assert.Empty(t, env.transient.objects)
	assert.Equal(t, []string{req.Message.Key}, env.transient.deleted)

	t.Run("too many recipients", func(t *testing.T) {
		in := in
		in.Header.Cc = []domain.EmailMessageAddress{{EmailAddress: "a@example.com"}, {EmailAddress: "b@example.com"}}
		_, err := env.client.SendEmailMessage(ctx, in)
		assert.ErrorIs(t, err, domain.ErrLimitExceeded)
	})

	t.Run("too large", func(t *testing.T) {
		env.withConfig(gql.EmailConfigurationData{EmailMessageRecipientsLimit: 2, EmailMessageMaxOutboundMessageSize: 10})
		_, err := env.client.SendEmailMessage(ctx, in)
		assert.ErrorIs(t, err, domain.ErrMessageSizeLimitExceeded)
	})

	assert.Equal(t, 1, env.api.callCount(gql.SendEmailMessageMutation))
}

func TestGetEmailMessageRFC822Data(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	keyID, err := env.km.GenerateNewCurrentSymmetricKey(ctx)
	require.NoError(t, err)
	raw := []byte("Subject: hi\r\n\r\nbody\r\n")

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err = zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	sealed, err := env.client.sealing.SealString(ctx, keyID, buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, env.emails.Upload(ctx, "identity-1/email/addr-1/m1", sealed, map[string]string{
		domain.MetadataKeyID:           keyID,
		domain.MetadataAlgorithm:       domain.AlgorithmAESCBCPKCS7,
		domain.MetadataContentEncoding: "sudoplatform-crypto,sudoplatform-binary-data,gzip",
	}))

	data, err := env.client.GetEmailMessageRFC822Data(ctx, domain.GetEmailMessageRFC822DataInput{ID: "m1", EmailAddressID: "addr-1"})
	require.NoError(t, err)
	require.NotNil(t, data)
	assert.Equal(t, raw, data.RFC822Data)

	missing, err := env.client.GetEmailMessageRFC822Data(ctx, domain.GetEmailMessageRFC822DataInput{ID: "m2", EmailAddressID: "addr-1"})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDraftLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.withAddress("addr-1")
	raw := []byte("Subject: draft\r\n\r\nwork in progress\r\n")

	id, err := env.client.CreateDraftEmailMessage(ctx, domain.CreateDraftEmailMessageInput{
		RFC822Data:           raw,
		SenderEmailAddressID: "addr-1",
	})
	require.NoError(t, err)

	stored, ok := env.transient.objects["identity-1/email/addr-1/draft/"+id]
	require.True(t, ok)
	assert.NotEqual(t, raw, stored.data)
	assert.Equal(t, domain.AlgorithmAESCBCPKCS7, stored.metadata[domain.MetadataAlgorithm])

	draft, err := env.client.GetDraftEmailMessage(ctx, id, "addr-1")
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, raw, draft.RFC822Data)

	updated := []byte("Subject: draft\r\n\r\ndone\r\n")
	_, err = env.client.UpdateDraftEmailMessage(ctx, domain.UpdateDraftEmailMessageInput{ID: id, RFC822Data: updated, SenderEmailAddressID: "addr-1"})
	require.NoError(t, err)
	_, err = env.client.UpdateDraftEmailMessage(ctx, domain.UpdateDraftEmailMessageInput{ID: "nope", RFC822Data: updated, SenderEmailAddressID: "addr-1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	metadata, err := env.client.ListDraftEmailMessageMetadataForEmailAddressID(ctx, "addr-1")
	require.NoError(t, err)
	require.Len(t, metadata, 1)
	assert.Equal(t, id, metadata[0].ID)

	drafts, err := env.client.ListDraftEmailMessagesForEmailAddressID(ctx, "addr-1")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, updated, drafts[0].RFC822Data)

	result, err := env.client.DeleteDraftEmailMessages(ctx, domain.DeleteDraftEmailMessagesInput{IDs: []string{id, "nope"}, EmailAddressID: "addr-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.BatchOperationStatusPartial, result.Status)
	assert.Equal(t, []string{id}, result.SuccessValues)
	require.Len(t, result.FailureValues, 1)
	assert.Equal(t, "nope", result.FailureValues[0].ID)

	gone, err := env.client.GetDraftEmailMessage(ctx, id, "addr-1")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestCreateDraftEmailMessage_UnknownAddress(t *testing.T) {
	env := newTestEnv(t)
	env.api.responses[gql.GetEmailAddressQuery] = gql.GetEmailAddressResponse{}

	_, err := env.client.CreateDraftEmailMessage(context.Background(), domain.CreateDraftEmailMessageInput{
		RFC822Data:           []byte("x"),
		SenderEmailAddressID: "addr-9",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, env.transient.objects)
}

func TestScheduleSendDraftMessage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.withAddress("addr-1")
	id, err := env.client.CreateDraftEmailMessage(ctx, domain.CreateDraftEmailMessageInput{RFC822Data: []byte("x"), SenderEmailAddressID: "addr-1"})
	require.NoError(t, err)

	_, err = env.client.ScheduleSendDraftMessage(ctx, domain.ScheduleSendDraftMessageInput{
		ID: id, EmailAddressID: "addr-1", SendAt: time.Now().Add(-time.Minute),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	sendAt := time.Now().Add(time.Hour).Truncate(time.Millisecond)
	env.api.responses[gql.ScheduleSendDraftMessageMutation] = gql.ScheduleSendDraftMessageResponse{
		ScheduleSendDraftMessage: gql.ScheduledDraftMessage{
			DraftMessageKey: "identity-1/email/addr-1/draft/" + id,
			EmailAddressID:  "addr-1",
			SendAtEpochMs:   gql.ToEpochMs(sendAt),
			State:           "SCHEDULED",
		},
	}
	scheduled, err := env.client.ScheduleSendDraftMessage(ctx, domain.ScheduleSendDraftMessageInput{ID: id, EmailAddressID: "addr-1", SendAt: sendAt})
	require.NoError(t, err)
	assert.Equal(t, id, scheduled.ID)
	assert.Equal(t, domain.ScheduledDraftMessageStateScheduled, scheduled.State)
	assert.True(t, sendAt.Equal(scheduled.SendAt))

	keyID, err := env.km.GetCurrentSymmetricKeyID(ctx)
	require.NoError(t, err)
	keyData, err := env.km.GetSymmetricKeyData(ctx, keyID)
	require.NoError(t, err)
	req, ok := env.api.lastInput(gql.ScheduleSendDraftMessageMutation).(gql.ScheduleSendDraftMessageInput)
	require.True(t, ok)
	assert.Equal(t, base64.StdEncoding.EncodeToString(keyData), req.SymmetricKey)
	assert.Equal(t, 1, env.api.callCount(gql.ScheduleSendDraftMessageMutation))
}

func TestBlockEmailAddresses(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	addresses := []string{"Spam@Example.com", "junk@example.com"}
	env.api.responses[gql.BlockEmailAddressesMutation] = gql.BlockEmailAddressesResponse{
		BlockEmailAddresses: gql.BlockAddressesResult{
			Status:           "PARTIAL",
			SuccessAddresses: []string{hashBlockedValue("owner-1", addresses[0])},
			FailedAddresses:  []string{hashBlockedValue("owner-1", addresses[1])},
		},
	}

	result, err := env.client.BlockEmailAddresses(ctx, domain.BlockEmailAddressesInput{Addresses: addresses})
	require.NoError(t, err)
	assert.Equal(t, []string{addresses[0]}, result.SuccessValues)
	assert.Equal(t, []string{addresses[1]}, result.FailureValues)

	req, ok := env.api.lastInput(gql.BlockEmailAddressesMutation).(gql.BlockEmailAddressesInput)
	require.True(t, ok)
	require.Len(t, req.BlockedAddresses, 2)
	assert.Equal(t, "owner-1", req.Owner)
	assert.Equal(t, string(domain.BlockedEmailAddressActionDrop), req.BlockedAddresses[0].Action)
	assert.Equal(t, domain.BlockedAddressHashAlgorithm, req.BlockedAddresses[0].HashAlgorithm)

	value, err := env.client.sealing.UnsealAttribute(ctx, req.BlockedAddresses[0].SealedValue.Domain())
	require.NoError(t, err)
	assert.Equal(t, "spam@example.com", value)

	_, err = env.client.BlockEmailAddresses(ctx, domain.BlockEmailAddressesInput{Addresses: []string{"a@example.com", " A@example.com"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 1, env.api.callCount(gql.BlockEmailAddressesMutation))
}

func TestHashBlockedValue(t *testing.T) {
	assert.Equal(t, hashBlockedValue("owner-1", " Spam@Example.com "), hashBlockedValue("owner-1", "spam@example.com"))
	assert.NotEqual(t, hashBlockedValue("owner-1", "spam@example.com"), hashBlockedValue("addr-1", "spam@example.com"))
}

func TestGetEmailAddressBlocklist_MissingKey(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	keyID, err := env.km.GenerateNewCurrentSymmetricKey(ctx)
	require.NoError(t, err)

	orphan := sealedAttr(t, env.client.sealing, keyID, "old@example.com")
	orphan.KeyID = "deleted-key"
	env.api.responses[gql.GetEmailAddressBlocklistQuery] = gql.GetEmailAddressBlocklistResponse{
		GetEmailAddressBlocklist: struct {
			BlockedAddresses []gql.BlockedAddress `json:"blockedAddresses"`
		}{
			BlockedAddresses: []gql.BlockedAddress{
				{HashedBlockedValue: "h0", SealedValue: orphan, Action: "DROP"},
				{HashedBlockedValue: "h1", SealedValue: sealedAttr(t, env.client.sealing, keyID, "spammer@example.com"), Action: "SPAM"},
			},
		},
	}

	blocked, err := env.client.GetEmailAddressBlocklist(ctx)
	require.NoError(t, err)
	require.Len(t, blocked, 2)

	assert.Equal(t, domain.BlockedAddressFailed, blocked[0].Status.Kind)
	assert.ErrorIs(t, blocked[0].Status.Err, domain.ErrKeyNotFound)
	assert.Empty(t, blocked[0].Address)
	assert.Equal(t, "h0", blocked[0].HashedBlockedValue)

	assert.Equal(t, domain.BlockedAddressCompleted, blocked[1].Status.Kind)
	assert.Equal(t, "spammer@example.com", blocked[1].Address)
	assert.Equal(t, domain.BlockedEmailAddressActionSpam, blocked[1].Action)
}

func TestGetEmailAddressBlocklist_TruncatedEntry(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	keyID, err := env.km.GenerateNewCurrentSymmetricKey(ctx)
	require.NoError(t, err)

	truncated := sealedAttr(t, env.client.sealing, keyID, "old@example.com")
	truncated.Base64EncodedSealedData = base64.StdEncoding.EncodeToString([]byte("short"))
	env.api.responses[gql.GetEmailAddressBlocklistQuery] = gql.GetEmailAddressBlocklistResponse{
		GetEmailAddressBlocklist: struct {
			BlockedAddresses []gql.BlockedAddress `json:"blockedAddresses"`
		}{
			BlockedAddresses: []gql.BlockedAddress{
				{HashedBlockedValue: "h0", SealedValue: truncated, Action: "DROP"},
				{HashedBlockedValue: "h1", SealedValue: sealedAttr(t, env.client.sealing, keyID, "spammer@example.com"), Action: "SPAM"},
			},
		},
	}

	// ブロックリストは項目ごとの Status で失敗を返し、呼び出し全体は失敗させない
	blocked, err := env.client.GetEmailAddressBlocklist(ctx)
	require.NoError(t, err)
	require.Len(t, blocked, 2)
	assert.Equal(t, domain.BlockedAddressFailed, blocked[0].Status.Kind)
	assert.ErrorIs(t, blocked[0].Status.Err, domain.ErrUnsealing)
	assert.ErrorIs(t, blocked[0].Status.Err, domain.ErrSealedDataTooShort)
	assert.Equal(t, domain.BlockedAddressCompleted, blocked[1].Status.Kind)
	assert.Equal(t, "spammer@example.com", blocked[1].Address)
}

func TestKeyArchiveRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	keyID, err := env.client.RotateSymmetricKey(ctx)
	require.NoError(t, err)

	data, err := env.client.ExportKeys(ctx)
	require.NoError(t, err)
	require.NoError(t, env.client.Reset(ctx))

	current, err := env.km.GetCurrentSymmetricKeyID(ctx)
	require.NoError(t, err)
	assert.Empty(t, current)

	require.NoError(t, env.client.ImportKeys(ctx, data))
	current, err = env.km.GetCurrentSymmetricKeyID(ctx)
	require.NoError(t, err)
	assert.Equal(t, keyID, current)

	assert.ErrorIs(t, env.client.ImportKeys(ctx, []byte("not an archive")), domain.ErrInvalidInput)
}
