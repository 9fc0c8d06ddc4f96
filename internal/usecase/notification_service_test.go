package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sealed-mail/internal/domain"
)

func sealNotification(t *testing.T, kp *domain.KeyPair, algorithm string, body any) json.RawMessage {
	t.Helper()
	plain, err := json.Marshal(body)
	require.NoError(t, err)
	sealed, err := sealForPublicKey(kp.PublicKey, algorithm, plain)
	require.NoError(t, err)
	data, err := json.Marshal(sealedNotification{
		KeyID:     kp.KeyID,
		Algorithm: algorithm,
		Sealed:    base64.StdEncoding.EncodeToString(sealed),
	})
	require.NoError(t, err)
	return data
}

func TestNotificationService_Decode(t *testing.T) {
	ctx := context.Background()
	km, _ := newTestKeyManager()
	kp, err := km.GenerateKeyPair(ctx)
	require.NoError(t, err)
	svc := NewNotificationService(km)

	subject := "Lunch?"
	body := map[string]any{
		"type":              "messageReceived",
		"owner":             "owner-1",
		"emailAddressId":    "addr-1",
		"sudoId":            "sudo-1",
		"messageId":         "m1",
		"folderId":          "inbox",
		"encryptionStatus":  "UNENCRYPTED",
		"subject":           subject,
		"from":              map[string]any{"emailAddress": "alice@example.com", "displayName": "Alice"},
		"hasAttachments":    true,
		"sentAtEpochMs":     1700000000000,
		"receivedAtEpochMs": 1700000001000,
	}
	data := sealNotification(t, kp, domain.AlgorithmRSAOAEP, body)

	t.Run("data as object", func(t *testing.T) {
		n, err := svc.Decode(ctx, NotificationPayload{ServiceName: "emService", Data: data})
		require.NoError(t, err)
		assert.Equal(t, domain.NotificationTypeMessageReceived, n.Type)
		assert.Equal(t, "addr-1", n.EmailAddressID)
		assert.Equal(t, "m1", n.MessageID)
		assert.Equal(t, &subject, n.Subject)
		assert.Equal(t, "alice@example.com", n.From.EmailAddress)
		require.NotNil(t, n.From.DisplayName)
		assert.Equal(t, "Alice", *n.From.DisplayName)
		assert.Nil(t, n.ReplyTo)
		assert.True(t, n.HasAttachments)
		assert.Equal(t, time.UnixMilli(1700000001000).UTC(), n.ReceivedAt)
	})

	t.Run("data as string", func(t *testing.T) {
		quoted, err := json.Marshal(string(data))
		require.NoError(t, err)
		n, err := svc.Decode(ctx, NotificationPayload{ServiceName: "emService", Data: quoted})
		require.NoError(t, err)
		assert.Equal(t, "m1", n.MessageID)
	})

	t.Run("pkcs1 header", func(t *testing.T) {
		n, err := svc.Decode(ctx, NotificationPayload{
			ServiceName: "emService",
			Data:        sealNotification(t, kp, domain.AlgorithmRSAPKCS1, body),
		})
		require.NoError(t, err)
		assert.Equal(t, "owner-1", n.Owner)
	})
}

func TestNotificationService_Decode_Errors(t *testing.T) {
	ctx := context.Background()
	km, _ := newTestKeyManager()
	kp, err := km.GenerateKeyPair(ctx)
	require.NoError(t, err)
	svc := NewNotificationService(km)

	otherType := sealNotification(t, kp, domain.AlgorithmRSAOAEP, map[string]any{"type": "messageDeleted"})
	truncated, err := json.Marshal(sealedNotification{KeyID: kp.KeyID, Algorithm: domain.AlgorithmRSAOAEP, Sealed: base64.StdEncoding.EncodeToString([]byte("tiny"))})
	require.NoError(t, err)
	unknownKey, err := json.Marshal(sealedNotification{KeyID: "nope", Algorithm: domain.AlgorithmRSAOAEP, Sealed: base64.StdEncoding.EncodeToString(make([]byte, 300))})
	require.NoError(t, err)

	tests := []struct {
		name     string
		payload  NotificationPayload
		wantKind error
	}{
		{name: "other service", payload: NotificationPayload{ServiceName: "vcService", Data: otherType}, wantKind: domain.ErrNotificationNotApplicable},
		{name: "other type", payload: NotificationPayload{ServiceName: "emService", Data: otherType}, wantKind: domain.ErrNotificationNotApplicable},
		{name: "not json", payload: NotificationPayload{ServiceName: "emService", Data: json.RawMessage(`"{nope"`)}, wantKind: domain.ErrInvalidInput},
		{name: "missing fields", payload: NotificationPayload{ServiceName: "emService", Data: json.RawMessage(`{}`)}, wantKind: domain.ErrInvalidInput},
		{name: "too short", payload: NotificationPayload{ServiceName: "emService", Data: truncated}, wantKind: domain.ErrUnsealing},
		{name: "unknown key", payload: NotificationPayload{ServiceName: "emService", Data: unknownKey}, wantKind: domain.ErrKeyNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := svc.Decode(ctx, tt.payload)
			assert.Nil(t, n)
			assert.ErrorIs(t, err, tt.wantKind)
		})
	}
}
