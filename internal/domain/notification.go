package domain

import "time"

// NotificationServiceName はメールサービス宛て通知の servicename。
const NotificationServiceName = "emService"

// NotificationType は通知の種類を表す。
type NotificationType string

const (
	NotificationTypeMessageReceived NotificationType = "messageReceived"
)

// EmailMessageReceivedNotification はメッセージ受信通知を開封した結果を表す。
type EmailMessageReceivedNotification struct {
	Type             NotificationType
	Owner            string
	EmailAddressID   string
	SudoID           string
	MessageID        string
	FolderID         string
	EncryptionStatus EncryptionStatus
	Subject          *string
	From             EmailMessageAddress
	ReplyTo          *EmailMessageAddress
	HasAttachments   bool
	SentAt           time.Time
	ReceivedAt       time.Time
}
