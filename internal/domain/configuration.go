package domain

// EmailConfigurationData はサーバ側で設定された制限値を表す。
type EmailConfigurationData struct {
	DeleteEmailMessagesLimit             int
	UpdateEmailMessagesLimit             int
	EmailMessageMaxInboundMessageSize    int
	EmailMessageMaxOutboundMessageSize   int
	EmailMessageRecipientsLimit          int
	EncryptedEmailMessageRecipientsLimit int
}
