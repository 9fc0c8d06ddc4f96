package gql

type PublicKeyInput struct {
	KeyID     string `json:"keyId"`
	KeyRingID string `json:"keyRingId"`
	Algorithm string `json:"algorithm"`
	KeyFormat string `json:"keyFormat"`
	PublicKey string `json:"publicKey"`
}

type ProvisionEmailAddressInput struct {
	EmailAddress         string           `json:"emailAddress"`
	OwnershipProofTokens []string         `json:"ownershipProofTokens"`
	Key                  PublicKeyInput   `json:"key"`
	Alias                *SealedAttribute `json:"alias,omitempty"`
}

type DeprovisionEmailAddressInput struct {
	EmailAddressID string `json:"emailAddressId"`
}

type EmailAddressMetadataValues struct {
	Alias *SealedAttribute `json:"alias"`
}

type UpdateEmailAddressMetadataInput struct {
	ID     string                     `json:"id"`
	Values EmailAddressMetadataValues `json:"values"`
}

type ListInput struct {
	Limit     *int    `json:"limit,omitempty"`
	NextToken *string `json:"nextToken,omitempty"`
}

type ListEmailAddressesForSudoIDInput struct {
	SudoID    string  `json:"sudoId"`
	Limit     *int    `json:"limit,omitempty"`
	NextToken *string `json:"nextToken,omitempty"`
}

type CheckEmailAddressAvailabilityInput struct {
	LocalParts []string `json:"localParts"`
	Domains    []string `json:"domains,omitempty"`
}

type LookupEmailAddressesPublicInfoInput struct {
	EmailAddresses []string `json:"emailAddresses"`
}

type ListEmailFoldersForEmailAddressIDInput struct {
	EmailAddressID string  `json:"emailAddressId"`
	Limit          *int    `json:"limit,omitempty"`
	NextToken      *string `json:"nextToken,omitempty"`
}

type CreateCustomEmailFolderInput struct {
	EmailAddressID   string          `json:"emailAddressId"`
	CustomFolderName SealedAttribute `json:"customFolderName"`
}

type DeleteCustomEmailFolderInput struct {
	EmailFolderID  string `json:"emailFolderId"`
	EmailAddressID string `json:"emailAddressId"`
}

type CustomEmailFolderValues struct {
	CustomFolderName *SealedAttribute `json:"customFolderName,omitempty"`
}

type UpdateCustomEmailFolderInput struct {
	EmailFolderID  string                  `json:"emailFolderId"`
	EmailAddressID string                  `json:"emailAddressId"`
	Values         CustomEmailFolderValues `json:"values"`
}

type S3EmailObjectInput struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Region string `json:"region"`
}

type SendEmailMessageInput struct {
	EmailAddressID      string             `json:"emailAddressId"`
	Message             S3EmailObjectInput `json:"message"`
	ClientRefID         string             `json:"clientRefId"`
	ReplyingMessageID   *string            `json:"replyingMessageId,omitempty"`
	ForwardingMessageID *string            `json:"forwardingMessageId,omitempty"`
}

type DateRangeInput struct {
	StartDateEpochMs float64 `json:"startDateEpochMs"`
	EndDateEpochMs   float64 `json:"endDateEpochMs"`
}

type EmailMessageDateRangeInput struct {
	SortDateEpochMs  *DateRangeInput `json:"sortDateEpochMs,omitempty"`
	UpdatedAtEpochMs *DateRangeInput `json:"updatedAtEpochMs,omitempty"`
}

// ListEmailMessagesInput は3種類のメッセージ一覧で共用する。
// EmailAddressID と FolderID は該当する一覧でのみ設定する。
type ListEmailMessagesInput struct {
	EmailAddressID         string                      `json:"emailAddressId,omitempty"`
	FolderID               string                      `json:"folderId,omitempty"`
	SpecifiedDateRange     *EmailMessageDateRangeInput `json:"specifiedDateRange,omitempty"`
	SortOrder              string                      `json:"sortOrder,omitempty"`
	IncludeDeletedMessages bool                        `json:"includeDeletedMessages"`
	Limit                  *int                        `json:"limit,omitempty"`
	NextToken              *string                     `json:"nextToken,omitempty"`
}

type UpdateEmailMessagesValues struct {
	FolderID *string `json:"folderId,omitempty"`
	Seen     *bool   `json:"seen,omitempty"`
}

type UpdateEmailMessagesInput struct {
	MessageIDs []string                  `json:"messageIds"`
	Values     UpdateEmailMessagesValues `json:"values"`
}

type DeleteEmailMessagesInput struct {
	MessageIDs []string `json:"messageIds"`
}

type ScheduleSendDraftMessageInput struct {
	DraftMessageKey string  `json:"draftMessageKey"`
	EmailAddressID  string  `json:"emailAddressId"`
	SendAtEpochMs   float64 `json:"sendAtEpochMs"`
	SymmetricKey    string  `json:"symmetricKey"`
}

type CancelScheduledDraftMessageInput struct {
	DraftMessageKey string `json:"draftMessageKey"`
	EmailAddressID  string `json:"emailAddressId"`
}

type ScheduledDraftMessageStateFilter struct {
	In []string `json:"in,omitempty"`
}

type ScheduledDraftMessageFilterInput struct {
	State *ScheduledDraftMessageStateFilter `json:"state,omitempty"`
}

type ListScheduledDraftMessagesForEmailAddressIDInput struct {
	EmailAddressID string                            `json:"emailAddressId"`
	Filter         *ScheduledDraftMessageFilterInput `json:"filter,omitempty"`
	Limit          *int                              `json:"limit,omitempty"`
	NextToken      *string                           `json:"nextToken,omitempty"`
}

type BlockedEmailAddressInput struct {
	HashAlgorithm      string          `json:"hashAlgorithm"`
	HashedBlockedValue string          `json:"hashedBlockedValue"`
	SealedValue        SealedAttribute `json:"sealedValue"`
	Action             string          `json:"action"`
}

type BlockEmailAddressesInput struct {
	Owner            string                     `json:"owner"`
	BlockedAddresses []BlockedEmailAddressInput `json:"blockedAddresses"`
	EmailAddressID   *string                    `json:"emailAddressId,omitempty"`
}

type UnblockEmailAddressesInput struct {
	Owner              string   `json:"owner"`
	UnblockedAddresses []string `json:"unblockedAddresses"`
}

type GetEmailAddressBlocklistInput struct {
	Owner string `json:"owner"`
}
