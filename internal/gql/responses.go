package gql

// 各操作の data に対応するレスポンス型。

type ProvisionEmailAddressResponse struct {
	ProvisionEmailAddress EmailAddress `json:"provisionEmailAddress"`
}

type DeprovisionEmailAddressResponse struct {
	DeprovisionEmailAddress EmailAddress `json:"deprovisionEmailAddress"`
}

type UpdateEmailAddressMetadataResponse struct {
	UpdateEmailAddressMetadata string `json:"updateEmailAddressMetadata"`
}

type GetEmailAddressResponse struct {
	GetEmailAddress *EmailAddress `json:"getEmailAddress"`
}

type EmailAddressConnection struct {
	Items     []EmailAddress `json:"items"`
	NextToken *string        `json:"nextToken"`
}

type ListEmailAddressesResponse struct {
	ListEmailAddresses EmailAddressConnection `json:"listEmailAddresses"`
}

type ListEmailAddressesForSudoIDResponse struct {
	ListEmailAddressesForSudoID EmailAddressConnection `json:"listEmailAddressesForSudoId"`
}

type CheckEmailAddressAvailabilityResponse struct {
	CheckEmailAddressAvailability struct {
		Addresses []string `json:"addresses"`
	} `json:"checkEmailAddressAvailability"`
}

type SupportedEmailDomains struct {
	Domains []string `json:"domains"`
}

type GetEmailDomainsResponse struct {
	GetEmailDomains SupportedEmailDomains `json:"getEmailDomains"`
}

type GetConfiguredEmailDomainsResponse struct {
	GetConfiguredEmailDomains SupportedEmailDomains `json:"getConfiguredEmailDomains"`
}

type LookupEmailAddressesPublicInfoResponse struct {
	LookupEmailAddressesPublicInfo struct {
		Items []EmailAddressPublicInfo `json:"items"`
	} `json:"lookupEmailAddressesPublicInfo"`
}

type GetEmailConfigResponse struct {
	GetEmailConfig EmailConfigurationData `json:"getEmailConfig"`
}

type EmailFolderConnection struct {
	Items     []EmailFolder `json:"items"`
	NextToken *string       `json:"nextToken"`
}

type ListEmailFoldersForEmailAddressIDResponse struct {
	ListEmailFoldersForEmailAddressID EmailFolderConnection `json:"listEmailFoldersForEmailAddressId"`
}

type CreateCustomEmailFolderResponse struct {
	CreateCustomEmailFolder EmailFolder `json:"createCustomEmailFolder"`
}

type DeleteCustomEmailFolderResponse struct {
	DeleteCustomEmailFolder *EmailFolder `json:"deleteCustomEmailFolder"`
}

type UpdateCustomEmailFolderResponse struct {
	UpdateCustomEmailFolder EmailFolder `json:"updateCustomEmailFolder"`
}

type SendEmailMessageResponse struct {
	SendEmailMessage struct {
		ID               string  `json:"id"`
		CreatedAtEpochMs float64 `json:"createdAtEpochMs"`
	} `json:"sendEmailMessageV2"`
}

type GetEmailMessageResponse struct {
	GetEmailMessage *SealedEmailMessage `json:"getEmailMessage"`
}

type SealedEmailMessageConnection struct {
	Items     []SealedEmailMessage `json:"items"`
	NextToken *string              `json:"nextToken"`
}

type ListEmailMessagesResponse struct {
	ListEmailMessages SealedEmailMessageConnection `json:"listEmailMessages"`
}

type ListEmailMessagesForEmailAddressIDResponse struct {
	ListEmailMessagesForEmailAddressID SealedEmailMessageConnection `json:"listEmailMessagesForEmailAddressId"`
}

type ListEmailMessagesForEmailFolderIDResponse struct {
	ListEmailMessagesForEmailFolderID SealedEmailMessageConnection `json:"listEmailMessagesForEmailFolderId"`
}

type UpdateEmailMessagesResponse struct {
	UpdateEmailMessages BulkUpdateEmailMessagesResult `json:"updateEmailMessagesV2"`
}

type DeleteEmailMessagesResponse struct {
	DeleteEmailMessages BulkDeleteEmailMessagesResult `json:"deleteEmailMessagesV2"`
}

type ScheduleSendDraftMessageResponse struct {
	ScheduleSendDraftMessage ScheduledDraftMessage `json:"scheduleSendDraftMessage"`
}

type CancelScheduledDraftMessageResponse struct {
	CancelScheduledDraftMessage string `json:"cancelScheduledDraftMessage"`
}

type ListScheduledDraftMessagesForEmailAddressIDResponse struct {
	ListScheduledDraftMessagesForEmailAddressID struct {
		Items     []ScheduledDraftMessage `json:"items"`
		NextToken *string                 `json:"nextToken"`
	} `json:"listScheduledDraftMessagesForEmailAddressId"`
}

type BlockEmailAddressesResponse struct {
	BlockEmailAddresses BlockAddressesResult `json:"blockEmailAddresses"`
}

type UnblockEmailAddressesResponse struct {
	UnblockEmailAddresses BlockAddressesResult `json:"unblockEmailAddresses"`
}

type GetEmailAddressBlocklistResponse struct {
	GetEmailAddressBlocklist struct {
		BlockedAddresses []BlockedAddress `json:"blockedAddresses"`
	} `json:"getEmailAddressBlocklist"`
}
