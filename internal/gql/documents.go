package gql

const sealedAttributeFields = `
  algorithm
  keyId
  plainTextType
  base64EncodedSealedData`

const ownerFields = `
  owners {
    id
    issuer
  }`

const emailFolderFragment = `
fragment EmailFolder on EmailFolder {
  id
  owner` + ownerFields + `
  emailAddressId
  folderName
  customFolderName {` + sealedAttributeFields + `
  }
  size
  unseenCount
  ttl
  version
  createdAtEpochMs
  updatedAtEpochMs
}`

const emailAddressFragment = `
fragment EmailAddress on EmailAddress {
  id
  owner` + ownerFields + `
  identity
  keyRingId
  emailAddress
  size
  numberOfEmailMessages
  version
  createdAtEpochMs
  updatedAtEpochMs
  lastReceivedAtEpochMs
  alias {` + sealedAttributeFields + `
  }
  folders {
    ...EmailFolder
  }
}` + emailFolderFragment

const sealedEmailMessageFragment = `
fragment SealedEmailMessage on SealedEmailMessage {
  id
  clientRefId
  owner` + ownerFields + `
  emailAddressId
  folderId
  previousFolderId
  seen
  repliedTo
  forwarded
  direction
  state
  version
  sortDateEpochMs
  createdAtEpochMs
  updatedAtEpochMs
  size
  encryptionStatus
  dateEpochMs
  rfc822Header {` + sealedAttributeFields + `
  }
}`

const scheduledDraftMessageFragment = `
fragment ScheduledDraftMessage on ScheduledDraftMessage {
  draftMessageKey
  emailAddressId
  owner` + ownerFields + `
  sendAtEpochMs
  state
  createdAtEpochMs
  updatedAtEpochMs
}`

// アドレス
const (
	ProvisionEmailAddressMutation = `
mutation ProvisionEmailAddress($input: ProvisionEmailAddressInput!) {
  provisionEmailAddress(input: $input) {
    ...EmailAddress
  }
}` + emailAddressFragment

	DeprovisionEmailAddressMutation = `
mutation DeprovisionEmailAddress($input: DeprovisionEmailAddressInput!) {
  deprovisionEmailAddress(input: $input) {
    ...EmailAddress
  }
}` + emailAddressFragment

	UpdateEmailAddressMetadataMutation = `
mutation UpdateEmailAddressMetadata($input: UpdateEmailAddressMetadataInput!) {
  updateEmailAddressMetadata(input: $input)
}`

	GetEmailAddressQuery = `
query GetEmailAddress($id: ID!) {
  getEmailAddress(id: $id) {
    ...EmailAddress
  }
}` + emailAddressFragment

	ListEmailAddressesQuery = `
query ListEmailAddresses($input: ListEmailAddressesInput!) {
  listEmailAddresses(input: $input) {
    items {
      ...EmailAddress
    }
    nextToken
  }
}` + emailAddressFragment

	ListEmailAddressesForSudoIDQuery = `
query ListEmailAddressesForSudoId($input: ListEmailAddressesForSudoIdInput!) {
  listEmailAddressesForSudoId(input: $input) {
    items {
      ...EmailAddress
    }
    nextToken
  }
}` + emailAddressFragment

	CheckEmailAddressAvailabilityQuery = `
query CheckEmailAddressAvailability($input: CheckEmailAddressAvailabilityInput!) {
  checkEmailAddressAvailability(input: $input) {
    addresses
  }
}`

	GetEmailDomainsQuery = `
query GetEmailDomains {
  getEmailDomains {
    domains
  }
}`

	GetConfiguredEmailDomainsQuery = `
query GetConfiguredEmailDomains {
  getConfiguredEmailDomains {
    domains
  }
}`

	LookupEmailAddressesPublicInfoQuery = `
query LookupEmailAddressesPublicInfo($input: LookupEmailAddressesPublicInfoInput!) {
  lookupEmailAddressesPublicInfo(input: $input) {
    items {
      emailAddress
      keyId
      publicKey
    }
  }
}`

	GetEmailConfigQuery = `
query GetEmailConfig {
  getEmailConfig {
    deleteEmailMessagesLimit
    updateEmailMessagesLimit
    emailMessageMaxInboundMessageSize
    emailMessageMaxOutboundMessageSize
    emailMessageRecipientsLimit
    encryptedEmailMessageRecipientsLimit
  }
}`
)

// フォルダ
const (
	ListEmailFoldersForEmailAddressIDQuery = `
query ListEmailFoldersForEmailAddressId($input: ListEmailFoldersForEmailAddressIdInput!) {
  listEmailFoldersForEmailAddressId(input: $input) {
    items {
      ...EmailFolder
    }
    nextToken
  }
}` + emailFolderFragment

	CreateCustomEmailFolderMutation = `
mutation CreateCustomEmailFolder($input: CreateCustomEmailFolderInput!) {
  createCustomEmailFolder(input: $input) {
    ...EmailFolder
  }
}` + emailFolderFragment

	DeleteCustomEmailFolderMutation = `
mutation DeleteCustomEmailFolder($input: DeleteCustomEmailFolderInput!) {
  deleteCustomEmailFolder(input: $input) {
    ...EmailFolder
  }
}` + emailFolderFragment

	UpdateCustomEmailFolderMutation = `
mutation UpdateCustomEmailFolder($input: UpdateCustomEmailFolderInput!) {
  updateCustomEmailFolder(input: $input) {
    ...EmailFolder
  }
}` + emailFolderFragment
)

// メッセージ
const (
	SendEmailMessageMutation = `
mutation SendEmailMessage($input: SendEmailMessageInput!) {
  sendEmailMessageV2(input: $input) {
    id
    createdAtEpochMs
  }
}`

	GetEmailMessageQuery = `
query GetEmailMessage($id: ID!) {
  getEmailMessage(id: $id) {
    ...SealedEmailMessage
  }
}` + sealedEmailMessageFragment

	ListEmailMessagesQuery = `
query ListEmailMessages($input: ListEmailMessagesInput!) {
  listEmailMessages(input: $input) {
    items {
      ...SealedEmailMessage
    }
    nextToken
  }
}` + sealedEmailMessageFragment

	ListEmailMessagesForEmailAddressIDQuery = `
query ListEmailMessagesForEmailAddressId($input: ListEmailMessagesForEmailAddressIdInput!) {
  listEmailMessagesForEmailAddressId(input: $input) {
    items {
      ...SealedEmailMessage
    }
    nextToken
  }
}` + sealedEmailMessageFragment

	ListEmailMessagesForEmailFolderIDQuery = `
query ListEmailMessagesForEmailFolderId($input: ListEmailMessagesForEmailFolderIdInput!) {
  listEmailMessagesForEmailFolderId(input: $input) {
    items {
      ...SealedEmailMessage
    }
    nextToken
  }
}` + sealedEmailMessageFragment

	UpdateEmailMessagesMutation = `
mutation UpdateEmailMessages($input: UpdateEmailMessagesInput!) {
  updateEmailMessagesV2(input: $input) {
    status
    successMessages {
      id
      createdAtEpochMs
      updatedAtEpochMs
    }
    failedMessages {
      id
      errorType
    }
  }
}`

	DeleteEmailMessagesMutation = `
mutation DeleteEmailMessages($input: DeleteEmailMessagesInput!) {
  deleteEmailMessagesV2(input: $input) {
    status
    successMessages {
      id
    }
    failedMessages {
      id
      errorType
    }
  }
}`
)

// 下書きの予約送信
const (
	ScheduleSendDraftMessageMutation = `
mutation ScheduleSendDraftMessage($input: ScheduleSendDraftMessageInput!) {
  scheduleSendDraftMessage(input: $input) {
    ...ScheduledDraftMessage
  }
}` + scheduledDraftMessageFragment

	CancelScheduledDraftMessageMutation = `
mutation CancelScheduledDraftMessage($input: CancelScheduledDraftMessageInput!) {
  cancelScheduledDraftMessage(input: $input)
}`

	ListScheduledDraftMessagesForEmailAddressIDQuery = `
query ListScheduledDraftMessagesForEmailAddressId($input: ListScheduledDraftMessagesForEmailAddressIdInput!) {
  listScheduledDraftMessagesForEmailAddressId(input: $input) {
    items {
      ...ScheduledDraftMessage
    }
    nextToken
  }
}` + scheduledDraftMessageFragment
)

// ブロックリスト
const (
	BlockEmailAddressesMutation = `
mutation BlockEmailAddresses($input: BlockEmailAddressesInput!) {
  blockEmailAddresses(input: $input) {
    status
    failedAddresses
    successAddresses
  }
}`

	UnblockEmailAddressesMutation = `
mutation UnblockEmailAddresses($input: UnblockEmailAddressesInput!) {
  unblockEmailAddresses(input: $input) {
    status
    failedAddresses
    successAddresses
  }
}`

	GetEmailAddressBlocklistQuery = `
query GetEmailAddressBlocklist($input: GetEmailAddressBlocklistInput!) {
  getEmailAddressBlocklist(input: $input) {
    blockedAddresses {
      owner` + ownerFields + `
      hashAlgorithm
      hashedBlockedValue
      sealedValue {` + sealedAttributeFields + `
      }
      action
      emailAddressId
      createdAtEpochMs
      updatedAtEpochMs
    }
  }
}`
)
