package domain

// BlockedEmailAddressAction はブロック時の動作を表す。
type BlockedEmailAddressAction string

const (
	BlockedEmailAddressActionDrop BlockedEmailAddressAction = "DROP"
	BlockedEmailAddressActionSpam  BlockedEmailAddressAction = "SPAM"
)

// BlockedAddressHashAlgorithm はブロック値のハッシュアルゴリズム。
const BlockedAddressHashAlgorithm = "SHA256"

// BlockedAddressStatusKind はブロックリスト項目の開封結果。
type BlockedAddressStatusKind int

const (
	BlockedAddressCompleted BlockedAddressStatusKind = iota
	BlockedAddressFailed
)

// BlockedAddressStatus は項目ごとの開封結果を保持する。Failed の場合 Err に原因を持つ。
type BlockedAddressStatus struct {
	Kind BlockedAddressStatusKind
	Err  error
}

// UnsealedBlockedAddress は開封済みのブロックリスト項目を表す。
// 開封に失敗した場合 Address は空で、Status が Failed になる。
type UnsealedBlockedAddress struct {
	Address            string
	HashedBlockedValue string
	Action             BlockedEmailAddressAction
	Status             BlockedAddressStatus
	EmailAddressID     *string
}

// BlockEmailAddressesInput はアドレスブロックの入力。
// EmailAddressID を指定した場合はそのアドレス宛てのみブロックする。
type BlockEmailAddressesInput struct {
	Addresses      []string
	Action         BlockedEmailAddressAction
	EmailAddressID *string
}
