package domain

// Owner はリソースの所有者を表す。Issuer が sudoplatform.sudoservice の場合、ID はSudo IDである。
type Owner struct {
	ID     string
	Issuer string
}

// SudoOwnerIssuer はSudo所有者の発行者名。
const SudoOwnerIssuer = "sudoplatform.sudoservice"

// SudoID は所有者一覧からSudo IDを探して返す。
func SudoID(owners []Owner) string {
	for _, o := range owners {
		if o.Issuer == SudoOwnerIssuer {
			return o.ID
		}
	}
	return ""
}
