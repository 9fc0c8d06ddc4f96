package infra

import (
	"context"
	"fmt"
)

// StaticIdentity は設定から与えられた所有者IDとIdentity IDを返す。
type StaticIdentity struct {
	owner      string
	identityID string
}

// NewStaticIdentity は新しいStaticIdentityを生成する。
func NewStaticIdentity(owner, identityID string) (*StaticIdentity, error) {
	if owner == "" || identityID == "" {
		return nil, fmt.Errorf("OWNER_ID and IDENTITY_ID are required")
	}
	return &StaticIdentity{owner: owner, identityID: identityID}, nil
}

func (i *StaticIdentity) Owner(ctx context.Context) (string, error) {
	return i.owner, nil
}

func (i *StaticIdentity) IdentityID(ctx context.Context) (string, error) {
	return i.identityID, nil
}
