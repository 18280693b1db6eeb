package domain

type ctxKey string

const (
	RequesterAddressCtxKey ctxKey = "rc-requesterAddress"
)

const (
	RequesterAddressHeader = "rc-requester-address"
)

// EscrowAccount is the counterparty name used for funds held by the ledger.
const EscrowAccount = "escrow"

// RoleFlag is an informational bitmask stored with a user.
type RoleFlag uint32

const (
	RoleOwner RoleFlag = 1 << iota
	RoleTenant
)

func (f RoleFlag) Has(r RoleFlag) bool {
	return f&r != 0
}
