package domain

import (
	"fmt"
	"math/big"
)

// TerminationPolicy selects who receives the released part of an escrow on completion.
// The remainder of the balance always goes to the other party so the escrow drains to zero.
type TerminationPolicy uint8

const (
	// PolicyRefundTenant returns the release amount to the tenant; the owner keeps the rest.
	PolicyRefundTenant TerminationPolicy = iota
	// PolicyPayOwner pays the release amount to the owner; the tenant gets the rest back.
	PolicyPayOwner
)

func (p TerminationPolicy) Valid() bool {
	return p == PolicyRefundTenant || p == PolicyPayOwner
}

func (p TerminationPolicy) String() string {
	switch p {
	case PolicyRefundTenant:
		return "RefundTenant"
	case PolicyPayOwner:
		return "PayOwner"
	default:
		return fmt.Sprintf("TerminationPolicy(%d)", uint8(p))
	}
}

// Payout is one transfer out of escrow.
type Payout struct {
	Recipient string
	Amount    *big.Int
}

// Settle splits balance between owner and tenant. Zero payouts are omitted.
func (p TerminationPolicy) Settle(owner, tenant string, release, balance *big.Int) ([]Payout, error) {
	if !p.Valid() {
		return nil, InvalidArgumentError{Field: "policy", Reason: fmt.Sprintf("unknown termination policy %d", uint8(p))}
	}
	if release == nil || release.Sign() < 0 {
		return nil, InvalidArgumentError{Field: "releaseAmount", Reason: "amount must not be negative"}
	}
	if release.Cmp(copyBig(balance)) > 0 {
		return nil, FundsError{Reason: "release amount exceeds escrow balance"}
	}

	primary, secondary := tenant, owner
	if p == PolicyPayOwner {
		primary, secondary = owner, tenant
	}
	remainder := new(big.Int).Sub(copyBig(balance), release)

	var payouts []Payout
	if release.Sign() > 0 {
		payouts = append(payouts, Payout{Recipient: primary, Amount: copyBig(release)})
	}
	if remainder.Sign() > 0 {
		payouts = append(payouts, Payout{Recipient: secondary, Amount: remainder})
	}
	return payouts, nil
}
