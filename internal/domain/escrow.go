package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
)

// EscrowRecord holds the deposit of one agreement. Balance is never negative.
type EscrowRecord struct {
	AgreementID uint64
	Balance     *big.Int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type EscrowEntryKind string

const (
	EscrowCredit EscrowEntryKind = "credit"
	EscrowDebit  EscrowEntryKind = "debit"
)

func (r *EscrowRecord) Credit(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return FundsError{Reason: "credit amount must be positive"}
	}
	next := new(big.Int).Add(copyBig(r.Balance), amount)
	if next.Cmp(math.MaxBig256) > 0 {
		return FundsError{Reason: "escrow balance overflow"}
	}
	r.Balance = next
	return nil
}

func (r *EscrowRecord) Debit(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return FundsError{Reason: "release amount must be positive"}
	}
	if amount.Cmp(copyBig(r.Balance)) > 0 {
		return FundsError{Reason: "insufficient escrow balance"}
	}
	r.Balance = new(big.Int).Sub(r.Balance, amount)
	return nil
}
