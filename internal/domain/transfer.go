package domain

import (
	"math/big"
	"time"
)

type TransferKind string

const (
	TransferDeposit TransferKind = "deposit"
	TransferRent    TransferKind = "rent"
	TransferRelease TransferKind = "release"
)

// Transfer records a movement of funds into or out of the engine.
type Transfer struct {
	ID          uint64
	From        string
	To          string
	Amount      *big.Int
	Kind        TransferKind
	AgreementID uint64
	CreatedAt   time.Time
}
