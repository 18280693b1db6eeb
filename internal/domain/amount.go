package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
)

// CheckAmount validates a wei amount supplied by a caller.
func CheckAmount(field string, v *big.Int) error {
	if v == nil {
		return InvalidArgumentError{Field: field, Reason: "amount is required"}
	}
	if v.Sign() < 0 {
		return InvalidArgumentError{Field: field, Reason: "amount must not be negative"}
	}
	if v.Sign() == 0 {
		return FundsError{Reason: field + " must be greater than zero"}
	}
	if v.Cmp(math.MaxBig256) > 0 {
		return FundsError{Reason: field + " exceeds the 256-bit range"}
	}
	return nil
}

func zero() *big.Int {
	return new(big.Int)
}

func copyBig(v *big.Int) *big.Int {
	if v == nil {
		return zero()
	}
	return new(big.Int).Set(v)
}
