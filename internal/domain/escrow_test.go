package domain

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
)

func TestEscrowCreditDebit(t *testing.T) {
	r := EscrowRecord{AgreementID: 1}

	if err := r.Credit(wei(0)); !errors.Is(err, ErrFunds) {
		t.Fatalf("expected funds error for zero credit, got %v", err)
	}
	if err := r.Credit(wei(200)); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if err := r.Debit(wei(201)); !errors.Is(err, ErrFunds) {
		t.Fatalf("expected funds error for overdraw, got %v", err)
	}
	if r.Balance.Cmp(wei(200)) != 0 {
		t.Fatalf("failed debit changed balance to %s", r.Balance)
	}
	if err := r.Debit(wei(200)); err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if r.Balance.Sign() != 0 {
		t.Fatalf("expected empty escrow, got %s", r.Balance)
	}
}

func TestEscrowOverflow(t *testing.T) {
	r := EscrowRecord{AgreementID: 1, Balance: new(big.Int).Set(math.MaxBig256)}
	if err := r.Credit(wei(1)); !errors.Is(err, ErrFunds) {
		t.Fatalf("expected funds error on overflow, got %v", err)
	}
}

func TestCheckAmount(t *testing.T) {
	over := new(big.Int).Add(math.MaxBig256, big.NewInt(1))

	if err := CheckAmount("amount", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("nil: got %v", err)
	}
	if err := CheckAmount("amount", wei(-1)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("negative: got %v", err)
	}
	if err := CheckAmount("amount", wei(0)); !errors.Is(err, ErrFunds) {
		t.Fatalf("zero: got %v", err)
	}
	if err := CheckAmount("amount", over); !errors.Is(err, ErrFunds) {
		t.Fatalf("overflow: got %v", err)
	}
	if err := CheckAmount("amount", math.MaxBig256); err != nil {
		t.Fatalf("max: got %v", err)
	}
}

func TestPropertyTransitions(t *testing.T) {
	p := Property{ID: 1, Owner: owner, Status: PropertyAvailable, Available: true}

	if err := p.MarkAvailable(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected state error, got %v", err)
	}
	if err := p.MarkRented(); err != nil {
		t.Fatalf("MarkRented: %v", err)
	}
	if p.Available || p.Status != PropertyRented {
		t.Fatalf("unexpected property %+v", p)
	}
	if err := p.MarkRented(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected state error, got %v", err)
	}
	if err := p.MarkAvailable(); err != nil {
		t.Fatalf("MarkAvailable: %v", err)
	}
	if !p.Available {
		t.Fatalf("expected available property")
	}
}

func TestErrorKinds(t *testing.T) {
	var err error = StateError{Resource: "agreement", Reason: "closed"}
	if !errors.Is(err, ErrInvalidState) || errors.Is(err, ErrFunds) {
		t.Fatalf("unexpected kind matching for %v", err)
	}
	if err.Error() != "invalid agreement state: closed" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if (NotFoundError{Resource: "property"}).Error() != "property not found" {
		t.Fatalf("unexpected not found message")
	}
	if !errors.Is(&AuthorizationError{}, ErrUnauthorized) {
		t.Fatalf("pointer error should match")
	}
}
