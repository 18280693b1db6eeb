package domain

import (
	"math/big"
	"time"
)

type AgreementState int

const (
	AgreementCreated AgreementState = iota
	AgreementActive
	AgreementCompleted
	AgreementCancelled
)

func (s AgreementState) String() string {
	switch s {
	case AgreementCreated:
		return "Created"
	case AgreementActive:
		return "Active"
	case AgreementCompleted:
		return "Completed"
	case AgreementCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Open reports whether the agreement still holds its property.
func (s AgreementState) Open() bool {
	return s == AgreementCreated || s == AgreementActive
}

// Agreement is a single lease. Terminal agreements are kept for audit.
type Agreement struct {
	ID             uint64
	PropertyID     uint64
	Owner          string
	Tenant         string
	RentAmount     *big.Int
	DepositAmount  *big.Int
	DataHash       string
	State          AgreementState
	SignedAt       *time.Time
	RentPaidCount  uint64
	TotalRentPaid  *big.Int
	LastRentPaidAt *time.Time
	CancelReason   string
	ClosedAt       *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewAgreement drafts an agreement for an available property.
func NewAgreement(p Property, tenant string, rent, deposit *big.Int, dataHash string, now time.Time) (Agreement, error) {
	if p.Status != PropertyAvailable {
		return Agreement{}, StateError{Resource: "property", Reason: "property is not available"}
	}
	if err := CheckAmount("rentAmount", rent); err != nil {
		return Agreement{}, err
	}
	if err := CheckAmount("depositAmount", deposit); err != nil {
		return Agreement{}, err
	}
	return Agreement{
		PropertyID:    p.ID,
		Owner:         p.Owner,
		Tenant:        tenant,
		RentAmount:    copyBig(rent),
		DepositAmount: copyBig(deposit),
		DataHash:      dataHash,
		State:         AgreementCreated,
		TotalRentPaid: zero(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (a *Agreement) require(want AgreementState, action string) error {
	if a.State != want {
		return StateError{Resource: "agreement", Reason: "cannot " + action + " an agreement in state " + a.State.String()}
	}
	return nil
}

// Sign moves a Created agreement to Active. The payment must equal the deposit exactly.
func (a *Agreement) Sign(caller string, payment *big.Int, now time.Time) error {
	if err := a.require(AgreementCreated, "sign"); err != nil {
		return err
	}
	if !sameAddress(caller, a.Tenant) {
		return AuthorizationError{Reason: "only the tenant can sign the agreement"}
	}
	if payment == nil || payment.Cmp(a.DepositAmount) != 0 {
		return FundsError{Reason: "payment must equal the deposit amount"}
	}
	signedAt := now
	a.State = AgreementActive
	a.SignedAt = &signedAt
	a.UpdatedAt = now
	return nil
}

// PayRent records one rent period. The amount must equal the rent exactly.
func (a *Agreement) PayRent(caller string, amount *big.Int, now time.Time) error {
	if err := a.require(AgreementActive, "pay rent on"); err != nil {
		return err
	}
	if !sameAddress(caller, a.Tenant) {
		return AuthorizationError{Reason: "only the tenant can pay rent"}
	}
	if amount == nil || amount.Cmp(a.RentAmount) != 0 {
		return FundsError{Reason: "rent payment must equal the rent amount"}
	}
	paidAt := now
	a.RentPaidCount++
	a.TotalRentPaid = new(big.Int).Add(copyBig(a.TotalRentPaid), amount)
	a.LastRentPaidAt = &paidAt
	a.UpdatedAt = now
	return nil
}

// Completion carries the inputs of a completeAndRelease call.
type Completion struct {
	Caller        string
	ByOperator    bool
	Policy        TerminationPolicy
	ReleaseAmount *big.Int
	Balance       *big.Int
	Now           time.Time
	MinimumTerm   time.Duration
}

// Complete ends an Active agreement and returns the payouts that drain its escrow.
func (a *Agreement) Complete(c Completion) ([]Payout, error) {
	if err := a.require(AgreementActive, "complete"); err != nil {
		return nil, err
	}
	if !c.ByOperator && !sameAddress(c.Caller, a.Owner) {
		return nil, AuthorizationError{Reason: "only the owner or the operator can complete the agreement"}
	}
	if a.SignedAt != nil && c.Now.Sub(*a.SignedAt) < c.MinimumTerm {
		return nil, StateError{Resource: "agreement", Reason: "minimum term has not elapsed"}
	}
	payouts, err := c.Policy.Settle(a.Owner, a.Tenant, c.ReleaseAmount, c.Balance)
	if err != nil {
		return nil, err
	}
	closedAt := c.Now
	a.State = AgreementCompleted
	a.ClosedAt = &closedAt
	a.UpdatedAt = c.Now
	return payouts, nil
}

// Cancel terminates an open agreement early. Any escrowed deposit goes back to the tenant.
func (a *Agreement) Cancel(caller string, byOperator bool, reason string, balance *big.Int, now time.Time) ([]Payout, error) {
	if !a.State.Open() {
		return nil, StateError{Resource: "agreement", Reason: "cannot cancel an agreement in state " + a.State.String()}
	}
	allowed := byOperator || sameAddress(caller, a.Owner)
	if a.State == AgreementCreated {
		allowed = allowed || sameAddress(caller, a.Tenant)
	}
	if !allowed {
		return nil, AuthorizationError{Reason: "caller cannot cancel this agreement"}
	}

	var payouts []Payout
	if balance != nil && balance.Sign() > 0 {
		payouts = append(payouts, Payout{Recipient: a.Tenant, Amount: copyBig(balance)})
	}
	closedAt := now
	a.State = AgreementCancelled
	a.CancelReason = reason
	a.ClosedAt = &closedAt
	a.UpdatedAt = now
	return payouts, nil
}
