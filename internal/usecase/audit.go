package usecase

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/totegamma/rentchain/internal/domain"
)

const auditPageSize = 100

// Violation is one broken ledger invariant found by an audit.
type Violation struct {
	PropertyID  uint64
	AgreementID uint64
	Message     string
}

type AuditUsecase struct {
	deps Deps
}

func NewAuditUsecase(deps Deps) *AuditUsecase {
	return &AuditUsecase{deps: deps}
}

// Run checks every property against its latest agreement:
// a property is Rented exactly when that agreement is Active, and
// escrow holds the deposit while Active and nothing otherwise.
func (uc *AuditUsecase) Run(ctx context.Context) ([]Violation, error) {
	ctx, span := tracer.Start(ctx, "Audit.Usecase.Run")
	defer span.End()

	stores := uc.deps.Store.Stores()
	var violations []Violation

	var after uint64
	for {
		properties, err := stores.Properties.List(ctx, after, auditPageSize)
		if err != nil {
			return nil, fail(span, err, "Audit.Usecase.Run")
		}
		for _, property := range properties {
			found, err := uc.check(ctx, stores, property)
			if err != nil {
				return nil, fail(span, err, "Audit.Usecase.Run")
			}
			violations = append(violations, found...)
			after = property.ID
		}
		if len(properties) < auditPageSize {
			return violations, nil
		}
	}
}

func (uc *AuditUsecase) check(ctx context.Context, stores Stores, property domain.Property) ([]Violation, error) {
	var violations []Violation
	report := func(agreementID uint64, format string, args ...any) {
		violations = append(violations, Violation{
			PropertyID:  property.ID,
			AgreementID: agreementID,
			Message:     fmt.Sprintf(format, args...),
		})
	}

	if property.Available != (property.Status == domain.PropertyAvailable) {
		report(0, "availability %t does not match status %s", property.Available, property.Status)
	}

	agreement, err := stores.Agreements.GetByProperty(ctx, property.ID)
	if errors.Is(err, domain.ErrNotFound) {
		if property.Status == domain.PropertyRented {
			report(0, "property is rented without an agreement")
		}
		return violations, nil
	}
	if err != nil {
		return nil, err
	}

	active := agreement.State == domain.AgreementActive
	if (property.Status == domain.PropertyRented) != active {
		report(agreement.ID, "property is %s but latest agreement is %s", property.Status, agreement.State)
	}

	balance, err := stores.Escrow.BalanceOf(ctx, agreement.ID)
	if err != nil {
		return nil, err
	}
	switch {
	case active && balance.Cmp(agreement.DepositAmount) != 0:
		report(agreement.ID, "escrow holds %s, deposit is %s", balance, agreement.DepositAmount)
	case !active && balance.Sign() != 0:
		report(agreement.ID, "escrow holds %s on a %s agreement", balance, agreement.State)
	}
	return violations, nil
}
