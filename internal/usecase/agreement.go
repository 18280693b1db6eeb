package usecase

import (
	"context"
	"math/big"
	"time"

	"github.com/totegamma/rentchain/internal/domain"
)

// AgreementInput carries the terms of a new agreement.
type AgreementInput struct {
	PropertyID    uint64
	Tenant        string
	RentAmount    *big.Int
	DepositAmount *big.Int
	DataHash      string
}

type AgreementUsecase struct {
	deps Deps
}

func NewAgreementUsecase(deps Deps) *AgreementUsecase {
	return &AgreementUsecase{deps: deps}
}

// Create drafts an agreement on a property. Only the property owner may do so,
// the property must be Available, and the tenant must be KYC verified.
func (uc *AgreementUsecase) Create(ctx context.Context, caller string, input AgreementInput) (domain.Agreement, error) {
	ctx, span := tracer.Start(ctx, "Agreement.Usecase.Create")
	defer span.End()

	tenant, err := normalizeAddress("tenant", input.Tenant)
	if err != nil {
		return domain.Agreement{}, fail(span, err, "Agreement.Usecase.Create")
	}

	var agreement domain.Agreement
	err = uc.deps.commit(ctx, func(ctx context.Context, tx Stores, now time.Time) ([]domain.Event, error) {
		property, err := tx.Properties.GetForUpdate(ctx, input.PropertyID)
		if err != nil {
			return nil, err
		}
		if !sameCaller(caller, property.Owner) {
			return nil, domain.AuthorizationError{Reason: "only the property owner can create an agreement"}
		}

		draft, err := domain.NewAgreement(property, tenant, input.RentAmount, input.DepositAmount, input.DataHash, now)
		if err != nil {
			return nil, err
		}

		verified, err := isVerified(ctx, tx.Users, tenant)
		if err != nil {
			return nil, err
		}
		if !verified {
			return nil, domain.AuthorizationError{Reason: "tenant is not KYC verified"}
		}

		agreement, err = tx.Agreements.Create(ctx, draft)
		if err != nil {
			return nil, err
		}
		if err := tx.Escrow.Open(ctx, agreement.ID, now); err != nil {
			return nil, err
		}

		return []domain.Event{domain.NewAgreementCreated(agreement)}, nil
	})
	if err != nil {
		return domain.Agreement{}, fail(span, err, "Agreement.Usecase.Create")
	}
	return agreement, nil
}

// SignAndFund activates a Created agreement. The tenant pays exactly the deposit into escrow
// and the property becomes Rented.
func (uc *AgreementUsecase) SignAndFund(ctx context.Context, caller string, id uint64, payment *big.Int) (domain.Agreement, error) {
	ctx, span := tracer.Start(ctx, "Agreement.Usecase.SignAndFund")
	defer span.End()

	var agreement domain.Agreement
	err := uc.deps.commit(ctx, func(ctx context.Context, tx Stores, now time.Time) ([]domain.Event, error) {
		var err error
		agreement, err = tx.Agreements.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := agreement.Sign(caller, payment, now); err != nil {
			return nil, err
		}

		escrow, err := tx.Escrow.Credit(ctx, agreement.ID, agreement.Tenant, agreement.DepositAmount, now)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Properties.MarkRented(ctx, agreement.PropertyID, now); err != nil {
			return nil, err
		}
		if err := tx.Agreements.Update(ctx, agreement); err != nil {
			return nil, err
		}

		return []domain.Event{
			domain.NewDepositMade(agreement, escrow.Balance.String()),
			domain.NewAgreementSigned(agreement),
		}, nil
	})
	if err != nil {
		return domain.Agreement{}, fail(span, err, "Agreement.Usecase.SignAndFund")
	}
	return agreement, nil
}

// PayRent pays one period of rent from the tenant straight to the owner.
func (uc *AgreementUsecase) PayRent(ctx context.Context, caller string, id uint64, amount *big.Int) (domain.Agreement, error) {
	ctx, span := tracer.Start(ctx, "Agreement.Usecase.PayRent")
	defer span.End()

	var agreement domain.Agreement
	err := uc.deps.commit(ctx, func(ctx context.Context, tx Stores, now time.Time) ([]domain.Event, error) {
		var err error
		agreement, err = tx.Agreements.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := agreement.PayRent(caller, amount, now); err != nil {
			return nil, err
		}

		_, err = tx.Transfers.Record(ctx, domain.Transfer{
			From:        agreement.Tenant,
			To:          agreement.Owner,
			Amount:      agreement.RentAmount,
			Kind:        domain.TransferRent,
			AgreementID: agreement.ID,
			CreatedAt:   now,
		})
		if err != nil {
			return nil, err
		}
		if err := tx.Agreements.Update(ctx, agreement); err != nil {
			return nil, err
		}

		return []domain.Event{domain.NewRentPaid(agreement)}, nil
	})
	if err != nil {
		return domain.Agreement{}, fail(span, err, "Agreement.Usecase.PayRent")
	}
	return agreement, nil
}

// CompleteAndRelease closes an Active agreement, drains its escrow according to
// policy and makes the property Available again.
func (uc *AgreementUsecase) CompleteAndRelease(ctx context.Context, caller string, id uint64, policy domain.TerminationPolicy, release *big.Int) (domain.Agreement, error) {
	ctx, span := tracer.Start(ctx, "Agreement.Usecase.CompleteAndRelease")
	defer span.End()

	var agreement domain.Agreement
	err := uc.deps.commit(ctx, func(ctx context.Context, tx Stores, now time.Time) ([]domain.Event, error) {
		var err error
		agreement, err = tx.Agreements.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		balance, err := tx.Escrow.BalanceOf(ctx, agreement.ID)
		if err != nil {
			return nil, err
		}

		payouts, err := agreement.Complete(domain.Completion{
			Caller:        caller,
			ByOperator:    uc.deps.Config.IsOperator(caller),
			Policy:        policy,
			ReleaseAmount: release,
			Balance:       balance,
			Now:           now,
			MinimumTerm:   uc.deps.Config.MinimumTerm,
		})
		if err != nil {
			return nil, err
		}

		events, err := settle(ctx, tx, agreement, payouts, now)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Properties.MarkAvailable(ctx, agreement.PropertyID, now); err != nil {
			return nil, err
		}
		if err := tx.Agreements.Update(ctx, agreement); err != nil {
			return nil, err
		}

		return append(events, domain.NewAgreementCompleted(agreement, policy)), nil
	})
	if err != nil {
		return domain.Agreement{}, fail(span, err, "Agreement.Usecase.CompleteAndRelease")
	}
	return agreement, nil
}

// Cancel terminates an open agreement early and refunds any escrowed deposit to the tenant.
func (uc *AgreementUsecase) Cancel(ctx context.Context, caller string, id uint64, reason string) (domain.Agreement, error) {
	ctx, span := tracer.Start(ctx, "Agreement.Usecase.Cancel")
	defer span.End()

	var agreement domain.Agreement
	err := uc.deps.commit(ctx, func(ctx context.Context, tx Stores, now time.Time) ([]domain.Event, error) {
		var err error
		agreement, err = tx.Agreements.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		wasActive := agreement.State == domain.AgreementActive

		balance, err := tx.Escrow.BalanceOf(ctx, agreement.ID)
		if err != nil {
			return nil, err
		}
		payouts, err := agreement.Cancel(caller, uc.deps.Config.IsOperator(caller), reason, balance, now)
		if err != nil {
			return nil, err
		}

		events, err := settle(ctx, tx, agreement, payouts, now)
		if err != nil {
			return nil, err
		}
		if wasActive {
			if _, err := tx.Properties.MarkAvailable(ctx, agreement.PropertyID, now); err != nil {
				return nil, err
			}
		}
		if err := tx.Agreements.Update(ctx, agreement); err != nil {
			return nil, err
		}

		return append(events, domain.NewAgreementCancelled(agreement)), nil
	})
	if err != nil {
		return domain.Agreement{}, fail(span, err, "Agreement.Usecase.Cancel")
	}
	return agreement, nil
}

// settle pays out escrow and checks that nothing is left behind.
func settle(ctx context.Context, tx Stores, agreement domain.Agreement, payouts []domain.Payout, now time.Time) ([]domain.Event, error) {
	events := make([]domain.Event, 0, len(payouts)+1)
	for _, payout := range payouts {
		if _, err := tx.Escrow.Release(ctx, agreement.ID, payout.Recipient, payout.Amount, now); err != nil {
			return nil, err
		}
		events = append(events, domain.NewFundsReleased(agreement, payout))
	}

	remaining, err := tx.Escrow.BalanceOf(ctx, agreement.ID)
	if err != nil {
		return nil, err
	}
	if remaining.Sign() != 0 {
		return nil, domain.FundsError{Reason: "escrow was not fully released"}
	}
	return events, nil
}

func (uc *AgreementUsecase) Get(ctx context.Context, id uint64) (domain.Agreement, error) {
	ctx, span := tracer.Start(ctx, "Agreement.Usecase.Get")
	defer span.End()

	agreement, err := uc.deps.Store.Stores().Agreements.Get(ctx, id)
	if err != nil {
		return domain.Agreement{}, fail(span, err, "Agreement.Usecase.Get")
	}
	return agreement, nil
}

// GetByProperty returns the latest agreement made on the property.
func (uc *AgreementUsecase) GetByProperty(ctx context.Context, propertyID uint64) (domain.Agreement, error) {
	ctx, span := tracer.Start(ctx, "Agreement.Usecase.GetByProperty")
	defer span.End()

	agreement, err := uc.deps.Store.Stores().Agreements.GetByProperty(ctx, propertyID)
	if err != nil {
		return domain.Agreement{}, fail(span, err, "Agreement.Usecase.GetByProperty")
	}
	return agreement, nil
}

func (uc *AgreementUsecase) ListByProperty(ctx context.Context, propertyID uint64) ([]domain.Agreement, error) {
	ctx, span := tracer.Start(ctx, "Agreement.Usecase.ListByProperty")
	defer span.End()

	stores := uc.deps.Store.Stores()
	if _, err := stores.Properties.Get(ctx, propertyID); err != nil {
		return nil, fail(span, err, "Agreement.Usecase.ListByProperty")
	}
	agreements, err := stores.Agreements.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, fail(span, err, "Agreement.Usecase.ListByProperty")
	}
	return agreements, nil
}

func (uc *AgreementUsecase) EscrowBalance(ctx context.Context, id uint64) (*big.Int, error) {
	ctx, span := tracer.Start(ctx, "Agreement.Usecase.EscrowBalance")
	defer span.End()

	balance, err := uc.deps.Store.Stores().Escrow.BalanceOf(ctx, id)
	if err != nil {
		return nil, fail(span, err, "Agreement.Usecase.EscrowBalance")
	}
	return balance, nil
}

// ListTransfers returns the newest fund movements involving address.
func (uc *AgreementUsecase) ListTransfers(ctx context.Context, address string, limit int) ([]domain.Transfer, error) {
	ctx, span := tracer.Start(ctx, "Agreement.Usecase.ListTransfers")
	defer span.End()

	address, err := normalizeAddress("address", address)
	if err != nil {
		return nil, fail(span, err, "Agreement.Usecase.ListTransfers")
	}
	transfers, err := uc.deps.Store.Stores().Transfers.ListByAccount(ctx, address, clampLimit(limit, 50, 500))
	if err != nil {
		return nil, fail(span, err, "Agreement.Usecase.ListTransfers")
	}
	return transfers, nil
}
