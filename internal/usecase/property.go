package usecase

import (
	"context"
	"math/big"
	"time"

	"github.com/totegamma/rentchain/internal/domain"
)

type PropertyUsecase struct {
	deps Deps
}

func NewPropertyUsecase(deps Deps) *PropertyUsecase {
	return &PropertyUsecase{deps: deps}
}

// RegisterAndIssueTitle registers a property and mints its title in one transaction.
// The caller must be the owner or the operator, and the owner must be KYC verified.
func (uc *PropertyUsecase) RegisterAndIssueTitle(ctx context.Context, caller, owner string, price *big.Int, dataHash string) (domain.Property, domain.Title, error) {
	ctx, span := tracer.Start(ctx, "Property.Usecase.RegisterAndIssueTitle")
	defer span.End()

	owner, err := normalizeAddress("owner", owner)
	if err != nil {
		return domain.Property{}, domain.Title{}, fail(span, err, "Property.Usecase.RegisterAndIssueTitle")
	}
	if err := domain.CheckAmount("pricePerPeriod", price); err != nil {
		return domain.Property{}, domain.Title{}, fail(span, err, "Property.Usecase.RegisterAndIssueTitle")
	}
	if !uc.deps.Config.IsOperator(caller) && !sameCaller(caller, owner) {
		err := domain.AuthorizationError{Reason: "only the owner or the operator can register a property"}
		return domain.Property{}, domain.Title{}, fail(span, err, "Property.Usecase.RegisterAndIssueTitle")
	}

	var (
		property domain.Property
		title    domain.Title
	)
	err = uc.deps.commit(ctx, func(ctx context.Context, tx Stores, now time.Time) ([]domain.Event, error) {
		verified, err := isVerified(ctx, tx.Users, owner)
		if err != nil {
			return nil, err
		}
		if !verified {
			return nil, domain.AuthorizationError{Reason: "owner is not KYC verified"}
		}

		property, err = tx.Properties.Create(ctx, domain.Property{
			Owner:          owner,
			PricePerPeriod: price,
			DataHash:       dataHash,
			CreatedAt:      now,
		})
		if err != nil {
			return nil, err
		}

		title = domain.Title{
			TokenID:  property.ID,
			Owner:    property.Owner,
			URI:      property.DataHash,
			MintedAt: now,
		}
		if err := tx.Titles.Mint(ctx, title); err != nil {
			return nil, err
		}

		return []domain.Event{
			domain.NewPropertyRegistered(property),
			domain.NewTitleIssued(title),
		}, nil
	})
	if err != nil {
		return domain.Property{}, domain.Title{}, fail(span, err, "Property.Usecase.RegisterAndIssueTitle")
	}
	return property, title, nil
}

func (uc *PropertyUsecase) Get(ctx context.Context, id uint64) (domain.Property, error) {
	ctx, span := tracer.Start(ctx, "Property.Usecase.Get")
	defer span.End()

	property, err := uc.deps.Store.Stores().Properties.Get(ctx, id)
	if err != nil {
		return domain.Property{}, fail(span, err, "Property.Usecase.Get")
	}
	return property, nil
}

func (uc *PropertyUsecase) Title(ctx context.Context, id uint64) (domain.Title, error) {
	ctx, span := tracer.Start(ctx, "Property.Usecase.Title")
	defer span.End()

	title, err := uc.deps.Store.Stores().Titles.Get(ctx, id)
	if err != nil {
		return domain.Title{}, fail(span, err, "Property.Usecase.Title")
	}
	return title, nil
}

func (uc *PropertyUsecase) ListByOwner(ctx context.Context, owner string) ([]domain.Property, error) {
	ctx, span := tracer.Start(ctx, "Property.Usecase.ListByOwner")
	defer span.End()

	owner, err := normalizeAddress("owner", owner)
	if err != nil {
		return nil, fail(span, err, "Property.Usecase.ListByOwner")
	}
	properties, err := uc.deps.Store.Stores().Properties.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fail(span, err, "Property.Usecase.ListByOwner")
	}
	return properties, nil
}
