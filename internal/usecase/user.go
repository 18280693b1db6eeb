package usecase

import (
	"context"
	"time"

	"github.com/totegamma/rentchain/internal/domain"
)

type UserUsecase struct {
	deps Deps
}

func NewUserUsecase(deps Deps) *UserUsecase {
	return &UserUsecase{deps: deps}
}

// Register creates or updates a user. Only the operator may register users.
func (uc *UserUsecase) Register(ctx context.Context, caller, address string, kycVerified bool, roles domain.RoleFlag) (domain.User, error) {
	ctx, span := tracer.Start(ctx, "User.Usecase.Register")
	defer span.End()

	address, err := normalizeAddress("address", address)
	if err != nil {
		return domain.User{}, fail(span, err, "User.Usecase.Register")
	}
	if !uc.deps.Config.IsOperator(caller) {
		err := domain.AuthorizationError{Reason: "only the operator can register users"}
		return domain.User{}, fail(span, err, "User.Usecase.Register")
	}

	var user domain.User
	err = uc.deps.commit(ctx, func(ctx context.Context, tx Stores, now time.Time) ([]domain.Event, error) {
		stored, err := tx.Users.Upsert(ctx, domain.User{
			Address:     address,
			KYCVerified: kycVerified,
			RoleFlags:   roles,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return nil, err
		}
		user = stored
		return []domain.Event{domain.NewUserRegistered(stored)}, nil
	})
	if err != nil {
		return domain.User{}, fail(span, err, "User.Usecase.Register")
	}
	return user, nil
}

func (uc *UserUsecase) Get(ctx context.Context, address string) (domain.User, error) {
	ctx, span := tracer.Start(ctx, "User.Usecase.Get")
	defer span.End()

	address, err := normalizeAddress("address", address)
	if err != nil {
		return domain.User{}, fail(span, err, "User.Usecase.Get")
	}
	user, err := uc.deps.Store.Stores().Users.Get(ctx, address)
	if err != nil {
		return domain.User{}, fail(span, err, "User.Usecase.Get")
	}
	return user, nil
}

// IsVerified reports the KYC flag of address. Unknown addresses are not verified.
func (uc *UserUsecase) IsVerified(ctx context.Context, address string) (bool, error) {
	address, err := normalizeAddress("address", address)
	if err != nil {
		return false, err
	}
	return isVerified(ctx, uc.deps.Store.Stores().Users, address)
}
