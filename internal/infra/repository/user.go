package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/rentchain/internal/domain"
	"github.com/totegamma/rentchain/internal/infra/database/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert creates the user or overwrites its flags. The creation date is kept.
func (r *UserRepository) Upsert(ctx context.Context, user domain.User) (domain.User, error) {
	model := models.User{
		Address:     user.Address,
		KYCVerified: user.KYCVerified,
		RoleFlags:   uint32(user.RoleFlags),
		CDate:       user.CreatedAt,
		MDate:       user.UpdatedAt,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"kyc_verified", "role_flags", "m_date"}),
	}).Create(&model).Error
	if err != nil {
		return domain.User{}, err
	}

	return r.Get(ctx, user.Address)
}

func (r *UserRepository) Get(ctx context.Context, address string) (domain.User, error) {
	var model models.User
	err := r.db.WithContext(ctx).Where("address = ?", address).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, domain.NotFoundError{Resource: "user"}
		}
		return domain.User{}, err
	}
	return userFromModel(model), nil
}
