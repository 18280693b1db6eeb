package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/rentchain/internal/domain"
	"github.com/totegamma/rentchain/internal/infra/database/models"
)

var openStates = []int{int(domain.AgreementCreated), int(domain.AgreementActive)}

type AgreementRepository struct {
	db *gorm.DB
}

func NewAgreementRepository(db *gorm.DB) *AgreementRepository {
	return &AgreementRepository{db: db}
}

// Create stores a new agreement. A property holds at most one open agreement.
func (r *AgreementRepository) Create(ctx context.Context, agreement domain.Agreement) (domain.Agreement, error) {
	var open int64
	err := r.db.WithContext(ctx).Model(&models.Agreement{}).
		Where("property_id = ? AND state IN ?", agreement.PropertyID, openStates).
		Count(&open).Error
	if err != nil {
		return domain.Agreement{}, err
	}
	if open > 0 {
		return domain.Agreement{}, domain.StateError{Resource: "property", Reason: "property already has an open agreement"}
	}

	model := agreementToModel(agreement)
	model.ID = 0
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Agreement{}, err
	}
	return agreementFromModel(model)
}

func (r *AgreementRepository) Get(ctx context.Context, id uint64) (domain.Agreement, error) {
	return r.take(r.db.WithContext(ctx), id)
}

// GetForUpdate reads the agreement and locks its row until the transaction ends.
func (r *AgreementRepository) GetForUpdate(ctx context.Context, id uint64) (domain.Agreement, error) {
	return r.take(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *AgreementRepository) take(db *gorm.DB, id uint64) (domain.Agreement, error) {
	var model models.Agreement
	err := db.Where("id = ?", id).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Agreement{}, domain.NotFoundError{Resource: "agreement"}
		}
		return domain.Agreement{}, err
	}
	return agreementFromModel(model)
}

// GetByProperty returns the most recent agreement of the property.
func (r *AgreementRepository) GetByProperty(ctx context.Context, propertyID uint64) (domain.Agreement, error) {
	var model models.Agreement
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("id desc").
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Agreement{}, domain.NotFoundError{Resource: "agreement"}
		}
		return domain.Agreement{}, err
	}
	return agreementFromModel(model)
}

func (r *AgreementRepository) ListByProperty(ctx context.Context, propertyID uint64) ([]domain.Agreement, error) {
	var rows []models.Agreement
	err := r.db.WithContext(ctx).Where("property_id = ?", propertyID).Order("id asc").Find(&rows).Error
	if err != nil {
		return nil, err
	}

	agreements := make([]domain.Agreement, 0, len(rows))
	for _, row := range rows {
		a, err := agreementFromModel(row)
		if err != nil {
			return nil, err
		}
		agreements = append(agreements, a)
	}
	return agreements, nil
}

// Update writes the lifecycle fields of an agreement. Terms are immutable.
func (r *AgreementRepository) Update(ctx context.Context, agreement domain.Agreement) error {
	model := agreementToModel(agreement)
	result := r.db.WithContext(ctx).Model(&models.Agreement{}).
		Where("id = ?", agreement.ID).
		Updates(map[string]any{
			"state":             model.State,
			"signed_at":         model.SignedAt,
			"rent_paid_count":   model.RentPaidCount,
			"total_rent_paid":   model.TotalRentPaid,
			"last_rent_paid_at": model.LastRentPaidAt,
			"cancel_reason":     model.CancelReason,
			"closed_at":         model.ClosedAt,
			"m_date":            model.MDate,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "agreement"}
	}
	return nil
}
