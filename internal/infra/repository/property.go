package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/rentchain/internal/domain"
	"github.com/totegamma/rentchain/internal/infra/database/models"
)

type PropertyRepository struct {
	db *gorm.DB
}

func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// Create inserts a new Available property and returns it with its assigned id.
func (r *PropertyRepository) Create(ctx context.Context, property domain.Property) (domain.Property, error) {
	model := models.Property{
		Owner:          property.Owner,
		PricePerPeriod: amountString(property.PricePerPeriod),
		Status:         int(domain.PropertyAvailable),
		Available:      true,
		DataHash:       property.DataHash,
		CDate:          property.CreatedAt,
		MDate:          property.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return domain.Property{}, err
	}
	return propertyFromModel(model)
}

func (r *PropertyRepository) Get(ctx context.Context, id uint64) (domain.Property, error) {
	return r.take(r.db.WithContext(ctx), id)
}

// GetForUpdate reads the property and locks its row until the transaction ends.
func (r *PropertyRepository) GetForUpdate(ctx context.Context, id uint64) (domain.Property, error) {
	return r.take(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *PropertyRepository) take(db *gorm.DB, id uint64) (domain.Property, error) {
	var model models.Property
	err := db.Where("id = ?", id).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Property{}, domain.NotFoundError{Resource: "property"}
		}
		return domain.Property{}, err
	}
	return propertyFromModel(model)
}

func (r *PropertyRepository) MarkRented(ctx context.Context, id uint64, now time.Time) (domain.Property, error) {
	return r.transition(ctx, id, now, (*domain.Property).MarkRented)
}

func (r *PropertyRepository) MarkAvailable(ctx context.Context, id uint64, now time.Time) (domain.Property, error) {
	return r.transition(ctx, id, now, (*domain.Property).MarkAvailable)
}

func (r *PropertyRepository) transition(ctx context.Context, id uint64, now time.Time, apply func(*domain.Property) error) (domain.Property, error) {
	property, err := r.GetForUpdate(ctx, id)
	if err != nil {
		return domain.Property{}, err
	}
	if err := apply(&property); err != nil {
		return domain.Property{}, err
	}
	property.UpdatedAt = now

	err = r.db.WithContext(ctx).Model(&models.Property{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":    int(property.Status),
			"available": property.Available,
			"m_date":    now,
		}).Error
	if err != nil {
		return domain.Property{}, err
	}
	return property, nil
}

func (r *PropertyRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Property, error) {
	var rows []models.Property
	err := r.db.WithContext(ctx).Where("owner = ?", owner).Order("id asc").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return propertiesFromModels(rows)
}

// List pages through all properties in id order.
func (r *PropertyRepository) List(ctx context.Context, afterID uint64, limit int) ([]domain.Property, error) {
	var rows []models.Property
	err := r.db.WithContext(ctx).Where("id > ?", afterID).Order("id asc").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return propertiesFromModels(rows)
}

func propertiesFromModels(rows []models.Property) ([]domain.Property, error) {
	properties := make([]domain.Property, 0, len(rows))
	for _, row := range rows {
		p, err := propertyFromModel(row)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	return properties, nil
}
