package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/totegamma/rentchain/internal/domain"
	"github.com/totegamma/rentchain/internal/infra/database/models"
)

type TransferRepository struct {
	db *gorm.DB
}

func NewTransferRepository(db *gorm.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) Record(ctx context.Context, transfer domain.Transfer) (domain.Transfer, error) {
	return createTransfer(r.db.WithContext(ctx), transfer)
}

// ListByAccount returns the newest transfers sent or received by address.
func (r *TransferRepository) ListByAccount(ctx context.Context, address string, limit int) ([]domain.Transfer, error) {
	var rows []models.Transfer
	err := r.db.WithContext(ctx).
		Where("from_account = ? OR to_account = ?", address, address).
		Order("id desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	transfers := make([]domain.Transfer, 0, len(rows))
	for _, row := range rows {
		t, err := transferFromModel(row)
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, t)
	}
	return transfers, nil
}

func createTransfer(db *gorm.DB, transfer domain.Transfer) (domain.Transfer, error) {
	model := models.Transfer{
		From:        transfer.From,
		To:          transfer.To,
		Amount:      amountString(transfer.Amount),
		Kind:        string(transfer.Kind),
		AgreementID: transfer.AgreementID,
		CDate:       transfer.CreatedAt,
	}
	if err := db.Create(&model).Error; err != nil {
		return domain.Transfer{}, err
	}
	return transferFromModel(model)
}
