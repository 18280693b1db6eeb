package repository

import (
	"context"
	"errors"
	"math/big"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/rentchain/internal/domain"
	"github.com/totegamma/rentchain/internal/infra/database/models"
)

type EscrowRepository struct {
	db *gorm.DB
}

func NewEscrowRepository(db *gorm.DB) *EscrowRepository {
	return &EscrowRepository{db: db}
}

// Open creates a zero balance account. Opening an existing account is a no-op.
func (r *EscrowRepository) Open(ctx context.Context, agreementID uint64, now time.Time) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "agreement_id"}},
		DoNothing: true,
	}).Create(&models.EscrowAccount{
		AgreementID: agreementID,
		Balance:     "0",
		CDate:       now,
		MDate:       now,
	}).Error
}

// Credit adds amount paid by from to the escrow of the agreement.
func (r *EscrowRepository) Credit(ctx context.Context, agreementID uint64, from string, amount *big.Int, now time.Time) (domain.EscrowRecord, error) {
	record, err := r.lock(ctx, agreementID)
	if err != nil {
		return domain.EscrowRecord{}, err
	}
	if err := record.Credit(amount); err != nil {
		return domain.EscrowRecord{}, err
	}
	err = r.apply(ctx, &record, domain.EscrowCredit, amount, from, now)
	if err != nil {
		return domain.EscrowRecord{}, err
	}

	_, err = createTransfer(r.db.WithContext(ctx), domain.Transfer{
		From:        from,
		To:          domain.EscrowAccount,
		Amount:      amount,
		Kind:        domain.TransferDeposit,
		AgreementID: agreementID,
		CreatedAt:   now,
	})
	if err != nil {
		return domain.EscrowRecord{}, err
	}
	return record, nil
}

// Release pays amount out of escrow to recipient. It fails with FundsError if the balance is short.
func (r *EscrowRepository) Release(ctx context.Context, agreementID uint64, recipient string, amount *big.Int, now time.Time) (domain.EscrowRecord, error) {
	record, err := r.lock(ctx, agreementID)
	if err != nil {
		return domain.EscrowRecord{}, err
	}
	if err := record.Debit(amount); err != nil {
		return domain.EscrowRecord{}, err
	}
	err = r.apply(ctx, &record, domain.EscrowDebit, amount, recipient, now)
	if err != nil {
		return domain.EscrowRecord{}, err
	}

	_, err = createTransfer(r.db.WithContext(ctx), domain.Transfer{
		From:        domain.EscrowAccount,
		To:          recipient,
		Amount:      amount,
		Kind:        domain.TransferRelease,
		AgreementID: agreementID,
		CreatedAt:   now,
	})
	if err != nil {
		return domain.EscrowRecord{}, err
	}
	return record, nil
}

func (r *EscrowRepository) BalanceOf(ctx context.Context, agreementID uint64) (*big.Int, error) {
	var account models.EscrowAccount
	err := r.db.WithContext(ctx).Where("agreement_id = ?", agreementID).Take(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError{Resource: "escrow"}
		}
		return nil, err
	}
	return parseAmount(account.Balance)
}

func (r *EscrowRepository) lock(ctx context.Context, agreementID uint64) (domain.EscrowRecord, error) {
	var account models.EscrowAccount
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("agreement_id = ?", agreementID).
		Take(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.EscrowRecord{}, domain.NotFoundError{Resource: "escrow"}
		}
		return domain.EscrowRecord{}, err
	}

	balance, err := parseAmount(account.Balance)
	if err != nil {
		return domain.EscrowRecord{}, err
	}
	return domain.EscrowRecord{
		AgreementID: account.AgreementID,
		Balance:     balance,
		CreatedAt:   account.CDate,
		UpdatedAt:   account.MDate,
	}, nil
}

func (r *EscrowRepository) apply(ctx context.Context, record *domain.EscrowRecord, kind domain.EscrowEntryKind, amount *big.Int, counterparty string, now time.Time) error {
	record.UpdatedAt = now

	err := r.db.WithContext(ctx).Model(&models.EscrowAccount{}).
		Where("agreement_id = ?", record.AgreementID).
		Updates(map[string]any{
			"balance": amountString(record.Balance),
			"m_date":  now,
		}).Error
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Create(&models.EscrowEntry{
		AgreementID:  record.AgreementID,
		Kind:         string(kind),
		Amount:       amountString(amount),
		Counterparty: counterparty,
		BalanceAfter: amountString(record.Balance),
		CDate:        now,
	}).Error
}
