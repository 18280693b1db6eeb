package repository

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/totegamma/rentchain/internal/domain"
	"github.com/totegamma/rentchain/internal/infra/database/models"
)

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseAmount(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("corrupted amount %q", s)
	}
	return v, nil
}

func userFromModel(m models.User) domain.User {
	return domain.User{
		Address:     m.Address,
		KYCVerified: m.KYCVerified,
		RoleFlags:   domain.RoleFlag(m.RoleFlags),
		CreatedAt:   m.CDate,
		UpdatedAt:   m.MDate,
	}
}

func propertyFromModel(m models.Property) (domain.Property, error) {
	price, err := parseAmount(m.PricePerPeriod)
	if err != nil {
		return domain.Property{}, err
	}
	return domain.Property{
		ID:             m.ID,
		Owner:          m.Owner,
		PricePerPeriod: price,
		Status:         domain.PropertyStatus(m.Status),
		Available:      m.Available,
		DataHash:       m.DataHash,
		CreatedAt:      m.CDate,
		UpdatedAt:      m.MDate,
	}, nil
}

func titleFromModel(m models.Title) domain.Title {
	return domain.Title{
		TokenID:  m.TokenID,
		Owner:    m.Owner,
		URI:      m.URI,
		MintedAt: m.CDate,
	}
}

func agreementToModel(a domain.Agreement) models.Agreement {
	return models.Agreement{
		ID:             a.ID,
		PropertyID:     a.PropertyID,
		Owner:          a.Owner,
		Tenant:         a.Tenant,
		RentAmount:     amountString(a.RentAmount),
		DepositAmount:  amountString(a.DepositAmount),
		DataHash:       a.DataHash,
		State:          int(a.State),
		SignedAt:       a.SignedAt,
		RentPaidCount:  a.RentPaidCount,
		TotalRentPaid:  amountString(a.TotalRentPaid),
		LastRentPaidAt: a.LastRentPaidAt,
		CancelReason:   a.CancelReason,
		ClosedAt:       a.ClosedAt,
		CDate:          a.CreatedAt,
		MDate:          a.UpdatedAt,
	}
}

func agreementFromModel(m models.Agreement) (domain.Agreement, error) {
	rent, err := parseAmount(m.RentAmount)
	if err != nil {
		return domain.Agreement{}, err
	}
	deposit, err := parseAmount(m.DepositAmount)
	if err != nil {
		return domain.Agreement{}, err
	}
	total, err := parseAmount(m.TotalRentPaid)
	if err != nil {
		return domain.Agreement{}, err
	}
	return domain.Agreement{
		ID:             m.ID,
		PropertyID:     m.PropertyID,
		Owner:          m.Owner,
		Tenant:         m.Tenant,
		RentAmount:     rent,
		DepositAmount:  deposit,
		DataHash:       m.DataHash,
		State:          domain.AgreementState(m.State),
		SignedAt:       m.SignedAt,
		RentPaidCount:  m.RentPaidCount,
		TotalRentPaid:  total,
		LastRentPaidAt: m.LastRentPaidAt,
		CancelReason:   m.CancelReason,
		ClosedAt:       m.ClosedAt,
		CreatedAt:      m.CDate,
		UpdatedAt:      m.MDate,
	}, nil
}

func transferFromModel(m models.Transfer) (domain.Transfer, error) {
	amount, err := parseAmount(m.Amount)
	if err != nil {
		return domain.Transfer{}, err
	}
	return domain.Transfer{
		ID:          m.ID,
		From:        m.From,
		To:          m.To,
		Amount:      amount,
		Kind:        domain.TransferKind(m.Kind),
		AgreementID: m.AgreementID,
		CreatedAt:   m.CDate,
	}, nil
}

func splitChannels(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
