package presenter

import (
	"github.com/totegamma/rentchain"
	"github.com/totegamma/rentchain/internal/domain"
)

func User(u domain.User) rentchain.User {
	return rentchain.User{
		Address:     u.Address,
		KYCVerified: u.KYCVerified,
		RoleFlags:   uint32(u.RoleFlags),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func Title(t domain.Title) rentchain.Title {
	return rentchain.Title{
		TokenID:  t.TokenID,
		Owner:    t.Owner,
		URI:      t.URI,
		MintedAt: t.MintedAt,
	}
}

// Property renders p. title may be nil.
func Property(p domain.Property, title *domain.Title) rentchain.Property {
	out := rentchain.Property{
		ID:             p.ID,
		Owner:          p.Owner,
		PricePerPeriod: p.PricePerPeriod.String(),
		Status:         p.Status.String(),
		Available:      p.Available,
		DataHash:       p.DataHash,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if title != nil {
		t := Title(*title)
		out.Title = &t
	}
	return out
}

func Properties(ps []domain.Property) []rentchain.Property {
	out := make([]rentchain.Property, 0, len(ps))
	for _, p := range ps {
		out = append(out, Property(p, nil))
	}
	return out
}

func Agreement(a domain.Agreement) rentchain.Agreement {
	return rentchain.Agreement{
		ID:             a.ID,
		PropertyID:     a.PropertyID,
		Owner:          a.Owner,
		Tenant:         a.Tenant,
		RentAmount:     a.RentAmount.String(),
		DepositAmount:  a.DepositAmount.String(),
		DataHash:       a.DataHash,
		State:          a.State.String(),
		SignedAt:       a.SignedAt,
		RentPaidCount:  a.RentPaidCount,
		TotalRentPaid:  a.TotalRentPaid.String(),
		LastRentPaidAt: a.LastRentPaidAt,
		CancelReason:   a.CancelReason,
		ClosedAt:       a.ClosedAt,
		CreatedAt:      a.CreatedAt,
	}
}

func Agreements(as []domain.Agreement) []rentchain.Agreement {
	out := make([]rentchain.Agreement, 0, len(as))
	for _, a := range as {
		out = append(out, Agreement(a))
	}
	return out
}

func Transfers(ts []domain.Transfer) []rentchain.Transfer {
	out := make([]rentchain.Transfer, 0, len(ts))
	for _, t := range ts {
		out = append(out, rentchain.Transfer{
			ID:          t.ID,
			From:        t.From,
			To:          t.To,
			Amount:      t.Amount.String(),
			Kind:        string(t.Kind),
			AgreementID: t.AgreementID,
			CreatedAt:   t.CreatedAt,
		})
	}
	return out
}
