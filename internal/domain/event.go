package domain

import (
	"strconv"
	"strings"
)

type EventType string

const (
	EventUserRegistered     EventType = "UserRegistered"
	EventPropertyRegistered EventType = "PropertyRegistered"
	EventTitleIssued        EventType = "TitleIssued"
	EventAgreementCreated   EventType = "AgreementCreated"
	EventAgreementSigned    EventType = "AgreementSigned"
	EventDepositMade        EventType = "DepositMade"
	EventRentPaid           EventType = "RentPaid"
	EventFundsReleased      EventType = "FundsReleased"
	EventAgreementCompleted EventType = "AgreementCompleted"
	EventAgreementCancelled EventType = "AgreementCancelled"
)

// Event is a domain event recorded with the transaction that caused it.
type Event struct {
	Type     EventType
	Channels []string
	Payload  map[string]any
}

func PropertyChannel(id uint64) string {
	return "property." + strconv.FormatUint(id, 10)
}

func AgreementChannel(id uint64) string {
	return "agreement." + strconv.FormatUint(id, 10)
}

func AccountChannel(address string) string {
	return "account." + strings.ToLower(address)
}

func NewUserRegistered(u User) Event {
	return Event{
		Type:     EventUserRegistered,
		Channels: []string{AccountChannel(u.Address)},
		Payload: map[string]any{
			"address":     u.Address,
			"kycVerified": u.KYCVerified,
			"roleFlags":   uint32(u.RoleFlags),
		},
	}
}

func NewPropertyRegistered(p Property) Event {
	return Event{
		Type:     EventPropertyRegistered,
		Channels: []string{PropertyChannel(p.ID), AccountChannel(p.Owner)},
		Payload: map[string]any{
			"propertyId":     p.ID,
			"owner":          p.Owner,
			"pricePerPeriod": p.PricePerPeriod.String(),
			"dataHash":       p.DataHash,
		},
	}
}

func NewTitleIssued(t Title) Event {
	return Event{
		Type:     EventTitleIssued,
		Channels: []string{PropertyChannel(t.TokenID), AccountChannel(t.Owner)},
		Payload: map[string]any{
			"tokenId": t.TokenID,
			"owner":   t.Owner,
			"uri":     t.URI,
		},
	}
}

func agreementChannels(a Agreement) []string {
	return []string{
		AgreementChannel(a.ID),
		PropertyChannel(a.PropertyID),
		AccountChannel(a.Owner),
		AccountChannel(a.Tenant),
	}
}

func NewAgreementCreated(a Agreement) Event {
	return Event{
		Type:     EventAgreementCreated,
		Channels: agreementChannels(a),
		Payload: map[string]any{
			"agreementId":   a.ID,
			"propertyId":    a.PropertyID,
			"tenant":        a.Tenant,
			"rentAmount":    a.RentAmount.String(),
			"depositAmount": a.DepositAmount.String(),
			"dataHash":      a.DataHash,
		},
	}
}

func NewAgreementSigned(a Agreement) Event {
	return Event{
		Type:     EventAgreementSigned,
		Channels: agreementChannels(a),
		Payload: map[string]any{
			"agreementId": a.ID,
			"propertyId":  a.PropertyID,
			"tenant":      a.Tenant,
			"signedAt":    a.SignedAt,
		},
	}
}

func NewDepositMade(a Agreement, balance string) Event {
	return Event{
		Type:     EventDepositMade,
		Channels: agreementChannels(a),
		Payload: map[string]any{
			"agreementId": a.ID,
			"amount":      a.DepositAmount.String(),
			"balance":     balance,
		},
	}
}

func NewRentPaid(a Agreement) Event {
	return Event{
		Type:     EventRentPaid,
		Channels: agreementChannels(a),
		Payload: map[string]any{
			"agreementId":   a.ID,
			"amount":        a.RentAmount.String(),
			"to":            a.Owner,
			"rentPaidCount": a.RentPaidCount,
		},
	}
}

func NewFundsReleased(a Agreement, p Payout) Event {
	return Event{
		Type:     EventFundsReleased,
		Channels: append(agreementChannels(a), AccountChannel(p.Recipient)),
		Payload: map[string]any{
			"agreementId": a.ID,
			"to":          p.Recipient,
			"amount":      p.Amount.String(),
		},
	}
}

func NewAgreementCompleted(a Agreement, policy TerminationPolicy) Event {
	return Event{
		Type:     EventAgreementCompleted,
		Channels: agreementChannels(a),
		Payload: map[string]any{
			"agreementId": a.ID,
			"propertyId":  a.PropertyID,
			"policy":      policy.String(),
		},
	}
}

func NewAgreementCancelled(a Agreement) Event {
	return Event{
		Type:     EventAgreementCancelled,
		Channels: agreementChannels(a),
		Payload: map[string]any{
			"agreementId": a.ID,
			"propertyId":  a.PropertyID,
			"reason":      a.CancelReason,
		},
	}
}
