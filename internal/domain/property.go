package domain

import (
	"math/big"
	"time"
)

type PropertyStatus int

const (
	PropertyAvailable PropertyStatus = iota
	PropertyRented
)

func (s PropertyStatus) String() string {
	switch s {
	case PropertyAvailable:
		return "Available"
	case PropertyRented:
		return "Rented"
	default:
		return "Unknown"
	}
}

// Property is a registered rental unit. Available always mirrors Status.
type Property struct {
	ID             uint64
	Owner          string
	PricePerPeriod *big.Int
	Status         PropertyStatus
	Available      bool
	DataHash       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (p *Property) MarkRented() error {
	if p.Status != PropertyAvailable {
		return StateError{Resource: "property", Reason: "property is already rented"}
	}
	p.Status = PropertyRented
	p.Available = false
	return nil
}

func (p *Property) MarkAvailable() error {
	if p.Status != PropertyRented {
		return StateError{Resource: "property", Reason: "property is not rented"}
	}
	p.Status = PropertyAvailable
	p.Available = true
	return nil
}
