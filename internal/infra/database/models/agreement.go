package models

import (
	"time"
)

type Agreement struct {
	ID             uint64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PropertyID     uint64     `json:"propertyId" gorm:"not null;index"`
	Owner          string     `json:"owner" gorm:"type:text;not null;index"`
	Tenant         string     `json:"tenant" gorm:"type:text;not null;index"`
	RentAmount     string     `json:"rentAmount" gorm:"type:text;not null"`
	DepositAmount  string     `json:"depositAmount" gorm:"type:text;not null"`
	DataHash       string     `json:"dataHash" gorm:"type:text;not null"`
	State          int        `json:"state" gorm:"not null;index"`
	SignedAt       *time.Time `json:"signedAt"`
	RentPaidCount  uint64     `json:"rentPaidCount" gorm:"not null"`
	TotalRentPaid  string     `json:"totalRentPaid" gorm:"type:text;not null"`
	LastRentPaidAt *time.Time `json:"lastRentPaidAt"`
	CancelReason   string     `json:"cancelReason" gorm:"type:text;not null"`
	ClosedAt       *time.Time `json:"closedAt"`
	CDate          time.Time  `json:"cdate" gorm:"not null"`
	MDate          time.Time  `json:"mdate" gorm:"not null"`
}

type EventLog struct {
	ID       uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Type     string    `json:"type" gorm:"type:text;not null;index"`
	Channels string    `json:"channels" gorm:"type:text;not null"`
	Payload  string    `json:"payload" gorm:"type:text;not null"`
	CDate    time.Time `json:"cdate" gorm:"not null;index"`
}
