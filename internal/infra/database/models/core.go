package models

import (
	"time"
)

type User struct {
	Address     string    `json:"address" gorm:"primaryKey;type:text"`
	KYCVerified bool      `json:"kycVerified" gorm:"column:kyc_verified;not null"`
	RoleFlags   uint32    `json:"roleFlags" gorm:"not null"`
	CDate       time.Time `json:"cdate" gorm:"not null"`
	MDate       time.Time `json:"mdate" gorm:"not null"`
}

type Property struct {
	ID             uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Owner          string    `json:"owner" gorm:"type:text;not null;index"`
	PricePerPeriod string    `json:"pricePerPeriod" gorm:"type:text;not null"`
	Status         int       `json:"status" gorm:"not null;index"`
	Available      bool      `json:"available" gorm:"not null"`
	DataHash       string    `json:"dataHash" gorm:"type:text;not null"`
	CDate          time.Time `json:"cdate" gorm:"not null"`
	MDate          time.Time `json:"mdate" gorm:"not null"`
}

type Title struct {
	TokenID uint64    `json:"tokenId" gorm:"primaryKey;autoIncrement:false"`
	Owner   string    `json:"owner" gorm:"type:text;not null;index"`
	URI     string    `json:"uri" gorm:"type:text;not null"`
	CDate   time.Time `json:"cdate" gorm:"not null"`
}
