package models

import (
	"time"
)

type EscrowAccount struct {
	AgreementID uint64    `json:"agreementId" gorm:"primaryKey;autoIncrement:false"`
	Balance     string    `json:"balance" gorm:"type:text;not null"`
	CDate       time.Time `json:"cdate" gorm:"not null"`
	MDate       time.Time `json:"mdate" gorm:"not null"`
}

// EscrowEntry is the append-only journal behind EscrowAccount.Balance.
type EscrowEntry struct {
	ID           uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	AgreementID  uint64    `json:"agreementId" gorm:"not null;index"`
	Kind         string    `json:"kind" gorm:"type:text;not null"`
	Amount       string    `json:"amount" gorm:"type:text;not null"`
	Counterparty string    `json:"counterparty" gorm:"type:text;not null"`
	BalanceAfter string    `json:"balanceAfter" gorm:"type:text;not null"`
	CDate        time.Time `json:"cdate" gorm:"not null"`
}

type Transfer struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	From        string    `json:"from" gorm:"column:from_account;type:text;not null;index"`
	To          string    `json:"to" gorm:"column:to_account;type:text;not null;index"`
	Amount      string    `json:"amount" gorm:"type:text;not null"`
	Kind        string    `json:"kind" gorm:"type:text;not null"`
	AgreementID uint64    `json:"agreementId" gorm:"not null;index"`
	CDate       time.Time `json:"cdate" gorm:"not null"`
}
