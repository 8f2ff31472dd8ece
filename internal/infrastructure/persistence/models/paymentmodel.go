package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/examforge/examforge/internal/shared/constants"
)

// PaymentModel is one ledger row, unique per gateway payment id.
type PaymentModel struct {
	ID                 uint   `gorm:"primarykey"`
	UserID             uint   `gorm:"index;not null"`
	PlanID             *uint
	AmountMinor        int64  `gorm:"not null"`
	Currency           string `gorm:"size:10;not null;default:inr"`
	Method             string `gorm:"size:20;not null"`
	Gateway            string `gorm:"size:20;not null"`
	GatewayPaymentID   string `gorm:"uniqueIndex;size:128;not null"`
	InvoiceID          string `gorm:"size:128"`
	Status             string `gorm:"size:20;not null;index"`
	PurchasedAt        time.Time
	ExpireAt           *time.Time
	FailureReason      string `gorm:"size:128"`
	FailureDescription string `gorm:"size:512"`
	Notes              datatypes.JSONMap
	CreatedAt          time.Time
}

func (PaymentModel) TableName() string {
	return constants.TablePayments
}
