package models

import (
	"time"

	"github.com/examforge/examforge/internal/shared/constants"
)

// UserModel is a user row with the subscription columns embedded. The
// billing core never creates users; it only reads identity columns and
// writes subscription state through the versioned Save.
type UserModel struct {
	ID                 uint       `gorm:"primarykey"`
	Email              string     `gorm:"uniqueIndex;not null;size:255"`
	Name               string     `gorm:"not null;size:100"`
	Phone              string     `gorm:"size:32"`
	PlanID             *uint      `gorm:"index"`
	PendingPlanID      *uint
	Gateway            string     `gorm:"size:20;not null;default:''"`
	PaymentType        string     `gorm:"size:20;not null;default:unknown"`
	SubscriptionStatus string     `gorm:"size:20;not null;default:'';index:idx_users_status_expire,priority:1"`
	IsFree             bool       `gorm:"not null;default:false"`
	PurchaseDate       *time.Time
	StartDate          *time.Time
	Expire             *time.Time `gorm:"index:idx_users_status_expire,priority:2"`
	AutoPay            bool       `gorm:"not null;default:false"`
	AutoRenewalCount   int        `gorm:"not null;default:0"`
	GatewayCustomerID  *string    `gorm:"size:64;index"`
	CorrelationKind    string     `gorm:"size:16;not null;default:''"`
	CorrelationID      *string    `gorm:"size:64;index"`
	PendingSince       *time.Time `gorm:"index"`
	SuspendedAt        *time.Time
	Version            int        `gorm:"not null;default:1"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (UserModel) TableName() string {
	return constants.TableUsers
}
