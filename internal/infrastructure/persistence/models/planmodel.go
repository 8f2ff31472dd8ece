package models

import (
	"time"

	"github.com/examforge/examforge/internal/shared/constants"
)

// PlanModel is a catalog row. Titles are unique regardless of case.
type PlanModel struct {
	ID            uint   `gorm:"primarykey"`
	Title         string `gorm:"uniqueIndex;not null;size:128"`
	Description   string `gorm:"type:text"`
	PriceMinor    int64  `gorm:"not null"`
	Interval      string `gorm:"not null;size:20"`
	GatewayPlanID string `gorm:"size:64;index"`
	Active        bool   `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (PlanModel) TableName() string {
	return constants.TablePlans
}
