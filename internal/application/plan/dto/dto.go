package dto

import (
	"time"

	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/shared/utils"
)

type PlanDTO struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DescriptionHTML string    `json:"description_html,omitempty"`
	PriceMinor      int64     `json:"price_minor"`
	PriceLabel      string    `json:"price_label"`
	Currency        string    `json:"currency"`
	Interval        string    `json:"interval"`
	IntervalDays    int       `json:"interval_days"`
	GatewayPlanID   string    `json:"gateway_plan_id,omitempty"`
	Recurring       bool      `json:"recurring"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ImportResult summarises a catalog import.
type ImportResult struct {
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Unchanged int      `json:"unchanged"`
	Titles    []string `json:"titles"`
}

// ToPlanDTO converts p; descriptionHTML is the rendered description and may
// be empty.
func ToPlanDTO(p *plan.Plan, descriptionHTML, currency string) *PlanDTO {
	if p == nil {
		return nil
	}
	return &PlanDTO{
		ID:              p.ID(),
		Title:           p.Title(),
		Description:     p.Description(),
		DescriptionHTML: descriptionHTML,
		PriceMinor:      p.PriceMinor(),
		PriceLabel:      utils.FormatMinorAmount(p.PriceMinor(), currency),
		Currency:        currency,
		Interval:        p.Interval().String(),
		IntervalDays:    p.Interval().Days(),
		GatewayPlanID:   p.GatewayPlanID(),
		Recurring:       p.GatewayPlanID() != "",
		Active:          p.IsActive(),
		CreatedAt:       p.CreatedAt(),
		UpdatedAt:       p.UpdatedAt(),
	}
}
