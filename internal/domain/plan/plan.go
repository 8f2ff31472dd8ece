package plan

import (
	"strings"
	"time"
)

// Plan is a catalog entry. Price is held in minor units (paise).
type Plan struct {
	id            uint
	title         string
	description   string
	priceMinor    int64
	interval      Interval
	gatewayPlanID string
	active        bool
	createdAt     time.Time
	updatedAt     time.Time
}

func NewPlan(title, description string, priceMinor int64, interval Interval, gatewayPlanID string, now time.Time) (*Plan, error) {
	p := &Plan{
		title:         strings.TrimSpace(title),
		description:   description,
		priceMinor:    priceMinor,
		interval:      interval,
		gatewayPlanID: strings.TrimSpace(gatewayPlanID),
		active:        true,
		createdAt:     now,
		updatedAt:     now,
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// ReconstructPlan rebuilds a plan from persistence without validation.
func ReconstructPlan(id uint, title, description string, priceMinor int64, interval Interval, gatewayPlanID string, active bool, createdAt, updatedAt time.Time) *Plan {
	return &Plan{
		id:            id,
		title:         title,
		description:   description,
		priceMinor:    priceMinor,
		interval:      interval,
		gatewayPlanID: gatewayPlanID,
		active:        active,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (p *Plan) validate() error {
	if p.title == "" {
		return ErrTitleRequired
	}
	if p.priceMinor <= 0 {
		return ErrInvalidPrice
	}
	if !p.interval.IsValid() {
		return ErrInvalidInterval
	}
	return nil
}

func (p *Plan) ID() uint { return p.id }
func (p *Plan) Title() string { return p.title }
func (p *Plan) Description() string { return p.description }
func (p *Plan) PriceMinor() int64 { return p.priceMinor }
func (p *Plan) Interval() Interval { return p.interval }
func (p *Plan) GatewayPlanID() string { return p.gatewayPlanID }
func (p *Plan) IsActive() bool { return p.active }
func (p *Plan) CreatedAt() time.Time { return p.createdAt }
func (p *Plan) UpdatedAt() time.Time { return p.updatedAt }

func (p *Plan) SetID(id uint) {
	p.id = id
}

// Update replaces the editable fields and re-validates.
func (p *Plan) Update(title, description string, priceMinor int64, interval Interval, gatewayPlanID string, active bool, now time.Time) error {
	next := *p
	next.title = strings.TrimSpace(title)
	next.description = description
	next.priceMinor = priceMinor
	next.interval = interval
	next.gatewayPlanID = strings.TrimSpace(gatewayPlanID)
	next.active = active
	if err := next.validate(); err != nil {
		return err
	}
	next.updatedAt = now
	*p = next
	return nil
}

// Deactivate hides the plan from checkout. It reports false when the plan was
// already inactive.
func (p *Plan) Deactivate(now time.Time) bool {
	if !p.active {
		return false
	}
	p.active = false
	p.updatedAt = now
	return true
}

// MatchesAmount reports whether a captured amount in minor units pays for this
// plan. Amounts sent in major units by older checkout integrations also match.
func (p *Plan) MatchesAmount(amountMinor int64) bool {
	if amountMinor <= 0 {
		return false
	}
	return amountMinor == p.priceMinor || amountMinor*100 == p.priceMinor
}

// MatchesDescription compares a free-text payment description with the title,
// case-insensitively and in both directions.
func (p *Plan) MatchesDescription(description string) bool {
	desc := strings.ToLower(strings.TrimSpace(description))
	title := strings.ToLower(p.title)
	if desc == "" || title == "" {
		return false
	}
	return strings.Contains(title, desc) || strings.Contains(desc, title)
}
