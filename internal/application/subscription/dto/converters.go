package dto

import (
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/domain/subscription"
	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
	"github.com/examforge/examforge/internal/shared/utils"
)

func ToPlanSummaryDTO(p *plan.Plan, currency string) *PlanSummaryDTO {
	if p == nil {
		return nil
	}
	return &PlanSummaryDTO{
		ID:          p.ID(),
		Title:       p.Title(),
		PriceMinor:  p.PriceMinor(),
		PriceLabel:  utils.FormatMinorAmount(p.PriceMinor(), currency),
		Interval:    p.Interval().String(),
		IntervalDay: p.Interval().Days(),
	}
}

// ToSubscriptionStatusDTO describes s. p is the current plan and may be nil.
func ToSubscriptionStatusDTO(s *subscription.Subscription, p *plan.Plan, renewalCap int, currency string) *SubscriptionStatusDTO {
	state := s.State()
	out := &SubscriptionStatusDTO{
		UserID:             s.UserID(),
		HasSubscription:    state == vo.StateActive,
		State:              state.String(),
		Status:             s.Status().String(),
		Plan:               ToPlanSummaryDTO(p, currency),
		Expire:             s.Expire(),
		AutoPay:            s.AutoPay(),
		AutoRenewalCount:   s.AutoRenewalCount(),
		CanAutoRenew:       s.AutoRenewalCount() < renewalCap,
		NeedsManualRenewal: s.NeedsManualRenewal(renewalCap),
		Gateway:            s.Gateway().String(),
		PaymentType:        s.PaymentType().String(),
		Free:               s.IsFree(),
		PendingCheckout:    s.HasPendingCheckout(),
	}
	out.Message = statusMessage(s, out)
	return out
}

func statusMessage(s *subscription.Subscription, out *SubscriptionStatusDTO) string {
	switch s.State() {
	case vo.StatePendingPayment:
		return "Waiting for payment confirmation"
	case vo.StateSuspended:
		return "Subscription suspended"
	case vo.StateExpired:
		return "Subscription expired, renew to regain access"
	case vo.StateFree:
		return "No active subscription"
	}

	switch {
	case s.PaymentType().IsRecurring() && out.AutoPay && out.CanAutoRenew:
		return "Subscription renews automatically"
	case s.PaymentType().IsRecurring() && out.NeedsManualRenewal:
		return "Auto-renewal limit reached, renew manually before expiry"
	case s.PaymentType().IsRecurring():
		return "Auto-renewal is off, renew manually before expiry"
	default:
		return "Subscription active until expiry"
	}
}

func ToExpiringUserDTO(s *subscription.Subscription, planTitle string) *ExpiringUserDTO {
	sub := s.Subscriber()
	out := &ExpiringUserDTO{
		UserID:      sub.UserID,
		Name:        sub.Name,
		Email:       sub.Email,
		Phone:       sub.Phone,
		PlanID:      s.PlanID(),
		PlanTitle:   planTitle,
		AutoPay:     s.AutoPay(),
		PaymentType: s.PaymentType().String(),
	}
	if s.Expire() != nil {
		out.Expire = *s.Expire()
	}
	return out
}
