package mappers

import (
	"fmt"

	"github.com/examforge/examforge/internal/domain/subscription"
	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
	"github.com/examforge/examforge/internal/infrastructure/persistence/models"
)

// SubscriptionToDomain rebuilds the subscription embedded in a user row.
func SubscriptionToDomain(model *models.UserModel) (*subscription.Subscription, error) {
	correlation, err := vo.ParseCorrelation(model.CorrelationKind, derefString(model.CorrelationID))
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", model.ID, err)
	}

	return subscription.Reconstruct(subscription.Snapshot{
		Subscriber: subscription.Subscriber{
			UserID: model.ID,
			Name:   model.Name,
			Email:  model.Email,
			Phone:  model.Phone,
		},
		PlanID:            model.PlanID,
		PendingPlanID:     model.PendingPlanID,
		Gateway:           vo.ParseGateway(model.Gateway),
		PaymentType:       vo.PaymentTypeFromStorage(model.PaymentType),
		Status:            vo.ParseStatus(model.SubscriptionStatus),
		Free:              model.IsFree,
		PurchaseDate:      model.PurchaseDate,
		StartDate:         model.StartDate,
		Expire:            model.Expire,
		AutoPay:           model.AutoPay,
		AutoRenewalCount:  model.AutoRenewalCount,
		GatewayCustomerID: derefString(model.GatewayCustomerID),
		Correlation:       correlation,
		PendingSince:      model.PendingSince,
		SuspendedAt:       model.SuspendedAt,
		Version:           model.Version,
	}), nil
}

// SubscriptionColumns returns the subscription columns of s for an UPDATE.
// Identity columns are owned elsewhere and never written here.
func SubscriptionColumns(s *subscription.Subscription) map[string]interface{} {
	snap := s.Snapshot()
	kind := string(snap.Correlation.Kind)
	if snap.Correlation.IsZero() {
		kind = ""
	}
	return map[string]interface{}{
		"plan_id":             snap.PlanID,
		"pending_plan_id":     snap.PendingPlanID,
		"gateway":             string(snap.Gateway),
		"payment_type":        snap.PaymentType.String(),
		"subscription_status": string(snap.Status),
		"is_free":             snap.Free,
		"purchase_date":       snap.PurchaseDate,
		"start_date":          snap.StartDate,
		"expire":              snap.Expire,
		"auto_pay":            snap.AutoPay,
		"auto_renewal_count":  snap.AutoRenewalCount,
		"gateway_customer_id": optionalString(snap.GatewayCustomerID),
		"correlation_kind":    kind,
		"correlation_id":      optionalString(snap.Correlation.ID),
		"pending_since":       snap.PendingSince,
		"suspended_at":        snap.SuspendedAt,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
