// Package subscription holds the per-user subscription record and every
// transition it may go through. Transitions take the current time explicitly
// and never touch the gateway or storage.
package subscription

import (
	"time"

	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
)

// Subscriber identifies the user who owns a subscription.
type Subscriber struct {
	UserID uint
	Name   string
	Email  string
	Phone  string
}

// Subscription is the subscription state embedded in a user row.
type Subscription struct {
	subscriber        Subscriber
	planID            *uint
	pendingPlanID     *uint
	gateway           vo.Gateway
	paymentType       vo.PaymentType
	status            vo.Status
	free              bool
	purchaseDate      *time.Time
	startDate         *time.Time
	expire            *time.Time
	autoPay           bool
	autoRenewalCount  int
	gatewayCustomerID string
	correlation       vo.Correlation
	pendingSince      *time.Time
	suspendedAt       *time.Time
	version           int
}

// Snapshot carries persisted columns into Reconstruct.
type Snapshot struct {
	Subscriber        Subscriber
	PlanID            *uint
	PendingPlanID     *uint
	Gateway           vo.Gateway
	PaymentType       vo.PaymentType
	Status            vo.Status
	Free              bool
	PurchaseDate      *time.Time
	StartDate         *time.Time
	Expire            *time.Time
	AutoPay           bool
	AutoRenewalCount  int
	GatewayCustomerID string
	Correlation       vo.Correlation
	PendingSince      *time.Time
	SuspendedAt       *time.Time
	Version           int
}

// New returns the Free subscription every user starts with.
func New(subscriber Subscriber) *Subscription {
	return &Subscription{
		subscriber:  subscriber,
		paymentType: vo.PaymentTypeUnknown,
	}
}

func Reconstruct(s Snapshot) *Subscription {
	paymentType := s.PaymentType
	if paymentType == "" {
		paymentType = vo.PaymentTypeUnknown
	}
	return &Subscription{
		subscriber:        s.Subscriber,
		planID:            s.PlanID,
		pendingPlanID:     s.PendingPlanID,
		gateway:           s.Gateway,
		paymentType:       paymentType,
		status:            s.Status,
		free:              s.Free,
		purchaseDate:      s.PurchaseDate,
		startDate:         s.StartDate,
		expire:            s.Expire,
		autoPay:           s.AutoPay,
		autoRenewalCount:  s.AutoRenewalCount,
		gatewayCustomerID: s.GatewayCustomerID,
		correlation:       s.Correlation,
		pendingSince:      s.PendingSince,
		suspendedAt:       s.SuspendedAt,
		version:           s.Version,
	}
}

// Snapshot exports the persisted columns.
func (s *Subscription) Snapshot() Snapshot {
	return Snapshot{
		Subscriber:        s.subscriber,
		PlanID:            s.planID,
		PendingPlanID:     s.pendingPlanID,
		Gateway:           s.gateway,
		PaymentType:       s.paymentType,
		Status:            s.status,
		Free:              s.free,
		PurchaseDate:      s.purchaseDate,
		StartDate:         s.startDate,
		Expire:            s.expire,
		AutoPay:           s.autoPay,
		AutoRenewalCount:  s.autoRenewalCount,
		GatewayCustomerID: s.gatewayCustomerID,
		Correlation:       s.correlation,
		PendingSince:      s.pendingSince,
		SuspendedAt:       s.suspendedAt,
		Version:           s.version,
	}
}

func (s *Subscription) UserID() uint { return s.subscriber.UserID }
func (s *Subscription) Subscriber() Subscriber { return s.subscriber }
func (s *Subscription) PlanID() *uint { return s.planID }
func (s *Subscription) PendingPlanID() *uint { return s.pendingPlanID }
func (s *Subscription) Gateway() vo.Gateway { return s.gateway }
func (s *Subscription) PaymentType() vo.PaymentType { return s.paymentType }
func (s *Subscription) Status() vo.Status { return s.status }
func (s *Subscription) IsFree() bool { return s.free }
func (s *Subscription) PurchaseDate() *time.Time { return s.purchaseDate }
func (s *Subscription) StartDate() *time.Time { return s.startDate }
func (s *Subscription) Expire() *time.Time { return s.expire }
func (s *Subscription) AutoPay() bool { return s.autoPay }
func (s *Subscription) AutoRenewalCount() int { return s.autoRenewalCount }
func (s *Subscription) GatewayCustomerID() string { return s.gatewayCustomerID }
func (s *Subscription) Correlation() vo.Correlation { return s.correlation }
func (s *Subscription) PendingSince() *time.Time { return s.pendingSince }
func (s *Subscription) SuspendedAt() *time.Time { return s.suspendedAt }
func (s *Subscription) Version() int { return s.version }
func (s *Subscription) HasPendingCheckout() bool { return s.pendingSince != nil && !s.correlation.IsZero() }
func (s *Subscription) SetVersion(version int) { s.version = version }
func (s *Subscription) SetGatewayCustomerID(id string) { s.gatewayCustomerID = id }

// State derives the lifecycle position. An active record stays Active while a
// renewal checkout is pending so paid access is never hidden.
func (s *Subscription) State() vo.State {
	switch {
	case s.status == vo.StatusActive:
		return vo.StateActive
	case s.HasPendingCheckout():
		return vo.StatePendingPayment
	case s.suspendedAt != nil:
		return vo.StateSuspended
	case s.status == vo.StatusExpired:
		return vo.StateExpired
	default:
		return vo.StateFree
	}
}

// HasAccess reports whether the user may use paid features at now.
func (s *Subscription) HasAccess(now time.Time) bool {
	return s.status == vo.StatusActive && s.expire != nil && s.expire.After(now)
}

// NeedsManualRenewal is true once the renewal cap has been reached.
func (s *Subscription) NeedsManualRenewal(renewalCap int) bool {
	return s.autoRenewalCount >= renewalCap
}

// BeginCheckout records a fresh checkout for a user without an active plan.
func (s *Subscription) BeginCheckout(planID uint, paymentType vo.PaymentType, correlation vo.Correlation, now time.Time) error {
	if s.status == vo.StatusActive {
		return ErrAlreadyActive
	}
	s.beginCheckout(planID, correlation, now)
	s.planID = uintPtr(planID)
	s.gateway = vo.GatewayRazorpay
	s.paymentType = paymentType
	s.suspendedAt = nil
	return nil
}

// BeginRenewalCheckout records a checkout started by a manual renewal. The
// current plan and expiry stay in force until payment lands. Recurring billing
// bound so far is replaced, so auto-pay stops.
func (s *Subscription) BeginRenewalCheckout(planID uint, paymentType vo.PaymentType, correlation vo.Correlation, now time.Time) {
	if s.correlation.IsRecurring() {
		s.autoPay = false
	}
	s.beginCheckout(planID, correlation, now)
	if s.status != vo.StatusActive {
		s.planID = uintPtr(planID)
		s.gateway = vo.GatewayRazorpay
		s.paymentType = paymentType
		s.suspendedAt = nil
	}
}

func (s *Subscription) beginCheckout(planID uint, correlation vo.Correlation, now time.Time) {
	s.correlation = correlation
	s.pendingPlanID = uintPtr(planID)
	s.pendingSince = timePtr(now)
}

// Activation describes a confirmed payment.
type Activation struct {
	PlanID      uint
	PaymentType vo.PaymentType
	Gateway     vo.Gateway
	At          time.Time
	Expire      time.Time
	AutoPay     bool
	// Correlation stays bound after activation; zero clears it.
	Correlation vo.Correlation
}

// Activate grants access for a confirmed payment.
func (s *Subscription) Activate(a Activation) error {
	if !a.Expire.After(a.At) {
		return ErrInvalidExpiry
	}

	s.status = vo.StatusActive
	s.planID = uintPtr(a.PlanID)
	s.gateway = a.Gateway
	s.paymentType = a.PaymentType
	s.free = false
	s.purchaseDate = timePtr(a.At)
	s.startDate = timePtr(a.At)
	s.expire = timePtr(a.Expire)
	s.autoPay = a.AutoPay && a.PaymentType.IsRecurring()
	s.autoRenewalCount = 0
	s.correlation = a.Correlation
	s.pendingPlanID = nil
	s.pendingSince = nil
	s.suspendedAt = nil
	return nil
}

// RecordRenewal applies a recurring charge reported for subscriptionID. It
// returns false without changes when newExpire does not extend access, which
// is how stale or repeated renewal events are absorbed, and while the first
// payment is still pending, since the capture activates the subscription.
func (s *Subscription) RecordRenewal(subscriptionID string, newExpire time.Time, renewalCap int, now time.Time) (bool, error) {
	if !s.correlation.IsRecurring() || s.correlation.ID != subscriptionID {
		return false, ErrCorrelationMismatch
	}
	if s.pendingSince != nil {
		return false, nil
	}
	if s.expire != nil && !newExpire.After(*s.expire) {
		return false, nil
	}

	s.autoRenewalCount++
	s.expire = timePtr(newExpire)
	s.startDate = timePtr(now)
	s.status = vo.StatusActive
	if s.autoRenewalCount > renewalCap {
		s.autoPay = false
	}
	return true, nil
}

func (s *Subscription) Pause() {
	s.autoPay = false
}

// Resume re-enables auto-pay. One-time plans and records past the renewal cap
// keep auto-pay off.
func (s *Subscription) Resume(renewalCap int) error {
	if !s.paymentType.IsRecurring() || s.autoRenewalCount > renewalCap {
		return ErrAutoPayNotAllowed
	}
	s.autoPay = true
	return nil
}

// CancelFromGateway suspends the subscription after the gateway reports that
// subscriptionID was cancelled.
func (s *Subscription) CancelFromGateway(subscriptionID string, now time.Time) error {
	if !s.correlation.IsRecurring() || s.correlation.ID != subscriptionID {
		return ErrCorrelationMismatch
	}
	s.clear()
	s.free = false
	s.suspendedAt = timePtr(now)
	return nil
}

func (s *Subscription) AdminSuspend(now time.Time) {
	s.clear()
	s.free = true
	s.suspendedAt = timePtr(now)
}

// CancelPlan drops the plan at the user's request and returns to Free.
func (s *Subscription) CancelPlan() {
	s.clear()
	s.free = false
	s.suspendedAt = nil
}

func (s *Subscription) clear() {
	s.planID = nil
	s.pendingPlanID = nil
	s.status = vo.StatusNone
	s.gateway = vo.GatewayNone
	s.paymentType = vo.PaymentTypeUnknown
	s.expire = nil
	s.autoPay = false
	s.autoRenewalCount = 0
	s.correlation = vo.Correlation{}
	s.pendingSince = nil
}

// CancelAutoRenewal stops future charges. detach drops the recurring
// correlation once the gateway confirmed the cancellation, so the follow-up
// cancellation event cannot suspend access that was already paid for.
func (s *Subscription) CancelAutoRenewal(detach bool) {
	s.autoPay = false
	s.autoRenewalCount = 0
	if detach && s.correlation.IsRecurring() {
		s.correlation = vo.Correlation{}
	}
}

// ExpireIfDue moves an overdue subscription without auto-pay to Expired.
func (s *Subscription) ExpireIfDue(now time.Time) bool {
	if s.status != vo.StatusActive || s.autoPay || s.expire == nil || !s.expire.Before(now) {
		return false
	}
	s.status = vo.StatusExpired
	s.autoRenewalCount = 0
	s.autoPay = false
	return true
}

// IsAbandoned reports whether a checkout started before cutoff never completed.
func (s *Subscription) IsAbandoned(cutoff time.Time) bool {
	return !s.correlation.IsZero() &&
		s.purchaseDate == nil &&
		s.expire == nil &&
		s.pendingSince != nil &&
		s.pendingSince.Before(cutoff)
}

// ClearIfAbandoned undoes an abandoned checkout.
func (s *Subscription) ClearIfAbandoned(cutoff time.Time) bool {
	if !s.IsAbandoned(cutoff) {
		return false
	}
	s.correlation = vo.Correlation{}
	s.pendingPlanID = nil
	s.pendingSince = nil
	s.planID = nil
	s.gateway = vo.GatewayNone
	return true
}

// AdminGrant describes access granted by an administrator.
type AdminGrant struct {
	PlanID *uint
	At     time.Time
	Expire time.Time
	Free   bool
}

func (s *Subscription) Grant(g AdminGrant) error {
	if !g.Expire.After(g.At) {
		return ErrInvalidExpiry
	}
	if g.PlanID != nil {
		s.planID = uintPtr(*g.PlanID)
	}
	s.status = vo.StatusActive
	s.gateway = vo.GatewayAdmin
	s.paymentType = vo.PaymentTypeOneTime
	s.free = g.Free
	s.purchaseDate = timePtr(g.At)
	s.startDate = timePtr(g.At)
	s.expire = timePtr(g.Expire)
	s.autoPay = false
	s.autoRenewalCount = 0
	s.correlation = vo.Correlation{}
	s.pendingPlanID = nil
	s.pendingSince = nil
	s.suspendedAt = nil
	return nil
}

// Extend pushes the expiry out by days. An expired record whose new expiry lies
// in the future becomes active again.
func (s *Subscription) Extend(days int, now time.Time) error {
	if days <= 0 {
		return ErrInvalidDays
	}
	if s.expire == nil {
		return ErrNoExpiry
	}
	next := s.expire.AddDate(0, 0, days)
	s.expire = &next
	if s.status == vo.StatusExpired && next.After(now) {
		s.status = vo.StatusActive
	}
	return nil
}

func uintPtr(v uint) *uint {
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}
