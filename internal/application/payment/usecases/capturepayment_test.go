package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/application/payment/planresolver"
	subscriptionUsecases "github.com/examforge/examforge/internal/application/subscription/usecases"
	paymentvo "github.com/examforge/examforge/internal/domain/payment/valueobjects"
	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
	apperrors "github.com/examforge/examforge/internal/shared/errors"
)

func TestCapture_OneTimeCheckout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addUser(1, "one@example.com")

	checkout, err := h.subscribe.Execute(ctx, subscriptionUsecases.SubscribeCommand{
		UserID: 1, PlanID: h.gold.ID(), PaymentType: "one-time",
	})
	require.NoError(t, err)
	require.NotEmpty(t, checkout.OrderID)
	assert.Equal(t, vo.StatePendingPayment, h.stored(1).State())

	result, err := h.capture.Execute(ctx, CapturePaymentCommand{
		Payment: capturedPayment("pay_1", checkout.OrderID, 49900),
	})
	require.NoError(t, err)
	assert.Equal(t, CaptureActivated, result.Outcome)

	s := h.stored(1)
	assert.Equal(t, vo.StateActive, s.State())
	assert.Equal(t, h.gold.ID(), *s.PlanID())
	assert.False(t, s.AutoPay())
	assert.True(t, s.Correlation().IsZero())
	assert.Equal(t, t0.AddDate(0, 0, 30), *s.Expire())

	entries := h.ledger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, paymentvo.PaymentStatusCompleted, entries[0].Status())
	assert.Equal(t, paymentvo.MethodUPI, entries[0].Method())
	assert.Equal(t, "inr", entries[0].Currency())
	assert.Equal(t, 1, h.notifier.WelcomeCount())
}

func TestCapture_DuplicateIsNoOp(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addUser(1, "one@example.com")

	checkout, err := h.subscribe.Execute(ctx, subscriptionUsecases.SubscribeCommand{UserID: 1, PlanID: h.gold.ID(), PaymentType: "one-time"})
	require.NoError(t, err)

	cmd := CapturePaymentCommand{Payment: capturedPayment("pay_1", checkout.OrderID, 49900)}
	_, err = h.capture.Execute(ctx, cmd)
	require.NoError(t, err)
	first := h.stored(1).Snapshot()

	h.clock.Advance(time.Hour)
	result, err := h.capture.Execute(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, CaptureDuplicate, result.Outcome)
	assert.Len(t, h.ledger.Entries(), 1)
	assert.Equal(t, first, h.stored(1).Snapshot())
	assert.Equal(t, 1, h.notifier.WelcomeCount())
}

func TestCapture_FallsBackToNotesAndEmail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addUser(1, "notes@example.com")
	h.addUser(2, "mail@example.com")

	byNotes := capturedPayment("pay_notes", "order_unknown", 99900)
	byNotes.Notes = paymentgateway.Notes{paymentgateway.NoteUserID: "1", paymentgateway.NotePlanID: "2"}
	_, err := h.capture.Execute(ctx, CapturePaymentCommand{Payment: byNotes})
	require.NoError(t, err)
	assert.Equal(t, h.silver.ID(), *h.stored(1).PlanID())
	assert.Equal(t, t0.AddDate(0, 0, 90), *h.stored(1).Expire())

	byEmail := capturedPayment("pay_mail", "", 49900)
	byEmail.Email = "MAIL@example.com"
	_, err = h.capture.Execute(ctx, CapturePaymentCommand{Payment: byEmail})
	require.NoError(t, err)
	assert.Equal(t, h.gold.ID(), *h.stored(2).PlanID())
}

func TestCapture_UsesFetchedOrderNotes(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addUser(5, "o@example.com")
	h.gateway.Orders["order_x"] = &paymentgateway.Order{
		ID:    "order_x",
		Notes: paymentgateway.Notes{paymentgateway.NoteUserID: "5", paymentgateway.NotePlanID: "2"},
	}

	_, err := h.capture.Execute(ctx, CapturePaymentCommand{Payment: capturedPayment("pay_x", "order_x", 1)})
	require.NoError(t, err)
	assert.Equal(t, h.silver.ID(), *h.stored(5).PlanID())
}

func TestCapture_Unattributed(t *testing.T) {
	h := newHarness(t)
	_, err := h.capture.Execute(context.Background(), CapturePaymentCommand{
		Payment: capturedPayment("pay_1", "order_nobody", 49900),
	})
	assert.ErrorIs(t, err, ErrUnattributed)
	assert.Empty(t, h.ledger.Entries())
}

func TestCapture_AmbiguousPlanMutatesNothing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.plans.MustAdd("Gold Monthly Clone", 49900, "monthly", "")
	h.addUser(1, "amb@example.com")
	before := h.stored(1).Snapshot()

	p := capturedPayment("pay_amb", "", 49900)
	p.Notes = paymentgateway.Notes{paymentgateway.NoteUserID: "1"}
	_, err := h.capture.Execute(ctx, CapturePaymentCommand{Payment: p})

	require.Error(t, err)
	assert.True(t, planresolver.IsAmbiguity(err))
	assert.Equal(t, before, h.stored(1).Snapshot())
	assert.Empty(t, h.ledger.Entries())
}

func TestCapture_RecurringActivation(t *testing.T) {
	tests := []struct {
		name        string
		totalCount  int
		wantAutoPay bool
	}{
		{name: "two charges keeps auto-pay", totalCount: 2, wantAutoPay: true},
		{name: "single charge disables auto-pay", totalCount: 1, wantAutoPay: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := context.Background()
			h.addUser(1, "rec@example.com")

			checkout, err := h.subscribe.Execute(ctx, subscriptionUsecases.SubscribeCommand{UserID: 1, PlanID: h.gold.ID(), PaymentType: "recurring"})
			require.NoError(t, err)
			require.NotEmpty(t, checkout.SubscriptionID)

			currentEnd := t0.AddDate(0, 1, 0)
			gsub := h.gateway.Subscriptions[checkout.SubscriptionID]
			gsub.Status = paymentgateway.SubscriptionStatusActive
			gsub.TotalCount = tt.totalCount
			gsub.CurrentEnd = &currentEnd

			p := capturedPayment("pay_rec", "", 49900)
			p.SubscriptionID = checkout.SubscriptionID
			_, err = h.capture.Execute(ctx, CapturePaymentCommand{Payment: p})
			require.NoError(t, err)

			s := h.stored(1)
			assert.Equal(t, vo.StateActive, s.State())
			assert.Equal(t, tt.wantAutoPay, s.AutoPay())
			assert.Equal(t, 0, s.AutoRenewalCount())
			assert.Equal(t, currentEnd, *s.Expire())
			assert.Equal(t, vo.Recurring(checkout.SubscriptionID), s.Correlation())
			assert.Equal(t, vo.PaymentTypeRecurring, s.PaymentType())
		})
	}
}

func TestCapture_RecurringChargeOnActiveSubscriptionOnlyBooks(t *testing.T) {
	h := newHarness(t)
	expire := t0.AddDate(0, 0, 20)
	h.addActiveRecurring(t, 1, "sub_live", expire, 1)
	before := h.stored(1).Snapshot()
	currentEnd := t0.AddDate(0, 2, 0)
	h.gateway.Subscriptions["sub_live"] = &paymentgateway.Subscription{ID: "sub_live", PlanID: "plan_gold", TotalCount: 2, CurrentEnd: &currentEnd}

	p := capturedPayment("pay_renew", "", 49900)
	p.SubscriptionID = "sub_live"
	result, err := h.capture.Execute(context.Background(), CapturePaymentCommand{Payment: p})
	require.NoError(t, err)

	assert.Equal(t, CaptureRenewal, result.Outcome)
	assert.Equal(t, before, h.stored(1).Snapshot())
	assert.Len(t, h.ledger.Entries(), 1)
	assert.Equal(t, 0, h.notifier.WelcomeCount())
}

func TestCapture_RecurringIgnoresCancelledSubscription(t *testing.T) {
	h := newHarness(t)
	h.addUser(1, "c@example.com")
	currentEnd := t0.AddDate(0, 1, 0)
	h.gateway.Subscriptions["sub_gone"] = &paymentgateway.Subscription{
		ID: "sub_gone", PlanID: "plan_gold", CurrentEnd: &currentEnd,
		Notes: paymentgateway.Notes{paymentgateway.NoteUserID: "1"},
	}

	p := capturedPayment("pay_late", "", 49900)
	p.SubscriptionID = "sub_gone"
	_, err := h.capture.Execute(context.Background(), CapturePaymentCommand{Payment: p})

	assert.ErrorIs(t, err, ErrUnattributed)
	assert.Equal(t, vo.StateFree, h.stored(1).State())
}

func TestCapture_CancellationBeforeCommitIsNotUndone(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addUser(1, "late@example.com")

	checkout, err := h.subscribe.Execute(ctx, subscriptionUsecases.SubscribeCommand{UserID: 1, PlanID: h.gold.ID(), PaymentType: "recurring"})
	require.NoError(t, err)
	currentEnd := t0.AddDate(0, 1, 0)
	gsub := h.gateway.Subscriptions[checkout.SubscriptionID]
	gsub.Status = paymentgateway.SubscriptionStatusActive
	gsub.TotalCount = 2
	gsub.CurrentEnd = &currentEnd

	// The cancellation lands after the payer was found but before the
	// capture commits.
	cancelled := false
	h.plans.BeforeGatewayLookup = func(string) {
		if cancelled {
			return
		}
		cancelled = true
		require.NoError(t, h.events.Execute(ctx, paymentgateway.EventSubscriptionCancelled, gatewaySub(checkout.SubscriptionID, nil)))
	}

	p := capturedPayment("pay_race", "", 49900)
	p.SubscriptionID = checkout.SubscriptionID
	result, err := h.capture.Execute(ctx, CapturePaymentCommand{Payment: p})
	require.NoError(t, err)
	require.True(t, cancelled)

	assert.Equal(t, CaptureDetached, result.Outcome)
	s := h.stored(1)
	assert.Equal(t, vo.StateSuspended, s.State())
	assert.True(t, s.Correlation().IsZero())
	assert.False(t, s.AutoPay())
	assert.Nil(t, s.Expire())
	assert.Len(t, h.ledger.Entries(), 1, "the charge is still booked")
	assert.Equal(t, 0, h.notifier.WelcomeCount())
}

func TestCapture_GatewayFailureOnRecurring(t *testing.T) {
	h := newHarness(t)
	h.gateway.FetchErr = assert.AnError

	p := capturedPayment("pay_1", "", 49900)
	p.SubscriptionID = "sub_1"
	_, err := h.capture.Execute(context.Background(), CapturePaymentCommand{Payment: p})
	assert.True(t, apperrors.IsGatewayError(err))
}

func TestCapture_RetriesOnVersionConflict(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addUser(1, "race@example.com")
	checkout, err := h.subscribe.Execute(ctx, subscriptionUsecases.SubscribeCommand{UserID: 1, PlanID: h.gold.ID(), PaymentType: "one-time"})
	require.NoError(t, err)

	conflicts := 1
	h.subs.BeforeSave = func(userID uint) {
		if conflicts == 0 {
			return
		}
		conflicts--
		// A concurrent writer bumps the version underneath.
		s := h.subs.Stored(userID)
		s.SetVersion(s.Version() + 1)
		h.subs.Add(s)
	}

	result, err := h.capture.Execute(ctx, CapturePaymentCommand{Payment: capturedPayment("pay_1", checkout.OrderID, 49900)})
	require.NoError(t, err)
	assert.Equal(t, CaptureActivated, result.Outcome)
	assert.Len(t, h.ledger.Entries(), 1, "rolled back insert is not duplicated")
	assert.Equal(t, vo.StateActive, h.stored(1).State())
}

func TestCapture_PromotesFailedEntry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.addUser(1, "promo@example.com")

	failed := capturedPayment("pay_same", "", 49900)
	failed.Status = paymentgateway.PaymentStatusFailed
	failed.Notes = paymentgateway.Notes{paymentgateway.NoteUserID: "1"}
	require.NoError(t, h.failed.Execute(ctx, failed))

	captured := capturedPayment("pay_same", "", 49900)
	captured.Notes = paymentgateway.Notes{paymentgateway.NoteUserID: "1"}
	result, err := h.capture.Execute(ctx, CapturePaymentCommand{Payment: captured})
	require.NoError(t, err)

	assert.Equal(t, CaptureActivated, result.Outcome)
	entries := h.ledger.Entries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsCompleted())
}

func TestCapture_RejectsOtherUser(t *testing.T) {
	h := newHarness(t)
	h.addUser(1, "a@example.com")
	p := capturedPayment("pay_1", "", 49900)
	p.Notes = paymentgateway.Notes{paymentgateway.NoteUserID: "1"}

	_, err := h.capture.Execute(context.Background(), CapturePaymentCommand{Payment: p, ExpectedUserID: 2})
	assert.True(t, apperrors.IsAppError(err))
	assert.Empty(t, h.ledger.Entries())
}
