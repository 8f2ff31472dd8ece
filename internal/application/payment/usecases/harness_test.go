package usecases

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/application/payment/planresolver"
	"github.com/examforge/examforge/internal/application/subscription/services"
	subscriptionUsecases "github.com/examforge/examforge/internal/application/subscription/usecases"
	"github.com/examforge/examforge/internal/application/testutil"
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/domain/subscription"
	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
	"github.com/examforge/examforge/internal/shared/biztime"
	"github.com/examforge/examforge/internal/shared/logger"
)

var t0 = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

const renewalCap = 1

type harness struct {
	subs     *testutil.MockSubscriptionRepository
	plans    *testutil.MockPlanRepository
	ledger   *testutil.MockLedgerRepository
	inbox    *testutil.MockWebhookInbox
	gateway  *testutil.MockGateway
	notifier *testutil.MockNotifier
	verifier *testutil.StubVerifier
	tx       *testutil.MockTransactionManager
	clock    *biztime.FixedClock

	capture   *CapturePaymentUseCase
	failed    *RecordFailedPaymentUseCase
	events    *HandleSubscriptionEventUseCase
	webhook   *HandleWebhookUseCase
	confirm   *ConfirmCheckoutUseCase
	subscribe *subscriptionUsecases.SubscribeUseCase

	gold   *plan.Plan
	silver *plan.Plan
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logger.NewDiscard()

	h := &harness{
		subs:     testutil.NewMockSubscriptionRepository(),
		plans:    testutil.NewMockPlanRepository(),
		ledger:   testutil.NewMockLedgerRepository(),
		inbox:    testutil.NewMockWebhookInbox(),
		gateway:  testutil.NewMockGateway(),
		notifier: testutil.NewMockNotifier(),
		verifier: &testutil.StubVerifier{SignatureOK: true},
		clock:    biztime.NewFixedClock(t0),
	}
	h.tx = testutil.NewMockTransactionManager(h.subs, h.ledger)

	h.gold = h.plans.MustAdd("Gold Monthly", 49900, plan.IntervalMonthly, "plan_gold")
	h.silver = h.plans.MustAdd("Silver Quarterly", 99900, plan.IntervalQuarterly, "plan_silver")
	h.gateway.Plans["plan_gold"] = &paymentgateway.Plan{ID: "plan_gold", Period: "monthly", Interval: 1, AmountMinor: 49900}

	settings := subscriptionUsecases.BillingSettings{RenewalCap: renewalCap, Currency: "INR", GatewayKeyID: "rzp_test_key"}
	mutator := services.NewMutator(h.subs, h.tx, log)
	resolver := planresolver.New(h.plans, log)
	status := subscriptionUsecases.NewGetSubscriptionStatusUseCase(h.subs, h.plans, settings, log)

	h.capture = NewCapturePaymentUseCase(h.subs, h.ledger, resolver, h.gateway, mutator, h.notifier, h.clock, log)
	h.failed = NewRecordFailedPaymentUseCase(h.subs, h.ledger, resolver, h.clock, log)
	h.events = NewHandleSubscriptionEventUseCase(h.subs, mutator, renewalCap, h.clock, log)
	h.webhook = NewHandleWebhookUseCase(h.verifier, h.inbox, h.capture, h.failed, h.events, h.clock, log)
	h.confirm = NewConfirmCheckoutUseCase(h.verifier, h.gateway, h.subs, h.ledger, h.capture, status, log)
	h.subscribe = subscriptionUsecases.NewSubscribeUseCase(h.subs, h.plans, h.gateway, mutator, settings, h.clock, log)
	return h
}

// addUser stores a Free user.
func (h *harness) addUser(id uint, email string) {
	h.subs.Add(subscription.New(subscription.Subscriber{UserID: id, Name: "User", Email: email}))
}

// addActiveRecurring stores a user already billed through gateway subscription subID.
func (h *harness) addActiveRecurring(t *testing.T, id uint, subID string, expire time.Time, count int) {
	t.Helper()
	s := subscription.New(subscription.Subscriber{UserID: id, Email: "r@example.com"})
	require.NoError(t, s.Activate(subscription.Activation{
		PlanID:      h.gold.ID(),
		PaymentType: vo.PaymentTypeRecurring,
		Gateway:     vo.GatewayRazorpay,
		At:          t0.AddDate(0, 0, -10),
		Expire:      expire,
		AutoPay:     true,
		Correlation: vo.Recurring(subID),
	}))
	for i := 0; i < count; i++ {
		expire = expire.AddDate(0, 0, 1)
		_, err := s.RecordRenewal(subID, expire, 100, t0)
		require.NoError(t, err)
	}
	h.subs.Add(s)
}

func (h *harness) stored(id uint) *subscription.Subscription {
	return h.subs.Stored(id)
}

func capturedPayment(id, orderID string, amount int64) *paymentgateway.Payment {
	return &paymentgateway.Payment{
		ID:          id,
		OrderID:     orderID,
		AmountMinor: amount,
		Currency:    "INR",
		Status:      paymentgateway.PaymentStatusCaptured,
		Method:      "upi",
		CreatedAt:   t0.Add(-time.Minute),
		Notes:       paymentgateway.Notes{},
	}
}
