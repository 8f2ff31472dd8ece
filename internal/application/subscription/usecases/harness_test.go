package usecases

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/application/subscription/services"
	"github.com/examforge/examforge/internal/application/testutil"
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/domain/subscription"
	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
	"github.com/examforge/examforge/internal/shared/biztime"
	"github.com/examforge/examforge/internal/shared/logger"
)

var t0 = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

type harness struct {
	subs     *testutil.MockSubscriptionRepository
	plans    *testutil.MockPlanRepository
	ledger   *testutil.MockLedgerRepository
	gateway  *testutil.MockGateway
	notifier *testutil.MockNotifier
	clock    *biztime.FixedClock
	settings BillingSettings
	mutator  *services.Mutator
	status   *GetSubscriptionStatusUseCase

	gold *plan.Plan
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logger.NewDiscard()

	h := &harness{
		subs:     testutil.NewMockSubscriptionRepository(),
		plans:    testutil.NewMockPlanRepository(),
		ledger:   testutil.NewMockLedgerRepository(),
		gateway:  testutil.NewMockGateway(),
		notifier: testutil.NewMockNotifier(),
		clock:    biztime.NewFixedClock(t0),
		settings: BillingSettings{RenewalCap: 1, Currency: "inr", GatewayKeyID: "rzp_test_key"},
	}
	tx := testutil.NewMockTransactionManager(h.subs, h.ledger)
	h.mutator = services.NewMutator(h.subs, tx, log)
	h.status = NewGetSubscriptionStatusUseCase(h.subs, h.plans, h.settings, log)

	h.gold = h.plans.MustAdd("Gold Monthly", 49900, plan.IntervalMonthly, "plan_gold")
	h.gateway.Plans["plan_gold"] = &paymentgateway.Plan{ID: "plan_gold", Period: "monthly", Interval: 1, AmountMinor: 49900}
	return h
}

func (h *harness) subscribeUseCase() *SubscribeUseCase {
	return NewSubscribeUseCase(h.subs, h.plans, h.gateway, h.mutator, h.settings, h.clock, logger.NewDiscard())
}

func (h *harness) addUser(id uint) {
	h.subs.Add(subscription.New(subscription.Subscriber{UserID: id, Name: "Asha", Email: "asha@example.com"}))
}

// addActive stores a user with paid access until expire. A non-empty subID
// binds recurring billing with auto-pay on.
func (h *harness) addActive(t *testing.T, id uint, subID string, expire time.Time) {
	t.Helper()
	s := subscription.New(subscription.Subscriber{UserID: id, Name: "Ravi", Email: "ravi@example.com"})
	a := subscription.Activation{
		PlanID:      h.gold.ID(),
		PaymentType: vo.PaymentTypeOneTime,
		Gateway:     vo.GatewayRazorpay,
		At:          expire.AddDate(0, -1, 0),
		Expire:      expire,
	}
	if subID != "" {
		a.PaymentType = vo.PaymentTypeRecurring
		a.AutoPay = true
		a.Correlation = vo.Recurring(subID)
	}
	require.NoError(t, s.Activate(a))
	h.subs.Add(s)
}

func (h *harness) stored(id uint) *subscription.Subscription {
	return h.subs.Stored(id)
}
