package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/examforge/examforge/internal/domain/payment"
	paymentvo "github.com/examforge/examforge/internal/domain/payment/valueobjects"
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/domain/subscription"
	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
	"github.com/examforge/examforge/internal/infrastructure/persistence/models"
	"github.com/examforge/examforge/internal/shared/db"
	applogger "github.com/examforge/examforge/internal/shared/logger"
)

var t0 = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(
		&models.UserModel{},
		&models.PlanModel{},
		&models.PaymentModel{},
		&models.WebhookEventModel{},
	))
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, id uint, email string, mutate func(m *models.UserModel)) {
	t.Helper()
	m := &models.UserModel{ID: id, Email: email, Name: "user", Version: 1, PaymentType: "unknown"}
	if mutate != nil {
		mutate(m)
	}
	require.NoError(t, gdb.Create(m).Error)
}

func ptr[T any](v T) *T { return &v }

func newSubscriptionRepo(gdb *gorm.DB) *SubscriptionRepository {
	return NewSubscriptionRepository(gdb, applogger.NewDiscard())
}

func TestSubscriptionRepository_SaveIsVersioned(t *testing.T) {
	gdb := setupTestDB(t)
	repo := newSubscriptionRepo(gdb)
	ctx := context.Background()
	seedUser(t, gdb, 1, "asha@example.com", nil)

	s, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, vo.StateFree, s.State())

	stale, err := repo.Get(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, s.BeginCheckout(7, vo.PaymentTypeOneTime, vo.OneTime("order_1"), t0))
	require.NoError(t, repo.Save(ctx, s))
	assert.Equal(t, 2, s.Version())

	stale.Pause()
	assert.ErrorIs(t, repo.Save(ctx, stale), subscription.ErrVersionConflict)

	loaded, err := repo.FindByCorrelation(ctx, vo.OneTime("order_1"))
	require.NoError(t, err)
	assert.Equal(t, uint(1), loaded.UserID())
	assert.Equal(t, vo.StatePendingPayment, loaded.State())
	require.NotNil(t, loaded.PendingPlanID())
	assert.Equal(t, uint(7), *loaded.PendingPlanID())
	assert.Equal(t, 2, loaded.Version())

	_, err = repo.FindByCorrelation(ctx, vo.Recurring("order_1"))
	assert.ErrorIs(t, err, subscription.ErrNotFound)
}

func TestSubscriptionRepository_SaveMissingUser(t *testing.T) {
	gdb := setupTestDB(t)
	repo := newSubscriptionRepo(gdb)

	s := subscription.New(subscription.Subscriber{UserID: 42})
	assert.ErrorIs(t, repo.Save(context.Background(), s), subscription.ErrNotFound)

	_, err := repo.Get(context.Background(), 42)
	assert.ErrorIs(t, err, subscription.ErrNotFound)
}

func TestSubscriptionRepository_Lookups(t *testing.T) {
	gdb := setupTestDB(t)
	repo := newSubscriptionRepo(gdb)
	ctx := context.Background()
	seedUser(t, gdb, 1, "Asha@Example.com", func(m *models.UserModel) {
		m.GatewayCustomerID = ptr("cust_1")
	})

	byEmail, err := repo.FindByEmail(ctx, "asha@example.COM")
	require.NoError(t, err)
	assert.Equal(t, uint(1), byEmail.UserID())

	byCustomer, err := repo.FindByGatewayCustomer(ctx, "cust_1")
	require.NoError(t, err)
	assert.Equal(t, "cust_1", byCustomer.GatewayCustomerID())

	_, err = repo.FindByEmail(ctx, "")
	assert.ErrorIs(t, err, subscription.ErrNotFound)
	_, err = repo.FindByGatewayCustomer(ctx, "cust_2")
	assert.ErrorIs(t, err, subscription.ErrNotFound)
}

func TestSubscriptionRepository_FindExpiringBetween(t *testing.T) {
	gdb := setupTestDB(t)
	repo := newSubscriptionRepo(gdb)
	active := func(expire time.Time) func(m *models.UserModel) {
		return func(m *models.UserModel) {
			m.SubscriptionStatus = "active"
			m.Expire = ptr(expire)
		}
	}
	seedUser(t, gdb, 1, "a@example.com", active(t0.Add(48*time.Hour)))
	seedUser(t, gdb, 2, "b@example.com", active(t0.Add(24*time.Hour)))
	seedUser(t, gdb, 3, "c@example.com", active(t0.Add(10*24*time.Hour)))
	seedUser(t, gdb, 4, "d@example.com", func(m *models.UserModel) {
		m.SubscriptionStatus = "expired"
		m.Expire = ptr(t0.Add(24 * time.Hour))
	})

	got, err := repo.FindExpiringBetween(context.Background(), t0, t0.Add(7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint(2), got[0].UserID())
	assert.Equal(t, uint(1), got[1].UserID())
}

func TestSubscriptionRepository_ExpireDue(t *testing.T) {
	gdb := setupTestDB(t)
	repo := newSubscriptionRepo(gdb)
	ctx := context.Background()

	seedUser(t, gdb, 1, "due@example.com", func(m *models.UserModel) {
		m.SubscriptionStatus = "active"
		m.Expire = ptr(t0.Add(-time.Hour))
		m.AutoRenewalCount = 1
	})
	seedUser(t, gdb, 2, "autopay@example.com", func(m *models.UserModel) {
		m.SubscriptionStatus = "active"
		m.Expire = ptr(t0.Add(-time.Hour))
		m.AutoPay = true
		m.PaymentType = "recurring"
	})
	seedUser(t, gdb, 3, "future@example.com", func(m *models.UserModel) {
		m.SubscriptionStatus = "active"
		m.Expire = ptr(t0.Add(time.Hour))
	})

	expired, err := repo.ExpireDue(ctx, t0)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, uint(1), expired[0].UserID())
	assert.Equal(t, vo.StateExpired, expired[0].State())
	assert.Equal(t, 0, expired[0].AutoRenewalCount())
	assert.Equal(t, 2, expired[0].Version())

	again, err := repo.ExpireDue(ctx, t0)
	require.NoError(t, err)
	assert.Empty(t, again)

	for _, id := range []uint{2, 3} {
		s, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, vo.StateActive, s.State(), "user %d", id)
	}
}

func TestSubscriptionRepository_ClearAbandoned(t *testing.T) {
	gdb := setupTestDB(t)
	repo := newSubscriptionRepo(gdb)
	ctx := context.Background()
	cutoff := t0.Add(-24 * time.Hour)

	pending := func(since time.Time) func(m *models.UserModel) {
		return func(m *models.UserModel) {
			m.CorrelationKind = "one_time"
			m.CorrelationID = ptr("order_x")
			m.PendingSince = ptr(since)
			m.PendingPlanID = ptr(uint(1))
			m.PlanID = ptr(uint(1))
			m.Gateway = "razorpay"
		}
	}
	seedUser(t, gdb, 1, "old@example.com", pending(cutoff.Add(-time.Minute)))
	seedUser(t, gdb, 2, "fresh@example.com", pending(cutoff.Add(time.Minute)))
	seedUser(t, gdb, 3, "paid@example.com", func(m *models.UserModel) {
		pending(cutoff.Add(-time.Hour))(m)
		m.PurchaseDate = ptr(cutoff.Add(-48 * time.Hour))
		m.Expire = ptr(t0.Add(72 * time.Hour))
		m.SubscriptionStatus = "active"
	})

	n, err := repo.ClearAbandoned(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	cleared, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, cleared.Correlation().IsZero())
	assert.Nil(t, cleared.PlanID())
	assert.Nil(t, cleared.PendingSince())
	assert.Equal(t, vo.GatewayNone, cleared.Gateway())
	assert.Equal(t, 2, cleared.Version())

	for _, id := range []uint{2, 3} {
		s, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.False(t, s.Correlation().IsZero(), "user %d", id)
	}
}

func TestTransactionManager_RollsBackSubscriptionAndLedger(t *testing.T) {
	gdb := setupTestDB(t)
	subs := newSubscriptionRepo(gdb)
	ledger := NewLedgerRepository(gdb)
	tm := db.NewTransactionManager(gdb)
	seedUser(t, gdb, 1, "asha@example.com", nil)

	boom := errors.New("boom")
	err := tm.RunInTransaction(context.Background(), func(ctx context.Context) error {
		s, err := subs.Get(ctx, 1)
		if err != nil {
			return err
		}
		if err := s.Activate(subscription.Activation{
			PlanID: 1, PaymentType: vo.PaymentTypeOneTime, Gateway: vo.GatewayRazorpay,
			At: t0, Expire: t0.Add(30 * 24 * time.Hour),
		}); err != nil {
			return err
		}
		if err := subs.Save(ctx, s); err != nil {
			return err
		}
		if _, err := ledger.RecordCompleted(ctx, completedEntry(t, "pay_1", 1)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	s, err := subs.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, vo.StateFree, s.State())
	assert.Equal(t, 1, s.Version())

	_, err = ledger.GetByGatewayPaymentID(context.Background(), "pay_1")
	assert.ErrorIs(t, err, payment.ErrPaymentNotFound)
}

func TestPlanRepository(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewPlanRepository(gdb, applogger.NewDiscard())
	ctx := context.Background()

	gold, err := plan.NewPlan("Gold Monthly", "**all** mock tests", 49900, plan.IntervalMonthly, "plan_gold", t0)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, gold))
	assert.NotZero(t, gold.ID())

	dup, err := plan.NewPlan("gold monthly", "", 100, plan.IntervalWeekly, "", t0)
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), plan.ErrDuplicateTitle)

	silver, err := plan.NewPlan("Silver Quarterly", "", 99900, plan.IntervalQuarterly, "", t0)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, silver))

	byTitle, err := repo.GetByTitle(ctx, "  GOLD monthly ")
	require.NoError(t, err)
	assert.Equal(t, gold.ID(), byTitle.ID())
	assert.Equal(t, "**all** mock tests", byTitle.Description())

	byGateway, err := repo.GetByGatewayPlanID(ctx, "plan_gold")
	require.NoError(t, err)
	assert.Equal(t, int64(49900), byGateway.PriceMinor())

	require.NoError(t, silver.Update("Silver Quarterly", "", 89900, plan.IntervalQuarterly, "", false, t0.Add(time.Hour)))
	require.NoError(t, repo.Update(ctx, silver))

	require.NoError(t, silver.Update("Gold Monthly", "", 89900, plan.IntervalQuarterly, "", false, t0.Add(time.Hour)))
	assert.ErrorIs(t, repo.Update(ctx, silver), plan.ErrDuplicateTitle)

	active, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, gold.ID(), active[0].ID())

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, int64(89900), all[1].PriceMinor())
	assert.False(t, all[1].IsActive())

	_, err = repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, plan.ErrPlanNotFound)
	_, err = repo.GetByGatewayPlanID(ctx, "")
	assert.ErrorIs(t, err, plan.ErrPlanNotFound)
}

func completedEntry(t *testing.T, paymentID string, userID uint) *payment.LedgerEntry {
	t.Helper()
	e, err := payment.NewCompleted(payment.EntryParams{
		UserID:           userID,
		PlanID:           ptr(uint(1)),
		AmountMinor:      49900,
		Currency:         "INR",
		Method:           paymentvo.MethodUPI,
		Gateway:          paymentvo.PaymentGatewayRazorpay,
		GatewayPaymentID: paymentID,
		PurchasedAt:      t0,
		Notes:            map[string]any{"plan_id": "1"},
	}, t0.Add(30*24*time.Hour), t0)
	require.NoError(t, err)
	return e
}

func failedEntry(t *testing.T, paymentID string, userID uint) *payment.LedgerEntry {
	t.Helper()
	e, err := payment.NewFailed(payment.EntryParams{
		UserID:           userID,
		AmountMinor:      49900,
		Currency:         "INR",
		Method:           paymentvo.MethodCard,
		Gateway:          paymentvo.PaymentGatewayRazorpay,
		GatewayPaymentID: paymentID,
		PurchasedAt:      t0,
	}, "BAD_REQUEST_ERROR", "card declined", t0)
	require.NoError(t, err)
	return e
}

func TestLedgerRepository_RecordingIsIdempotent(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewLedgerRepository(gdb)
	ctx := context.Background()

	first := completedEntry(t, "pay_1", 1)
	inserted, err := repo.RecordCompleted(ctx, first)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NotZero(t, first.ID())

	inserted, err = repo.RecordCompleted(ctx, completedEntry(t, "pay_1", 1))
	require.NoError(t, err)
	assert.False(t, inserted)

	inserted, err = repo.RecordFailed(ctx, failedEntry(t, "pay_1", 1))
	require.NoError(t, err)
	assert.False(t, inserted)

	stored, err := repo.GetByGatewayPaymentID(ctx, "pay_1")
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted())
	assert.Equal(t, "inr", stored.Currency())
	assert.Equal(t, paymentvo.MethodUPI, stored.Method())
	assert.Equal(t, "1", stored.Notes()["plan_id"])
	require.NotNil(t, stored.ExpireAt())
}

func TestLedgerRepository_PromotesFailedEntry(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewLedgerRepository(gdb)
	ctx := context.Background()

	failed := failedEntry(t, "pay_2", 1)
	inserted, err := repo.RecordFailed(ctx, failed)
	require.NoError(t, err)
	require.True(t, inserted)

	promoted := completedEntry(t, "pay_2", 1)
	inserted, err = repo.RecordCompleted(ctx, promoted)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.Equal(t, failed.ID(), promoted.ID())

	stored, err := repo.GetByGatewayPaymentID(ctx, "pay_2")
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted())
	assert.Empty(t, stored.FailureReason())

	var count int64
	require.NoError(t, gdb.Model(&models.PaymentModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLedgerRepository_List(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewLedgerRepository(gdb)
	ctx := context.Background()

	for i, id := range []string{"pay_a", "pay_b", "pay_c"} {
		_, err := repo.RecordCompleted(ctx, completedEntry(t, id, 1))
		require.NoError(t, err, i)
	}
	_, err := repo.RecordCompleted(ctx, completedEntry(t, "pay_other", 2))
	require.NoError(t, err)

	page, total, err := repo.List(ctx, payment.ListFilter{UserID: 1, Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, "pay_c", page[0].GatewayPaymentID())
	assert.Equal(t, "pay_b", page[1].GatewayPaymentID())

	all, total, err := repo.List(ctx, payment.ListFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, all, 4)
}

func TestWebhookInboxRepository(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewWebhookInboxRepository(gdb)
	ctx := context.Background()

	event, err := payment.NewWebhookEvent("evt_1", "payment.captured", "sha256:ab", t0)
	require.NoError(t, err)

	stored, err := repo.Receive(ctx, event)
	require.NoError(t, err)
	assert.False(t, stored.IsProcessed())

	require.NoError(t, repo.MarkProcessed(ctx, "evt_1", "activated", t0.Add(time.Second)))

	again, err := repo.Receive(ctx, event)
	require.NoError(t, err)
	assert.True(t, again.IsProcessed())
	assert.Equal(t, "activated", again.Outcome)
	assert.Equal(t, "payment.captured", again.EventType)

	assert.Error(t, repo.MarkProcessed(ctx, "evt_missing", "ignored", t0))

	_, err = repo.Get(ctx, "evt_missing")
	assert.Error(t, err)
}
