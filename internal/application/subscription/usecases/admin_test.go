package usecases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paymentvo "github.com/examforge/examforge/internal/domain/payment/valueobjects"
	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
	apperrors "github.com/examforge/examforge/internal/shared/errors"
	"github.com/examforge/examforge/internal/shared/logger"
)

func (h *harness) changeUserPlan() *ChangeUserPlanUseCase {
	return NewChangeUserPlanUseCase(h.subs, h.plans, h.ledger, h.gateway, h.mutator, h.status, h.settings, h.clock, logger.NewDiscard())
}

func TestChangeUserPlan(t *testing.T) {
	h := newHarness(t)
	h.addActive(t, 1, "sub_1", t0.AddDate(0, 0, 3))

	out, err := h.changeUserPlan().Execute(context.Background(), ChangeUserPlanCommand{
		AdminID: 7, UserID: 1, PlanID: h.gold.ID(), ManualAmountMinor: 49900, Note: "paid in cash",
	})
	require.NoError(t, err)

	assert.Equal(t, "active", out.State)
	s := h.stored(1)
	assert.Equal(t, vo.GatewayAdmin, s.Gateway())
	assert.Equal(t, t0.AddDate(0, 0, 30), *s.Expire())
	assert.False(t, s.AutoPay())
	assert.True(t, s.Correlation().IsZero())
	assert.Equal(t, []string{"sub_1"}, h.gateway.Cancelled)

	entries := h.ledger.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, paymentvo.MethodManual, entries[0].Method())
	assert.Equal(t, paymentvo.PaymentGatewayAdmin, entries[0].Gateway())
	assert.True(t, strings.HasPrefix(entries[0].GatewayPaymentID(), "MANUAL_"))
	assert.Equal(t, int64(49900), entries[0].AmountMinor())
}

func TestChangeUserPlan_WithoutPayment(t *testing.T) {
	h := newHarness(t)
	h.addUser(1)

	_, err := h.changeUserPlan().Execute(context.Background(), ChangeUserPlanCommand{AdminID: 7, UserID: 1, PlanID: h.gold.ID()})
	require.NoError(t, err)
	assert.Empty(t, h.ledger.Entries())
	assert.Equal(t, vo.StateActive, h.stored(1).State())

	_, err = h.changeUserPlan().Execute(context.Background(), ChangeUserPlanCommand{AdminID: 7, UserID: 1, PlanID: 404})
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestAddFreeAccess(t *testing.T) {
	h := newHarness(t)
	h.addUser(1)
	uc := NewAddFreeAccessUseCase(h.plans, h.mutator, h.status, h.clock, logger.NewDiscard())

	out, err := uc.Execute(context.Background(), AddFreeAccessCommand{AdminID: 7, UserID: 1, Days: 14, PlanID: h.gold.ID()})
	require.NoError(t, err)

	assert.True(t, out.Free)
	s := h.stored(1)
	assert.True(t, s.IsFree())
	assert.Equal(t, t0.AddDate(0, 0, 14), *s.Expire())
	assert.Equal(t, h.gold.ID(), *s.PlanID())

	_, err = uc.Execute(context.Background(), AddFreeAccessCommand{UserID: 1, Days: 0})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestExtendUserPlan(t *testing.T) {
	h := newHarness(t)
	h.addActive(t, 1, "", t0.Add(-48*time.Hour))
	s := h.stored(1)
	require.True(t, s.ExpireIfDue(t0))
	h.subs.Add(s)
	h.addUser(2)
	uc := NewExtendUserPlanUseCase(h.mutator, h.status, h.clock, logger.NewDiscard())

	out, err := uc.Execute(context.Background(), ExtendUserPlanCommand{AdminID: 7, UserID: 1, Days: 5})
	require.NoError(t, err)
	assert.Equal(t, "active", out.State)
	assert.Equal(t, t0.Add(-48*time.Hour).AddDate(0, 0, 5), *h.stored(1).Expire())

	_, err = uc.Execute(context.Background(), ExtendUserPlanCommand{AdminID: 7, UserID: 2, Days: 5})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = uc.Execute(context.Background(), ExtendUserPlanCommand{AdminID: 7, UserID: 1, Days: -1})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestSuspendUserPlan(t *testing.T) {
	h := newHarness(t)
	h.addActive(t, 1, "sub_1", t0.AddDate(0, 0, 20))
	uc := NewSuspendUserPlanUseCase(h.subs, h.gateway, h.mutator, h.status, h.clock, logger.NewDiscard())

	out, err := uc.Execute(context.Background(), SuspendUserPlanCommand{AdminID: 7, UserID: 1, Reason: "chargeback"})
	require.NoError(t, err)

	assert.Equal(t, "suspended", out.State)
	s := h.stored(1)
	assert.True(t, s.IsFree())
	assert.False(t, s.HasAccess(t0))
	assert.Equal(t, []string{"sub_1"}, h.gateway.Cancelled)
}

func TestListExpiringUsers(t *testing.T) {
	h := newHarness(t)
	// t0 is 13:30 in the business timezone.
	h.addActive(t, 1, "", t0.Add(2*time.Hour))
	h.addActive(t, 2, "", t0.Add(12*time.Hour))
	h.addActive(t, 3, "sub_3", t0.AddDate(0, 0, 3))
	h.addActive(t, 4, "", t0.AddDate(0, 0, 30))
	uc := NewListExpiringUsersUseCase(h.subs, h.plans, h.clock, logger.NewDiscard())

	days, err := uc.Execute(context.Background(), ListExpiringUsersQuery{})
	require.NoError(t, err)

	require.Len(t, days, 3)
	assert.Equal(t, "2026-05-04", days[0].Date)
	assert.Equal(t, 1, days[0].Count)
	assert.Equal(t, "2026-05-05", days[1].Date)
	assert.Equal(t, uint(2), days[1].Users[0].UserID)
	assert.Equal(t, "2026-05-07", days[2].Date)
	assert.Equal(t, "Gold Monthly", days[2].Users[0].PlanTitle)
	assert.True(t, days[2].Users[0].AutoPay)

	days, err = uc.Execute(context.Background(), ListExpiringUsersQuery{From: "2026-05-05", To: "2026-05-05"})
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, uint(2), days[0].Users[0].UserID)

	_, err = uc.Execute(context.Background(), ListExpiringUsersQuery{From: "2026-05-09", To: "2026-05-01"})
	assert.True(t, apperrors.IsValidationError(err))
	_, err = uc.Execute(context.Background(), ListExpiringUsersQuery{From: "05/09/2026"})
	assert.True(t, apperrors.IsValidationError(err))
}
