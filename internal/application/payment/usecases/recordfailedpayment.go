package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/application/payment/planresolver"
	"github.com/examforge/examforge/internal/domain/payment"
	paymentvo "github.com/examforge/examforge/internal/domain/payment/valueobjects"
	"github.com/examforge/examforge/internal/domain/subscription"
	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
	"github.com/examforge/examforge/internal/shared/biztime"
	apperrors "github.com/examforge/examforge/internal/shared/errors"
	"github.com/examforge/examforge/internal/shared/logger"
)

// RecordFailedPaymentUseCase books a failed attempt. It never touches the
// subscription, so a late or replayed failure cannot revoke access.
type RecordFailedPaymentUseCase struct {
	subs     subscription.Repository
	ledger   payment.LedgerRepository
	resolver *planresolver.Resolver
	clock    biztime.Clock
	logger   logger.Interface
}

func NewRecordFailedPaymentUseCase(
	subs subscription.Repository,
	ledger payment.LedgerRepository,
	resolver *planresolver.Resolver,
	clock biztime.Clock,
	logger logger.Interface,
) *RecordFailedPaymentUseCase {
	return &RecordFailedPaymentUseCase{
		subs:     subs,
		ledger:   ledger,
		resolver: resolver,
		clock:    clock,
		logger:   logger,
	}
}

func (uc *RecordFailedPaymentUseCase) Execute(ctx context.Context, p *paymentgateway.Payment) error {
	if p == nil || p.ID == "" {
		return apperrors.NewValidationError("payment id is required")
	}

	var correlation vo.Correlation
	switch {
	case p.SubscriptionID != "":
		correlation = vo.Recurring(p.SubscriptionID)
	case p.OrderID != "":
		correlation = vo.OneTime(p.OrderID)
	}

	s, via, err := findPayer(ctx, uc.subs, correlation, p.Notes, p.Email)
	if err != nil {
		if errors.Is(err, ErrUnattributed) {
			uc.logger.Warnw("failed payment has no matching user", "payment_id", p.ID, "email", p.Email)
		}
		return err
	}

	in := planresolver.Input{
		NotesPlanID: p.Notes.PlanID(),
		AmountMinor: p.AmountMinor,
		Description: describe(p, p.Notes),
	}
	if via == byCorrelation {
		in.StoredPlanID = s.PendingPlanID()
	}

	var planID *uint
	if resolved, err := uc.resolver.Resolve(ctx, in); err == nil {
		id := resolved.Plan.ID()
		planID = &id
	} else {
		uc.logger.Debugw("failed payment not linked to a plan", "payment_id", p.ID, "error", err)
	}

	now := uc.clock.Now()
	purchasedAt := p.CreatedAt
	if purchasedAt.IsZero() {
		purchasedAt = now
	}

	entry, err := payment.NewFailed(payment.EntryParams{
		UserID:           s.UserID(),
		PlanID:           planID,
		AmountMinor:      p.AmountMinor,
		Currency:         p.Currency,
		Method:           paymentvo.ParseMethod(p.Method),
		Gateway:          paymentvo.PaymentGatewayRazorpay,
		GatewayPaymentID: p.ID,
		InvoiceID:        p.InvoiceID,
		PurchasedAt:      purchasedAt,
		Notes:            p.Notes.ToMap(),
	}, p.ErrorCode, p.ErrorDescription, now)
	if err != nil {
		return apperrors.NewValidationError("invalid failed payment", err.Error())
	}

	created, err := uc.ledger.RecordFailed(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to record failed payment: %w", err)
	}
	if !created {
		uc.logger.Infow("payment already recorded, ignoring failure", "payment_id", p.ID)
		return nil
	}

	uc.logger.Infow("failed payment recorded",
		"payment_id", p.ID,
		"user_id", s.UserID(),
		"error_code", p.ErrorCode,
		"error_description", p.ErrorDescription,
	)
	return nil
}
