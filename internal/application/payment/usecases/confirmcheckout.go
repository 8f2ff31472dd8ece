package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/application/payment/planresolver"
	"github.com/examforge/examforge/internal/application/subscription/dto"
	subscriptionUsecases "github.com/examforge/examforge/internal/application/subscription/usecases"
	"github.com/examforge/examforge/internal/domain/payment"
	"github.com/examforge/examforge/internal/domain/subscription"
	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
	apperrors "github.com/examforge/examforge/internal/shared/errors"
	"github.com/examforge/examforge/internal/shared/logger"
)

type ConfirmCheckoutCommand struct {
	UserID         uint
	PaymentID      string
	OrderID        string
	SubscriptionID string
	Signature      string
}

// ConfirmCheckoutUseCase activates a subscription from the browser's checkout
// callback instead of waiting for the webhook. Both paths share the capture
// use case, so whichever arrives second is a no-op.
type ConfirmCheckoutUseCase struct {
	verifier paymentgateway.CheckoutVerifier
	gateway  paymentgateway.Gateway
	subs     subscription.Repository
	ledger   payment.LedgerRepository
	capture  *CapturePaymentUseCase
	status   *subscriptionUsecases.GetSubscriptionStatusUseCase
	logger   logger.Interface
}

func NewConfirmCheckoutUseCase(
	verifier paymentgateway.CheckoutVerifier,
	gateway paymentgateway.Gateway,
	subs subscription.Repository,
	ledger payment.LedgerRepository,
	capture *CapturePaymentUseCase,
	status *subscriptionUsecases.GetSubscriptionStatusUseCase,
	logger logger.Interface,
) *ConfirmCheckoutUseCase {
	return &ConfirmCheckoutUseCase{
		verifier: verifier,
		gateway:  gateway,
		subs:     subs,
		ledger:   ledger,
		capture:  capture,
		status:   status,
		logger:   logger,
	}
}

func (uc *ConfirmCheckoutUseCase) Execute(ctx context.Context, cmd ConfirmCheckoutCommand) (*dto.SubscriptionStatusDTO, error) {
	if (cmd.OrderID == "") == (cmd.SubscriptionID == "") {
		return nil, apperrors.NewValidationError("exactly one of razorpay_order_id and razorpay_subscription_id is required")
	}

	if err := uc.verifier.VerifyCheckoutSignature(paymentgateway.CheckoutSignature{
		PaymentID:      cmd.PaymentID,
		OrderID:        cmd.OrderID,
		SubscriptionID: cmd.SubscriptionID,
		Signature:      cmd.Signature,
	}); err != nil {
		uc.logger.Warnw("checkout signature mismatch", "user_id", cmd.UserID, "payment_id", cmd.PaymentID)
		return nil, apperrors.NewSignatureError("invalid checkout signature")
	}

	if done, err := uc.alreadyApplied(ctx, cmd); err != nil || done {
		if err != nil {
			return nil, err
		}
		return uc.currentStatus(ctx, cmd.UserID)
	}

	s, err := uc.subs.Get(ctx, cmd.UserID)
	if err != nil {
		if errors.Is(err, subscription.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("subscription not found")
		}
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	expected := vo.OneTime(cmd.OrderID)
	if cmd.SubscriptionID != "" {
		expected = vo.Recurring(cmd.SubscriptionID)
	}
	if s.Correlation() != expected {
		uc.logger.Warnw("checkout does not match the pending subscription",
			"user_id", cmd.UserID,
			"correlation", s.Correlation().String(),
			"checkout", expected.String(),
		)
		return nil, apperrors.NewConflictError("checkout does not match your pending subscription")
	}

	p, err := uc.gateway.FetchPayment(ctx, cmd.PaymentID)
	if err != nil {
		return nil, apperrors.NewGatewayError("failed to fetch payment from payment gateway", err.Error())
	}
	if !p.IsSettled() {
		return nil, apperrors.NewValidationError("payment is not completed", "status: "+p.Status)
	}

	captureCmd := CapturePaymentCommand{Payment: p, ExpectedUserID: cmd.UserID}
	if cmd.OrderID != "" {
		if p.OrderID != "" && p.OrderID != cmd.OrderID {
			return nil, apperrors.NewValidationError("payment belongs to a different order")
		}
		p.OrderID = cmd.OrderID
	} else {
		gsub, err := uc.gateway.FetchSubscription(ctx, cmd.SubscriptionID)
		if err != nil {
			return nil, apperrors.NewGatewayError("failed to fetch subscription from payment gateway", err.Error())
		}
		if gsub.Status != paymentgateway.SubscriptionStatusActive && gsub.Status != paymentgateway.SubscriptionStatusAuthenticated {
			return nil, apperrors.NewValidationError("subscription is not active at the payment gateway", "status: "+gsub.Status)
		}
		p.SubscriptionID = cmd.SubscriptionID
		captureCmd.Subscription = gsub
	}

	if _, err := uc.capture.Execute(ctx, captureCmd); err != nil {
		switch {
		case apperrors.IsAppError(err):
			return nil, err
		case planresolver.IsAmbiguity(err):
			return nil, apperrors.NewConflictError("payment could not be matched to a plan, support has been notified")
		case errors.Is(err, ErrUnattributed):
			return nil, apperrors.NewConflictError("payment could not be matched to your account")
		default:
			return nil, fmt.Errorf("failed to activate subscription: %w", err)
		}
	}

	return uc.currentStatus(ctx, cmd.UserID)
}

// alreadyApplied reports whether the webhook already booked this payment for
// the same user.
func (uc *ConfirmCheckoutUseCase) alreadyApplied(ctx context.Context, cmd ConfirmCheckoutCommand) (bool, error) {
	entry, err := uc.ledger.GetByGatewayPaymentID(ctx, cmd.PaymentID)
	if err != nil {
		if errors.Is(err, payment.ErrPaymentNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up payment: %w", err)
	}
	if entry.UserID() != cmd.UserID {
		return false, apperrors.NewForbiddenError("payment does not belong to the current user")
	}
	return entry.IsCompleted(), nil
}

func (uc *ConfirmCheckoutUseCase) currentStatus(ctx context.Context, userID uint) (*dto.SubscriptionStatusDTO, error) {
	return uc.status.Execute(ctx, userID)
}
