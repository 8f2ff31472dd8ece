package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/application/payment/planresolver"
	"github.com/examforge/examforge/internal/domain/payment"
	"github.com/examforge/examforge/internal/shared/biztime"
	apperrors "github.com/examforge/examforge/internal/shared/errors"
	"github.com/examforge/examforge/internal/shared/logger"
)

// Outcomes stored with processed webhook events.
const (
	OutcomeApplied      = "applied"
	OutcomeDuplicate    = "duplicate"
	OutcomeIgnored      = "ignored"
	OutcomeUnattributed = "unattributed"
	OutcomeAmbiguous    = "ambiguous"
)

type HandleWebhookCommand struct {
	Body      []byte
	Signature string
	// EventID is the gateway's delivery id; the body digest stands in when
	// it is missing.
	EventID string
}

// HandleWebhookUseCase authenticates a webhook delivery and dispatches it.
// Only authentication and decoding failures are returned; every other problem
// is logged so the gateway sees the delivery as accepted.
type HandleWebhookUseCase struct {
	verifier      paymentgateway.WebhookVerifier
	inbox         payment.WebhookInbox
	capture       *CapturePaymentUseCase
	recordFailed  *RecordFailedPaymentUseCase
	subscriptions *HandleSubscriptionEventUseCase
	clock         biztime.Clock
	logger        logger.Interface
}

func NewHandleWebhookUseCase(
	verifier paymentgateway.WebhookVerifier,
	inbox payment.WebhookInbox,
	capture *CapturePaymentUseCase,
	recordFailed *RecordFailedPaymentUseCase,
	subscriptions *HandleSubscriptionEventUseCase,
	clock biztime.Clock,
	logger logger.Interface,
) *HandleWebhookUseCase {
	return &HandleWebhookUseCase{
		verifier:      verifier,
		inbox:         inbox,
		capture:       capture,
		recordFailed:  recordFailed,
		subscriptions: subscriptions,
		clock:         clock,
		logger:        logger,
	}
}

func (uc *HandleWebhookUseCase) Execute(ctx context.Context, cmd HandleWebhookCommand) error {
	if err := uc.verifier.VerifyWebhookSignature(cmd.Body, cmd.Signature); err != nil {
		uc.logger.Warnw("rejected webhook with invalid signature", "event_id", cmd.EventID, "error", err)
		return apperrors.NewSignatureError("invalid webhook signature")
	}

	event, err := uc.verifier.ParseWebhookEvent(cmd.Body)
	if err != nil {
		uc.logger.Warnw("rejected malformed webhook", "event_id", cmd.EventID, "error", err)
		return apperrors.NewValidationError("malformed webhook payload", err.Error())
	}

	sum := sha256.Sum256(cmd.Body)
	digest := hex.EncodeToString(sum[:])
	eventID := cmd.EventID
	if eventID == "" {
		eventID = "sha256:" + digest
	}

	log := uc.logger.With("event_id", eventID, "event", event.Type)

	if uc.alreadyProcessed(ctx, log, eventID, event.Type, digest) {
		log.Infow("webhook already processed, skipping")
		return nil
	}

	outcome, err := uc.dispatch(ctx, event)
	switch {
	case err == nil:
	case errors.Is(err, ErrUnattributed):
		outcome = OutcomeUnattributed
	case planresolver.IsAmbiguity(err):
		outcome = OutcomeAmbiguous
	default:
		// Left unprocessed so a manual redelivery can retry it.
		log.Errorw("webhook processing failed", "error", err)
		return nil
	}

	if err := uc.inbox.MarkProcessed(ctx, eventID, outcome, uc.clock.Now()); err != nil {
		log.Warnw("failed to mark webhook processed", "error", err)
	}
	log.Infow("webhook processed", "outcome", outcome)
	return nil
}

func (uc *HandleWebhookUseCase) alreadyProcessed(ctx context.Context, log logger.Interface, eventID, eventType, digest string) bool {
	event, err := payment.NewWebhookEvent(eventID, eventType, digest, uc.clock.Now())
	if err != nil {
		return false
	}
	stored, err := uc.inbox.Receive(ctx, event)
	if err != nil {
		log.Warnw("failed to store webhook in inbox", "error", err)
		return false
	}
	return stored.IsProcessed()
}

func (uc *HandleWebhookUseCase) dispatch(ctx context.Context, event *paymentgateway.Event) (string, error) {
	switch event.Type {
	case paymentgateway.EventPaymentCaptured, paymentgateway.EventOrderPaid:
		if event.Payment == nil {
			uc.logger.Warnw("capture event without payment entity", "event", event.Type)
			return OutcomeIgnored, nil
		}
		result, err := uc.capture.Execute(ctx, CapturePaymentCommand{
			Payment:      event.Payment,
			Order:        event.Order,
			Subscription: event.Subscription,
		})
		if err != nil {
			return "", err
		}
		if result.Outcome == CaptureDuplicate {
			return OutcomeDuplicate, nil
		}
		return OutcomeApplied, nil

	case paymentgateway.EventPaymentFailed:
		if event.Payment == nil {
			return OutcomeIgnored, nil
		}
		return OutcomeApplied, uc.recordFailed.Execute(ctx, event.Payment)

	case paymentgateway.EventSubscriptionActivated,
		paymentgateway.EventSubscriptionUpdated,
		paymentgateway.EventSubscriptionCharged,
		paymentgateway.EventSubscriptionCancelled,
		paymentgateway.EventSubscriptionPaused,
		paymentgateway.EventSubscriptionResumed:
		return OutcomeApplied, uc.subscriptions.Execute(ctx, event.Type, event.Subscription)

	default:
		uc.logger.Infow("ignoring unsupported webhook event", "event", event.Type)
		return OutcomeIgnored, nil
	}
}
