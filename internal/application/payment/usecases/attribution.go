package usecases

import (
	"context"
	"errors"

	"github.com/examforge/examforge/internal/application/payment/paymentgateway"
	"github.com/examforge/examforge/internal/domain/subscription"
	vo "github.com/examforge/examforge/internal/domain/subscription/valueobjects"
)

// ErrUnattributed means no user could be linked to a gateway payment.
var ErrUnattributed = errors.New("payment could not be attributed to a user")

// attribution names how a payment was linked to its user.
type attribution string

const (
	byCorrelation attribution = "correlation"
	byNotes       attribution = "notes"
	byEmail       attribution = "email"
)

// findPayer locates the subscription a payment belongs to. The live
// correlation is authoritative; the user_id note and the payer email are
// fallbacks for orders whose correlation was already cleared or replaced.
func findPayer(
	ctx context.Context,
	repo subscription.Repository,
	correlation vo.Correlation,
	notes paymentgateway.Notes,
	email string,
) (*subscription.Subscription, attribution, error) {
	if !correlation.IsZero() {
		s, err := repo.FindByCorrelation(ctx, correlation)
		if err == nil {
			return s, byCorrelation, nil
		}
		if !errors.Is(err, subscription.ErrNotFound) {
			return nil, "", err
		}
	}

	if userID := notes.UserID(); userID != 0 {
		s, err := repo.Get(ctx, userID)
		if err == nil {
			return s, byNotes, nil
		}
		if !errors.Is(err, subscription.ErrNotFound) {
			return nil, "", err
		}
	}

	if email != "" {
		s, err := repo.FindByEmail(ctx, email)
		if err == nil {
			return s, byEmail, nil
		}
		if !errors.Is(err, subscription.ErrNotFound) {
			return nil, "", err
		}
	}

	return nil, "", ErrUnattributed
}
