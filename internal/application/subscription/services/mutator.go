// Package services holds helpers shared by the subscription and payment use
// cases.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/examforge/examforge/internal/domain/subscription"
	"github.com/examforge/examforge/internal/shared/logger"
)

// TransactionRunner runs fn inside one database transaction.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// maxAttempts bounds optimistic-lock retries for a single mutation.
const maxAttempts = 3

// Mutator applies read-modify-write changes to a subscription under the
// version check, retrying when a concurrent writer wins.
type Mutator struct {
	repo   subscription.Repository
	tx     TransactionRunner
	logger logger.Interface
}

func NewMutator(repo subscription.Repository, tx TransactionRunner, logger logger.Interface) *Mutator {
	return &Mutator{repo: repo, tx: tx, logger: logger}
}

// Retry runs fn in a fresh transaction until it stops failing with
// ErrVersionConflict or the attempts run out.
func (m *Mutator) Retry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = m.tx.RunInTransaction(ctx, fn)
		if !errors.Is(err, subscription.ErrVersionConflict) {
			return err
		}
		m.logger.Debugw("subscription version conflict, retrying", "attempt", attempt)
	}
	m.logger.Warnw("giving up after repeated version conflicts", "attempts", maxAttempts)
	return err
}

// Mutate loads the subscription of userID, calls apply and saves the result
// when apply reports a change. apply may run more than once.
func (m *Mutator) Mutate(
	ctx context.Context,
	userID uint,
	apply func(s *subscription.Subscription) (bool, error),
) (*subscription.Subscription, bool, error) {
	var (
		result  *subscription.Subscription
		changed bool
	)

	err := m.Retry(ctx, func(ctx context.Context) error {
		s, err := m.repo.Get(ctx, userID)
		if err != nil {
			return err
		}
		changed, err = apply(s)
		if err != nil {
			return err
		}
		result = s
		if !changed {
			return nil
		}
		if err := m.repo.Save(ctx, s); err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, changed, nil
}
