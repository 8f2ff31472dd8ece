package usecases

import (
	"context"
	"fmt"

	"github.com/examforge/examforge/internal/application/subscription/dto"
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/domain/subscription"
	"github.com/examforge/examforge/internal/shared/biztime"
	apperrors "github.com/examforge/examforge/internal/shared/errors"
	"github.com/examforge/examforge/internal/shared/logger"
)

// defaultExpiringWindowDays is used when no end date is given.
const defaultExpiringWindowDays = 7

type ListExpiringUsersQuery struct {
	// From and To are inclusive business-timezone dates (YYYY-MM-DD).
	From string
	To   string
}

type ListExpiringUsersUseCase struct {
	subs   subscription.Repository
	plans  plan.Repository
	clock  biztime.Clock
	logger logger.Interface
}

func NewListExpiringUsersUseCase(
	subs subscription.Repository,
	plans plan.Repository,
	clock biztime.Clock,
	logger logger.Interface,
) *ListExpiringUsersUseCase {
	return &ListExpiringUsersUseCase{subs: subs, plans: plans, clock: clock, logger: logger}
}

func (uc *ListExpiringUsersUseCase) Execute(ctx context.Context, query ListExpiringUsersQuery) ([]*dto.ExpiringDayDTO, error) {
	from := biztime.StartOfDayUTC(uc.clock.Now())
	if query.From != "" {
		parsed, err := biztime.ParseDateInBizTimezone(query.From)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid from date", err.Error())
		}
		from = parsed
	}

	to := from.AddDate(0, 0, defaultExpiringWindowDays)
	if query.To != "" {
		parsed, err := biztime.ParseDateInBizTimezone(query.To)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid to date", err.Error())
		}
		to = parsed.AddDate(0, 0, 1)
	}
	if !to.After(from) {
		return nil, apperrors.NewValidationError("to date must not be before from date")
	}

	subs, err := uc.subs.FindExpiringBetween(ctx, from, to)
	if err != nil {
		uc.logger.Errorw("failed to list expiring subscriptions", "from", from, "to", to, "error", err)
		return nil, fmt.Errorf("failed to list expiring subscriptions: %w", err)
	}

	titles := make(map[uint]string)
	days := make([]*dto.ExpiringDayDTO, 0)
	index := make(map[string]*dto.ExpiringDayDTO)

	for _, s := range subs {
		if s.Expire() == nil {
			continue
		}
		date := biztime.FormatDate(*s.Expire())
		day, ok := index[date]
		if !ok {
			day = &dto.ExpiringDayDTO{Date: date, Users: []*dto.ExpiringUserDTO{}}
			index[date] = day
			days = append(days, day)
		}
		day.Users = append(day.Users, dto.ToExpiringUserDTO(s, uc.planTitle(ctx, s.PlanID(), titles)))
		day.Count++
	}

	return days, nil
}

func (uc *ListExpiringUsersUseCase) planTitle(ctx context.Context, planID *uint, cache map[uint]string) string {
	if planID == nil {
		return ""
	}
	if title, ok := cache[*planID]; ok {
		return title
	}
	title := ""
	if p, err := uc.plans.GetByID(ctx, *planID); err == nil {
		title = p.Title()
	}
	cache[*planID] = title
	return title
}
