package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/examforge/examforge/internal/application/plan/dto"
	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/shared/biztime"
	apperrors "github.com/examforge/examforge/internal/shared/errors"
	"github.com/examforge/examforge/internal/shared/logger"
	"github.com/examforge/examforge/internal/shared/services/markdown"
)

// CatalogEntry is one plan in a seed file.
type CatalogEntry struct {
	Title         string
	Description   string
	PriceMinor    int64
	Interval      string
	GatewayPlanID string
	Active        bool
}

// ImportPlansUseCase upserts catalog entries by title. The whole import is
// validated before anything is written.
type ImportPlansUseCase struct {
	plans    plan.Repository
	tx       TransactionRunner
	renderer markdown.Renderer
	clock    biztime.Clock
	logger   logger.Interface
}

// TransactionRunner runs fn inside one database transaction.
type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewImportPlansUseCase(
	plans plan.Repository,
	tx TransactionRunner,
	renderer markdown.Renderer,
	clock biztime.Clock,
	logger logger.Interface,
) *ImportPlansUseCase {
	return &ImportPlansUseCase{plans: plans, tx: tx, renderer: renderer, clock: clock, logger: logger}
}

type importItem struct {
	title    string
	entry    CatalogEntry
	interval plan.Interval
}

func (uc *ImportPlansUseCase) Execute(ctx context.Context, entries []CatalogEntry) (*dto.ImportResult, error) {
	items := make([]importItem, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for i, e := range entries {
		title := uc.renderer.PlainText(e.Title)
		interval, err := plan.ParseInterval(e.Interval)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid catalog entry", entryDetail(i, title, err))
		}
		if _, err := plan.NewPlan(title, e.Description, e.PriceMinor, interval, e.GatewayPlanID, uc.clock.Now()); err != nil {
			return nil, apperrors.NewValidationError("invalid catalog entry", entryDetail(i, title, err))
		}
		if seen[title] {
			return nil, apperrors.NewValidationError("duplicate title in catalog", title)
		}
		seen[title] = true
		items = append(items, importItem{title: title, entry: e, interval: interval})
	}

	result := &dto.ImportResult{Titles: make([]string, 0, len(items))}
	err := uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		*result = dto.ImportResult{Titles: make([]string, 0, len(items))}
		now := uc.clock.Now()
		for _, item := range items {
			e := item.entry
			existing, err := findByTitle(ctx, uc.plans, item.title)
			if err != nil {
				return err
			}

			if existing == nil {
				p, err := plan.NewPlan(item.title, e.Description, e.PriceMinor, item.interval, e.GatewayPlanID, now)
				if err != nil {
					return err
				}
				if !e.Active {
					if err := p.Update(p.Title(), p.Description(), p.PriceMinor(), p.Interval(), p.GatewayPlanID(), false, now); err != nil {
						return err
					}
				}
				if err := uc.plans.Create(ctx, p); err != nil {
					return err
				}
				result.Created++
				result.Titles = append(result.Titles, item.title)
				continue
			}

			if sameAsEntry(existing, item, e) {
				result.Unchanged++
				continue
			}
			if err := existing.Update(item.title, e.Description, e.PriceMinor, item.interval, e.GatewayPlanID, e.Active, now); err != nil {
				return err
			}
			if err := uc.plans.Update(ctx, existing); err != nil {
				return err
			}
			result.Updated++
			result.Titles = append(result.Titles, item.title)
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("plan import failed", "error", err)
		return nil, mapPlanError(err)
	}

	uc.logger.Infow("plan catalog imported", "created", result.Created, "updated", result.Updated, "unchanged", result.Unchanged)
	return result, nil
}

func sameAsEntry(p *plan.Plan, item importItem, e CatalogEntry) bool {
	return p.Description() == e.Description &&
		p.PriceMinor() == e.PriceMinor &&
		p.Interval() == item.interval &&
		p.GatewayPlanID() == strings.TrimSpace(e.GatewayPlanID) &&
		p.IsActive() == e.Active
}

func entryDetail(index int, title string, err error) string {
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("entry %d %s: %v", index+1, title, err)
}
