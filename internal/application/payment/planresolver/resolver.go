// Package planresolver attributes a gateway payment to a catalog plan.
//
// Correlation data wins: the plan stored on the subscription at checkout, the
// plan_id note and the gateway plan id all identify the plan directly. The
// captured amount and the payment description are fallbacks. When they do not
// single out one plan the resolver reports an *AmbiguityError instead of
// guessing.
package planresolver

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/examforge/examforge/internal/domain/plan"
	"github.com/examforge/examforge/internal/shared/logger"
)

// Source names the evidence that identified the plan.
type Source string

const (
	SourceStored      Source = "stored"
	SourceNotes       Source = "notes"
	SourceGatewayPlan Source = "gateway_plan"
	SourceAmount      Source = "amount"
	SourceDescription Source = "description"
)

// Input is everything known about a payment. Zero fields are skipped.
type Input struct {
	StoredPlanID  *uint
	NotesPlanID   uint
	GatewayPlanID string
	AmountMinor   int64
	Description   string
	// PreferGatewayPlan moves the gateway plan id ahead of the stored plan,
	// which is the order used for recurring charges.
	PreferGatewayPlan bool
}

type Resolution struct {
	Plan   *plan.Plan
	Source Source
}

// AmbiguityError means the payment could not be attributed to exactly one plan.
type AmbiguityError struct {
	Reason     string
	Candidates []uint
}

func (e *AmbiguityError) Error() string {
	if len(e.Candidates) == 0 {
		return "plan resolution failed: " + e.Reason
	}
	return fmt.Sprintf("plan resolution failed: %s (candidates %v)", e.Reason, e.Candidates)
}

// IsAmbiguity reports whether err is an *AmbiguityError.
func IsAmbiguity(err error) bool {
	var amb *AmbiguityError
	return errors.As(err, &amb)
}

type Resolver struct {
	plans  plan.Repository
	logger logger.Interface
}

func New(plans plan.Repository, logger logger.Interface) *Resolver {
	return &Resolver{plans: plans, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, in Input) (*Resolution, error) {
	direct := []func(context.Context, Input) (*Resolution, error){r.byStored, r.byNotes, r.byGatewayPlan}
	if in.PreferGatewayPlan {
		direct = []func(context.Context, Input) (*Resolution, error){r.byGatewayPlan, r.byStored, r.byNotes}
	}

	for _, step := range direct {
		res, err := step(ctx, in)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}

	all, err := r.plans.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	if in.AmountMinor > 0 {
		res, err := byAmount(all, in)
		if res != nil || err != nil {
			return res, err
		}
	}

	return byDescription(all, in)
}

func (r *Resolver) byID(ctx context.Context, id uint, source Source) (*Resolution, error) {
	p, err := r.plans.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			r.logger.Warnw("referenced plan does not exist", "plan_id", id, "source", source)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load plan %d: %w", id, err)
	}
	return &Resolution{Plan: p, Source: source}, nil
}

func (r *Resolver) byStored(ctx context.Context, in Input) (*Resolution, error) {
	if in.StoredPlanID == nil || *in.StoredPlanID == 0 {
		return nil, nil
	}
	return r.byID(ctx, *in.StoredPlanID, SourceStored)
}

func (r *Resolver) byNotes(ctx context.Context, in Input) (*Resolution, error) {
	if in.NotesPlanID == 0 {
		return nil, nil
	}
	return r.byID(ctx, in.NotesPlanID, SourceNotes)
}

func (r *Resolver) byGatewayPlan(ctx context.Context, in Input) (*Resolution, error) {
	if in.GatewayPlanID == "" {
		return nil, nil
	}
	p, err := r.plans.GetByGatewayPlanID(ctx, in.GatewayPlanID)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			r.logger.Warnw("no plan mapped to gateway plan", "gateway_plan_id", in.GatewayPlanID)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load plan for gateway plan %s: %w", in.GatewayPlanID, err)
	}
	return &Resolution{Plan: p, Source: SourceGatewayPlan}, nil
}

func byAmount(all []*plan.Plan, in Input) (*Resolution, error) {
	var matches []*plan.Plan
	for _, p := range all {
		if p.MatchesAmount(in.AmountMinor) {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &Resolution{Plan: matches[0], Source: SourceAmount}, nil
	}

	narrowed := filter(matches, func(p *plan.Plan) bool { return p.MatchesDescription(in.Description) })
	if len(narrowed) == 1 {
		return &Resolution{Plan: narrowed[0], Source: SourceAmount}, nil
	}
	if len(narrowed) == 0 {
		narrowed = matches
	}

	active := filter(narrowed, (*plan.Plan).IsActive)
	if len(active) == 1 {
		return &Resolution{Plan: active[0], Source: SourceAmount}, nil
	}

	return nil, &AmbiguityError{
		Reason:     fmt.Sprintf("%d plans match amount %d", len(narrowed), in.AmountMinor),
		Candidates: ids(narrowed),
	}
}

func byDescription(all []*plan.Plan, in Input) (*Resolution, error) {
	matches := filter(all, func(p *plan.Plan) bool { return p.MatchesDescription(in.Description) })
	switch len(matches) {
	case 0:
		return nil, &AmbiguityError{Reason: "no plan matches the payment"}
	case 1:
		return &Resolution{Plan: matches[0], Source: SourceDescription}, nil
	default:
		return nil, &AmbiguityError{
			Reason:     fmt.Sprintf("%d plans match description %q", len(matches), in.Description),
			Candidates: ids(matches),
		}
	}
}

func filter(plans []*plan.Plan, keep func(*plan.Plan) bool) []*plan.Plan {
	var out []*plan.Plan
	for _, p := range plans {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func ids(plans []*plan.Plan) []uint {
	out := make([]uint, 0, len(plans))
	for _, p := range plans {
		out = append(out, p.ID())
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
