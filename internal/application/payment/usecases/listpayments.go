package usecases

import (
	"context"
	"fmt"

	"github.com/examforge/examforge/internal/application/payment/dto"
	"github.com/examforge/examforge/internal/domain/payment"
	"github.com/examforge/examforge/internal/shared/constants"
	"github.com/examforge/examforge/internal/shared/logger"
)

type ListPaymentsQuery struct {
	UserID   uint
	Page     int
	PageSize int
}

type ListPaymentsUseCase struct {
	ledger payment.LedgerRepository
	logger logger.Interface
}

func NewListPaymentsUseCase(ledger payment.LedgerRepository, logger logger.Interface) *ListPaymentsUseCase {
	return &ListPaymentsUseCase{ledger: ledger, logger: logger}
}

func (uc *ListPaymentsUseCase) Execute(ctx context.Context, query ListPaymentsQuery) (*dto.ListPaymentsResponse, error) {
	page := query.Page
	if page < 1 {
		page = constants.DefaultPage
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}

	entries, total, err := uc.ledger.List(ctx, payment.ListFilter{
		UserID:   query.UserID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		uc.logger.Errorw("failed to list payments", "user_id", query.UserID, "error", err)
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return &dto.ListPaymentsResponse{
		Payments: dto.ToPaymentDTOList(entries),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
