package mappers

import (
	"fmt"

	"gorm.io/datatypes"

	"github.com/examforge/examforge/internal/domain/payment"
	vo "github.com/examforge/examforge/internal/domain/payment/valueobjects"
	"github.com/examforge/examforge/internal/infrastructure/persistence/models"
)

func PaymentToModel(e *payment.LedgerEntry) *models.PaymentModel {
	model := &models.PaymentModel{
		ID:                 e.ID(),
		UserID:             e.UserID(),
		PlanID:             e.PlanID(),
		AmountMinor:        e.AmountMinor(),
		Currency:           e.Currency(),
		Method:             e.Method().String(),
		Gateway:            e.Gateway().String(),
		GatewayPaymentID:   e.GatewayPaymentID(),
		InvoiceID:          e.InvoiceID(),
		Status:             e.Status().String(),
		PurchasedAt:        e.PurchasedAt(),
		ExpireAt:           e.ExpireAt(),
		FailureReason:      e.FailureReason(),
		FailureDescription: e.FailureDescription(),
		CreatedAt:          e.CreatedAt(),
	}

	if len(e.Notes()) > 0 {
		model.Notes = datatypes.JSONMap(e.Notes())
	}

	return model
}

func PaymentToDomain(model *models.PaymentModel) (*payment.LedgerEntry, error) {
	status := vo.PaymentStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid payment status: %s", model.Status)
	}

	notes := map[string]any(model.Notes)
	if notes == nil {
		notes = make(map[string]any)
	}

	return payment.ReconstructEntry(
		model.ID,
		model.UserID,
		model.PlanID,
		model.AmountMinor,
		model.Currency,
		vo.ParseMethod(model.Method),
		vo.PaymentGateway(model.Gateway),
		model.GatewayPaymentID,
		model.InvoiceID,
		status,
		model.PurchasedAt,
		model.ExpireAt,
		model.FailureReason,
		model.FailureDescription,
		notes,
		model.CreatedAt,
	), nil
}

func WebhookEventToModel(e *payment.WebhookEvent) *models.WebhookEventModel {
	return &models.WebhookEventModel{
		EventID:     e.EventID,
		EventType:   e.EventType,
		Digest:      e.Digest,
		ReceivedAt:  e.ReceivedAt,
		ProcessedAt: e.ProcessedAt,
		Outcome:     e.Outcome,
	}
}

func WebhookEventToDomain(model *models.WebhookEventModel) *payment.WebhookEvent {
	return &payment.WebhookEvent{
		EventID:     model.EventID,
		EventType:   model.EventType,
		Digest:      model.Digest,
		ReceivedAt:  model.ReceivedAt,
		ProcessedAt: model.ProcessedAt,
		Outcome:     model.Outcome,
	}
}
