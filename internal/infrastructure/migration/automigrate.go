package migration

import (
	"github.com/examforge/examforge/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists the models owned by the billing core, in
// dependency order.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.PlanModel{},
		&models.UserModel{},
		&models.PaymentModel{},
		&models.WebhookEventModel{},
	}
}
