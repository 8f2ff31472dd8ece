package http

import (
	"github.com/examforge/examforge/internal/infrastructure/repository"
	"github.com/examforge/examforge/internal/shared/db"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	planRepo         *repository.PlanRepository
	subscriptionRepo *repository.SubscriptionRepository
	ledgerRepo       *repository.LedgerRepository
	webhookInbox     *repository.WebhookInboxRepository
	txManager        *db.TransactionManager
}

func (c *Container) initRepositories() {
	c.repos = &repositories{
		planRepo:         repository.NewPlanRepository(c.db, c.log),
		subscriptionRepo: repository.NewSubscriptionRepository(c.db, c.log),
		ledgerRepo:       repository.NewLedgerRepository(c.db),
		webhookInbox:     repository.NewWebhookInboxRepository(c.db),
		txManager:        db.NewTransactionManager(c.db),
	}
}
