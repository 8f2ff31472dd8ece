package http

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	permissionApp "github.com/examforge/examforge/internal/application/permission"
	plandto "github.com/examforge/examforge/internal/application/plan/dto"
	planUsecases "github.com/examforge/examforge/internal/application/plan/usecases"
	"github.com/examforge/examforge/internal/infrastructure/auth"
	"github.com/examforge/examforge/internal/infrastructure/cache"
	"github.com/examforge/examforge/internal/infrastructure/config"
	"github.com/examforge/examforge/internal/infrastructure/email"
	"github.com/examforge/examforge/internal/infrastructure/payment/razorpay"
	"github.com/examforge/examforge/internal/infrastructure/permission"
	"github.com/examforge/examforge/internal/infrastructure/scheduler"
	"github.com/examforge/examforge/internal/interfaces/http/middleware"
	"github.com/examforge/examforge/internal/shared/biztime"
	"github.com/examforge/examforge/internal/shared/logger"
	"github.com/examforge/examforge/internal/shared/services/markdown"
)

// Container holds the infrastructure, repositories, use cases, handlers and
// background services of one process, and shuts them down in order.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client
	clock  biztime.Clock

	repos *repositories
	ucs   *allUseCases
	hdlrs *allHandlers

	// Middlewares
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	checkoutLimiter      *middleware.CheckoutRateLimiter

	// Infrastructure services
	jwtSvc   *auth.JWTService
	gateway  *razorpay.Client
	verifier *razorpay.Verifier
	renderer markdown.Renderer
	notifier *email.QueueNotifier
	enforcer *permission.Enforcer

	schedulerManager *scheduler.SchedulerManager
}

// NewContainer wires every component. redisClient may be nil; the sweep lock
// and the checkout rate limit are then disabled.
func NewContainer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		redis:  redisClient,
		clock:  biztime.SystemClock{},
	}

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}
	c.initRepositories()
	c.initUseCases()
	c.initHandlers()

	return c, nil
}

func (c *Container) initInfrastructure() error {
	c.jwtSvc = auth.NewJWTService(c.cfg.Auth.JWT.Secret, c.cfg.Auth.JWT.AccessExpMinutes, c.clock)
	c.gateway = razorpay.NewClient(c.cfg.Razorpay, c.log)
	c.verifier = razorpay.NewVerifier(c.cfg.Razorpay.WebhookSecret, c.cfg.Razorpay.KeySecret)
	if c.cfg.Razorpay.WebhookSecret == "" {
		c.log.Warnw("razorpay webhook secret is not set, webhooks are accepted without signature verification")
	}
	c.renderer = markdown.NewRenderer()

	composer := email.NewComposer(c.renderer, c.cfg.Server.BaseURL)
	sender := email.NewSender(c.cfg.Email, c.log)
	c.notifier = email.NewQueueNotifier(composer, sender, c.cfg.Billing.NotificationQueueSize, c.log)

	enforcer, err := permission.NewEnforcer(c.db, c.log)
	if err != nil {
		return fmt.Errorf("failed to create permission enforcer: %w", err)
	}
	if err := enforcer.Seed(); err != nil {
		return fmt.Errorf("failed to seed permission policies: %w", err)
	}
	c.enforcer = enforcer

	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, c.log)
	c.permissionMiddleware = middleware.NewPermissionMiddleware(permissionApp.NewService(enforcer, c.log), c.log)
	if c.redis != nil && c.cfg.Billing.CheckoutRateLimit > 0 {
		c.checkoutLimiter = middleware.NewCheckoutRateLimiter(c.redis, c.cfg.Billing.CheckoutRateLimit, checkoutRateWindow, c.log)
	}
	return nil
}

// StartNotifications starts the email worker. CLI sweeps need it without the
// rest of the background services.
func (c *Container) StartNotifications() {
	c.notifier.Start()
}

// StartBackground starts the email worker and the billing scheduler.
func (c *Container) StartBackground() error {
	c.notifier.Start()

	var locker gocron.Locker
	if c.redis != nil {
		locker = cache.NewSweepLocker(c.redis, 0, c.log)
	}

	mgr, err := scheduler.NewSchedulerManager(c.log, locker)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	if err := mgr.RegisterBillingJobs(
		c.cfg.Billing.ExpirySweepCron,
		c.cfg.Billing.CleanupSweepCron,
		c.ucs.expireSubscriptionsUC,
		c.ucs.cleanupAbandonedUC,
	); err != nil {
		return err
	}

	mgr.Start()
	c.schedulerManager = mgr
	return nil
}

// RunExpirySweep runs one expiry pass outside the scheduler.
func (c *Container) RunExpirySweep(ctx context.Context) (int, error) {
	return c.ucs.expireSubscriptionsUC.Execute(ctx)
}

// RunAbandonedCleanup runs one abandoned-checkout pass outside the scheduler.
func (c *Container) RunAbandonedCleanup(ctx context.Context) (int, error) {
	return c.ucs.cleanupAbandonedUC.Execute(ctx)
}

// ImportPlans upserts a plan catalog through the container's use case.
func (c *Container) ImportPlans(ctx context.Context, entries []planUsecases.CatalogEntry) (*plandto.ImportResult, error) {
	return c.ucs.importPlansUC.Execute(ctx, entries)
}

// Shutdown stops the scheduler first so no sweep enqueues mail after the
// notifier has drained.
func (c *Container) Shutdown(ctx context.Context) {
	if c.schedulerManager != nil {
		if err := c.schedulerManager.Stop(); err != nil {
			c.log.Warnw("failed to stop scheduler", "error", err)
		}
	}
	c.notifier.Stop(ctx)
	c.log.Infow("container shut down")
}
