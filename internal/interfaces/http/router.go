package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/examforge/examforge/internal/infrastructure/permission"
	"github.com/examforge/examforge/internal/interfaces/http/middleware"
	"github.com/examforge/examforge/internal/shared/utils"

	_ "github.com/examforge/examforge/docs"
)

const checkoutRateWindow = time.Minute

// Engine returns the gin engine for the HTTP server.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.RequestID())
	c.engine.Use(middleware.CustomLogger(c.log))
	c.engine.Use(middleware.Recovery(c.log))
	c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))
	c.engine.Use(middleware.SecurityHeaders())

	c.engine.GET("/health", c.health)
	c.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := c.engine.Group("/api/v1")
	c.setupPublicRoutes(api)
	c.setupSubscriptionRoutes(api)
	c.setupPaymentRoutes(api)
	c.setupAdminRoutes(api)
}

func (c *Container) health(ctx *gin.Context) {
	sqlDB, err := c.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx.Request.Context())
	}
	if err != nil {
		c.log.Warnw("health check failed", "error", err)
		utils.ErrorResponse(ctx, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	utils.SuccessResponse(ctx, http.StatusOK, "ok", gin.H{"status": "healthy"})
}

func (c *Container) setupPublicRoutes(api *gin.RouterGroup) {
	api.GET("/plans", c.hdlrs.planHandler.List)
	api.GET("/plans/:id", c.hdlrs.planHandler.Get)
	api.POST("/webhooks/razorpay", c.hdlrs.webhookHandler.Razorpay)
}

// checkoutGuards returns the middlewares placed in front of routes that open
// a gateway checkout.
func (c *Container) checkoutGuards() []gin.HandlerFunc {
	if c.checkoutLimiter == nil {
		return nil
	}
	return []gin.HandlerFunc{c.checkoutLimiter.Limit()}
}

func (c *Container) setupSubscriptionRoutes(api *gin.RouterGroup) {
	h := c.hdlrs.subscriptionHandler
	subs := api.Group("/subscriptions")
	subs.Use(c.authMiddleware.RequireAuth())
	{
		subs.GET("/me", h.GetMine)
		subs.POST("", append(c.checkoutGuards(), h.Subscribe)...)
		subs.POST("/renew", append(c.checkoutGuards(), h.Renew)...)
		subs.POST("/confirm", append(c.checkoutGuards(), h.Confirm)...)
		subs.POST("/cancel", h.Cancel)
		subs.POST("/pause", h.Pause)
		subs.POST("/resume", h.Resume)
		subs.POST("/cancel-auto-renewal", h.CancelAutoRenewal)
	}
}

func (c *Container) setupPaymentRoutes(api *gin.RouterGroup) {
	api.GET("/payments", c.authMiddleware.RequireAuth(), c.hdlrs.paymentHandler.ListMine)
}

func (c *Container) setupAdminRoutes(api *gin.RouterGroup) {
	perm := c.permissionMiddleware
	admin := api.Group("/admin")
	admin.Use(c.authMiddleware.RequireAuth())
	{
		admin.GET("/plans", perm.RequirePermission(permission.ResourcePlan, permission.ActionReadAll), c.hdlrs.planHandler.ListAll)
		admin.POST("/plans", perm.RequirePermission(permission.ResourcePlan, permission.ActionCreate), c.hdlrs.planHandler.Create)
		admin.PUT("/plans/:id", perm.RequirePermission(permission.ResourcePlan, permission.ActionUpdate), c.hdlrs.planHandler.Update)
		admin.DELETE("/plans/:id", perm.RequirePermission(permission.ResourcePlan, permission.ActionDelete), c.hdlrs.planHandler.Delete)

		admin.GET("/payments", perm.RequirePermission(permission.ResourcePayment, permission.ActionReadAll), c.hdlrs.paymentHandler.ListAll)

		h := c.hdlrs.adminSubscriptionHandler
		admin.GET("/subscriptions/expiring",
			perm.RequirePermission(permission.ResourceSubscription, permission.ActionReadAll), h.ListExpiring)

		users := admin.Group("/users/:id")
		users.Use(perm.RequirePermission(permission.ResourceSubscription, permission.ActionManage))
		{
			users.POST("/plan", h.ChangePlan)
			users.POST("/free-access", h.AddFreeAccess)
			users.POST("/extend", h.Extend)
			users.POST("/suspend", h.Suspend)
		}
	}
}
