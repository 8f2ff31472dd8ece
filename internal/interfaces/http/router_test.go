package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/examforge/examforge/internal/infrastructure/config"
	"github.com/examforge/examforge/internal/infrastructure/migration"
	"github.com/examforge/examforge/internal/shared/authorization"
	sharedConfig "github.com/examforge/examforge/internal/shared/config"
	"github.com/examforge/examforge/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	return buildTestContainer(t, logger.NewDiscard(), nil)
}

func buildTestContainer(t *testing.T, log logger.Interface, adjust func(*config.Config)) *Container {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(migration.AutoMigrateModels()...))

	cfg := &config.Config{
		Server: sharedConfig.ServerConfig{Mode: "test", BaseURL: "http://localhost"},
		Auth: sharedConfig.AuthConfig{JWT: sharedConfig.JWTConfig{
			Secret:           "router-test-secret-0123456789",
			AccessExpMinutes: 5,
		}},
		Razorpay: sharedConfig.RazorpayConfig{
			KeyID:          "rzp_test_key",
			KeySecret:      "key-secret",
			WebhookSecret:  "webhook-secret",
			BaseURL:        "http://127.0.0.1:1",
			TimeoutSeconds: 1,
		},
		Billing: sharedConfig.BillingConfig{
			RenewalCap:            1,
			Currency:              "INR",
			ExpirySweepCron:       "2 * * * *",
			CleanupSweepCron:      "0 * * * *",
			AbandonedGraceMinutes: 60,
			NotificationQueueSize: 8,
		},
	}

	if adjust != nil {
		adjust(cfg)
	}

	c, err := NewContainer(db, nil, cfg, log)
	require.NoError(t, err)
	c.SetupRoutes()
	return c
}

func (c *Container) bearer(t *testing.T, userID uint, role authorization.UserRole) string {
	t.Helper()
	token, _, err := c.jwtSvc.Generate(userID, "someone@example.com", role)
	require.NoError(t, err)
	return "Bearer " + token
}

func serve(c *Container, method, path, auth string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	c.Engine().ServeHTTP(w, req)
	return w
}

func TestRouter_PublicRoutes(t *testing.T) {
	c := newTestContainer(t)

	w := serve(c, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(c, http.MethodGet, "/api/v1/plans", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/razorpay", bytes.NewBufferString(`{"event":"payment.captured"}`))
	req.Header.Set("X-Razorpay-Signature", "not-a-valid-signature")
	rec := httptest.NewRecorder()
	c.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AuthAndPermissions(t *testing.T) {
	c := newTestContainer(t)
	createPlan := map[string]any{"title": "Monthly Pass", "price_minor": 49900, "interval": "monthly"}

	tests := []struct {
		name       string
		method     string
		path       string
		auth       string
		body       any
		wantStatus int
	}{
		{name: "status needs auth", method: http.MethodGet, path: "/api/v1/subscriptions/me", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", method: http.MethodGet, path: "/api/v1/subscriptions/me", auth: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "user cannot create plans", method: http.MethodPost, path: "/api/v1/admin/plans", auth: c.bearer(t, 7, authorization.RoleUser), body: createPlan, wantStatus: http.StatusForbidden},
		{name: "manager cannot create plans", method: http.MethodPost, path: "/api/v1/admin/plans", auth: c.bearer(t, 2, authorization.RoleManager), body: createPlan, wantStatus: http.StatusForbidden},
		{name: "admin creates plan", method: http.MethodPost, path: "/api/v1/admin/plans", auth: c.bearer(t, 1, authorization.RoleAdmin), body: createPlan, wantStatus: http.StatusCreated},
		{name: "manager reads payments", method: http.MethodGet, path: "/api/v1/admin/payments", auth: c.bearer(t, 2, authorization.RoleManager), wantStatus: http.StatusOK},
		{name: "user cannot read all payments", method: http.MethodGet, path: "/api/v1/admin/payments", auth: c.bearer(t, 7, authorization.RoleUser), wantStatus: http.StatusForbidden},
		{name: "user reads own payments", method: http.MethodGet, path: "/api/v1/payments", auth: c.bearer(t, 7, authorization.RoleUser), wantStatus: http.StatusOK},
		{name: "manager cannot extend", method: http.MethodPost, path: "/api/v1/admin/users/7/extend", auth: c.bearer(t, 2, authorization.RoleManager), body: map[string]int{"days": 3}, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(c, tt.method, tt.path, tt.auth, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}

	w := serve(c, http.MethodGet, "/api/v1/plans", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []struct {
			Title string `json:"title"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Monthly Pass", resp.Data[0].Title)
}

func TestContainer_StartBackgroundWithoutRedis(t *testing.T) {
	c := newTestContainer(t)

	require.NoError(t, c.StartBackground())
	assert.True(t, c.schedulerManager.IsStarted())
	assert.Len(t, c.schedulerManager.Jobs(), 2)

	c.Shutdown(t.Context())
	assert.False(t, c.schedulerManager.IsStarted())
}

func TestContainer_WarnsWhenWebhookSecretMissing(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		wantWarn bool
	}{
		{name: "secret set", secret: "webhook-secret", wantWarn: false},
		{name: "secret missing", secret: "", wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})))

			buildTestContainer(t, log, func(cfg *config.Config) {
				cfg.Razorpay.WebhookSecret = tt.secret
			})

			assert.Equal(t, tt.wantWarn, bytes.Contains(buf.Bytes(), []byte("webhook secret is not set")), buf.String())
		})
	}
}

func TestRouter_PlanCatalogLifecycle(t *testing.T) {
	c := newTestContainer(t)
	admin := c.bearer(t, 1, authorization.RoleAdmin)
	manager := c.bearer(t, 2, authorization.RoleManager)
	user := c.bearer(t, 7, authorization.RoleUser)

	w := serve(c, http.MethodPost, "/api/v1/admin/plans", admin, map[string]any{"title": "Weekly Sprint", "price_minor": 9900, "interval": "weekly"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	planPath := fmt.Sprintf("/api/v1/admin/plans/%d", created.Data.ID)
	publicPath := fmt.Sprintf("/api/v1/plans/%d", created.Data.ID)

	assert.Equal(t, http.StatusOK, serve(c, http.MethodGet, publicPath, "", nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(c, http.MethodDelete, planPath, manager, nil).Code)
	assert.Equal(t, http.StatusForbidden, serve(c, http.MethodGet, "/api/v1/admin/plans", user, nil).Code)

	w = serve(c, http.MethodDelete, planPath, admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(c, http.MethodGet, publicPath, "", nil).Code)

	var listing struct {
		Data []struct {
			Title  string `json:"title"`
			Active bool   `json:"active"`
		} `json:"data"`
	}
	w = serve(c, http.MethodGet, "/api/v1/plans", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Empty(t, listing.Data)

	w = serve(c, http.MethodGet, "/api/v1/admin/plans", manager, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Data, 1)
	assert.Equal(t, "Weekly Sprint", listing.Data[0].Title)
	assert.False(t, listing.Data[0].Active)
}
