package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/siteforge/siteforge/internal/domain/product"
	shared "github.com/siteforge/siteforge/internal/domain/shared/valueobjects"
	"github.com/siteforge/siteforge/internal/infrastructure/config"
	"github.com/siteforge/siteforge/internal/infrastructure/persistence/models"
	sharedConfig "github.com/siteforge/siteforge/internal/shared/config"
	"github.com/siteforge/siteforge/internal/shared/logger"
)

const (
	testAPIKey    = "ck_test"
	testAPISecret = "cs_test"
)

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gormDB, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "siteforge.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(models.All()...))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		Server: sharedConfig.ServerConfig{BaseURL: "https://billing.example.com"},
		API: sharedConfig.APIConfig{
			Key:             testAPIKey,
			Secret:          testAPISecret,
			InvoiceSecret:   "invoice-secret",
			InvoiceLinkTTL:  time.Hour,
			RegisterRateRPM: 100,
		},
		Network: sharedConfig.NetworkConfig{Domain: "example.com", Subdomain: true},
		Billing: sharedConfig.BillingConfig{
			Currency:                  "USD",
			Locale:                    "en-US",
			EnableRegistration:        true,
			RegistrationURL:           "https://example.com/register",
			RenewalDaysBeforeExpiring: 3,
			GracePeriodDays:           3,
			ProductCacheSize:          16,
		},
		Gateways: sharedConfig.GatewaysConfig{
			Manual: sharedConfig.ManualGatewayConfig{Enabled: true, Instructions: "Pay by bank transfer."},
		},
		Queue: sharedConfig.QueueConfig{Prefix: "test:queue", PollTimeout: time.Second},
	}

	c, err := NewContainerWithRedis(gormDB, client, cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(c.Shutdown)
	c.SetupRoutes()

	plan, err := product.NewProduct(product.Attributes{
		Slug: "starter", Name: "Starter", Type: product.TypePlan, PricingType: product.PricingPaid,
		Currency: "USD", Amount: decimal.NewFromInt(29), Recurring: true, Active: true,
		Period: shared.Period{Duration: 1, Unit: shared.DurationUnitMonth},
	}, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, c.repos.productRepo.Upsert(context.Background(), plan))

	return c
}

func doRequest(c *Container, method, path string, body any, authenticated bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authenticated {
		req.SetBasicAuth(testAPIKey, testAPISecret)
	}
	w := httptest.NewRecorder()
	c.Engine().ServeHTTP(w, req)
	return w
}

func TestContainer_Health(t *testing.T) {
	c := newTestContainer(t)

	w := doRequest(c, http.MethodGet, "/health", nil, false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestContainer_RegisterFlow(t *testing.T) {
	c := newTestContainer(t)

	w := doRequest(c, http.MethodGet, "/register", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(c, http.MethodGet, "/register", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"registration_status":"open"}`, w.Body.String())

	w = doRequest(c, http.MethodPost, "/register", map[string]any{
		"customer": map[string]any{"username": "janedoe", "password": "s3cret!!", "email": "jane@example.com"},
		"products": []string{"starter"},
	}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var registered struct {
		Customer struct {
			ID       uint   `json:"id"`
			Username string `json:"username"`
		} `json:"customer"`
		Membership struct {
			Status string `json:"status"`
		} `json:"membership"`
		Payment struct {
			Hash   string `json:"reference_code"`
			Status string `json:"status"`
		} `json:"payment"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	assert.Equal(t, "janedoe", registered.Customer.Username)
	assert.Equal(t, "pending", registered.Membership.Status)
	assert.Equal(t, "pending", registered.Payment.Status)
	require.NotEmpty(t, registered.Payment.Hash)

	w = doRequest(c, http.MethodGet, "/api/v1/payments/"+registered.Payment.Hash, nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(c, http.MethodGet, fmt.Sprintf("/api/v1/customers/%d/notes", registered.Customer.ID), nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Created via REST API")
}

func TestContainer_RegisterRejectsUnknownProduct(t *testing.T) {
	c := newTestContainer(t)

	w := doRequest(c, http.MethodPost, "/register", map[string]any{
		"customer": map[string]any{"username": "janedoe", "password": "s3cret!!", "email": "jane@example.com"},
		"products": []string{"enterprise"},
	}, true)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
