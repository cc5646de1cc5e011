package middleware_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tradedist/backend/internal/interfaces/http/dto"
	"github.com/tradedist/backend/internal/interfaces/http/middleware"
	"github.com/tradedist/backend/tests/testutil"
)

func tenantEngine(mw gin.HandlerFunc, reached *bool) *gin.Engine {
	engine := gin.New()
	engine.Use(mw)
	engine.GET("/api/v1/stock/balances", testutil.StatusHandler(http.StatusOK, reached))
	engine.GET("/health", testutil.StatusHandler(http.StatusOK, nil))
	return engine
}

func TestTenantContext(t *testing.T) {
	t.Run("accepts a valid tenant header", func(t *testing.T) {
		reached := false
		engine := tenantEngine(middleware.TenantContext(), &reached)

		w := testutil.PerformRequest(t, engine, http.MethodGet, "/api/v1/stock/balances", nil,
			map[string]string{middleware.TenantHeaderKey: testutil.TestTenantID().String()})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, reached)
	})

	t.Run("rejects a missing tenant header", func(t *testing.T) {
		reached := false
		engine := tenantEngine(middleware.TenantContext(), &reached)

		w := testutil.PerformRequest(t, engine, http.MethodGet, "/api/v1/stock/balances", nil, nil)

		testutil.AssertErrorEnvelope(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)
		assert.False(t, reached)
	})

	t.Run("rejects a malformed tenant header", func(t *testing.T) {
		engine := tenantEngine(middleware.TenantContextWithConfig(middleware.TenantMiddlewareConfig{
			Logger: zaptest.NewLogger(t),
		}), nil)

		w := testutil.PerformRequest(t, engine, http.MethodGet, "/api/v1/stock/balances", nil,
			map[string]string{middleware.TenantHeaderKey: "not-a-uuid"})

		testutil.AssertErrorEnvelope(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)
	})

	t.Run("rejects the nil uuid", func(t *testing.T) {
		engine := tenantEngine(middleware.TenantContext(), nil)

		w := testutil.PerformRequest(t, engine, http.MethodGet, "/api/v1/stock/balances", nil,
			map[string]string{middleware.TenantHeaderKey: uuid.Nil.String()})

		testutil.AssertErrorEnvelope(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)
	})

	t.Run("skips configured paths", func(t *testing.T) {
		engine := tenantEngine(middleware.TenantContext(), nil)

		w := testutil.PerformRequest(t, engine, http.MethodGet, "/health", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("stores tenant and user ids on the context", func(t *testing.T) {
		tenantID := testutil.TestTenantID()
		userID := testutil.TestUserID()

		var gotTenant uuid.UUID
		var gotUser uuid.UUID
		engine := gin.New()
		engine.Use(middleware.TenantContext())
		engine.GET("/probe", func(c *gin.Context) {
			id, ok := middleware.GetTenantID(c)
			require.True(t, ok)
			gotTenant = id
			gotUser = middleware.GetUserID(c)
			c.Status(http.StatusOK)
		})

		w := testutil.PerformRequest(t, engine, http.MethodGet, "/probe", nil, map[string]string{
			middleware.TenantHeaderKey: tenantID.String(),
			middleware.UserHeaderKey:   userID.String(),
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tenantID, gotTenant)
		assert.Equal(t, userID, gotUser)
	})

	t.Run("ignores a malformed user header", func(t *testing.T) {
		var gotUser uuid.UUID
		engine := gin.New()
		engine.Use(middleware.TenantContext())
		engine.GET("/probe", func(c *gin.Context) {
			gotUser = middleware.GetUserID(c)
			c.Status(http.StatusOK)
		})

		w := testutil.PerformRequest(t, engine, http.MethodGet, "/probe", nil, map[string]string{
			middleware.TenantHeaderKey: testutil.TestTenantID().String(),
			middleware.UserHeaderKey:   "nope",
		})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, uuid.Nil, gotUser)
	})
}

func TestGetTenantID_Absent(t *testing.T) {
	tc := testutil.NewTestContext(t)

	id, ok := middleware.GetTenantID(tc.Context)

	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, id)
}
