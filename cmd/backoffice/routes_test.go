package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vgroup-backoffice/config"
	"vgroup-backoffice/internal/cache"
	"vgroup-backoffice/internal/database/dbtest"
	"vgroup-backoffice/internal/database/models"
	"vgroup-backoffice/internal/gateway/realtime"
	"vgroup-backoffice/internal/health"
	"vgroup-backoffice/internal/services/admin"
	"vgroup-backoffice/internal/services/cms"
	"vgroup-backoffice/internal/services/commissions"
	"vgroup-backoffice/internal/services/dashboard"
	"vgroup-backoffice/internal/services/export"
	"vgroup-backoffice/internal/services/ledger"
	"vgroup-backoffice/internal/services/operations"
	"vgroup-backoffice/internal/services/user"
	"vgroup-backoffice/internal/services/workforce"
	"vgroup-backoffice/internal/utils"
)

func testRouter(t *testing.T) (*gin.Engine, *utils.TokenManager) {
	gin.SetMode(gin.TestMode)

	db, mock := dbtest.NewPingMock(t)
	mock.ExpectPing()
	c := cache.New(nil, nil)
	log := zap.NewNop()

	tokens, err := utils.NewTokenManager("routes-test-secret-123", time.Hour)
	require.NoError(t, err)
	hub := realtime.NewHub(nil, log)

	svc := services{
		users:       user.NewService(db, c, tokens, log),
		workforce:   workforce.NewService(db, c, log),
		ledger:      ledger.NewService(db, c, log),
		commissions: commissions.NewService(db, c, log),
		operations:  operations.NewService(db, c, hub, log),
		dashboard:   dashboard.NewService(db, c, log),
		export:      export.NewService(db, log),
		reset:       admin.NewService(db, c, log),
		cms:         cms.NewService(db, c, nil, log),
	}

	cfg := config.Config{App: config.AppConfig{RateLimit: "1000-M"}}
	r, err := newRouter(cfg, log, tokens, svc, hub, health.NewChecker(db, c))
	require.NoError(t, err)
	return r, tokens
}

func call(r http.Handler, method, path, token, body string) int {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	r, _ := testRouter(t)

	for _, path := range []string{"/api/workers", "/api/loans", "/api/dashboard/stats", "/api/export/loans.xlsx"} {
		assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodGet, path, "", ""), path)
	}
}

func TestRouter_RoleGuards(t *testing.T) {
	r, tokens := testRouter(t)
	viewer, _, err := tokens.GenerateToken(3, "viewer@vgroup.co.th", string(models.RoleViewer))
	require.NoError(t, err)
	staff, _, err := tokens.GenerateToken(2, "staff@vgroup.co.th", string(models.RoleStaff))
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPost, "/api/payments", viewer, `{}`))
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPost, "/api/admin/reset", staff, `{"confirmation":"RESET ALL DATA"}`))
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/users", staff, ""))
}

func TestRouter_Health(t *testing.T) {
	r, _ := testRouter(t)

	// redis is not configured, so the service is degraded but up
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/health", "", ""))
}
