package router_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bursary/config"
	"bursary/internal/database"
	"bursary/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "s3cret"

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte(testSecret), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{
		Server: config.ServerConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret: "test-jwt-secret",
			Expiry: time.Hour,
			Issuer: "bursary",
		},
		API: config.APIConfig{
			ClientID:         "gateway",
			ClientSecretHash: string(hash),
			AdminClientID:    "dashboard",
		},
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))

	engine, _ := router.Setup(cfg, db)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func mintToken(t *testing.T, engine *gin.Engine, clientID string) string {
	t.Helper()
	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/token", "", gin.H{
		"client_id":     clientID,
		"client_secret": testSecret,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestTokenEndpointRejectsBadCredentials(t *testing.T) {
	engine := newTestServer(t)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/auth/token", "", gin.H{
		"client_id": "gateway", "client_secret": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/auth/token", "", gin.H{
		"client_id": "stranger", "client_secret": testSecret,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutesRequireToken(t *testing.T) {
	engine := newTestServer(t)
	w := doJSON(t, engine, http.MethodGet, "/api/v1/communities/1/users/10/balances", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBalancesAndDepositFlow(t *testing.T) {
	engine := newTestServer(t)
	token := mintToken(t, engine, "gateway")

	w := doJSON(t, engine, http.MethodGet, "/api/v1/communities/1/users/10/balances", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var balances struct {
		Wallet int64 `json:"wallet"`
		Bank   int64 `json:"bank"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &balances))
	assert.Equal(t, int64(1_000), balances.Wallet)
	assert.Equal(t, int64(0), balances.Bank)

	w = doJSON(t, engine, http.MethodPost, "/api/v1/communities/1/users/10/deposit", token, gin.H{"amount": 400})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodGet, "/api/v1/communities/1/users/10/balances", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &balances))
	assert.Equal(t, int64(600), balances.Wallet)
	assert.Equal(t, int64(400), balances.Bank)

	// Business rejection surfaces as 422, not a 500.
	w = doJSON(t, engine, http.MethodPost, "/api/v1/communities/1/users/10/deposit", token, gin.H{"amount": 5_000})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	engine := newTestServer(t)
	serviceToken := mintToken(t, engine, "gateway")
	adminToken := mintToken(t, engine, "dashboard")

	w := doJSON(t, engine, http.MethodGet, "/api/v1/communities/1/config", serviceToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/api/v1/communities/1/config", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodPut, "/api/v1/communities/1/config", adminToken, gin.H{
		"start_balance":    2_000,
		"wallet_cap":       500_000,
		"bank_cap":         5_000_000,
		"max_credit_score": 2_000,
		"max_active_loans": 1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// A fresh user in that community now starts from the updated balance.
	w = doJSON(t, engine, http.MethodGet, "/api/v1/communities/1/users/77/balances", serviceToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var balances struct {
		Wallet int64 `json:"wallet"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &balances))
	assert.Equal(t, int64(2_000), balances.Wallet)
}
