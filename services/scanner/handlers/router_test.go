package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routerGet(t *testing.T, router *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestNewRouter_HealthzReachableGateway(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(newSessionLedger(42))

	w := routerGet(t, router, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "reachable", body["gateway"])
	assert.Equal(t, float64(42), body["height"])
}

func TestNewRouter_HealthzDegradedGateway(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ledger := newSessionLedger(0)
	ledger.infoErr = errors.New("connection refused")
	router := NewRouter(ledger)

	w := routerGet(t, router, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "unreachable", body["gateway"])
	assert.Contains(t, body["error"], "connection refused")
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := NewRouter(newSessionLedger(0))

	w := routerGet(t, router, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
