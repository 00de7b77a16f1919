package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tiagobluiz/travel-companion/internal/handler"
)

// TestGetHealth_returns200WithOKStatus verifies that GET /healthz returns
// HTTP 200 and a JSON body of {"status":"ok"}.
func TestGetHealth_returns200WithOKStatus(t *testing.T) {
	// Arrange: a health-only Server mounted on its own router, no services.
	httpHandler := handler.NewHealthHandler().Routes()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	// Act
	httpHandler.ServeHTTP(rec, req)

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)

	var body handler.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Equal(t, "ok", body.Status)
}

// TestGetOpenAPI_servesDocument verifies that the embedded document is served as YAML.
func TestGetOpenAPI_servesDocument(t *testing.T) {
	rec := httptest.NewRecorder()

	newHTTPHandler(handler.Services{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "openapi: 3.0.3")
}
