package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"superlearn/learning-portal/learning-portal-backend/internal/config"
)

func TestSetupJourneyAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Security.JWTSecret = "test-secret"
	cfg.Assistant.Provider = "scripted"

	api, err := SetupJourneyAPI(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, api.Start())
	defer api.Close()

	router := gin.New()
	RegisterJourneyRoutes(router.Group("/api/v1"), api)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		SessionID string `json:"session_id"`
		Token     string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, 1, api.Store.Size())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+created.SessionID, nil)
	req.Header.Set("Authorization", "Bearer "+created.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/chat",
		strings.NewReader(`{"message":"what is bitcoin?","type":"chat"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
}

func TestSetupJourneyAPIRejectsUnknownAssistant(t *testing.T) {
	cfg := config.Default()
	cfg.Security.JWTSecret = "test-secret"
	cfg.Assistant.Provider = "oracle"

	_, err := SetupJourneyAPI(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
