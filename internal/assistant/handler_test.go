package assistant

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(a Assistant) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(a, "mock", zap.NewNop()).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postChat(t *testing.T, r http.Handler, body interface{}) (*httptest.ResponseRecorder, ChatResponse) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestChatLearn(t *testing.T) {
	a := new(MockAssistant)
	a.On("Respond", mock.Anything, "", ModeLearn, Options{Topic: "wallets", Level: "Expert"}).Return("lesson", nil)

	w, resp := postChat(t, newTestRouter(a), map[string]interface{}{
		"type":       "learn",
		"topic":      "wallets",
		"user_level": "Expert",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "lesson", resp.Response)
	assert.Equal(t, ModeLearn, resp.Type)
	a.AssertExpectations(t)
}

func TestChatDefaultsToChatMode(t *testing.T) {
	a := new(MockAssistant)
	a.On("Respond", mock.Anything, "hello", ModeChat, Options{}).Return("hi!", nil)

	w, resp := postChat(t, newTestRouter(a), map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ModeChat, resp.Type)
}

func TestChatErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not configured", ErrNotConfigured, http.StatusInternalServerError, ErrNotConfigured.Error()},
		{"upstream", &APIError{Provider: "anthropic", StatusCode: http.StatusTooManyRequests}, http.StatusTooManyRequests, "anthropic API error: 429"},
		{"empty", ErrEmptyMessage, http.StatusBadRequest, ErrEmptyMessage.Error()},
		{"other", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := new(MockAssistant)
			a.On("Respond", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", tt.err)

			w, resp := postChat(t, newTestRouter(a), map[string]string{"message": "hello"})
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.msg, resp.Error)
		})
	}
}

func TestChatTreatsUnknownTypeAsChat(t *testing.T) {
	a := new(MockAssistant)
	a.On("Respond", mock.Anything, "x", ModeChat, Options{}).Return("hi!", nil)

	w, resp := postChat(t, newTestRouter(a), map[string]string{"message": "x", "type": "poem"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, ModeChat, resp.Type)
	a.AssertExpectations(t)
}
