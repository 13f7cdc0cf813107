package assistant

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatRequest is the wire format of POST /chat
type ChatRequest struct {
	Message       string `json:"message"`
	Type          string `json:"type"`
	Topic         string `json:"topic"`
	UserLevel     string `json:"user_level"`
	LearningStyle string `json:"learning_style"`
	Difficulty    string `json:"difficulty"`
	NumQuestions  int    `json:"num_questions"`
}

// Options extracts the prompt options
func (r ChatRequest) Options() Options {
	return Options{
		Topic:        r.Topic,
		Level:        r.UserLevel,
		Style:        r.LearningStyle,
		Difficulty:   r.Difficulty,
		NumQuestions: r.NumQuestions,
	}
}

// ChatResponse is the wire format answered by POST /chat
type ChatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
	Type     Mode   `json:"type,omitempty"`
}

type Handler struct {
	assistant Assistant
	provider  string
	logger    *zap.Logger
}

func NewHandler(assistant Assistant, provider string, logger *zap.Logger) *Handler {
	return &Handler{
		assistant: assistant,
		provider:  provider,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat", h.Chat)
	rg.GET("/assistant/status", h.Status)
}

// Chat forwards a message to the assistant. Upstream failures are reported,
// not masked.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ChatResponse{Error: "invalid request body"})
		return
	}

	mode := ParseMode(req.Type)
	text, err := h.assistant.Respond(c.Request.Context(), req.Message, mode, req.Options())
	if err != nil {
		status, msg := chatError(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("Chat request failed", zap.String("type", string(mode)), zap.Error(err))
		}
		c.JSON(status, ChatResponse{Error: msg, Type: mode})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Success: true, Response: text, Type: mode})
}

// Status reports which backend answers chat requests
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"provider":  h.provider,
		"available": h.assistant != nil,
	})
}

func chatError(err error) (int, string) {
	var apiErr *APIError
	switch {
	case errors.Is(err, ErrEmptyMessage):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrNotConfigured):
		return http.StatusInternalServerError, err.Error()
	case errors.As(err, &apiErr):
		return apiErr.StatusCode, apiErr.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
