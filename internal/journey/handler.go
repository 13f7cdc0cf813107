package journey

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"superlearn/learning-portal/learning-portal-backend/internal/assistant"
	"superlearn/learning-portal/learning-portal-backend/internal/auth"
	"superlearn/learning-portal/learning-portal-backend/internal/notifications/websocket"
	"superlearn/learning-portal/learning-portal-backend/internal/sessions"
)

// Tokens issues and validates per-session bearer tokens
type Tokens interface {
	auth.Validator
	Issue(sessionID uuid.UUID) (string, error)
}

type Handler struct {
	service   Service
	tokens    Tokens
	wsManager *websocket.Manager
	logger    *zap.Logger
}

// NewHandler creates a journey handler. wsManager may be nil, which disables
// the view stream.
func NewHandler(service Service, tokens Tokens, wsManager *websocket.Manager, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service:   service,
		tokens:    tokens,
		wsManager: wsManager,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.CreateSession)

	session := rg.Group("/sessions/:id", auth.RequireSession(h.tokens))
	{
		session.GET("", h.GetSession)
		session.DELETE("", h.DeleteSession)
		session.GET("/ws", h.Stream)

		session.POST("/steps/:step/open", h.OpenStep)
		session.POST("/modal/close", h.CloseModal)
		session.POST("/register", h.Register)
		session.POST("/wallet/connect", h.ConnectWallet)
		session.POST("/wallet/link", h.LinkWallet)
		session.POST("/ai-intro/finish", h.FinishAIIntro)
		session.POST("/mentor", h.AskMentor)
		session.POST("/quiz/answer", h.AnswerQuestion)
		session.POST("/quiz/submit", h.SubmitAnswer)
		session.POST("/nft/mint", h.MintNFT)
		session.GET("/certificate", h.Certificate)
		session.POST("/reset", h.Reset)
	}
}

// RegisterRequest is the body of POST /sessions/:id/register
type RegisterRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
}

// AnswerRequest is the body of POST /sessions/:id/quiz/answer
type AnswerRequest struct {
	Index *int `json:"index" binding:"required"`
}

func (h *Handler) CreateSession(c *gin.Context) {
	ctrl, err := h.service.CreateSession(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	token, err := h.tokens.Issue(ctrl.ID())
	if err != nil {
		h.logger.Error("Failed to issue session token", zap.Error(err))
		_ = h.service.DeleteSession(c.Request.Context(), ctrl.ID())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session_id": ctrl.ID(),
		"token":      token,
		"view":       ctrl.View(),
	})
}

func (h *Handler) GetSession(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	resp := gin.H{"view": ctrl.View()}
	if h.wsManager != nil {
		resp["watchers"] = h.wsManager.GetSessionConnections(ctrl.ID().String())
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) DeleteSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteSession(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	if h.wsManager != nil {
		h.wsManager.DisconnectSession(id.String())
	}
	c.Status(http.StatusNoContent)
}

// Stream upgrades to a websocket that receives the view after every change
func (h *Handler) Stream(c *gin.Context) {
	if h.wsManager == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "live updates are disabled"})
		return
	}
	ctrl, ok := h.session(c)
	if !ok {
		return
	}

	id := ctrl.ID().String()
	if _, err := h.wsManager.HandleConnection(c.Writer, c.Request, id); err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.String("session_id", id), zap.Error(err))
		return
	}

	// the first frame is the current view
	if err := h.wsManager.SendToSession(id, websocket.Message{Type: "view", Data: ctrl.View()}); err != nil {
		h.logger.Debug("Failed to send initial view", zap.String("session_id", id), zap.Error(err))
	}
}

func (h *Handler) OpenStep(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	step := StepID(c.Param("step"))
	if !ctrl.Flow().Has(step) {
		h.fail(c, fmt.Errorf("%w: %s", ErrUnknownStep, step))
		return
	}

	opened := ctrl.OpenStep(step)
	c.JSON(http.StatusOK, gin.H{"opened": opened, "view": ctrl.View()})
}

func (h *Handler) CloseModal(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	ctrl.CloseModal()
	c.JSON(http.StatusOK, gin.H{"view": ctrl.View()})
}

func (h *Handler) Register(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := ctrl.Register(req.Email, req.Name); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": ctrl.View()})
}

// ConnectWallet starts a connect attempt; its outcome arrives on the stream
func (h *Handler) ConnectWallet(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	if err := ctrl.ConnectWallet(); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"view": ctrl.View()})
}

func (h *Handler) LinkWallet(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	if err := ctrl.LinkWallet(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": ctrl.View()})
}

func (h *Handler) FinishAIIntro(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	if err := ctrl.FinishAIIntro(); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": ctrl.View()})
}

// AskMentor answers in the original chat format; a failed backend still
// yields a successful, encouraging reply.
func (h *Handler) AskMentor(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}

	var req assistant.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	mode := assistant.ParseMode(req.Type)
	reply, err := h.service.AskMentor(c.Request.Context(), id, req.Message, mode, req.Options())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"response": reply.Text,
		"type":     reply.Mode,
		"fallback": reply.Fallback,
	})
}

func (h *Handler) AnswerQuestion(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := ctrl.AnswerQuizQuestion(*req.Index); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"view": ctrl.View()})
}

func (h *Handler) SubmitAnswer(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	result, err := ctrl.SubmitQuizAnswer()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "view": ctrl.View()})
}

func (h *Handler) MintNFT(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	receipt, err := ctrl.MintNFT(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receipt": receipt, "view": ctrl.View()})
}

func (h *Handler) Certificate(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	pdf, err := h.service.Certificate(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="superlearn-certificate-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) Reset(c *gin.Context) {
	ctrl, ok := h.session(c)
	if !ok {
		return
	}
	ctrl.ResetDemo()
	c.JSON(http.StatusOK, gin.H{"view": ctrl.View()})
}

func (h *Handler) session(c *gin.Context) (*Controller, bool) {
	id, ok := sessionID(c)
	if !ok {
		return nil, false
	}
	ctrl, err := h.service.GetSession(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return ctrl, true
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Journey request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrNotMinted),
		errors.Is(err, ErrStepNotConfigured):
		return http.StatusNotFound
	case errors.Is(err, ErrUnknownStep),
		errors.Is(err, ErrInvalidRegistration),
		errors.Is(err, ErrAnswerOutOfRange),
		errors.Is(err, ErrNoAnswerSelected),
		errors.Is(err, assistant.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, ErrStepNotCurrent),
		errors.Is(err, ErrTransitionNotAllowed),
		errors.Is(err, ErrWalletConnecting),
		errors.Is(err, ErrQuizCompleted),
		errors.Is(err, ErrMintInProgress),
		errors.Is(err, ErrSessionReset),
		errors.Is(err, ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, ErrMintFailed):
		return http.StatusBadGateway
	case errors.Is(err, sessions.ErrStoreFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
