package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kidpal/internal/domain"
	"kidpal/internal/repository"
	"kidpal/internal/service"
)

// ChatHandler mantiene dependencias para endpoints de sesiones y mensajes.
type ChatHandler struct {
	logger      *zap.Logger
	sessions    repository.SessionRepository
	chatServ    *service.ChatService
	chatLimiter service.RateLimiter
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(
	logger *zap.Logger,
	sessions repository.SessionRepository,
	chatServ *service.ChatService,
	chatLimiter service.RateLimiter,
) *ChatHandler {
	return &ChatHandler{
		logger:      logger,
		sessions:    sessions,
		chatServ:    chatServ,
		chatLimiter: chatLimiter,
	}
}

// CreateSession maneja POST /chat/session.
func (h *ChatHandler) CreateSession(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	session := domain.Session{
		ID:        uuid.NewString(),
		KidID:     claims.KidID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().UTC().Add(24 * time.Hour),
		CreatedAt: time.Now().UTC(),
	}

	if err := h.sessions.Create(c.Request.Context(), session); err != nil {
		h.logger.Error("create session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// PostMessage maneja POST /chat/message.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
		Content   string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid post message request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if h.chatLimiter != nil && !h.chatLimiter.Allow(c.Request.Context(), claims.KidID) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many messages, slow down"})
		return
	}

	result, err := h.chatServ.HandleMessage(c.Request.Context(), claims.KidID, req.SessionID, req.Content)
	if err != nil {
		h.logger.Error("chat turn failed", zap.Error(err), zap.String("kid_id", claims.KidID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not generate reply"})
		return
	}

	c.JSON(http.StatusCreated, result)
}
