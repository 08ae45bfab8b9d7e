package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kidpal/internal/service"
)

// SafetyHandler expone el historial de flags de seguridad a los padres.
// Todas las rutas piden el PIN parental ademas del token del nino.
type SafetyHandler struct {
	logger     *zap.Logger
	kidServ    *service.KidService
	safetyServ *service.SafetyService
}

func NewSafetyHandler(logger *zap.Logger, kidServ *service.KidService, safetyServ *service.SafetyService) *SafetyHandler {
	return &SafetyHandler{
		logger:     logger,
		kidServ:    kidServ,
		safetyServ: safetyServ,
	}
}

// ListFlags maneja POST /safety/flags.
func (h *SafetyHandler) ListFlags(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		ParentPin string `json:"parent_pin" binding:"required"`
		Limit     int    `json:"limit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid list flags request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.kidServ.CheckParentPin(c.Request.Context(), claims.KidID, req.ParentPin); err != nil {
		if errors.Is(err, service.ErrInvalidPin) {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid parent pin"})
			return
		}
		h.logger.Error("check parent pin failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify pin"})
		return
	}

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	flags, err := h.safetyServ.ListFlags(c.Request.Context(), claims.KidID, limit)
	if err != nil {
		h.logger.Error("list safety flags failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list safety flags"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"flags": flags})
}
