package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"kidpal/internal/domain"
	"kidpal/internal/service"
)

// PersonalityHandler mantiene dependencias para endpoints de personalidad.
type PersonalityHandler struct {
	logger   *zap.Logger
	persServ *service.PersonalityService
}

func NewPersonalityHandler(logger *zap.Logger, persServ *service.PersonalityService) *PersonalityHandler {
	return &PersonalityHandler{
		logger:   logger,
		persServ: persServ,
	}
}

// GetPersonality maneja GET /personality.
func (h *PersonalityHandler) GetPersonality(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	p, err := h.persServ.Get(c.Request.Context(), claims.KidID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "personality not found"})
			return
		}
		h.logger.Error("get personality failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get personality"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"personality": p})
}

// AdjustTraits maneja POST /personality/adjust.
func (h *PersonalityHandler) AdjustTraits(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Adjustments []struct {
			Trait string  `json:"trait" binding:"required"`
			Delta float64 `json:"delta"`
		} `json:"adjustments" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid adjust traits request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	deltas := make([]service.TraitDelta, 0, len(req.Adjustments))
	for _, a := range req.Adjustments {
		deltas = append(deltas, service.TraitDelta{
			Trait: domain.TraitName(a.Trait),
			Delta: a.Delta,
		})
	}

	result, err := h.persServ.AdjustTraits(c.Request.Context(), claims.KidID, deltas)
	if err != nil {
		h.logger.Error("adjust traits failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not adjust traits"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ResetTraits maneja POST /personality/reset.
func (h *PersonalityHandler) ResetTraits(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	traits, err := h.persServ.ResetTraits(c.Request.Context(), claims.KidID)
	if err != nil {
		h.logger.Error("reset traits failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reset traits"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"traits": traits})
}

// DescribePersonality maneja GET /personality/description.
func (h *PersonalityHandler) DescribePersonality(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	desc, err := h.persServ.Describe(c.Request.Context(), claims.KidID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "personality not found"})
			return
		}
		h.logger.Error("describe personality failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not describe personality"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"description": desc})
}
