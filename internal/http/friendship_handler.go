package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"kidpal/internal/service"
)

// FriendshipHandler mantiene dependencias para endpoints de amistad,
// eventos de subida de nivel y features desbloqueables.
type FriendshipHandler struct {
	logger      *zap.Logger
	persServ    *service.PersonalityService
	levelUpServ *service.LevelUpService
	gate        *service.FeatureGate
}

func NewFriendshipHandler(
	logger *zap.Logger,
	persServ *service.PersonalityService,
	levelUpServ *service.LevelUpService,
	gate *service.FeatureGate,
) *FriendshipHandler {
	return &FriendshipHandler{
		logger:      logger,
		persServ:    persServ,
		levelUpServ: levelUpServ,
		gate:        gate,
	}
}

// GetFriendship maneja GET /friendship.
func (h *FriendshipHandler) GetFriendship(c *gin.Context) {
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
		h.logger.Error("get friendship failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get friendship"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"friendship":        p.Friendship,
		"unlocked_features": h.gate.UnlockedFeatures(p.Friendship.Level),
	})
}

// ListPendingLevelUps maneja GET /friendship/levelups.
func (h *FriendshipHandler) ListPendingLevelUps(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	events, err := h.levelUpServ.Unacknowledged(c.Request.Context(), claims.KidID)
	if err != nil {
		h.logger.Error("list level up events failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list level up events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// GetCelebration maneja GET /friendship/celebration. Devuelve el evento
// pendiente mas antiguo, si lo hay.
func (h *FriendshipHandler) GetCelebration(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	event, show, err := h.levelUpServ.ShouldShowCelebration(c.Request.Context(), claims.KidID)
	if err != nil {
		h.logger.Error("get celebration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get celebration"})
		return
	}
	if !show {
		c.JSON(http.StatusOK, gin.H{"show": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"show": true, "event": event})
}

// AcknowledgeLevelUp maneja POST /friendship/levelups/:id/ack.
func (h *FriendshipHandler) AcknowledgeLevelUp(c *gin.Context) {
	if _, ok := GetAuthClaims(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	event, err := h.levelUpServ.Acknowledge(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrLevelUpEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "level up event not found"})
			return
		}
		h.logger.Error("acknowledge level up failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not acknowledge event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": event})
}

// AcknowledgeAllLevelUps maneja POST /friendship/levelups/ack-all.
func (h *FriendshipHandler) AcknowledgeAllLevelUps(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	events, err := h.levelUpServ.AcknowledgeAll(c.Request.Context(), claims.KidID)
	if err != nil {
		h.logger.Error("acknowledge all level ups failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not acknowledge events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// CheckFeature maneja GET /features/:id.
func (h *FriendshipHandler) CheckFeature(c *gin.Context) {
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
		h.logger.Error("check feature failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not check feature"})
		return
	}

	featureID := c.Param("id")
	unlocked, err := h.gate.IsUnlockedStrict(featureID, p.Friendship.Level)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown feature"})
		return
	}

	resp := gin.H{"feature": featureID, "unlocked": unlocked}
	if !unlocked {
		resp["message"] = h.gate.GateMessage(featureID, p.Friendship.Level)
		if required, ok := h.gate.RequiredLevel(featureID); ok {
			resp["required_level"] = required
		}
	}
	c.JSON(http.StatusOK, resp)
}
