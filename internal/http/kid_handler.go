package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kidpal/internal/domain"
	"kidpal/internal/service"
)

// KidHandler mantiene dependencias para endpoints de cuentas y auth parental.
type KidHandler struct {
	logger  *zap.Logger
	kidServ *service.KidService
	jwtServ *service.JWTService
}

// NewKidHandler crea una instancia de KidHandler con dependencias necesarias.
func NewKidHandler(logger *zap.Logger, kidServ *service.KidService, jwtServ *service.JWTService) *KidHandler {
	return &KidHandler{
		logger:  logger,
		kidServ: kidServ,
		jwtServ: jwtServ,
	}
}

// CreateKid maneja POST /kids.
func (h *KidHandler) CreateKid(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Age         int    `json:"age" binding:"required"`
		ParentEmail string `json:"parent_email" binding:"required,email"`
		ParentPin   string `json:"parent_pin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create kid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	kid, err := h.kidServ.Register(c.Request.Context(), service.RegisterKidInput{
		Name:        req.Name,
		Age:         req.Age,
		ParentEmail: req.ParentEmail,
		ParentPin:   req.ParentPin,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidName) || errors.Is(err, service.ErrInvalidEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("create kid failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create kid"})
		return
	}

	tokens, err := h.issueTokens(c, kid)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"kid": kid, "tokens": tokens})
}

// RequestOTP maneja POST /auth/otp/request.
func (h *KidHandler) RequestOTP(c *gin.Context) {
	var req struct {
		KidID string `json:"kid_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	_, err := h.kidServ.RequestParentOTP(c.Request.Context(), req.KidID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrKidNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "kid not found"})
			return
		case errors.Is(err, service.ErrEmailSendFailure):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "email delivery unavailable"})
			return
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		default:
			h.logger.Error("request otp failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not request otp"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "otp_sent"})
}

// VerifyOTP maneja POST /auth/otp/verify.
func (h *KidHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		KidID string `json:"kid_id" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp verify request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	kid, err := h.kidServ.VerifyParentOTP(c.Request.Context(), req.KidID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrKidNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "kid not found"})
			return
		case errors.Is(err, service.ErrOTPNotRequested),
			errors.Is(err, service.ErrOTPExpired),
			errors.Is(err, service.ErrOTPInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		default:
			h.logger.Error("verify otp failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify otp"})
			return
		}
	}

	tokens, err := h.issueTokens(c, kid)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue tokens"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"kid": kid, "tokens": tokens})
}

// RefreshToken maneja POST /auth/refresh.
func (h *KidHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid refresh request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if h.jwtServ == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
		return
	}
	tokens, err := h.jwtServ.RefreshPair(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// Logout maneja POST /auth/logout.
func (h *KidHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid logout request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if h.jwtServ == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
		return
	}
	_ = h.jwtServ.RevokeRefresh(c.Request.Context(), req.RefreshToken)
	c.Status(http.StatusNoContent)
}

// DeleteKid maneja DELETE /kids/me. Requiere el PIN parental.
func (h *KidHandler) DeleteKid(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		ParentPin string `json:"parent_pin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid delete kid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.kidServ.CheckParentPin(c.Request.Context(), claims.KidID, req.ParentPin); err != nil {
		if errors.Is(err, service.ErrInvalidPin) {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid parent pin"})
			return
		}
		if errors.Is(err, service.ErrKidNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "kid not found"})
			return
		}
		h.logger.Error("check parent pin failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify pin"})
		return
	}

	if err := h.kidServ.Delete(c.Request.Context(), claims.KidID); err != nil {
		h.logger.Error("delete kid failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete kid"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *KidHandler) issueTokens(c *gin.Context, kid domain.Kid) (service.TokenPair, error) {
	if h.jwtServ == nil {
		return service.TokenPair{}, errors.New("jwt not configured")
	}
	return h.jwtServ.GeneratePair(c.Request.Context(), kid)
}
