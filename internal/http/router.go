package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kidpal/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtServ *service.JWTService,
	kidH *KidHandler,
	chatH *ChatHandler,
	persH *PersonalityHandler,
	friendH *FriendshipHandler,
	safetyH *SafetyHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.POST("/kids", kidH.CreateKid)

	auth := r.Group("/auth")
	auth.POST("/otp/request", kidH.RequestOTP)
	auth.POST("/otp/verify", kidH.VerifyOTP)
	auth.POST("/refresh", kidH.RefreshToken)
	auth.POST("/logout", kidH.Logout)

	// Todo lo demas es por nino autenticado.
	protected := r.Group("/", JWTAuthMiddleware(jwtServ))
	protected.DELETE("/kids/me", kidH.DeleteKid)

	chat := protected.Group("/chat")
	chat.POST("/session", chatH.CreateSession)
	chat.POST("/message", chatH.PostMessage)

	pers := protected.Group("/personality")
	pers.GET("", persH.GetPersonality)
	pers.POST("/adjust", persH.AdjustTraits)
	pers.POST("/reset", persH.ResetTraits)
	pers.GET("/description", persH.DescribePersonality)

	friend := protected.Group("/friendship")
	friend.GET("", friendH.GetFriendship)
	friend.GET("/levelups", friendH.ListPendingLevelUps)
	friend.GET("/celebration", friendH.GetCelebration)
	friend.POST("/levelups/ack-all", friendH.AcknowledgeAllLevelUps)
	friend.POST("/levelups/:id/ack", friendH.AcknowledgeLevelUp)

	protected.GET("/features/:id", friendH.CheckFeature)
	protected.POST("/safety/flags", safetyH.ListFlags)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
