package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"kidpal/internal/config"
	"kidpal/internal/db"
	"kidpal/internal/email"
	apihttp "kidpal/internal/http"
	"kidpal/internal/llm"
	"kidpal/internal/repository"
	"kidpal/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	kidRepo := repository.NewPgKidRepository(pool)
	sessionRepo := repository.NewPgSessionRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)
	personalityRepo := repository.NewPgPersonalityRepository(pool)
	levelUpRepo := repository.NewPgLevelUpEventRepository(pool)
	safetyRepo := repository.NewPgSafetyFlagRepository(pool)
	memoryRepo := repository.NewPgMemoryRepository(pool)

	llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	chatWindow := time.Duration(cfg.ChatRateWindowMinutes) * time.Minute
	var (
		otpLimiter  service.RateLimiter
		chatLimiter service.RateLimiter = service.NewMemoryRateLimiter(chatWindow, cfg.ChatRateMax)
		tokenStore  service.RefreshTokenStore
		descCache   service.DescriptionCache = service.NewMemoryDescriptionCache()
		redisClient *redis.Client
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			otpLimiter = service.NewRedisRateLimiter(redisClient, "rate:otp:", 10*time.Minute, 3)
			chatLimiter = service.NewRedisRateLimiter(redisClient, "rate:chat:", chatWindow, cfg.ChatRateMax)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
			descCache = service.NewRedisDescriptionCache(redisClient)
		}
		cancel()
	}

	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	personalitySvc := service.NewPersonalityService(logger, personalityRepo, descCache)
	levelUpSvc := service.NewLevelUpService(logger, levelUpRepo)
	friendshipSvc := service.NewFriendshipService(logger, personalityRepo, levelUpSvc, descCache)
	safetySvc := service.NewSafetyService(logger, safetyRepo, kidRepo, emailSender)
	memorySvc := service.NewMemoryService(logger, llmClient, memoryRepo)
	featureGate := service.NewFeatureGate(logger)
	kidSvc := service.NewKidService(logger, kidRepo, personalitySvc, emailSender, otpLimiter)
	chatSvc := service.NewChatService(logger, llmClient, messageRepo, personalitySvc, friendshipSvc, safetySvc, featureGate, memorySvc)

	kidHandler := apihttp.NewKidHandler(logger, kidSvc, jwtSvc)
	chatHandler := apihttp.NewChatHandler(logger, sessionRepo, chatSvc, chatLimiter)
	persHandler := apihttp.NewPersonalityHandler(logger, personalitySvc)
	friendHandler := apihttp.NewFriendshipHandler(logger, personalitySvc, levelUpSvc, featureGate)
	safetyHandler := apihttp.NewSafetyHandler(logger, kidSvc, safetySvc)
	router := apihttp.NewRouter(logger, jwtSvc, kidHandler, chatHandler, persHandler, friendHandler, safetyHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
