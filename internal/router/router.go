package router

import (
	"time"

	"vuka/config"
	"vuka/internal/catalog"
	"vuka/internal/domain"
	"vuka/internal/handler"
	"vuka/internal/middleware"
	"vuka/internal/repository"
	"vuka/internal/service"
	"vuka/pkg/gateway"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cat *catalog.Catalog) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Per-surface limiters: credential endpoints are the brute-force target,
	// webhooks burst on gateway redelivery, authed routes are keyed per user.
	authLimiter := middleware.NewRateLimiter(20, time.Minute)
	webhookLimiter := middleware.NewRateLimiter(300, time.Minute)
	userLimiter := middleware.NewRateLimiter(60, time.Minute)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Gateways
	gateways := map[string]gateway.Gateway{
		domain.GatewayFapshi: gateway.NewFapshiGateway(cfg.Fapshi.BaseURL, cfg.Fapshi.APIUser, cfg.Fapshi.APIKey),
		domain.GatewayLygos:  gateway.NewLygosGateway(cfg.Lygos.BaseURL, cfg.Lygos.APIKey, cfg.Lygos.ShopName, cfg.Lygos.SuccessURL, cfg.Lygos.FailureURL),
	}

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	affiliateSvc := service.NewAffiliateService(userRepo, cat)
	paymentSvc := service.NewPaymentService(userRepo, paymentRepo, cat, gateways, affiliateSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	paymentHandler := handler.NewPaymentHandler(cfg, paymentSvc)
	fapshiWebhookHandler := handler.NewFapshiWebhookHandler(paymentSvc)
	lygosWebhookHandler := handler.NewLygosWebhookHandler(paymentSvc)
	adminHandler := handler.NewAdminHandler(paymentSvc)
	affiliateHandler := handler.NewAffiliateHandler(affiliateSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		authGroup.Use(middleware.RateLimitByIP(authLimiter))
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		// Gateway callbacks are unauthenticated; gateways do not hold our tokens.
		webhooks := api.Group("/webhooks")
		webhooks.Use(middleware.RateLimitByIP(webhookLimiter))
		{
			webhooks.POST("/fapshi", fapshiWebhookHandler.Handle)
			webhooks.POST("/lygos", lygosWebhookHandler.Handle)
		}

		payments := api.Group("/payments")
		payments.Use(authMw, middleware.RateLimitByUser(userLimiter))
		{
			payments.POST("", paymentHandler.Initiate)
			payments.GET("/status/:transactionId", paymentHandler.Status)
			payments.GET("/history", paymentHandler.History)
		}

		affiliate := api.Group("/affiliate")
		affiliate.Use(authMw, middleware.RateLimitByUser(userLimiter))
		{
			affiliate.POST("/join", affiliateHandler.Join)
			affiliate.GET("/dashboard", affiliateHandler.Dashboard)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.POST("/payments/verify", adminHandler.VerifyTransaction)
			admin.POST("/payments/verify-fapshi", adminHandler.VerifyFapshi)
		}
	}

	return r
}
