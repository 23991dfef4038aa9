package http

import (
	"time"

	"hahu_backend/internal/config"
	"hahu_backend/internal/http/handlers"
	"hahu_backend/internal/http/middleware"
	"hahu_backend/internal/repository"
	"hahu_backend/internal/service"
	"hahu_backend/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// Deps bundles what the router needs. Redis may be nil.
type Deps struct {
	Store    repository.Store
	Services *service.Services
	Redis    *redis.Client
	Hub      *ws.Hub
	Config   *config.Config
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	middleware.UseRedis(d.Redis)

	r.Use(middleware.RequestID(), middleware.Metrics(), corsMiddleware(cfg.CORSAllowedOrigins))

	h := handlers.NewHandler(d.Store, d.Services)
	healthHandler := handlers.NewHealthHandler(d.Store, d.Redis, cfg.Version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(v1, h, d)

	// Live leaderboard
	r.GET("/ws/leaderboard", ws.HandleWS(d.Hub, cfg.CORSAllowedOrigins))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, d Deps) {
	cfg := d.Config
	authRL := middleware.RedisRateLimit(cfg.AuthRateLimit, cfg.AuthRateWindow)
	jwt := middleware.JWT()

	// Auth
	auth := api.Group("/auth", authRL)
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
	}

	// Profile and ledger
	api.GET("/me", jwt, h.Me)
	api.GET("/me/points", jwt, h.MyPoints)
	api.POST("/points/award", jwt, middleware.UserRateLimit("award", cfg.APIRateLimit, cfg.APIRateWindow), h.AwardPoints)

	// Referral system
	referral := api.Group("/referral", jwt)
	{
		referral.GET("/code", h.GetReferralCode)
		referral.GET("/stats", h.GetReferralStats)
		referral.POST("/apply", h.ApplyReferralCode)
	}

	api.GET("/leaderboard", h.GetLeaderboard)
	api.GET("/leaderboard/rank", jwt, h.GetMyRank)

	// Curriculum
	api.GET("/levels", h.ListLevels)
	api.GET("/curriculum", jwt, h.MyCurriculum)
	api.GET("/slides/:id", jwt, h.GetSlide)
	api.POST("/slides/:id/complete", jwt, h.CompleteSlide)

	// Payment collaborator callback
	api.POST("/payments/complete", jwt, middleware.PaymentToken(cfg.PaymentCallbackToken), h.CompletePayment)

	admin := api.Group("/admin", jwt, middleware.Admin(d.Store, cfg.AdminUsernames))
	{
		admin.POST("/levels", h.AdminCreateLevel)
		admin.POST("/levels/:id/modules", h.AdminCreateModule)
		admin.POST("/modules/:id/slides", h.AdminCreateSlide)
		admin.POST("/reconcile", h.AdminReconcile)
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader, middleware.PaymentTokenHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cc.AllowAllOrigins = true
		cc.AllowCredentials = false
	} else {
		cc.AllowOrigins = origins
	}
	return cors.New(cc)
}
