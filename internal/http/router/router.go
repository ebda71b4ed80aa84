package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-backend/internal/config"
	"github.com/ignatzorin/lostfound-backend/internal/http/handlers"
	"github.com/ignatzorin/lostfound-backend/internal/http/middleware"
	newHandler "github.com/ignatzorin/lostfound-backend/internal/interface/http/handler"
	"github.com/ignatzorin/lostfound-backend/internal/models"
	"github.com/ignatzorin/lostfound-backend/internal/service"
)

// Handlers набор хэндлеров обоих слоёв API.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Notifications *handlers.NotificationHandler
	WS            *handlers.WSHandler
	Health        *handlers.HealthHandler
	AdminUsers    *handlers.AdminUserHandler

	Items       *newHandler.ItemHandler
	Claims      *newHandler.ClaimHandler
	Chat        *newHandler.ChatHandler
	Matches     *newHandler.MatchHandler
	Feedback    *newHandler.FeedbackHandler
	Maintenance *newHandler.MaintenanceHandler
	Dashboards  *newHandler.DashboardHandler
	Media       *newHandler.MediaHandler
}

// Deps зависимости middleware.
type Deps struct {
	Tokens      *service.TokenManager
	Accounts    middleware.AccountChecker
	Maintenance middleware.MaintenanceReader
	// MediaRoot каталог локального хранилища; пусто, если изображения лежат в MinIO.
	MediaRoot string
}

func SetupRouter(cfg *config.Config, h Handlers, deps Deps) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(middleware.NewOriginPolicy(cfg.AllowedOrigins)))
	r.Use(middleware.MaintenanceMiddleware(deps.Maintenance, deps.Tokens))

	r.GET("/health", h.Health.Health)
	if deps.MediaRoot != "" {
		r.StaticFS("/media", http.Dir(deps.MediaRoot))
	}

	api := r.Group("/api")
	api.GET("/maintenance", h.Maintenance.GetMaintenance)
	api.GET("/ws", h.WS.Handle)

	authRequired := middleware.AuthMiddleware(deps.Tokens, deps.Accounts)
	optionalAuth := middleware.OptionalAuth(deps.Tokens)

	// Отправка кодов на почту ограничена строже остальных маршрутов входа.
	otpRateLimit := middleware.RateLimit("otp", 3, 10*time.Minute, middleware.KeyByIP)
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimit("auth", 5, cfg.RateLimitPeriod, middleware.KeyByIP))
	{
		authGroup.POST("/signup/code", otpRateLimit, h.Auth.RequestSignupCode)
		authGroup.POST("/password/code", otpRateLimit, h.Auth.RequestPasswordReset)
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", h.Auth.Logout)
		authGroup.POST("/password/reset", h.Auth.ResetPassword)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(authRequired)
	{
		protectedAuth.GET("/sessions", h.Auth.ListSessions)
		protectedAuth.DELETE("/sessions/:id", middleware.UUIDValidator("id"), h.Auth.DeleteSession)
	}

	// Публичный каталог
	api.GET("/items", h.Items.ListItems)
	api.GET("/items/:id", middleware.UUIDValidator("id"), h.Items.GetItem)

	// Подбор ходит в LLM, поэтому вошедшие пользователи ограничены по идентификатору.
	matchRateLimit := middleware.RateLimit("match", cfg.RateLimitLimit, cfg.RateLimitPeriod, middleware.KeyByUserOrIP)
	api.POST("/matches/search", optionalAuth, matchRateLimit, h.Matches.Search)

	protected := api.Group("/")
	protected.Use(authRequired)
	{
		protected.GET("/me", h.Auth.Me)

		protected.POST("/media/images", h.Media.UploadImage)

		protected.GET("/items/mine", h.Items.ListMyItems)
		protected.POST("/items", h.Items.CreateItem)
		protected.PUT("/items/:id", middleware.UUIDValidator("id"), h.Items.UpdateItem)
		protected.POST("/items/:id/matches", matchRateLimit, middleware.UUIDValidator("id"), h.Matches.SuggestForItem)
		protected.POST("/items/:id/claims", middleware.UUIDValidator("id"), h.Claims.SubmitClaim)
		protected.GET("/items/:id/claims", middleware.UUIDValidator("id"), h.Claims.ListItemClaims)

		protected.GET("/claims/mine", h.Claims.ListMyClaims)
		protected.GET("/claims/received", h.Claims.ListReceivedClaims)
		protected.GET("/claims/:id", middleware.UUIDValidator("id"), h.Claims.GetClaim)
		protected.POST("/claims/:id/accept", middleware.UUIDValidator("id"), h.Claims.AcceptClaim)
		protected.POST("/claims/:id/reject", middleware.UUIDValidator("id"), h.Claims.RejectClaim)
		protected.POST("/claims/:id/resolve", middleware.UUIDValidator("id"), h.Claims.ResolveClaim)
		protected.POST("/claims/:id/confirm", middleware.UUIDValidator("id"), h.Claims.ConfirmClaim)
		protected.GET("/claims/:id/messages", middleware.UUIDValidator("id"), h.Chat.ListMessages)
		protected.POST("/claims/:id/messages", middleware.UUIDValidator("id"), h.Chat.SendMessage)

		protected.POST("/feedback", h.Feedback.SubmitFeedback)

		protected.GET("/notifications", h.Notifications.ListNotifications)
		protected.GET("/notifications/unread-count", h.Notifications.CountUnread)
		protected.POST("/notifications/read-all", h.Notifications.MarkAllAsRead)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), h.Notifications.MarkAsRead)
	}

	partner := api.Group("/partner")
	partner.Use(authRequired, middleware.RequireRole(models.RolePartner))
	{
		partner.GET("/dashboard", h.Dashboards.PartnerDashboard)
		partner.GET("/items", h.Items.ListMyItems)
		partner.GET("/claims", h.Claims.ListReceivedClaims)
	}

	admin := api.Group("/admin")
	admin.Use(authRequired, middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/stats", h.Dashboards.AdminStats)

		admin.GET("/users", h.AdminUsers.ListUsers)
		admin.PATCH("/users/:id/status", middleware.UUIDValidator("id"), h.AdminUsers.ChangeStatus)
		admin.PATCH("/users/:id/role", middleware.UUIDValidator("id"), h.AdminUsers.ChangeRole)

		admin.GET("/items", h.Items.AdminListItems)
		admin.DELETE("/items/:id", middleware.UUIDValidator("id"), h.Items.AdminDeleteItem)
		admin.GET("/claims", h.Claims.AdminListClaims)
		admin.GET("/feedback", h.Feedback.AdminListFeedback)

		admin.PUT("/maintenance", h.Maintenance.SetMaintenance)
	}

	return r
}
