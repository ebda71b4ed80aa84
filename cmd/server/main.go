package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/lostfound-backend/internal/config"
	"github.com/ignatzorin/lostfound-backend/internal/db"
	httpHandlers "github.com/ignatzorin/lostfound-backend/internal/http/handlers"
	"github.com/ignatzorin/lostfound-backend/internal/http/middleware"
	httpRouter "github.com/ignatzorin/lostfound-backend/internal/http/router"
	"github.com/ignatzorin/lostfound-backend/internal/infrastructure/persistence"
	newHandler "github.com/ignatzorin/lostfound-backend/internal/interface/http/handler"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/internal/repository"
	"github.com/ignatzorin/lostfound-backend/internal/service"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/admin"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/chat"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/claim"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/dispatch"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/feedback"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/item"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/maintenance"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/match"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/media"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/partner"
	"github.com/ignatzorin/lostfound-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(logger.Options{Level: cfg.LogLevel, Text: cfg.Env == "development"})

	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL, cfg.DBPool)
	if err != nil {
		logger.Log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	applied, err := db.RunMigrations(ctx, dbConn, db.MigrationSource(cfg.MigrationsPath))
	if err != nil {
		logger.Log.Fatalf("main: ошибка миграций: %v", err)
	}
	if len(applied) > 0 {
		logger.Log.WithField("migrations", applied).Info("main: применены миграции")
	}

	images, mediaRoot, err := newImageStore(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("main: не удалось подготовить хранилище изображений: %v", err)
	}

	bus, err := newMessaging(cfg)
	if err != nil {
		logger.Log.Fatalf("main: не удалось подключиться к RabbitMQ: %v", err)
	}
	defer bus.close()

	matcher, err := newMatcher(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("main: не удалось создать клиент LLM: %v", err)
	}

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	otpRepo := repository.NewOTPRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	userDirectory := persistence.NewUserDirectoryAdapter(dbConn)
	itemRepo := persistence.NewItemRepositoryAdapter(dbConn)
	claimRepo := persistence.NewClaimRepositoryAdapter(dbConn)
	messageRepo := persistence.NewMessageRepositoryAdapter(dbConn)
	feedbackRepo := persistence.NewFeedbackRepositoryAdapter(dbConn)
	maintenanceRepo := persistence.NewMaintenanceRepositoryAdapter(dbConn)

	// Сервисы идентификации.
	cache := service.NewCacheService(ctx)
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	otpService := service.NewOTPService(otpRepo, bus.mailer, cfg.OTPTTL, cfg.OTPMaxAttempts)
	authService := service.NewAuthService(userRepo, otpService, tokenManager)
	userAdminService := service.NewUserAdminService(userRepo, cache)
	accountGuard := service.NewAccountGuard(userRepo, cache)
	notificationService := service.NewNotificationService(notificationRepo)

	hub := ws.NewHub()
	hub.SetNotificationSaver(notificationService)
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(ctx)
	}()

	dispatcher := dispatch.New(hub, bus.publisher, bus.mailer, userDirectory)

	// Сценарии.
	getMaintenanceUC := maintenance.NewGetMaintenanceUseCase(maintenanceRepo, cache, cfg.MaintenanceCacheTTL)

	itemHandler := newHandler.NewItemHandler(
		item.NewCreateItemUseCase(itemRepo, dispatcher),
		item.NewUpdateItemUseCase(itemRepo),
		item.NewGetItemUseCase(itemRepo),
		item.NewListItemsUseCase(itemRepo),
		item.NewDeleteItemUseCase(itemRepo, images),
	)
	claimHandler := newHandler.NewClaimHandler(
		claim.NewSubmitClaimUseCase(claimRepo, dispatcher),
		claim.NewAcceptClaimUseCase(claimRepo, dispatcher),
		claim.NewRejectClaimUseCase(claimRepo, dispatcher),
		claim.NewResolveClaimUseCase(claimRepo, userDirectory, dispatcher),
		claim.NewConfirmClaimUseCase(claimRepo, dispatcher),
		claim.NewGetClaimUseCase(claimRepo),
		claim.NewListItemClaimsUseCase(claimRepo, itemRepo),
		claim.NewListClaimsUseCase(claimRepo),
	)
	chatHandler := newHandler.NewChatHandler(
		chat.NewSendMessageUseCase(claimRepo, messageRepo, dispatcher),
		chat.NewListMessagesUseCase(claimRepo, messageRepo),
	)
	matchHandler := newHandler.NewMatchHandler(
		match.NewSuggestMatchesUseCase(itemRepo, matcher, cfg.AI.MaxCandidates, cfg.AI.DescriptionLimit),
		match.NewSearchMatchesUseCase(itemRepo, matcher, cfg.AI.MaxCandidates, cfg.AI.DescriptionLimit),
	)
	feedbackHandler := newHandler.NewFeedbackHandler(
		feedback.NewSubmitFeedbackUseCase(feedbackRepo, claimRepo),
		feedback.NewListFeedbackUseCase(feedbackRepo),
	)
	maintenanceHandler := newHandler.NewMaintenanceHandler(
		getMaintenanceUC,
		maintenance.NewSetMaintenanceUseCase(maintenanceRepo, cache),
	)
	dashboardHandler := newHandler.NewDashboardHandler(
		admin.NewStatsUseCase(userDirectory, itemRepo, claimRepo, feedbackRepo, cache),
		partner.NewDashboardUseCase(itemRepo, claimRepo),
	)
	mediaHandler := newHandler.NewMediaHandler(media.NewUploadImageUseCase(images, cfg.MaxUploadSizeMB))

	healthDeps := map[string]httpHandlers.HealthChecker{}
	if checker, ok := images.(httpHandlers.HealthChecker); ok {
		healthDeps["object_storage"] = checker
	}
	if bus.health != nil {
		healthDeps["rabbitmq"] = bus.health
	}

	engine := httpRouter.SetupRouter(cfg, httpRouter.Handlers{
		Auth:          httpHandlers.NewAuthHandler(authService),
		Notifications: httpHandlers.NewNotificationHandler(notificationService),
		WS:            httpHandlers.NewWSHandler(ctx, hub, tokenManager, accountGuard, middleware.NewOriginPolicy(cfg.AllowedOrigins)),
		Health:        httpHandlers.NewHealthHandler(dbConn, hub, healthDeps),
		AdminUsers:    httpHandlers.NewAdminUserHandler(userAdminService),
		Items:         itemHandler,
		Claims:        claimHandler,
		Chat:          chatHandler,
		Matches:       matchHandler,
		Feedback:      feedbackHandler,
		Maintenance:   maintenanceHandler,
		Dashboards:    dashboardHandler,
		Media:         mediaHandler,
	}, httpRouter.Deps{
		Tokens:      tokenManager,
		Accounts:    accountGuard,
		Maintenance: getMaintenanceUC,
		MediaRoot:   mediaRoot,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Завершаем сервер при получении сигнала.
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	}()

	logger.Log.WithField("port", cfg.HTTPPort).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}

	<-shutdownDone

	// Письма и события, поставленные обработчиками, уходят до закрытия брокера и базы.
	drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := dispatcher.Drain(drainCtx); err != nil {
		logger.Log.WithError(err).Warn("main: не все фоновые задачи завершились")
	}
	cancel()

	<-hubDone
	logger.Log.Info("main: сервер остановлен")
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.WithError(err).Error("main: ошибка закрытия базы")
	}
}
