package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/iridescentding/memoq-tickets-system/internal/api/http"
	"github.com/iridescentding/memoq-tickets-system/internal/api/http/handlers"
	"github.com/iridescentding/memoq-tickets-system/internal/auth"
	"github.com/iridescentding/memoq-tickets-system/internal/config"
	"github.com/iridescentding/memoq-tickets-system/internal/events"
	"github.com/iridescentding/memoq-tickets-system/internal/notify"
	"github.com/iridescentding/memoq-tickets-system/internal/observability"
	"github.com/iridescentding/memoq-tickets-system/internal/persistence"
	"github.com/iridescentding/memoq-tickets-system/internal/repository"
	"github.com/iridescentding/memoq-tickets-system/internal/service"
	"github.com/iridescentding/memoq-tickets-system/internal/storage"
	"github.com/iridescentding/memoq-tickets-system/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	statusHistoryRepo := repository.NewStatusHistoryRepository(pool)
	transferHistoryRepo := repository.NewTransferHistoryRepository(pool)
	replyRepo := repository.NewReplyRepository(pool)
	ratingRepo := repository.NewRatingRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	companyRepo := repository.NewCompanyRepository(pool)
	ticketTypeRepo := repository.NewTicketTypeRepository(pool)
	templateRepo := repository.NewTemplateRepository(pool)
	notificationLogRepo := repository.NewNotificationLogRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	txManager := repository.NewTxManager(pool)

	storageBackend, err := storage.NewFromConfig(cfg.Storage)
	if err != nil {
		logger.Fatal("failed to init storage backend", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()

	notifyDispatcher := notify.NewDispatcher(
		templateRepo,
		notificationLogRepo,
		companyRepo,
		[]notify.Sender{
			notify.NewEmailSender(cfg.SMTP),
			notify.NewFeishuSender(),
			notify.NewWecomSender(),
			notify.NewGenericWebhookSender(),
		},
		logger,
		metrics,
		cfg.Notify.DefaultEmailRecipient,
	)
	notificationWorker := worker.NewNotificationWorker(
		notifyDispatcher,
		cfg.Notify.QueueSize,
		cfg.Notify.Concurrency,
		cfg.Notify.AttemptTimeout(),
		logger,
	)
	notificationWorker.Start()
	defer notificationWorker.Stop()

	notificationService := service.NewNotificationService(
		ticketRepo, userRepo, companyRepo, notificationWorker, logger, cfg.Notify.FrontendBaseURL)
	notificationService.Register(dispatcher)

	ticketService := service.NewTicketService(
		ticketRepo, statusHistoryRepo, transferHistoryRepo, replyRepo, ratingRepo,
		userRepo, companyRepo, ticketTypeRepo, txManager, dispatcher, logger)
	monitoringService := service.NewMonitoringService(
		ticketRepo, redis.Client, dispatcher, logger, cfg.Monitoring)

	tokenManager := auth.NewTokenManager(cfg.Auth)
	authService := service.NewAuthService(userRepo, tokenManager, cfg.Auth.BcryptCost)
	notificationAdmin := service.NewNotificationAdminService(templateRepo, notificationLogRepo, ticketRepo)
	attachmentService := service.NewAttachmentService(attachmentRepo, ticketRepo, storageBackend)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:         handlers.NewUsersHandler(authService),
		Tickets:       handlers.NewTicketsHandler(ticketService),
		Monitoring:    handlers.NewMonitoringHandler(monitoringService),
		Notifications: handlers.NewNotificationsHandler(notificationAdmin),
		Attachments:   handlers.NewAttachmentsHandler(attachmentService),
		Authenticate:  auth.Middleware(tokenManager, userRepo),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
