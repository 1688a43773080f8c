package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/missing-persons-service/internal/api/http"
	"github.com/spec-kit/missing-persons-service/internal/api/http/handlers"
	"github.com/spec-kit/missing-persons-service/internal/auth"
	"github.com/spec-kit/missing-persons-service/internal/config"
	"github.com/spec-kit/missing-persons-service/internal/events"
	"github.com/spec-kit/missing-persons-service/internal/observability"
	"github.com/spec-kit/missing-persons-service/internal/persistence"
	"github.com/spec-kit/missing-persons-service/internal/repository"
	"github.com/spec-kit/missing-persons-service/internal/repository/memstore"
	"github.com/spec-kit/missing-persons-service/internal/service"
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

	var (
		userRepo    repository.UserRepository
		personRepo  repository.PersonRepository
		storyRepo   repository.StoryRepository
		sessionRepo repository.SessionRepository

		pg  *persistence.Postgres
		rds *persistence.Redis
	)

	if cfg.Storage.Driver == config.StorageDriverMemory {
		logger.Info("using in-memory storage driver")
		store := memstore.New()
		userRepo = store.Users()
		personRepo = store.Persons()
		storyRepo = store.Stories()
		sessionRepo = store.Sessions()
	} else {
		pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}

		rds = persistence.NewRedis(cfg.Redis, logger)
		defer rds.Close()

		pool := pg.PoolHandle()
		userRepo = repository.NewUserRepository(pool)
		personRepo = repository.NewPersonRepository(pool)
		storyRepo = repository.NewStoryRepository(pool)
		sessionRepo = repository.NewSessionRepository(pool)
	}

	sessionMgr := auth.NewSessionManager(cfg.Auth, sessionRepo, rds.ClientHandle())
	tokenMgr := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	authMiddleware := auth.NewAuthMiddleware(sessionMgr, tokenMgr, userRepo)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(cfg.Auth, userRepo)
	personService := service.NewPersonService(personRepo, dispatcher, logger)
	storyService := service.NewStoryService(storyRepo, dispatcher)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rds),
		Users:          handlers.NewUsersHandler(authService, sessionMgr, tokenMgr),
		Persons:        handlers.NewPersonsHandler(personService),
		Stories:        handlers.NewStoriesHandler(storyService),
		Statistics:     handlers.NewStatisticsHandler(personService),
		AuthMiddleware: authMiddleware,
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
