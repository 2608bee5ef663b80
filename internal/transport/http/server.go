package http

import (
	"context"
	"fmt"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pinboard/internal/cache"
	"pinboard/internal/config"
	"pinboard/internal/database"
	"pinboard/internal/handler"
	"pinboard/internal/queue"
	appredis "pinboard/internal/redis"
	"pinboard/internal/repository"
	"pinboard/internal/service"
	"pinboard/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// Run wires the whole application together and blocks until shutdown.
func Run() error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Connect to Database and run migrations
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// 3. Connect to Redis (feed cache + engagement stream)
	redisClient, err := appredis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	// 4. Repositories
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	pinRepo := repository.NewPinRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// 5. Queue + feed cache
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)
	feedCache := cache.NewFeedCache(redisClient.Client)

	// 6. Services
	authService := service.NewAuthService(refreshTokenRepo, cfg)
	userService := service.NewUserService(userRepo, followRepo, boardRepo, cfg.DefaultAvatarURL)
	followService := service.NewFollowService(followRepo, userRepo, publisher)
	pinService := service.NewPinService(pinRepo, userRepo, publisher)
	boardService := service.NewBoardService(boardRepo, userRepo, pinService)
	commentService := service.NewCommentService(commentRepo, pinRepo, userRepo, publisher)
	feedService := service.NewFeedService(feedCache, pinRepo, followRepo, pinService)
	notificationService := service.NewNotificationService(notificationRepo)

	// Media uploads are optional: the rest of the API works without R2
	// credentials, so a missing bucket only disables the upload routes.
	var mediaHandler *handler.MediaHandler
	mediaService, err := service.NewMediaService(context.Background(), cfg)
	if err != nil {
		log.Printf("[WARN] Media service disabled: %v", err)
	} else {
		mediaHandler = handler.NewMediaHandler(mediaService)
	}

	// 7. Stream workers (feed fan-out + notifications)
	workerHandler := worker.NewHandler(feedCache, followRepo, pinRepo)
	workerHandler.SetNotificationCreator(notificationRepo)

	workerCfg := worker.DefaultManagerConfig()
	if cfg.FeedWorkerCount > 0 {
		workerCfg.WorkerCount = cfg.FeedWorkerCount
	}
	manager := worker.NewManager(consumer, workerHandler, workerCfg)
	if err := manager.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start stream workers: %w", err)
	}
	defer manager.Stop()

	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go runTokenCleanup(cleanupCtx, refreshTokenRepo)

	// 8. HTTP layer
	router := NewRouter(RouterConfig{
		AuthHandler:         handler.NewAuthHandler(userService, authService),
		UserHandler:         handler.NewUserHandler(userService, authService),
		FollowHandler:       handler.NewFollowHandler(followService),
		FeedHandler:         handler.NewFeedHandler(feedService),
		PinHandler:          handler.NewPinHandler(pinService),
		BoardHandler:        handler.NewBoardHandler(boardService),
		CommentHandler:      handler.NewCommentHandler(commentService),
		MediaHandler:        mediaHandler,
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		JWTSecret:           cfg.JWTSecret,
	})

	server := &stdhttp.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Printf("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// runTokenCleanup periodically deletes refresh tokens that expired or were
// revoked long enough ago that reuse detection no longer needs them.
func runTokenCleanup(ctx context.Context, repo repository.RefreshTokenRepository) {
	const interval = 6 * time.Hour
	const retention = 24 * time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := repo.DeleteExpired(ctx, retention)
			if err != nil {
				log.Printf("[TokenCleanup] Failed: %v", err)
				continue
			}
			if deleted > 0 {
				log.Printf("[TokenCleanup] Deleted %d stale refresh tokens", deleted)
			}
		}
	}
}
