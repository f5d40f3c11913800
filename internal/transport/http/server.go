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

	"mingle/internal/cache"
	"mingle/internal/config"
	"mingle/internal/database"
	"mingle/internal/handler"
	"mingle/internal/queue"
	appredis "mingle/internal/redis"
	"mingle/internal/repository"
	"mingle/internal/service"
	"mingle/internal/worker"
)

// Run wires the whole application: config, Postgres, Redis, repositories,
// services, handlers, the feed worker pool and the HTTP server, then blocks
// until SIGINT/SIGTERM and shuts down in reverse order.
func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	redisClient, err := appredis.NewClient(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Println("Connected to Redis successfully")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// Redis-backed infrastructure
	feedCache := cache.NewFeedCache(redisClient.Client)
	publisher := queue.NewPublisher(redisClient.Client)
	consumer := queue.NewConsumer(redisClient.Client)

	// Services
	userService := service.NewUserService(userRepo, followRepo)
	followService := service.NewFollowService(followRepo, userRepo, notifRepo, db, publisher)
	postService := service.NewPostService(postRepo, userRepo, notifRepo, publisher, db)
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo, notifRepo, db)
	notificationService := service.NewNotificationService(notifRepo)
	feedService := service.NewFeedService(feedCache, postRepo, followRepo)

	mediaService, err := service.NewMediaService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create media service: %w", err)
	}

	// Feed fan-out workers
	workerHandler := worker.NewHandler(feedCache, followRepo, postRepo)
	managerCfg := worker.DefaultManagerConfig()
	managerCfg.WorkerCount = cfg.FeedWorkerCount
	manager := worker.NewManager(consumer, workerHandler, managerCfg)
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("failed to start feed workers: %w", err)
	}
	defer manager.Stop()

	// HTTP surface
	router := NewRouter(RouterConfig{
		UserHandler:         handler.NewUserHandler(userService),
		FollowHandler:       handler.NewFollowHandler(followService),
		PostHandler:         handler.NewPostHandler(postService),
		CommentHandler:      handler.NewCommentHandler(commentService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
		FeedHandler:         handler.NewFeedHandler(feedService),
		MediaHandler:        handler.NewMediaHandler(mediaService),
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

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		log.Printf("Received signal %v, shutting down...", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server stopped")
	return nil
}
