package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/streamdir/internal/api/handler"
	"github.com/hszk-dev/streamdir/internal/api/middleware"
	"github.com/hszk-dev/streamdir/internal/config"
	"github.com/hszk-dev/streamdir/internal/infrastructure/cache"
	"github.com/hszk-dev/streamdir/internal/infrastructure/postgres"
	"github.com/hszk-dev/streamdir/internal/infrastructure/queue"
	"github.com/hszk-dev/streamdir/internal/infrastructure/storage"
	"github.com/hszk-dev/streamdir/internal/thumbnail"
	"github.com/hszk-dev/streamdir/internal/upstream"
	"github.com/hszk-dev/streamdir/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Thumbnail.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	// Infrastructure clients
	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis")

	storageClient, err := storage.NewClient(ctx, storage.ClientConfig{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to MinIO: %w", err)
	}
	logger.Info("connected to MinIO")

	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer queueClient.Close()
	logger.Info("connected to RabbitMQ")

	// Collaborator clients
	keyMatcher := upstream.NewHTTPKeyMatcher(cfg.Upstream.KeyMatchBaseURL, cfg.Upstream.Timeout)
	authorizer := upstream.NewHTTPAuthorizer(cfg.Upstream.AuthBaseURL, cfg.Upstream.Timeout)
	regionMatcher := upstream.NewHTTPRegionMatcher(cfg.Upstream.RegionMatchBaseURL, cfg.Upstream.Timeout)

	// Services
	streamRepo := postgres.NewStreamRepository(pgClient.Pool())
	streamCache := cache.NewRedisStreamCache(redisClient)

	admissionSvc := usecase.NewAdmissionService(streamRepo, keyMatcher, queueClient)
	directorySvc := usecase.NewCachedDirectoryService(
		usecase.NewDirectoryService(streamRepo, authorizer),
		streamCache,
		cfg.Cache.StreamTTL,
	)
	resolverSvc := usecase.NewResolverService(streamRepo, regionMatcher)

	capturer := thumbnail.NewFFmpegCapturer(thumbnail.FFmpegConfig{Width: cfg.Thumbnail.Width})
	thumbnailSvc := usecase.NewThumbnailService(streamRepo, capturer, storageClient, cfg.Thumbnail)

	r := setupRouter(logger, routerDeps{
		admission: handler.NewAdmissionHandler(admissionSvc),
		stream:    handler.NewStreamHandler(directorySvc, resolverSvc),
		thumbnail: handler.NewThumbnailHandler(thumbnailSvc),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

type routerDeps struct {
	admission *handler.AdmissionHandler
	stream    *handler.StreamHandler
	thumbnail *handler.ThumbnailHandler
}

func setupRouter(logger *slog.Logger, deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", handler.Health)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/ingest/start", deps.admission.Start)
		r.Post("/ingest/stop", deps.admission.Stop)

		r.Route("/streams/{creator}", func(r chi.Router) {
			r.Get("/", deps.stream.Get)
			r.Post("/", deps.stream.Update)
			r.Get("/info", deps.stream.Info)
			r.Get("/thumbnail", deps.thumbnail.Get)
			r.Post("/media-servers", deps.stream.AttachMediaServer)
			r.Delete("/media-servers/{ip}", deps.stream.DetachMediaServer)
		})

		r.Get("/categories/{category}/streams", deps.stream.List)
	})

	return r
}
