package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/educonnect-api/internal/config"
	"github.com/noah-isme/educonnect-api/internal/database"
	"github.com/noah-isme/educonnect-api/internal/handler"
	"github.com/noah-isme/educonnect-api/internal/middleware"
	"github.com/noah-isme/educonnect-api/internal/repository"
	"github.com/noah-isme/educonnect-api/internal/router"
	"github.com/noah-isme/educonnect-api/internal/service"
	"github.com/noah-isme/educonnect-api/pkg/b2"
	cloud "github.com/noah-isme/educonnect-api/pkg/cloudinary"
	"github.com/noah-isme/educonnect-api/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	seeded, err := database.SeedUsers(context.Background(), db, cfg.SeedUsers)
	if err != nil {
		log.Fatalf("failed to seed users: %v", err)
	}
	if seeded > 0 {
		logger.Info().Int("count", seeded).Msg("seeded default accounts")
	}

	probes := map[string]handler.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		probes["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain()
	}

	blobs, err := newFileStorage(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("failed to initialise %s storage: %v", cfg.StorageBackend, err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	submissionRepo := repository.NewSubmissionRepository(db)
	paperRepo := repository.NewPaperRepository(db, submissionRepo)
	userRepo := repository.NewUserRepository(db, submissionRepo)
	activityRepo := repository.NewActivityLogRepository(db)

	events := service.NewEventPublisher(redisClient, natsConn, cfg.EventChannel, logger)
	activityService := service.NewActivityService(activityRepo, logger)
	uploadService := service.NewUploadService(blobs, cfg.UploadMaxSizeMB, logger)
	authService := service.NewAuthService(userRepo, validate, cfg.JWTSecret, cfg.JWTTTL, logger)
	paperService := service.NewPaperService(paperRepo, uploadService, validate, activityService, events, logger)
	submissionService := service.NewSubmissionService(submissionRepo, paperRepo, uploadService, activityService, events, logger)
	gradingService := service.NewGradingService(submissionRepo, activityService, events, logger)
	reportService := service.NewReportService(submissionRepo, paperRepo, userRepo, logger)
	dashboardService := service.NewDashboardService(paperRepo, submissionRepo, userRepo, logger)
	profileService := service.NewProfileService(userRepo, uploadService, authService, validate, activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxSizeMB*10 + 1) * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    cfg.AccessLog,
	})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		PaperHandler:      handler.NewPaperHandler(paperService, uploadService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, gradingService, reportService, logger),
		FileHandler:       handler.NewFileHandler(uploadService, logger),
		DashboardHandler:  handler.NewDashboardHandler(dashboardService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		ProfileHandler:    handler.NewProfileHandler(profileService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		LoginLimiter:      middleware.RateLimit("login", cfg.LoginRateLimit, time.Minute, logger),
		HealthProbes:      probes,
		EnableMetrics:     true,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, logger)
}

func newFileStorage(ctx context.Context, cfg config.Config, logger zerolog.Logger) (service.FileStorage, error) {
	switch cfg.StorageBackend {
	case config.StorageCloudinary:
		return cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
	case config.StorageB2:
		return b2.New(ctx, b2.Config{
			KeyID:  cfg.B2KeyID,
			AppKey: cfg.B2AppKey,
			Bucket: cfg.B2Bucket,
		}, logger)
	default:
		return storage.NewLocal(cfg.StorageLocalPath, logger)
	}
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
