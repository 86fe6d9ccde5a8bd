package main

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"smart-budgeter-backend/internal/config"
	"smart-budgeter-backend/internal/filestore"
	"smart-budgeter-backend/internal/jobs"
	"smart-budgeter-backend/internal/logger"
	"smart-budgeter-backend/internal/ml"
	"smart-budgeter-backend/internal/models"
	"smart-budgeter-backend/internal/repository"
	"smart-budgeter-backend/internal/routes"
	"smart-budgeter-backend/internal/services/classify"
	"smart-budgeter-backend/internal/services/ingest"
	"smart-budgeter-backend/internal/services/recurring"
)

func main() {
	log := logger.New()

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, relying on system env")
	}

	cfg := config.Load()
	db := config.InitDB(cfg)

	if err := db.AutoMigrate(
		&models.Category{},
		&models.Transaction{},
		&models.StatementUpload{},
		&models.RecurringPattern{},
		&models.Notification{},
	); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	uploadRepo := repository.NewUploadRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	patternRepo := repository.NewPatternRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	ctx := context.Background()
	if err := categoryRepo.SeedSystemCategories(ctx); err != nil {
		log.Fatal().Err(err).Msg("category seeding failed")
	}

	files, err := filestore.New(cfg.FileStorePath)
	if err != nil {
		log.Fatal().Err(err).Msg("file store init failed")
	}

	classifier := ml.NewLinearClassifier(cfg.ModelPath)
	classifyService := classify.NewService(transactionRepo, classifier, cfg.ModelPath, log)
	if loaded, err := classifyService.EnsureLoaded(); err != nil {
		log.Warn().Err(err).Msg("saved classifier unusable, starting without one")
	} else if loaded {
		log.Info().Msg("classifier model loaded")
	}

	queue := jobs.NewQueue(256, cfg.WorkerCount, cfg.MaxAttempts, log)

	ingestService := ingest.NewService(
		uploadRepo, transactionRepo, categoryRepo, notificationRepo,
		files, classifier, queue, log,
	)
	detector := recurring.NewDetector(transactionRepo, patternRepo, log)

	if err := queue.Start(ctx, func(ctx context.Context, job *jobs.Job) error {
		switch job.Type {
		case jobs.JobTypeProcessUpload:
			return ingestService.ProcessUpload(ctx, job.UploadID)
		case jobs.JobTypeDetectRecurring:
			_, err := detector.Detect(ctx, job.UserID)
			return err
		default:
			log.Error().Str("type", string(job.Type)).Msg("unknown job type")
			return nil
		}
	}); err != nil {
		log.Fatal().Err(err).Msg("job queue start failed")
	}
	defer queue.Close()

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		DB:       db,
		Ingest:   ingestService,
		Detector: detector,
		Classify: classifyService,
	})

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
