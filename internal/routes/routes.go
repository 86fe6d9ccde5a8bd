package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	handler "smart-budgeter-backend/internal/handlers"
	"smart-budgeter-backend/internal/repository"
	"smart-budgeter-backend/internal/services/classify"
	"smart-budgeter-backend/internal/services/ingest"
	"smart-budgeter-backend/internal/services/recurring"
)

// Deps carries the services built in main; repositories are constructed
// here, the way handlers expect them.
type Deps struct {
	DB       *gorm.DB
	Ingest   *ingest.Service
	Detector *recurring.Detector
	Classify *classify.Service
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	uploadRepo := repository.NewUploadRepository(deps.DB)
	transactionRepo := repository.NewTransactionRepository(deps.DB)
	categoryRepo := repository.NewCategoryRepository(deps.DB)
	patternRepo := repository.NewPatternRepository(deps.DB)
	notificationRepo := repository.NewNotificationRepository(deps.DB)

	statementHandler := handler.NewStatementHandler(deps.Ingest, uploadRepo)
	transactionHandler := handler.NewTransactionHandler(transactionRepo, categoryRepo)
	recurringHandler := handler.NewRecurringHandler(deps.Detector, patternRepo)
	mlHandler := handler.NewMLHandler(deps.Classify)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authed := api.Group("", handler.RequireUser())

	statements := authed.Group("/statements")
	statements.POST("/upload", statementHandler.Upload)
	statements.GET("", statementHandler.List)
	statements.GET("/:id", statementHandler.Get)

	tx := authed.Group("/transactions")
	tx.GET("", transactionHandler.List)
	tx.POST("", transactionHandler.Create)
	tx.GET("/summary", transactionHandler.Summary)
	tx.GET("/:id", transactionHandler.Get)

	authed.GET("/categories", transactionHandler.Categories)

	rec := authed.Group("/recurring")
	rec.GET("", recurringHandler.List)
	rec.POST("/detect", recurringHandler.Detect)

	ml := authed.Group("/ml")
	ml.POST("/initialize", mlHandler.Initialize)
	ml.POST("/train", mlHandler.Train)
	ml.POST("/predict", mlHandler.Predict)
	ml.GET("/status", mlHandler.Status)
	ml.GET("/feature-importance", mlHandler.FeatureImportance)

	authed.GET("/notifications", notificationHandler.List)
}
