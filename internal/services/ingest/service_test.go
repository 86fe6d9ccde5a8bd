package ingest

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"smart-budgeter-backend/internal/filestore"
	"smart-budgeter-backend/internal/jobs"
	"smart-budgeter-backend/internal/ml"
	"smart-budgeter-backend/internal/models"
	"smart-budgeter-backend/internal/repository"
)

// capturePublisher records published jobs instead of running them.
type capturePublisher struct {
	mu   sync.Mutex
	jobs []*jobs.Job
}

func (p *capturePublisher) Publish(ctx context.Context, job *jobs.Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, job)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) published() []*jobs.Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*jobs.Job(nil), p.jobs...)
}

// stubClassifier returns a fixed prediction, so confidence gating is
// testable without training a real model.
type stubClassifier struct {
	category   string
	confidence float64
}

func (s *stubClassifier) Train(descriptions, labels []string) (*ml.TrainResult, error) {
	return &ml.TrainResult{}, nil
}
func (s *stubClassifier) Predict(description string) (string, float64) {
	return s.category, s.confidence
}
func (s *stubClassifier) PredictBatch(descriptions []string) []ml.Prediction {
	out := make([]ml.Prediction, len(descriptions))
	for i := range out {
		out[i] = ml.Prediction{Category: s.category, Confidence: s.confidence}
	}
	return out
}
func (s *stubClassifier) Save() error         { return nil }
func (s *stubClassifier) Load() (bool, error) { return s.category != "", nil }

func (s *stubClassifier) FeatureImportance(category string, topN int) []ml.Feature { return nil }

type fixture struct {
	service   *Service
	db        *gorm.DB
	publisher *capturePublisher
	uploads   *repository.UploadRepository
}

func newFixture(t *testing.T, classifier ml.Classifier) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Transaction{},
		&models.StatementUpload{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	categoryRepo := repository.NewCategoryRepository(db)
	if err := categoryRepo.SeedSystemCategories(context.Background()); err != nil {
		t.Fatalf("seed categories: %v", err)
	}

	files, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("filestore: %v", err)
	}

	publisher := &capturePublisher{}
	uploads := repository.NewUploadRepository(db)
	service := NewService(
		uploads,
		repository.NewTransactionRepository(db),
		categoryRepo,
		repository.NewNotificationRepository(db),
		files,
		classifier,
		publisher,
		zerolog.Nop(),
	)
	return &fixture{service: service, db: db, publisher: publisher, uploads: uploads}
}

const sampleCSV = "Date,Description,Amount\n" +
	"2026-01-15,WHOLE FOODS MARKET,-85.30\n" +
	"2026-01-16,PAYROLL DEPOSIT,2500.00\n"

func TestCreateUploadDeduplicatesByContent(t *testing.T) {
	f := newFixture(t, &stubClassifier{})
	userID := uuid.New()
	ctx := context.Background()

	first, created, err := f.service.CreateUpload(ctx, userID, "jan.csv", models.FileTypeCSV, []byte(sampleCSV))
	if err != nil {
		t.Fatalf("CreateUpload: %v", err)
	}
	if !created {
		t.Fatal("first upload not reported as created")
	}
	if first.Status != models.UploadPending {
		t.Errorf("status = %s, want pending", first.Status)
	}

	second, created, err := f.service.CreateUpload(ctx, userID, "jan-again.csv", models.FileTypeCSV, []byte(sampleCSV))
	if err != nil {
		t.Fatalf("CreateUpload repeat: %v", err)
	}
	if created {
		t.Fatal("identical content reported as a new upload")
	}
	if second.ID != first.ID {
		t.Errorf("repeat returned upload %s, want existing %s", second.ID, first.ID)
	}

	// A different user uploading the same content gets their own upload.
	_, created, err = f.service.CreateUpload(ctx, uuid.New(), "jan.csv", models.FileTypeCSV, []byte(sampleCSV))
	if err != nil {
		t.Fatalf("CreateUpload other user: %v", err)
	}
	if !created {
		t.Fatal("other user's upload not created")
	}

	published := f.publisher.published()
	if len(published) != 2 {
		t.Fatalf("published %d jobs, want 2", len(published))
	}
	if published[0].Type != jobs.JobTypeProcessUpload || published[0].UploadID != first.ID {
		t.Errorf("first job = %+v", published[0])
	}
}

func TestProcessUploadEndToEnd(t *testing.T) {
	f := newFixture(t, &stubClassifier{category: "groceries", confidence: 0.85})
	userID := uuid.New()
	ctx := context.Background()

	upload, _, err := f.service.CreateUpload(ctx, userID, "jan.csv", models.FileTypeCSV, []byte(sampleCSV))
	if err != nil {
		t.Fatalf("CreateUpload: %v", err)
	}

	if err := f.service.ProcessUpload(ctx, upload.ID); err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}

	got, err := f.uploads.GetByID(ctx, upload.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.UploadCompleted {
		t.Fatalf("status = %s, want completed (error: %s)", got.Status, got.ErrorMessage)
	}
	if got.TransactionsCount != 2 {
		t.Errorf("transactions_count = %d, want 2", got.TransactionsCount)
	}
	if got.ProcessedAt == nil {
		t.Error("processed_at not set")
	}

	var txs []models.Transaction
	if err := f.db.Where("user_id = ?", userID).Order("date").Find(&txs).Error; err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("created %d transactions, want 2", len(txs))
	}
	if txs[0].Type != models.TypeDebit || txs[1].Type != models.TypeCredit {
		t.Errorf("types = %s, %s", txs[0].Type, txs[1].Type)
	}
	for _, tx := range txs {
		if tx.SourceUploadID == nil || *tx.SourceUploadID != upload.ID {
			t.Errorf("transaction %s not linked to upload", tx.ID)
		}
		if tx.Fingerprint == "" {
			t.Errorf("transaction %s has no fingerprint", tx.ID)
		}
	}

	// High confidence copies the suggestion into the confirmed category.
	if txs[0].MLCategoryID == nil || txs[0].CategoryID == nil {
		t.Error("high-confidence prediction not applied")
	}
	if txs[0].MLConfidence == nil || *txs[0].MLConfidence != 0.85 {
		t.Errorf("ml_confidence = %v", txs[0].MLConfidence)
	}

	var notifications int64
	f.db.Model(&models.Notification{}).Where("user_id = ?", userID).Count(&notifications)
	if notifications != 1 {
		t.Errorf("created %d notifications, want 1", notifications)
	}

	published := f.publisher.published()
	last := published[len(published)-1]
	if last.Type != jobs.JobTypeDetectRecurring || last.UserID != userID {
		t.Errorf("expected a detect_recurring job, got %+v", last)
	}
}

func TestProcessUploadIsIdempotent(t *testing.T) {
	f := newFixture(t, &stubClassifier{})
	userID := uuid.New()
	ctx := context.Background()

	upload, _, err := f.service.CreateUpload(ctx, userID, "jan.csv", models.FileTypeCSV, []byte(sampleCSV))
	if err != nil {
		t.Fatalf("CreateUpload: %v", err)
	}

	for run := 0; run < 2; run++ {
		if err := f.service.ProcessUpload(ctx, upload.ID); err != nil {
			t.Fatalf("ProcessUpload run %d: %v", run, err)
		}
	}

	var count int64
	f.db.Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&count)
	if count != 2 {
		t.Fatalf("transactions = %d after reprocessing, want 2", count)
	}
}

func TestProcessUploadSkipsAlreadyIngestedRows(t *testing.T) {
	f := newFixture(t, &stubClassifier{})
	userID := uuid.New()
	ctx := context.Background()

	first, _, err := f.service.CreateUpload(ctx, userID, "jan.csv", models.FileTypeCSV, []byte(sampleCSV))
	if err != nil {
		t.Fatalf("CreateUpload: %v", err)
	}
	if err := f.service.ProcessUpload(ctx, first.ID); err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}

	// A second statement repeats one row and adds one new row.
	overlap := "Date,Description,Amount\n" +
		"2026-01-16,PAYROLL DEPOSIT,2500.00\n" +
		"2026-01-20,COFFEE SHOP,-4.75\n"
	second, _, err := f.service.CreateUpload(ctx, userID, "feb.csv", models.FileTypeCSV, []byte(overlap))
	if err != nil {
		t.Fatalf("CreateUpload second: %v", err)
	}
	if err := f.service.ProcessUpload(ctx, second.ID); err != nil {
		t.Fatalf("ProcessUpload second: %v", err)
	}

	got, err := f.uploads.GetByID(ctx, second.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TransactionsCount != 1 {
		t.Errorf("second upload counted %d new transactions, want 1", got.TransactionsCount)
	}

	var count int64
	f.db.Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&count)
	if count != 3 {
		t.Fatalf("transactions = %d, want 3", count)
	}
}

func TestProcessUploadLowConfidenceLeavesCategoryUnset(t *testing.T) {
	f := newFixture(t, &stubClassifier{category: "groceries", confidence: 0.65})
	userID := uuid.New()
	ctx := context.Background()

	upload, _, err := f.service.CreateUpload(ctx, userID, "jan.csv", models.FileTypeCSV, []byte(sampleCSV))
	if err != nil {
		t.Fatalf("CreateUpload: %v", err)
	}
	if err := f.service.ProcessUpload(ctx, upload.ID); err != nil {
		t.Fatalf("ProcessUpload: %v", err)
	}

	var txs []models.Transaction
	if err := f.db.Where("user_id = ?", userID).Find(&txs).Error; err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	for _, tx := range txs {
		if tx.MLCategoryID == nil {
			t.Error("suggestion missing despite a prediction")
		}
		if tx.CategoryID != nil {
			t.Error("low-confidence prediction was auto-assigned")
		}
	}
}

func TestProcessUploadUnsupportedTypeFailsPermanently(t *testing.T) {
	f := newFixture(t, &stubClassifier{})
	userID := uuid.New()
	ctx := context.Background()

	upload := &models.StatementUpload{
		ID:               uuid.New(),
		UserID:           userID,
		StoredFile:       "whatever.xlsx",
		OriginalFilename: "jan.xlsx",
		FileType:         models.FileType("xlsx"),
		Status:           models.UploadPending,
		FileHash:         "deadbeef",
	}
	if err := f.uploads.Create(ctx, upload); err != nil {
		t.Fatalf("create upload: %v", err)
	}

	err := f.service.ProcessUpload(ctx, upload.ID)
	if err == nil {
		t.Fatal("ProcessUpload succeeded for an unsupported type")
	}
	if !jobs.IsPermanent(err) {
		t.Fatalf("err = %v, want a permanent error", err)
	}

	got, err := f.uploads.GetByID(ctx, upload.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.UploadFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
	if got.ErrorMessage == "" {
		t.Error("error_message not recorded")
	}
}

func TestProcessUploadMissingFileMarksFailedButRetryable(t *testing.T) {
	f := newFixture(t, &stubClassifier{})
	userID := uuid.New()
	ctx := context.Background()

	upload := &models.StatementUpload{
		ID:               uuid.New(),
		UserID:           userID,
		StoredFile:       "gone.csv",
		OriginalFilename: "jan.csv",
		FileType:         models.FileTypeCSV,
		Status:           models.UploadPending,
		FileHash:         "cafebabe",
	}
	if err := f.uploads.Create(ctx, upload); err != nil {
		t.Fatalf("create upload: %v", err)
	}

	err := f.service.ProcessUpload(ctx, upload.ID)
	if err == nil {
		t.Fatal("ProcessUpload succeeded with a missing file")
	}
	if jobs.IsPermanent(err) {
		t.Fatal("missing file should stay retryable")
	}

	got, err := f.uploads.GetByID(ctx, upload.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.UploadFailed {
		t.Errorf("status = %s, want failed", got.Status)
	}
}
