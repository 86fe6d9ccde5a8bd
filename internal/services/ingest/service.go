// Package ingest drives one uploaded statement through
// parse -> dedupe -> classify -> persist and owns the upload state machine.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"smart-budgeter-backend/internal/filestore"
	"smart-budgeter-backend/internal/fingerprint"
	"smart-budgeter-backend/internal/jobs"
	"smart-budgeter-backend/internal/ml"
	"smart-budgeter-backend/internal/models"
	"smart-budgeter-backend/internal/parser"
	"smart-budgeter-backend/internal/repository"
)

// autoAssignThreshold gates when a classifier suggestion is promoted into
// the confirmed category. Below it the suggestion is stored but the
// transaction stays uncategorized for manual review.
const autoAssignThreshold = 0.7

type Service struct {
	uploads       *repository.UploadRepository
	transactions  *repository.TransactionRepository
	categories    *repository.CategoryRepository
	notifications *repository.NotificationRepository
	files         *filestore.Store
	classifier    ml.Classifier
	publisher     jobs.Publisher
	log           zerolog.Logger
}

func NewService(
	uploads *repository.UploadRepository,
	transactions *repository.TransactionRepository,
	categories *repository.CategoryRepository,
	notifications *repository.NotificationRepository,
	files *filestore.Store,
	classifier ml.Classifier,
	publisher jobs.Publisher,
	log zerolog.Logger,
) *Service {
	return &Service{
		uploads:       uploads,
		transactions:  transactions,
		categories:    categories,
		notifications: notifications,
		files:         files,
		classifier:    classifier,
		publisher:     publisher,
		log:           log,
	}
}

// CreateUpload accepts a statement file: dedupes on content hash, stores the
// file, records the upload as pending and queues it for processing. The
// bool is false when the same content was already uploaded by this user, in
// which case the existing row is returned untouched.
func (s *Service) CreateUpload(ctx context.Context, userID uuid.UUID, filename string, fileType models.FileType, content []byte) (*models.StatementUpload, bool, error) {
	hash := fingerprint.File(content)

	existing, err := s.uploads.FindByUserAndHash(ctx, userID, hash)
	if err != nil {
		return nil, false, fmt.Errorf("hash lookup: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	stored, err := s.files.Save(filename, bytes.NewReader(content))
	if err != nil {
		return nil, false, fmt.Errorf("store statement file: %w", err)
	}

	upload := &models.StatementUpload{
		ID:               uuid.New(),
		UserID:           userID,
		StoredFile:       stored,
		OriginalFilename: filename,
		FileType:         fileType,
		Status:           models.UploadPending,
		FileHash:         hash,
	}
	if err := s.uploads.Create(ctx, upload); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Concurrent upload of the same content won; fetch its row.
			s.files.Delete(stored)
			existing, lookupErr := s.uploads.FindByUserAndHash(ctx, userID, hash)
			if lookupErr != nil || existing == nil {
				return nil, false, fmt.Errorf("create upload: %w", err)
			}
			return existing, false, nil
		}
		s.files.Delete(stored)
		return nil, false, fmt.Errorf("create upload: %w", err)
	}

	job := &jobs.Job{
		Type:     jobs.JobTypeProcessUpload,
		UserID:   userID,
		UploadID: upload.ID,
	}
	if err := s.publisher.Publish(ctx, job); err != nil {
		return nil, false, fmt.Errorf("queue upload: %w", err)
	}

	return upload, true, nil
}

// ProcessUpload runs the whole ingestion pipeline for one upload. It is the
// job handler body for process_upload jobs: safe to re-run, because every
// persisted transaction is guarded by its fingerprint.
func (s *Service) ProcessUpload(ctx context.Context, uploadID uuid.UUID) error {
	upload, err := s.uploads.GetByID(ctx, uploadID)
	if err != nil {
		return fmt.Errorf("load upload %s: %w", uploadID, err)
	}

	// A completed upload stays completed; re-delivery of the job is a no-op.
	if upload.Status == models.UploadCompleted {
		return nil
	}

	if err := s.uploads.SetStatus(ctx, upload.ID, models.UploadProcessing); err != nil {
		return fmt.Errorf("set processing: %w", err)
	}

	count, err := s.ingest(ctx, upload)
	if err != nil {
		if failErr := s.uploads.MarkFailed(ctx, upload.ID, err.Error()); failErr != nil {
			s.log.Error().Err(failErr).Stringer("upload_id", upload.ID).Msg("mark failed")
		}
		var unsupported parser.ErrUnsupportedFileType
		if errors.As(err, &unsupported) {
			// Retrying cannot change the file type.
			return jobs.Permanent(err)
		}
		return err
	}

	if err := s.uploads.MarkCompleted(ctx, upload.ID, count); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}

	s.log.Info().
		Stringer("upload_id", upload.ID).
		Int("transactions_created", count).
		Msg("statement processed")

	s.notifyProcessed(ctx, upload, count)
	s.queueDetection(ctx, upload.UserID)

	return nil
}

// ingest parses the stored file and persists each new transaction. The
// returned count excludes duplicates.
func (s *Service) ingest(ctx context.Context, upload *models.StatementUpload) (int, error) {
	p, err := parser.ForFileType(upload.FileType)
	if err != nil {
		return 0, err
	}

	f, err := s.files.Open(upload.StoredFile)
	if err != nil {
		return 0, fmt.Errorf("open statement file: %w", err)
	}
	defer f.Close()

	records, err := p.Parse(f)
	if err != nil {
		return 0, fmt.Errorf("parse statement: %w", err)
	}

	// Classifier is best-effort: no model just means no suggestions.
	classifierReady := false
	if loaded, err := s.classifier.Load(); err != nil {
		s.log.Warn().Err(err).Msg("classifier load failed, ingesting unclassified")
	} else {
		classifierReady = loaded
	}

	created := 0
	for _, record := range records {
		fp := fingerprint.Compute(upload.UserID, record.Date, record.Description, record.Amount, record.Type)

		exists, err := s.transactions.ExistsByFingerprint(ctx, upload.UserID, fp)
		if err != nil {
			return created, fmt.Errorf("dedup check: %w", err)
		}
		if exists {
			continue
		}

		tx := models.Transaction{
			ID:             uuid.New(),
			UserID:         upload.UserID,
			Date:           record.Date,
			Description:    record.Description,
			Amount:         record.Amount,
			Type:           record.Type,
			SourceUploadID: &upload.ID,
			Fingerprint:    fp,
		}

		if classifierReady {
			s.classify(ctx, &tx)
		}

		if err := s.transactions.Create(ctx, &tx); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost a race with a concurrent ingest of the same file;
				// the row exists, which is all we wanted.
				continue
			}
			return created, fmt.Errorf("create transaction: %w", err)
		}
		created++
	}

	return created, nil
}

// classify attaches the classifier's suggestion. It never fails ingestion:
// an unknown label or repository error just leaves the transaction
// unclassified.
func (s *Service) classify(ctx context.Context, tx *models.Transaction) {
	predicted, confidence := s.classifier.Predict(tx.Description)
	if predicted == "" {
		return
	}

	category, err := s.categories.GetSystemByName(ctx, predicted)
	if err != nil {
		s.log.Warn().Err(err).Str("category", predicted).Msg("category lookup failed")
		return
	}
	if category == nil {
		return
	}

	tx.MLCategoryID = &category.ID
	tx.MLConfidence = &confidence
	if confidence > autoAssignThreshold {
		tx.CategoryID = &category.ID
	}
}

// notifyProcessed records the statement_processed event for the external
// notification subsystem. Fire-and-forget.
func (s *Service) notifyProcessed(ctx context.Context, upload *models.StatementUpload, count int) {
	if count == 0 {
		return
	}

	metadata := datatypes.JSONMap{
		"upload_id":          upload.ID.String(),
		"filename":           upload.OriginalFilename,
		"transactions_count": count,
	}
	payload, _ := metadata.MarshalJSON()

	n := &models.Notification{
		ID:       uuid.New(),
		UserID:   upload.UserID,
		Type:     models.NotificationStatementProcessed,
		Title:    "Statement Processed",
		Message:  fmt.Sprintf("Your statement %q has been processed. %d transactions imported.", upload.OriginalFilename, count),
		Metadata: datatypes.JSON(payload),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.log.Warn().Err(err).Stringer("upload_id", upload.ID).Msg("notification create failed")
	}
}

func (s *Service) queueDetection(ctx context.Context, userID uuid.UUID) {
	job := &jobs.Job{
		Type:      jobs.JobTypeDetectRecurring,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, job); err != nil {
		s.log.Warn().Err(err).Stringer("user_id", userID).Msg("detection enqueue failed")
	}
}
