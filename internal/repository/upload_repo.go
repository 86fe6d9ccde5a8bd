package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smart-budgeter-backend/internal/models"
)

type UploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Create(ctx context.Context, upload *models.StatementUpload) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

func (r *UploadRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StatementUpload, error) {
	var upload models.StatementUpload
	if err := r.db.WithContext(ctx).First(&upload, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &upload, nil
}

func (r *UploadRepository) GetByUserAndID(ctx context.Context, userID, id uuid.UUID) (*models.StatementUpload, error) {
	var upload models.StatementUpload
	if err := r.db.WithContext(ctx).First(&upload, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &upload, nil
}

// FindByUserAndHash implements the duplicate-file short circuit: the same
// content uploaded again by the same user returns the existing row.
func (r *UploadRepository) FindByUserAndHash(ctx context.Context, userID uuid.UUID, fileHash string) (*models.StatementUpload, error) {
	var upload models.StatementUpload
	err := r.db.WithContext(ctx).First(&upload, "user_id = ? AND file_hash = ?", userID, fileHash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

func (r *UploadRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.StatementUpload, error) {
	var uploads []models.StatementUpload
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&uploads).Error
	return uploads, err
}

func (r *UploadRepository) SetStatus(ctx context.Context, id uuid.UUID, status models.UploadStatus) error {
	return r.db.WithContext(ctx).Model(&models.StatementUpload{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *UploadRepository) MarkCompleted(ctx context.Context, id uuid.UUID, transactionsCount int) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&models.StatementUpload{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":             models.UploadCompleted,
			"transactions_count": transactionsCount,
			"error_message":      "",
			"processed_at":       now,
		}).Error
}

func (r *UploadRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	return r.db.WithContext(ctx).Model(&models.StatementUpload{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.UploadFailed,
			"error_message": message,
		}).Error
}
