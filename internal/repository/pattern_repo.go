package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smart-budgeter-backend/internal/models"
)

type PatternRepository struct {
	db *gorm.DB
}

func NewPatternRepository(db *gorm.DB) *PatternRepository {
	return &PatternRepository{db: db}
}

// Upsert creates or overwrites the pattern keyed on
// (user_id, description_pattern), so re-running detection updates in place.
func (r *PatternRepository) Upsert(ctx context.Context, pattern *models.RecurringPattern) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "description_pattern"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"merchant_name",
			"average_amount",
			"frequency",
			"category_id",
			"last_occurrence",
			"next_expected",
			"is_active",
			"updated_at",
		}),
	}).Create(pattern).Error
}

func (r *PatternRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.RecurringPattern, error) {
	var patterns []models.RecurringPattern
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&patterns).Error
	return patterns, err
}

func (r *PatternRepository) GetByUserAndKey(ctx context.Context, userID uuid.UUID, key string) (*models.RecurringPattern, error) {
	var pattern models.RecurringPattern
	if err := r.db.WithContext(ctx).First(&pattern, "user_id = ? AND description_pattern = ?", userID, key).Error; err != nil {
		return nil, err
	}
	return &pattern, nil
}
