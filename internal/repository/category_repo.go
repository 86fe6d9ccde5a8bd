package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smart-budgeter-backend/internal/models"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// SeedSystemCategories inserts the fixed category vocabulary. Existing rows
// are left alone so re-running at every startup is harmless.
func (r *CategoryRepository) SeedSystemCategories(ctx context.Context) error {
	for _, c := range models.SystemCategories {
		category := models.Category{
			ID:       uuid.New(),
			Name:     c.Name,
			Icon:     c.Icon,
			Color:    c.Color,
			IsSystem: true,
		}
		err := r.db.WithContext(ctx).
			Where("name = ? AND is_system = ?", c.Name, true).
			Attrs(category).
			Clauses(clause.OnConflict{DoNothing: true}).
			FirstOrCreate(&models.Category{}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// GetSystemByName resolves a classifier label to its system category,
// case-insensitively. Unknown labels resolve to nil, not an error.
func (r *CategoryRepository) GetSystemByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		First(&category, "LOWER(name) = ? AND is_system = ?", strings.ToLower(name), true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) ListVisible(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("is_system = ? OR user_id = ?", true, userID).
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}
