package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"smart-budgeter-backend/internal/models"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Expose DB if needed
func (r *TransactionRepository) DB() *gorm.DB {
	return r.db
}

func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// ExistsByFingerprint is the pre-insert dedup check. The unique index on
// (user_id, fingerprint) still backs it up under concurrent ingestion.
func (r *TransactionRepository) ExistsByFingerprint(ctx context.Context, userID uuid.UUID, fp string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ? AND fingerprint = ?", userID, fp).
		Count(&count).Error
	return count > 0, err
}

func (r *TransactionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).
		Preload("Category").Preload("MLCategory").
		First(&tx, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListDebitsByUser returns the user's debit transactions ordered by date
// ascending, the exact input the recurring pattern detector expects.
func (r *TransactionRepository) ListDebitsByUser(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, models.TypeDebit).
		Order("date ASC").
		Find(&txs).Error
	return txs, err
}

// MarkRecurring tags every transaction in a detected group.
func (r *TransactionRepository) MarkRecurring(ctx context.Context, ids []uuid.UUID, groupKey string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"is_recurring":    true,
			"recurring_group": groupKey,
		}).Error
}

// TransactionFilter carries the optional list filters.
type TransactionFilter struct {
	StartDate   *time.Time
	EndDate     *time.Time
	CategoryID  *uuid.UUID
	Type        models.TransactionType
	IsRecurring *bool
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
	Search      string
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter TransactionFilter) ([]models.Transaction, error) {
	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Category").Preload("MLCategory").
		Order("date DESC, created_at DESC")

	if filter.StartDate != nil {
		query = query.Where("date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", *filter.EndDate)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.IsRecurring != nil {
		query = query.Where("is_recurring = ?", *filter.IsRecurring)
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(description) LIKE ?", "%"+filter.Search+"%")
	}

	var txs []models.Transaction
	err := query.Find(&txs).Error
	return txs, err
}

// CountByUser is used by the summary endpoint alongside the aggregates.
func (r *TransactionRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

type CategoryTotal struct {
	Name  string          `json:"name"`
	Color string          `json:"color"`
	Total decimal.Decimal `json:"total"`
	Count int64           `json:"count"`
}

func (r *TransactionRepository) SumByType(ctx context.Context, userID uuid.UUID, txType models.TransactionType, start, end *time.Time) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ? AND type = ?", userID, txType)
	if start != nil {
		query = query.Where("date >= ?", *start)
	}
	if end != nil {
		query = query.Where("date <= ?", *end)
	}

	var row struct {
		Total decimal.Decimal
	}
	err := query.Select("COALESCE(SUM(amount), 0) AS total").Scan(&row).Error
	return row.Total, err
}

func (r *TransactionRepository) DebitTotalsByCategory(ctx context.Context, userID uuid.UUID, start, end *time.Time) ([]CategoryTotal, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND transactions.type = ?", userID, models.TypeDebit)
	if start != nil {
		query = query.Where("transactions.date >= ?", *start)
	}
	if end != nil {
		query = query.Where("transactions.date <= ?", *end)
	}

	var rows []CategoryTotal
	err := query.
		Select("categories.name AS name, categories.color AS color, COALESCE(SUM(transactions.amount), 0) AS total, COUNT(*) AS count").
		Group("categories.name, categories.color").
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}

// ListCategorizedByUser feeds user-confirmed labels into classifier training.
func (r *TransactionRepository) ListCategorizedByUser(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND category_id IS NOT NULL", userID).
		Preload("Category").
		Find(&txs).Error
	return txs, err
}
