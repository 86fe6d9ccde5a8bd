package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeDebit  TransactionType = "debit"
	TypeCredit TransactionType = "credit"
)

// Transaction is a single ledger entry, created by statement ingestion or
// manual entry. Amount is always non-negative; the direction is carried by
// Type. Fingerprint is unique per user so re-ingesting the same statement
// cannot create duplicates.
type Transaction struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;index;uniqueIndex:ux_user_fingerprint" json:"user_id"`
	Date           time.Time       `gorm:"type:date;index" json:"date"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount"`
	Type           TransactionType `gorm:"size:10;index" json:"transaction_type"`
	CategoryID     *uuid.UUID      `gorm:"type:uuid" json:"category_id,omitempty"`
	Category       *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	MLCategoryID   *uuid.UUID      `gorm:"type:uuid" json:"ml_category_id,omitempty"`
	MLCategory     *Category       `gorm:"foreignKey:MLCategoryID" json:"ml_category,omitempty"`
	MLConfidence   *float64        `json:"ml_confidence,omitempty"`
	IsRecurring    bool            `gorm:"default:false" json:"is_recurring"`
	RecurringGroup *string         `gorm:"size:100;index" json:"recurring_group,omitempty"`
	Notes          string          `json:"notes"`
	SourceUploadID *uuid.UUID      `gorm:"type:uuid;index" json:"source_upload_id,omitempty"`
	Fingerprint    string          `gorm:"size:64;uniqueIndex:ux_user_fingerprint" json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
