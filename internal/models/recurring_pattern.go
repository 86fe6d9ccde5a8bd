package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// RecurringPattern is a detected repeating charge, keyed on the user and the
// normalized description. Re-running detection upserts rather than duplicates.
type RecurringPattern struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID       `gorm:"type:uuid;index;uniqueIndex:ux_user_pattern" json:"user_id"`
	DescriptionPattern string          `gorm:"size:255;uniqueIndex:ux_user_pattern" json:"description_pattern"`
	MerchantName       string          `gorm:"size:255" json:"merchant_name"`
	AverageAmount      decimal.Decimal `gorm:"type:numeric(12,2)" json:"average_amount"`
	Frequency          Frequency       `gorm:"size:20" json:"frequency"`
	CategoryID         *uuid.UUID      `gorm:"type:uuid" json:"category_id,omitempty"`
	LastOccurrence     *time.Time      `gorm:"type:date" json:"last_occurrence,omitempty"`
	NextExpected       *time.Time      `gorm:"type:date" json:"next_expected,omitempty"`
	IsActive           bool            `gorm:"default:true" json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}
