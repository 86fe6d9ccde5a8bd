package models

import (
	"time"

	"github.com/google/uuid"
)

type FileType string

const (
	FileTypeCSV FileType = "csv"
	FileTypePDF FileType = "pdf"
)

type UploadStatus string

const (
	UploadPending    UploadStatus = "pending"
	UploadProcessing UploadStatus = "processing"
	UploadCompleted  UploadStatus = "completed"
	UploadFailed     UploadStatus = "failed"
)

// StatementUpload tracks one uploaded bank statement through the ingestion
// state machine: pending -> processing -> completed|failed. Failed uploads
// are kept for inspection and manual re-upload.
type StatementUpload struct {
	ID                uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID    `gorm:"type:uuid;index;uniqueIndex:ux_user_file_hash" json:"user_id"`
	StoredFile        string       `gorm:"size:255" json:"-"`
	OriginalFilename  string       `gorm:"size:255" json:"original_filename"`
	FileType          FileType     `gorm:"size:10" json:"file_type"`
	Status            UploadStatus `gorm:"size:20;default:pending;index" json:"status"`
	TransactionsCount int          `gorm:"default:0" json:"transactions_count"`
	ErrorMessage      string       `json:"error_message,omitempty"`
	FileHash          string       `gorm:"size:64;uniqueIndex:ux_user_file_hash" json:"-"`
	CreatedAt         time.Time    `json:"created_at"`
	ProcessedAt       *time.Time   `json:"processed_at,omitempty"`
}
