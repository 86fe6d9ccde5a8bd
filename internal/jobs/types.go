// Package jobs is the background task layer: an at-least-once queue whose
// handlers must be idempotent. Ingestion's fingerprint dedup and detection's
// upsert-by-key both rely on exactly that.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type JobType string

const (
	JobTypeProcessUpload   JobType = "process_upload"
	JobTypeDetectRecurring JobType = "detect_recurring"
)

// Job is one unit of background work. UploadID is set for process_upload
// jobs; UserID for detect_recurring (and for process_upload, as context).
type Job struct {
	ID          uuid.UUID `json:"id"`
	Type        JobType   `json:"type"`
	UserID      uuid.UUID `json:"user_id"`
	UploadID    uuid.UUID `json:"upload_id,omitempty"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
	CreatedAt   time.Time `json:"created_at"`
}

// Handler processes one job. Returning an error requeues the job until the
// attempt bound, unless the error is marked permanent.
type Handler func(ctx context.Context, job *Job) error

type Publisher interface {
	Publish(ctx context.Context, job *Job) error
	Close() error
}

type Consumer interface {
	Start(ctx context.Context, handler Handler) error
	Stop(ctx context.Context) error
}

// PermanentError wraps a failure that retrying cannot fix, e.g. an
// unsupported file type.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as not retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err is marked as not retryable.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
