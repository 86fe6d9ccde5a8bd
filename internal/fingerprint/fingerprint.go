// Package fingerprint computes the idempotency keys that make statement
// ingestion at-most-once per distinct transaction tuple.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smart-budgeter-backend/internal/models"
)

// Compute returns the SHA-256 hex digest of the transaction's identifying
// fields. Deterministic: the same (user, date, description, amount, type)
// always yields the same digest. The date is formatted as YYYY-MM-DD and the
// amount with exactly two decimal places so equivalent inputs normalize to
// the same string.
func Compute(userID uuid.UUID, date time.Time, description string, amount decimal.Decimal, txType models.TransactionType) string {
	input := strings.Join([]string{
		userID.String(),
		date.Format("2006-01-02"),
		description,
		amount.StringFixed(2),
		string(txType),
	}, ":")

	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// File returns the SHA-256 hex digest of raw file content, used to
// short-circuit duplicate uploads of the same statement.
func File(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
