// Package parser converts raw statement files (CSV or PDF) into transaction
// records. Both strategies share the same contract: malformed lines are
// skipped, never escalated, and the whole file is consumed in one pass.
package parser

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"smart-budgeter-backend/internal/models"
)

// RawTransaction is one parsed statement line before persistence. Amount is
// always non-negative; the direction lives in Type.
type RawTransaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Type        models.TransactionType
}

// Parser is a single statement-format strategy.
type Parser interface {
	Parse(r io.Reader) ([]RawTransaction, error)
}

// ErrUnsupportedFileType is terminal for an upload: retrying cannot change
// the file type.
type ErrUnsupportedFileType struct {
	FileType models.FileType
}

func (e ErrUnsupportedFileType) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.FileType)
}

// ForFileType dispatches to the strategy for a declared file type.
func ForFileType(t models.FileType) (Parser, error) {
	switch t {
	case models.FileTypeCSV:
		return &CSVParser{}, nil
	case models.FileTypePDF:
		return &PDFParser{}, nil
	default:
		return nil, ErrUnsupportedFileType{FileType: t}
	}
}
