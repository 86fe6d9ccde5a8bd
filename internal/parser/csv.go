package parser

import (
	"encoding/csv"
	"io"
	"strings"

	"smart-budgeter-backend/internal/models"
)

// Column header synonyms, compared case-insensitively after trimming.
var (
	dateColumns   = []string{"date", "transaction_date", "posted_date", "transaction date", "posted date"}
	descColumns   = []string{"description", "memo", "name", "merchant"}
	amountColumns = []string{"amount", "value"}
	debitColumns  = []string{"debit", "withdrawal"}
	creditColumns = []string{"credit", "deposit"}
)

// CSVParser reads a statement exported as CSV with a header row. Columns are
// detected by matching header names against known synonym sets, so both a
// single signed Amount column and split Debit/Credit columns are supported.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader) ([]RawTransaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		// Empty or unreadable file yields no transactions.
		return nil, nil
	}
	// Strip a UTF-8 BOM from the first header cell if present.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	dateCol := findColumn(header, dateColumns)
	descCol := findColumn(header, descColumns)
	amountCol := findColumn(header, amountColumns)
	debitCol := findColumn(header, debitColumns)
	creditCol := findColumn(header, creditColumns)

	var transactions []RawTransaction

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // malformed row, skip
		}

		date, ok := ParseDate(field(record, dateCol))
		if !ok {
			continue
		}

		description := strings.TrimSpace(field(record, descCol))
		if description == "" {
			continue
		}

		tx := RawTransaction{Date: date, Description: description}

		switch {
		case amountCol >= 0 && strings.TrimSpace(field(record, amountCol)) != "":
			amount, ok := ParseAmount(field(record, amountCol))
			if !ok {
				continue
			}
			if amount.IsNegative() {
				tx.Type = models.TypeDebit
			} else {
				tx.Type = models.TypeCredit
			}
			tx.Amount = amount.Abs()

		case debitCol >= 0 && creditCol >= 0:
			debit, debitOK := ParseAmount(field(record, debitCol))
			credit, creditOK := ParseAmount(field(record, creditCol))
			if debitOK && !debit.IsZero() {
				tx.Amount = debit.Abs()
				tx.Type = models.TypeDebit
			} else if creditOK && !credit.IsZero() {
				tx.Amount = credit.Abs()
				tx.Type = models.TypeCredit
			} else {
				continue
			}

		default:
			continue
		}

		transactions = append(transactions, tx)
	}

	return transactions, nil
}

func findColumn(header []string, synonyms []string) int {
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		for _, candidate := range synonyms {
			if name == candidate {
				return i
			}
		}
	}
	return -1
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
