package parser

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"smart-budgeter-backend/internal/models"
)

// Ordered date patterns: M/D/Y-like first, then ISO, then "Mon D, YYYY".
// First match on the line wins.
var lineDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`),
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
	regexp.MustCompile(`[A-Za-z]{3,9}\s+\d{1,2},?\s+\d{4}`),
}

var lineAmountPattern = regexp.MustCompile(`\$?[\d,]+\.?\d{0,2}`)

// creditKeywords mark a line as a credit; anything else is a debit.
var creditKeywords = []string{"deposit", "credit", "payment received"}

// PDFParser extracts transactions from statement PDFs line by line. There is
// no columnar structure to rely on, so each text row is scanned for a date
// and an amount; rows without both are not transactions.
type PDFParser struct{}

func (p *PDFParser) Parse(r io.Reader) ([]RawTransaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	doc, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	var transactions []RawTransaction

	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, line := range pageLines(page) {
			if tx, ok := extractTransactionFromLine(line); ok {
				transactions = append(transactions, tx)
			}
		}
	}

	return transactions, nil
}

// pageLines reassembles a page's text fragments into visual rows.
func pageLines(page pdf.Page) []string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return nil
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var b strings.Builder
		for _, word := range row.Content {
			b.WriteString(word.S)
		}
		if line := strings.TrimSpace(b.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// extractTransactionFromLine tries to read one transaction from a text line.
// The line must contain a recognizable date and at least one decimal amount;
// the last amount on the line is taken as the transaction amount, since a
// trailing running-balance column would otherwise be indistinguishable.
func extractTransactionFromLine(line string) (RawTransaction, bool) {
	var tx RawTransaction

	var found bool
	for _, pattern := range lineDatePatterns {
		if match := pattern.FindString(line); match != "" {
			if d, ok := ParseDate(match); ok {
				tx.Date = d
				found = true
				break
			}
		}
	}
	if !found {
		return RawTransaction{}, false
	}

	amounts := lineAmountPattern.FindAllString(line, -1)
	if len(amounts) == 0 {
		return RawTransaction{}, false
	}
	amount, ok := ParseAmount(amounts[len(amounts)-1])
	if !ok {
		return RawTransaction{}, false
	}
	tx.Amount = amount.Abs()

	description := line
	for _, pattern := range lineDatePatterns {
		description = pattern.ReplaceAllString(description, "")
	}
	description = lineAmountPattern.ReplaceAllString(description, "")
	description = strings.Join(strings.Fields(description), " ")
	if len(description) < 3 {
		return RawTransaction{}, false
	}
	tx.Description = description

	tx.Type = models.TypeDebit
	lower := strings.ToLower(line)
	for _, keyword := range creditKeywords {
		if strings.Contains(lower, keyword) {
			tx.Type = models.TypeCredit
			break
		}
	}

	return tx, true
}
