package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"smart-budgeter-backend/internal/models"
)

func TestCSVSignedAmountColumn(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Amount",
		"01/15/2026,WHOLE FOODS MARKET,-85.30",
		"01/16/2026,PAYROLL DEPOSIT,2500.00",
	}, "\n")

	p := &CSVParser{}
	txs, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("parsed %d transactions, want 2", len(txs))
	}

	if txs[0].Type != models.TypeDebit {
		t.Errorf("negative amount parsed as %s, want debit", txs[0].Type)
	}
	if !txs[0].Amount.Equal(decimal.RequireFromString("85.30")) {
		t.Errorf("amount = %s, want 85.30 (absolute value)", txs[0].Amount)
	}
	if txs[0].Description != "WHOLE FOODS MARKET" {
		t.Errorf("description = %q", txs[0].Description)
	}
	wantDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	if !txs[0].Date.Equal(wantDate) {
		t.Errorf("date = %s, want %s", txs[0].Date, wantDate)
	}

	if txs[1].Type != models.TypeCredit {
		t.Errorf("positive amount parsed as %s, want credit", txs[1].Type)
	}
}

func TestCSVSplitDebitCreditColumns(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Debit,Credit",
		"2026-01-15,GROCERY STORE,85.30,",
		"2026-01-16,SALARY,,2500.00",
		"2026-01-17,EMPTY ROW,,",
	}, "\n")

	p := &CSVParser{}
	txs, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("parsed %d transactions, want 2 (row without amounts skipped)", len(txs))
	}

	if txs[0].Type != models.TypeDebit || !txs[0].Amount.Equal(decimal.RequireFromString("85.30")) {
		t.Errorf("debit row parsed as %s %s", txs[0].Type, txs[0].Amount)
	}
	if txs[1].Type != models.TypeCredit || !txs[1].Amount.Equal(decimal.RequireFromString("2500.00")) {
		t.Errorf("credit row parsed as %s %s", txs[1].Type, txs[1].Amount)
	}
}

func TestCSVSignedAndSplitAreEquivalent(t *testing.T) {
	signed := strings.Join([]string{
		"Date,Description,Amount",
		"2026-02-01,COFFEE SHOP,-4.75",
	}, "\n")
	split := strings.Join([]string{
		"Date,Description,Debit,Credit",
		"2026-02-01,COFFEE SHOP,4.75,",
	}, "\n")

	p := &CSVParser{}
	a, err := p.Parse(strings.NewReader(signed))
	if err != nil {
		t.Fatalf("Parse signed: %v", err)
	}
	b, err := p.Parse(strings.NewReader(split))
	if err != nil {
		t.Fatalf("Parse split: %v", err)
	}
	if len(a) != 1 || len(b) != 1 {
		t.Fatalf("parsed %d and %d transactions, want 1 each", len(a), len(b))
	}
	if a[0].Type != b[0].Type || !a[0].Amount.Equal(b[0].Amount) || a[0].Description != b[0].Description {
		t.Errorf("signed and split layouts disagree: %+v vs %+v", a[0], b[0])
	}
}

func TestCSVHeaderSynonymsAndBOM(t *testing.T) {
	input := "\uFEFFPosted Date,Memo,Value\n" +
		"\"Jan 5, 2026\",\"RENT, JANUARY\",-1200.00\n"

	p := &CSVParser{}
	txs, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("parsed %d transactions, want 1", len(txs))
	}
	if txs[0].Description != "RENT, JANUARY" {
		t.Errorf("description = %q, want quoted cell preserved", txs[0].Description)
	}
	if txs[0].Date.Day() != 5 || txs[0].Date.Month() != time.January {
		t.Errorf("date = %s", txs[0].Date)
	}
}

func TestCSVSkipsMalformedRows(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Amount",
		"not-a-date,SOMETHING,10.00",
		"2026-01-15,,10.00",
		"2026-01-16,VALID ROW,10.00",
		"2026-01-17,BAD AMOUNT,abc",
	}, "\n")

	p := &CSVParser{}
	txs, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("parsed %d transactions, want only the valid row", len(txs))
	}
	if txs[0].Description != "VALID ROW" {
		t.Errorf("kept %q", txs[0].Description)
	}
}

func TestCSVEmptyFile(t *testing.T) {
	p := &CSVParser{}
	txs, err := p.Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("parsed %d transactions from empty input", len(txs))
	}
}

func TestCSVUnknownHeaders(t *testing.T) {
	input := strings.Join([]string{
		"Foo,Bar,Baz",
		"2026-01-15,SOMETHING,10.00",
	}, "\n")

	p := &CSVParser{}
	txs, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("parsed %d transactions without recognizable columns", len(txs))
	}
}

func TestCSVCurrencySymbolsAndParens(t *testing.T) {
	input := strings.Join([]string{
		"Date,Description,Amount",
		`2026-01-15,BIG PURCHASE,"$1,234.56"`,
		"2026-01-16,ACCOUNTING STYLE,(99.99)",
	}, "\n")

	p := &CSVParser{}
	txs, err := p.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("parsed %d transactions, want 2", len(txs))
	}
	if !txs[0].Amount.Equal(decimal.RequireFromString("1234.56")) || txs[0].Type != models.TypeCredit {
		t.Errorf("currency row = %s %s", txs[0].Type, txs[0].Amount)
	}
	if !txs[1].Amount.Equal(decimal.RequireFromString("99.99")) || txs[1].Type != models.TypeDebit {
		t.Errorf("parenthesized row = %s %s, want debit 99.99", txs[1].Type, txs[1].Amount)
	}
}
