package parser

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"smart-budgeter-backend/internal/models"
)

func TestExtractTransactionFromLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantOK   bool
		wantDesc string
		wantAmt  string
		wantType models.TransactionType
		wantDate time.Time
	}{
		{
			name:     "slash date debit",
			line:     "01/15/2026 NETFLIX.COM 15.49",
			wantOK:   true,
			wantDesc: "NETFLIX.COM",
			wantAmt:  "15.49",
			wantType: models.TypeDebit,
			wantDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "iso date with balance column",
			line:     "2026-01-15 GROCERY STORE 85.30 1,914.70",
			wantOK:   true,
			wantDesc: "GROCERY STORE",
			wantAmt:  "1914.70", // last amount on the line wins
			wantType: models.TypeDebit,
			wantDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "credit keyword",
			line:     "01/16/2026 DIRECT DEPOSIT PAYROLL $2,500.00",
			wantOK:   true,
			wantDesc: "DIRECT DEPOSIT PAYROLL",
			wantAmt:  "2500.00",
			wantType: models.TypeCredit,
			wantDate: time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "textual month date",
			line:     "Jan 5, 2026 RENT PAYMENT 1200.00",
			wantOK:   true,
			wantDesc: "RENT PAYMENT",
			wantAmt:  "1200.00",
			wantType: models.TypeDebit,
			wantDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "no date",
			line:   "TOTAL FEES 45.00",
			wantOK: false,
		},
		{
			name:   "no amount",
			line:   "01/15/2026 STATEMENT PERIOD",
			wantOK: false,
		},
		{
			name:   "description too short",
			line:   "01/15/2026 AB 10.00",
			wantOK: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tx, ok := extractTransactionFromLine(tc.line)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if tx.Description != tc.wantDesc {
				t.Errorf("description = %q, want %q", tx.Description, tc.wantDesc)
			}
			if !tx.Amount.Equal(decimal.RequireFromString(tc.wantAmt)) {
				t.Errorf("amount = %s, want %s", tx.Amount, tc.wantAmt)
			}
			if tx.Type != tc.wantType {
				t.Errorf("type = %s, want %s", tx.Type, tc.wantType)
			}
			if !tx.Date.Equal(tc.wantDate) {
				t.Errorf("date = %s, want %s", tx.Date, tc.wantDate)
			}
		})
	}
}

func TestParseDateFormats(t *testing.T) {
	cases := map[string]time.Time{
		"1/15/2026":        time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		"1/15/26":          time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		"2026-01-15":       time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		"Jan 15, 2026":     time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		"January 15, 2026": time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		"15-1-2026":        time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		"2026/01/15":       time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	for input, want := range cases {
		got, ok := ParseDate(input)
		if !ok {
			t.Errorf("ParseDate(%q) failed", input)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %s, want %s", input, got, want)
		}
	}

	for _, bad := range []string{"", "not a date", "13/45/2026", "2026-15-99"} {
		if _, ok := ParseDate(bad); ok {
			t.Errorf("ParseDate(%q) succeeded, want failure", bad)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"10":        "10",
		"10.50":     "10.50",
		"$1,234.56": "1234.56",
		"-85.30":    "-85.30",
		"(99.99)":   "-99.99",
		"$(123.45)": "-123.45",
		"€20.00":    "20.00",
	}
	for input, want := range cases {
		got, ok := ParseAmount(input)
		if !ok {
			t.Errorf("ParseAmount(%q) failed", input)
			continue
		}
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", input, got, want)
		}
	}

	for _, bad := range []string{"", "   ", "abc", "$"} {
		if _, ok := ParseAmount(bad); ok {
			t.Errorf("ParseAmount(%q) succeeded, want failure", bad)
		}
	}
}

func TestForFileType(t *testing.T) {
	if _, err := ForFileType(models.FileTypeCSV); err != nil {
		t.Errorf("csv: %v", err)
	}
	if _, err := ForFileType(models.FileTypePDF); err != nil {
		t.Errorf("pdf: %v", err)
	}

	_, err := ForFileType(models.FileType("xlsx"))
	if err == nil {
		t.Fatal("xlsx accepted, want ErrUnsupportedFileType")
	}
	var unsupported ErrUnsupportedFileType
	if !errors.As(err, &unsupported) {
		t.Fatalf("error type = %T", err)
	}
	if unsupported.FileType != models.FileType("xlsx") {
		t.Errorf("FileType = %s", unsupported.FileType)
	}
}
