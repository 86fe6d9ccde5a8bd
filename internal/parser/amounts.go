package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencyReplacer = strings.NewReplacer("$", "", "€", "", "£", "", ",", "")

// ParseAmount cleans a raw amount cell and parses it as a decimal. Currency
// symbols and thousands separators are stripped, and accounting-style
// parenthesized negatives ("(123.45)") become "-123.45".
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(currencyReplacer.Replace(s))
	if s == "" {
		return decimal.Decimal{}, false
	}

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
