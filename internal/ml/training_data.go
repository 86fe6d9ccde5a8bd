package ml

import (
	"fmt"
	"strings"
)

// seedSamples maps representative merchant strings to each of the system
// categories. It is deliberately small; augmentation below multiplies it
// into a usable bootstrap corpus.
var seedSamples = []struct {
	Description string
	Category    string
}{
	{"WALMART GROCERY", "groceries"},
	{"KROGER", "groceries"},
	{"WHOLE FOODS MARKET", "groceries"},
	{"TRADER JOES", "groceries"},
	{"SAFEWAY", "groceries"},
	{"COSTCO WHSE", "groceries"},
	{"TARGET", "shopping"},
	{"AMAZON.COM", "shopping"},
	{"BEST BUY", "shopping"},
	{"MACYS", "shopping"},
	{"NORDSTROM", "shopping"},
	{"MCDONALDS", "dining"},
	{"STARBUCKS", "dining"},
	{"CHIPOTLE", "dining"},
	{"SUBWAY", "dining"},
	{"DOMINOS PIZZA", "dining"},
	{"UBER EATS", "dining"},
	{"DOORDASH", "dining"},
	{"GRUBHUB", "dining"},
	{"SHELL OIL", "transportation"},
	{"CHEVRON", "transportation"},
	{"UBER TRIP", "transportation"},
	{"LYFT", "transportation"},
	{"PARKING", "transportation"},
	{"TOLL", "transportation"},
	{"ELECTRIC COMPANY", "utilities"},
	{"GAS COMPANY", "utilities"},
	{"WATER UTILITY", "utilities"},
	{"INTERNET PROVIDER", "utilities"},
	{"PHONE BILL", "utilities"},
	{"NETFLIX", "subscriptions"},
	{"SPOTIFY", "subscriptions"},
	{"HULU", "subscriptions"},
	{"AMAZON PRIME", "subscriptions"},
	{"DISNEY PLUS", "subscriptions"},
	{"GYM MEMBERSHIP", "subscriptions"},
	{"AMC THEATRES", "entertainment"},
	{"REGAL CINEMA", "entertainment"},
	{"CONCERT TICKETS", "entertainment"},
	{"TICKETMASTER", "entertainment"},
	{"CVS PHARMACY", "healthcare"},
	{"WALGREENS", "healthcare"},
	{"DOCTOR", "healthcare"},
	{"HOSPITAL", "healthcare"},
	{"DENTAL", "healthcare"},
	{"INSURANCE PREMIUM", "healthcare"},
	{"AIRLINE", "travel"},
	{"HOTEL", "travel"},
	{"AIRBNB", "travel"},
	{"EXPEDIA", "travel"},
	{"BOOKING.COM", "travel"},
	{"PAYCHECK", "income"},
	{"DIRECT DEPOSIT", "income"},
	{"SALARY", "income"},
	{"TAX REFUND", "income"},
	{"INTEREST PAYMENT", "income"},
	{"DIVIDEND", "income"},
	{"TRANSFER FROM", "transfer"},
	{"TRANSFER TO", "transfer"},
	{"VENMO", "transfer"},
	{"ZELLE", "transfer"},
	{"PAYPAL TRANSFER", "transfer"},
	{"ATM FEE", "fees"},
	{"OVERDRAFT FEE", "fees"},
	{"SERVICE CHARGE", "fees"},
	{"MONTHLY FEE", "fees"},
	{"LATE FEE", "fees"},
}

// SeedTrainingData returns the bundled bootstrap corpus. Each seed entry is
// mechanically augmented with the decorations banks put around merchant
// names, since raw statement descriptions rarely arrive clean.
func SeedTrainingData() (descriptions, categories []string) {
	for _, s := range seedSamples {
		variants := []string{
			s.Description,
			strings.ToLower(s.Description),
			"POS " + s.Description,
			"PURCHASE " + s.Description,
			"DEBIT " + s.Description,
			fmt.Sprintf("%s #1234", s.Description),
		}
		for _, v := range variants {
			descriptions = append(descriptions, v)
			categories = append(categories, s.Category)
		}
	}
	return descriptions, categories
}
