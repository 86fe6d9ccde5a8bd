// Package recurring finds repeating charges by grouping debits on a
// normalized description and inspecting the gaps between occurrences.
package recurring

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"smart-budgeter-backend/internal/models"
	"smart-budgeter-backend/internal/repository"
)

// minGroupSize is the smallest group that can establish a cadence: no
// pattern without repetition.
const minGroupSize = 2

var (
	longDigitRuns = regexp.MustCompile(`\d{4,}`)
	refNumbers    = regexp.MustCompile(`#\d+`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// frequencyBand maps a mean gap in days onto a named cadence. Gaps outside
// every band mean the group is irregular, not recurring.
type frequencyBand struct {
	min, max  float64
	frequency models.Frequency
	interval  time.Duration
}

var frequencyBands = []frequencyBand{
	{5, 9, models.FrequencyWeekly, 7 * 24 * time.Hour},
	{12, 16, models.FrequencyBiweekly, 14 * 24 * time.Hour},
	{25, 35, models.FrequencyMonthly, 30 * 24 * time.Hour},
	{85, 100, models.FrequencyQuarterly, 91 * 24 * time.Hour},
	{350, 380, models.FrequencyYearly, 365 * 24 * time.Hour},
}

// NormalizeDescription reduces a statement description to a grouping key:
// lowercased, long digit runs and reference numbers stripped, whitespace
// collapsed, truncated to 50 characters. If stripping removes everything,
// the truncated lowercase original is the key.
func NormalizeDescription(description string) string {
	s := strings.ToLower(description)
	s = longDigitRuns.ReplaceAllString(s, "")
	s = refNumbers.ReplaceAllString(s, "")
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
	s = truncateRunes(s, 50)
	if s == "" {
		s = truncateRunes(strings.ToLower(description), 50)
	}
	return s
}

// truncateRunes caps s at n runes so a multi-byte description never
// gets cut mid-sequence.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// MerchantName guesses a display name from a normalized key: the first
// three tokens, title-cased.
func MerchantName(key string) string {
	tokens := strings.Fields(key)
	if len(tokens) > 3 {
		tokens = tokens[:3]
	}
	for i, t := range tokens {
		tokens[i] = titleToken(t)
	}
	return strings.Join(tokens, " ")
}

func titleToken(t string) string {
	r := []rune(t)
	for i := range r {
		if i == 0 || !unicode.IsLetter(r[i-1]) {
			r[i] = unicode.ToUpper(r[i])
		}
	}
	return string(r)
}

type Detector struct {
	transactions *repository.TransactionRepository
	patterns     *repository.PatternRepository
	log          zerolog.Logger
}

func NewDetector(transactions *repository.TransactionRepository, patterns *repository.PatternRepository, log zerolog.Logger) *Detector {
	return &Detector{transactions: transactions, patterns: patterns, log: log}
}

// Detect scans all of a user's debits and upserts one RecurringPattern per
// group whose cadence lands in a known band. It also tags the member
// transactions, so repeated runs converge instead of duplicating.
func (d *Detector) Detect(ctx context.Context, userID uuid.UUID) (int, error) {
	debits, err := d.transactions.ListDebitsByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	groups := make(map[string][]models.Transaction)
	for _, tx := range debits {
		key := NormalizeDescription(tx.Description)
		groups[key] = append(groups[key], tx)
	}

	detected := 0
	for key, members := range groups {
		pattern, ok := d.analyze(userID, key, members)
		if !ok {
			continue
		}

		if err := d.patterns.Upsert(ctx, pattern); err != nil {
			return detected, err
		}

		ids := make([]uuid.UUID, len(members))
		for i, tx := range members {
			ids[i] = tx.ID
		}
		if err := d.transactions.MarkRecurring(ctx, ids, key); err != nil {
			return detected, err
		}
		detected++
	}

	d.log.Info().
		Stringer("user_id", userID).
		Int("patterns", detected).
		Msg("recurring detection finished")

	return detected, nil
}

// analyze decides whether one description group recurs. Occurrences on the
// same calendar day collapse to one, so a pair of same-day charges cannot
// fake a cadence.
func (d *Detector) analyze(userID uuid.UUID, key string, members []models.Transaction) (*models.RecurringPattern, bool) {
	if len(members) < minGroupSize {
		return nil, false
	}

	seen := make(map[string]struct{})
	var dates []time.Time
	for _, tx := range members {
		day := tx.Date.Format("2006-01-02")
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		dates = append(dates, tx.Date)
	}
	// Same-day duplicates collapse to one occurrence; a single distinct day
	// has no gaps to measure.
	if len(dates) < 2 {
		return nil, false
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var totalGap float64
	for i := 1; i < len(dates); i++ {
		totalGap += dates[i].Sub(dates[i-1]).Hours() / 24
	}
	meanGap := totalGap / float64(len(dates)-1)

	band, ok := matchBand(meanGap)
	if !ok {
		return nil, false
	}

	sum := decimal.Zero
	for _, tx := range members {
		sum = sum.Add(tx.Amount)
	}
	average := sum.Div(decimal.NewFromInt(int64(len(members)))).Round(2)

	// Category carries over from the group's first transaction.
	categoryID := members[0].CategoryID

	last := dates[len(dates)-1]
	next := last.Add(band.interval)

	return &models.RecurringPattern{
		ID:                 uuid.New(),
		UserID:             userID,
		DescriptionPattern: key,
		MerchantName:       MerchantName(key),
		AverageAmount:      average,
		Frequency:          band.frequency,
		CategoryID:         categoryID,
		LastOccurrence:     &last,
		NextExpected:       &next,
		IsActive:           true,
	}, true
}

func matchBand(meanGap float64) (frequencyBand, bool) {
	for _, band := range frequencyBands {
		if meanGap >= band.min && meanGap <= band.max {
			return band, true
		}
	}
	return frequencyBand{}, false
}
