package parser

import (
	"strings"
	"time"
)

// dateFormats is the fixed ordered list every date string is tried against.
// First successful parse wins.
var dateFormats = []string{
	"1/2/2006",
	"1/2/06",
	"2006-01-02",
	"2/1/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2-1-2006",
	"2006/01/02",
}

// ParseDate tries each known format in order and reports whether any
// matched. It never returns an error; an unparseable string is just "no
// match".
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
