package validate

import (
	"regexp"
	"strings"
)

var (
	reID      = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reSection = regexp.MustCompile(`^[A-Z][A-Z_]{0,31}$`)
	reCond    = regexp.MustCompile(`^(MINT|NEAR_MINT|EXCELLENT|GOOD|LIGHT_PLAYED|PLAYED|POOR)$`)
)

// ID validates a simple resource identifier (listing/order/collection ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Qty validates a purchase quantity; orders above 99 units are rejected
// rather than clamped so callers never silently buy less than asked.
func Qty(n int) bool {
	return n >= 1 && n <= 99
}

// Delta validates a signed quantity delta for collection/deck adjustments.
func Delta(n int) bool {
	return n != 0 && n >= -99 && n <= 99
}

func Price(p float64) bool {
	return p >= 0 && p <= 1_000_000
}

// Condition validates card condition enums.
func Condition(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s, s != "" && reCond.MatchString(s)
}

// Section validates a deck section name (MAIN, SIDEBOARD, EXTRA, ...).
// Sections are canonical tokens; lowercase input is malformed, not
// normalized.
func Section(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reSection.MatchString(s)
}
