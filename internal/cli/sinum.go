package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// parseSINum parses a positive integer with an optional SI suffix.
// "500k" is 500 000, "100M" is 100 000 000, "2G" is 2 000 000 000.
// Suffixes are case-sensitive except "k", which is accepted as "K" too.
func parseSINum(s string) (uint64, error) {
	mult := uint64(1)
	num := s
	switch {
	case strings.HasSuffix(s, "k"), strings.HasSuffix(s, "K"):
		mult = 1_000
		num = s[:len(s)-1]
	case strings.HasSuffix(s, "M"):
		mult = 1_000_000
		num = s[:len(s)-1]
	case strings.HasSuffix(s, "G"):
		mult = 1_000_000_000
		num = s[:len(s)-1]
	}

	n, err := strconv.ParseUint(num, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return n * mult, nil
}

// formatSINum renders n with the largest SI suffix that divides it evenly,
// so the value survives a parse round trip.
func formatSINum(n uint64) string {
	switch {
	case n >= 1_000_000_000 && n%1_000_000_000 == 0:
		return fmt.Sprintf("%dG", n/1_000_000_000)
	case n >= 1_000_000 && n%1_000_000 == 0:
		return fmt.Sprintf("%dM", n/1_000_000)
	case n >= 1_000 && n%1_000 == 0:
		return fmt.Sprintf("%dk", n/1_000)
	default:
		return strconv.FormatUint(n, 10)
	}
}
