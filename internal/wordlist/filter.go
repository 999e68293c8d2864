package wordlist

import (
	"strings"
	"unicode"
)

// FilterFunc returns true when an entry should be kept.
type FilterFunc func(string) bool

// NormalizeAbbreviation lowercases an entry and strips its trailing periods,
// so "Approx." and "approx" match the same token.
func NormalizeAbbreviation(entry string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(entry), "."))
}

// IsAbbreviation accepts normalized entries made only of letters.
func IsAbbreviation(entry string) bool {
	if entry == "" {
		return false
	}
	for _, r := range entry {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
