// Package utils holds small string helpers shared across packages.
package utils

import (
	"strings"
	"unicode/utf8"
)

// ContainsAny checks if s contains any of the substrings (case-insensitive).
func ContainsAny(s string, substrings ...string) bool {
	sLower := strings.ToLower(s)
	for _, sub := range substrings {
		if strings.Contains(sLower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// Mask hides a secret for display, keeping the first and last four characters.
// E.g., "sk-abcdef123456" -> "sk-a****3456"
func Mask(s string) string {
	if utf8.RuneCountInString(s) <= 8 {
		return "****"
	}
	r := []rune(s)
	return string(r[:4]) + "****" + string(r[len(r)-4:])
}
