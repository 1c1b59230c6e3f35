package middleware

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Input validation and sanitization utilities

var accountPattern = regexp.MustCompile(`^[a-zA-Z0-9._@-]{1,64}$`)

// ValidateAccountID validates caller account format (alphanumeric plus . _ @ -, max 64 chars)
func ValidateAccountID(account string) error {
	if account == "" {
		return fmt.Errorf("account ID cannot be empty")
	}
	if !accountPattern.MatchString(account) {
		return fmt.Errorf("invalid account ID format (alphanumeric, dot, dash, underscore, @ only, max 64 chars)")
	}
	return nil
}

// ValidateAnalysisID checks a path id. Demo keys are stored verbatim from
// caller input, so any non-empty string is a valid lookup key.
func ValidateAnalysisID(id string) error {
	if id == "" {
		return fmt.Errorf("analysis ID cannot be empty")
	}
	return nil
}

// ParseLimit parses a limit query parameter. Empty means def; negative or
// non-numeric values are rejected. Zero is a valid limit.
func ParseLimit(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit: %q", raw)
	}
	return n, nil
}
