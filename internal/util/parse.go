package util

import "strconv"

// ParseInt parses s, falling back to defaultValue on any parse failure.
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultValue
}

// ParsePositiveInt is ParseInt restricted to values >= 1.
func ParsePositiveInt(s string, defaultValue int) int {
	val := ParseInt(s, defaultValue)
	if val < 1 {
		return defaultValue
	}
	return val
}

// ParseBool treats "1", "t", "true" (any case) as true; everything else,
// including absence, is false.
func ParseBool(s string) bool {
	val, err := strconv.ParseBool(s)
	return err == nil && val
}
