package strings

import "strings"

// SplitIfNotEmpty splits s by sep, or returns nil for the empty string.
// strings.Split would return [""] there, which query parsing never wants.
func SplitIfNotEmpty(s string, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}

// SupplySuffix appends suffix unless s carries it already.
func SupplySuffix(s string, suffix string) string {
	if strings.HasSuffix(s, suffix) {
		return s
	}
	return s + suffix
}
