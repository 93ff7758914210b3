package util

import (
	"strconv"
	"strings"
)

// TrimQuotes strips surrounding whitespace and double quotes, as sent in
// structured header values like Sec-CH-UA-Model: "SM-G991B".
func TrimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"`)
}

var priceReplacer = strings.NewReplacer("Rp", "", ".", "", ",", "", " ", "", "\u00a0", "")

// ParseRupiah parses strings like "Rp 1.234.567" or "2,500,000" into an
// integer amount. ok is false when nothing numeric is left.
func ParseRupiah(s string) (int64, bool) {
	cleaned := strings.TrimSpace(priceReplacer.Replace(s))
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Dedupe returns values in first-seen order without repeats.
func Dedupe[T comparable](values []T) []T {
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
