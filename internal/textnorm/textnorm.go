// Package textnorm holds the only text normalization rules used when
// descriptions, merchants and account names are compared.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	whitespace    = regexp.MustCompile(`\s+`)
	endingSuffix  = regexp.MustCompile(`\bending\s+(?:in\s+)?(?:x+|\*+|#)?(\d{4})\b`)
	shortNumber   = regexp.MustCompile(`\b\d{2,4}\b`)
	labelNoise    = regexp.MustCompile(`[^a-z0-9&' ]+`)
	accountNumber = regexp.MustCompile(`\b(?:x+|\*+|#)?\d{4}\b`)
	canonicalKey  = regexp.MustCompile(`^[a-z0-9&']+(?:-[a-z0-9&']+)*$`)
)

// noiseWords never identify an account on their own.
var noiseWords = map[string]bool{
	"transfer":   true,
	"added":      true,
	"from":       true,
	"to":         true,
	"payment":    true,
	"card":       true,
	"checking":   true,
	"savings":    true,
	"account":    true,
	"wallet":     true,
	"loan":       true,
	"auto":       true,
	"visa":       true,
	"mastercard": true,
	"amex":       true,
	"discover":   true,
}

// Basic lower-cases s, collapses whitespace and trims it.
func Basic(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(strings.ToLower(s), " "))
}

// Merchant normalizes a description into a cluster key: Basic plus removal
// of "ending NNNN" suffixes and 2-4 digit tokens such as dates or store ids.
func Merchant(s string) string {
	s = Basic(s)
	s = endingSuffix.ReplaceAllString(s, " ")
	s = shortNumber.ReplaceAllString(s, " ")
	return Basic(s)
}

// AccountLabel reduces a free-text account name to its identifying words.
func AccountLabel(s string) string {
	s = Basic(s)
	s = endingSuffix.ReplaceAllString(s, " ")
	s = accountNumber.ReplaceAllString(s, " ")
	s = labelNoise.ReplaceAllString(s, " ")

	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !noiseWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// AccountSuffix extracts the four digits of an "ending NNNN" token.
func AccountSuffix(s string) (string, bool) {
	m := endingSuffix.FindStringSubmatch(Basic(s))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// AccountKey derives a stable key for an account name: the identifying
// label, joined with the last four digits when the name carries them.
func AccountKey(s string) string {
	label := strings.ReplaceAll(AccountLabel(s), " ", "-")
	if suffix, ok := AccountSuffix(s); ok {
		if label == "" {
			return suffix
		}
		return label + "-" + suffix
	}
	return label
}

// NormalizeAccountKey returns s when it is already a derived key such as
// "ally-1111", and AccountKey(s) for free-text names.
func NormalizeAccountKey(s string) string {
	s = strings.TrimSpace(s)
	if canonicalKey.MatchString(s) {
		return s
	}
	return AccountKey(s)
}
