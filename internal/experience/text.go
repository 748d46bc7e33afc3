package experience

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	unsafeTokenChars = regexp.MustCompile(`[^a-z0-9-]+`)
	innPattern       = regexp.MustCompile(`\b\d{10}\b`)
)

// normalizeSpace collapses whitespace runs to one space and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate normalizes s and cuts it to at most limit runes, ending with
// an ellipsis when shortened.
func truncate(s string, limit int) string {
	s = normalizeSpace(s)
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return strings.TrimRightFunc(string(runes[:limit-1]), unicode.IsSpace) + "…"
}

// safeToken lower-cases s and replaces runs outside [a-z0-9-] with "-".
func safeToken(s, fallback string) string {
	token := strings.ToLower(normalizeSpace(s))
	token = unsafeTokenChars.ReplaceAllString(token, "-")
	token = strings.Trim(token, "-")
	if token == "" {
		return fallback
	}
	return token
}

// customerName is the first comma-separated segment of the customer field.
func customerName(customer string) string {
	name, _, _ := strings.Cut(customer, ",")
	if name = normalizeSpace(name); name != "" {
		return name
	}
	if customer = normalizeSpace(customer); customer != "" {
		return customer
	}
	return defaultCustomer
}

// extractINN finds the first ten-digit taxpayer number in customer.
func extractINN(customer string) string {
	if inn := innPattern.FindString(customer); inn != "" {
		return inn
	}
	return defaultINN
}

func containsAny(source string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(source, needle) {
			return true
		}
	}
	return false
}
