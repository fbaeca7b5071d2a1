package utils

import "strings"

// NormalizePhone converts a South African phone number to E.164 format.
// "0821234567" becomes "+27821234567"; numbers already carrying a country
// code are passed through.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' || r == '+' {
			digits.WriteRune(r)
		}
	}
	clean := digits.String()

	switch {
	case strings.HasPrefix(clean, "+"):
		return clean
	case strings.HasPrefix(clean, "27"):
		return "+" + clean
	case strings.HasPrefix(clean, "0") && len(clean) == 10:
		return "+27" + clean[1:]
	default:
		return "+27" + clean
	}
}
