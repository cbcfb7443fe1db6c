package domain

import "strings"

// MaskCard derives the display-safe form of a card number: non-digits are
// stripped and every digit but the last four is replaced with '*'.
// "4111 1111 1111 1234" becomes "************1234".
func MaskCard(raw string) string {
	var digits []byte
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			digits = append(digits, raw[i])
		}
	}
	if len(digits) <= 4 {
		return string(digits)
	}
	return strings.Repeat("*", len(digits)-4) + string(digits[len(digits)-4:])
}
