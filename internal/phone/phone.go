// Package phone formats and normalizes WhatsApp numbers captured by the
// landing-page form. Both functions are pure string transforms; no carrier
// or locale lookup happens here.
package phone

import (
	"strconv"
	"strings"
)

// maxDigits is the E.164 ceiling.
const maxDigits = 15

// Normalize strips everything that is not a digit, keeping the country code
// when present. Normalizing an already-normalized value is a no-op.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Format applies a country-aware display mask to arbitrary keystrokes.
// Brazilian numbers (with or without the 55 country code) get the
// (DD) NNNNN-NNNN shape; everything else with at least 7 digits is grouped
// as +CC XXX XXX XXXX. Fewer than 7 digits are returned bare.
//
// Re-applying Format to its own output requires stripping to digits first;
// the masked string itself is not a fixed point.
func Format(raw string) string {
	digits := Normalize(raw)
	if len(digits) > maxDigits {
		digits = digits[:maxDigits]
	}

	switch {
	case strings.HasPrefix(digits, "55") && len(digits) >= 12 && len(digits) <= 13:
		return formatBrazilWithCode(digits)
	case !strings.HasPrefix(digits, "55") && len(digits) >= 10 && len(digits) <= 11:
		return formatBrazilNational(digits)
	case len(digits) >= 7:
		return formatInternational(digits)
	default:
		return digits
	}
}

// formatBrazilWithCode handles 55 + DDD + subscriber. 13 digits means a
// mobile number with the leading 9, split 5+4; 12 digits split 4+4.
func formatBrazilWithCode(digits string) string {
	countryCode := digits[:2]
	ddd := digits[2:4]
	rest := digits[4:]

	var first, second string
	if len(digits) == 13 {
		first, second = rest[:5], rest[5:9]
	} else {
		first, second = rest[:4], rest[4:8]
	}
	return "+" + countryCode + " (" + ddd + ") " + first + "-" + second
}

// formatBrazilNational handles DDD + subscriber without a country code.
func formatBrazilNational(digits string) string {
	ddd := digits[:2]

	var first, second string
	if len(digits) == 11 {
		first, second = digits[2:7], digits[7:11]
	} else {
		first, second = digits[2:6], digits[6:10]
	}
	return "(" + ddd + ") " + first + "-" + second
}

// formatInternational infers the country-code length from a fixed lookup and
// groups the remainder into runs of 3, 3 and 4 digits.
func formatInternational(digits string) string {
	ccLen := countryCodeLength(digits)
	countryCode := digits[:ccLen]
	number := digits[ccLen:]

	switch {
	case len(number) <= 3:
		return "+" + countryCode + " " + number
	case len(number) <= 6:
		return "+" + countryCode + " " + number[:3] + " " + number[3:]
	case len(number) <= 10:
		return "+" + countryCode + " " + number[:3] + " " + number[3:6] + " " + number[6:]
	default:
		return "+" + countryCode + " " + number[:3] + " " + number[3:6] + " " + number[6:10]
	}
}

func countryCodeLength(digits string) int {
	prefix2, _ := strconv.Atoi(digits[:2])
	prefix3, _ := strconv.Atoi(digits[:3])

	switch {
	case strings.HasPrefix(digits, "1"): // US/Canada
		return 1
	case strings.HasPrefix(digits, "44"): // UK
		return 2
	case strings.HasPrefix(digits, "351"), strings.HasPrefix(digits, "352"): // Portugal, Luxembourg
		return 3
	case prefix2 >= 30 && prefix2 <= 49: // most of Europe
		return 2
	case prefix3 >= 200:
		return 3
	default:
		return 1
	}
}
