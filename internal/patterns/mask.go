package patterns

import (
	"strings"
	"unicode"
)

// MaskFunc produces the format-preserving mask for one matched value.
// Every masker guarantees its output no longer matches the pattern that
// produced it, so re-running detection over redacted text is a no-op.
type MaskFunc func(value string) string

// datePlaceholder fully blanks date-like tokens.
const datePlaceholder = "**/**/****"

// minOpaqueLen is the shortest allowed asterisk run for opaque masks.
const minOpaqueLen = 5

// MaskIDLike masks national-ID-like tokens, keeping only the trailing two
// characters: "12345678Z" becomes "*****8Z".
func MaskIDLike(value string) string {
	runes := []rune(value)
	if len(runes) <= 2 {
		return strings.Repeat("*", minOpaqueLen)
	}
	return "*****" + string(runes[len(runes)-2:])
}

// MaskCardLike masks card-like tokens, keeping the last four digits and all
// separators: "4532 1234 5678 9010" becomes "**** **** **** 9010".
func MaskCardLike(value string) string {
	return maskDigitsKeepingLast(value, 4)
}

// MaskIBANLike keeps the two-letter country prefix and the last four
// characters: "ES9121000418450200051332" becomes "ES******************1332".
func MaskIBANLike(value string) string {
	runes := []rune(value)
	if len(runes) <= 6 {
		return strings.Repeat("*", minOpaqueLen)
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-6) + string(runes[len(runes)-4:])
}

// MaskEmailLike keeps the first character of the local part and the full
// domain: "juan.perez@empresa.es" becomes "j***@empresa.es".
func MaskEmailLike(value string) string {
	at := strings.IndexByte(value, '@')
	if at <= 0 {
		return MaskOpaque(value)
	}
	local := []rune(value[:at])
	return string(local[0]) + "***@" + value[at+1:]
}

// MaskPhoneLike masks all digits except the last three, keeping separators:
// "+34 612 345 678" becomes "+** *** *** 678".
func MaskPhoneLike(value string) string {
	return maskDigitsKeepingLast(value, 3)
}

// MaskDateLike blanks date-like tokens to a fixed placeholder.
func MaskDateLike(string) string {
	return datePlaceholder
}

// MaskOpaque replaces the value with a run of asterisks no shorter than
// five characters.
func MaskOpaque(value string) string {
	n := len([]rune(value))
	if n < minOpaqueLen {
		n = minOpaqueLen
	}
	return strings.Repeat("*", n)
}

// maskDigitsKeepingLast replaces every digit with '*' except the trailing
// keep digits. Non-digit characters (separators, '+') pass through, so the
// mask preserves the value's visual shape.
func maskDigitsKeepingLast(value string, keep int) string {
	runes := []rune(value)

	digits := 0
	for _, r := range runes {
		if unicode.IsDigit(r) {
			digits++
		}
	}

	seen := 0
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range runes {
		if !unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		seen++
		if seen > digits-keep {
			b.WriteRune(r)
		} else {
			b.WriteByte('*')
		}
	}
	return b.String()
}
