// Package patterns holds the fixed catalog of structural detectors, their
// format-preserving maskers and the keyword weight tables used by the
// classifier. All tables are process-wide, immutable and initialized once;
// thread safety follows from immutability.
package patterns

import (
	"regexp"
)

// Pattern type names recorded in detection results and audit events.
const (
	TypeDNI        = "dni"
	TypeNIE        = "nie"
	TypeNSS        = "nss"
	TypeTaxID      = "tax_id"
	TypeCreditCard = "credit_card"
	TypeIBAN       = "iban"
	TypeEmail      = "email"
	TypePhone      = "phone"
	TypeDate       = "date"
	TypeAPIKey     = "api_key"
	TypeAddress    = "street_address"
)

// Pattern pairs a regex detector with the masker for its data type.
type Pattern struct {
	Type   string
	Regexp *regexp.Regexp
	Masker MaskFunc
}

// library is ordered most-specific first: composite financial formats before
// plain digit runs, so sequential masking consumes card/IBAN digits before
// the shorter identity and phone patterns scan the working copy.
var library = []Pattern{
	{
		Type:   TypeCreditCard,
		Regexp: regexp.MustCompile(`\b\d{4}[\s\-]?\d{4}[\s\-]?\d{4}[\s\-]?\d{4}\b`),
		Masker: MaskCardLike,
	},
	{
		Type:   TypeIBAN,
		Regexp: regexp.MustCompile(`\b[A-Z]{2}\d{2}(?:\s?[A-Za-z0-9]{4}){4,7}(?:\s?[A-Za-z0-9]{1,2})?\b`),
		Masker: MaskIBANLike,
	},
	{
		Type:   TypeNSS,
		Regexp: regexp.MustCompile(`\b\d{2}[\s/\-]?\d{8}[\s/\-]?\d{2}\b`),
		Masker: MaskIDLike,
	},
	{
		Type:   TypeDNI,
		Regexp: regexp.MustCompile(`\b\d{8}[A-Za-z]\b`),
		Masker: MaskIDLike,
	},
	{
		Type:   TypeNIE,
		Regexp: regexp.MustCompile(`\b[XYZxyz]\d{7}[A-Za-z]\b`),
		Masker: MaskIDLike,
	},
	{
		Type:   TypeTaxID,
		Regexp: regexp.MustCompile(`\b[ABCDEFGHJNPQRSUVW]\d{7}[0-9A-J]\b`),
		Masker: MaskIDLike,
	},
	{
		Type:   TypeEmail,
		Regexp: regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`),
		Masker: MaskEmailLike,
	},
	{
		Type:   TypePhone,
		Regexp: regexp.MustCompile(`(?:\+34[\s.\-]?)?\b[6789]\d{2}[\s.\-]?\d{3}[\s.\-]?\d{3}\b`),
		Masker: MaskPhoneLike,
	},
	{
		Type:   TypeDate,
		Regexp: regexp.MustCompile(`\b\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}\b`),
		Masker: MaskDateLike,
	},
	{
		Type:   TypeAPIKey,
		Regexp: regexp.MustCompile(`\b(?:sk|rk|pk|ghp|glpat|xox[bp])[-_][A-Za-z0-9\-_]{16,}\b`),
		Masker: MaskOpaque,
	},
	{
		Type:   TypeAPIKey,
		Regexp: regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
		Masker: MaskOpaque,
	},
	{
		Type:   TypeAddress,
		Regexp: regexp.MustCompile(`(?i)\b(?:calle|avenida|avda\.?|plaza|paseo)\s+[\p{L}\s.]{2,40},?\s*(?:n[ºo°]?\s*)?\d{1,4}\b`),
		Masker: MaskOpaque,
	},
}

// Library returns the full structural pattern catalog.
// The returned slice must be treated as read-only.
func Library() []Pattern {
	return library
}

// CountMatches counts all structural matches across the whole catalog in a
// single raw scan. The classifier uses this for its density signal; it is
// deliberately independent of the detector's masking pass.
func CountMatches(text string) int {
	total := 0
	for _, p := range library {
		total += len(p.Regexp.FindAllStringIndex(text, -1))
	}
	return total
}
