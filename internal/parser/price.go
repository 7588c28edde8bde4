package parser

import "strings"

// isPriceToken reports whether a token should be treated as a price
// candidate: it carries a currency symbol, or it is a bare number with a
// decimal part. Bare integers are deliberately not candidates; quantities,
// years and postcode-like tokens outnumber symbol-less integer prices in
// real vendor documents.
func isPriceToken(tok, symbols string) bool {
	if tok == "" {
		return false
	}
	if strings.ContainsAny(tok, symbols) {
		return strings.ContainsAny(tok, "0123456789")
	}
	dot := false
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
		case r == ',':
		case r == '.':
			dot = true
		default:
			return false
		}
	}
	return dot
}

// NormalizePrice strips currency symbols, spaces and thousands separators
// from a price token and returns the bare numeric string. The bool is false
// when the remainder is not a plain number with at most one decimal point;
// such tokens are treated as absent, never silently truncated.
func NormalizePrice(tok, symbols string) (string, bool) {
	var b strings.Builder
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == ',', r == ' ':
			// thousands separator / spacing noise
		case strings.ContainsRune(symbols, r):
			// currency marker
		default:
			return "", false
		}
	}
	s := b.String()
	if s == "" || strings.Count(s, ".") > 1 {
		return "", false
	}
	if !strings.ContainsAny(s, "0123456789") {
		return "", false
	}
	return s, true
}
