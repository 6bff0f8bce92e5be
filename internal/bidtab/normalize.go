package bidtab

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	digitsOnly  = regexp.MustCompile(`\D`)
	codeCleanup = regexp.MustCompile(`[^\w\-]`)
)

// longDashes folds the unicode dash variants that show up in exported bid
// tabs into a plain hyphen.
var longDashes = []string{"—", "–", "‒", "‑", "−"}

// NormalizeItemCode rewrites a pay-item code into display form: an 8-digit
// code becomes NNN-NNNNN ("30608033" -> "306-08033"); anything else is
// uppercased with dash variants folded and stray characters stripped.
func NormalizeItemCode(s string) string {
	digits := digitsOnly.ReplaceAllString(s, "")
	if len(digits) == 8 {
		return digits[:3] + "-" + digits[3:]
	}

	out := strings.ToUpper(strings.TrimSpace(s))
	for _, dash := range longDashes {
		out = strings.ReplaceAll(out, dash, "-")
	}
	return codeCleanup.ReplaceAllString(out, "")
}

// NormalizeKey folds an item code or sheet name for matching: uppercase,
// with every non-alphanumeric rune removed. "105-06845", "105 06845" and
// "10506845" all normalize to "10506845". The fold is deterministic so the
// same raw spellings always aggregate together, and records carry it so
// matching is reproducible across runs.
func NormalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
