// Package textutil cleans pay-item text pulled from legacy workbooks before
// it lands in report cells.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// replacements maps the unicode punctuation that legacy estimating tools
// emit to ASCII-friendly equivalents.
var replacer = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'", "‛", "'",
	"“", `"`, "”", `"`, "„", `"`,
	"–", "-", "—", "-", "―", "-", "−", "-",
	"…", "...",
	" ", " ", " ", " ", " ", " ",
	"​", "", "⁠", "",
	"�", "?",
	"±", "+/-",
	"×", "x",
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

// asciiFold decomposes accented characters and strips the combining marks,
// so "Résumé" folds to "Resume" instead of being dropped outright.
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Options controls Sanitize behavior.
type Options struct {
	// ASCIIOnly folds accents and drops any rune that still isn't ASCII.
	ASCIIOnly bool
	// CollapseWhitespace folds runs of whitespace (including newlines) to a
	// single space. Useful for inline log messages and single-cell values.
	CollapseWhitespace bool
}

// Sanitize returns a cleaned version of s safe for legacy CSV/workbook
// viewers: known problem punctuation replaced, control characters removed
// (tab/newline/CR kept), then the optional folds from opts.
func Sanitize(s string, opts Options) string {
	out := replacer.Replace(s)
	out = controlChars.ReplaceAllString(out, "")

	if opts.CollapseWhitespace {
		out = strings.TrimSpace(multiSpace.ReplaceAllString(out, " "))
	}

	if opts.ASCIIOnly {
		if folded, _, err := transform.String(asciiFold, out); err == nil {
			out = folded
		}
		out = strings.Map(func(r rune) rune {
			if r > unicode.MaxASCII {
				return -1
			}
			return r
		}, out)
	}

	return out
}
