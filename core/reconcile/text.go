package reconcile

import (
	"math"
	"strings"
	"unicode"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText folds width variants (NFKC), lowercases and removes all whitespace,
// so "保守費用（1月分）" and "保守費用 (1月分)" compare equal.
func NormalizeText(s string) string {
	s = strings.ToLower(norm.NFKC.String(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Similarity returns the similarity of two descriptions as a percentage in [0, 100],
// rounded to two decimals. It is the indel-normalized Levenshtein ratio over the
// normalized texts: 100 * (len(a)+len(b)-dist) / (len(a)+len(b)) with substitutions
// costing two edits. The measure is symmetric.
func Similarity(a, b string) float64 {
	ra := []rune(NormalizeText(a))
	rb := []rune(NormalizeText(b))
	if len(ra)+len(rb) == 0 {
		return 100
	}
	ratio := levenshtein.RatioForStrings(ra, rb, levenshtein.DefaultOptions)
	return math.Round(ratio*10000) / 100
}
