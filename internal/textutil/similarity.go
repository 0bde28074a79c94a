package textutil

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Tokenize lowercases text and splits it on every rune that is not a letter
// or a digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(Lower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Ratio returns the indel similarity of a and b in [0,100]:
// 2*LCS / (len(a)+len(b)), measured in runes and rounded.
func Ratio(a, b string) int {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	lcs := edlib.LCS(a, b)
	return int(math.Round(100 * float64(2*lcs) / float64(total)))
}

// TokenSetRatio scores a and b by their token sets. The shared tokens are
// compared against each side's full token list and the two full lists against
// each other; the best of the three ratios wins. A strict token subset scores
// 100. Either side without tokens scores 0.
func TokenSetRatio(a, b string) int {
	if a == b && a != "" {
		return 100
	}
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	var sect, onlyA, onlyB []string
	for token := range tokensA {
		if _, ok := tokensB[token]; ok {
			sect = append(sect, token)
		} else {
			onlyA = append(onlyA, token)
		}
	}
	for token := range tokensB {
		if _, ok := tokensA[token]; !ok {
			onlyB = append(onlyB, token)
		}
	}
	sort.Strings(sect)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	joinedSect := strings.Join(sect, " ")
	combinedA := strings.TrimSpace(joinedSect + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(joinedSect + " " + strings.Join(onlyB, " "))

	best := Ratio(combinedA, combinedB)
	if joinedSect != "" {
		best = max(best, Ratio(joinedSect, combinedA), Ratio(joinedSect, combinedB))
	}
	return best
}

func tokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}
