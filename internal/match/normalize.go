package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName folds a header name for comparison.
// The normalization pipeline:
// 1. Unicode NFKC (full-width digits and letters become ASCII).
// 2. Case-fold to lower.
// 3. Trim and collapse inner whitespace to single spaces.
func NormalizeName(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)

	return strings.Join(strings.Fields(s), " ")
}

// Compact normalizes a name and strips separators, so "From Miles",
// "from_miles" and "FromMiles" all compact to "frommiles".
func Compact(s string) string {
	return stripSeparators(NormalizeName(s))
}

// tokenizeCamelCase splits a CamelCase or camelCase string into tokens.
// Examples:
//   - "FromMiles" -> ["From", "Miles"]
//   - "rateCost" -> ["rate", "Cost"]
//   - "IncScAmt" -> ["Inc", "Sc", "Amt"]
//   - "MSRPValue" -> ["MSRP", "Value"]
func tokenizeCamelCase(s string) []string {
	if s == "" {
		return nil
	}

	var tokens []string

	var current strings.Builder

	runes := []rune(s)
	for i := range runes {
		r := runes[i]

		// Handle separators - start a new token
		if isSeparator(r) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}

			continue
		}

		if i == 0 {
			current.WriteRune(r)

			continue
		}

		if shouldStartNewToken(runes, i) {
			if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		}

		current.WriteRune(r)
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isSeparator returns true if the rune is a common header separator.
func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' ' || r == '/' || r == '.'
}

// shouldStartNewToken determines if a new token should start at position i.
func shouldStartNewToken(runes []rune, i int) bool {
	r := runes[i]
	prevRune := runes[i-1]
	isUpper := unicode.IsUpper(r)
	isPrevUpper := unicode.IsUpper(prevRune)
	isPrevSep := isSeparator(prevRune)

	// Transition from lowercase to uppercase: start new token
	if isUpper && !isPrevUpper && !isPrevSep {
		return true
	}

	// End of acronym: "MSRPValue" -> "MSRP" + "Value", split before 'V'
	hasNextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
	if isUpper && isPrevUpper && hasNextLower {
		return true
	}

	return false
}

// stripSeparators removes common separators from a string.
func stripSeparators(s string) string {
	var result strings.Builder

	result.Grow(len(s))

	for _, r := range s {
		if !isSeparator(r) {
			result.WriteRune(r)
		}
	}

	return result.String()
}

// TokenizeName splits a header name into lowercase word tokens, honouring
// both separators and camel-case boundaries.
func TokenizeName(s string) []string {
	tokens := tokenizeCamelCase(norm.NFKC.String(s))
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}

	return tokens
}

// processTokens lowercases s, turns every non-alphanumeric rune into a
// space, and returns the resulting words.
func processTokens(s string) []string {
	s = strings.ToLower(norm.NFKC.String(s))

	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
