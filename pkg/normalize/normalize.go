// Package normalize canonicalizes raw athlete name strings into token
// sequences and produces the small fixed set of alternate token orderings
// the blocking index indexes against. Normalization is idempotent: running
// it over an already-normalized string is a no-op.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minTokenLen is the shortest token kept after splitting; single
// characters are almost always initials or stray marks.
const minTokenLen = 2

// folder strips combining diacritical marks so "Müller" and "MULLER"
// tokenize identically regardless of which sheet the name came from.
var folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func fold(s string) string {
	out, _, err := transform.String(folder, s)
	if err != nil {
		return s
	}
	return out
}

// Tokens canonicalizes a raw name: uppercase, diacritics folded,
// punctuation stripped, whitespace collapsed, split on spaces with tokens
// shorter than two characters discarded.
func Tokens(name string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToUpper(r)
		}
		return ' '
	}, fold(name))

	fields := strings.Fields(cleaned)
	tokens := fields[:0]
	for _, tok := range fields {
		if utf8.RuneCountInString(tok) >= minTokenLen {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// String returns the normalized form of a name as a single
// space-separated string.
func String(name string) string {
	return strings.Join(Tokens(name), " ")
}

// Variants returns the normalized name orderings to index a record under:
// the normalized form itself; for sources using "Last, First" comma
// ordering, the reversed "First Last" form; and for names of three or more
// tokens, one variant with the first token moved to the end and one with
// the last token moved to the front. The set is deliberately bounded (no
// full permutation) so blocking-index size stays predictable.
func Variants(name string) []string {
	seen := make(map[string]struct{}, 4)
	out := make([]string, 0, 4)
	add := func(v string) {
		if v == "" {
			return
		}
		if _, dup := seen[v]; dup {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	base := Tokens(name)
	add(strings.Join(base, " "))

	if before, after, found := strings.Cut(name, ","); found {
		add(String(after + " " + before))
	}

	if len(base) >= 3 {
		rotated := make([]string, 0, len(base))
		rotated = append(rotated, base[1:]...)
		rotated = append(rotated, base[0])
		add(strings.Join(rotated, " "))

		rotated = rotated[:0]
		rotated = append(rotated, base[len(base)-1])
		rotated = append(rotated, base[:len(base)-1]...)
		add(strings.Join(rotated, " "))
	}

	return out
}
