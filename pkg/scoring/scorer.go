// Package scoring computes the multi-signal match score between a query
// record and a candidate: name-token overlap (exact and near-miss),
// birthdate agreement including day/month transposition, and gender
// agreement. Scoring is pure; it never mutates the records it compares.
package scoring

import (
	"github.com/agnivade/levenshtein"

	"github.com/agentstation/poolmatch/pkg/athletes"
	"github.com/agentstation/poolmatch/pkg/normalize"
)

// Scoring weights and bounds. The fuzzy-pair rule only fires for tokens
// of at least four characters so that short tokens ("LI" vs "LE") never
// near-match.
const (
	// DefaultFloor is the acceptance floor a candidate's total score must
	// clear to stay in consideration.
	DefaultFloor = 3

	exactWordWeight = 2
	fuzzyWordWeight = 1
	birthdateWeight = 5
	genderBonus     = 1

	minFuzzyTokenLen = 4
	maxFuzzyDistance = 1

	// shortNameTokens is the query token-set size at or below which a
	// single combined word match is accepted with weight one instead of
	// being treated as insufficient.
	shortNameTokens = 2
)

// Signals records which evidence contributed to a score, surfaced in
// match results for review.
type Signals struct {
	ExactWords       int  `json:"exact_words" yaml:"exact_words"`
	FuzzyWords       int  `json:"fuzzy_words" yaml:"fuzzy_words"`
	BirthdateMatched bool `json:"birthdate_matched" yaml:"birthdate_matched"`
	Transposed       bool `json:"transposed" yaml:"transposed"`
	GenderMatched    bool `json:"gender_matched" yaml:"gender_matched"`
}

// Score is an accepted candidate's total score with its signal breakdown.
type Score struct {
	Total   int     `json:"total" yaml:"total"`
	Signals Signals `json:"signals" yaml:"signals"`
}

// Scorer scores query/candidate pairs against a configured acceptance
// floor. The zero value is not usable; construct with New.
type Scorer struct {
	floor int
}

// New returns a Scorer with the given acceptance floor. A floor of zero
// or below selects DefaultFloor.
func New(floor int) *Scorer {
	if floor <= 0 {
		floor = DefaultFloor
	}
	return &Scorer{floor: floor}
}

// Floor returns the configured acceptance floor.
func (s *Scorer) Floor() int {
	return s.floor
}

// Score computes the match score between a query record and a candidate.
// The second return is false when the candidate is structurally rejected:
// conflicting known genders, insufficient name evidence, or a total below
// the acceptance floor.
func (s *Scorer) Score(query, candidate *athletes.Athlete) (Score, bool) {
	// Gender gate: two known, differing genders cannot be one person.
	if query.Gender.Known() && candidate.Gender.Known() && query.Gender != candidate.Gender {
		return Score{}, false
	}

	queryTokens := tokenSet(query)
	candTokens := tokenSet(candidate)

	name, sig, ok := nameScore(queryTokens, candTokens)
	if !ok {
		return Score{}, false
	}

	total := name
	if matched, transposed := datesMatch(query.BirthDate, candidate.BirthDate); matched {
		total += birthdateWeight
		sig.BirthdateMatched = true
		sig.Transposed = transposed
	}
	if query.Gender.Known() && candidate.Gender.Known() {
		// The gate above already rejected mismatches.
		total += genderBonus
		sig.GenderMatched = true
	}

	if total < s.floor {
		return Score{}, false
	}
	return Score{Total: total, Signals: sig}, true
}

// tokenSet collects the distinct normalized tokens of a record's full
// name and decomposed parts, preserving first-seen order.
func tokenSet(a *athletes.Athlete) []string {
	tokens := normalize.Tokens(a.NameText())
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// nameScore computes the word contribution from two token sets: exact
// overlaps weighted two, fuzzy pairs weighted one, each token used in at
// most one fuzzy pairing. Fewer than two combined matches is insufficient
// evidence, except that a query of at most two tokens is accepted on a
// single match with weight one.
func nameScore(query, candidate []string) (int, Signals, bool) {
	var sig Signals

	candSet := make(map[string]struct{}, len(candidate))
	for _, tok := range candidate {
		candSet[tok] = struct{}{}
	}

	queryLeft := make([]string, 0, len(query))
	for _, tok := range query {
		if _, hit := candSet[tok]; hit {
			sig.ExactWords++
			delete(candSet, tok)
		} else {
			queryLeft = append(queryLeft, tok)
		}
	}
	candLeft := make([]string, 0, len(candSet))
	for _, tok := range candidate {
		if _, left := candSet[tok]; left {
			candLeft = append(candLeft, tok)
		}
	}

	used := make([]bool, len(candLeft))
	for _, q := range queryLeft {
		for i, c := range candLeft {
			if used[i] || !fuzzyEqual(q, c) {
				continue
			}
			used[i] = true
			sig.FuzzyWords++
			break
		}
	}

	matches := sig.ExactWords + sig.FuzzyWords
	if matches >= 2 {
		return sig.ExactWords*exactWordWeight + sig.FuzzyWords*fuzzyWordWeight, sig, true
	}
	if matches == 1 && len(query) <= shortNameTokens {
		return 1, sig, true
	}
	return 0, sig, false
}

// fuzzyEqual reports whether two tokens near-match: identical strings, or
// both at least four characters apart by at most one edit.
func fuzzyEqual(a, b string) bool {
	if a == b {
		return true
	}
	if len(a) < minFuzzyTokenLen || len(b) < minFuzzyTokenLen {
		return false
	}
	return levenshtein.ComputeDistance(a, b) <= maxFuzzyDistance
}

// datesMatch reports birthdate agreement between two records. Partial or
// missing dates contribute nothing either way. Dates also agree when they
// are equal after swapping day and month, but only when both swapped
// values are at most twelve; beyond that the sheets cannot have been
// day/month-ambiguous and the swap would be invention.
func datesMatch(a, b *athletes.Date) (matched, transposed bool) {
	if !a.Full() || !b.Full() {
		return false, false
	}
	if a.Equal(b) {
		return true, false
	}
	if a.Year == b.Year && a.Month == b.Day && a.Day == b.Month &&
		a.Month <= 12 && a.Day <= 12 {
		return true, true
	}
	return false, false
}
