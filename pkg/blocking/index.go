// Package blocking builds an inverted index over a pool of athlete
// records so that each incoming record is compared only against plausible
// candidates instead of the full cross product. A pair is guaranteed to be
// surfaced whenever it shares at least one meaningful name token or an
// exact birthdate.
package blocking

import (
	"sort"
	"strings"

	"github.com/agentstation/poolmatch/pkg/athletes"
	"github.com/agentstation/poolmatch/pkg/normalize"
)

// minIndexTokenLen keeps two-letter tokens out of the index; they block
// far more than they discriminate.
const minIndexTokenLen = 3

// Index maps normalized name tokens and exact birthdates to the record
// identifiers carrying them. An Index is built once per run from an
// immutable snapshot of the pool and is read-only afterwards; it is safe
// for concurrent lookups.
type Index struct {
	tokens map[string]map[int64]struct{}
	dates  map[string]map[int64]struct{}
	size   int
}

// New returns an empty index.
func New() *Index {
	return &Index{
		tokens: make(map[string]map[int64]struct{}),
		dates:  make(map[string]map[int64]struct{}),
	}
}

// FromRecords builds an index over a record collection.
func FromRecords(records []athletes.Athlete) *Index {
	ix := New()
	for i := range records {
		r := &records[i]
		ix.Add(r.ID, []string{r.NameText()}, r.BirthDate)
	}
	return ix
}

// FromPool builds an index over a canonical pool. Every entity is indexed
// under its current name and under each of its aliases, so a query can
// block on any spelling the pool has ever accepted.
func FromPool(pool *athletes.Pool) *Index {
	ix := New()
	for _, e := range pool.List() {
		ix.Add(e.ID, e.Names(), e.BirthDate)
	}
	return ix
}

// Add indexes one record under every token (length >= 3) of every
// normalized variant of each of its names, and under its exact birthdate
// when it has one.
func (ix *Index) Add(id int64, names []string, birth *athletes.Date) {
	for _, name := range names {
		for _, variant := range normalize.Variants(name) {
			for _, tok := range strings.Fields(variant) {
				if len(tok) < minIndexTokenLen {
					continue
				}
				set, ok := ix.tokens[tok]
				if !ok {
					set = make(map[int64]struct{})
					ix.tokens[tok] = set
				}
				set[id] = struct{}{}
			}
		}
	}
	if key := birth.Key(); key != "" {
		set, ok := ix.dates[key]
		if !ok {
			set = make(map[int64]struct{})
			ix.dates[key] = set
		}
		set[id] = struct{}{}
	}
	ix.size++
}

// Candidates returns the identifiers of indexed records sharing at least
// one indexed token with any normalized variant of the query's name, plus
// records sharing the query's exact birthdate. The result is sorted for
// deterministic downstream iteration.
func (ix *Index) Candidates(query *athletes.Athlete) []int64 {
	hits := make(map[int64]struct{})

	for _, variant := range normalize.Variants(query.NameText()) {
		for _, tok := range strings.Fields(variant) {
			if len(tok) < minIndexTokenLen {
				continue
			}
			for id := range ix.tokens[tok] {
				hits[id] = struct{}{}
			}
		}
	}

	if key := query.BirthDate.Key(); key != "" {
		for id := range ix.dates[key] {
			hits[id] = struct{}{}
		}
	}

	out := make([]int64, 0, len(hits))
	for id := range hits {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of records added to the index.
func (ix *Index) Len() int {
	return ix.size
}

// TokenCount returns the number of distinct tokens indexed, exposed for
// run statistics.
func (ix *Index) TokenCount() int {
	return len(ix.tokens)
}
