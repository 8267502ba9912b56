// Package match runs the cross-source matching pass: for each incoming
// record the blocking index yields a candidate set, the scorer rates each
// candidate, and the decision policy classifies the outcome as matched,
// unmatched, or ambiguous. The canonical pool is read-only for the whole
// pass; alias additions are buffered into the result for the caller to
// commit.
package match

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/poolmatch/pkg/athletes"
	"github.com/agentstation/poolmatch/pkg/blocking"
	"github.com/agentstation/poolmatch/pkg/errors"
	"github.com/agentstation/poolmatch/pkg/logging"
	"github.com/agentstation/poolmatch/pkg/scoring"
)

// Matcher matches query records against a canonical pool. Construct one
// per pass with New; the pool snapshot is indexed once at construction.
type Matcher struct {
	pool        *athletes.Pool
	index       *blocking.Index
	scorer      *scoring.Scorer
	parallelism int
	logger      *zerolog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithFloor sets the acceptance floor candidates must clear.
func WithFloor(floor int) Option {
	return func(m *Matcher) {
		m.scorer = scoring.New(floor)
	}
}

// WithParallelism fans scoring out over n workers. Per-record scoring has
// no ordering dependency between query records, so partitioning them is
// safe; results keep input order regardless. Values below two keep the
// pass sequential.
func WithParallelism(n int) Option {
	return func(m *Matcher) {
		m.parallelism = n
	}
}

// WithLogger sets the logger used for per-record debug output.
func WithLogger(logger *zerolog.Logger) Option {
	return func(m *Matcher) {
		m.logger = logger
	}
}

// New builds a Matcher over a canonical pool, indexing every entity's
// name and aliases plus exact birthdates.
func New(pool *athletes.Pool, opts ...Option) *Matcher {
	m := &Matcher{
		pool:   pool,
		scorer: scoring.New(scoring.DefaultFloor),
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.index = blocking.FromPool(pool)
	return m
}

// Run executes one matching pass over the query records. Records with no
// usable name are skipped with a warning entry. The returned result
// carries a per-record outcome for every scored query, buffered alias
// additions, and run statistics.
func (m *Matcher) Run(ctx context.Context, queries []athletes.Athlete) (*Result, error) {
	// The pool is a read-only snapshot for the whole pass.
	m.pool.Freeze()
	defer m.pool.Thaw()

	result := newResult(m.scorer.Floor(), m.pool.Len(), len(queries))

	valid := make([]int, 0, len(queries))
	for i := range queries {
		if !queries[i].HasName() {
			result.Skipped = append(result.Skipped, Skip{
				QueryID: queries[i].ID,
				Reason:  "record has no usable name",
			})
			continue
		}
		valid = append(valid, i)
	}
	if len(result.Skipped) > 0 {
		m.logger.Warn().
			Int("skipped", len(result.Skipped)).
			Msg("Excluded nameless records from matching pass")
	}

	records := make([]RecordResult, len(valid))
	if m.parallelism > 1 && len(valid) > 1 {
		if err := m.runParallel(ctx, queries, valid, records); err != nil {
			return nil, err
		}
	} else {
		for n, i := range valid {
			if err := ctx.Err(); err != nil {
				return nil, errors.ErrCanceled
			}
			records[n] = m.matchOne(&queries[i])
		}
	}
	result.Records = records

	result.Aliases = m.collectAliases(queries, valid, records)
	result.finalize()

	m.logger.Info().
		Str("run_id", result.Metadata.RunID).
		Int("matched", result.Stats.Matched).
		Int("no_match", result.Stats.NoMatch).
		Int("ambiguous", result.Stats.Ambiguous).
		Msg("Matching pass complete")
	return result, nil
}

// runParallel partitions the valid query indexes over a bounded worker
// set. The index and pool are read-only here, so workers share them
// without coordination.
func (m *Matcher) runParallel(ctx context.Context, queries []athletes.Athlete, valid []int, records []RecordResult) error {
	workers := m.parallelism
	if workers > len(valid) {
		workers = len(valid)
	}

	var wg sync.WaitGroup
	work := make(chan int)
	canceled := false

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range work {
				records[n] = m.matchOne(&queries[valid[n]])
			}
		}()
	}

	for n := range valid {
		if err := ctx.Err(); err != nil {
			canceled = true
			break
		}
		work <- n
	}
	close(work)
	wg.Wait()

	if canceled {
		return errors.ErrCanceled
	}
	return nil
}

// matchOne scores one query against its blocked candidate set and applies
// the decision policy.
func (m *Matcher) matchOne(query *athletes.Athlete) RecordResult {
	candidates := m.index.Candidates(query)
	rr := RecordResult{
		QueryID:    query.ID,
		Outcome:    OutcomeNoMatch,
		Candidates: len(candidates),
	}

	best := -1
	var bestSig scoring.Signals
	var tied []int64

	for _, id := range candidates {
		entity, ok := m.pool.Get(id)
		if !ok {
			continue
		}
		score, accepted := m.scoreEntity(query, entity)
		if !accepted {
			continue
		}
		switch {
		case score.Total > best:
			best = score.Total
			bestSig = score.Signals
			tied = append(tied[:0], id)
		case score.Total == best:
			tied = append(tied, id)
		}
	}

	switch {
	case best < 0:
		// No candidate cleared the floor.
	case len(tied) == 1:
		rr.Outcome = OutcomeMatched
		rr.MatchedID = tied[0]
		rr.Score = best
		rr.Signals = bestSig
	default:
		// A tie at the maximum accepted score is a deliberate
		// non-decision, surfaced for manual review.
		rr.Outcome = OutcomeAmbiguous
		rr.Score = best
		rr.TiedIDs = append([]int64(nil), tied...)
		sort.Slice(rr.TiedIDs, func(i, j int) bool { return rr.TiedIDs[i] < rr.TiedIDs[j] })
	}

	m.logger.Debug().
		Int64("query_id", query.ID).
		Str("outcome", string(rr.Outcome)).
		Int("score", rr.Score).
		Int("candidates", rr.Candidates).
		Msg("Scored query record")
	return rr
}

// scoreEntity rates a query against a canonical entity, taking the best
// score over the entity's current name and each known alias. The
// birthdate and gender on file apply to every spelling.
func (m *Matcher) scoreEntity(query *athletes.Athlete, entity *athletes.Entity) (scoring.Score, bool) {
	var best scoring.Score
	accepted := false
	for _, name := range entity.Names() {
		view := athletes.Athlete{
			ID:        entity.ID,
			FullName:  name,
			BirthDate: entity.BirthDate,
			Gender:    entity.Gender,
		}
		score, ok := m.scorer.Score(query, &view)
		if !ok {
			continue
		}
		if !accepted || score.Total > best.Total {
			best = score
			accepted = true
		}
	}
	return best, accepted
}

// collectAliases buffers the matched queries' name strings as pending
// alias additions, dropping names the matched entity already knows and
// deduplicating repeats within the pass.
func (m *Matcher) collectAliases(queries []athletes.Athlete, valid []int, records []RecordResult) []PendingAlias {
	type claim struct {
		id   int64
		name string
	}
	seen := make(map[claim]struct{})
	var out []PendingAlias

	for n, rr := range records {
		if rr.Outcome != OutcomeMatched {
			continue
		}
		name := queries[valid[n]].Name()
		if existing, known := m.pool.ByAlias(name); known && existing.ID == rr.MatchedID {
			continue
		}
		c := claim{id: rr.MatchedID, name: athletes.AliasKey(name)}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, PendingAlias{EntityID: rr.MatchedID, Alias: name})
	}
	return out
}
