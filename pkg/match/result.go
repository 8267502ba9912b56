package match

import (
	"fmt"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/agentstation/poolmatch/pkg/scoring"
)

// Outcome classifies what happened to one query record.
type Outcome string

// Terminal outcomes of the match decision policy.
const (
	// OutcomeMatched means exactly one candidate cleared the floor, or
	// one strictly outscored all others.
	OutcomeMatched Outcome = "matched"
	// OutcomeNoMatch means no candidate cleared the acceptance floor.
	OutcomeNoMatch Outcome = "no_match"
	// OutcomeAmbiguous means two or more candidates tied at the maximum
	// accepted score; surfaced for manual review, never auto-resolved.
	OutcomeAmbiguous Outcome = "ambiguous"
)

// RecordResult is the per-query outcome returned to the caller.
type RecordResult struct {
	// QueryID is the identifier of the query record.
	QueryID int64 `json:"query_id" yaml:"query_id"`

	Outcome Outcome `json:"outcome" yaml:"outcome"`

	// MatchedID is the matched canonical entity, zero unless matched.
	MatchedID int64 `json:"matched_id,omitempty" yaml:"matched_id,omitempty"`

	// Score is the accepted total score; zero for no_match.
	Score int `json:"score,omitempty" yaml:"score,omitempty"`

	// Signals records which evidence the score was built from.
	Signals scoring.Signals `json:"signals" yaml:"signals"`

	// Candidates is how many pool entities the blocking index surfaced.
	Candidates int `json:"candidates" yaml:"candidates"`

	// TiedIDs lists the entities tied at the maximum score when the
	// outcome is ambiguous, for manual review.
	TiedIDs []int64 `json:"tied_ids,omitempty" yaml:"tied_ids,omitempty"`
}

// PendingAlias is an alias addition computed during a pass. The engine
// never mutates the pool mid-pass; committing these is the caller's
// transaction.
type PendingAlias struct {
	EntityID int64  `json:"entity_id" yaml:"entity_id"`
	Alias    string `json:"alias" yaml:"alias"`
}

// Skip records a query record excluded from the run, with the reason.
type Skip struct {
	QueryID int64  `json:"query_id" yaml:"query_id"`
	Reason  string `json:"reason" yaml:"reason"`
}

// ResultMetadata describes the run itself.
type ResultMetadata struct {
	RunID    string        `json:"run_id" yaml:"run_id"`
	Started  utc.Time      `json:"started" yaml:"started"`
	Finished utc.Time      `json:"finished" yaml:"finished"`
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Floor is the acceptance floor the run was scored against.
	Floor int `json:"floor" yaml:"floor"`

	PoolSize   int `json:"pool_size" yaml:"pool_size"`
	QueryCount int `json:"query_count" yaml:"query_count"`
}

// ResultStatistics aggregates outcome counts for the run.
type ResultStatistics struct {
	Matched          int `json:"matched" yaml:"matched"`
	NoMatch          int `json:"no_match" yaml:"no_match"`
	Ambiguous        int `json:"ambiguous" yaml:"ambiguous"`
	Skipped          int `json:"skipped" yaml:"skipped"`
	CandidatesScored int `json:"candidates_scored" yaml:"candidates_scored"`
}

// Result is the outcome of one matching pass: per-record results, the
// buffered alias additions, skipped-record warnings, and run metadata.
type Result struct {
	Records  []RecordResult   `json:"records" yaml:"records"`
	Aliases  []PendingAlias   `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Skipped  []Skip           `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Metadata ResultMetadata   `json:"metadata" yaml:"metadata"`
	Stats    ResultStatistics `json:"stats" yaml:"stats"`
}

// newResult creates a result with run metadata started.
func newResult(floor, poolSize, queryCount int) *Result {
	return &Result{
		Metadata: ResultMetadata{
			RunID:      uuid.NewString(),
			Started:    utc.Now(),
			Floor:      floor,
			PoolSize:   poolSize,
			QueryCount: queryCount,
		},
	}
}

// finalize stamps completion time and tallies outcome statistics.
func (r *Result) finalize() {
	r.Metadata.Finished = utc.Now()
	r.Metadata.Duration = r.Metadata.Finished.Sub(r.Metadata.Started)

	r.Stats.Skipped = len(r.Skipped)
	for i := range r.Records {
		switch r.Records[i].Outcome {
		case OutcomeMatched:
			r.Stats.Matched++
		case OutcomeNoMatch:
			r.Stats.NoMatch++
		case OutcomeAmbiguous:
			r.Stats.Ambiguous++
		}
		r.Stats.CandidatesScored += r.Records[i].Candidates
	}
}

// Summary returns a one-line human-readable account of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d queries: %d matched, %d unmatched, %d ambiguous, %d skipped (%d candidates scored in %s)",
		r.Metadata.QueryCount, r.Stats.Matched, r.Stats.NoMatch, r.Stats.Ambiguous,
		r.Stats.Skipped, r.Stats.CandidatesScored, r.Metadata.Duration.Round(time.Millisecond))
}
