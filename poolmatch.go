// Package poolmatch reconciles athlete identity records arriving from
// multiple inconsistent sources into a single canonical athlete pool. It
// is a batch entity-resolution engine: name normalization, candidate
// blocking, multi-signal scoring, match decisions, and duplicate
// collapsing. Persistence of the canonical pool and the alias table is
// owned by the caller; the engine computes changes and returns them.
package poolmatch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/agentstation/poolmatch/pkg/athletes"
	"github.com/agentstation/poolmatch/pkg/dedupe"
	"github.com/agentstation/poolmatch/pkg/errors"
	"github.com/agentstation/poolmatch/pkg/logging"
	"github.com/agentstation/poolmatch/pkg/match"
)

// Reconciler is the main interface for reconciling athlete records
// against a canonical pool.
type Reconciler interface {
	// Match runs one batch matching pass of the query records against
	// the pool. The pool is read-only for the duration of the pass;
	// alias additions are buffered into the result.
	Match(ctx context.Context, queries []athletes.Athlete, pool *athletes.Pool) (*match.Result, error)

	// Dedupe collapses duplicate records within one source collection.
	// The report is always a dry run; physically removing the marked
	// records is a separate caller action via dedupe.Apply.
	Dedupe(ctx context.Context, records []athletes.Athlete) (*dedupe.Report, error)

	// Apply commits a match pass to the pool: buffered aliases are
	// attached and, when promotion is enabled, unmatched queries become
	// new canonical entities. This is the caller's transaction step,
	// deliberately separate from Match.
	Apply(ctx context.Context, result *match.Result, queries []athletes.Athlete, pool *athletes.Pool) (*ApplyReport, error)
}

// ApplyReport summarizes what Apply committed to the pool.
type ApplyReport struct {
	AliasesAdded int     `json:"aliases_added" yaml:"aliases_added"`
	Promoted     []int64 `json:"promoted,omitempty" yaml:"promoted,omitempty"`
	Conflicts    []error `json:"-" yaml:"-"`
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	config *config
}

// logger returns the configured logger, falling back to the one carried
// by the context.
func (r *reconciler) logger(ctx context.Context) *zerolog.Logger {
	if r.config.logger != nil {
		return r.config.logger
	}
	return logging.FromContext(ctx)
}

// New creates a new Reconciler with the given options.
func New(opts ...Option) (Reconciler, error) {
	c := defaultConfig()
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}
	return &reconciler{config: c}, nil
}

// Match implements Reconciler.
func (r *reconciler) Match(ctx context.Context, queries []athletes.Athlete, pool *athletes.Pool) (*match.Result, error) {
	if pool == nil {
		return nil, errors.NewValidationError("pool", nil, "cannot be nil")
	}

	logger := r.logger(ctx)

	m := match.New(pool,
		match.WithFloor(r.config.floor),
		match.WithParallelism(r.config.parallelism),
		match.WithLogger(logger),
	)

	result, err := m.Run(ctx, queries)
	if err != nil {
		return nil, err
	}
	logger.Debug().
		Str("run_id", result.Metadata.RunID).
		Str("summary", result.Summary()).
		Msg("Match pass finished")
	return result, nil
}

// Dedupe implements Reconciler.
func (r *reconciler) Dedupe(ctx context.Context, records []athletes.Athlete) (*dedupe.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrCanceled
	}

	report := dedupe.Collapse(records)

	r.logger(ctx).Info().
		Int("scanned", report.Scanned).
		Int("groups", len(report.Groups)).
		Int("duplicates", report.Duplicates()).
		Msg("Duplicate collapse complete")
	return report, nil
}

// Apply implements Reconciler. Alias conflicts are collected rather than
// aborting the commit: a conflicting alias means the pass matched a name
// another entity has since claimed, which is review material, not a
// reason to drop the rest of the transaction.
func (r *reconciler) Apply(ctx context.Context, result *match.Result, queries []athletes.Athlete, pool *athletes.Pool) (*ApplyReport, error) {
	if result == nil {
		return nil, errors.NewValidationError("result", nil, "cannot be nil")
	}
	if pool == nil {
		return nil, errors.NewValidationError("pool", nil, "cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.ErrCanceled
	}

	report := &ApplyReport{}

	for _, pa := range result.Aliases {
		if err := pool.AddAlias(pa.EntityID, pa.Alias); err != nil {
			report.Conflicts = append(report.Conflicts, err)
			continue
		}
		report.AliasesAdded++
	}

	if r.config.promoteUnmatched {
		byID := make(map[int64]*athletes.Athlete, len(queries))
		for i := range queries {
			byID[queries[i].ID] = &queries[i]
		}
		for i := range result.Records {
			rr := &result.Records[i]
			if rr.Outcome != match.OutcomeNoMatch {
				continue
			}
			q, ok := byID[rr.QueryID]
			if !ok {
				continue
			}
			e, err := pool.Promote(q)
			if err != nil {
				report.Conflicts = append(report.Conflicts, err)
				continue
			}
			report.Promoted = append(report.Promoted, e.ID)
		}
	}

	return report, nil
}
