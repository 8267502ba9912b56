package blocking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/poolmatch/pkg/athletes"
	"github.com/agentstation/poolmatch/pkg/blocking"
)

func record(id int64, name string, birth string) athletes.Athlete {
	return athletes.Athlete{
		ID:        id,
		FullName:  name,
		BirthDate: athletes.ParseDate(birth),
	}
}

func TestCandidatesByToken(t *testing.T) {
	ix := blocking.FromRecords([]athletes.Athlete{
		record(1, "Terence Lee Wei Ming", ""),
		record(2, "John Tan", ""),
		record(3, "Maria Santos", ""),
	})

	query := record(0, "Terance Lee", "")
	got := ix.Candidates(&query)

	// "LEE" is shared with record 1; nothing links records 2 or 3.
	assert.Equal(t, []int64{1}, got)
}

func TestCandidatesByReversedOrdering(t *testing.T) {
	ix := blocking.FromRecords([]athletes.Athlete{
		record(1, "Tan Wei Jie", ""),
	})

	// "Last, First" ordering still blocks on the same tokens.
	query := record(0, "Wei Jie, Tan", "")
	got := ix.Candidates(&query)
	assert.Equal(t, []int64{1}, got)
}

func TestCandidatesByBirthdate(t *testing.T) {
	ix := blocking.FromRecords([]athletes.Athlete{
		record(1, "Completely Different", "1994-05-07"),
		record(2, "Also Unrelated", "2001-03-09"),
	})

	// No shared tokens, but the exact birthdate surfaces record 1.
	query := record(0, "Query Person", "1994-05-07")
	got := ix.Candidates(&query)
	assert.Equal(t, []int64{1}, got)
}

func TestCandidatesUnion(t *testing.T) {
	ix := blocking.FromRecords([]athletes.Athlete{
		record(1, "Terence Lee", ""),
		record(2, "Nameless Nobody", "1994-05-07"),
		record(3, "Unrelated Person", ""),
	})

	query := record(0, "Terence Ong", "1994-05-07")
	got := ix.Candidates(&query)
	assert.Equal(t, []int64{1, 2}, got)
}

func TestShortTokensNotIndexed(t *testing.T) {
	ix := blocking.FromRecords([]athletes.Athlete{
		record(1, "Li Po", ""),
	})

	// Both tokens are below the indexing length; only a birthdate could
	// ever surface this record.
	query := record(0, "Li Po", "")
	assert.Empty(t, ix.Candidates(&query))
}

func TestFromPoolIndexesAliases(t *testing.T) {
	pool := athletes.NewPool()
	e, err := pool.Add(athletes.Entity{
		ID:      10,
		Name:    "Terence Lee",
		Aliases: []string{"Lee, Terance"},
	})
	require.NoError(t, err)

	ix := blocking.FromPool(pool)

	// The alias spelling blocks even though the current name would not.
	query := record(0, "Terance Ong", "")
	got := ix.Candidates(&query)
	assert.Equal(t, []int64{e.ID}, got)
}

func TestLenAndTokenCount(t *testing.T) {
	ix := blocking.FromRecords([]athletes.Athlete{
		record(1, "John Tan", ""),
		record(2, "John Lim", ""),
	})
	assert.Equal(t, 2, ix.Len())
	assert.GreaterOrEqual(t, ix.TokenCount(), 3) // JOHN, TAN, LIM
}
