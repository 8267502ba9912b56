package dedupe_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/poolmatch/pkg/athletes"
	"github.com/agentstation/poolmatch/pkg/dedupe"
)

func rec(id int64, name, birth string, gender athletes.Gender) athletes.Athlete {
	return athletes.Athlete{
		ID:        id,
		FullName:  name,
		BirthDate: athletes.ParseDate(birth),
		Gender:    gender,
		Source:    "roster-2024",
	}
}

func TestCollapseSurvivorIsLowestID(t *testing.T) {
	records := []athletes.Athlete{
		rec(5, "Terence Lee", "1994-05-07", athletes.GenderMale),
		rec(2, "Terence Lee", "1994-05-07", athletes.GenderMale),
		rec(9, "terence  lee", "1994-05-07", athletes.GenderMale),
	}

	report := dedupe.Collapse(records)
	require.Len(t, report.Groups, 1)

	g := report.Groups[0]
	assert.Equal(t, int64(2), g.SurvivorID)
	assert.ElementsMatch(t, []int64{5, 9}, g.RemovedIDs)
	assert.Equal(t, 3, g.Size())
	assert.Equal(t, 2, report.Duplicates())
}

func TestCollapseGenderSplitsGroups(t *testing.T) {
	records := []athletes.Athlete{
		rec(1, "Alex Tan", "1998-02-03", athletes.GenderMale),
		rec(2, "Alex Tan", "1998-02-03", athletes.GenderFemale),
	}

	report := dedupe.Collapse(records)
	assert.Empty(t, report.Groups, "gender is part of the identity key")
}

func TestCollapseOrderIndependent(t *testing.T) {
	records := []athletes.Athlete{
		rec(3, "Maria Santos", "2001-11-12", athletes.GenderFemale),
		rec(7, "Maria Santos", "2001-11-12", athletes.GenderFemale),
		rec(1, "John Tan", "", athletes.GenderMale),
		rec(4, "Maria Santos", "2001-11-12", athletes.GenderFemale),
	}

	want := dedupe.Collapse(records)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([]athletes.Athlete(nil), records...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, want, dedupe.Collapse(shuffled))
	}
}

func TestCollapseDistinctBirthdatesNotGrouped(t *testing.T) {
	records := []athletes.Athlete{
		rec(1, "John Tan", "1990-01-01", athletes.GenderMale),
		rec(2, "John Tan", "1991-01-01", athletes.GenderMale),
	}
	assert.Empty(t, dedupe.Collapse(records).Groups)
}

func TestCollapseMissingBirthdatesGroupTogether(t *testing.T) {
	// Both records have unknown birthdates and otherwise identical keys;
	// they share the empty date key and collapse.
	records := []athletes.Athlete{
		rec(8, "John Tan", "", athletes.GenderMale),
		rec(3, "John Tan", "", athletes.GenderMale),
	}

	report := dedupe.Collapse(records)
	require.Len(t, report.Groups, 1)
	assert.Equal(t, int64(3), report.Groups[0].SurvivorID)
}

func TestCollapseSkipsNamelessRecords(t *testing.T) {
	records := []athletes.Athlete{
		{ID: 1},
		rec(2, "John Tan", "", athletes.GenderMale),
	}

	report := dedupe.Collapse(records)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, report.Groups)
}

func TestApplyRemovesMarkedRecords(t *testing.T) {
	records := []athletes.Athlete{
		rec(5, "Terence Lee", "1994-05-07", athletes.GenderMale),
		rec(2, "Terence Lee", "1994-05-07", athletes.GenderMale),
		rec(9, "Terence Lee", "1994-05-07", athletes.GenderMale),
		rec(11, "Maria Santos", "2001-11-12", athletes.GenderFemale),
	}

	report := dedupe.Collapse(records)
	kept := dedupe.Apply(records, report)

	ids := make([]int64, 0, len(kept))
	for i := range kept {
		ids = append(ids, kept[i].ID)
	}
	assert.ElementsMatch(t, []int64{2, 11}, ids)
	assert.Len(t, records, 4, "input slice is left untouched")
}

func TestKeyString(t *testing.T) {
	a := rec(1, "Lee, Terence", "1994-05-07", athletes.GenderMale)
	key := dedupe.KeyFor(&a)
	assert.Equal(t, "LEE TERENCE | 1994-05-07 | M", key.String())

	b := rec(2, "Lee Terence", "", athletes.GenderUnknown)
	assert.Equal(t, "LEE TERENCE | unknown | ?", dedupe.KeyFor(&b).String())
}
