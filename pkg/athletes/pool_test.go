package athletes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/poolmatch/pkg/athletes"
	"github.com/agentstation/poolmatch/pkg/errors"
)

func TestPoolAdd(t *testing.T) {
	pool := athletes.NewPool()

	e, err := pool.Add(athletes.Entity{Name: "Terence Lee"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.ID, "zero ID is assigned")

	got, ok := pool.Get(e.ID)
	require.True(t, ok)
	assert.Equal(t, "Terence Lee", got.Name)
	assert.Equal(t, 1, pool.Len())
}

func TestPoolAddExplicitID(t *testing.T) {
	pool := athletes.NewPool()

	_, err := pool.Add(athletes.Entity{ID: 40, Name: "Maria Santos"})
	require.NoError(t, err)

	// Subsequent assignment continues past the explicit ID.
	e, err := pool.Add(athletes.Entity{Name: "John Tan"})
	require.NoError(t, err)
	assert.Equal(t, int64(41), e.ID)
}

func TestPoolAddDuplicateID(t *testing.T) {
	pool := athletes.NewPool()
	_, err := pool.Add(athletes.Entity{ID: 7, Name: "Terence Lee"})
	require.NoError(t, err)

	_, err = pool.Add(athletes.Entity{ID: 7, Name: "Someone Else"})
	assert.True(t, errors.IsAlreadyExists(err))
}

func TestAliasUniquenessInvariant(t *testing.T) {
	pool := athletes.NewPool()
	a, err := pool.Add(athletes.Entity{Name: "Terence Lee"})
	require.NoError(t, err)
	b, err := pool.Add(athletes.Entity{Name: "Maria Santos"})
	require.NoError(t, err)

	require.NoError(t, pool.AddAlias(a.ID, "Lee, Terence"))

	t.Run("same alias for another entity conflicts", func(t *testing.T) {
		err := pool.AddAlias(b.ID, "lee, terence")
		assert.True(t, errors.IsAliasConflict(err), "case-insensitive claim is enforced")
	})

	t.Run("re-adding to the owner is a no-op", func(t *testing.T) {
		require.NoError(t, pool.AddAlias(a.ID, "LEE, TERENCE"))
		got, _ := pool.Get(a.ID)
		assert.Equal(t, []string{"Lee, Terence"}, got.Aliases)
	})

	t.Run("current names are claims too", func(t *testing.T) {
		err := pool.AddAlias(b.ID, "TERENCE LEE")
		assert.True(t, errors.IsAliasConflict(err))
	})
}

func TestPoolAddConflictLeavesPoolUnchanged(t *testing.T) {
	pool := athletes.NewPool()
	_, err := pool.Add(athletes.Entity{Name: "Terence Lee"})
	require.NoError(t, err)

	_, err = pool.Add(athletes.Entity{
		Name:    "Brand New Name",
		Aliases: []string{"terence lee"},
	})
	require.Error(t, err)

	// The rejected entity's unconflicted name was not registered either.
	_, found := pool.ByAlias("Brand New Name")
	assert.False(t, found)
	assert.Equal(t, 1, pool.Len())
}

func TestPoolFreeze(t *testing.T) {
	pool := athletes.NewPool()
	e, err := pool.Add(athletes.Entity{Name: "Terence Lee"})
	require.NoError(t, err)

	pool.Freeze()
	assert.True(t, pool.Frozen())

	_, err = pool.Add(athletes.Entity{Name: "Maria Santos"})
	assert.True(t, errors.IsReadOnly(err))

	err = pool.AddAlias(e.ID, "Lee, Terence")
	assert.True(t, errors.IsReadOnly(err))

	_, err = pool.Promote(&athletes.Athlete{ID: 50, FullName: "John Tan"})
	assert.True(t, errors.IsReadOnly(err))

	// Reads still work while frozen.
	_, ok := pool.ByAlias("Terence Lee")
	assert.True(t, ok)
	assert.Equal(t, 1, pool.Len())

	pool.Thaw()
	assert.False(t, pool.Frozen())
	require.NoError(t, pool.AddAlias(e.ID, "Lee, Terence"))
}

func TestPoolByAlias(t *testing.T) {
	pool := athletes.NewPool()
	e, err := pool.Add(athletes.Entity{Name: "Terence Lee", Aliases: []string{"Lee, Terence"}})
	require.NoError(t, err)

	got, ok := pool.ByAlias("LEE, TERENCE")
	require.True(t, ok)
	assert.Equal(t, e.ID, got.ID)

	_, ok = pool.ByAlias("Unknown Person")
	assert.False(t, ok)
}

func TestPoolPromote(t *testing.T) {
	pool := athletes.NewPool()

	record := athletes.Athlete{
		ID:        100,
		FullName:  "Maria Santos",
		BirthDate: athletes.ParseDate("2001-11-12"),
		Gender:    athletes.GenderFemale,
		Source:    "results-2024",
	}
	e, err := pool.Promote(&record)
	require.NoError(t, err)

	assert.Equal(t, "Maria Santos", e.Name)
	assert.Equal(t, athletes.GenderFemale, e.Gender)
	assert.Equal(t, "2001-11-12", e.BirthDate.Key())

	t.Run("nameless record cannot be promoted", func(t *testing.T) {
		_, err := pool.Promote(&athletes.Athlete{ID: 101})
		assert.True(t, errors.IsValidationError(err))
	})
}

func TestPoolList(t *testing.T) {
	pool := athletes.NewPool()
	for _, e := range []athletes.Entity{
		{ID: 9, Name: "Charlie Ng"},
		{ID: 2, Name: "Alice Ho"},
		{ID: 5, Name: "Bob Lim"},
	} {
		_, err := pool.Add(e)
		require.NoError(t, err)
	}

	ids := make([]int64, 0, 3)
	for _, e := range pool.List() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []int64{2, 5, 9}, ids, "List is ordered by identifier")
}

func TestEntityRecordView(t *testing.T) {
	e := athletes.Entity{
		ID:        3,
		Name:      "Terence Lee",
		BirthDate: athletes.ParseDate("1994-05-07"),
		Gender:    athletes.GenderMale,
	}
	r := e.Record()
	assert.Equal(t, e.ID, r.ID)
	assert.Equal(t, e.Name, r.FullName)
	assert.Equal(t, e.Gender, r.Gender)
}
