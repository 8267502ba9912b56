package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/poolmatch/pkg/athletes"
	"github.com/agentstation/poolmatch/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "roster.yaml", `
source: meet-entries
athletes:
  - id: 1
    name: Thomas Lee Kuan Wei
    birthdate: 1994-05-17
    gender: M
  - id: 2
    name: Tan Mei Hua
    birthdate: 03/11/2001
    gender: F
    source: club-upload
  - id: 3
`)

	records, skipped, err := Load(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Len(t, skipped, 1)

	assert.Equal(t, athletes.SourceID("meet-entries"), records[0].Source)
	assert.Equal(t, athletes.SourceID("club-upload"), records[1].Source)
	assert.Equal(t, "1994-05-17", records[0].BirthDate.Key())
	assert.Equal(t, "2001-11-03", records[1].BirthDate.Key())
	assert.Equal(t, int64(3), skipped[0].ID)
}

func TestLoadGenderSpellings(t *testing.T) {
	path := writeFile(t, "roster.yaml", `
athletes:
  - id: 1
    name: Maria Santos Oliveira
    gender: Female
  - id: 2
    name: Kenji Watanabe
    gender: m
  - id: 3
    name: Robin Taylor
    gender: GIRLS
  - id: 4
    name: Sasha Petrov
    gender: nonbinary
`)

	records, skipped, err := Load(path)
	require.NoError(t, err)
	require.Empty(t, skipped)
	require.Len(t, records, 4)

	assert.Equal(t, athletes.GenderFemale, records[0].Gender)
	assert.Equal(t, athletes.GenderMale, records[1].Gender)
	assert.Equal(t, athletes.GenderFemale, records[2].Gender)
	assert.Equal(t, athletes.GenderUnknown, records[3].Gender)
	assert.True(t, records[0].Gender.Known())
	assert.True(t, records[1].Gender.Known())
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	var ioErr *errors.IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestLoadMalformed(t *testing.T) {
	path := writeFile(t, "bad.yaml", "athletes: [}")

	_, _, err := Load(path)
	require.Error(t, err)

	var parseErr *errors.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestLoadPool(t *testing.T) {
	path := writeFile(t, "pool.yaml", `
entities:
  - id: 1
    name: LEE KUAN WEI THOMAS
    birthdate: 1994-05-17
    gender: M
    aliases:
      - Thomas Lee
  - id: 2
    name: TAN MEI HUA
    gender: F
`)

	pool, err := LoadPool(path)
	require.NoError(t, err)
	assert.Equal(t, 2, pool.Len())

	e, ok := pool.ByAlias("thomas lee")
	require.True(t, ok)
	assert.Equal(t, int64(1), e.ID)
}

func TestLoadPoolAliasConflict(t *testing.T) {
	path := writeFile(t, "pool.yaml", `
entities:
  - id: 1
    name: SAME NAME
  - id: 2
    name: Same Name
`)

	_, err := LoadPool(path)
	require.Error(t, err)
	assert.True(t, errors.IsAliasConflict(err))
}

func TestSavePoolRoundTrip(t *testing.T) {
	pool := athletes.NewPool()
	_, err := pool.Add(athletes.Entity{
		Name:      "LEE KUAN WEI THOMAS",
		BirthDate: athletes.ParseDate("1994-05-17"),
		Gender:    athletes.GenderMale,
		Aliases:   []string{"Thomas Lee"},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "pool.yaml")
	require.NoError(t, SavePool(path, pool))

	loaded, err := LoadPool(path)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())

	e, ok := loaded.Get(1)
	require.True(t, ok)
	assert.Equal(t, "LEE KUAN WEI THOMAS", e.Name)
	assert.Equal(t, []string{"Thomas Lee"}, e.Aliases)
	assert.Equal(t, "1994-05-17", e.BirthDate.Key())
}
