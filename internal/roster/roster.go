// Package roster loads athlete record collections and canonical pools
// from YAML files on disk.
package roster

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/poolmatch/pkg/athletes"
	"github.com/agentstation/poolmatch/pkg/errors"
)

// File is the on-disk shape of one source roster.
type File struct {
	Source   athletes.SourceID  `yaml:"source,omitempty" json:"source,omitempty"`
	Athletes []athletes.Athlete `yaml:"athletes" json:"athletes"`
}

// PoolFile is the on-disk shape of a canonical pool.
type PoolFile struct {
	Entities []athletes.Entity `yaml:"entities" json:"entities"`
}

// Load reads a roster file and validates its records. Records that fail
// validation are reported as skips, not errors; the caller decides how
// loudly to complain about them.
func Load(path string) ([]athletes.Athlete, []athletes.Skip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.WrapIO("read", path, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, errors.WrapParse("yaml", path, err)
	}

	// A file-level source stamps records that arrived without one.
	if file.Source != "" {
		for i := range file.Athletes {
			if file.Athletes[i].Source == "" {
				file.Athletes[i].Source = file.Source
			}
		}
	}

	valid, skipped := athletes.Validate(file.Athletes)
	return valid, skipped, nil
}

// LoadPool reads a canonical pool file and registers every entity,
// enforcing the alias-uniqueness invariant as it goes.
func LoadPool(path string) (*athletes.Pool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var file PoolFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}

	pool := athletes.NewPool()
	for _, e := range file.Entities {
		if _, err := pool.Add(e); err != nil {
			return nil, errors.WrapResource("load", "entity", e.ID, err)
		}
	}
	return pool, nil
}

// SavePool writes the pool back out in the same shape LoadPool reads.
func SavePool(path string, pool *athletes.Pool) error {
	file := PoolFile{}
	for _, e := range pool.List() {
		file.Entities = append(file.Entities, *e)
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
