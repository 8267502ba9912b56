// Package dedupe collapses duplicate athlete records within a single
// source collection. Records sharing an identical normalized identity key
// form a group; each group keeps exactly one survivor and marks the rest
// for removal. Collapsing is always a dry run; physically removing the
// marked records is a separate, explicit caller action.
package dedupe

import (
	"fmt"
	"sort"

	"github.com/agentstation/poolmatch/pkg/athletes"
	"github.com/agentstation/poolmatch/pkg/normalize"
)

// Key is the strict identity key duplicate grouping uses: normalized
// uppercased name, exact birthdate string, and gender. Two records with
// the same Key represent the same person within one source; gender is
// part of the key, so same-name same-birthdate records of differing
// gender are never grouped.
type Key struct {
	Name      string          `json:"name" yaml:"name"`
	BirthDate string          `json:"birthdate" yaml:"birthdate"`
	Gender    athletes.Gender `json:"gender" yaml:"gender"`
}

// KeyFor computes the identity key of a record.
func KeyFor(a *athletes.Athlete) Key {
	return Key{
		Name:      normalize.String(a.NameText()),
		BirthDate: a.BirthDate.Key(),
		Gender:    a.Gender,
	}
}

// String renders the key for reports.
func (k Key) String() string {
	birth := k.BirthDate
	if birth == "" {
		birth = "unknown"
	}
	return fmt.Sprintf("%s | %s | %s", k.Name, birth, k.Gender)
}

// Group is one duplicate group: the shared key, the surviving record, and
// the records marked for removal.
type Group struct {
	Key        Key     `json:"key" yaml:"key"`
	SurvivorID int64   `json:"survivor_id" yaml:"survivor_id"`
	RemovedIDs []int64 `json:"removed_ids" yaml:"removed_ids"`
}

// Size returns the number of records in the group, survivor included.
func (g *Group) Size() int {
	return len(g.RemovedIDs) + 1
}

// Report is the outcome of a duplicate-collapse pass over one source
// collection.
type Report struct {
	// Groups holds every duplicate group found, ordered by survivor ID.
	Groups []Group `json:"groups" yaml:"groups"`

	// Scanned is the number of records examined.
	Scanned int `json:"scanned" yaml:"scanned"`

	// Skipped counts records excluded for having no usable name.
	Skipped int `json:"skipped" yaml:"skipped"`
}

// Duplicates returns the total number of records marked for removal.
func (r *Report) Duplicates() int {
	n := 0
	for i := range r.Groups {
		n += len(r.Groups[i].RemovedIDs)
	}
	return n
}

// Collapse groups the records of one source collection by identity key.
// The survivor of each group is the member with the lowest identifier;
// grouping is order-independent, so any permutation of the input yields
// the same groups. Nameless records are counted and skipped.
func Collapse(records []athletes.Athlete) *Report {
	report := &Report{Scanned: len(records)}

	byKey := make(map[Key][]int64)
	for i := range records {
		r := &records[i]
		if !r.HasName() {
			report.Skipped++
			continue
		}
		key := KeyFor(r)
		byKey[key] = append(byKey[key], r.ID)
	}

	for key, ids := range byKey {
		if len(ids) < 2 {
			continue
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		report.Groups = append(report.Groups, Group{
			Key:        key,
			SurvivorID: ids[0],
			RemovedIDs: ids[1:],
		})
	}

	sort.Slice(report.Groups, func(i, j int) bool {
		return report.Groups[i].SurvivorID < report.Groups[j].SurvivorID
	})
	return report
}

// Apply performs the removal a report only describes: it returns the
// records with every marked duplicate filtered out, leaving the input
// untouched. Callers gate this behind their own remove flag.
func Apply(records []athletes.Athlete, report *Report) []athletes.Athlete {
	removed := make(map[int64]struct{})
	for i := range report.Groups {
		for _, id := range report.Groups[i].RemovedIDs {
			removed[id] = struct{}{}
		}
	}

	out := make([]athletes.Athlete, 0, len(records)-len(removed))
	for i := range records {
		if _, drop := removed[records[i].ID]; drop {
			continue
		}
		out = append(out, records[i])
	}
	return out
}
