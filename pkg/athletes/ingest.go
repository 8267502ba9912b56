package athletes

import "fmt"

// Skip records one input excluded during ingestion validation, with the
// position it held and why it was dropped. Skips are aggregated and
// returned to the caller; nothing is silently swallowed.
type Skip struct {
	Index  int    `json:"index" yaml:"index"`
	ID     int64  `json:"id" yaml:"id"`
	Reason string `json:"reason" yaml:"reason"`
}

// String renders the skip for warning output.
func (s Skip) String() string {
	return fmt.Sprintf("record %d (input #%d): %s", s.ID, s.Index, s.Reason)
}

// Validate screens a loaded record collection once at ingestion. Records
// with no usable name are dropped with a Skip entry; duplicate
// identifiers within the collection are dropped likewise, keeping the
// first occurrence. Gender markers are folded through ParseGender here as
// well as at YAML decode, so records built in code get the same treatment
// and an unrecognized marker becomes unknown rather than failing.
func Validate(records []Athlete) (valid []Athlete, skipped []Skip) {
	valid = make([]Athlete, 0, len(records))
	seen := make(map[int64]struct{}, len(records))

	for i := range records {
		r := records[i]
		r.Gender = ParseGender(string(r.Gender))
		switch {
		case !r.HasName():
			skipped = append(skipped, Skip{Index: i, ID: r.ID, Reason: "missing name"})
			continue
		case r.ID < 0:
			skipped = append(skipped, Skip{Index: i, ID: r.ID, Reason: "negative identifier"})
			continue
		}
		if _, dup := seen[r.ID]; dup {
			skipped = append(skipped, Skip{Index: i, ID: r.ID, Reason: "duplicate identifier in collection"})
			continue
		}
		seen[r.ID] = struct{}{}
		valid = append(valid, r)
	}
	return valid, skipped
}
