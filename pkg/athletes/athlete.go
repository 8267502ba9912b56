// Package athletes defines the record and canonical entity types the
// reconciliation engine operates on: athlete records as observed in source
// collections, the canonical pool they resolve into, and ingestion
// validation for records arriving from external loaders.
package athletes

import "strings"

// SourceID identifies the collection a record was loaded from, such as a
// competition result sheet or a registration roster.
type SourceID string

// String returns the string representation of a source ID.
func (s SourceID) String() string {
	return string(s)
}

// Gender is a record's gender marker. Sources frequently omit it, so the
// zero value means unknown and scores nothing either way.
type Gender string

// Gender values observed in source collections.
const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "M"
	GenderFemale  Gender = "F"
)

// Known reports whether the gender was present in the source record.
func (g Gender) Known() bool {
	return g == GenderMale || g == GenderFemale
}

// String returns the single-letter marker, or "?" when unknown.
func (g Gender) String() string {
	if !g.Known() {
		return "?"
	}
	return string(g)
}

// ParseGender maps the spellings seen across source sheets onto a Gender.
// Anything unrecognized is treated as unknown rather than rejected.
func ParseGender(s string) Gender {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "M", "MALE", "MEN", "BOY", "BOYS":
		return GenderMale
	case "F", "FEMALE", "WOMEN", "GIRL", "GIRLS":
		return GenderFemale
	default:
		return GenderUnknown
	}
}

// UnmarshalYAML routes every loaded gender marker through ParseGender, so
// a sheet writing "Female" or "boys" carries the same weight as "F" or "M".
func (g *Gender) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	*g = ParseGender(s)
	return nil
}

// MarshalYAML writes the canonical single-letter marker, empty when unknown.
func (g Gender) MarshalYAML() (any, error) {
	return string(g), nil
}

// Athlete is one identity record from a source collection. Records are
// handed to the engine read-only; the engine never mutates their name or
// birthdate fields.
type Athlete struct {
	// ID is the stable identifier within the record's source collection.
	ID int64 `yaml:"id" json:"id"`

	// FullName is the raw name string as it appeared in the source,
	// including any "Last, First" comma ordering.
	FullName string `yaml:"name" json:"name"`

	// Decomposed name parts, when the source provides them.
	FirstName  string `yaml:"first,omitempty" json:"first,omitempty"`
	LastName   string `yaml:"last,omitempty" json:"last,omitempty"`
	MiddleName string `yaml:"middle,omitempty" json:"middle,omitempty"`
	Suffix     string `yaml:"suffix,omitempty" json:"suffix,omitempty"`

	// BirthDate is nil when the source had none or it was unparseable.
	BirthDate *Date `yaml:"birthdate,omitempty" json:"birthdate,omitempty"`

	Gender Gender `yaml:"gender,omitempty" json:"gender,omitempty"`

	// Affiliation is the club or nation the record lists, if any.
	Affiliation string `yaml:"affiliation,omitempty" json:"affiliation,omitempty"`

	// Source tags which collection the record came from.
	Source SourceID `yaml:"source,omitempty" json:"source,omitempty"`
}

// HasName reports whether the record carries any usable name text, either
// as a full name string or as decomposed parts.
func (a *Athlete) HasName() bool {
	return strings.TrimSpace(a.FullName) != "" ||
		strings.TrimSpace(a.FirstName) != "" ||
		strings.TrimSpace(a.LastName) != ""
}

// Name returns the record's best name string: the raw full name when
// present, otherwise the decomposed parts joined in first-to-suffix order.
func (a *Athlete) Name() string {
	if strings.TrimSpace(a.FullName) != "" {
		return a.FullName
	}
	parts := make([]string, 0, 4)
	for _, p := range []string{a.FirstName, a.MiddleName, a.LastName, a.Suffix} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, " ")
}

// NameText returns all name material for token extraction: the full name
// plus any decomposed parts. Duplicated tokens are harmless because the
// scorer works on token sets.
func (a *Athlete) NameText() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.FullName, a.FirstName, a.MiddleName, a.LastName, a.Suffix} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, " ")
}
