package athletes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Date is a birthdate as observed in a source record. Sources disagree on
// day/month ordering, so a Date deliberately tolerates out-of-range month
// values (a "1994-17-05" read from a day-first sheet keeps Month=17 rather
// than failing); the scorer's transposition rule decides what to do with
// it. A year-only date has Month and Day set to zero. time.Time is
// unsuitable here precisely because it refuses such values.
type Date struct {
	Year  int `yaml:"year" json:"year"`
	Month int `yaml:"month,omitempty" json:"month,omitempty"`
	Day   int `yaml:"day,omitempty" json:"day,omitempty"`
}

// Full reports whether the date carries year, month and day. Only full
// dates participate in birthdate scoring and blocking.
func (d *Date) Full() bool {
	return d != nil && d.Year > 0 && d.Month > 0 && d.Day > 0
}

// Key returns the exact calendar date as a string key for indexing and
// duplicate grouping, or "" for partial or missing dates.
func (d *Date) Key() string {
	if !d.Full() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Equal reports whether two dates are the same calendar date. Partial or
// missing dates never compare equal.
func (d *Date) Equal(o *Date) bool {
	if !d.Full() || !o.Full() {
		return false
	}
	return d.Year == o.Year && d.Month == o.Month && d.Day == o.Day
}

// String renders the date for reports: full ISO form, bare year for
// year-only dates, "unknown" otherwise.
func (d *Date) String() string {
	switch {
	case d.Full():
		return d.Key()
	case d != nil && d.Year > 0:
		return strconv.Itoa(d.Year)
	default:
		return "unknown"
	}
}

var (
	isoDateRe   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	slashDateRe = regexp.MustCompile(`^(\d{1,2})[/.](\d{1,2})[/.](\d{4})$`)
	yearOnlyRe  = regexp.MustCompile(`^(\d{4})$`)
)

// ParseDate reads the date formats seen across source collections:
// "2006-01-02", "02/01/2006", "02.01.2006" and bare "2006". Per the
// engine's error model an unparseable or empty value is simply an unknown
// date, never an error, so the return is nil in that case. Out-of-range
// month values are retained for the transposition rule to inspect.
func ParseDate(s string) *Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		return newDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := slashDateRe.FindStringSubmatch(s); m != nil {
		// Day-first is the dominant convention in the source sheets.
		return newDate(atoi(m[3]), atoi(m[2]), atoi(m[1]))
	}
	if m := yearOnlyRe.FindStringSubmatch(s); m != nil {
		if y := atoi(m[1]); plausibleYear(y) {
			return &Date{Year: y}
		}
	}
	return nil
}

func newDate(year, month, day int) *Date {
	if !plausibleYear(year) || month < 1 || day < 1 || month > 31 || day > 31 {
		return nil
	}
	return &Date{Year: year, Month: month, Day: day}
}

func plausibleYear(y int) bool {
	return y >= 1900 && y <= 2100
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// UnmarshalYAML accepts either a date string or a year/month/day mapping,
// so rosters can write birthdates the way their source sheets did.
func (d *Date) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		if parsed := ParseDate(s); parsed != nil {
			*d = *parsed
		}
		return nil
	}

	type plain Date
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	*d = Date(p)
	return nil
}

// MarshalYAML writes the date back out in its string form.
func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}
