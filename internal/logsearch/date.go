package logsearch

import (
	"regexp"
	"time"
)

// DateLayout is the layout of the prefix that begins every log line.
const DateLayout = "2006-01-02"

// PrefixLen is the width of a line's date prefix, in bytes.
const PrefixLen = len(DateLayout)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Date is a calendar day, compared against log lines by its YYYY-MM-DD form.
//
// The zero value is not a valid date; use ParseDate.
type Date struct {
	t time.Time
}

// ParseDate parses s as a YYYY-MM-DD calendar date. It fails with a
// *DateError, matching ErrMalformedDate, if s is not of that shape or does
// not name a real day.
func ParseDate(s string) (Date, error) {
	if !datePattern.MatchString(s) {
		return Date{}, &DateError{Input: s}
	}

	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return Date{}, &DateError{Input: s, Err: err}
	}

	return Date{t: t}, nil
}

// MustParseDate is like ParseDate but panics if s is malformed.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Next returns the following calendar day.
//
// Arithmetic is plain Gregorian in UTC. ok is false if the following day
// cannot be written as a four-digit year, which only happens after 9999-12-31.
func (d Date) Next() (next Date, ok bool) {
	n := d.t.AddDate(0, 0, 1)
	if n.Year() > 9999 {
		return Date{}, false
	}
	return Date{t: n}, true
}

// key returns the bytes a matching line begins with.
func (d Date) key() []byte {
	return []byte(d.String())
}
