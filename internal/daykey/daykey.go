// Package daykey maps timestamps to calendar-day identifiers.
//
// Every component that groups or compares days goes through a Convention so
// that one fixed time zone is applied uniformly. Day arithmetic is done on
// the key itself (anchored at UTC midnight), never on raw timestamps, so a
// daylight-saving transition can't shift a day boundary.
package daykey

import (
	"errors"
	"fmt"
	"time"
)

// Layout is the textual form of a Key.
const Layout = "2006-01-02"

// ErrMalformedKey is returned for strings that are not valid YYYY-MM-DD dates.
var ErrMalformedKey = errors.New("malformed day key")

// Key is a calendar day in YYYY-MM-DD form.
type Key string

// Convention converts instants to Keys in a single fixed location.
type Convention struct {
	loc *time.Location
}

// UTC is the default convention.
var UTC = Convention{loc: time.UTC}

// NewConvention returns a Convention for the given location. A nil location
// means UTC.
func NewConvention(loc *time.Location) Convention {
	if loc == nil {
		loc = time.UTC
	}
	return Convention{loc: loc}
}

// LoadConvention resolves an IANA zone name. "" and "UTC" yield UTC; "Local"
// yields the process local zone.
func LoadConvention(name string) (Convention, error) {
	if name == "" || name == "UTC" {
		return UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Convention{}, fmt.Errorf("loading time zone %q: %w", name, err)
	}
	return Convention{loc: loc}, nil
}

// Location returns the zone the convention applies.
func (c Convention) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Key returns the calendar day t falls on.
func (c Convention) Key(t time.Time) Key {
	return Key(t.In(c.Location()).Format(Layout))
}

// Today is shorthand for c.Key(now).
func (c Convention) Today(now time.Time) Key {
	return c.Key(now)
}

// StartOf returns the first instant of day k in the convention's zone.
func (c Convention) StartOf(k Key) (time.Time, error) {
	if err := k.Validate(); err != nil {
		return time.Time{}, err
	}
	y, m, d := k.Time().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location()), nil
}

// Parse validates s and returns it as a Key.
func Parse(s string) (Key, error) {
	k := Key(s)
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

// Validate reports whether k is a real calendar date that round-trips
// through Layout. "2024-02-30" and "2024-1-05" are both rejected.
func (k Key) Validate() error {
	t, err := time.Parse(Layout, string(k))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrMalformedKey, string(k))
	}
	if t.Format(Layout) != string(k) {
		return fmt.Errorf("%w: %q", ErrMalformedKey, string(k))
	}
	return nil
}

// Time returns k as UTC midnight. The result is the zero time if k is
// malformed; callers that need to distinguish should Validate first.
func (k Key) Time() time.Time {
	t, err := time.Parse(Layout, string(k))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays shifts k by n calendar days.
func (k Key) AddDays(n int) Key {
	return Key(k.Time().AddDate(0, 0, n).Format(Layout))
}

// Prev is k.AddDays(-1).
func (k Key) Prev() Key { return k.AddDays(-1) }

// Before reports whether k is an earlier day than other. Valid keys sort
// lexically in date order.
func (k Key) Before(other Key) bool { return k < other }

// After reports whether k is a later day than other.
func (k Key) After(other Key) bool { return k > other }

func (k Key) String() string { return string(k) }

// DaysBetween returns the number of calendar days from a to b (b - a).
func DaysBetween(a, b Key) (int, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}
	return int(b.Time().Sub(a.Time()).Hours() / 24), nil
}
