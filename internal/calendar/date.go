// Package calendar provides a day-granularity Date type used for every
// calendar field in the ledger (transaction dates, purchase dates, billing
// cycles). It has no time-of-day and no time zone.
package calendar

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const readDateFormat = "2006-1-2" // permissive read format, accepts 2024-3-5

// DateFormat is the ISO-8601 calendar date layout used on the wire and in storage.
const DateFormat = "2006-01-02"

// Date represents a date with day-level granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date. Overflowing days roll into the next month
// the same way time.Date does (New(2024, 2, 30) is 2024-03-01).
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Clamped returns the date for the given year and month with day clamped to
// the last valid day of that month. Month overflow is normalized first, so
// Clamped(2024, 14, 31) is 2025-02-28.
func Clamped(year int, month time.Month, day int) Date {
	first := New(year, month, 1)
	if day < 1 {
		day = 1
	}
	if last := DaysIn(first.y, first.m); day > last {
		day = last
	}
	return Date{first.y, first.m, day}
}

// DaysIn returns the number of days of the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FromTime returns the calendar date of t in its own location.
func FromTime(t time.Time) Date { return New(t.Date()) }

// Today returns the current date in loc. A nil loc means UTC.
func Today(loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return FromTime(time.Now().In(loc))
}

func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// Before reports whether d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Equal reports whether d and x are the same day.
func (d Date) Equal(x Date) bool { return d == x }

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date { return New(d.y, d.m, d.d+n) }

// AddMonths returns d shifted by n calendar months, keeping the day of month
// but clamping it to the end of the target month (2024-01-31 + 1 month is
// 2024-02-29).
func (d Date) AddMonths(n int) Date { return Clamped(d.y, d.m+time.Month(n), d.d) }

// SameMonth reports whether d and x fall in the same year and month.
func (d Date) SameMonth(x Date) bool { return d.y == x.y && d.m == x.m }

// MonthsBetween returns the number of full calendar months from "from" to
// "to". A month only counts once its day of month has been reached, so
// 2024-01-10 → 2024-03-09 is 1 and 2024-01-10 → 2024-03-10 is 2. The result
// is negative when to is before from.
func MonthsBetween(to, from Date) int {
	if to.Before(from) {
		return -MonthsBetween(from, to)
	}
	months := (to.y-from.y)*12 + int(to.m-from.m)
	// the anchor day may not exist in the target month (Jan 31 → Feb 29)
	if to.d < from.d && to.d < DaysIn(to.y, to.m) {
		months--
	}
	return months
}

// String formats the date as yyyy-MM-dd.
func (d Date) String() string { return d.time().Format(DateFormat) }

// Parse parses a Date. It is lenient and accepts single-digit months and days.
func Parse(str string) (Date, error) {
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, DateFormat, err)
	}
	return New(on.Date()), nil
}

// MustParse is like Parse but panics on error.
func MustParse(str string) Date {
	d, err := Parse(str)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// MarshalJSON writes the date as a JSON string, or null for the zero date.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON reads a date from a JSON string. Null and "" give the zero date.
func (d *Date) UnmarshalJSON(bytes []byte) error {
	var str *string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	if str == nil || *str == "" {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(*str)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer so dates are stored as yyyy-MM-dd text.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	case time.Time:
		*d = FromTime(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into calendar.Date", src)
	}
}

var (
	_ json.Marshaler   = Date{}
	_ json.Unmarshaler = (*Date)(nil)
	_ driver.Valuer    = Date{}
)
