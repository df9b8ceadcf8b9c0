package oifits

import (
	"fmt"
	"strings"
	"time"
)

// Date2MJD converts a Gregorian calendar date into a Modified Julian Day.
func Date2MJD(year, month, day int) int {
	a := (14 - month) / 12
	y := year + 4800 - a
	m := month + 12*a - 3
	jdn := day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
	return jdn - 2400001
}

// MJD2Date converts a Modified Julian Day into a Gregorian calendar date.
func MJD2Date(mjd int) (year, month, day int) {
	a := mjd + 2400001 + 32044
	b := (4*a + 3) / 146097
	c := a - 146097*b/4
	d := (4*c + 3) / 1461
	e := c - 1461*d/4
	m := (5*e + 2) / 153

	day = e - (153*m+2)/5 + 1
	month = m + 3 - 12*(m/10)
	year = 100*b + d - 4800 + m/10
	return year, month, day
}

// ParseDate parses a FITS date value (YYYY-MM-DD, optionally followed by a
// time of day) and returns its MJD.
func ParseDate(s string) (int, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date2MJD(t.Year(), int(t.Month()), t.Day()), nil
}

// FormatDate formats an MJD as YYYY-MM-DD.
func FormatDate(mjd int) string {
	y, m, d := MJD2Date(mjd)
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}
