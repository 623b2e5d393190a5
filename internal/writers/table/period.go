package table

import (
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/sdmx-tools/sdmx-cli/internal/core/domain"
)

// Frequency is an observation reporting frequency code.
type Frequency string

// Frequency codes.
const (
	FreqAnnual     Frequency = "A"
	FreqHalfYearly Frequency = "S"
	FreqQuarterly  Frequency = "Q"
	FreqMonthly    Frequency = "M"
	FreqWeekly     Frequency = "W"
	FreqBusiness   Frequency = "B"
	FreqDaily      Frequency = "D"
	FreqHourly     Frequency = "H"
)

// IsValid reports whether f is a recognised frequency code.
func (f Frequency) IsValid() bool {
	switch f {
	case FreqAnnual, FreqHalfYearly, FreqQuarterly, FreqMonthly,
		FreqWeekly, FreqBusiness, FreqDaily, FreqHourly:
		return true
	}
	return false
}

// Next returns the start of the period following t at this frequency.
func (f Frequency) Next(t time.Time) time.Time {
	switch f {
	case FreqAnnual:
		return t.AddDate(1, 0, 0)
	case FreqHalfYearly:
		return t.AddDate(0, 6, 0)
	case FreqQuarterly:
		return t.AddDate(0, 3, 0)
	case FreqMonthly:
		return t.AddDate(0, 1, 0)
	case FreqWeekly:
		return t.AddDate(0, 0, 7)
	case FreqBusiness:
		switch t.Weekday() {
		case time.Friday:
			return t.AddDate(0, 0, 3)
		case time.Saturday:
			return t.AddDate(0, 0, 2)
		default:
			return t.AddDate(0, 0, 1)
		}
	case FreqHourly:
		return t.Add(time.Hour)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// Prev returns the start of the period preceding t at this frequency.
func (f Frequency) Prev(t time.Time) time.Time {
	switch f {
	case FreqAnnual:
		return t.AddDate(-1, 0, 0)
	case FreqHalfYearly:
		return t.AddDate(0, -6, 0)
	case FreqQuarterly:
		return t.AddDate(0, -3, 0)
	case FreqMonthly:
		return t.AddDate(0, -1, 0)
	case FreqWeekly:
		return t.AddDate(0, 0, -7)
	case FreqBusiness:
		switch t.Weekday() {
		case time.Monday:
			return t.AddDate(0, 0, -3)
		case time.Sunday:
			return t.AddDate(0, 0, -2)
		default:
			return t.AddDate(0, 0, -1)
		}
	case FreqHourly:
		return t.Add(-time.Hour)
	default:
		return t.AddDate(0, 0, -1)
	}
}

// ParsePeriod parses an SDMX reporting period into the instant opening
// the period and the frequency the notation implies. Recognised forms:
// 2013, 2013-S1, 2013-Q3, 2013-01, 2013-W02, 2013-01-18, and full
// timestamps.
func ParsePeriod(s string) (time.Time, Frequency, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return time.Time{}, "", errors.New("empty period")

	case len(s) == 4:
		year, err := strconv.Atoi(s)
		if err != nil {
			return time.Time{}, "", errors.Newf("malformed period %q", s)
		}
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), FreqAnnual, nil

	case len(s) == 7 && (s[5] == 'S' || s[5] == 'Q' || s[5] == 'W'):
		year, err := strconv.Atoi(s[:4])
		if err != nil {
			return time.Time{}, "", errors.Newf("malformed period %q", s)
		}
		n, err := strconv.Atoi(s[6:])
		if err != nil {
			return time.Time{}, "", errors.Newf("malformed period %q", s)
		}
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		switch s[5] {
		case 'S':
			if n < 1 || n > 2 {
				return time.Time{}, "", errors.Newf("malformed period %q", s)
			}
			return start.AddDate(0, 6*(n-1), 0), FreqHalfYearly, nil
		case 'Q':
			if n < 1 || n > 4 {
				return time.Time{}, "", errors.Newf("malformed period %q", s)
			}
			return start.AddDate(0, 3*(n-1), 0), FreqQuarterly, nil
		default:
			if n < 1 || n > 53 {
				return time.Time{}, "", errors.Newf("malformed period %q", s)
			}
			return start.AddDate(0, 0, 7*(n-1)), FreqWeekly, nil
		}

	case len(s) == 8 && s[4] == '-' && s[5] == 'W':
		year, err1 := strconv.Atoi(s[:4])
		n, err2 := strconv.Atoi(s[6:])
		if err1 != nil || err2 != nil || n < 1 || n > 53 {
			return time.Time{}, "", errors.Newf("malformed period %q", s)
		}
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start.AddDate(0, 0, 7*(n-1)), FreqWeekly, nil

	case len(s) == 7:
		t, err := time.Parse("2006-01", s)
		if err != nil {
			return time.Time{}, "", errors.Newf("malformed period %q", s)
		}
		return t.UTC(), FreqMonthly, nil

	case len(s) == 10:
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, "", errors.Newf("malformed period %q", s)
		}
		return t.UTC(), FreqDaily, nil

	default:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), FreqHourly, nil
			}
		}
		return time.Time{}, "", errors.Newf("malformed period %q", s)
	}
}

// InferFrequency derives a series frequency from its key or attributes,
// falling back to the dataset attributes. An empty result means the
// frequency must come from the periods themselves.
func InferFrequency(ds *domain.DataSet, key domain.SeriesKey) Frequency {
	if v, ok := key.Get("FREQ"); ok {
		return Frequency(v)
	}
	for _, a := range key.Attributes {
		if a.ID == "FREQ" {
			return Frequency(a.Value)
		}
	}
	if ds != nil {
		for _, a := range ds.Attributes {
			if a.ID == "FREQ" {
				return Frequency(a.Value)
			}
		}
	}
	return ""
}
