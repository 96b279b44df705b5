package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinYear is the earliest application year the vendor query accepts.
const MinYear = 1960

// ErrYearTooEarly is returned by ForYear for years before MinYear.
var ErrYearTooEarly = errors.New("year before 1960")

// PeriodKind is the tag of a Period.
type PeriodKind int

const (
	// KindThisWeek selects applications lodged last calendar week.
	KindThisWeek PeriodKind = iota

	// KindThisMonth selects applications lodged in the current month.
	KindThisMonth

	// KindLastMonth selects applications lodged in the previous month.
	KindLastMonth

	// KindYear selects applications by application year.
	KindYear
)

// Period is the server-side date filter for a query. The zero value is ThisWeek.
type Period struct {
	Kind PeriodKind
	Year int
}

// Convenience values for the fixed periods.
var (
	ThisWeek  = Period{Kind: KindThisWeek}
	ThisMonth = Period{Kind: KindThisMonth}
	LastMonth = Period{Kind: KindLastMonth}
)

// ForYear returns a year period, rejecting years before MinYear.
func ForYear(year int) (Period, error) {
	if year < MinYear {
		return Period{}, fmt.Errorf("%w: %d", ErrYearTooEarly, year)
	}
	return Period{Kind: KindYear, Year: year}, nil
}

// ParsePeriod converts the textual period used by configuration and the
// MORPH_PERIOD environment variable. Anything unrecognised, including years
// before MinYear, falls back to ThisWeek.
func ParsePeriod(s string) Period {
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "thismonth":
		return ThisMonth
	case "lastmonth":
		return LastMonth
	case "thisweek", "":
		return ThisWeek
	}

	year, err := strconv.Atoi(s)
	if err != nil {
		return ThisWeek
	}
	p, err := ForYear(year)
	if err != nil {
		return ThisWeek
	}
	return p
}

// String returns the canonical textual form accepted by ParsePeriod.
func (p Period) String() string {
	switch p.Kind {
	case KindThisMonth:
		return "thismonth"
	case KindLastMonth:
		return "lastmonth"
	case KindYear:
		return strconv.Itoa(p.Year)
	default:
		return "thisweek"
	}
}

// QueryName is the label the server uses to identify the saved query.
func (p Period) QueryName() string {
	switch p.Kind {
	case KindThisMonth:
		return "SubmittedThisMonth"
	case KindLastMonth:
		return "SubmittedLastMonth"
	case KindYear:
		return "Applications_List_Search"
	default:
		return "SubmittedThisWeek"
	}
}
