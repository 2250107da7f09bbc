package core

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Accepted stored date layouts, tried in order.
var dateLayouts = []string{"2-1-2006", "2006-1-2", "2/1/2006"}

// Range is an inclusive span of calendar days.
type Range struct {
	Start Date
	End   Date
}

// ParseDate reads a date cell. time.Time values pass through; strings are
// tried against dd-mm-yyyy, yyyy-mm-dd and dd/mm/yyyy.
func ParseDate(v any) (Date, bool) {
	switch x := v.(type) {
	case nil:
		return Date{}, false
	case Date:
		return x, !x.IsZero()
	case time.Time:
		if x.IsZero() {
			return Date{}, false
		}
		return DateOf(x), true
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return Date{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), true
		}
	}
	return Date{}, false
}

// Contains reports whether d falls within the range, both ends included.
func (r Range) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days returns the number of days in the range.
func (r Range) Days() int {
	return int(r.End.Sub(r.Start.Time).Hours()/24) + 1
}

// Shift moves both ends by n days.
func (r Range) Shift(n int) Range {
	return Range{Start: r.Start.AddDays(n), End: r.End.AddDays(n)}
}

func (r Range) String() string {
	return r.Start.Sheet() + " s/d " + r.End.Sheet()
}

// DayRange is the single day d.
func DayRange(d Date) Range {
	return Range{Start: d, End: d}
}

// WeekRange is Monday through Sunday of d's week.
func WeekRange(d Date) Range {
	offset := (int(d.Weekday()) + 6) % 7
	start := d.AddDays(-offset)
	return Range{Start: start, End: start.AddDays(6)}
}

// MonthRange is the calendar month containing d.
func MonthRange(d Date) Range {
	start := NewDate(d.Year(), int(d.Month()), 1)
	end := Date{Time: start.AddDate(0, 1, -1)}
	return Range{Start: start, End: end}
}

// PreviousMonthRange is the calendar month before d's month.
func PreviousMonthRange(d Date) Range {
	firstOfMonth := NewDate(d.Year(), int(d.Month()), 1)
	return MonthRange(firstOfMonth.AddDays(-1))
}

// YearRange is 1 January through 31 December of d's year.
func YearRange(d Date) Range {
	return Range{Start: NewDate(d.Year(), 1, 1), End: NewDate(d.Year(), 12, 31)}
}

// RangeFromArgs interprets export arguments relative to today: empty is the
// current month, "tahun" the current year, and two dd-mm-yyyy dates an
// explicit span (swapped if given in reverse).
func RangeFromArgs(args string, today Date) (Range, error) {
	s := strings.TrimSpace(args)
	if s == "" {
		return MonthRange(today), nil
	}
	if strings.EqualFold(s, "tahun") {
		return YearRange(today), nil
	}
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Range{}, ErrInvalidRange
	}
	start, err := time.Parse(dateLayouts[0], fields[0])
	if err != nil {
		return Range{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	end, err := time.Parse(dateLayouts[0], fields[1])
	if err != nil {
		return Range{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	r := Range{Start: DateOf(start), End: DateOf(end)}
	if r.Start.After(r.End) {
		r.Start, r.End = r.End, r.Start
	}
	return r, nil
}

// MonthFromArgs reads "<mm> <yyyy>" into that month's range.
func MonthFromArgs(args string) (Range, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return Range{}, ErrInvalidRange
	}
	month, err := strconv.Atoi(fields[0])
	if err != nil {
		return Range{}, fmt.Errorf("%w: month %q", ErrInvalidRange, fields[0])
	}
	if month < 1 || month > 12 {
		return Range{}, ErrInvalidMonth
	}
	year, err := strconv.Atoi(fields[1])
	if err != nil || year < 1 {
		return Range{}, fmt.Errorf("%w: year %q", ErrInvalidRange, fields[1])
	}
	return MonthRange(NewDate(year, month, 1)), nil
}
