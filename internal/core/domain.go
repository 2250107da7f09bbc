package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindIncome  Kind = "pemasukan"
	KindExpense Kind = "pengeluaran"
)

// Category groups used by the 50/30/20 analysis.
const (
	GroupNeeds    Group = "Needs"
	GroupWants    Group = "Wants"
	GroupSavings  Group = "Savings"
	GroupUnmapped Group = "Unmapped"
)

// DefaultTimezone is assigned to users registered without one.
const DefaultTimezone = "Asia/Jakarta"

type (
	Kind  string
	Group string

	// Date is a calendar day. The clock part is always midnight UTC so
	// values compare by day regardless of the zone they were read in.
	Date struct {
		time.Time
	}

	Transaction struct {
		Date        Date
		Description string
		Amount      int64
		Category    string // lowercased
		Kind        Kind
		UserID      int64
		// AmountState records how Amount was obtained from raw input.
		AmountState IntState
	}

	Budget struct {
		Date        Date
		Category    string // lowercased
		Amount      int64
		UserID      int64
		AmountState IntState
	}

	CategoryGroup struct {
		Category string
		Group    Group
	}

	UserPrefs struct {
		UserID               int64
		Username             string
		NotificationsEnabled bool
		MorningReminder      bool
		EveningSummary       bool
		LunchReminder        bool
		BudgetAlerts         bool
		WeeklyReport         bool
		LastActive           time.Time
		Timezone             string
	}
)

var (
	ErrInvalidDay          = errors.New("invalid day")
	ErrInvalidMonth        = errors.New("invalid month")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyDescription    = errors.New("empty description")
	ErrEmptyCategory       = errors.New("empty category")
	ErrInvalidKind         = errors.New("invalid transaction kind")
	ErrMissingUser         = errors.New("missing user id")
	ErrNoCategorySeparator = errors.New("missing '/' category separator")
	ErrTooManySeparators   = errors.New("more than one '/' separator")
	ErrNoSign              = errors.New("missing '+' or '-' amount sign")
	ErrAmbiguousSign       = errors.New("amount sign appears more than once")
	ErrInvalidRange        = errors.New("invalid date range")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// Today returns the current calendar day in loc.
func Today(now time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// AddDays returns the date n days later (or earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// Before reports whether d is an earlier day than o.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

// After reports whether d is a later day than o.
func (d Date) After(o Date) bool { return d.Time.After(o.Time) }

// Equal reports whether d and o are the same day.
func (d Date) Equal(o Date) bool { return d.Time.Equal(o.Time) }

// Sheet renders the date the way rows are written: dd-mm-yyyy.
func (d Date) Sheet() string {
	return d.Format("02-01-2006")
}

// ParseKind normalizes a stored kind cell. Unknown values yield "".
func ParseKind(s string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindIncome:
		return KindIncome
	case KindExpense:
		return KindExpense
	}
	return ""
}

// Title returns "Pemasukan" or "Pengeluaran".
func (k Kind) Title() string {
	s := string(k)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseGroup maps a lookup cell to a Group; anything unknown is Unmapped.
func ParseGroup(s string) Group {
	switch g := Group(strings.TrimSpace(s)); g {
	case GroupNeeds, GroupWants, GroupSavings:
		return g
	}
	return GroupUnmapped
}

// NormalizeCategory lowercases and trims a category label.
func NormalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if t.Kind != KindIncome && t.Kind != KindExpense {
		return ErrInvalidKind
	}
	if t.Amount < 0 {
		return ErrInvalidAmount
	}
	if t.UserID == 0 {
		return ErrMissingUser
	}
	return nil
}

func (b Budget) Validate() error {
	if err := b.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if b.Amount < 0 {
		return ErrInvalidAmount
	}
	if b.UserID == 0 {
		return ErrMissingUser
	}
	return nil
}

// DefaultPrefs returns the preferences a newly registered user starts with.
func DefaultPrefs(userID int64, username string, now time.Time) UserPrefs {
	return UserPrefs{
		UserID:               userID,
		Username:             username,
		NotificationsEnabled: true,
		MorningReminder:      true,
		EveningSummary:       true,
		LunchReminder:        false,
		BudgetAlerts:         true,
		WeeklyReport:         true,
		LastActive:           now,
		Timezone:             DefaultTimezone,
	}
}
