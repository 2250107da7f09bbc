package report

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
)

// Thresholds shared by the monthly review.
var (
	minSavingRate  = decimal.NewFromInt(10)
	superSaverRate = decimal.NewFromInt(30)
	budgetLimitPct = decimal.NewFromInt(100)
)

type (
	DailySummary struct {
		Date       core.Date
		Count      int
		Income     int64
		Expense    int64
		Net        int64
		ByCategory []core.CategoryAmount
	}

	// WeekComparison is present only when last week had expenses.
	WeekComparison struct {
		LastWeekExpense int64
		// ExpenseChange is the percent change of this week's expenses.
		ExpenseChange decimal.Decimal
		SavingRate    decimal.Decimal
	}

	WeeklyReport struct {
		Period        core.Range
		Income        int64
		Expense       int64
		Net           int64
		Count         int
		TopCategories []core.CategoryAmount
		LastWeek      *WeekComparison
	}

	MonthlyReport struct {
		Period      core.Range
		Income      int64
		Expense     int64
		Net         int64
		SavingRate  decimal.Decimal
		Count       int
		Budgets     []BudgetStatus
		HighestDay  *DayAmount
		TopCategory *core.CategoryAmount
		// OverBudget lists categories above 100% in budget order.
		OverBudget    []string
		LowSavings    bool
		SuperSaver    bool
		StayedInLimit bool
	}

	// Projection extrapolates month-to-date spending linearly to month end.
	Projection struct {
		DaysLeft     int
		DailyAverage decimal.Decimal
		Projected    decimal.Decimal
		// Percent is Projected relative to the budget.
		Percent decimal.Decimal
	}
)

// SavingRate is net/income as a percentage, zero without income.
func SavingRate(net, income int64) decimal.Decimal {
	return Percent(net, income)
}

func NewDailySummary(s *Snapshot, day core.Date) DailySummary {
	out := DailySummary{
		Date:    day,
		Count:   s.Count(),
		Income:  s.Income(),
		Expense: s.Expense(),
		Net:     s.Balance(),
	}
	for _, cat := range s.catOrder {
		out.ByCategory = append(out.ByCategory, core.CategoryAmount{Name: cat, Amount: s.byCategory[cat]})
	}
	return out
}

// NewWeeklyReport compares cur with the week before it.
func NewWeeklyReport(cur, prev *Snapshot) WeeklyReport {
	r := WeeklyReport{
		Period:        cur.Period,
		Income:        cur.Income(),
		Expense:       cur.Expense(),
		Net:           cur.Balance(),
		Count:         cur.Count(),
		TopCategories: core.SortedAmounts(cur.byCategory),
	}
	if prev != nil && prev.Expense() > 0 {
		last := prev.Expense()
		r.LastWeek = &WeekComparison{
			LastWeekExpense: last,
			ExpenseChange:   Percent(r.Expense-last, last),
			SavingRate:      SavingRate(r.Net, r.Income),
		}
	}
	return r
}

func NewMonthlyReport(s *Snapshot) MonthlyReport {
	r := MonthlyReport{
		Period:     s.Period,
		Income:     s.Income(),
		Expense:    s.Expense(),
		Net:        s.Balance(),
		SavingRate: SavingRate(s.Balance(), s.Income()),
		Count:      s.Count(),
	}
	for _, cat := range s.budgetOrd {
		st := s.Status(cat)
		r.Budgets = append(r.Budgets, st)
		if st.Percent.GreaterThan(budgetLimitPct) {
			r.OverBudget = append(r.OverBudget, cat)
		}
	}
	for _, d := range s.DailyExpenses() {
		if r.HighestDay == nil || d.Amount > r.HighestDay.Amount {
			day := d
			r.HighestDay = &day
		}
	}
	for _, cat := range s.catOrder {
		if amt := s.byCategory[cat]; r.TopCategory == nil || amt > r.TopCategory.Amount {
			r.TopCategory = &core.CategoryAmount{Name: cat, Amount: amt}
		}
	}
	r.LowSavings = r.SavingRate.LessThan(minSavingRate)
	r.SuperSaver = r.SavingRate.GreaterThanOrEqual(superSaverRate)
	r.StayedInLimit = len(r.Budgets) > 0 && len(r.OverBudget) == 0
	return r
}

// Project extrapolates spent so far this month to the end of today's month.
func Project(spent, budget int64, today core.Date) Projection {
	month := core.MonthRange(today)
	p := Projection{
		DaysLeft:     month.End.Day() - today.Day() + 1,
		DailyAverage: decimal.NewFromInt(spent).Div(decimal.NewFromInt(int64(today.Day()))),
	}
	if p.DailyAverage.IsPositive() {
		p.Projected = p.DailyAverage.Mul(decimal.NewFromInt(int64(month.End.Day())))
	}
	if budget > 0 {
		p.Percent = p.Projected.Mul(hundred).Div(decimal.NewFromInt(budget))
	}
	return p
}

// Weekly builds the report for the Monday-Sunday week containing today,
// comparing it with the week before from the same fetch.
func (l *Loader) Weekly(ctx context.Context, userID int64, today core.Date) (WeeklyReport, error) {
	week := core.WeekRange(today)
	snaps, err := l.LoadPeriods(ctx, userID, week, week.Shift(-7))
	if err != nil {
		return WeeklyReport{}, err
	}
	return NewWeeklyReport(snaps[0], snaps[1]), nil
}

func (l *Loader) Monthly(ctx context.Context, userID int64, period core.Range) (MonthlyReport, error) {
	s, err := l.Load(ctx, userID, period)
	if err != nil {
		return MonthlyReport{}, err
	}
	return NewMonthlyReport(s), nil
}

func (l *Loader) Daily(ctx context.Context, userID int64, day core.Date) (DailySummary, error) {
	s, err := l.Load(ctx, userID, core.DayRange(day))
	if err != nil {
		return DailySummary{}, err
	}
	return NewDailySummary(s, day), nil
}

// HasActivity reports whether the user recorded any transaction on day.
func (l *Loader) HasActivity(ctx context.Context, userID int64, day core.Date) (bool, error) {
	s, err := l.Load(ctx, userID, core.DayRange(day))
	if err != nil {
		return false, err
	}
	return s.Count() > 0, nil
}

// Streak counts consecutive days with at least one transaction, ending at
// today. A day without activity today still counts from yesterday.
func (l *Loader) Streak(ctx context.Context, userID int64, today core.Date) (int, error) {
	rows, err := l.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	return StreakFrom(rows, userID, today), nil
}

// StreakFrom is Streak over already fetched rows.
func StreakFrom(rows Rows, userID int64, today core.Date) int {
	active := make(map[core.Date]struct{})
	for _, t := range rows.Transactions {
		if t.UserID == userID && !t.Date.After(today) {
			active[t.Date] = struct{}{}
		}
	}
	day := today
	if _, ok := active[day]; !ok {
		day = day.AddDays(-1)
	}
	n := 0
	for {
		if _, ok := active[day]; !ok {
			return n
		}
		n++
		day = day.AddDays(-1)
	}
}
