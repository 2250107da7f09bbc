// Package report derives every aggregate the bot and the notifier show from
// one fetch of the row store.
//
// A Snapshot is a fold over the rows owned by one user inside one inclusive
// date range. Nothing is cached between calls: Load always re-reads the
// store, so two loads over unchanged rows give identical snapshots.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
)

var hundred = decimal.NewFromInt(100)

type (
	// Detail is the income/expense breakdown shown by the report commands.
	Detail struct {
		Income  int64
		Expense int64
		// Balance is Income - Expense and may be negative.
		Balance    int64
		ByCategory map[string]int64
		// Transactions are ordered by date, oldest first; rows on the same
		// day keep their sheet order.
		Transactions []core.Transaction
	}

	BudgetStatus struct {
		Category  string
		Budget    int64
		Spent     int64
		Remaining int64
		Percent   decimal.Decimal
	}

	DayAmount struct {
		Date   core.Date
		Amount int64
	}

	// GroupTotals sums expenses by 50/30/20 group.
	GroupTotals struct {
		Needs    int64
		Wants    int64
		Savings  int64
		Unmapped int64
	}

	// Quality counts rows whose amount cell was blank or unreadable.
	Quality struct {
		EmptyAmounts       int
		UnparseableAmounts int
	}

	Snapshot struct {
		UserID int64
		Period core.Range

		txs        []core.Transaction
		budgetRows []core.Budget
		groups     map[string]core.Group

		income     int64
		expense    int64
		byCategory map[string]int64
		catOrder   []string
		budgets    map[string]int64
		budgetOrd  []string
		daily      map[core.Date]int64
		quality    Quality
	}
)

// Rows is the raw content of the store, fetched once.
type Rows struct {
	Transactions []core.Transaction
	Budgets      []core.Budget
	Groups       []core.CategoryGroup
}

// Build folds rows into a snapshot for userID over period in a single pass
// over each table.
func Build(rows Rows, userID int64, period core.Range) *Snapshot {
	s := &Snapshot{
		UserID:     userID,
		Period:     period,
		groups:     make(map[string]core.Group, len(rows.Groups)),
		byCategory: map[string]int64{},
		budgets:    map[string]int64{},
		daily:      map[core.Date]int64{},
	}
	for _, g := range rows.Groups {
		if _, ok := s.groups[g.Category]; !ok {
			s.groups[g.Category] = g.Group
		}
	}

	for _, t := range rows.Transactions {
		if t.UserID != userID || !period.Contains(t.Date) {
			continue
		}
		s.txs = append(s.txs, t)
		s.quality.count(t.AmountState)
		switch t.Kind {
		case core.KindIncome:
			s.income += t.Amount
		case core.KindExpense:
			s.expense += t.Amount
			if _, seen := s.byCategory[t.Category]; !seen {
				s.catOrder = append(s.catOrder, t.Category)
			}
			s.byCategory[t.Category] += t.Amount
			s.daily[t.Date] += t.Amount
		}
	}
	sort.SliceStable(s.txs, func(i, j int) bool { return s.txs[i].Date.Before(s.txs[j].Date) })

	for _, b := range rows.Budgets {
		if b.UserID != userID || !period.Contains(b.Date) {
			continue
		}
		s.budgetRows = append(s.budgetRows, b)
		s.quality.count(b.AmountState)
		if _, seen := s.budgets[b.Category]; !seen {
			s.budgetOrd = append(s.budgetOrd, b.Category)
		}
		s.budgets[b.Category] += b.Amount
	}
	sort.SliceStable(s.budgetRows, func(i, j int) bool { return s.budgetRows[i].Date.Before(s.budgetRows[j].Date) })
	return s
}

func (q *Quality) count(st core.IntState) {
	switch st {
	case core.IntEmpty:
		q.EmptyAmounts++
	case core.IntUnparseable:
		q.UnparseableAmounts++
	}
}

// Flagged is the number of rows with a suspicious amount.
func (q Quality) Flagged() int { return q.EmptyAmounts + q.UnparseableAmounts }

// Budgets returns the summed budget per category. Several rows for one
// category within the period add up.
func (s *Snapshot) Budgets() map[string]int64 {
	out := make(map[string]int64, len(s.budgets))
	for k, v := range s.budgets {
		out[k] = v
	}
	return out
}

// Budget returns the summed budget for category, 0 when none is set.
func (s *Snapshot) Budget(category string) int64 {
	return s.budgets[core.NormalizeCategory(category)]
}

// Spent returns the expense total for category, matched case-insensitively.
func (s *Snapshot) Spent(category string) int64 {
	return s.byCategory[core.NormalizeCategory(category)]
}

func (s *Snapshot) Income() int64  { return s.income }
func (s *Snapshot) Expense() int64 { return s.expense }
func (s *Snapshot) Balance() int64 { return s.income - s.expense }

// Count is the number of transactions in the period, of any kind.
func (s *Snapshot) Count() int { return len(s.txs) }

func (s *Snapshot) Detail() Detail {
	by := make(map[string]int64, len(s.byCategory))
	for k, v := range s.byCategory {
		by[k] = v
	}
	return Detail{
		Income:       s.income,
		Expense:      s.expense,
		Balance:      s.income - s.expense,
		ByCategory:   by,
		Transactions: append([]core.Transaction(nil), s.txs...),
	}
}

// ExpenseCategories returns expense categories in the order they first
// appear in the sheet.
func (s *Snapshot) ExpenseCategories() []string {
	return append([]string(nil), s.catOrder...)
}

// BudgetCategories returns budgeted categories in first-seen order.
func (s *Snapshot) BudgetCategories() []string {
	return append([]string(nil), s.budgetOrd...)
}

// Recent returns up to n transactions, newest first.
func (s *Snapshot) Recent(n int) []core.Transaction {
	out := make([]core.Transaction, 0, n)
	for i := len(s.txs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.txs[i])
	}
	return out
}

// BudgetRows returns the budget rows inside the period, oldest first.
func (s *Snapshot) BudgetRows() []core.Budget {
	return append([]core.Budget(nil), s.budgetRows...)
}

// Status computes the budget status of one category.
func (s *Snapshot) Status(category string) BudgetStatus {
	cat := core.NormalizeCategory(category)
	budget, spent := s.budgets[cat], s.byCategory[cat]
	return BudgetStatus{
		Category:  cat,
		Budget:    budget,
		Spent:     spent,
		Remaining: budget - spent,
		Percent:   Percent(spent, budget),
	}
}

// BudgetStatuses returns one status per budgeted category, highest usage
// first. Ties keep first-seen order.
func (s *Snapshot) BudgetStatuses() []BudgetStatus {
	out := make([]BudgetStatus, 0, len(s.budgetOrd))
	for _, cat := range s.budgetOrd {
		out = append(out, s.Status(cat))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Percent.GreaterThan(out[j].Percent) })
	return out
}

// Alerts returns the budget statuses at or above threshold percent.
func (s *Snapshot) Alerts(threshold decimal.Decimal) []BudgetStatus {
	var out []BudgetStatus
	for _, st := range s.BudgetStatuses() {
		if st.Percent.GreaterThanOrEqual(threshold) {
			out = append(out, st)
		}
	}
	return out
}

// DailyExpenses returns expense totals per day, oldest first.
func (s *Snapshot) DailyExpenses() []DayAmount {
	out := make([]DayAmount, 0, len(s.daily))
	for d, amt := range s.daily {
		out = append(out, DayAmount{Date: d, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// GroupTotals sums expenses by the category's 50/30/20 group. Categories
// missing from the lookup count as Unmapped.
func (s *Snapshot) GroupTotals() GroupTotals {
	var g GroupTotals
	for cat, amt := range s.byCategory {
		switch s.groups[cat] {
		case core.GroupNeeds:
			g.Needs += amt
		case core.GroupWants:
			g.Wants += amt
		case core.GroupSavings:
			g.Savings += amt
		default:
			g.Unmapped += amt
		}
	}
	return g
}

// Shares returns the Needs, Wants and Savings fractions (0..1) of their
// combined total. Unmapped spending is left out; all are zero when the
// combined total is zero.
func (g GroupTotals) Shares() (needs, wants, savings decimal.Decimal) {
	total := g.Needs + g.Wants + g.Savings
	if total <= 0 {
		return decimal.Zero, decimal.Zero, decimal.Zero
	}
	t := decimal.NewFromInt(total)
	return decimal.NewFromInt(g.Needs).Div(t),
		decimal.NewFromInt(g.Wants).Div(t),
		decimal.NewFromInt(g.Savings).Div(t)
}

func (s *Snapshot) Quality() Quality { return s.quality }

// Percent returns part/whole*100, or zero when whole is not positive.
func Percent(part, whole int64) decimal.Decimal {
	if whole <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(part).Mul(hundred).Div(decimal.NewFromInt(whole))
}
