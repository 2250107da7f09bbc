package present

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/report"
)

const topWeeklyCategories = 3

// MorningReminder nudges the user depending on whether yesterday has any
// recorded transaction.
func MorningReminder(trackedYesterday bool) string {
	if trackedYesterday {
		return "☀️ <b>Selamat Pagi!</b>\n\n" +
			"✅ Bagus! Kemarin Anda sudah mencatat transaksi.\n" +
			"Mari lanjutkan kebiasaan baik ini hari ini! 💪\n\n" +
			"💡 <i>Tips: Catat pengeluaran segera setelah transaksi agar tidak lupa.</i>"
	}
	return "☀️ <b>Selamat Pagi!</b>\n\n" +
		"⚠️ Sepertinya kemarin Anda lupa mencatat transaksi.\n" +
		"Tidak apa-apa, mari mulai hari ini dengan lebih baik! 🌟\n\n" +
		"📝 Gunakan format: <code>[keterangan] -[jumlah] /[kategori]</code>"
}

// LunchReminder is the optional midday nudge.
const LunchReminder = "🍽️ <b>Lunch Time Reminder!</b>\n\n" +
	"Jangan lupa catat pengeluaran makan siang Anda! 📝\n" +
	"Tracking yang konsisten = kontrol keuangan yang lebih baik 💪\n\n" +
	"<i>Format: Makan siang -[jumlah] /makanan</i>"

// EveningSummary recaps one day.
func EveningSummary(s report.DailySummary) string {
	if s.Count == 0 {
		return "🌙 <b>Ringkasan Hari Ini</b>\n\n" +
			"📝 Belum ada transaksi tercatat hari ini.\n" +
			"Jangan lupa catat pengeluaran Anda!\n\n" +
			"💤 <i>Selamat beristirahat!</i>"
	}

	var b strings.Builder
	b.WriteString("🌙 <b>Ringkasan Hari Ini</b>\n")
	fmt.Fprintf(&b, "📅 %s\n\n", s.Date.Format("02 January 2006"))
	b.WriteString("📊 <b>Statistik:</b>\n")
	fmt.Fprintf(&b, "• Transaksi: %d kali\n", s.Count)
	fmt.Fprintf(&b, "• Pemasukan: %s\n", Rupiah(s.Income))
	fmt.Fprintf(&b, "• Pengeluaran: %s\n", Rupiah(s.Expense))
	fmt.Fprintf(&b, "• Net: %s\n\n", Rupiah(s.Net))
	if len(s.ByCategory) > 0 {
		b.WriteString("📂 <b>Per Kategori:</b>\n")
		for _, c := range s.ByCategory {
			fmt.Fprintf(&b, "• %s: %s\n", Esc(Title(c.Name)), Rupiah(c.Amount))
		}
	}
	if s.Net >= 0 {
		b.WriteString("\n✨ <i>Great job managing your finances today!</i>")
	} else {
		b.WriteString("\n💡 <i>Tomorrow is a new opportunity to save more!</i>")
	}
	return b.String()
}

// AlertMarker grades a budget usage percentage.
func AlertMarker(pct decimal.Decimal) string {
	switch {
	case pct.GreaterThanOrEqual(pct100):
		return MarkerCritical
	case pct.GreaterThanOrEqual(pct90):
		return MarkerHigh
	case pct.GreaterThanOrEqual(pct80):
		return MarkerModerate
	default:
		return MarkerLow
	}
}

// BudgetAlert lists the budgets that crossed the alert threshold.
func BudgetAlert(alerts []report.BudgetStatus) string {
	var b strings.Builder
	b.WriteString("🚨 <b>BUDGET ALERT!</b> 🚨\n\n")
	for _, a := range alerts {
		fmt.Fprintf(&b, "%s <b>%s</b>\n", AlertMarker(a.Percent), Esc(Title(a.Category)))
		fmt.Fprintf(&b, "• Used: %s%% (%s / %s)\n", a.Percent.StringFixed(0), Rupiah(a.Spent), Rupiah(a.Budget))
		fmt.Fprintf(&b, "• Remaining: %s\n\n", Rupiah(a.Remaining))
	}
	b.WriteString("💡 <i>Tip: Review your spending and adjust if needed!</i>")
	return b.String()
}

// WeeklyReport renders the weekly summary with the week-over-week
// comparison when last week had spending.
func WeeklyReport(r report.WeeklyReport) string {
	var b strings.Builder
	b.WriteString("📊 <b>WEEKLY FINANCIAL REPORT</b> 📊\n")
	fmt.Fprintf(&b, "📅 %s - %s\n\n", r.Period.Start.Format("02/01"), r.Period.End.Format("02/01/2006"))
	b.WriteString("💰 <b>Summary:</b>\n")
	fmt.Fprintf(&b, "• Income: %s\n", Rupiah(r.Income))
	fmt.Fprintf(&b, "• Expenses: %s\n", Rupiah(r.Expense))
	fmt.Fprintf(&b, "• Net: %s\n", Rupiah(r.Net))
	fmt.Fprintf(&b, "• Transactions: %d\n\n", r.Count)

	if c := r.LastWeek; c != nil {
		b.WriteString("📈 <b>vs Last Week:</b>\n")
		if c.ExpenseChange.IsPositive() {
			fmt.Fprintf(&b, "• Expenses ↗️ +%s%%\n", c.ExpenseChange.StringFixed(0))
		} else {
			fmt.Fprintf(&b, "• Expenses ↘️ %s%%\n", c.ExpenseChange.StringFixed(0))
		}
		if c.SavingRate.IsPositive() {
			fmt.Fprintf(&b, "• Saving rate: %s%% 👍\n", c.SavingRate.StringFixed(0))
		}
	}

	if len(r.TopCategories) > 0 {
		b.WriteString("\n📂 <b>Top Spending Categories:</b>\n")
		for i, c := range r.TopCategories {
			if i == topWeeklyCategories {
				break
			}
			fmt.Fprintf(&b, "%d. %s: %s\n", i+1, Esc(Title(c.Name)), Rupiah(c.Amount))
		}
	}

	b.WriteString("\n💡 <b>Insight:</b> ")
	if r.Net > 0 {
		fmt.Fprintf(&b, "Great week! You saved %s (%s%% of income)",
			Rupiah(r.Net), report.SavingRate(r.Net, r.Income).StringFixed(0))
	} else {
		b.WriteString("Consider reducing expenses to improve your savings rate.")
	}
	return b.String()
}

// MonthlyReport renders the review of a closed month.
func MonthlyReport(r report.MonthlyReport) string {
	var b strings.Builder
	b.WriteString("📊 <b>MONTHLY FINANCIAL REPORT</b> 📊\n")
	fmt.Fprintf(&b, "📅 %s\n", MonthName(r.Period.Start))
	b.WriteString("━━━━━━━━━━━━━━━━━\n\n")
	b.WriteString("💰 <b>Financial Overview:</b>\n")
	fmt.Fprintf(&b, "• Total Income: %s\n", Rupiah(r.Income))
	fmt.Fprintf(&b, "• Total Expenses: %s\n", Rupiah(r.Expense))
	fmt.Fprintf(&b, "• Net Savings: %s\n", Rupiah(r.Net))
	fmt.Fprintf(&b, "• Saving Rate: %s%%\n\n", r.SavingRate.StringFixed(1))

	if len(r.Budgets) > 0 {
		b.WriteString("🎯 <b>Budget Performance:</b>\n")
		for _, st := range r.Budgets {
			marker, status := MarkerLow, "Good"
			switch {
			case st.Percent.GreaterThan(pct100):
				marker, status = MarkerCritical, "OVER"
			case st.Percent.GreaterThan(pct80):
				marker, status = MarkerModerate, "Warning"
			}
			fmt.Fprintf(&b, "%s %s: %s%% (%s)\n", marker, Esc(Title(st.Category)), st.Percent.StringFixed(0), status)
		}
	}

	highest, top := "-", "-"
	if d := r.HighestDay; d != nil {
		highest = fmt.Sprintf("%s (%s)", d.Date.Format("02 January"), Rupiah(d.Amount))
	}
	if c := r.TopCategory; c != nil {
		top = fmt.Sprintf("%s (%s)", Esc(Title(c.Name)), Rupiah(c.Amount))
	}
	b.WriteString("\n📈 <b>Trends:</b>\n")
	fmt.Fprintf(&b, "• Highest spending day: %s\n", highest)
	fmt.Fprintf(&b, "• Most expensive category: %s\n", top)
	fmt.Fprintf(&b, "• Total transactions: %d\n", r.Count)

	b.WriteString("\n💡 <b>Recommendations:</b>\n")
	if r.LowSavings {
		b.WriteString("• Try to save at least 10% of your income\n")
	}
	if len(r.OverBudget) > 0 {
		fmt.Fprintf(&b, "• Focus on reducing %s expenses\n", Esc(strings.Join(r.OverBudget, ", ")))
	}

	var achievements []string
	if r.SuperSaver {
		achievements = append(achievements, "🏆 Super Saver - Saved 30%+ of income!")
	}
	if r.StayedInLimit {
		achievements = append(achievements, "🎯 Budget Master - Stayed within all budgets!")
	}
	if len(achievements) > 0 {
		b.WriteString("\n🏆 <b>Achievements:</b>\n")
		for _, a := range achievements {
			fmt.Fprintf(&b, "• %s\n", a)
		}
	}
	return b.String()
}

// Achievement announces an unlocked achievement; points are shown when
// positive.
func Achievement(name, desc string, points int) string {
	var b strings.Builder
	b.WriteString("🏆 <b>ACHIEVEMENT UNLOCKED!</b> 🏆\n\n")
	fmt.Fprintf(&b, "🎯 <b>%s</b>\n", Esc(name))
	fmt.Fprintf(&b, "📝 %s\n", Esc(desc))
	if points > 0 {
		fmt.Fprintf(&b, "✨ +%d XP\n", points)
	}
	b.WriteString("\n🎉 Congratulations! Keep up the great work!")
	return b.String()
}

var streakMarkers = map[int]string{
	7:   "🔥",
	30:  "💪",
	60:  "🌟",
	90:  "⭐",
	100: "💯",
	365: "👑",
}

// StreakMilestone renders the message for a tracked-days streak. ok is
// false unless days is one of 7, 30, 60, 90, 100 or 365.
func StreakMilestone(days int) (msg string, ok bool) {
	marker, ok := streakMarkers[days]
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s <b>STREAK MILESTONE!</b>\n\n"+
		"Amazing! You've tracked your finances for %d days straight!\n\n"+
		"Keep the momentum going! 🚀", marker, days), true
}

var pct75 = decimal.NewFromInt(75)

// SavingsGoal reports progress toward a savings goal. ok is false below
// 75% of target, where nothing is sent.
func SavingsGoal(goal string, current, target int64) (msg string, ok bool) {
	pct := report.Percent(current, target)
	name := Esc(goal)
	switch {
	case pct.GreaterThanOrEqual(pct100):
		return fmt.Sprintf("🎯 <b>GOAL ACHIEVED!</b> 🎯\n\n"+
			"Congratulations! You've reached your '%s' savings goal!\n"+
			"Target: %s\n"+
			"Achieved: %s\n\n"+
			"Time to set a new goal? 🚀", name, Rupiah(target), Rupiah(current)), true
	case pct.GreaterThanOrEqual(pct75):
		return fmt.Sprintf("📈 <b>SAVINGS GOAL UPDATE</b>\n\n"+
			"You're %s%% towards your '%s' goal!\n"+
			"Current: %s\n"+
			"Target: %s\n"+
			"Remaining: %s\n\n"+
			"Almost there! Keep saving! 💪", pct.StringFixed(0), name, Rupiah(current), Rupiah(target), Rupiah(target-current)), true
	}
	return "", false
}

// TransactionConfirmation acknowledges one recorded transaction. alert is
// the category's budget status when it is above 80%, or nil.
func TransactionConfirmation(kind core.Kind, amount int64, category string, alert *report.BudgetStatus) string {
	mark := "📤"
	if kind == core.KindIncome {
		mark = "📥"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>Transaksi Tercatat!</b>\n\n", mark)
	fmt.Fprintf(&b, "Jenis: %s\n", kind.Title())
	fmt.Fprintf(&b, "Jumlah: %s\n", Rupiah(amount))
	fmt.Fprintf(&b, "Kategori: %s\n", Esc(Title(category)))
	if alert != nil {
		fmt.Fprintf(&b, "\n⚠️ <b>Perhatian:</b> Budget %s sudah %s%% terpakai!", Esc(category), alert.Percent.StringFixed(0))
	}
	return b.String()
}
