package present

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Artzsa/Perhitunganku-V3.0/internal/core"
	"github.com/Artzsa/Perhitunganku-V3.0/internal/report"
)

const (
	cellFull  = "█"
	cellEmpty = "░"
)

// Status markers.
const (
	MarkerNone     = "⚪"
	MarkerLow      = "🟢"
	MarkerModerate = "🟡"
	MarkerHigh     = "🟠"
	MarkerCritical = "🔴"
)

var (
	half       = decimal.NewFromFloat(0.5)
	fourFifths = decimal.NewFromFloat(0.8)
	one        = decimal.NewFromInt(1)
	pct40      = decimal.NewFromInt(40)
	pct50      = decimal.NewFromInt(50)
	pct70      = decimal.NewFromInt(70)
	pct80      = decimal.NewFromInt(80)
	pct90      = decimal.NewFromInt(90)
	pct100     = decimal.NewFromInt(100)
	thousand   = decimal.NewFromInt(1000)
)

const (
	chartWidth   = 15
	chartTop     = 5
	chartNameLen = 8
)

// ProgressBar draws width cells for current against target and returns the
// bar with its percentage label plus a status marker. The bar is full once
// current exceeds target; the label keeps the real percentage.
//
//	ProgressBar(50, 100, 10)  -> "█████░░░░░ 50.0%", 🟡
//	ProgressBar(120, 100, 10) -> "██████████ 120.0%", 🔴
func ProgressBar(current, target int64, width int) (string, string) {
	if target <= 0 {
		return strings.Repeat(cellEmpty, width) + " 0%", MarkerNone
	}
	ratio := decimal.NewFromInt(current).Div(decimal.NewFromInt(target))

	var marker string
	switch {
	case ratio.LessThan(half):
		marker = MarkerLow
	case ratio.LessThan(fourFifths):
		marker = MarkerModerate
	case ratio.LessThanOrEqual(one):
		marker = MarkerHigh
	default:
		marker = MarkerCritical
	}

	filled := width
	if ratio.LessThanOrEqual(one) {
		filled = int(ratio.Mul(decimal.NewFromInt(int64(width))).Floor().IntPart())
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat(cellFull, filled) + strings.Repeat(cellEmpty, width-filled)
	return bar + " " + report.Percent(current, target).StringFixed(1) + "%", marker
}

// BudgetHealth classifies a usage percentage into a label and advice.
func BudgetHealth(pct decimal.Decimal) (label, advice string) {
	switch {
	case pct.LessThan(pct50):
		return "🟢 Aman", "Pengeluaran masih terkendali dengan baik!"
	case pct.LessThan(pct70):
		return "🟡 Hati-hati", "Mulai perhatikan pengeluaran Anda."
	case pct.LessThan(pct90):
		return "🟠 Waspada", "Anggaran hampir habis, kurangi pengeluaran!"
	case pct.LessThanOrEqual(pct100):
		return "🔴 Bahaya", "Anggaran hampir habis!"
	default:
		return "💥 Over Budget!", "Anda sudah melewati batas anggaran!"
	}
}

// HealthWord is the label without its marker: "Aman", "Hati-hati", "Over".
func HealthWord(label string) string {
	f := strings.Fields(label)
	if len(f) < 2 {
		return label
	}
	return f[1]
}

// MiniBar draws ten cells, one per started ten percent.
func MiniBar(pct decimal.Decimal) string {
	n := int(pct.Div(decimal.NewFromInt(10)).Floor().IntPart())
	if n < 0 {
		n = 0
	}
	if n > 10 {
		n = 10
	}
	return strings.Repeat(cellFull, n) + strings.Repeat(cellEmpty, 10-n)
}

// SmartTips derives at most three tips from a snapshot, in fixed priority:
// balance, per-category usage, biggest category share, praise, and a nudge
// to budget more categories.
func SmartTips(s *report.Snapshot) []string {
	var tips []string
	income, balance := s.Income(), s.Balance()

	switch {
	case balance < 0:
		tips = append(tips, "💸 <b>Urgent:</b> Saldo minus! Segera kurangi pengeluaran atau cari pemasukan tambahan.")
	case balance*10 < income:
		tips = append(tips, "⚠️ <b>Peringatan:</b> Saldo tipis! Lebih hati-hati dengan pengeluaran.")
	default:
		tips = append(tips, "👍 <b>Good Job:</b> Saldo masih sehat!")
	}

	budgets := s.Budgets()
	overBudget := false
	for _, cat := range s.ExpenseCategories() {
		budget, ok := budgets[cat]
		if !ok {
			continue
		}
		pct := report.Percent(s.Spent(cat), budget)
		switch {
		case pct.GreaterThan(pct100):
			overBudget = true
			tips = append(tips, fmt.Sprintf("🚨 <b>%s:</b> Over budget %s%%! Segera batasi pengeluaran kategori ini.",
				Esc(Title(cat)), pct.Sub(pct100).StringFixed(0)))
		case pct.GreaterThan(pct80):
			tips = append(tips, fmt.Sprintf("🟠 <b>%s:</b> Sudah %s%% dari budget. Hati-hati ya!",
				Esc(Title(cat)), pct.StringFixed(0)))
		}
	}

	if cats := s.ExpenseCategories(); len(cats) > 0 {
		biggest := cats[0]
		for _, c := range cats[1:] {
			if s.Spent(c) > s.Spent(biggest) {
				biggest = c
			}
		}
		share := report.Percent(s.Spent(biggest), s.Expense())
		if share.GreaterThan(pct40) {
			tips = append(tips, fmt.Sprintf("📊 <b>Insight:</b> %s adalah pengeluaran terbesar Anda (%s%%). Coba cari cara untuk mengoptimalkannya!",
				Esc(Title(biggest)), share.StringFixed(0)))
		}
	}

	if !overBudget && balance > 0 {
		tips = append(tips, "🌟 <b>Excellent:</b> Semua anggaran terkendali! Pertahankan kebiasaan baik ini.")
	}
	if len(budgets) < 3 {
		tips = append(tips, "💡 <b>Saran:</b> Buat anggaran untuk lebih banyak kategori agar keuangan lebih terstruktur!")
	}

	if len(tips) > 3 {
		tips = tips[:3]
	}
	return tips
}

// SpendingChart renders the five largest categories as bars scaled to the
// largest one.
func SpendingChart(totals map[string]int64) string {
	if len(totals) == 0 {
		return "📊 Belum ada data pengeluaran."
	}
	items := core.SortedAmounts(totals)
	top := items[0].Amount

	var b strings.Builder
	b.WriteString("📊 <b>Visualisasi Pengeluaran:</b>\n<pre>")
	for i, it := range items {
		if i == chartTop {
			break
		}
		n := 0
		if top > 0 {
			n = int(it.Amount * chartWidth / top)
		}
		if n < 0 {
			n = 0
		}
		name := padRight(truncate(it.Name, chartNameLen), chartNameLen)
		k := decimal.NewFromInt(it.Amount).Div(thousand).StringFixed(0)
		fmt.Fprintf(&b, "%s %s%s %sk\n", Esc(name), strings.Repeat(cellFull, n), strings.Repeat(cellEmpty, chartWidth-n), k)
	}
	b.WriteString("</pre>")
	return b.String()
}
